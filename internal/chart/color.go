package chart

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gonum.org/v1/plot/plotutil"
)

// named holds the colors figure specs refer to by name: matplotlib's
// single-letter codes and its tab10 palette.
var named = map[string]color.NRGBA{
	"b": {0x00, 0x00, 0xff, 0xff},
	"g": {0x00, 0x80, 0x00, 0xff},
	"r": {0xff, 0x00, 0x00, 0xff},
	"c": {0x00, 0xbf, 0xbf, 0xff},
	"m": {0xbf, 0x00, 0xbf, 0xff},
	"y": {0xbf, 0xbf, 0x00, 0xff},
	"k": {0x00, 0x00, 0x00, 0xff},

	"blue":   {0x00, 0x00, 0xff, 0xff},
	"green":  {0x00, 0x80, 0x00, 0xff},
	"red":    {0xff, 0x00, 0x00, 0xff},
	"black":  {0x00, 0x00, 0x00, 0xff},
	"gray":   {0x80, 0x80, 0x80, 0xff},
	"orange": {0xff, 0xa5, 0x00, 0xff},
	"purple": {0x80, 0x00, 0x80, 0xff},

	"tab:blue":   {0x1f, 0x77, 0xb4, 0xff},
	"tab:orange": {0xff, 0x7f, 0x0e, 0xff},
	"tab:green":  {0x2c, 0xa0, 0x2c, 0xff},
	"tab:red":    {0xd6, 0x27, 0x28, 0xff},
	"tab:purple": {0x94, 0x67, 0xbd, 0xff},
	"tab:brown":  {0x8c, 0x56, 0x4b, 0xff},
	"tab:pink":   {0xe3, 0x77, 0xc2, 0xff},
	"tab:gray":   {0x7f, 0x7f, 0x7f, 0xff},
	"tab:olive":  {0xbc, 0xbd, 0x22, 0xff},
	"tab:cyan":   {0x17, 0xbe, 0xcf, 0xff},
}

// ParseColor resolves a color name or #rrggbb hex string.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := named[s]; ok {
		return c, nil
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok && len(hex) == 6 {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err == nil {
			return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
		}
	}
	return color.NRGBA{}, fmt.Errorf("unknown color %q", s)
}

// pick returns the color named by s, or the i-th default plot color when s
// is empty.
func pick(s string, i int) (color.NRGBA, error) {
	if s == "" {
		return toNRGBA(plotutil.Color(i)), nil
	}
	return ParseColor(s)
}

func toNRGBA(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

// translucent returns c with its alpha scaled to a.
func translucent(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(float64(c.A) * a)
	return c
}
