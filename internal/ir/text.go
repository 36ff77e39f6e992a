package ir

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Vars maps placeholder names to values for Expand.
type Vars map[string]string

// With returns a copy of v with key set to value.
func (v Vars) With(key, value string) Vars {
	out := make(Vars, len(v)+1)
	for k, val := range v {
		out[k] = val
	}
	out[key] = value
	return out
}

// Expand replaces {name} placeholders in s with values from vars.
// Unknown placeholders are left untouched.
func Expand(s string, vars Vars) string {
	if !strings.Contains(s, "{") || len(vars) == 0 {
		return s
	}
	// Sorted keys keep replacement order deterministic.
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// Placeholders returns the distinct {name} placeholders used in s, in order
// of first appearance.
func Placeholders(s string) []string {
	var names []string
	seen := map[string]bool{}
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			return names
		}
		end := strings.IndexByte(s[open:], '}')
		if end < 0 {
			return names
		}
		name := s[open+1 : open+end]
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		s = s[open+end+1:]
	}
}

// Normalize returns the NFC form of a tag or label. Event logs written on
// different platforms may carry the same tag in different normal forms.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// FileSafe turns a label into a string usable as a file name component.
// Path separators and characters that trip up shells become underscores.
func FileSafe(s string) string {
	s = Normalize(s)
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ', ',':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
