package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFigureDefaults(t *testing.T) {
	f := &Figure{Name: "q1"}
	f.Defaults()

	assert.Equal(t, KindLine, f.Kind)
	assert.Equal(t, 1, f.Window)
	assert.Equal(t, DefaultWidth, f.Width)
	assert.Equal(t, DefaultHeight, f.Height)
	assert.Equal(t, DefaultLabelScheme, f.Labels)
}

func TestFigureDefaultsKeepsSetFields(t *testing.T) {
	f := &Figure{Kind: KindBand, Window: 10, Width: 4, Height: 3, Labels: "lambda"}
	f.Defaults()

	assert.Equal(t, &Figure{Kind: KindBand, Window: 10, Width: 4, Height: 3, Labels: "lambda"}, f)
}

func TestFigureVars(t *testing.T) {
	f := &Figure{Name: "q5", Tag: "Eval_AverageReturn", Window: 10}

	assert.Equal(t, Vars{"name": "q5", "tag": "Eval_AverageReturn", "window": "10"}, f.Vars())
	assert.Equal(t, "q5: Eval_AverageReturn (10)", Expand("{name}: {tag} ({window})", f.Vars()))
}
