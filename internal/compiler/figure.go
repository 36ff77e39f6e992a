package compiler

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/curves/internal/ir"
)

//go:embed schema.cue
var figureSchema string

// CompileFigure parses a CUE value into a Figure.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the figure struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`figure: q2: { tag: "Eval_AverageReturn", ... }`)
//	fig, err := CompileFigure(v.LookupPath(cue.ParsePath("figure.q2")))
//
// The value is unified with the embedded #Figure schema, which type-checks
// every field and fills defaults for absent ones. Explicit values, including
// an out-of-range window, are kept as written; cross-field rules are left to
// Validate.
func CompileFigure(v cue.Value) (*ir.Figure, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, v.Pos())
	}
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   "figure",
			Message: fmt.Sprintf("figure must be a struct, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	schema, err := figureDefinition(v.Context())
	if err != nil {
		return nil, err
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err, v.Pos())
	}

	fig := &ir.Figure{}
	if err := unified.Decode(fig); err != nil {
		return nil, formatCUEError(err, v.Pos())
	}

	fig.Name = figureName(v)
	if pos := v.Pos(); pos.IsValid() {
		fig.File = pos.Filename()
		fig.Line = pos.Line()
	}

	if fig.Tag != "" {
		fig.Tag = ir.Normalize(fig.Tag)
	}
	return fig, nil
}

// figureDefinition compiles the embedded schema in ctx and returns #Figure.
func figureDefinition(ctx *cue.Context) (cue.Value, error) {
	schema := ctx.CompileString(figureSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compiling figure schema: %w", err)
	}
	return schema.LookupPath(cue.ParsePath("#Figure")), nil
}

// figureName returns the figure name from the last path selector, e.g. q2 for
// figure.q2 or hw1-dagger for figure."hw1-dagger".
func figureName(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	name := sels[len(sels)-1].String()
	if strings.HasPrefix(name, `"`) {
		if unquoted, err := strconv.Unquote(name); err == nil {
			return unquoted
		}
	}
	return name
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError converts the first CUE error into a CompileError. Errors
// without a position, such as an empty disjunction, are reported at fallback.
func formatCUEError(err error, fallback token.Pos) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	pos := fallback
	if errs := errors.Errors(err); len(errs) > 0 {
		msg = errs[0].Error()
		if positions := errors.Positions(errs[0]); len(positions) > 0 {
			pos = positions[0]
		}
	}
	return &CompileError{Field: "cue", Message: msg, Pos: pos}
}
