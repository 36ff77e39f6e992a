package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/curves/internal/compiler"
)

var specsDir = filepath.Join("..", "..", "testdata", "specs")

func TestValidateValidSpecs(t *testing.T) {
	if _, err := os.Stat(specsDir); os.IsNotExist(err) {
		t.Skip("testdata/specs directory not found")
	}

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{specsDir})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ All specs valid")
}

func TestValidateValidSpecsJSON(t *testing.T) {
	if _, err := os.Stat(specsDir); os.IsNotExist(err) {
		t.Skip("testdata/specs directory not found")
	}

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{specsDir})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["valid"])
	assert.Greater(t, data["figures"], float64(0))
}

func TestValidateNonExistentDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/directory/path"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, buf.String(), "not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateEmptyDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
}

func TestValidateCrossFieldErrors(t *testing.T) {
	dir := writeSpec(t, `package figures

figure: q1: {
	tag:    "Eval_AverageReturn"
	window: 0
}

figure: hw3: {
	kind:   "band"
	tag:    "Train_AverageReturn"
	output: "hw3.png"
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	output := buf.String()
	assert.Contains(t, output, "✗ Validation failed")
	assert.Contains(t, output, compiler.ErrMissingOutput+": figure.q1.output")
	assert.Contains(t, output, compiler.ErrInvalidWindow+": figure.q1.window")
	assert.Contains(t, output, compiler.ErrRunSelection)
	assert.Contains(t, output, compiler.ErrMissingConditions+": figure.hw3.conditions")
}

func TestValidateCrossFieldErrorsJSON(t *testing.T) {
	dir := writeSpec(t, `package figures

figure: q5: {
	tag:    "Eval_AverageReturn"
	output: "q5.png"
	runs: [{dir: "q5_lambda0.95"}]
	labels: "nope"
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, compiler.ErrUnknownLabelScheme, resp.Error.Code)
}

func TestValidateTypeMismatch(t *testing.T) {
	dir := writeSpec(t, `package figures

figure: q2: {
	tag:    "Eval_AverageReturn"
	output: "q2.png"
	window: "ten"
	select: prefix: "q2_"
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeTypeMismatch)
	assert.Contains(t, buf.String(), "figure.q2")
}

func TestValidateVerboseOutput(t *testing.T) {
	dir := writeSpec(t, `package figures

figure: q2: {
	tag:    "Eval_AverageReturn"
	output: "q2.png"
	select: prefix: "q2_"
	labels: "batch-lr"
}
`)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Verbose: true}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{dir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "✓ All specs valid (1 figure(s))")
	assert.Contains(t, stderr.String(), "Found 1 CUE file(s)")
	assert.Contains(t, stderr.String(), "Validating figure: q2")
}

func TestValidateNoFigures(t *testing.T) {
	dir := writeSpec(t, `package figures

defaults: window: 10
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "no figures found in specs")
}

func TestValidateSpecsDir(t *testing.T) {
	if _, err := os.Stat(specsDir); os.IsNotExist(err) {
		t.Skip("testdata/specs directory not found")
	}

	errs, err := ValidateSpecsDir(specsDir)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidateSpecsDirInvalid(t *testing.T) {
	dir := writeSpec(t, `package figures

figure: hw1: {
	kind:   "errorbar"
	output: "hw1.png"
	series: [{label: "DAgger", x: [1, 2, 3], y: [1, 2]}]
}
`)

	errs, err := ValidateSpecsDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	assert.Equal(t, compiler.ErrSeriesLength, errs[0].Code)
}

func TestValidateSpecsDirNonExistent(t *testing.T) {
	_, err := ValidateSpecsDir("/nonexistent/path")
	require.Error(t, err)
}
