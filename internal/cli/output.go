package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/curves/internal/render"
	"github.com/roach88/curves/internal/series"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a spec, figure or series was rejected
	ExitCommandError = 2 // the command could not run: bad flags, paths or specs
)

// ExitError carries the exit status of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitError builds an ExitError; err may be nil.
func exitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit status. Errors that are not an
// ExitError exit with ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// notFoundDetails is the detail payload of a series.NotFoundError.
type notFoundDetails struct {
	Dir       string   `json:"dir,omitempty"`
	Tag       string   `json:"tag,omitempty"`
	Reason    string   `json:"reason"`
	Available []string `json:"available,omitempty"`
}

// OutputFormatter writes command results as text or as a JSON envelope.
// Verbose progress lines go to ErrWriter so they never mix with JSON.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// JSON reports whether output is a JSON envelope.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success writes data. Text output prints data with fmt; commands with a
// richer text form print it themselves and call Success only for JSON.
func (f *OutputFormatter) Success(data any) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Report writes a JSON envelope carrying data alongside cerr, for commands
// that fail with a partial result (validation findings, failed figures).
// A nil cerr reports success.
func (f *OutputFormatter) Report(data any, cerr *CLIError) error {
	resp := CLIResponse{Status: "ok", Data: data}
	if cerr != nil {
		resp.Status = "error"
		resp.Error = cerr
	}
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// Fail writes an error and returns the ExitError the command should return.
func (f *OutputFormatter) Fail(exit int, code, message string, details any) error {
	if f.JSON() {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	} else {
		fmt.Fprintf(f.Writer, "✗ %s: %s\n", code, message)
		if f.Verbose {
			writeDetails(f.Writer, details)
		}
	}
	return exitError(exit, code+": "+message, nil)
}

// SeriesError reports a failure to load or reduce a series. A run without a
// usable series exits 1 with E005 when its event log is missing and E009
// otherwise; any other error is a command error.
func (f *OutputFormatter) SeriesError(err error) error {
	var nf *series.NotFoundError
	if !errors.As(err, &nf) {
		_ = f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		return exitError(ExitCommandError, ErrCodeGeneric, err)
	}

	code := ErrCodeSeriesNotFound
	if nf.Reason == series.ReasonNoEventFile {
		code = ErrCodeNotFound
	}
	return f.Fail(ExitFailure, code, nf.Error(), notFoundDetails{
		Dir:       nf.Dir,
		Tag:       nf.Tag,
		Reason:    string(nf.Reason),
		Available: nf.Available,
	})
}

// Verbosef writes a progress line when verbose output is on.
func (f *OutputFormatter) Verbosef(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// writeDetails prints the text form of an error's details.
func writeDetails(w io.Writer, details any) {
	switch d := details.(type) {
	case nil:
	case notFoundDetails:
		fmt.Fprintf(w, "  reason: %s\n", d.Reason)
		if d.Dir != "" {
			fmt.Fprintf(w, "  dir: %s\n", d.Dir)
		}
		if len(d.Available) > 0 {
			fmt.Fprintf(w, "  available tags: %s\n", strings.Join(d.Available, ", "))
		}
	case []render.Skip:
		writeSkips(w, "  ", d)
	default:
		fmt.Fprintf(w, "  details: %v\n", d)
	}
}

// writeSkips prints one line per run left out of a chart or aggregate.
func writeSkips(w io.Writer, indent string, skips []render.Skip) {
	for _, s := range skips {
		fmt.Fprintf(w, "%sskipped %s (%s)\n", indent, s.Run, s.Reason)
	}
}
