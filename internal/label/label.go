// Package label derives legend labels from run directory names.
//
// Run directories are named by the training scripts that produced them, e.g.
// q2_b10000_r0.01_InvertedPendulum-v4_01-10-2025_21-12-20. A scheme knows one
// naming convention and turns a directory name into the text shown in a chart
// legend, optionally with a group used to split runs across charts.
//
// Parsers are pure functions: they never touch the filesystem and report
// names they cannot interpret with an error wrapping ErrUnrecognized.
package label

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrUnrecognized is returned when a directory name does not follow the
	// convention of the requested scheme.
	ErrUnrecognized = errors.New("unrecognized run directory name")

	// ErrUnknownScheme is returned for scheme names not in Schemes().
	ErrUnknownScheme = errors.New("unknown label scheme")
)

// Label is the legend entry for one run.
type Label struct {
	// Text is shown in the legend.
	Text string `json:"text"`

	// Group is a short file-safe key for split_by_group figures. Empty when the
	// scheme does not group runs.
	Group string `json:"group,omitempty"`

	// GroupTitle is the human-readable name of Group.
	GroupTitle string `json:"group_title,omitempty"`
}

// Parser turns a run directory base name into a Label.
type Parser func(dirname string) (Label, error)

// Scheme names.
const (
	SchemeDirname = "dirname"
	SchemeRun     = "run"
	SchemePG      = "pg"
	SchemeBatchLR = "batch-lr"
	SchemeSearch  = "search"
	SchemeLambda  = "lambda"
	SchemeVariant = "variant"
)

var parsers = map[string]Parser{
	SchemeDirname: Dirname,
	SchemeRun:     Run,
	SchemePG:      PolicyGradient,
	SchemeBatchLR: BatchLR,
	SchemeSearch:  Search,
	SchemeLambda:  Lambda,
	SchemeVariant: Variant,
}

// Schemes returns the registered scheme names, sorted.
func Schemes() []string {
	names := make([]string, 0, len(parsers))
	for name := range parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the parser for scheme.
func Lookup(scheme string) (Parser, error) {
	p, ok := parsers[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownScheme, scheme, strings.Join(Schemes(), ", "))
	}
	return p, nil
}

// Parse labels dirname with the named scheme.
func Parse(scheme, dirname string) (Label, error) {
	p, err := Lookup(scheme)
	if err != nil {
		return Label{}, err
	}
	return p(dirname)
}

func unrecognized(scheme, dirname string) error {
	return fmt.Errorf("%w: %q does not match scheme %s", ErrUnrecognized, dirname, scheme)
}

// Dirname labels a run with its directory name.
func Dirname(dirname string) (Label, error) {
	if dirname == "" {
		return Label{}, unrecognized(SchemeDirname, dirname)
	}
	return Label{Text: dirname}, nil
}

// timestampSuffix matches the _DD-MM-YYYY_HH-MM-SS suffix appended to every
// run directory.
var timestampSuffix = regexp.MustCompile(`_\d{2}-\d{2}-\d{4}_\d{2}-\d{2}-\d{2}$`)

// Run labels a run with its directory name minus the launch timestamp.
func Run(dirname string) (Label, error) {
	text := timestampSuffix.ReplaceAllString(dirname, "")
	if text == "" {
		return Label{}, unrecognized(SchemeRun, dirname)
	}
	return Label{Text: text}, nil
}
