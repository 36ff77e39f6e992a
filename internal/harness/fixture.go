package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/curves/internal/series"
	"github.com/roach88/curves/internal/tfevent"
)

// Fixture describes a set of synthetic run directories.
type Fixture struct {
	// Name identifies the fixture in logs and golden files.
	Name string `yaml:"name"`

	// Description explains what the fixture reproduces.
	Description string `yaml:"description,omitempty"`

	// Runs lists the run directories to create.
	Runs []RunFixture `yaml:"runs"`
}

// RunFixture is one run directory and its event log.
type RunFixture struct {
	// Dir is the run directory, relative to the materialize root.
	Dir string `yaml:"dir"`

	// File overrides the event log name. Defaults to DefaultFileName.
	File string `yaml:"file,omitempty"`

	// Corrupt breaks the data checksum of the last record.
	Corrupt bool `yaml:"corrupt,omitempty"`

	// Truncate cuts the last record short, as a writer killed mid-flush
	// leaves it.
	Truncate bool `yaml:"truncate,omitempty"`

	// Records are written in order, one event per record.
	Records []RecordFixture `yaml:"records"`
}

// RecordFixture is one logged scalar.
type RecordFixture struct {
	Tag   string  `yaml:"tag"`
	Step  int64   `yaml:"step"`
	Value float64 `yaml:"value"`

	// Tensor writes the value as a TF2 tensor summary instead of
	// simple_value.
	Tensor bool `yaml:"tensor,omitempty"`
}

// DefaultFileName is the event log name used when a run sets none.
const DefaultFileName = series.DefaultPrefix + ".0.synthetic"

// LoadFixture reads and parses a fixture YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture parses fixture YAML with strict field validation.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateFixture(&f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

// validateFixture checks that required fields are present and valid.
func validateFixture(f *Fixture) error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(f.Runs) == 0 {
		return fmt.Errorf("runs list is required and must be non-empty")
	}

	seen := make(map[string]bool)
	for i, run := range f.Runs {
		if run.Dir == "" {
			return fmt.Errorf("runs[%d]: dir is required", i)
		}
		if filepath.IsAbs(run.Dir) || escapesRoot(run.Dir) {
			return fmt.Errorf("runs[%d]: dir %q must stay inside the output directory", i, run.Dir)
		}
		if seen[run.Dir] {
			return fmt.Errorf("runs[%d]: duplicate dir %q", i, run.Dir)
		}
		seen[run.Dir] = true

		if strings.ContainsAny(run.File, `/\`) {
			return fmt.Errorf("runs[%d]: file %q must be a plain file name", i, run.File)
		}
		if run.Corrupt && run.Truncate {
			return fmt.Errorf("runs[%d]: corrupt and truncate are mutually exclusive", i)
		}
		if (run.Corrupt || run.Truncate) && len(run.Records) == 0 {
			return fmt.Errorf("runs[%d]: corrupt and truncate need at least one record", i)
		}
		for j, rec := range run.Records {
			if rec.Tag == "" {
				return fmt.Errorf("runs[%d].records[%d]: tag is required", i, j)
			}
		}
	}
	return nil
}

func escapesRoot(dir string) bool {
	clean := filepath.Clean(dir)
	return clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))
}

// Materialize writes every run of f under root and returns the run
// directories in fixture order.
func Materialize(f *Fixture, root string) ([]string, error) {
	dirs := make([]string, 0, len(f.Runs))
	for _, run := range f.Runs {
		dir := filepath.Join(root, run.Dir)
		if err := writeRun(dir, run); err != nil {
			return nil, fmt.Errorf("run %s: %w", run.Dir, err)
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

func writeRun(dir string, run RunFixture) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	w := tfevent.NewWriter(&buf)
	if err := w.WriteEvent(&tfevent.Event{FileVersion: "brain.Event:2"}); err != nil {
		return err
	}
	for i, rec := range run.Records {
		if err := w.WriteEvent(recordEvent(i, rec)); err != nil {
			return err
		}
	}

	data := buf.Bytes()
	switch {
	case run.Corrupt:
		// The last four bytes are the data checksum of the final record.
		data[len(data)-1] ^= 0xff
	case run.Truncate:
		data = data[:len(data)-2]
	}

	name := run.File
	if name == "" {
		name = DefaultFileName
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0644)
}

func recordEvent(i int, rec RecordFixture) *tfevent.Event {
	v := tfevent.Value{Tag: rec.Tag, Form: tfevent.SimpleValue, Scalar: rec.Value}
	if rec.Tensor {
		v.Form = tfevent.TensorValue
		v.Plugin = tfevent.ScalarPlugin
	}
	return &tfevent.Event{
		WallTime: float64(i + 1),
		Step:     rec.Step,
		Summary:  []tfevent.Value{v},
	}
}
