package series

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/curves/internal/ir"
	"github.com/roach88/curves/internal/logging"
	"github.com/roach88/curves/internal/tfevent"
)

// DefaultPrefix is the file name prefix of TensorBoard event logs.
const DefaultPrefix = "events.out.tfevents"

// Loader reads scalar series from run directories.
type Loader struct {
	prefix string
	logger *slog.Logger
	cache  Cache
}

// NewLoader returns a Loader that recognizes event logs by prefix. An empty
// prefix selects DefaultPrefix; a nil logger discards diagnostics.
func NewLoader(prefix string, logger *slog.Logger) *Loader {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Loader{prefix: prefix, logger: logger}
}

// WithCache makes l consult c before decoding a log and store what it
// decodes. Cache failures are logged and otherwise ignored.
func (l *Loader) WithCache(c Cache) *Loader {
	l.cache = c
	return l
}

// Load reads the series for tag from the event log in dir using the default
// prefix.
func Load(dir, tag string) (*Series, error) {
	return NewLoader("", nil).Load(dir, tag)
}

// FindEventFile returns the path of the event log in dir. When several files
// match, the lexically first is used and the rest are logged.
func (l *Loader) FindEventFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &NotFoundError{Dir: dir, Reason: ReasonNoEventFile, Err: err}
	}

	// os.ReadDir sorts by file name.
	var matches []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), l.prefix) {
			continue
		}
		matches = append(matches, entry.Name())
	}

	if len(matches) == 0 {
		return "", &NotFoundError{Dir: dir, Reason: ReasonNoEventFile}
	}
	if len(matches) > 1 {
		l.logger.Warn("multiple event logs in run directory, using the first",
			"dir", dir, "using", matches[0], "ignored", matches[1:])
	}
	return filepath.Join(dir, matches[0]), nil
}

// Load reads the event log in dir and returns the deduplicated series for
// tag. Every failure is a *NotFoundError.
func (l *Loader) Load(dir, tag string) (*Series, error) {
	return l.LoadContext(context.Background(), dir, tag)
}

// LoadContext is Load with a context for the cache.
func (l *Loader) LoadContext(ctx context.Context, dir, tag string) (*Series, error) {
	path, err := l.FindEventFile(dir)
	if err != nil {
		return nil, err
	}

	var key CacheKey
	if l.cache != nil {
		key, err = cacheKey(path, ir.Normalize(tag))
		if err != nil {
			return nil, &NotFoundError{Dir: dir, Tag: tag, Reason: ReasonNoEventFile, Err: err}
		}
		cached, ok, err := l.cache.GetSeries(ctx, key)
		if err != nil {
			l.logger.Warn("series cache read failed", "path", path, "tag", tag, "error", err)
		}
		if ok {
			l.logger.Debug("loaded series from cache", "dir", dir, "tag", tag, "points", cached.Len())
			cached.Tag = tag
			return cached, nil
		}
	}

	scalars, err := l.decode(dir, path, tag)
	if err != nil {
		return nil, err
	}

	records, ok := scalars[ir.Normalize(tag)]
	if !ok {
		return nil, &NotFoundError{Dir: dir, Tag: tag, Reason: ReasonTagMissing, Available: sortedTags(scalars)}
	}

	l.logger.Debug("loaded series", "dir", dir, "tag", tag, "records", len(records))
	s := &Series{Tag: tag, Points: Dedupe(records)}

	if l.cache != nil {
		if err := l.cache.PutSeries(ctx, key, s); err != nil {
			l.logger.Warn("series cache write failed", "path", path, "tag", tag, "error", err)
		}
	}
	return s, nil
}

// Tags lists the scalar tags recorded in the event log in dir, sorted.
func (l *Loader) Tags(dir string) ([]string, error) {
	path, err := l.FindEventFile(dir)
	if err != nil {
		return nil, err
	}
	scalars, err := l.decode(dir, path, "")
	if err != nil {
		return nil, err
	}
	return sortedTags(scalars), nil
}

// decode reads every scalar of the log at path, which lives in dir.
func (l *Loader) decode(dir, path, tag string) (map[string][]Record, error) {
	scalars, err := l.readScalars(path)
	if err != nil {
		return nil, &NotFoundError{Dir: dir, Tag: tag, Reason: ReasonDecodeFailed, Err: err}
	}
	if len(scalars) == 0 {
		return nil, &NotFoundError{Dir: dir, Tag: tag, Reason: ReasonEmptyLog}
	}
	return scalars, nil
}

// readScalars decodes every scalar value in the log, grouped by NFC tag.
func (l *Loader) readScalars(path string) (map[string][]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := tfevent.NewReader(bufio.NewReader(f))
	scalars := make(map[string][]Record)
	events := 0
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, tfevent.ErrTruncated) && events > 0 {
			l.logger.Warn("event log ends mid-record, keeping complete records",
				"path", path, "events", events)
			break
		}
		if err != nil {
			return nil, err
		}
		events++

		for _, v := range e.Summary {
			if !v.IsScalar() {
				continue
			}
			tag := ir.Normalize(v.Tag)
			scalars[tag] = append(scalars[tag], Record{Tag: tag, Step: e.Step, Value: v.Scalar})
		}
	}
	return scalars, nil
}

func sortedTags(scalars map[string][]Record) []string {
	tags := make([]string, 0, len(scalars))
	for tag := range scalars {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
