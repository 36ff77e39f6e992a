package series

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is matched by every *NotFoundError.
var ErrNotFound = errors.New("not found")

// Reason says why a series could not be produced.
type Reason string

const (
	ReasonNoEventFile  Reason = "no_event_file"
	ReasonTagMissing   Reason = "tag_missing"
	ReasonEmptyLog     Reason = "empty_log"
	ReasonDecodeFailed Reason = "decode_failed"
	ReasonNoRuns       Reason = "no_runs"
)

// NotFoundError reports an expected, recoverable failure to produce a series.
type NotFoundError struct {
	Dir    string
	Tag    string
	Reason Reason

	// Available lists the scalar tags present when Reason is ReasonTagMissing.
	Available []string

	// Err is the underlying cause, if any (I/O or decode error).
	Err error
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	switch e.Reason {
	case ReasonNoEventFile:
		fmt.Fprintf(&b, "no event log in %s", e.Dir)
	case ReasonTagMissing:
		fmt.Fprintf(&b, "tag %q not found in %s", e.Tag, e.Dir)
		if len(e.Available) > 0 {
			fmt.Fprintf(&b, " (available: %s)", strings.Join(e.Available, ", "))
		}
	case ReasonEmptyLog:
		fmt.Fprintf(&b, "no scalar records in %s", e.Dir)
	case ReasonDecodeFailed:
		fmt.Fprintf(&b, "unreadable event log in %s", e.Dir)
	case ReasonNoRuns:
		b.WriteString("no runs to aggregate")
	default:
		fmt.Fprintf(&b, "%s: %s", e.Reason, e.Dir)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// ReasonOf returns the Reason of a *NotFoundError in err's chain, or "" if
// there is none.
func ReasonOf(err error) Reason {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Reason
	}
	return ""
}
