package cli

import (
	"os"
	"path/filepath"
	"strconv"
)

// resolveRun turns a run argument into a directory path. An existing path
// is used as given; otherwise a relative name is looked up under the log
// directory.
func (o *RootOptions) resolveRun(arg string) string {
	if _, err := os.Stat(arg); err == nil || filepath.IsAbs(arg) {
		return arg
	}
	return filepath.Join(o.Config.LogDir, arg)
}

// formatFloat prints v in the shortest form that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
