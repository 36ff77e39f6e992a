package ir

// Figure kinds.
const (
	KindLine     = "line"
	KindBand     = "band"
	KindErrorBar = "errorbar"
)

// ValidKinds defines allowed figure kinds.
var ValidKinds = map[string]bool{
	KindLine:     true,
	KindBand:     true,
	KindErrorBar: true,
}

// Default figure dimensions in inches, matching a 10x6 matplotlib figure.
const (
	DefaultWidth  = 10.0
	DefaultHeight = 6.0
)

// DefaultLabelScheme names the label scheme used when a figure sets none.
const DefaultLabelScheme = "dirname"

// Figure is a compiled figure spec: which runs to read, how to reduce them,
// and how to draw the result.
type Figure struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Title       string `json:"title,omitempty"`
	XLabel      string `json:"x_label,omitempty"`
	YLabel      string `json:"y_label,omitempty"`
	LegendTitle string `json:"legend_title,omitempty"`

	Tag    string `json:"tag,omitempty"`
	Window int    `json:"window"`
	LogDir string `json:"log_dir,omitempty"`

	Output string  `json:"output"`
	Width  float64 `json:"width"`  // inches
	Height float64 `json:"height"` // inches

	Runs         []RunRef  `json:"runs,omitempty"`
	Select       *Selector `json:"select,omitempty"`
	Labels       string    `json:"labels,omitempty"`
	SplitByGroup bool      `json:"split_by_group,omitempty"`
	Best         *BestRun  `json:"best,omitempty"`

	Conditions []Condition    `json:"conditions,omitempty"`
	Series     []InlineSeries `json:"series,omitempty"`
	RefLines   []RefLine      `json:"ref_lines,omitempty"`

	// Source position of the figure declaration, for diagnostics.
	File string `json:"-"`
	Line int    `json:"-"`
}

// RunRef names one run directory, optionally with a fixed legend label.
type RunRef struct {
	Dir   string `json:"dir"`
	Label string `json:"label,omitempty"`
}

// Selector picks run directories under the log dir by name prefix.
type Selector struct {
	Prefix string `json:"prefix"`
}

// BestRun requests an extra chart containing only the run whose final raw
// value is highest.
type BestRun struct {
	Output string `json:"output"`
	Title  string `json:"title,omitempty"`
}

// Condition is one experiment condition of a band figure: sibling runs that
// are aggregated into a mean line with a ±std band.
type Condition struct {
	Name  string   `json:"name"`
	Runs  []string `json:"runs"`
	Color string   `json:"color,omitempty"`
}

// InlineSeries is literal data for errorbar figures.
type InlineSeries struct {
	Label string    `json:"label"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
	YErr  []float64 `json:"yerr,omitempty"`
}

// RefLine is a horizontal reference line, e.g. an expert policy's return.
type RefLine struct {
	Label string  `json:"label"`
	Y     float64 `json:"y"`
	Color string  `json:"color,omitempty"`
}

// Defaults fills unset optional fields in place.
func (f *Figure) Defaults() {
	if f.Kind == "" {
		f.Kind = KindLine
	}
	if f.Window == 0 {
		f.Window = 1
	}
	if f.Width == 0 {
		f.Width = DefaultWidth
	}
	if f.Height == 0 {
		f.Height = DefaultHeight
	}
	if f.Labels == "" {
		f.Labels = DefaultLabelScheme
	}
}

// Vars returns the placeholder values shared by every chart of the figure.
func (f *Figure) Vars() Vars {
	return Vars{
		"name":   f.Name,
		"tag":    f.Tag,
		"window": itoa(f.Window),
	}
}
