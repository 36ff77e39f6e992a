package label

import (
	"regexp"
	"slices"
	"strings"
)

var batchTitles = map[string]string{
	"sb": "Small Batch (1500)",
	"lb": "Large Batch (6000)",
}

// PolicyGradient labels q1_<sb|lb>_<config>_... runs by their return
// estimator and groups them by batch size.
func PolicyGradient(dirname string) (Label, error) {
	parts := strings.Split(dirname, "_")
	if len(parts) < 3 {
		return Label{}, unrecognized(SchemePG, dirname)
	}
	group := parts[1]
	title, ok := batchTitles[group]
	if !ok {
		return Label{}, unrecognized(SchemePG, dirname)
	}

	// "no_rtg_dsa" also contains "rtg_dsa"; order matters.
	var text string
	switch {
	case strings.Contains(dirname, "no_rtg") && strings.Contains(dirname, "dsa"):
		text = "No RTG + DSA (Full Trajectory + Baseline)"
	case strings.Contains(dirname, "rtg_dsa"):
		text = "RTG + DSA (Reward-to-Go + Baseline)"
	case strings.Contains(dirname, "rtg_na"):
		text = "RTG + No Baseline (Reward-to-Go Only)"
	default:
		return Label{}, unrecognized(SchemePG, dirname)
	}
	return Label{Text: text, Group: group, GroupTitle: title}, nil
}

var (
	batchToken = regexp.MustCompile(`^b(\d+)$`)
	rateToken  = regexp.MustCompile(`^r([0-9][0-9.eE+-]*)$`)
	lrToken    = regexp.MustCompile(`^lr([0-9][0-9.eE+-]*)$`)
)

func hyperparams(batch, rate string) string {
	return "B:" + batch + ", LR:" + rate
}

// BatchLR labels <prefix>_b<B>_r<LR>_... runs as "B:<B>, LR:<LR>".
func BatchLR(dirname string) (Label, error) {
	parts := strings.Split(dirname, "_")
	if len(parts) < 3 {
		return Label{}, unrecognized(SchemeBatchLR, dirname)
	}
	b := batchToken.FindStringSubmatch(parts[1])
	r := rateToken.FindStringSubmatch(parts[2])
	if b == nil || r == nil {
		return Label{}, unrecognized(SchemeBatchLR, dirname)
	}
	return Label{Text: hyperparams(b[1], r[1])}, nil
}

// Search labels <prefix>_search_b<B>_lr<LR>_... runs as "B:<B>, LR:<LR>".
func Search(dirname string) (Label, error) {
	parts := strings.Split(dirname, "_")
	if len(parts) < 4 || parts[1] != "search" {
		return Label{}, unrecognized(SchemeSearch, dirname)
	}
	b := batchToken.FindStringSubmatch(parts[2])
	lr := lrToken.FindStringSubmatch(parts[3])
	if b == nil || lr == nil {
		return Label{}, unrecognized(SchemeSearch, dirname)
	}
	return Label{Text: hyperparams(b[1], lr[1])}, nil
}

// Lambda labels ..._lambda<L>_... runs as "λ=<L>".
func Lambda(dirname string) (Label, error) {
	_, rest, ok := strings.Cut(dirname, "_lambda")
	if !ok {
		return Label{}, unrecognized(SchemeLambda, dirname)
	}
	value, _, _ := strings.Cut(rest, "_")
	if value == "" {
		return Label{}, unrecognized(SchemeLambda, dirname)
	}
	return Label{Text: "λ=" + value}, nil
}

// Variant labels ablation runs by which of the rtg and nnbaseline options
// appear among the underscore-separated tokens of the name. Runs with
// neither are "baseline".
func Variant(dirname string) (Label, error) {
	if dirname == "" {
		return Label{}, unrecognized(SchemeVariant, dirname)
	}
	tokens := strings.Split(dirname, "_")
	rtg := slices.Contains(tokens, "rtg")
	nn := slices.Contains(tokens, "nnbaseline")

	switch {
	case rtg && nn:
		return Label{Text: "rtg+nnbaseline"}, nil
	case nn:
		return Label{Text: "nnbaseline"}, nil
	case rtg:
		return Label{Text: "rtg"}, nil
	default:
		return Label{Text: "baseline"}, nil
	}
}
