package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		scheme  string
		dirname string
		want    Label
	}{
		{
			name:    "dirname",
			scheme:  SchemeDirname,
			dirname: "q4_b25000_r0.02_rtg_HalfCheetah-v4_02-10-2025_18-14-44",
			want:    Label{Text: "q4_b25000_r0.02_rtg_HalfCheetah-v4_02-10-2025_18-14-44"},
		},
		{
			name:    "run strips timestamp",
			scheme:  SchemeRun,
			dirname: "q1_dqn_1_LunarLander-v3_30-10-2025_16-20-36",
			want:    Label{Text: "q1_dqn_1_LunarLander-v3"},
		},
		{
			name:    "run without timestamp",
			scheme:  SchemeRun,
			dirname: "cartpole_baseline",
			want:    Label{Text: "cartpole_baseline"},
		},
		{
			name:    "pg small batch no rtg",
			scheme:  SchemePG,
			dirname: "q1_sb_no_rtg_dsa_CartPole-v0_01-10-2025_12-00-00",
			want:    Label{Text: "No RTG + DSA (Full Trajectory + Baseline)", Group: "sb", GroupTitle: "Small Batch (1500)"},
		},
		{
			name:    "pg large batch rtg dsa",
			scheme:  SchemePG,
			dirname: "q1_lb_rtg_dsa_CartPole-v0_01-10-2025_12-00-00",
			want:    Label{Text: "RTG + DSA (Reward-to-Go + Baseline)", Group: "lb", GroupTitle: "Large Batch (6000)"},
		},
		{
			name:    "pg rtg no baseline",
			scheme:  SchemePG,
			dirname: "q1_sb_rtg_na_CartPole-v0_01-10-2025_12-00-00",
			want:    Label{Text: "RTG + No Baseline (Reward-to-Go Only)", Group: "sb", GroupTitle: "Small Batch (1500)"},
		},
		{
			name:    "batch-lr",
			scheme:  SchemeBatchLR,
			dirname: "q2_b10000_r0.01_InvertedPendulum-v4_01-10-2025_21-12-20",
			want:    Label{Text: "B:10000, LR:0.01"},
		},
		{
			name:    "batch-lr exponent",
			scheme:  SchemeBatchLR,
			dirname: "q2_b500_r1e-3_InvertedPendulum-v4",
			want:    Label{Text: "B:500, LR:1e-3"},
		},
		{
			name:    "search",
			scheme:  SchemeSearch,
			dirname: "q4_search_b10000_lr0.02_nnbaseline_HalfCheetah-v4_02-10-2025_21-02-42",
			want:    Label{Text: "B:10000, LR:0.02"},
		},
		{
			name:    "lambda",
			scheme:  SchemeLambda,
			dirname: "q5_b2000_r0.001_lambda0.95_Hopper-v4_02-10-2025_20-15-52",
			want:    Label{Text: "λ=0.95"},
		},
		{
			name:    "lambda at end",
			scheme:  SchemeLambda,
			dirname: "q5_lambda1",
			want:    Label{Text: "λ=1"},
		},
		{
			name:    "variant both",
			scheme:  SchemeVariant,
			dirname: "q4_search_b10000_lr0.02_rtg_nnbaseline_HalfCheetah-v4_02-10-2025_21-07-17",
			want:    Label{Text: "rtg+nnbaseline"},
		},
		{
			name:    "variant nnbaseline",
			scheme:  SchemeVariant,
			dirname: "q4_search_b10000_lr0.02_nnbaseline_HalfCheetah-v4_02-10-2025_21-02-42",
			want:    Label{Text: "nnbaseline"},
		},
		{
			name:    "variant rtg",
			scheme:  SchemeVariant,
			dirname: "q4_search_b10000_lr0.02_rtg_HalfCheetah-v4_02-10-2025_20-20-27",
			want:    Label{Text: "rtg"},
		},
		{
			name:    "variant neither",
			scheme:  SchemeVariant,
			dirname: "q4_search_b10000_lr0.02_HalfCheetah-v4_02-10-2025_20-19-14",
			want:    Label{Text: "baseline"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.scheme, tt.dirname)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Unrecognized(t *testing.T) {
	tests := []struct {
		scheme  string
		dirname string
	}{
		{SchemeDirname, ""},
		{SchemeRun, "_01-10-2025_12-00-00"},
		{SchemePG, "q1_mb_rtg_dsa_CartPole-v0"},
		{SchemePG, "q1_sb_reinforce_CartPole-v0"},
		{SchemePG, "q1"},
		{SchemeBatchLR, "q2_batch10000_r0.01"},
		{SchemeBatchLR, "q2_b10000"},
		{SchemeSearch, "q4_b10000_lr0.02_HalfCheetah-v4"},
		{SchemeSearch, "q4_search_b10000_r0.02"},
		{SchemeLambda, "q5_b2000_r0.001_Hopper-v4"},
		{SchemeLambda, "q5_lambda_Hopper-v4"},
		{SchemeVariant, ""},
	}

	for _, tt := range tests {
		t.Run(tt.scheme+"/"+tt.dirname, func(t *testing.T) {
			_, err := Parse(tt.scheme, tt.dirname)
			require.ErrorIs(t, err, ErrUnrecognized)
			assert.Contains(t, err.Error(), tt.scheme)
		})
	}
}

func TestParse_UnknownScheme(t *testing.T) {
	_, err := Parse("hyperband", "q1_sb_rtg_dsa")
	require.ErrorIs(t, err, ErrUnknownScheme)
	assert.Contains(t, err.Error(), "batch-lr")
}

func TestSchemes(t *testing.T) {
	assert.Equal(t,
		[]string{"batch-lr", "dirname", "lambda", "pg", "run", "search", "variant"},
		Schemes())
}
