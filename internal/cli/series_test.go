package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/curves/internal/harness"
	"github.com/roach88/curves/internal/store"
)

const q2Small = "q2_b1000_r0.01_InvertedPendulum-v4_01-10-2025_21-12-20"

func TestSeries_JSON(t *testing.T) {
	logDir := writeRuns(t)

	stdout, _, err := execute(t, "series", q2Small, "--tag", "Eval_AverageReturn", "--window", "2",
		"--log-dir", logDir, "--format", "json")
	require.NoError(t, err)

	harness.AssertGolden(t, "series_json", []byte(stdout))
}

func TestSeries_Text(t *testing.T) {
	logDir := writeRuns(t)

	stdout, _, err := execute(t, "series", q2Small, "--tag", "Eval_AverageReturn", "--log-dir", logDir)
	require.NoError(t, err)

	assert.Contains(t, stdout, "STEP")
	assert.Contains(t, stdout, "SMOOTHED")
	assert.Contains(t, stdout, "150")
	assert.Contains(t, stdout, "300")
}

func TestSeries_TagMissing(t *testing.T) {
	logDir := writeRuns(t)

	stdout, _, err := execute(t, "series", q2Small, "--tag", "Eval_Nope", "--log-dir", logDir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeSeriesNotFound, resp.Error.Code)

	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "tag_missing", details["reason"])
	assert.Equal(t, []any{"Eval_AverageReturn", "Train_EnvstepsSoFar"}, details["available"])
}

func TestSeries_NotFoundReasons(t *testing.T) {
	logDir := writeRuns(t)

	tests := []struct {
		run  string
		code string
	}{
		{"no_such_run", ErrCodeNotFound},
		{"q2_broken", ErrCodeSeriesNotFound},
		{"q2_empty", ErrCodeSeriesNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.run, func(t *testing.T) {
			stdout, _, err := execute(t, "series", tt.run, "--tag", "Eval_AverageReturn", "--log-dir", logDir)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, stdout, "✗ "+tt.code+":")
		})
	}
}

func TestSeries_InvalidWindow(t *testing.T) {
	logDir := writeRuns(t)

	stdout, _, err := execute(t, "series", q2Small, "--tag", "Eval_AverageReturn", "--window", "0", "--log-dir", logDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, ErrCodeInvalidFlag)
}

func TestSeries_RequiresTag(t *testing.T) {
	_, _, err := execute(t, "series", q2Small)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tag")
}

func TestTags(t *testing.T) {
	logDir := writeRuns(t)

	stdout, _, err := execute(t, "tags", q2Small, "--log-dir", logDir)
	require.NoError(t, err)
	assert.Equal(t, "Eval_AverageReturn\nTrain_EnvstepsSoFar\n", stdout)

	stdout, _, err = execute(t, "tags", q2Small, "--log-dir", logDir, "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","data":{"run":"`+q2Small+`","tags":["Eval_AverageReturn","Train_EnvstepsSoFar"]}}`, stdout)
}

func TestTags_NoEventFile(t *testing.T) {
	_, _, err := execute(t, "tags", "missing", "--log-dir", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestAggregate_JSON(t *testing.T) {
	logDir := writeRuns(t)

	stdout, stderr, err := execute(t, "aggregate",
		q2Small,
		"q2_b5000_r0.02_InvertedPendulum-v4_01-10-2025_21-30-02",
		"q2_broken",
		"--tag", "Eval_AverageReturn", "--log-dir", logDir, "--format", "json")
	require.NoError(t, err)

	harness.AssertGolden(t, "aggregate_json", []byte(stdout))
	assert.Contains(t, stderr, "skipping run")
}

func TestAggregate_Text(t *testing.T) {
	logDir := writeRuns(t)

	stdout, _, err := execute(t, "aggregate", q2Small, "q2_empty",
		"--tag", "Eval_AverageReturn", "--log-dir", logDir)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Eval_AverageReturn across 1 run(s)")
	assert.Contains(t, stdout, "skipped q2_empty (empty_log)")
	assert.Contains(t, stdout, "MEAN")
}

func TestAggregate_NoData(t *testing.T) {
	logDir := writeRuns(t)

	stdout, _, err := execute(t, "aggregate", "q2_broken", "q2_empty", "nowhere",
		"--tag", "Eval_AverageReturn", "--log-dir", logDir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNoData, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 3)
}

func TestSeries_Cache(t *testing.T) {
	logDir := writeRuns(t)
	cachePath := filepath.Join(t.TempDir(), "cache.db")

	for i := 0; i < 2; i++ {
		stdout, _, err := execute(t, "series", q2Small, "--tag", "Eval_AverageReturn", "--window", "2",
			"--log-dir", logDir, "--cache", cachePath, "--format", "json")
		require.NoError(t, err)
		harness.AssertGolden(t, "series_json", []byte(stdout))
	}

	s, err := store.Open(cachePath)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
