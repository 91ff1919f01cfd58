package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/aquaassist/internal/history"
	"github.com/abhisek/aquaassist/internal/water"
)

// isolate points configuration at empty temp dirs and clears AQUA_* vars.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	for _, k := range []string{
		"AQUA_CONFIG", "AQUA_HISTORY_BACKEND", "AQUA_HISTORY_PATH", "AQUA_HISTORY_DSN",
		"AQUA_PREDICTOR", "AQUA_PREDICTOR_URL", "AQUA_PREDICTOR_TIMEOUT", "AQUA_CATALOG",
		"AQUA_OPENAI_API_KEY", "AQUA_NOTIFY", "AQUA_LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("AQUA_LOG_LEVEL", "error")
	return filepath.Join(t.TempDir(), "pond_history.csv")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestClassify_DefaultsAreSafe(t *testing.T) {
	hist := isolate(t)

	out, _, err := execute(t, "classify", "--history", hist)
	require.NoError(t, err)

	plain := ansi.Strip(out)
	assert.Contains(t, plain, "Water Quality: Safe")
	assert.Contains(t, plain, "Saved to history (1 records)")
	assert.Contains(t, plain, "Pond Parameters")
}

func TestClassify_JSON(t *testing.T) {
	hist := isolate(t)

	out, _, err := execute(t, "classify", "--history", hist, "--do", "2.5", "--json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Unsafe", got["label"])
	assert.Equal(t, true, got["recorded"])
	assert.Equal(t, float64(1), got["count"])
	assert.NotEmpty(t, got["id"])
	assert.NotEmpty(t, got["message"])
}

func TestClassify_OutOfRangeRecordsNothing(t *testing.T) {
	hist := isolate(t)

	_, _, err := execute(t, "classify", "--history", hist, "--ph", "9.5")
	var verr *water.ErrValidation
	require.ErrorAs(t, err, &verr)

	out, _, err := execute(t, "history", "--history", hist, "--json")
	require.NoError(t, err)
	var h historyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &h))
	assert.Equal(t, 0, h.Total)
	assert.Empty(t, h.Records)
}

func TestClassify_SpeakWithoutSpeechFails(t *testing.T) {
	hist := isolate(t)

	_, _, err := execute(t, "classify", "--history", hist, "--speak", filepath.Join(t.TempDir(), "a.mp3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "speech output unavailable")
}

// unwritableHistory returns a history path that opens but refuses appends.
func unwritableHistory(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "pond_history.csv")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep"), []byte("x"), 0o644))
	return dir
}

func TestClassify_FailedAppendExitsNotRecorded(t *testing.T) {
	isolate(t)
	hist := unwritableHistory(t)

	out, _, err := execute(t, "classify", "--history", hist, "--no-chart")
	var nr *ErrNotRecorded
	require.ErrorAs(t, err, &nr)
	var se *history.ErrStore
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, ExitNotRecorded, ExitCode(err))

	plain := ansi.Strip(out)
	assert.Contains(t, plain, "Water Quality: Safe")
	assert.Contains(t, plain, "History not saved")
	assert.NotContains(t, plain, "Saved to history")
}

func TestVoice_FailedAppendJSON(t *testing.T) {
	isolate(t)
	hist := unwritableHistory(t)

	out, _, err := execute(t, "voice", "--history", hist, "--text", "pH seven", "--json")
	assert.Equal(t, ExitNotRecorded, ExitCode(err))

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, false, got["recorded"])
	assert.NotEmpty(t, got["label"])
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitFailure, ExitCode(&water.ErrValidation{Field: "pH"}))
	wrapped := fmt.Errorf("run: %w", &ErrNotRecorded{Err: &history.ErrStore{Op: "append", Err: errors.New("disk full")}})
	assert.Equal(t, ExitNotRecorded, ExitCode(wrapped))
}

func TestHistory_ListsInOrder(t *testing.T) {
	hist := isolate(t)

	_, _, err := execute(t, "classify", "--history", hist)
	require.NoError(t, err)
	_, _, err = execute(t, "classify", "--history", hist, "--do", "4.0")
	require.NoError(t, err)

	out, _, err := execute(t, "history", "--history", hist, "--json")
	require.NoError(t, err)
	var h historyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &h))
	require.Equal(t, 2, h.Total)
	assert.Equal(t, "Safe", string(h.Records[0].Label))
	assert.Equal(t, "Moderate", string(h.Records[1].Label))

	out, _, err = execute(t, "history", "--history", hist, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, ansi.Strip(out), "Showing 1 of 2 records")
}

func TestHistory_Empty(t *testing.T) {
	hist := isolate(t)

	out, _, err := execute(t, "history", "--history", hist)
	require.NoError(t, err)
	assert.Contains(t, out, "No classifications recorded yet.")
}

func TestVoice_Text(t *testing.T) {
	hist := isolate(t)

	out, stderr, err := execute(t, "voice", "--history", hist,
		"--text", "pH seven, oxygen two point five", "--json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Heard: pH, DO")

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Unsafe", got["label"])
}

func TestVoice_RequiresExactlyOneSource(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "voice")
	require.Error(t, err)
	_, _, err = execute(t, "voice", "--text", "ph seven", "--audio", "x.wav")
	require.Error(t, err)
}

func TestVoice_NothingHeard(t *testing.T) {
	hist := isolate(t)

	_, _, err := execute(t, "voice", "--history", hist, "--text", "hello there")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no measurement recognised")
}

func TestCatalog(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "catalog", "--json")
	require.NoError(t, err)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "Safe", entries[0]["label"])
}

func TestInit_Idempotent(t *testing.T) {
	hist := isolate(t)

	for range 2 {
		out, _, err := execute(t, "init", "--history", hist)
		require.NoError(t, err)
		assert.Contains(t, out, "History ready at "+hist+" (0 records)")
	}
	data, err := os.ReadFile(hist)
	require.NoError(t, err)
	assert.Equal(t, "timestamp,pH,salinity,DO,ammonia,prediction\n", string(data))
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "aquaassist (devel)\n", out)
}
