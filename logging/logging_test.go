package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hmmalign/logging"
)

// TestNew_JSON renames the time key and honours the level.
func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&logging.Config{Output: &buf, Level: slog.LevelInfo})
	l.Debug("hidden")
	l.Info("epoch complete", "epoch", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Contains(t, rec, "ts")
	assert.NotContains(t, rec, "time")
	assert.Equal(t, "epoch complete", rec["msg"])
	assert.Equal(t, 3.0, rec["epoch"])
}

// TestNew_DebugText switches handler and level.
func TestNew_DebugText(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(&logging.Config{Output: &buf, Format: "text", Debug: true})
	l.Debug("visible", "k", "v")
	assert.Contains(t, buf.String(), "msg=visible")
	assert.Contains(t, buf.String(), "k=v")
}

// TestParseLevel maps names to levels.
func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := logging.ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := logging.ParseLevel("loud")
	assert.Error(t, err)
	assert.True(t, logging.ValidFormat("text"))
	assert.False(t, logging.ValidFormat("xml"))
}
