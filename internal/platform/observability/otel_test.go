package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestNewLogger_WritesJSONAtLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)
	logger.Info("dropped")
	logger.Warn("kept", slog.Int64("order.id", 7))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, float64(7), entry["order.id"])
	assert.Contains(t, entry, "source")
}

func TestInit_RequiresServiceName(t *testing.T) {
	_, _, err := Init(context.Background(), Config{})
	require.Error(t, err)
}

func TestInstruments_NilSafe(t *testing.T) {
	var i *Instruments
	assert.NotNil(t, i.Tracer("x"))
	assert.NotNil(t, i.Meter("x"))
}
