package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewZerologAdapterWithLogger(zerolog.New(&buf))

	adapter.Info("batch complete",
		String("last_id", "42"),
		Int("processed", 3),
		Bool("ok", true),
		Duration("took", 2*time.Second),
		Err(errors.New("boom")),
	)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "batch complete", line["message"])
	assert.Equal(t, "42", line["last_id"])
	assert.EqualValues(t, 3, line["processed"])
	assert.Equal(t, true, line["ok"])
	assert.Equal(t, "boom", line["error"])
}

func TestNewConsoleLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewConsoleLogger(&buf, "warn", true)
	require.NoError(t, err)

	adapter := NewZerologAdapterWithLogger(logger)
	adapter.Info("hidden")
	adapter.Debug("hidden")
	assert.Empty(t, buf.String())

	adapter.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewConsoleLogger_InvalidLevel(t *testing.T) {
	_, err := NewConsoleLogger(&bytes.Buffer{}, "loud", false)
	assert.Error(t, err)
}
