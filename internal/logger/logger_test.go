package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetSilentMode(true)

	log := Component("bluray")
	log.Info().Str("button", "SELECT").Msg("pressed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "bluray", entry["component"])
	assert.Equal(t, "SELECT", entry["button"])
	assert.Equal(t, "pressed", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	levels := map[string]zerolog.Level{
		LOG_DEBUG: zerolog.DebugLevel,
		LOG_INFO:  zerolog.InfoLevel,
		LOG_WARN:  zerolog.WarnLevel,
		LOG_ERROR: zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for name, want := range levels {
		SetLevel(name)
		assert.Equal(t, want, zerolog.GlobalLevel(), name)
	}
}

func TestSilentModeDiscards(t *testing.T) {
	SetSilentMode(true)
	assert.NotPanics(t, func() {
		log := New()
		log.Info().Msg("nobody hears this")
	})
}
