package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, Options{Level: "info", Format: "json"})
	require.NoError(t, err)
	log.Debug().Msg("hidden")
	log.Info().Str("unit", "shapes").Msg("compiled")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "shapes", entry["unit"])
	assert.Equal(t, "compiled", entry["message"])
}

func TestAutoFormatOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, Options{})
	require.NoError(t, err)
	log.Info().Msg("quiet")
	assert.Zero(t, buf.Len(), "warn is the default level")
	log.Warn().Msg("loud")
	assert.Contains(t, buf.String(), `"message":"loud"`)
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, Options{Level: "debug", Format: "console"})
	require.NoError(t, err)
	log.Debug().Str("class", "Point").Msg("defined")
	out := buf.String()
	assert.Contains(t, out, "defined")
	assert.Contains(t, out, "class=Point")
	assert.NotContains(t, out, "\x1b[", "no color off a terminal")
}

func TestBadLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Options{Level: "loudest"})
	assert.Error(t, err)
}
