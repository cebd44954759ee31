package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warn", "json", &buf)
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Str("class", "gpu").Msg("hardware class unknown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"class":"gpu"`)
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("", "console", &buf)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Msg("report persisted")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "INF")
	assert.Contains(t, buf.String(), "report persisted")
}

func TestBadLevel(t *testing.T) {
	_, err := New("loud", "json", &bytes.Buffer{})
	assert.ErrorContains(t, err, "log level")
}
