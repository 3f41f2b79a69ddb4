package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{input: "debug", expected: zerolog.DebugLevel},
		{input: "", expected: zerolog.InfoLevel},
		{input: "INFO", expected: zerolog.InfoLevel},
		{input: "warning", expected: zerolog.WarnLevel},
		{input: "error", expected: zerolog.ErrorLevel},
		{input: "nonsense", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false, zerolog.InfoLevel)
	l.Info().Str("track", "Song A").Msg("enriched")

	assert.Contains(t, buf.String(), `"track":"Song A"`)
	assert.Contains(t, buf.String(), `"message":"enriched"`)
}

func TestShortCaller(t *testing.T) {
	file := filepath.Join("root", "module", "internal", "app", "engine.go")
	assert.Equal(t, filepath.Join("app", "engine.go")+":12", shortCaller(0, file, 12))
	assert.Equal(t, "engine.go:3", shortCaller(0, "engine.go", 3))
}

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	closeFn, err := Init(Config{Output: path, Level: "info"})
	require.NoError(t, err)
	require.NoError(t, closeFn())

	_, err = os.Stat(path)
	assert.NoError(t, err)

	_, err = Init(Config{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}
