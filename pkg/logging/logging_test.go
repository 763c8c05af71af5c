package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, &Config{Level: slog.LevelWarn, JSON: true}))

	logger.Info("hidden")
	logger.Warn("shown", "source", "bbc")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"source":"bbc"`)
}

func TestSetup_WritesToFile(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	path := filepath.Join(t.TempDir(), "logs", "newsman.log")
	closer, err := Setup(&Config{Level: slog.LevelInfo, File: path})
	require.NoError(t, err)

	slog.Info("ingestion finished", "stored", 3)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ingestion finished")
	assert.Contains(t, string(data), "stored=3")
}
