// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/careerlink/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.ErrorContains(t, err, "verbose")
}

func TestSetupWithWritersFansOut(t *testing.T) {
	var stderr, file bytes.Buffer
	log := SetupWithWriters(&stderr, &file, slog.LevelWarn)

	log.Debug("deleted", "id", "nul-2")
	log.Warn("reconciliation cancelled", "remaining", 3)

	assert.NotContains(t, stderr.String(), "deleted")
	assert.Contains(t, stderr.String(), "reconciliation cancelled")

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	require.Len(t, lines, 2)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "deleted", rec["msg"])
	assert.Equal(t, "nul-2", rec["id"])
}

func TestSetupWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "careerlink.log")
	var stderr bytes.Buffer

	log, cleanup, err := Setup(types.LoggingConfig{File: path, Level: "error"}, &stderr)
	require.NoError(t, err)
	log.Info("scan finished", "groups", 2)
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"scan finished"`)
	assert.Empty(t, stderr.String())
}

func TestSetupStderrOnly(t *testing.T) {
	var stderr bytes.Buffer
	log, cleanup, err := Setup(types.LoggingConfig{Level: "info"}, &stderr)
	require.NoError(t, err)
	defer cleanup()

	log.Info("hello")
	assert.Contains(t, stderr.String(), "msg=hello")
}

func TestSetupRejectsBadLevel(t *testing.T) {
	_, _, err := Setup(types.LoggingConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}
