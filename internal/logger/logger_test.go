package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "pretty", "info").With("lang", "ita")

	log.Debug("hidden")
	log.Info("transcribed", "output", "로마")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "transcribed")
	assert.Contains(t, out, "lang"+reset+"=ita")
	assert.Contains(t, out, "output"+reset+"=로마")
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "json", "debug").Debug("rule applied", "pattern", "l{@}")
	assert.Contains(t, buf.String(), `"pattern":"l{@}"`)
}
