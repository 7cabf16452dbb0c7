package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBufferedLogger(buf *bytes.Buffer, levels ...slog.Level) *slog.Logger {
	base := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewConditionalSourceHandler(base, levels...))
}

func TestConditionalSourceHandler_Levels(t *testing.T) {
	tests := []struct {
		name       string
		log        func(*slog.Logger)
		levels     []slog.Level
		wantSource bool
	}{
		{"info not listed", func(l *slog.Logger) { l.Info("reserve") }, []slog.Level{slog.LevelWarn, slog.LevelError}, false},
		{"warn listed", func(l *slog.Logger) { l.Warn("reserve") }, []slog.Level{slog.LevelWarn, slog.LevelError}, true},
		{"error listed", func(l *slog.Logger) { l.Error("reserve") }, []slog.Level{slog.LevelError}, true},
		{"debug mode lists info", func(l *slog.Logger) { l.Info("reserve") }, []slog.Level{slog.LevelDebug, slog.LevelInfo}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(newBufferedLogger(&buf, tt.levels...))
			assert.Equal(t, tt.wantSource, bytes.Contains(buf.Bytes(), []byte("source=")), buf.String())
		})
	}
}

func TestConditionalSourceHandler_KeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferedLogger(&buf, slog.LevelError).With("store_token", "abc").WithGroup("req")
	l.Info("status", "path", "/api/v1/health")

	out := buf.String()
	assert.Contains(t, out, "store_token=abc")
	assert.Contains(t, out, "req.path=/api/v1/health")
	assert.NotContains(t, out, "source=")
}

func TestConditionalSourceHandler_Enabled(t *testing.T) {
	base := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})
	h := NewConditionalSourceHandler(base, slog.LevelError)

	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewNop(t *testing.T) {
	l := NewNop().Named("ledger").With("store_token", "abc")
	assert.NotPanics(t, func() { l.Infow("reserved", "count", 1) })
}
