package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBufferedLogger(buf *bytes.Buffer, level LogLevel) *SessionMeshLogger {
	return NewLogger(&LoggerConfig{Level: level, Format: "text", Output: buf})
}

func TestLoggerEmitsKeyValueAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferedLogger(&buf, LogLevelInfo)

	l.Info("request started", "identity", "u1", "correlation_id", "c1")

	out := buf.String()
	assert.Contains(t, out, `msg="request started"`)
	assert.Contains(t, out, "identity=u1")
	assert.Contains(t, out, "correlation_id=c1")
	assert.NotContains(t, out, "%!", "args must become attributes, not format verbs")
}

func TestLoggerContextualFields(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferedLogger(&buf, LogLevelInfo).
		WithComponent("coordinator").
		WithIdentity("u1", "c1").
		WithContext("session", "s1")

	l.Info("turn completed", "duration", "5ms")

	out := buf.String()
	assert.Contains(t, out, "component=coordinator")
	assert.Contains(t, out, "identity=u1")
	assert.Contains(t, out, "correlation_id=c1")
	assert.Contains(t, out, "session=s1")
	assert.Contains(t, out, "duration=5ms")
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferedLogger(&buf, LogLevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestArgsToAttrs(t *testing.T) {
	attrs := argsToAttrs([]any{"key", "value", slog.Int("n", 7), "dangling"})
	assert.Len(t, attrs, 3)
	assert.Equal(t, "key", attrs[0].Key)
	assert.Equal(t, "value", attrs[0].Value.String())
	assert.Equal(t, "n", attrs[1].Key)
	assert.Equal(t, "!BADKEY", attrs[2].Key)
}

func TestSlogAdapterForwardsAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil)))

	l.Info("request started", "identity", "u1")

	out := buf.String()
	assert.Contains(t, out, `msg="request started"`)
	assert.Contains(t, out, "identity=u1")
}
