package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "rid-42")
	assert.Equal(t, "rid-42", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))
}

func TestLoggerTagsRequestAndOperation(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{requestID: "rid-7", base: slog.New(newHandler(&buf, "debug", "production"))}

	l.With("project_id", "p-1").LogError("run_build", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, `"request_id":"rid-7"`)
	assert.Contains(t, out, `"operation":"run_build"`)
	assert.Contains(t, out, `"project_id":"p-1"`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestNewLoggerUnknownRequest(t *testing.T) {
	l := NewLogger(context.Background())
	assert.Equal(t, "unknown", l.requestID)
}
