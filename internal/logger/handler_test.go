package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyHandlerRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug", true)

	log.Info("login succeeded", "username", "alice", "token", "abc.def.ghi", "Authorization", "Bearer abc")

	out := buf.String()
	assert.Contains(t, out, "INFO  login succeeded")
	assert.Contains(t, out, "username=alice")
	assert.Contains(t, out, "token=[REDACTED]")
	assert.Contains(t, out, "Authorization=[REDACTED]")
	assert.NotContains(t, out, "abc.def.ghi")
}

func TestPrettyHandlerLevelAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", true)

	log.Info("hidden")
	log.WithGroup("remote").With("op", "list_positions").Warn("call failed", "status", 500)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "remote.op=list_positions")
	assert.Contains(t, out, "remote.status=500")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}
