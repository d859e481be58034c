package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFields_Constructors(t *testing.T) {
	now := time.Now()

	require.Equal(t, Field{Key: "k", Value: "v"}, String("k", "v"))
	require.Equal(t, Field{Key: "k", Value: 1}, Int("k", 1))
	require.Equal(t, Field{Key: "k", Value: int64(2)}, Int64("k", int64(2)))
	require.Equal(t, Field{Key: "k", Value: now}, Time("k", now))
	require.Equal(t, Field{Key: "k", Value: time.Second}, Duration("k", time.Second))
}

func TestNopLogger_NoPanic(t *testing.T) {
	l := Nop()
	l.Debug("d", String("k", "v"))
	l.Info("i", Int("n", 1))
	l.Warn("w")
	l.Error("e")
	require.NotNil(t, l.With(String("x", "y")))
	require.NoError(t, l.Sync())
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func TestNew_SlogJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "json", "info").With(String("service", "lifecycle"))

	l.Debug("hidden")
	l.Info("delivery transitioned", String("reference", "REF-1"), Int64("seq", 2))
	require.NoError(t, l.Sync())

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	require.Equal(t, "delivery transitioned", lines[0]["msg"])
	require.Equal(t, "lifecycle", lines[0]["service"])
	require.Equal(t, "REF-1", lines[0]["reference"])
}

func TestNew_Zap(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "zap", "debug")

	l.Debug("dbg")
	l.Warn("careful", String("k", "v"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	require.Equal(t, "careful", lines[1]["msg"])
	require.Equal(t, "warn", lines[1]["level"])
	require.Equal(t, "v", lines[1]["k"])
}

func TestZapAdapter_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapAdapter(zap.New(core)).With(String("component", "notifier"))

	l.Error("publish failed", Any("error", errors.New("broker down")), Int("attempt", 3))
	l.Info("ok")

	entries := logs.All()
	require.Len(t, entries, 2)
	ctx := entries[0].ContextMap()
	require.Equal(t, "notifier", ctx["component"])
	require.Equal(t, "broker down", ctx["error"])
	require.EqualValues(t, 3, ctx["attempt"])
	require.Equal(t, zapcore.InfoLevel, entries[1].Level)
}
