package xlog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newCapturingLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	h := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})
	return NewWithHandler(h)
}

func TestInfoWritesJSONRecord(t *testing.T) {
	var buf bytes.Buffer
	l := newCapturingLogger(&buf, slog.LevelInfo)
	l.Info("block executed", "number", 7)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v (%s)", err, buf.String())
	}
	if record["msg"] != "block executed" {
		t.Fatalf("msg = %v, want %q", record["msg"], "block executed")
	}
	if record["number"] != float64(7) {
		t.Fatalf("number = %v, want 7", record["number"])
	}
}

func TestDebugSuppressedBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newCapturingLogger(&buf, slog.LevelInfo)
	l.Debug("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("Debug output should be suppressed at Info level, got %q", buf.String())
	}
}

func TestModuleTagsSubsystem(t *testing.T) {
	var buf bytes.Buffer
	l := newCapturingLogger(&buf, slog.LevelInfo)
	vmLogger := l.Module("vm")
	vmLogger.Warn("out of gas")

	if !strings.Contains(buf.String(), `"module":"vm"`) {
		t.Fatalf("expected module=vm in output, got %s", buf.String())
	}
}

func TestWithAddsKeyValueContext(t *testing.T) {
	var buf bytes.Buffer
	l := newCapturingLogger(&buf, slog.LevelInfo)
	child := l.With("txHash", "0xabc")
	child.Error("reverted")

	if !strings.Contains(buf.String(), `"txHash":"0xabc"`) {
		t.Fatalf("expected txHash context in output, got %s", buf.String())
	}
}

func TestSetDefaultAndPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	l := newCapturingLogger(&buf, slog.LevelInfo)
	prev := Default()
	defer SetDefault(prev)

	SetDefault(l)
	Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("expected package-level Info to reach the new default logger, got %s", buf.String())
	}
}

func TestSetDefaultIgnoresNil(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	SetDefault(nil)
	if Default() != prev {
		t.Fatal("SetDefault(nil) should be a no-op")
	}
}
