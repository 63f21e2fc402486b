package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	SetLevel(LevelWarn)
	defer SetLevel(LevelInfo)

	Debug("debug %d", 1)
	Info("info %d", 2)
	Warn("warn %d", 3)
	Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below the minimum level were logged: %q", out)
	}
	if !strings.Contains(out, "warn 3") || !strings.Contains(out, "error 4") {
		t.Errorf("expected warn and error messages, got: %q", out)
	}
}

func TestPrefix(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	Info("hello")

	if !strings.HasPrefix(buf.String(), "[THYMELAB] ") {
		t.Errorf("expected [THYMELAB] prefix, got: %q", buf.String())
	}
}

func TestGetLevel(t *testing.T) {
	SetLevel(LevelDebug)
	defer SetLevel(LevelInfo)

	if GetLevel() != LevelDebug {
		t.Errorf("expected LevelDebug, got %v", GetLevel())
	}
}
