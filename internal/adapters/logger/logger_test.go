package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"go.trai.ch/mend/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestLogger_Info(t *testing.T) {
	l, ok := logger.New().(*logger.Logger)
	if !ok {
		t.Fatal("New did not return *logger.Logger")
	}

	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.Info("hello world")

	out := buf.String()
	if !strings.Contains(out, "hello world") {
		t.Errorf("expected output to contain message, got %q", out)
	}
	if !strings.Contains(out, "level=INFO") {
		t.Errorf("expected INFO level, got %q", out)
	}
}

func TestLogger_Warn(t *testing.T) {
	l := logger.New().(*logger.Logger)

	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.Warn("careful")

	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("expected WARN level, got %q", buf.String())
	}
}

func TestLogger_Error(t *testing.T) {
	l := logger.New().(*logger.Logger)

	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.Error(zerr.New("boom"))

	out := buf.String()
	if !strings.Contains(out, "boom") {
		t.Errorf("expected error message in output, got %q", out)
	}
	if !strings.Contains(out, "level=ERROR") {
		t.Errorf("expected ERROR level, got %q", out)
	}
}
