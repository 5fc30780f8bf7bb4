package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Debug("hidden")
	logger.Info("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message leaked through info level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("info message missing: %q", out)
	}
}

func TestNewLogger_Timestamps(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Info("stamped")

	// "15:04:05.00" renders as HH:MM:SS.hh at the front of the line.
	out := buf.String()
	if len(out) < 11 || out[2] != ':' || out[5] != ':' || out[8] != '.' {
		t.Errorf("unexpected timestamp prefix: %q", out)
	}
}

func TestProgress_Done(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	p := newProgress(logger)
	p.done("Routed 3 connections")

	out := buf.String()
	if !strings.Contains(out, "Routed 3 connections (") {
		t.Errorf("missing elapsed duration: %q", out)
	}
}

func TestLoggerContext_RoundTrip(t *testing.T) {
	logger := newLogger(&bytes.Buffer{}, log.DebugLevel)
	ctx := withLogger(context.Background(), logger)

	if got := loggerFromContext(ctx); got != logger {
		t.Error("context did not return the attached logger")
	}
}

func TestLoggerContext_Fallback(t *testing.T) {
	if got := loggerFromContext(context.Background()); got == nil {
		t.Error("expected the default logger, got nil")
	}
}
