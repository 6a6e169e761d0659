package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jhartl/cpuleds/config"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("pane gone")
}

func TestBufferedMode(t *testing.T) {
	if err := Init(true, config.LoggingConfig{Level: "DEBUG", Format: "text"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	slog.Info("Initial log")

	var tuiPane bytes.Buffer
	if err := SetOutput(&tuiPane); err != nil {
		t.Fatalf("SetOutput failed: %v", err)
	}

	if !strings.Contains(tuiPane.String(), "Initial log") {
		t.Errorf("Expected initial log to be flushed on SetOutput, got: %s", tuiPane.String())
	}

	slog.Info("Live log")

	if !strings.Contains(tuiPane.String(), "Live log") {
		t.Errorf("Expected live log to be written through, got: %s", tuiPane.String())
	}

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestFileLogging(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "cpuleds.log")

	if err := Init(false, config.LoggingConfig{Level: "INFO", Format: "json", File: logFile}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	// Divert the live target away from stderr for the test.
	var live bytes.Buffer
	if err := SetOutput(&live); err != nil {
		t.Fatalf("SetOutput failed: %v", err)
	}

	slog.Info("A file log")
	slog.Debug("Should be filtered")

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "A file log") {
		t.Errorf("Expected log file to contain the message, got: %s", content)
	}
	if strings.Contains(string(content), "Should be filtered") {
		t.Errorf("Debug message should have been filtered at INFO level, got: %s", content)
	}
	if !strings.Contains(string(content), `"msg"`) {
		t.Errorf("Expected JSON format, got: %s", content)
	}
}

func TestSetOutputReportsFlushFailure(t *testing.T) {
	if err := Init(true, config.LoggingConfig{Level: "INFO", Format: "text"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	slog.Info("Buffered before adoption")

	if err := SetOutput(failingWriter{}); err == nil {
		t.Error("Expected SetOutput to report the failed flush")
	}

	// A failed adoption must not lose the buffered messages.
	var out bytes.Buffer
	if err := SetOutput(&out); err != nil {
		t.Fatalf("SetOutput failed: %v", err)
	}
	if !strings.Contains(out.String(), "Buffered before adoption") {
		t.Errorf("Expected buffer to survive a failed adoption, got: %s", out.String())
	}

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestLevelFallback(t *testing.T) {
	if err := Init(true, config.LoggingConfig{Level: "NOTALEVEL", Format: "text"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	var out bytes.Buffer
	if err := SetOutput(&out); err != nil {
		t.Fatalf("SetOutput failed: %v", err)
	}

	slog.Debug("A debug log")
	slog.Info("An info log")

	if strings.Contains(out.String(), "A debug log") {
		t.Errorf("Unknown level should fall back to INFO, got: %s", out.String())
	}
	if !strings.Contains(out.String(), "An info log") {
		t.Errorf("Expected info log at fallback level, got: %s", out.String())
	}

	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}
