package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// setupTestDir points the package at a temporary log directory and resets global state
func setupTestDir(t *testing.T) {
	t.Helper()

	tempDir := t.TempDir()

	origLogDir := logDir
	origInitErr := initErr
	origSessionID := sessionID

	logDir = tempDir
	initErr = nil
	initOnce = sync.Once{}
	sessionID = ""
	sessionIDOnce = sync.Once{}
	t.Setenv(LevelEnv, "debug")

	t.Cleanup(func() {
		logDir = origLogDir
		initErr = origInitErr
		initOnce = sync.Once{}
		sessionID = origSessionID
		sessionIDOnce = sync.Once{}
	})
}

func TestNewLogger(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("collector")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.component != "collector" {
		t.Errorf("Expected component 'collector', got %q", logger.component)
	}
	if logger.SessionID() == "" {
		t.Error("Expected non-empty session ID")
	}
	if _, err := os.Stat(logger.LogPath()); err != nil {
		t.Errorf("Log file does not exist at %s: %v", logger.LogPath(), err)
	}
	if !strings.HasSuffix(filepath.Base(logger.LogPath()), "-promptlens.log") {
		t.Errorf("Unexpected log file name %q", filepath.Base(logger.LogPath()))
	}
}

func TestLoggerFormatting(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("queue")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Printf("Run %d accepted", 7)
	logger.Debugf("Debug message")
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	content, err := os.ReadFile(logger.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	for _, pattern := range []string{
		"[queue] [INFO] Run 7 accepted",
		"[queue] [DEBUG] Debug message",
		"[queue] [WARN] Warning message",
		"[queue] [ERROR] Error message",
	} {
		if !strings.Contains(string(content), pattern) {
			t.Errorf("Log content missing expected pattern: %q\nContent:\n%s", pattern, content)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("tabs", &buf, LevelWarn)

	logger.Debugf("hidden debug")
	logger.Infof("hidden info")
	logger.Warnf("shown warn")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Entries below the minimum level were written:\n%s", out)
	}
	if !strings.Contains(out, "[tabs] [WARN] shown warn") {
		t.Errorf("Expected warning entry, got:\n%s", out)
	}
}

func TestWithSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	root := NewWriterLogger("cli", &buf, LevelDebug)
	child := root.With("collector")

	root.Infof("from root")
	child.Infof("from child")

	out := buf.String()
	if !strings.Contains(out, "[cli] [INFO] from root") || !strings.Contains(out, "[collector] [INFO] from child") {
		t.Errorf("Expected both components in output, got:\n%s", out)
	}
	if child.SessionID() != root.SessionID() {
		t.Error("Derived logger should keep the session ID")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for name, want := range tests {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNopLoggerAndNilSafety(t *testing.T) {
	NewNopLogger().Errorf("discarded")

	var nilLogger *Logger
	nilLogger.Infof("nil loggers are ignored")
}

func TestLoggerClose(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}
