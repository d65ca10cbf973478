package shared

import (
	"bytes"
	"testing"
)

func TestNewRowVersion(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		v := NewRowVersion()
		if v == "" {
			t.Fatal("row version must not be empty")
		}
		if seen[v] {
			t.Fatalf("row version %s issued twice", v)
		}
		seen[v] = true
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		logger.Info("hello", "key", "value")

		if buf.Len() == 0 {
			t.Error("logger should write to the provided writer")
		}
	})

	t.Run("WithLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "test")

		logger.Info("hello")

		if !bytes.Contains(buf.Bytes(), []byte("component")) {
			t.Error("child logger should carry its key-value pairs")
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := t.TempDir() + "/nested/test.log"

		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}

		logger.Info("hello")
	})
}
