package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWithFileMirrorsOutput(t *testing.T) {
	orig := Log
	t.Cleanup(func() { Log = orig })

	path := filepath.Join(t.TempDir(), "pipeline.log")
	f, err := WithFile(path)
	if err != nil {
		t.Fatalf("WithFile() error: %v", err)
	}
	t.Cleanup(func() { f.Close() })

	Log.Info().Str("run", "nightly").Msg("pipeline started")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "pipeline started") {
		t.Errorf("log file missing mirrored entry, got: %s", data)
	}
}

func TestWithFileBadPath(t *testing.T) {
	orig := Log
	t.Cleanup(func() { Log = orig })

	if _, err := WithFile(filepath.Join(t.TempDir(), "missing", "dir", "x.log")); err == nil {
		t.Error("expected error for unwritable path")
	}
}
