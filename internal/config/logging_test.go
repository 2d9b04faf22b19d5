package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"transmittal-2024-01-01T00-00-00.log",
		"transmittal-2024-01-02T00-00-00.log",
		"transmittal-2024-01-03T00-00-00.log",
		"unrelated.txt",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := cleanupOldLogs(dir, 2); err != nil {
		t.Fatalf("cleanupOldLogs() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, names[0])); !os.IsNotExist(err) {
		t.Errorf("oldest log should have been removed")
	}
	for _, name := range names[1:] {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s should still exist: %v", name, err)
		}
	}
}

func TestSetupLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	f, err := SetupLogFile(dir, 3)
	if err != nil {
		t.Fatalf("SetupLogFile() error = %v", err)
	}
	defer f.Close()

	matches, _ := filepath.Glob(filepath.Join(dir, logFilePattern))
	if len(matches) != 1 {
		t.Errorf("expected 1 log file, got %d", len(matches))
	}
}
