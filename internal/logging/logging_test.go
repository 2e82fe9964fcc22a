package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"platestack/internal/config"
)

func fileOutputConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Logging.Level = "info"
	cfg.Logging.FileOutput = true
	cfg.Logging.LogDir = t.TempDir()
	return cfg
}

func TestSetupWritesDatedFileAndSymlink(t *testing.T) {
	cfg := fileOutputConfig(t)

	logger, err := Setup(cfg)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	logger.Info("log file smoke test")

	dated := filepath.Join(cfg.Logging.LogDir,
		fmt.Sprintf("platestack-%s.log", time.Now().Format("2006-01-02")))
	if _, err := os.Stat(dated); err != nil {
		t.Fatalf("expected dated log file %s: %v", dated, err)
	}

	current := filepath.Join(cfg.Logging.LogDir, "platestack-current.log")
	target, err := os.Readlink(current)
	if err != nil {
		t.Fatalf("expected current-log symlink: %v", err)
	}
	if target != filepath.Base(dated) {
		t.Fatalf("symlink points at %q, want %q", target, filepath.Base(dated))
	}
}

func TestSetupSurvivesSymlinkFailure(t *testing.T) {
	cfg := fileOutputConfig(t)

	// A non-empty directory squatting on the symlink path makes both the
	// removal and the symlink creation fail.
	squatter := filepath.Join(cfg.Logging.LogDir, "platestack-current.log")
	if err := os.MkdirAll(filepath.Join(squatter, "inner"), 0o755); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	logger, err := Setup(cfg)
	if err != nil {
		t.Fatalf("symlink failure must not abort setup: %v", err)
	}
	logger.Info("still usable after symlink failure")

	dated := filepath.Join(cfg.Logging.LogDir,
		fmt.Sprintf("platestack-%s.log", time.Now().Format("2006-01-02")))
	if _, err := os.Stat(dated); err != nil {
		t.Fatalf("expected dated log file despite symlink failure: %v", err)
	}
}

func TestNewParsesLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		if logger := New(level, "text"); logger == nil {
			t.Fatalf("expected logger for level %q", level)
		}
	}
	if logger := New("info", "json"); logger == nil {
		t.Fatalf("expected json logger")
	}
}
