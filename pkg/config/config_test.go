package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultHasSaneValues(t *testing.T) {
	cfg := Default()
	if cfg.DataDir == "" {
		t.Error("expected a non-empty default data dir")
	}
	if cfg.BufferPoolMax <= 0 {
		t.Error("expected a positive default buffer pool size")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storemy.yaml")
	contents := "data_dir: /var/lib/storemy\nbuffer_pool_max_pages: 200\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/var/lib/storemy" {
		t.Errorf("DataDir = %q, want /var/lib/storemy", cfg.DataDir)
	}
	if cfg.BufferPoolMax != 200 {
		t.Errorf("BufferPoolMax = %d, want 200", cfg.BufferPoolMax)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Logging.Level = %q, want default INFO to survive an unmentioned field", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestToLoggingConfig(t *testing.T) {
	cfg := Default()
	cfg.Logging.OutputPath = "logs/db.log"
	lc := cfg.ToLoggingConfig()
	if lc.OutputPath != "logs/db.log" {
		t.Errorf("OutputPath = %q, want logs/db.log", lc.OutputPath)
	}
	if string(lc.Level) != "INFO" {
		t.Errorf("Level = %q, want INFO", lc.Level)
	}
}
