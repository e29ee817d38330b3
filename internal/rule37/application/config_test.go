package application

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUploadConfig_Defaults(t *testing.T) {
	cfg, err := LoadUploadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MaxFiles != 20 {
		t.Fatalf("expected default max files 20, got %d", cfg.MaxFiles)
	}
	if cfg.MaxFileBytes != 10<<20 {
		t.Fatalf("expected default max file bytes 10MiB, got %d", cfg.MaxFileBytes)
	}
	if cfg.RetentionDays != 7 {
		t.Fatalf("expected default retention 7 days, got %d", cfg.RetentionDays)
	}
	if cfg.SweepSchedule != "0 3 * * *" {
		t.Fatalf("expected default sweep schedule, got %q", cfg.SweepSchedule)
	}
}

func TestLoadUploadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("UPLOAD_MAX_FILES", "5")
	t.Setenv("RUN_RETENTION_DAYS", "30")

	cfg, err := LoadUploadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MaxFiles != 5 {
		t.Fatalf("expected max files 5, got %d", cfg.MaxFiles)
	}
	if cfg.RetentionDays != 30 {
		t.Fatalf("expected retention 30, got %d", cfg.RetentionDays)
	}
}

func TestLoadUploadConfig_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload.yaml")
	content := "max_files: 2\nmax_file_bytes: 1048576\nretention_days: 1\nsweep_schedule: \"30 2 * * *\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("UPLOAD_CONFIG", path)

	cfg, err := LoadUploadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MaxFiles != 2 || cfg.MaxFileBytes != 1048576 || cfg.RetentionDays != 1 {
		t.Fatalf("yaml overrides not applied: %+v", cfg)
	}
	if cfg.SweepSchedule != "30 2 * * *" {
		t.Fatalf("expected yaml sweep schedule, got %q", cfg.SweepSchedule)
	}
}

func TestLoadUploadConfig_InvalidValues(t *testing.T) {
	t.Setenv("UPLOAD_MAX_FILES", "-1")

	if _, err := LoadUploadConfig(); err == nil {
		t.Fatalf("expected error for negative max files")
	}
}
