package application

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// UploadConfig bounds upload batches and governs stored-run retention.
type UploadConfig struct {
	MaxFiles      int    `yaml:"max_files"`
	MaxFileBytes  int64  `yaml:"max_file_bytes"`
	RetentionDays int    `yaml:"retention_days"`
	SweepSchedule string `yaml:"sweep_schedule"`
}

// LoadUploadConfig loads upload limits from env, optionally overridden by a
// yaml file named in UPLOAD_CONFIG.
func LoadUploadConfig() (UploadConfig, error) {
	cfg := UploadConfig{
		MaxFiles:      getenvIntDefault("UPLOAD_MAX_FILES", 20),
		MaxFileBytes:  getenvInt64Default("UPLOAD_MAX_FILE_BYTES", 10<<20),
		RetentionDays: getenvIntDefault("RUN_RETENTION_DAYS", 7),
		SweepSchedule: getenvDefault("RUN_SWEEP_SCHEDULE", "0 3 * * *"),
	}

	if path := os.Getenv("UPLOAD_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.MaxFiles <= 0 {
		return cfg, errors.New("upload config: max files must be positive")
	}
	if cfg.MaxFileBytes <= 0 {
		return cfg, errors.New("upload config: max file bytes must be positive")
	}
	if cfg.RetentionDays <= 0 {
		return cfg, errors.New("upload config: retention days must be positive")
	}
	if cfg.SweepSchedule == "" {
		return cfg, errors.New("upload config: sweep schedule required")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvInt64Default(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
