package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Coordination.Dir != filepath.Join(".ork", "coordination") {
		t.Errorf("coordination dir = %q, want %q", cfg.Coordination.Dir, filepath.Join(".ork", "coordination"))
	}
	if cfg.Coordination.DefaultTTLSeconds != 300 {
		t.Errorf("default ttl = %d, want 300", cfg.Coordination.DefaultTTLSeconds)
	}
	if cfg.Coordination.Strict {
		t.Error("strict mode should default to false")
	}
	if !cfg.Coordination.UseFlock {
		t.Error("flock should default to true")
	}
	if cfg.Recovery.StalenessHours != 24 {
		t.Errorf("staleness hours = %d, want 24", cfg.Recovery.StalenessHours)
	}
	if cfg.Recovery.Keep {
		t.Error("recovery.keep should default to false")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if errs := Default().Validate(); len(errs) > 0 {
		t.Errorf("default config should validate, got: %v", ValidationErrors(errs))
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()

	if got := cfg.Coordination.DefaultTTL(); got != 300*time.Second {
		t.Errorf("DefaultTTL() = %v, want %v", got, 300*time.Second)
	}
	if got := cfg.Recovery.StalenessThreshold(); got != 24*time.Hour {
		t.Errorf("StalenessThreshold() = %v, want %v", got, 24*time.Hour)
	}
}

func TestDirResolution(t *testing.T) {
	cfg := Default()
	root := filepath.Join("/", "home", "user", "project")

	if got := cfg.CoordinationDir(root); got != filepath.Join(root, ".ork", "coordination") {
		t.Errorf("CoordinationDir() = %q", got)
	}
	if got := cfg.MemoryDir(root); got != filepath.Join(root, ".ork", "memory") {
		t.Errorf("MemoryDir() = %q", got)
	}
	if got := cfg.ArchiveDir(root); got != filepath.Join(root, ".ork", "memory", "archive") {
		t.Errorf("ArchiveDir() = %q", got)
	}

	// Absolute paths are left alone
	cfg.Memory.Dir = filepath.Join("/", "var", "ork")
	if got := cfg.MemoryDir(root); got != filepath.Join("/", "var", "ork") {
		t.Errorf("MemoryDir() with absolute dir = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*Config)
		wantField  string
		wantErrors int
	}{
		{
			name:       "valid config",
			modify:     func(c *Config) {},
			wantErrors: 0,
		},
		{
			name:       "zero ttl",
			modify:     func(c *Config) { c.Coordination.DefaultTTLSeconds = 0 },
			wantField:  "coordination.default_ttl_seconds",
			wantErrors: 1,
		},
		{
			name:       "negative ttl",
			modify:     func(c *Config) { c.Coordination.DefaultTTLSeconds = -5 },
			wantField:  "coordination.default_ttl_seconds",
			wantErrors: 1,
		},
		{
			name:       "empty coordination dir",
			modify:     func(c *Config) { c.Coordination.Dir = "" },
			wantField:  "coordination.dir",
			wantErrors: 1,
		},
		{
			name:       "empty memory dir",
			modify:     func(c *Config) { c.Memory.Dir = "" },
			wantField:  "memory.dir",
			wantErrors: 1,
		},
		{
			name:       "empty archive dir name",
			modify:     func(c *Config) { c.Memory.ArchiveDirName = "" },
			wantField:  "memory.archive_dir_name",
			wantErrors: 1,
		},
		{
			name:       "zero staleness",
			modify:     func(c *Config) { c.Recovery.StalenessHours = 0 },
			wantField:  "recovery.staleness_hours",
			wantErrors: 1,
		},
		{
			name:       "invalid log level",
			modify:     func(c *Config) { c.Logging.Level = "verbose" },
			wantField:  "logging.level",
			wantErrors: 1,
		},
		{
			name: "multiple errors",
			modify: func(c *Config) {
				c.Coordination.DefaultTTLSeconds = 0
				c.Recovery.StalenessHours = -1
			},
			wantErrors: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			errs := cfg.Validate()
			if len(errs) != tt.wantErrors {
				t.Fatalf("Validate() returned %d errors, want %d: %v", len(errs), tt.wantErrors, errs)
			}
			if tt.wantErrors == 1 && errs[0].Field != tt.wantField {
				t.Errorf("error field = %q, want %q", errs[0].Field, tt.wantField)
			}
		})
	}
}

func TestValidationErrorsFormatting(t *testing.T) {
	errs := ValidationErrors{
		{Field: "coordination.default_ttl_seconds", Value: 0, Message: "must be positive"},
		{Field: "logging.level", Value: "verbose", Message: "must be one of: debug, info, warn, error"},
	}

	msg := errs.Error()
	if !strings.Contains(msg, "2 validation errors") {
		t.Errorf("Error() = %q, want count prefix", msg)
	}
	if !strings.Contains(msg, "coordination.default_ttl_seconds") {
		t.Errorf("Error() = %q, want field names", msg)
	}

	single := ValidationErrors{errs[0]}
	if single.Error() != errs[0].Error() {
		t.Error("single error should format without count prefix")
	}

	if (ValidationErrors{}).Error() != "" {
		t.Error("empty ValidationErrors should format as empty string")
	}
}
