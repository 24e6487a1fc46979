package cliconfig

import (
	"strings"
	"testing"
	"time"
)

func TestCLIConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *CLIConfig)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *CLIConfig) {},
			wantErr: "",
		},
		{
			name: "valid custom values",
			mutate: func(c *CLIConfig) {
				c.CassetteFile = "fixtures/one.json"
				c.Mode = "only-replay"
				c.Strictness = "method-url"
				c.Default = "perform-request"
				c.LogLevel = "debug"
				c.LogFormat = "json"
				c.RedirectLimit = 0
			},
			wantErr: "",
		},
		{
			name:    "no target",
			mutate:  func(c *CLIConfig) { c.CassetteDir = "" },
			wantErr: "one of cassetteDir or cassetteFile must be set",
		},
		{
			name:    "unknown mode",
			mutate:  func(c *CLIConfig) { c.Mode = "record-all" },
			wantErr: "record-all",
		},
		{
			name:    "unknown strictness",
			mutate:  func(c *CLIConfig) { c.Strictness = "loose" },
			wantErr: "unknown stub strictness",
		},
		{
			name:    "unknown default",
			mutate:  func(c *CLIConfig) { c.Default = "ignore" },
			wantErr: "unknown stub default",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *CLIConfig) { c.LogLevel = "trace" },
			wantErr: "unknown log level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *CLIConfig) { c.LogFormat = "xml" },
			wantErr: "unknown log format",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *CLIConfig) { c.Timeout = -time.Second },
			wantErr: "must not be negative",
		},
		{
			name:    "redirect limit too high",
			mutate:  func(c *CLIConfig) { c.RedirectLimit = 500 },
			wantErr: "redirectLimit 500 is out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.wantErr)
				} else if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
				}
			}
		})
	}
}

func TestMergeConfig_BasicFields(t *testing.T) {
	t.Run("merges non-zero values", func(t *testing.T) {
		target := NewDefault()
		source := &CLIConfig{
			Mode:      "only-replay",
			StubFiles: []string{"stubs/*.yaml"},
			SetFields: map[string]bool{"mode": true, "stubFiles": true},
		}

		MergeConfig(target, source, SourceLocal)

		if target.Mode != "only-replay" {
			t.Errorf("expected mode only-replay, got %q", target.Mode)
		}
		if len(target.StubFiles) != 1 || target.StubFiles[0] != "stubs/*.yaml" {
			t.Errorf("expected stub files to be merged, got %v", target.StubFiles)
		}
		if target.Sources["mode"] != SourceLocal {
			t.Errorf("expected source 'local', got %q", target.Sources["mode"])
		}
	})

	t.Run("does not overwrite with zero values", func(t *testing.T) {
		target := NewDefault()
		source := &CLIConfig{
			RedirectLimit: 0, // zero value without SetFields should not overwrite
		}

		MergeConfig(target, source, SourceLocal)

		if target.RedirectLimit == 0 {
			t.Error("expected default redirect limit to be kept")
		}
		if target.CassetteDir != DefaultCassetteDir {
			t.Errorf("expected default cassette dir, got %q", target.CassetteDir)
		}
	})

	t.Run("explicit zero redirect limit with SetFields", func(t *testing.T) {
		target := NewDefault()
		source := &CLIConfig{
			RedirectLimit: 0,
			SetFields:     map[string]bool{"redirectLimit": true},
		}

		MergeConfig(target, source, SourceGlobal)

		if target.RedirectLimit != 0 {
			t.Errorf("expected redirect limit 0, got %d", target.RedirectLimit)
		}
		if target.Sources["redirectLimit"] != SourceGlobal {
			t.Errorf("expected source 'global', got %q", target.Sources["redirectLimit"])
		}
	})

	t.Run("handles boolean false with SetFields", func(t *testing.T) {
		target := NewDefault()

		source := &CLIConfig{
			Gzip:      false,
			SetFields: map[string]bool{"gzip": true},
		}

		MergeConfig(target, source, SourceLocal)

		if target.Gzip != false {
			t.Error("expected gzip to be false after merge")
		}
	})

	t.Run("does not merge boolean false without SetFields", func(t *testing.T) {
		target := NewDefault()

		source := &CLIConfig{
			Gzip: false,
		}

		MergeConfig(target, source, SourceLocal)

		if target.Gzip != true {
			t.Error("expected gzip to remain true without SetFields")
		}
	})

	t.Run("nil source is no-op", func(t *testing.T) {
		target := NewDefault()
		original := target.Mode

		MergeConfig(target, nil, SourceLocal)

		if target.Mode != original {
			t.Errorf("expected mode unchanged, got %q", target.Mode)
		}
	})
}
