package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
course:
  contentType: course
  authorId: "10370001"
  collectionId: "4941429335392256"
auth:
  token: file-token
output:
  dir: /tmp/out
convert:
  maxLineLen: 100
  wrapTarget: 80
  concurrency: 4
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Course.AuthorID != "10370001" {
		t.Errorf("AuthorID = %q, want 10370001", cfg.Course.AuthorID)
	}
	if cfg.Course.BaseOrigin != "https://www.educative.io" {
		t.Errorf("BaseOrigin = %q, want platform default", cfg.Course.BaseOrigin)
	}
	if cfg.Auth.Token != "file-token" {
		t.Errorf("Token = %q, want file-token", cfg.Auth.Token)
	}
	if cfg.Convert.MaxLineLen != 100 || cfg.Convert.WrapTarget != 80 {
		t.Errorf("wrap limits = %d/%d, want 100/80", cfg.Convert.MaxLineLen, cfg.Convert.WrapTarget)
	}
	if cfg.Convert.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Convert.Concurrency)
	}
}

func TestLoadConfigEnvOverridesCredentials(t *testing.T) {
	path := writeConfig(t, `
course:
  contentType: interview-prep
  courseSlug: grokking
auth:
  token: file-token
  cookie: file-cookie
`)

	t.Setenv("EDUCATIVE_TOKEN", "env-token")
	t.Setenv("EDUCATIVE_COOKIE", "env-cookie")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Auth.Token != "env-token" {
		t.Errorf("Token = %q, want env override", cfg.Auth.Token)
	}
	if cfg.Auth.Cookie != "env-cookie" {
		t.Errorf("Cookie = %q, want env override", cfg.Auth.Cookie)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("err = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope.yaml")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("err = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		path := writeConfig(t, "course:\n  contentType: course\nnotAField: true\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("err = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid YAML", func(t *testing.T) {
		path := writeConfig(t, "course: [unclosed")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("err = %v, want ErrConfigParse", err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid course config",
			mutate:  func(c *Config) { c.Course.AuthorID = "1"; c.Course.CollectionID = "2" },
			wantErr: "",
		},
		{
			name:    "course missing IDs",
			mutate:  func(c *Config) {},
			wantErr: "authorId",
		},
		{
			name: "interview-prep missing slug",
			mutate: func(c *Config) {
				c.Course.ContentType = "interview-prep"
			},
			wantErr: "courseSlug",
		},
		{
			name: "unknown content type",
			mutate: func(c *Config) {
				c.Course.ContentType = "webinar"
			},
			wantErr: "contentType",
		},
		{
			name: "non-HTTP origin",
			mutate: func(c *Config) {
				c.Course.AuthorID = "1"
				c.Course.CollectionID = "2"
				c.Course.BaseOrigin = "ftp://example.com"
			},
			wantErr: "baseOrigin",
		},
		{
			name: "wrap target above line limit",
			mutate: func(c *Config) {
				c.Course.AuthorID = "1"
				c.Course.CollectionID = "2"
				c.Convert.WrapTarget = 500
			},
			wantErr: "wrapTarget",
		},
		{
			name: "zero concurrency",
			mutate: func(c *Config) {
				c.Course.AuthorID = "1"
				c.Course.CollectionID = "2"
				c.Convert.Concurrency = 0
			},
			wantErr: "concurrency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
