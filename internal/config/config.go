// Package config loads and validates the tool configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
)

// MaxConfigSize limits YAML input to prevent memory exhaustion.
const MaxConfigSize = 1 << 20

// Config holds all configuration for course content processing.
type Config struct {
	Course  CourseConfig  `yaml:"course"`
	Auth    AuthConfig    `yaml:"auth"`
	Output  OutputConfig  `yaml:"output"`
	Convert ConvertConfig `yaml:"convert"`
}

// CourseConfig identifies the course to fetch.
type CourseConfig struct {
	BaseOrigin   string `yaml:"baseOrigin"`   // default: https://www.educative.io
	ContentType  string `yaml:"contentType"`  // "course" or "interview-prep"
	AuthorID     string `yaml:"authorId"`     // course content type
	CollectionID string `yaml:"collectionId"` // course content type
	CourseSlug   string `yaml:"courseSlug"`   // interview-prep content type
}

// AuthConfig carries platform credentials. The EDUCATIVE_TOKEN and
// EDUCATIVE_COOKIE environment variables override file values so
// credentials can stay out of checked-in configs.
type AuthConfig struct {
	Token  string `yaml:"token"`
	Cookie string `yaml:"cookie"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir string `yaml:"dir"` // default: current directory
}

// ConvertConfig tunes LaTeX generation.
type ConvertConfig struct {
	MaxLineLen  int `yaml:"maxLineLen"`  // wrap threshold, default 150
	WrapTarget  int `yaml:"wrapTarget"`  // wrapped line target, default 120
	Concurrency int `yaml:"concurrency"` // parallel component workers, default 1
}

// DefaultConfig returns a configuration with library defaults.
func DefaultConfig() *Config {
	return &Config{
		Course: CourseConfig{
			BaseOrigin:  "https://www.educative.io",
			ContentType: "course",
		},
		Output: OutputConfig{Dir: "."},
		Convert: ConvertConfig{
			MaxLineLen:  150,
			WrapTarget:  120,
			Concurrency: 1,
		},
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	switch c.Course.ContentType {
	case "course":
		if c.Course.AuthorID == "" || c.Course.CollectionID == "" {
			return fmt.Errorf("course.authorId and course.collectionId are required for content type %q", c.Course.ContentType)
		}
	case "interview-prep":
		if c.Course.CourseSlug == "" {
			return fmt.Errorf("course.courseSlug is required for content type %q", c.Course.ContentType)
		}
	default:
		return fmt.Errorf("course.contentType: invalid value %q (must be course or interview-prep)", c.Course.ContentType)
	}

	if !strings.HasPrefix(c.Course.BaseOrigin, "http://") && !strings.HasPrefix(c.Course.BaseOrigin, "https://") {
		return fmt.Errorf("course.baseOrigin: %q is not an HTTP origin", c.Course.BaseOrigin)
	}

	if c.Convert.MaxLineLen <= 0 || c.Convert.WrapTarget <= 0 || c.Convert.WrapTarget > c.Convert.MaxLineLen {
		return fmt.Errorf("convert: wrapTarget (%d) must be positive and not exceed maxLineLen (%d)",
			c.Convert.WrapTarget, c.Convert.MaxLineLen)
	}
	if c.Convert.Concurrency < 1 {
		return fmt.Errorf("convert.concurrency: must be at least 1, got %d", c.Convert.Concurrency)
	}

	return nil
}

// applyEnvOverrides overlays credential environment variables.
func (c *Config) applyEnvOverrides() {
	if token := os.Getenv("EDUCATIVE_TOKEN"); token != "" {
		c.Auth.Token = token
	}
	if cookie := os.Getenv("EDUCATIVE_COOKIE"); cookie != "" {
		c.Auth.Cookie = cookie
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise it's searched in the current directory and the user config
// directory. Unset fields take library defaults; environment credentials
// override file values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(data) > MaxConfigSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigParse, len(data), MaxConfigSize)
	}

	cfg := DefaultConfig()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/coursetex/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "coursetex", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
