package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mdconvert/markdown-convert/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// appDirName is the directory under the user config dir searched by name.
const appDirName = "markdown-convert"

// Field length limits.
const (
	MaxPathLength      = 4096
	MaxNameLength      = 64 // style, syntax style, extra names
	MaxExtras          = 32
	MaxDurationLength  = 20
	MaxPageFieldLength = 10 // "letter", "landscape"
)

// Conversion modes.
const (
	ModeOnce = "once"
	ModeLive = "live"
)

// Security levels.
const (
	SecurityDefault = "default"
	SecurityStrict  = "strict"
)

// Config holds the settings a conversion can take from a file. Every field
// is optional; zero values mean "use the command-line value or default".
type Config struct {
	Mode             string     `yaml:"mode"`             // "once" or "live"
	CSS              string     `yaml:"css"`              // custom stylesheet path
	Style            string     `yaml:"style"`            // built-in or stylesDir style name
	StylesDir        string     `yaml:"stylesDir"`        // directory of {name}.css overrides
	Output           string     `yaml:"output"`           // PDF path or directory
	Extras           []string   `yaml:"extras"`           // enabled extras (empty = all)
	Security         string     `yaml:"security"`         // "default" or "strict"
	ExtendDefaultCSS *bool      `yaml:"extendDefaultCSS"` // nil = true
	DebugHTML        bool       `yaml:"debugHTML"`        // also write the assembled HTML
	Timeout          string     `yaml:"timeout"`          // e.g. "30s"
	SyntaxStyle      string     `yaml:"syntaxStyle"`      // chroma style name
	SectionLevel     int        `yaml:"sectionLevel"`     // 1-6, 0 = default
	MaxIterations    int        `yaml:"maxIterations"`    // per-extra fixpoint ceiling
	Page             PageConfig `yaml:"page"`
	Live             LiveConfig `yaml:"live"`
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal"
	Orientation string  `yaml:"orientation"` // "portrait", "landscape"
	Margin      float64 `yaml:"margin"`      // inches, 0 = default
}

// LiveConfig defines live mode settings.
type LiveConfig struct {
	Interval string `yaml:"interval"` // poll interval, e.g. "1s"
}

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"css", c.CSS, MaxPathLength},
		{"stylesDir", c.StylesDir, MaxPathLength},
		{"output", c.Output, MaxPathLength},
		{"style", c.Style, MaxNameLength},
		{"syntaxStyle", c.SyntaxStyle, MaxNameLength},
		{"timeout", c.Timeout, MaxDurationLength},
		{"live.interval", c.Live.Interval, MaxDurationLength},
		{"page.size", c.Page.Size, MaxPageFieldLength},
		{"page.orientation", c.Page.Orientation, MaxPageFieldLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if len(c.Extras) > MaxExtras {
		return fmt.Errorf("%w: extras (%d entries, max %d)", ErrFieldTooLong, len(c.Extras), MaxExtras)
	}
	for i, name := range c.Extras {
		if err := validateFieldLength(fmt.Sprintf("extras[%d]", i), name, MaxNameLength); err != nil {
			return err
		}
	}

	if err := validateEnum("mode", c.Mode, ModeOnce, ModeLive); err != nil {
		return err
	}
	if err := validateEnum("security", c.Security, SecurityDefault, SecurityStrict); err != nil {
		return err
	}
	if err := validateEnum("page.size", c.Page.Size, "letter", "a4", "legal"); err != nil {
		return err
	}
	if err := validateEnum("page.orientation", c.Page.Orientation, "portrait", "landscape"); err != nil {
		return err
	}

	if c.Page.Margin < 0 {
		return fmt.Errorf("%w: page.margin must not be negative, got %.2f", ErrInvalidValue, c.Page.Margin)
	}
	if c.SectionLevel < 0 || c.SectionLevel > 6 {
		return fmt.Errorf("%w: sectionLevel must be between 0 and 6, got %d", ErrInvalidValue, c.SectionLevel)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("%w: maxIterations must not be negative, got %d", ErrInvalidValue, c.MaxIterations)
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Live.IntervalDuration(); err != nil {
		return err
	}

	return nil
}

// TimeoutDuration parses Timeout. Empty returns 0.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	return parsePositiveDuration("timeout", c.Timeout)
}

// IntervalDuration parses Interval. Empty returns 0.
func (l LiveConfig) IntervalDuration() (time.Duration, error) {
	return parsePositiveDuration("live.interval", l.Interval)
}

func parsePositiveDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, field, value)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateEnum accepts empty or one of allowed (case-insensitive).
func validateEnum(fieldName, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %q (must be one of %s)", ErrInvalidValue, fieldName, value, strings.Join(allowed, ", "))
}

// DefaultConfig returns a configuration that leaves every setting to the
// command line and library defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
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

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\") || strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml")
}

// SearchPaths lists the files a config name resolves to, in lookup order:
// {name}.yaml and {name}.yml in the current directory, then under
// {user config dir}/markdown-convert/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, appDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
