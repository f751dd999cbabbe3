package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mdconvert/markdown-convert/internal/config"
)

// envPrefix starts every environment variable the CLI reads.
const envPrefix = "MDCONVERT_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string   // MDCONVERT_CONFIG: config file name or path
	Style      string   // MDCONVERT_STYLE: base style name
	Timeout    string   // MDCONVERT_TIMEOUT: PDF generation timeout
	Security   string   // MDCONVERT_SECURITY: default, strict
	Output     string   // MDCONVERT_OUTPUT: output file or directory
	Extras     []string // MDCONVERT_EXTRAS: comma-separated extra names
	PageSize   string   // MDCONVERT_PAGE_SIZE: letter, a4, legal
}

// knownEnvVars lists valid MDCONVERT_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDCONVERT_CONFIG":    true,
	"MDCONVERT_STYLE":     true,
	"MDCONVERT_TIMEOUT":   true,
	"MDCONVERT_SECURITY":  true,
	"MDCONVERT_OUTPUT":    true,
	"MDCONVERT_EXTRAS":    true,
	"MDCONVERT_PAGE_SIZE": true,
	"MDCONVERT_CONTAINER": true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	return &envConfig{
		ConfigPath: os.Getenv("MDCONVERT_CONFIG"),
		Style:      os.Getenv("MDCONVERT_STYLE"),
		Timeout:    os.Getenv("MDCONVERT_TIMEOUT"),
		Security:   os.Getenv("MDCONVERT_SECURITY"),
		Output:     os.Getenv("MDCONVERT_OUTPUT"),
		Extras:     splitList(os.Getenv("MDCONVERT_EXTRAS")),
		PageSize:   os.Getenv("MDCONVERT_PAGE_SIZE"),
	}
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// warnUnknownEnvVars logs warnings for unrecognized MDCONVERT_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Style != "" && cfg.Style == "" {
		cfg.Style = env.Style
	}
	if env.Timeout != "" && cfg.Timeout == "" {
		cfg.Timeout = env.Timeout
	}
	if env.Security != "" && cfg.Security == "" {
		cfg.Security = env.Security
	}
	if env.Output != "" && cfg.Output == "" {
		cfg.Output = env.Output
	}
	if len(env.Extras) > 0 && len(cfg.Extras) == 0 {
		cfg.Extras = env.Extras
	}
	if env.PageSize != "" && cfg.Page.Size == "" {
		cfg.Page.Size = env.PageSize
	}
}
