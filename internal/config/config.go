// Package config loads the optional esmpack configuration file and applies
// environment overrides. A missing config file yields defaults; a present but
// malformed file is an error.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	NPM     NPMConfig     `yaml:"npm"`
	Esbuild EsbuildConfig `yaml:"esbuild"`
	Bundle  BundleConfig  `yaml:"bundle"`
	Report  ReportConfig  `yaml:"report"`
}

// NPMConfig configures the package installer invocation
type NPMConfig struct {
	Binary   string `yaml:"binary,omitempty"`
	Registry string `yaml:"registry,omitempty"` // forwarded as --registry when set
}

// EsbuildConfig configures the bundler invocation
type EsbuildConfig struct {
	Binary string `yaml:"binary,omitempty"`
	Target string `yaml:"target,omitempty"` // forwarded as --target when set
}

// BundleConfig configures cross-cutting bundle behavior
type BundleConfig struct {
	Externals []string `yaml:"externals,omitempty"` // excluded from every bundle
	SourceMap *bool    `yaml:"source_map,omitempty"`
}

// ReportConfig configures the printed integration instructions
type ReportConfig struct {
	ModuleDir string `yaml:"module_dir,omitempty"` // href prefix for preload tags
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from the specified file. The file is optional:
// when it does not exist, defaults are returned.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := Default()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	config.applyEnvOverrides()
	return &config, nil
}

// SourceMapEnabled reports whether bundles should be emitted with a source map.
func (c *Config) SourceMapEnabled() bool {
	if c.Bundle.SourceMap == nil {
		return true
	}
	return *c.Bundle.SourceMap
}

func (c *Config) applyDefaults() {
	if c.NPM.Binary == "" {
		c.NPM.Binary = "npm"
	}
	if c.Esbuild.Binary == "" {
		c.Esbuild.Binary = "esbuild"
	}
	if c.Report.ModuleDir == "" {
		c.Report.ModuleDir = "."
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ESMPACK_NPM"); v != "" {
		c.NPM.Binary = v
	}
	if v := os.Getenv("ESMPACK_ESBUILD"); v != "" {
		c.Esbuild.Binary = v
	}
}
