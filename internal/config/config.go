// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package config provides configuration loading and validation for shadowrail.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the shadowrail configuration.
type Config struct {
	// Output is the output file path for the generated OpenAPI spec
	Output string `mapstructure:"output" yaml:"output" json:"output"`

	// Format is the output format (yaml, json)
	Format string `mapstructure:"format" yaml:"format" json:"format"`

	// OpenAPI contains OpenAPI-specific configuration
	OpenAPI OpenAPIConfig `mapstructure:"openapi" yaml:"openapi" json:"openapi"`

	// Source contains source code scanning configuration
	Source SourceConfig `mapstructure:"source" yaml:"source" json:"source"`

	// Analysis contains route/controller analysis behavior configuration
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis" json:"analysis"`

	// Watch contains file watching configuration
	Watch WatchConfig `mapstructure:"watch" yaml:"watch" json:"watch"`
}

// OpenAPIConfig contains OpenAPI specification configuration.
type OpenAPIConfig struct {
	// Version is the OpenAPI version to generate (3.0.3, 3.1.0)
	Version string `mapstructure:"version" yaml:"version" json:"version"`

	// Info contains API metadata
	Info InfoConfig `mapstructure:"info" yaml:"info" json:"info"`

	// Servers is a list of server configurations
	Servers []ServerConfig `mapstructure:"servers" yaml:"servers" json:"servers"`

	// Tags is a list of tag configurations
	Tags []TagConfig `mapstructure:"tags" yaml:"tags" json:"tags"`

	// Security contains security scheme configurations
	Security SecurityConfig `mapstructure:"security" yaml:"security" json:"security"`
}

// InfoConfig contains API metadata.
type InfoConfig struct {
	// Title is the API title
	Title string `mapstructure:"title" yaml:"title" json:"title"`

	// Description is the API description
	Description string `mapstructure:"description" yaml:"description" json:"description"`

	// Version is the API version
	Version string `mapstructure:"version" yaml:"version" json:"version"`

	// TermsOfService is the URL to terms of service
	TermsOfService string `mapstructure:"termsOfService" yaml:"termsOfService" json:"termsOfService"`

	// Contact contains contact information
	Contact ContactConfig `mapstructure:"contact" yaml:"contact" json:"contact"`

	// License contains license information
	License LicenseConfig `mapstructure:"license" yaml:"license" json:"license"`
}

// ContactConfig contains contact information.
type ContactConfig struct {
	Name  string `mapstructure:"name" yaml:"name" json:"name"`
	URL   string `mapstructure:"url" yaml:"url" json:"url"`
	Email string `mapstructure:"email" yaml:"email" json:"email"`
}

// LicenseConfig contains license information.
type LicenseConfig struct {
	Name string `mapstructure:"name" yaml:"name" json:"name"`
	URL  string `mapstructure:"url" yaml:"url" json:"url"`
}

// ServerConfig contains server configuration.
type ServerConfig struct {
	URL         string `mapstructure:"url" yaml:"url" json:"url"`
	Description string `mapstructure:"description" yaml:"description" json:"description"`
}

// TagConfig contains tag configuration.
type TagConfig struct {
	Name        string `mapstructure:"name" yaml:"name" json:"name"`
	Description string `mapstructure:"description" yaml:"description" json:"description"`
}

// SecurityConfig contains security configuration.
type SecurityConfig struct {
	// Schemes is a map of security scheme configurations
	Schemes map[string]SecuritySchemeConfig `mapstructure:"schemes" yaml:"schemes" json:"schemes"`

	// Default is a list of default security requirements
	Default []string `mapstructure:"default" yaml:"default" json:"default"`
}

// SecuritySchemeConfig contains security scheme configuration.
type SecuritySchemeConfig struct {
	Type         string `mapstructure:"type" yaml:"type" json:"type"`
	Name         string `mapstructure:"name" yaml:"name" json:"name"`
	In           string `mapstructure:"in" yaml:"in" json:"in"`
	Scheme       string `mapstructure:"scheme" yaml:"scheme" json:"scheme"`
	BearerFormat string `mapstructure:"bearerFormat" yaml:"bearerFormat" json:"bearerFormat"`
	Description  string `mapstructure:"description" yaml:"description" json:"description"`
}

// SourceConfig contains source code scanning configuration.
type SourceConfig struct {
	// Paths is a list of Rails application roots to scan. Each must contain
	// a config/routes.rb and (typically) an app/controllers tree.
	Paths []string `mapstructure:"paths" yaml:"paths" json:"paths"`

	// Include is a list of glob patterns to include when walking a path.
	Include []string `mapstructure:"include" yaml:"include" json:"include"`

	// Exclude is a list of glob patterns to exclude when walking a path.
	Exclude []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
}

// AnalysisConfig controls which endpoints are surfaced and how deep the
// controller-inheritance walk goes.
type AnalysisConfig struct {
	// IncludeConditional determines whether routes emitted from inside an
	// `if`/`unless` block (FlagConditional) are included in output. Routes
	// from an `each` block carry FlagDynamic instead and are always included.
	IncludeConditional bool `mapstructure:"includeConditional" yaml:"includeConditional" json:"includeConditional"`

	// ExcludeEngines determines whether `mount` engine routes
	// (FlagEngineMount) are dropped from output.
	ExcludeEngines bool `mapstructure:"excludeEngines" yaml:"excludeEngines" json:"excludeEngines"`

	// ShowAll determines whether audit output lists every endpoint instead
	// of only unprotected/unknown ones.
	ShowAll bool `mapstructure:"showAll" yaml:"showAll" json:"showAll"`

	// InheritanceDepth bounds how many ancestor controllers the
	// before_action/skip_before_action composition walk climbs.
	InheritanceDepth int `mapstructure:"inheritanceDepth" yaml:"inheritanceDepth" json:"inheritanceDepth"`
}

// WatchConfig contains file watching configuration.
type WatchConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Debounce int    `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
	OnChange string `mapstructure:"onChange" yaml:"onChange" json:"onChange"`
}

// configFileNames is the list of config file names to search for (in order).
var configFileNames = []string{
	"shadowrail.yaml",
	"shadowrail.json",
	".shadowrail.yaml",
	".shadowrail.json",
}

// supportedFormats is the list of supported output formats.
var supportedFormats = []string{
	"yaml",
	"json",
}

// ErrConfigNotFound is returned when no config file is found.
var ErrConfigNotFound = errors.New("config file not found")

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("config validation errors:\n")
	for _, err := range e {
		sb.WriteString("  - ")
		sb.WriteString(err.Field)
		sb.WriteString(": ")
		sb.WriteString(err.Message)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Output: "openapi.yaml",
		Format: "yaml",
		OpenAPI: OpenAPIConfig{
			Version: "3.0.3",
			Info: InfoConfig{
				Title:   "API",
				Version: "1.0.0",
			},
		},
		Source: SourceConfig{
			Paths:   []string{"."},
			Include: []string{"**/*.rb"},
			Exclude: []string{
				"vendor/**",
				"spec/**",
				"test/**",
				"tmp/**",
				"log/**",
				".git/**",
				"node_modules/**",
				"db/**",
			},
		},
		Analysis: AnalysisConfig{
			IncludeConditional: false,
			ExcludeEngines:     false,
			ShowAll:            false,
			InheritanceDepth:   3,
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 500,
		},
	}
}

// Load loads the configuration from a file.
// It searches for config files in the following order:
// 1. shadowrail.yaml
// 2. shadowrail.json
// 3. .shadowrail.yaml
// 4. .shadowrail.json
//
// If configPath is provided, it will use that path instead.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		found := false
		for _, name := range configFileNames {
			if _, err := os.Stat(name); err == nil {
				v.SetConfigFile(name)
				found = true
				break
			}
		}
		if !found {
			return Default(), nil
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadFromPath loads the configuration from a specific directory.
func LoadFromPath(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

// setDefaults sets the default values for viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("output", "openapi.yaml")
	v.SetDefault("format", "yaml")
	v.SetDefault("openapi.version", "3.0.3")
	v.SetDefault("openapi.info.title", "API")
	v.SetDefault("openapi.info.version", "1.0.0")
	v.SetDefault("source.paths", []string{"."})
	v.SetDefault("source.include", []string{"**/*.rb"})
	v.SetDefault("source.exclude", []string{
		"vendor/**",
		"spec/**",
		"test/**",
		"tmp/**",
		"log/**",
		".git/**",
		"node_modules/**",
		"db/**",
	})
	v.SetDefault("analysis.includeConditional", false)
	v.SetDefault("analysis.excludeEngines", false)
	v.SetDefault("analysis.showAll", false)
	v.SetDefault("analysis.inheritanceDepth", 3)
	v.SetDefault("watch.enabled", false)
	v.SetDefault("watch.debounce", 500)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Format != "" && !contains(supportedFormats, c.Format) {
		errs = append(errs, ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unsupported format %q, must be one of: %s", c.Format, strings.Join(supportedFormats, ", ")),
		})
	}

	if c.OpenAPI.Version != "" {
		if c.OpenAPI.Version != "3.0.3" && c.OpenAPI.Version != "3.1.0" {
			errs = append(errs, ValidationError{
				Field:   "openapi.version",
				Message: fmt.Sprintf("unsupported OpenAPI version %q, must be 3.0.3 or 3.1.0", c.OpenAPI.Version),
			})
		}
	}

	if c.Watch.Debounce < 0 {
		errs = append(errs, ValidationError{
			Field:   "watch.debounce",
			Message: "debounce must be non-negative",
		})
	}

	if c.Analysis.InheritanceDepth < 1 {
		errs = append(errs, ValidationError{
			Field:   "analysis.inheritanceDepth",
			Message: "inheritanceDepth must be at least 1",
		})
	}

	if c.OpenAPI.Info.Title == "" {
		errs = append(errs, ValidationError{
			Field:   "openapi.info.title",
			Message: "title is required",
		})
	}

	if c.OpenAPI.Info.Version == "" {
		errs = append(errs, ValidationError{
			Field:   "openapi.info.version",
			Message: "version is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ConfigFilePath returns the path of the loaded config file, if any.
func ConfigFilePath() string {
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
