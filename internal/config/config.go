// Package config provides configuration management for pen using Viper for
// loading from files, environment variables, and command-line flags.
//
// The configuration system supports a .pen.yml file, environment variable
// overrides with the PEN_ prefix, and validation. It covers the start
// command inputs, the build output directory the artifacts are read from,
// and logging.
package config

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/viper"

	penerrors "github.com/conneroisu/pen/internal/errors"
)

// Defaults applied when no source sets a key.
const (
	DefaultURL       = "/"
	DefaultManifest  = "./.pen/build/manifest.json"
	DefaultOutputDir = "./.pen/build"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"

	// RegistryFile is the component map emitted into the build output directory.
	RegistryFile = "components.js"
)

type Config struct {
	Start StartConfig `mapstructure:"start" yaml:"start"`
	Build BuildConfig `mapstructure:"build" yaml:"build"`
	Log   LogConfig   `mapstructure:"log" yaml:"log"`
}

type StartConfig struct {
	URL      string `mapstructure:"url" yaml:"url"`
	Manifest string `mapstructure:"manifest" yaml:"manifest"`
}

type BuildConfig struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// RegistryPath returns the component map location. It always lives in the
// build output directory and is not configurable on its own.
func (c *Config) RegistryPath() string {
	dir := c.Build.OutputDir
	if dir == "" {
		dir = "."
	}
	joined := path.Join(dir, RegistryFile)
	if strings.HasPrefix(dir, "./") && !strings.HasPrefix(joined, "./") {
		return "./" + joined
	}
	return joined
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("start.url", DefaultURL)
	v.SetDefault("start.manifest", DefaultManifest)
	v.SetDefault("build.output_dir", DefaultOutputDir)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, penerrors.NewConfigError("failed to decode configuration", err)
	}

	if config.Start.URL == "" {
		config.Start.URL = DefaultURL
	}
	if config.Start.Manifest == "" {
		config.Start.Manifest = DefaultManifest
	}
	if config.Build.OutputDir == "" {
		config.Build.OutputDir = DefaultOutputDir
	}
	config.Log.Level = strings.ToLower(strings.TrimSpace(config.Log.Level))
	config.Log.Format = strings.ToLower(strings.TrimSpace(config.Log.Format))
	if config.Log.Level == "" {
		config.Log.Level = DefaultLogLevel
	}
	if config.Log.Format == "" {
		config.Log.Format = DefaultLogFormat
	}

	if err := validateConfig(&config); err != nil {
		return nil, penerrors.NewConfigError("invalid configuration", err)
	}

	return &config, nil
}

// validateConfig returns the first validation error, if any.
func validateConfig(config *Config) error {
	result := Validate(config)
	if result.HasErrors() {
		return &result.Errors[0]
	}
	return nil
}

// validatePath validates a file path for shell-unsafe characters
func validatePath(p string) error {
	if p == "" {
		return fmt.Errorf("empty path")
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(p, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
