package config

import (
	"fmt"
	"strings"

	"github.com/conneroisu/pen/internal/logging"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Errors []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder
	for _, err := range vr.Errors {
		builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
		for _, suggestion := range err.Suggestions {
			builder.WriteString(fmt.Sprintf("    %s\n", suggestion))
		}
	}
	return builder.String()
}

func (vr *ValidationResult) add(field string, value interface{}, message string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{
		Field:       field,
		Value:       value,
		Message:     message,
		Suggestions: suggestions,
	})
}

// Validate checks every field and collects all problems.
func Validate(config *Config) *ValidationResult {
	result := &ValidationResult{}

	if err := validatePath(config.Start.Manifest); err != nil {
		result.add("start.manifest", config.Start.Manifest, err.Error(),
			"Point start.manifest at the manifest.json written by `pen build`")
	}

	if err := validatePath(config.Build.OutputDir); err != nil {
		result.add("build.output_dir", config.Build.OutputDir, err.Error(),
			"Use the directory `pen build` writes to, e.g. ./.pen/build")
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		result.add("log.level", config.Log.Level, err.Error(),
			"Valid levels: debug, info, warn, error")
	}

	switch config.Log.Format {
	case "text", "json":
	default:
		result.add("log.format", config.Log.Format,
			fmt.Sprintf("unknown log format %q", config.Log.Format),
			"Valid formats: text, json")
	}

	return result
}
