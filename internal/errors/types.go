// Package errors defines the error taxonomy of the pen bootstrap pipeline.
//
// Every stage of the pipeline either succeeds or returns a *PenError of one
// of the categorised types below. Errors that do not belong to the taxonomy
// (unexpected stat failures, recovered panics) are passed through untouched
// so operators see the raw cause.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeMissingArtifact ErrorType = "missing_artifact"
	ErrorTypeParse           ErrorType = "parse"
	ErrorTypeRegistryLoad    ErrorType = "registry_load"
	ErrorTypeConfig          ErrorType = "config"
	ErrorTypeInternal        ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeArtifactMissing = "ERR_ARTIFACT_MISSING"
	ErrCodeManifestParse   = "ERR_MANIFEST_PARSE"
	ErrCodeRegistryLoad    = "ERR_REGISTRY_LOAD"
	ErrCodeConfigInvalid   = "ERR_CONFIG_INVALID"
	ErrCodeInternalError   = "ERR_INTERNAL"
)

// Artifact names used in messages.
const (
	ArtifactManifest = "manifest"
	ArtifactRegistry = "registry"
)

// BuildHint is attached to every missing artifact error.
const BuildHint = "Run `pen build` first."

// PenError is a structured error type with context.
type PenError struct {
	Type     ErrorType
	Code     string
	Message  string
	Artifact string
	Path     string
	Hint     string
	Cause    error
}

// Error implements the error interface.
func (e *PenError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	parts = append(parts, e.Message)

	if e.Path != "" {
		parts = append(parts, "("+e.Path+")")
	}

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *PenError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *PenError) Is(target error) bool {
	var t *PenError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithHint sets a user-facing hint.
func (e *PenError) WithHint(hint string) *PenError {
	e.Hint = hint

	return e
}

// Error creation functions

// NewMissingArtifactError reports that a build artifact is absent.
func NewMissingArtifactError(artifact, path string) *PenError {
	message := "Build artifact not found"
	switch artifact {
	case ArtifactManifest:
		message = "Manifest not found"
	case ArtifactRegistry:
		message = "Component map not found"
	}

	return &PenError{
		Type:     ErrorTypeMissingArtifact,
		Code:     ErrCodeArtifactMissing,
		Message:  message,
		Artifact: artifact,
		Path:     path,
		Hint:     BuildHint,
	}
}

// NewParseError reports manifest content that is not well-formed.
func NewParseError(path string, cause error) *PenError {
	return &PenError{
		Type:     ErrorTypeParse,
		Code:     ErrCodeManifestParse,
		Message:  "Manifest is not valid JSON",
		Artifact: ArtifactManifest,
		Path:     path,
		Cause:    cause,
	}
}

// NewRegistryLoadError reports a registry that exists but could not be loaded.
func NewRegistryLoadError(path string, cause error) *PenError {
	return &PenError{
		Type:     ErrorTypeRegistryLoad,
		Code:     ErrCodeRegistryLoad,
		Message:  "Failed to load component map",
		Artifact: ArtifactRegistry,
		Path:     path,
		Cause:    cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *PenError {
	return &PenError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeConfigInvalid,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, cause error) *PenError {
	return &PenError{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
	}
}

func isType(err error, errorType ErrorType) bool {
	var pe *PenError
	if errors.As(err, &pe) {
		return pe.Type == errorType
	}

	return false
}

// IsMissingArtifact checks if an error reports an absent build artifact.
func IsMissingArtifact(err error) bool {
	return isType(err, ErrorTypeMissingArtifact)
}

// IsParseError checks if an error reports a malformed manifest.
func IsParseError(err error) bool {
	return isType(err, ErrorTypeParse)
}

// IsRegistryLoadError checks if an error reports a registry that failed to load.
func IsRegistryLoadError(err error) bool {
	return isType(err, ErrorTypeRegistryLoad)
}

// IsConfigError checks if an error is configuration-related.
func IsConfigError(err error) bool {
	return isType(err, ErrorTypeConfig)
}

// Diagnostic renders err as the single operator-facing message printed when
// the bootstrap fails. Uncategorised errors are returned verbatim.
func Diagnostic(err error) string {
	if err == nil {
		return ""
	}

	var pe *PenError
	if !errors.As(err, &pe) {
		return err.Error()
	}

	var b strings.Builder
	b.WriteString(pe.Message)
	if pe.Cause != nil {
		b.WriteString(": ")
		b.WriteString(pe.Cause.Error())
	}
	if pe.Path != "" {
		b.WriteString("\n  path: ")
		b.WriteString(pe.Path)
	}
	if pe.Hint != "" {
		b.WriteString("\n  ")
		b.WriteString(pe.Hint)
	}

	return b.String()
}
