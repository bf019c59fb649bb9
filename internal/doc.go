// Package internal contains the core implementation packages for pen.
//
// # Package Organization
//
//   - bootstrap: The startup stage machine that loads the build and hands off to a renderer
//   - manifest: Order-preserving route manifest loading
//   - registry: Execution of the generated component map
//   - routetree: Grouping of routes by first path segment for display
//   - renderer: Terminal renderer composing screens and layouts
//   - ui: Styled status lines and tree output
//   - config: Configuration loading and validation
//   - errors: Categorised bootstrap errors and diagnostics
//   - logging: Structured logging
//   - version: Build information
//   - testutils: Shared test fixtures
package internal
