// Package cmd provides the command-line interface for pen.
//
// This package implements the CLI commands using the Cobra framework.
//
// # Available Commands
//
//   - start: Load the last build and render a route
//   - routes: Print the route tree of the last build
//   - version: Show build information
//
// # Command Examples
//
//	// Render the about page
//	pen start --url /about/
//
//	// Use a manifest from another output directory
//	PEN_BUILD_OUTPUT_DIR=./dist pen start -m ./dist/manifest.json
//
//	// Route tree as YAML
//	pen routes -o yaml
//
// # Exit Status
//
// A failed bootstrap prints one diagnostic to stderr and exits with status 1.
package cmd
