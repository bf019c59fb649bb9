// Package cmd provides the command-line interface for pen with configuration
// management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --url, etc.) - highest priority
//	2. PEN_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (PEN_START_URL, etc.)
//	4. Configuration files (.pen.yml) - lowest priority
//
// Environment Variables:
//
//	PEN_CONFIG_FILE: Path to custom configuration file
//	PEN_START_URL: Override the URL rendered by `pen start`
//	PEN_START_MANIFEST: Override the manifest location
//	PEN_BUILD_OUTPUT_DIR: Override the build output directory
//	PEN_LOG_LEVEL, PEN_LOG_FORMAT: Logging
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/pen/internal/config"
	penerrors "github.com/conneroisu/pen/internal/errors"
	"github.com/conneroisu/pen/internal/logging"
	"github.com/conneroisu/pen/internal/ui"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pen",
	Short: "Run file-routed terminal applications",
	Long: `Pen runs terminal applications whose routes come from the file system.

` + "`pen build`" + ` compiles the app directory into a route manifest and a component
map under .pen/build. ` + "`pen start`" + ` loads both, prints the route tree and
renders the requested URL.

Quick Start:
  pen start                       Render / from the last build
  pen start -u /about/            Render another route
  pen routes                      Show the route tree
  pen routes -o json              Show the route tree as JSON`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// An interrupt cancels the running command. Errors a command has not already
// reported are printed once.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	var reported *reportedError
	if err != nil && !errors.As(err, &reported) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

// reportedError marks an error whose diagnostic has already been printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .pen.yml, can also use PEN_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig initializes the configuration system.
//
// Configuration file priority (highest to lowest):
//  1. --config flag
//  2. PEN_CONFIG_FILE environment variable
//  3. .pen.yml in the current directory
//
// Every key can also be set from the environment with the PEN_ prefix, e.g.
// PEN_BUILD_OUTPUT_DIR=./dist.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("PEN_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pen")
	}

	viper.SetEnvPrefix("PEN")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or unreadable file leaves the defaults in place.
	_ = viper.ReadInConfig()
}

// newLogger builds the process logger from the loaded configuration.
func newLogger(cfg *config.Config, w io.Writer) logging.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logging.LevelWarn
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: w,
	})
}

// reportFailure prints title and a single diagnostic for err to the error
// stream. The returned error wraps err and is not printed again.
func reportFailure(cmd *cobra.Command, title string, err error) error {
	p := ui.NewPrinter(cmd.ErrOrStderr())
	p.Error(fmt.Sprintf("%s\n%s", title, penerrors.Diagnostic(err)))
	return &reportedError{err: err}
}
