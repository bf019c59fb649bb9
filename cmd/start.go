package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/conneroisu/pen/internal/bootstrap"
	"github.com/conneroisu/pen/internal/config"
	"github.com/conneroisu/pen/internal/renderer"
	"github.com/conneroisu/pen/internal/ui"
)

var (
	startURL      string
	startManifest string
)

var startCmd = &cobra.Command{
	Use:     "start",
	Aliases: []string{"s"},
	Short:   "Start the application from the last build",
	Long: `Start loads the route manifest and the component map written by
` + "`pen build`" + `, prints the route tree and renders the requested URL.

Both build files must exist. The manifest is checked first, and nothing
is read until both are present. The component map always lives in the
build output directory as components.js.

Examples:
  pen start                             # Render /
  pen start -u /about/                  # Render /about/
  pen start -m ./dist/manifest.json     # Use another manifest`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringVarP(&startURL, "url", "u", "", "URL to render (default \"/\")")
	startCmd.Flags().StringVarP(&startManifest, "manifest", "m", "", "Path to the route manifest (default \""+config.DefaultManifest+"\")")
}

func runStart(cmd *cobra.Command, args []string) error {
	if err := bindConfigFlags(cmd, map[string]string{
		"url":      "start.url",
		"manifest": "start.manifest",
	}); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return reportFailure(cmd, "Start failed", err)
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())
	out := ui.NewPrinter(cmd.OutOrStdout())

	out.Info("URL: %s", cfg.Start.URL)
	out.Info("Manifest: %s", cfg.Start.Manifest)

	orchestrator := bootstrap.New(
		renderer.NewTerminalRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), logger),
		bootstrap.WithFS(afero.NewOsFs()),
		bootstrap.WithLogger(logger),
		bootstrap.WithObserver(progressObserver(out)),
	)

	_, err = orchestrator.Run(cmd.Context(), bootstrap.Options{
		URL:          cfg.Start.URL,
		ManifestPath: cfg.Start.Manifest,
		RegistryPath: cfg.RegistryPath(),
	})
	if err != nil {
		return reportFailure(cmd, "Start failed", err)
	}

	return nil
}

// progressObserver prints one status line per completed stage and the route
// tree before handoff.
func progressObserver(out *ui.Printer) bootstrap.Observer {
	return bootstrap.ObserverFunc(func(stage bootstrap.Stage, state *bootstrap.State) {
		switch stage {
		case bootstrap.StageCheckingArtifacts:
			out.Step("Checking build files")
		case bootstrap.StageManifestLoaded:
			out.Success("Loaded manifest (%d routes)", state.Manifest.Len())
		case bootstrap.StageRegistryLoaded:
			out.Success("Loaded components (%d)", state.Registry.Count())
		case bootstrap.StageTreeBuilt:
			out.Blank()
			out.Tree("Routes:", state.Tree)
			out.Blank()
		case bootstrap.StageReady:
			out.Success("Application started!")
		}
	})
}
