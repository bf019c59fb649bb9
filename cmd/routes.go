package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/pen/internal/config"
	"github.com/conneroisu/pen/internal/manifest"
	"github.com/conneroisu/pen/internal/routetree"
	"github.com/conneroisu/pen/internal/ui"
)

var (
	routesManifest string
	routesOutput   string
)

var routesCmd = &cobra.Command{
	Use:     "routes",
	Aliases: []string{"r"},
	Short:   "Show the route tree of the last build",
	Long: `Routes reads the route manifest and prints its routes grouped by their
first path segment. The component map is not loaded.

Examples:
  pen routes                  # Tree view
  pen routes -o json          # JSON group list
  pen routes -o yaml          # YAML group list`,
	Args: cobra.NoArgs,
	RunE: runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)

	routesCmd.Flags().StringVarP(&routesManifest, "manifest", "m", "", "Path to the route manifest (default \""+config.DefaultManifest+"\")")
	addOutputFlag(routesCmd, &routesOutput, "table", outputFormats)
}

func runRoutes(cmd *cobra.Command, args []string) error {
	if err := bindConfigFlags(cmd, map[string]string{"manifest": "start.manifest"}); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return reportFailure(cmd, "Routes failed", err)
	}
	path := cfg.Start.Manifest

	m, err := manifest.Load(afero.NewOsFs(), path)
	if err != nil {
		return reportFailure(cmd, "Routes failed", err)
	}
	tree := routetree.Build(m)

	switch routesOutput {
	case "json":
		return outputRoutesJSON(cmd.OutOrStdout(), tree)
	case "yaml":
		return outputRoutesYAML(cmd.OutOrStdout(), tree)
	default:
		out := ui.NewPrinter(cmd.OutOrStdout())
		if tree.Len() == 0 {
			out.Warn("No routes in %s", path)
			return nil
		}
		out.Tree("Routes:", tree)
		return nil
	}
}

func outputRoutesJSON(w io.Writer, tree *routetree.Tree) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(tree.Groups()); err != nil {
		return fmt.Errorf("encoding routes: %w", err)
	}
	return nil
}

func outputRoutesYAML(w io.Writer, tree *routetree.Tree) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(tree.Groups()); err != nil {
		return fmt.Errorf("encoding routes: %w", err)
	}
	return nil
}
