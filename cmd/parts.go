package cmd

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/schematic/internal/config"
	"github.com/zjrosen/schematic/internal/presentation"
	"github.com/zjrosen/schematic/internal/tracing"
)

var partsJSON bool

var partsCmd = &cobra.Command{
	Use:   "parts",
	Short: "List catalog parts",
	Long: `List the parts that can be placed. Definitions in the library
directories override built-ins of the same name.

Examples:
  schematic parts
  schematic parts --json | jq -r '.[].name'`,
	Args: cobra.NoArgs,
	RunE: runParts,
}

var partsAddDirCmd = &cobra.Command{
	Use:   "add-dir <dir>",
	Short: "Add a library directory to the config",
	Long: `Append a directory to library.dirs in the active config file. Earlier
directories take precedence.

Example:
  schematic parts add-dir ./parts`,
	Args: cobra.ExactArgs(1),
	RunE: runPartsAddDir,
}

func init() {
	partsCmd.Flags().BoolVar(&partsJSON, "json", false, "Output JSON")
	partsCmd.AddCommand(partsAddDirCmd)
	rootCmd.AddCommand(partsCmd)
}

func runParts(cmd *cobra.Command, _ []string) (err error) {
	ctx, span := startCommand(cmd)
	defer func() { tracing.End(span, err) }()

	defs, err := catalog.List(ctx)
	if err != nil {
		return err
	}
	if partsJSON {
		return presentation.NewFormatter(cmd.OutOrStdout()).FormatParts(presentation.FromDefinitions(defs))
	}
	renderParts(cmd.OutOrStdout(), defs)
	return nil
}

func runPartsAddDir(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}

	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		configPath = localConfigPath
	}

	if slices.Contains(cfg.Library.Dirs, dir) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is already in library.dirs\n", dir)
		return nil
	}
	dirs := append(slices.Clone(cfg.Library.Dirs), dir)
	if err := config.SaveLibraryDirs(configPath, dirs); err != nil {
		return err
	}
	cfg.Library.Dirs = dirs

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", dir, configPath)
	return nil
}
