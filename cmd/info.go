package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/schematic/internal/presentation"
	"github.com/zjrosen/schematic/internal/tracing"
)

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info <file>...",
	Short: "Show document metadata, parts and junctions",
	Long: `Show the metadata, placed parts, next free designators and junction
dots of one or more documents.

Examples:
  schematic info amp.yaml
  schematic info amp.yaml psu.schdb --json | jq '.[].parts'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Output JSON")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) (err error) {
	ctx, span := startCommand(cmd)
	defer func() { tracing.End(span, err) }()

	out := cmd.OutOrStdout()
	dtos := make([]presentation.DocumentDTO, 0, len(args))
	for i, path := range args {
		doc, err := openDocument(ctx, path)
		if err != nil {
			return err
		}
		summary := doc.Summary()
		doc.Close()

		if infoJSON {
			dtos = append(dtos, presentation.DocumentDTO{Path: path, Summary: summary})
			continue
		}
		if i > 0 {
			_, _ = out.Write([]byte("\n"))
		}
		renderSummary(out, summary)
	}

	if infoJSON {
		return presentation.NewFormatter(out).FormatDocuments(dtos)
	}
	return nil
}
