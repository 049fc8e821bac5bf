package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/schematic/internal/diff"
	"github.com/zjrosen/schematic/internal/tracing"
)

var convertForce bool

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Save a document in another format",
	Long: `Load a document and save a copy under a new name. The output format
follows the output extension.

Example:
  schematic convert amp.yaml amp.schdb`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

var diffExitCode bool

// errDocumentsDiffer is returned by diff --exit-code.
var errDocumentsDiffer = errors.New("documents differ")

var diffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Compare two documents",
	Long: `Compare the metadata, parts, designators and junctions of two
documents. The files may use different formats.

Example:
  schematic diff amp.yaml amp.schdb --exit-code`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	convertCmd.Flags().BoolVarP(&convertForce, "force", "f", false, "Overwrite an existing output file")
	diffCmd.Flags().BoolVar(&diffExitCode, "exit-code", false, "Fail when the documents differ")
	rootCmd.AddCommand(convertCmd, diffCmd)
}

func runConvert(cmd *cobra.Command, args []string) (err error) {
	ctx, span := startCommand(cmd)
	defer func() { tracing.End(span, err) }()

	in, out := args[0], args[1]
	if _, ok := files.Resolve(out); !ok {
		return fmt.Errorf("unsupported file format %q (supported: %v)", formatOf(out), files.Extensions())
	}
	if _, statErr := os.Stat(out); statErr == nil && !convertForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", out)
	}

	doc, err := openDocument(ctx, in)
	if err != nil {
		return err
	}
	defer doc.Close()

	if err := saveDocument(ctx, doc, out); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Converted %s to %s (%d items)\n", in, out, doc.ItemCount())
	return nil
}

func runDiff(cmd *cobra.Command, args []string) (err error) {
	ctx, span := startCommand(cmd)
	defer func() { tracing.End(span, err) }()

	var lines [2][]string
	for i, path := range args {
		doc, err := openDocument(ctx, path)
		if err != nil {
			return err
		}
		lines[i] = doc.Summary().Lines()
		doc.Close()
	}

	result := diff.Lines(lines[0], lines[1])
	if !diff.Changed(result) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Documents are identical")
		return nil
	}
	renderDiff(cmd.OutOrStdout(), result)
	if diffExitCode {
		return errDocumentsDiffer
	}
	return nil
}
