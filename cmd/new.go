package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/schematic/internal/tracing"
)

var (
	newTitle    string
	newAuthor   string
	newComments string
	newNetlist  string
	newForce    bool
)

var newCmd = &cobra.Command{
	Use:   "new <file>",
	Short: "Create an empty schematic",
	Long: `Create an empty schematic and save it.

The format follows the file extension. A path without one gets the
configured document.format.

Examples:
  schematic new amp.yaml --title "Class A amplifier"
  schematic new amp.schdb --author ada
  schematic new amp --force`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	newCmd.Flags().StringVarP(&newTitle, "title", "t", "", "Document title")
	newCmd.Flags().StringVarP(&newAuthor, "author", "a", "", "Author (overrides document.author)")
	newCmd.Flags().StringVar(&newComments, "comments", "", "Free-form comments")
	newCmd.Flags().StringVar(&newNetlist, "netlist", "", "Netlist output filename")
	newCmd.Flags().BoolVarP(&newForce, "force", "f", false, "Overwrite an existing file")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) (err error) {
	ctx, span := startCommand(cmd)
	defer func() { tracing.End(span, err) }()

	path := withDefaultFormat(args[0])
	if _, ok := files.Resolve(path); !ok {
		return fmt.Errorf("unsupported file format %q (supported: %v)", formatOf(path), files.Extensions())
	}
	if _, statErr := os.Stat(path); statErr == nil && !newForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	doc := newDocument()
	defer doc.Close()

	doc.SetTitle(newTitle)
	if cmd.Flags().Changed("author") {
		doc.SetAuthor(newAuthor)
	}
	doc.SetComments(newComments)
	doc.SetNetlistFilename(newNetlist)

	if err := saveDocument(ctx, doc, path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
	return nil
}
