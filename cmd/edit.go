package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/schematic/internal/item"
	"github.com/zjrosen/schematic/internal/log"
	"github.com/zjrosen/schematic/internal/presentation"
	"github.com/zjrosen/schematic/internal/pubsub"
	"github.com/zjrosen/schematic/internal/schematic"
	"github.com/zjrosen/schematic/internal/tracing"
)

var (
	placePart  string
	placeAt    string
	placeValue string
	placeJSON  bool

	wireFrom string
	wireTo   string
)

var placeCmd = &cobra.Command{
	Use:   "place <file>",
	Short: "Place a catalog part",
	Long: `Place a part from the catalog and save the document.

The part receives the next free designator for its prefix. Parts
without a prefix, such as ground, get none.

Examples:
  schematic place amp.yaml --part resistor --at 40,0 --value 4k7
  schematic place amp.yaml -p ground --at 0,80
  schematic place amp.yaml -p npn --at 80,40 --json | jq -r .refdes`,
	Args: cobra.ExactArgs(1),
	RunE: runPlace,
}

var wireCmd = &cobra.Command{
	Use:   "wire <file>",
	Short: "Draw a wire between two points",
	Long: `Draw a wire and save the document. Junctions created by the new wire
are reported.

Example:
  schematic wire amp.yaml --from 40,0 --to 40,80`,
	Args: cobra.ExactArgs(1),
	RunE: runWire,
}

var removeCmd = &cobra.Command{
	Use:   "remove <file> <refdes|id>...",
	Short: "Remove parts or wires",
	Long: `Remove items by designator or item id and save the document.

Example:
  schematic remove amp.yaml R2 C1`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRemove,
}

func init() {
	placeCmd.Flags().StringVarP(&placePart, "part", "p", "", "Catalog part name (see 'schematic parts')")
	placeCmd.Flags().StringVar(&placeAt, "at", "0,0", "Position as x,y")
	placeCmd.Flags().StringVar(&placeValue, "value", "", "Part value (defaults to the catalog value)")
	placeCmd.Flags().BoolVar(&placeJSON, "json", false, "Output JSON")
	_ = placeCmd.MarkFlagRequired("part")

	wireCmd.Flags().StringVar(&wireFrom, "from", "", "Start point as x,y")
	wireCmd.Flags().StringVar(&wireTo, "to", "", "End point as x,y")
	_ = wireCmd.MarkFlagRequired("from")
	_ = wireCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(placeCmd, wireCmd, removeCmd)
}

func runPlace(cmd *cobra.Command, args []string) (err error) {
	ctx, span := startCommand(cmd)
	defer func() { tracing.End(span, err) }()

	at, err := parseCoord(placeAt)
	if err != nil {
		return err
	}

	var placed *item.Part
	err = editDocument(ctx, args[0], func(doc *schematic.Document) error {
		part, err := catalog.NewPart(ctx, placePart, at, placeValue)
		if err != nil {
			return err
		}
		if err := doc.Attach(part); err != nil {
			return err
		}
		placed = part
		return nil
	})
	if err != nil {
		return err
	}

	span.SetAttributes(attribute.String(tracing.AttrPartName, placed.Name()), attribute.String(tracing.AttrRefDes, placed.RefDes()))
	log.Info(log.CatCLI, "Placed part", "file", args[0], "part", placed.Name(), "refdes", placed.RefDes())

	if placeJSON {
		return presentation.NewFormatter(cmd.OutOrStdout()).FormatPlaced(presentation.FromItem(placed, args[0]))
	}
	label := placed.RefDes()
	if label == "" {
		label = placed.Name()
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Placed %s (%s) at %s\n", label, placed.Name(), at)
	return nil
}

func runWire(cmd *cobra.Command, args []string) (err error) {
	ctx, span := startCommand(cmd)
	defer func() { tracing.End(span, err) }()

	from, err := parseCoord(wireFrom)
	if err != nil {
		return err
	}
	to, err := parseCoord(wireTo)
	if err != nil {
		return err
	}

	var junctions []item.Coord
	err = editDocument(ctx, args[0], func(doc *schematic.Document) error {
		sub := doc.DotAdded().Subscribe(func(e pubsub.Event[item.Coord]) {
			junctions = append(junctions, e.Payload)
		})
		defer sub.Unsubscribe()
		return doc.Attach(item.NewWire(from, to))
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Wired %s to %s\n", from, to)
	for _, j := range junctions {
		_, _ = fmt.Fprintf(out, "Junction at %s\n", j)
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) (err error) {
	ctx, span := startCommand(cmd)
	defer func() { tracing.End(span, err) }()

	refs := args[1:]
	err = editDocument(ctx, args[0], func(doc *schematic.Document) error {
		// Resolve everything first so a bad reference leaves the file alone.
		targets := make([]interface{ Destroy() }, 0, len(refs))
		for _, ref := range refs {
			it, ok := findItem(doc, ref)
			if !ok {
				return fmt.Errorf("%s: no item %q", args[0], ref)
			}
			d, ok := it.(interface{ Destroy() })
			if !ok {
				return fmt.Errorf("%s: item %q cannot be removed", args[0], ref)
			}
			targets = append(targets, d)
		}
		// Destroying an item detaches it from the document.
		for _, it := range targets {
			it.Destroy()
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, ref := range refs {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", ref)
	}
	return nil
}
