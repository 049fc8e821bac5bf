package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/schematic/internal/item"
	"github.com/zjrosen/schematic/internal/log"
	"github.com/zjrosen/schematic/internal/schematic"
	"github.com/zjrosen/schematic/internal/tracing"
)

// startCommand opens the span covering one command.
func startCommand(cmd *cobra.Command) (context.Context, trace.Span) {
	name := strings.ReplaceAll(cmd.CommandPath(), " ", ".")
	return tracing.Start(cmd.Context(), tracing.SpanCommandPrefix+name,
		attribute.String(tracing.AttrCommand, cmd.CommandPath()))
}

// openDocument loads path into the shared registry and starts counting
// its item additions.
func openDocument(ctx context.Context, path string) (*schematic.Document, error) {
	_, span := tracing.Start(ctx, tracing.SpanDocumentLoad,
		attribute.String(tracing.AttrDocumentPath, path),
		attribute.String(tracing.AttrFileFormat, formatOf(path)))

	start := time.Now()
	doc, err := schematic.Load(docs, files, path)
	collector.ObserveLoad(start, err)
	if err != nil {
		tracing.End(span, err)
		return nil, err
	}
	collector.Observe(doc)

	span.SetAttributes(attribute.Int(tracing.AttrDocumentItems, doc.ItemCount()))
	tracing.End(span, nil)
	return doc, nil
}

// newDocument creates an empty document with the configured defaults.
func newDocument() *schematic.Document {
	doc := schematic.New(docs,
		schematic.WithResolver(files),
		schematic.WithAuthor(cfg.Document.Author),
		schematic.WithZoom(cfg.Document.Zoom),
	)
	collector.Observe(doc)
	return doc
}

// saveDocument saves doc to path, or to its own filename when path is "".
func saveDocument(ctx context.Context, doc *schematic.Document, path string) error {
	if path == "" {
		path = doc.Filename()
	}
	_, span := tracing.Start(ctx, tracing.SpanDocumentSave,
		attribute.String(tracing.AttrDocumentPath, path),
		attribute.String(tracing.AttrFileFormat, formatOf(path)),
		attribute.Int(tracing.AttrDocumentItems, doc.ItemCount()))

	err := doc.SaveAs(path)
	collector.ObserveSave(err)
	tracing.End(span, err)
	if err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// editDocument loads path, applies edit and saves the result in place.
func editDocument(ctx context.Context, path string, edit func(*schematic.Document) error) error {
	doc, err := openDocument(ctx, path)
	if err != nil {
		return err
	}
	defer doc.Close()

	if err := edit(doc); err != nil {
		return err
	}
	if !doc.Dirty() {
		log.Debug(log.CatCLI, "Nothing to save", "path", path)
		return nil
	}
	return saveDocument(ctx, doc, "")
}

func formatOf(path string) string {
	if ext, ok := files.Extension(path); ok {
		return ext
	}
	return strings.ToLower(filepath.Ext(path))
}

// withDefaultFormat appends the configured extension to a bare path.
func withDefaultFormat(path string) string {
	if filepath.Ext(path) == "" {
		return path + cfg.Document.Format
	}
	return path
}

// parseCoord parses "x,y".
func parseCoord(s string) (item.Coord, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return item.Coord{}, fmt.Errorf("invalid coordinate %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return item.Coord{}, fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return item.Coord{}, fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	return item.Coord{X: x, Y: y}, nil
}

// findItem looks an item up by designator, then by id.
func findItem(doc *schematic.Document, ref string) (item.Item, bool) {
	if it, ok := doc.FindByRefDes(ref); ok {
		return it, true
	}
	for it := range doc.Items() {
		if it.ID() == ref {
			return it, true
		}
	}
	return nil, false
}
