// Package presentation renders command results as JSON.
package presentation

import (
	"encoding/json"
	"io"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatParts formats catalog definitions as JSON
func (f *Formatter) FormatParts(parts []PartDTO) error {
	return f.encode(parts)
}

// FormatPlaced formats a placed item as JSON
func (f *Formatter) FormatPlaced(placed PlacedDTO) error {
	return f.encode(placed)
}

// FormatDocuments formats document summaries as JSON
func (f *Formatter) FormatDocuments(docs []DocumentDTO) error {
	return f.encode(docs)
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
