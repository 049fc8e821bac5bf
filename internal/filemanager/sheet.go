package filemanager

import (
	"cmp"
	"fmt"

	"github.com/zjrosen/schematic/internal/item"
	"github.com/zjrosen/schematic/internal/schematic"
)

// FormatVersion is written by every handler. Files from a newer version are
// refused.
const FormatVersion = 1

// sheet is the format-neutral form of a document shared by the handlers.
// Designators is the allocator table (prefix -> next number); it outlives
// the parts that used those numbers.
type sheet struct {
	Version     int                   `yaml:"version"`
	Title       string                `yaml:"title"`
	Author      string                `yaml:"author,omitempty"`
	Comments    string                `yaml:"comments,omitempty"`
	Netlist     string                `yaml:"netlist,omitempty"`
	Zoom        float64               `yaml:"zoom"`
	Sim         schematic.SimSettings `yaml:"sim"`
	Designators map[string]int        `yaml:"designators,omitempty"`
	Parts       []partRecord          `yaml:"parts"`
	Wires       []wireRecord          `yaml:"wires"`
}

type partRecord struct {
	ID     string       `yaml:"id"`
	Name   string       `yaml:"name"`
	Prefix string       `yaml:"prefix,omitempty"`
	RefDes string       `yaml:"refdes,omitempty"`
	Value  string       `yaml:"value,omitempty"`
	At     item.Coord   `yaml:"at"`
	Pins   []item.Coord `yaml:"pins"`
}

type wireRecord struct {
	ID   string     `yaml:"id"`
	From item.Coord `yaml:"from"`
	To   item.Coord `yaml:"to"`
}

func snapshot(doc *schematic.Document) sheet {
	s := sheet{
		Version:  FormatVersion,
		Title:    doc.Title(),
		Author:   doc.Author(),
		Comments: doc.Comments(),
		Netlist:  doc.NetlistFilename(),
		Zoom:     doc.Zoom(),
		Sim:      doc.SimSettings(),
		Parts:    []partRecord{},
		Wires:    []wireRecord{},
	}
	if table := doc.Designators(); len(table) > 0 {
		s.Designators = table
	}
	for it := range doc.Parts() {
		p, ok := it.(*item.Part)
		if !ok {
			continue
		}
		spec := p.Spec()
		s.Parts = append(s.Parts, partRecord{
			ID:     p.ID(),
			Name:   spec.Name,
			Prefix: spec.Prefix,
			RefDes: p.RefDes(),
			Value:  spec.Value,
			At:     p.Position(),
			Pins:   spec.Pins,
		})
	}
	for it := range doc.Wires() {
		w, ok := it.(*item.Wire)
		if !ok {
			continue
		}
		s.Wires = append(s.Wires, wireRecord{ID: w.ID(), From: w.Start(), To: w.End()})
	}
	return s
}

// restore fills doc from s. Parts keep their stored designators and the
// stored table is committed first, so numbers freed before the save stay
// retired.
func restore(doc *schematic.Document, s sheet) error {
	if s.Version > FormatVersion {
		return fmt.Errorf("format version %d is newer than supported version %d", s.Version, FormatVersion)
	}

	doc.SetTitle(s.Title)
	doc.SetAuthor(s.Author)
	doc.SetComments(s.Comments)
	doc.SetNetlistFilename(s.Netlist)
	if s.Zoom != 0 {
		doc.SetZoom(s.Zoom)
	}
	if s.Sim != (schematic.SimSettings{}) {
		if err := doc.SetSimSettings(s.Sim); err != nil {
			return fmt.Errorf("sim settings: %w", err)
		}
	}
	doc.CommitDesignators(s.Designators)

	for _, rec := range s.Parts {
		p := item.NewPartWithID(rec.ID, item.PartSpec{
			Name:   rec.Name,
			Prefix: rec.Prefix,
			Value:  rec.Value,
			Pins:   rec.Pins,
		}, rec.At)
		if err := doc.Restore(p, rec.RefDes); err != nil {
			return fmt.Errorf("part %s: %w", cmp.Or(rec.RefDes, rec.Name), err)
		}
	}
	for _, rec := range s.Wires {
		if err := doc.Attach(item.NewWireWithID(rec.ID, rec.From, rec.To)); err != nil {
			return fmt.Errorf("wire %s-%s: %w", rec.From, rec.To, err)
		}
	}
	return nil
}
