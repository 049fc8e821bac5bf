package presentation

import (
	"github.com/zjrosen/schematic/internal/item"
	"github.com/zjrosen/schematic/internal/library"
	"github.com/zjrosen/schematic/internal/schematic"
)

// PartDTO represents a catalog definition for presentation
type PartDTO struct {
	Name        string       `json:"name"`
	Prefix      string       `json:"prefix"`
	Value       string       `json:"value,omitempty"`
	Description string       `json:"description,omitempty"`
	Pins        []item.Coord `json:"pins"`
}

// FromDefinitions converts catalog definitions to DTOs.
func FromDefinitions(defs []library.Definition) []PartDTO {
	out := make([]PartDTO, 0, len(defs))
	for _, d := range defs {
		pins := d.Pins
		if pins == nil {
			pins = []item.Coord{}
		}
		out = append(out, PartDTO{
			Name:        d.Name,
			Prefix:      d.Prefix,
			Value:       d.Value,
			Description: d.Description,
			Pins:        pins,
		})
	}
	return out
}

// PlacedDTO reports an item added by a command.
type PlacedDTO struct {
	ID     string     `json:"id"`
	Kind   string     `json:"kind"`
	RefDes string     `json:"refdes,omitempty"`
	At     item.Coord `json:"at"`
	File   string     `json:"file"`
}

// FromItem describes it as saved in file.
func FromItem(it item.Item, file string) PlacedDTO {
	return PlacedDTO{
		ID:     it.ID(),
		Kind:   it.Kind().String(),
		RefDes: it.RefDes(),
		At:     it.Position(),
		File:   file,
	}
}

// DocumentDTO wraps a summary with the path it was read from.
type DocumentDTO struct {
	Path string `json:"path"`
	schematic.Summary
}
