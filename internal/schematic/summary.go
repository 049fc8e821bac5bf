package schematic

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/zjrosen/schematic/internal/item"
	"github.com/zjrosen/schematic/internal/refdes"
)

// PartSummary is one placed part in a Summary.
type PartSummary struct {
	RefDes string     `json:"refdes"`
	Name   string     `json:"name"`
	Value  string     `json:"value"`
	At     item.Coord `json:"at"`
}

// Summary is a plain-data view of a document, safe to hand to another
// goroutine.
type Summary struct {
	Title       string         `json:"title"`
	Author      string         `json:"author"`
	Comments    string         `json:"comments,omitempty"`
	Filename    string         `json:"filename"`
	Netlist     string         `json:"netlist,omitempty"`
	Zoom        float64        `json:"zoom"`
	Dirty       bool           `json:"dirty"`
	Sim         SimSettings    `json:"sim"`
	Items       int            `json:"items"`
	Wires       int            `json:"wires"`
	Parts       []PartSummary  `json:"parts"`
	Designators map[string]int `json:"designators"`
	Dots        []item.Coord   `json:"dots"`
}

// Summary captures the document's current state.
func (d *Document) Summary() Summary {
	s := Summary{
		Title:       d.title,
		Author:      d.author,
		Comments:    d.comments,
		Filename:    d.filename,
		Netlist:     d.netlistFilename,
		Zoom:        d.zoom,
		Dirty:       d.dirty,
		Sim:         d.sim,
		Items:       len(d.items),
		Parts:       []PartSummary{},
		Designators: d.alloc.Snapshot(),
		Dots:        []item.Coord{},
	}
	for it := range d.Parts() {
		ps := PartSummary{RefDes: it.RefDes(), At: it.Position()}
		if p, ok := it.(*item.Part); ok {
			ps.Name = p.Name()
			ps.Value = p.Value()
		}
		s.Parts = append(s.Parts, ps)
	}
	slices.SortStableFunc(s.Parts, func(a, b PartSummary) int {
		ap, an, _ := refdes.Parse(a.RefDes)
		bp, bn, _ := refdes.Parse(b.RefDes)
		return cmp.Or(cmp.Compare(ap, bp), cmp.Compare(an, bn))
	})
	for range d.Wires() {
		s.Wires++
	}
	if g, ok := d.graph.(interface{ Dots() []item.Coord }); ok {
		s.Dots = append(s.Dots, g.Dots()...)
	}
	return s
}

// Lines renders the summary one fact per line in a stable order, for
// diffing two documents.
func (s Summary) Lines() []string {
	lines := []string{
		"title: " + s.Title,
		"author: " + s.Author,
		"comments: " + s.Comments,
		"netlist: " + s.Netlist,
		fmt.Sprintf("sim: %s %g..%g step %g", s.Sim.Analysis, s.Sim.TransientStart, s.Sim.TransientStop, s.Sim.TransientStep),
		fmt.Sprintf("items: %d", s.Items),
		fmt.Sprintf("wires: %d", s.Wires),
	}
	for _, p := range s.Parts {
		lines = append(lines, fmt.Sprintf("part %s %s %s at %s", cmp.Or(p.RefDes, "-"), p.Name, p.Value, p.At))
	}
	for _, prefix := range slices.Sorted(maps.Keys(s.Designators)) {
		lines = append(lines, fmt.Sprintf("next %s%d", prefix, s.Designators[prefix]))
	}
	for _, dot := range s.Dots {
		lines = append(lines, "dot "+dot.String())
	}
	return lines
}
