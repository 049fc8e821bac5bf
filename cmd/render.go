package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/schematic/internal/diff"
	"github.com/zjrosen/schematic/internal/library"
	"github.com/zjrosen/schematic/internal/schematic"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"})
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#8B8B8B"}).Width(12)
	refdesStyle  = lipgloss.NewStyle().Bold(true).Width(6)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"})
	dirtyStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C27C0E", Dark: "#FECA57"})
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#73F59F"})
	deletedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF6B6B"})
)

func field(label, value string) string {
	if value == "" {
		value = mutedStyle.Render("-")
	}
	return labelStyle.Render(label) + value
}

// renderSummary writes the human-readable form of one document.
func renderSummary(w io.Writer, s schematic.Summary) {
	title := s.Title
	if title == "" {
		title = "(untitled)"
	}
	heading := titleStyle.Render(title)
	if s.Dirty {
		heading += " " + dirtyStyle.Render("[modified]")
	}

	lines := []string{
		heading,
		field("file", s.Filename),
		field("author", s.Author),
		field("comments", s.Comments),
		field("netlist", s.Netlist),
		field("zoom", fmt.Sprintf("%g", s.Zoom)),
		field("simulation", fmt.Sprintf("%s %g..%g step %g", s.Sim.Analysis, s.Sim.TransientStart, s.Sim.TransientStop, s.Sim.TransientStep)),
		field("items", fmt.Sprintf("%d (%d parts, %d wires)", s.Items, len(s.Parts), s.Wires)),
	}

	if len(s.Parts) > 0 {
		lines = append(lines, "", titleStyle.Render("Parts"))
		for _, p := range s.Parts {
			ref := p.RefDes
			if ref == "" {
				ref = "-"
			}
			line := refdesStyle.Render(ref) + p.Name
			if p.Value != "" {
				line += " " + p.Value
			}
			lines = append(lines, line+" "+mutedStyle.Render("at "+p.At.String()))
		}
	}

	if len(s.Designators) > 0 {
		next := make([]string, 0, len(s.Designators))
		for prefix, n := range s.Designators {
			next = append(next, fmt.Sprintf("%s%d", prefix, n))
		}
		slices.Sort(next)
		lines = append(lines, "", field("next", strings.Join(next, " ")))
	}

	if len(s.Dots) > 0 {
		dots := make([]string, len(s.Dots))
		for i, d := range s.Dots {
			dots[i] = d.String()
		}
		lines = append(lines, field("junctions", strings.Join(dots, " ")))
	}

	_, _ = fmt.Fprintln(w, strings.Join(lines, "\n"))
}

// renderParts writes the catalog as an aligned list.
func renderParts(w io.Writer, defs []library.Definition) {
	nameWidth := 0
	for _, d := range defs {
		nameWidth = max(nameWidth, lipgloss.Width(d.Name))
	}
	nameStyle := lipgloss.NewStyle().Bold(true).Width(nameWidth + 2)

	for _, d := range defs {
		prefix := d.Prefix
		if prefix == "" {
			prefix = "-"
		}
		line := nameStyle.Render(d.Name) + refdesStyle.Render(prefix) + fmt.Sprintf("%d pins", len(d.Pins))
		if d.Value != "" {
			line += "  " + d.Value
		}
		if d.Description != "" {
			line += "  " + mutedStyle.Render(d.Description)
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

// renderDiff writes a line diff with colored markers.
func renderDiff(w io.Writer, lines []diff.Line) {
	for _, l := range lines {
		switch l.Op {
		case diff.Delete:
			_, _ = fmt.Fprintln(w, deletedStyle.Render(l.String()))
		case diff.Insert:
			_, _ = fmt.Fprintln(w, addedStyle.Render(l.String()))
		default:
			_, _ = fmt.Fprintln(w, mutedStyle.Render(l.String()))
		}
	}
}
