// Package filemanager maps file extensions to schematic file handlers and
// ships the YAML and SQLite formats.
package filemanager

import (
	"slices"
	"strings"

	"github.com/zjrosen/schematic/internal/log"
	"github.com/zjrosen/schematic/internal/schematic"
)

// Manager resolves a path to a handler by extension. Matching is
// case-insensitive and the longest registered suffix wins, so ".sch.yaml"
// can be told apart from ".yaml".
type Manager struct {
	handlers map[string]schematic.FileHandler
}

var _ schematic.Resolver = (*Manager)(nil)

// New returns an empty manager.
func New() *Manager {
	return &Manager{handlers: make(map[string]schematic.FileHandler)}
}

// Default returns a manager with the built-in formats registered.
func Default() *Manager {
	m := New()
	yamlHandler := YAML{}
	for _, ext := range YAMLExtensions {
		m.Register(ext, yamlHandler)
	}
	m.Register(SQLiteExtension, SQLite{})
	return m
}

// Register maps ext (with or without the leading dot) to h, replacing any
// previous handler for it.
func (m *Manager) Register(ext string, h schematic.FileHandler) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	m.handlers[ext] = h
	log.Debug(log.CatFile, "Registered file handler", "ext", ext)
}

// Resolve implements schematic.Resolver.
func (m *Manager) Resolve(path string) (schematic.FileHandler, bool) {
	ext, ok := m.Extension(path)
	if !ok {
		return nil, false
	}
	return m.handlers[ext], true
}

// Extension returns the registered extension matching path.
func (m *Manager) Extension(path string) (string, bool) {
	lower := strings.ToLower(path)
	best := ""
	for ext := range m.handlers {
		if strings.HasSuffix(lower, ext) && len(ext) > len(best) {
			best = ext
		}
	}
	return best, best != ""
}

// Extensions lists registered extensions in sorted order.
func (m *Manager) Extensions() []string {
	exts := make([]string, 0, len(m.handlers))
	for ext := range m.handlers {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}
