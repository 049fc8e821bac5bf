package filemanager

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/schematic/internal/schematic"
)

// YAMLExtensions are claimed by YAML in Default.
var YAMLExtensions = []string{".yaml", ".yml", ".oreg"}

// YAML stores a document as a single human-readable YAML file.
type YAML struct{}

var _ schematic.FileHandler = YAML{}

func (YAML) Load(doc *schematic.Document, path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- caller chose the document path
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var s sheet
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return restore(doc, s)
}

// Save writes through a temp file and rename so a failed save never
// truncates the previous version.
func (YAML) Save(doc *schematic.Document, path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(snapshot(doc)); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
