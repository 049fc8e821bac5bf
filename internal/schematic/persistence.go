package schematic

import (
	"errors"
	"os"
	"strings"

	"github.com/zjrosen/schematic/internal/log"
)

// FileHandler reads and writes one file format.
type FileHandler interface {
	// Load populates doc in place from path.
	Load(doc *Document, path string) error
	// Save writes doc to path.
	Save(doc *Document, path string) error
}

// Resolver finds the handler for a path, usually by extension.
type Resolver interface {
	Resolve(path string) (FileHandler, bool)
}

// Load reads path into a new document and registers it with reg.
//
// The document is only registered once the handler succeeds. On any error
// the partially built document is closed and nothing stays registered.
// On success the filename is set to path (unless the handler chose one) and
// the dirty flag is cleared.
func Load(reg *Registry, resolver Resolver, path string, opts ...Option) (*Document, error) {
	path = strings.TrimPrefix(path, "file://")

	if _, err := os.Stat(path); err != nil {
		return nil, &Error{Kind: KindNotFound, Path: path, Reason: "file does not exist", Err: err}
	}

	if resolver == nil {
		return nil, &Error{Kind: KindNotFound, Path: path, Reason: "unknown file format"}
	}
	handler, ok := resolver.Resolve(path)
	if !ok {
		return nil, &Error{Kind: KindNotFound, Path: path, Reason: "unknown file format"}
	}

	doc := newDocument(append([]Option{WithResolver(resolver)}, opts...)...)
	if err := handler.Load(doc, path); err != nil {
		doc.Close()
		log.ErrorErr(log.CatFile, "Load failed", err, "path", path)
		var docErr *Error
		if errors.As(err, &docErr) {
			return nil, err
		}
		return nil, &Error{Kind: KindLoadFailed, Path: path, Reason: "load failed", Err: err}
	}

	if doc.filename == "" {
		doc.filename = path
	}
	doc.dirty = false
	doc.registry = reg
	if reg != nil {
		reg.Register(doc)
	}

	log.Info(log.CatFile, "Loaded document", "path", path, "items", doc.ItemCount())
	return doc, nil
}

// Save writes the document to its filename through the resolver. On
// success the dirty flag is cleared. A handler error is returned unchanged
// and leaves the dirty flag as it was.
func (d *Document) Save() error {
	if d.filename == "" {
		return &Error{Kind: KindNotFound, Reason: "document has no filename"}
	}
	if d.resolver == nil {
		return &Error{Kind: KindNotFound, Path: d.filename, Reason: "unknown file format"}
	}
	handler, ok := d.resolver.Resolve(d.filename)
	if !ok {
		return &Error{Kind: KindNotFound, Path: d.filename, Reason: "unknown file format"}
	}

	if err := handler.Save(d, d.filename); err != nil {
		log.ErrorErr(log.CatFile, "Save failed", err, "path", d.filename)
		return err
	}

	d.dirty = false
	log.Info(log.CatFile, "Saved document", "path", d.filename, "items", d.ItemCount())
	return nil
}

// SaveAs sets the filename and saves.
func (d *Document) SaveAs(path string) error {
	d.SetFilename(path)
	return d.Save()
}

// SetResolver replaces the resolver used by Save.
func (d *Document) SetResolver(r Resolver) { d.resolver = r }
