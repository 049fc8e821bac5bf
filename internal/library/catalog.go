package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/schematic/internal/cachemanager"
	"github.com/zjrosen/schematic/internal/item"
	"github.com/zjrosen/schematic/internal/log"
	"github.com/zjrosen/schematic/internal/tracing"
)

// ErrUnknownPart is returned when no definition has the requested name.
var ErrUnknownPart = errors.New("unknown part")

var definitionExts = []string{".yaml", ".yml"}

// Catalog resolves part names to definitions. Files in the library
// directories override built-ins of the same name; earlier directories win.
type Catalog struct {
	dirs     []string
	builtins map[string]Definition
	lookups  *cachemanager.ReadThrough[string, Definition]
}

// NewCatalog creates a catalog over dirs. Lookups are cached in cache for
// ttl; a nil cache disables caching.
func NewCatalog(dirs []string, cache cachemanager.CacheManager[string, Definition], ttl time.Duration) *Catalog {
	c := &Catalog{
		dirs:     slices.Clone(dirs),
		builtins: make(map[string]Definition),
	}
	for _, def := range Builtins() {
		c.builtins[def.Name] = def
	}
	c.lookups = cachemanager.NewReadThrough(cache, c.load, ttl, cache == nil)
	return c
}

// Lookup returns the definition called name. Names are case-insensitive.
func (c *Catalog) Lookup(ctx context.Context, name string) (Definition, error) {
	name = normalize(name)
	ctx, span := tracing.Start(ctx, tracing.SpanLibraryLookup, attribute.String(tracing.AttrPartName, name))
	def, err := c.lookups.Get(ctx, name)
	tracing.End(span, err)
	return def, err
}

func (c *Catalog) load(_ context.Context, name string) (Definition, error) {
	for _, dir := range c.dirs {
		for _, ext := range definitionExts {
			path := filepath.Join(dir, name+ext)
			def, err := ReadDefinition(path, name)
			if err == nil {
				log.Debug(log.CatLibrary, "Loaded definition", "name", name, "path", path)
				return def, nil
			}
			if !errors.Is(err, os.ErrNotExist) {
				return Definition{}, fmt.Errorf("load part %q: %w", name, err)
			}
		}
	}
	if def, ok := c.builtins[name]; ok {
		return def, nil
	}
	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownPart, name)
}

// List returns every available definition sorted by name. Unreadable
// files are logged and skipped.
func (c *Catalog) List(ctx context.Context) ([]Definition, error) {
	byName := make(map[string]Definition, len(c.builtins))
	for name, def := range c.builtins {
		byName[name] = def
	}

	// Reverse so earlier directories overwrite later ones.
	for _, dir := range slices.Backward(c.dirs) {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read library dir %s: %w", dir, err)
		}
		for _, e := range entries {
			ext := filepath.Ext(e.Name())
			if e.IsDir() || !slices.Contains(definitionExts, strings.ToLower(ext)) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			def, err := ReadDefinition(path, strings.TrimSuffix(e.Name(), ext))
			if err != nil {
				log.Warn(log.CatLibrary, "Skipping part definition", "path", path, "error", err)
				continue
			}
			byName[def.Name] = def
		}
	}

	defs := make([]Definition, 0, len(byName))
	for _, def := range byName {
		defs = append(defs, def)
	}
	slices.SortFunc(defs, func(a, b Definition) int { return strings.Compare(a.Name, b.Name) })
	return defs, nil
}

// NewPart places the named part at pos. A non-empty value overrides the
// definition's default.
func (c *Catalog) NewPart(ctx context.Context, name string, pos item.Coord, value string) (*item.Part, error) {
	def, err := c.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	spec := def.Spec()
	if value != "" {
		spec.Value = value
	}
	return item.NewPart(spec, pos), nil
}

// Invalidate drops cached definitions so the next lookup rereads the files.
func (c *Catalog) Invalidate(ctx context.Context, names ...string) {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = normalize(n)
	}
	c.lookups.Invalidate(ctx, keys...)
}
