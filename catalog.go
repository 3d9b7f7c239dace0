package docgen

import (
	"fmt"

	"github.com/alnah/go-docgen/internal/assets"
	"github.com/alnah/go-docgen/internal/yamlutil"
)

// TemplateVersion describes one renderable revision of a template.
type TemplateVersion struct {
	Version           string `yaml:"version"`
	Description       string `yaml:"description"`
	FileName          string `yaml:"fileName"`          // source file read by the TemplateSource
	DefaultOutputName string `yaml:"defaultOutputName"` // file name stem, extension added per format
}

// TemplateDefinition describes a template family and its versions.
type TemplateDefinition struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name"`
	Description    string            `yaml:"description"`
	DefaultVersion string            `yaml:"defaultVersion"`
	Versions       []TemplateVersion `yaml:"versions"`
}

// FindVersion returns the version entry named v.
func (d TemplateDefinition) FindVersion(v string) (TemplateVersion, bool) {
	for _, tv := range d.Versions {
		if tv.Version == v {
			return tv, true
		}
	}
	return TemplateVersion{}, false
}

// VersionNames returns the version identifiers in declaration order.
func (d TemplateDefinition) VersionNames() []string {
	names := make([]string, len(d.Versions))
	for i, tv := range d.Versions {
		names[i] = tv.Version
	}
	return names
}

func (d TemplateDefinition) clone() TemplateDefinition {
	d.Versions = append([]TemplateVersion(nil), d.Versions...)
	return d
}

// Catalog is the immutable registry of template definitions.
type Catalog struct {
	defs  []TemplateDefinition
	index map[string]int
}

// NewCatalog validates defs and builds a Catalog.
// Returns ErrInvalidCatalog when ids repeat, a definition has no versions,
// versions repeat, a file name is empty, or the default version is unknown.
func NewCatalog(defs []TemplateDefinition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: no templates defined", ErrInvalidCatalog)
	}

	c := &Catalog{
		defs:  make([]TemplateDefinition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}

	for i, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: template #%d has empty id", ErrInvalidCatalog, i)
		}
		if _, dup := c.index[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate template id %q", ErrInvalidCatalog, d.ID)
		}
		if err := validateDefinition(d); err != nil {
			return nil, err
		}
		c.index[d.ID] = len(c.defs)
		c.defs = append(c.defs, d.clone())
	}

	return c, nil
}

func validateDefinition(d TemplateDefinition) error {
	if len(d.Versions) == 0 {
		return fmt.Errorf("%w: template %q has no versions", ErrInvalidCatalog, d.ID)
	}

	seen := make(map[string]struct{}, len(d.Versions))
	for _, v := range d.Versions {
		if v.Version == "" {
			return fmt.Errorf("%w: template %q has a version with empty name", ErrInvalidCatalog, d.ID)
		}
		if _, dup := seen[v.Version]; dup {
			return fmt.Errorf("%w: template %q repeats version %q", ErrInvalidCatalog, d.ID, v.Version)
		}
		seen[v.Version] = struct{}{}

		if err := assets.ValidateFileName(v.FileName); err != nil {
			return fmt.Errorf("%w: template %q version %q: %v", ErrInvalidCatalog, d.ID, v.Version, err)
		}
		if v.DefaultOutputName == "" {
			return fmt.Errorf("%w: template %q version %q has empty defaultOutputName", ErrInvalidCatalog, d.ID, v.Version)
		}
	}

	if _, ok := seen[d.DefaultVersion]; !ok {
		return fmt.Errorf("%w: template %q default version %q is not declared", ErrInvalidCatalog, d.ID, d.DefaultVersion)
	}
	return nil
}

// ParseCatalog decodes a YAML catalog document (a list of definitions).
// Unknown keys are rejected.
func ParseCatalog(data []byte) (*Catalog, error) {
	var defs []TemplateDefinition
	if err := yamlutil.DecodeStrict(data, &defs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return NewCatalog(defs)
}

// DefaultCatalog returns the built-in catalog (service-agreement, nda).
// Panics if the embedded catalog is invalid, which is a build defect.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(assets.Catalog())
	if err != nil {
		panic("docgen: embedded catalog: " + err.Error())
	}
	return c
}

// List returns every definition in declaration order.
func (c *Catalog) List() []TemplateDefinition {
	out := make([]TemplateDefinition, len(c.defs))
	for i, d := range c.defs {
		out[i] = d.clone()
	}
	return out
}

// Find returns the definition with the given id.
func (c *Catalog) Find(id string) (TemplateDefinition, bool) {
	i, ok := c.index[id]
	if !ok {
		return TemplateDefinition{}, false
	}
	return c.defs[i].clone(), true
}

// IDs returns template ids in declaration order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.defs))
	for i, d := range c.defs {
		ids[i] = d.ID
	}
	return ids
}

// Pairs returns the number of (id, version) pairs in the catalog.
func (c *Catalog) Pairs() int {
	n := 0
	for _, d := range c.defs {
		n += len(d.Versions)
	}
	return n
}

// lookup resolves id and version (empty = default) against the catalog.
func (c *Catalog) lookup(id, version string) (TemplateDefinition, TemplateVersion, error) {
	i, ok := c.index[id]
	if !ok {
		return TemplateDefinition{}, TemplateVersion{}, &NotFoundError{TemplateID: id, Known: c.IDs()}
	}
	def := c.defs[i]

	if version == "" {
		version = def.DefaultVersion
	}
	tv, ok := def.FindVersion(version)
	if !ok {
		return TemplateDefinition{}, TemplateVersion{}, &NotFoundError{
			TemplateID: id,
			Version:    version,
			Known:      def.VersionNames(),
		}
	}
	return def.clone(), tv, nil
}

// cacheKey identifies a (template, version) pair in the cache.
func cacheKey(id, version string) string {
	return id + ":" + version
}
