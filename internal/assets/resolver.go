package assets

import (
	"errors"
)

// Resolver combines custom and embedded loaders with fallback logic.
// When a custom directory is configured, it tries it first, then falls back
// to embedded if the template file is not found there.
type Resolver struct {
	custom   *FilesystemLoader // nil if no custom directory configured
	embedded Loader
}

// NewResolver creates a Resolver.
// If dir is empty, only embedded templates are used.
// Returns error if dir is set but invalid.
func NewResolver(dir string) (*Resolver, error) {
	r := &Resolver{
		embedded: NewEmbeddedLoader(),
	}

	if dir != "" {
		fsLoader, err := NewFilesystemLoader(dir)
		if err != nil {
			return nil, err
		}
		r.custom = fsLoader
	}

	return r, nil
}

// ReadTemplate loads a template file, trying the custom directory first.
func (r *Resolver) ReadTemplate(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.ReadTemplate(name)
	}

	content, err := r.custom.ReadTemplate(name)
	if err == nil {
		return content, nil
	}

	// Only fall back for "not found", never for validation or I/O errors.
	if !errors.Is(err, ErrTemplateNotFound) {
		return "", err
	}

	return r.embedded.ReadTemplate(name)
}

// ReadCatalog returns the catalog YAML: the custom directory's catalog.yaml
// when present, the built-in catalog otherwise.
func (r *Resolver) ReadCatalog() ([]byte, error) {
	if r.custom == nil {
		return Catalog(), nil
	}
	data, err := r.custom.ReadCatalog()
	if errors.Is(err, ErrCatalogNotFound) {
		return Catalog(), nil
	}
	return data, err
}

// HasCustomLoader returns true if a custom template directory is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Dir returns the custom template directory, or "" when embedded only.
func (r *Resolver) Dir() string {
	if r.custom == nil {
		return ""
	}
	return r.custom.Dir()
}

// Compile-time interface check.
var _ Loader = (*Resolver)(nil)
