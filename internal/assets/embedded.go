package assets

import (
	"embed"
	"fmt"
)

//go:embed templates/*
var templates embed.FS

//go:embed catalog.yaml
var catalog []byte

// CatalogFileName is the catalog file looked up in template directories.
const CatalogFileName = "catalog.yaml"

// EmbeddedLoader loads templates from the embedded filesystem.
// Implements Loader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// ReadTemplate loads a built-in template by file name.
func (e *EmbeddedLoader) ReadTemplate(name string) (string, error) {
	if err := ValidateFileName(name); err != nil {
		return "", err
	}

	content, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	return string(content), nil
}

// Catalog returns a copy of the built-in catalog YAML.
func Catalog() []byte {
	out := make([]byte, len(catalog))
	copy(out, catalog)
	return out
}

// Compile-time interface check.
var _ Loader = (*EmbeddedLoader)(nil)
