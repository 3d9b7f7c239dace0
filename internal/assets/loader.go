package assets

// Loader defines the contract for reading template source files.
// Implementations may load from embedded assets, filesystem, etc.
type Loader interface {
	// ReadTemplate returns the raw content of the template file name
	// (for example "nda-v1.html.tmpl").
	// Returns ErrTemplateNotFound if the file doesn't exist.
	// Returns ErrInvalidFileName if the name contains invalid characters.
	ReadTemplate(name string) (string, error)
}
