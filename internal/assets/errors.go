package assets

import "errors"

// Sentinel errors for template source operations.
var (
	// ErrTemplateNotFound indicates the requested template file does not exist.
	ErrTemplateNotFound = errors.New("template file not found")

	// ErrCatalogNotFound indicates no catalog file exists in the directory.
	ErrCatalogNotFound = errors.New("catalog file not found")

	// ErrInvalidFileName indicates the file name contains path separators
	// or traversal sequences.
	ErrInvalidFileName = errors.New("invalid template file name")

	// ErrInvalidBasePath indicates the configured directory is not valid.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an I/O error occurred while reading a file.
	ErrAssetRead = errors.New("failed to read template file")

	// ErrPathTraversal indicates an attempt to access files outside the base path.
	ErrPathTraversal = errors.New("path traversal detected")
)
