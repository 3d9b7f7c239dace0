// Package assets provides document template sources and the built-in catalog.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in templates)
//	    ├── FilesystemLoader  - loads from a template directory on disk
//	    └── Resolver          - combines both with custom-first fallback
//
// EmbeddedLoader provides the built-in templates (service-agreement, nda)
// and the catalog describing them, embedded at compile time.
//
// FilesystemLoader reads templates from an operator-provided directory,
// with path traversal protection and symlink resolution.
//
// Resolver is the source handed to the template cache. It tries the custom
// FilesystemLoader first, falling back to EmbeddedLoader only when the file
// is not found. This allows overriding a single template version while
// keeping the others.
//
// # Directory Structure
//
// Template files live flat in the directory, one per (template, version):
//
//	{dir}/
//	├── catalog.yaml                    # optional catalog override
//	├── service-agreement-v1.html.tmpl
//	└── nda-v2.html.tmpl
//
// # Security
//
// File names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within its directory.
package assets
