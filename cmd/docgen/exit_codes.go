package main

import (
	"errors"
	"os"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/config"
	"github.com/alnah/go-docgen/internal/fileutil"
	"github.com/alnah/go-docgen/internal/logging"
)

// Exit codes for the docgen command.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or request
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
	ExitPreload = 5 // Templates could not be loaded
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Template loading (exit 5). Checked first: a preload failure may wrap
	// a missing file.
	if errors.Is(err, docgen.ErrPreloadFailed) ||
		errors.Is(err, docgen.ErrInvalidCatalog) ||
		errors.Is(err, ErrReadCatalog) {
		return ExitPreload
	}

	// Browser errors (exit 4)
	if errors.Is(err, docgen.ErrBrowserLaunch) ||
		errors.Is(err, docgen.ErrPDFConversion) ||
		errors.Is(err, docgen.ErrEngineNotReady) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadData) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, fileutil.ErrEmptyPath) {
		return ExitIO
	}

	// Usage/config/request errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidData) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, logging.ErrInvalidFormat) ||
		errors.Is(err, docgen.ErrTemplateNotFound) ||
		errors.Is(err, docgen.ErrVersionNotFound) ||
		errors.Is(err, docgen.ErrInvalidFormat) ||
		errors.Is(err, docgen.ErrRenderFailed) {
		return ExitUsage
	}

	return ExitGeneral
}
