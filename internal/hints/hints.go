// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"errors"
	"os"
	"strings"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/config"
	"github.com/alnah/go-docgen/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// For returns the hint matching err, or "" when there is none.
func For(err error) string {
	var notFound *docgen.NotFoundError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, docgen.ErrBrowserLaunch):
		return ForBrowserLaunch()
	case errors.Is(err, docgen.ErrPDFConversion):
		return ForTimeout()
	case errors.Is(err, docgen.ErrPreloadFailed), errors.Is(err, docgen.ErrInvalidCatalog):
		return ForTemplates()
	case errors.Is(err, config.ErrConfigNotFound):
		return ForConfigNotFound()
	case errors.As(err, &notFound):
		return format("run `docgen templates` to list ids and versions")
	}
	return ""
}

// ForBrowserLaunch returns hints for browser launch errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserLaunch() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	sandboxOff := os.Getenv("PDF_NO_SANDBOX") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1"
	if (inCI || IsInContainer()) && !sandboxOff {
		hints = append(hints, "set PDF_NO_SANDBOX=true for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}

	hints = append(hints, "run `docgen doctor --launch` to diagnose")
	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the conversion timeout.
func ForTimeout() string {
	return format("for large documents, raise PDF_TIMEOUT_MS or --pdf-timeout-ms")
}

// ForTemplates returns a hint for catalog and preload failures.
func ForTemplates() string {
	return format("check TEMPLATES_DIR and the catalog's fileName entries; `docgen doctor` lists failures")
}

// ForConfigNotFound returns a hint for a missing --config file.
func ForConfigNotFound() string {
	return format("use --config /path/to/docgen.yaml or rely on environment variables")
}

// ForOutputDirectory returns hints for output file errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
