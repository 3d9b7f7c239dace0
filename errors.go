package docgen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for library operations.
var (
	// Resolution errors (caller errors).
	ErrTemplateNotFound = errors.New("unknown template id")
	ErrVersionNotFound  = errors.New("unknown template version")
	ErrInvalidFormat    = errors.New("invalid output format")

	// Rendering errors.
	ErrRenderFailed = errors.New("template rendering failed")

	// PDF engine errors.
	ErrEngineNotReady = errors.New("PDF engine not ready")
	ErrEngineClosed   = fmt.Errorf("%w: engine closed", ErrEngineNotReady)
	ErrBrowserLaunch  = errors.New("failed to launch browser")
	ErrPDFConversion  = errors.New("PDF conversion failed")

	// Startup errors.
	ErrPreloadFailed  = errors.New("template preload failed")
	ErrInvalidCatalog = errors.New("invalid template catalog")
)

// Kind classifies an error into the generation failure taxonomy.
// Transports map kinds to status codes instead of inspecting messages.
type Kind int

// Error kinds.
const (
	KindInternal Kind = iota
	KindTemplateNotFound
	KindVersionNotFound
	KindInvalidFormat
	KindRenderFailed
	KindEngineNotReady
	KindPDFConversion
	KindPreloadFailed
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTemplateNotFound:
		return "TemplateNotFound"
	case KindVersionNotFound:
		return "VersionNotFound"
	case KindInvalidFormat:
		return "InvalidFormat"
	case KindRenderFailed:
		return "RenderFailed"
	case KindEngineNotReady:
		return "EngineNotReady"
	case KindPDFConversion:
		return "PdfConversionFailed"
	case KindPreloadFailed:
		return "PreloadFailed"
	default:
		return "Internal"
	}
}

// IsCallerError reports whether the kind is caused by the request itself
// rather than by the service.
func (k Kind) IsCallerError() bool {
	switch k {
	case KindTemplateNotFound, KindVersionNotFound, KindInvalidFormat:
		return true
	}
	return false
}

// KindOf returns the Kind of err. Unclassified errors are KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrPreloadFailed):
		return KindPreloadFailed
	case errors.Is(err, ErrTemplateNotFound):
		return KindTemplateNotFound
	case errors.Is(err, ErrVersionNotFound):
		return KindVersionNotFound
	case errors.Is(err, ErrInvalidFormat):
		return KindInvalidFormat
	case errors.Is(err, ErrRenderFailed):
		return KindRenderFailed
	case errors.Is(err, ErrEngineNotReady):
		return KindEngineNotReady
	case errors.Is(err, ErrPDFConversion), errors.Is(err, ErrBrowserLaunch):
		return KindPDFConversion
	}
	return KindInternal
}

// NotFoundError reports an unknown template id or version, with the
// identifiers a caller could have used instead.
type NotFoundError struct {
	TemplateID string
	Version    string   // empty when the template id itself is unknown
	Known      []string // known template ids, or known versions of TemplateID
}

func (e *NotFoundError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("Unknown template id %q. Available templates: %s",
			e.TemplateID, strings.Join(e.Known, ", "))
	}
	return fmt.Sprintf("Unknown version %q for template %q. Available versions: %s",
		e.Version, e.TemplateID, strings.Join(e.Known, ", "))
}

func (e *NotFoundError) Unwrap() error {
	if e.Version == "" {
		return ErrTemplateNotFound
	}
	return ErrVersionNotFound
}

// RenderError reports a strict-mode rendering failure.
// Path is the dotted data path that could not be resolved, if known.
type RenderError struct {
	Template string
	Path     string
	Err      error
}

func (e *RenderError) Error() string {
	var b strings.Builder
	b.WriteString(ErrRenderFailed.Error())
	if e.Template != "" {
		fmt.Fprintf(&b, " (%s)", e.Template)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, ": missing value at %q", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RenderError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRenderFailed}
	}
	return []error{ErrRenderFailed, e.Err}
}
