package docgen

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Format is the output representation of a generated document.
type Format string

// Output formats.
const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// MIME types per format.
const (
	MIMETypeHTML = "text/html; charset=utf-8"
	MIMETypePDF  = "application/pdf"
)

// ParseFormat normalizes s into a Format. The empty string selects FormatHTML.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatHTML:
		return FormatHTML, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q (must be html or pdf)", ErrInvalidFormat, s)
}

// MIMEType returns the content type for f.
func (f Format) MIMEType() string {
	if f == FormatPDF {
		return MIMETypePDF
	}
	return MIMETypeHTML
}

// Extension returns the file extension for f, with the leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Request describes one document to generate.
type Request struct {
	TemplateID string
	Version    string         // empty selects the template's default version
	Format     Format         // empty selects FormatHTML
	Data       map[string]any // JSON-compatible tree
}

// Document is a fully materialized generated document.
type Document struct {
	Content  []byte
	MIMEType string
	FileName string
}

// DocumentStream is a generated document delivered as a reader.
// The caller must close Body.
type DocumentStream struct {
	Body     io.ReadCloser
	MIMEType string
	FileName string
	Size     int64 // byte length, or -1 when unknown
}

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in millimeters.
const (
	MinMarginMM     = 5.0
	MaxMarginMM     = 75.0
	DefaultMarginMM = 20.0
)

const mmPerInch = 25.4

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	MarginMM    float64 // applied to all sides
}

// DefaultPageSettings returns A4 portrait with 20mm margins.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeA4,
		Orientation: OrientationPortrait,
		MarginMM:    DefaultMarginMM,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if _, _, ok := paperDimensions(p.Size); !ok {
		return fmt.Errorf("invalid page size %q (must be letter, a4, or legal)", p.Size)
	}

	switch strings.ToLower(p.Orientation) {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("invalid orientation %q (must be portrait or landscape)", p.Orientation)
	}

	if p.MarginMM < MinMarginMM || p.MarginMM > MaxMarginMM {
		return fmt.Errorf("invalid margin %.1fmm (must be between %.0f and %.0f)", p.MarginMM, MinMarginMM, MaxMarginMM)
	}

	return nil
}

// paperDimensions returns portrait width and height in inches.
func paperDimensions(size string) (w, h float64, ok bool) {
	switch strings.ToLower(size) {
	case PageSizeA4:
		return 8.27, 11.69, true
	case PageSizeLetter:
		return 8.5, 11, true
	case PageSizeLegal:
		return 8.5, 14, true
	}
	return 0, 0, false
}

// GenerationObserver receives one call per Generate or GenerateStream.
// err is nil on success.
type GenerationObserver interface {
	ObserveGeneration(format Format, err error, elapsed time.Duration, size int)
}

// CacheObserver receives one call per cache lookup.
type CacheObserver interface {
	CacheLookup(hit bool)
}
