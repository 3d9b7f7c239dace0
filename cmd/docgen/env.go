package main

import (
	"context"
	"io"
	"os"

	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/config"
	"github.com/alnah/go-docgen/internal/logging"
)

// pdfEngine is the browser lifecycle the commands drive.
type pdfEngine interface {
	docgen.PDFConverter
	Initialize(ctx context.Context) error
	Shutdown() error
}

var _ pdfEngine = (*docgen.Engine)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	EnvFiles  []string // nil loads config.DefaultEnvFiles
	NewLogger func(level, format string) (*zap.Logger, error)
	NewEngine func(cfg *config.Config, logger *zap.Logger) pdfEngine

	// LookBrowser locates a Chrome binary when none is configured.
	LookBrowser func() (string, bool)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		NewLogger: logging.New,
		NewEngine: newChromeEngine,

		LookBrowser: launcher.LookPath,
	}
}

// newChromeEngine builds the rod-backed engine from the PDF settings.
func newChromeEngine(cfg *config.Config, logger *zap.Logger) pdfEngine {
	return docgen.NewEngine(
		docgen.WithTimeout(cfg.PDF.Timeout()),
		docgen.WithMaxPages(cfg.PDF.MaxPages),
		docgen.WithBrowserBin(cfg.PDF.BrowserBin),
		docgen.WithNoSandbox(cfg.PDF.NoSandbox),
		docgen.WithPageSettings(cfg.PDF.PageSettings()),
		docgen.WithEngineLogger(logger.Named("pdf")),
	)
}
