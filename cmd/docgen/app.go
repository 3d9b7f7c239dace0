package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/assets"
	"github.com/alnah/go-docgen/internal/config"
	"github.com/alnah/go-docgen/internal/metrics"
)

// ErrReadCatalog reports an unreadable catalog file.
var ErrReadCatalog = errors.New("cannot read template catalog")

// app holds the wired template pipeline shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Recorder
	source   *assets.Resolver
	catalog  *docgen.Catalog
	renderer *docgen.Renderer
	cache    *docgen.TemplateCache
}

// newApp loads the catalog and builds the cache. It does not preload.
func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	source, err := assets.NewResolver(cfg.Templates.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", docgen.ErrPreloadFailed, err)
	}

	catalog, err := loadCatalog(cfg.Templates.Catalog, source)
	if err != nil {
		return nil, err
	}

	rec := metrics.New()
	renderer := docgen.NewRenderer()
	cache := docgen.NewTemplateCache(catalog, source,
		docgen.WithCacheEnabled(cfg.Templates.CacheEnabled),
		docgen.WithCacheLogger(logger.Named("templates")),
		docgen.WithCacheObserver(rec),
		docgen.WithCacheValidator(renderer),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  rec,
		source:   source,
		catalog:  catalog,
		renderer: renderer,
		cache:    cache,
	}, nil
}

// generator builds a Generator over the app's cache; pdf may be nil for
// HTML-only use.
func (a *app) generator(pdf docgen.PDFConverter) *docgen.Generator {
	return docgen.NewGenerator(a.cache, a.renderer, pdf,
		docgen.WithLogger(a.logger.Named("generator")),
		docgen.WithObserver(a.metrics),
	)
}

// loadCatalog reads path when set, otherwise the template directory's
// catalog.yaml, otherwise the built-in catalog.
func loadCatalog(path string, source *assets.Resolver) (*docgen.Catalog, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = source.ReadCatalog()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadCatalog, err)
	}
	return docgen.ParseCatalog(data)
}
