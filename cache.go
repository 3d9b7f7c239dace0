package docgen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// TemplateSource reads raw template files by the file name declared in the catalog.
type TemplateSource interface {
	ReadTemplate(name string) (string, error)
}

// TemplateValidator checks template text at preload time.
type TemplateValidator interface {
	Validate(name, text string) error
}

// ResolvedTemplate is a catalog entry paired with its loaded content.
type ResolvedTemplate struct {
	Definition TemplateDefinition
	Version    TemplateVersion
	Content    string
}

// defaultPreloadConcurrency bounds concurrent source reads during preload.
const defaultPreloadConcurrency = 8

// TemplateCache keeps template contents keyed by "{id}:{version}".
// It is safe for concurrent use. The map lock is never held during I/O;
// concurrent misses on one key share a single load.
type TemplateCache struct {
	catalog   *Catalog
	source    TemplateSource
	validator TemplateValidator
	logger    *zap.Logger
	observer  CacheObserver
	enabled   bool
	limit     int

	mu      sync.RWMutex
	entries map[string]string
	gen     uint64 // bumped by Clear and PreloadAll so stale loads are not stored

	loads singleflight.Group
}

// CacheOption configures a TemplateCache.
type CacheOption func(*TemplateCache)

// WithCacheEnabled turns content retention on or off. When off, preload
// still reads every template once and Resolve reads from the source each time.
func WithCacheEnabled(enabled bool) CacheOption {
	return func(c *TemplateCache) {
		c.enabled = enabled
	}
}

// WithCacheLogger sets the logger. Default is a no-op logger.
func WithCacheLogger(l *zap.Logger) CacheOption {
	return func(c *TemplateCache) {
		if l == nil {
			panic("docgen: WithCacheLogger called with nil logger")
		}
		c.logger = l
	}
}

// WithCacheObserver reports hits and misses to o.
func WithCacheObserver(o CacheObserver) CacheOption {
	return func(c *TemplateCache) {
		c.observer = o
	}
}

// WithCacheValidator checks every template's syntax during preload.
func WithCacheValidator(v TemplateValidator) CacheOption {
	return func(c *TemplateCache) {
		c.validator = v
	}
}

// WithPreloadConcurrency bounds concurrent reads during PreloadAll.
// Panics if n <= 0.
func WithPreloadConcurrency(n int) CacheOption {
	if n <= 0 {
		panic("docgen: WithPreloadConcurrency must be positive")
	}
	return func(c *TemplateCache) {
		c.limit = n
	}
}

// NewTemplateCache creates an empty cache over catalog and source.
func NewTemplateCache(catalog *Catalog, source TemplateSource, opts ...CacheOption) *TemplateCache {
	if catalog == nil || source == nil {
		panic("docgen: NewTemplateCache requires a catalog and a source")
	}
	c := &TemplateCache{
		catalog: catalog,
		source:  source,
		logger:  zap.NewNop(),
		enabled: true,
		limit:   defaultPreloadConcurrency,
		entries: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Catalog returns the catalog the cache serves.
func (c *TemplateCache) Catalog() *Catalog {
	return c.catalog
}

// Enabled reports whether contents are retained.
func (c *TemplateCache) Enabled() bool {
	return c.enabled
}

// PreloadAll loads every (id, version) in the catalog. Either every template
// loads and the cache holds exactly the catalog's pairs, or the cache is left
// empty and the returned error wraps ErrPreloadFailed and each failure.
func (c *TemplateCache) PreloadAll(ctx context.Context) error {
	start := time.Now()

	var (
		mu     sync.Mutex
		loaded = make(map[string]string, c.catalog.Pairs())
		errs   []error
	)

	var g errgroup.Group
	g.SetLimit(c.limit)

	for _, def := range c.catalog.List() {
		for _, tv := range def.Versions {
			key := cacheKey(def.ID, tv.Version)
			g.Go(func() error {
				content, err := c.load(ctx, key, tv)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return nil
				}
				loaded[key] = content
				return nil
			})
		}
	}
	_ = g.Wait() // workers record failures in errs

	c.mu.Lock()
	c.gen++
	if len(errs) > 0 || !c.enabled {
		c.entries = make(map[string]string)
	} else {
		c.entries = loaded
	}
	c.mu.Unlock()

	if len(errs) > 0 {
		c.logger.Error("template preload failed",
			zap.Int("failed", len(errs)),
			zap.Int("templates", c.catalog.Pairs()),
			zap.Error(errors.Join(errs...)))
		return fmt.Errorf("%w: %w", ErrPreloadFailed, errors.Join(errs...))
	}

	c.logger.Info("templates preloaded",
		zap.Int("templates", len(loaded)),
		zap.Bool("cacheEnabled", c.enabled),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Resolve returns the template for id and version; an empty version selects
// the default. Unknown ids and versions return *NotFoundError.
func (c *TemplateCache) Resolve(ctx context.Context, id, version string) (*ResolvedTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	def, tv, err := c.catalog.lookup(id, version)
	if err != nil {
		return nil, err
	}
	key := cacheKey(def.ID, tv.Version)

	if c.enabled {
		c.mu.RLock()
		content, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			c.observe(true)
			return &ResolvedTemplate{Definition: def, Version: tv, Content: content}, nil
		}
	}
	c.observe(false)

	v, err, _ := c.loads.Do(key, func() (any, error) {
		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		content, err := c.load(ctx, key, tv)
		if err != nil {
			return "", err
		}

		if c.enabled {
			c.mu.Lock()
			if c.gen == gen {
				c.entries[key] = content
			}
			c.mu.Unlock()
			c.logger.Warn("template cache miss, loaded on demand", zap.String("key", key))
		}
		return content, nil
	})
	if err != nil {
		return nil, err
	}

	return &ResolvedTemplate{Definition: def, Version: tv, Content: v.(string)}, nil
}

// Clear drops every cached content. The catalog is untouched; subsequent
// resolves reload from the source.
func (c *TemplateCache) Clear() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]string)
	c.gen++
	c.mu.Unlock()

	c.logger.Info("template cache cleared", zap.Int("evicted", n))
}

// Len returns the number of cached templates.
func (c *TemplateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *TemplateCache) load(ctx context.Context, key string, tv TemplateVersion) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, err := c.source.ReadTemplate(tv.FileName)
	if err != nil {
		return "", fmt.Errorf("loading template %s (%s): %w", key, tv.FileName, err)
	}
	if c.validator != nil {
		if err := c.validator.Validate(key, content); err != nil {
			return "", fmt.Errorf("loading template %s (%s): %w", key, tv.FileName, err)
		}
	}
	return content, nil
}

func (c *TemplateCache) observe(hit bool) {
	if c.observer != nil {
		c.observer.CacheLookup(hit)
	}
}
