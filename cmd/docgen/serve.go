package main

import (
	"context"
	"path/filepath"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-docgen/internal/assets"
	"github.com/alnah/go-docgen/internal/httpapi"
	"github.com/alnah/go-docgen/internal/watch"
)

// runServe preloads every template, starts the browser and serves the API
// until ctx is canceled. The browser is shut down after the server drains.
func runServe(ctx context.Context, args []string, env *Environment) error {
	fs := newFlagSet("serve", env.Stderr)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg, err := loadConfig(fs, env)
	if err != nil {
		return err
	}
	logger, err := env.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf))

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	if err := a.cache.PreloadAll(ctx); err != nil {
		return err
	}

	engine := env.NewEngine(cfg, logger)
	if err := engine.Initialize(ctx); err != nil {
		return err
	}
	defer func() {
		if err := engine.Shutdown(); err != nil {
			logger.Warn("PDF engine shutdown failed", zap.Error(err))
		}
	}()

	srv := httpapi.New(a.generator(engine),
		httpapi.WithLogger(logger.Named("http")),
		httpapi.WithObserver(a.metrics),
		httpapi.WithMetricsHandler(a.metrics.Handler()),
		httpapi.WithRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		httpapi.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
	)

	var watcher *watch.Watcher
	if cfg.Templates.Watch {
		watcher, err = watch.New(cfg.Templates.Dir, reloadTemplates(a), watch.WithLogger(logger.Named("watch")))
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Server.Addr)
	})
	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}
	return g.Wait()
}

// reloadTemplates drops cached templates and preloads them again. A failed
// reload leaves the cache empty so later requests load lazily.
func reloadTemplates(a *app) watch.Handler {
	return func(ctx context.Context, paths []string) {
		for _, p := range paths {
			if filepath.Base(p) == assets.CatalogFileName {
				a.logger.Warn("catalog changed; restart to apply new entries", zap.String("path", p))
			}
		}

		a.cache.Clear()
		if err := a.cache.PreloadAll(ctx); err != nil {
			a.logger.Error("template reload failed; serving with lazy loads", zap.Error(err))
			return
		}
		a.logger.Info("templates reloaded", zap.Int("templates", a.cache.Len()))
	}
}
