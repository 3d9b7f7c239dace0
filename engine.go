package docgen

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/alnah/go-docgen/internal/process"
)

// PDFConverter converts a complete HTML document to PDF bytes.
type PDFConverter interface {
	ToPDF(ctx context.Context, html string) ([]byte, error)
}

// EngineState is the lifecycle state of an Engine.
type EngineState int

// Engine states. Transitions only move forward.
const (
	EngineUninitialized EngineState = iota
	EngineReady
	EngineClosed
)

func (s EngineState) String() string {
	switch s {
	case EngineReady:
		return "ready"
	case EngineClosed:
		return "closed"
	default:
		return "uninitialized"
	}
}

// defaultTimeout bounds a single conversion.
const defaultTimeout = 30 * time.Second

// networkIdleWindow is how long the page must stay without network
// requests before it counts as settled.
const networkIdleWindow = 500 * time.Millisecond

// browserSession is a launched browser able to print pages.
type browserSession interface {
	print(ctx context.Context, html string, opts *proto.PagePrintToPDF) ([]byte, error)
	close() error
}

type engineConfig struct {
	timeout   time.Duration
	maxPages  int
	bin       string
	noSandbox bool
	page      *PageSettings
}

// Engine converts HTML to PDF with one shared headless Chrome.
// Each conversion gets its own incognito context and page, so concurrent
// conversions never observe each other's content.
type Engine struct {
	cfg    engineConfig
	logger *zap.Logger
	launch func(engineConfig, *zap.Logger) (browserSession, error)

	mu      sync.RWMutex // read: conversions; write: state transitions
	state   EngineState
	session browserSession
	slots   *semaphore.Weighted
	size    int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTimeout sets the per-conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) EngineOption {
	if d <= 0 {
		panic("docgen: WithTimeout duration must be positive")
	}
	return func(e *Engine) {
		e.cfg.timeout = d
	}
}

// WithMaxPages bounds concurrent conversions. Zero selects ResolvePoolSize(0).
func WithMaxPages(n int) EngineOption {
	return func(e *Engine) {
		e.cfg.maxPages = n
	}
}

// WithBrowserBin uses a pre-installed browser binary instead of rod's download.
func WithBrowserBin(path string) EngineOption {
	return func(e *Engine) {
		e.cfg.bin = path
	}
}

// WithNoSandbox disables the Chrome sandbox (containers, CI).
func WithNoSandbox(v bool) EngineOption {
	return func(e *Engine) {
		e.cfg.noSandbox = v
	}
}

// WithPageSettings overrides the default A4 page with 20mm margins.
// Panics if p is invalid.
func WithPageSettings(p *PageSettings) EngineOption {
	if err := p.Validate(); err != nil {
		panic("docgen: WithPageSettings: " + err.Error())
	}
	return func(e *Engine) {
		if p != nil {
			e.cfg.page = p
		}
	}
}

// WithEngineLogger sets the logger. Default is a no-op logger.
func WithEngineLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l == nil {
			panic("docgen: WithEngineLogger called with nil logger")
		}
		e.logger = l
	}
}

// NewEngine creates an uninitialized Engine. Call Initialize before ToPDF.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		cfg: engineConfig{
			timeout: defaultTimeout,
			page:    DefaultPageSettings(),
		},
		logger: zap.NewNop(),
		launch: launchRod,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() EngineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Size returns the number of concurrent page slots, or 0 before Initialize.
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.size
}

// Initialize launches the browser. It is a no-op when already ready and
// fails with ErrEngineClosed after Shutdown. On launch failure the engine
// stays uninitialized and the error wraps ErrBrowserLaunch.
func (e *Engine) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case EngineReady:
		return nil
	case EngineClosed:
		return ErrEngineClosed
	}

	start := time.Now()
	session, err := e.launch(e.cfg, e.logger)
	if err != nil {
		e.logger.Error("browser launch failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	e.session = session
	e.size = ResolvePoolSize(e.cfg.maxPages)
	e.slots = semaphore.NewWeighted(int64(e.size))
	e.state = EngineReady

	e.logger.Info("PDF engine ready",
		zap.Int("pages", e.size),
		zap.Duration("timeout", e.cfg.timeout),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// ToPDF renders html in a fresh page and prints it. The call is bounded by
// the engine timeout; expiry fails only this call with ErrPDFConversion.
func (e *Engine) ToPDF(ctx context.Context, html string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	switch e.state {
	case EngineUninitialized:
		return nil, ErrEngineNotReady
	case EngineClosed:
		return nil, ErrEngineClosed
	}

	tctx, cancel := context.WithTimeout(ctx, e.cfg.timeout)
	defer cancel()

	if err := e.slots.Acquire(tctx, 1); err != nil {
		return nil, e.conversionError(ctx, "waiting for page slot", err)
	}
	defer e.slots.Release(1)

	pdf, err := e.session.print(tctx, html, buildPDFOptions(e.cfg.page))
	if err != nil {
		return nil, e.conversionError(ctx, "printing page", err)
	}
	return pdf, nil
}

// conversionError returns the caller's own cancellation untouched and
// classifies everything else, timeouts included, as ErrPDFConversion.
func (e *Engine) conversionError(ctx context.Context, stage string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	e.logger.Warn("PDF conversion failed", zap.String("stage", stage), zap.Error(err))
	return fmt.Errorf("%w: %s: %v", ErrPDFConversion, stage, err)
}

// Shutdown waits for in-flight conversions, then closes the browser.
// Later calls are no-ops; the engine cannot be initialized again.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == EngineClosed {
		return nil
	}
	e.state = EngineClosed

	if e.session == nil {
		return nil
	}
	err := e.session.close()
	e.session = nil
	if err != nil {
		e.logger.Warn("browser close failed", zap.Error(err))
		return err
	}
	e.logger.Info("PDF engine shut down")
	return nil
}

// Compile-time interface check.
var _ PDFConverter = (*Engine)(nil)

// buildPDFOptions maps page settings to Chrome's print parameters.
// Chrome header and footer are never printed.
func buildPDFOptions(p *PageSettings) *proto.PagePrintToPDF {
	if p == nil {
		p = DefaultPageSettings()
	}
	w, h, _ := paperDimensions(p.Size)
	margin := p.MarginMM / mmPerInch

	return &proto.PagePrintToPDF{
		Landscape:           strings.EqualFold(p.Orientation, OrientationLandscape),
		PaperWidth:          floatPtr(w),
		PaperHeight:         floatPtr(h),
		MarginTop:           floatPtr(margin),
		MarginBottom:        floatPtr(margin),
		MarginLeft:          floatPtr(margin),
		MarginRight:         floatPtr(margin),
		PrintBackground:     true,
		DisplayHeaderFooter: false,
		PreferCSSPageSize:   false,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// rodSession implements browserSession using go-rod.
// Rod downloads Chromium on first run when no binary is configured.
type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	logger   *zap.Logger
}

func launchRod(cfg engineConfig, logger *zap.Logger) (browserSession, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-dev-shm-usage").
		Set("disable-gpu")

	// Use pre-installed browser if specified (Docker/containerized environments)
	if cfg.bin != "" {
		l = l.Bin(cfg.bin)
	}

	// NoSandbox required for CI and containerized environments
	if cfg.noSandbox || cfg.bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, err
	}

	logger.Debug("browser launched", zap.Int("pid", l.PID()), zap.String("controlURL", u))
	return &rodSession{launcher: l, browser: browser, logger: logger}, nil
}

func (s *rodSession) print(ctx context.Context, html string, opts *proto.PagePrintToPDF) ([]byte, error) {
	incognito, err := s.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	defer func() { _ = incognito.Close() }()

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	defer func() { _ = page.Close() }()

	p := page.Context(ctx)

	waitIdle := p.WaitRequestIdle(networkIdleWindow, nil, nil, nil)
	if err := p.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("setting content: %w", err)
	}
	waitIdle()

	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("waiting for load: %w", err)
	}

	reader, err := p.PDF(opts)
	if err != nil {
		return nil, fmt.Errorf("printing: %w", err)
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading PDF stream: %w", err)
	}
	return pdf, nil
}

// close closes the browser, then kills the process group in case Chrome
// left children behind, and removes the user-data directory.
func (s *rodSession) close() error {
	err := s.browser.Close()

	// launcher.Kill covers the case where the group kill fails.
	_ = process.KillTree(s.launcher.PID())
	s.launcher.Kill()
	s.launcher.Cleanup()

	return err
}
