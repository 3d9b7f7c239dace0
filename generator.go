package docgen

import (
	"bytes"
	"context"
	"io"
	"time"

	"go.uber.org/zap"
)

// TemplateResolver finds template content by id and version.
type TemplateResolver interface {
	Resolve(ctx context.Context, id, version string) (*ResolvedTemplate, error)
	Catalog() *Catalog
}

// DocumentRenderer executes template text against data.
type DocumentRenderer interface {
	Render(ctx context.Context, name, text string, data map[string]any) (string, error)
}

// Compile-time interface checks.
var (
	_ TemplateResolver  = (*TemplateCache)(nil)
	_ DocumentRenderer  = (*Renderer)(nil)
	_ TemplateValidator = (*Renderer)(nil)
)

// Generator turns requests into documents: resolve, render, optionally
// convert to PDF, then package with MIME type and file name.
// It is safe for concurrent use.
type Generator struct {
	templates TemplateResolver
	renderer  DocumentRenderer
	pdf       PDFConverter
	logger    *zap.Logger
	observer  GenerationObserver
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		if l == nil {
			panic("docgen: WithLogger called with nil logger")
		}
		g.logger = l
	}
}

// WithObserver reports every generation outcome to o.
func WithObserver(o GenerationObserver) GeneratorOption {
	return func(g *Generator) {
		g.observer = o
	}
}

// NewGenerator creates a Generator. pdf may be nil, in which case PDF
// requests fail with ErrEngineNotReady.
func NewGenerator(templates TemplateResolver, renderer DocumentRenderer, pdf PDFConverter, opts ...GeneratorOption) *Generator {
	if templates == nil || renderer == nil {
		panic("docgen: NewGenerator requires templates and a renderer")
	}
	g := &Generator{
		templates: templates,
		renderer:  renderer,
		pdf:       pdf,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Templates lists the catalog in declaration order.
func (g *Generator) Templates() []TemplateDefinition {
	return g.templates.Catalog().List()
}

// Generate produces the whole document in memory.
func (g *Generator) Generate(ctx context.Context, req Request) (*Document, error) {
	out, err := g.run(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Document{
		Content:  out.content,
		MIMEType: out.format.MIMEType(),
		FileName: out.fileName,
	}, nil
}

// GenerateStream produces the document as a reader. Failures surface here,
// before any byte is delivered; reading Body yields exactly the bytes
// Generate returns for the same request.
func (g *Generator) GenerateStream(ctx context.Context, req Request) (*DocumentStream, error) {
	out, err := g.run(ctx, req)
	if err != nil {
		return nil, err
	}
	return &DocumentStream{
		Body:     io.NopCloser(bytes.NewReader(out.content)),
		MIMEType: out.format.MIMEType(),
		FileName: out.fileName,
		Size:     int64(len(out.content)),
	}, nil
}

type generated struct {
	content  []byte
	format   Format
	fileName string
}

func (g *Generator) run(ctx context.Context, req Request) (*generated, error) {
	start := time.Now()

	out, err := g.produce(ctx, req)

	format := req.Format
	size := 0
	if out != nil {
		format = out.format
		size = len(out.content)
	}
	if g.observer != nil {
		g.observer.ObserveGeneration(format, err, time.Since(start), size)
	}

	if err != nil {
		g.logFailure(req, err)
		return nil, err
	}

	g.logger.Debug("document generated",
		zap.String("templateId", req.TemplateID),
		zap.String("version", req.Version),
		zap.String("format", string(out.format)),
		zap.Int("bytes", size),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

func (g *Generator) produce(ctx context.Context, req Request) (*generated, error) {
	format, err := ParseFormat(string(req.Format))
	if err != nil {
		return nil, err
	}

	tmpl, err := g.templates.Resolve(ctx, req.TemplateID, req.Version)
	if err != nil {
		return nil, err
	}

	data := req.Data
	if data == nil {
		data = map[string]any{}
	}

	name := cacheKey(tmpl.Definition.ID, tmpl.Version.Version)
	html, err := g.renderer.Render(ctx, name, tmpl.Content, data)
	if err != nil {
		return nil, err
	}

	out := &generated{
		format:   format,
		fileName: tmpl.Version.DefaultOutputName + format.Extension(),
	}

	switch format {
	case FormatPDF:
		if g.pdf == nil {
			return nil, ErrEngineNotReady
		}
		out.content, err = g.pdf.ToPDF(ctx, html)
		if err != nil {
			return nil, err
		}
	default:
		out.content = []byte(html)
	}
	return out, nil
}

func (g *Generator) logFailure(req Request, err error) {
	kind := KindOf(err)
	fields := []zap.Field{
		zap.String("templateId", req.TemplateID),
		zap.String("version", req.Version),
		zap.String("format", string(req.Format)),
		zap.Stringer("kind", kind),
		zap.Error(err),
	}
	if kind.IsCallerError() {
		g.logger.Warn("document generation rejected", fields...)
		return
	}
	g.logger.Error("document generation failed", fields...)
}
