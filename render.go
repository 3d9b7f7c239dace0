package docgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alnah/go-docgen/internal/dateutil"
)

// Renderer executes template text against document data in strict mode:
// any reference to an absent or null value fails the render.
// Output is HTML-escaped contextually; escaping cannot be disabled.
type Renderer struct {
	md    goldmark.Markdown
	title cases.Caser
	now   func() time.Time
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithClock overrides the clock used to resolve "today" in formatDate.
func WithClock(now func() time.Time) RendererOption {
	return func(r *Renderer) {
		if now == nil {
			panic("docgen: WithClock called with nil func")
		}
		r.now = now
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
			// Raw HTML in markdown fields is dropped (no html.WithUnsafe).
		),
		title: cases.Title(language.English),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render parses text as a template named name and executes it with data.
// Failures are *RenderError values wrapping ErrRenderFailed.
func (r *Renderer) Render(ctx context.Context, name, text string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data = normalize(data)

	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(r.funcs(data)).
		Parse(text)
	if err != nil {
		return "", &RenderError{Template: name, Err: err}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&ctxWriter{ctx: ctx, w: &buf}, data); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &RenderError{Template: name, Path: missingPath(err), Err: err}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Validate parses text without executing it, reporting syntax errors and
// unknown helper names.
func (r *Renderer) Validate(name, text string) error {
	if _, err := template.New(name).Funcs(r.funcs(nil)).Parse(text); err != nil {
		return &RenderError{Template: name, Err: err}
	}
	return nil
}

// funcs binds the helper functions to one render's data.
func (r *Renderer) funcs(data map[string]any) template.FuncMap {
	return template.FuncMap{
		"lookup": func(path string) (any, error) {
			v, ok := Lookup(data, path)
			if !ok {
				return nil, &missingPathError{path: path}
			}
			return v, nil
		},
		"optional": func(path string) any {
			v, ok := Lookup(data, path)
			if !ok {
				return ""
			}
			return v
		},
		"has": func(path string) bool {
			_, ok := Lookup(data, path)
			return ok
		},
		"upper": func(v any) string { return strings.ToUpper(toString(v)) },
		"lower": func(v any) string { return strings.ToLower(toString(v)) },
		"title": func(v any) string { return r.title.String(toString(v)) },
		"join":  join,
		"formatDate": func(v any, layout string) (string, error) {
			return dateutil.Format(v, layout, r.now())
		},
		"markdown": r.markdown,
	}
}

// markdown converts a markdown string field to HTML. The result is marked
// safe only because goldmark runs without unsafe mode.
func (r *Renderer) markdown(v any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(toString(v)), &buf); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return template.HTML(buf.String()), nil // #nosec G203 -- goldmark output without unsafe mode
}

func join(sep string, items any) (string, error) {
	switch list := items.(type) {
	case []string:
		return strings.Join(list, sep), nil
	case []any:
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = toString(item)
		}
		return strings.Join(parts, sep), nil
	default:
		return "", fmt.Errorf("join: unsupported type %T", items)
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// missingPathError is returned by the lookup helper for an absent path.
type missingPathError struct {
	path string
}

func (e *missingPathError) Error() string {
	return fmt.Sprintf("missing value at %q", e.path)
}

// execPathPattern matches the field chain text/template reports in
// execution errors: `executing "x" at <.client.address.city>: ...`.
var execPathPattern = regexp.MustCompile(`at <\.?([A-Za-z0-9_.]+)>`)

// missingPath extracts the dotted data path from a template execution error.
func missingPath(err error) string {
	var mp *missingPathError
	if errors.As(err, &mp) {
		return mp.path
	}
	if m := execPathPattern.FindStringSubmatch(err.Error()); m != nil {
		return m[1]
	}
	return ""
}

// ctxWriter fails writes once ctx is done, stopping long executions.
type ctxWriter struct {
	ctx context.Context
	w   io.Writer
}

func (c *ctxWriter) Write(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.w.Write(p)
}
