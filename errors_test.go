package docgen

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		want       Kind
		wantCaller bool
	}{
		{name: "nil", err: nil, want: KindInternal},
		{name: "unknown template", err: &NotFoundError{TemplateID: "x"}, want: KindTemplateNotFound, wantCaller: true},
		{name: "unknown version", err: &NotFoundError{TemplateID: "x", Version: "v9"}, want: KindVersionNotFound, wantCaller: true},
		{name: "invalid format", err: fmt.Errorf("%w: docx", ErrInvalidFormat), want: KindInvalidFormat, wantCaller: true},
		{name: "render", err: &RenderError{Path: "a.b"}, want: KindRenderFailed},
		{name: "engine closed", err: ErrEngineClosed, want: KindEngineNotReady},
		{name: "browser launch", err: fmt.Errorf("%w: boom", ErrBrowserLaunch), want: KindPDFConversion},
		{name: "pdf", err: fmt.Errorf("%w: timeout", ErrPDFConversion), want: KindPDFConversion},
		{name: "preload wrapping render", err: fmt.Errorf("%w: %w", ErrPreloadFailed, &RenderError{}), want: KindPreloadFailed},
		{name: "unclassified", err: errors.New("disk full"), want: KindInternal},
		{name: "context", err: context.Canceled, want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := KindOf(tt.err)
			if got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
			if got.IsCallerError() != tt.wantCaller {
				t.Errorf("IsCallerError() = %v, want %v", got.IsCallerError(), tt.wantCaller)
			}
		})
	}
}

func TestNotFoundError_Error(t *testing.T) {
	t.Parallel()

	tmpl := &NotFoundError{TemplateID: "lease", Known: []string{"service-agreement", "nda"}}
	if got, want := tmpl.Error(), `Unknown template id "lease". Available templates: service-agreement, nda`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	ver := &NotFoundError{TemplateID: "nda", Version: "v3", Known: []string{"v1", "v2"}}
	if got, want := ver.Error(), `Unknown version "v3" for template "nda". Available versions: v1, v2`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestRenderError_Error(t *testing.T) {
	t.Parallel()

	cause := errors.New(`map has no entry for key "city"`)
	err := &RenderError{Template: "nda:v1", Path: "partyA.address.city", Err: cause}

	want := `template rendering failed (nda:v1): missing value at "partyA.address.city": map has no entry for key "city"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrRenderFailed) || !errors.Is(err, cause) {
		t.Error("RenderError does not unwrap to ErrRenderFailed and its cause")
	}
}
