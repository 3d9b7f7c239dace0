package docgen

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alnah/go-docgen/internal/assets"
)

// fakeSource implements TemplateSource over an in-memory file map.
type fakeSource struct {
	mu      sync.Mutex
	files   map[string]string
	fail    map[string]error
	delay   time.Duration
	reads   atomic.Int64
	perFile map[string]int
}

func newFakeSource(files map[string]string) *fakeSource {
	return &fakeSource{
		files:   files,
		fail:    make(map[string]error),
		perFile: make(map[string]int),
	}
}

func (f *fakeSource) ReadTemplate(name string) (string, error) {
	f.reads.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.perFile[name]++
	if err, ok := f.fail[name]; ok {
		return "", err
	}
	content, ok := f.files[name]
	if !ok {
		return "", errors.New("no such file: " + name)
	}
	return content, nil
}

func (f *fakeSource) set(name, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = content
}

func (f *fakeSource) readsOf(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.perFile[name]
}

// testSourceFiles matches testDefinitions().
func testSourceFiles() map[string]string {
	return map[string]string{
		"alpha-v1.html.tmpl": "<p>alpha v1 {{.name}}</p>",
		"alpha-v2.html.tmpl": "<p>alpha v2 {{.name}}</p>",
		"beta-v1.html.tmpl":  "<p>beta v1 {{.name}}</p>",
	}
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(testDefinitions())
	if err != nil {
		t.Fatalf("NewCatalog() error: %v", err)
	}
	return c
}

func newEmbeddedSource(t *testing.T) TemplateSource {
	t.Helper()
	r, err := assets.NewResolver("")
	if err != nil {
		t.Fatalf("NewResolver() error: %v", err)
	}
	return r
}

// countingObserver implements CacheObserver and GenerationObserver.
type countingObserver struct {
	hits, misses atomic.Int64

	mu    sync.Mutex
	calls []observedGeneration
}

type observedGeneration struct {
	format Format
	err    error
	size   int
}

func (o *countingObserver) CacheLookup(hit bool) {
	if hit {
		o.hits.Add(1)
		return
	}
	o.misses.Add(1)
}

func (o *countingObserver) ObserveGeneration(format Format, err error, _ time.Duration, size int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, observedGeneration{format: format, err: err, size: size})
}

func (o *countingObserver) generations() []observedGeneration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]observedGeneration(nil), o.calls...)
}

func serviceAgreementV1Data() map[string]any {
	return map[string]any{
		"client": map[string]any{
			"name": "Acme Corp",
			"address": map[string]any{
				"street":  "1 Main Street",
				"city":    "Berlin",
				"country": "Germany",
			},
		},
		"provider":      map[string]any{"name": "Initech GmbH"},
		"effectiveDate": "2025-01-15",
		"billing": map[string]any{
			"rate":     150,
			"currency": "EUR",
			"unit":     "hour",
		},
		"legal": map[string]any{"governingLaw": "Germany"},
	}
}

func serviceAgreementV2Data() map[string]any {
	return map[string]any{
		"client": map[string]any{
			"name": "Acme Corp",
			"address": map[string]any{
				"street":     "1 Main Street",
				"city":       "Austin",
				"state":      "TX",
				"postalCode": "73301",
				"country":    "USA",
			},
		},
		"provider": map[string]any{
			"name":       "Initech LLC",
			"entityType": "a Delaware limited liability company",
		},
		"services": map[string]any{
			"description": "**Software** development and maintenance.",
		},
		"billing": map[string]any{
			"rate":         200,
			"currency":     "usd",
			"unit":         "hour",
			"paymentTerms": "Net 30",
		},
		"legal": map[string]any{
			"governingLaw":      "the State of Texas",
			"disputeResolution": "binding arbitration",
		},
		"effectiveDate": "2025-02-01",
	}
}

func ndaData() map[string]any {
	return map[string]any{
		"partyA": map[string]any{
			"name":    "Globex SA",
			"address": map[string]any{"city": "Paris", "country": "France"},
		},
		"partyB": map[string]any{
			"name":    "Umbrella BV",
			"address": map[string]any{"city": "Amsterdam", "country": "Netherlands"},
		},
		"purpose":       "evaluating a potential partnership",
		"effectiveDate": "2025-03-01",
		"term":          map[string]any{"years": 2},
		"legal":         map[string]any{"governingLaw": "France"},
	}
}
