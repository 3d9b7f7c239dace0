package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	docgen "github.com/alnah/go-docgen"
	"github.com/alnah/go-docgen/internal/config"
)

// fakeEngine records lifecycle calls and returns a minimal PDF.
type fakeEngine struct {
	initErr   error
	inits     atomic.Int32
	shutdowns atomic.Int32
}

func (f *fakeEngine) Initialize(context.Context) error {
	f.inits.Add(1)
	return f.initErr
}

func (f *fakeEngine) Shutdown() error {
	f.shutdowns.Add(1)
	return nil
}

func (f *fakeEngine) ToPDF(_ context.Context, html string) ([]byte, error) {
	if html == "" {
		return nil, errors.New("empty html")
	}
	return []byte("%PDF-1.7\n%fake\n"), nil
}

// testEnv is a hermetic Environment: no dotenv files, zaptest logging,
// a fake engine and no browser on PATH.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	engine *fakeEngine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		engine: &fakeEngine{},
	}
	te.Environment = &Environment{
		Stdin:    strings.NewReader(""),
		Stdout:   te.stdout,
		Stderr:   te.stderr,
		EnvFiles: []string{},
		NewLogger: func(string, string) (*zap.Logger, error) {
			return zaptest.NewLogger(t), nil
		},
		NewEngine: func(*config.Config, *zap.Logger) pdfEngine {
			return te.engine
		},
		LookBrowser: func() (string, bool) { return "", false },
	}
	return te
}

const ndaJSON = `{
  "partyA": {"name": "Globex SA", "address": {"city": "Paris", "country": "France"}},
  "partyB": {"name": "Umbrella BV", "address": {"city": "Amsterdam", "country": "Netherlands"}},
  "purpose": "evaluating a potential partnership",
  "effectiveDate": "2025-03-01",
  "term": {"years": 2},
  "legal": {"governingLaw": "France"}
}`

const ndaYAML = `partyA:
  name: Globex SA
  address: {city: Paris, country: France}
partyB:
  name: Umbrella BV
  address: {city: Amsterdam, country: Netherlands}
purpose: evaluating a potential partnership
effectiveDate: "2025-03-01"
term: {years: 2}
legal: {governingLaw: France}
`

// writeFiles creates files under a temp dir and returns the dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

const memoCatalog = `- id: memo
  name: Memo
  description: Internal memo
  defaultVersion: v1
  versions:
    - version: v1
      description: Memo (v1)
      fileName: memo-v1.html.tmpl
      defaultOutputName: memo-v1
`

var assertErrBrowser = fmt.Errorf("%w: chrome not installed", docgen.ErrBrowserLaunch)
