package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctor_NoBrowser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	code := runMain(context.Background(), []string{"doctor", "--json"}, env.Environment)

	assert.Equal(t, ExitGeneral, code)

	var got doctorResult
	require.NoError(t, json.Unmarshal(env.stdout.Bytes(), &got))
	assert.Equal(t, "errors", got.Status)
	assert.False(t, got.Chrome.Found)
	assert.Equal(t, "embedded", got.Templates.Source)
	assert.Equal(t, 4, got.Templates.Loaded)
	assert.Contains(t, got.Errors[0], "Chrome/Chromium not found")
}

func TestDoctor_BrowserFoundAndLaunched(t *testing.T) {
	t.Parallel()

	// Any existing executable stands in for Chrome; --version may fail,
	// which only adds a warning.
	bin := filepath.Join(t.TempDir(), "chrome")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho 'Chromium 130.0'\n"), 0o755))

	env := newTestEnv(t)
	code := runMain(context.Background(), []string{"doctor", "--browser-bin", bin, "--launch"}, env.Environment)

	assert.Equal(t, ExitSuccess, code, "stdout: %s", env.stdout.String())
	assert.Contains(t, env.stdout.String(), "[OK] Found at "+bin)
	assert.Contains(t, env.stdout.String(), "[OK] Loaded: 4 template versions")
	assert.Contains(t, env.stdout.String(), "[OK] Launch:")
	assert.EqualValues(t, 1, env.engine.inits.Load())
	assert.EqualValues(t, 1, env.engine.shutdowns.Load())
}

func TestDoctor_BrokenTemplates(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"catalog.yaml": memoCatalog})
	env := newTestEnv(t)
	code := runMain(context.Background(), []string{"doctor", "--templates-dir", dir}, env.Environment)

	assert.Equal(t, ExitGeneral, code)
	assert.Contains(t, env.stdout.String(), "Templates:")
	assert.Contains(t, env.stdout.String(), "Status: NOT READY")
}

func TestDoctor_BadFlag(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	code := runMain(context.Background(), []string{"doctor", "--nope"}, env.Environment)

	assert.Equal(t, ExitUsage, code)
}
