package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_Table(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	code := runMain(context.Background(), []string{"templates"}, env.Environment)

	require.Equal(t, ExitSuccess, code, "stderr: %s", env.stderr.String())
	out := env.stdout.String()
	assert.Contains(t, out, "ID")
	assert.Regexp(t, `service-agreement\s+v2\s+\*`, out)
	assert.Regexp(t, `nda\s+v1\s+\*`, out)
	assert.Regexp(t, `nda\s+v2\s+Mutual NDA`, out)
}

func TestTemplates_YAML(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	code := runMain(context.Background(), []string{"templates", "--yaml"}, env.Environment)

	require.Equal(t, ExitSuccess, code, "stderr: %s", env.stderr.String())
	assert.Contains(t, env.stdout.String(), "id: nda")
	assert.Contains(t, env.stdout.String(), "fileName: nda-v1.html.tmpl")
}

func TestTemplates_CustomDir(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"catalog.yaml": memoCatalog})
	env := newTestEnv(t)

	code := runMain(context.Background(), []string{"templates", "--templates-dir", dir}, env.Environment)

	require.Equal(t, ExitSuccess, code, "stderr: %s", env.stderr.String())
	assert.Contains(t, env.stdout.String(), "memo")
	assert.NotContains(t, env.stdout.String(), "nda")
}
