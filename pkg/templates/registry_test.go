package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLoadAndRender(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "reports")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	tplPath := filepath.Join(dir, "greeting.tmpl")
	require.NoError(t, os.WriteFile(tplPath, []byte("Hello {{.Name}}"), 0o644))

	reg, err := NewRegistry(base)
	require.NoError(t, err)

	tmpl, err := reg.GetTemplate("reports/greeting")
	require.NoError(t, err)

	rendered, err := tmpl.Render(map[string]string{"Name": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Alice", rendered)

	// Parsed content is kept after the file changes on disk.
	require.NoError(t, os.WriteFile(tplPath, []byte("Hi {{.Name}}"), 0o644))
	rendered, err = tmpl.Render(map[string]string{"Name": "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Bob", rendered)
}

func TestRegistryLazyLoad(t *testing.T) {
	base := t.TempDir()
	reg, err := NewRegistry(base)
	require.NoError(t, err)
	assert.False(t, reg.Has("alerts/price"))

	path := filepath.Join(base, "alerts", "price.tmpl")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("Alert {{.Symbol}}"), 0o644))

	rendered, err := reg.Render("alerts/price", map[string]string{"Symbol": "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, "Alert AAPL", rendered)
}

func TestRegistryMissingTemplate(t *testing.T) {
	reg, err := NewRegistry(t.TempDir())
	require.NoError(t, err)

	_, err = reg.Render("reports/nope", nil)
	assert.ErrorContains(t, err, "template not found: reports/nope")
}

func TestRegistryFuncs(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "x.tmpl"), []byte(`{{shout .}} {{safe "<i>"}}`), 0o644))

	reg, err := NewRegistry(base, WithFuncs(template.FuncMap{
		"shout": func(s string) string { return strings.ToUpper(s) + "!" },
	}))
	require.NoError(t, err)

	out, err := reg.Render("x", "buy")
	require.NoError(t, err)
	assert.Equal(t, "BUY! &lt;i&gt;", out)
}

func TestEmbeddedPromptsRender(t *testing.T) {
	reg := Get()

	for _, id := range []string{"prompts/analysis", "prompts/why", "prompts/compare", "prompts/ask"} {
		assert.True(t, reg.Has(id), id)
	}

	out, err := reg.Render("prompts/why", map[string]any{
		"Symbol":   "AAPL",
		"Industry": "Technology",
		"Change1D": "+1.20%",
		"Change5D": "-0.40%",
		"Change1M": "+3.10%",
		"Headlines": []string{
			"Apple unveils new chip",
		},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "- Apple unveils new chip")
	assert.Contains(t, out, "BULL CASE")
}

func TestRegistryOnlyLoadsSelectedDirs(t *testing.T) {
	base := t.TempDir()
	for _, dir := range []string{"prompts", "reports"} {
		require.NoError(t, os.MkdirAll(filepath.Join(base, dir), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(base, "prompts", "a.tmpl"), []byte("ok"), 0o644))
	// reports need a func this registry does not have
	require.NoError(t, os.WriteFile(filepath.Join(base, "reports", "b.tmpl"), []byte("{{price .}}"), 0o644))

	_, err := NewRegistry(base)
	require.Error(t, err)

	reg, err := NewRegistry(base, Only("prompts"))
	require.NoError(t, err)
	assert.Equal(t, []string{"prompts/a"}, reg.List())
	assert.False(t, reg.Has("reports/b"))
}
