package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
)

//go:embed assets/*/*.tmpl
var embeddedFS embed.FS

// Template is a parsed template loaded from a filesystem.
type Template struct {
	ID      string
	Path    string
	Content string

	parsed *template.Template
}

// Render executes the template with the provided data and returns the result.
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.parsed.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", t.ID, err)
	}

	return buf.String(), nil
}

// Option configures a Registry
type Option func(*Registry)

// WithFuncs adds template functions. They must be registered before parsing,
// so they apply to every template the registry loads.
func WithFuncs(funcs template.FuncMap) Option {
	return func(r *Registry) {
		for name, fn := range funcs {
			r.funcs[name] = fn
		}
	}
}

// Only restricts eager loading to the given top-level directories.
// Other templates are still loaded on first use.
func Only(dirs ...string) Option {
	return func(r *Registry) {
		r.dirs = append(r.dirs, dirs...)
	}
}

// Registry holds loaded templates and resolves them by ID.
// IDs are slash paths relative to the root without the extension, e.g. "reports/snapshot".
type Registry struct {
	basePath  string
	fs        fs.FS
	funcs     template.FuncMap
	dirs      []string
	templates map[string]*Template
	mu        sync.RWMutex
}

// NewRegistry loads all templates from the provided base path.
func NewRegistry(basePath string, opts ...Option) (*Registry, error) {
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve template base path: %w", err)
	}

	return NewRegistryFromFS(os.DirFS(absBase), absBase, opts...)
}

// NewRegistryFromFS constructs a registry from an arbitrary filesystem.
// rootPath is used for deriving template IDs when walking the filesystem.
func NewRegistryFromFS(filesystem fs.FS, rootPath string, opts ...Option) (*Registry, error) {
	r := &Registry{
		basePath:  rootPath,
		fs:        filesystem,
		funcs:     DefaultFuncs(),
		templates: map[string]*Template{},
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.loadAll(); err != nil {
		return nil, err
	}

	return r, nil
}

// NewEmbeddedRegistry builds a registry over the embedded assets
func NewEmbeddedRegistry(opts ...Option) (*Registry, error) {
	subFS, err := fs.Sub(embeddedFS, "assets")
	if err != nil {
		return nil, fmt.Errorf("prepare embedded templates: %w", err)
	}

	return NewRegistryFromFS(subFS, "assets", opts...)
}

// Get returns a lazily initialized default registry rooted at embedded assets.
// It preloads the prompt and onboarding templates, which only use DefaultFuncs.
func Get() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = NewEmbeddedRegistry(Only("prompts", "onboarding"))
	})

	if defaultErr != nil {
		panic(defaultErr)
	}

	return defaultRegistry
}

// GetTemplate retrieves a template by its ID.
func (r *Registry) GetTemplate(id string) (*Template, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[id]
	r.mu.RUnlock()

	if ok {
		return tmpl, nil
	}

	// Templates added after initialization are loaded on first use.
	path := filepath.ToSlash(id) + ".tmpl"
	if _, err := fs.Stat(r.fs, path); err == nil {
		if err := r.loadTemplate(path); err != nil {
			return nil, err
		}
		r.mu.RLock()
		tmpl = r.templates[id]
		r.mu.RUnlock()
		if tmpl != nil {
			return tmpl, nil
		}
	}

	return nil, fmt.Errorf("template not found: %s", id)
}

// Render executes a template by ID using the provided data.
func (r *Registry) Render(id string, data any) (string, error) {
	tmpl, err := r.GetTemplate(id)
	if err != nil {
		return "", err
	}

	return tmpl.Render(data)
}

// Has reports whether a template with id is loaded
func (r *Registry) Has(id string) bool {
	_, err := r.GetTemplate(id)
	return err == nil
}

// List returns all known template IDs.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}

	return ids
}

func (r *Registry) loadAll() error {
	return fs.WalkDir(r.fs, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != "." && len(r.dirs) > 0 && !r.wanted(path) {
				return fs.SkipDir
			}
			return nil
		}

		if filepath.Ext(path) != ".tmpl" {
			return nil
		}

		return r.loadTemplate(path)
	})
}

func (r *Registry) wanted(dir string) bool {
	top := strings.SplitN(filepath.ToSlash(dir), "/", 2)[0]
	for _, d := range r.dirs {
		if d == top {
			return true
		}
	}
	return false
}

func (r *Registry) loadTemplate(path string) error {
	id := r.pathToID(path)
	content, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return fmt.Errorf("read template %s: %w", id, err)
	}

	parsed, err := template.New(id).Funcs(r.funcs).Parse(string(content))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", id, err)
	}

	r.mu.Lock()
	r.templates[id] = &Template{
		ID:      id,
		Path:    path,
		Content: string(content),
		parsed:  parsed,
	}
	r.mu.Unlock()

	return nil
}

func (r *Registry) pathToID(rel string) string {
	normalized := filepath.ToSlash(rel)
	normalized = strings.TrimPrefix(normalized, "/")
	return strings.TrimSuffix(normalized, filepath.Ext(normalized))
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)
