package language

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"sync"

	"github.com/samber/lo"
)

//go:embed languages/*.yml
var builtin embed.FS

// Registry maps language codes to languages.
type Registry struct {
	mu        sync.RWMutex
	languages map[string]*Language
}

func NewRegistry() *Registry {
	return &Registry{languages: make(map[string]*Language)}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns a registry holding the built-in rule tables.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		r := NewRegistry()
		if err := r.LoadFS(builtin, "languages"); err != nil {
			defaultErr = err
			return
		}
		defaultRegistry = r
	})
	return defaultRegistry, defaultErr
}

// Load returns a fresh registry of the built-in languages, extended or
// overridden by the rule tables in dir when dir is set.
func Load(dir string) (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadFS(builtin, "languages"); err != nil {
		return nil, err
	}
	if dir != "" {
		if err := r.LoadDir(dir); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers l, replacing any language with the same code.
func (r *Registry) Add(l *Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.languages[l.Code()] = l
}

func (r *Registry) Get(code string) (*Language, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.languages[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
	}
	return l, nil
}

// Codes lists the registered codes, sorted.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := lo.Keys(r.languages)
	slices.Sort(codes)
	return codes
}

// Languages lists the registered languages ordered by code.
func (r *Registry) Languages() []*Language {
	codes := r.Codes()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.FilterMap(codes, func(code string, _ int) (*Language, bool) {
		l, ok := r.languages[code]
		return l, ok
	})
}

// LoadFS parses and checks every *.yml file in dir of fsys.
func (r *Registry) LoadFS(fsys fs.FS, dir string) error {
	files, err := fs.Glob(fsys, path.Join(dir, "*.yml"))
	if err != nil {
		return err
	}
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		l, err := Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := l.Check(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		r.Add(l)
	}
	return nil
}

// LoadDir loads the rule tables of a directory on disk.
func (r *Registry) LoadDir(dir string) error {
	return r.LoadFS(os.DirFS(dir), ".")
}
