package scanner

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Module is an interpreted module file.
type Module struct {
	// Path is the dotted module path, e.g. "plugins.alpha".
	Path string
	// File is the location of the source file inside the loader filesystem.
	File string
	// Package is the Go package name declared by the file.
	Package string

	decls  []declaration
	interp *interp.Interpreter
}

type declaration struct {
	name string
	kind Kind
}

// Names returns the exported top-level identifiers in definition order.
func (m *Module) Names() []string {
	names := make([]string, len(m.decls))
	for i, d := range m.decls {
		names[i] = d.name
	}
	return names
}

// Lookup evaluates a top-level identifier of the module.
func (m *Module) Lookup(name string) (Object, error) {
	for _, d := range m.decls {
		if d.name == name {
			return m.resolve(d)
		}
	}
	return Object{}, fmt.Errorf("scanner: %s has no exported identifier %s", m.Path, name)
}

func (m *Module) resolve(d declaration) (obj Object, err error) {
	obj = Object{Name: d.name, Kind: d.kind, Module: m.Path}
	expr := d.name
	if m.Package != "main" {
		expr = m.Package + "." + d.name
	}
	if d.kind == KindType {
		expr = "new(" + expr + ")"
	}
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	value, err := m.interp.Eval(expr)
	if err != nil {
		return obj, err
	}
	if d.kind == KindType && value.IsValid() && value.Kind() == reflect.Pointer {
		value = value.Elem()
	}
	obj.Value = value
	return obj, nil
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithLoaderSymbols exposes host packages to interpreted modules, in addition
// to the standard library.
func WithLoaderSymbols(symbols interp.Exports) LoaderOption {
	return func(l *Loader) {
		if symbols != nil {
			l.symbols = append(l.symbols, symbols)
		}
	}
}

// WithLoaderOutput redirects what interpreted code writes to stdout/stderr.
func WithLoaderOutput(stdout, stderr io.Writer) LoaderOption {
	return func(l *Loader) {
		l.stdout = stdout
		l.stderr = stderr
	}
}

// Loader interprets module files and memoizes the outcome per source file.
// A file's top-level initialisation runs at most once per Loader, whether it
// succeeded or failed.
type Loader struct {
	fs      billy.Filesystem
	symbols []interp.Exports
	stdout  io.Writer
	stderr  io.Writer

	mu      sync.Mutex
	modules map[string]loadResult
	loads   int
}

type loadResult struct {
	module *Module
	err    error
}

// NewLoader returns a Loader reading sources from fsys.
func NewLoader(fsys billy.Filesystem, opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:      fsys,
		stdout:  io.Discard,
		stderr:  io.Discard,
		modules: map[string]loadResult{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

var (
	defaultLoaderOnce sync.Once
	defaultLoader     *Loader
)

// DefaultLoader returns the process-wide loader over the host filesystem.
func DefaultLoader() *Loader {
	defaultLoaderOnce.Do(func() {
		defaultLoader = NewLoader(osfs.New("/"))
	})
	return defaultLoader
}

// Filesystem returns the filesystem sources are read from.
func (l *Loader) Filesystem() billy.Filesystem {
	return l.fs
}

// Loads reports how many modules were actually interpreted (cache misses).
func (l *Loader) Loads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads
}

// Load interprets the module referenced by ref, or returns the memoized
// result of an earlier load of the same file. A non-nil error is always a
// *LoadError.
func (l *Loader) Load(ref ModuleRef) (*Module, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if res, ok := l.modules[ref.File]; ok {
		return res.as(ref)
	}
	l.loads++
	mod, err := l.load(ref)
	if err != nil {
		err = &LoadError{Path: ref.Path, File: ref.File, Err: err}
		mod = nil
	}
	l.modules[ref.File] = loadResult{module: mod, err: err}
	return mod, err
}

// as returns the memoized outcome under ref's module path. The same file can
// be reached under different paths when search roots nest.
func (r loadResult) as(ref ModuleRef) (*Module, error) {
	if r.err != nil {
		var lerr *LoadError
		if errors.As(r.err, &lerr) && lerr.Path != ref.Path {
			return nil, &LoadError{Path: ref.Path, File: lerr.File, Err: lerr.Err}
		}
		return nil, r.err
	}
	if r.module.Path != ref.Path {
		alias := *r.module
		alias.Path = ref.Path
		return &alias, nil
	}
	return r.module, nil
}

func (l *Loader) load(ref ModuleRef) (mod *Module, err error) {
	code, err := readSource(l.fs, ref.File)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, ref.File, code, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	i := interp.New(interp.Options{Stdout: l.stdout, Stderr: l.stderr})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("stdlib symbols: %w", err)
	}
	for _, symbols := range l.symbols {
		if err := i.Use(symbols); err != nil {
			return nil, fmt.Errorf("host symbols: %w", err)
		}
	}
	defer func() {
		if r := recover(); r != nil {
			mod = nil
			err = panicError(r)
		}
	}()
	if _, err := i.Eval(string(code)); err != nil {
		return nil, fmt.Errorf("interpret: %w", err)
	}
	return &Module{
		Path:    ref.Path,
		File:    ref.File,
		Package: file.Name.Name,
		decls:   topLevelDeclarations(file),
		interp:  i,
	}, nil
}

func readSource(fsys billy.Filesystem, path string) ([]byte, error) {
	code, err := util.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return code, nil
}

// topLevelDeclarations lists exported identifiers in source order. Methods,
// generic declarations and blank identifiers are left out because they
// cannot be evaluated as standalone values.
func topLevelDeclarations(file *ast.File) []declaration {
	var decls []declaration
	add := func(ident *ast.Ident, kind Kind) {
		if ident == nil || !ident.IsExported() {
			return
		}
		decls = append(decls, declaration{name: ident.Name, kind: kind})
	}
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv != nil || d.Type.TypeParams != nil {
				continue
			}
			add(d.Name, KindFunc)
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.ValueSpec:
					kind := KindVar
					if d.Tok == token.CONST {
						kind = KindConst
					}
					for _, name := range s.Names {
						add(name, kind)
					}
				case *ast.TypeSpec:
					if s.TypeParams != nil {
						continue
					}
					add(s.Name, KindType)
				}
			}
		}
	}
	return decls
}
