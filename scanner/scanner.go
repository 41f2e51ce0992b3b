package scanner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/traefik/yaegi/interp"

	"github.com/kingrea/looksee/internal/logging"
)

// State is the orchestrator phase of a Scanner.
type State string

const (
	StateIdle       State = "idle"
	StateWalking    State = "walking"
	StateLoading    State = "loading"
	StateInspecting State = "inspecting"
	StateMatching   State = "matching"
	StateDone       State = "done"
)

// Option customizes a Scanner.
type Option func(*Scanner)

// WithPredicate sets the predicate. The default accepts everything.
func WithPredicate(pred Predicate) Option {
	return func(s *Scanner) {
		if pred != nil {
			s.predicate = pred
		}
	}
}

// WithCallback sets the callback. The default does nothing.
func WithCallback(cb Callback) Option {
	return func(s *Scanner) {
		if cb != nil {
			s.callback = cb
		}
	}
}

// WithHooks overrides any subset of the hooks.
func WithHooks(hooks Hooks) Option {
	return func(s *Scanner) {
		s.hooks = hooks
	}
}

// WithLogger replaces the logger built from LOOKSEE_LOG_LEVEL.
func WithLogger(logger *log.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLoader shares a Loader, and its memoized modules, between scanners.
// The loader's filesystem becomes the scanner's filesystem.
func WithLoader(loader *Loader) Option {
	return func(s *Scanner) {
		if loader != nil {
			s.loader = loader
		}
	}
}

// WithFilesystem scans fsys instead of the host filesystem. Unless a Loader
// is also given, the scanner gets a private Loader over fsys.
func WithFilesystem(fsys billy.Filesystem) Option {
	return func(s *Scanner) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// WithSearchPaths sets the directories targets are resolved against.
func WithSearchPaths(paths ...string) Option {
	return func(s *Scanner) {
		s.paths = append([]string(nil), paths...)
	}
}

// WithMarkerName changes the directory marker file name.
func WithMarkerName(name string) Option {
	return func(s *Scanner) {
		s.markerName = name
	}
}

// WithSymbols exposes host packages to interpreted modules. Ignored when a
// Loader is supplied.
func WithSymbols(symbols interp.Exports) Option {
	return func(s *Scanner) {
		if symbols != nil {
			s.symbols = append(s.symbols, symbols)
		}
	}
}

// Scanner walks package trees and feeds matching objects to a callback.
// A Scanner is not safe for concurrent use.
type Scanner struct {
	predicate  Predicate
	callback   Callback
	hooks      Hooks
	logger     *log.Logger
	loader     *Loader
	fs         billy.Filesystem
	paths      []string
	markerName string
	symbols    []interp.Exports
	policy     *DirectoryPolicy

	context Context
	state   State
}

// New builds a Scanner. Configuration is fixed after construction.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		predicate: MatchAll,
		callback:  Ignore,
		state:     StateIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = logging.FromEnv("scanner")
	}
	host := false
	switch {
	case s.loader != nil:
		s.fs = s.loader.Filesystem()
	case s.fs != nil:
		s.loader = NewLoader(s.fs, symbolOptions(s.symbols)...)
	case len(s.symbols) > 0:
		s.fs = osfs.New("/")
		s.loader = NewLoader(s.fs, symbolOptions(s.symbols)...)
		host = true
	default:
		s.loader = DefaultLoader()
		s.fs = s.loader.Filesystem()
		host = true
	}
	s.paths = normalizeSearchPaths(s.paths, host)
	s.hooks = s.hooks.withDefaults(LogHooks(s.logger))
	s.policy = NewDirectoryPolicy(s.fs, s.markerName)
	return s
}

// State returns the current orchestrator phase.
func (s *Scanner) State() State {
	return s.state
}

// Context returns a shallow copy of the memoized context, or nil before the
// first scan.
func (s *Scanner) Context() Context {
	if s.context == nil {
		return nil
	}
	return s.context.Clone()
}

// Reset drops the memoized context; the next scan starts empty.
func (s *Scanner) Reset() {
	s.context = nil
	s.state = StateIdle
}

// Scan walks target and returns a shallow copy of the accumulated context.
// Repeated scans extend the same memoized context until Reset is called.
func (s *Scanner) Scan(target string) (Context, error) {
	return s.ScanWith(target, nil)
}

// ScanWith is Scan with seed merged into the context before walking.
func (s *Scanner) ScanWith(target string, seed Context) (Context, error) {
	root, err := s.Resolve(target)
	if err != nil {
		return nil, err
	}
	ctx := s.context.Clone()
	ctx.Merge(seed)

	s.logger.Debug("scanning", "target", root.Path, "root", root.SearchRoot)
	s.state = StateWalking
	walker := NewWalker(s.fs, s.policy)
	walker.OnIgnore = func(dir string) error {
		return escalate(s.hooks.OnIgnoreDirectory(dir))
	}
	walker.OnDirError = func(dir string, err error) error {
		return escalate(s.hooks.OnImportError(err, dir, ctx))
	}
	walker.OnShadowed = func(ref ModuleRef, dir string) error {
		err := &LoadError{Path: ref.Path, File: ref.File, Err: fmt.Errorf("%w %s", ErrShadowed, dir)}
		return escalate(s.hooks.OnImportError(err, ref.Path, ctx))
	}
	walkErr := walker.Walk(root, func(ref ModuleRef) error {
		err := s.scanModule(ref, ctx)
		s.state = StateWalking
		return err
	})

	// memoize whatever was accumulated, even when a hook aborted the walk
	s.context = ctx
	s.state = StateDone
	if walkErr != nil {
		return ctx.Clone(), walkErr
	}
	return ctx.Clone(), nil
}

func (s *Scanner) scanModule(ref ModuleRef, ctx Context) error {
	s.state = StateLoading
	mod, err := s.loader.Load(ref)
	if err != nil {
		return escalate(s.hooks.OnImportError(err, ref.Path, ctx))
	}
	s.state = StateInspecting
	return Inspect(mod, s.predicate, func(obj Object, err error) error {
		if err != nil {
			return escalate(s.hooks.OnCallbackError(err, mod, ctx, obj.Name, obj))
		}
		s.state = StateMatching
		if err := s.process(mod, obj, ctx); err != nil {
			return escalate(s.hooks.OnCallbackError(err, mod, ctx, obj.Name, obj))
		}
		s.state = StateInspecting
		return nil
	})
}

func (s *Scanner) process(mod *Module, obj Object, ctx Context) (err error) {
	s.logger.Debug("processing", "object", obj.Name, "module", mod.Path)
	defer func() {
		if r := recover(); r != nil {
			err = &DiscoveryError{Module: mod.Path, Name: obj.Name, Stage: stageCallback, Err: panicError(r)}
		}
	}()
	if err := s.callback(obj.Name, obj, ctx); err != nil {
		return &DiscoveryError{Module: mod.Path, Name: obj.Name, Stage: stageCallback, Err: err}
	}
	return nil
}

func escalate(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrEscalated, err)
}

func symbolOptions(symbols []interp.Exports) []LoaderOption {
	opts := make([]LoaderOption, 0, len(symbols))
	for _, exports := range symbols {
		opts = append(opts, WithLoaderSymbols(exports))
	}
	return opts
}

// normalizeSearchPaths makes host paths absolute, since the host loader is
// rooted at "/". In-memory filesystems default to their root.
func normalizeSearchPaths(paths []string, host bool) []string {
	if len(paths) == 0 {
		if !host {
			return []string{"/"}
		}
		if cwd, err := os.Getwd(); err == nil {
			return []string{cwd}
		}
		return []string{"."}
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if host {
			if abs, err := filepath.Abs(p); err == nil {
				p = abs
			}
		}
		out = append(out, p)
	}
	return out
}
