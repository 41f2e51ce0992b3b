package scanner

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolved is returned by Scan when the target cannot be located
	// under any search root.
	ErrUnresolved = errors.New("scanner: target not found")

	// ErrEscalated wraps the error a hook returned to abort a scan.
	ErrEscalated = errors.New("scanner: scan aborted by hook")

	// ErrShadowed marks a module file skipped because a sibling sub-package
	// has the same module path. It reaches OnImportError inside a *LoadError.
	ErrShadowed = errors.New("module path taken by sub-package")
)

// LoadError reports a module that could not be read, parsed or interpreted.
type LoadError struct {
	Path string
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("scanner: load %s (%s): %v", e.Path, e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// MarkerError reports a directory marker that exists but could not be read
// or decoded. The directory is walked as if the marker were absent.
type MarkerError struct {
	Dir string
	Err error
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("scanner: marker in %s: %v", e.Dir, e.Err)
}

func (e *MarkerError) Unwrap() error { return e.Err }

// DiscoveryError reports a predicate or callback failure for one object.
type DiscoveryError struct {
	Module string
	Name   string
	Stage  string
	Err    error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("scanner: %s %s.%s: %v", e.Stage, e.Module, e.Name, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

const (
	stageResolve   = "resolve"
	stagePredicate = "predicate"
	stageCallback  = "callback"
)

// panicError converts a recovered value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
