package scanner

import (
	"errors"
	"fmt"
)

const (
	// SeverityInfo marks notifications such as ignored directories.
	SeverityInfo Severity = "info"
	// SeverityWarning marks recoverable anomalies such as malformed markers.
	SeverityWarning Severity = "warning"
	// SeverityError marks isolated failures of one module or object.
	SeverityError Severity = "error"
)

const (
	CodeImportFailed     = "import_failed"
	CodeMarkerInvalid    = "marker_invalid"
	CodeDiscoveryFailed  = "discovery_failed"
	CodeDirectoryIgnored = "directory_ignored"
	CodeModuleShadowed   = "module_shadowed"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Diagnostic is a structured record of a non-fatal scan event.
	Diagnostic struct {
		Severity Severity `json:"severity" yaml:"severity"`
		// Code is a machine-readable identifier, e.g. "import_failed".
		Code    string `json:"code" yaml:"code"`
		Message string `json:"message" yaml:"message"`
		// Path is the module path, or the directory for marker events.
		Path   string `json:"path,omitempty" yaml:"path,omitempty"`
		Object string `json:"object,omitempty" yaml:"object,omitempty"`
		Cause  error  `json:"-" yaml:"-"`
	}
)

// Recorder collects diagnostics while delegating to another hook set.
type Recorder struct {
	next        Hooks
	diagnostics []Diagnostic
}

// NewRecorder returns a Recorder that forwards every event to next after
// recording it. Nil fields of next are skipped.
func NewRecorder(next Hooks) *Recorder {
	return &Recorder{next: next}
}

// Diagnostics returns the recorded diagnostics in arrival order.
func (r *Recorder) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(r.diagnostics))
	copy(out, r.diagnostics)
	return out
}

// Count returns how many diagnostics of the given severity were recorded.
func (r *Recorder) Count(severity Severity) int {
	n := 0
	for _, d := range r.diagnostics {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

// Reset drops recorded diagnostics.
func (r *Recorder) Reset() {
	r.diagnostics = nil
}

// Hooks returns the recording hook set.
func (r *Recorder) Hooks() Hooks {
	return Hooks{
		OnImportError: func(err error, modulePath string, ctx Context) error {
			d := Diagnostic{
				Severity: SeverityError,
				Code:     CodeImportFailed,
				Message:  fmt.Sprintf("failed to import %s: %v", modulePath, err),
				Path:     modulePath,
				Cause:    err,
			}
			var merr *MarkerError
			if errors.As(err, &merr) {
				d.Severity = SeverityWarning
				d.Code = CodeMarkerInvalid
				d.Message = fmt.Sprintf("ignoring malformed marker in %s: %v", modulePath, merr.Err)
			} else if errors.Is(err, ErrShadowed) {
				d.Severity = SeverityWarning
				d.Code = CodeModuleShadowed
				d.Message = fmt.Sprintf("skipped %s: %v", modulePath, errors.Unwrap(err))
			}
			r.diagnostics = append(r.diagnostics, d)
			if r.next.OnImportError != nil {
				return r.next.OnImportError(err, modulePath, ctx)
			}
			return nil
		},
		OnCallbackError: func(err error, mod *Module, ctx Context, name string, obj Object) error {
			path := ""
			if mod != nil {
				path = mod.Path
			}
			r.diagnostics = append(r.diagnostics, Diagnostic{
				Severity: SeverityError,
				Code:     CodeDiscoveryFailed,
				Message:  fmt.Sprintf("failed to process %s in %s: %v", name, path, err),
				Path:     path,
				Object:   name,
				Cause:    err,
			})
			if r.next.OnCallbackError != nil {
				return r.next.OnCallbackError(err, mod, ctx, name, obj)
			}
			return nil
		},
		OnIgnoreDirectory: func(dir string) error {
			r.diagnostics = append(r.diagnostics, Diagnostic{
				Severity: SeverityInfo,
				Code:     CodeDirectoryIgnored,
				Message:  fmt.Sprintf("skipped %s (marker ignore)", dir),
				Path:     dir,
			})
			if r.next.OnIgnoreDirectory != nil {
				return r.next.OnIgnoreDirectory(dir)
			}
			return nil
		},
	}
}
