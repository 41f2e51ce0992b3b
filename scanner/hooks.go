package scanner

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Hooks receive isolated failures and notifications during a scan. Each
// field is optional; a nil field falls back to the logging default. A hook
// that returns a non-nil error aborts the scan (see ErrEscalated).
type Hooks struct {
	// OnImportError receives module load failures and malformed directory
	// markers. For markers, modulePath is the directory relative to its
	// search root.
	OnImportError func(err error, modulePath string, ctx Context) error
	// OnCallbackError receives predicate and callback failures for one
	// discovered object.
	OnCallbackError func(err error, mod *Module, ctx Context, name string, obj Object) error
	// OnIgnoreDirectory is told about directories skipped by a marker.
	OnIgnoreDirectory func(dir string) error
}

// LogHooks returns hooks that log every event through logger and continue.
func LogHooks(logger *log.Logger) Hooks {
	return Hooks{
		OnImportError: func(err error, modulePath string, _ Context) error {
			logger.Error("encountered import error", "module", modulePath, "err", err)
			return nil
		},
		OnCallbackError: func(err error, mod *Module, _ Context, name string, obj Object) error {
			module := ""
			if mod != nil {
				module = mod.Path
			}
			logger.Error("error while scanning object",
				"module", module,
				"object", name,
				"type", typeName(obj),
				"err", err,
			)
			return nil
		},
		OnIgnoreDirectory: func(dir string) error {
			logger.Info("ignoring directory", "dir", dir)
			return nil
		},
	}
}

// StrictHooks returns hooks that escalate every failure. Ignored directories
// are only logged.
func StrictHooks(logger *log.Logger) Hooks {
	hooks := LogHooks(logger)
	hooks.OnImportError = func(err error, modulePath string, _ Context) error {
		return fmt.Errorf("import %s: %w", modulePath, err)
	}
	hooks.OnCallbackError = func(err error, _ *Module, _ Context, name string, _ Object) error {
		return fmt.Errorf("object %s: %w", name, err)
	}
	return hooks
}

// withDefaults fills nil fields from fallback.
func (h Hooks) withDefaults(fallback Hooks) Hooks {
	if h.OnImportError == nil {
		h.OnImportError = fallback.OnImportError
	}
	if h.OnCallbackError == nil {
		h.OnCallbackError = fallback.OnCallbackError
	}
	if h.OnIgnoreDirectory == nil {
		h.OnIgnoreDirectory = fallback.OnIgnoreDirectory
	}
	return h
}

func typeName(obj Object) string {
	if t := obj.Type(); t != nil {
		return t.String()
	}
	return "unknown"
}
