package scanner

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

const (
	docSource = `// Package pkg holds test plugins.
package pkg
`
	alphaSource = `package pkg

var Foo = map[string]interface{}{"public_id": "foo"}

var Count = 3
`
	brokenSource = `package pkg

var Broken = undefinedThing
`
	skippedSource = `package skipme

var X = map[string]interface{}{"public_id": "x"}
`
)

func newTree(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	for name, body := range files {
		require.NoError(t, util.WriteFile(fsys, name, []byte(body), 0o644), "write %s", name)
	}
	return fsys
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func hasPublicID(obj Object) (bool, error) {
	m, ok := obj.Interface().(map[string]any)
	if !ok {
		return false, nil
	}
	_, ok = m["public_id"]
	return ok, nil
}

// hookLog records every hook invocation.
type hookLog struct {
	imports   []string
	callbacks []string
	ignored   []string
	errs      []error
}

func (h *hookLog) hooks() Hooks {
	return Hooks{
		OnImportError: func(err error, modulePath string, _ Context) error {
			h.imports = append(h.imports, modulePath)
			h.errs = append(h.errs, err)
			return nil
		},
		OnCallbackError: func(err error, _ *Module, _ Context, name string, _ Object) error {
			h.callbacks = append(h.callbacks, name)
			h.errs = append(h.errs, err)
			return nil
		},
		OnIgnoreDirectory: func(dir string) error {
			h.ignored = append(h.ignored, dir)
			return nil
		},
	}
}
