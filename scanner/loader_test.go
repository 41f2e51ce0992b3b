package scanner

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traefik/yaegi/interp"
)

const kindsSource = `package kinds

import "strings"

const Version string = "1.0.0"

var Names = []string{"a", "b"}

type Widget struct {
	Name string
}

func Hello() string { return strings.ToUpper("hi") }

func Identity[T any](v T) T { return v }

func (w Widget) Label() string { return w.Name }

var hidden = 1
`

func TestLoaderListsExportedDeclarationsInOrder(t *testing.T) {
	fsys := newTree(t, map[string]string{"/src/kinds/kinds.go": kindsSource})
	loader := NewLoader(fsys)
	mod, err := loader.Load(ModuleRef{Path: "kinds.kinds", File: "/src/kinds/kinds.go"})
	require.NoError(t, err)
	assert.Equal(t, "kinds", mod.Package)
	assert.Equal(t, []string{"Version", "Names", "Widget", "Hello"}, mod.Names())
}

func TestModuleLookupResolvesEveryKind(t *testing.T) {
	fsys := newTree(t, map[string]string{"/src/kinds/kinds.go": kindsSource})
	mod, err := NewLoader(fsys).Load(ModuleRef{Path: "kinds.kinds", File: "/src/kinds/kinds.go"})
	require.NoError(t, err)

	version, err := mod.Lookup("Version")
	require.NoError(t, err)
	assert.Equal(t, KindConst, version.Kind)
	assert.Equal(t, "1.0.0", version.Value.String())

	names, err := mod.Lookup("Names")
	require.NoError(t, err)
	assert.Equal(t, KindVar, names.Kind)
	assert.Equal(t, []string{"a", "b"}, names.Interface())

	widget, err := mod.Lookup("Widget")
	require.NoError(t, err)
	assert.Equal(t, KindType, widget.Kind)
	require.NotNil(t, widget.Type())
	assert.Equal(t, reflect.Struct, widget.Type().Kind())

	hello, err := mod.Lookup("Hello")
	require.NoError(t, err)
	fn, ok := hello.Interface().(func() string)
	require.True(t, ok, "got %T", hello.Interface())
	assert.Equal(t, "HI", fn())
	assert.Equal(t, "kinds.kinds.Hello", hello.QualifiedName())

	_, err = mod.Lookup("hidden")
	assert.Error(t, err)
}

func TestLoaderMainPackageUsesUnqualifiedNames(t *testing.T) {
	src := "package main\n\nvar Answer = 42\n"
	fsys := newTree(t, map[string]string{"/src/tool/answer.go": src})
	mod, err := NewLoader(fsys).Load(ModuleRef{Path: "tool.answer", File: "/src/tool/answer.go"})
	require.NoError(t, err)
	obj, err := mod.Lookup("Answer")
	require.NoError(t, err)
	assert.EqualValues(t, 42, obj.Value.Int())
}

func TestLoaderReportsFailures(t *testing.T) {
	fsys := newTree(t, map[string]string{
		"/src/pkg/broken.go": brokenSource,
		"/src/pkg/syntax.go": "package pkg\n\nfunc {\n",
		"/src/pkg/empty.go":  "   \n",
		"/src/pkg/panics.go": "package pkg\n\nvar Boom = explode()\n\nfunc explode() int { panic(\"boom\") }\n",
	})
	loader := NewLoader(fsys)
	for _, name := range []string{"broken", "syntax", "empty", "panics", "missing"} {
		ref := ModuleRef{Path: "pkg." + name, File: "/src/pkg/" + name + ".go"}
		mod, err := loader.Load(ref)
		assert.Nil(t, mod, name)
		var lerr *LoadError
		require.True(t, errors.As(err, &lerr), "%s: %v", name, err)
		assert.Equal(t, ref.Path, lerr.Path)
	}
}

func TestLoaderRunsInitialisationOnce(t *testing.T) {
	var hits int
	symbols := interp.Exports{
		"probe/probe": {"Hit": reflect.ValueOf(func() { hits++ })},
	}
	src := `package pkg

import "probe"

var Registered = register()

func register() bool {
	probe.Hit()
	return true
}
`
	fsys := newTree(t, map[string]string{
		"/src/pkg/side.go":   src,
		"/src/pkg/broken.go": brokenSource,
	})
	loader := NewLoader(fsys, WithLoaderSymbols(symbols))
	ref := ModuleRef{Path: "pkg.side", File: "/src/pkg/side.go"}

	first, err := loader.Load(ref)
	require.NoError(t, err)
	second, err := loader.Load(ref)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, hits)

	broken := ModuleRef{Path: "pkg.broken", File: "/src/pkg/broken.go"}
	_, err1 := loader.Load(broken)
	_, err2 := loader.Load(broken)
	assert.Error(t, err1)
	assert.Equal(t, err1, err2)
	assert.Equal(t, 2, loader.Loads())
}

func TestDefaultLoaderIsShared(t *testing.T) {
	assert.Same(t, DefaultLoader(), DefaultLoader())
}

func TestLoaderMemoizesPerSourceFile(t *testing.T) {
	fsys := newTree(t, map[string]string{
		"/one/pkg/a.go": "package pkg\n\nvar One = 1\n",
		"/two/pkg/a.go": "package pkg\n\nvar Two = 2\n",
	})
	loader := NewLoader(fsys)

	first, err := loader.Load(ModuleRef{Path: "pkg.a", File: "/one/pkg/a.go"})
	require.NoError(t, err)
	second, err := loader.Load(ModuleRef{Path: "pkg.a", File: "/two/pkg/a.go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"One"}, first.Names())
	assert.Equal(t, []string{"Two"}, second.Names())
	assert.Equal(t, 2, loader.Loads())

	// the same file reached from a nested search root keeps one interpreter
	alias, err := loader.Load(ModuleRef{Path: "a", File: "/one/pkg/a.go"})
	require.NoError(t, err)
	assert.Equal(t, "a", alias.Path)
	assert.Equal(t, []string{"One"}, alias.Names())
	obj, err := alias.Lookup("One")
	require.NoError(t, err)
	assert.Equal(t, "a", obj.Module)
	assert.Equal(t, 2, loader.Loads())
}

func TestLoaderFailureUnderAnotherPath(t *testing.T) {
	fsys := newTree(t, map[string]string{"/src/pkg/b.go": brokenSource})
	loader := NewLoader(fsys)
	_, err := loader.Load(ModuleRef{Path: "pkg.b", File: "/src/pkg/b.go"})
	require.Error(t, err)
	_, err = loader.Load(ModuleRef{Path: "b", File: "/src/pkg/b.go"})
	var lerr *LoadError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "b", lerr.Path)
	assert.Equal(t, 1, loader.Loads())
}
