package scanner

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modulePaths(refs []ModuleRef) []string {
	paths := make([]string, len(refs))
	for i, ref := range refs {
		paths[i] = ref.Path
	}
	return paths
}

func TestWalkerOrder(t *testing.T) {
	fsys := newTree(t, map[string]string{
		"/src/pkg/doc.go":                 docSource,
		"/src/pkg/b.go":                   "package pkg\n",
		"/src/pkg/a.go":                   alphaSource,
		"/src/pkg/a_test.go":              "package pkg\n",
		"/src/pkg/notes.md":               "notes",
		"/src/pkg/zeta/z.go":              "package zeta\n",
		"/src/pkg/sub/doc.go":             "package sub\n",
		"/src/pkg/sub/c.go":               "package sub\n",
		"/src/pkg/sub/deeper/d.go":        "package deeper\n",
		"/src/pkg/assets/logo.txt":        "logo",
		"/src/pkg/assets/inner/hidden.go": "package inner\n",
		"/src/pkg/testdata/t.go":          "package testdata\n",
		"/src/pkg/_tmp/t.go":              "package tmp\n",
	})
	walker := NewWalker(fsys, NewDirectoryPolicy(fsys, ""))
	refs, err := walker.Modules(Root{SearchRoot: "/src", Path: "pkg", Dir: "/src/pkg"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"pkg",
		"pkg.a",
		"pkg.b",
		"pkg.sub",
		"pkg.sub.c",
		"pkg.sub.deeper.d",
		"pkg.zeta.z",
	}, modulePaths(refs))
	assert.Equal(t, "/src/pkg/doc.go", refs[0].File)
	assert.Equal(t, "/src/pkg/sub/deeper/d.go", refs[5].File)
}

func TestWalkerSkipsMarkedDirectories(t *testing.T) {
	fsys := newTree(t, map[string]string{
		"/src/pkg/a.go":              alphaSource,
		"/src/pkg/skipme/.looksee":   `{"ignore": true}`,
		"/src/pkg/skipme/x.go":       skippedSource,
		"/src/pkg/skipme/child/y.go": "package child\n",
		"/src/pkg/bad/.looksee":      `{"ignore": [`,
		"/src/pkg/bad/ok.go":         "package bad\n",
	})
	walker := NewWalker(fsys, NewDirectoryPolicy(fsys, ""))
	var ignored, dirErrors []string
	walker.OnIgnore = func(dir string) error {
		ignored = append(ignored, dir)
		return nil
	}
	walker.OnDirError = func(dir string, err error) error {
		dirErrors = append(dirErrors, dir)
		var merr *MarkerError
		assert.True(t, errors.As(err, &merr))
		return nil
	}
	refs, err := walker.Modules(Root{SearchRoot: "/src", Path: "pkg", Dir: "/src/pkg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg.a", "pkg.bad.ok"}, modulePaths(refs))
	assert.Equal(t, []string{"pkg/skipme"}, ignored)
	assert.Equal(t, []string{"pkg/bad"}, dirErrors)
}

func TestWalkerIgnoredRoot(t *testing.T) {
	fsys := newTree(t, map[string]string{
		"/src/pkg/.looksee": "ignore: true",
		"/src/pkg/a.go":     alphaSource,
	})
	walker := NewWalker(fsys, NewDirectoryPolicy(fsys, ""))
	var ignored []string
	walker.OnIgnore = func(dir string) error {
		ignored = append(ignored, dir)
		return nil
	}
	refs, err := walker.Modules(Root{SearchRoot: "/src", Path: "pkg", Dir: "/src/pkg"})
	require.NoError(t, err)
	assert.Empty(t, refs)
	assert.Equal(t, []string{"pkg"}, ignored)
}

func TestWalkerSubPackageShadowsSameNamedFile(t *testing.T) {
	fsys := newTree(t, map[string]string{
		"/src/pkg/a.go":             "package pkg\n\nvar FromFile = 1\n",
		"/src/pkg/a/doc.go":         "package a\n\nvar FromSubpkg = 2\n",
		"/src/pkg/b.go":             "package pkg\n",
		"/src/pkg/b/.looksee":       `{"ignore": true}`,
		"/src/pkg/b/x.go":           "package b\n",
		"/src/pkg/notes.go":         "package pkg\n",
		"/src/pkg/notes/readme.txt": "not a package",
	})
	walker := NewWalker(fsys, NewDirectoryPolicy(fsys, ""))
	var shadowed []string
	walker.OnShadowed = func(ref ModuleRef, dir string) error {
		shadowed = append(shadowed, ref.File+" by "+dir)
		return nil
	}
	refs, err := walker.Modules(Root{SearchRoot: "/src", Path: "pkg", Dir: "/src/pkg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg.b", "pkg.notes", "pkg.a"}, modulePaths(refs))
	assert.Equal(t, "/src/pkg/a/doc.go", refs[2].File)
	assert.Equal(t, []string{"/src/pkg/a.go by pkg/a"}, shadowed)
}

func TestWalkerHonoursBuildConstraints(t *testing.T) {
	otherOS := "plan9"
	if runtime.GOOS == otherOS {
		otherOS = "windows"
	}
	fsys := newTree(t, map[string]string{
		"/src/pkg/a.go":                           alphaSource,
		"/src/pkg/only_" + otherOS + ".go":        "package pkg\n\nvar Foreign = 1\n",
		"/src/pkg/tool.go":                        "//go:build ignore\n\npackage main\n",
		"/src/pkg/native_" + runtime.GOOS + ".go": "package pkg\n",
		"/src/pkg/foreign/x_" + otherOS + ".go":   "package foreign\n",
	})
	walker := NewWalker(fsys, NewDirectoryPolicy(fsys, ""))
	refs, err := walker.Modules(Root{SearchRoot: "/src", Path: "pkg", Dir: "/src/pkg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg.a", "pkg.native_" + runtime.GOOS}, modulePaths(refs))
}

func TestWalkerStopsOnHookError(t *testing.T) {
	fsys := newTree(t, map[string]string{
		"/src/pkg/a.go":            alphaSource,
		"/src/pkg/skipme/.looksee": `{"ignore": true}`,
		"/src/pkg/skipme/x.go":     skippedSource,
		"/src/pkg/tail/t.go":       "package tail\n",
	})
	walker := NewWalker(fsys, NewDirectoryPolicy(fsys, ""))
	stop := errors.New("stop")
	walker.OnIgnore = func(string) error { return stop }
	refs, err := walker.Modules(Root{SearchRoot: "/src", Path: "pkg", Dir: "/src/pkg"})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"pkg.a"}, modulePaths(refs))
}

func TestWalkerSingleModuleRoot(t *testing.T) {
	fsys := newTree(t, map[string]string{"/src/pkg/a.go": alphaSource})
	walker := NewWalker(fsys, NewDirectoryPolicy(fsys, ""))
	refs, err := walker.Modules(Root{SearchRoot: "/src", Path: "pkg.a", File: "/src/pkg/a.go"})
	require.NoError(t, err)
	assert.Equal(t, []ModuleRef{{Path: "pkg.a", File: "/src/pkg/a.go"}}, refs)
}

func TestRelativeDir(t *testing.T) {
	assert.Equal(t, ".", relativeDir("/src", "/src"))
	assert.Equal(t, "pkg/skipme", relativeDir("/src/", "/src/pkg/skipme"))
	assert.Equal(t, "other/x", relativeDir("/src", "/other/x"))
}
