package scanner

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// packageModuleFile is the file whose module path is the package path itself.
const packageModuleFile = "doc.go"

// ModuleRef locates one module during a walk.
type ModuleRef struct {
	// Path is the dotted module path.
	Path string
	// File is the source file inside the walker filesystem.
	File string
}

// Walker enumerates the modules of a package tree in a stable order: the
// package module (doc.go) first, the remaining module files by name, then
// each sub-package by name, depth first.
type Walker struct {
	fs     billy.Filesystem
	policy *DirectoryPolicy

	// OnIgnore is called with the directory, relative to the walk root's
	// search root, when a marker excludes it.
	OnIgnore func(dir string) error
	// OnDirError is called when a marker exists but cannot be decoded, or
	// when a directory cannot be listed. The walk continues unless it
	// returns an error.
	OnDirError func(dir string, err error) error
	// OnShadowed is called for a module file that shares its module path
	// with a sibling sub-package (a.go next to a/). The sub-package wins and
	// the file is not visited; dir is the sub-package directory relative to
	// the search root.
	OnShadowed func(ref ModuleRef, dir string) error
}

// NewWalker returns a Walker over fsys guarded by policy.
func NewWalker(fsys billy.Filesystem, policy *DirectoryPolicy) *Walker {
	return &Walker{fs: fsys, policy: policy}
}

// Root is a resolved scan target.
type Root struct {
	// SearchRoot is the search path the target was found under.
	SearchRoot string
	// Path is the dotted target path.
	Path string
	// Dir is the package directory; empty for single-module targets.
	Dir string
	// File is the module file for single-module targets.
	File string
}

// IsModule reports whether the root names a single module file.
func (r Root) IsModule() bool {
	return r.File != ""
}

// Walk calls visit for every module under root, in walk order. It stops at
// the first error returned by visit or by a notification hook.
func (w *Walker) Walk(root Root, visit func(ModuleRef) error) error {
	if root.IsModule() {
		return visit(ModuleRef{Path: root.Path, File: root.File})
	}
	return w.walkPackage(root.SearchRoot, root.Dir, root.Path, visit)
}

func (w *Walker) walkPackage(searchRoot, dir, pkgPath string, visit func(ModuleRef) error) error {
	rel := relativeDir(searchRoot, dir)
	skip, err := w.policy.ShouldSkip(dir)
	if err != nil {
		if hookErr := w.dirError(rel, err); hookErr != nil {
			return hookErr
		}
	}
	if skip {
		if w.OnIgnore != nil {
			return w.OnIgnore(rel)
		}
		return nil
	}

	entries, err := w.fs.ReadDir(dir)
	if err != nil {
		return w.dirError(rel, fmt.Errorf("scanner: read %s: %w", dir, err))
	}
	var files, dirs []string
	hasPackageModule := false
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case entry.IsDir():
			if isHidden(name) || name == "testdata" {
				continue
			}
			if w.policy.IsPackage(w.fs.Join(dir, name)) {
				dirs = append(dirs, name)
			}
		case !w.policy.IsModuleFile(dir, name):
		case name == packageModuleFile:
			hasPackageModule = true
		default:
			files = append(files, name)
		}
	}
	sort.Strings(files)
	sort.Strings(dirs)

	if hasPackageModule {
		ref := ModuleRef{Path: pkgPath, File: w.fs.Join(dir, packageModuleFile)}
		if err := visit(ref); err != nil {
			return err
		}
	}
	for _, name := range files {
		stem := strings.TrimSuffix(name, ".go")
		ref := ModuleRef{
			Path: pkgPath + "." + stem,
			File: w.fs.Join(dir, name),
		}
		if child, ok := w.shadowingPackage(dir, stem, dirs); ok {
			if w.OnShadowed != nil {
				if err := w.OnShadowed(ref, relativeDir(searchRoot, child)); err != nil {
					return err
				}
			}
			continue
		}
		if err := visit(ref); err != nil {
			return err
		}
	}
	for _, name := range dirs {
		child := w.fs.Join(dir, name)
		if err := w.walkPackage(searchRoot, child, pkgPath+"."+name, visit); err != nil {
			return err
		}
	}
	return nil
}

// shadowingPackage returns the sub-package directory named stem, if one will
// contribute modules to the walk. A sub-package excluded by its marker does
// not shadow anything.
func (w *Walker) shadowingPackage(dir, stem string, dirs []string) (string, bool) {
	i := sort.SearchStrings(dirs, stem)
	if i == len(dirs) || dirs[i] != stem {
		return "", false
	}
	child := w.fs.Join(dir, stem)
	if skip, _ := w.policy.ShouldSkip(child); skip {
		return "", false
	}
	return child, true
}

func (w *Walker) dirError(dir string, err error) error {
	if w.OnDirError == nil {
		return nil
	}
	return w.OnDirError(dir, err)
}

// Modules collects the module refs of a walk. Notification hooks still fire.
func (w *Walker) Modules(root Root) ([]ModuleRef, error) {
	var refs []ModuleRef
	err := w.Walk(root, func(ref ModuleRef) error {
		refs = append(refs, ref)
		return nil
	})
	return refs, err
}

func relativeDir(searchRoot, dir string) string {
	root := path.Clean("/" + filepathToSlash(searchRoot))
	target := path.Clean("/" + filepathToSlash(dir))
	if target == root {
		return "."
	}
	prefix := strings.TrimSuffix(root, "/") + "/"
	if strings.HasPrefix(target, prefix) {
		return strings.TrimPrefix(target, prefix)
	}
	return strings.TrimPrefix(target, "/")
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
