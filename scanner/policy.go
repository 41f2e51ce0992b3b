package scanner

import (
	"bytes"
	"errors"
	"fmt"
	"go/build"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"
)

// DefaultMarkerName is the per-directory marker file consulted during a walk.
const DefaultMarkerName = ".looksee"

// Marker is the decoded body of a directory marker. The body may be JSON or
// YAML, e.g. {"ignore": true}.
type Marker struct {
	Ignore bool `json:"ignore" yaml:"ignore"`
}

// ParseMarker decodes a marker body. An empty body is a marker with no
// settings.
func ParseMarker(data []byte) (Marker, error) {
	var marker Marker
	if len(bytes.TrimSpace(data)) == 0 {
		return marker, nil
	}
	if err := yaml.Unmarshal(data, &marker); err != nil {
		return Marker{}, fmt.Errorf("decode marker: %w", err)
	}
	return marker, nil
}

// DirectoryPolicy decides which directories a walk enters.
type DirectoryPolicy struct {
	fs         billy.Filesystem
	markerName string
	build      build.Context
}

// NewDirectoryPolicy returns a policy reading markers named markerName
// (DefaultMarkerName when empty) from fsys.
func NewDirectoryPolicy(fsys billy.Filesystem, markerName string) *DirectoryPolicy {
	name := strings.TrimSpace(markerName)
	if name == "" {
		name = DefaultMarkerName
	}
	ctxt := build.Default
	ctxt.JoinPath = fsys.Join
	ctxt.OpenFile = func(path string) (io.ReadCloser, error) {
		return fsys.Open(path)
	}
	return &DirectoryPolicy{fs: fsys, markerName: name, build: ctxt}
}

// MarkerName returns the marker file name this policy looks for.
func (p *DirectoryPolicy) MarkerName() string {
	return p.markerName
}

// ShouldSkip reports whether dir carries a marker with ignore set. A marker
// that cannot be read or decoded yields false together with a *MarkerError,
// so the caller can report it and keep walking.
func (p *DirectoryPolicy) ShouldSkip(dir string) (bool, error) {
	path := p.fs.Join(dir, p.markerName)
	data, err := util.ReadFile(p.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &MarkerError{Dir: dir, Err: err}
	}
	marker, err := ParseMarker(data)
	if err != nil {
		return false, &MarkerError{Dir: dir, Err: err}
	}
	return marker.Ignore, nil
}

// IsPackage reports whether dir holds at least one module file.
func (p *DirectoryPolicy) IsPackage(dir string) bool {
	entries, err := p.fs.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() && p.IsModuleFile(dir, entry.Name()) {
			return true
		}
	}
	return false
}

// IsModuleFile reports whether dir/name belongs to the package for the host
// platform: GOOS/GOARCH file suffixes and //go:build lines are honoured. A
// file whose header cannot be read is kept so the loader can report it.
func (p *DirectoryPolicy) IsModuleFile(dir, name string) bool {
	if !isModuleFile(name) {
		return false
	}
	match, err := p.build.MatchFile(dir, name)
	if err != nil {
		return true
	}
	return match
}

// isModuleFile matches Go source names the go tool would consider, before
// build constraints.
func isModuleFile(name string) bool {
	if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
		return false
	}
	return !isHidden(name)
}

// isHidden matches names the go tool ignores.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
