package scanner

import (
	"fmt"
	"os"
	"strings"
)

// Resolve locates target, a dotted package or module path, under the first
// search root that holds it. A package directory (one holding module files)
// takes precedence over a module file of the same name.
func (s *Scanner) Resolve(target string) (Root, error) {
	trimmed := strings.TrimSpace(target)
	if trimmed == "" {
		return Root{}, fmt.Errorf("%w: empty target", ErrUnresolved)
	}
	segments := strings.Split(trimmed, ".")
	for _, seg := range segments {
		if seg == "" || strings.ContainsAny(seg, `/\`) {
			return Root{}, fmt.Errorf("%w: malformed path %q", ErrUnresolved, trimmed)
		}
	}
	for _, searchRoot := range s.paths {
		dir := s.fs.Join(append([]string{searchRoot}, segments...)...)
		if s.policy.IsPackage(dir) {
			return Root{SearchRoot: searchRoot, Path: trimmed, Dir: dir}, nil
		}
		file := dir + ".go"
		parent := s.fs.Join(append([]string{searchRoot}, segments[:len(segments)-1]...)...)
		if info, err := s.fs.Stat(file); err == nil && !info.IsDir() && s.policy.IsModuleFile(parent, info.Name()) {
			return Root{SearchRoot: searchRoot, Path: trimmed, File: file}, nil
		} else if err != nil && !os.IsNotExist(err) {
			s.logger.Debug("stat failed while resolving", "target", trimmed, "file", file, "err", err)
		}
	}
	return Root{}, fmt.Errorf("%w: %s (searched %s)", ErrUnresolved, trimmed, strings.Join(s.paths, ", "))
}
