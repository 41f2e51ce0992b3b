// internal/config/config.go
//
// This package handles configuration for the looksee CLI. A project may carry
// a looksee.yaml in its root; runtime state (logs) lives under .looksee/.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the project configuration file looked up in the project dir.
	FileName = "looksee.yaml"

	// StateDirName is the directory holding logs and scan journals.
	StateDirName = ".looksee"

	// EnvPath lists extra search roots, separated by os.PathListSeparator.
	EnvPath = "LOOKSEE_PATH"

	defaultMarker = ".looksee"
	defaultFormat = "text"
)

const defaultProjectConfigYAML = `# looksee project configuration
version: 1

# Directories that dotted targets are resolved against, in order.
# Relative entries are resolved against the project directory.
paths:
  - .

# Per-directory marker file; {"ignore": true} skips the directory.
marker: .looksee

log:
  level: info
  # file: .looksee/logs/looksee.log

output:
  format: text
`

// LogConfig captures logging preferences.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// OutputConfig captures report preferences.
type OutputConfig struct {
	Format string `yaml:"format,omitempty"`
}

// ProjectConfig models looksee.yaml.
type ProjectConfig struct {
	Version int          `yaml:"version"`
	Paths   []string     `yaml:"paths,omitempty"`
	Marker  string       `yaml:"marker,omitempty"`
	Log     LogConfig    `yaml:"log,omitempty"`
	Output  OutputConfig `yaml:"output,omitempty"`
}

// Config holds the runtime configuration.
type Config struct {
	// ProjectDir is the directory looksee was run from (or pointed at).
	ProjectDir string

	// StateDir is ProjectDir/.looksee
	StateDir string

	Project ProjectConfig
}

// NewConfig loads looksee.yaml from projectDir, when present, and appends the
// search roots listed in LOOKSEE_PATH.
func NewConfig(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", projectDir, err)
	}
	cfg := &Config{
		ProjectDir: abs,
		StateDir:   filepath.Join(abs, StateDirName),
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.Project.Paths = appendUnique(cfg.Project.Paths, envPaths(abs)...)
	return cfg, nil
}

// InitProject writes a default looksee.yaml into projectDir unless one exists.
func InitProject(projectDir string) (string, error) {
	path := filepath.Join(projectDir, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644); err != nil {
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, nil
}

// ConfigPath returns the on-disk location of the project config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.ProjectDir, FileName)
}

// LogsDir returns the directory for log files and scan journals.
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// JournalPath returns the scan journal file.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "scan.log")
}

// SearchPaths returns the configured search roots as absolute paths.
func (c *Config) SearchPaths() []string {
	return append([]string(nil), c.Project.Paths...)
}

// MarkerName returns the directory marker file name.
func (c *Config) MarkerName() string {
	return c.Project.Marker
}

// LogLevel returns the configured log level name.
func (c *Config) LogLevel() string {
	return c.Project.Log.Level
}

// LogFile returns the configured log file, or "" when file logging is off.
func (c *Config) LogFile() string {
	return c.Project.Log.File
}

// OutputFormat returns the configured report format.
func (c *Config) OutputFormat() string {
	return c.Project.Output.Format
}

// AddSearchPaths prepends paths (resolved against the project dir) so they
// take precedence over configured roots.
func (c *Config) AddSearchPaths(paths ...string) {
	var resolved []string
	for _, p := range paths {
		if r := resolvePath(c.ProjectDir, p); r != "" {
			resolved = append(resolved, r)
		}
	}
	c.Project.Paths = appendUnique(resolved, c.Project.Paths...)
}

func (c *Config) loadProjectConfig() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Project.normalize(c.ProjectDir)
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Marker:  defaultMarker,
		Output:  OutputConfig{Format: defaultFormat},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Marker) == "" {
		pc.Marker = defaultMarker
	}
	if strings.TrimSpace(pc.Output.Format) == "" {
		pc.Output.Format = defaultFormat
	}
}

func (pc *ProjectConfig) normalize(base string) {
	var paths []string
	for _, p := range pc.Paths {
		if r := resolvePath(base, p); r != "" {
			paths = append(paths, r)
		}
	}
	if len(paths) == 0 {
		paths = []string{base}
	}
	pc.Paths = appendUnique(nil, paths...)
	pc.Marker = strings.TrimSpace(pc.Marker)
	pc.Log.Level = strings.ToLower(strings.TrimSpace(pc.Log.Level))
	pc.Log.File = resolvePath(base, pc.Log.File)
	pc.Output.Format = strings.ToLower(strings.TrimSpace(pc.Output.Format))
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if strings.ContainsAny(pc.Marker, `/\`) {
		return fmt.Errorf("marker must be a file name, got %q", pc.Marker)
	}
	switch pc.Log.Level {
	case "", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, fatal")
	}
	switch pc.Output.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("output.format must be 'text', 'json' or 'yaml'")
	}
	return nil
}

func envPaths(base string) []string {
	raw := os.Getenv(EnvPath)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var paths []string
	for _, p := range filepath.SplitList(raw) {
		if r := resolvePath(base, p); r != "" {
			paths = append(paths, r)
		}
	}
	return paths
}

func appendUnique(values []string, extra ...string) []string {
	seen := make(map[string]bool, len(values)+len(extra))
	out := make([]string, 0, len(values)+len(extra))
	for _, v := range append(append([]string(nil), values...), extra...) {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
