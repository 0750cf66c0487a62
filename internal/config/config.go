// Package config loads hiltic's project configuration: library search
// paths, JIT compiler flags, and debug-stream toggles, layered CLI > env >
// file > default per spec.md's External Interfaces section. Grounded on
// the teacher corpus's YAML-config convention (config.go patterns in the
// ingestion pipeline reference repo), adapted to gopkg.in/yaml.v3 since
// ailang itself has no project-config file of its own to imitate.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is hiltic's project configuration, typically loaded from
// .hiltic.yaml in the working directory.
type Config struct {
	// LibraryPaths lists directories searched for imported HILTI/Spicy
	// modules, in addition to any plugin-contributed paths (spec.md §4.4's
	// library_paths hook) and $HILTI_PATH.
	LibraryPaths []string `yaml:"library_paths"`

	// CXX overrides the external compiler invoked by internal/jit.
	CXX string `yaml:"cxx"`

	// CXXFlags are appended to the default compiler flags.
	CXXFlags []string `yaml:"cxx_flags"`

	// JITConcurrency bounds how many external compiler jobs run at once.
	JITConcurrency int `yaml:"jit_concurrency"`

	// DebugStreams enables named debug output streams (e.g. "resolver",
	// "grammar", "codegen"), matching the -D flag of spec.md's CLI.
	DebugStreams []string `yaml:"debug_streams"`

	// FixedPointIterationCap bounds internal/driver's build-scopes/resolve
	// loop before it reports DRV002.
	FixedPointIterationCap int `yaml:"fixed_point_iteration_cap"`
}

// Default returns hiltic's built-in configuration defaults.
func Default() Config {
	return Config{
		LibraryPaths:            nil,
		CXX:                     "",
		CXXFlags:                nil,
		JITConcurrency:          4,
		DebugStreams:            nil,
		FixedPointIterationCap:  100,
	}
}

// Load reads a YAML config file at path and merges it over Default(). A
// missing file is not an error: it just means Default() is used as-is,
// since hiltic is expected to work with zero project configuration.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// MergeEnv overlays environment-variable overrides onto cfg: HILTI_PATH
// (colon-separated, appended to LibraryPaths) and HILTIC_OPTIONS
// (space-separated, appended to CXXFlags), per spec.md's External
// Interfaces section.
func (c Config) MergeEnv() Config {
	if p := os.Getenv("HILTI_PATH"); p != "" {
		c.LibraryPaths = append(c.LibraryPaths, splitPath(p)...)
	}
	if opts := os.Getenv("HILTIC_OPTIONS"); opts != "" {
		c.CXXFlags = append(c.CXXFlags, splitFields(opts)...)
	}
	return c
}

func splitPath(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func splitFields(s string) []string {
	var out []string
	cur := ""
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}
