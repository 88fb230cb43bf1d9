// Package config handles mycc.toml build configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "mycc.toml"

var log = commonlog.GetLogger("mycc.config")

// Config represents a mycc.toml file.
type Config struct {
	Build Build `toml:"build"`
	Log   Log   `toml:"log"`

	// Path is the file the configuration was read from; empty for defaults.
	Path string `toml:"-"`
}

// Build configures code generation and output.
type Build struct {
	OutDir   string `toml:"out-dir"`
	Jobs     int    `toml:"jobs"`
	Comments bool   `toml:"comments"`
}

// Log configures the commonlog backend.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no mycc.toml exists.
func Default() *Config {
	return &Config{
		Build: Build{
			Jobs:     runtime.NumCPU(),
			Comments: true,
		},
	}
}

// Load parses the configuration file at path. Keys missing from the file
// keep their default values. A relative out-dir is resolved against the
// directory holding the file.
func Load(path string) (*Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		log.Warningf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if c.Build.Jobs < 1 {
		return nil, fmt.Errorf("%s: build.jobs must be at least 1, got %d", path, c.Build.Jobs)
	}

	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	if c.Build.OutDir != "" && !filepath.IsAbs(c.Build.OutDir) {
		c.Build.OutDir = filepath.Join(filepath.Dir(c.Path), c.Build.OutDir)
	}
	return c, nil
}

// FindAndLoad walks up from startDir looking for mycc.toml and loads the
// first one found. Without a file it returns Default().
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}
