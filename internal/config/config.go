// Package config loads the optional pyvm.yaml file that supplies default
// CLI flag values so a project doesn't have to repeat them on every
// invocation.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the set of run-command defaults a project can pin in
// pyvm.yaml. Flags explicitly passed on the command line always win over
// these.
type Config struct {
	Trace        bool `yaml:"trace"`
	DumpBytecode bool `yaml:"dump_bytecode"`
	MaxRecursion int  `yaml:"max_recursion"`
}

// Default returns the config used when no file is present: tracing and
// bytecode dumping off, recursion capped at a depth generous enough for
// ordinary recursive programs without risking a Go stack overflow from a
// runaway one.
func Default() Config {
	return Config{MaxRecursion: 1000}
}

// Load reads and parses path into a Config seeded with Default(), so a
// file that only sets one field leaves the others at their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
