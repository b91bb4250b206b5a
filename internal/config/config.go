package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the project file the CLI looks for.
const DefaultConfigFile = "quench.yaml"

// Config is the parsed quench.yaml.
type Config struct {
	// Strict rejects definitions without type annotations.
	Strict bool `yaml:"strict"`
	// Disasm dumps the canonical code of every alias body and definition
	// annotation.
	Disasm bool `yaml:"disasm"`
	// Verbose prints the run id before checking and "ok" after a clean run.
	Verbose bool `yaml:"verbose"`
	// Sources are checked in addition to the files named on the command
	// line.
	Sources []string `yaml:"sources"`
}

// Load reads a config file. A missing file yields the zero config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
