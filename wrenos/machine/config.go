package machine

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the machine boot configuration.
type Config struct {
	// MemoryPages is the simulated physical memory size.
	MemoryPages int `toml:"memory_pages"`
	// Init is the command line of the first process.
	Init string `toml:"init"`
	// LogLevel is an hclog level name for kernel diagnostics.
	LogLevel string `toml:"log_level"`
}

// DefaultConfig is the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		MemoryPages: 256,
		Init:        "halt",
		LogLevel:    "info",
	}
}

// LoadConfig reads a TOML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %q: %w", path, err)
	}
	if cfg.MemoryPages <= 0 {
		return Config{}, fmt.Errorf("config %q: memory_pages must be positive", path)
	}
	return cfg, nil
}
