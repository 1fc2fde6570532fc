// Package config loads the braind configuration file and owns the runtime
// settings snapshot. The file declares the server address, the memory
// budget, the backend catalog, and the orchestrator settings block.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"braind/pkg/types"
)

// Config holds startup parameters for the service.
// Zero values mean "unspecified" and are replaced by defaults in main.
type Config struct {
	Addr           string              `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel       string              `json:"log_level" yaml:"log_level" toml:"log_level"`
	MemoryBudgetMB int                 `json:"memory_budget_mb" yaml:"memory_budget_mb" toml:"memory_budget_mb"`
	MainBackend    string              `json:"main_backend" yaml:"main_backend" toml:"main_backend"`
	CORSOrigins    []string            `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	Settings       Settings            `json:"settings" yaml:"settings" toml:"settings"`
	Backends       []types.BackendSpec `json:"backends" yaml:"backends" toml:"backends"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
