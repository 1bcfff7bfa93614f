package handlers

import (
	"fmt"

	"github.com/imamik/tcstack/internal/config"
)

// Factory function variables for config loading - can be replaced in tests.
var (
	findConfigFile = config.FindConfigFile
	loadConfigFile = config.Load
)

// loadConfig loads configPath, or tcstack.yaml from the current directory or
// one of its parents when configPath is empty.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		path, err := findConfigFile()
		if err != nil {
			return nil, fmt.Errorf("no config file found: %w\nRun 'tcstack init' to create one", err)
		}
		configPath = path
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
