package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// uiConfig is what the console remembers between runs.
type uiConfig struct {
	PageSize   int    `yaml:"page_size,omitempty"`
	Theme      string `yaml:"theme,omitempty"`
	LastSearch string `yaml:"last_search,omitempty"`
	Preview    bool   `yaml:"preview,omitempty"`
}

func loadUIConfig(configDir string) (*uiConfig, string) {
	path := filepath.Join(configDir, "ui.yaml")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return &uiConfig{}, path
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &uiConfig{}, path
	}
	var cfg uiConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &uiConfig{}, path
	}
	return &cfg, path
}

func saveUIConfig(cfg *uiConfig, path string) error {
	if path == "" {
		return nil
	}
	if cfg == nil {
		cfg = &uiConfig{}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
