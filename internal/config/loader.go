package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"scenarist/pkg/logging"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/scenarist"
	projectConfigDir = ".scenarist"
	configFileName   = "config.yaml"
)

// Load resolves the configuration by layering defaults, the user file,
// and the project file. Missing files are skipped; unreadable or
// malformed ones abort. The returned path names the most specific file
// that contributed, empty when only defaults applied.
func Load() (Config, string, error) {
	cfg := Default()
	source := ""

	for _, pathOf := range []func() (string, error){getUserConfigPath, getProjectConfigPath} {
		path, err := pathOf()
		if err != nil {
			// Optional layer; a machine without HOME still runs.
			logging.Warn("config", "could not determine config path: %v", err)
			continue
		}
		layer, found, err := loadLayer(path)
		if err != nil {
			return Config{}, "", fmt.Errorf("loading config from %s: %w", path, err)
		}
		if !found {
			continue
		}
		apply(&cfg, layer)
		source = path
	}

	return cfg, source, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

func loadLayer(path string) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fileConfig{}, false, nil
	}
	if err != nil {
		return fileConfig{}, false, err
	}
	var layer fileConfig
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return fileConfig{}, false, err
	}
	return layer, true, nil
}

// apply merges one layer into the resolved config.
func apply(cfg *Config, layer fileConfig) {
	if layer.ScenariosDir != "" {
		cfg.ScenariosDir = layer.ScenariosDir
	}
	if layer.Reporter != "" {
		cfg.Reporter = layer.Reporter
	}
	if layer.Verbosity != nil {
		cfg.Verbosity = *layer.Verbosity
	}
	if layer.TbShowInternals != nil {
		cfg.TbShowInternals = *layer.TbShowInternals
	}
	if layer.Repeats != nil {
		cfg.Repeats = *layer.Repeats
	}
	if layer.NoColor != nil {
		cfg.NoColor = *layer.NoColor
	}
	if layer.LogLevel != "" {
		cfg.LogLevel = layer.LogLevel
	}
	if layer.HTTP.Timeout != nil {
		cfg.HTTP.Timeout = layer.HTTP.Timeout.Duration
	}
	if layer.Kube.Context != "" {
		cfg.Kube.Context = layer.Kube.Context
	}
	if layer.Kube.Namespace != "" {
		cfg.Kube.Namespace = layer.Kube.Namespace
	}
	if layer.MCP.ServerName != "" {
		cfg.MCP.ServerName = layer.MCP.ServerName
	}
}
