package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Config holds the options that shape a shell session.
type Config struct {
	NodeID   uint8  `json:"node_id"`  //nolint:tagliatelle // snake_case for config file
	LogLevel string `json:"log_level"`
}

// ConfigFileName is the project-local config file name.
const ConfigFileName = ".odshell.jsonc"

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		NodeID:   1,
		LogLevel: "info",
	}
}

// getGlobalConfigPath returns the global config path, honoring
// XDG_CONFIG_HOME, or "" if no home directory can be determined.
func getGlobalConfigPath(env []string) string {
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "XDG_CONFIG_HOME="); ok {
			return filepath.Join(after, "odshell", "config.jsonc")
		}
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "odshell", "config.jsonc")
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".config", "odshell", "config.jsonc")
	}

	return ""
}

// LoadConfig loads configuration with the following precedence
// (highest wins): defaults, global user config, project config file
// (.odshell.jsonc in workDir or an explicit configPath), CLI overrides.
func LoadConfig(workDir, configPath string, cliOverrides Config, hasNodeIDOverride, hasLogLevelOverride bool, env []string) (Config, error) {
	cfg := DefaultConfig()

	globalCfg, err := loadConfigFile(getGlobalConfigPath(env), false)
	if err != nil {
		return Config{}, err
	}

	cfg = mergeConfig(cfg, globalCfg)

	cfgFile := filepath.Join(workDir, ConfigFileName)
	mustExist := false

	if configPath != "" {
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true
	}

	projectCfg, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, err
	}

	cfg = mergeConfig(cfg, projectCfg)

	if hasNodeIDOverride {
		cfg.NodeID = cliOverrides.NodeID
	}

	if hasLogLevelOverride {
		cfg.LogLevel = cliOverrides.LogLevel
	}

	if cfg.NodeID == 0 || cfg.NodeID > 127 {
		return Config{}, fmt.Errorf("odshell: node id %d out of range [1,127]", cfg.NodeID)
	}

	return cfg, nil
}

// loadConfigFile reads and hujson-standardizes a config file. A
// missing optional file (mustExist == false) is not an error; a
// missing explicit one is.
func loadConfigFile(path string, mustExist bool) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, nil
		}

		return Config{}, fmt.Errorf("odshell: reading config %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("odshell: parsing config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("odshell: decoding config %s: %w", path, err)
	}

	return cfg, nil
}

// mergeConfig layers override on top of base: a non-zero field in
// override wins.
func mergeConfig(base, override Config) Config {
	if override.NodeID != 0 {
		base.NodeID = override.NodeID
	}

	if override.LogLevel != "" {
		base.LogLevel = override.LogLevel
	}

	return base
}
