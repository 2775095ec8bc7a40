package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the optional override file looked up in the config dir.
const ConfigFileName = "correlator.yaml"

// Initialize loads, merges, and validates the application configuration.
//
// Steps performed:
//  1. Start from the built-in defaults
//  2. Load correlator.yaml from configDir if present
//  3. Merge user values over the defaults
//  4. Validate ranges
func Initialize(configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)

	cfg := Default()

	path := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Info("No override file found, using built-in configuration", "file", ConfigFileName)
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		var user Config
		if err := yaml.Unmarshal(data, &user); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := mergo.Merge(cfg, user, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge configuration: %w", err)
		}
		log.Info("Loaded configuration overrides", "file", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info("Configuration initialized",
		"technologies", len(cfg.Tables.Technologies),
		"synonyms", len(cfg.Scoring.ServiceSynonyms),
		"related_groups", len(cfg.Scoring.RelatedGroups))
	return cfg, nil
}
