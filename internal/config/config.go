// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads and saves the paper-manager configuration file.
//
// The file is TOML with the sections [api], [paper], [hf], [ui], and
// [history]. Loading goes through viper so that every key can be overridden
// by a PAPER_MANAGER_<SECTION>_<KEY> environment variable; saving encodes
// types.Config directly with BurntSushi/toml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-manager/internal/llm"
	"github.com/pdiddy/paper-manager/pkg/types"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "config/base.toml"

// EnvPrefix prefixes environment overrides, e.g. PAPER_MANAGER_API_MODEL.
const EnvPrefix = "PAPER_MANAGER"

// Default returns the built-in configuration.
func Default() types.Config {
	return types.Config{
		API: types.APIConfig{
			Model:       "google/gemini-2.0-flash-001",
			Temperature: 0.3,
			MaxTokens:   1000000,
			BaseURL:     llm.DefaultBaseURL,
		},
		Paper: types.PaperConfig{
			Types:   []string{"agent_rl", "interpretability", "efficiency"},
			CSVFile: "papers.csv",
		},
		HF: types.HFConfig{
			Folder: "data",
			RepoID: "MikaStars39/MikaDailyPaper",
		},
		UI: types.UIConfig{
			Theme:         "soft",
			ChatbotHeight: 500,
			Debug:         true,
		},
		History: types.HistoryConfig{
			Enabled: true,
			DBFile:  "history.db",
		},
	}
}

// defaults flattens Default into viper keys. The order is the file order
// and is what Keys returns.
func defaults() [][2]any {
	d := Default()
	return [][2]any{
		{"api.model", d.API.Model},
		{"api.temperature", d.API.Temperature},
		{"api.max_tokens", d.API.MaxTokens},
		{"api.api_key", d.API.APIKey},
		{"api.base_url", d.API.BaseURL},
		{"paper.types", d.Paper.Types},
		{"paper.csv_file", d.Paper.CSVFile},
		{"hf.folder", d.HF.Folder},
		{"hf.repo_id", d.HF.RepoID},
		{"hf.token", d.HF.Token},
		{"ui.theme", d.UI.Theme},
		{"ui.chatbot_height", d.UI.ChatbotHeight},
		{"ui.debug", d.UI.Debug},
		{"history.enabled", d.History.Enabled},
		{"history.db_file", d.History.DBFile},
	}
}

// Keys returns every supported key in file order.
func Keys() []string {
	d := defaults()
	keys := make([]string, 0, len(d))
	for _, kv := range d {
		keys = append(keys, kv[0].(string))
	}
	return keys
}

// IsValidKey reports whether key is a supported "section.name" key.
func IsValidKey(key string) bool {
	return slices.Contains(Keys(), key)
}

// Setup registers defaults and environment overrides on v, then picks the
// configuration file: path when non-empty, otherwise the first existing
// file among SearchPaths. It returns the chosen file, or "" when v runs on
// defaults alone. A missing explicit path is not an error; Save creates it.
func Setup(v *viper.Viper, path string) (string, error) {
	for _, kv := range defaults() {
		v.SetDefault(kv[0].(string), kv[1])
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("toml")

	if path == "" {
		for _, p := range SearchPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path == "" {
		return "", nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		return "", fmt.Errorf("reading config %s: %w", path, err)
	}
	return path, nil
}

// SearchPaths lists the files Setup looks for, in priority order.
func SearchPaths() []string {
	paths := []string{DefaultPath, "paper-manager.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "paper-manager", "config.toml"))
	}
	return paths
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields paper-manager cannot run without.
func Validate(cfg types.Config) error {
	var errs []error
	if strings.TrimSpace(cfg.Paper.CSVFile) == "" {
		errs = append(errs, errors.New("paper.csv_file is empty"))
	}
	if len(cfg.Paper.Types) == 0 {
		errs = append(errs, errors.New("paper.types is empty"))
	}
	for _, t := range cfg.Paper.Types {
		if strings.TrimSpace(t) == "" {
			errs = append(errs, errors.New("paper.types contains an empty type"))
			break
		}
	}
	if cfg.API.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("api.max_tokens is negative: %d", cfg.API.MaxTokens))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Set assigns value to key on v and returns the resulting Config. Values are
// strings as typed on a command line; list keys take comma-separated values.
func Set(v *viper.Viper, key, value string) (types.Config, error) {
	if !IsValidKey(key) {
		return types.Config{}, fmt.Errorf("unknown config key: %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	if key == "paper.types" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		v.Set(key, parts)
	} else {
		v.Set(key, value)
	}
	return Load(v)
}

// Encode renders cfg as TOML.
func Encode(cfg types.Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses TOML into a Config, starting from Default so that absent
// keys keep their built-in values.
func Decode(data []byte) (types.Config, error) {
	cfg := Default()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return types.Config{}, fmt.Errorf("parsing config TOML: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories. The file may hold
// credentials so it is written owner-only.
func Save(path string, cfg types.Config) error {
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Files lists the .toml files in dir, sorted. A missing dir yields none.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing config directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".toml") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// Redact returns cfg with credentials masked, for display.
func Redact(cfg types.Config) types.Config {
	if cfg.API.APIKey != "" {
		cfg.API.APIKey = "****"
	}
	if cfg.HF.Token != "" {
		cfg.HF.Token = "****"
	}
	return cfg
}
