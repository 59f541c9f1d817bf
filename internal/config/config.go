// Package config loads tim's settings file and resolves its data paths.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigRead     = errors.New("cannot read config file")
	ErrConfigInvalid  = errors.New("invalid config file")
	ErrConfigExists   = errors.New("config file already exists")
)

const appName = "tim"

// Config holds all configuration options
type Config struct {
	Database string         `toml:"database" json:"database"`
	Tracking TrackingConfig `toml:"tracking" json:"tracking"`
	Display  DisplayConfig  `toml:"display" json:"display"`

	// Source is the file the config was read from, empty when only defaults apply
	Source string `toml:"-" json:"-"`
}

// TrackingConfig controls what the tracker accepts and records
type TrackingConfig struct {
	TrackAmend  bool `toml:"track_amend" json:"track_amend"`
	AllowNoTags bool `toml:"allow_no_tags" json:"allow_no_tags"`
}

// DisplayConfig controls log and status output
type DisplayConfig struct {
	AlwaysDecimal bool    `toml:"always_decimal" json:"always_decimal"`
	BilledFlag    bool    `toml:"billed_flag" json:"billed_flag"`
	Color         bool    `toml:"color" json:"color"`
	Rate          float64 `toml:"rate" json:"rate"`
}

// Default returns the default configuration for the given environment
func Default(env map[string]string) Config {
	return Config{
		Database: DataPath(env),
		Tracking: TrackingConfig{
			TrackAmend:  false,
			AllowNoTags: true,
		},
		Display: DisplayConfig{
			AlwaysDecimal: false,
			BilledFlag:    true,
			Color:         true,
		},
	}
}

func home(env map[string]string) string {
	if h := env["HOME"]; h != "" {
		return h
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return h
}

// DataPath returns the default database location. XDG_DATA_HOME is only
// honoured when it is an absolute path.
func DataPath(env map[string]string) string {
	dataDir := env["XDG_DATA_HOME"]
	if dataDir == "" || !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(home(env), ".local", "share")
	}
	return filepath.Join(dataDir, appName, "data.db")
}

// Path returns the default config file location
func Path(env map[string]string) string {
	configDir := env["XDG_CONFIG_HOME"]
	if configDir == "" || !filepath.IsAbs(configDir) {
		configDir = filepath.Join(home(env), ".config")
	}
	return filepath.Join(configDir, appName, "config.toml")
}

// Load reads the config file at path on top of the defaults. An empty path
// means the default location, which may be absent; an explicit path must exist.
// Files ending in .json or .hujson are read as JSON with comments, anything
// else as TOML.
func Load(path string, env map[string]string) (Config, error) {
	cfg := Default(env)

	mustExist := path != ""
	if path == "" {
		path = Path(env)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if mustExist {
				return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return cfg, nil
		}
		return Config{}, fmt.Errorf("%w %s: %w", ErrConfigRead, path, err)
	}

	if isJSON(path) {
		err = decodeJSON(data, &cfg)
	} else {
		err = decodeTOML(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	cfg.Source = path
	return cfg, nil
}

func isJSON(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".json" || ext == ".hujson"
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeJSON(data []byte, cfg *Config) error {
	standard, err := hujson.Standardize(data)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(standard))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// Validate checks option values that the decoder cannot
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return errors.New("database cannot be empty")
	}
	if c.Display.Rate < 0 {
		return fmt.Errorf("display.rate cannot be negative (got %v)", c.Display.Rate)
	}
	return nil
}

// Format renders cfg as TOML
func Format(cfg Config) (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return buf.String(), nil
}

// Write stores cfg as TOML at path, replacing the file atomically. An existing
// file is only replaced when force is set.
func Write(path string, cfg Config, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	formatted, err := Format(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := atomic.WriteFile(path, strings.NewReader(formatted)); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
