package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"platestack/internal/filename"
)

const defaultConfigPath = "~/.config/platestack/config.json"

// Error policies for group assembly failures.
const (
	OnGroupErrorContinue = "continue"
	OnGroupErrorAbort    = "abort"
)

// Config holds user-editable settings for a run. It replaces the
// instrument software's blocking dialogs: everything is decided up
// front.
type Config struct {
	Channels Channels `json:"channels"`
	Plate    Plate    `json:"plate"`
	Run      Run      `json:"run"`
	Logging  Logging  `json:"logging"`
	Paths    Paths    `json:"paths"`
	Watch    Watch    `json:"watch"`
}

// Channels selects the subset of the channel vocabulary in use.
type Channels struct {
	Selected []string `json:"selected"`
}

// Plate selects the plate format, used for well-label generation and
// bounds warnings only; grouping derives wells from filenames.
type Plate struct {
	Size int `json:"size"`
}

// Run controls pipeline behavior.
type Run struct {
	EraseRaw     bool   `json:"erase_raw"`
	OnGroupError string `json:"on_group_error"` // continue, abort
}

// Logging controls verbosity and destinations.
type Logging struct {
	Level      string `json:"level"`  // debug, info, warn, error
	Format     string `json:"format"` // text, json
	FileOutput bool   `json:"file_output"`
	LogDir     string `json:"log_dir"`
}

// Paths configures default locations.
type Paths struct {
	DefaultInput string `json:"default_input"`
	DatabasePath string `json:"database_path"`
}

// Watch configures the acquisition watcher.
type Watch struct {
	SettleSeconds int `json:"settle_seconds"`
}

// Load reads configuration from disk, falling back to defaults when no
// file exists. PLATESTACK_CONFIG overrides the default path.
func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := os.Getenv("PLATESTACK_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	expanded, err := expandUser(configPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(expanded)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func Save(cfg *Config, path string) error {
	expanded, err := expandUser(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(expanded, append(data, '\n'), 0o644)
}

// DefaultPath returns the config path that Load would use.
func DefaultPath() string {
	if p := os.Getenv("PLATESTACK_CONFIG"); p != "" {
		return p
	}
	return defaultConfigPath
}

// Validate checks channel selection and plate size.
func (c *Config) Validate() error {
	if len(c.Channels.Selected) == 0 {
		return errors.New("no channels selected")
	}
	for _, name := range c.Channels.Selected {
		if !inVocabulary(name) {
			return fmt.Errorf("unknown channel %q (vocabulary: %v)", name, filename.DefaultVocabulary)
		}
	}
	if err := filename.ValidateVocabulary(c.ExpandedChannels()); err != nil {
		return err
	}
	switch c.Run.OnGroupError {
	case OnGroupErrorContinue, OnGroupErrorAbort:
	default:
		return fmt.Errorf("unknown on_group_error policy %q", c.Run.OnGroupError)
	}
	return nil
}

// ExpandedChannels returns the selected channels with composite entries
// expanded; this is what all filename scanning operates on.
func (c *Config) ExpandedChannels() []string {
	return filename.ExpandVocabulary(c.Channels.Selected)
}

func inVocabulary(name string) bool {
	for _, v := range filename.DefaultVocabulary {
		if v == name {
			return true
		}
	}
	return false
}

func defaultConfig() *Config {
	return &Config{
		Channels: Channels{
			Selected: []string{"Bright Field"},
		},
		Plate: Plate{Size: 96},
		Run: Run{
			EraseRaw:     false,
			OnGroupError: OnGroupErrorContinue,
		},
		Logging: Logging{
			Level:      "info",
			Format:     "text",
			FileOutput: false,
			LogDir:     "./logs",
		},
		Paths: Paths{
			DefaultInput: ".",
			DatabasePath: filepath.Join(os.TempDir(), "platestack.db"),
		},
		Watch: Watch{SettleSeconds: 30},
	}
}

func expandUser(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if path == "~" {
		return home, nil
	}

	return filepath.Join(home, path[2:]), nil
}
