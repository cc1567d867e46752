// Package config loads the engine's tunable constants from a YAML file,
// grounded on novasql's internal.LoadConfig viper wiring.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the engine's renderer-facing and logging configuration.
// Schema is loaded separately (it is request/ingest-source specific, not
// process-wide) via wire.Schema's own YAML tags.
type Config struct {
	Logging struct {
		Level       string `mapstructure:"level"`
		Development bool   `mapstructure:"development"`
		Encoding    string `mapstructure:"encoding"`
	} `mapstructure:"logging"`

	Layout struct {
		RowHeightPx      uint32 `mapstructure:"row_height_px"`
		CharWidthHintPx  uint32 `mapstructure:"char_width_hint_px"`
		ViewportHeightPx uint32 `mapstructure:"viewport_height_px"`
	} `mapstructure:"layout"`

	Orchestrator struct {
		CommandBufferSize int `mapstructure:"command_buffer_size"`
	} `mapstructure:"orchestrator"`

	Metrics struct {
		Enabled    bool   `mapstructure:"enabled"`
		ListenAddr string `mapstructure:"listen_addr"`
	} `mapstructure:"metrics"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	var cfg Config
	cfg.Logging.Level = "info"
	cfg.Logging.Encoding = "json"
	cfg.Layout.RowHeightPx = 28
	cfg.Layout.CharWidthHintPx = 8
	cfg.Layout.ViewportHeightPx = 600
	cfg.Orchestrator.CommandBufferSize = 4
	cfg.Metrics.ListenAddr = ":9090"

	return cfg
}

// Load reads path (YAML) into a Config seeded with Default()'s values,
// so a partial file only overrides what it sets.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}
