// Package config holds the daemon configuration, loadable from a TOML file
// with command line overrides applied by the caller.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the top level daemon configuration.
type Config struct {
	// LocalEID is the endpoint identifier of this node.
	LocalEID string `toml:"local_eid"`
	// LogLevel is one of the zerolog level strings (trace, debug, info, ...).
	LogLevel string `toml:"log_level"`
	// MetricsAddr is the listen address of the prometheus endpoint; empty
	// disables it.
	MetricsAddr string `toml:"metrics_addr"`

	Routing RoutingConfig `toml:"routing"`
}

// RoutingConfig tunes the neighbor routing engine.
type RoutingConfig struct {
	// SlotCapacity is the number of concurrent transfers allowed per
	// neighbor.
	SlotCapacity uint `toml:"slot_capacity"`
	// SlotThreshold is the minimum number of free slots required before a
	// search task runs.
	SlotThreshold uint `toml:"slot_threshold"`
	// SummaryItems sizes the per-neighbor known-bundle summary.
	SummaryItems uint `toml:"summary_items"`
	// SummaryFPRate is the acceptable false-positive rate of the summary.
	SummaryFPRate float64 `toml:"summary_fp_rate"`
	// SearchLimit caps the bundles selected by one search task.
	SearchLimit uint `toml:"search_limit"`
	// QueueCapacity bounds the routing task queue.
	QueueCapacity int `toml:"queue_capacity"`
}

// Default returns the configuration used when no file and no flags are given.
func Default() Config {
	return Config{
		LocalEID:    "dtn://local",
		LogLevel:    "info",
		MetricsAddr: "",
		Routing: RoutingConfig{
			SlotCapacity:  5,
			SlotThreshold: 1,
			SummaryItems:  10_000,
			SummaryFPRate: 0.001,
			SearchLimit:   10,
			QueueCapacity: 10_000,
		},
	}
}

// Load reads a TOML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not decode config file %s: %w", path, err)
	}
	return cfg, nil
}
