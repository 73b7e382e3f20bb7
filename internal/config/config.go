// Package config loads optional YAML defaults for election timing and
// addressing. Absence of the file is not an error: callers fall back to
// built-in constants.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults mirrors election.Config's listener timeout and Improved Bully
// timing fields (there is no Standard Bully election wait here), plus the
// addressing and metrics knobs the CLIs need but the core state machine
// does not.
type Defaults struct {
	BasePort             int    `yaml:"base_port"`
	MetricsAddr          string `yaml:"metrics_addr"`
	ListenTimeoutMS      int    `yaml:"listen_timeout_ms"`
	ImprovedProbeDelayMS int    `yaml:"improved_probe_delay_ms"`
	ImprovedDebounceMS   int    `yaml:"improved_debounce_ms"`
}

// ListenTimeout returns the configured listener receive timeout, or zero
// if unset (callers should fall back to election.Config.WithDefaults).
func (d Defaults) ListenTimeout() time.Duration {
	return time.Duration(d.ListenTimeoutMS) * time.Millisecond
}

// ImprovedProbeDelay returns the configured per-probe delay base, or zero.
func (d Defaults) ImprovedProbeDelay() time.Duration {
	return time.Duration(d.ImprovedProbeDelayMS) * time.Millisecond
}

// ImprovedDebounce returns the configured announcement debounce, or zero.
func (d Defaults) ImprovedDebounce() time.Duration {
	return time.Duration(d.ImprovedDebounceMS) * time.Millisecond
}

// Load reads a YAML defaults file. A missing file returns zero Defaults
// and no error — the caller logs and continues with its built-in
// constants.
func Load(path string) (Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("config: %s not found, using built-in defaults", path)
			return Defaults{}, nil
		}
		return Defaults{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Defaults{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	log.Printf("config: loaded defaults from %s", path)
	return d, nil
}
