// Package config loads the emulator configuration: which image file
// each drive unit is attached to, its spindle phase offset, and the
// log level.
package config

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"

	"hawkdrive/geometry"
)

//go:embed hawk.toml
var defaultConfigData []byte

// MaxUnits is the number of drive units the controller can address.
const MaxUnits = 8

// Config represents the entire TOML configuration structure.
type Config struct {
	LogLevel string `toml:"log_level"`
	Unit     []Unit `toml:"unit"`
}

// Unit attaches one drive unit to a disk image.
type Unit struct {
	Num   int    `toml:"num"`
	Image string `toml:"image"`

	// RotationOffsetNS desynchronizes the spindles of different units.
	RotationOffsetNS int64 `toml:"rotation_offset_ns"`
}

// Default parses the embedded default configuration.
func Default() (*Config, error) {
	var conf Config
	if err := toml.Unmarshal(defaultConfigData, &conf); err != nil {
		return nil, fmt.Errorf("failed to parse embedded default config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Load parses and validates a configuration file.
func Load(path string) (*Config, error) {
	var conf Config
	if _, err := toml.DecodeFile(path, &conf); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config at %s: %w", path, err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Validate checks unit numbers, image names and phase offsets.
func (c *Config) Validate() error {
	if len(c.Unit) == 0 {
		return fmt.Errorf("no units configured")
	}

	seen := make(map[int]bool)
	for _, u := range c.Unit {
		if u.Num < 0 || u.Num >= MaxUnits {
			return fmt.Errorf("unit number %d out of range 0-%d", u.Num, MaxUnits-1)
		}
		if seen[u.Num] {
			return fmt.Errorf("unit %d configured twice", u.Num)
		}
		seen[u.Num] = true

		if u.Image == "" {
			return fmt.Errorf("unit %d has no image file", u.Num)
		}
		if u.RotationOffsetNS < 0 || u.RotationOffsetNS >= geometry.RotationNS {
			return fmt.Errorf("unit %d rotation offset %d outside [0, %d)",
				u.Num, u.RotationOffsetNS, geometry.RotationNS)
		}
	}
	return nil
}

// FindUnit returns the configuration for a unit number, or nil if the
// unit is not configured.
func (c *Config) FindUnit(num int) *Unit {
	for i := range c.Unit {
		if c.Unit[i].Num == num {
			return &c.Unit[i]
		}
	}
	return nil
}
