// Package config loads the optional YAML project configuration and the .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jsphweid/choirscore/constants"
	"github.com/jsphweid/choirscore/model"
)

type Mix struct {
	SoloVolume          float64 `yaml:"solo_volume"`
	AccompanimentVolume float64 `yaml:"accompaniment_volume"`
	Velocity            int     `yaml:"velocity"`
}

type Timeline struct {
	// beats per second
	DefaultTempo float64 `yaml:"default_tempo"`
}

type Config struct {
	Version int `yaml:"version"`
	// role -> extra spellings accepted for that role
	Roles map[string][]string `yaml:"roles"`
	// derived part -> names written to the score
	PartNames map[string]model.PartName `yaml:"part_names"`
	Mix       Mix                       `yaml:"mix"`
	Timeline  Timeline                  `yaml:"timeline"`
}

func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadEnv loads the .env file if there is one.
func LoadEnv() error {
	err := godotenv.Load(constants.GetEnvFile())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load env: %w", err)
	}
	return nil
}

// Load reads the config at path. An empty path falls back to CHOIRSCORE_CONFIG,
// and when neither is set the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = constants.GetConfigPath()
	}
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(path, data)
}

func Parse(name string, data []byte) (*Config, error) {
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", name, err)
	}
	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", name, err)
	}
	return &parsed, nil
}

func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Roles == nil {
		c.Roles = map[string][]string{}
	}
	if c.PartNames == nil {
		c.PartNames = map[string]model.PartName{}
	}
	if c.Mix.SoloVolume == 0 {
		c.Mix.SoloVolume = constants.SoloVolume
	}
	if c.Mix.AccompanimentVolume == 0 {
		c.Mix.AccompanimentVolume = constants.AccompanimentVolume
	}
	if c.Mix.Velocity == 0 {
		c.Mix.Velocity = constants.DynamicsVelocity
	}
	if c.Timeline.DefaultTempo == 0 {
		c.Timeline.DefaultTempo = constants.DefaultTempo
	}
}

func (c *Config) normalize() {
	roles := make(map[string][]string, len(c.Roles))
	for role, spellings := range c.Roles {
		key := normalizeKey(role)
		for _, s := range spellings {
			if s = strings.TrimSpace(s); s != "" {
				roles[key] = append(roles[key], s)
			}
		}
	}
	c.Roles = roles

	names := make(map[string]model.PartName, len(c.PartNames))
	for part, name := range c.PartNames {
		names[normalizeKey(part)] = model.PartName{
			Long:  strings.TrimSpace(name.Long),
			Short: strings.TrimSpace(name.Short),
		}
	}
	c.PartNames = names
}

func (c *Config) validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version %d", c.Version)
	}
	if c.Mix.SoloVolume < 0 || c.Mix.SoloVolume > 1 {
		return fmt.Errorf("mix.solo_volume must be within 0..1")
	}
	if c.Mix.AccompanimentVolume < 0 || c.Mix.AccompanimentVolume > 1 {
		return fmt.Errorf("mix.accompaniment_volume must be within 0..1")
	}
	if c.Mix.Velocity < 1 || c.Mix.Velocity > 127 {
		return fmt.Errorf("mix.velocity must be within 1..127")
	}
	if c.Timeline.DefaultTempo < 0 {
		return fmt.Errorf("timeline.default_tempo must be positive")
	}
	for part, name := range c.PartNames {
		if name.Long == "" {
			return fmt.Errorf("part_names[%s]: long name is required", part)
		}
	}
	return nil
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
