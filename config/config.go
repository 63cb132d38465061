// Package config loads the simulation settings from yaml over defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Simulation Simulation `yaml:"simulation"`
	Script     Script     `yaml:"script"`
	Input      Input      `yaml:"input"`
	Craft      Craft      `yaml:"craft"`
	Beacons    []string   `yaml:"beacons" validate:"dive,required"`
	Logging    Logging    `yaml:"logging"`
	Metrics    Metrics    `yaml:"metrics"`
}

type Simulation struct {
	TickRate   int `yaml:"tick_rate" validate:"gt=0,lte=1000"`
	MaxCatchUp int `yaml:"max_catch_up" validate:"gt=0"`
}

type Script struct {
	MaxAllocs  int64         `yaml:"max_allocs" validate:"gte=0"`
	TickBudget time.Duration `yaml:"tick_budget" validate:"gte=0"`
	Modules    []string      `yaml:"modules" validate:"dive,required,ne=os"`
}

type Input struct {
	ModifierPolicy string `yaml:"modifier_policy" validate:"oneof=ignore require"`
}

type Craft struct {
	Prefab string `yaml:"prefab" validate:"required"`
}

type Logging struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error disabled off"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

type Metrics struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Simulation: Simulation{TickRate: 60, MaxCatchUp: 5},
		Script: Script{
			MaxAllocs:  200000,
			TickBudget: 50 * time.Millisecond,
			Modules:    []string{"math", "text", "times", "rand", "fmt", "json", "enum", "base64", "hex"},
		},
		Input:   Input{ModifierPolicy: "ignore"},
		Craft:   Craft{Prefab: "craft.yaml"},
		Beacons: []string{"beacon.yaml"},
		Logging: Logging{Level: "info", Format: "console"},
	}
}

// Load reads path over Default. An empty path returns the validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: validate: %w", err)
	}
	return nil
}

// TickInterval is the length of one simulation tick.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Simulation.TickRate)
}
