package prefabs

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// TransformSpec is an initial pose in world units, y-up, angle in radians.
type TransformSpec struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Angle float64 `yaml:"angle"`
}

// MountSpec places one actuator on the craft in body-local coordinates.
type MountSpec struct {
	Actuator  string    `yaml:"actuator" validate:"required,oneof=BL BR FL FR WL WR"`
	Offset    []float64 `yaml:"offset" validate:"len=2"`
	Direction []float64 `yaml:"direction" validate:"len=2"`
}

// CraftSpec describes the script-controlled rigid body. An empty Mounts list
// selects the default booster table for the given size.
type CraftSpec struct {
	Name      string        `yaml:"name" validate:"required"`
	Mass      float64       `yaml:"mass" validate:"gt=0"`
	Width     float64       `yaml:"width" validate:"gt=0"`
	Height    float64       `yaml:"height" validate:"gt=0"`
	Scale     float64       `yaml:"scale" validate:"gte=0"`
	Transform TransformSpec `yaml:"transform"`
	Mounts    []MountSpec   `yaml:"mounts" validate:"dive"`
}

// BeaconSpec describes a non-physical marker that spins in place.
type BeaconSpec struct {
	Name      string        `yaml:"name" validate:"required"`
	Radius    float64       `yaml:"radius" validate:"gt=0"`
	Spin      float64       `yaml:"spin"`
	Transform TransformSpec `yaml:"transform"`
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	if err := validate.Struct(spec); err != nil {
		return zero, fmt.Errorf("prefabs: validate %s: %w", filename, err)
	}

	return spec, nil
}

func LoadCraftSpec(filename string) (CraftSpec, error) {
	if filename == "" {
		filename = "craft.yaml"
	}
	return LoadSpec[CraftSpec](filename)
}

func LoadBeaconSpec(filename string) (BeaconSpec, error) {
	return LoadSpec[BeaconSpec](filename)
}
