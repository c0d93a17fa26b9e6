package resolver

import (
	"fmt"
	"math"

	"github.com/zeusync/physics2d/internal/core/systems/physics"
	"github.com/zeusync/physics2d/internal/core/systems/physics/bvh"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
	"github.com/zeusync/physics2d/internal/core/systems/physics/narrow"
)

// Config holds the simulation parameters of a World.
type Config struct {
	// TimeStep is the fixed integration step in seconds.
	TimeStep float64 `yaml:"timeStep"`
	// Gravity is the acceleration applied to every dynamic body, y up.
	Gravity      geom.Vec2 `yaml:"gravity,flow"`
	FattenFactor float64   `yaml:"fattenFactor"`
	// Debug validates the broad-phase tree on every step.
	Debug  bool          `yaml:"debug"`
	Narrow narrow.Config `yaml:"narrow"`
}

func DefaultConfig() Config {
	return Config{
		TimeStep:     physics.TimeStep,
		Gravity:      geom.V(0, -9.81),
		FattenFactor: physics.FattenFactor,
		Narrow:       narrow.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	if !(c.TimeStep > 0) || math.IsInf(c.TimeStep, 0) {
		return fmt.Errorf("%w: time step must be positive, got %g", physics.ErrInvalidConfig, c.TimeStep)
	}
	if math.IsNaN(c.Gravity[0]) || math.IsNaN(c.Gravity[1]) {
		return fmt.Errorf("%w: gravity is NaN", physics.ErrInvalidConfig)
	}
	if err := c.tree().Validate(); err != nil {
		return err
	}
	return c.Narrow.Validate()
}

func (c Config) tree() bvh.Config {
	return bvh.Config{FattenFactor: c.FattenFactor, Debug: c.Debug}
}
