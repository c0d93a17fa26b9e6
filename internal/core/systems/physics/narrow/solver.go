// Package narrow confirms broad-phase candidates with exact convex tests:
// GJK for intersection, EPA for penetration and edge clipping for contacts.
package narrow

import (
	"errors"
	"fmt"

	"github.com/zeusync/physics2d/internal/core/observability/log"
	"github.com/zeusync/physics2d/internal/core/systems/physics"
	"github.com/zeusync/physics2d/internal/core/systems/physics/collider"
)

// Config bounds the iterative solvers.
type Config struct {
	GJKMaxIterations int     `yaml:"gjkMaxIterations"`
	EPAMaxIterations int     `yaml:"epaMaxIterations"`
	EPATolerance     float64 `yaml:"epaTolerance"`
}

func DefaultConfig() Config {
	return Config{
		GJKMaxIterations: physics.GJKMaxIterations,
		EPAMaxIterations: physics.EPAMaxIterations,
		EPATolerance:     physics.EPATolerance,
	}
}

func (c Config) Validate() error {
	if c.GJKMaxIterations <= 0 || c.EPAMaxIterations <= 0 {
		return fmt.Errorf("%w: iteration caps must be positive", physics.ErrInvalidConfig)
	}
	if c.EPATolerance <= 0 {
		return fmt.Errorf("%w: epa tolerance must be positive", physics.ErrInvalidConfig)
	}
	return nil
}

// Solver runs the narrow phase for one pair at a time. It holds no
// per-pair state.
type Solver struct {
	config Config
	logger log.Log
}

func NewSolver(config Config, logger log.Log) *Solver {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Solver{config: config, logger: logger}
}

// Intersect runs GJK then EPA. The returned normal points from a to b.
func (s *Solver) Intersect(a, b *collider.Collider) (Penetration, bool, error) {
	simplex, hit, err := GJK(a, b, s.config.GJKMaxIterations)
	if err != nil || !hit {
		return Penetration{}, false, err
	}
	p, err := EPA(a, b, simplex, s.config.EPATolerance, s.config.EPAMaxIterations)
	if err != nil {
		return Penetration{}, false, err
	}
	return p, true, nil
}

// Solve builds the collision pair for a and b, or reports false when they
// do not intersect. Pairs the solvers cannot settle are skipped for this
// call and logged.
func (s *Solver) Solve(a, b *collider.Collider) (*Pair, bool) {
	if a == b || !a.CollisionEnabled() || !b.CollisionEnabled() {
		return nil, false
	}

	p, hit, err := s.Intersect(a, b)
	if err != nil {
		if errors.Is(err, physics.ErrNoConvergence) {
			s.logger.Warn("skipping unresolved pair",
				log.Uint64("a", a.ID()),
				log.Uint64("b", b.ID()),
				log.Error(err),
			)
			return nil, false
		}
		panic(physics.NewError("narrow.Solve", err))
	}
	if !hit {
		return nil, false
	}

	return newPair(a, b, p, Manifold(a, b, p, s.logger)), true
}
