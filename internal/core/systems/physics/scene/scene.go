// Package scene describes a set of bodies in YAML or JSON and builds them
// into a resolver world.
package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/physics2d/internal/core/systems/physics"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
	"github.com/zeusync/physics2d/internal/core/systems/physics/resolver"
	"github.com/zeusync/physics2d/internal/core/systems/physics/shape"
)

// Shape kinds accepted in scene files.
const (
	ShapeCircle  = "circle"
	ShapePolygon = "polygon"
	ShapeBox     = "box"
)

type Scene struct {
	Name string `json:"name" yaml:"name"`
	// Gravity overrides the world default when set.
	Gravity *geom.Vec2 `json:"gravity,omitempty" yaml:"gravity,omitempty,flow"`
	// Ticks is how long a headless run lasts; zero leaves it to the caller.
	Ticks  int        `json:"ticks,omitempty" yaml:"ticks,omitempty"`
	Bodies []BodySpec `json:"bodies" yaml:"bodies"`
}

type ShapeSpec struct {
	Kind     string      `json:"kind" yaml:"kind"`
	Center   geom.Vec2   `json:"center,omitempty" yaml:"center,omitempty,flow"`
	Radius   float64     `json:"radius,omitempty" yaml:"radius,omitempty"`
	Width    float64     `json:"width,omitempty" yaml:"width,omitempty"`
	Height   float64     `json:"height,omitempty" yaml:"height,omitempty"`
	Vertices []geom.Vec2 `json:"vertices,omitempty" yaml:"vertices,omitempty,flow"`
}

type BodySpec struct {
	Name       string    `json:"name,omitempty" yaml:"name,omitempty"`
	Shape      ShapeSpec `json:"shape" yaml:"shape"`
	Position   geom.Vec2 `json:"position" yaml:"position,flow"`
	Rotation   float64   `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Mass       float64   `json:"mass,omitempty" yaml:"mass,omitempty"`
	Static     bool      `json:"static,omitempty" yaml:"static,omitempty"`
	Bounciness float64   `json:"bounciness,omitempty" yaml:"bounciness,omitempty"`
	Roughness  float64   `json:"roughness,omitempty" yaml:"roughness,omitempty"`
	Momentum   geom.Vec2 `json:"momentum,omitempty" yaml:"momentum,omitempty,flow"`
	// Repeat stamps the body Count times, shifting each copy by Offset.
	Repeat *Repeat `json:"repeat,omitempty" yaml:"repeat,omitempty"`
}

type Repeat struct {
	Count  int       `json:"count" yaml:"count"`
	Offset geom.Vec2 `json:"offset" yaml:"offset,flow"`
}

// LoadYAML loads a scene from a YAML reader. Unknown keys are rejected.
func LoadYAML(r io.Reader) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &s, nil
}

// LoadJSON loads a scene from a JSON reader, the format levels travel in.
func LoadJSON(r io.Reader) (*Scene, error) {
	var s Scene
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &s, nil
}

// LoadFile picks the decoder from the file extension. The scene name
// defaults to the file's base name.
func LoadFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s *Scene
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		s, err = LoadJSON(f)
	default:
		s, err = LoadYAML(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Configure applies the scene's overrides to a world config.
func (s *Scene) Configure(cfg resolver.Config) resolver.Config {
	if s.Gravity != nil {
		cfg.Gravity = *s.Gravity
	}
	return cfg
}

// Build creates the scene's bodies in file order, repeats expanded.
func (s *Scene) Build() ([]*resolver.Body, error) {
	var bodies []*resolver.Body
	for i, spec := range s.Bodies {
		sh, err := spec.Shape.Build()
		if err != nil {
			return nil, fmt.Errorf("body %d (%s): %w", i, spec.Name, err)
		}

		count, offset := 1, geom.Vec2{}
		if spec.Repeat != nil {
			if spec.Repeat.Count < 1 {
				return nil, fmt.Errorf("body %d (%s): %w: repeat count %d", i, spec.Name, physics.ErrInvalidBody, spec.Repeat.Count)
			}
			count, offset = spec.Repeat.Count, spec.Repeat.Offset
		}

		for k := 0; k < count; k++ {
			name := spec.Name
			if count > 1 {
				name = fmt.Sprintf("%s#%d", spec.Name, k)
			}
			b, err := resolver.NewBody(sh, resolver.BodyOptions{
				Name:       name,
				Position:   spec.Position.Add(offset.Mul(float64(k))),
				Rotation:   spec.Rotation,
				Mass:       spec.Mass,
				Static:     spec.Static,
				Bounciness: spec.Bounciness,
				Roughness:  spec.Roughness,
				Momentum:   spec.Momentum,
			})
			if err != nil {
				return nil, fmt.Errorf("body %d (%s): %w", i, spec.Name, err)
			}
			bodies = append(bodies, b)
		}
	}
	return bodies, nil
}

// Populate builds the bodies and adds them to w.
func (s *Scene) Populate(w *resolver.World) ([]*resolver.Body, error) {
	bodies, err := s.Build()
	if err != nil {
		return nil, err
	}
	for _, b := range bodies {
		if err = w.Add(b); err != nil {
			return nil, err
		}
	}
	return bodies, nil
}

func (s ShapeSpec) Build() (shape.Shape, error) {
	switch strings.ToLower(s.Kind) {
	case ShapeCircle:
		return shape.NewCircle(s.Center, s.Radius)
	case ShapeBox:
		return shape.NewRectangle(s.Center, s.Width, s.Height)
	case ShapePolygon:
		return shape.NewPolygon(s.Center, s.Vertices)
	default:
		return nil, fmt.Errorf("%w: unknown shape kind %q", physics.ErrInvalidShape, s.Kind)
	}
}
