// Package shape implements the convex shapes the narrow phase understands.
//
// Shapes are immutable values described in their own local frame. Every query
// takes the geom.Transform that places the shape in the world, so the same
// shape value can back any number of colliders.
package shape

import (
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
)

// Kind tags the concrete shape behind a Shape.
type Kind uint8

const (
	KindCircle Kind = iota
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// Shape is the closed set {Circle, Polygon}. All points and directions taken
// or returned are in world space unless stated otherwise.
type Shape interface {
	Kind() Kind
	// Center is the local-space center.
	Center() geom.Vec2
	// PointIn reports whether p lies inside the shape, boundary included.
	PointIn(t geom.Transform, p geom.Vec2) bool
	// BoundingBox is the tight axis-aligned box of the transformed shape.
	BoundingBox(t geom.Transform) geom.Box
	// Transform bakes t into a new shape expressed in world coordinates.
	Transform(t geom.Transform) Shape
	// Support returns the farthest point along d.
	Support(t geom.Transform, d geom.Vec2) geom.Vec2
	// Feature returns the boundary element most facing d: an edge for
	// polygons, a single point for curved shapes.
	Feature(t geom.Transform, d geom.Vec2) Feature

	// Pick returns an arbitrary boundary point, used to seed GJK.
	Pick(t geom.Transform) geom.Vec2

	sealed()
}

// FeatureKind distinguishes point features from edge features.
type FeatureKind uint8

const (
	FeaturePoint FeatureKind = iota
	FeatureEdge
)

// Feature is a world-space contact feature. For edges, A->B follows the
// polygon's counter-clockwise winding and Max is the vertex farthest along
// the query direction (one of A or B). For points only Max is meaningful.
type Feature struct {
	Kind FeatureKind
	Max  geom.Vec2
	A    geom.Vec2
	B    geom.Vec2
}

// PointFeature builds a single-point feature.
func PointFeature(p geom.Vec2) Feature {
	return Feature{Kind: FeaturePoint, Max: p, A: p, B: p}
}

func (f Feature) IsPoint() bool { return f.Kind == FeaturePoint }

// Edge returns B - A.
func (f Feature) Edge() geom.Vec2 { return f.B.Sub(f.A) }
