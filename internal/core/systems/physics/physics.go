package physics

// Engine-wide defaults shared by the collision pipeline and the resolver.
const (
	// TimeStep is the fixed integration step, one frame at 60 Hz.
	TimeStep = 1.0 / 60.0

	// FattenFactor enlarges non-static leaf boxes so small motions do not
	// restructure the tree every tick.
	FattenFactor = 1.1

	// EPATolerance is the convergence threshold of the expanding polytope.
	EPATolerance = 1e-5

	GJKMaxIterations = 64
	EPAMaxIterations = 256

	// Epsilon guards divisions and zero-length checks in geometry code.
	Epsilon = 1e-9
)

// Event types published by the resolver.
const (
	EventCollisionBegin = "physics.collision.begin"
	EventCollisionEnd   = "physics.collision.end"
)
