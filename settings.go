package rigid2d

import "math"

func assert(a bool) {
	if !a {
		panic("rigid2d: assertion failed")
	}
}

const maxFloat = math.MaxFloat64
const epsilon = math.SmallestNonzeroFloat64

// Global tuning constants, in meters-kilograms-seconds (MKS) units. The
// sizes below are compile-time limits; everything in the var block can be
// overridden through a Tuning (see tuning.go) before any world is created.

// MaxManifoldPoints is the maximum number of contact points between two
// convex shapes. Do not change this value.
const MaxManifoldPoints = 2

// MaxPolygonVertices is the maximum number of vertices on a convex polygon.
const MaxPolygonVertices = 8

var (
	// AABBExtension fattens AABBs in the dynamic tree so proxies can move
	// by a small amount without triggering a tree update. In meters.
	AABBExtension = 0.1

	// AABBMultiplier scales the predicted displacement used to fatten a
	// moved AABB. Dimensionless.
	AABBMultiplier = 2.0

	// LinearSlop is a small length used as a collision and constraint
	// tolerance. Chosen to be numerically significant but visually
	// insignificant.
	LinearSlop = 0.005

	// AngularSlop is the angular analogue of LinearSlop.
	AngularSlop = 2.0 / 180.0 * math.Pi

	// PolygonRadius is the skin radius of polygon and edge shapes. Making
	// this smaller leaves polygons without buffer for continuous collision;
	// larger creates visible gaps at vertex collisions.
	PolygonRadius = 2.0 * 0.005

	// MaxSubSteps bounds continuous-physics sub-stepping per contact.
	MaxSubSteps = 8

	// MaxTOIContacts is the number of contacts handled per TOI impact island.
	MaxTOIContacts = 32

	// VelocityThreshold gates restitution: approach velocities below it are
	// treated as inelastic.
	VelocityThreshold = 1.0

	// MaxLinearCorrection bounds position correction per solver iteration,
	// preventing overshoot.
	MaxLinearCorrection = 0.2

	// MaxAngularCorrection is the angular analogue of MaxLinearCorrection.
	MaxAngularCorrection = 8.0 / 180.0 * math.Pi

	// MaxTranslation limits how far a body may travel in one step.
	MaxTranslation = 2.0

	// MaxRotation limits how far a body may rotate in one step.
	MaxRotation = 0.5 * math.Pi

	// Baumgarte controls how fast positional overlap is resolved. 1 would
	// remove all overlap in one step but tends to overshoot.
	Baumgarte    = 0.2
	TOIBaumgarte = 0.75

	// TimeToSleep is how long a body must be still before it sleeps.
	TimeToSleep = 0.5

	// LinearSleepTolerance and AngularSleepTolerance are the velocity
	// ceilings below which the sleep timer accumulates.
	LinearSleepTolerance  = 0.01
	AngularSleepTolerance = 2.0 / 180.0 * math.Pi
)

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
