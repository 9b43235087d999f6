package rigid2d

import (
	"time"
)

// Profile holds per-phase timings of the last step, in milliseconds.
type Profile struct {
	Step          float64
	Collide       float64
	Solve         float64
	SolveInit     float64
	SolveVelocity float64
	SolvePosition float64
	Broadphase    float64
	SolveTOI      float64
}

// stopwatch measures phase durations for the profile.
type stopwatch struct {
	start time.Time
}

func makeStopwatch() stopwatch {
	return stopwatch{start: time.Now()}
}

func (s *stopwatch) reset() {
	s.start = time.Now()
}

func (s *stopwatch) milliseconds() float64 {
	return float64(time.Since(s.start)) / float64(time.Millisecond)
}

// timeStep carries the per-step solver parameters.
type timeStep struct {
	dt                 float64 // time increment
	invDT              float64 // inverse time increment (0 if dt == 0)
	dtRatio            float64 // dt * invDT of the previous step
	velocityIterations int
	positionIterations int
	warmStarting       bool
}

// position and velocity are island-local body state, held in flat arrays
// for cache locality during the solve.
type position struct {
	c Vec2
	a float64
}

type velocity struct {
	v Vec2
	w float64
}

// solverData bundles the state passed to joint solvers.
type solverData struct {
	step       timeStep
	positions  []position
	velocities []velocity
}
