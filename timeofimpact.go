package rigid2d

import (
	"math"
)

// TOIInput describes a pair of swept shapes over the interval [0, TMax].
type TOIInput struct {
	ProxyA DistanceProxy
	ProxyB DistanceProxy
	SweepA Sweep
	SweepB Sweep
	TMax   float64
}

// TOI result states.
const (
	TOIUnknown uint8 = iota + 1
	TOIFailed
	TOIOverlapped
	TOITouching
	TOISeparated
)

// TOIOutput reports the state and the first time of impact. Separated
// yields T = TMax.
type TOIOutput struct {
	State uint8
	T     float64
}

// Separating axis kinds.
const (
	sepPoints uint8 = iota
	sepFaceA
	sepFaceB
)

// separationFunction evaluates the separation of two swept proxies along a
// fixed axis extracted from a distance simplex.
type separationFunction struct {
	proxyA, proxyB *DistanceProxy
	sweepA, sweepB Sweep
	kind           uint8
	localPoint     Vec2
	axis           Vec2
}

func (f *separationFunction) initialize(cache *SimplexCache, proxyA *DistanceProxy, sweepA Sweep, proxyB *DistanceProxy, sweepB Sweep, t1 float64) float64 {
	f.proxyA = proxyA
	f.proxyB = proxyB
	count := cache.Count
	assert(0 < count && count < 3)

	f.sweepA = sweepA
	f.sweepB = sweepB

	xfA := f.sweepA.GetTransform(t1)
	xfB := f.sweepB.GetTransform(t1)

	if count == 1 {
		f.kind = sepPoints
		localPointA := f.proxyA.Vertex(cache.IndexA[0])
		localPointB := f.proxyB.Vertex(cache.IndexB[0])
		pointA := xfA.Apply(localPointA)
		pointB := xfB.Apply(localPointB)
		f.axis = pointB.Sub(pointA)
		return f.axis.Normalize()
	}

	if cache.IndexA[0] == cache.IndexA[1] {
		// Two points on B, one on A.
		f.kind = sepFaceB
		localPointB1 := proxyB.Vertex(cache.IndexB[0])
		localPointB2 := proxyB.Vertex(cache.IndexB[1])

		f.axis = CrossVS(localPointB2.Sub(localPointB1), 1.0)
		f.axis.Normalize()
		normal := xfB.Q.Apply(f.axis)

		f.localPoint = localPointB1.Add(localPointB2).Mul(0.5)
		pointB := xfB.Apply(f.localPoint)

		localPointA := proxyA.Vertex(cache.IndexA[0])
		pointA := xfA.Apply(localPointA)

		s := pointA.Sub(pointB).Dot(normal)
		if s < 0.0 {
			f.axis = f.axis.Neg()
			s = -s
		}
		return s
	}

	// Two points on A, one or two on B.
	f.kind = sepFaceA
	localPointA1 := f.proxyA.Vertex(cache.IndexA[0])
	localPointA2 := f.proxyA.Vertex(cache.IndexA[1])

	f.axis = CrossVS(localPointA2.Sub(localPointA1), 1.0)
	f.axis.Normalize()
	normal := xfA.Q.Apply(f.axis)

	f.localPoint = localPointA1.Add(localPointA2).Mul(0.5)
	pointA := xfA.Apply(f.localPoint)

	localPointB := f.proxyB.Vertex(cache.IndexB[0])
	pointB := xfB.Apply(localPointB)

	s := pointB.Sub(pointA).Dot(normal)
	if s < 0.0 {
		f.axis = f.axis.Neg()
		s = -s
	}
	return s
}

// findMinSeparation finds the deepest witness pair at time t.
func (f *separationFunction) findMinSeparation(indexA, indexB *int, t float64) float64 {
	xfA := f.sweepA.GetTransform(t)
	xfB := f.sweepB.GetTransform(t)

	switch f.kind {
	case sepPoints:
		axisA := xfA.Q.ApplyT(f.axis)
		axisB := xfB.Q.ApplyT(f.axis.Neg())

		*indexA = f.proxyA.Support(axisA)
		*indexB = f.proxyB.Support(axisB)

		pointA := xfA.Apply(f.proxyA.Vertex(*indexA))
		pointB := xfB.Apply(f.proxyB.Vertex(*indexB))

		return pointB.Sub(pointA).Dot(f.axis)

	case sepFaceA:
		normal := xfA.Q.Apply(f.axis)
		pointA := xfA.Apply(f.localPoint)

		axisB := xfB.Q.ApplyT(normal.Neg())

		*indexA = -1
		*indexB = f.proxyB.Support(axisB)

		pointB := xfB.Apply(f.proxyB.Vertex(*indexB))

		return pointB.Sub(pointA).Dot(normal)

	case sepFaceB:
		normal := xfB.Q.Apply(f.axis)
		pointB := xfB.Apply(f.localPoint)

		axisA := xfA.Q.ApplyT(normal.Neg())

		*indexB = -1
		*indexA = f.proxyA.Support(axisA)

		pointA := xfA.Apply(f.proxyA.Vertex(*indexA))

		return pointA.Sub(pointB).Dot(normal)

	default:
		assert(false)
		*indexA = -1
		*indexB = -1
		return 0.0
	}
}

// evaluate computes the separation of a fixed witness pair at time t.
func (f *separationFunction) evaluate(indexA, indexB int, t float64) float64 {
	xfA := f.sweepA.GetTransform(t)
	xfB := f.sweepB.GetTransform(t)

	switch f.kind {
	case sepPoints:
		pointA := xfA.Apply(f.proxyA.Vertex(indexA))
		pointB := xfB.Apply(f.proxyB.Vertex(indexB))
		return pointB.Sub(pointA).Dot(f.axis)

	case sepFaceA:
		normal := xfA.Q.Apply(f.axis)
		pointA := xfA.Apply(f.localPoint)
		pointB := xfB.Apply(f.proxyB.Vertex(indexB))
		return pointB.Sub(pointA).Dot(normal)

	case sepFaceB:
		normal := xfB.Q.Apply(f.axis)
		pointB := xfB.Apply(f.localPoint)
		pointA := xfA.Apply(f.proxyA.Vertex(indexA))
		return pointA.Sub(pointB).Dot(normal)

	default:
		assert(false)
		return 0.0
	}
}

// TimeOfImpact computes the upper bound on time before two swept shapes
// first penetrate, as a fraction in [0, TMax]. Uses conservative advancement
// along successive local separating axes: each outer iteration resolves the
// deepest point with a bisection-guarded secant root finder, and the loop
// terminates when an axis repeats or the interval is exhausted. It may miss
// an intermediate, non-tunneling collision; re-run after changing the time
// interval.
func TimeOfImpact(output *TOIOutput, input *TOIInput) {
	output.State = TOIUnknown
	output.T = input.TMax

	proxyA := &input.ProxyA
	proxyB := &input.ProxyB

	sweepA := input.SweepA
	sweepB := input.SweepB

	// Large rotations make the root finder fail; normalize the sweep angles.
	sweepA.Normalize()
	sweepB.Normalize()

	tMax := input.TMax

	totalRadius := proxyA.radius + proxyB.radius
	target := math.Max(LinearSlop, totalRadius-3.0*LinearSlop)
	tolerance := 0.25 * LinearSlop
	assert(target > tolerance)

	t1 := 0.0
	const kMaxIterations = 20
	iter := 0

	var cache SimplexCache
	var distanceInput DistanceInput
	distanceInput.ProxyA = input.ProxyA
	distanceInput.ProxyB = input.ProxyB
	distanceInput.UseRadii = false

	// The outer loop progressively attempts new separating axes until one
	// repeats (no progress).
	for {
		xfA := sweepA.GetTransform(t1)
		xfB := sweepB.GetTransform(t1)

		// The distance result doubles as a separating axis.
		distanceInput.TransformA = xfA
		distanceInput.TransformB = xfB
		var distanceOutput DistanceOutput
		ShapeDistance(&distanceOutput, &cache, &distanceInput)

		// Already overlapped: give up on continuous collision.
		if distanceOutput.Distance <= 0.0 {
			output.State = TOIOverlapped
			output.T = 0.0
			break
		}

		if distanceOutput.Distance < target+tolerance {
			output.State = TOITouching
			output.T = t1
			break
		}

		var fcn separationFunction
		fcn.initialize(&cache, proxyA, sweepA, proxyB, sweepB, t1)

		// Resolve the deepest point successively; bounded by the number of
		// polygon vertices.
		done := false
		t2 := tMax
		pushBackIter := 0
		for {
			var indexA, indexB int
			s2 := fcn.findMinSeparation(&indexA, &indexB, t2)

			// Final configuration separated?
			if s2 > target+tolerance {
				output.State = TOISeparated
				output.T = tMax
				done = true
				break
			}

			// Has the separation reached tolerance?
			if s2 > target-tolerance {
				// Advance the sweeps.
				t1 = t2
				break
			}

			s1 := fcn.evaluate(indexA, indexB, t1)

			// Initial overlap, e.g. the root finder ran out of iterations.
			if s1 < target-tolerance {
				output.State = TOIFailed
				output.T = t1
				done = true
				break
			}

			// Touching: t1 holds the TOI (could be 0).
			if s1 <= target+tolerance {
				output.State = TOITouching
				output.T = t1
				done = true
				break
			}

			// 1D root of f(t) - target = 0.
			rootIterCount := 0
			a1, a2 := t1, t2
			for {
				// Mix the secant rule (convergence) with bisection
				// (guaranteed progress).
				var t float64
				if rootIterCount&1 != 0 {
					t = a1 + (target-s1)*(a2-a1)/(s2-s1)
				} else {
					t = 0.5 * (a1 + a2)
				}

				rootIterCount++

				s := fcn.evaluate(indexA, indexB, t)

				if math.Abs(s-target) < tolerance {
					// t2 holds a tentative value for t1.
					t2 = t
					break
				}

				// Keep bracketing the root.
				if s > target {
					a1 = t
					s1 = s
				} else {
					a2 = t
					s2 = s
				}

				if rootIterCount == 50 {
					break
				}
			}

			pushBackIter++
			if pushBackIter == MaxPolygonVertices {
				break
			}
		}

		iter++

		if done {
			break
		}

		if iter == kMaxIterations {
			// Root finder got stuck. Semi-victory: t1 is safe.
			output.State = TOIFailed
			output.T = t1
			break
		}
	}
}
