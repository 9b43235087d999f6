package rigid2d

import (
	"math"
)

// Solver debugging is normally disabled because the block solver sometimes
// has to deal with a poorly conditioned effective mass matrix.
const debugSolver = false

var blockSolve = true

type velocityConstraintPoint struct {
	rA             Vec2
	rB             Vec2
	normalImpulse  float64
	tangentImpulse float64
	normalMass     float64
	tangentMass    float64
	velocityBias   float64
}

type contactVelocityConstraint struct {
	points             [MaxManifoldPoints]velocityConstraintPoint
	normal             Vec2
	normalMass         Mat22
	k                  Mat22
	indexA             int
	indexB             int
	invMassA, invMassB float64
	invIA, invIB       float64
	friction           float64
	restitution        float64
	tangentSpeed       float64
	pointCount         int
	contactIndex       int
}

type contactPositionConstraint struct {
	localPoints                [MaxManifoldPoints]Vec2
	localNormal                Vec2
	localPoint                 Vec2
	indexA                     int
	indexB                     int
	invMassA, invMassB         float64
	localCenterA, localCenterB Vec2
	invIA, invIB               float64
	manifoldType               uint8
	radiusA, radiusB           float64
	pointCount                 int
}

type contactSolverDef struct {
	step       timeStep
	contacts   []*Contact
	count      int
	positions  []position
	velocities []velocity
}

// contactSolver resolves the velocity and position constraints of one
// island's contacts with Sequential Impulses. Constraint state lives in
// flat arrays indexed alongside the island contacts for cache locality.
type contactSolver struct {
	step                timeStep
	positions           []position
	velocities          []velocity
	positionConstraints []contactPositionConstraint
	velocityConstraints []contactVelocityConstraint
	contacts            []*Contact
	count               int
}

func newContactSolver(def *contactSolverDef) *contactSolver {
	solver := &contactSolver{
		step:       def.step,
		count:      def.count,
		positions:  def.positions,
		velocities: def.velocities,
		contacts:   def.contacts,
	}
	solver.positionConstraints = make([]contactPositionConstraint, solver.count)
	solver.velocityConstraints = make([]contactVelocityConstraint, solver.count)

	// Initialize the position independent portions of the constraints.
	for i := 0; i < solver.count; i++ {
		contact := solver.contacts[i]

		fixtureA := contact.FixtureA()
		fixtureB := contact.FixtureB()
		shapeA := fixtureA.Shape()
		shapeB := fixtureB.Shape()
		radiusA := shapeA.Radius()
		radiusB := shapeB.Radius()
		bodyA := fixtureA.Body()
		bodyB := fixtureB.Body()
		manifold := contact.Manifold()

		pointCount := manifold.PointCount
		assert(pointCount > 0)

		vc := &solver.velocityConstraints[i]
		vc.friction = contact.friction
		vc.restitution = contact.restitution
		vc.tangentSpeed = contact.tangentSpeed
		vc.indexA = bodyA.islandIndex
		vc.indexB = bodyB.islandIndex
		vc.invMassA = bodyA.invMass
		vc.invMassB = bodyB.invMass
		vc.invIA = bodyA.invI
		vc.invIB = bodyB.invI
		vc.contactIndex = i
		vc.pointCount = pointCount
		vc.k.SetZero()
		vc.normalMass.SetZero()

		pc := &solver.positionConstraints[i]
		pc.indexA = bodyA.islandIndex
		pc.indexB = bodyB.islandIndex
		pc.invMassA = bodyA.invMass
		pc.invMassB = bodyB.invMass
		pc.localCenterA = bodyA.sweep.LocalCenter
		pc.localCenterB = bodyB.sweep.LocalCenter
		pc.invIA = bodyA.invI
		pc.invIB = bodyB.invI
		pc.localNormal = manifold.LocalNormal
		pc.localPoint = manifold.LocalPoint
		pc.pointCount = pointCount
		pc.radiusA = radiusA
		pc.radiusB = radiusB
		pc.manifoldType = manifold.Type

		for j := 0; j < pointCount; j++ {
			cp := &manifold.Points[j]
			vcp := &vc.points[j]

			if solver.step.warmStarting {
				vcp.normalImpulse = solver.step.dtRatio * cp.NormalImpulse
				vcp.tangentImpulse = solver.step.dtRatio * cp.TangentImpulse
			} else {
				vcp.normalImpulse = 0.0
				vcp.tangentImpulse = 0.0
			}

			vcp.rA.SetZero()
			vcp.rB.SetZero()
			vcp.normalMass = 0.0
			vcp.tangentMass = 0.0
			vcp.velocityBias = 0.0

			pc.localPoints[j] = cp.LocalPoint
		}
	}

	return solver
}

// initializeVelocityConstraints fills in the position dependent portions:
// world anchors, effective masses, the restitution bias, and the 2x2 block
// matrix when the manifold has two points.
func (solver *contactSolver) initializeVelocityConstraints() {
	for i := 0; i < solver.count; i++ {
		vc := &solver.velocityConstraints[i]
		pc := &solver.positionConstraints[i]

		radiusA := pc.radiusA
		radiusB := pc.radiusB
		manifold := solver.contacts[vc.contactIndex].Manifold()

		indexA := vc.indexA
		indexB := vc.indexB

		mA := vc.invMassA
		mB := vc.invMassB
		iA := vc.invIA
		iB := vc.invIB
		localCenterA := pc.localCenterA
		localCenterB := pc.localCenterB

		cA := solver.positions[indexA].c
		aA := solver.positions[indexA].a
		vA := solver.velocities[indexA].v
		wA := solver.velocities[indexA].w

		cB := solver.positions[indexB].c
		aB := solver.positions[indexB].a
		vB := solver.velocities[indexB].v
		wB := solver.velocities[indexB].w

		assert(manifold.PointCount > 0)

		var xfA, xfB Transform
		xfA.Q.Set(aA)
		xfB.Q.Set(aB)
		xfA.P = cA.Sub(xfA.Q.Apply(localCenterA))
		xfB.P = cB.Sub(xfB.Q.Apply(localCenterB))

		var worldManifold WorldManifold
		worldManifold.Initialize(manifold, xfA, radiusA, xfB, radiusB)

		vc.normal = worldManifold.Normal

		pointCount := vc.pointCount
		for j := 0; j < pointCount; j++ {
			vcp := &vc.points[j]

			vcp.rA = worldManifold.Points[j].Sub(cA)
			vcp.rB = worldManifold.Points[j].Sub(cB)

			rnA := vcp.rA.Cross(vc.normal)
			rnB := vcp.rB.Cross(vc.normal)

			kNormal := mA + mB + iA*rnA*rnA + iB*rnB*rnB
			if kNormal > 0.0 {
				vcp.normalMass = 1.0 / kNormal
			} else {
				vcp.normalMass = 0.0
			}

			tangent := CrossVS(vc.normal, 1.0)

			rtA := vcp.rA.Cross(tangent)
			rtB := vcp.rB.Cross(tangent)

			kTangent := mA + mB + iA*rtA*rtA + iB*rtB*rtB
			if kTangent > 0.0 {
				vcp.tangentMass = 1.0 / kTangent
			} else {
				vcp.tangentMass = 0.0
			}

			// Velocity bias for restitution, gated by the approach
			// velocity threshold so resting stacks don't jitter.
			vcp.velocityBias = 0.0
			vRel := vc.normal.Dot(
				vB.Add(CrossSV(wB, vcp.rB)).Sub(vA).Sub(CrossSV(wA, vcp.rA)))
			if vRel < -VelocityThreshold {
				vcp.velocityBias = -vc.restitution * vRel
			}
		}

		// Prepare the block solver for two-point manifolds.
		if vc.pointCount == 2 && blockSolve {
			vcp1 := &vc.points[0]
			vcp2 := &vc.points[1]

			rn1A := vcp1.rA.Cross(vc.normal)
			rn1B := vcp1.rB.Cross(vc.normal)
			rn2A := vcp2.rA.Cross(vc.normal)
			rn2B := vcp2.rB.Cross(vc.normal)

			k11 := mA + mB + iA*rn1A*rn1A + iB*rn1B*rn1B
			k22 := mA + mB + iA*rn2A*rn2A + iB*rn2B*rn2B
			k12 := mA + mB + iA*rn1A*rn2A + iB*rn1B*rn2B

			// Ensure a reasonable condition number.
			const kMaxConditionNumber = 1000.0
			if k11*k11 < kMaxConditionNumber*(k11*k22-k12*k12) {
				// K is safe to invert.
				vc.k.Ex = Vec2{k11, k12}
				vc.k.Ey = Vec2{k12, k22}
				vc.normalMass = vc.k.Inverse()
			} else {
				// The constraints are redundant; use one.
				vc.pointCount = 1
			}
		}
	}
}

// warmStart applies the impulses carried over from the previous step.
func (solver *contactSolver) warmStart() {
	for i := 0; i < solver.count; i++ {
		vc := &solver.velocityConstraints[i]

		indexA := vc.indexA
		indexB := vc.indexB
		mA := vc.invMassA
		iA := vc.invIA
		mB := vc.invMassB
		iB := vc.invIB
		pointCount := vc.pointCount

		vA := solver.velocities[indexA].v
		wA := solver.velocities[indexA].w
		vB := solver.velocities[indexB].v
		wB := solver.velocities[indexB].w

		normal := vc.normal
		tangent := CrossVS(normal, 1.0)

		for j := 0; j < pointCount; j++ {
			vcp := &vc.points[j]
			p := normal.Mul(vcp.normalImpulse).Add(tangent.Mul(vcp.tangentImpulse))
			wA -= iA * vcp.rA.Cross(p)
			vA = vA.Sub(p.Mul(mA))
			wB += iB * vcp.rB.Cross(p)
			vB = vB.Add(p.Mul(mB))
		}

		solver.velocities[indexA].v = vA
		solver.velocities[indexA].w = wA
		solver.velocities[indexB].v = vB
		solver.velocities[indexB].w = wB
	}
}

func (solver *contactSolver) solveVelocityConstraints() {
	for i := 0; i < solver.count; i++ {
		vc := &solver.velocityConstraints[i]

		indexA := vc.indexA
		indexB := vc.indexB
		mA := vc.invMassA
		iA := vc.invIA
		mB := vc.invMassB
		iB := vc.invIB
		pointCount := vc.pointCount

		vA := solver.velocities[indexA].v
		wA := solver.velocities[indexA].w
		vB := solver.velocities[indexB].v
		wB := solver.velocities[indexB].w

		normal := vc.normal
		tangent := CrossVS(normal, 1.0)
		friction := vc.friction

		assert(pointCount == 1 || pointCount == 2)

		// Solve tangent constraints first because non-penetration is more
		// important than friction.
		for j := 0; j < pointCount; j++ {
			vcp := &vc.points[j]

			// Relative velocity at contact.
			dv := vB.Add(CrossSV(wB, vcp.rB)).Sub(vA).Sub(CrossSV(wA, vcp.rA))

			// Tangent impulse toward the belt speed.
			vt := dv.Dot(tangent) - vc.tangentSpeed
			lambda := vcp.tangentMass * (-vt)

			// Clamp the accumulated impulse to the friction cone.
			maxFriction := friction * vcp.normalImpulse
			newImpulse := clampFloat(vcp.tangentImpulse+lambda, -maxFriction, maxFriction)
			lambda = newImpulse - vcp.tangentImpulse
			vcp.tangentImpulse = newImpulse

			p := tangent.Mul(lambda)

			vA = vA.Sub(p.Mul(mA))
			wA -= iA * vcp.rA.Cross(p)

			vB = vB.Add(p.Mul(mB))
			wB += iB * vcp.rB.Cross(p)
		}

		// Solve normal constraints.
		if pointCount == 1 || !blockSolve {
			for j := 0; j < pointCount; j++ {
				vcp := &vc.points[j]

				dv := vB.Add(CrossSV(wB, vcp.rB)).Sub(vA).Sub(CrossSV(wA, vcp.rA))

				vn := dv.Dot(normal)
				lambda := -vcp.normalMass * (vn - vcp.velocityBias)

				// Clamp the accumulated impulse, not the increment.
				newImpulse := math.Max(vcp.normalImpulse+lambda, 0.0)
				lambda = newImpulse - vcp.normalImpulse
				vcp.normalImpulse = newImpulse

				p := normal.Mul(lambda)
				vA = vA.Sub(p.Mul(mA))
				wA -= iA * vcp.rA.Cross(p)

				vB = vB.Add(p.Mul(mB))
				wB += iB * vcp.rB.Cross(p)
			}
		} else {
			// Block solver for the two-point mini LCP, developed with Dirk
			// Gregorius:
			//
			// vn = A * x + b, vn >= 0, x >= 0, vn_i * x_i = 0 with i = 1..2
			//
			// A = J * W * JT and J = ( -n, -r1 x n, n, r2 x n )
			// b = vn0 - velocityBias
			//
			// Solved by total enumeration (Murty): the complementarity
			// constraint means each solution has vn_i = 0 or x_i = 0, so
			// the four cases are tested in turn and the first valid one is
			// taken. To honor impulse accumulation the variable is the new
			// total impulse x, with
			//
			// x = a + d, a = old total impulse, d = incremental impulse,
			// vn = A * x + b' where b' = b - A * a.
			cp1 := &vc.points[0]
			cp2 := &vc.points[1]

			a := Vec2{cp1.normalImpulse, cp2.normalImpulse}
			assert(a.X >= 0.0 && a.Y >= 0.0)

			// Relative velocities at the contacts.
			dv1 := vB.Add(CrossSV(wB, cp1.rB)).Sub(vA).Sub(CrossSV(wA, cp1.rA))
			dv2 := vB.Add(CrossSV(wB, cp2.rB)).Sub(vA).Sub(CrossSV(wA, cp2.rA))

			vn1 := dv1.Dot(normal)
			vn2 := dv2.Dot(normal)

			b := Vec2{vn1 - cp1.velocityBias, vn2 - cp2.velocityBias}

			// Compute b'.
			b = b.Sub(vc.k.Apply(a))

			for {
				// Case 1: vn = 0. x = -inv(A) * b'
				x := vc.normalMass.Apply(b).Neg()

				if x.X >= 0.0 && x.Y >= 0.0 {
					d := x.Sub(a)

					p1 := normal.Mul(d.X)
					p2 := normal.Mul(d.Y)
					vA = vA.Sub(p1.Add(p2).Mul(mA))
					wA -= iA * (cp1.rA.Cross(p1) + cp2.rA.Cross(p2))

					vB = vB.Add(p1.Add(p2).Mul(mB))
					wB += iB * (cp1.rB.Cross(p1) + cp2.rB.Cross(p2))

					cp1.normalImpulse = x.X
					cp2.normalImpulse = x.Y
					break
				}

				// Case 2: vn1 = 0 and x2 = 0.
				//   0 = a11 * x1 + a12 * 0 + b1'
				// vn2 = a21 * x1 + a22 * 0 + b2'
				x.X = -cp1.normalMass * b.X
				x.Y = 0.0
				vn2 = vc.k.Ex.Y*x.X + b.Y
				if x.X >= 0.0 && vn2 >= 0.0 {
					d := x.Sub(a)

					p1 := normal.Mul(d.X)
					p2 := normal.Mul(d.Y)
					vA = vA.Sub(p1.Add(p2).Mul(mA))
					wA -= iA * (cp1.rA.Cross(p1) + cp2.rA.Cross(p2))

					vB = vB.Add(p1.Add(p2).Mul(mB))
					wB += iB * (cp1.rB.Cross(p1) + cp2.rB.Cross(p2))

					cp1.normalImpulse = x.X
					cp2.normalImpulse = x.Y
					break
				}

				// Case 3: vn2 = 0 and x1 = 0.
				// vn1 = a11 * 0 + a12 * x2 + b1'
				//   0 = a21 * 0 + a22 * x2 + b2'
				x.X = 0.0
				x.Y = -cp2.normalMass * b.Y
				vn1 = vc.k.Ey.X*x.Y + b.X
				if x.Y >= 0.0 && vn1 >= 0.0 {
					d := x.Sub(a)

					p1 := normal.Mul(d.X)
					p2 := normal.Mul(d.Y)
					vA = vA.Sub(p1.Add(p2).Mul(mA))
					wA -= iA * (cp1.rA.Cross(p1) + cp2.rA.Cross(p2))

					vB = vB.Add(p1.Add(p2).Mul(mB))
					wB += iB * (cp1.rB.Cross(p1) + cp2.rB.Cross(p2))

					cp1.normalImpulse = x.X
					cp2.normalImpulse = x.Y
					break
				}

				// Case 4: x1 = 0 and x2 = 0.
				x.X = 0.0
				x.Y = 0.0
				vn1 = b.X
				vn2 = b.Y
				if vn1 >= 0.0 && vn2 >= 0.0 {
					d := x.Sub(a)

					p1 := normal.Mul(d.X)
					p2 := normal.Mul(d.Y)
					vA = vA.Sub(p1.Add(p2).Mul(mA))
					wA -= iA * (cp1.rA.Cross(p1) + cp2.rA.Cross(p2))

					vB = vB.Add(p1.Add(p2).Mul(mB))
					wB += iB * (cp1.rB.Cross(p1) + cp2.rB.Cross(p2))

					cp1.normalImpulse = x.X
					cp2.normalImpulse = x.Y
					break
				}

				// No solution; give up. This is hit sometimes, but it
				// doesn't seem to matter.
				break
			}
		}

		solver.velocities[indexA].v = vA
		solver.velocities[indexA].w = wA
		solver.velocities[indexB].v = vB
		solver.velocities[indexB].w = wB
	}
}

// storeImpulses writes the accumulated impulses back to the manifolds for
// next step's warm start.
func (solver *contactSolver) storeImpulses() {
	for i := 0; i < solver.count; i++ {
		vc := &solver.velocityConstraints[i]
		manifold := solver.contacts[vc.contactIndex].Manifold()

		for j := 0; j < vc.pointCount; j++ {
			manifold.Points[j].NormalImpulse = vc.points[j].normalImpulse
			manifold.Points[j].TangentImpulse = vc.points[j].tangentImpulse
		}
	}
}

// positionSolverManifold re-derives the world normal, point and separation
// of one manifold point from the current positions.
type positionSolverManifold struct {
	normal     Vec2
	point      Vec2
	separation float64
}

func (psm *positionSolverManifold) initialize(pc *contactPositionConstraint, xfA, xfB Transform, index int) {
	assert(pc.pointCount > 0)

	switch pc.manifoldType {
	case ManifoldCircles:
		pointA := xfA.Apply(pc.localPoint)
		pointB := xfB.Apply(pc.localPoints[0])
		psm.normal = pointB.Sub(pointA)
		psm.normal.Normalize()
		psm.point = pointA.Add(pointB).Mul(0.5)
		psm.separation = pointB.Sub(pointA).Dot(psm.normal) - pc.radiusA - pc.radiusB

	case ManifoldFaceA:
		psm.normal = xfA.Q.Apply(pc.localNormal)
		planePoint := xfA.Apply(pc.localPoint)

		clipPoint := xfB.Apply(pc.localPoints[index])
		psm.separation = clipPoint.Sub(planePoint).Dot(psm.normal) - pc.radiusA - pc.radiusB
		psm.point = clipPoint

	case ManifoldFaceB:
		psm.normal = xfB.Q.Apply(pc.localNormal)
		planePoint := xfB.Apply(pc.localPoint)

		clipPoint := xfA.Apply(pc.localPoints[index])
		psm.separation = clipPoint.Sub(planePoint).Dot(psm.normal) - pc.radiusA - pc.radiusB
		psm.point = clipPoint

		// Ensure the normal points from A to B.
		psm.normal = psm.normal.Neg()
	}
}

// solvePositionConstraints runs one sequential NGS iteration over all
// contacts. Returns true when the worst separation is within tolerance; the
// separation is never pushed above -LinearSlop, hence the 3x band.
func (solver *contactSolver) solvePositionConstraints() bool {
	minSeparation := 0.0

	for i := 0; i < solver.count; i++ {
		pc := &solver.positionConstraints[i]

		indexA := pc.indexA
		indexB := pc.indexB
		localCenterA := pc.localCenterA
		mA := pc.invMassA
		iA := pc.invIA
		localCenterB := pc.localCenterB
		mB := pc.invMassB
		iB := pc.invIB
		pointCount := pc.pointCount

		cA := solver.positions[indexA].c
		aA := solver.positions[indexA].a

		cB := solver.positions[indexB].c
		aB := solver.positions[indexB].a

		for j := 0; j < pointCount; j++ {
			var xfA, xfB Transform
			xfA.Q.Set(aA)
			xfB.Q.Set(aB)
			xfA.P = cA.Sub(xfA.Q.Apply(localCenterA))
			xfB.P = cB.Sub(xfB.Q.Apply(localCenterB))

			var psm positionSolverManifold
			psm.initialize(pc, xfA, xfB, j)
			normal := psm.normal
			point := psm.point
			separation := psm.separation

			rA := point.Sub(cA)
			rB := point.Sub(cB)

			// Track the max constraint error.
			minSeparation = math.Min(minSeparation, separation)

			// Prevent large corrections and allow slop.
			c := clampFloat(Baumgarte*(separation+LinearSlop), -MaxLinearCorrection, 0.0)

			rnA := rA.Cross(normal)
			rnB := rB.Cross(normal)
			k := mA + mB + iA*rnA*rnA + iB*rnB*rnB

			impulse := 0.0
			if k > 0.0 {
				impulse = -c / k
			}

			p := normal.Mul(impulse)

			cA = cA.Sub(p.Mul(mA))
			aA -= iA * rA.Cross(p)

			cB = cB.Add(p.Mul(mB))
			aB += iB * rB.Cross(p)
		}

		solver.positions[indexA].c = cA
		solver.positions[indexA].a = aA

		solver.positions[indexB].c = cB
		solver.positions[indexB].a = aB
	}

	return minSeparation >= -3.0*LinearSlop
}

// solveTOIPositionConstraints is the position solver used by TOI
// sub-stepping. Only the two TOI bodies move; everything else is treated as
// infinite mass, and the stiffer TOI Baumgarte with a tighter tolerance is
// used.
func (solver *contactSolver) solveTOIPositionConstraints(toiIndexA, toiIndexB int) bool {
	minSeparation := 0.0

	for i := 0; i < solver.count; i++ {
		pc := &solver.positionConstraints[i]

		indexA := pc.indexA
		indexB := pc.indexB
		localCenterA := pc.localCenterA
		localCenterB := pc.localCenterB
		pointCount := pc.pointCount

		mA := 0.0
		iA := 0.0
		if indexA == toiIndexA || indexA == toiIndexB {
			mA = pc.invMassA
			iA = pc.invIA
		}

		mB := 0.0
		iB := 0.0
		if indexB == toiIndexA || indexB == toiIndexB {
			mB = pc.invMassB
			iB = pc.invIB
		}

		cA := solver.positions[indexA].c
		aA := solver.positions[indexA].a

		cB := solver.positions[indexB].c
		aB := solver.positions[indexB].a

		for j := 0; j < pointCount; j++ {
			var xfA, xfB Transform
			xfA.Q.Set(aA)
			xfB.Q.Set(aB)
			xfA.P = cA.Sub(xfA.Q.Apply(localCenterA))
			xfB.P = cB.Sub(xfB.Q.Apply(localCenterB))

			var psm positionSolverManifold
			psm.initialize(pc, xfA, xfB, j)
			normal := psm.normal
			point := psm.point
			separation := psm.separation

			rA := point.Sub(cA)
			rB := point.Sub(cB)

			minSeparation = math.Min(minSeparation, separation)

			c := clampFloat(TOIBaumgarte*(separation+LinearSlop), -MaxLinearCorrection, 0.0)

			rnA := rA.Cross(normal)
			rnB := rB.Cross(normal)
			k := mA + mB + iA*rnA*rnA + iB*rnB*rnB

			impulse := 0.0
			if k > 0.0 {
				impulse = -c / k
			}

			p := normal.Mul(impulse)

			cA = cA.Sub(p.Mul(mA))
			aA -= iA * rA.Cross(p)

			cB = cB.Add(p.Mul(mB))
			aB += iB * rB.Cross(p)
		}

		solver.positions[indexA].c = cA
		solver.positions[indexA].a = aA

		solver.positions[indexB].c = cB
		solver.positions[indexB].a = aB
	}

	return minSeparation >= -1.5*LinearSlop
}
