package rigid2d

import (
	"math"
)

/*
Position correction notes
=========================
The engine uses a full NGS position solver on top of a Baumgarte-free
velocity solver. Pure Baumgarte (a fraction of the position error added to
the velocity error, no separate position pass) is cheap but artificially
feeds the correction into momentum, producing false bounce and instability
on bridges and chains. Pseudo velocities fix the bounce but cannot recover
from joint separation. NGS re-computes the position error and Jacobians per
constraint per iteration, updates positions in place, and terminates early
once the error drops under the slop, which is stable across the pendulum,
bridge and chain stress cases at the cost of the extra pass.

Cache notes
===========
The solvers are dominated by cache misses, mostly random access to body
data. Constraint structures are iterated linearly and carry copies of the
read-only body data (masses, anchors); the mutable velocities and positions
live in compact island-local arrays so the inner loops touch contiguous
memory.
*/

// island is the transient constraint graph solved as one unit: a maximal
// connected set of awake bodies linked by contacts and joints, with body
// state staged into flat position/velocity arrays indexed by island-local
// body index.
type island struct {
	listener ContactListener

	bodies   []*Body
	contacts []*Contact
	joints   []Joint

	positions  []position
	velocities []velocity

	bodyCount    int
	jointCount   int
	contactCount int

	bodyCapacity    int
	contactCapacity int
	jointCapacity   int
}

func newIsland(bodyCapacity, contactCapacity, jointCapacity int, listener ContactListener) *island {
	return &island{
		listener: listener,

		bodyCapacity:    bodyCapacity,
		contactCapacity: contactCapacity,
		jointCapacity:   jointCapacity,

		bodies:   make([]*Body, bodyCapacity),
		contacts: make([]*Contact, contactCapacity),
		joints:   make([]Joint, jointCapacity),

		positions:  make([]position, bodyCapacity),
		velocities: make([]velocity, bodyCapacity),
	}
}

func (isl *island) clear() {
	isl.bodyCount = 0
	isl.contactCount = 0
	isl.jointCount = 0
}

func (isl *island) addBody(body *Body) {
	assert(isl.bodyCount < isl.bodyCapacity)
	body.islandIndex = isl.bodyCount
	isl.bodies[isl.bodyCount] = body
	isl.bodyCount++
}

func (isl *island) addContact(contact *Contact) {
	assert(isl.contactCount < isl.contactCapacity)
	isl.contacts[isl.contactCount] = contact
	isl.contactCount++
}

func (isl *island) addJoint(joint Joint) {
	assert(isl.jointCount < isl.jointCapacity)
	isl.joints[isl.jointCount] = joint
	isl.jointCount++
}

// solve advances the island one step: integrate velocities with gravity,
// forces and damping; solve velocity constraints with warm starting;
// integrate positions under the translation/rotation clamps; run the NGS
// position correction; write back; and evaluate sleep.
func (isl *island) solve(profile *Profile, step timeStep, gravity Vec2, allowSleep bool) {
	timer := makeStopwatch()

	h := step.dt

	// Integrate velocities and apply damping. Initialize the body state.
	for i := 0; i < isl.bodyCount; i++ {
		b := isl.bodies[i]

		c := b.sweep.C
		a := b.sweep.A
		v := b.linearVelocity
		w := b.angularVelocity

		// Store positions for continuous collision.
		b.sweep.C0 = b.sweep.C
		b.sweep.A0 = b.sweep.A

		if b.bodyType == DynamicBody {
			// Integrate velocities.
			v = v.Add(gravity.Mul(b.gravityScale).Add(b.force.Mul(b.invMass)).Mul(h))
			w += h * b.invI * b.torque

			// Apply damping.
			// ODE: dv/dt + c * v = 0
			// Solution: v(t) = v0 * exp(-c * t)
			// Step: v2 = v1 * exp(-c * dt)
			// Padé approximation: v2 = v1 * 1 / (1 + c * dt)
			v = v.Mul(1.0 / (1.0 + h*b.linearDamping))
			w *= 1.0 / (1.0 + h*b.angularDamping)
		}

		isl.positions[i].c = c
		isl.positions[i].a = a
		isl.velocities[i].v = v
		isl.velocities[i].w = w
	}

	timer.reset()

	data := solverData{
		step:       step,
		positions:  isl.positions,
		velocities: isl.velocities,
	}

	// Initialize velocity constraints.
	solverDef := contactSolverDef{
		step:       step,
		contacts:   isl.contacts,
		count:      isl.contactCount,
		positions:  isl.positions,
		velocities: isl.velocities,
	}

	contactSolver := newContactSolver(&solverDef)
	contactSolver.initializeVelocityConstraints()

	if step.warmStarting {
		contactSolver.warmStart()
	}

	for i := 0; i < isl.jointCount; i++ {
		isl.joints[i].initVelocityConstraints(data)
	}

	profile.SolveInit = timer.milliseconds()

	// Solve velocity constraints.
	timer.reset()
	for i := 0; i < step.velocityIterations; i++ {
		for j := 0; j < isl.jointCount; j++ {
			isl.joints[j].solveVelocityConstraints(data)
		}

		contactSolver.solveVelocityConstraints()
	}

	// Store impulses for warm starting.
	contactSolver.storeImpulses()
	profile.SolveVelocity = timer.milliseconds()

	// Integrate positions.
	for i := 0; i < isl.bodyCount; i++ {
		c := isl.positions[i].c
		a := isl.positions[i].a
		v := isl.velocities[i].v
		w := isl.velocities[i].w

		// Check for large velocities.
		translation := v.Mul(h)
		if translation.Dot(translation) > MaxTranslation*MaxTranslation {
			ratio := MaxTranslation / translation.Length()
			v = v.Mul(ratio)
		}

		rotation := h * w
		if rotation*rotation > MaxRotation*MaxRotation {
			ratio := MaxRotation / math.Abs(rotation)
			w *= ratio
		}

		// Integrate.
		c = c.Add(v.Mul(h))
		a += h * w

		isl.positions[i].c = c
		isl.positions[i].a = a
		isl.velocities[i].v = v
		isl.velocities[i].w = w
	}

	// Solve position constraints.
	timer.reset()
	positionSolved := false
	for i := 0; i < step.positionIterations; i++ {
		contactsOkay := contactSolver.solvePositionConstraints()

		jointsOkay := true
		for j := 0; j < isl.jointCount; j++ {
			jointOkay := isl.joints[j].solvePositionConstraints(data)
			jointsOkay = jointsOkay && jointOkay
		}

		if contactsOkay && jointsOkay {
			// Exit early if the position errors are small.
			positionSolved = true
			break
		}
	}

	// Copy state buffers back to the bodies.
	for i := 0; i < isl.bodyCount; i++ {
		body := isl.bodies[i]
		body.sweep.C = isl.positions[i].c
		body.sweep.A = isl.positions[i].a
		body.linearVelocity = isl.velocities[i].v
		body.angularVelocity = isl.velocities[i].w
		body.synchronizeTransform()
	}

	profile.SolvePosition = timer.milliseconds()

	isl.report(contactSolver.velocityConstraints)

	if allowSleep {
		minSleepTime := maxFloat

		linTolSqr := LinearSleepTolerance * LinearSleepTolerance
		angTolSqr := AngularSleepTolerance * AngularSleepTolerance

		for i := 0; i < isl.bodyCount; i++ {
			b := isl.bodies[i]
			if b.bodyType == StaticBody {
				continue
			}

			if !b.autoSleep ||
				b.angularVelocity*b.angularVelocity > angTolSqr ||
				b.linearVelocity.Dot(b.linearVelocity) > linTolSqr {
				b.sleepTime = 0.0
				minSleepTime = 0.0
			} else {
				b.sleepTime += h
				minSleepTime = math.Min(minSleepTime, b.sleepTime)
			}
		}

		// The whole island sleeps or none of it does; a sleeping body
		// woken by a neighbor would wake the island anyway.
		if minSleepTime >= TimeToSleep && positionSolved {
			for i := 0; i < isl.bodyCount; i++ {
				isl.bodies[i].SetAwake(false)
			}
		}
	}
}

// solveTOI runs the sub-step solve of a TOI mini-island: position-correct
// toward the impact configuration with only the two TOI bodies mobile, then
// a velocity solve without warm starting (the discrete solver already
// applied the warm-start impulses; TOI impulses can be huge and are not
// stored).
func (isl *island) solveTOI(subStep timeStep, toiIndexA, toiIndexB int) {
	assert(toiIndexA < isl.bodyCount)
	assert(toiIndexB < isl.bodyCount)

	for i := 0; i < isl.bodyCount; i++ {
		b := isl.bodies[i]
		isl.positions[i].c = b.sweep.C
		isl.positions[i].a = b.sweep.A
		isl.velocities[i].v = b.linearVelocity
		isl.velocities[i].w = b.angularVelocity
	}

	solverDef := contactSolverDef{
		step:       subStep,
		contacts:   isl.contacts,
		count:      isl.contactCount,
		positions:  isl.positions,
		velocities: isl.velocities,
	}
	contactSolver := newContactSolver(&solverDef)

	// Solve position constraints.
	for i := 0; i < subStep.positionIterations; i++ {
		if contactSolver.solveTOIPositionConstraints(toiIndexA, toiIndexB) {
			break
		}
	}

	// Leap of faith to the new safe state.
	isl.bodies[toiIndexA].sweep.C0 = isl.positions[toiIndexA].c
	isl.bodies[toiIndexA].sweep.A0 = isl.positions[toiIndexA].a
	isl.bodies[toiIndexB].sweep.C0 = isl.positions[toiIndexB].c
	isl.bodies[toiIndexB].sweep.A0 = isl.positions[toiIndexB].a

	contactSolver.initializeVelocityConstraints()

	// Solve velocity constraints.
	for i := 0; i < subStep.velocityIterations; i++ {
		contactSolver.solveVelocityConstraints()
	}

	h := subStep.dt

	// Integrate positions.
	for i := 0; i < isl.bodyCount; i++ {
		c := isl.positions[i].c
		a := isl.positions[i].a
		v := isl.velocities[i].v
		w := isl.velocities[i].w

		translation := v.Mul(h)
		if translation.Dot(translation) > MaxTranslation*MaxTranslation {
			ratio := MaxTranslation / translation.Length()
			v = v.Mul(ratio)
		}

		rotation := h * w
		if rotation*rotation > MaxRotation*MaxRotation {
			ratio := MaxRotation / math.Abs(rotation)
			w *= ratio
		}

		c = c.Add(v.Mul(h))
		a += h * w

		isl.positions[i].c = c
		isl.positions[i].a = a
		isl.velocities[i].v = v
		isl.velocities[i].w = w

		// Sync bodies.
		body := isl.bodies[i]
		body.sweep.C = c
		body.sweep.A = a
		body.linearVelocity = v
		body.angularVelocity = w
		body.synchronizeTransform()
	}

	isl.report(contactSolver.velocityConstraints)
}

// report delivers the buffered post-solve impulses to the listener.
func (isl *island) report(constraints []contactVelocityConstraint) {
	if isl.listener == nil {
		return
	}

	for i := 0; i < isl.contactCount; i++ {
		c := isl.contacts[i]
		vc := &constraints[i]

		var impulse ContactImpulse
		impulse.Count = vc.pointCount
		for j := 0; j < vc.pointCount; j++ {
			impulse.NormalImpulses[j] = vc.points[j].normalImpulse
			impulse.TangentImpulses[j] = vc.points[j].tangentImpulse
		}

		isl.listener.PostSolve(c, &impulse)
	}
}
