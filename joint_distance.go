package rigid2d

import (
	"math"
)

// DistanceJointDef requires an anchor point on both bodies and the non-zero
// rest length. Local anchor points are used so the initial configuration can
// violate the constraint slightly.
//
// Do not use a zero or short length.
type DistanceJointDef struct {
	jointDefCommon

	// LocalAnchorA is relative to bodyA's origin.
	LocalAnchorA Vec2

	// LocalAnchorB is relative to bodyB's origin.
	LocalAnchorB Vec2

	// Length is the natural length between the anchor points.
	Length float64

	// FrequencyHz is the mass-spring-damper frequency. Zero disables
	// softness.
	FrequencyHz float64

	// DampingRatio: 0 = no damping, 1 = critical damping.
	DampingRatio float64
}

func MakeDistanceJointDef() DistanceJointDef {
	return DistanceJointDef{Length: 1.0}
}

// Initialize sets the bodies, world anchors, and rest length.
func (def *DistanceJointDef) Initialize(bodyA, bodyB *Body, anchorA, anchorB Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LocalAnchorA = bodyA.LocalPoint(anchorA)
	def.LocalAnchorB = bodyB.LocalPoint(anchorB)
	def.Length = anchorB.Sub(anchorA).Length()
}

func (def *DistanceJointDef) create() Joint {
	return newDistanceJoint(def)
}

// DistanceJoint constrains two points on two bodies to remain at a fixed
// distance, like a massless rigid rod. With a positive frequency it becomes
// a spring-damper instead.
//
//	C = norm(p2 - p1) - L
//	u = (p2 - p1) / norm(p2 - p1)
//	Cdot = dot(u, v2 + cross(w2, r2) - v1 - cross(w1, r1))
//	J = [-u -cross(r1, u) u cross(r2, u)]
//	K = J * invM * JT
type DistanceJoint struct {
	jointBase

	frequencyHz  float64
	dampingRatio float64
	bias         float64

	// Solver shared
	localAnchorA Vec2
	localAnchorB Vec2
	gamma        float64
	impulse      float64
	length       float64

	// Solver temp
	indexA, indexB             int
	u                          Vec2
	rA, rB                     Vec2
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	mass                       float64
}

func newDistanceJoint(def *DistanceJointDef) *DistanceJoint {
	return &DistanceJoint{
		jointBase:    makeJointBase(DistanceJointType, def),
		localAnchorA: def.LocalAnchorA,
		localAnchorB: def.LocalAnchorB,
		length:       def.Length,
		frequencyHz:  def.FrequencyHz,
		dampingRatio: def.DampingRatio,
	}
}

func (joint *DistanceJoint) LocalAnchorA() Vec2 {
	return joint.localAnchorA
}

func (joint *DistanceJoint) LocalAnchorB() Vec2 {
	return joint.localAnchorB
}

func (joint *DistanceJoint) SetLength(length float64) {
	joint.length = length
}

func (joint *DistanceJoint) Length() float64 {
	return joint.length
}

func (joint *DistanceJoint) SetFrequency(hz float64) {
	joint.frequencyHz = hz
}

func (joint *DistanceJoint) Frequency() float64 {
	return joint.frequencyHz
}

func (joint *DistanceJoint) SetDampingRatio(ratio float64) {
	joint.dampingRatio = ratio
}

func (joint *DistanceJoint) DampingRatio() float64 {
	return joint.dampingRatio
}

func (joint *DistanceJoint) AnchorA() Vec2 {
	return joint.bodyA.WorldPoint(joint.localAnchorA)
}

func (joint *DistanceJoint) AnchorB() Vec2 {
	return joint.bodyB.WorldPoint(joint.localAnchorB)
}

func (joint *DistanceJoint) ReactionForce(invDT float64) Vec2 {
	return joint.u.Mul(invDT * joint.impulse)
}

func (joint *DistanceJoint) ReactionTorque(invDT float64) float64 {
	return 0.0
}

func (joint *DistanceJoint) initVelocityConstraints(data solverData) {
	joint.indexA = joint.bodyA.islandIndex
	joint.indexB = joint.bodyB.islandIndex
	joint.localCenterA = joint.bodyA.sweep.LocalCenter
	joint.localCenterB = joint.bodyB.sweep.LocalCenter
	joint.invMassA = joint.bodyA.invMass
	joint.invMassB = joint.bodyB.invMass
	joint.invIA = joint.bodyA.invI
	joint.invIB = joint.bodyB.invI

	cA := data.positions[joint.indexA].c
	aA := data.positions[joint.indexA].a
	vA := data.velocities[joint.indexA].v
	wA := data.velocities[joint.indexA].w

	cB := data.positions[joint.indexB].c
	aB := data.positions[joint.indexB].a
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	qA := MakeRot(aA)
	qB := MakeRot(aB)

	joint.rA = qA.Apply(joint.localAnchorA.Sub(joint.localCenterA))
	joint.rB = qB.Apply(joint.localAnchorB.Sub(joint.localCenterB))
	joint.u = cB.Add(joint.rB).Sub(cA).Sub(joint.rA)

	// Handle singularity: a degenerate axis produces no impulse this step.
	length := joint.u.Length()
	if length > LinearSlop {
		joint.u = joint.u.Mul(1.0 / length)
	} else {
		joint.u.SetZero()
	}

	crAu := joint.rA.Cross(joint.u)
	crBu := joint.rB.Cross(joint.u)
	invMass := joint.invMassA + joint.invIA*crAu*crAu + joint.invMassB + joint.invIB*crBu*crBu

	if invMass != 0.0 {
		joint.mass = 1.0 / invMass
	} else {
		joint.mass = 0.0
	}

	if joint.frequencyHz > 0.0 {
		c := length - joint.length

		omega := 2.0 * math.Pi * joint.frequencyHz

		// Damping coefficient and spring stiffness.
		d := 2.0 * joint.mass * joint.dampingRatio * omega
		k := joint.mass * omega * omega

		// Convert softness to per-step gamma and bias.
		h := data.step.dt
		joint.gamma = h * (d + h*k)
		if joint.gamma != 0.0 {
			joint.gamma = 1.0 / joint.gamma
		}
		joint.bias = c * h * k * joint.gamma

		invMass += joint.gamma
		if invMass != 0.0 {
			joint.mass = 1.0 / invMass
		} else {
			joint.mass = 0.0
		}
	} else {
		joint.gamma = 0.0
		joint.bias = 0.0
	}

	if data.step.warmStarting {
		// Scale the impulse to support a variable time step.
		joint.impulse *= data.step.dtRatio

		p := joint.u.Mul(joint.impulse)
		vA = vA.Sub(p.Mul(joint.invMassA))
		wA -= joint.invIA * joint.rA.Cross(p)
		vB = vB.Add(p.Mul(joint.invMassB))
		wB += joint.invIB * joint.rB.Cross(p)
	} else {
		joint.impulse = 0.0
	}

	data.velocities[joint.indexA].v = vA
	data.velocities[joint.indexA].w = wA
	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
}

func (joint *DistanceJoint) solveVelocityConstraints(data solverData) {
	vA := data.velocities[joint.indexA].v
	wA := data.velocities[joint.indexA].w
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	// Cdot = dot(u, v + cross(w, r))
	vpA := vA.Add(CrossSV(wA, joint.rA))
	vpB := vB.Add(CrossSV(wB, joint.rB))
	cdot := joint.u.Dot(vpB.Sub(vpA))

	impulse := -joint.mass * (cdot + joint.bias + joint.gamma*joint.impulse)
	joint.impulse += impulse

	p := joint.u.Mul(impulse)
	vA = vA.Sub(p.Mul(joint.invMassA))
	wA -= joint.invIA * joint.rA.Cross(p)
	vB = vB.Add(p.Mul(joint.invMassB))
	wB += joint.invIB * joint.rB.Cross(p)

	data.velocities[joint.indexA].v = vA
	data.velocities[joint.indexA].w = wA
	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
}

func (joint *DistanceJoint) solvePositionConstraints(data solverData) bool {
	if joint.frequencyHz > 0.0 {
		// There is no position correction for soft distance constraints.
		return true
	}

	cA := data.positions[joint.indexA].c
	aA := data.positions[joint.indexA].a
	cB := data.positions[joint.indexB].c
	aB := data.positions[joint.indexB].a

	qA := MakeRot(aA)
	qB := MakeRot(aB)

	rA := qA.Apply(joint.localAnchorA.Sub(joint.localCenterA))
	rB := qB.Apply(joint.localAnchorB.Sub(joint.localCenterB))
	u := cB.Add(rB).Sub(cA).Sub(rA)

	length := u.Normalize()
	c := length - joint.length
	c = clampFloat(c, -MaxLinearCorrection, MaxLinearCorrection)

	impulse := -joint.mass * c
	p := u.Mul(impulse)

	cA = cA.Sub(p.Mul(joint.invMassA))
	aA -= joint.invIA * rA.Cross(p)
	cB = cB.Add(p.Mul(joint.invMassB))
	aB += joint.invIB * rB.Cross(p)

	data.positions[joint.indexA].c = cA
	data.positions[joint.indexA].a = aA
	data.positions[joint.indexB].c = cB
	data.positions[joint.indexB].a = aB

	return math.Abs(c) < LinearSlop
}
