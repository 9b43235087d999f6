package rigid2d

import (
	"math"
)

// RopeJointDef requires two body anchor points and a maximum length.
// By default the connected bodies do not collide; see CollideConnected.
type RopeJointDef struct {
	jointDefCommon

	LocalAnchorA Vec2
	LocalAnchorB Vec2

	// MaxLength of the rope. Must be larger than LinearSlop or the joint
	// has no effect.
	MaxLength float64
}

func MakeRopeJointDef() RopeJointDef {
	return RopeJointDef{
		LocalAnchorA: Vec2{-1.0, 0.0},
		LocalAnchorB: Vec2{1.0, 0.0},
	}
}

func (def *RopeJointDef) create() Joint {
	return newRopeJoint(def)
}

// RopeJoint enforces a maximum distance between two points on two bodies
// and has no other effect. Changing the maximum length mid-simulation gives
// non-physical behavior; a model that supported it would be spongy, so use
// a DistanceJoint for dynamically controlled length instead.
//
//	C = norm(pB - pA) - L
//	u = (pB - pA) / norm(pB - pA)
//	Cdot = dot(u, vB + cross(wB, rB) - vA - cross(wA, rA))
//	K = invMassA + invIA * cross(rA, u)² + invMassB + invIB * cross(rB, u)²
type RopeJoint struct {
	jointBase

	// Solver shared
	localAnchorA Vec2
	localAnchorB Vec2
	maxLength    float64
	length       float64
	impulse      float64

	// Solver temp
	indexA, indexB             int
	u                          Vec2
	rA, rB                     Vec2
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	mass                       float64
	state                      limitState
}

func newRopeJoint(def *RopeJointDef) *RopeJoint {
	return &RopeJoint{
		jointBase:    makeJointBase(RopeJointType, def),
		localAnchorA: def.LocalAnchorA,
		localAnchorB: def.LocalAnchorB,
		maxLength:    def.MaxLength,
		state:        inactiveLimit,
	}
}

func (joint *RopeJoint) LocalAnchorA() Vec2 {
	return joint.localAnchorA
}

func (joint *RopeJoint) LocalAnchorB() Vec2 {
	return joint.localAnchorB
}

func (joint *RopeJoint) SetMaxLength(length float64) {
	joint.maxLength = length
}

func (joint *RopeJoint) MaxLength() float64 {
	return joint.maxLength
}

// IsTaut reports whether the rope is at its limit.
func (joint *RopeJoint) IsTaut() bool {
	return joint.state == atUpperLimit
}

func (joint *RopeJoint) AnchorA() Vec2 {
	return joint.bodyA.WorldPoint(joint.localAnchorA)
}

func (joint *RopeJoint) AnchorB() Vec2 {
	return joint.bodyB.WorldPoint(joint.localAnchorB)
}

func (joint *RopeJoint) ReactionForce(invDT float64) Vec2 {
	return joint.u.Mul(invDT * joint.impulse)
}

func (joint *RopeJoint) ReactionTorque(invDT float64) float64 {
	return 0.0
}

func (joint *RopeJoint) initVelocityConstraints(data solverData) {
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

	joint.length = joint.u.Length()

	c := joint.length - joint.maxLength
	if c > 0.0 {
		joint.state = atUpperLimit
	} else {
		joint.state = inactiveLimit
	}

	if joint.length > LinearSlop {
		joint.u = joint.u.Mul(1.0 / joint.length)
	} else {
		joint.u.SetZero()
		joint.mass = 0.0
		joint.impulse = 0.0
		return
	}

	// Effective mass.
	crA := joint.rA.Cross(joint.u)
	crB := joint.rB.Cross(joint.u)
	invMass := joint.invMassA + joint.invIA*crA*crA + joint.invMassB + joint.invIB*crB*crB

	if invMass != 0.0 {
		joint.mass = 1.0 / invMass
	} else {
		joint.mass = 0.0
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

func (joint *RopeJoint) solveVelocityConstraints(data solverData) {
	vA := data.velocities[joint.indexA].v
	wA := data.velocities[joint.indexA].w
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	// Cdot = dot(u, v + cross(w, r))
	vpA := vA.Add(CrossSV(wA, joint.rA))
	vpB := vB.Add(CrossSV(wB, joint.rB))
	c := joint.length - joint.maxLength
	cdot := joint.u.Dot(vpB.Sub(vpA))

	// Predictive constraint.
	if c < 0.0 {
		cdot += data.step.invDT * c
	}

	impulse := -joint.mass * cdot
	oldImpulse := joint.impulse
	joint.impulse = math.Min(0.0, joint.impulse+impulse)
	impulse = joint.impulse - oldImpulse

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

func (joint *RopeJoint) solvePositionConstraints(data solverData) bool {
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
	c := length - joint.maxLength

	c = clampFloat(c, 0.0, MaxLinearCorrection)

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

	return length-joint.maxLength < LinearSlop
}
