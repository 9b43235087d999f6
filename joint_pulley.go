package rigid2d

import (
	"math"
)

// PulleyJointDef requires two ground anchors, two body anchor points, and a
// pulley ratio.
type PulleyJointDef struct {
	jointDefCommon

	// GroundAnchorA and GroundAnchorB are world points that never move.
	GroundAnchorA Vec2
	GroundAnchorB Vec2

	// LocalAnchorA is relative to bodyA's origin.
	LocalAnchorA Vec2

	// LocalAnchorB is relative to bodyB's origin.
	LocalAnchorB Vec2

	// LengthA and LengthB are the reference segment lengths.
	LengthA float64
	LengthB float64

	// Ratio simulates a block-and-tackle; the transmitted force is scaled
	// by it.
	Ratio float64
}

func MakePulleyJointDef() PulleyJointDef {
	return PulleyJointDef{
		GroundAnchorA: Vec2{-1.0, 1.0},
		GroundAnchorB: Vec2{1.0, 1.0},
		LocalAnchorA:  Vec2{-1.0, 0.0},
		LocalAnchorB:  Vec2{1.0, 0.0},
		Ratio:         1.0,
		jointDefCommon: jointDefCommon{
			CollideConnected: true,
		},
	}
}

// Initialize sets the bodies, ground anchors, body anchors and ratio from
// world coordinates.
func (def *PulleyJointDef) Initialize(bodyA, bodyB *Body, groundA, groundB, anchorA, anchorB Vec2, ratio float64) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.GroundAnchorA = groundA
	def.GroundAnchorB = groundB
	def.LocalAnchorA = bodyA.LocalPoint(anchorA)
	def.LocalAnchorB = bodyB.LocalPoint(anchorB)
	def.LengthA = anchorA.Sub(groundA).Length()
	def.LengthB = anchorB.Sub(groundB).Length()
	def.Ratio = ratio
	assert(def.Ratio > epsilon)
}

func (def *PulleyJointDef) create() Joint {
	return newPulleyJoint(def)
}

// PulleyJoint connects two bodies over two fixed ground points, enforcing
//
//	length1 + ratio * length2 = constant
//
// The joint can get squirrelly on its own; it often behaves better combined
// with prismatic joints, with static shapes covering the anchor points so
// neither side reaches zero length (the constraint axis degenerates there).
//
//	C = C0 - (length1 + ratio * length2)
//	u1 = (p1 - s1) / norm(p1 - s1), u2 likewise
//	Cdot = -dot(u1, v1 + cross(w1, r1)) - ratio * dot(u2, v2 + cross(w2, r2))
//	K = invMass1 + invI1 * cross(r1, u1)² + ratio² * (invMass2 + invI2 * cross(r2, u2)²)
type PulleyJoint struct {
	jointBase

	groundAnchorA Vec2
	groundAnchorB Vec2
	lengthA       float64
	lengthB       float64

	// Solver shared
	localAnchorA Vec2
	localAnchorB Vec2
	constant     float64
	ratio        float64
	impulse      float64

	// Solver temp
	indexA, indexB             int
	uA, uB                     Vec2
	rA, rB                     Vec2
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	mass                       float64
}

func newPulleyJoint(def *PulleyJointDef) *PulleyJoint {
	assert(def.Ratio != 0.0)

	joint := &PulleyJoint{
		jointBase:     makeJointBase(PulleyJointType, def),
		groundAnchorA: def.GroundAnchorA,
		groundAnchorB: def.GroundAnchorB,
		localAnchorA:  def.LocalAnchorA,
		localAnchorB:  def.LocalAnchorB,
		lengthA:       def.LengthA,
		lengthB:       def.LengthB,
		ratio:         def.Ratio,
	}
	joint.constant = def.LengthA + joint.ratio*def.LengthB

	return joint
}

func (joint *PulleyJoint) GroundAnchorA() Vec2 {
	return joint.groundAnchorA
}

func (joint *PulleyJoint) GroundAnchorB() Vec2 {
	return joint.groundAnchorB
}

func (joint *PulleyJoint) LengthA() float64 {
	return joint.lengthA
}

func (joint *PulleyJoint) LengthB() float64 {
	return joint.lengthB
}

func (joint *PulleyJoint) Ratio() float64 {
	return joint.ratio
}

// CurrentLengthA returns the current length of the segment attached to
// bodyA.
func (joint *PulleyJoint) CurrentLengthA() float64 {
	p := joint.bodyA.WorldPoint(joint.localAnchorA)
	return p.Sub(joint.groundAnchorA).Length()
}

// CurrentLengthB returns the current length of the segment attached to
// bodyB.
func (joint *PulleyJoint) CurrentLengthB() float64 {
	p := joint.bodyB.WorldPoint(joint.localAnchorB)
	return p.Sub(joint.groundAnchorB).Length()
}

func (joint *PulleyJoint) AnchorA() Vec2 {
	return joint.bodyA.WorldPoint(joint.localAnchorA)
}

func (joint *PulleyJoint) AnchorB() Vec2 {
	return joint.bodyB.WorldPoint(joint.localAnchorB)
}

func (joint *PulleyJoint) ReactionForce(invDT float64) Vec2 {
	return joint.uB.Mul(invDT * joint.impulse)
}

func (joint *PulleyJoint) ReactionTorque(invDT float64) float64 {
	return 0.0
}

func (joint *PulleyJoint) ShiftOrigin(newOrigin Vec2) {
	joint.groundAnchorA = joint.groundAnchorA.Sub(newOrigin)
	joint.groundAnchorB = joint.groundAnchorB.Sub(newOrigin)
}

func (joint *PulleyJoint) initVelocityConstraints(data solverData) {
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

	// Pulley axes. A near-singular side (anchor at the ground point)
	// contributes nothing this step.
	joint.uA = cA.Add(joint.rA).Sub(joint.groundAnchorA)
	joint.uB = cB.Add(joint.rB).Sub(joint.groundAnchorB)

	lengthA := joint.uA.Length()
	lengthB := joint.uB.Length()

	if lengthA > 10.0*LinearSlop {
		joint.uA = joint.uA.Mul(1.0 / lengthA)
	} else {
		joint.uA.SetZero()
	}

	if lengthB > 10.0*LinearSlop {
		joint.uB = joint.uB.Mul(1.0 / lengthB)
	} else {
		joint.uB.SetZero()
	}

	// Effective mass.
	ruA := joint.rA.Cross(joint.uA)
	ruB := joint.rB.Cross(joint.uB)

	mA := joint.invMassA + joint.invIA*ruA*ruA
	mB := joint.invMassB + joint.invIB*ruB*ruB

	joint.mass = mA + joint.ratio*joint.ratio*mB
	if joint.mass > 0.0 {
		joint.mass = 1.0 / joint.mass
	}

	if data.step.warmStarting {
		// Scale impulses to support variable time steps.
		joint.impulse *= data.step.dtRatio

		pA := joint.uA.Mul(-joint.impulse)
		pB := joint.uB.Mul(-joint.ratio * joint.impulse)

		vA = vA.Add(pA.Mul(joint.invMassA))
		wA += joint.invIA * joint.rA.Cross(pA)
		vB = vB.Add(pB.Mul(joint.invMassB))
		wB += joint.invIB * joint.rB.Cross(pB)
	} else {
		joint.impulse = 0.0
	}

	data.velocities[joint.indexA].v = vA
	data.velocities[joint.indexA].w = wA
	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
}

func (joint *PulleyJoint) solveVelocityConstraints(data solverData) {
	vA := data.velocities[joint.indexA].v
	wA := data.velocities[joint.indexA].w
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	vpA := vA.Add(CrossSV(wA, joint.rA))
	vpB := vB.Add(CrossSV(wB, joint.rB))

	cdot := -joint.uA.Dot(vpA) - joint.ratio*joint.uB.Dot(vpB)
	impulse := -joint.mass * cdot
	joint.impulse += impulse

	pA := joint.uA.Mul(-impulse)
	pB := joint.uB.Mul(-joint.ratio * impulse)
	vA = vA.Add(pA.Mul(joint.invMassA))
	wA += joint.invIA * joint.rA.Cross(pA)
	vB = vB.Add(pB.Mul(joint.invMassB))
	wB += joint.invIB * joint.rB.Cross(pB)

	data.velocities[joint.indexA].v = vA
	data.velocities[joint.indexA].w = wA
	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
}

func (joint *PulleyJoint) solvePositionConstraints(data solverData) bool {
	cA := data.positions[joint.indexA].c
	aA := data.positions[joint.indexA].a
	cB := data.positions[joint.indexB].c
	aB := data.positions[joint.indexB].a

	qA := MakeRot(aA)
	qB := MakeRot(aB)

	rA := qA.Apply(joint.localAnchorA.Sub(joint.localCenterA))
	rB := qB.Apply(joint.localAnchorB.Sub(joint.localCenterB))

	uA := cA.Add(rA).Sub(joint.groundAnchorA)
	uB := cB.Add(rB).Sub(joint.groundAnchorB)

	lengthA := uA.Length()
	lengthB := uB.Length()

	if lengthA > 10.0*LinearSlop {
		uA = uA.Mul(1.0 / lengthA)
	} else {
		uA.SetZero()
	}

	if lengthB > 10.0*LinearSlop {
		uB = uB.Mul(1.0 / lengthB)
	} else {
		uB.SetZero()
	}

	ruA := rA.Cross(uA)
	ruB := rB.Cross(uB)

	mA := joint.invMassA + joint.invIA*ruA*ruA
	mB := joint.invMassB + joint.invIB*ruB*ruB

	mass := mA + joint.ratio*joint.ratio*mB
	if mass > 0.0 {
		mass = 1.0 / mass
	}

	c := joint.constant - lengthA - joint.ratio*lengthB
	linearError := math.Abs(c)

	impulse := -mass * c

	pA := uA.Mul(-impulse)
	pB := uB.Mul(-joint.ratio * impulse)

	cA = cA.Add(pA.Mul(joint.invMassA))
	aA += joint.invIA * rA.Cross(pA)
	cB = cB.Add(pB.Mul(joint.invMassB))
	aB += joint.invIB * rB.Cross(pB)

	data.positions[joint.indexA].c = cA
	data.positions[joint.indexA].a = aA
	data.positions[joint.indexB].c = cB
	data.positions[joint.indexB].a = aB

	return linearError < LinearSlop
}
