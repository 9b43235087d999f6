package rigid2d

import (
	"math"
)

// WeldJointDef requires the local anchor points and the relative body
// angle. The anchor position matters for computing the reaction torque.
type WeldJointDef struct {
	jointDefCommon

	LocalAnchorA Vec2
	LocalAnchorB Vec2

	// ReferenceAngle is bodyB angle minus bodyA angle in the reference
	// state, in radians.
	ReferenceAngle float64

	// FrequencyHz is the mass-spring-damper frequency, rotation only.
	// Zero disables softness.
	FrequencyHz float64

	// DampingRatio: 0 = no damping, 1 = critical damping.
	DampingRatio float64
}

func MakeWeldJointDef() WeldJointDef {
	return WeldJointDef{}
}

// Initialize sets the bodies and the shared world anchor.
func (def *WeldJointDef) Initialize(bodyA, bodyB *Body, anchor Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LocalAnchorA = bodyA.LocalPoint(anchor)
	def.LocalAnchorB = bodyB.LocalPoint(anchor)
	def.ReferenceAngle = bodyB.Angle() - bodyA.Angle()
}

func (def *WeldJointDef) create() Joint {
	return newWeldJoint(def)
}

// WeldJoint essentially glues two bodies together. It may distort somewhat
// because the island constraint solver is approximate.
//
// Point-to-point constraint:
//
//	C = p2 - p1
//	Cdot = v2 + cross(w2, r2) - v1 - cross(w1, r1)
//	J = [-I -r1_skew I r2_skew]
//
// Angle constraint:
//
//	C = angle2 - angle1 - referenceAngle
//	Cdot = w2 - w1
//	J = [0 0 -1 0 0 1]
//	K = invI1 + invI2
type WeldJoint struct {
	jointBase

	frequencyHz  float64
	dampingRatio float64
	bias         float64

	// Solver shared
	localAnchorA   Vec2
	localAnchorB   Vec2
	referenceAngle float64
	gamma          float64
	impulse        Vec3

	// Solver temp
	indexA, indexB             int
	rA, rB                     Vec2
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	mass                       Mat33
}

func newWeldJoint(def *WeldJointDef) *WeldJoint {
	return &WeldJoint{
		jointBase:      makeJointBase(WeldJointType, def),
		localAnchorA:   def.LocalAnchorA,
		localAnchorB:   def.LocalAnchorB,
		referenceAngle: def.ReferenceAngle,
		frequencyHz:    def.FrequencyHz,
		dampingRatio:   def.DampingRatio,
	}
}

func (joint *WeldJoint) LocalAnchorA() Vec2 {
	return joint.localAnchorA
}

func (joint *WeldJoint) LocalAnchorB() Vec2 {
	return joint.localAnchorB
}

func (joint *WeldJoint) ReferenceAngle() float64 {
	return joint.referenceAngle
}

func (joint *WeldJoint) SetFrequency(hz float64) {
	joint.frequencyHz = hz
}

func (joint *WeldJoint) Frequency() float64 {
	return joint.frequencyHz
}

func (joint *WeldJoint) SetDampingRatio(ratio float64) {
	joint.dampingRatio = ratio
}

func (joint *WeldJoint) DampingRatio() float64 {
	return joint.dampingRatio
}

func (joint *WeldJoint) AnchorA() Vec2 {
	return joint.bodyA.WorldPoint(joint.localAnchorA)
}

func (joint *WeldJoint) AnchorB() Vec2 {
	return joint.bodyB.WorldPoint(joint.localAnchorB)
}

func (joint *WeldJoint) ReactionForce(invDT float64) Vec2 {
	return Vec2{joint.impulse.X, joint.impulse.Y}.Mul(invDT)
}

func (joint *WeldJoint) ReactionTorque(invDT float64) float64 {
	return invDT * joint.impulse.Z
}

func (joint *WeldJoint) initVelocityConstraints(data solverData) {
	joint.indexA = joint.bodyA.islandIndex
	joint.indexB = joint.bodyB.islandIndex
	joint.localCenterA = joint.bodyA.sweep.LocalCenter
	joint.localCenterB = joint.bodyB.sweep.LocalCenter
	joint.invMassA = joint.bodyA.invMass
	joint.invMassB = joint.bodyB.invMass
	joint.invIA = joint.bodyA.invI
	joint.invIB = joint.bodyB.invI

	aA := data.positions[joint.indexA].a
	vA := data.velocities[joint.indexA].v
	wA := data.velocities[joint.indexA].w

	aB := data.positions[joint.indexB].a
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	qA := MakeRot(aA)
	qB := MakeRot(aB)

	joint.rA = qA.Apply(joint.localAnchorA.Sub(joint.localCenterA))
	joint.rB = qB.Apply(joint.localAnchorB.Sub(joint.localCenterB))

	mA := joint.invMassA
	mB := joint.invMassB
	iA := joint.invIA
	iB := joint.invIB

	var k Mat33
	k.Ex.X = mA + mB + joint.rA.Y*joint.rA.Y*iA + joint.rB.Y*joint.rB.Y*iB
	k.Ey.X = -joint.rA.Y*joint.rA.X*iA - joint.rB.Y*joint.rB.X*iB
	k.Ez.X = -joint.rA.Y*iA - joint.rB.Y*iB
	k.Ex.Y = k.Ey.X
	k.Ey.Y = mA + mB + joint.rA.X*joint.rA.X*iA + joint.rB.X*joint.rB.X*iB
	k.Ez.Y = joint.rA.X*iA + joint.rB.X*iB
	k.Ex.Z = k.Ez.X
	k.Ey.Z = k.Ez.Y
	k.Ez.Z = iA + iB

	if joint.frequencyHz > 0.0 {
		k.GetInverse22(&joint.mass)

		invM := iA + iB
		m := 0.0
		if invM > 0.0 {
			m = 1.0 / invM
		}

		c := aB - aA - joint.referenceAngle

		omega := 2.0 * math.Pi * joint.frequencyHz

		// Damping coefficient and spring stiffness.
		d := 2.0 * m * joint.dampingRatio * omega
		spring := m * omega * omega

		// Convert softness to per-step gamma and bias.
		h := data.step.dt
		joint.gamma = h * (d + h*spring)
		if joint.gamma != 0.0 {
			joint.gamma = 1.0 / joint.gamma
		}
		joint.bias = c * h * spring * joint.gamma

		invM += joint.gamma
		if invM != 0.0 {
			joint.mass.Ez.Z = 1.0 / invM
		} else {
			joint.mass.Ez.Z = 0.0
		}
	} else if k.Ez.Z == 0.0 {
		k.GetInverse22(&joint.mass)
		joint.gamma = 0.0
		joint.bias = 0.0
	} else {
		k.GetSymInverse33(&joint.mass)
		joint.gamma = 0.0
		joint.bias = 0.0
	}

	if data.step.warmStarting {
		// Scale impulses to support a variable time step.
		joint.impulse = joint.impulse.Mul(data.step.dtRatio)

		p := Vec2{joint.impulse.X, joint.impulse.Y}

		vA = vA.Sub(p.Mul(mA))
		wA -= iA * (joint.rA.Cross(p) + joint.impulse.Z)

		vB = vB.Add(p.Mul(mB))
		wB += iB * (joint.rB.Cross(p) + joint.impulse.Z)
	} else {
		joint.impulse.SetZero()
	}

	data.velocities[joint.indexA].v = vA
	data.velocities[joint.indexA].w = wA
	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
}

func (joint *WeldJoint) solveVelocityConstraints(data solverData) {
	vA := data.velocities[joint.indexA].v
	wA := data.velocities[joint.indexA].w
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	mA := joint.invMassA
	mB := joint.invMassB
	iA := joint.invIA
	iB := joint.invIB

	if joint.frequencyHz > 0.0 {
		cdot2 := wB - wA

		impulse2 := -joint.mass.Ez.Z * (cdot2 + joint.bias + joint.gamma*joint.impulse.Z)
		joint.impulse.Z += impulse2

		wA -= iA * impulse2
		wB += iB * impulse2

		cdot1 := vB.Add(CrossSV(wB, joint.rB)).Sub(vA).Sub(CrossSV(wA, joint.rA))

		impulse1 := joint.mass.Apply22(cdot1).Neg()
		joint.impulse.X += impulse1.X
		joint.impulse.Y += impulse1.Y

		vA = vA.Sub(impulse1.Mul(mA))
		wA -= iA * joint.rA.Cross(impulse1)

		vB = vB.Add(impulse1.Mul(mB))
		wB += iB * joint.rB.Cross(impulse1)
	} else {
		cdot1 := vB.Add(CrossSV(wB, joint.rB)).Sub(vA).Sub(CrossSV(wA, joint.rA))
		cdot2 := wB - wA
		cdot := Vec3{cdot1.X, cdot1.Y, cdot2}

		impulse := joint.mass.Apply(cdot).Neg()
		joint.impulse = joint.impulse.Add(impulse)

		p := Vec2{impulse.X, impulse.Y}

		vA = vA.Sub(p.Mul(mA))
		wA -= iA * (joint.rA.Cross(p) + impulse.Z)

		vB = vB.Add(p.Mul(mB))
		wB += iB * (joint.rB.Cross(p) + impulse.Z)
	}

	data.velocities[joint.indexA].v = vA
	data.velocities[joint.indexA].w = wA
	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
}

func (joint *WeldJoint) solvePositionConstraints(data solverData) bool {
	cA := data.positions[joint.indexA].c
	aA := data.positions[joint.indexA].a
	cB := data.positions[joint.indexB].c
	aB := data.positions[joint.indexB].a

	qA := MakeRot(aA)
	qB := MakeRot(aB)

	mA := joint.invMassA
	mB := joint.invMassB
	iA := joint.invIA
	iB := joint.invIB

	rA := qA.Apply(joint.localAnchorA.Sub(joint.localCenterA))
	rB := qB.Apply(joint.localAnchorB.Sub(joint.localCenterB))

	var positionError, angularError float64

	var k Mat33
	k.Ex.X = mA + mB + rA.Y*rA.Y*iA + rB.Y*rB.Y*iB
	k.Ey.X = -rA.Y*rA.X*iA - rB.Y*rB.X*iB
	k.Ez.X = -rA.Y*iA - rB.Y*iB
	k.Ex.Y = k.Ey.X
	k.Ey.Y = mA + mB + rA.X*rA.X*iA + rB.X*rB.X*iB
	k.Ez.Y = rA.X*iA + rB.X*iB
	k.Ex.Z = k.Ez.X
	k.Ey.Z = k.Ez.Y
	k.Ez.Z = iA + iB

	if joint.frequencyHz > 0.0 {
		c1 := cB.Add(rB).Sub(cA).Sub(rA)

		positionError = c1.Length()
		angularError = 0.0

		p := k.Solve22(c1).Neg()

		cA = cA.Sub(p.Mul(mA))
		aA -= iA * rA.Cross(p)

		cB = cB.Add(p.Mul(mB))
		aB += iB * rB.Cross(p)
	} else {
		c1 := cB.Add(rB).Sub(cA).Sub(rA)
		c2 := aB - aA - joint.referenceAngle

		positionError = c1.Length()
		angularError = math.Abs(c2)

		c := Vec3{c1.X, c1.Y, c2}

		var impulse Vec3
		if k.Ez.Z > 0.0 {
			impulse = k.Solve33(c).Neg()
		} else {
			impulse2 := k.Solve22(c1).Neg()
			impulse = Vec3{impulse2.X, impulse2.Y, 0.0}
		}

		p := Vec2{impulse.X, impulse.Y}

		cA = cA.Sub(p.Mul(mA))
		aA -= iA * (rA.Cross(p) + impulse.Z)

		cB = cB.Add(p.Mul(mB))
		aB += iB * (rB.Cross(p) + impulse.Z)
	}

	data.positions[joint.indexA].c = cA
	data.positions[joint.indexA].a = aA
	data.positions[joint.indexB].c = cB
	data.positions[joint.indexB].a = aB

	return positionError <= LinearSlop && angularError <= AngularSlop
}
