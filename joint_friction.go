package rigid2d

// FrictionJointDef requires the local anchor points and the force/torque
// ceilings.
type FrictionJointDef struct {
	jointDefCommon

	LocalAnchorA Vec2
	LocalAnchorB Vec2

	// MaxForce is the maximum friction force in N.
	MaxForce float64

	// MaxTorque is the maximum friction torque in N·m.
	MaxTorque float64
}

func MakeFrictionJointDef() FrictionJointDef {
	return FrictionJointDef{}
}

// Initialize sets the bodies and the shared world anchor.
func (def *FrictionJointDef) Initialize(bodyA, bodyB *Body, anchor Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LocalAnchorA = bodyA.LocalPoint(anchor)
	def.LocalAnchorB = bodyB.LocalPoint(anchor)
}

func (def *FrictionJointDef) create() Joint {
	return newFrictionJoint(def)
}

// FrictionJoint provides 2D translational and angular friction, for
// top-down worlds where gravity doesn't press bodies against a surface.
//
// Point-to-point rows:  Cdot = v2 + cross(w2, r2) - v1 - cross(w1, r1)
// Angular row:          Cdot = w2 - w1, K = invI1 + invI2
type FrictionJoint struct {
	jointBase

	localAnchorA Vec2
	localAnchorB Vec2

	// Solver shared
	linearImpulse  Vec2
	angularImpulse float64
	maxForce       float64
	maxTorque      float64

	// Solver temp
	indexA, indexB             int
	rA, rB                     Vec2
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	linearMass                 Mat22
	angularMass                float64
}

func newFrictionJoint(def *FrictionJointDef) *FrictionJoint {
	return &FrictionJoint{
		jointBase:    makeJointBase(FrictionJointType, def),
		localAnchorA: def.LocalAnchorA,
		localAnchorB: def.LocalAnchorB,
		maxForce:     def.MaxForce,
		maxTorque:    def.MaxTorque,
	}
}

func (joint *FrictionJoint) LocalAnchorA() Vec2 {
	return joint.localAnchorA
}

func (joint *FrictionJoint) LocalAnchorB() Vec2 {
	return joint.localAnchorB
}

func (joint *FrictionJoint) SetMaxForce(force float64) {
	assert(IsValidFloat(force) && force >= 0.0)
	joint.maxForce = force
}

func (joint *FrictionJoint) MaxForce() float64 {
	return joint.maxForce
}

func (joint *FrictionJoint) SetMaxTorque(torque float64) {
	assert(IsValidFloat(torque) && torque >= 0.0)
	joint.maxTorque = torque
}

func (joint *FrictionJoint) MaxTorque() float64 {
	return joint.maxTorque
}

func (joint *FrictionJoint) AnchorA() Vec2 {
	return joint.bodyA.WorldPoint(joint.localAnchorA)
}

func (joint *FrictionJoint) AnchorB() Vec2 {
	return joint.bodyB.WorldPoint(joint.localAnchorB)
}

func (joint *FrictionJoint) ReactionForce(invDT float64) Vec2 {
	return joint.linearImpulse.Mul(invDT)
}

func (joint *FrictionJoint) ReactionTorque(invDT float64) float64 {
	return invDT * joint.angularImpulse
}

func (joint *FrictionJoint) initVelocityConstraints(data solverData) {
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

	// Effective mass matrix.
	joint.rA = qA.Apply(joint.localAnchorA.Sub(joint.localCenterA))
	joint.rB = qB.Apply(joint.localAnchorB.Sub(joint.localCenterB))

	mA := joint.invMassA
	mB := joint.invMassB
	iA := joint.invIA
	iB := joint.invIB

	var k Mat22
	k.Ex.X = mA + mB + iA*joint.rA.Y*joint.rA.Y + iB*joint.rB.Y*joint.rB.Y
	k.Ex.Y = -iA*joint.rA.X*joint.rA.Y - iB*joint.rB.X*joint.rB.Y
	k.Ey.X = k.Ex.Y
	k.Ey.Y = mA + mB + iA*joint.rA.X*joint.rA.X + iB*joint.rB.X*joint.rB.X

	joint.linearMass = k.Inverse()

	joint.angularMass = iA + iB
	if joint.angularMass > 0.0 {
		joint.angularMass = 1.0 / joint.angularMass
	}

	if data.step.warmStarting {
		// Scale impulses to support a variable time step.
		joint.linearImpulse = joint.linearImpulse.Mul(data.step.dtRatio)
		joint.angularImpulse *= data.step.dtRatio

		p := joint.linearImpulse
		vA = vA.Sub(p.Mul(mA))
		wA -= iA * (joint.rA.Cross(p) + joint.angularImpulse)
		vB = vB.Add(p.Mul(mB))
		wB += iB * (joint.rB.Cross(p) + joint.angularImpulse)
	} else {
		joint.linearImpulse.SetZero()
		joint.angularImpulse = 0.0
	}

	data.velocities[joint.indexA].v = vA
	data.velocities[joint.indexA].w = wA
	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
}

func (joint *FrictionJoint) solveVelocityConstraints(data solverData) {
	vA := data.velocities[joint.indexA].v
	wA := data.velocities[joint.indexA].w
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	mA := joint.invMassA
	mB := joint.invMassB
	iA := joint.invIA
	iB := joint.invIB

	h := data.step.dt

	// Solve angular friction.
	{
		cdot := wB - wA
		impulse := -joint.angularMass * cdot

		oldImpulse := joint.angularImpulse
		maxImpulse := h * joint.maxTorque
		joint.angularImpulse = clampFloat(joint.angularImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = joint.angularImpulse - oldImpulse

		wA -= iA * impulse
		wB += iB * impulse
	}

	// Solve linear friction.
	{
		cdot := vB.Add(CrossSV(wB, joint.rB)).Sub(vA).Sub(CrossSV(wA, joint.rA))

		impulse := joint.linearMass.Apply(cdot).Neg()
		oldImpulse := joint.linearImpulse
		joint.linearImpulse = joint.linearImpulse.Add(impulse)

		maxImpulse := h * joint.maxForce
		if joint.linearImpulse.LengthSquared() > maxImpulse*maxImpulse {
			joint.linearImpulse.Normalize()
			joint.linearImpulse = joint.linearImpulse.Mul(maxImpulse)
		}

		impulse = joint.linearImpulse.Sub(oldImpulse)

		vA = vA.Sub(impulse.Mul(mA))
		wA -= iA * joint.rA.Cross(impulse)

		vB = vB.Add(impulse.Mul(mB))
		wB += iB * joint.rB.Cross(impulse)
	}

	data.velocities[joint.indexA].v = vA
	data.velocities[joint.indexA].w = wA
	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
}

func (joint *FrictionJoint) solvePositionConstraints(data solverData) bool {
	return true
}
