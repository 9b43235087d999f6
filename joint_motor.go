package rigid2d

// MotorJointDef describes a target relative pose and the force/torque
// budget used to reach it.
type MotorJointDef struct {
	jointDefCommon

	// LinearOffset is the position of bodyB minus the position of bodyA,
	// in bodyA's frame, in meters.
	LinearOffset Vec2

	// AngularOffset is bodyB angle minus bodyA angle, in radians.
	AngularOffset float64

	// MaxForce in N.
	MaxForce float64

	// MaxTorque in N·m.
	MaxTorque float64

	// CorrectionFactor is the position correction factor in [0,1].
	CorrectionFactor float64
}

func MakeMotorJointDef() MotorJointDef {
	return MotorJointDef{
		MaxForce:         1.0,
		MaxTorque:        1.0,
		CorrectionFactor: 0.3,
	}
}

// Initialize captures the current relative pose as the target.
func (def *MotorJointDef) Initialize(bodyA, bodyB *Body) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LinearOffset = bodyA.LocalPoint(bodyB.Position())
	def.AngularOffset = bodyB.Angle() - bodyA.Angle()
}

func (def *MotorJointDef) create() Joint {
	return newMotorJoint(def)
}

// MotorJoint controls the relative motion between two bodies, typically
// driving a dynamic body toward a pose relative to the ground. The error
// between the current and target pose feeds back into the velocity
// constraint scaled by the correction factor.
type MotorJoint struct {
	jointBase

	// Solver shared
	linearOffset     Vec2
	angularOffset    float64
	linearImpulse    Vec2
	angularImpulse   float64
	maxForce         float64
	maxTorque        float64
	correctionFactor float64

	// Solver temp
	indexA, indexB             int
	rA, rB                     Vec2
	localCenterA, localCenterB Vec2
	linearError                Vec2
	angularError               float64
	invMassA, invMassB         float64
	invIA, invIB               float64
	linearMass                 Mat22
	angularMass                float64
}

func newMotorJoint(def *MotorJointDef) *MotorJoint {
	return &MotorJoint{
		jointBase:        makeJointBase(MotorJointType, def),
		linearOffset:     def.LinearOffset,
		angularOffset:    def.AngularOffset,
		maxForce:         def.MaxForce,
		maxTorque:        def.MaxTorque,
		correctionFactor: def.CorrectionFactor,
	}
}

func (joint *MotorJoint) SetLinearOffset(linearOffset Vec2) {
	if linearOffset != joint.linearOffset {
		joint.bodyA.SetAwake(true)
		joint.bodyB.SetAwake(true)
		joint.linearOffset = linearOffset
	}
}

func (joint *MotorJoint) LinearOffset() Vec2 {
	return joint.linearOffset
}

func (joint *MotorJoint) SetAngularOffset(angularOffset float64) {
	if angularOffset != joint.angularOffset {
		joint.bodyA.SetAwake(true)
		joint.bodyB.SetAwake(true)
		joint.angularOffset = angularOffset
	}
}

func (joint *MotorJoint) AngularOffset() float64 {
	return joint.angularOffset
}

func (joint *MotorJoint) SetMaxForce(force float64) {
	assert(IsValidFloat(force) && force >= 0.0)
	joint.maxForce = force
}

func (joint *MotorJoint) MaxForce() float64 {
	return joint.maxForce
}

func (joint *MotorJoint) SetMaxTorque(torque float64) {
	assert(IsValidFloat(torque) && torque >= 0.0)
	joint.maxTorque = torque
}

func (joint *MotorJoint) MaxTorque() float64 {
	return joint.maxTorque
}

func (joint *MotorJoint) SetCorrectionFactor(factor float64) {
	assert(IsValidFloat(factor) && 0.0 <= factor && factor <= 1.0)
	joint.correctionFactor = factor
}

func (joint *MotorJoint) CorrectionFactor() float64 {
	return joint.correctionFactor
}

func (joint *MotorJoint) AnchorA() Vec2 {
	return joint.bodyA.Position()
}

func (joint *MotorJoint) AnchorB() Vec2 {
	return joint.bodyB.Position()
}

func (joint *MotorJoint) ReactionForce(invDT float64) Vec2 {
	return joint.linearImpulse.Mul(invDT)
}

func (joint *MotorJoint) ReactionTorque(invDT float64) float64 {
	return invDT * joint.angularImpulse
}

func (joint *MotorJoint) initVelocityConstraints(data solverData) {
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

	// Effective mass matrix, anchored at the body origins.
	joint.rA = qA.Apply(joint.localCenterA.Neg())
	joint.rB = qB.Apply(joint.localCenterB.Neg())

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

	joint.linearError = cB.Add(joint.rB).Sub(cA).Sub(joint.rA).Sub(qA.Apply(joint.linearOffset))
	joint.angularError = aB - aA - joint.angularOffset

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

func (joint *MotorJoint) solveVelocityConstraints(data solverData) {
	vA := data.velocities[joint.indexA].v
	wA := data.velocities[joint.indexA].w
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	mA := joint.invMassA
	mB := joint.invMassB
	iA := joint.invIA
	iB := joint.invIB

	h := data.step.dt
	invH := data.step.invDT

	// Solve angular friction.
	{
		cdot := wB - wA + invH*joint.correctionFactor*joint.angularError
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
		cdot := vB.Add(CrossSV(wB, joint.rB)).Sub(vA).Sub(CrossSV(wA, joint.rA)).
			Add(joint.linearError.Mul(invH * joint.correctionFactor))

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

func (joint *MotorJoint) solvePositionConstraints(data solverData) bool {
	return true
}
