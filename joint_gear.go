package rigid2d

// GearJointDef requires two existing revolute or prismatic joints, in any
// combination, and a gear ratio.
type GearJointDef struct {
	jointDefCommon

	// Joint1 and Joint2 are the revolute/prismatic joints the gear binds.
	Joint1 Joint
	Joint2 Joint

	// Ratio binds the joint coordinates:
	// coordinate1 + ratio * coordinate2 = constant.
	Ratio float64
}

func MakeGearJointDef() GearJointDef {
	return GearJointDef{Ratio: 1.0}
}

func (def *GearJointDef) create() Joint {
	return newGearJoint(def)
}

// GearJoint couples two other joints so that
//
//	coordinate1 + ratio * coordinate2 = constant
//
// The ratio can be negative or positive. With one revolute and one
// prismatic joint, the ratio has units of length or 1/length.
//
// The world auto-destroys a gear joint when either referent joint is
// destroyed, firing the destruction listener for it.
//
//	C0 = (coordinate1 + ratio * coordinate2)_initial
//	C = (coordinate1 + ratio * coordinate2) - C0
//	J = [J1 ratio * J2]
//
// Revolute:  coordinate = rotation,       J = [0 0 1],          K = invI
// Prismatic: coordinate = dot(p - pg, u), J = [u cross(r, u)],  K = invMass + invI * cross(r, u)²
type GearJoint struct {
	jointBase

	joint1 Joint
	joint2 Joint

	typeA JointType
	typeB JointType

	// Body A is connected to body C, body B to body D.
	bodyC *Body
	bodyD *Body

	// Solver shared
	localAnchorA Vec2
	localAnchorB Vec2
	localAnchorC Vec2
	localAnchorD Vec2

	localAxisC Vec2
	localAxisD Vec2

	referenceAngleA float64
	referenceAngleB float64

	constant float64
	ratio    float64

	impulse float64

	// Solver temp
	indexA, indexB, indexC, indexD int
	lcA, lcB, lcC, lcD             Vec2
	mA, mB, mC, mD                 float64
	iA, iB, iC, iD                 float64
	jvAC, jvBD                     Vec2
	jwA, jwB, jwC, jwD             float64
	mass                           float64
}

func newGearJoint(def *GearJointDef) *GearJoint {
	joint := &GearJoint{
		jointBase: makeJointBase(GearJointType, def),
		joint1:    def.Joint1,
		joint2:    def.Joint2,
	}

	joint.typeA = joint.joint1.Type()
	joint.typeB = joint.joint2.Type()

	assert(joint.typeA == RevoluteJointType || joint.typeA == PrismaticJointType)
	assert(joint.typeB == RevoluteJointType || joint.typeB == PrismaticJointType)

	var coordinateA, coordinateB float64

	joint.bodyC = joint.joint1.BodyA()
	joint.bodyA = joint.joint1.BodyB()

	// Geometry of joint1.
	xfA := joint.bodyA.xf
	aA := joint.bodyA.sweep.A
	xfC := joint.bodyC.xf
	aC := joint.bodyC.sweep.A

	if joint.typeA == RevoluteJointType {
		revolute := def.Joint1.(*RevoluteJoint)
		joint.localAnchorC = revolute.localAnchorA
		joint.localAnchorA = revolute.localAnchorB
		joint.referenceAngleA = revolute.referenceAngle
		joint.localAxisC.SetZero()

		coordinateA = aA - aC - joint.referenceAngleA
	} else {
		prismatic := def.Joint1.(*PrismaticJoint)
		joint.localAnchorC = prismatic.localAnchorA
		joint.localAnchorA = prismatic.localAnchorB
		joint.referenceAngleA = prismatic.referenceAngle
		joint.localAxisC = prismatic.localXAxisA

		pC := joint.localAnchorC
		pA := xfC.Q.ApplyT(xfA.Q.Apply(joint.localAnchorA).Add(xfA.P.Sub(xfC.P)))
		coordinateA = pA.Sub(pC).Dot(joint.localAxisC)
	}

	joint.bodyD = joint.joint2.BodyA()
	joint.bodyB = joint.joint2.BodyB()

	// Geometry of joint2.
	xfB := joint.bodyB.xf
	aB := joint.bodyB.sweep.A
	xfD := joint.bodyD.xf
	aD := joint.bodyD.sweep.A

	if joint.typeB == RevoluteJointType {
		revolute := def.Joint2.(*RevoluteJoint)
		joint.localAnchorD = revolute.localAnchorA
		joint.localAnchorB = revolute.localAnchorB
		joint.referenceAngleB = revolute.referenceAngle
		joint.localAxisD.SetZero()

		coordinateB = aB - aD - joint.referenceAngleB
	} else {
		prismatic := def.Joint2.(*PrismaticJoint)
		joint.localAnchorD = prismatic.localAnchorA
		joint.localAnchorB = prismatic.localAnchorB
		joint.referenceAngleB = prismatic.referenceAngle
		joint.localAxisD = prismatic.localXAxisA

		pD := joint.localAnchorD
		pB := xfD.Q.ApplyT(xfB.Q.Apply(joint.localAnchorB).Add(xfB.P.Sub(xfD.P)))
		coordinateB = pB.Sub(pD).Dot(joint.localAxisD)
	}

	joint.ratio = def.Ratio
	joint.constant = coordinateA + joint.ratio*coordinateB

	return joint
}

func (joint *GearJoint) Joint1() Joint {
	return joint.joint1
}

func (joint *GearJoint) Joint2() Joint {
	return joint.joint2
}

func (joint *GearJoint) SetRatio(ratio float64) {
	assert(IsValidFloat(ratio))
	joint.ratio = ratio
}

func (joint *GearJoint) Ratio() float64 {
	return joint.ratio
}

func (joint *GearJoint) AnchorA() Vec2 {
	return joint.bodyA.WorldPoint(joint.localAnchorA)
}

func (joint *GearJoint) AnchorB() Vec2 {
	return joint.bodyB.WorldPoint(joint.localAnchorB)
}

func (joint *GearJoint) ReactionForce(invDT float64) Vec2 {
	return joint.jvAC.Mul(joint.impulse * invDT)
}

func (joint *GearJoint) ReactionTorque(invDT float64) float64 {
	return invDT * joint.impulse * joint.jwA
}

func (joint *GearJoint) initVelocityConstraints(data solverData) {
	joint.indexA = joint.bodyA.islandIndex
	joint.indexB = joint.bodyB.islandIndex
	joint.indexC = joint.bodyC.islandIndex
	joint.indexD = joint.bodyD.islandIndex
	joint.lcA = joint.bodyA.sweep.LocalCenter
	joint.lcB = joint.bodyB.sweep.LocalCenter
	joint.lcC = joint.bodyC.sweep.LocalCenter
	joint.lcD = joint.bodyD.sweep.LocalCenter
	joint.mA = joint.bodyA.invMass
	joint.mB = joint.bodyB.invMass
	joint.mC = joint.bodyC.invMass
	joint.mD = joint.bodyD.invMass
	joint.iA = joint.bodyA.invI
	joint.iB = joint.bodyB.invI
	joint.iC = joint.bodyC.invI
	joint.iD = joint.bodyD.invI

	aA := data.positions[joint.indexA].a
	vA := data.velocities[joint.indexA].v
	wA := data.velocities[joint.indexA].w

	aB := data.positions[joint.indexB].a
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	aC := data.positions[joint.indexC].a
	vC := data.velocities[joint.indexC].v
	wC := data.velocities[joint.indexC].w

	aD := data.positions[joint.indexD].a
	vD := data.velocities[joint.indexD].v
	wD := data.velocities[joint.indexD].w

	qA := MakeRot(aA)
	qB := MakeRot(aB)
	qC := MakeRot(aC)
	qD := MakeRot(aD)

	joint.mass = 0.0

	if joint.typeA == RevoluteJointType {
		joint.jvAC.SetZero()
		joint.jwA = 1.0
		joint.jwC = 1.0
		joint.mass += joint.iA + joint.iC
	} else {
		u := qC.Apply(joint.localAxisC)
		rC := qC.Apply(joint.localAnchorC.Sub(joint.lcC))
		rA := qA.Apply(joint.localAnchorA.Sub(joint.lcA))
		joint.jvAC = u
		joint.jwC = rC.Cross(u)
		joint.jwA = rA.Cross(u)
		joint.mass += joint.mC + joint.mA + joint.iC*joint.jwC*joint.jwC + joint.iA*joint.jwA*joint.jwA
	}

	if joint.typeB == RevoluteJointType {
		joint.jvBD.SetZero()
		joint.jwB = joint.ratio
		joint.jwD = joint.ratio
		joint.mass += joint.ratio * joint.ratio * (joint.iB + joint.iD)
	} else {
		u := qD.Apply(joint.localAxisD)
		rD := qD.Apply(joint.localAnchorD.Sub(joint.lcD))
		rB := qB.Apply(joint.localAnchorB.Sub(joint.lcB))
		joint.jvBD = u.Mul(joint.ratio)
		joint.jwD = joint.ratio * rD.Cross(u)
		joint.jwB = joint.ratio * rB.Cross(u)
		joint.mass += joint.ratio*joint.ratio*(joint.mD+joint.mB) + joint.iD*joint.jwD*joint.jwD + joint.iB*joint.jwB*joint.jwB
	}

	// Effective mass.
	if joint.mass > 0.0 {
		joint.mass = 1.0 / joint.mass
	} else {
		joint.mass = 0.0
	}

	if data.step.warmStarting {
		vA = vA.Add(joint.jvAC.Mul(joint.mA * joint.impulse))
		wA += joint.iA * joint.impulse * joint.jwA
		vB = vB.Add(joint.jvBD.Mul(joint.mB * joint.impulse))
		wB += joint.iB * joint.impulse * joint.jwB
		vC = vC.Sub(joint.jvAC.Mul(joint.mC * joint.impulse))
		wC -= joint.iC * joint.impulse * joint.jwC
		vD = vD.Sub(joint.jvBD.Mul(joint.mD * joint.impulse))
		wD -= joint.iD * joint.impulse * joint.jwD
	} else {
		joint.impulse = 0.0
	}

	data.velocities[joint.indexA].v = vA
	data.velocities[joint.indexA].w = wA
	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
	data.velocities[joint.indexC].v = vC
	data.velocities[joint.indexC].w = wC
	data.velocities[joint.indexD].v = vD
	data.velocities[joint.indexD].w = wD
}

func (joint *GearJoint) solveVelocityConstraints(data solverData) {
	vA := data.velocities[joint.indexA].v
	wA := data.velocities[joint.indexA].w
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w
	vC := data.velocities[joint.indexC].v
	wC := data.velocities[joint.indexC].w
	vD := data.velocities[joint.indexD].v
	wD := data.velocities[joint.indexD].w

	cdot := joint.jvAC.Dot(vA.Sub(vC)) + joint.jvBD.Dot(vB.Sub(vD))
	cdot += (joint.jwA*wA - joint.jwC*wC) + (joint.jwB*wB - joint.jwD*wD)

	impulse := -joint.mass * cdot
	joint.impulse += impulse

	vA = vA.Add(joint.jvAC.Mul(joint.mA * impulse))
	wA += joint.iA * impulse * joint.jwA
	vB = vB.Add(joint.jvBD.Mul(joint.mB * impulse))
	wB += joint.iB * impulse * joint.jwB
	vC = vC.Sub(joint.jvAC.Mul(joint.mC * impulse))
	wC -= joint.iC * impulse * joint.jwC
	vD = vD.Sub(joint.jvBD.Mul(joint.mD * impulse))
	wD -= joint.iD * impulse * joint.jwD

	data.velocities[joint.indexA].v = vA
	data.velocities[joint.indexA].w = wA
	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
	data.velocities[joint.indexC].v = vC
	data.velocities[joint.indexC].w = wC
	data.velocities[joint.indexD].v = vD
	data.velocities[joint.indexD].w = wD
}

func (joint *GearJoint) solvePositionConstraints(data solverData) bool {
	cA := data.positions[joint.indexA].c
	aA := data.positions[joint.indexA].a
	cB := data.positions[joint.indexB].c
	aB := data.positions[joint.indexB].a
	cC := data.positions[joint.indexC].c
	aC := data.positions[joint.indexC].a
	cD := data.positions[joint.indexD].c
	aD := data.positions[joint.indexD].a

	qA := MakeRot(aA)
	qB := MakeRot(aB)
	qC := MakeRot(aC)
	qD := MakeRot(aD)

	linearError := 0.0

	var coordinateA, coordinateB float64

	var jvAC, jvBD Vec2
	var jwA, jwB, jwC, jwD float64
	mass := 0.0

	if joint.typeA == RevoluteJointType {
		jvAC.SetZero()
		jwA = 1.0
		jwC = 1.0
		mass += joint.iA + joint.iC

		coordinateA = aA - aC - joint.referenceAngleA
	} else {
		u := qC.Apply(joint.localAxisC)
		rC := qC.Apply(joint.localAnchorC.Sub(joint.lcC))
		rA := qA.Apply(joint.localAnchorA.Sub(joint.lcA))
		jvAC = u
		jwC = rC.Cross(u)
		jwA = rA.Cross(u)
		mass += joint.mC + joint.mA + joint.iC*jwC*jwC + joint.iA*jwA*jwA

		pC := joint.localAnchorC.Sub(joint.lcC)
		pA := qC.ApplyT(rA.Add(cA.Sub(cC)))
		coordinateA = pA.Sub(pC).Dot(joint.localAxisC)
	}

	if joint.typeB == RevoluteJointType {
		jvBD.SetZero()
		jwB = joint.ratio
		jwD = joint.ratio
		mass += joint.ratio * joint.ratio * (joint.iB + joint.iD)

		coordinateB = aB - aD - joint.referenceAngleB
	} else {
		u := qD.Apply(joint.localAxisD)
		rD := qD.Apply(joint.localAnchorD.Sub(joint.lcD))
		rB := qB.Apply(joint.localAnchorB.Sub(joint.lcB))
		jvBD = u.Mul(joint.ratio)
		jwD = joint.ratio * rD.Cross(u)
		jwB = joint.ratio * rB.Cross(u)
		mass += joint.ratio*joint.ratio*(joint.mD+joint.mB) + joint.iD*jwD*jwD + joint.iB*jwB*jwB

		pD := joint.localAnchorD.Sub(joint.lcD)
		pB := qD.ApplyT(rB.Add(cB.Sub(cD)))
		coordinateB = pB.Sub(pD).Dot(joint.localAxisD)
	}

	c := (coordinateA + joint.ratio*coordinateB) - joint.constant

	impulse := 0.0
	if mass > 0.0 {
		impulse = -c / mass
	}

	cA = cA.Add(jvAC.Mul(joint.mA * impulse))
	aA += joint.iA * impulse * jwA
	cB = cB.Add(jvBD.Mul(joint.mB * impulse))
	aB += joint.iB * impulse * jwB
	cC = cC.Sub(jvAC.Mul(joint.mC * impulse))
	aC -= joint.iC * impulse * jwC
	cD = cD.Sub(jvBD.Mul(joint.mD * impulse))
	aD -= joint.iD * impulse * jwD

	data.positions[joint.indexA].c = cA
	data.positions[joint.indexA].a = aA
	data.positions[joint.indexB].c = cB
	data.positions[joint.indexB].a = aB
	data.positions[joint.indexC].c = cC
	data.positions[joint.indexC].a = aC
	data.positions[joint.indexD].c = cD
	data.positions[joint.indexD].a = aD

	return linearError < LinearSlop
}
