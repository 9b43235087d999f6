package rigid2d

import (
	"math"
)

// RevoluteJointDef requires an anchor point where the bodies are joined,
// expressed as local anchor points plus a reference angle so the initial
// configuration can violate the constraint slightly. Local anchors are
// measured from the body origin rather than the center of mass because the
// center of mass may be unknown or may move when fixtures change.
type RevoluteJointDef struct {
	jointDefCommon

	LocalAnchorA Vec2
	LocalAnchorB Vec2

	// ReferenceAngle is bodyB angle minus bodyA angle in the reference
	// state, in radians.
	ReferenceAngle float64

	EnableLimit bool
	LowerAngle  float64
	UpperAngle  float64

	EnableMotor bool

	// MotorSpeed in radians per second.
	MotorSpeed float64

	// MaxMotorTorque in N·m.
	MaxMotorTorque float64
}

func MakeRevoluteJointDef() RevoluteJointDef {
	return RevoluteJointDef{}
}

// Initialize sets the bodies and the shared world anchor.
func (def *RevoluteJointDef) Initialize(bodyA, bodyB *Body, anchor Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LocalAnchorA = bodyA.LocalPoint(anchor)
	def.LocalAnchorB = bodyB.LocalPoint(anchor)
	def.ReferenceAngle = bodyB.Angle() - bodyA.Angle()
}

func (def *RevoluteJointDef) create() Joint {
	return newRevoluteJoint(def)
}

// RevoluteJoint constrains two bodies to share a point while they rotate
// freely about it. The relative rotation is the joint angle; it can be
// bounded by a limit and driven by a motor with bounded torque.
//
// Point-to-point constraint:
//
//	C = p2 - p1
//	Cdot = v2 + cross(w2, r2) - v1 - cross(w1, r1)
//	J = [-I -r1_skew I r2_skew]
//
// Motor constraint:
//
//	Cdot = w2 - w1
//	J = [0 0 -1 0 0 1]
//	K = invI1 + invI2
type RevoluteJoint struct {
	jointBase

	// Solver shared
	localAnchorA Vec2
	localAnchorB Vec2
	impulse      Vec3
	motorImpulse float64

	enableMotor    bool
	maxMotorTorque float64
	motorSpeed     float64

	enableLimit    bool
	referenceAngle float64
	lowerAngle     float64
	upperAngle     float64

	// Solver temp
	indexA, indexB             int
	rA, rB                     Vec2
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	mass                       Mat33   // effective mass for the point-to-point constraint
	motorMass                  float64 // effective mass for the motor/limit constraint
	state                      limitState
}

func newRevoluteJoint(def *RevoluteJointDef) *RevoluteJoint {
	return &RevoluteJoint{
		jointBase:      makeJointBase(RevoluteJointType, def),
		localAnchorA:   def.LocalAnchorA,
		localAnchorB:   def.LocalAnchorB,
		referenceAngle: def.ReferenceAngle,
		lowerAngle:     def.LowerAngle,
		upperAngle:     def.UpperAngle,
		maxMotorTorque: def.MaxMotorTorque,
		motorSpeed:     def.MotorSpeed,
		enableLimit:    def.EnableLimit,
		enableMotor:    def.EnableMotor,
		state:          inactiveLimit,
	}
}

func (joint *RevoluteJoint) LocalAnchorA() Vec2 {
	return joint.localAnchorA
}

func (joint *RevoluteJoint) LocalAnchorB() Vec2 {
	return joint.localAnchorB
}

func (joint *RevoluteJoint) ReferenceAngle() float64 {
	return joint.referenceAngle
}

// JointAngle returns the current relative angle.
func (joint *RevoluteJoint) JointAngle() float64 {
	return joint.bodyB.sweep.A - joint.bodyA.sweep.A - joint.referenceAngle
}

// JointSpeed returns the current relative angular velocity.
func (joint *RevoluteJoint) JointSpeed() float64 {
	return joint.bodyB.angularVelocity - joint.bodyA.angularVelocity
}

func (joint *RevoluteJoint) IsMotorEnabled() bool {
	return joint.enableMotor
}

func (joint *RevoluteJoint) EnableMotor(flag bool) {
	if flag != joint.enableMotor {
		joint.bodyA.SetAwake(true)
		joint.bodyB.SetAwake(true)
		joint.enableMotor = flag
	}
}

// MotorTorque returns the current motor torque, given the inverse time step.
func (joint *RevoluteJoint) MotorTorque(invDT float64) float64 {
	return invDT * joint.motorImpulse
}

func (joint *RevoluteJoint) SetMotorSpeed(speed float64) {
	if speed != joint.motorSpeed {
		joint.bodyA.SetAwake(true)
		joint.bodyB.SetAwake(true)
		joint.motorSpeed = speed
	}
}

func (joint *RevoluteJoint) MotorSpeed() float64 {
	return joint.motorSpeed
}

func (joint *RevoluteJoint) SetMaxMotorTorque(torque float64) {
	if torque != joint.maxMotorTorque {
		joint.bodyA.SetAwake(true)
		joint.bodyB.SetAwake(true)
		joint.maxMotorTorque = torque
	}
}

func (joint *RevoluteJoint) MaxMotorTorque() float64 {
	return joint.maxMotorTorque
}

func (joint *RevoluteJoint) IsLimitEnabled() bool {
	return joint.enableLimit
}

func (joint *RevoluteJoint) EnableLimit(flag bool) {
	if flag != joint.enableLimit {
		joint.bodyA.SetAwake(true)
		joint.bodyB.SetAwake(true)
		joint.enableLimit = flag
		joint.impulse.Z = 0.0
	}
}

func (joint *RevoluteJoint) LowerLimit() float64 {
	return joint.lowerAngle
}

func (joint *RevoluteJoint) UpperLimit() float64 {
	return joint.upperAngle
}

func (joint *RevoluteJoint) SetLimits(lower, upper float64) {
	assert(lower <= upper)

	if lower != joint.lowerAngle || upper != joint.upperAngle {
		joint.bodyA.SetAwake(true)
		joint.bodyB.SetAwake(true)
		joint.impulse.Z = 0.0
		joint.lowerAngle = lower
		joint.upperAngle = upper
	}
}

func (joint *RevoluteJoint) AnchorA() Vec2 {
	return joint.bodyA.WorldPoint(joint.localAnchorA)
}

func (joint *RevoluteJoint) AnchorB() Vec2 {
	return joint.bodyB.WorldPoint(joint.localAnchorB)
}

func (joint *RevoluteJoint) ReactionForce(invDT float64) Vec2 {
	return Vec2{joint.impulse.X, joint.impulse.Y}.Mul(invDT)
}

func (joint *RevoluteJoint) ReactionTorque(invDT float64) float64 {
	return invDT * joint.impulse.Z
}

func (joint *RevoluteJoint) initVelocityConstraints(data solverData) {
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

	// J = [-I -r1_skew I r2_skew]
	//     [ 0       -1 0       1]
	// r_skew = [-ry; rx]
	//
	// K = [ mA+mB+iA*rAy²+iB*rBy²,  -iA*rAy*rAx-iB*rBy*rBx,  -iA*rAy-iB*rBy]
	//     [ ...symmetric...,        mA+mB+iA*rAx²+iB*rBx²,    iA*rAx+iB*rBx]
	//     [ ...,                    ...,                              iA+iB]

	mA := joint.invMassA
	mB := joint.invMassB
	iA := joint.invIA
	iB := joint.invIB

	fixedRotation := iA+iB == 0.0

	joint.mass.Ex.X = mA + mB + joint.rA.Y*joint.rA.Y*iA + joint.rB.Y*joint.rB.Y*iB
	joint.mass.Ey.X = -joint.rA.Y*joint.rA.X*iA - joint.rB.Y*joint.rB.X*iB
	joint.mass.Ez.X = -joint.rA.Y*iA - joint.rB.Y*iB
	joint.mass.Ex.Y = joint.mass.Ey.X
	joint.mass.Ey.Y = mA + mB + joint.rA.X*joint.rA.X*iA + joint.rB.X*joint.rB.X*iB
	joint.mass.Ez.Y = joint.rA.X*iA + joint.rB.X*iB
	joint.mass.Ex.Z = joint.mass.Ez.X
	joint.mass.Ey.Z = joint.mass.Ez.Y
	joint.mass.Ez.Z = iA + iB

	joint.motorMass = iA + iB
	if joint.motorMass > 0.0 {
		joint.motorMass = 1.0 / joint.motorMass
	}

	if !joint.enableMotor || fixedRotation {
		joint.motorImpulse = 0.0
	}

	if joint.enableLimit && !fixedRotation {
		jointAngle := aB - aA - joint.referenceAngle
		if math.Abs(joint.upperAngle-joint.lowerAngle) < 2.0*AngularSlop {
			joint.state = equalLimits
		} else if jointAngle <= joint.lowerAngle {
			if joint.state != atLowerLimit {
				joint.impulse.Z = 0.0
			}
			joint.state = atLowerLimit
		} else if jointAngle >= joint.upperAngle {
			if joint.state != atUpperLimit {
				joint.impulse.Z = 0.0
			}
			joint.state = atUpperLimit
		} else {
			joint.state = inactiveLimit
			joint.impulse.Z = 0.0
		}
	} else {
		joint.state = inactiveLimit
	}

	if data.step.warmStarting {
		// Scale impulses to support a variable time step.
		joint.impulse = joint.impulse.Mul(data.step.dtRatio)
		joint.motorImpulse *= data.step.dtRatio

		p := Vec2{joint.impulse.X, joint.impulse.Y}

		vA = vA.Sub(p.Mul(mA))
		wA -= iA * (joint.rA.Cross(p) + joint.motorImpulse + joint.impulse.Z)

		vB = vB.Add(p.Mul(mB))
		wB += iB * (joint.rB.Cross(p) + joint.motorImpulse + joint.impulse.Z)
	} else {
		joint.impulse.SetZero()
		joint.motorImpulse = 0.0
	}

	data.velocities[joint.indexA].v = vA
	data.velocities[joint.indexA].w = wA
	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
}

func (joint *RevoluteJoint) solveVelocityConstraints(data solverData) {
	vA := data.velocities[joint.indexA].v
	wA := data.velocities[joint.indexA].w
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	mA := joint.invMassA
	mB := joint.invMassB
	iA := joint.invIA
	iB := joint.invIB

	fixedRotation := iA+iB == 0.0

	// Solve the motor constraint.
	if joint.enableMotor && joint.state != equalLimits && !fixedRotation {
		cdot := wB - wA - joint.motorSpeed
		impulse := -joint.motorMass * cdot
		oldImpulse := joint.motorImpulse
		maxImpulse := data.step.dt * joint.maxMotorTorque
		joint.motorImpulse = clampFloat(joint.motorImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = joint.motorImpulse - oldImpulse

		wA -= iA * impulse
		wB += iB * impulse
	}

	// Solve the limit constraint.
	if joint.enableLimit && joint.state != inactiveLimit && !fixedRotation {
		cdot1 := vB.Add(CrossSV(wB, joint.rB)).Sub(vA).Sub(CrossSV(wA, joint.rA))
		cdot2 := wB - wA
		cdot := Vec3{cdot1.X, cdot1.Y, cdot2}

		impulse := joint.mass.Solve33(cdot).Neg()

		if joint.state == equalLimits {
			joint.impulse = joint.impulse.Add(impulse)
		} else if joint.state == atLowerLimit {
			newImpulse := joint.impulse.Z + impulse.Z
			if newImpulse < 0.0 {
				rhs := cdot1.Neg().Add(Vec2{joint.mass.Ez.X, joint.mass.Ez.Y}.Mul(joint.impulse.Z))
				reduced := joint.mass.Solve22(rhs)
				impulse.X = reduced.X
				impulse.Y = reduced.Y
				impulse.Z = -joint.impulse.Z
				joint.impulse.X += reduced.X
				joint.impulse.Y += reduced.Y
				joint.impulse.Z = 0.0
			} else {
				joint.impulse = joint.impulse.Add(impulse)
			}
		} else if joint.state == atUpperLimit {
			newImpulse := joint.impulse.Z + impulse.Z
			if newImpulse > 0.0 {
				rhs := cdot1.Neg().Add(Vec2{joint.mass.Ez.X, joint.mass.Ez.Y}.Mul(joint.impulse.Z))
				reduced := joint.mass.Solve22(rhs)
				impulse.X = reduced.X
				impulse.Y = reduced.Y
				impulse.Z = -joint.impulse.Z
				joint.impulse.X += reduced.X
				joint.impulse.Y += reduced.Y
				joint.impulse.Z = 0.0
			} else {
				joint.impulse = joint.impulse.Add(impulse)
			}
		}

		p := Vec2{impulse.X, impulse.Y}

		vA = vA.Sub(p.Mul(mA))
		wA -= iA * (joint.rA.Cross(p) + impulse.Z)

		vB = vB.Add(p.Mul(mB))
		wB += iB * (joint.rB.Cross(p) + impulse.Z)
	} else {
		// Solve the point-to-point constraint.
		cdot := vB.Add(CrossSV(wB, joint.rB)).Sub(vA).Sub(CrossSV(wA, joint.rA))
		impulse := joint.mass.Solve22(cdot.Neg())

		joint.impulse.X += impulse.X
		joint.impulse.Y += impulse.Y

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

func (joint *RevoluteJoint) solvePositionConstraints(data solverData) bool {
	cA := data.positions[joint.indexA].c
	aA := data.positions[joint.indexA].a
	cB := data.positions[joint.indexB].c
	aB := data.positions[joint.indexB].a

	qA := MakeRot(aA)
	qB := MakeRot(aB)

	angularError := 0.0
	positionError := 0.0

	fixedRotation := joint.invIA+joint.invIB == 0.0

	// Solve the angular limit constraint.
	if joint.enableLimit && joint.state != inactiveLimit && !fixedRotation {
		angle := aB - aA - joint.referenceAngle
		limitImpulse := 0.0

		if joint.state == equalLimits {
			// Prevent large angular corrections.
			c := clampFloat(angle-joint.lowerAngle, -MaxAngularCorrection, MaxAngularCorrection)
			limitImpulse = -joint.motorMass * c
			angularError = math.Abs(c)
		} else if joint.state == atLowerLimit {
			c := angle - joint.lowerAngle
			angularError = -c

			// Prevent large angular corrections and allow some slop.
			c = clampFloat(c+AngularSlop, -MaxAngularCorrection, 0.0)
			limitImpulse = -joint.motorMass * c
		} else if joint.state == atUpperLimit {
			c := angle - joint.upperAngle
			angularError = c

			c = clampFloat(c-AngularSlop, 0.0, MaxAngularCorrection)
			limitImpulse = -joint.motorMass * c
		}

		aA -= joint.invIA * limitImpulse
		aB += joint.invIB * limitImpulse
	}

	// Solve the point-to-point constraint.
	{
		qA.Set(aA)
		qB.Set(aB)
		rA := qA.Apply(joint.localAnchorA.Sub(joint.localCenterA))
		rB := qB.Apply(joint.localAnchorB.Sub(joint.localCenterB))

		c := cB.Add(rB).Sub(cA).Sub(rA)
		positionError = c.Length()

		mA := joint.invMassA
		mB := joint.invMassB
		iA := joint.invIA
		iB := joint.invIB

		var k Mat22
		k.Ex.X = mA + mB + iA*rA.Y*rA.Y + iB*rB.Y*rB.Y
		k.Ex.Y = -iA*rA.X*rA.Y - iB*rB.X*rB.Y
		k.Ey.X = k.Ex.Y
		k.Ey.Y = mA + mB + iA*rA.X*rA.X + iB*rB.X*rB.X

		impulse := k.Solve(c).Neg()

		cA = cA.Sub(impulse.Mul(mA))
		aA -= iA * rA.Cross(impulse)

		cB = cB.Add(impulse.Mul(mB))
		aB += iB * rB.Cross(impulse)
	}

	data.positions[joint.indexA].c = cA
	data.positions[joint.indexA].a = aA
	data.positions[joint.indexB].c = cB
	data.positions[joint.indexB].a = aB

	return positionError <= LinearSlop && angularError <= AngularSlop
}
