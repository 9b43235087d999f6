package rigid2d

import (
	"math"
)

// WheelJointDef requires a line of motion given by an axis and an anchor
// point, both expressed locally. The joint translation is zero when the
// local anchor points coincide in world space.
type WheelJointDef struct {
	jointDefCommon

	LocalAnchorA Vec2
	LocalAnchorB Vec2

	// LocalAxisA is the translation axis in bodyA.
	LocalAxisA Vec2

	EnableMotor bool

	// MaxMotorTorque in N·m.
	MaxMotorTorque float64

	// MotorSpeed in radians per second.
	MotorSpeed float64

	// FrequencyHz is the suspension frequency; zero disables suspension.
	FrequencyHz float64

	// DampingRatio: one indicates critical damping.
	DampingRatio float64
}

func MakeWheelJointDef() WheelJointDef {
	return WheelJointDef{
		LocalAxisA:   Vec2{1.0, 0.0},
		FrequencyHz:  2.0,
		DampingRatio: 0.7,
	}
}

// Initialize sets the bodies, the shared world anchor and the world axis.
func (def *WheelJointDef) Initialize(bodyA, bodyB *Body, anchor, axis Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LocalAnchorA = bodyA.LocalPoint(anchor)
	def.LocalAnchorB = bodyB.LocalPoint(anchor)
	def.LocalAxisA = bodyA.LocalVector(axis)
}

func (def *WheelJointDef) create() Joint {
	return newWheelJoint(def)
}

// WheelJoint provides two degrees of freedom: translation along an axis
// fixed in bodyA and rotation in the plane. It is a point-to-line
// constraint with a rotational motor and a linear spring/damper, designed
// for vehicle suspensions.
//
// Point-to-line constraint:
//
//	d = pB - pA
//	C = dot(ay, d)
//	J = [-ay, -cross(d + rA, ay), ay, cross(rB, ay)]
//
// Spring constraint on the axis ax, motor on the relative rotation.
type WheelJoint struct {
	jointBase

	frequencyHz  float64
	dampingRatio float64

	// Solver shared
	localAnchorA Vec2
	localAnchorB Vec2
	localXAxisA  Vec2
	localYAxisA  Vec2

	impulse       float64
	motorImpulse  float64
	springImpulse float64

	maxMotorTorque float64
	motorSpeed     float64
	enableMotor    bool

	// Solver temp
	indexA, indexB             int
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64

	ax, ay   Vec2
	sAx, sBx float64
	sAy, sBy float64

	mass       float64
	motorMass  float64
	springMass float64

	bias  float64
	gamma float64
}

func newWheelJoint(def *WheelJointDef) *WheelJoint {
	joint := &WheelJoint{
		jointBase:      makeJointBase(WheelJointType, def),
		localAnchorA:   def.LocalAnchorA,
		localAnchorB:   def.LocalAnchorB,
		localXAxisA:    def.LocalAxisA,
		maxMotorTorque: def.MaxMotorTorque,
		motorSpeed:     def.MotorSpeed,
		enableMotor:    def.EnableMotor,
		frequencyHz:    def.FrequencyHz,
		dampingRatio:   def.DampingRatio,
	}
	joint.localYAxisA = CrossSV(1.0, joint.localXAxisA)

	return joint
}

func (joint *WheelJoint) LocalAnchorA() Vec2 {
	return joint.localAnchorA
}

func (joint *WheelJoint) LocalAnchorB() Vec2 {
	return joint.localAnchorB
}

func (joint *WheelJoint) LocalAxisA() Vec2 {
	return joint.localXAxisA
}

// JointTranslation returns the current translation along the axis.
func (joint *WheelJoint) JointTranslation() float64 {
	pA := joint.bodyA.WorldPoint(joint.localAnchorA)
	pB := joint.bodyB.WorldPoint(joint.localAnchorB)
	d := pB.Sub(pA)
	axis := joint.bodyA.WorldVector(joint.localXAxisA)
	return d.Dot(axis)
}

// JointLinearSpeed returns the current translation speed along the axis.
func (joint *WheelJoint) JointLinearSpeed() float64 {
	bA := joint.bodyA
	bB := joint.bodyB

	rA := bA.xf.Q.Apply(joint.localAnchorA.Sub(bA.sweep.LocalCenter))
	rB := bB.xf.Q.Apply(joint.localAnchorB.Sub(bB.sweep.LocalCenter))
	p1 := bA.sweep.C.Add(rA)
	p2 := bB.sweep.C.Add(rB)
	d := p2.Sub(p1)
	axis := bA.xf.Q.Apply(joint.localXAxisA)

	vA := bA.linearVelocity
	vB := bB.linearVelocity
	wA := bA.angularVelocity
	wB := bB.angularVelocity

	return d.Dot(CrossSV(wA, axis)) +
		axis.Dot(vB.Add(CrossSV(wB, rB)).Sub(vA).Sub(CrossSV(wA, rA)))
}

// JointAngle returns the relative rotation of the wheel.
func (joint *WheelJoint) JointAngle() float64 {
	return joint.bodyB.sweep.A - joint.bodyA.sweep.A
}

// JointAngularSpeed returns the relative angular velocity.
func (joint *WheelJoint) JointAngularSpeed() float64 {
	return joint.bodyB.angularVelocity - joint.bodyA.angularVelocity
}

func (joint *WheelJoint) IsMotorEnabled() bool {
	return joint.enableMotor
}

func (joint *WheelJoint) EnableMotor(flag bool) {
	if flag != joint.enableMotor {
		joint.bodyA.SetAwake(true)
		joint.bodyB.SetAwake(true)
		joint.enableMotor = flag
	}
}

func (joint *WheelJoint) SetMotorSpeed(speed float64) {
	if speed != joint.motorSpeed {
		joint.bodyA.SetAwake(true)
		joint.bodyB.SetAwake(true)
		joint.motorSpeed = speed
	}
}

func (joint *WheelJoint) MotorSpeed() float64 {
	return joint.motorSpeed
}

func (joint *WheelJoint) SetMaxMotorTorque(torque float64) {
	if torque != joint.maxMotorTorque {
		joint.bodyA.SetAwake(true)
		joint.bodyB.SetAwake(true)
		joint.maxMotorTorque = torque
	}
}

func (joint *WheelJoint) MaxMotorTorque() float64 {
	return joint.maxMotorTorque
}

// MotorTorque returns the current motor torque, given the inverse time step.
func (joint *WheelJoint) MotorTorque(invDT float64) float64 {
	return invDT * joint.motorImpulse
}

func (joint *WheelJoint) SetSpringFrequency(hz float64) {
	joint.frequencyHz = hz
}

func (joint *WheelJoint) SpringFrequency() float64 {
	return joint.frequencyHz
}

func (joint *WheelJoint) SetSpringDampingRatio(ratio float64) {
	joint.dampingRatio = ratio
}

func (joint *WheelJoint) SpringDampingRatio() float64 {
	return joint.dampingRatio
}

func (joint *WheelJoint) AnchorA() Vec2 {
	return joint.bodyA.WorldPoint(joint.localAnchorA)
}

func (joint *WheelJoint) AnchorB() Vec2 {
	return joint.bodyB.WorldPoint(joint.localAnchorB)
}

func (joint *WheelJoint) ReactionForce(invDT float64) Vec2 {
	return joint.ay.Mul(joint.impulse).Add(joint.ax.Mul(joint.springImpulse)).Mul(invDT)
}

func (joint *WheelJoint) ReactionTorque(invDT float64) float64 {
	return invDT * joint.motorImpulse
}

func (joint *WheelJoint) initVelocityConstraints(data solverData) {
	joint.indexA = joint.bodyA.islandIndex
	joint.indexB = joint.bodyB.islandIndex
	joint.localCenterA = joint.bodyA.sweep.LocalCenter
	joint.localCenterB = joint.bodyB.sweep.LocalCenter
	joint.invMassA = joint.bodyA.invMass
	joint.invMassB = joint.bodyB.invMass
	joint.invIA = joint.bodyA.invI
	joint.invIB = joint.bodyB.invI

	mA := joint.invMassA
	mB := joint.invMassB
	iA := joint.invIA
	iB := joint.invIB

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

	// Effective masses.
	rA := qA.Apply(joint.localAnchorA.Sub(joint.localCenterA))
	rB := qB.Apply(joint.localAnchorB.Sub(joint.localCenterB))
	d := cB.Add(rB).Sub(cA).Sub(rA)

	// Point-to-line constraint.
	{
		joint.ay = qA.Apply(joint.localYAxisA)
		joint.sAy = d.Add(rA).Cross(joint.ay)
		joint.sBy = rB.Cross(joint.ay)

		joint.mass = mA + mB + iA*joint.sAy*joint.sAy + iB*joint.sBy*joint.sBy
		if joint.mass > 0.0 {
			joint.mass = 1.0 / joint.mass
		}
	}

	// Spring constraint.
	joint.springMass = 0.0
	joint.bias = 0.0
	joint.gamma = 0.0
	if joint.frequencyHz > 0.0 {
		joint.ax = qA.Apply(joint.localXAxisA)
		joint.sAx = d.Add(rA).Cross(joint.ax)
		joint.sBx = rB.Cross(joint.ax)

		invMass := mA + mB + iA*joint.sAx*joint.sAx + iB*joint.sBx*joint.sBx

		if invMass > 0.0 {
			joint.springMass = 1.0 / invMass

			c := d.Dot(joint.ax)

			omega := 2.0 * math.Pi * joint.frequencyHz

			// Damping coefficient and spring stiffness.
			damp := 2.0 * joint.springMass * joint.dampingRatio * omega
			k := joint.springMass * omega * omega

			// Convert softness to per-step gamma and bias.
			h := data.step.dt
			joint.gamma = h * (damp + h*k)
			if joint.gamma > 0.0 {
				joint.gamma = 1.0 / joint.gamma
			}

			joint.bias = c * h * k * joint.gamma

			joint.springMass = invMass + joint.gamma
			if joint.springMass > 0.0 {
				joint.springMass = 1.0 / joint.springMass
			}
		}
	} else {
		joint.springImpulse = 0.0
	}

	// Rotational motor.
	if joint.enableMotor {
		joint.motorMass = iA + iB
		if joint.motorMass > 0.0 {
			joint.motorMass = 1.0 / joint.motorMass
		}
	} else {
		joint.motorMass = 0.0
		joint.motorImpulse = 0.0
	}

	if data.step.warmStarting {
		// Account for variable time step.
		joint.impulse *= data.step.dtRatio
		joint.springImpulse *= data.step.dtRatio
		joint.motorImpulse *= data.step.dtRatio

		p := joint.ay.Mul(joint.impulse).Add(joint.ax.Mul(joint.springImpulse))
		lA := joint.impulse*joint.sAy + joint.springImpulse*joint.sAx + joint.motorImpulse
		lB := joint.impulse*joint.sBy + joint.springImpulse*joint.sBx + joint.motorImpulse

		vA = vA.Sub(p.Mul(joint.invMassA))
		wA -= joint.invIA * lA

		vB = vB.Add(p.Mul(joint.invMassB))
		wB += joint.invIB * lB
	} else {
		joint.impulse = 0.0
		joint.springImpulse = 0.0
		joint.motorImpulse = 0.0
	}

	data.velocities[joint.indexA].v = vA
	data.velocities[joint.indexA].w = wA
	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
}

func (joint *WheelJoint) solveVelocityConstraints(data solverData) {
	mA := joint.invMassA
	mB := joint.invMassB
	iA := joint.invIA
	iB := joint.invIB

	vA := data.velocities[joint.indexA].v
	wA := data.velocities[joint.indexA].w
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	// Solve the spring constraint.
	{
		cdot := joint.ax.Dot(vB.Sub(vA)) + joint.sBx*wB - joint.sAx*wA
		impulse := -joint.springMass * (cdot + joint.bias + joint.gamma*joint.springImpulse)
		joint.springImpulse += impulse

		p := joint.ax.Mul(impulse)
		lA := impulse * joint.sAx
		lB := impulse * joint.sBx

		vA = vA.Sub(p.Mul(mA))
		wA -= iA * lA

		vB = vB.Add(p.Mul(mB))
		wB += iB * lB
	}

	// Solve the rotational motor constraint.
	{
		cdot := wB - wA - joint.motorSpeed
		impulse := -joint.motorMass * cdot

		oldImpulse := joint.motorImpulse
		maxImpulse := data.step.dt * joint.maxMotorTorque
		joint.motorImpulse = clampFloat(joint.motorImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = joint.motorImpulse - oldImpulse

		wA -= iA * impulse
		wB += iB * impulse
	}

	// Solve the point-to-line constraint.
	{
		cdot := joint.ay.Dot(vB.Sub(vA)) + joint.sBy*wB - joint.sAy*wA
		impulse := -joint.mass * cdot
		joint.impulse += impulse

		p := joint.ay.Mul(impulse)
		lA := impulse * joint.sAy
		lB := impulse * joint.sBy

		vA = vA.Sub(p.Mul(mA))
		wA -= iA * lA

		vB = vB.Add(p.Mul(mB))
		wB += iB * lB
	}

	data.velocities[joint.indexA].v = vA
	data.velocities[joint.indexA].w = wA
	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
}

func (joint *WheelJoint) solvePositionConstraints(data solverData) bool {
	cA := data.positions[joint.indexA].c
	aA := data.positions[joint.indexA].a
	cB := data.positions[joint.indexB].c
	aB := data.positions[joint.indexB].a

	qA := MakeRot(aA)
	qB := MakeRot(aB)

	rA := qA.Apply(joint.localAnchorA.Sub(joint.localCenterA))
	rB := qB.Apply(joint.localAnchorB.Sub(joint.localCenterB))
	d := cB.Sub(cA).Add(rB).Sub(rA)

	ay := qA.Apply(joint.localYAxisA)

	sAy := d.Add(rA).Cross(ay)
	sBy := rB.Cross(ay)

	c := d.Dot(ay)

	k := joint.invMassA + joint.invMassB + joint.invIA*joint.sAy*joint.sAy + joint.invIB*joint.sBy*joint.sBy

	impulse := 0.0
	if k != 0.0 {
		impulse = -c / k
	}

	p := ay.Mul(impulse)
	lA := impulse * sAy
	lB := impulse * sBy

	cA = cA.Sub(p.Mul(joint.invMassA))
	aA -= joint.invIA * lA
	cB = cB.Add(p.Mul(joint.invMassB))
	aB += joint.invIB * lB

	data.positions[joint.indexA].c = cA
	data.positions[joint.indexA].a = aA
	data.positions[joint.indexB].c = cB
	data.positions[joint.indexB].a = aB

	return math.Abs(c) <= LinearSlop
}
