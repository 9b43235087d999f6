package rigid2d

import (
	"math"
)

// PrismaticJointDef requires a line of motion given by an axis and an
// anchor point, both expressed locally so the initial configuration can
// violate the constraint slightly. The joint translation is zero when the
// local anchor points coincide in world space.
type PrismaticJointDef struct {
	jointDefCommon

	LocalAnchorA Vec2
	LocalAnchorB Vec2

	// LocalAxisA is the translation unit axis in bodyA.
	LocalAxisA Vec2

	// ReferenceAngle is the constrained angle bodyB - bodyA.
	ReferenceAngle float64

	EnableLimit      bool
	LowerTranslation float64
	UpperTranslation float64

	EnableMotor bool

	// MaxMotorForce in N.
	MaxMotorForce float64

	// MotorSpeed in meters per second.
	MotorSpeed float64
}

func MakePrismaticJointDef() PrismaticJointDef {
	return PrismaticJointDef{LocalAxisA: Vec2{1.0, 0.0}}
}

// Initialize sets the bodies, the shared world anchor and the world axis.
func (def *PrismaticJointDef) Initialize(bodyA, bodyB *Body, anchor, axis Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LocalAnchorA = bodyA.LocalPoint(anchor)
	def.LocalAnchorB = bodyB.LocalPoint(anchor)
	def.LocalAxisA = bodyA.LocalVector(axis)
	def.ReferenceAngle = bodyB.Angle() - bodyA.Angle()
}

func (def *PrismaticJointDef) create() Joint {
	return newPrismaticJoint(def)
}

// PrismaticJoint provides one degree of freedom: translation along an axis
// fixed in bodyA. Relative rotation is prevented. A limit restricts the
// range of motion and a motor drives the motion or models joint friction.
//
// Point-to-line constraint with block-solved limit:
//
//	d = p2 - p1 = x2 + r2 - x1 - r1
//	C1 = [dot(perp, d), a2 - a1 - a_ref]
//	C2 = dot(axis, d) (limit row)
//
//	J = [-uT -s1 uT s2]   u = perp, s1 = cross(d + r1, u), s2 = cross(r2, u)
//	    [0   -1   0  1]
//	    [-vT -a1 vT a2]   v = axis, a1 = cross(d + r1, v), a2 = cross(r2, v)
//
// Including the limit row in the block keeps the limit stiff even when the
// mass distribution produces large torques about the anchors. The
// accumulated limit impulse is clamped, then the first two rows are
// re-solved for the adjusted right-hand side.
type PrismaticJoint struct {
	jointBase

	// Solver shared
	localAnchorA     Vec2
	localAnchorB     Vec2
	localXAxisA      Vec2
	localYAxisA      Vec2
	referenceAngle   float64
	impulse          Vec3
	motorImpulse     float64
	lowerTranslation float64
	upperTranslation float64
	maxMotorForce    float64
	motorSpeed       float64
	enableLimit      bool
	enableMotor      bool
	state            limitState

	// Solver temp
	indexA, indexB             int
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	axis, perp                 Vec2
	s1, s2                     float64
	a1, a2                     float64
	k                          Mat33
	motorMass                  float64
}

func newPrismaticJoint(def *PrismaticJointDef) *PrismaticJoint {
	joint := &PrismaticJoint{
		jointBase:        makeJointBase(PrismaticJointType, def),
		localAnchorA:     def.LocalAnchorA,
		localAnchorB:     def.LocalAnchorB,
		localXAxisA:      def.LocalAxisA,
		referenceAngle:   def.ReferenceAngle,
		lowerTranslation: def.LowerTranslation,
		upperTranslation: def.UpperTranslation,
		maxMotorForce:    def.MaxMotorForce,
		motorSpeed:       def.MotorSpeed,
		enableLimit:      def.EnableLimit,
		enableMotor:      def.EnableMotor,
		state:            inactiveLimit,
	}
	joint.localXAxisA.Normalize()
	joint.localYAxisA = CrossSV(1.0, joint.localXAxisA)

	return joint
}

func (joint *PrismaticJoint) LocalAnchorA() Vec2 {
	return joint.localAnchorA
}

func (joint *PrismaticJoint) LocalAnchorB() Vec2 {
	return joint.localAnchorB
}

// LocalAxisA returns the joint axis relative to bodyA.
func (joint *PrismaticJoint) LocalAxisA() Vec2 {
	return joint.localXAxisA
}

func (joint *PrismaticJoint) ReferenceAngle() float64 {
	return joint.referenceAngle
}

// JointTranslation returns the current translation along the axis.
func (joint *PrismaticJoint) JointTranslation() float64 {
	pA := joint.bodyA.WorldPoint(joint.localAnchorA)
	pB := joint.bodyB.WorldPoint(joint.localAnchorB)
	d := pB.Sub(pA)
	axis := joint.bodyA.WorldVector(joint.localXAxisA)
	return d.Dot(axis)
}

// JointSpeed returns the current translation speed along the axis.
func (joint *PrismaticJoint) JointSpeed() float64 {
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

func (joint *PrismaticJoint) IsLimitEnabled() bool {
	return joint.enableLimit
}

func (joint *PrismaticJoint) EnableLimit(flag bool) {
	if flag != joint.enableLimit {
		joint.bodyA.SetAwake(true)
		joint.bodyB.SetAwake(true)
		joint.enableLimit = flag
		joint.impulse.Z = 0.0
	}
}

func (joint *PrismaticJoint) LowerLimit() float64 {
	return joint.lowerTranslation
}

func (joint *PrismaticJoint) UpperLimit() float64 {
	return joint.upperTranslation
}

func (joint *PrismaticJoint) SetLimits(lower, upper float64) {
	assert(lower <= upper)
	if lower != joint.lowerTranslation || upper != joint.upperTranslation {
		joint.bodyA.SetAwake(true)
		joint.bodyB.SetAwake(true)
		joint.lowerTranslation = lower
		joint.upperTranslation = upper
		joint.impulse.Z = 0.0
	}
}

func (joint *PrismaticJoint) IsMotorEnabled() bool {
	return joint.enableMotor
}

func (joint *PrismaticJoint) EnableMotor(flag bool) {
	if flag != joint.enableMotor {
		joint.bodyA.SetAwake(true)
		joint.bodyB.SetAwake(true)
		joint.enableMotor = flag
	}
}

func (joint *PrismaticJoint) SetMotorSpeed(speed float64) {
	if speed != joint.motorSpeed {
		joint.bodyA.SetAwake(true)
		joint.bodyB.SetAwake(true)
		joint.motorSpeed = speed
	}
}

func (joint *PrismaticJoint) MotorSpeed() float64 {
	return joint.motorSpeed
}

func (joint *PrismaticJoint) SetMaxMotorForce(force float64) {
	if force != joint.maxMotorForce {
		joint.bodyA.SetAwake(true)
		joint.bodyB.SetAwake(true)
		joint.maxMotorForce = force
	}
}

func (joint *PrismaticJoint) MaxMotorForce() float64 {
	return joint.maxMotorForce
}

// MotorForce returns the current motor force, given the inverse time step.
func (joint *PrismaticJoint) MotorForce(invDT float64) float64 {
	return invDT * joint.motorImpulse
}

func (joint *PrismaticJoint) AnchorA() Vec2 {
	return joint.bodyA.WorldPoint(joint.localAnchorA)
}

func (joint *PrismaticJoint) AnchorB() Vec2 {
	return joint.bodyB.WorldPoint(joint.localAnchorB)
}

func (joint *PrismaticJoint) ReactionForce(invDT float64) Vec2 {
	return joint.perp.Mul(joint.impulse.X).
		Add(joint.axis.Mul(joint.motorImpulse + joint.impulse.Z)).Mul(invDT)
}

func (joint *PrismaticJoint) ReactionTorque(invDT float64) float64 {
	return invDT * joint.impulse.Y
}

func (joint *PrismaticJoint) initVelocityConstraints(data solverData) {
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

	// Effective masses.
	rA := qA.Apply(joint.localAnchorA.Sub(joint.localCenterA))
	rB := qB.Apply(joint.localAnchorB.Sub(joint.localCenterB))
	d := cB.Sub(cA).Add(rB).Sub(rA)

	mA := joint.invMassA
	mB := joint.invMassB
	iA := joint.invIA
	iB := joint.invIB

	// Motor Jacobian and effective mass.
	{
		joint.axis = qA.Apply(joint.localXAxisA)
		joint.a1 = d.Add(rA).Cross(joint.axis)
		joint.a2 = rB.Cross(joint.axis)

		joint.motorMass = mA + mB + iA*joint.a1*joint.a1 + iB*joint.a2*joint.a2
		if joint.motorMass > 0.0 {
			joint.motorMass = 1.0 / joint.motorMass
		}
	}

	// Prismatic constraint.
	{
		joint.perp = qA.Apply(joint.localYAxisA)

		joint.s1 = d.Add(rA).Cross(joint.perp)
		joint.s2 = rB.Cross(joint.perp)

		k11 := mA + mB + iA*joint.s1*joint.s1 + iB*joint.s2*joint.s2
		k12 := iA*joint.s1 + iB*joint.s2
		k13 := iA*joint.s1*joint.a1 + iB*joint.s2*joint.a2
		k22 := iA + iB
		if k22 == 0.0 {
			// Both bodies have fixed rotation.
			k22 = 1.0
		}
		k23 := iA*joint.a1 + iB*joint.a2
		k33 := mA + mB + iA*joint.a1*joint.a1 + iB*joint.a2*joint.a2

		joint.k.Ex = Vec3{k11, k12, k13}
		joint.k.Ey = Vec3{k12, k22, k23}
		joint.k.Ez = Vec3{k13, k23, k33}
	}

	// Motor and limit terms.
	if joint.enableLimit {
		jointTranslation := joint.axis.Dot(d)
		if math.Abs(joint.upperTranslation-joint.lowerTranslation) < 2.0*LinearSlop {
			joint.state = equalLimits
		} else if jointTranslation <= joint.lowerTranslation {
			if joint.state != atLowerLimit {
				joint.state = atLowerLimit
				joint.impulse.Z = 0.0
			}
		} else if jointTranslation >= joint.upperTranslation {
			if joint.state != atUpperLimit {
				joint.state = atUpperLimit
				joint.impulse.Z = 0.0
			}
		} else {
			joint.state = inactiveLimit
			joint.impulse.Z = 0.0
		}
	} else {
		joint.state = inactiveLimit
		joint.impulse.Z = 0.0
	}

	if !joint.enableMotor {
		joint.motorImpulse = 0.0
	}

	if data.step.warmStarting {
		// Account for variable time step.
		joint.impulse = joint.impulse.Mul(data.step.dtRatio)
		joint.motorImpulse *= data.step.dtRatio

		p := joint.perp.Mul(joint.impulse.X).
			Add(joint.axis.Mul(joint.motorImpulse + joint.impulse.Z))
		lA := joint.impulse.X*joint.s1 + joint.impulse.Y + (joint.motorImpulse+joint.impulse.Z)*joint.a1
		lB := joint.impulse.X*joint.s2 + joint.impulse.Y + (joint.motorImpulse+joint.impulse.Z)*joint.a2

		vA = vA.Sub(p.Mul(mA))
		wA -= iA * lA

		vB = vB.Add(p.Mul(mB))
		wB += iB * lB
	} else {
		joint.impulse.SetZero()
		joint.motorImpulse = 0.0
	}

	data.velocities[joint.indexA].v = vA
	data.velocities[joint.indexA].w = wA
	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
}

func (joint *PrismaticJoint) solveVelocityConstraints(data solverData) {
	vA := data.velocities[joint.indexA].v
	wA := data.velocities[joint.indexA].w
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	mA := joint.invMassA
	mB := joint.invMassB
	iA := joint.invIA
	iB := joint.invIB

	// Solve the linear motor constraint.
	if joint.enableMotor && joint.state != equalLimits {
		cdot := joint.axis.Dot(vB.Sub(vA)) + joint.a2*wB - joint.a1*wA
		impulse := joint.motorMass * (joint.motorSpeed - cdot)
		oldImpulse := joint.motorImpulse
		maxImpulse := data.step.dt * joint.maxMotorForce
		joint.motorImpulse = clampFloat(joint.motorImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = joint.motorImpulse - oldImpulse

		p := joint.axis.Mul(impulse)
		lA := impulse * joint.a1
		lB := impulse * joint.a2

		vA = vA.Sub(p.Mul(mA))
		wA -= iA * lA

		vB = vB.Add(p.Mul(mB))
		wB += iB * lB
	}

	var cdot1 Vec2
	cdot1.X = joint.perp.Dot(vB.Sub(vA)) + joint.s2*wB - joint.s1*wA
	cdot1.Y = wB - wA

	if joint.enableLimit && joint.state != inactiveLimit {
		// Solve the prismatic and limit constraints in block form.
		cdot2 := joint.axis.Dot(vB.Sub(vA)) + joint.a2*wB - joint.a1*wA
		cdot := Vec3{cdot1.X, cdot1.Y, cdot2}

		f1 := joint.impulse
		df := joint.k.Solve33(cdot.Neg())
		joint.impulse = joint.impulse.Add(df)

		if joint.state == atLowerLimit {
			joint.impulse.Z = math.Max(joint.impulse.Z, 0.0)
		} else if joint.state == atUpperLimit {
			joint.impulse.Z = math.Min(joint.impulse.Z, 0.0)
		}

		// f2(1:2) = invK(1:2,1:2) * (-Cdot(1:2) - K(1:2,3) * (f2(3) - f1(3))) + f1(1:2)
		b := cdot1.Neg().Sub(Vec2{joint.k.Ez.X, joint.k.Ez.Y}.Mul(joint.impulse.Z - f1.Z))
		f2r := joint.k.Solve22(b).Add(Vec2{f1.X, f1.Y})
		joint.impulse.X = f2r.X
		joint.impulse.Y = f2r.Y

		df = joint.impulse.Sub(f1)

		p := joint.perp.Mul(df.X).Add(joint.axis.Mul(df.Z))
		lA := df.X*joint.s1 + df.Y + df.Z*joint.a1
		lB := df.X*joint.s2 + df.Y + df.Z*joint.a2

		vA = vA.Sub(p.Mul(mA))
		wA -= iA * lA

		vB = vB.Add(p.Mul(mB))
		wB += iB * lB
	} else {
		// Limit inactive: solve the prismatic constraint in block form.
		df := joint.k.Solve22(cdot1.Neg())
		joint.impulse.X += df.X
		joint.impulse.Y += df.Y

		p := joint.perp.Mul(df.X)
		lA := df.X*joint.s1 + df.Y
		lB := df.X*joint.s2 + df.Y

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

// A velocity-based solver computes reaction forces as impulses; the
// position pass only copes with integration error, so its pseudo impulses
// have no physical meaning. The limit activity is re-derived here rather
// than taken from the velocity solver, which may not have noticed the joint
// pushing past the limit.
func (joint *PrismaticJoint) solvePositionConstraints(data solverData) bool {
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

	// Fresh Jacobians.
	rA := qA.Apply(joint.localAnchorA.Sub(joint.localCenterA))
	rB := qB.Apply(joint.localAnchorB.Sub(joint.localCenterB))
	d := cB.Add(rB).Sub(cA).Sub(rA)

	axis := qA.Apply(joint.localXAxisA)
	a1 := d.Add(rA).Cross(axis)
	a2 := rB.Cross(axis)
	perp := qA.Apply(joint.localYAxisA)

	s1 := d.Add(rA).Cross(perp)
	s2 := rB.Cross(perp)

	var impulse Vec3
	var c1 Vec2
	c1.X = perp.Dot(d)
	c1.Y = aB - aA - joint.referenceAngle

	linearError := math.Abs(c1.X)
	angularError := math.Abs(c1.Y)

	active := false
	c2 := 0.0
	if joint.enableLimit {
		translation := axis.Dot(d)
		if math.Abs(joint.upperTranslation-joint.lowerTranslation) < 2.0*LinearSlop {
			c2 = clampFloat(translation, -MaxLinearCorrection, MaxLinearCorrection)
			linearError = math.Max(linearError, math.Abs(translation))
			active = true
		} else if translation <= joint.lowerTranslation {
			// Prevent large corrections and allow some slop.
			c2 = clampFloat(translation-joint.lowerTranslation+LinearSlop, -MaxLinearCorrection, 0.0)
			linearError = math.Max(linearError, joint.lowerTranslation-translation)
			active = true
		} else if translation >= joint.upperTranslation {
			c2 = clampFloat(translation-joint.upperTranslation-LinearSlop, 0.0, MaxLinearCorrection)
			linearError = math.Max(linearError, translation-joint.upperTranslation)
			active = true
		}
	}

	if active {
		k11 := mA + mB + iA*s1*s1 + iB*s2*s2
		k12 := iA*s1 + iB*s2
		k13 := iA*s1*a1 + iB*s2*a2
		k22 := iA + iB
		if k22 == 0.0 {
			// Both bodies have fixed rotation.
			k22 = 1.0
		}
		k23 := iA*a1 + iB*a2
		k33 := mA + mB + iA*a1*a1 + iB*a2*a2

		var k Mat33
		k.Ex = Vec3{k11, k12, k13}
		k.Ey = Vec3{k12, k22, k23}
		k.Ez = Vec3{k13, k23, k33}

		c := Vec3{c1.X, c1.Y, c2}
		impulse = k.Solve33(c.Neg())
	} else {
		k11 := mA + mB + iA*s1*s1 + iB*s2*s2
		k12 := iA*s1 + iB*s2
		k22 := iA + iB
		if k22 == 0.0 {
			k22 = 1.0
		}

		var k Mat22
		k.Ex = Vec2{k11, k12}
		k.Ey = Vec2{k12, k22}

		impulse1 := k.Solve(c1.Neg())
		impulse.X = impulse1.X
		impulse.Y = impulse1.Y
	}

	p := perp.Mul(impulse.X).Add(axis.Mul(impulse.Z))
	lA := impulse.X*s1 + impulse.Y + impulse.Z*a1
	lB := impulse.X*s2 + impulse.Y + impulse.Z*a2

	cA = cA.Sub(p.Mul(mA))
	aA -= iA * lA
	cB = cB.Add(p.Mul(mB))
	aB += iB * lB

	data.positions[joint.indexA].c = cA
	data.positions[joint.indexA].a = aA
	data.positions[joint.indexB].c = cB
	data.positions[joint.indexB].a = aB

	return linearError <= LinearSlop && angularError <= AngularSlop
}
