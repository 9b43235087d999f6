package rigid2d

import (
	"math"
)

// MouseJointDef requires a world target point and tuning parameters. The
// target is assumed to coincide with the body anchor initially. BodyA is a
// dummy ground body and is not moved by the joint.
type MouseJointDef struct {
	jointDefCommon

	// Target is the initial world target point.
	Target Vec2

	// MaxForce bounds the constraint force used to move the body, usually
	// expressed as a multiple of the weight (multiplier * mass * gravity).
	MaxForce float64

	// FrequencyHz is the response speed.
	FrequencyHz float64

	// DampingRatio: 0 = no damping, 1 = critical damping.
	DampingRatio float64
}

func MakeMouseJointDef() MouseJointDef {
	return MouseJointDef{
		FrequencyHz:  5.0,
		DampingRatio: 0.7,
	}
}

func (def *MouseJointDef) create() Joint {
	return newMouseJoint(def)
}

// MouseJoint makes a point on a body track a specified world point through
// a soft constraint with a maximum force, so the constraint can stretch
// without applying huge forces.
//
//	C = p - m
//	Cdot = v + cross(w, r)
//	J = [I r_skew]
type MouseJoint struct {
	jointBase

	localAnchorB Vec2
	targetA      Vec2
	frequencyHz  float64
	dampingRatio float64
	beta         float64

	// Solver shared
	impulse  Vec2
	maxForce float64
	gamma    float64

	// Solver temp
	indexB       int
	rB           Vec2
	localCenterB Vec2
	invMassB     float64
	invIB        float64
	mass         Mat22
	c            Vec2
}

func newMouseJoint(def *MouseJointDef) *MouseJoint {
	assert(def.Target.IsValid())
	assert(IsValidFloat(def.MaxForce) && def.MaxForce >= 0.0)
	assert(IsValidFloat(def.FrequencyHz) && def.FrequencyHz >= 0.0)
	assert(IsValidFloat(def.DampingRatio) && def.DampingRatio >= 0.0)

	joint := &MouseJoint{
		jointBase:    makeJointBase(MouseJointType, def),
		targetA:      def.Target,
		maxForce:     def.MaxForce,
		frequencyHz:  def.FrequencyHz,
		dampingRatio: def.DampingRatio,
	}
	joint.localAnchorB = joint.bodyB.Transform().ApplyT(joint.targetA)

	return joint
}

// SetTarget moves the target point, waking the body.
func (joint *MouseJoint) SetTarget(target Vec2) {
	if target != joint.targetA {
		joint.bodyB.SetAwake(true)
		joint.targetA = target
	}
}

func (joint *MouseJoint) Target() Vec2 {
	return joint.targetA
}

func (joint *MouseJoint) SetMaxForce(force float64) {
	joint.maxForce = force
}

func (joint *MouseJoint) MaxForce() float64 {
	return joint.maxForce
}

func (joint *MouseJoint) SetFrequency(hz float64) {
	joint.frequencyHz = hz
}

func (joint *MouseJoint) Frequency() float64 {
	return joint.frequencyHz
}

func (joint *MouseJoint) SetDampingRatio(ratio float64) {
	joint.dampingRatio = ratio
}

func (joint *MouseJoint) DampingRatio() float64 {
	return joint.dampingRatio
}

func (joint *MouseJoint) AnchorA() Vec2 {
	return joint.targetA
}

func (joint *MouseJoint) AnchorB() Vec2 {
	return joint.bodyB.WorldPoint(joint.localAnchorB)
}

func (joint *MouseJoint) ReactionForce(invDT float64) Vec2 {
	return joint.impulse.Mul(invDT)
}

func (joint *MouseJoint) ReactionTorque(invDT float64) float64 {
	return 0.0
}

func (joint *MouseJoint) ShiftOrigin(newOrigin Vec2) {
	joint.targetA = joint.targetA.Sub(newOrigin)
}

func (joint *MouseJoint) initVelocityConstraints(data solverData) {
	joint.indexB = joint.bodyB.islandIndex
	joint.localCenterB = joint.bodyB.sweep.LocalCenter
	joint.invMassB = joint.bodyB.invMass
	joint.invIB = joint.bodyB.invI

	cB := data.positions[joint.indexB].c
	aB := data.positions[joint.indexB].a
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	qB := MakeRot(aB)

	mass := joint.bodyB.Mass()

	omega := 2.0 * math.Pi * joint.frequencyHz

	// Damping coefficient and spring stiffness.
	d := 2.0 * mass * joint.dampingRatio * omega
	k := mass * omega * omega

	// gamma has units of inverse mass, beta of inverse time.
	h := data.step.dt
	assert(d+h*k > epsilon)
	joint.gamma = h * (d + h*k)
	if joint.gamma != 0.0 {
		joint.gamma = 1.0 / joint.gamma
	}
	joint.beta = h * k * joint.gamma

	// Effective mass matrix.
	joint.rB = qB.Apply(joint.localAnchorB.Sub(joint.localCenterB))

	// K = (1/m) * eye(2) - skew(r) * invI * skew(r) + gamma * eye(2)
	var k22 Mat22
	k22.Ex.X = joint.invMassB + joint.invIB*joint.rB.Y*joint.rB.Y + joint.gamma
	k22.Ex.Y = -joint.invIB * joint.rB.X * joint.rB.Y
	k22.Ey.X = k22.Ex.Y
	k22.Ey.Y = joint.invMassB + joint.invIB*joint.rB.X*joint.rB.X + joint.gamma

	joint.mass = k22.Inverse()

	joint.c = cB.Add(joint.rB).Sub(joint.targetA).Mul(joint.beta)

	// Cheat with some damping.
	wB *= 0.98

	if data.step.warmStarting {
		joint.impulse = joint.impulse.Mul(data.step.dtRatio)
		vB = vB.Add(joint.impulse.Mul(joint.invMassB))
		wB += joint.invIB * joint.rB.Cross(joint.impulse)
	} else {
		joint.impulse.SetZero()
	}

	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
}

func (joint *MouseJoint) solveVelocityConstraints(data solverData) {
	vB := data.velocities[joint.indexB].v
	wB := data.velocities[joint.indexB].w

	// Cdot = v + cross(w, r)
	cdot := vB.Add(CrossSV(wB, joint.rB))
	impulse := joint.mass.Apply(cdot.Add(joint.c).Add(joint.impulse.Mul(joint.gamma)).Neg())

	oldImpulse := joint.impulse
	joint.impulse = joint.impulse.Add(impulse)
	maxImpulse := data.step.dt * joint.maxForce
	if joint.impulse.LengthSquared() > maxImpulse*maxImpulse {
		joint.impulse = joint.impulse.Mul(maxImpulse / joint.impulse.Length())
	}
	impulse = joint.impulse.Sub(oldImpulse)

	vB = vB.Add(impulse.Mul(joint.invMassB))
	wB += joint.invIB * joint.rB.Cross(impulse)

	data.velocities[joint.indexB].v = vB
	data.velocities[joint.indexB].w = wB
}

func (joint *MouseJoint) solvePositionConstraints(data solverData) bool {
	return true
}
