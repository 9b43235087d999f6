package rigid2d_test

import (
	"math"
	"testing"

	"github.com/bytearena/rigid2d"
)

// A rigid distance joint holds a swinging pendulum bob at its rest length.
func TestDistanceJointHoldsLength(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})

	groundDef := rigid2d.MakeBodyDef()
	ground := world.CreateBody(&groundDef)

	bd := rigid2d.MakeBodyDef()
	bd.Type = rigid2d.DynamicBody
	bd.Position = rigid2d.Vec2{X: 2.0, Y: 0.0}
	bob := world.CreateBody(&bd)
	bob.CreateFixtureFromShape(rigid2d.NewCircleShape(0.2), 1.0)

	jd := rigid2d.MakeDistanceJointDef()
	jd.Initialize(ground, bob, rigid2d.Vec2{}, bob.Position())
	world.CreateJoint(&jd)

	for i := 0; i < 180; i++ {
		world.Step(1.0/60.0, 8, 3)
		world.ClearForces()

		dist := bob.Position().Length()
		if math.Abs(dist-2.0) > 0.02 {
			t.Fatalf("pendulum length drifted at step %d: %v", i, dist)
		}
	}
}

// Gravity drives a prismatic slider to its lower translation limit, no
// further.
func TestPrismaticLimit(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})

	groundDef := rigid2d.MakeBodyDef()
	ground := world.CreateBody(&groundDef)

	bd := rigid2d.MakeBodyDef()
	bd.Type = rigid2d.DynamicBody
	bd.Position = rigid2d.Vec2{X: 0.0, Y: 0.0}
	slider := world.CreateBody(&bd)
	slider.CreateFixtureFromShape(rigid2d.NewBoxShape(0.25, 0.25), 1.0)

	jd := rigid2d.MakePrismaticJointDef()
	jd.Initialize(ground, slider, slider.Position(), rigid2d.Vec2{X: 0.0, Y: 1.0})
	jd.EnableLimit = true
	jd.LowerTranslation = -1.0
	jd.UpperTranslation = 0.0
	joint := world.CreateJoint(&jd).(*rigid2d.PrismaticJoint)

	for i := 0; i < 240; i++ {
		world.Step(1.0/60.0, 8, 3)
		world.ClearForces()
	}

	translation := joint.JointTranslation()
	if math.Abs(translation - -1.0) > 0.02 {
		t.Fatalf("slider translation = %v, want ~-1.0", translation)
	}
	if math.Abs(slider.Position().X) > 0.01 {
		t.Fatalf("slider left its axis: x = %v", slider.Position().X)
	}
}

// Two hanging bodies on a pulley keep L1 + ratio*L2 constant.
func TestPulleyLengthInvariant(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})

	mk := func(x float64, hy float64) *rigid2d.Body {
		bd := rigid2d.MakeBodyDef()
		bd.Type = rigid2d.DynamicBody
		bd.Position = rigid2d.Vec2{X: x, Y: 5.0}
		body := world.CreateBody(&bd)
		body.CreateFixtureFromShape(rigid2d.NewBoxShape(0.5, hy), 1.0)
		return body
	}

	// Unequal masses so the pulley actually runs.
	a := mk(-2.0, 0.5)
	b := mk(2.0, 1.0)

	groundA := rigid2d.Vec2{X: -2.0, Y: 8.0}
	groundB := rigid2d.Vec2{X: 2.0, Y: 8.0}

	jd := rigid2d.MakePulleyJointDef()
	jd.Initialize(a, b, groundA, groundB, a.Position(), b.Position(), 1.0)
	joint := world.CreateJoint(&jd).(*rigid2d.PulleyJoint)

	c0 := joint.CurrentLengthA() + joint.Ratio()*joint.CurrentLengthB()

	for i := 0; i < 180; i++ {
		world.Step(1.0/60.0, 8, 3)
		world.ClearForces()
	}

	c1 := joint.CurrentLengthA() + joint.Ratio()*joint.CurrentLengthB()
	if math.Abs(c1-c0) > 0.05 {
		t.Fatalf("pulley invariant drifted: %v -> %v", c0, c1)
	}

	// The heavier side descended.
	if b.Position().Y >= 5.0 {
		t.Fatalf("heavy side did not descend: y = %v", b.Position().Y)
	}
}

type goodbyeRecorder struct {
	joints []rigid2d.Joint
}

func (r *goodbyeRecorder) SayGoodbyeToFixture(f *rigid2d.Fixture) {}
func (r *goodbyeRecorder) SayGoodbyeToJoint(j rigid2d.Joint) {
	r.joints = append(r.joints, j)
}

// Destroying a referent joint auto-destroys the dependent gear joint, with
// a destruction listener notification, instead of leaving it dangling.
func TestGearJointAutoDestroy(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{})
	recorder := &goodbyeRecorder{}
	world.SetDestructionListener(recorder)

	groundDef := rigid2d.MakeBodyDef()
	ground := world.CreateBody(&groundDef)

	mkDisk := func(x float64) *rigid2d.Body {
		bd := rigid2d.MakeBodyDef()
		bd.Type = rigid2d.DynamicBody
		bd.Position = rigid2d.Vec2{X: x, Y: 0.0}
		disk := world.CreateBody(&bd)
		disk.CreateFixtureFromShape(rigid2d.NewCircleShape(0.5), 1.0)
		return disk
	}

	disk1 := mkDisk(-1.0)
	disk2 := mkDisk(1.0)

	jd1 := rigid2d.MakeRevoluteJointDef()
	jd1.Initialize(ground, disk1, disk1.Position())
	j1 := world.CreateJoint(&jd1)

	jd2 := rigid2d.MakeRevoluteJointDef()
	jd2.Initialize(ground, disk2, disk2.Position())
	j2 := world.CreateJoint(&jd2)

	gd := rigid2d.MakeGearJointDef()
	gd.BodyA = disk1
	gd.BodyB = disk2
	gd.Joint1 = j1
	gd.Joint2 = j2
	gd.Ratio = 2.0
	gear := world.CreateJoint(&gd)

	if world.JointCount() != 3 {
		t.Fatalf("joint count = %d, want 3", world.JointCount())
	}

	world.DestroyJoint(j1)

	if world.JointCount() != 1 {
		t.Fatalf("joint count after destroy = %d, want 1 (gear auto-destroyed)", world.JointCount())
	}

	found := false
	for _, j := range recorder.joints {
		if j == gear {
			found = true
		}
	}
	if !found {
		t.Fatalf("destruction listener was not notified about the gear joint")
	}

	// The remaining joint still works.
	for i := 0; i < 30; i++ {
		world.Step(1.0/60.0, 8, 3)
		world.ClearForces()
	}
	if world.JointList() != j2 {
		t.Fatalf("surviving joint list corrupted")
	}
}

// A gear couples the rotation of two hinged disks by the ratio.
func TestGearJointCouplesRotation(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{})

	groundDef := rigid2d.MakeBodyDef()
	ground := world.CreateBody(&groundDef)

	mkDisk := func(x float64) *rigid2d.Body {
		bd := rigid2d.MakeBodyDef()
		bd.Type = rigid2d.DynamicBody
		bd.Position = rigid2d.Vec2{X: x, Y: 0.0}
		disk := world.CreateBody(&bd)
		disk.CreateFixtureFromShape(rigid2d.NewCircleShape(0.5), 1.0)
		return disk
	}

	disk1 := mkDisk(-1.0)
	disk2 := mkDisk(1.0)

	jd1 := rigid2d.MakeRevoluteJointDef()
	jd1.Initialize(ground, disk1, disk1.Position())
	jd1.EnableMotor = true
	jd1.MotorSpeed = 1.0
	jd1.MaxMotorTorque = 100.0
	j1 := world.CreateJoint(&jd1).(*rigid2d.RevoluteJoint)

	jd2 := rigid2d.MakeRevoluteJointDef()
	jd2.Initialize(ground, disk2, disk2.Position())
	j2 := world.CreateJoint(&jd2).(*rigid2d.RevoluteJoint)

	gd := rigid2d.MakeGearJointDef()
	gd.BodyA = disk1
	gd.BodyB = disk2
	gd.Joint1 = j1
	gd.Joint2 = j2
	gd.Ratio = 2.0
	world.CreateJoint(&gd)

	for i := 0; i < 120; i++ {
		world.Step(1.0/60.0, 8, 3)
		world.ClearForces()
	}

	// coordinate1 + ratio * coordinate2 stays at its initial value (0).
	sum := j1.JointAngle() + 2.0*j2.JointAngle()
	if math.Abs(sum) > 0.05 {
		t.Fatalf("gear constraint violated: angle1 + r*angle2 = %v", sum)
	}
	if math.Abs(j1.JointAngle()) < 0.5 {
		t.Fatalf("motorized disk barely rotated: %v", j1.JointAngle())
	}
}

// A rope joint caps the distance between anchors; a falling body stops at
// the rope length.
func TestRopeJointMaxLength(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})

	groundDef := rigid2d.MakeBodyDef()
	ground := world.CreateBody(&groundDef)

	bd := rigid2d.MakeBodyDef()
	bd.Type = rigid2d.DynamicBody
	bd.Position = rigid2d.Vec2{X: 0.0, Y: -1.0}
	weight := world.CreateBody(&bd)
	weight.CreateFixtureFromShape(rigid2d.NewBoxShape(0.2, 0.2), 1.0)

	jd := rigid2d.MakeRopeJointDef()
	jd.BodyA = ground
	jd.BodyB = weight
	jd.LocalAnchorA = rigid2d.Vec2{}
	jd.LocalAnchorB = rigid2d.Vec2{}
	jd.MaxLength = 3.0
	world.CreateJoint(&jd)

	for i := 0; i < 240; i++ {
		world.Step(1.0/60.0, 8, 3)
		world.ClearForces()
	}

	dist := weight.Position().Length()
	if dist > 3.0+0.05 {
		t.Fatalf("rope stretched past max length: %v", dist)
	}
	if dist < 2.5 {
		t.Fatalf("weight did not reach the rope limit: %v", dist)
	}
}

// The motor joint drives a body toward an offset pose relative to ground.
func TestMotorJointTracksOffset(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{})

	groundDef := rigid2d.MakeBodyDef()
	ground := world.CreateBody(&groundDef)

	bd := rigid2d.MakeBodyDef()
	bd.Type = rigid2d.DynamicBody
	bd.Position = rigid2d.Vec2{X: 0.0, Y: 0.0}
	body := world.CreateBody(&bd)
	body.CreateFixtureFromShape(rigid2d.NewBoxShape(0.5, 0.5), 1.0)

	jd := rigid2d.MakeMotorJointDef()
	jd.Initialize(ground, body)
	jd.MaxForce = 1000.0
	jd.MaxTorque = 1000.0
	joint := world.CreateJoint(&jd).(*rigid2d.MotorJoint)

	joint.SetLinearOffset(rigid2d.Vec2{X: 2.0, Y: 1.0})

	for i := 0; i < 300; i++ {
		world.Step(1.0/60.0, 8, 3)
		world.ClearForces()
	}

	p := body.Position()
	if math.Abs(p.X-2.0) > 0.05 || math.Abs(p.Y-1.0) > 0.05 {
		t.Fatalf("motor joint did not reach the offset: pos = %v", p)
	}
}

// A rigid weld (zero frequency) keeps two boxes glued together through a drop.
func TestWeldJointHolds(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})

	groundDef := rigid2d.MakeBodyDef()
	ground := world.CreateBody(&groundDef)
	edge := rigid2d.NewEdgeShape()
	edge.Set(rigid2d.Vec2{X: -40.0, Y: 0.0}, rigid2d.Vec2{X: 40.0, Y: 0.0})
	ground.CreateFixtureFromShape(edge, 0.0)

	left := makeBox(world, -0.5, 3.0, 0.5, 0.5)
	right := makeBox(world, 0.5, 3.0, 0.5, 0.5)

	jd := rigid2d.MakeWeldJointDef()
	jd.Initialize(left, right, rigid2d.Vec2{X: 0.0, Y: 3.0})
	world.CreateJoint(&jd)

	for i := 0; i < 240; i++ {
		world.Step(1.0/60.0, 8, 3)
		world.ClearForces()
	}

	gap := right.Position().Sub(left.Position()).Length()
	if math.Abs(gap-1.0) > 0.05 {
		t.Fatalf("weld separated: gap = %v, want ~1.0", gap)
	}
}
