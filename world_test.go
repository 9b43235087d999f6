package rigid2d_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/bytearena/rigid2d"
	"github.com/pmezard/go-difflib/difflib"
)

// countingListener tallies contact lifecycle events.
type countingListener struct {
	begin, end, preSolve, postSolve int
}

func (l *countingListener) BeginContact(c *rigid2d.Contact) { l.begin++ }
func (l *countingListener) EndContact(c *rigid2d.Contact)   { l.end++ }
func (l *countingListener) PreSolve(c *rigid2d.Contact, old rigid2d.Manifold) {
	l.preSolve++
}
func (l *countingListener) PostSolve(c *rigid2d.Contact, imp *rigid2d.ContactImpulse) {
	l.postSolve++
}

func makeGround(world *rigid2d.World) *rigid2d.Body {
	bd := rigid2d.MakeBodyDef()
	ground := world.CreateBody(&bd)

	shape := rigid2d.NewEdgeShape()
	shape.Set(rigid2d.Vec2{X: -40.0, Y: 0.0}, rigid2d.Vec2{X: 40.0, Y: 0.0})
	ground.CreateFixtureFromShape(shape, 0.0)
	return ground
}

func makeBox(world *rigid2d.World, x, y, hx, hy float64) *rigid2d.Body {
	bd := rigid2d.MakeBodyDef()
	bd.Type = rigid2d.DynamicBody
	bd.Position = rigid2d.Vec2{X: x, Y: y}
	body := world.CreateBody(&bd)

	body.CreateFixtureFromShape(rigid2d.NewBoxShape(hx, hy), 1.0)
	return body
}

func stepN(world *rigid2d.World, n int) {
	for i := 0; i < n; i++ {
		world.Step(1.0/60.0, 8, 3)
		world.ClearForces()
	}
}

// A free body integrated with symplectic Euler lands at
// y0 - g*dt²*n(n+1)/2 after n steps, just below the analytic half-g-t².
func TestFreeFall(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})

	box := makeBox(world, 0.0, 10.0, 0.5, 0.5)

	stepN(world, 60)

	expected := 10.0 - 10.0*(1.0/3600.0)*(60.0*61.0/2.0)
	y := box.Position().Y
	if math.Abs(y-expected) > 0.02 {
		t.Fatalf("free fall: y = %v, want %v ± 0.02", y, expected)
	}

	if math.Abs(y-5.0) > 0.2 {
		t.Fatalf("free fall diverged from analytic solution: y = %v", y)
	}
}

func TestStaticBodyUnmoved(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})
	ground := makeGround(world)
	makeBox(world, 0.0, 2.0, 0.5, 0.5)

	stepN(world, 120)

	if ground.Position() != (rigid2d.Vec2{}) || ground.Angle() != 0.0 {
		t.Fatalf("static body moved: pos=%v angle=%v", ground.Position(), ground.Angle())
	}
	if ground.LinearVelocity() != (rigid2d.Vec2{}) || ground.AngularVelocity() != 0.0 {
		t.Fatalf("static body has velocity")
	}
}

func TestRestingStackSleeps(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})
	makeGround(world)

	boxes := []*rigid2d.Body{
		makeBox(world, 0.0, 0.5, 0.5, 0.5),
		makeBox(world, 0.0, 1.5, 0.5, 0.5),
		makeBox(world, 0.0, 2.5, 0.5, 0.5),
	}

	stepN(world, 120)

	for i, b := range boxes {
		if b.IsAwake() {
			t.Errorf("box %d still awake after 120 steps", i)
		}
		want := 0.5 + float64(i)
		if math.Abs(b.Position().Y-want) > 0.03 {
			t.Errorf("box %d drifted: y = %v, want ~%v", i, b.Position().Y, want)
		}
		if math.Abs(b.Position().X) > 0.01 {
			t.Errorf("box %d slid sideways: x = %v", i, b.Position().X)
		}
	}
}

func TestMaxTranslationClamp(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{})

	box := makeBox(world, 0.0, 0.0, 0.5, 0.5)
	box.SetLinearVelocity(rigid2d.Vec2{X: 1000.0, Y: 0.0})

	x0 := box.Position().X
	world.Step(1.0/60.0, 8, 3)
	world.ClearForces()

	dx := box.Position().X - x0
	if dx > rigid2d.MaxTranslation+1e-9 {
		t.Fatalf("body translated %v in one step, cap is %v", dx, rigid2d.MaxTranslation)
	}
}

// A fast body must not pass through a thin static wall when continuous
// physics is on; with the TOI phase disabled it tunnels straight through.
func TestBulletThroughWall(t *testing.T) {
	makeScene := func(continuous bool) *rigid2d.Body {
		world := rigid2d.NewWorld(rigid2d.Vec2{})
		world.SetContinuousPhysics(continuous)

		// Thin static wall at x = 0.
		wallDef := rigid2d.MakeBodyDef()
		wall := world.CreateBody(&wallDef)
		wall.CreateFixtureFromShape(rigid2d.NewBoxShape(0.05, 5.0), 0.0)

		bd := rigid2d.MakeBodyDef()
		bd.Type = rigid2d.DynamicBody
		bd.Position = rigid2d.Vec2{X: -5.0, Y: 0.0}
		bd.Bullet = true
		bullet := world.CreateBody(&bd)
		bullet.CreateFixtureFromShape(rigid2d.NewBoxShape(0.1, 0.1), 1.0)
		bullet.SetLinearVelocity(rigid2d.Vec2{X: 200.0, Y: 0.0})

		stepN(world, 10)
		return bullet
	}

	tunneled := makeScene(false)
	if tunneled.Position().X < 1.0 {
		t.Fatalf("without CCD the bullet should tunnel; x = %v", tunneled.Position().X)
	}

	stopped := makeScene(true)
	if stopped.Position().X > 0.0 {
		t.Fatalf("with CCD the bullet passed the wall: x = %v", stopped.Position().X)
	}
}

func TestRevoluteMotor(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})

	groundDef := rigid2d.MakeBodyDef()
	ground := world.CreateBody(&groundDef)

	bd := rigid2d.MakeBodyDef()
	bd.Type = rigid2d.DynamicBody
	bd.Position = rigid2d.Vec2{X: 0.0, Y: 5.0}
	disk := world.CreateBody(&bd)
	disk.CreateFixtureFromShape(rigid2d.NewCircleShape(0.5), 1.0)

	jd := rigid2d.MakeRevoluteJointDef()
	jd.Initialize(ground, disk, disk.Position())
	jd.EnableMotor = true
	jd.MotorSpeed = math.Pi
	jd.MaxMotorTorque = 100.0
	joint := world.CreateJoint(&jd).(*rigid2d.RevoluteJoint)

	stepN(world, 240)

	want := 4.0 * math.Pi
	if math.Abs(joint.JointAngle()-want) > 0.05 {
		t.Fatalf("motor angle = %v, want %v ± 0.05", joint.JointAngle(), want)
	}
}

// Fixtures sharing a negative group index never collide: no contact is
// created and the bodies interpenetrate freely.
func TestNegativeGroupFilter(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{})
	listener := &countingListener{}
	world.SetContactListener(listener)

	mk := func(x, vx float64) *rigid2d.Body {
		bd := rigid2d.MakeBodyDef()
		bd.Type = rigid2d.DynamicBody
		bd.Position = rigid2d.Vec2{X: x, Y: 0.0}
		body := world.CreateBody(&bd)

		fd := rigid2d.MakeFixtureDef()
		fd.Shape = rigid2d.NewCircleShape(0.5)
		fd.Density = 1.0
		fd.Filter.GroupIndex = -1
		body.CreateFixture(&fd)

		body.SetLinearVelocity(rigid2d.Vec2{X: vx, Y: 0.0})
		return body
	}

	a := mk(-2.0, 2.0)
	b := mk(2.0, -2.0)

	stepN(world, 180)

	if listener.begin != 0 {
		t.Fatalf("BeginContact fired %d times for filtered pair", listener.begin)
	}
	if world.ContactCount() != 0 {
		t.Fatalf("contact created for filtered pair")
	}

	// They kept moving and crossed.
	if a.Position().X < 2.0 || b.Position().X > -2.0 {
		t.Fatalf("filtered bodies did not interpenetrate: a.x=%v b.x=%v", a.Position().X, b.Position().X)
	}
}

// A sensor reports begin/end but applies no collision response: the body
// passing through keeps exact free-fall velocity.
func TestSensor(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})
	listener := &countingListener{}
	world.SetContactListener(listener)

	sensorDef := rigid2d.MakeBodyDef()
	sensorBody := world.CreateBody(&sensorDef)
	fd := rigid2d.MakeFixtureDef()
	fd.Shape = rigid2d.NewBoxShape(0.5, 0.5)
	fd.IsSensor = true
	sensorBody.CreateFixture(&fd)

	bd := rigid2d.MakeBodyDef()
	bd.Type = rigid2d.DynamicBody
	bd.Position = rigid2d.Vec2{X: 0.0, Y: 3.0}
	circle := world.CreateBody(&bd)
	circle.CreateFixtureFromShape(rigid2d.NewCircleShape(0.25), 1.0)

	n := 240
	stepN(world, n)

	if listener.begin != 1 || listener.end != 1 {
		t.Fatalf("sensor events: begin=%d end=%d, want 1/1", listener.begin, listener.end)
	}

	// Only gravity acted.
	wantVY := -10.0 * float64(n) / 60.0
	if math.Abs(circle.LinearVelocity().Y-wantVY) > 1e-9 {
		t.Fatalf("sensor affected the body: vy = %v, want %v", circle.LinearVelocity().Y, wantVY)
	}
	if circle.Position().X != 0.0 {
		t.Fatalf("sensor deflected the body: x = %v", circle.Position().X)
	}
}

// buildMixedScene populates a world with a stack, a bouncing circle and a
// motorized hinge, for the determinism comparison.
func buildMixedScene() *rigid2d.World {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})
	makeGround(world)

	for i := 0; i < 4; i++ {
		makeBox(world, 0.1*float64(i%2), 0.5+float64(i), 0.5, 0.5)
	}

	bd := rigid2d.MakeBodyDef()
	bd.Type = rigid2d.DynamicBody
	bd.Position = rigid2d.Vec2{X: -3.0, Y: 6.0}
	ball := world.CreateBody(&bd)
	fd := rigid2d.MakeFixtureDef()
	fd.Shape = rigid2d.NewCircleShape(0.4)
	fd.Density = 2.0
	fd.Restitution = 0.6
	ball.CreateFixture(&fd)

	pivotDef := rigid2d.MakeBodyDef()
	pivot := world.CreateBody(&pivotDef)
	arm := makeBox(world, 4.0, 3.0, 1.0, 0.1)
	jd := rigid2d.MakeRevoluteJointDef()
	jd.Initialize(pivot, arm, rigid2d.Vec2{X: 3.0, Y: 3.0})
	jd.EnableMotor = true
	jd.MotorSpeed = 1.0
	jd.MaxMotorTorque = 50.0
	world.CreateJoint(&jd)

	return world
}

func dumpWorld(world *rigid2d.World) string {
	var sb strings.Builder
	i := 0
	for b := world.BodyList(); b != nil; b = b.Next() {
		p := b.Position()
		v := b.LinearVelocity()
		fmt.Fprintf(&sb, "body %02d pos=(%.17g %.17g) angle=%.17g vel=(%.17g %.17g) w=%.17g awake=%v\n",
			i, p.X, p.Y, b.Angle(), v.X, v.Y, b.AngularVelocity(), b.IsAwake())
		i++
	}
	return sb.String()
}

// Two runs with identical inputs must produce bitwise identical state.
func TestDeterminism(t *testing.T) {
	run := func() string {
		world := buildMixedScene()
		stepN(world, 300)
		return dumpWorld(world)
	}

	first := run()
	second := run()

	if first != second {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(first),
			B:        difflib.SplitLines(second),
			FromFile: "run1",
			ToFile:   "run2",
			Context:  2,
		}
		text, _ := difflib.GetUnifiedDiffString(diff)
		t.Fatalf("simulation is not deterministic:\n%s", text)
	}
}

func TestLockedWorldRejectsMutation(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})
	makeGround(world)
	makeBox(world, 0.0, 0.5, 0.5, 0.5)

	// A listener that tries to mutate the world mid-step.
	listener := &mutatingListener{world: world}
	world.SetContactListener(listener)

	stepN(world, 30)

	if listener.created != nil {
		t.Fatalf("CreateBody succeeded inside a callback")
	}
}

type mutatingListener struct {
	world   *rigid2d.World
	created *rigid2d.Body
	tried   bool
}

func (l *mutatingListener) BeginContact(c *rigid2d.Contact) {
	if l.tried {
		return
	}
	l.tried = true
	bd := rigid2d.MakeBodyDef()
	l.created = l.world.CreateBody(&bd)
}
func (l *mutatingListener) EndContact(c *rigid2d.Contact)                       {}
func (l *mutatingListener) PreSolve(c *rigid2d.Contact, old rigid2d.Manifold)   {}
func (l *mutatingListener) PostSolve(c *rigid2d.Contact, i *rigid2d.ContactImpulse) {}

func TestQueryAABBAndRayCast(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{})
	makeGround(world)
	box := makeBox(world, 0.0, 2.0, 0.5, 0.5)
	makeBox(world, 10.0, 2.0, 0.5, 0.5)

	// Proxies exist from CreateFixture on; the step registers the new contacts.
	world.Step(1.0/60.0, 8, 3)
	world.ClearForces()

	found := 0
	world.QueryAABB(func(f *rigid2d.Fixture) bool {
		if f.Body() == box {
			found++
		}
		return true
	}, rigid2d.AABB{
		LowerBound: rigid2d.Vec2{X: -1.0, Y: 1.0},
		UpperBound: rigid2d.Vec2{X: 1.0, Y: 3.0},
	})
	if found != 1 {
		t.Fatalf("AABB query found the box %d times, want 1", found)
	}

	var hit *rigid2d.Fixture
	var hitPoint rigid2d.Vec2
	world.RayCast(func(f *rigid2d.Fixture, point, normal rigid2d.Vec2, fraction float64) float64 {
		hit = f
		hitPoint = point
		return fraction
	}, rigid2d.Vec2{X: -5.0, Y: 2.0}, rigid2d.Vec2{X: 5.0, Y: 2.0})

	if hit == nil || hit.Body() != box {
		t.Fatalf("ray cast missed the box")
	}
	if math.Abs(hitPoint.X - -0.5) > 0.02 {
		t.Fatalf("ray hit at x=%v, want ~-0.5", hitPoint.X)
	}
}

func TestDestroyBodyCascades(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})
	makeGround(world)

	a := makeBox(world, 0.0, 0.5, 0.5, 0.5)
	b := makeBox(world, 0.0, 1.5, 0.5, 0.5)

	jd := rigid2d.MakeRevoluteJointDef()
	jd.Initialize(a, b, rigid2d.Vec2{X: 0.0, Y: 1.0})
	world.CreateJoint(&jd)

	stepN(world, 30)

	if world.JointCount() != 1 {
		t.Fatalf("joint count = %d", world.JointCount())
	}

	world.DestroyBody(a)

	if world.JointCount() != 0 {
		t.Fatalf("destroying the body did not destroy its joint")
	}
	if world.BodyCount() != 2 {
		t.Fatalf("body count = %d, want 2", world.BodyCount())
	}

	// The survivor still simulates.
	stepN(world, 30)
	if b.Position().Y > 1.5 {
		t.Fatalf("survivor did not fall")
	}
}
