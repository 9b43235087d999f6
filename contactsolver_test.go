package rigid2d_test

import (
	"math"
	"testing"

	"github.com/bytearena/rigid2d"
)

// Contact impulses are equal and opposite, so the total momentum of a pair
// interacting only through contacts is conserved.
func TestContactImpulseSymmetry(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{})

	mk := func(x, vx float64) *rigid2d.Body {
		bd := rigid2d.MakeBodyDef()
		bd.Type = rigid2d.DynamicBody
		bd.Position = rigid2d.Vec2{X: x, Y: 0.0}
		body := world.CreateBody(&bd)
		body.CreateFixtureFromShape(rigid2d.NewBoxShape(0.5, 0.5), 1.0)
		body.SetLinearVelocity(rigid2d.Vec2{X: vx, Y: 0.0})
		return body
	}

	a := mk(-2.0, 5.0)
	b := mk(2.0, -5.0)

	momentum := func() float64 {
		return a.Mass()*a.LinearVelocity().X + b.Mass()*b.LinearVelocity().X
	}

	before := momentum()

	for i := 0; i < 120; i++ {
		world.Step(1.0/60.0, 8, 3)
		world.ClearForces()

		if math.Abs(momentum()-before) > 1e-6 {
			t.Fatalf("momentum drifted at step %d: %v -> %v", i, before, momentum())
		}
	}
}

// frictionConeListener records any post-solve point violating the Coulomb
// cone |tangent| <= mu * normal.
type frictionConeListener struct {
	mu         float64
	violations int
}

func (l *frictionConeListener) BeginContact(c *rigid2d.Contact)                     {}
func (l *frictionConeListener) EndContact(c *rigid2d.Contact)                       {}
func (l *frictionConeListener) PreSolve(c *rigid2d.Contact, old rigid2d.Manifold)   {}
func (l *frictionConeListener) PostSolve(c *rigid2d.Contact, imp *rigid2d.ContactImpulse) {
	for i := 0; i < imp.Count; i++ {
		// Tangent is clamped against the normal impulse from earlier in
		// the same iteration, so allow a small slack.
		if math.Abs(imp.TangentImpulses[i]) > l.mu*imp.NormalImpulses[i]+1e-3 {
			l.violations++
		}
	}
}

func TestFrictionConeBound(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})

	groundDef := rigid2d.MakeBodyDef()
	ground := world.CreateBody(&groundDef)
	gfd := rigid2d.MakeFixtureDef()
	edge := rigid2d.NewEdgeShape()
	edge.Set(rigid2d.Vec2{X: -40.0, Y: 0.0}, rigid2d.Vec2{X: 40.0, Y: 0.0})
	gfd.Shape = edge
	gfd.Friction = 0.4
	ground.CreateFixture(&gfd)

	bd := rigid2d.MakeBodyDef()
	bd.Type = rigid2d.DynamicBody
	bd.Position = rigid2d.Vec2{X: 0.0, Y: 0.5}
	slider := world.CreateBody(&bd)
	sfd := rigid2d.MakeFixtureDef()
	sfd.Shape = rigid2d.NewBoxShape(0.5, 0.5)
	sfd.Density = 1.0
	sfd.Friction = 0.4
	slider.CreateFixture(&sfd)
	slider.SetLinearVelocity(rigid2d.Vec2{X: 8.0, Y: 0.0})

	// The contact mixes friction geometrically.
	listener := &frictionConeListener{mu: rigid2d.MixFriction(0.4, 0.4)}
	world.SetContactListener(listener)

	for i := 0; i < 180; i++ {
		world.Step(1.0/60.0, 8, 3)
		world.ClearForces()
	}

	if listener.violations != 0 {
		t.Fatalf("%d contact points exceeded the friction cone", listener.violations)
	}

	// Friction must have slowed the slider.
	if slider.LinearVelocity().X > 0.5 {
		t.Fatalf("friction did not slow the slider: vx = %v", slider.LinearVelocity().X)
	}
}

// An impact below the velocity threshold is treated as inelastic even with
// full restitution, so a gently dropped box settles instead of bouncing
// forever.
func TestRestitutionThreshold(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})

	groundDef := rigid2d.MakeBodyDef()
	ground := world.CreateBody(&groundDef)
	edge := rigid2d.NewEdgeShape()
	edge.Set(rigid2d.Vec2{X: -40.0, Y: 0.0}, rigid2d.Vec2{X: 40.0, Y: 0.0})
	ground.CreateFixtureFromShape(edge, 0.0)

	bd := rigid2d.MakeBodyDef()
	bd.Type = rigid2d.DynamicBody
	bd.Position = rigid2d.Vec2{X: 0.0, Y: 0.51}
	box := world.CreateBody(&bd)
	fd := rigid2d.MakeFixtureDef()
	fd.Shape = rigid2d.NewBoxShape(0.5, 0.5)
	fd.Density = 1.0
	fd.Restitution = 1.0
	box.CreateFixture(&fd)

	for i := 0; i < 240; i++ {
		world.Step(1.0/60.0, 8, 3)
		world.ClearForces()
	}

	if box.IsAwake() {
		t.Fatalf("box with low-speed impact never came to rest; y=%v vy=%v",
			box.Position().Y, box.LinearVelocity().Y)
	}
}

// Warm starting must not change the converged result qualitatively: with it
// disabled a resting box still rests.
func TestWithoutWarmStarting(t *testing.T) {
	world := rigid2d.NewWorld(rigid2d.Vec2{X: 0.0, Y: -10.0})
	world.SetWarmStarting(false)

	groundDef := rigid2d.MakeBodyDef()
	ground := world.CreateBody(&groundDef)
	edge := rigid2d.NewEdgeShape()
	edge.Set(rigid2d.Vec2{X: -40.0, Y: 0.0}, rigid2d.Vec2{X: 40.0, Y: 0.0})
	ground.CreateFixtureFromShape(edge, 0.0)

	bd := rigid2d.MakeBodyDef()
	bd.Type = rigid2d.DynamicBody
	bd.Position = rigid2d.Vec2{X: 0.0, Y: 0.5}
	box := world.CreateBody(&bd)
	box.CreateFixtureFromShape(rigid2d.NewBoxShape(0.5, 0.5), 1.0)

	for i := 0; i < 120; i++ {
		world.Step(1.0/60.0, 8, 3)
		world.ClearForces()
	}

	if math.Abs(box.Position().Y-0.5) > 0.05 {
		t.Fatalf("box sank or bounced without warm starting: y = %v", box.Position().Y)
	}
}
