package rigid2d

import (
	"math"
)

// MixFriction is the default friction mixing law: the geometric mean lets
// either fixture drive the friction to zero (anything slides on ice).
func MixFriction(friction1, friction2 float64) float64 {
	return math.Sqrt(friction1 * friction2)
}

// MixRestitution is the default restitution mixing law: the maximum lets
// anything bounce off an inelastic surface (a superball bounces on
// anything).
func MixRestitution(restitution1, restitution2 float64) float64 {
	if restitution1 > restitution2 {
		return restitution1
	}
	return restitution2
}

// ContactEdge connects bodies and contacts together in a contact graph
// where each body is a node and each contact is an edge. Each contact has
// two edges, one in each attached body's intrusive list, so constraint
// traversal from either body is O(degree).
type ContactEdge struct {
	Other   *Body    // the other body attached through this contact
	Contact *Contact
	Prev    *ContactEdge
	Next    *ContactEdge
}

// Contact flags.
const (
	// contactIsland marks the contact while crawling the constraint graph.
	contactIsland uint32 = 1 << iota

	// contactTouching is set while the shapes are touching.
	contactTouching

	// contactEnabled can be cleared by the user to disable the contact.
	contactEnabled

	// contactFilter requests re-filtering because a fixture filter changed.
	contactFilter

	// contactBulletHit is a reserved flag; no code sets or reads it.
	contactBulletHit

	// contactTOI marks a valid cached time of impact in toi.
	contactTOI
)

// evaluateFn refreshes a manifold for a specific shape type pair.
type evaluateFn func(manifold *Manifold, shapeA Shape, xfA Transform, indexA int, shapeB Shape, xfB Transform, indexB int)

type contactRegister struct {
	fn      evaluateFn
	primary bool
}

// collideRegistry dispatches narrow-phase collision by the two shape types.
// Secondary entries flip the pair so each routine only handles its
// canonical order.
var collideRegistry [shapeTypeCount][shapeTypeCount]contactRegister

func registerCollide(fn evaluateFn, typeA, typeB uint8) {
	collideRegistry[typeA][typeB] = contactRegister{fn: fn, primary: true}
	if typeA != typeB {
		collideRegistry[typeB][typeA] = contactRegister{fn: fn, primary: false}
	}
}

func init() {
	registerCollide(evaluateCircles, CircleShapeType, CircleShapeType)
	registerCollide(evaluatePolygonAndCircle, PolygonShapeType, CircleShapeType)
	registerCollide(evaluatePolygons, PolygonShapeType, PolygonShapeType)
	registerCollide(evaluateEdgeAndCircle, EdgeShapeType, CircleShapeType)
	registerCollide(evaluateEdgeAndPolygon, EdgeShapeType, PolygonShapeType)
	registerCollide(evaluateChainAndCircle, ChainShapeType, CircleShapeType)
	registerCollide(evaluateChainAndPolygon, ChainShapeType, PolygonShapeType)
}

func evaluateCircles(manifold *Manifold, shapeA Shape, xfA Transform, indexA int, shapeB Shape, xfB Transform, indexB int) {
	CollideCircles(manifold, shapeA.(*CircleShape), xfA, shapeB.(*CircleShape), xfB)
}

func evaluatePolygonAndCircle(manifold *Manifold, shapeA Shape, xfA Transform, indexA int, shapeB Shape, xfB Transform, indexB int) {
	CollidePolygonAndCircle(manifold, shapeA.(*PolygonShape), xfA, shapeB.(*CircleShape), xfB)
}

func evaluatePolygons(manifold *Manifold, shapeA Shape, xfA Transform, indexA int, shapeB Shape, xfB Transform, indexB int) {
	CollidePolygons(manifold, shapeA.(*PolygonShape), xfA, shapeB.(*PolygonShape), xfB)
}

func evaluateEdgeAndCircle(manifold *Manifold, shapeA Shape, xfA Transform, indexA int, shapeB Shape, xfB Transform, indexB int) {
	CollideEdgeAndCircle(manifold, shapeA.(*EdgeShape), xfA, shapeB.(*CircleShape), xfB)
}

func evaluateEdgeAndPolygon(manifold *Manifold, shapeA Shape, xfA Transform, indexA int, shapeB Shape, xfB Transform, indexB int) {
	CollideEdgeAndPolygon(manifold, shapeA.(*EdgeShape), xfA, shapeB.(*PolygonShape), xfB)
}

func evaluateChainAndCircle(manifold *Manifold, shapeA Shape, xfA Transform, indexA int, shapeB Shape, xfB Transform, indexB int) {
	chain := shapeA.(*ChainShape)
	var edge EdgeShape
	chain.ChildEdge(&edge, indexA)
	CollideEdgeAndCircle(manifold, &edge, xfA, shapeB.(*CircleShape), xfB)
}

func evaluateChainAndPolygon(manifold *Manifold, shapeA Shape, xfA Transform, indexA int, shapeB Shape, xfB Transform, indexB int) {
	chain := shapeA.(*ChainShape)
	var edge EdgeShape
	chain.ChildEdge(&edge, indexA)
	CollideEdgeAndPolygon(manifold, &edge, xfA, shapeB.(*PolygonShape), xfB)
}

// Contact manages the interaction of two fixtures. A contact exists for
// each overlapping broad-phase AABB pair (unless filtered), so a contact
// may exist that has no touching points.
type Contact struct {
	flags uint32

	// World contact list pointers.
	prev *Contact
	next *Contact

	// Nodes for connecting bodies.
	nodeA ContactEdge
	nodeB ContactEdge

	fixtureA *Fixture
	fixtureB *Fixture

	indexA int
	indexB int

	manifold Manifold

	toiCount     int
	toi          float64
	friction     float64
	restitution  float64
	tangentSpeed float64

	evaluate evaluateFn
}

// newContact builds a contact for a fixture pair, canonicalizing the order
// so that the registered routine sees its primary shape first.
func newContact(fixtureA *Fixture, indexA int, fixtureB *Fixture, indexB int) *Contact {
	typeA := fixtureA.ShapeType()
	typeB := fixtureB.ShapeType()

	assert(typeA < shapeTypeCount && typeB < shapeTypeCount)

	reg := collideRegistry[typeA][typeB]
	if reg.fn == nil {
		return nil
	}

	if !reg.primary {
		fixtureA, fixtureB = fixtureB, fixtureA
		indexA, indexB = indexB, indexA
	}

	c := &Contact{
		flags:    contactEnabled,
		fixtureA: fixtureA,
		fixtureB: fixtureB,
		indexA:   indexA,
		indexB:   indexB,
		evaluate: reg.fn,
	}

	c.friction = MixFriction(fixtureA.friction, fixtureB.friction)
	c.restitution = MixRestitution(fixtureA.restitution, fixtureB.restitution)

	return c
}

func (c *Contact) Manifold() *Manifold {
	return &c.manifold
}

// WorldManifold evaluates the manifold in world coordinates.
func (c *Contact) WorldManifold(worldManifold *WorldManifold) {
	bodyA := c.fixtureA.Body()
	bodyB := c.fixtureB.Body()
	worldManifold.Initialize(&c.manifold,
		bodyA.Transform(), c.fixtureA.Shape().Radius(),
		bodyB.Transform(), c.fixtureB.Shape().Radius())
}

func (c *Contact) IsTouching() bool {
	return c.flags&contactTouching != 0
}

// SetEnabled allows the user to disable a contact from PreSolve. The
// setting persists only for the current sub-step.
func (c *Contact) SetEnabled(flag bool) {
	if flag {
		c.flags |= contactEnabled
	} else {
		c.flags &^= contactEnabled
	}
}

func (c *Contact) IsEnabled() bool {
	return c.flags&contactEnabled != 0
}

func (c *Contact) Next() *Contact {
	return c.next
}

func (c *Contact) FixtureA() *Fixture {
	return c.fixtureA
}

func (c *Contact) ChildIndexA() int {
	return c.indexA
}

func (c *Contact) FixtureB() *Fixture {
	return c.fixtureB
}

func (c *Contact) ChildIndexB() int {
	return c.indexB
}

// SetFriction overrides the mixed friction. Persists until ResetFriction.
func (c *Contact) SetFriction(friction float64) {
	c.friction = friction
}

func (c *Contact) Friction() float64 {
	return c.friction
}

func (c *Contact) ResetFriction() {
	c.friction = MixFriction(c.fixtureA.friction, c.fixtureB.friction)
}

func (c *Contact) SetRestitution(restitution float64) {
	c.restitution = restitution
}

func (c *Contact) Restitution() float64 {
	return c.restitution
}

func (c *Contact) ResetRestitution() {
	c.restitution = MixRestitution(c.fixtureA.restitution, c.fixtureB.restitution)
}

// SetTangentSpeed sets a desired surface speed for conveyor belts, in
// meters per second.
func (c *Contact) SetTangentSpeed(speed float64) {
	c.tangentSpeed = speed
}

func (c *Contact) TangentSpeed() float64 {
	return c.tangentSpeed
}

// FlagForFiltering requests re-filtering at the next step where either body
// is awake.
func (c *Contact) FlagForFiltering() {
	c.flags |= contactFilter
}

// update refreshes the manifold and touching status, matching old contact
// ids to new ones so stored impulses warm start the solver, and fires the
// begin/end/pre-solve events. The fixture AABBs need not be overlapping or
// valid here.
func (c *Contact) update(listener ContactListener) {
	oldManifold := c.manifold

	// Re-enable this contact.
	c.flags |= contactEnabled

	touching := false
	wasTouching := c.flags&contactTouching != 0

	sensorA := c.fixtureA.IsSensor()
	sensorB := c.fixtureB.IsSensor()
	sensor := sensorA || sensorB

	bodyA := c.fixtureA.Body()
	bodyB := c.fixtureB.Body()
	xfA := bodyA.Transform()
	xfB := bodyB.Transform()

	if sensor {
		shapeA := c.fixtureA.Shape()
		shapeB := c.fixtureB.Shape()
		touching = TestOverlapShapes(shapeA, c.indexA, shapeB, c.indexB, xfA, xfB)

		// Sensors don't generate manifolds.
		c.manifold.PointCount = 0
	} else {
		c.evaluate(&c.manifold, c.fixtureA.Shape(), xfA, c.indexA, c.fixtureB.Shape(), xfB, c.indexB)
		touching = c.manifold.PointCount > 0

		// Match old contact ids to new contact ids and copy the stored
		// impulses.
		for i := 0; i < c.manifold.PointCount; i++ {
			mp2 := &c.manifold.Points[i]
			mp2.NormalImpulse = 0.0
			mp2.TangentImpulse = 0.0
			id2 := mp2.ID

			for j := 0; j < oldManifold.PointCount; j++ {
				mp1 := &oldManifold.Points[j]
				if mp1.ID.Key() == id2.Key() {
					mp2.NormalImpulse = mp1.NormalImpulse
					mp2.TangentImpulse = mp1.TangentImpulse
					break
				}
			}
		}

		if touching != wasTouching {
			bodyA.SetAwake(true)
			bodyB.SetAwake(true)
		}
	}

	if touching {
		c.flags |= contactTouching
	} else {
		c.flags &^= contactTouching
	}

	if !wasTouching && touching && listener != nil {
		listener.BeginContact(c)
	}

	if wasTouching && !touching && listener != nil {
		listener.EndContact(c)
	}

	if !sensor && touching && listener != nil {
		listener.PreSolve(c, oldManifold)
	}
}
