package rigid2d

// BodyType classifies a rigid body.
//
//	StaticBody: zero mass, zero velocity, may be manually moved
//	KinematicBody: zero mass, velocity set by user, moved by solver
//	DynamicBody: positive mass, velocity determined by forces, moved by solver
type BodyType uint8

const (
	StaticBody BodyType = iota
	KinematicBody
	DynamicBody
)

// BodyDef holds the data needed to construct a rigid body. Definitions can
// be reused; fixtures are added after construction.
type BodyDef struct {
	// Type of the body. A dynamic body that would have zero mass gets one
	// kilogram instead.
	Type BodyType

	// Position of the body origin in world coordinates. Avoid creating
	// every body at the origin, which piles up overlapping shapes.
	Position Vec2

	// Angle in radians.
	Angle float64

	// LinearVelocity of the body origin in world coordinates.
	LinearVelocity Vec2

	AngularVelocity float64

	// LinearDamping reduces linear velocity. Can exceed 1 but then becomes
	// sensitive to the time step. Units 1/time.
	LinearDamping float64

	// AngularDamping reduces angular velocity. Units 1/time.
	AngularDamping float64

	// AllowSleep permits this body to fall asleep. Disallowing it costs CPU.
	AllowSleep bool

	// Awake controls whether the body starts awake.
	Awake bool

	// FixedRotation prevents rotation. Useful for characters.
	FixedRotation bool

	// Bullet enables continuous collision against other dynamic bodies.
	// All bodies are CCD'd against static and kinematic bodies regardless.
	// Use sparingly; it increases processing time.
	Bullet bool

	// Enabled controls whether the body starts simulating.
	Enabled bool

	// UserData is opaque application data.
	UserData interface{}

	// GravityScale scales the gravity applied to this body.
	GravityScale float64
}

func MakeBodyDef() BodyDef {
	return BodyDef{
		Type:         StaticBody,
		AllowSleep:   true,
		Awake:        true,
		Enabled:      true,
		GravityScale: 1.0,
	}
}

// Body is a rigid frame. Create through World.CreateBody.
type Body struct {
	bodyType BodyType

	islandFlag    bool
	awake         bool
	autoSleep     bool
	bullet        bool
	fixedRotation bool
	enabled       bool

	islandIndex int

	xf    Transform // body origin transform
	sweep Sweep     // swept motion for CCD

	linearVelocity  Vec2
	angularVelocity float64

	force  Vec2
	torque float64

	world *World
	prev  *Body
	next  *Body

	fixtureList  *Fixture
	fixtureCount int

	jointList   *JointEdge
	contactList *ContactEdge

	mass, invMass float64

	// Rotational inertia about the center of mass, and its inverse.
	i, invI float64

	linearDamping  float64
	angularDamping float64
	gravityScale   float64

	sleepTime float64

	userData interface{}
}

func newBody(bd *BodyDef, world *World) *Body {
	assert(bd.Position.IsValid())
	assert(bd.LinearVelocity.IsValid())
	assert(IsValidFloat(bd.Angle))
	assert(IsValidFloat(bd.AngularVelocity))
	assert(IsValidFloat(bd.AngularDamping) && bd.AngularDamping >= 0.0)
	assert(IsValidFloat(bd.LinearDamping) && bd.LinearDamping >= 0.0)

	body := &Body{
		bullet:        bd.Bullet,
		fixedRotation: bd.FixedRotation,
		autoSleep:     bd.AllowSleep,
		awake:         bd.Awake,
		enabled:       bd.Enabled,
		world:         world,
		bodyType:      bd.Type,

		linearVelocity:  bd.LinearVelocity,
		angularVelocity: bd.AngularVelocity,

		linearDamping:  bd.LinearDamping,
		angularDamping: bd.AngularDamping,
		gravityScale:   bd.GravityScale,

		userData: bd.UserData,
	}

	body.xf.Set(bd.Position, bd.Angle)

	body.sweep.LocalCenter.SetZero()
	body.sweep.C0 = body.xf.P
	body.sweep.C = body.xf.P
	body.sweep.A0 = bd.Angle
	body.sweep.A = bd.Angle
	body.sweep.Alpha0 = 0.0

	if body.bodyType == DynamicBody {
		body.mass = 1.0
		body.invMass = 1.0
	}

	return body
}

func (body *Body) Type() BodyType {
	return body.bodyType
}

// SetType changes the body type, resetting mass data and destroying all
// contacts. No-op while the world is locked.
func (body *Body) SetType(bodyType BodyType) {
	if body.world.IsLocked() {
		body.world.report("SetType called on a locked world")
		return
	}

	if body.bodyType == bodyType {
		return
	}

	body.bodyType = bodyType

	body.ResetMassData()

	if body.bodyType == StaticBody {
		body.linearVelocity.SetZero()
		body.angularVelocity = 0.0
		body.sweep.A0 = body.sweep.A
		body.sweep.C0 = body.sweep.C
		body.synchronizeFixtures()
	}

	body.SetAwake(true)

	body.force.SetZero()
	body.torque = 0.0

	// Delete the attached contacts.
	ce := body.contactList
	for ce != nil {
		ce0 := ce
		ce = ce.Next
		body.world.contactManager.Destroy(ce0.Contact)
	}
	body.contactList = nil

	// Touch the proxies so that new contacts are created where appropriate.
	broadPhase := body.world.contactManager.broadPhase
	for f := body.fixtureList; f != nil; f = f.next {
		for i := 0; i < f.proxyCount; i++ {
			broadPhase.TouchProxy(f.proxies[i].proxyID)
		}
	}
}

func (body *Body) Transform() Transform {
	return body.xf
}

// SetTransform moves the body origin and angle, teleporting the collision
// shapes. Contacts update on the next step. No-op while locked.
func (body *Body) SetTransform(position Vec2, angle float64) {
	if body.world.IsLocked() {
		body.world.report("SetTransform called on a locked world")
		return
	}

	body.xf.Set(position, angle)

	body.sweep.C = body.xf.Apply(body.sweep.LocalCenter)
	body.sweep.A = angle
	body.sweep.C0 = body.sweep.C
	body.sweep.A0 = angle

	broadPhase := body.world.contactManager.broadPhase
	for f := body.fixtureList; f != nil; f = f.next {
		f.synchronize(broadPhase, body.xf, body.xf)
	}
}

func (body *Body) Position() Vec2 {
	return body.xf.P
}

func (body *Body) Angle() float64 {
	return body.sweep.A
}

// WorldCenter returns the center of mass in world coordinates.
func (body *Body) WorldCenter() Vec2 {
	return body.sweep.C
}

// LocalCenter returns the center of mass in body coordinates.
func (body *Body) LocalCenter() Vec2 {
	return body.sweep.LocalCenter
}

func (body *Body) SetLinearVelocity(v Vec2) {
	if body.bodyType == StaticBody {
		return
	}

	if v.Dot(v) > 0.0 {
		body.SetAwake(true)
	}

	body.linearVelocity = v
}

func (body *Body) LinearVelocity() Vec2 {
	return body.linearVelocity
}

func (body *Body) SetAngularVelocity(w float64) {
	if body.bodyType == StaticBody {
		return
	}

	if w*w > 0.0 {
		body.SetAwake(true)
	}

	body.angularVelocity = w
}

func (body *Body) AngularVelocity() float64 {
	return body.angularVelocity
}

func (body *Body) Mass() float64 {
	return body.mass
}

// Inertia returns the rotational inertia about the body origin.
func (body *Body) Inertia() float64 {
	return body.i + body.mass*body.sweep.LocalCenter.Dot(body.sweep.LocalCenter)
}

func (body *Body) GetMassData(data *MassData) {
	data.Mass = body.mass
	data.I = body.Inertia()
	data.Center = body.sweep.LocalCenter
}

// SetMassData overrides the mass properties computed from the fixtures.
// Non-positive mass becomes 1 kg. No-op for non-dynamic bodies or while
// locked.
func (body *Body) SetMassData(massData *MassData) {
	if body.world.IsLocked() {
		body.world.report("SetMassData called on a locked world")
		return
	}

	if body.bodyType != DynamicBody {
		return
	}

	body.invMass = 0.0
	body.i = 0.0
	body.invI = 0.0

	body.mass = massData.Mass
	if body.mass <= 0.0 {
		body.mass = 1.0
	}
	body.invMass = 1.0 / body.mass

	if massData.I > 0.0 && !body.fixedRotation {
		body.i = massData.I - body.mass*massData.Center.Dot(massData.Center)
		assert(body.i > 0.0)
		body.invI = 1.0 / body.i
	}

	// Move the center of mass.
	oldCenter := body.sweep.C
	body.sweep.LocalCenter = massData.Center
	body.sweep.C0 = body.xf.Apply(body.sweep.LocalCenter)
	body.sweep.C = body.sweep.C0

	// Update the center of mass velocity.
	body.linearVelocity = body.linearVelocity.Add(
		CrossSV(body.angularVelocity, body.sweep.C.Sub(oldCenter)))
}

// ResetMassData recomputes mass, center and inertia from the fixtures.
// Static and kinematic bodies get zero mass; a massless dynamic body gets
// one kilogram and zero rotational inertia.
func (body *Body) ResetMassData() {
	body.mass = 0.0
	body.invMass = 0.0
	body.i = 0.0
	body.invI = 0.0
	body.sweep.LocalCenter.SetZero()

	if body.bodyType == StaticBody || body.bodyType == KinematicBody {
		body.sweep.C0 = body.xf.P
		body.sweep.C = body.xf.P
		body.sweep.A0 = body.sweep.A
		return
	}

	assert(body.bodyType == DynamicBody)

	// Accumulate mass over all fixtures.
	var localCenter Vec2
	for f := body.fixtureList; f != nil; f = f.next {
		if f.density == 0.0 {
			continue
		}

		var massData MassData
		f.MassData(&massData)
		body.mass += massData.Mass
		localCenter = localCenter.Add(massData.Center.Mul(massData.Mass))
		body.i += massData.I
	}

	if body.mass > 0.0 {
		body.invMass = 1.0 / body.mass
		localCenter = localCenter.Mul(body.invMass)
	} else {
		// Force all dynamic bodies to have positive mass.
		body.mass = 1.0
		body.invMass = 1.0
	}

	if body.i > 0.0 && !body.fixedRotation {
		// Center the inertia about the center of mass.
		body.i -= body.mass * localCenter.Dot(localCenter)
		assert(body.i > 0.0)
		body.invI = 1.0 / body.i
	} else {
		body.i = 0.0
		body.invI = 0.0
	}

	// Move the center of mass.
	oldCenter := body.sweep.C
	body.sweep.LocalCenter = localCenter
	body.sweep.C0 = body.xf.Apply(body.sweep.LocalCenter)
	body.sweep.C = body.sweep.C0

	// Update the center of mass velocity.
	body.linearVelocity = body.linearVelocity.Add(
		CrossSV(body.angularVelocity, body.sweep.C.Sub(oldCenter)))
}

// WorldPoint maps a point from body to world coordinates.
func (body *Body) WorldPoint(localPoint Vec2) Vec2 {
	return body.xf.Apply(localPoint)
}

// WorldVector maps a vector from body to world coordinates.
func (body *Body) WorldVector(localVector Vec2) Vec2 {
	return body.xf.Q.Apply(localVector)
}

// LocalPoint maps a world point into body coordinates.
func (body *Body) LocalPoint(worldPoint Vec2) Vec2 {
	return body.xf.ApplyT(worldPoint)
}

// LocalVector maps a world vector into body coordinates.
func (body *Body) LocalVector(worldVector Vec2) Vec2 {
	return body.xf.Q.ApplyT(worldVector)
}

// LinearVelocityFromWorldPoint returns the velocity of a world point
// attached to the body.
func (body *Body) LinearVelocityFromWorldPoint(worldPoint Vec2) Vec2 {
	return body.linearVelocity.Add(
		CrossSV(body.angularVelocity, worldPoint.Sub(body.sweep.C)))
}

// LinearVelocityFromLocalPoint returns the velocity of a body-local point.
func (body *Body) LinearVelocityFromLocalPoint(localPoint Vec2) Vec2 {
	return body.LinearVelocityFromWorldPoint(body.WorldPoint(localPoint))
}

func (body *Body) LinearDamping() float64 {
	return body.linearDamping
}

func (body *Body) SetLinearDamping(linearDamping float64) {
	body.linearDamping = linearDamping
}

func (body *Body) AngularDamping() float64 {
	return body.angularDamping
}

func (body *Body) SetAngularDamping(angularDamping float64) {
	body.angularDamping = angularDamping
}

func (body *Body) GravityScale() float64 {
	return body.gravityScale
}

func (body *Body) SetGravityScale(scale float64) {
	body.gravityScale = scale
}

func (body *Body) SetBullet(flag bool) {
	body.bullet = flag
}

func (body *Body) IsBullet() bool {
	return body.bullet
}

// SetAwake wakes or sleeps the body. Sleeping zeroes velocity, force and
// torque.
func (body *Body) SetAwake(flag bool) {
	if flag {
		body.awake = true
		body.sleepTime = 0.0
	} else {
		body.awake = false
		body.sleepTime = 0.0
		body.linearVelocity.SetZero()
		body.angularVelocity = 0.0
		body.force.SetZero()
		body.torque = 0.0
	}
}

func (body *Body) IsAwake() bool {
	return body.awake
}

func (body *Body) IsEnabled() bool {
	return body.enabled
}

// SetEnabled disables or re-enables the body. A disabled body keeps its
// fixtures but has no broad-phase proxies and participates in nothing;
// re-enabling recreates the proxies, which costs about as much as creation.
// No-op while locked.
func (body *Body) SetEnabled(flag bool) {
	if body.world.IsLocked() {
		body.world.report("SetEnabled called on a locked world")
		return
	}

	if flag == body.enabled {
		return
	}

	broadPhase := body.world.contactManager.broadPhase

	if flag {
		body.enabled = true

		// Create all proxies. Contacts are created the next step.
		for f := body.fixtureList; f != nil; f = f.next {
			f.createProxies(broadPhase, body.xf)
		}
	} else {
		body.enabled = false

		// Destroy all proxies and attached contacts.
		for f := body.fixtureList; f != nil; f = f.next {
			f.destroyProxies(broadPhase)
		}

		ce := body.contactList
		for ce != nil {
			ce0 := ce
			ce = ce.Next
			body.world.contactManager.Destroy(ce0.Contact)
		}
		body.contactList = nil
	}
}

func (body *Body) IsFixedRotation() bool {
	return body.fixedRotation
}

// SetFixedRotation locks or unlocks rotation, zeroing angular velocity and
// resetting mass data.
func (body *Body) SetFixedRotation(flag bool) {
	if body.fixedRotation == flag {
		return
	}

	body.fixedRotation = flag
	body.angularVelocity = 0.0

	body.ResetMassData()
}

// SetSleepingAllowed controls whether the body can ever sleep. Disallowing
// wakes it.
func (body *Body) SetSleepingAllowed(flag bool) {
	if flag {
		body.autoSleep = true
	} else {
		body.autoSleep = false
		body.SetAwake(true)
	}
}

func (body *Body) IsSleepingAllowed() bool {
	return body.autoSleep
}

// CreateFixture binds a shape to the body. Mass data resets if the density
// is positive. Returns nil while the world is locked.
func (body *Body) CreateFixture(def *FixtureDef) *Fixture {
	if body.world.IsLocked() {
		body.world.report("CreateFixture called on a locked world")
		return nil
	}

	fixture := newFixture(body, def)

	if body.enabled {
		fixture.createProxies(body.world.contactManager.broadPhase, body.xf)
	}

	fixture.next = body.fixtureList
	body.fixtureList = fixture
	body.fixtureCount++

	if fixture.density > 0.0 {
		body.ResetMassData()
	}

	// New contacts are created at the beginning of the next step.
	body.world.newFixture = true

	return fixture
}

// CreateFixtureFromShape is shorthand for a default fixture definition with
// the given shape and density.
func (body *Body) CreateFixtureFromShape(shape Shape, density float64) *Fixture {
	def := MakeFixtureDef()
	def.Shape = shape
	def.Density = density
	return body.CreateFixture(&def)
}

// DestroyFixture removes a fixture, destroying its proxies and all contacts
// associated with it, and resets mass data. No-op while locked.
func (body *Body) DestroyFixture(fixture *Fixture) {
	if fixture == nil {
		return
	}

	if body.world.IsLocked() {
		body.world.report("DestroyFixture called on a locked world")
		return
	}

	assert(fixture.body == body)

	// Remove from the body's singly linked list.
	assert(body.fixtureCount > 0)
	node := &body.fixtureList
	found := false
	for *node != nil {
		if *node == fixture {
			*node = fixture.next
			found = true
			break
		}
		node = &(*node).next
	}

	// Removing a fixture that is not attached to this body.
	assert(found)

	// Destroy the contacts associated with this fixture.
	edge := body.contactList
	for edge != nil {
		c := edge.Contact
		edge = edge.Next

		if fixture == c.FixtureA() || fixture == c.FixtureB() {
			body.world.contactManager.Destroy(c)
		}
	}

	if body.enabled {
		fixture.destroyProxies(body.world.contactManager.broadPhase)
	}

	fixture.body = nil
	fixture.next = nil
	fixture.destroy()

	body.fixtureCount--

	body.ResetMassData()
}

// ApplyForce accumulates a force at a world point, waking the body if
// requested. Sleeping bodies accumulate nothing.
func (body *Body) ApplyForce(force Vec2, point Vec2, wake bool) {
	if body.bodyType != DynamicBody {
		return
	}

	if wake && !body.awake {
		body.SetAwake(true)
	}

	if body.awake {
		body.force = body.force.Add(force)
		body.torque += point.Sub(body.sweep.C).Cross(force)
	}
}

// ApplyForceToCenter accumulates a force at the center of mass.
func (body *Body) ApplyForceToCenter(force Vec2, wake bool) {
	if body.bodyType != DynamicBody {
		return
	}

	if wake && !body.awake {
		body.SetAwake(true)
	}

	if body.awake {
		body.force = body.force.Add(force)
	}
}

func (body *Body) ApplyTorque(torque float64, wake bool) {
	if body.bodyType != DynamicBody {
		return
	}

	if wake && !body.awake {
		body.SetAwake(true)
	}

	if body.awake {
		body.torque += torque
	}
}

// ApplyLinearImpulse changes the velocity immediately, including the
// angular velocity if the point is off center.
func (body *Body) ApplyLinearImpulse(impulse Vec2, point Vec2, wake bool) {
	if body.bodyType != DynamicBody {
		return
	}

	if wake && !body.awake {
		body.SetAwake(true)
	}

	if body.awake {
		body.linearVelocity = body.linearVelocity.Add(impulse.Mul(body.invMass))
		body.angularVelocity += body.invI * point.Sub(body.sweep.C).Cross(impulse)
	}
}

func (body *Body) ApplyLinearImpulseToCenter(impulse Vec2, wake bool) {
	if body.bodyType != DynamicBody {
		return
	}

	if wake && !body.awake {
		body.SetAwake(true)
	}

	if body.awake {
		body.linearVelocity = body.linearVelocity.Add(impulse.Mul(body.invMass))
	}
}

func (body *Body) ApplyAngularImpulse(impulse float64, wake bool) {
	if body.bodyType != DynamicBody {
		return
	}

	if wake && !body.awake {
		body.SetAwake(true)
	}

	if body.awake {
		body.angularVelocity += body.invI * impulse
	}
}

func (body *Body) FixtureList() *Fixture {
	return body.fixtureList
}

func (body *Body) JointList() *JointEdge {
	return body.jointList
}

func (body *Body) ContactList() *ContactEdge {
	return body.contactList
}

func (body *Body) Next() *Body {
	return body.next
}

func (body *Body) UserData() interface{} {
	return body.userData
}

func (body *Body) SetUserData(data interface{}) {
	body.userData = data
}

func (body *Body) World() *World {
	return body.world
}

// synchronizeTransform recovers the origin transform from the sweep end
// state.
func (body *Body) synchronizeTransform() {
	body.xf.Q.Set(body.sweep.A)
	body.xf.P = body.sweep.C.Sub(body.xf.Q.Apply(body.sweep.LocalCenter))
}

// synchronizeFixtures moves the broad-phase proxies to cover the sweep.
func (body *Body) synchronizeFixtures() {
	var xf1 Transform
	xf1.Q.Set(body.sweep.A0)
	xf1.P = body.sweep.C0.Sub(xf1.Q.Apply(body.sweep.LocalCenter))

	broadPhase := body.world.contactManager.broadPhase
	for f := body.fixtureList; f != nil; f = f.next {
		f.synchronize(broadPhase, xf1, body.xf)
	}
}

// advance moves the body to a new safe time. Does not sync the broad-phase.
func (body *Body) advance(alpha float64) {
	body.sweep.Advance(alpha)
	body.sweep.C = body.sweep.C0
	body.sweep.A = body.sweep.A0
	body.synchronizeTransform()
}

// shouldCollide applies the hard collision rules: at least one body must be
// dynamic, and no connecting joint may veto collision.
func (body *Body) shouldCollide(other *Body) bool {
	if body.bodyType != DynamicBody && other.bodyType != DynamicBody {
		return false
	}

	for jn := body.jointList; jn != nil; jn = jn.Next {
		if jn.Other == other && !jn.Joint.CollideConnected() {
			return false
		}
	}

	return true
}
