package rigid2d

// Filter holds contact filtering data. Non-zero group filtering always wins
// against the mask bits: a shared negative group never collides, a shared
// positive group always collides.
type Filter struct {
	// CategoryBits classify this fixture. Normally one bit is set.
	CategoryBits uint16

	// MaskBits state the categories this fixture accepts for collision.
	MaskBits uint16

	// GroupIndex groups fixtures that should never (negative) or always
	// (positive) collide. Zero means no group.
	GroupIndex int16
}

func DefaultFilter() Filter {
	return Filter{
		CategoryBits: 0x0001,
		MaskBits:     0xFFFF,
		GroupIndex:   0,
	}
}

// FixtureDef describes a fixture to create. Definitions are value types and
// can be reused; the shape is cloned on creation.
type FixtureDef struct {
	// Shape to bind; must be set.
	Shape Shape

	// UserData is opaque application data.
	UserData interface{}

	// Friction coefficient, usually in [0,1].
	Friction float64

	// Restitution (elasticity), usually in [0,1].
	Restitution float64

	// Density in kg/m².
	Density float64

	// IsSensor makes the fixture collect contact information without ever
	// generating a collision response.
	IsSensor bool

	Filter Filter
}

func MakeFixtureDef() FixtureDef {
	return FixtureDef{
		Friction: 0.2,
		Filter:   DefaultFilter(),
	}
}

// fixtureProxy connects one child shape to the broad-phase.
type fixtureProxy struct {
	aabb       AABB
	fixture    *Fixture
	childIndex int
	proxyID    int
}

// Fixture binds a shape to a body for collision detection, carrying the
// non-geometric data: friction, restitution, density, filter, sensor flag.
// A fixture belongs to exactly one body and dies with it; fixtures cannot
// be reused across bodies.
type Fixture struct {
	density float64

	next *Fixture
	body *Body

	shape Shape

	friction    float64
	restitution float64

	proxies    []fixtureProxy
	proxyCount int

	filter Filter

	isSensor bool

	userData interface{}
}

// ShapeType returns the type of the bound shape.
func (fix *Fixture) ShapeType() uint8 {
	return fix.shape.Type()
}

func (fix *Fixture) Shape() Shape {
	return fix.shape
}

func (fix *Fixture) IsSensor() bool {
	return fix.isSensor
}

// SetSensor flips the sensor flag and wakes the body so contacts refresh.
func (fix *Fixture) SetSensor(sensor bool) {
	if sensor != fix.isSensor {
		fix.body.SetAwake(true)
		fix.isSensor = sensor
	}
}

func (fix *Fixture) FilterData() Filter {
	return fix.filter
}

// SetFilterData installs a new filter and refilters existing contacts.
func (fix *Fixture) SetFilterData(filter Filter) {
	fix.filter = filter
	fix.Refilter()
}

// Refilter flags the fixture's contacts for re-evaluation and touches its
// proxies so new pairs may be created.
func (fix *Fixture) Refilter() {
	if fix.body == nil {
		return
	}

	for edge := fix.body.ContactList(); edge != nil; edge = edge.Next {
		contact := edge.Contact
		if contact.FixtureA() == fix || contact.FixtureB() == fix {
			contact.FlagForFiltering()
		}
	}

	world := fix.body.World()
	if world == nil {
		return
	}

	broadPhase := world.contactManager.broadPhase
	for i := 0; i < fix.proxyCount; i++ {
		broadPhase.TouchProxy(fix.proxies[i].proxyID)
	}
}

func (fix *Fixture) UserData() interface{} {
	return fix.userData
}

func (fix *Fixture) SetUserData(data interface{}) {
	fix.userData = data
}

func (fix *Fixture) Body() *Body {
	return fix.body
}

func (fix *Fixture) Next() *Fixture {
	return fix.next
}

// SetDensity stores a new density; call Body.ResetMassData for it to take
// effect.
func (fix *Fixture) SetDensity(density float64) {
	assert(IsValidFloat(density) && density >= 0.0)
	fix.density = density
}

func (fix *Fixture) Density() float64 {
	return fix.density
}

func (fix *Fixture) Friction() float64 {
	return fix.friction
}

// SetFriction applies to new contact manifolds only; existing contacts keep
// their mixed value until reset.
func (fix *Fixture) SetFriction(friction float64) {
	fix.friction = friction
}

func (fix *Fixture) Restitution() float64 {
	return fix.restitution
}

func (fix *Fixture) SetRestitution(restitution float64) {
	fix.restitution = restitution
}

// TestPoint tests a world point for containment in the fixture's shape.
func (fix *Fixture) TestPoint(p Vec2) bool {
	return fix.shape.TestPoint(fix.body.Transform(), p)
}

// RayCast casts a ray against a child shape.
func (fix *Fixture) RayCast(output *RayCastOutput, input RayCastInput, childIndex int) bool {
	return fix.shape.RayCast(output, input, fix.body.Transform(), childIndex)
}

// MassData computes the mass properties at the fixture's density.
func (fix *Fixture) MassData(massData *MassData) {
	fix.shape.ComputeMass(massData, fix.density)
}

// AABB returns the broad-phase box of a child, which covers the swept shape.
// It is not fattened; the fattened copy lives in the broad-phase tree.
func (fix *Fixture) AABB(childIndex int) AABB {
	assert(0 <= childIndex && childIndex < fix.proxyCount)
	return fix.proxies[childIndex].aabb
}

func newFixture(body *Body, def *FixtureDef) *Fixture {
	fix := &Fixture{
		userData:    def.UserData,
		friction:    def.Friction,
		restitution: def.Restitution,
		body:        body,
		filter:      def.Filter,
		isSensor:    def.IsSensor,
		shape:       def.Shape.Clone(),
		density:     def.Density,
	}

	// Reserve proxy space; chains have one proxy per child edge.
	childCount := fix.shape.ChildCount()
	fix.proxies = make([]fixtureProxy, childCount)
	for i := 0; i < childCount; i++ {
		fix.proxies[i].proxyID = nullProxy
	}

	return fix
}

func (fix *Fixture) destroy() {
	// Proxies must be destroyed first.
	assert(fix.proxyCount == 0)

	fix.proxies = nil
	fix.shape = nil
}

func (fix *Fixture) createProxies(broadPhase *BroadPhase, xf Transform) {
	assert(fix.proxyCount == 0)

	fix.proxyCount = fix.shape.ChildCount()

	for i := 0; i < fix.proxyCount; i++ {
		proxy := &fix.proxies[i]
		fix.shape.ComputeAABB(&proxy.aabb, xf, i)
		proxy.proxyID = broadPhase.CreateProxy(proxy.aabb, proxy)
		proxy.fixture = fix
		proxy.childIndex = i
	}
}

func (fix *Fixture) destroyProxies(broadPhase *BroadPhase) {
	for i := 0; i < fix.proxyCount; i++ {
		proxy := &fix.proxies[i]
		broadPhase.DestroyProxy(proxy.proxyID)
		proxy.proxyID = nullProxy
	}

	fix.proxyCount = 0
}

// synchronize moves the proxies to cover the swept shape between two body
// transforms. The union may miss some rotation effect.
func (fix *Fixture) synchronize(broadPhase *BroadPhase, transform1, transform2 Transform) {
	if fix.proxyCount == 0 {
		return
	}

	for i := 0; i < fix.proxyCount; i++ {
		proxy := &fix.proxies[i]

		var aabb1, aabb2 AABB
		fix.shape.ComputeAABB(&aabb1, transform1, proxy.childIndex)
		fix.shape.ComputeAABB(&aabb2, transform2, proxy.childIndex)

		proxy.aabb.CombineTwo(aabb1, aabb2)

		displacement := transform2.P.Sub(transform1.P)
		broadPhase.MoveProxy(proxy.proxyID, proxy.aabb, displacement)
	}
}
