package rigid2d

import (
	"log"
	"math"
)

// World manages all physics entities, the dynamic simulation, and
// asynchronous queries. It owns bodies and joints; the contact manager owns
// contacts; islands borrow without owning.
type World struct {
	contactManager *ContactManager

	bodyList  *Body
	jointList Joint

	bodyCount  int
	jointCount int

	gravity    Vec2
	allowSleep bool

	destructionListener DestructionListener

	// newFixture requests a broad-phase pair pass at the start of the next
	// step; locked guards against re-entrant mutation from listener
	// callbacks; clearForcesAuto clears accumulated forces after each step.
	newFixture      bool
	locked          bool
	clearForcesAuto bool

	// invDT0 is the inverse time step of the previous step, used to scale
	// warm-start impulses under a variable time step.
	invDT0 float64

	// Solver debugging switches.
	warmStarting      bool
	continuousPhysics bool
	subStepping       bool

	stepComplete bool

	logger *log.Logger

	profile Profile
}

// NewWorld constructs a world with the given gravity vector.
func NewWorld(gravity Vec2) *World {
	return &World{
		contactManager:    NewContactManager(),
		gravity:           gravity,
		allowSleep:        true,
		warmStarting:      true,
		continuousPhysics: true,
		stepComplete:      true,
		clearForcesAuto:   false,
	}
}

// report logs an invalid-state error through the configured logger, or the
// standard logger when none is set.
func (world *World) report(msg string) {
	if world.logger != nil {
		world.logger.Printf("rigid2d: %s", msg)
		return
	}
	log.Printf("rigid2d: %s", msg)
}

// SetLogger directs invalid-state reports to the given logger.
func (world *World) SetLogger(logger *log.Logger) {
	world.logger = logger
}

// BodyList returns the head of the world body list.
func (world *World) BodyList() *Body {
	return world.bodyList
}

// JointList returns the head of the world joint list.
func (world *World) JointList() Joint {
	return world.jointList
}

// ContactList returns the head of the world contact list. Contacts come and
// go as bodies move, so do not retain the pointers.
func (world *World) ContactList() *Contact {
	return world.contactManager.ContactList()
}

func (world *World) BodyCount() int {
	return world.bodyCount
}

func (world *World) JointCount() int {
	return world.jointCount
}

func (world *World) ContactCount() int {
	return world.contactManager.ContactCount()
}

func (world *World) SetGravity(gravity Vec2) {
	world.gravity = gravity
}

func (world *World) Gravity() Vec2 {
	return world.gravity
}

// IsLocked reports whether the world is mid-step. All structural mutation
// fails while locked.
func (world *World) IsLocked() bool {
	return world.locked
}

// SetAutoClearForces controls automatic force clearing after each step.
// When off (the default), call ClearForces after stepping, which permits a
// series of sub-steps sharing one force application.
func (world *World) SetAutoClearForces(flag bool) {
	world.clearForcesAuto = flag
}

func (world *World) AutoClearForces() bool {
	return world.clearForcesAuto
}

func (world *World) ContactManager() *ContactManager {
	return world.contactManager
}

func (world *World) Profile() Profile {
	return world.profile
}

func (world *World) SetDestructionListener(listener DestructionListener) {
	world.destructionListener = listener
}

// SetContactFilter installs a filter for fine-grained collision control.
func (world *World) SetContactFilter(filter ContactFilter) {
	world.contactManager.contactFilter = filter
}

// SetContactListener installs the contact event listener.
func (world *World) SetContactListener(listener ContactListener) {
	world.contactManager.contactListener = listener
}

// SetWarmStarting toggles warm starting, for solver testing.
func (world *World) SetWarmStarting(flag bool) {
	world.warmStarting = flag
}

// SetContinuousPhysics toggles the TOI phase, for testing.
func (world *World) SetContinuousPhysics(flag bool) {
	world.continuousPhysics = flag
}

// SetSubStepping makes the TOI phase yield after one sub-step, for
// single-stepping through continuous events.
func (world *World) SetSubStepping(flag bool) {
	world.subStepping = flag
}

// SetAllowSleeping globally enables or disables sleeping; disabling wakes
// every body.
func (world *World) SetAllowSleeping(flag bool) {
	if flag == world.allowSleep {
		return
	}

	world.allowSleep = flag
	if !world.allowSleep {
		for b := world.bodyList; b != nil; b = b.next {
			b.SetAwake(true)
		}
	}
}

// CreateBody allocates a body from the definition. Returns nil while the
// world is locked.
func (world *World) CreateBody(def *BodyDef) *Body {
	if world.IsLocked() {
		world.report("CreateBody called on a locked world")
		return nil
	}

	b := newBody(def, world)

	// Add to the world doubly linked list.
	b.prev = nil
	b.next = world.bodyList
	if world.bodyList != nil {
		world.bodyList.prev = b
	}
	world.bodyList = b
	world.bodyCount++

	return b
}

// DestroyBody destroys a body. The destruction cascades: every joint on the
// body (and any gear joint referencing those joints), every contact, every
// fixture and its proxies. The destruction listener fires for each joint
// and fixture so callers can drop their handles. No-op while locked.
func (world *World) DestroyBody(b *Body) {
	assert(world.bodyCount > 0)
	if world.IsLocked() {
		world.report("DestroyBody called on a locked world")
		return
	}

	// Delete the attached joints.
	je := b.jointList
	for je != nil {
		je0 := je
		je = je.Next

		if world.destructionListener != nil {
			world.destructionListener.SayGoodbyeToJoint(je0.Joint)
		}

		world.DestroyJoint(je0.Joint)

		b.jointList = je
	}
	b.jointList = nil

	// Delete the attached contacts.
	ce := b.contactList
	for ce != nil {
		ce0 := ce
		ce = ce.Next
		world.contactManager.Destroy(ce0.Contact)
	}
	b.contactList = nil

	// Delete the attached fixtures. This destroys the broad-phase proxies.
	f := b.fixtureList
	for f != nil {
		f0 := f
		f = f.next

		if world.destructionListener != nil {
			world.destructionListener.SayGoodbyeToFixture(f0)
		}

		if b.enabled {
			f0.destroyProxies(world.contactManager.broadPhase)
		}
		f0.destroy()

		b.fixtureList = f
		b.fixtureCount--
	}

	b.fixtureList = nil
	b.fixtureCount = 0

	// Remove from the world body list.
	if b.prev != nil {
		b.prev.next = b.next
	}
	if b.next != nil {
		b.next.prev = b.prev
	}
	if b == world.bodyList {
		world.bodyList = b.next
	}

	world.bodyCount--
}

// CreateJoint constrains two bodies per the definition. Returns nil while
// the world is locked. Creating a joint does not wake the bodies.
func (world *World) CreateJoint(def JointDef) Joint {
	if world.IsLocked() {
		world.report("CreateJoint called on a locked world")
		return nil
	}

	j := def.create()
	jb := j.base()

	// Connect to the world list.
	jb.prev = nil
	jb.next = world.jointList
	if world.jointList != nil {
		world.jointList.base().prev = j
	}
	world.jointList = j
	world.jointCount++

	// Connect to the bodies' doubly linked edge lists.
	jb.edgeA.Joint = j
	jb.edgeA.Other = jb.bodyB
	jb.edgeA.Prev = nil
	jb.edgeA.Next = jb.bodyA.jointList
	if jb.bodyA.jointList != nil {
		jb.bodyA.jointList.Prev = &jb.edgeA
	}
	jb.bodyA.jointList = &jb.edgeA

	jb.edgeB.Joint = j
	jb.edgeB.Other = jb.bodyA
	jb.edgeB.Prev = nil
	jb.edgeB.Next = jb.bodyB.jointList
	if jb.bodyB.jointList != nil {
		jb.bodyB.jointList.Prev = &jb.edgeB
	}
	jb.bodyB.jointList = &jb.edgeB

	// If the joint prevents collision, flag any existing contacts between
	// the pair for filtering at the next step.
	if !jb.collideConnected {
		for edge := jb.bodyB.ContactList(); edge != nil; edge = edge.Next {
			if edge.Other == jb.bodyA {
				edge.Contact.FlagForFiltering()
			}
		}
	}

	return j
}

// DestroyJoint removes a joint, waking both bodies. Any gear joint that
// references the dying joint is destroyed first (with a destruction
// listener notification), so a gear is never left with a dangling referent.
// No-op while locked.
func (world *World) DestroyJoint(j Joint) {
	if world.IsLocked() {
		world.report("DestroyJoint called on a locked world")
		return
	}

	// Auto-destroy dependent gear joints.
	for g := world.jointList; g != nil; {
		next := g.base().next
		if gear, ok := g.(*GearJoint); ok && gear != j {
			if gear.joint1 == j || gear.joint2 == j {
				if world.destructionListener != nil {
					world.destructionListener.SayGoodbyeToJoint(gear)
				}
				world.DestroyJoint(gear)
			}
		}
		g = next
	}

	jb := j.base()
	collideConnected := jb.collideConnected

	// Remove from the world list.
	if jb.prev != nil {
		jb.prev.base().next = jb.next
	}
	if jb.next != nil {
		jb.next.base().prev = jb.prev
	}
	if j == world.jointList {
		world.jointList = jb.next
	}

	// Disconnect from the island graph.
	bodyA := jb.bodyA
	bodyB := jb.bodyB

	// Wake the connected bodies.
	bodyA.SetAwake(true)
	bodyB.SetAwake(true)

	// Remove from body A.
	if jb.edgeA.Prev != nil {
		jb.edgeA.Prev.Next = jb.edgeA.Next
	}
	if jb.edgeA.Next != nil {
		jb.edgeA.Next.Prev = jb.edgeA.Prev
	}
	if &jb.edgeA == bodyA.jointList {
		bodyA.jointList = jb.edgeA.Next
	}
	jb.edgeA.Prev = nil
	jb.edgeA.Next = nil

	// Remove from body B.
	if jb.edgeB.Prev != nil {
		jb.edgeB.Prev.Next = jb.edgeB.Next
	}
	if jb.edgeB.Next != nil {
		jb.edgeB.Next.Prev = jb.edgeB.Prev
	}
	if &jb.edgeB == bodyB.jointList {
		bodyB.jointList = jb.edgeB.Next
	}
	jb.edgeB.Prev = nil
	jb.edgeB.Next = nil

	assert(world.jointCount > 0)
	world.jointCount--

	// If the joint prevented collision, flag any contacts between the pair
	// for filtering.
	if !collideConnected {
		for edge := bodyB.ContactList(); edge != nil; edge = edge.Next {
			if edge.Other == bodyA {
				edge.Contact.FlagForFiltering()
			}
		}
	}
}

// solve finds islands, integrates and solves velocity constraints, and
// corrects positions for the discrete part of the step.
func (world *World) solve(step timeStep) {
	world.profile.SolveInit = 0.0
	world.profile.SolveVelocity = 0.0
	world.profile.SolvePosition = 0.0

	// Size the island for the worst case.
	isl := newIsland(
		world.bodyCount,
		world.contactManager.ContactCount(),
		world.jointCount,
		world.contactManager.contactListener,
	)

	// Clear all island flags.
	for b := world.bodyList; b != nil; b = b.next {
		b.islandFlag = false
	}
	for c := world.contactManager.contactList; c != nil; c = c.next {
		c.flags &^= contactIsland
	}
	for j := world.jointList; j != nil; j = j.base().next {
		j.base().islandFlag = false
	}

	// Build and simulate all awake islands.
	stackSize := world.bodyCount
	stack := make([]*Body, stackSize)

	for seed := world.bodyList; seed != nil; seed = seed.next {
		if seed.islandFlag {
			continue
		}

		if !seed.IsAwake() || !seed.IsEnabled() {
			continue
		}

		// The seed can be dynamic or kinematic.
		if seed.bodyType == StaticBody {
			continue
		}

		// Reset the island and stack.
		isl.clear()
		stackCount := 0
		stack[stackCount] = seed
		stackCount++
		seed.islandFlag = true

		// Depth first search on the constraint graph.
		for stackCount > 0 {
			stackCount--
			b := stack[stackCount]
			assert(b.IsEnabled())
			isl.addBody(b)

			// Make sure the body is awake (without resetting the sleep
			// timer).
			b.awake = true

			// To keep islands small, don't propagate across static bodies.
			if b.bodyType == StaticBody {
				continue
			}

			// Search the contacts connected to this body.
			for ce := b.contactList; ce != nil; ce = ce.Next {
				contact := ce.Contact

				// Already in this island?
				if contact.flags&contactIsland != 0 {
					continue
				}

				// Solid and touching?
				if !contact.IsEnabled() || !contact.IsTouching() {
					continue
				}

				// Skip sensors.
				if contact.fixtureA.isSensor || contact.fixtureB.isSensor {
					continue
				}

				isl.addContact(contact)
				contact.flags |= contactIsland

				other := ce.Other
				if other.islandFlag {
					continue
				}

				assert(stackCount < stackSize)
				stack[stackCount] = other
				stackCount++
				other.islandFlag = true
			}

			// Search the joints connected to this body.
			for je := b.jointList; je != nil; je = je.Next {
				if je.Joint.base().islandFlag {
					continue
				}

				other := je.Other

				// Don't simulate joints connected to disabled bodies.
				if !other.IsEnabled() {
					continue
				}

				isl.addJoint(je.Joint)
				je.Joint.base().islandFlag = true

				if other.islandFlag {
					continue
				}

				assert(stackCount < stackSize)
				stack[stackCount] = other
				stackCount++
				other.islandFlag = true
			}
		}

		var profile Profile
		isl.solve(&profile, step, world.gravity, world.allowSleep)
		world.profile.SolveInit += profile.SolveInit
		world.profile.SolveVelocity += profile.SolveVelocity
		world.profile.SolvePosition += profile.SolvePosition

		// Post solve cleanup: allow static bodies to participate in other
		// islands.
		for i := 0; i < isl.bodyCount; i++ {
			b := isl.bodies[i]
			if b.bodyType == StaticBody {
				b.islandFlag = false
			}
		}
	}

	{
		timer := makeStopwatch()

		// Synchronize fixtures; a body outside every island did not move.
		for b := world.bodyList; b != nil; b = b.next {
			if !b.islandFlag {
				continue
			}
			if b.bodyType == StaticBody {
				continue
			}

			b.synchronizeFixtures()
		}

		// Look for new contacts.
		world.contactManager.FindNewContacts()
		world.profile.Broadphase = timer.milliseconds()
	}
}

// solveTOI finds TOI contacts and solves them: the minimum-alpha contact
// pair is advanced to its impact time, a mini-island of its touching
// neighbors is built by BFS, sub-step solved, and the loop repeats until no
// contact impacts before the end of the step.
func (world *World) solveTOI(step timeStep) {
	isl := newIsland(2*MaxTOIContacts, MaxTOIContacts, 0, world.contactManager.contactListener)

	if world.stepComplete {
		for b := world.bodyList; b != nil; b = b.next {
			b.islandFlag = false
			b.sweep.Alpha0 = 0.0
		}

		for c := world.contactManager.contactList; c != nil; c = c.next {
			// Invalidate the cached TOI.
			c.flags &^= contactTOI | contactIsland
			c.toiCount = 0
			c.toi = 1.0
		}
	}

	// Find TOI events and solve them.
	for {
		// Find the first TOI.
		var minContact *Contact
		minAlpha := 1.0

		for c := world.contactManager.contactList; c != nil; c = c.next {
			if !c.IsEnabled() {
				continue
			}

			// Prevent excessive sub-stepping.
			if c.toiCount > MaxSubSteps {
				continue
			}

			alpha := 1.0
			if c.flags&contactTOI != 0 {
				// Valid cached TOI.
				alpha = c.toi
			} else {
				fA := c.FixtureA()
				fB := c.FixtureB()

				// Sensors don't block.
				if fA.IsSensor() || fB.IsSensor() {
					continue
				}

				bA := fA.Body()
				bB := fB.Body()

				typeA := bA.bodyType
				typeB := bB.bodyType
				assert(typeA == DynamicBody || typeB == DynamicBody)

				activeA := bA.IsAwake() && typeA != StaticBody
				activeB := bB.IsAwake() && typeB != StaticBody

				// At least one body must be active (awake and dynamic or
				// kinematic).
				if !activeA && !activeB {
					continue
				}

				// CCD pairing: dynamic vs static/kinematic always; dynamic
				// vs dynamic only when one is a bullet.
				collideA := bA.IsBullet() || typeA != DynamicBody
				collideB := bB.IsBullet() || typeB != DynamicBody
				if !collideA && !collideB {
					continue
				}

				// Compute the TOI for this contact, with both sweeps put
				// onto the same time interval first.
				alpha0 := bA.sweep.Alpha0
				if bA.sweep.Alpha0 < bB.sweep.Alpha0 {
					alpha0 = bB.sweep.Alpha0
					bA.sweep.Advance(alpha0)
				} else if bB.sweep.Alpha0 < bA.sweep.Alpha0 {
					alpha0 = bA.sweep.Alpha0
					bB.sweep.Advance(alpha0)
				}

				assert(alpha0 < 1.0)

				// Compute the time of impact in [0, 1].
				var input TOIInput
				input.ProxyA.Set(fA.Shape(), c.ChildIndexA())
				input.ProxyB.Set(fB.Shape(), c.ChildIndexB())
				input.SweepA = bA.sweep
				input.SweepB = bB.sweep
				input.TMax = 1.0

				var output TOIOutput
				TimeOfImpact(&output, &input)

				// Beta is the fraction of the remaining interval.
				beta := output.T
				if output.State == TOITouching {
					alpha = math.Min(alpha0+(1.0-alpha0)*beta, 1.0)
				} else {
					alpha = 1.0
				}

				c.toi = alpha
				c.flags |= contactTOI
			}

			if alpha < minAlpha {
				minContact = c
				minAlpha = alpha
			}
		}

		if minContact == nil || 1.0-10.0*epsilon < minAlpha {
			// No more TOI events. Done!
			world.stepComplete = true
			break
		}

		// Advance the bodies to the TOI.
		fA := minContact.FixtureA()
		fB := minContact.FixtureB()
		bA := fA.Body()
		bB := fB.Body()

		backup1 := bA.sweep
		backup2 := bB.sweep

		bA.advance(minAlpha)
		bB.advance(minAlpha)

		// The TOI contact likely has new contact points.
		minContact.update(world.contactManager.contactListener)
		minContact.flags &^= contactTOI
		minContact.toiCount++

		// Is the contact solid?
		if !minContact.IsEnabled() || !minContact.IsTouching() {
			// Restore the sweeps.
			minContact.SetEnabled(false)
			bA.sweep = backup1
			bB.sweep = backup2
			bA.synchronizeTransform()
			bB.synchronizeTransform()
			continue
		}

		bA.SetAwake(true)
		bB.SetAwake(true)

		// Build the TOI island.
		isl.clear()
		isl.addBody(bA)
		isl.addBody(bB)
		isl.addContact(minContact)

		bA.islandFlag = true
		bB.islandFlag = true
		minContact.flags |= contactIsland

		// Get contacts on bodyA and bodyB.
		bodies := [2]*Body{bA, bB}
		for i := 0; i < 2; i++ {
			body := bodies[i]
			if body.bodyType != DynamicBody {
				continue
			}

			for ce := body.contactList; ce != nil; ce = ce.Next {
				if isl.bodyCount == isl.bodyCapacity {
					break
				}
				if isl.contactCount == isl.contactCapacity {
					break
				}

				contact := ce.Contact

				// Already in the TOI island?
				if contact.flags&contactIsland != 0 {
					continue
				}

				// Only add static, kinematic, or bullet bodies.
				other := ce.Other
				if other.bodyType == DynamicBody && !body.IsBullet() && !other.IsBullet() {
					continue
				}

				// Skip sensors.
				if contact.fixtureA.isSensor || contact.fixtureB.isSensor {
					continue
				}

				// Tentatively advance the body to the TOI.
				backup := other.sweep
				if !other.islandFlag {
					other.advance(minAlpha)
				}

				// Update the contact points.
				contact.update(world.contactManager.contactListener)

				// Disabled by the user, or no contact points?
				if !contact.IsEnabled() || !contact.IsTouching() {
					other.sweep = backup
					other.synchronizeTransform()
					continue
				}

				// Add the contact to the island.
				contact.flags |= contactIsland
				isl.addContact(contact)

				// Already added the other body?
				if other.islandFlag {
					continue
				}

				other.islandFlag = true
				if other.bodyType != StaticBody {
					other.SetAwake(true)
				}

				isl.addBody(other)
			}
		}

		var subStep timeStep
		subStep.dt = (1.0 - minAlpha) * step.dt
		subStep.invDT = 1.0 / subStep.dt
		subStep.dtRatio = 1.0
		subStep.positionIterations = 20
		subStep.velocityIterations = step.velocityIterations
		subStep.warmStarting = false
		isl.solveTOI(subStep, bA.islandIndex, bB.islandIndex)

		// Reset island flags and synchronize broad-phase proxies.
		for i := 0; i < isl.bodyCount; i++ {
			body := isl.bodies[i]
			body.islandFlag = false

			if body.bodyType != DynamicBody {
				continue
			}

			body.synchronizeFixtures()

			// Invalidate all contact TOIs on this displaced body.
			for ce := body.contactList; ce != nil; ce = ce.Next {
				ce.Contact.flags &^= contactTOI | contactIsland
			}
		}

		// Commit proxy movements to the broad-phase so new contacts are
		// created; some contacts may be destroyed.
		world.contactManager.FindNewContacts()

		if world.subStepping {
			world.stepComplete = false
			break
		}
	}
}

// Step advances the simulation by dt seconds using the given solver
// iteration counts. The world is locked for the duration; structural
// mutation from callbacks must be buffered by the caller.
func (world *World) Step(dt float64, velocityIterations, positionIterations int) {
	stepTimer := makeStopwatch()

	// If new fixtures were added, find the new contacts.
	if world.newFixture {
		world.contactManager.FindNewContacts()
		world.newFixture = false
	}

	world.locked = true

	var step timeStep
	step.dt = dt
	step.velocityIterations = velocityIterations
	step.positionIterations = positionIterations
	if dt > 0.0 {
		step.invDT = 1.0 / dt
	} else {
		step.invDT = 0.0
	}

	step.dtRatio = world.invDT0 * dt
	step.warmStarting = world.warmStarting

	// Update contacts. Some contacts are destroyed here.
	{
		timer := makeStopwatch()
		world.contactManager.Collide()
		world.profile.Collide = timer.milliseconds()
	}

	// Integrate velocities, solve velocity constraints, integrate positions.
	if world.stepComplete && step.dt > 0.0 {
		timer := makeStopwatch()
		world.solve(step)
		world.profile.Solve = timer.milliseconds()
	}

	// Handle TOI events.
	if world.continuousPhysics && step.dt > 0.0 {
		timer := makeStopwatch()
		world.solveTOI(step)
		world.profile.SolveTOI = timer.milliseconds()
	}

	if step.dt > 0.0 {
		world.invDT0 = step.invDT
	}

	if world.clearForcesAuto {
		world.ClearForces()
	}

	world.locked = false

	world.profile.Step = stepTimer.milliseconds()
}

// ClearForces zeroes the accumulated force and torque on every body. Call
// after each Step (or series of sub-steps) unless auto clearing is on.
func (world *World) ClearForces() {
	for body := world.bodyList; body != nil; body = body.next {
		body.force.SetZero()
		body.torque = 0.0
	}
}

// QueryAABB reports every fixture whose broad-phase box overlaps the query
// box. The callback returns false to terminate early.
func (world *World) QueryAABB(callback QueryCallback, aabb AABB) {
	world.contactManager.broadPhase.Query(func(proxyID int) bool {
		proxy := world.contactManager.broadPhase.UserData(proxyID).(*fixtureProxy)
		return callback(proxy.fixture)
	}, aabb)
}

// RayCast reports every fixture along the ray from point1 to point2, in
// broad-phase traversal order. The callback controls clipping; see
// RayCastCallback.
func (world *World) RayCast(callback RayCastCallback, point1, point2 Vec2) {
	wrapper := func(input RayCastInput, nodeID int) float64 {
		userData := world.contactManager.broadPhase.UserData(nodeID)
		proxy := userData.(*fixtureProxy)
		fixture := proxy.fixture
		index := proxy.childIndex

		var output RayCastOutput
		hit := fixture.RayCast(&output, input, index)

		if hit {
			fraction := output.Fraction
			point := input.P1.Mul(1.0 - fraction).Add(input.P2.Mul(fraction))
			return callback(fixture, point, output.Normal, fraction)
		}

		return input.MaxFraction
	}

	input := RayCastInput{
		P1:          point1,
		P2:          point2,
		MaxFraction: 1.0,
	}
	world.contactManager.broadPhase.RayCast(wrapper, input)
}

func (world *World) ProxyCount() int {
	return world.contactManager.broadPhase.ProxyCount()
}

func (world *World) TreeHeight() int {
	return world.contactManager.broadPhase.TreeHeight()
}

func (world *World) TreeBalance() int {
	return world.contactManager.broadPhase.TreeBalance()
}

func (world *World) TreeQuality() float64 {
	return world.contactManager.broadPhase.TreeQuality()
}

// ShiftOrigin re-centers the world on a new origin, subtracting it from all
// world-space state. Useful when coordinates grow large. No-op while
// locked.
func (world *World) ShiftOrigin(newOrigin Vec2) {
	if world.locked {
		world.report("ShiftOrigin called on a locked world")
		return
	}

	for b := world.bodyList; b != nil; b = b.next {
		b.xf.P = b.xf.P.Sub(newOrigin)
		b.sweep.C0 = b.sweep.C0.Sub(newOrigin)
		b.sweep.C = b.sweep.C.Sub(newOrigin)
	}

	for j := world.jointList; j != nil; j = j.base().next {
		j.ShiftOrigin(newOrigin)
	}

	world.contactManager.broadPhase.ShiftOrigin(newOrigin)
}
