package rigid2d

// ContactManager owns the broad-phase, the contact list and the listener
// and filter hooks. It creates contacts from new broad-phase pairs, refreshes
// surviving contacts through narrow-phase, and destroys contacts whose AABBs
// no longer overlap.
type ContactManager struct {
	broadPhase      *BroadPhase
	contactList     *Contact
	contactCount    int
	contactFilter   ContactFilter
	contactListener ContactListener
}

func NewContactManager() *ContactManager {
	return &ContactManager{
		broadPhase:    NewBroadPhase(),
		contactFilter: DefaultContactFilter{},
	}
}

func (mgr *ContactManager) BroadPhase() *BroadPhase {
	return mgr.broadPhase
}

func (mgr *ContactManager) ContactList() *Contact {
	return mgr.contactList
}

func (mgr *ContactManager) ContactCount() int {
	return mgr.contactCount
}

// Destroy unlinks and discards a contact, firing EndContact if it was
// touching and waking the bodies if there were contact points.
func (mgr *ContactManager) Destroy(c *Contact) {
	fixtureA := c.FixtureA()
	fixtureB := c.FixtureB()
	bodyA := fixtureA.Body()
	bodyB := fixtureB.Body()

	if mgr.contactListener != nil && c.IsTouching() {
		mgr.contactListener.EndContact(c)
	}

	// Remove from the world.
	if c.prev != nil {
		c.prev.next = c.next
	}
	if c.next != nil {
		c.next.prev = c.prev
	}
	if c == mgr.contactList {
		mgr.contactList = c.next
	}

	// Remove from body A.
	if c.nodeA.Prev != nil {
		c.nodeA.Prev.Next = c.nodeA.Next
	}
	if c.nodeA.Next != nil {
		c.nodeA.Next.Prev = c.nodeA.Prev
	}
	if &c.nodeA == bodyA.contactList {
		bodyA.contactList = c.nodeA.Next
	}

	// Remove from body B.
	if c.nodeB.Prev != nil {
		c.nodeB.Prev.Next = c.nodeB.Next
	}
	if c.nodeB.Next != nil {
		c.nodeB.Next.Prev = c.nodeB.Prev
	}
	if &c.nodeB == bodyB.contactList {
		bodyB.contactList = c.nodeB.Next
	}

	if c.manifold.PointCount > 0 && !fixtureA.IsSensor() && !fixtureB.IsSensor() {
		bodyA.SetAwake(true)
		bodyB.SetAwake(true)
	}

	mgr.contactCount--
}

// Collide is the top-level narrow-phase call of the step. Contacts flagged
// for filtering are re-checked and possibly destroyed; contacts whose AABBs
// stopped overlapping are destroyed; the rest are refreshed, which is where
// begin/end/pre-solve events fire. Non-touching contacts are retained as
// long as the AABBs overlap, which caches the pair.
func (mgr *ContactManager) Collide() {
	c := mgr.contactList

	for c != nil {
		fixtureA := c.FixtureA()
		fixtureB := c.FixtureB()
		indexA := c.ChildIndexA()
		indexB := c.ChildIndexB()
		bodyA := fixtureA.Body()
		bodyB := fixtureB.Body()

		// Re-filter if requested.
		if c.flags&contactFilter != 0 {
			if !bodyB.shouldCollide(bodyA) {
				cNuke := c
				c = cNuke.next
				mgr.Destroy(cNuke)
				continue
			}

			if mgr.contactFilter != nil && !mgr.contactFilter.ShouldCollide(fixtureA, fixtureB) {
				cNuke := c
				c = cNuke.next
				mgr.Destroy(cNuke)
				continue
			}

			c.flags &^= contactFilter
		}

		activeA := bodyA.IsAwake() && bodyA.bodyType != StaticBody
		activeB := bodyB.IsAwake() && bodyB.bodyType != StaticBody

		// At least one body must be awake and dynamic or kinematic.
		if !activeA && !activeB {
			c = c.next
			continue
		}

		proxyIDA := fixtureA.proxies[indexA].proxyID
		proxyIDB := fixtureB.proxies[indexB].proxyID
		overlap := mgr.broadPhase.TestOverlap(proxyIDA, proxyIDB)

		// Destroy contacts that cease to overlap in the broad-phase.
		if !overlap {
			cNuke := c
			c = cNuke.next
			mgr.Destroy(cNuke)
			continue
		}

		// The contact persists.
		c.update(mgr.contactListener)
		c = c.next
	}
}

// FindNewContacts asks the broad-phase for pairs that started overlapping.
func (mgr *ContactManager) FindNewContacts() {
	mgr.broadPhase.UpdatePairs(mgr.addPair)
}

// addPair creates a contact for a new broad-phase pair unless the pair is
// on one body, already has a contact, or is rejected by filtering.
func (mgr *ContactManager) addPair(proxyUserDataA, proxyUserDataB interface{}) {
	proxyA := proxyUserDataA.(*fixtureProxy)
	proxyB := proxyUserDataB.(*fixtureProxy)

	fixtureA := proxyA.fixture
	fixtureB := proxyB.fixture

	indexA := proxyA.childIndex
	indexB := proxyB.childIndex

	bodyA := fixtureA.Body()
	bodyB := fixtureB.Body()

	// Fixtures on the same body never collide.
	if bodyA == bodyB {
		return
	}

	// Does a contact already exist for this child pair? Walking one body's
	// edge list covers both orders.
	for edge := bodyB.ContactList(); edge != nil; edge = edge.Next {
		if edge.Other == bodyA {
			fA := edge.Contact.FixtureA()
			fB := edge.Contact.FixtureB()
			iA := edge.Contact.ChildIndexA()
			iB := edge.Contact.ChildIndexB()

			if fA == fixtureA && fB == fixtureB && iA == indexA && iB == indexB {
				return
			}
			if fA == fixtureB && fB == fixtureA && iA == indexB && iB == indexA {
				return
			}
		}
	}

	// Joint veto and static/kinematic exclusion.
	if !bodyB.shouldCollide(bodyA) {
		return
	}

	// User filtering.
	if mgr.contactFilter != nil && !mgr.contactFilter.ShouldCollide(fixtureA, fixtureB) {
		return
	}

	c := newContact(fixtureA, indexA, fixtureB, indexB)
	if c == nil {
		return
	}

	// Contact creation may have swapped the fixtures.
	fixtureA = c.FixtureA()
	fixtureB = c.FixtureB()
	bodyA = fixtureA.Body()
	bodyB = fixtureB.Body()

	// Insert into the world list.
	c.prev = nil
	c.next = mgr.contactList
	if mgr.contactList != nil {
		mgr.contactList.prev = c
	}
	mgr.contactList = c

	// Connect to the island graph.
	c.nodeA.Contact = c
	c.nodeA.Other = bodyB
	c.nodeA.Prev = nil
	c.nodeA.Next = bodyA.contactList
	if bodyA.contactList != nil {
		bodyA.contactList.Prev = &c.nodeA
	}
	bodyA.contactList = &c.nodeA

	c.nodeB.Contact = c
	c.nodeB.Other = bodyA
	c.nodeB.Prev = nil
	c.nodeB.Next = bodyB.contactList
	if bodyB.contactList != nil {
		bodyB.contactList.Prev = &c.nodeB
	}
	bodyB.contactList = &c.nodeB

	// Wake the bodies.
	if !fixtureA.IsSensor() && !fixtureB.IsSensor() {
		bodyA.SetAwake(true)
		bodyB.SetAwake(true)
	}

	mgr.contactCount++
}
