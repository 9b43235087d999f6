package rigid2d

import (
	"sort"
)

// AddPairCallback receives the user data of two proxies whose fat AABBs now
// overlap, once per pair per UpdatePairs call.
type AddPairCallback func(userDataA, userDataB interface{})

type proxyPair struct {
	idA int
	idB int
}

const nullProxy = -1

// BroadPhase wraps the dynamic tree with move buffering and pair
// management: proxies that moved since the last UpdatePairs are queried
// against the tree, and the resulting overlap pairs are reported with
// duplicates removed.
type BroadPhase struct {
	tree *DynamicTree

	proxyCount int

	moveBuffer []int

	pairBuffer []proxyPair

	queryProxyID int
}

func NewBroadPhase() *BroadPhase {
	return &BroadPhase{
		tree:       NewDynamicTree(),
		moveBuffer: make([]int, 0, 16),
		pairBuffer: make([]proxyPair, 0, 16),
	}
}

func (bp *BroadPhase) UserData(proxyID int) interface{} {
	return bp.tree.UserData(proxyID)
}

// TestOverlap reports whether the fat AABBs of two proxies overlap.
func (bp *BroadPhase) TestOverlap(proxyIDA, proxyIDB int) bool {
	return TestOverlapAABB(bp.tree.FatAABB(proxyIDA), bp.tree.FatAABB(proxyIDB))
}

func (bp *BroadPhase) FatAABB(proxyID int) AABB {
	return bp.tree.FatAABB(proxyID)
}

func (bp *BroadPhase) ProxyCount() int {
	return bp.proxyCount
}

func (bp *BroadPhase) TreeHeight() int {
	return bp.tree.Height()
}

func (bp *BroadPhase) TreeBalance() int {
	return bp.tree.MaxBalance()
}

func (bp *BroadPhase) TreeQuality() float64 {
	return bp.tree.AreaRatio()
}

// CreateProxy registers an AABB and buffers it for pair creation.
func (bp *BroadPhase) CreateProxy(aabb AABB, userData interface{}) int {
	proxyID := bp.tree.CreateProxy(aabb, userData)
	bp.proxyCount++
	bp.bufferMove(proxyID)
	return proxyID
}

func (bp *BroadPhase) DestroyProxy(proxyID int) {
	bp.unBufferMove(proxyID)
	bp.proxyCount--
	bp.tree.DestroyProxy(proxyID)
}

// MoveProxy updates a proxy AABB; if the proxy left its fat AABB it is
// buffered for pair updates.
func (bp *BroadPhase) MoveProxy(proxyID int, aabb AABB, displacement Vec2) {
	if bp.tree.MoveProxy(proxyID, aabb, displacement) {
		bp.bufferMove(proxyID)
	}
}

// TouchProxy forces a pair update on the proxy without moving it. Used
// after filter changes.
func (bp *BroadPhase) TouchProxy(proxyID int) {
	bp.bufferMove(proxyID)
}

func (bp *BroadPhase) bufferMove(proxyID int) {
	bp.moveBuffer = append(bp.moveBuffer, proxyID)
}

func (bp *BroadPhase) unBufferMove(proxyID int) {
	for i := range bp.moveBuffer {
		if bp.moveBuffer[i] == proxyID {
			bp.moveBuffer[i] = nullProxy
		}
	}
}

// queryCallback gathers pairs while querying for a moved proxy.
func (bp *BroadPhase) queryCallback(proxyID int) bool {
	// A proxy cannot form a pair with itself.
	if proxyID == bp.queryProxyID {
		return true
	}

	bp.pairBuffer = append(bp.pairBuffer, proxyPair{
		idA: minInt(proxyID, bp.queryProxyID),
		idB: maxInt(proxyID, bp.queryProxyID),
	})

	return true
}

// UpdatePairs reports every pair whose fat AABBs now overlap where at least
// one proxy moved since the last call. The pair buffer is sorted so
// duplicates are adjacent and reported once.
func (bp *BroadPhase) UpdatePairs(callback AddPairCallback) {
	bp.pairBuffer = bp.pairBuffer[:0]

	// Query the tree for each moved proxy using its fat AABB so pairs that
	// may touch later are not missed.
	for _, proxyID := range bp.moveBuffer {
		bp.queryProxyID = proxyID
		if proxyID == nullProxy {
			continue
		}

		fatAABB := bp.tree.FatAABB(proxyID)
		bp.tree.Query(bp.queryCallback, fatAABB)
	}

	bp.moveBuffer = bp.moveBuffer[:0]

	sort.Slice(bp.pairBuffer, func(i, j int) bool {
		a, b := bp.pairBuffer[i], bp.pairBuffer[j]
		if a.idA < b.idA {
			return true
		}
		if a.idA == b.idA {
			return a.idB < b.idB
		}
		return false
	})

	// Report pairs, skipping duplicates.
	i := 0
	for i < len(bp.pairBuffer) {
		primary := bp.pairBuffer[i]
		callback(bp.tree.UserData(primary.idA), bp.tree.UserData(primary.idB))
		i++

		for i < len(bp.pairBuffer) {
			pair := bp.pairBuffer[i]
			if pair.idA != primary.idA || pair.idB != primary.idB {
				break
			}
			i++
		}
	}
}

// Query visits every proxy overlapping the AABB.
func (bp *BroadPhase) Query(callback TreeQueryCallback, aabb AABB) {
	bp.tree.Query(callback, aabb)
}

// RayCast casts a ray against the proxies.
func (bp *BroadPhase) RayCast(callback TreeRayCastCallback, input RayCastInput) {
	bp.tree.RayCast(callback, input)
}

func (bp *BroadPhase) ShiftOrigin(newOrigin Vec2) {
	bp.tree.ShiftOrigin(newOrigin)
}
