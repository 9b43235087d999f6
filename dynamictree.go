package rigid2d

import (
	"math"
)

// TreeQueryCallback is invoked per overlapping leaf; returning false stops
// the query.
type TreeQueryCallback func(nodeID int) bool

// TreeRayCastCallback is invoked per leaf hit by the ray; the return value
// becomes the new max fraction (0 terminates, input.MaxFraction continues
// unclipped).
type TreeRayCastCallback func(input RayCastInput, nodeID int) float64

const nullNode = -1

type treeNode struct {
	// Enlarged (fat) AABB.
	aabb AABB

	userData interface{}

	// parent doubles as the free-list next pointer.
	parent int

	child1 int
	child2 int

	// leaf = 0, free node = -1
	height int
}

func (n *treeNode) isLeaf() bool {
	return n.child1 == nullNode
}

// DynamicTree is a balanced binary AABB tree used as the broad-phase
// acceleration structure. Leaves are proxies with a fattened AABB so a proxy
// can move by small amounts without a tree update. Nodes are pooled and
// relocatable, so indices are used rather than pointers.
type DynamicTree struct {
	root int

	nodes        []treeNode
	nodeCount    int
	nodeCapacity int

	freeList int

	insertionCount int
}

func NewDynamicTree() *DynamicTree {
	tree := &DynamicTree{
		root:         nullNode,
		nodeCapacity: 16,
	}
	tree.nodes = make([]treeNode, tree.nodeCapacity)

	// Thread the free list through the node pool.
	for i := 0; i < tree.nodeCapacity-1; i++ {
		tree.nodes[i].parent = i + 1
		tree.nodes[i].height = -1
	}
	tree.nodes[tree.nodeCapacity-1].parent = nullNode
	tree.nodes[tree.nodeCapacity-1].height = -1
	tree.freeList = 0

	return tree
}

func (tree *DynamicTree) UserData(proxyID int) interface{} {
	assert(0 <= proxyID && proxyID < tree.nodeCapacity)
	return tree.nodes[proxyID].userData
}

func (tree *DynamicTree) FatAABB(proxyID int) AABB {
	assert(0 <= proxyID && proxyID < tree.nodeCapacity)
	return tree.nodes[proxyID].aabb
}

func (tree *DynamicTree) allocateNode() int {
	// Grow the pool when the free list is exhausted.
	if tree.freeList == nullNode {
		assert(tree.nodeCount == tree.nodeCapacity)

		tree.nodes = append(tree.nodes, make([]treeNode, tree.nodeCapacity)...)
		tree.nodeCapacity *= 2

		for i := tree.nodeCount; i < tree.nodeCapacity-1; i++ {
			tree.nodes[i].parent = i + 1
			tree.nodes[i].height = -1
		}
		tree.nodes[tree.nodeCapacity-1].parent = nullNode
		tree.nodes[tree.nodeCapacity-1].height = -1
		tree.freeList = tree.nodeCount
	}

	nodeID := tree.freeList
	tree.freeList = tree.nodes[nodeID].parent
	tree.nodes[nodeID].parent = nullNode
	tree.nodes[nodeID].child1 = nullNode
	tree.nodes[nodeID].child2 = nullNode
	tree.nodes[nodeID].height = 0
	tree.nodes[nodeID].userData = nil
	tree.nodeCount++

	return nodeID
}

func (tree *DynamicTree) freeNode(nodeID int) {
	assert(0 <= nodeID && nodeID < tree.nodeCapacity)
	assert(0 < tree.nodeCount)
	tree.nodes[nodeID].parent = tree.freeList
	tree.nodes[nodeID].height = -1
	tree.nodes[nodeID].userData = nil
	tree.freeList = nodeID
	tree.nodeCount--
}

// CreateProxy inserts a fattened leaf and returns its node index.
func (tree *DynamicTree) CreateProxy(aabb AABB, userData interface{}) int {
	proxyID := tree.allocateNode()

	r := Vec2{AABBExtension, AABBExtension}
	tree.nodes[proxyID].aabb.LowerBound = aabb.LowerBound.Sub(r)
	tree.nodes[proxyID].aabb.UpperBound = aabb.UpperBound.Add(r)
	tree.nodes[proxyID].userData = userData
	tree.nodes[proxyID].height = 0

	tree.insertLeaf(proxyID)

	return proxyID
}

func (tree *DynamicTree) DestroyProxy(proxyID int) {
	assert(0 <= proxyID && proxyID < tree.nodeCapacity)
	assert(tree.nodes[proxyID].isLeaf())

	tree.removeLeaf(proxyID)
	tree.freeNode(proxyID)
}

// MoveProxy updates a proxy AABB. Returns true if the proxy left its fat
// AABB and was reinserted, meaning the caller should re-buffer it for pair
// updates.
func (tree *DynamicTree) MoveProxy(proxyID int, aabb AABB, displacement Vec2) bool {
	assert(0 <= proxyID && proxyID < tree.nodeCapacity)
	assert(tree.nodes[proxyID].isLeaf())

	if tree.nodes[proxyID].aabb.Contains(aabb) {
		return false
	}

	tree.removeLeaf(proxyID)

	// Fatten and predict displacement.
	b := aabb
	r := Vec2{AABBExtension, AABBExtension}
	b.LowerBound = b.LowerBound.Sub(r)
	b.UpperBound = b.UpperBound.Add(r)

	d := displacement.Mul(AABBMultiplier)

	if d.X < 0.0 {
		b.LowerBound.X += d.X
	} else {
		b.UpperBound.X += d.X
	}

	if d.Y < 0.0 {
		b.LowerBound.Y += d.Y
	} else {
		b.UpperBound.Y += d.Y
	}

	tree.nodes[proxyID].aabb = b

	tree.insertLeaf(proxyID)

	return true
}

func (tree *DynamicTree) insertLeaf(leaf int) {
	tree.insertionCount++

	if tree.root == nullNode {
		tree.root = leaf
		tree.nodes[tree.root].parent = nullNode
		return
	}

	// Find the best sibling using the surface area heuristic.
	leafAABB := tree.nodes[leaf].aabb
	index := tree.root
	for !tree.nodes[index].isLeaf() {
		child1 := tree.nodes[index].child1
		child2 := tree.nodes[index].child2

		area := tree.nodes[index].aabb.Perimeter()

		var combinedAABB AABB
		combinedAABB.CombineTwo(tree.nodes[index].aabb, leafAABB)
		combinedArea := combinedAABB.Perimeter()

		// Cost of creating a new parent for this node and the new leaf.
		cost := 2.0 * combinedArea

		// Minimum cost of pushing the leaf further down the tree.
		inheritanceCost := 2.0 * (combinedArea - area)

		cost1 := childDescendCost(tree, child1, leafAABB, inheritanceCost)
		cost2 := childDescendCost(tree, child2, leafAABB, inheritanceCost)

		// Descend according to the minimum cost.
		if cost < cost1 && cost < cost2 {
			break
		}

		if cost1 < cost2 {
			index = child1
		} else {
			index = child2
		}
	}

	sibling := index

	// Create a new parent.
	oldParent := tree.nodes[sibling].parent
	newParent := tree.allocateNode()
	tree.nodes[newParent].parent = oldParent
	tree.nodes[newParent].userData = nil
	tree.nodes[newParent].aabb.CombineTwo(leafAABB, tree.nodes[sibling].aabb)
	tree.nodes[newParent].height = tree.nodes[sibling].height + 1

	if oldParent != nullNode {
		// The sibling was not the root.
		if tree.nodes[oldParent].child1 == sibling {
			tree.nodes[oldParent].child1 = newParent
		} else {
			tree.nodes[oldParent].child2 = newParent
		}
	} else {
		tree.root = newParent
	}
	tree.nodes[newParent].child1 = sibling
	tree.nodes[newParent].child2 = leaf
	tree.nodes[sibling].parent = newParent
	tree.nodes[leaf].parent = newParent

	// Walk back up fixing heights and AABBs.
	index = tree.nodes[leaf].parent
	for index != nullNode {
		index = tree.balance(index)

		child1 := tree.nodes[index].child1
		child2 := tree.nodes[index].child2

		assert(child1 != nullNode)
		assert(child2 != nullNode)

		tree.nodes[index].height = 1 + maxInt(tree.nodes[child1].height, tree.nodes[child2].height)
		tree.nodes[index].aabb.CombineTwo(tree.nodes[child1].aabb, tree.nodes[child2].aabb)

		index = tree.nodes[index].parent
	}
}

func childDescendCost(tree *DynamicTree, child int, leafAABB AABB, inheritanceCost float64) float64 {
	var aabb AABB
	aabb.CombineTwo(leafAABB, tree.nodes[child].aabb)
	if tree.nodes[child].isLeaf() {
		return aabb.Perimeter() + inheritanceCost
	}
	oldArea := tree.nodes[child].aabb.Perimeter()
	newArea := aabb.Perimeter()
	return (newArea - oldArea) + inheritanceCost
}

func (tree *DynamicTree) removeLeaf(leaf int) {
	if leaf == tree.root {
		tree.root = nullNode
		return
	}

	parent := tree.nodes[leaf].parent
	grandParent := tree.nodes[parent].parent
	var sibling int
	if tree.nodes[parent].child1 == leaf {
		sibling = tree.nodes[parent].child2
	} else {
		sibling = tree.nodes[parent].child1
	}

	if grandParent != nullNode {
		// Destroy the parent and connect the sibling to the grandparent.
		if tree.nodes[grandParent].child1 == parent {
			tree.nodes[grandParent].child1 = sibling
		} else {
			tree.nodes[grandParent].child2 = sibling
		}
		tree.nodes[sibling].parent = grandParent
		tree.freeNode(parent)

		// Adjust ancestor bounds.
		index := grandParent
		for index != nullNode {
			index = tree.balance(index)

			child1 := tree.nodes[index].child1
			child2 := tree.nodes[index].child2

			tree.nodes[index].aabb.CombineTwo(tree.nodes[child1].aabb, tree.nodes[child2].aabb)
			tree.nodes[index].height = 1 + maxInt(tree.nodes[child1].height, tree.nodes[child2].height)

			index = tree.nodes[index].parent
		}
	} else {
		tree.root = sibling
		tree.nodes[sibling].parent = nullNode
		tree.freeNode(parent)
	}
}

// balance performs a left or right rotation if node iA is imbalanced.
// Returns the new subtree root index.
func (tree *DynamicTree) balance(iA int) int {
	assert(iA != nullNode)

	a := &tree.nodes[iA]
	if a.isLeaf() || a.height < 2 {
		return iA
	}

	iB := a.child1
	iC := a.child2
	assert(0 <= iB && iB < tree.nodeCapacity)
	assert(0 <= iC && iC < tree.nodeCapacity)

	b := &tree.nodes[iB]
	c := &tree.nodes[iC]

	balance := c.height - b.height

	// Rotate C up.
	if balance > 1 {
		iF := c.child1
		iG := c.child2
		assert(0 <= iF && iF < tree.nodeCapacity)
		assert(0 <= iG && iG < tree.nodeCapacity)
		f := &tree.nodes[iF]
		g := &tree.nodes[iG]

		// Swap A and C.
		c.child1 = iA
		c.parent = a.parent
		a.parent = iC

		// A's old parent should point to C.
		if c.parent != nullNode {
			if tree.nodes[c.parent].child1 == iA {
				tree.nodes[c.parent].child1 = iC
			} else {
				assert(tree.nodes[c.parent].child2 == iA)
				tree.nodes[c.parent].child2 = iC
			}
		} else {
			tree.root = iC
		}

		if f.height > g.height {
			c.child2 = iF
			a.child2 = iG
			g.parent = iA
			a.aabb.CombineTwo(b.aabb, g.aabb)
			c.aabb.CombineTwo(a.aabb, f.aabb)

			a.height = 1 + maxInt(b.height, g.height)
			c.height = 1 + maxInt(a.height, f.height)
		} else {
			c.child2 = iG
			a.child2 = iF
			f.parent = iA
			a.aabb.CombineTwo(b.aabb, f.aabb)
			c.aabb.CombineTwo(a.aabb, g.aabb)

			a.height = 1 + maxInt(b.height, f.height)
			c.height = 1 + maxInt(a.height, g.height)
		}

		return iC
	}

	// Rotate B up.
	if balance < -1 {
		iD := b.child1
		iE := b.child2
		assert(0 <= iD && iD < tree.nodeCapacity)
		assert(0 <= iE && iE < tree.nodeCapacity)
		d := &tree.nodes[iD]
		e := &tree.nodes[iE]

		// Swap A and B.
		b.child1 = iA
		b.parent = a.parent
		a.parent = iB

		// A's old parent should point to B.
		if b.parent != nullNode {
			if tree.nodes[b.parent].child1 == iA {
				tree.nodes[b.parent].child1 = iB
			} else {
				assert(tree.nodes[b.parent].child2 == iA)
				tree.nodes[b.parent].child2 = iB
			}
		} else {
			tree.root = iB
		}

		if d.height > e.height {
			b.child2 = iD
			a.child1 = iE
			e.parent = iA
			a.aabb.CombineTwo(c.aabb, e.aabb)
			b.aabb.CombineTwo(a.aabb, d.aabb)

			a.height = 1 + maxInt(c.height, e.height)
			b.height = 1 + maxInt(a.height, d.height)
		} else {
			b.child2 = iE
			a.child1 = iD
			d.parent = iA
			a.aabb.CombineTwo(c.aabb, d.aabb)
			b.aabb.CombineTwo(a.aabb, e.aabb)

			a.height = 1 + maxInt(c.height, d.height)
			b.height = 1 + maxInt(a.height, e.height)
		}

		return iB
	}

	return iA
}

// Query visits every leaf whose fat AABB overlaps the given box.
func (tree *DynamicTree) Query(callback TreeQueryCallback, aabb AABB) {
	stack := make([]int, 0, 64)
	stack = append(stack, tree.root)

	for len(stack) > 0 {
		nodeID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if nodeID == nullNode {
			continue
		}

		node := &tree.nodes[nodeID]

		if TestOverlapAABB(node.aabb, aabb) {
			if node.isLeaf() {
				if !callback(nodeID) {
					return
				}
			} else {
				stack = append(stack, node.child1, node.child2)
			}
		}
	}
}

// RayCast walks the tree along a ray, narrowing the segment as the callback
// clips it.
func (tree *DynamicTree) RayCast(callback TreeRayCastCallback, input RayCastInput) {
	p1 := input.P1
	p2 := input.P2
	r := p2.Sub(p1)
	assert(r.LengthSquared() > 0.0)
	r.Normalize()

	// v is perpendicular to the segment.
	v := CrossSV(1.0, r)
	absV := Vec2Abs(v)

	// Separating axis for segment (Gino, p80):
	// |dot(v, p1 - c)| > dot(|v|, h)

	maxFraction := input.MaxFraction

	// Bounding box for the clipped segment.
	var segmentAABB AABB
	{
		t := p1.Add(p2.Sub(p1).Mul(maxFraction))
		segmentAABB.LowerBound = Vec2Min(p1, t)
		segmentAABB.UpperBound = Vec2Max(p1, t)
	}

	stack := make([]int, 0, 64)
	stack = append(stack, tree.root)

	for len(stack) > 0 {
		nodeID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if nodeID == nullNode {
			continue
		}

		node := &tree.nodes[nodeID]

		if !TestOverlapAABB(node.aabb, segmentAABB) {
			continue
		}

		c := node.aabb.Center()
		h := node.aabb.Extents()
		separation := math.Abs(v.Dot(p1.Sub(c))) - absV.Dot(h)
		if separation > 0.0 {
			continue
		}

		if node.isLeaf() {
			subInput := RayCastInput{
				P1:          input.P1,
				P2:          input.P2,
				MaxFraction: maxFraction,
			}

			value := callback(subInput, nodeID)

			if value == 0.0 {
				// The client has terminated the ray cast.
				return
			}

			if value > 0.0 {
				// Shrink the segment bounding box.
				maxFraction = value
				t := p1.Add(p2.Sub(p1).Mul(maxFraction))
				segmentAABB.LowerBound = Vec2Min(p1, t)
				segmentAABB.UpperBound = Vec2Max(p1, t)
			}
		} else {
			stack = append(stack, node.child1, node.child2)
		}
	}
}

func (tree *DynamicTree) Height() int {
	if tree.root == nullNode {
		return 0
	}
	return tree.nodes[tree.root].height
}

// AreaRatio reports the total node perimeter relative to the root, a rough
// tree quality metric.
func (tree *DynamicTree) AreaRatio() float64 {
	if tree.root == nullNode {
		return 0.0
	}

	rootArea := tree.nodes[tree.root].aabb.Perimeter()

	totalArea := 0.0
	for i := 0; i < tree.nodeCapacity; i++ {
		node := &tree.nodes[i]
		if node.height < 0 {
			// Free node.
			continue
		}
		totalArea += node.aabb.Perimeter()
	}

	return totalArea / rootArea
}

// MaxBalance returns the largest height difference between siblings.
func (tree *DynamicTree) MaxBalance() int {
	maxBalance := 0
	for i := 0; i < tree.nodeCapacity; i++ {
		node := &tree.nodes[i]
		if node.height <= 1 {
			continue
		}

		assert(!node.isLeaf())

		balance := absInt(tree.nodes[node.child2].height - tree.nodes[node.child1].height)
		maxBalance = maxInt(maxBalance, balance)
	}

	return maxBalance
}

// ShiftOrigin subtracts newOrigin from every stored AABB, for large-world
// re-centering.
func (tree *DynamicTree) ShiftOrigin(newOrigin Vec2) {
	for i := 0; i < tree.nodeCapacity; i++ {
		tree.nodes[i].aabb.LowerBound = tree.nodes[i].aabb.LowerBound.Sub(newOrigin)
		tree.nodes[i].aabb.UpperBound = tree.nodes[i].aabb.UpperBound.Sub(newOrigin)
	}
}
