package rigid2d

// ChainShape is a free-form sequence of line segments with two-sided
// collision, so any winding order works. Connectivity is used to create
// smooth collisions across segment boundaries.
//
// WARNING: the chain will not collide properly if there are
// self-intersections.
type ChainShape struct {
	shapeCore

	Vertices []Vec2
	Count    int

	PrevVertex, NextVertex       Vec2
	HasPrevVertex, HasNextVertex bool
}

func NewChainShape() *ChainShape {
	return &ChainShape{
		shapeCore: shapeCore{shapeType: ChainShapeType, radius: PolygonRadius},
	}
}

// Clear drops the vertices so the chain can be rebuilt.
func (chain *ChainShape) Clear() {
	chain.Vertices = nil
	chain.Count = 0
}

// CreateLoop builds a closed loop; the first vertex is duplicated at the
// end, and adjacency wraps around.
func (chain *ChainShape) CreateLoop(vertices []Vec2) {
	count := len(vertices)
	assert(chain.Vertices == nil && chain.Count == 0)
	assert(count >= 3)
	if count < 3 {
		return
	}

	for i := 1; i < count; i++ {
		// Vertices this close together produce degenerate segments.
		assert(DistanceSquared(vertices[i-1], vertices[i]) > LinearSlop*LinearSlop)
	}

	chain.Count = count + 1
	chain.Vertices = make([]Vec2, chain.Count)
	copy(chain.Vertices, vertices)
	chain.Vertices[count] = chain.Vertices[0]

	chain.PrevVertex = chain.Vertices[chain.Count-2]
	chain.NextVertex = chain.Vertices[1]
	chain.HasPrevVertex = true
	chain.HasNextVertex = true
}

// CreateChain builds an open chain with no implicit adjacency; use
// SetPrevVertex/SetNextVertex to connect to neighboring geometry.
func (chain *ChainShape) CreateChain(vertices []Vec2) {
	count := len(vertices)
	assert(chain.Vertices == nil && chain.Count == 0)
	assert(count >= 2)
	for i := 1; i < count; i++ {
		assert(DistanceSquared(vertices[i-1], vertices[i]) > LinearSlop*LinearSlop)
	}

	chain.Count = count
	chain.Vertices = make([]Vec2, count)
	copy(chain.Vertices, vertices)

	chain.HasPrevVertex = false
	chain.HasNextVertex = false
	chain.PrevVertex.SetZero()
	chain.NextVertex.SetZero()
}

func (chain *ChainShape) SetPrevVertex(v Vec2) {
	chain.PrevVertex = v
	chain.HasPrevVertex = true
}

func (chain *ChainShape) SetNextVertex(v Vec2) {
	chain.NextVertex = v
	chain.HasNextVertex = true
}

func (chain *ChainShape) Clone() Shape {
	clone := NewChainShape()
	clone.CreateChain(chain.Vertices[:chain.Count])
	clone.PrevVertex = chain.PrevVertex
	clone.NextVertex = chain.NextVertex
	clone.HasPrevVertex = chain.HasPrevVertex
	clone.HasNextVertex = chain.HasNextVertex
	return clone
}

func (chain *ChainShape) ChildCount() int {
	// Edge count = vertex count - 1.
	return chain.Count - 1
}

// ChildEdge materializes one segment of the chain, including ghost vertices.
func (chain *ChainShape) ChildEdge(edge *EdgeShape, index int) {
	assert(0 <= index && index < chain.Count-1)

	edge.shapeType = EdgeShapeType
	edge.radius = chain.radius

	edge.Vertex1 = chain.Vertices[index+0]
	edge.Vertex2 = chain.Vertices[index+1]

	if index > 0 {
		edge.Vertex0 = chain.Vertices[index-1]
		edge.HasVertex0 = true
	} else {
		edge.Vertex0 = chain.PrevVertex
		edge.HasVertex0 = chain.HasPrevVertex
	}

	if index < chain.Count-2 {
		edge.Vertex3 = chain.Vertices[index+2]
		edge.HasVertex3 = true
	} else {
		edge.Vertex3 = chain.NextVertex
		edge.HasVertex3 = chain.HasNextVertex
	}
}

func (chain *ChainShape) TestPoint(xf Transform, p Vec2) bool {
	return false
}

func (chain *ChainShape) RayCast(output *RayCastOutput, input RayCastInput, xf Transform, childIndex int) bool {
	assert(childIndex < chain.Count)

	var edge EdgeShape
	edge.shapeType = EdgeShapeType
	edge.radius = chain.radius

	i1 := childIndex
	i2 := childIndex + 1
	if i2 == chain.Count {
		i2 = 0
	}

	edge.Vertex1 = chain.Vertices[i1]
	edge.Vertex2 = chain.Vertices[i2]

	return edge.RayCast(output, input, xf, 0)
}

func (chain *ChainShape) ComputeAABB(aabb *AABB, xf Transform, childIndex int) {
	assert(childIndex < chain.Count)

	i1 := childIndex
	i2 := childIndex + 1
	if i2 == chain.Count {
		i2 = 0
	}

	v1 := xf.Apply(chain.Vertices[i1])
	v2 := xf.Apply(chain.Vertices[i2])

	aabb.LowerBound = Vec2Min(v1, v2)
	aabb.UpperBound = Vec2Max(v1, v2)
}

// Chains are static; they carry no mass.
func (chain *ChainShape) ComputeMass(massData *MassData, density float64) {
	massData.Mass = 0.0
	massData.Center.SetZero()
	massData.I = 0.0
}
