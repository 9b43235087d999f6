package rigid2d

// EdgeShape is a line segment. Segments can be connected in chains or loops;
// the optional adjacent vertices supply connectivity so that contact normals
// stay smooth across shared vertices.
type EdgeShape struct {
	shapeCore

	Vertex1, Vertex2 Vec2

	// Adjacent "ghost" vertices, used for smooth collision.
	Vertex0, Vertex3       Vec2
	HasVertex0, HasVertex3 bool
}

func NewEdgeShape() *EdgeShape {
	return &EdgeShape{
		shapeCore: shapeCore{shapeType: EdgeShapeType, radius: PolygonRadius},
	}
}

// Set defines the segment endpoints and clears adjacency.
func (edge *EdgeShape) Set(v1, v2 Vec2) {
	edge.Vertex1 = v1
	edge.Vertex2 = v2
	edge.HasVertex0 = false
	edge.HasVertex3 = false
}

func (edge *EdgeShape) Clone() Shape {
	clone := *edge
	return &clone
}

func (edge *EdgeShape) ChildCount() int {
	return 1
}

func (edge *EdgeShape) TestPoint(xf Transform, p Vec2) bool {
	return false
}

// RayCast intersects the ray with the segment:
//
//	p = p1 + t * d
//	v = v1 + s * e
//	p1 + t * d = v1 + s * e
func (edge *EdgeShape) RayCast(output *RayCastOutput, input RayCastInput, xf Transform, childIndex int) bool {
	// Put the ray into the edge's frame.
	p1 := xf.Q.ApplyT(input.P1.Sub(xf.P))
	p2 := xf.Q.ApplyT(input.P2.Sub(xf.P))
	d := p2.Sub(p1)

	v1 := edge.Vertex1
	v2 := edge.Vertex2
	e := v2.Sub(v1)
	normal := Vec2{e.Y, -e.X}
	normal.Normalize()

	// q = p1 + t * d with dot(normal, q - v1) = 0
	numerator := normal.Dot(v1.Sub(p1))
	denominator := normal.Dot(d)

	if denominator == 0.0 {
		return false
	}

	t := numerator / denominator
	if t < 0.0 || input.MaxFraction < t {
		return false
	}

	q := p1.Add(d.Mul(t))

	// q = v1 + s * r with s = dot(q - v1, r) / dot(r, r)
	r := v2.Sub(v1)
	rr := r.Dot(r)
	if rr == 0.0 {
		return false
	}

	s := q.Sub(v1).Dot(r) / rr
	if s < 0.0 || 1.0 < s {
		return false
	}

	output.Fraction = t
	if numerator > 0.0 {
		output.Normal = xf.Q.Apply(normal).Neg()
	} else {
		output.Normal = xf.Q.Apply(normal)
	}
	return true
}

func (edge *EdgeShape) ComputeAABB(aabb *AABB, xf Transform, childIndex int) {
	v1 := xf.Apply(edge.Vertex1)
	v2 := xf.Apply(edge.Vertex2)

	lower := Vec2Min(v1, v2)
	upper := Vec2Max(v1, v2)

	r := Vec2{edge.radius, edge.radius}
	aabb.LowerBound = lower.Sub(r)
	aabb.UpperBound = upper.Add(r)
}

func (edge *EdgeShape) ComputeMass(massData *MassData, density float64) {
	massData.Mass = 0.0
	massData.Center = edge.Vertex1.Add(edge.Vertex2).Mul(0.5)
	massData.I = 0.0
}
