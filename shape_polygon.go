package rigid2d

// PolygonShape is a solid convex polygon. The interior is assumed to be to
// the left of each edge. At most MaxPolygonVertices vertices.
type PolygonShape struct {
	shapeCore

	Centroid Vec2
	Vertices [MaxPolygonVertices]Vec2
	Normals  [MaxPolygonVertices]Vec2
	Count    int
}

func NewPolygonShape() *PolygonShape {
	return &PolygonShape{
		shapeCore: shapeCore{shapeType: PolygonShapeType, radius: PolygonRadius},
	}
}

// NewBoxShape builds an axis-aligned box with the given half extents.
func NewBoxShape(hx, hy float64) *PolygonShape {
	poly := NewPolygonShape()
	poly.SetAsBox(hx, hy)
	return poly
}

func (poly *PolygonShape) Clone() Shape {
	clone := *poly
	return &clone
}

func (poly *PolygonShape) ChildCount() int {
	return 1
}

// SetAsBox makes the polygon an axis-aligned box centered on the origin.
func (poly *PolygonShape) SetAsBox(hx, hy float64) {
	poly.Count = 4
	poly.Vertices[0] = Vec2{-hx, -hy}
	poly.Vertices[1] = Vec2{hx, -hy}
	poly.Vertices[2] = Vec2{hx, hy}
	poly.Vertices[3] = Vec2{-hx, hy}
	poly.Normals[0] = Vec2{0.0, -1.0}
	poly.Normals[1] = Vec2{1.0, 0.0}
	poly.Normals[2] = Vec2{0.0, 1.0}
	poly.Normals[3] = Vec2{-1.0, 0.0}
	poly.Centroid.SetZero()
}

// SetAsOrientedBox makes the polygon a box at the given center and angle in
// the body frame.
func (poly *PolygonShape) SetAsOrientedBox(hx, hy float64, center Vec2, angle float64) {
	poly.SetAsBox(hx, hy)
	poly.Centroid = center

	var xf Transform
	xf.Set(center, angle)

	for i := 0; i < poly.Count; i++ {
		poly.Vertices[i] = xf.Apply(poly.Vertices[i])
		poly.Normals[i] = xf.Q.Apply(poly.Normals[i])
	}
}

func computeCentroid(vs []Vec2, count int) Vec2 {
	assert(count >= 3)

	var c Vec2
	area := 0.0

	// pRef is the reference point for forming triangles. Its location does
	// not change the result, up to rounding.
	var pRef Vec2
	for i := 0; i < count; i++ {
		pRef = pRef.Add(vs[i])
	}
	pRef = pRef.Mul(1.0 / float64(count))

	const inv3 = 1.0 / 3.0

	for i := 0; i < count; i++ {
		p1 := pRef
		p2 := vs[i]
		p3 := vs[0]
		if i+1 < count {
			p3 = vs[i+1]
		}

		e1 := p2.Sub(p1)
		e2 := p3.Sub(p1)

		triangleArea := 0.5 * e1.Cross(e2)
		area += triangleArea

		// Area weighted centroid.
		c = c.Add(p1.Add(p2).Add(p3).Mul(triangleArea * inv3))
	}

	assert(area > epsilon)
	return c.Mul(1.0 / area)
}

// Set builds the convex hull of the given points. Collinear and nearly
// coincident points are welded away; the result must have at least three
// distinct vertices.
func (poly *PolygonShape) Set(vertices []Vec2) {
	count := len(vertices)
	assert(3 <= count && count <= MaxPolygonVertices)
	if count < 3 {
		poly.SetAsBox(1.0, 1.0)
		return
	}

	n := minInt(count, MaxPolygonVertices)

	// Weld close points.
	var ps [MaxPolygonVertices]Vec2
	tempCount := 0
	for i := 0; i < n; i++ {
		v := vertices[i]
		unique := true
		for j := 0; j < tempCount; j++ {
			if DistanceSquared(v, ps[j]) < (0.5*LinearSlop)*(0.5*LinearSlop) {
				unique = false
				break
			}
		}
		if unique {
			ps[tempCount] = v
			tempCount++
		}
	}

	n = tempCount
	if n < 3 {
		// Degenerate polygon.
		assert(false)
		poly.SetAsBox(1.0, 1.0)
		return
	}

	// Gift wrapping: start from the right-most point on the hull.
	i0 := 0
	x0 := ps[0].X
	for i := 1; i < n; i++ {
		x := ps[i].X
		if x > x0 || (x == x0 && ps[i].Y < ps[i0].Y) {
			i0 = i
			x0 = x
		}
	}

	var hull [MaxPolygonVertices]int
	m := 0
	ih := i0

	for {
		assert(m < MaxPolygonVertices)
		hull[m] = ih

		ie := 0
		for j := 1; j < n; j++ {
			if ie == ih {
				ie = j
				continue
			}

			r := ps[ie].Sub(ps[hull[m]])
			v := ps[j].Sub(ps[hull[m]])
			c := r.Cross(v)
			if c < 0.0 {
				ie = j
			}

			// Collinearity check.
			if c == 0.0 && v.LengthSquared() > r.LengthSquared() {
				ie = j
			}
		}

		m++
		ih = ie

		if ie == i0 {
			break
		}
	}

	if m < 3 {
		// Degenerate polygon.
		assert(false)
		poly.SetAsBox(1.0, 1.0)
		return
	}

	poly.Count = m

	for i := 0; i < m; i++ {
		poly.Vertices[i] = ps[hull[i]]
	}

	// Edge normals. Edges must have non-zero length.
	for i := 0; i < m; i++ {
		i1 := i
		i2 := 0
		if i+1 < m {
			i2 = i + 1
		}

		edge := poly.Vertices[i2].Sub(poly.Vertices[i1])
		assert(edge.LengthSquared() > epsilon*epsilon)
		poly.Normals[i] = CrossVS(edge, 1.0)
		poly.Normals[i].Normalize()
	}

	poly.Centroid = computeCentroid(poly.Vertices[:], m)
}

func (poly *PolygonShape) TestPoint(xf Transform, p Vec2) bool {
	pLocal := xf.Q.ApplyT(p.Sub(xf.P))

	for i := 0; i < poly.Count; i++ {
		dot := poly.Normals[i].Dot(pLocal.Sub(poly.Vertices[i]))
		if dot > 0.0 {
			return false
		}
	}

	return true
}

func (poly *PolygonShape) RayCast(output *RayCastOutput, input RayCastInput, xf Transform, childIndex int) bool {
	// Put the ray into the polygon's frame.
	p1 := xf.Q.ApplyT(input.P1.Sub(xf.P))
	p2 := xf.Q.ApplyT(input.P2.Sub(xf.P))
	d := p2.Sub(p1)

	lower, upper := 0.0, input.MaxFraction
	index := -1

	for i := 0; i < poly.Count; i++ {
		// p = p1 + a * d
		// dot(normal, p - v) = 0
		// dot(normal, p1 - v) + a * dot(normal, d) = 0
		numerator := poly.Normals[i].Dot(poly.Vertices[i].Sub(p1))
		denominator := poly.Normals[i].Dot(d)

		if denominator == 0.0 {
			if numerator < 0.0 {
				return false
			}
		} else {
			// Division-free predicate: the inequality flips when the
			// denominator is negative.
			if denominator < 0.0 && numerator < lower*denominator {
				// The segment enters this half-space.
				lower = numerator / denominator
				index = i
			} else if denominator > 0.0 && numerator < upper*denominator {
				// The segment exits this half-space.
				upper = numerator / denominator
			}
		}

		if upper < lower {
			return false
		}
	}

	assert(0.0 <= lower && lower <= input.MaxFraction)

	if index >= 0 {
		output.Fraction = lower
		output.Normal = xf.Q.Apply(poly.Normals[index])
		return true
	}

	return false
}

func (poly *PolygonShape) ComputeAABB(aabb *AABB, xf Transform, childIndex int) {
	lower := xf.Apply(poly.Vertices[0])
	upper := lower

	for i := 1; i < poly.Count; i++ {
		v := xf.Apply(poly.Vertices[i])
		lower = Vec2Min(lower, v)
		upper = Vec2Max(upper, v)
	}

	r := Vec2{poly.radius, poly.radius}
	aabb.LowerBound = lower.Sub(r)
	aabb.UpperBound = upper.Add(r)
}

func (poly *PolygonShape) ComputeMass(massData *MassData, density float64) {
	// Integrate mass, centroid and inertia triangle by triangle around a
	// reference point s inside the polygon; the triangle centroid shortcut
	// (p1+p2+p3)/3 keeps the integrals closed-form.
	assert(poly.Count >= 3)

	var center Vec2
	area := 0.0
	inertia := 0.0

	var s Vec2
	for i := 0; i < poly.Count; i++ {
		s = s.Add(poly.Vertices[i])
	}
	s = s.Mul(1.0 / float64(poly.Count))

	const kInv3 = 1.0 / 3.0

	for i := 0; i < poly.Count; i++ {
		e1 := poly.Vertices[i].Sub(s)
		var e2 Vec2
		if i+1 < poly.Count {
			e2 = poly.Vertices[i+1].Sub(s)
		} else {
			e2 = poly.Vertices[0].Sub(s)
		}

		d := e1.Cross(e2)

		triangleArea := 0.5 * d
		area += triangleArea

		// Area weighted centroid.
		center = center.Add(e1.Add(e2).Mul(triangleArea * kInv3))

		intx2 := e1.X*e1.X + e2.X*e1.X + e2.X*e2.X
		inty2 := e1.Y*e1.Y + e2.Y*e1.Y + e2.Y*e2.Y

		inertia += (0.25 * kInv3 * d) * (intx2 + inty2)
	}

	massData.Mass = density * area

	assert(area > epsilon)
	center = center.Mul(1.0 / area)
	massData.Center = center.Add(s)

	// Inertia relative to the reference point, then shifted to the center
	// of mass and on to the body origin.
	massData.I = density * inertia
	massData.I += massData.Mass * (massData.Center.Dot(massData.Center) - center.Dot(center))
}

// Validate checks convexity. Used by tests and debug tooling.
func (poly *PolygonShape) Validate() bool {
	for i := 0; i < poly.Count; i++ {
		i1 := i
		i2 := 0
		if i < poly.Count-1 {
			i2 = i1 + 1
		}

		p := poly.Vertices[i1]
		e := poly.Vertices[i2].Sub(p)

		for j := 0; j < poly.Count; j++ {
			if j == i1 || j == i2 {
				continue
			}

			v := poly.Vertices[j].Sub(p)
			if e.Cross(v) < 0.0 {
				return false
			}
		}
	}

	return true
}
