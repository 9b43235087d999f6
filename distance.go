package rigid2d

// DistanceProxy wraps any shape for the GJK distance algorithm.
type DistanceProxy struct {
	buffer   [2]Vec2
	vertices []Vec2
	count    int
	radius   float64
}

// Set extracts the vertex cloud of the given child shape.
func (p *DistanceProxy) Set(shape Shape, index int) {
	switch s := shape.(type) {
	case *CircleShape:
		p.buffer[0] = s.P
		p.vertices = p.buffer[:1]
		p.count = 1
		p.radius = s.radius

	case *PolygonShape:
		p.vertices = s.Vertices[:]
		p.count = s.Count
		p.radius = s.radius

	case *ChainShape:
		assert(0 <= index && index < s.Count)

		p.buffer[0] = s.Vertices[index]
		if index+1 < s.Count {
			p.buffer[1] = s.Vertices[index+1]
		} else {
			p.buffer[1] = s.Vertices[0]
		}

		p.vertices = p.buffer[:]
		p.count = 2
		p.radius = s.radius

	case *EdgeShape:
		p.buffer[0] = s.Vertex1
		p.buffer[1] = s.Vertex2
		p.vertices = p.buffer[:]
		p.count = 2
		p.radius = s.radius

	default:
		assert(false)
	}
}

func (p *DistanceProxy) VertexCount() int {
	return p.count
}

func (p *DistanceProxy) Vertex(index int) Vec2 {
	assert(0 <= index && index < p.count)
	return p.vertices[index]
}

// Support returns the index of the vertex with the maximal projection on d.
func (p *DistanceProxy) Support(d Vec2) int {
	bestIndex := 0
	bestValue := p.vertices[0].Dot(d)
	for i := 1; i < p.count; i++ {
		value := p.vertices[i].Dot(d)
		if value > bestValue {
			bestIndex = i
			bestValue = value
		}
	}
	return bestIndex
}

// SimplexCache warm-starts ShapeDistance. Zero value means empty.
type SimplexCache struct {
	Metric float64 // length or area
	Count  int
	IndexA [3]int // vertices on shape A
	IndexB [3]int // vertices on shape B
}

// DistanceInput carries the two proxies and transforms. UseRadii includes
// the shape skins in the result.
type DistanceInput struct {
	ProxyA     DistanceProxy
	ProxyB     DistanceProxy
	TransformA Transform
	TransformB Transform
	UseRadii   bool
}

// DistanceOutput reports the closest points and their distance.
type DistanceOutput struct {
	PointA     Vec2
	PointB     Vec2
	Distance   float64
	Iterations int
}

type simplexVertex struct {
	wA     Vec2    // support point in proxyA
	wB     Vec2    // support point in proxyB
	w      Vec2    // wB - wA
	a      float64 // barycentric coordinate for the closest point
	indexA int
	indexB int
}

type simplex struct {
	vs    [3]simplexVertex
	count int
}

func (s *simplex) readCache(cache *SimplexCache, proxyA *DistanceProxy, transformA Transform, proxyB *DistanceProxy, transformB Transform) {
	assert(cache.Count <= 3)

	s.count = cache.Count
	for i := 0; i < s.count; i++ {
		v := &s.vs[i]
		v.indexA = cache.IndexA[i]
		v.indexB = cache.IndexB[i]
		v.wA = transformA.Apply(proxyA.Vertex(v.indexA))
		v.wB = transformB.Apply(proxyB.Vertex(v.indexB))
		v.w = v.wB.Sub(v.wA)
		v.a = 0.0
	}

	// Flush the simplex if the new metric differs substantially from the
	// cached one.
	if s.count > 1 {
		metric1 := cache.Metric
		metric2 := s.metric()
		if metric2 < 0.5*metric1 || 2.0*metric1 < metric2 || metric2 < epsilon {
			s.count = 0
		}
	}

	// Cache empty or invalid.
	if s.count == 0 {
		v := &s.vs[0]
		v.indexA = 0
		v.indexB = 0
		v.wA = transformA.Apply(proxyA.Vertex(0))
		v.wB = transformB.Apply(proxyB.Vertex(0))
		v.w = v.wB.Sub(v.wA)
		v.a = 1.0
		s.count = 1
	}
}

func (s *simplex) writeCache(cache *SimplexCache) {
	cache.Metric = s.metric()
	cache.Count = s.count
	for i := 0; i < s.count; i++ {
		cache.IndexA[i] = s.vs[i].indexA
		cache.IndexB[i] = s.vs[i].indexB
	}
}

func (s *simplex) searchDirection() Vec2 {
	switch s.count {
	case 1:
		return s.vs[0].w.Neg()

	case 2:
		e12 := s.vs[1].w.Sub(s.vs[0].w)
		sgn := e12.Cross(s.vs[0].w.Neg())
		if sgn > 0.0 {
			// Origin is left of e12.
			return CrossSV(1.0, e12)
		}
		// Origin is right of e12.
		return CrossVS(e12, 1.0)

	default:
		assert(false)
		return Vec2{}
	}
}

func (s *simplex) witnessPoints(pA, pB *Vec2) {
	switch s.count {
	case 1:
		*pA = s.vs[0].wA
		*pB = s.vs[0].wB

	case 2:
		*pA = s.vs[0].wA.Mul(s.vs[0].a).Add(s.vs[1].wA.Mul(s.vs[1].a))
		*pB = s.vs[0].wB.Mul(s.vs[0].a).Add(s.vs[1].wB.Mul(s.vs[1].a))

	case 3:
		*pA = s.vs[0].wA.Mul(s.vs[0].a).
			Add(s.vs[1].wA.Mul(s.vs[1].a)).
			Add(s.vs[2].wA.Mul(s.vs[2].a))
		*pB = *pA

	default:
		assert(false)
	}
}

func (s *simplex) metric() float64 {
	switch s.count {
	case 1:
		return 0.0

	case 2:
		return Distance(s.vs[0].w, s.vs[1].w)

	case 3:
		return s.vs[1].w.Sub(s.vs[0].w).Cross(s.vs[2].w.Sub(s.vs[0].w))

	default:
		assert(false)
		return 0.0
	}
}

// solve2 resolves a line segment using barycentric coordinates.
func (s *simplex) solve2() {
	w1 := s.vs[0].w
	w2 := s.vs[1].w
	e12 := w2.Sub(w1)

	// w1 region
	d12_2 := -w1.Dot(e12)
	if d12_2 <= 0.0 {
		// a2 <= 0, so clamp it to 0.
		s.vs[0].a = 1.0
		s.count = 1
		return
	}

	// w2 region
	d12_1 := w2.Dot(e12)
	if d12_1 <= 0.0 {
		// a1 <= 0, so clamp it to 0.
		s.vs[1].a = 1.0
		s.count = 1
		s.vs[0] = s.vs[1]
		return
	}

	// e12 region
	invD12 := 1.0 / (d12_1 + d12_2)
	s.vs[0].a = d12_1 * invD12
	s.vs[1].a = d12_2 * invD12
	s.count = 2
}

// solve3 resolves a triangle. Possible regions:
// a vertex, an edge, or the interior.
func (s *simplex) solve3() {
	w1 := s.vs[0].w
	w2 := s.vs[1].w
	w3 := s.vs[2].w

	// Edge12: a3 = 0
	e12 := w2.Sub(w1)
	w1e12 := w1.Dot(e12)
	w2e12 := w2.Dot(e12)
	d12_1 := w2e12
	d12_2 := -w1e12

	// Edge13: a2 = 0
	e13 := w3.Sub(w1)
	w1e13 := w1.Dot(e13)
	w3e13 := w3.Dot(e13)
	d13_1 := w3e13
	d13_2 := -w1e13

	// Edge23: a1 = 0
	e23 := w3.Sub(w2)
	w2e23 := w2.Dot(e23)
	w3e23 := w3.Dot(e23)
	d23_1 := w3e23
	d23_2 := -w2e23

	// Triangle123
	n123 := e12.Cross(e13)

	d123_1 := n123 * w2.Cross(w3)
	d123_2 := n123 * w3.Cross(w1)
	d123_3 := n123 * w1.Cross(w2)

	// w1 region
	if d12_2 <= 0.0 && d13_2 <= 0.0 {
		s.vs[0].a = 1.0
		s.count = 1
		return
	}

	// e12
	if d12_1 > 0.0 && d12_2 > 0.0 && d123_3 <= 0.0 {
		invD12 := 1.0 / (d12_1 + d12_2)
		s.vs[0].a = d12_1 * invD12
		s.vs[1].a = d12_2 * invD12
		s.count = 2
		return
	}

	// e13
	if d13_1 > 0.0 && d13_2 > 0.0 && d123_2 <= 0.0 {
		invD13 := 1.0 / (d13_1 + d13_2)
		s.vs[0].a = d13_1 * invD13
		s.vs[2].a = d13_2 * invD13
		s.count = 2
		s.vs[1] = s.vs[2]
		return
	}

	// w2 region
	if d12_1 <= 0.0 && d23_2 <= 0.0 {
		s.vs[1].a = 1.0
		s.count = 1
		s.vs[0] = s.vs[1]
		return
	}

	// w3 region
	if d13_1 <= 0.0 && d23_1 <= 0.0 {
		s.vs[2].a = 1.0
		s.count = 1
		s.vs[0] = s.vs[2]
		return
	}

	// e23
	if d23_1 > 0.0 && d23_2 > 0.0 && d123_1 <= 0.0 {
		invD23 := 1.0 / (d23_1 + d23_2)
		s.vs[1].a = d23_1 * invD23
		s.vs[2].a = d23_2 * invD23
		s.count = 2
		s.vs[0] = s.vs[2]
		return
	}

	// Interior of triangle123.
	invD123 := 1.0 / (d123_1 + d123_2 + d123_3)
	s.vs[0].a = d123_1 * invD123
	s.vs[1].a = d123_2 * invD123
	s.vs[2].a = d123_3 * invD123
	s.count = 3
}

// ShapeDistance computes the closest points between two convex shapes using
// GJK with Voronoi regions and barycentric coordinates.
func ShapeDistance(output *DistanceOutput, cache *SimplexCache, input *DistanceInput) {
	proxyA := &input.ProxyA
	proxyB := &input.ProxyB

	transformA := input.TransformA
	transformB := input.TransformB

	var s simplex
	s.readCache(cache, proxyA, transformA, proxyB, transformB)

	const kMaxIters = 20

	// The vertices of the last simplex, kept to detect duplicates and
	// prevent cycling.
	var saveA, saveB [3]int
	saveCount := 0

	iter := 0
	for iter < kMaxIters {
		saveCount = s.count
		for i := 0; i < saveCount; i++ {
			saveA[i] = s.vs[i].indexA
			saveB[i] = s.vs[i].indexB
		}

		switch s.count {
		case 1:
		case 2:
			s.solve2()
		case 3:
			s.solve3()
		default:
			assert(false)
		}

		// With 3 points the origin is inside the triangle.
		if s.count == 3 {
			break
		}

		d := s.searchDirection()

		// A vanishing search direction means the origin sits on a simplex
		// feature; treat as overlapped rather than forcing a zero result.
		if d.LengthSquared() < epsilon*epsilon {
			break
		}

		// Tentative new simplex vertex from the support points.
		vertex := &s.vs[s.count]
		vertex.indexA = proxyA.Support(transformA.Q.ApplyT(d.Neg()))
		vertex.wA = transformA.Apply(proxyA.Vertex(vertex.indexA))
		vertex.indexB = proxyB.Support(transformB.Q.ApplyT(d))
		vertex.wB = transformB.Apply(proxyB.Vertex(vertex.indexB))
		vertex.w = vertex.wB.Sub(vertex.wA)

		// Iteration count equals the number of support point calls.
		iter++

		// Main termination criterion: a repeated support point means no
		// progress is possible.
		duplicate := false
		for i := 0; i < saveCount; i++ {
			if vertex.indexA == saveA[i] && vertex.indexB == saveB[i] {
				duplicate = true
				break
			}
		}
		if duplicate {
			break
		}

		s.count++
	}

	s.witnessPoints(&output.PointA, &output.PointB)
	output.Distance = Distance(output.PointA, output.PointB)
	output.Iterations = iter

	s.writeCache(cache)

	if input.UseRadii {
		rA := proxyA.radius
		rB := proxyB.radius

		if output.Distance > rA+rB && output.Distance > epsilon {
			// Shapes still not overlapped; move the witness points to the
			// outer surfaces.
			output.Distance -= rA + rB
			normal := output.PointB.Sub(output.PointA)
			normal.Normalize()
			output.PointA = output.PointA.Add(normal.Mul(rA))
			output.PointB = output.PointB.Sub(normal.Mul(rB))
		} else {
			// Overlapped once radii are considered; collapse the witness
			// points to the midpoint.
			p := output.PointA.Add(output.PointB).Mul(0.5)
			output.PointA = p
			output.PointB = p
			output.Distance = 0.0
		}
	}
}
