package rigid2d

import (
	"math"
)

// CollideEdgeAndCircle computes contact points for an edge versus a circle,
// accounting for edge connectivity.
func CollideEdgeAndCircle(manifold *Manifold, edgeA *EdgeShape, xfA Transform, circleB *CircleShape, xfB Transform) {
	manifold.PointCount = 0

	// Circle in the frame of the edge.
	q := xfA.ApplyT(xfB.Apply(circleB.P))

	a := edgeA.Vertex1
	b := edgeA.Vertex2
	e := b.Sub(a)

	// Barycentric coordinates.
	u := e.Dot(b.Sub(q))
	v := e.Dot(q.Sub(a))

	radius := edgeA.radius + circleB.radius

	var cf ContactFeature
	cf.IndexB = 0
	cf.TypeB = FeatureVertex

	// Region A
	if v <= 0.0 {
		p := a
		d := q.Sub(p)
		dd := d.Dot(d)
		if dd > radius*radius {
			return
		}

		// An edge connected to A owns this vertex region.
		if edgeA.HasVertex0 {
			a1 := edgeA.Vertex0
			b1 := a
			e1 := b1.Sub(a1)
			u1 := e1.Dot(b1.Sub(q))

			// Circle in region AB of the previous edge?
			if u1 > 0.0 {
				return
			}
		}

		cf.IndexA = 0
		cf.TypeA = FeatureVertex
		manifold.PointCount = 1
		manifold.Type = ManifoldCircles
		manifold.LocalNormal.SetZero()
		manifold.LocalPoint = p
		manifold.Points[0].ID = ContactID(cf)
		manifold.Points[0].LocalPoint = circleB.P
		return
	}

	// Region B
	if u <= 0.0 {
		p := b
		d := q.Sub(p)
		dd := d.Dot(d)
		if dd > radius*radius {
			return
		}

		// An edge connected to B owns this vertex region.
		if edgeA.HasVertex3 {
			b2 := edgeA.Vertex3
			a2 := b
			e2 := b2.Sub(a2)
			v2 := e2.Dot(q.Sub(a2))

			// Circle in region AB of the next edge?
			if v2 > 0.0 {
				return
			}
		}

		cf.IndexA = 1
		cf.TypeA = FeatureVertex
		manifold.PointCount = 1
		manifold.Type = ManifoldCircles
		manifold.LocalNormal.SetZero()
		manifold.LocalPoint = p
		manifold.Points[0].ID = ContactID(cf)
		manifold.Points[0].LocalPoint = circleB.P
		return
	}

	// Region AB
	den := e.Dot(e)
	assert(den > 0.0)
	p := a.Mul(u).Add(b.Mul(v)).Mul(1.0 / den)
	d := q.Sub(p)
	dd := d.Dot(d)
	if dd > radius*radius {
		return
	}

	n := Vec2{-e.Y, e.X}
	if n.Dot(q.Sub(a)) < 0.0 {
		n = n.Neg()
	}
	n.Normalize()

	cf.IndexA = 0
	cf.TypeA = FeatureFace
	manifold.PointCount = 1
	manifold.Type = ManifoldFaceA
	manifold.LocalNormal = n
	manifold.LocalPoint = a
	manifold.Points[0].ID = ContactID(cf)
	manifold.Points[0].LocalPoint = circleB.P
}

// epAxis tracks the best separating axis.
const (
	epAxisUnknown uint8 = iota
	epAxisEdgeA
	epAxisEdgeB
)

type epAxis struct {
	kind       uint8
	index      int
	separation float64
}

// tempPolygon holds polygon B expressed in frame A.
type tempPolygon struct {
	vertices [MaxPolygonVertices]Vec2
	normals  [MaxPolygonVertices]Vec2
	count    int
}

// referenceFace is the face used for clipping.
type referenceFace struct {
	i1, i2 int
	v1, v2 Vec2
	normal Vec2

	sideNormal1 Vec2
	sideOffset1 float64

	sideNormal2 Vec2
	sideOffset2 float64
}

// epCollider collides an edge and a polygon, taking edge adjacency into
// account:
//  1. Classify v1 and v2
//  2. Classify polygon centroid as front or back
//  3. Flip normal if necessary
//  4. Initialize normal range to [-pi, pi] about the face normal
//  5. Adjust the range according to adjacent edges
//  6. Visit each separating axis, only accepting axes within the range
//  7. Return if any axis indicates separation
//  8. Clip
type epCollider struct {
	polygonB tempPolygon

	xf                        Transform
	centroidB                 Vec2
	v0, v1, v2, v3            Vec2
	normal0, normal1, normal2 Vec2
	normal                    Vec2
	lowerLimit, upperLimit    Vec2
	radius                    float64
	front                     bool
}

func (collider *epCollider) collide(manifold *Manifold, edgeA *EdgeShape, xfA Transform, polygonB *PolygonShape, xfB Transform) {
	collider.xf = MulTTransforms(xfA, xfB)
	collider.centroidB = collider.xf.Apply(polygonB.Centroid)

	collider.v0 = edgeA.Vertex0
	collider.v1 = edgeA.Vertex1
	collider.v2 = edgeA.Vertex2
	collider.v3 = edgeA.Vertex3

	hasVertex0 := edgeA.HasVertex0
	hasVertex3 := edgeA.HasVertex3

	edge1 := collider.v2.Sub(collider.v1)
	edge1.Normalize()
	collider.normal1 = Vec2{edge1.Y, -edge1.X}
	offset1 := collider.normal1.Dot(collider.centroidB.Sub(collider.v1))
	offset0, offset2 := 0.0, 0.0
	convex1, convex2 := false, false

	// Preceding edge.
	if hasVertex0 {
		edge0 := collider.v1.Sub(collider.v0)
		edge0.Normalize()
		collider.normal0 = Vec2{edge0.Y, -edge0.X}
		convex1 = edge0.Cross(edge1) >= 0.0
		offset0 = collider.normal0.Dot(collider.centroidB.Sub(collider.v0))
	}

	// Following edge.
	if hasVertex3 {
		edge2 := collider.v3.Sub(collider.v2)
		edge2.Normalize()
		collider.normal2 = Vec2{edge2.Y, -edge2.X}
		convex2 = edge1.Cross(edge2) > 0.0
		offset2 = collider.normal2.Dot(collider.centroidB.Sub(collider.v2))
	}

	// Determine front or back collision, and the admissible normal range.
	switch {
	case hasVertex0 && hasVertex3:
		if convex1 && convex2 {
			collider.front = offset0 >= 0.0 || offset1 >= 0.0 || offset2 >= 0.0
			if collider.front {
				collider.normal = collider.normal1
				collider.lowerLimit = collider.normal0
				collider.upperLimit = collider.normal2
			} else {
				collider.normal = collider.normal1.Neg()
				collider.lowerLimit = collider.normal1.Neg()
				collider.upperLimit = collider.normal1.Neg()
			}
		} else if convex1 {
			collider.front = offset0 >= 0.0 || (offset1 >= 0.0 && offset2 >= 0.0)
			if collider.front {
				collider.normal = collider.normal1
				collider.lowerLimit = collider.normal0
				collider.upperLimit = collider.normal1
			} else {
				collider.normal = collider.normal1.Neg()
				collider.lowerLimit = collider.normal2.Neg()
				collider.upperLimit = collider.normal1.Neg()
			}
		} else if convex2 {
			collider.front = offset2 >= 0.0 || (offset0 >= 0.0 && offset1 >= 0.0)
			if collider.front {
				collider.normal = collider.normal1
				collider.lowerLimit = collider.normal1
				collider.upperLimit = collider.normal2
			} else {
				collider.normal = collider.normal1.Neg()
				collider.lowerLimit = collider.normal1.Neg()
				collider.upperLimit = collider.normal0.Neg()
			}
		} else {
			collider.front = offset0 >= 0.0 && offset1 >= 0.0 && offset2 >= 0.0
			if collider.front {
				collider.normal = collider.normal1
				collider.lowerLimit = collider.normal1
				collider.upperLimit = collider.normal1
			} else {
				collider.normal = collider.normal1.Neg()
				collider.lowerLimit = collider.normal2.Neg()
				collider.upperLimit = collider.normal0.Neg()
			}
		}

	case hasVertex0:
		if convex1 {
			collider.front = offset0 >= 0.0 || offset1 >= 0.0
			if collider.front {
				collider.normal = collider.normal1
				collider.lowerLimit = collider.normal0
				collider.upperLimit = collider.normal1.Neg()
			} else {
				collider.normal = collider.normal1.Neg()
				collider.lowerLimit = collider.normal1
				collider.upperLimit = collider.normal1.Neg()
			}
		} else {
			collider.front = offset0 >= 0.0 && offset1 >= 0.0
			if collider.front {
				collider.normal = collider.normal1
				collider.lowerLimit = collider.normal1
				collider.upperLimit = collider.normal1.Neg()
			} else {
				collider.normal = collider.normal1.Neg()
				collider.lowerLimit = collider.normal1
				collider.upperLimit = collider.normal0.Neg()
			}
		}

	case hasVertex3:
		if convex2 {
			collider.front = offset1 >= 0.0 || offset2 >= 0.0
			if collider.front {
				collider.normal = collider.normal1
				collider.lowerLimit = collider.normal1.Neg()
				collider.upperLimit = collider.normal2
			} else {
				collider.normal = collider.normal1.Neg()
				collider.lowerLimit = collider.normal1.Neg()
				collider.upperLimit = collider.normal1
			}
		} else {
			collider.front = offset1 >= 0.0 && offset2 >= 0.0
			if collider.front {
				collider.normal = collider.normal1
				collider.lowerLimit = collider.normal1.Neg()
				collider.upperLimit = collider.normal1
			} else {
				collider.normal = collider.normal1.Neg()
				collider.lowerLimit = collider.normal2.Neg()
				collider.upperLimit = collider.normal1
			}
		}

	default:
		collider.front = offset1 >= 0.0
		if collider.front {
			collider.normal = collider.normal1
			collider.lowerLimit = collider.normal1.Neg()
			collider.upperLimit = collider.normal1.Neg()
		} else {
			collider.normal = collider.normal1.Neg()
			collider.lowerLimit = collider.normal1
			collider.upperLimit = collider.normal1
		}
	}

	// Polygon B in frame A.
	collider.polygonB.count = polygonB.Count
	for i := 0; i < polygonB.Count; i++ {
		collider.polygonB.vertices[i] = collider.xf.Apply(polygonB.Vertices[i])
		collider.polygonB.normals[i] = collider.xf.Q.Apply(polygonB.Normals[i])
	}

	collider.radius = polygonB.radius + edgeA.radius

	manifold.PointCount = 0

	edgeAxis := collider.computeEdgeSeparation()

	// No valid normal: this edge should not collide.
	if edgeAxis.kind == epAxisUnknown {
		return
	}
	if edgeAxis.separation > collider.radius {
		return
	}

	polygonAxis := collider.computePolygonSeparation()
	if polygonAxis.kind != epAxisUnknown && polygonAxis.separation > collider.radius {
		return
	}

	// Hysteresis for jitter reduction.
	const kRelativeTol = 0.98
	const kAbsoluteTol = 0.001

	var primaryAxis epAxis
	if polygonAxis.kind == epAxisUnknown {
		primaryAxis = edgeAxis
	} else if polygonAxis.separation > kRelativeTol*edgeAxis.separation+kAbsoluteTol {
		primaryAxis = polygonAxis
	} else {
		primaryAxis = edgeAxis
	}

	var ie [2]clipVertex
	var rf referenceFace
	if primaryAxis.kind == epAxisEdgeA {
		manifold.Type = ManifoldFaceA

		// Search for the polygon normal most anti-parallel to the edge
		// normal.
		bestIndex := 0
		bestValue := collider.normal.Dot(collider.polygonB.normals[0])
		for i := 1; i < collider.polygonB.count; i++ {
			value := collider.normal.Dot(collider.polygonB.normals[i])
			if value < bestValue {
				bestValue = value
				bestIndex = i
			}
		}

		i1 := bestIndex
		i2 := 0
		if i1+1 < collider.polygonB.count {
			i2 = i1 + 1
		}

		ie[0].v = collider.polygonB.vertices[i1]
		ie[0].id.IndexA = 0
		ie[0].id.IndexB = uint8(i1)
		ie[0].id.TypeA = FeatureFace
		ie[0].id.TypeB = FeatureVertex

		ie[1].v = collider.polygonB.vertices[i2]
		ie[1].id.IndexA = 0
		ie[1].id.IndexB = uint8(i2)
		ie[1].id.TypeA = FeatureFace
		ie[1].id.TypeB = FeatureVertex

		if collider.front {
			rf.i1, rf.i2 = 0, 1
			rf.v1, rf.v2 = collider.v1, collider.v2
			rf.normal = collider.normal1
		} else {
			rf.i1, rf.i2 = 1, 0
			rf.v1, rf.v2 = collider.v2, collider.v1
			rf.normal = collider.normal1.Neg()
		}
	} else {
		manifold.Type = ManifoldFaceB

		ie[0].v = collider.v1
		ie[0].id.IndexA = 0
		ie[0].id.IndexB = uint8(primaryAxis.index)
		ie[0].id.TypeA = FeatureVertex
		ie[0].id.TypeB = FeatureFace

		ie[1].v = collider.v2
		ie[1].id.IndexA = 0
		ie[1].id.IndexB = uint8(primaryAxis.index)
		ie[1].id.TypeA = FeatureVertex
		ie[1].id.TypeB = FeatureFace

		rf.i1 = primaryAxis.index
		if rf.i1+1 < collider.polygonB.count {
			rf.i2 = rf.i1 + 1
		} else {
			rf.i2 = 0
		}

		rf.v1 = collider.polygonB.vertices[rf.i1]
		rf.v2 = collider.polygonB.vertices[rf.i2]
		rf.normal = collider.polygonB.normals[rf.i1]
	}

	rf.sideNormal1 = Vec2{rf.normal.Y, -rf.normal.X}
	rf.sideNormal2 = rf.sideNormal1.Neg()
	rf.sideOffset1 = rf.sideNormal1.Dot(rf.v1)
	rf.sideOffset2 = rf.sideNormal2.Dot(rf.v2)

	// Clip the incident edge against the extruded side planes.
	var clipPoints1, clipPoints2 [2]clipVertex

	np := clipSegmentToLine(clipPoints1[:], ie[:], rf.sideNormal1, rf.sideOffset1, rf.i1)
	if np < MaxManifoldPoints {
		return
	}

	np = clipSegmentToLine(clipPoints2[:], clipPoints1[:], rf.sideNormal2, rf.sideOffset2, rf.i2)
	if np < MaxManifoldPoints {
		return
	}

	if primaryAxis.kind == epAxisEdgeA {
		manifold.LocalNormal = rf.normal
		manifold.LocalPoint = rf.v1
	} else {
		manifold.LocalNormal = polygonB.Normals[rf.i1]
		manifold.LocalPoint = polygonB.Vertices[rf.i1]
	}

	pointCount := 0
	for i := 0; i < MaxManifoldPoints; i++ {
		separation := rf.normal.Dot(clipPoints2[i].v.Sub(rf.v1))

		if separation <= collider.radius {
			cp := &manifold.Points[pointCount]

			if primaryAxis.kind == epAxisEdgeA {
				cp.LocalPoint = collider.xf.ApplyT(clipPoints2[i].v)
				cp.ID = clipPoints2[i].id
			} else {
				cp.LocalPoint = clipPoints2[i].v
				cp.ID.TypeA = clipPoints2[i].id.TypeB
				cp.ID.TypeB = clipPoints2[i].id.TypeA
				cp.ID.IndexA = clipPoints2[i].id.IndexB
				cp.ID.IndexB = clipPoints2[i].id.IndexA
			}

			pointCount++
		}
	}

	manifold.PointCount = pointCount
}

func (collider *epCollider) computeEdgeSeparation() epAxis {
	axis := epAxis{kind: epAxisEdgeA, separation: maxFloat}
	if !collider.front {
		axis.index = 1
	}

	for i := 0; i < collider.polygonB.count; i++ {
		s := collider.normal.Dot(collider.polygonB.vertices[i].Sub(collider.v1))
		if s < axis.separation {
			axis.separation = s
		}
	}

	return axis
}

func (collider *epCollider) computePolygonSeparation() epAxis {
	axis := epAxis{kind: epAxisUnknown, index: -1, separation: -maxFloat}

	perp := Vec2{-collider.normal.Y, collider.normal.X}

	for i := 0; i < collider.polygonB.count; i++ {
		n := collider.polygonB.normals[i].Neg()

		s1 := n.Dot(collider.polygonB.vertices[i].Sub(collider.v1))
		s2 := n.Dot(collider.polygonB.vertices[i].Sub(collider.v2))
		s := math.Min(s1, s2)

		if s > collider.radius {
			// No collision.
			return epAxis{kind: epAxisEdgeB, index: i, separation: s}
		}

		// Adjacency: reject axes outside the admissible normal range.
		if n.Dot(perp) >= 0.0 {
			if n.Sub(collider.upperLimit).Dot(collider.normal) < -AngularSlop {
				continue
			}
		} else {
			if n.Sub(collider.lowerLimit).Dot(collider.normal) < -AngularSlop {
				continue
			}
		}

		if s > axis.separation {
			axis.kind = epAxisEdgeB
			axis.index = i
			axis.separation = s
		}
	}

	return axis
}

// CollideEdgeAndPolygon computes the manifold for an edge versus a polygon.
func CollideEdgeAndPolygon(manifold *Manifold, edgeA *EdgeShape, xfA Transform, polygonB *PolygonShape, xfB Transform) {
	var collider epCollider
	collider.collide(manifold, edgeA, xfA, polygonB, xfB)
}
