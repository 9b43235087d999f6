package rigid2d

import (
	"math"
)

const nullFeature uint8 = math.MaxUint8

// Feature types for ContactFeature.
const (
	FeatureVertex uint8 = 0
	FeatureFace   uint8 = 1
)

// ContactFeature names the shape features that intersect to form a contact
// point. Kept to 4 bytes so the packed key is cheap to compare.
type ContactFeature struct {
	IndexA uint8 // feature index on shape A
	IndexB uint8 // feature index on shape B
	TypeA  uint8
	TypeB  uint8
}

// ContactID identifies a contact point across steps for warm starting.
type ContactID ContactFeature

func (id ContactID) Key() uint32 {
	return uint32(id.IndexA) |
		uint32(id.IndexB)<<8 |
		uint32(id.TypeA)<<16 |
		uint32(id.TypeB)<<24
}

func (id *ContactID) SetKey(key uint32) {
	id.IndexA = uint8(key & 0xFF)
	id.IndexB = uint8(key >> 8 & 0xFF)
	id.TypeA = uint8(key >> 16 & 0xFF)
	id.TypeB = uint8(key >> 24 & 0xFF)
}

// ManifoldPoint is one contact point of a manifold. The local point usage
// depends on the manifold type:
//
//	Circles: the local center of circleB
//	FaceA:   the local center of circleB or the clip point of polygonB
//	FaceB:   the clip point of polygonA
//
// The structure persists across steps, so the impulses cached here drive
// warm starting; they are not reliable contact forces for high speed
// collisions.
type ManifoldPoint struct {
	LocalPoint     Vec2
	NormalImpulse  float64
	TangentImpulse float64
	ID             ContactID
}

// Manifold types.
const (
	ManifoldCircles uint8 = iota
	ManifoldFaceA
	ManifoldFaceB
)

// Manifold approximates the contact region of two touching convex shapes
// with up to two points sharing a normal. Points and normal are stored in
// local frames so position correction can account for body movement, which
// is what makes continuous physics work.
type Manifold struct {
	Points      [MaxManifoldPoints]ManifoldPoint
	LocalNormal Vec2 // unused for ManifoldCircles
	LocalPoint  Vec2
	Type        uint8
	PointCount  int
}

// WorldManifold is a manifold evaluated in world coordinates.
type WorldManifold struct {
	Normal      Vec2                          // points from A to B
	Points      [MaxManifoldPoints]Vec2       // intersection points
	Separations [MaxManifoldPoints]float64    // negative means overlap
}

// Initialize evaluates the manifold at the given transforms and radii.
func (wm *WorldManifold) Initialize(manifold *Manifold, xfA Transform, radiusA float64, xfB Transform, radiusB float64) {
	if manifold.PointCount == 0 {
		return
	}

	switch manifold.Type {
	case ManifoldCircles:
		wm.Normal = Vec2{1.0, 0.0}
		pointA := xfA.Apply(manifold.LocalPoint)
		pointB := xfB.Apply(manifold.Points[0].LocalPoint)
		if DistanceSquared(pointA, pointB) > epsilon*epsilon {
			wm.Normal = pointB.Sub(pointA)
			wm.Normal.Normalize()
		}

		cA := pointA.Add(wm.Normal.Mul(radiusA))
		cB := pointB.Sub(wm.Normal.Mul(radiusB))
		wm.Points[0] = cA.Add(cB).Mul(0.5)
		wm.Separations[0] = cB.Sub(cA).Dot(wm.Normal)

	case ManifoldFaceA:
		wm.Normal = xfA.Q.Apply(manifold.LocalNormal)
		planePoint := xfA.Apply(manifold.LocalPoint)

		for i := 0; i < manifold.PointCount; i++ {
			clipPoint := xfB.Apply(manifold.Points[i].LocalPoint)
			cA := clipPoint.Add(wm.Normal.Mul(radiusA - clipPoint.Sub(planePoint).Dot(wm.Normal)))
			cB := clipPoint.Sub(wm.Normal.Mul(radiusB))
			wm.Points[i] = cA.Add(cB).Mul(0.5)
			wm.Separations[i] = cB.Sub(cA).Dot(wm.Normal)
		}

	case ManifoldFaceB:
		wm.Normal = xfB.Q.Apply(manifold.LocalNormal)
		planePoint := xfB.Apply(manifold.LocalPoint)

		for i := 0; i < manifold.PointCount; i++ {
			clipPoint := xfA.Apply(manifold.Points[i].LocalPoint)
			cB := clipPoint.Add(wm.Normal.Mul(radiusB - clipPoint.Sub(planePoint).Dot(wm.Normal)))
			cA := clipPoint.Sub(wm.Normal.Mul(radiusA))
			wm.Points[i] = cA.Add(cB).Mul(0.5)
			wm.Separations[i] = cA.Sub(cB).Dot(wm.Normal)
		}

		// Ensure normal points from A to B.
		wm.Normal = wm.Normal.Neg()
	}
}

// Point states, used when comparing a manifold across an update.
const (
	PointNull    uint8 = iota // point does not exist
	PointAdd                  // point was added in the update
	PointPersist              // point persisted across the update
	PointRemove               // point was removed in the update
)

// GetPointStates classifies the points of two manifolds by persistent id.
func GetPointStates(state1, state2 *[MaxManifoldPoints]uint8, manifold1, manifold2 *Manifold) {
	for i := 0; i < MaxManifoldPoints; i++ {
		state1[i] = PointNull
		state2[i] = PointNull
	}

	// Persists and removes.
	for i := 0; i < manifold1.PointCount; i++ {
		id := manifold1.Points[i].ID
		state1[i] = PointRemove
		for j := 0; j < manifold2.PointCount; j++ {
			if manifold2.Points[j].ID.Key() == id.Key() {
				state1[i] = PointPersist
				break
			}
		}
	}

	// Persists and adds.
	for i := 0; i < manifold2.PointCount; i++ {
		id := manifold2.Points[i].ID
		state2[i] = PointAdd
		for j := 0; j < manifold1.PointCount; j++ {
			if manifold1.Points[j].ID.Key() == id.Key() {
				state2[i] = PointPersist
				break
			}
		}
	}
}

// clipVertex is used while clipping incident edges against reference faces.
type clipVertex struct {
	v  Vec2
	id ContactID
}

// RayCastInput describes a ray extending from P1 toward P2, truncated at
// MaxFraction of that segment.
type RayCastInput struct {
	P1, P2      Vec2
	MaxFraction float64
}

// RayCastOutput reports a hit at P1 + Fraction * (P2 - P1).
type RayCastOutput struct {
	Normal   Vec2
	Fraction float64
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	LowerBound Vec2
	UpperBound Vec2
}

func (bb AABB) Center() Vec2 {
	return bb.LowerBound.Add(bb.UpperBound).Mul(0.5)
}

func (bb AABB) Extents() Vec2 {
	return bb.UpperBound.Sub(bb.LowerBound).Mul(0.5)
}

func (bb AABB) Perimeter() float64 {
	wx := bb.UpperBound.X - bb.LowerBound.X
	wy := bb.UpperBound.Y - bb.LowerBound.Y
	return 2.0 * (wx + wy)
}

// Combine grows the box to enclose the other box.
func (bb *AABB) Combine(other AABB) {
	bb.LowerBound = Vec2Min(bb.LowerBound, other.LowerBound)
	bb.UpperBound = Vec2Max(bb.UpperBound, other.UpperBound)
}

// CombineTwo sets the box to the union of two boxes.
func (bb *AABB) CombineTwo(a, b AABB) {
	bb.LowerBound = Vec2Min(a.LowerBound, b.LowerBound)
	bb.UpperBound = Vec2Max(a.UpperBound, b.UpperBound)
}

func (bb AABB) Contains(other AABB) bool {
	return bb.LowerBound.X <= other.LowerBound.X &&
		bb.LowerBound.Y <= other.LowerBound.Y &&
		other.UpperBound.X <= bb.UpperBound.X &&
		other.UpperBound.Y <= bb.UpperBound.Y
}

func (bb AABB) IsValid() bool {
	d := bb.UpperBound.Sub(bb.LowerBound)
	valid := d.X >= 0.0 && d.Y >= 0.0
	return valid && bb.LowerBound.IsValid() && bb.UpperBound.IsValid()
}

// RayCast intersects a ray with the box. From Real-time Collision
// Detection, p179.
func (bb AABB) RayCast(output *RayCastOutput, input RayCastInput) bool {
	tmin := -maxFloat
	tmax := maxFloat

	p := input.P1
	d := input.P2.Sub(input.P1)
	absD := Vec2Abs(d)

	var normal Vec2

	for i := 0; i < 2; i++ {
		if absD.Component(i) < epsilon {
			// Parallel.
			if p.Component(i) < bb.LowerBound.Component(i) || bb.UpperBound.Component(i) < p.Component(i) {
				return false
			}
		} else {
			invD := 1.0 / d.Component(i)
			t1 := (bb.LowerBound.Component(i) - p.Component(i)) * invD
			t2 := (bb.UpperBound.Component(i) - p.Component(i)) * invD

			// Sign of the normal.
			s := -1.0
			if t1 > t2 {
				t1, t2 = t2, t1
				s = 1.0
			}

			// Push the min up.
			if t1 > tmin {
				normal.SetZero()
				normal.SetComponent(i, s)
				tmin = t1
			}

			// Pull the max down.
			tmax = math.Min(tmax, t2)

			if tmin > tmax {
				return false
			}
		}
	}

	// Does the ray start inside the box, or intersect beyond MaxFraction?
	if tmin < 0.0 || input.MaxFraction < tmin {
		return false
	}

	output.Fraction = tmin
	output.Normal = normal
	return true
}

// TestOverlapAABB reports whether two boxes overlap.
func TestOverlapAABB(a, b AABB) bool {
	d1 := b.LowerBound.Sub(a.UpperBound)
	d2 := a.LowerBound.Sub(b.UpperBound)

	if d1.X > 0.0 || d1.Y > 0.0 {
		return false
	}
	if d2.X > 0.0 || d2.Y > 0.0 {
		return false
	}
	return true
}

// clipSegmentToLine performs Sutherland-Hodgman clipping of an edge against
// one plane. Returns the number of output points.
func clipSegmentToLine(vOut []clipVertex, vIn []clipVertex, normal Vec2, offset float64, vertexIndexA int) int {
	numOut := 0

	// Distances of the end points to the line.
	distance0 := normal.Dot(vIn[0].v) - offset
	distance1 := normal.Dot(vIn[1].v) - offset

	// Keep points behind the plane.
	if distance0 <= 0.0 {
		vOut[numOut] = vIn[0]
		numOut++
	}
	if distance1 <= 0.0 {
		vOut[numOut] = vIn[1]
		numOut++
	}

	// The points straddle the plane.
	if distance0*distance1 < 0.0 {
		interp := distance0 / (distance0 - distance1)
		vOut[numOut].v = vIn[0].v.Add(vIn[1].v.Sub(vIn[0].v).Mul(interp))

		// VertexA is hitting edgeB.
		vOut[numOut].id.IndexA = uint8(vertexIndexA)
		vOut[numOut].id.IndexB = vIn[0].id.IndexB
		vOut[numOut].id.TypeA = FeatureVertex
		vOut[numOut].id.TypeB = FeatureFace
		numOut++
	}

	return numOut
}

// TestOverlapShapes reports whether two child shapes overlap under the given
// transforms, within the GJK tolerance.
func TestOverlapShapes(shapeA Shape, indexA int, shapeB Shape, indexB int, xfA, xfB Transform) bool {
	var input DistanceInput
	input.ProxyA.Set(shapeA, indexA)
	input.ProxyB.Set(shapeB, indexB)
	input.TransformA = xfA
	input.TransformB = xfB
	input.UseRadii = true

	var cache SimplexCache
	var output DistanceOutput
	ShapeDistance(&output, &cache, &input)

	return output.Distance < 10.0*epsilon
}
