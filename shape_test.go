package rigid2d_test

import (
	"math"
	"testing"

	"github.com/bytearena/rigid2d"
)

func TestCircleMassData(t *testing.T) {
	circle := rigid2d.NewCircleShape(2.0)
	circle.P = rigid2d.Vec2{X: 1.0, Y: 0.0}

	var md rigid2d.MassData
	circle.ComputeMass(&md, 3.0)

	wantMass := 3.0 * math.Pi * 4.0
	if math.Abs(md.Mass-wantMass) > 1e-12 {
		t.Fatalf("mass = %v, want %v", md.Mass, wantMass)
	}
	if md.Center != circle.P {
		t.Fatalf("center = %v, want %v", md.Center, circle.P)
	}

	// I about origin = m*(r²/2 + |p|²).
	wantI := wantMass * (0.5*4.0 + 1.0)
	if math.Abs(md.I-wantI) > 1e-9 {
		t.Fatalf("inertia = %v, want %v", md.I, wantI)
	}
}

func TestBoxMassData(t *testing.T) {
	poly := rigid2d.NewBoxShape(1.0, 0.5)

	var md rigid2d.MassData
	poly.ComputeMass(&md, 2.0)

	// Area = 2*1 = 2, mass = 4.
	if math.Abs(md.Mass-4.0) > 1e-9 {
		t.Fatalf("mass = %v, want 4", md.Mass)
	}
	if md.Center.Length() > 1e-12 {
		t.Fatalf("centered box has centroid %v", md.Center)
	}

	// I about the center = m*(w² + h²)/12 with full extents.
	wantI := 4.0 * (2.0*2.0 + 1.0*1.0) / 12.0
	if math.Abs(md.I-wantI) > 1e-9 {
		t.Fatalf("inertia = %v, want %v", md.I, wantI)
	}
}

func TestPolygonHullWeldsAndWinds(t *testing.T) {
	poly := rigid2d.NewPolygonShape()
	poly.Set([]rigid2d.Vec2{
		{X: 0.0, Y: 0.0},
		{X: 1.0, Y: 0.0},
		{X: 1.0, Y: 1.0},
		{X: 1.0, Y: 1.0001}, // welded into the neighbor
		{X: 0.0, Y: 1.0},
	})

	if poly.Count != 4 {
		t.Fatalf("hull vertex count = %d, want 4", poly.Count)
	}
	if !poly.Validate() {
		t.Fatalf("hull is not convex/CCW")
	}
}

func TestChainChildEdges(t *testing.T) {
	chain := rigid2d.NewChainShape()
	chain.CreateChain([]rigid2d.Vec2{
		{X: 0.0, Y: 0.0},
		{X: 1.0, Y: 0.0},
		{X: 2.0, Y: 0.5},
		{X: 3.0, Y: 0.5},
	})

	if chain.ChildCount() != 3 {
		t.Fatalf("child count = %d, want 3", chain.ChildCount())
	}

	var edge rigid2d.EdgeShape
	chain.ChildEdge(&edge, 1)
	if edge.Vertex1 != (rigid2d.Vec2{X: 1.0, Y: 0.0}) || edge.Vertex2 != (rigid2d.Vec2{X: 2.0, Y: 0.5}) {
		t.Fatalf("child edge 1 = %v..%v", edge.Vertex1, edge.Vertex2)
	}
	if !edge.HasVertex0 || !edge.HasVertex3 {
		t.Fatalf("interior child edge missing ghost vertices")
	}
}

func TestCollideCirclesManifold(t *testing.T) {
	a := rigid2d.NewCircleShape(0.5)
	b := rigid2d.NewCircleShape(0.5)

	var xfA, xfB rigid2d.Transform
	xfA.SetIdentity()
	xfB.SetIdentity()
	xfB.P = rigid2d.Vec2{X: 0.9, Y: 0.0}

	var manifold rigid2d.Manifold
	rigid2d.CollideCircles(&manifold, a, xfA, b, xfB)

	if manifold.PointCount != 1 {
		t.Fatalf("overlapping circles produced %d points", manifold.PointCount)
	}

	xfB.P = rigid2d.Vec2{X: 3.0, Y: 0.0}
	rigid2d.CollideCircles(&manifold, a, xfA, b, xfB)
	if manifold.PointCount != 0 {
		t.Fatalf("separated circles produced %d points", manifold.PointCount)
	}
}

func TestCollidePolygonsManifold(t *testing.T) {
	a := rigid2d.NewBoxShape(0.5, 0.5)
	b := rigid2d.NewBoxShape(0.5, 0.5)

	var xfA, xfB rigid2d.Transform
	xfA.SetIdentity()
	xfB.SetIdentity()
	xfB.P = rigid2d.Vec2{X: 0.0, Y: 0.9}

	var manifold rigid2d.Manifold
	rigid2d.CollidePolygons(&manifold, a, xfA, b, xfB)

	if manifold.PointCount != 2 {
		t.Fatalf("face-on boxes produced %d manifold points, want 2", manifold.PointCount)
	}

	var wm rigid2d.WorldManifold
	wm.Initialize(&manifold, xfA, a.Radius(), xfB, b.Radius())
	if math.Abs(wm.Normal.Y-1.0) > 1e-9 {
		t.Fatalf("world normal = %v, want +y", wm.Normal)
	}
}

func TestTimeOfImpactGrazingPair(t *testing.T) {
	// A small box sweeping into a static box must report touching before
	// overlap.
	var input rigid2d.TOIInput
	input.ProxyA.Set(rigid2d.NewBoxShape(0.5, 0.5), 0)
	input.ProxyB.Set(rigid2d.NewBoxShape(0.1, 0.1), 0)

	input.SweepA.C0 = rigid2d.Vec2{}
	input.SweepA.C = rigid2d.Vec2{}

	input.SweepB.C0 = rigid2d.Vec2{X: -5.0, Y: 0.0}
	input.SweepB.C = rigid2d.Vec2{X: 5.0, Y: 0.0}

	input.TMax = 1.0

	var output rigid2d.TOIOutput
	rigid2d.TimeOfImpact(&output, &input)

	if output.State != rigid2d.TOITouching {
		t.Fatalf("state = %d, want touching", output.State)
	}

	// Impact just before the faces meet: |dx| = 10, gap closes at ~4.4.
	if output.T < 0.40 || output.T > 0.46 {
		t.Fatalf("toi = %v, want ~0.44", output.T)
	}
}

func TestShapeDistanceSeparated(t *testing.T) {
	var input rigid2d.DistanceInput
	input.ProxyA.Set(rigid2d.NewCircleShape(0.5), 0)
	input.ProxyB.Set(rigid2d.NewCircleShape(0.5), 0)
	input.TransformA.SetIdentity()
	input.TransformB.SetIdentity()
	input.TransformB.P = rigid2d.Vec2{X: 4.0, Y: 0.0}
	input.UseRadii = true

	var cache rigid2d.SimplexCache
	var output rigid2d.DistanceOutput
	rigid2d.ShapeDistance(&output, &cache, &input)

	if math.Abs(output.Distance-3.0) > 1e-9 {
		t.Fatalf("distance = %v, want 3", output.Distance)
	}
}
