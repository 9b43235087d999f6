package rigid2d_test

import (
	"testing"

	"github.com/bytearena/rigid2d"
)

func box(x, y, half float64) rigid2d.AABB {
	return rigid2d.AABB{
		LowerBound: rigid2d.Vec2{X: x - half, Y: y - half},
		UpperBound: rigid2d.Vec2{X: x + half, Y: y + half},
	}
}

func TestDynamicTreeQuery(t *testing.T) {
	tree := rigid2d.NewDynamicTree()

	ids := make(map[int]int)
	for i := 0; i < 20; i++ {
		id := tree.CreateProxy(box(float64(i)*3.0, 0.0, 0.5), i)
		ids[id] = i
	}

	found := map[int]bool{}
	tree.Query(func(nodeID int) bool {
		found[tree.UserData(nodeID).(int)] = true
		return true
	}, box(3.0, 0.0, 1.0))

	if !found[1] {
		t.Fatalf("query missed the proxy at x=3")
	}
	for k := range found {
		if k > 2 {
			t.Fatalf("query returned distant proxy %d", k)
		}
	}
}

func TestDynamicTreeMoveProxy(t *testing.T) {
	tree := rigid2d.NewDynamicTree()
	id := tree.CreateProxy(box(0.0, 0.0, 0.5), "a")

	// A tiny move inside the fat AABB does not reinsert.
	if tree.MoveProxy(id, box(0.01, 0.0, 0.5), rigid2d.Vec2{X: 0.01}) {
		t.Fatalf("move within the fat AABB triggered a reinsert")
	}

	// A large move does.
	if !tree.MoveProxy(id, box(10.0, 0.0, 0.5), rigid2d.Vec2{X: 10.0}) {
		t.Fatalf("large move did not reinsert")
	}

	count := 0
	tree.Query(func(nodeID int) bool {
		count++
		return true
	}, box(10.0, 0.0, 0.2))
	if count != 1 {
		t.Fatalf("moved proxy not found at its new location")
	}
}

func TestDynamicTreeRayCast(t *testing.T) {
	tree := rigid2d.NewDynamicTree()
	for i := 0; i < 5; i++ {
		tree.CreateProxy(box(float64(i)*4.0, 0.0, 0.5), i)
	}

	hits := map[int]bool{}
	tree.RayCast(func(input rigid2d.RayCastInput, nodeID int) float64 {
		hits[tree.UserData(nodeID).(int)] = true
		return input.MaxFraction
	}, rigid2d.RayCastInput{
		P1:          rigid2d.Vec2{X: -2.0, Y: 0.0},
		P2:          rigid2d.Vec2{X: 18.0, Y: 0.0},
		MaxFraction: 1.0,
	})

	for i := 0; i < 5; i++ {
		if !hits[i] {
			t.Fatalf("ray missed proxy %d", i)
		}
	}
}

func TestDynamicTreeBalance(t *testing.T) {
	tree := rigid2d.NewDynamicTree()

	// Insert a long sorted run, the worst case for a naive tree.
	for i := 0; i < 128; i++ {
		tree.CreateProxy(box(float64(i), 0.0, 0.4), i)
	}

	if h := tree.Height(); h > 16 {
		t.Fatalf("tree height %d after 128 sorted inserts; rotations are not balancing", h)
	}
	if b := tree.MaxBalance(); b > 2 {
		t.Fatalf("max balance %d, want <= 2", b)
	}
}

func TestDynamicTreeDestroyProxy(t *testing.T) {
	tree := rigid2d.NewDynamicTree()
	a := tree.CreateProxy(box(0.0, 0.0, 0.5), "a")
	b := tree.CreateProxy(box(5.0, 0.0, 0.5), "b")

	tree.DestroyProxy(a)

	count := 0
	tree.Query(func(nodeID int) bool {
		count++
		return true
	}, box(0.0, 0.0, 50.0))

	if count != 1 {
		t.Fatalf("expected 1 surviving proxy, found %d", count)
	}
	if tree.UserData(b) != "b" {
		t.Fatalf("surviving proxy user data corrupted")
	}
}
