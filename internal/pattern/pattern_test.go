package pattern

import (
	"math"
	"testing"

	"github.com/talgya/hexhold/internal/world"
)

func TestUnitTriangle(t *testing.T) {
	tris := Triangles(world.Coord{}, []world.Coord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, DefaultEpsilon)
	if len(tris) != 1 {
		t.Fatalf("found %d triangles, want 1", len(tris))
	}
	tri := tris[0]
	if math.Abs(tri.Size-1) > 1e-9 {
		t.Fatalf("size = %v, want 1", tri.Size)
	}
	if tri.Tier() != 0 {
		t.Fatalf("tier = %d, want 0", tri.Tier())
	}
	for _, c := range []world.Coord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}} {
		if !tri.Has(c) {
			t.Fatalf("triangle %v missing vertex %v", tri.Vertices, c)
		}
	}
}

func TestSizeTwoTriangle(t *testing.T) {
	tris := Triangles(world.Coord{}, []world.Coord{{X: 2, Y: 0}, {X: 1, Y: 2}}, DefaultEpsilon)
	if len(tris) != 1 {
		t.Fatalf("found %d triangles, want 1", len(tris))
	}
	if math.Abs(tris[0].Size-2) > 1e-9 || tris[0].Tier() != 1 {
		t.Fatalf("size %v tier %d, want 2 and 1", tris[0].Size, tris[0].Tier())
	}
}

func TestNoTriangle(t *testing.T) {
	cases := map[string][]world.Coord{
		"unequal distances": {{X: 1, Y: 0}, {X: 2, Y: 0}},
		"opposite":          {{X: 1, Y: 0}, {X: -1, Y: 0}},
		"single":            {{X: 1, Y: 0}},
		"120 degrees":       {{X: 0, Y: 1}, {X: -1, Y: 0}},
	}
	for name, anchors := range cases {
		if tris := Triangles(world.Coord{}, anchors, DefaultEpsilon); len(tris) != 0 {
			t.Fatalf("%s: found %v", name, tris)
		}
	}
}

func TestTier(t *testing.T) {
	cases := map[float64]int{0: 0, 1: 0, math.Sqrt(3): 0, 2: 1, 3: 1, 4: 2, 2 * math.Sqrt(3): 1}
	for size, want := range cases {
		if got := Tier(size); got != want {
			t.Fatalf("Tier(%v) = %d, want %d", size, got, want)
		}
	}
}

func TestReinforceRadius(t *testing.T) {
	ud := world.UnitDiameter
	cases := []struct {
		radius world.Vec2
		want   int
	}{
		{world.Vec2{X: ud}, 2},
		{world.Vec2{X: 2 * ud}, 3},
		{world.Vec2{Y: math.Sqrt(3) * ud}, 3},
	}
	for _, c := range cases {
		if got := ReinforceRadius(c.radius); got != c.want {
			t.Fatalf("ReinforceRadius(%v) = %d, want %d", c.radius, got, c.want)
		}
	}
}

func ringSet(center world.Coord) map[world.Coord]bool {
	set := make(map[world.Coord]bool)
	for _, c := range center.Neighbors() {
		set[c] = true
	}
	return set
}

func TestSuperHexUnitRing(t *testing.T) {
	center := world.Coord{}
	anchors := ringSet(center)
	list := make([]world.Coord, 0, len(anchors))
	for c := range anchors {
		list = append(list, c)
	}
	isAnchor := func(c world.Coord) bool { return anchors[c] }
	exists := func(world.Coord) bool { return true }

	focus := world.Coord{X: 1, Y: 0}
	hexes := SuperHexes(focus, list, isAnchor, exists, DefaultEpsilon)
	if len(hexes) != 1 {
		t.Fatalf("found %d super-hexes, want 1", len(hexes))
	}
	h := hexes[0]
	if h.Center != center {
		t.Fatalf("centre = %v, want %v", h.Center, center)
	}
	for c := range anchors {
		if !h.Has(c) {
			t.Fatalf("super-hex %v missing corner %v", h.Vertices, c)
		}
	}
	if h.Reach() != 2 {
		t.Fatalf("reach = %d, want 2", h.Reach())
	}
}

func TestSuperHexNeedsEveryCorner(t *testing.T) {
	anchors := ringSet(world.Coord{})
	delete(anchors, world.Coord{X: -1, Y: 0}) // far corner from (1,0)
	list := make([]world.Coord, 0, len(anchors))
	for c := range anchors {
		list = append(list, c)
	}
	isAnchor := func(c world.Coord) bool { return anchors[c] }
	exists := func(world.Coord) bool { return true }
	if hexes := SuperHexes(world.Coord{X: 1}, list, isAnchor, exists, DefaultEpsilon); len(hexes) != 0 {
		t.Fatalf("found %v with a missing corner", hexes)
	}
}

func TestSuperHexNeedsCentreCell(t *testing.T) {
	anchors := ringSet(world.Coord{})
	list := make([]world.Coord, 0, len(anchors))
	for c := range anchors {
		list = append(list, c)
	}
	isAnchor := func(c world.Coord) bool { return anchors[c] }
	exists := func(c world.Coord) bool { return c != world.Coord{} }
	if hexes := SuperHexes(world.Coord{X: 1}, list, isAnchor, exists, DefaultEpsilon); len(hexes) != 0 {
		t.Fatalf("found %v without a centre cell", hexes)
	}
}
