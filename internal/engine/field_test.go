package engine

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/talgya/hexhold/internal/entropy"
	"github.com/talgya/hexhold/internal/pattern"
	"github.com/talgya/hexhold/internal/world"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestField builds a hexagonal field of the given radius around (0,0)
// with uniform solidity and no structures.
func newTestField(t *testing.T, cfg Config, radius int, solidity float64, rng entropy.Source) *Field {
	t.Helper()
	if rng == nil {
		rng = &entropy.Scripted{}
	}
	f := NewField(cfg, rng, quietLogger())
	for _, c := range world.Within(world.Coord{}, radius) {
		f.AddCell(world.NewCell(c, solidity))
	}
	return f
}

func anchor(t *testing.T, f *Field, coords ...world.Coord) {
	t.Helper()
	for _, c := range coords {
		f.SetStructure(c, world.Anchor)
		if f.Cell(c).Structure() != world.Anchor {
			t.Fatalf("anchor at %v not set", c)
		}
	}
}

// checkMemberships verifies triangle bookkeeping is symmetric and only
// anchors hold memberships.
func checkMemberships(t *testing.T, f *Field) {
	t.Helper()
	for _, tri := range f.Triangles() {
		for _, v := range tri.Vertices {
			c := f.Cell(v)
			if c.Structure() != world.Anchor {
				t.Fatalf("triangle %d vertex %v is %v", tri.ID, v, c.Structure())
			}
			if !c.HasTriangle(tri.ID) {
				t.Fatalf("vertex %v missing triangle %d", v, tri.ID)
			}
		}
	}
	for _, c := range f.Cells() {
		if c.MembershipCount() > 0 && c.Structure() != world.Anchor {
			t.Fatalf("%v cell %v holds memberships", c.Structure(), c.Coord())
		}
		for _, tri := range f.Memberships(c.Coord()) {
			if !tri.Has(c.Coord()) {
				t.Fatalf("cell %v lists triangle %d without being a vertex", c.Coord(), tri.ID)
			}
		}
		if len(f.Memberships(c.Coord())) != c.MembershipCount() {
			t.Fatalf("cell %v references unregistered triangles", c.Coord())
		}
	}
}

func TestGenerateField(t *testing.T) {
	cfg := SmallTestConfig()
	f := NewField(cfg, rand.New(rand.NewSource(3)), quietLogger())
	f.Generate()

	radius := cfg.Generation.Radius
	if got, want := len(f.Cells()), 1+3*radius*(radius+1); got != want {
		t.Fatalf("cells = %d, want %d", got, want)
	}
	origin := f.Origin()
	if origin == nil {
		t.Fatal("no origin designated")
	}
	if origin.Structure() != world.Origin {
		t.Fatalf("origin structure = %v", origin.Structure())
	}
	if d := world.Distance(cfg.Generation.Center, origin.Coord()); d != cfg.OriginRing {
		t.Fatalf("origin at distance %d, want %d", d, cfg.OriginRing)
	}
	center := f.Cell(cfg.Generation.Center)
	if center.Structure() != world.Anchor || center.Solidity() != 1 {
		t.Fatalf("centre is %v with solidity %v", center.Structure(), center.Solidity())
	}
	if anchors := f.Anchors(); len(anchors) != 1 || anchors[0] != cfg.Generation.Center {
		t.Fatalf("anchors = %v", anchors)
	}
	for _, c := range world.Within(cfg.Generation.Center, radius) {
		cell := f.CellAt(c.X, c.Y)
		if cell == nil || cell.Coord() != c {
			t.Fatalf("CellAt(%d, %d) = %v", c.X, c.Y, cell)
		}
	}

	f.Generate()
	if len(f.Cells()) != 1+3*radius*(radius+1) || f.Origin() != origin {
		t.Fatal("second Generate changed the field")
	}
}

func TestDesignateOriginMoves(t *testing.T) {
	f := newTestField(t, DefaultConfig(), 2, 0.8, nil)
	if f.DesignateOrigin(world.Coord{X: 9, Y: 9}) {
		t.Fatal("designated an origin outside the field")
	}
	f.DesignateOrigin(world.Coord{X: 1})
	f.DesignateOrigin(world.Coord{X: -1})
	if f.Cell(world.Coord{X: 1}).Structure() != world.None {
		t.Fatal("previous origin was not cleared")
	}
	if f.Origin().Coord() != (world.Coord{X: -1}) {
		t.Fatalf("origin = %v", f.Origin().Coord())
	}
}

func TestUnitTriangleMemberships(t *testing.T) {
	f := newTestField(t, DefaultConfig(), 3, 0.8, nil)
	a, b, c := world.Coord{}, world.Coord{X: 1}, world.Coord{Y: 1}
	anchor(t, f, a, b, c)

	tris := f.Triangles()
	if len(tris) != 1 {
		t.Fatalf("triangles = %d, want 1", len(tris))
	}
	for _, v := range []world.Coord{a, b, c} {
		cell := f.Cell(v)
		if cell.MembershipCount() != 1 || cell.Boost() != 0 {
			t.Fatalf("vertex %v: memberships %d boost %d", v, cell.MembershipCount(), cell.Boost())
		}
	}
	checkMemberships(t, f)

	f.SetStructure(b, world.None)
	if len(f.Triangles()) != 0 {
		t.Fatalf("triangles after removal = %v", f.Triangles())
	}
	for _, v := range []world.Coord{a, b, c} {
		if n := f.Cell(v).MembershipCount(); n != 0 {
			t.Fatalf("vertex %v kept %d memberships", v, n)
		}
	}
	checkMemberships(t, f)
}

func TestBoostTakesHighestTier(t *testing.T) {
	f := newTestField(t, DefaultConfig(), 4, 0.8, nil)
	big := []world.Coord{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 2}}
	anchor(t, f, big...)
	for _, v := range big {
		if got := f.Cell(v).Boost(); got != 1 {
			t.Fatalf("vertex %v boost = %d, want 1", v, got)
		}
	}

	anchor(t, f, world.Coord{X: 1}, world.Coord{Y: 1})
	if len(f.Triangles()) != 2 {
		t.Fatalf("triangles = %d, want 2", len(f.Triangles()))
	}
	shared := f.Cell(world.Coord{})
	if shared.MembershipCount() != 2 || shared.Boost() != 1 {
		t.Fatalf("shared vertex: memberships %d boost %d", shared.MembershipCount(), shared.Boost())
	}
	if f.Cell(world.Coord{X: 1}).Boost() != 0 {
		t.Fatal("unit-triangle vertex got a boost")
	}
	checkMemberships(t, f)

	f.SetStructure(world.Coord{X: 2}, world.None)
	if shared.Boost() != 0 || shared.MembershipCount() != 1 {
		t.Fatalf("after removal: boost %d memberships %d", shared.Boost(), shared.MembershipCount())
	}
	if f.Cell(world.Coord{X: 1, Y: 2}).Boost() != 0 {
		t.Fatal("orphaned vertex kept its boost")
	}
	checkMemberships(t, f)
}

func TestSuperHexReinforcement(t *testing.T) {
	f := newTestField(t, DefaultConfig(), 6, 0.8, nil)
	center := world.Coord{}
	anchor(t, f, center.Neighbors()...)

	hexes := f.SuperHexes()
	if len(hexes) != 1 || hexes[0].Center != center {
		t.Fatalf("super-hexes = %v", hexes)
	}
	reach := hexes[0].Reach()
	if reach != 2 {
		t.Fatalf("reach = %d, want 2", reach)
	}
	for _, c := range f.Cells() {
		want := world.Distance(center, c.Coord()) <= reach
		if c.Reinforced() != want {
			t.Fatalf("cell %v reinforced = %v, want %v", c.Coord(), c.Reinforced(), want)
		}
	}
	if got := f.Counts().Reinforced; got != 1+3*reach*(reach+1) {
		t.Fatalf("reinforced count = %d", got)
	}

	if !f.SetStructure(world.Coord{X: 1}, world.None) {
		t.Fatal("removing a corner did not report a super-hex change")
	}
	if len(f.SuperHexes()) != 0 || f.Counts().Reinforced != 0 {
		t.Fatal("reinforcement survived losing a corner")
	}
	checkMemberships(t, f)
}

// superHexAt returns the registered ring centred on c.
func superHexAt(f *Field, c world.Coord) (pattern.SuperHex, bool) {
	for _, h := range f.SuperHexes() {
		if h.Center == c {
			return h, true
		}
	}
	return pattern.SuperHex{}, false
}

// checkReinforcement verifies the flags match the union of every ring's reach.
func checkReinforcement(t *testing.T, f *Field) {
	t.Helper()
	for _, c := range f.Cells() {
		want := false
		for _, h := range f.SuperHexes() {
			if world.Distance(h.Center, c.Coord()) <= h.Reach() {
				want = true
				break
			}
		}
		if c.Reinforced() != want {
			t.Fatalf("cell %v reinforced = %v, want %v", c.Coord(), c.Reinforced(), want)
		}
	}
}

func TestConcentricSuperHexes(t *testing.T) {
	center := world.Coord{}
	var inner, outer []world.Coord
	for d := world.Direction(0); d < 6; d++ {
		inner = append(inner, world.Step(center, d, 1))
		outer = append(outer, world.Step(center, d, 2))
	}

	f := newTestField(t, DefaultConfig(), 6, 0.8, nil)
	anchor(t, f, inner...)
	anchor(t, f, outer...)
	if h, ok := superHexAt(f, center); !ok || h.Reach() != 3 {
		t.Fatalf("centre ring = %+v (found %v), want reach 3", h, ok)
	}
	if c := f.Cell(world.Step(center, 0, 3)); !c.Reinforced() {
		t.Fatal("outer ring reach not applied")
	}
	checkReinforcement(t, f)

	f.SetStructure(inner[0], world.None)
	if h, ok := superHexAt(f, center); !ok || h.Reach() != 3 {
		t.Fatalf("losing an inner corner dropped the outer ring: %+v (found %v)", h, ok)
	}
	checkReinforcement(t, f)
	checkMemberships(t, f)

	f = newTestField(t, DefaultConfig(), 6, 0.8, nil)
	anchor(t, f, outer...)
	anchor(t, f, inner...)
	if h, ok := superHexAt(f, center); !ok || h.Reach() != 3 {
		t.Fatalf("centre ring = %+v (found %v), want reach 3", h, ok)
	}

	if !f.SetStructure(outer[0], world.None) {
		t.Fatal("removing an outer corner did not report a super-hex change")
	}
	h, ok := superHexAt(f, center)
	if !ok || h.Reach() != 2 {
		t.Fatalf("inner ring not restored: %+v (found %v)", h, ok)
	}
	if c := f.Cell(world.Step(center, 3, 3)); c.Reinforced() {
		t.Fatal("outer reach survived losing a corner")
	}
	checkReinforcement(t, f)
	checkMemberships(t, f)
}

func TestStatus(t *testing.T) {
	f := newTestField(t, DefaultConfig(), 0, 0.8, nil)
	if f.Status() != StatusRunning {
		t.Fatal("field with a stable cell should be running")
	}
	f.SetStructure(world.Coord{}, world.Hazard)
	if f.Status() != StatusLost {
		t.Fatal("field with no vulnerable cell should be lost")
	}

	var s Status
	if err := s.UnmarshalText([]byte("lost")); err != nil || s != StatusLost {
		t.Fatalf("UnmarshalText(lost) = %v, %v", s, err)
	}
}
