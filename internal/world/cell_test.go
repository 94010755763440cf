package world

import (
	"math/rand"
	"testing"
)

func TestCellSolidityClamped(t *testing.T) {
	c := NewCell(Coord{}, 1.7)
	if c.Solidity() != 1 {
		t.Fatalf("solidity = %v, want 1", c.Solidity())
	}
	c.AddSolidity(-3)
	if c.Solidity() != 0 {
		t.Fatalf("solidity = %v, want 0", c.Solidity())
	}
}

func TestJoinTriangleKeepsHighestTier(t *testing.T) {
	c := NewCell(Coord{}, 0.5)
	c.SetStructure(Anchor)
	c.JoinTriangle(1, 2)
	c.JoinTriangle(2, 0)
	if c.Boost() != 2 {
		t.Fatalf("boost = %d, want 2", c.Boost())
	}
	if c.MembershipCount() != 2 || !c.HasTriangle(1) || !c.HasTriangle(2) {
		t.Fatalf("memberships = %v", c.Triangles())
	}
	c.LeaveTriangle(1)
	if c.HasTriangle(1) || c.MembershipCount() != 1 {
		t.Fatalf("memberships after leave = %v", c.Triangles())
	}
}

func TestLeavingAnchorResetsBoost(t *testing.T) {
	c := NewCell(Coord{}, 0.5)
	c.SetStructure(Anchor)
	c.JoinTriangle(1, 3)
	c.SetStructure(Hazard)
	if c.Boost() != 0 {
		t.Fatalf("boost = %d, want 0", c.Boost())
	}
}

func TestRefreshClearsNonAnchorMemberships(t *testing.T) {
	c := NewCell(Coord{}, 0.5)
	c.JoinTriangle(4, 1)
	c.Refresh()
	if c.MembershipCount() != 0 || c.Boost() != 0 {
		t.Fatalf("empty cell kept memberships %v boost %d", c.Triangles(), c.Boost())
	}

	a := NewCell(Coord{1, 0}, 0.5)
	a.SetStructure(Anchor)
	a.JoinTriangle(4, 1)
	a.Refresh()
	if a.MembershipCount() != 1 || a.Boost() != 1 {
		t.Fatalf("anchor lost memberships %v boost %d", a.Triangles(), a.Boost())
	}
}

func TestStructureText(t *testing.T) {
	for _, s := range []Structure{None, Anchor, Hazard, Origin} {
		b, err := s.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got Structure
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if got != s {
			t.Fatalf("round trip %v -> %q -> %v", s, b, got)
		}
	}
	if _, err := ParseStructure("tower"); err == nil {
		t.Fatal("ParseStructure accepted an unknown name")
	}
}

func TestMapKeepsFirstCellAndOrder(t *testing.T) {
	m := NewMap()
	first := NewCell(Coord{2, 2}, 0.3)
	if !m.Add(first) {
		t.Fatal("first Add returned false")
	}
	if m.Add(NewCell(Coord{2, 2}, 0.9)) {
		t.Fatal("duplicate Add returned true")
	}
	if m.Get(Coord{2, 2}) != first {
		t.Fatal("duplicate replaced the original cell")
	}
	m.Add(NewCell(Coord{0, 0}, 0.1))
	m.Add(NewCell(Coord{-1, 5}, 0.1))

	cells := m.Cells()
	want := []Coord{{2, 2}, {0, 0}, {-1, 5}}
	for i, c := range cells {
		if c.Coord() != want[i] {
			t.Fatalf("Cells()[%d] = %v, want %v", i, c.Coord(), want[i])
		}
	}
	if got := m.Present([]Coord{{0, 0}, {9, 9}, {2, 2}}); len(got) != 2 {
		t.Fatalf("Present returned %d cells, want 2", len(got))
	}
}

func TestGenerate(t *testing.T) {
	cfg := SmallTestConfig()
	m := Generate(cfg, rand.New(rand.NewSource(7)))

	want := 1 + 3*cfg.Radius*(cfg.Radius+1)
	if m.Len() != want {
		t.Fatalf("generated %d cells, want %d", m.Len(), want)
	}
	for _, c := range Within(cfg.Center, cfg.Radius) {
		cell := m.Get(c)
		if cell == nil {
			t.Fatalf("missing cell %v", c)
		}
		if cell.Coord() != c {
			t.Fatalf("cell at %v reports %v", c, cell.Coord())
		}
		if s := cell.Solidity(); s < 0 || s > 1 {
			t.Fatalf("solidity %v out of range at %v", s, c)
		}
		if cell.Structure() != None {
			t.Fatalf("generated cell %v has structure %v", c, cell.Structure())
		}
	}
	if m.Get(Coord{cfg.Radius + 5, 0}) != nil {
		t.Fatal("cell outside the radius was generated")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := SmallTestConfig()
	a := Generate(cfg, rand.New(rand.NewSource(42)))
	b := Generate(cfg, rand.New(rand.NewSource(42)))
	ac, bc := a.Cells(), b.Cells()
	for i := range ac {
		if ac[i].Coord() != bc[i].Coord() || ac[i].Solidity() != bc[i].Solidity() {
			t.Fatalf("cell %d differs: %v/%v vs %v/%v", i,
				ac[i].Coord(), ac[i].Solidity(), bc[i].Coord(), bc[i].Solidity())
		}
	}
}

func TestGenerateCentreBias(t *testing.T) {
	cfg := SmallTestConfig()
	cfg.Noise, cfg.Jitter = 0, 0
	m := Generate(cfg, rand.New(rand.NewSource(1)))
	if got := m.Get(cfg.Center).Solidity(); got != 1 {
		t.Fatalf("centre solidity = %v, want 1", got)
	}
	rim := m.Get(RingWalk(cfg.Center, 0, cfg.Radius))
	if rim.Solidity() != 0 {
		t.Fatalf("rim solidity = %v, want 0", rim.Solidity())
	}
}
