package engine

import (
	"math"
	"testing"

	"github.com/talgya/hexhold/internal/world"
)

func assertSolidity(t *testing.T, f *Field, c world.Coord, want float64) {
	t.Helper()
	if got := f.Cell(c).Solidity(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("solidity at %v = %.4f, want %.4f", c, got, want)
	}
}

func TestTickAnchorPropagation(t *testing.T) {
	f := newTestField(t, DefaultConfig(), 4, 0.5, nil)
	center := world.Coord{}
	anchor(t, f, center)

	rep := f.Tick(1)
	if rep.Anchors != 1 || rep.Hazards != 0 || rep.Delta != 1 {
		t.Fatalf("report = %+v", rep)
	}

	assertSolidity(t, f, center, 0.54)
	for n := 1; n <= 2; n++ {
		for _, c := range world.Adjacents(center, n) {
			assertSolidity(t, f, c, 0.51)
		}
	}
	for _, c := range world.Adjacents(center, 3) {
		assertSolidity(t, f, c, 0.49)
	}
}

func TestTickHazardDrain(t *testing.T) {
	f := newTestField(t, DefaultConfig(), 2, 0.5, nil)
	f.SetStructure(world.Coord{}, world.Hazard)

	rep := f.Tick(1)
	if rep.Hazards != 1 {
		t.Fatalf("hazards = %d, want 1", rep.Hazards)
	}
	assertSolidity(t, f, world.Coord{}, 0)
	for _, c := range world.Adjacents(world.Coord{}, 1) {
		assertSolidity(t, f, c, 0.47)
	}
	for _, c := range world.Adjacents(world.Coord{}, 2) {
		assertSolidity(t, f, c, 0.49)
	}
}

func TestTickBoostExtendsReach(t *testing.T) {
	f := newTestField(t, DefaultConfig(), 4, 0.5, nil)
	anchor(t, f, world.Coord{})
	f.Cell(world.Coord{}).SetBoost(1)

	f.Tick(1)
	for _, c := range world.Adjacents(world.Coord{}, 3) {
		assertSolidity(t, f, c, 0.51)
	}
	for _, c := range world.Adjacents(world.Coord{}, 4) {
		assertSolidity(t, f, c, 0.49)
	}
	if f.Cell(world.Coord{}).Boost() != 1 {
		t.Fatal("tick reset an anchor's boost")
	}
}

func TestTickClamps(t *testing.T) {
	f := newTestField(t, DefaultConfig(), 3, 0.5, nil)
	anchor(t, f, world.Coord{})
	f.SetStructure(world.Coord{X: 3}, world.Hazard)

	for i := 0; i < 200; i++ {
		f.Tick(1)
	}
	for _, c := range f.Cells() {
		if s := c.Solidity(); s < 0 || s > 1 {
			t.Fatalf("solidity %v out of range at %v", s, c.Coord())
		}
	}
	assertSolidity(t, f, world.Coord{}, 1)
}

func TestTickZeroDeltaIsNoop(t *testing.T) {
	f := newTestField(t, DefaultConfig(), 2, 0.5, nil)
	anchor(t, f, world.Coord{})

	rep := f.Tick(0)
	if rep.Anchors != 0 || rep.Status != StatusRunning {
		t.Fatalf("report = %+v", rep)
	}
	for _, c := range f.Cells() {
		assertSolidity(t, f, c.Coord(), 0.5)
	}
}
