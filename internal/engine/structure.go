package engine

import (
	"github.com/talgya/hexhold/internal/pattern"
	"github.com/talgya/hexhold/internal/world"
)

// SetStructure changes the structure at c as one sequence: unregister the
// old anchor, assign, register the new anchor. Reinforcement is recomputed
// when the super-hex set changed, which is what the return value reports.
func (f *Field) SetStructure(c world.Coord, kind world.Structure) bool {
	cell := f.cells.Get(c)
	if cell == nil || cell.Structure() == kind {
		return false
	}

	changed := false
	switch cell.Structure() {
	case world.Anchor:
		changed = f.unregisterAnchor(cell)
	case world.Origin:
		if f.origin == cell {
			f.origin = nil
		}
	}

	cell.SetStructure(kind)

	switch kind {
	case world.Anchor:
		if f.registerAnchor(cell) {
			changed = true
		}
	case world.Hazard:
		cell.SetSolidity(0)
		cell.SetWarp(0)
	case world.Origin:
		cell.SetWarp(0)
		f.origin = cell
	}

	if changed {
		f.recomputeReinforcement()
	}
	return changed
}

// registerAnchor indexes cell as an anchor and records every triangle and
// super-hex it completes.
func (f *Field) registerAnchor(cell *world.Cell) bool {
	at := cell.Coord()
	f.anchors.Put(at)
	anchors := f.Anchors()

	for _, t := range pattern.Triangles(at, anchors, f.cfg.AngleEpsilon) {
		f.nextTri++
		t.ID = f.nextTri
		f.triangles[t.ID] = t
		tier := t.Tier()
		for _, v := range t.Vertices {
			if vc := f.cells.Get(v); vc != nil {
				vc.JoinTriangle(t.ID, tier)
			}
		}
		f.log.Debug("triangle formed", "id", t.ID, "size", t.Size, "vertices", t.Vertices)
	}

	changed := false
	for _, h := range pattern.SuperHexes(at, anchors, f.isAnchor, f.exists, f.cfg.AngleEpsilon) {
		if f.keepSuperHex(h) {
			changed = true
			f.log.Debug("super-hex formed", "center", h.Center, "reach", h.Reach())
		}
	}
	return changed
}

// keepSuperHex registers h unless its centre already holds a ring of equal
// or larger reach.
func (f *Field) keepSuperHex(h pattern.SuperHex) bool {
	if cur, ok := f.superHexes[h.Center]; ok && cur.Reach() >= h.Reach() {
		return false
	}
	f.superHexes[h.Center] = h
	return true
}

// rescanSuperHexes re-detects rings around the given centres from the
// surviving anchors. A centre can hold several concentric rings but only
// the widest is registered, so losing it may uncover a smaller one.
func (f *Field) rescanSuperHexes(centers []world.Coord) {
	if len(centers) == 0 {
		return
	}
	want := make(map[world.Coord]bool, len(centers))
	for _, c := range centers {
		want[c] = true
	}
	anchors := f.Anchors()
	for _, a := range anchors {
		for _, h := range pattern.SuperHexes(a, anchors, f.isAnchor, f.exists, f.cfg.AngleEpsilon) {
			if want[h.Center] && f.keepSuperHex(h) {
				f.log.Debug("super-hex restored", "center", h.Center, "reach", h.Reach())
			}
		}
	}
}

// unregisterAnchor removes cell from the anchor index and unwinds every
// triangle and super-hex that used it, on all co-members.
func (f *Field) unregisterAnchor(cell *world.Cell) bool {
	at := cell.Coord()
	f.anchors.Remove(at)

	touched := make(map[world.Coord]*world.Cell)
	for _, id := range cell.Triangles() {
		t, ok := f.triangles[id]
		delete(f.triangles, id)
		if !ok {
			cell.LeaveTriangle(id)
			continue
		}
		for _, v := range t.Vertices {
			if vc := f.cells.Get(v); vc != nil {
				vc.LeaveTriangle(id)
				touched[v] = vc
			}
		}
	}
	for _, vc := range touched {
		f.recomputeBoost(vc)
	}

	var lost []world.Coord
	for center, h := range f.superHexes {
		if h.Has(at) {
			delete(f.superHexes, center)
			lost = append(lost, center)
		}
	}
	f.rescanSuperHexes(lost)
	return len(lost) > 0
}

// recomputeBoost sets boost to the highest tier among remaining triangles,
// the same rule JoinTriangle applies when a triangle is added.
func (f *Field) recomputeBoost(cell *world.Cell) {
	boost := 0
	for _, id := range cell.Triangles() {
		if t, ok := f.triangles[id]; ok && t.Tier() > boost {
			boost = t.Tier()
		}
	}
	cell.SetBoost(boost)
}

// recomputeReinforcement rebuilds every cell's reinforced flag from the
// registered super-hexes.
func (f *Field) recomputeReinforcement() {
	for _, c := range f.cells.Cells() {
		c.SetReinforced(false)
	}
	for _, h := range f.superHexes {
		for _, c := range f.cells.Present(world.Within(h.Center, h.Reach())) {
			c.SetReinforced(true)
		}
	}
}

func (f *Field) isAnchor(c world.Coord) bool {
	return f.anchors.Has(c)
}

func (f *Field) exists(c world.Coord) bool {
	return f.cells.Get(c) != nil
}

// vulnerable reports whether a disaster may convert cell into a hazard.
// Reinforced cells are only exposed while they hold an anchor.
func (f *Field) vulnerable(cell *world.Cell) bool {
	switch cell.Structure() {
	case world.Hazard, world.Origin:
		return false
	}
	if cell.Warp() > 0 || cell.Solidity() < f.cfg.SolidityThreshold {
		return false
	}
	if cell.Reinforced() && cell.Structure() != world.Anchor {
		return false
	}
	return true
}

// exposure is a vulnerable cell's weight in the field-wide disaster draw.
func (f *Field) exposure(cell *world.Cell) int {
	if !f.vulnerable(cell) {
		return 0
	}
	if cell.Reinforced() {
		return 1
	}
	return 2
}
