package engine

import (
	"github.com/talgya/hexhold/internal/world"
)

// TickReport summarizes one physics step.
type TickReport struct {
	Delta   float64 `json:"delta"`
	Anchors int     `json:"anchors"`
	Hazards int     `json:"hazards"`
	Status  Status  `json:"status"`
}

// Tick advances the solidity field by delta time units. Deltas are
// gathered against the structures present at the start of the tick and then
// applied, so iteration order does not matter.
func (f *Field) Tick(delta float64) TickReport {
	rep := TickReport{Delta: delta}
	if delta <= 0 {
		rep.Status = f.Status()
		return rep
	}

	cells := f.cells.Cells()
	var structured []*world.Cell
	for _, c := range cells {
		if c.Structure() != world.None {
			structured = append(structured, c)
		}
	}

	shift := make(map[world.Coord]float64)
	for _, c := range structured {
		switch c.Structure() {
		case world.Anchor:
			rep.Anchors++
			shift[c.Coord()] += f.cfg.AnchorGain * delta
			reach := f.cfg.BaseReach + c.Boost()
			for n := 1; n <= reach; n++ {
				for _, at := range world.Adjacents(c.Coord(), n) {
					shift[at] += f.cfg.Propagation * delta
				}
			}
		case world.Hazard:
			rep.Hazards++
			for _, at := range c.Coord().Neighbors() {
				shift[at] -= f.cfg.HazardDrain * delta
			}
		}
	}

	decay := f.cfg.DecayRate * delta
	for _, c := range cells {
		c.AddSolidity(shift[c.Coord()] - decay)
	}

	for _, c := range structured {
		c.Refresh()
	}

	rep.Status = f.Status()
	return rep
}
