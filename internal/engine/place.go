package engine

import (
	"fmt"

	"github.com/talgya/hexhold/internal/world"
)

// Rejection explains why a placement was refused.
type Rejection uint8

const (
	RejectNone        Rejection = iota
	RejectUnknownCell           // Coordinate not materialized
	RejectIllegal               // Structure kind cannot be placed by a player
	RejectProtected             // Target is the Origin
	RejectOccupied              // Target already holds that structure
	RejectHazard                // Target is a hazard outside any super-hex
	RejectUnstable              // Solidity below threshold
	RejectBudget                // Budget cannot cover the cost
)

var rejectionNames = map[Rejection]string{
	RejectNone:        "",
	RejectUnknownCell: "unknown_cell",
	RejectIllegal:     "illegal_structure",
	RejectProtected:   "protected",
	RejectOccupied:    "occupied",
	RejectHazard:      "hazard",
	RejectUnstable:    "unstable",
	RejectBudget:      "budget",
}

func (r Rejection) String() string {
	return rejectionNames[r]
}

func (r Rejection) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rejection) UnmarshalText(b []byte) error {
	for k, name := range rejectionNames {
		if name == string(b) {
			*r = k
			return nil
		}
	}
	return fmt.Errorf("unknown rejection %q", b)
}

// PlaceResult is the outcome of a placement request.
type PlaceResult struct {
	Accepted bool           `json:"accepted"`
	Reason   Rejection      `json:"reason,omitempty"`
	Changed  bool           `json:"changed"` // false for removing nothing from an empty cell
	Disaster DisasterReport `json:"disaster"`
	Status   Status         `json:"status"`
}

// Place attempts to set the structure at c. Rejections leave the field
// untouched. Every accepted call, including clearing an already empty
// cell, runs one disaster evaluation with c held untouchable.
func (f *Field) Place(kind world.Structure, c world.Coord, budget Budget) PlaceResult {
	cell := f.cells.Get(c)
	if reason := f.check(kind, cell, budget); reason != RejectNone {
		f.log.Debug("placement rejected", "at", c, "structure", kind, "reason", reason)
		return PlaceResult{Reason: reason, Status: f.Status()}
	}

	res := PlaceResult{Accepted: true}
	if cell.Structure() != kind {
		f.SetStructure(c, kind)
		if budget != nil {
			budget.Charge(kind)
		}
		res.Changed = true
		f.log.Debug("placed", "at", c, "structure", kind)
	}

	res.Disaster = f.evaluateDisaster(c)
	res.Status = f.Status()
	return res
}

// check validates a placement without mutating anything. Repairing a
// reinforced hazard with an anchor is held to the same solidity threshold
// as any other anchor; the hazard has to be stabilized by nearby anchors
// first.
func (f *Field) check(kind world.Structure, cell *world.Cell, budget Budget) Rejection {
	switch {
	case cell == nil:
		return RejectUnknownCell
	case kind != world.None && kind != world.Anchor:
		return RejectIllegal
	case cell.Structure() == world.Origin:
		return RejectProtected
	case kind == world.None && cell.Structure() == world.None:
		return RejectNone
	case kind == cell.Structure():
		return RejectOccupied
	case cell.Structure() == world.Hazard && !cell.Reinforced():
		return RejectHazard
	case kind == world.Anchor && cell.Solidity() < f.cfg.SolidityThreshold:
		return RejectUnstable
	case budget != nil && !budget.Afford(kind):
		return RejectBudget
	}
	return RejectNone
}
