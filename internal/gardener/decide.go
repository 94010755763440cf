package gardener

import (
	"fmt"

	"github.com/talgya/hexhold/internal/session"
	"github.com/talgya/hexhold/internal/world"
)

// Decision is the gardener's chosen action for one cycle.
type Decision struct {
	Action    string     `json:"action"` // "none" or "place"
	Rationale string     `json:"rationale"`
	Placement *Placement `json:"placement,omitempty"`
}

// Placement is the payload for POST /api/v1/place.
type Placement struct {
	X         int             `json:"x"`
	Y         int             `json:"y"`
	Structure world.Structure `json:"structure"`
}

// Policy tunes candidate scoring.
type Policy struct {
	MinSolidity   float64 // skip empties below this; mirrors the server threshold
	AnchorCost    float64 // skip placing when the balance cannot cover it
	NeighborBonus float64 // per adjacent anchor
	TriangleBonus float64 // for closing a unit triangle
	HazardPenalty float64 // per adjacent hazard
}

// DefaultPolicy matches the server's default tuning.
func DefaultPolicy() Policy {
	return Policy{
		MinSolidity:   0.5,
		AnchorCost:    10,
		NeighborBonus: 0.25,
		TriangleBonus: 1,
		HazardPenalty: 0.4,
	}
}

// Decide picks at most one placement. In a crisis, reinforced hazards are
// repaired first; otherwise the best-scoring stable empty cell next to an
// existing anchor is claimed.
func Decide(snap *Snapshot, health *FieldHealth, mem *Memory, p Policy) Decision {
	if health.Lost {
		return Decision{Action: "none", Rationale: "field lost"}
	}
	if snap.Status.Summary.Balance < p.AnchorCost {
		return Decision{Action: "none", Rationale: fmt.Sprintf("saving up (balance %.1f)", snap.Status.Summary.Balance)}
	}

	idx := snap.Index()

	if health.InCrisis() {
		if c, ok := repairTarget(snap, mem, p); ok {
			return Decision{
				Action:    "place",
				Rationale: fmt.Sprintf("%s: repairing reinforced hazard at %s", health.CrisisLevel, c),
				Placement: &Placement{X: c.X, Y: c.Y, Structure: world.Anchor},
			}
		}
	}

	best, bestScore, found := world.Coord{}, 0.0, false
	for _, cell := range snap.Map.Cells {
		at := world.Coord{X: cell.X, Y: cell.Y}
		if cell.Structure != world.None || cell.Solidity < p.MinSolidity || mem.Avoid(at) {
			continue
		}
		score, ok := scoreCell(at, cell, idx, p)
		if !ok {
			continue
		}
		if !found || score > bestScore {
			best, bestScore, found = at, score, true
		}
	}
	if !found {
		return Decision{Action: "none", Rationale: "no stable cell next to an anchor"}
	}
	return Decision{
		Action:    "place",
		Rationale: fmt.Sprintf("%s: extending at %s (score %.2f)", health.CrisisLevel, best, bestScore),
		Placement: &Placement{X: best.X, Y: best.Y, Structure: world.Anchor},
	}
}

// repairTarget finds a reinforced hazard stable enough to hold an anchor.
func repairTarget(snap *Snapshot, mem *Memory, p Policy) (world.Coord, bool) {
	for _, cell := range snap.Map.Cells {
		at := world.Coord{X: cell.X, Y: cell.Y}
		if cell.Structure == world.Hazard && cell.Reinforced && cell.Solidity >= p.MinSolidity && !mem.Avoid(at) {
			return at, true
		}
	}
	return world.Coord{}, false
}

// scoreCell rates an empty cell. Cells with no adjacent anchor are not
// candidates.
func scoreCell(at world.Coord, cell session.CellView, idx map[world.Coord]session.CellView, p Policy) (float64, bool) {
	neighbors := at.Neighbors()
	anchor := make([]bool, len(neighbors))
	anchors, hazards := 0, 0
	for i, n := range neighbors {
		v, ok := idx[n]
		if !ok {
			continue
		}
		switch v.Structure {
		case world.Anchor:
			anchor[i] = true
			anchors++
		case world.Hazard:
			hazards++
		}
	}
	if anchors == 0 {
		return 0, false
	}

	score := cell.Solidity + p.NeighborBonus*float64(anchors) - p.HazardPenalty*float64(hazards)
	// Consecutive directions are adjacent to each other.
	for i := range neighbors {
		if anchor[i] && anchor[(i+1)%len(neighbors)] {
			score += p.TriangleBonus
			break
		}
	}
	return score, true
}
