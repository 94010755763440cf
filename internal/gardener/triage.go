package gardener

import (
	"github.com/talgya/hexhold/internal/engine"
	"github.com/talgya/hexhold/internal/world"
)

// Crisis levels, most severe first.
const (
	CrisisCritical = "CRITICAL"
	CrisisWarning  = "WARNING"
	CrisisWatch    = "WATCH"
	CrisisHealthy  = "HEALTHY"
)

// FieldHealth holds diagnostic signals derived from a Snapshot.
// Computed before any decision; deterministic and free.
type FieldHealth struct {
	Cells             int
	Anchors           int
	Hazards           int
	ReinforcedHazards int
	HazardFraction    float64
	VulnerableShare   float64
	AvgSolidity       float64
	Countdown         int
	Lost              bool
	CrisisLevel       string
}

// Triage computes a FieldHealth from the snapshot's data.
func Triage(snap *Snapshot) *FieldHealth {
	sum := snap.Status.Summary
	h := &FieldHealth{
		Cells:     len(snap.Map.Cells),
		Countdown: sum.Countdown,
		Lost:      sum.Status == engine.StatusLost,
	}

	var total float64
	for _, c := range snap.Map.Cells {
		total += c.Solidity
		switch c.Structure {
		case world.Anchor:
			h.Anchors++
		case world.Hazard:
			h.Hazards++
			if c.Reinforced {
				h.ReinforcedHazards++
			}
		}
	}
	if h.Cells > 0 {
		h.AvgSolidity = total / float64(h.Cells)
		h.HazardFraction = float64(h.Hazards) / float64(h.Cells)
		h.VulnerableShare = float64(sum.Counts.Vulnerable) / float64(h.Cells)
	}

	h.CrisisLevel = CrisisHealthy
	switch {
	case h.Lost:
		h.CrisisLevel = CrisisCritical
	case h.HazardFraction > 0.25:
		h.CrisisLevel = CrisisCritical
	case h.VulnerableShare < 0.05:
		h.CrisisLevel = CrisisCritical
	case h.HazardFraction > 0.1:
		h.CrisisLevel = CrisisWarning
	case h.Countdown <= 1 && h.Hazards > 0:
		h.CrisisLevel = CrisisWarning
	case h.Hazards > 0:
		h.CrisisLevel = CrisisWatch
	}
	return h
}

// InCrisis reports whether repairs take priority over expansion.
func (h *FieldHealth) InCrisis() bool {
	return h.CrisisLevel == CrisisCritical || h.CrisisLevel == CrisisWarning
}
