package engine

import (
	"github.com/talgya/hexhold/internal/world"
)

// DisasterReport describes one disaster evaluation.
type DisasterReport struct {
	Fired       bool          `json:"fired"`
	DangerLevel int           `json:"danger_level"`
	Countdown   int           `json:"countdown"`
	Spread      []world.Coord `json:"spread,omitempty"`    // hazards grown from existing hazards
	Seed        *world.Coord  `json:"seed,omitempty"`      // hazard drawn field-wide
	Collapsed   []world.Coord `json:"collapsed,omitempty"` // warped cells that reached zero
	Warped      []world.Coord `json:"warped,omitempty"`    // cells queued by an Origin pulse
	Exhausted   bool          `json:"exhausted"`           // no vulnerable cell was left for the seed
}

// NewHazards returns every cell this evaluation turned into a hazard.
func (r DisasterReport) NewHazards() []world.Coord {
	out := make([]world.Coord, 0, len(r.Spread)+len(r.Collapsed)+1)
	out = append(out, r.Collapsed...)
	out = append(out, r.Spread...)
	if r.Seed != nil {
		out = append(out, *r.Seed)
	}
	return out
}

// evaluateDisaster advances warps and the countdown, firing a disaster when
// the countdown runs out. untouchable is never converted.
func (f *Field) evaluateDisaster(untouchable world.Coord) DisasterReport {
	var rep DisasterReport
	rep.Collapsed = f.advanceWarps(untouchable)

	f.disasterCountdown--
	if f.disasterCountdown > 0 {
		rep.DangerLevel = f.dangerLevel
		rep.Countdown = f.disasterCountdown
		return rep
	}
	rep.Fired = true

	for i := 0; i < f.dangerLevel; i++ {
		if c, ok := f.spreadHazard(untouchable); ok {
			rep.Spread = append(rep.Spread, c)
		}
	}

	if c, ok := f.pickVulnerable(untouchable); ok {
		f.SetStructure(c, world.Hazard)
		rep.Seed = &c
	} else {
		rep.Exhausted = true
	}

	f.dangerLevel++
	f.disasterCountdown = f.cfg.Cooldown
	rep.Warped = f.pulseOrigin(untouchable)
	rep.DangerLevel = f.dangerLevel
	rep.Countdown = f.disasterCountdown

	f.log.Info("disaster",
		"danger_level", f.dangerLevel,
		"spread", len(rep.Spread),
		"seeded", rep.Seed != nil,
		"collapsed", len(rep.Collapsed),
		"warped", len(rep.Warped),
		"exhausted", rep.Exhausted,
	)
	return rep
}

// spreadHazard grows one random existing hazard into a random vulnerable
// neighbour.
func (f *Field) spreadHazard(untouchable world.Coord) (world.Coord, bool) {
	var hazards []*world.Cell
	for _, c := range f.cells.Cells() {
		if c.Structure() == world.Hazard {
			hazards = append(hazards, c)
		}
	}
	if len(hazards) == 0 {
		return world.Coord{}, false
	}
	src := hazards[f.rng.Intn(len(hazards))]

	var targets []*world.Cell
	for _, n := range f.Neighbors(src.Coord(), 1) {
		if n.Coord() != untouchable && f.vulnerable(n) {
			targets = append(targets, n)
		}
	}
	if len(targets) == 0 {
		return world.Coord{}, false
	}
	target := targets[f.rng.Intn(len(targets))].Coord()
	f.SetStructure(target, world.Hazard)
	return target, true
}

// pickVulnerable draws a vulnerable cell field-wide, weighting unreinforced
// cells twice as heavily as reinforced anchors.
func (f *Field) pickVulnerable(untouchable world.Coord) (world.Coord, bool) {
	var (
		candidates []*world.Cell
		weights    []int
		total      int
	)
	for _, c := range f.cells.Cells() {
		if c.Coord() == untouchable {
			continue
		}
		if w := f.exposure(c); w > 0 {
			candidates = append(candidates, c)
			weights = append(weights, w)
			total += w
		}
	}
	if total == 0 {
		return world.Coord{}, false
	}
	r := f.rng.Intn(total)
	for i, w := range weights {
		if r < w {
			return candidates[i].Coord(), true
		}
		r -= w
	}
	return candidates[len(candidates)-1].Coord(), true
}

// advanceWarps counts every warping cell down by one and collapses those
// that reach zero. The untouchable cell holds at one.
func (f *Field) advanceWarps(untouchable world.Coord) []world.Coord {
	var collapsed []world.Coord
	for _, c := range f.cells.Cells() {
		if c.Warp() == 0 {
			continue
		}
		if c.Warp() == 1 && c.Coord() == untouchable {
			continue
		}
		c.SetWarp(c.Warp() - 1)
		if c.Warp() > 0 {
			continue
		}
		switch c.Structure() {
		case world.Hazard, world.Origin:
			continue
		}
		f.SetStructure(c.Coord(), world.Hazard)
		collapsed = append(collapsed, c.Coord())
	}
	return collapsed
}

// pulseOrigin queues the vulnerable cells on the Origin's current ring to
// collapse, every OriginPulseEvery danger levels. The ring grows by one
// each pulse.
func (f *Field) pulseOrigin(untouchable world.Coord) []world.Coord {
	every := f.cfg.OriginPulseEvery
	if every <= 0 || f.origin == nil || f.cfg.WarpDelay <= 0 || f.dangerLevel%every != 0 {
		return nil
	}
	ring := f.dangerLevel / every
	var warped []world.Coord
	for _, c := range f.Neighbors(f.origin.Coord(), ring) {
		if c.Coord() == untouchable || !f.vulnerable(c) {
			continue
		}
		c.SetWarp(f.cfg.WarpDelay)
		warped = append(warped, c.Coord())
	}
	if len(warped) > 0 {
		f.log.Info("origin pulse", "ring", ring, "warped", len(warped))
	}
	return warped
}
