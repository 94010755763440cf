package world

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// Structure is the kind of device occupying a cell.
type Structure uint8

const (
	None   Structure = iota // Empty cell
	Anchor                  // Stabilizer; takes part in triangles and super-hexes
	Hazard                  // Destabilized tear spread by disasters
	Origin                  // Epicentre of hazard escalation, one per field
)

var structureNames = map[Structure]string{
	None:   "none",
	Anchor: "anchor",
	Hazard: "hazard",
	Origin: "origin",
}

func (s Structure) String() string {
	if name, ok := structureNames[s]; ok {
		return name
	}
	return fmt.Sprintf("structure(%d)", uint8(s))
}

// ParseStructure resolves a structure name as produced by String.
func ParseStructure(name string) (Structure, error) {
	for s, n := range structureNames {
		if n == name {
			return s, nil
		}
	}
	return None, fmt.Errorf("unknown structure %q", name)
}

func (s Structure) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Structure) UnmarshalText(b []byte) error {
	parsed, err := ParseStructure(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// TriangleID identifies a registered triangle within one field.
type TriangleID uint64

// Cell is the mutable state of a single hex.
type Cell struct {
	coord      Coord
	solidity   float64
	structure  Structure
	boost      int
	reinforced bool
	warp       int

	memberships mapset.Set[TriangleID]
}

// NewCell creates an empty cell with the given solidity (clamped).
func NewCell(coord Coord, solidity float64) *Cell {
	c := &Cell{
		coord:       coord,
		memberships: mapset.New[TriangleID](),
	}
	c.SetSolidity(solidity)
	return c
}

func (c *Cell) Coord() Coord                   { return c.coord }
func (c *Cell) Solidity() float64              { return c.solidity }
func (c *Cell) Structure() Structure           { return c.structure }
func (c *Cell) Boost() int                     { return c.boost }
func (c *Cell) Reinforced() bool               { return c.reinforced }
func (c *Cell) Warp() int                      { return c.warp }
func (c *Cell) MembershipCount() int           { return c.memberships.Size() }
func (c *Cell) HasTriangle(id TriangleID) bool { return c.memberships.Has(id) }

// Triangles returns the IDs of the triangles this cell belongs to.
func (c *Cell) Triangles() []TriangleID {
	ids := make([]TriangleID, 0, c.memberships.Size())
	c.memberships.Each(func(id TriangleID) {
		ids = append(ids, id)
	})
	return ids
}

// SetSolidity assigns solidity, clamped to [0, 1].
func (c *Cell) SetSolidity(v float64) {
	c.solidity = clamp01(v)
}

// AddSolidity shifts solidity by delta, clamped to [0, 1].
func (c *Cell) AddSolidity(delta float64) {
	c.solidity = clamp01(c.solidity + delta)
}

// SetStructure assigns the structure kind. Leaving Anchor resets boost; the
// caller is responsible for unwinding memberships first.
func (c *Cell) SetStructure(s Structure) {
	if c.structure == Anchor && s != Anchor {
		c.boost = 0
	}
	c.structure = s
}

func (c *Cell) SetReinforced(v bool) { c.reinforced = v }

// SetWarp sets the countdown until the cell collapses into a hazard.
func (c *Cell) SetWarp(n int) {
	if n < 0 {
		n = 0
	}
	c.warp = n
}

// JoinTriangle records membership and raises boost to at least tier.
func (c *Cell) JoinTriangle(id TriangleID, tier int) {
	c.memberships.Put(id)
	if tier > c.boost {
		c.boost = tier
	}
}

// LeaveTriangle drops membership. Boost is recomputed by the caller, which
// knows the tiers of the remaining triangles.
func (c *Cell) LeaveTriangle(id TriangleID) {
	c.memberships.Remove(id)
}

// SetBoost assigns the derived boost directly.
func (c *Cell) SetBoost(b int) {
	if b < 0 {
		b = 0
	}
	c.boost = b
}

// Refresh re-derives per-cell state after a tick.
func (c *Cell) Refresh() {
	c.solidity = clamp01(c.solidity)
	if c.structure != Anchor {
		c.boost = 0
		for _, id := range c.Triangles() {
			c.memberships.Remove(id)
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
