// Package engine runs the solidity field: generation, per-tick physics,
// placement, pattern bookkeeping, and the disaster engine.
//
// A Field is single-writer. Tick and Place must not run concurrently with
// each other or themselves; internal/session serialises callers.
package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/hexhold/internal/entropy"
	"github.com/talgya/hexhold/internal/pattern"
	"github.com/talgya/hexhold/internal/world"
)

// Status is the field's terminal-state signal.
type Status uint8

const (
	StatusRunning Status = iota
	StatusLost           // No vulnerable cell remains
)

func (s Status) String() string {
	if s == StatusLost {
		return "lost"
	}
	return "running"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "running":
		*s = StatusRunning
	case "lost":
		*s = StatusLost
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}

// Budget gates placements on cost. The caller supplies it per call.
type Budget interface {
	Afford(kind world.Structure) bool
	Charge(kind world.Structure)
}

// Field owns every cell and the indices derived from them.
type Field struct {
	cfg Config
	rng entropy.Source
	log *slog.Logger

	cells      *world.Map
	anchors    mapset.Set[world.Coord]
	triangles  map[world.TriangleID]pattern.Triangle
	nextTri    world.TriangleID
	superHexes map[world.Coord]pattern.SuperHex

	origin            *world.Cell
	disasterCountdown int
	dangerLevel       int
	generated         bool
}

// NewField creates an empty field. A nil logger uses slog.Default().
func NewField(cfg Config, rng entropy.Source, logger *slog.Logger) *Field {
	if logger == nil {
		logger = slog.Default()
	}
	return &Field{
		cfg:               cfg,
		rng:               rng,
		log:               logger,
		cells:             world.NewMap(),
		anchors:           mapset.New[world.Coord](),
		triangles:         make(map[world.TriangleID]pattern.Triangle),
		superHexes:        make(map[world.Coord]pattern.SuperHex),
		disasterCountdown: cfg.InitialCountdown,
	}
}

// Config returns the field's tuning.
func (f *Field) Config() Config {
	return f.cfg
}

// Generate materializes the field, designates the Origin on the configured
// ring, and places the starting anchor on the centre. Later calls are no-ops.
func (f *Field) Generate() {
	if f.generated {
		return
	}
	f.generated = true

	gen := f.cfg.Generation
	m := world.Generate(gen, f.rng)
	for _, c := range m.Cells() {
		f.cells.Add(c)
	}

	ring := f.cells.Present(world.Adjacents(gen.Center, f.cfg.OriginRing))
	if len(ring) > 0 {
		f.DesignateOrigin(ring[f.rng.Intn(len(ring))].Coord())
	}

	if center := f.cells.Get(gen.Center); center != nil {
		center.SetSolidity(1)
		f.SetStructure(gen.Center, world.Anchor)
	}

	f.log.Info("field generated",
		"cells", f.cells.Len(),
		"radius", gen.Radius,
		"origin", f.originCoord(),
	)
}

// AddCell materializes a single cell. Existing coordinates are left alone.
func (f *Field) AddCell(c *world.Cell) bool {
	return f.cells.Add(c)
}

// DesignateOrigin turns the cell at c into the Origin, replacing any
// previous Origin with an empty cell.
func (f *Field) DesignateOrigin(c world.Coord) bool {
	if f.cells.Get(c) == nil {
		return false
	}
	if f.origin != nil {
		f.SetStructure(f.origin.Coord(), world.None)
	}
	f.SetStructure(c, world.Origin)
	return true
}

func (f *Field) originCoord() string {
	if f.origin == nil {
		return "none"
	}
	return f.origin.Coord().String()
}

// CellAt returns the cell at (x, y), or nil if it is not materialized.
func (f *Field) CellAt(x, y int) *world.Cell {
	return f.cells.Get(world.Coord{X: x, Y: y})
}

// Cell returns the cell at c, or nil.
func (f *Field) Cell(c world.Coord) *world.Cell {
	return f.cells.Get(c)
}

// Cells returns every cell in creation order.
func (f *Field) Cells() []*world.Cell {
	return f.cells.Cells()
}

// Neighbors returns the materialized cells on the ring at distance around c.
func (f *Field) Neighbors(c world.Coord, distance int) []*world.Cell {
	return f.cells.Present(world.Adjacents(c, distance))
}

// Origin returns the Origin cell, or nil before generation.
func (f *Field) Origin() *world.Cell { return f.origin }

func (f *Field) DangerLevel() int { return f.dangerLevel }

func (f *Field) DisasterCountdown() int { return f.disasterCountdown }

// Anchors returns the anchor coordinates sorted by row, then column.
func (f *Field) Anchors() []world.Coord {
	out := make([]world.Coord, 0, f.anchors.Size())
	f.anchors.Each(func(c world.Coord) {
		out = append(out, c)
	})
	sortCoords(out)
	return out
}

// Triangles returns all registered triangles ordered by ID.
func (f *Field) Triangles() []pattern.Triangle {
	out := make([]pattern.Triangle, 0, len(f.triangles))
	for _, t := range f.triangles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Memberships returns the triangles the cell at c belongs to.
func (f *Field) Memberships(c world.Coord) []pattern.Triangle {
	cell := f.cells.Get(c)
	if cell == nil {
		return nil
	}
	out := make([]pattern.Triangle, 0, cell.MembershipCount())
	for _, id := range cell.Triangles() {
		if t, ok := f.triangles[id]; ok {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SuperHexes returns all registered super-hexes ordered by centre.
func (f *Field) SuperHexes() []pattern.SuperHex {
	out := make([]pattern.SuperHex, 0, len(f.superHexes))
	for _, h := range f.superHexes {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return coordLess(out[i].Center, out[j].Center) })
	return out
}

// Counts summarizes the field.
type Counts struct {
	Cells      int `json:"cells"`
	Anchors    int `json:"anchors"`
	Hazards    int `json:"hazards"`
	Reinforced int `json:"reinforced"`
	Warping    int `json:"warping"`
	Vulnerable int `json:"vulnerable"`
	Triangles  int `json:"triangles"`
	SuperHexes int `json:"super_hexes"`
}

// Counts walks every cell and tallies the summary.
func (f *Field) Counts() Counts {
	n := Counts{
		Cells:      f.cells.Len(),
		Anchors:    f.anchors.Size(),
		Triangles:  len(f.triangles),
		SuperHexes: len(f.superHexes),
	}
	for _, c := range f.cells.Cells() {
		if c.Structure() == world.Hazard {
			n.Hazards++
		}
		if c.Reinforced() {
			n.Reinforced++
		}
		if c.Warp() > 0 {
			n.Warping++
		}
		if f.vulnerable(c) {
			n.Vulnerable++
		}
	}
	return n
}

// Status reports StatusLost once no cell is left for a disaster to take.
func (f *Field) Status() Status {
	for _, c := range f.cells.Cells() {
		if f.vulnerable(c) {
			return StatusRunning
		}
	}
	return StatusLost
}

func (f *Field) String() string {
	return fmt.Sprintf("Field(cells=%d, anchors=%d, danger=%d)", f.cells.Len(), f.anchors.Size(), f.dangerLevel)
}

func coordLess(a, b world.Coord) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

func sortCoords(cs []world.Coord) {
	sort.Slice(cs, func(i, j int) bool { return coordLess(cs[i], cs[j]) })
}
