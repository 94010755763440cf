package session

import (
	"time"

	"github.com/talgya/hexhold/internal/engine"
	"github.com/talgya/hexhold/internal/pattern"
	"github.com/talgya/hexhold/internal/world"
)

// Event kinds written to the journal.
const (
	EventStarted  = "started"
	EventPlaced   = "placed"
	EventRejected = "rejected"
	EventDisaster = "disaster"
	EventStatus   = "status"
)

// Event is one journal line.
type Event struct {
	Tick      uint64                 `json:"tick"`
	Time      time.Time              `json:"time"`
	Kind      string                 `json:"kind"`
	At        *world.Coord           `json:"at,omitempty"`
	Structure string                 `json:"structure,omitempty"`
	Changed   bool                   `json:"changed,omitempty"`
	Reason    string                 `json:"reason,omitempty"`
	Disaster  *engine.DisasterReport `json:"disaster,omitempty"`
	Status    string                 `json:"status,omitempty"`
}

// Summary is the per-tick state pushed to subscribers and served as status.
type Summary struct {
	Session     string        `json:"session"`
	Seed        int64         `json:"seed"`
	Tick        uint64        `json:"tick"`
	DangerLevel int           `json:"danger_level"`
	Countdown   int           `json:"countdown"`
	Balance     float64       `json:"balance"`
	Placements  int           `json:"placements"`
	Rejections  int           `json:"rejections"`
	Disasters   int           `json:"disasters"`
	Status      engine.Status `json:"status"`
	Origin      *world.Coord  `json:"origin,omitempty"`
	Counts      engine.Counts `json:"counts"`
}

// CellView is the read-only state of one cell.
type CellView struct {
	X          int             `json:"x"`
	Y          int             `json:"y"`
	Solidity   float64         `json:"solidity"`
	Structure  world.Structure `json:"structure"`
	Boost      int             `json:"boost,omitempty"`
	Reinforced bool            `json:"reinforced,omitempty"`
	Warp       int             `json:"warp,omitempty"`
}

// CellDetail adds pattern memberships and a neighbour ring to a CellView.
type CellDetail struct {
	CellView
	Key       string             `json:"key"`
	Triangles []pattern.Triangle `json:"triangles"`
	Neighbors []CellView         `json:"neighbors"`
}

// MapView is every cell plus the registered patterns.
type MapView struct {
	Cells      []CellView         `json:"cells"`
	Triangles  []pattern.Triangle `json:"triangles"`
	SuperHexes []pattern.SuperHex `json:"super_hexes"`
}

func viewOf(c *world.Cell) CellView {
	at := c.Coord()
	return CellView{
		X:          at.X,
		Y:          at.Y,
		Solidity:   c.Solidity(),
		Structure:  c.Structure(),
		Boost:      c.Boost(),
		Reinforced: c.Reinforced(),
		Warp:       c.Warp(),
	}
}

// Summary returns the current summary.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary()
}

// summary builds a Summary. Callers hold s.mu.
func (s *Session) summary() Summary {
	sum := Summary{
		Session:     s.ID.String(),
		Seed:        s.Seed,
		Tick:        s.ticks,
		DangerLevel: s.field.DangerLevel(),
		Countdown:   s.field.DisasterCountdown(),
		Balance:     s.wallet.Balance(),
		Placements:  s.placements,
		Rejections:  s.rejections,
		Disasters:   s.disasters,
		Status:      s.status,
		Counts:      s.field.Counts(),
	}
	if o := s.field.Origin(); o != nil {
		at := o.Coord()
		sum.Origin = &at
	}
	return sum
}

// Map returns every cell and pattern.
func (s *Session) Map() MapView {
	s.mu.Lock()
	defer s.mu.Unlock()

	cells := s.field.Cells()
	view := MapView{
		Cells:      make([]CellView, 0, len(cells)),
		Triangles:  s.field.Triangles(),
		SuperHexes: s.field.SuperHexes(),
	}
	for _, c := range cells {
		view.Cells = append(view.Cells, viewOf(c))
	}
	return view
}

// Cell returns the detail for (x, y) with the ring at distance around it.
func (s *Session) Cell(x, y, distance int) (CellDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.field.CellAt(x, y)
	if c == nil {
		return CellDetail{}, false
	}
	d := CellDetail{
		CellView:  viewOf(c),
		Key:       c.Coord().Key(),
		Triangles: s.field.Memberships(c.Coord()),
	}
	for _, n := range s.field.Neighbors(c.Coord(), distance) {
		d.Neighbors = append(d.Neighbors, viewOf(n))
	}
	return d, true
}

// Inspect runs fn with exclusive access to the field. fn must not retain
// the field or its cells.
func (s *Session) Inspect(fn func(f *engine.Field)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.field)
}

// Subscribe returns a channel receiving a Summary after every tick and a
// function that ends the subscription. Slow subscribers miss summaries.
func (s *Session) Subscribe() (<-chan Summary, func()) {
	ch := make(chan Summary, 8)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (s *Session) broadcast(sum Summary) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- sum:
		default:
		}
	}
}
