// Package session owns one running field and serialises every access to it.
// The API, the tick clock, and tests all go through a Session; the Field
// underneath is single-writer and never touched concurrently.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/hexhold/internal/economy"
	"github.com/talgya/hexhold/internal/engine"
	"github.com/talgya/hexhold/internal/entropy"
	"github.com/talgya/hexhold/internal/persistence"
	"github.com/talgya/hexhold/internal/world"
)

// Scoreboard persists session summaries and disaster firings.
type Scoreboard interface {
	SaveSession(persistence.SessionRecord) error
	RecordDisaster(persistence.DisasterRecord) error
}

// Journal receives one value per session event.
type Journal interface {
	Write(v any) error
}

// Options configures a new session.
type Options struct {
	Config          engine.Config
	Prices          economy.Prices
	StartingBalance float64
	Income          float64
	ID              uuid.UUID // zero = generate
	Seed            int64     // 0 = random
	Logger          *slog.Logger
	Scoreboard      Scoreboard // optional
	Journal         Journal    // optional
}

// Session is one generated field plus its wallet and counters.
type Session struct {
	ID        uuid.UUID
	Seed      int64
	StartedAt time.Time

	log     *slog.Logger
	board   Scoreboard
	journal Journal

	mu         sync.Mutex
	field      *engine.Field
	wallet     *economy.Wallet
	ticks      uint64
	placements int
	rejections int
	disasters  int
	status     engine.Status

	subMu   sync.Mutex
	subs    map[int]chan Summary
	nextSub int
}

// New generates a field and wraps it in a session.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prices := opts.Prices
	if prices == nil {
		prices = economy.DefaultPrices()
	}
	rng, seed := entropy.New(opts.Seed)

	id := opts.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	logger = logger.With("session", id.String())

	field := engine.NewField(opts.Config, rng, logger)
	field.Generate()

	s := &Session{
		ID:        id,
		Seed:      seed,
		StartedAt: time.Now().UTC(),
		log:       logger,
		board:     opts.Scoreboard,
		journal:   opts.Journal,
		field:     field,
		wallet:    economy.NewWallet(prices, opts.StartingBalance, opts.Income),
		status:    field.Status(),
		subs:      make(map[int]chan Summary),
	}

	counts := field.Counts()
	s.log.Info("session started",
		"seed", seed,
		"cells", humanize.Comma(int64(counts.Cells)),
		"vulnerable", humanize.Comma(int64(counts.Vulnerable)),
	)
	s.emit(Event{Kind: EventStarted, Status: s.status.String()})
	return s
}

// Tick advances the field and the wallet by delta, then notifies subscribers.
func (s *Session) Tick(delta float64) engine.TickReport {
	s.mu.Lock()
	rep := s.field.Tick(delta)
	s.wallet.Earn(delta)
	s.ticks++
	s.observeStatus(rep.Status)
	sum := s.summary()
	s.mu.Unlock()

	s.broadcast(sum)
	return rep
}

// Place requests a structure at (x, y), paid from the session wallet.
func (s *Session) Place(kind world.Structure, x, y int) engine.PlaceResult {
	at := world.Coord{X: x, Y: y}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.field.Place(kind, at, s.wallet)
	if !res.Accepted {
		s.rejections++
		s.emit(Event{Kind: EventRejected, At: &at, Structure: kind.String(), Reason: res.Reason.String()})
		return res
	}

	s.placements++
	s.emit(Event{Kind: EventPlaced, At: &at, Structure: kind.String(), Changed: res.Changed})

	if res.Disaster.Fired {
		s.disasters++
		d := res.Disaster
		s.emit(Event{Kind: EventDisaster, Disaster: &d})
		if s.board != nil {
			err := s.board.RecordDisaster(persistence.DisasterRecord{
				SessionID:   s.ID.String(),
				Tick:        s.ticks,
				DangerLevel: d.DangerLevel,
				Spread:      len(d.Spread),
				Seeded:      d.Seed != nil,
				Collapsed:   len(d.Collapsed),
				Warped:      len(d.Warped),
				Exhausted:   d.Exhausted,
				Hazards:     d.NewHazards(),
			})
			if err != nil {
				s.log.Error("record disaster failed", "error", err)
			}
		}
	}
	s.observeStatus(res.Status)
	return res
}

// observeStatus emits an event when the terminal state changes.
// Callers hold s.mu.
func (s *Session) observeStatus(st engine.Status) {
	if st == s.status {
		return
	}
	s.status = st
	s.log.Info("field status changed", "status", st, "danger_level", s.field.DangerLevel())
	s.emit(Event{Kind: EventStatus, Status: st.String()})
}

// Save writes the scoreboard row. A session without a scoreboard is a no-op.
func (s *Session) Save() error {
	if s.board == nil {
		return nil
	}
	return s.board.SaveSession(s.Record())
}

// Record returns the scoreboard row for the session's current state.
func (s *Session) Record() persistence.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := s.field.Counts()
	return persistence.SessionRecord{
		ID:          s.ID.String(),
		Seed:        s.Seed,
		StartedAt:   s.StartedAt,
		UpdatedAt:   time.Now().UTC(),
		Ticks:       s.ticks,
		Placements:  s.placements,
		Rejections:  s.rejections,
		Disasters:   s.disasters,
		DangerLevel: s.field.DangerLevel(),
		Anchors:     counts.Anchors,
		Hazards:     counts.Hazards,
		Status:      s.status.String(),
	}
}

// emit writes an event to the journal. Callers hold s.mu.
func (s *Session) emit(ev Event) {
	if s.journal == nil {
		return
	}
	ev.Tick = s.ticks
	ev.Time = time.Now().UTC()
	if err := s.journal.Write(ev); err != nil {
		s.log.Error("journal write failed", "kind", ev.Kind, "error", err)
	}
}

func (s *Session) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("Session(%s, ticks=%d)", s.ID, s.ticks)
}
