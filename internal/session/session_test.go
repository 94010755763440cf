package session

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/talgya/hexhold/internal/engine"
	"github.com/talgya/hexhold/internal/persistence"
	"github.com/talgya/hexhold/internal/world"
)

type fakeBoard struct {
	mu        sync.Mutex
	sessions  []persistence.SessionRecord
	disasters []persistence.DisasterRecord
}

func (b *fakeBoard) SaveSession(r persistence.SessionRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions = append(b.sessions, r)
	return nil
}

func (b *fakeBoard) RecordDisaster(r persistence.DisasterRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disasters = append(b.disasters, r)
	return nil
}

type fakeJournal struct {
	mu     sync.Mutex
	events []Event
}

func (j *fakeJournal) Write(v any) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, v.(Event))
	return nil
}

func (j *fakeJournal) kinds() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.events))
	for i, ev := range j.events {
		out[i] = ev.Kind
	}
	return out
}

func newTestSession(t *testing.T) (*Session, *fakeBoard, *fakeJournal) {
	t.Helper()
	board, journal := &fakeBoard{}, &fakeJournal{}
	s := New(Options{
		Config:          engine.SmallTestConfig(),
		StartingBalance: 25,
		Income:          1,
		Seed:            5,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		Scoreboard:      board,
		Journal:         journal,
	})
	return s, board, journal
}

func TestNewSession(t *testing.T) {
	s, _, journal := newTestSession(t)
	if s.Seed != 5 || s.ID == uuid.Nil {
		t.Fatalf("seed %d id %v", s.Seed, s.ID)
	}
	sum := s.Summary()
	if sum.Session != s.ID.String() || sum.Status != engine.StatusRunning || sum.Balance != 25 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Origin == nil || sum.Counts.Anchors != 1 || sum.Counts.Cells != 217 {
		t.Fatalf("summary = %+v", sum)
	}
	if k := journal.kinds(); len(k) != 1 || k[0] != EventStarted {
		t.Fatalf("journal = %v", k)
	}

	fixed := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	s2 := New(Options{Config: engine.SmallTestConfig(), Seed: 5, ID: fixed, Logger: s.log})
	if s2.ID != fixed {
		t.Fatalf("id = %v, want %v", s2.ID, fixed)
	}
}

func TestTickBroadcasts(t *testing.T) {
	s, _, _ := newTestSession(t)
	ch, cancel := s.Subscribe()

	s.Tick(2)
	sum, ok := <-ch
	if !ok {
		t.Fatal("subscription closed early")
	}
	if sum.Tick != 1 || sum.Balance != 27 {
		t.Fatalf("summary = %+v", sum)
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("channel still open after cancel")
	}
	s.Tick(1)
}

func TestPlaceCountsAndJournal(t *testing.T) {
	s, board, journal := newTestSession(t)

	if res := s.Place(world.Hazard, 0, 0); res.Accepted || res.Reason != engine.RejectIllegal {
		t.Fatalf("hazard placement = %+v", res)
	}
	if res := s.Place(world.Anchor, 0, 0); res.Accepted || res.Reason != engine.RejectOccupied {
		t.Fatalf("anchor on anchor = %+v", res)
	}

	var last engine.PlaceResult
	for i := 0; i < 3; i++ {
		last = s.Place(world.None, 1, 0)
		if !last.Accepted {
			t.Fatalf("clearing empty cell rejected: %v", last.Reason)
		}
	}
	if !last.Disaster.Fired {
		t.Fatal("third accepted placement did not fire")
	}

	sum := s.Summary()
	if sum.Placements != 3 || sum.Rejections != 2 || sum.Disasters != 1 || sum.DangerLevel != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if len(board.disasters) != 1 || board.disasters[0].SessionID != s.ID.String() {
		t.Fatalf("recorded disasters = %+v", board.disasters)
	}

	counts := map[string]int{}
	for _, k := range journal.kinds() {
		counts[k]++
	}
	if counts[EventRejected] != 2 || counts[EventPlaced] != 3 || counts[EventDisaster] != 1 {
		t.Fatalf("journal kinds = %v", counts)
	}
}

func TestSaveWritesRecord(t *testing.T) {
	s, board, _ := newTestSession(t)
	s.Tick(1)
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	if len(board.sessions) != 1 {
		t.Fatalf("saved %d rows", len(board.sessions))
	}
	rec := board.sessions[0]
	if rec.ID != s.ID.String() || rec.Ticks != 1 || rec.Anchors != 1 || rec.Status != "running" {
		t.Fatalf("record = %+v", rec)
	}

	bare := New(Options{Config: engine.SmallTestConfig(), Seed: 1, Logger: s.log})
	if err := bare.Save(); err != nil {
		t.Fatalf("save without scoreboard: %v", err)
	}
}

func TestMapAndCell(t *testing.T) {
	s, _, _ := newTestSession(t)

	m := s.Map()
	if len(m.Cells) != 217 {
		t.Fatalf("map has %d cells", len(m.Cells))
	}

	d, ok := s.Cell(0, 0, 1)
	if !ok {
		t.Fatal("centre cell missing")
	}
	if d.Structure != world.Anchor || d.Key != "x0y0" || len(d.Neighbors) != 6 {
		t.Fatalf("centre detail = %+v", d)
	}
	if _, ok := s.Cell(99, 99, 1); ok {
		t.Fatal("cell outside the field reported present")
	}

	var anchors int
	s.Inspect(func(f *engine.Field) { anchors = len(f.Anchors()) })
	if anchors != 1 {
		t.Fatalf("anchors = %d", anchors)
	}
}
