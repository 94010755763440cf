// Package gardener implements an autonomous player.
// It observes the field via the API, triages its health, picks at most one
// placement per cycle with deterministic rules, and acts via POST /place.
package gardener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/hexhold/internal/session"
	"github.com/talgya/hexhold/internal/world"
)

// Snapshot holds all data collected during an observation cycle.
type Snapshot struct {
	Status StatusResponse
	Map    session.MapView
}

// StatusResponse mirrors GET /api/v1/status.
type StatusResponse struct {
	Name       string          `json:"name"`
	Speed      float64         `json:"speed"`
	EngineTick uint64          `json:"engine_tick"`
	Summary    session.Summary `json:"summary"`
}

// Index maps every observed cell by coordinate.
func (s *Snapshot) Index() map[world.Coord]session.CellView {
	idx := make(map[world.Coord]session.CellView, len(s.Map.Cells))
	for _, c := range s.Map.Cells {
		idx[world.Coord{X: c.X, Y: c.Y}] = c
	}
	return idx
}

// Observer fetches field state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches status and the full map.
func (o *Observer) Observe(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	if err := o.fetchJSON(ctx, "/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/map", &snap.Map); err != nil {
		return nil, fmt.Errorf("fetch map: %w", err)
	}
	return snap, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
