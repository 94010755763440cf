package gardener

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/hexhold/internal/engine"
)

// Actor executes placements via the player API.
type Actor struct {
	BaseURL    string
	PlayerKey  string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL. playerKey may
// be empty when the server leaves placement open.
func NewActor(baseURL, playerKey string) *Actor {
	return &Actor{
		BaseURL:   baseURL,
		PlayerKey: playerKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Act sends a placement to POST /api/v1/place. A rule rejection is returned
// as a result with Accepted false, not as an error.
func (a *Actor) Act(ctx context.Context, p *Placement) (*engine.PlaceResult, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal placement: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/api/v1/place", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.PlayerKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.PlayerKey)
	}

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST place: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusConflict {
		return nil, fmt.Errorf("place failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var result engine.PlaceResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}
