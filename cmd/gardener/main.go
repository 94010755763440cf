// Command gardener plays a hexhold session autonomously.
// It observes the field, picks a placement with deterministic rules, and
// acts via the player API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/hexhold/internal/gardener"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment.
	apiURL := envOrDefault("HEXHOLD_API_URL", "http://localhost:8080")
	playerKey := os.Getenv("HEXHOLD_PLAYER_KEY")
	memoryPath := envOrDefault("GARDENER_MEMORY", "gardener_memory.json")
	intervalSec := envIntOrDefault("GARDENER_INTERVAL", 2)

	interval := time.Duration(intervalSec) * time.Second

	slog.Info("hexhold gardener starting",
		"api_url", apiURL,
		"interval", interval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	observer := gardener.NewObserver(apiURL)
	actor := gardener.NewActor(apiURL, playerKey)
	mem := gardener.LoadMemory(memoryPath)
	policy := gardener.DefaultPolicy()

	slog.Info("waiting for hexhold API...")
	if !waitForAPI(ctx, apiURL) {
		os.Exit(1)
	}

	// Run first cycle immediately.
	runCycle(ctx, observer, actor, mem, policy)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runCycle(ctx, observer, actor, mem, policy)
			mem.Save(memoryPath)
		case <-ctx.Done():
			slog.Info("received signal, shutting down")
			mem.Save(memoryPath)
			fmt.Println("Gardener stopped.")
			return
		}
	}
}

// runCycle executes one observe → triage → decide → act cycle.
func runCycle(ctx context.Context, observer *gardener.Observer, actor *gardener.Actor, mem *gardener.Memory, policy gardener.Policy) {
	snap, err := observer.Observe(ctx)
	if err != nil {
		slog.Error("observation failed", "error", err)
		return
	}
	health := gardener.Triage(snap)
	slog.Info("observation complete",
		"tick", snap.Status.Summary.Tick,
		"crisis", health.CrisisLevel,
		"hazards", health.Hazards,
		"avg_solidity", fmt.Sprintf("%.2f", health.AvgSolidity),
		"balance", fmt.Sprintf("%.1f", snap.Status.Summary.Balance),
	)

	decision := gardener.Decide(snap, health, mem, policy)
	if decision.Action == "none" || decision.Placement == nil {
		slog.Info("gardener cycle complete, no placement", "rationale", decision.Rationale)
		return
	}

	result, err := actor.Act(ctx, decision.Placement)
	if err != nil {
		slog.Error("placement failed", "error", err)
		return
	}

	mem.Record(gardener.Attempt{
		Tick:        snap.Status.Summary.Tick,
		X:           decision.Placement.X,
		Y:           decision.Placement.Y,
		Structure:   decision.Placement.Structure.String(),
		Accepted:    result.Accepted,
		Reason:      result.Reason.String(),
		CrisisLevel: health.CrisisLevel,
		Rationale:   decision.Rationale,
	})
	slog.Info("placement executed",
		"x", decision.Placement.X,
		"y", decision.Placement.Y,
		"accepted", result.Accepted,
		"reason", result.Reason,
		"disaster", result.Disaster.Fired,
		"rationale", decision.Rationale,
	)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds. Gives up after 5 minutes or when ctx ends.
func waitForAPI(ctx context.Context, apiURL string) bool {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		resp, err := http.Get(apiURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("hexhold API is ready")
				return true
			}
		}
		if time.Now().After(deadline) {
			slog.Error("hexhold API did not become ready within 5 minutes")
			return false
		}
		slog.Info("hexhold not ready, retrying...", "backoff", backoff)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
