// Package api serves the running session over HTTP.
// GET endpoints are public (read-only observation).
// POST /place needs the player key when one is set; POST /speed always
// needs the admin key.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/talgya/hexhold/internal/engine"
	"github.com/talgya/hexhold/internal/persistence"
	"github.com/talgya/hexhold/internal/session"
	"github.com/talgya/hexhold/internal/world"
)

const (
	maxStreamConns  = 8
	maxCellDistance = 10
)

// Server serves the session state over HTTP.
type Server struct {
	Session   *session.Session
	Eng       *engine.Engine
	DB        *persistence.DB // optional; /sessions answers 404 without it
	Port      int
	AdminKey  string // Bearer token for /speed. Empty = speed control disabled.
	PlayerKey string // Bearer token for /place. Empty = placement open to anyone.

	RatePerSec float64 // placement requests per second per client
	RateBurst  int

	streamConns atomic.Int32
}

// Handler builds the full route table with middleware applied.
func (s *Server) Handler() http.Handler {
	rps, burst := s.RatePerSec, s.RateBurst
	if rps <= 0 {
		rps = 4
	}
	if burst <= 0 {
		burst = 8
	}
	placeLimiter := NewRateLimiter(rps, burst)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/map", s.handleMap)
	mux.HandleFunc("/api/v1/cell/", s.handleCell)
	mux.HandleFunc("/api/v1/sessions", s.handleSessions)
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	mux.HandleFunc("/api/v1/place", s.playerOnly(RateLimitMiddleware(placeLimiter, s.handlePlace)))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	return injectCorrelationID(corsMiddleware(mux))
}

// Start serves the API until ctx is cancelled.
func (s *Server) Start(ctx context.Context) *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "player_auth", s.PlayerKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(auth, "Bearer "), true
}

// adminOnly wraps a handler to require the admin key on POST requests.
// GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no HEXHOLD_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if key, ok := bearer(r); !ok || key != s.AdminKey {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// playerOnly requires the player key when one is configured.
func (s *Server) playerOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.PlayerKey != "" {
			if key, ok := bearer(r); !ok || key != s.PlayerKey {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sum := s.Session.Summary()
	status := map[string]any{
		"name":    "hexhold",
		"summary": sum,
	}
	if s.Eng != nil {
		status["speed"] = s.Eng.Speed()
		status["engine_tick"] = s.Eng.Tick()
	}
	writeJSON(w, status)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Session.Map())
}

// handleCell serves GET /api/v1/cell/:x/:y?distance=n.
func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// api v1 cell x y
	if len(parts) != 5 {
		http.Error(w, "usage: /api/v1/cell/:x/:y", http.StatusBadRequest)
		return
	}
	x, err1 := strconv.Atoi(parts[3])
	y, err2 := strconv.Atoi(parts[4])
	if err1 != nil || err2 != nil {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}

	distance := 1
	if d := r.URL.Query().Get("distance"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 || n > maxCellDistance {
			http.Error(w, fmt.Sprintf("distance must be 0-%d", maxCellDistance), http.StatusBadRequest)
			return
		}
		distance = n
	}

	detail, ok := s.Session.Cell(x, y, distance)
	if !ok {
		http.Error(w, "cell not found", http.StatusNotFound)
		return
	}
	writeJSON(w, detail)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "scoreboard disabled", http.StatusNotFound)
		return
	}
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	rows, err := s.DB.RecentSessions(limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "scoreboard query failed", "error", err)
		http.Error(w, "scoreboard query failed", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []persistence.SessionRecord{}
	}
	writeJSON(w, rows)
}

// PlaceRequest is the body of POST /api/v1/place.
type PlaceRequest struct {
	X         int             `json:"x"`
	Y         int             `json:"y"`
	Structure world.Structure `json:"structure"`
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := decodePlace(http.MaxBytesReader(w, r.Body, 4096))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := s.Session.Place(req.Structure, req.X, req.Y)
	slog.InfoContext(r.Context(), "place",
		"x", req.X, "y", req.Y, "structure", req.Structure,
		"accepted", res.Accepted, "reason", res.Reason, "disaster", res.Disaster.Fired,
	)
	if !res.Accepted {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(res)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "no tick engine", http.StatusNotFound)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.InfoContext(r.Context(), "speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
