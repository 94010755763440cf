// Command hexhold runs a solidity field session behind the HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/hexhold/internal/api"
	"github.com/talgya/hexhold/internal/engine"
	"github.com/talgya/hexhold/internal/persistence"
	"github.com/talgya/hexhold/internal/session"
	"github.com/talgya/hexhold/internal/tuning"
)

// saveEvery is how many ticks pass between scoreboard saves.
const saveEvery = 240

func main() {
	level := slog.LevelInfo
	if os.Getenv("HEXHOLD_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(api.ContextHandler{Handler: slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})})
	slog.SetDefault(logger)

	slog.Info("hexhold: solidity field simulation")

	// ── Tuning ────────────────────────────────────────────────────────
	tune := tuning.Default()
	if path := os.Getenv("HEXHOLD_TUNING"); path != "" {
		t, err := tuning.Load(path)
		if err != nil {
			slog.Error("failed to load tuning", "path", path, "error", err)
			os.Exit(1)
		}
		tune = t
		slog.Info("tuning loaded", "path", path)
	}
	prices, err := tune.PriceTable()
	if err != nil {
		slog.Error("invalid price table", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if tune.Storage.DBPath != "" {
		os.MkdirAll(filepath.Dir(tune.Storage.DBPath), 0755)
		db, err = persistence.Open(tune.Storage.DBPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database opened", "path", tune.Storage.DBPath)
	}

	// ── Session ───────────────────────────────────────────────────────
	id := uuid.New()
	opts := session.Options{
		Config:          tune.Field,
		Prices:          prices,
		StartingBalance: tune.Economy.StartingBalance,
		Income:          tune.Economy.Income,
		ID:              id,
		Seed:            tune.Seed,
		Logger:          logger,
	}
	if db != nil {
		opts.Scoreboard = db
	}

	var journal *persistence.Journal
	if tune.Storage.JournalDir != "" {
		journal, err = persistence.OpenJournal(tune.Storage.JournalDir, id.String())
		if err != nil {
			slog.Error("failed to open journal", "error", err)
			os.Exit(1)
		}
		opts.Journal = journal
		slog.Info("journal opened", "path", journal.Path())
	}

	sess := session.New(opts)
	if err := sess.Save(); err != nil {
		slog.Error("initial save failed", "error", err)
	}

	// ── Tick engine ───────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.Interval = tune.Server.TickInterval()
	eng.SetSpeed(tune.Server.Speed)
	eng.OnTick = func(delta float64) {
		rep := sess.Tick(delta)
		if eng.Tick()%saveEvery != 0 {
			return
		}
		if err := sess.Save(); err != nil {
			slog.Error("periodic save failed", "error", err)
		}
		if journal != nil {
			if err := journal.Flush(); err != nil {
				slog.Error("journal flush failed", "error", err)
			}
		}
		slog.Info("checkpoint", "tick", eng.Tick(), "anchors", rep.Anchors, "hazards", rep.Hazards, "status", rep.Status)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("HEXHOLD_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("HEXHOLD_ADMIN_KEY not set, speed control will be disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiServer := &api.Server{
		Session:    sess,
		Eng:        eng,
		DB:         db,
		Port:       tune.Server.Port,
		AdminKey:   adminKey,
		PlayerKey:  os.Getenv("HEXHOLD_PLAYER_KEY"),
		RatePerSec: tune.Server.RatePerSec,
		RateBurst:  tune.Server.RateBurst,
	}
	srv := apiServer.Start(ctx)

	// ── Start ─────────────────────────────────────────────────────────
	sum := sess.Summary()
	fmt.Printf("\nField is live: %s cells, %s vulnerable, seed %d.\n",
		humanize.Comma(int64(sum.Counts.Cells)), humanize.Comma(int64(sum.Counts.Vulnerable)), sess.Seed)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", tune.Server.Port)
	fmt.Println("Starting clock... (Ctrl+C to stop)")

	eng.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}

	// Final save on shutdown.
	slog.Info("final save...")
	if err := sess.Save(); err != nil {
		slog.Error("final save failed", "error", err)
	}
	if journal != nil {
		if err := journal.Close(); err != nil {
			slog.Error("journal close failed", "error", err)
		} else if fi, err := os.Stat(journal.Path()); err == nil {
			slog.Info("journal closed", "path", journal.Path(), "size", humanize.Bytes(uint64(fi.Size())))
		}
	}

	final := sess.Summary()
	fmt.Printf("Session %s stopped after %s ticks: %s, danger level %d, %d disasters.\n",
		final.Session, humanize.Comma(int64(final.Tick)), final.Status, final.DangerLevel, final.Disasters)
}
