// Package tuning loads the YAML tuning file that overrides the built-in
// defaults for the field, economy, server, and storage.
package tuning

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hexhold/internal/economy"
	"github.com/talgya/hexhold/internal/engine"
	"github.com/talgya/hexhold/internal/world"
)

type Tuning struct {
	Seed    int64         `yaml:"seed"` // 0 = random
	Field   engine.Config `yaml:"field"`
	Economy Economy       `yaml:"economy"`
	Server  Server        `yaml:"server"`
	Storage Storage       `yaml:"storage"`
}

type Economy struct {
	StartingBalance float64        `yaml:"starting_balance"`
	Income          float64        `yaml:"income"` // credits per second of simulated time
	Prices          map[string]int `yaml:"prices"`
}

type Server struct {
	Port       int     `yaml:"port"`
	TickMs     int     `yaml:"tick_ms"`
	Speed      float64 `yaml:"speed"`
	RatePerSec float64 `yaml:"rate_per_sec"` // placement requests per second per client
	RateBurst  int     `yaml:"rate_burst"`
}

type Storage struct {
	DBPath     string `yaml:"db_path"`     // empty disables the scoreboard
	JournalDir string `yaml:"journal_dir"` // empty disables the event journal
}

// Default returns the built-in tuning.
func Default() Tuning {
	prices := make(map[string]int)
	for kind, cost := range economy.DefaultPrices() {
		prices[kind.String()] = cost
	}
	return Tuning{
		Field: engine.DefaultConfig(),
		Economy: Economy{
			StartingBalance: 50,
			Income:          2,
			Prices:          prices,
		},
		Server: Server{
			Port:       8080,
			TickMs:     250,
			Speed:      1,
			RatePerSec: 4,
			RateBurst:  8,
		},
		Storage: Storage{
			DBPath:     "data/hexhold.db",
			JournalDir: "data/journal",
		},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate rejects tunings the engine cannot run with.
func (t Tuning) Validate() error {
	var errs []error
	f := t.Field
	if f.Generation.Radius < 1 {
		errs = append(errs, errors.New("field.generation.radius must be at least 1"))
	}
	if f.OriginRing < 1 || f.OriginRing > f.Generation.Radius {
		errs = append(errs, fmt.Errorf("field.origin_ring must be within 1..%d", f.Generation.Radius))
	}
	if f.SolidityThreshold < 0 || f.SolidityThreshold > 1 {
		errs = append(errs, errors.New("field.solidity_threshold must be within [0, 1]"))
	}
	if f.Cooldown < 1 {
		errs = append(errs, errors.New("field.cooldown must be at least 1"))
	}
	if f.AngleEpsilon <= 0 {
		errs = append(errs, errors.New("field.angle_epsilon must be positive"))
	}
	if t.Server.TickMs < 1 {
		errs = append(errs, errors.New("server.tick_ms must be at least 1"))
	}
	if _, err := t.PriceTable(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// PriceTable converts the named prices into an economy.Prices table.
func (t Tuning) PriceTable() (economy.Prices, error) {
	prices := make(economy.Prices, len(t.Economy.Prices))
	for name, cost := range t.Economy.Prices {
		kind, err := world.ParseStructure(name)
		if err != nil {
			return nil, fmt.Errorf("economy.prices: %w", err)
		}
		if cost < 0 {
			return nil, fmt.Errorf("economy.prices: %s has negative cost", name)
		}
		prices[kind] = cost
	}
	return prices, nil
}

// TickInterval returns the server tick interval.
func (s Server) TickInterval() time.Duration {
	return time.Duration(s.TickMs) * time.Millisecond
}
