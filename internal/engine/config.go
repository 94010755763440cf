package engine

import (
	"github.com/talgya/hexhold/internal/pattern"
	"github.com/talgya/hexhold/internal/world"
)

// Config holds the field's physics and disaster parameters.
type Config struct {
	Generation world.GenConfig `yaml:"generation"`
	OriginRing int             `yaml:"origin_ring"` // Ring around the centre the Origin is drawn from

	// Solidity physics, per unit of tick delta.
	SolidityThreshold float64 `yaml:"solidity_threshold"` // Minimum solidity to place an anchor or to be hit by a disaster
	DecayRate         float64 `yaml:"decay_rate"`         // Applied to every cell
	AnchorGain        float64 `yaml:"anchor_gain"`        // Added to each anchor's own cell
	Propagation       float64 `yaml:"propagation"`        // Added to each cell in an anchor's reach
	HazardDrain       float64 `yaml:"hazard_drain"`       // Removed from each hazard's neighbours
	BaseReach         int     `yaml:"base_reach"`         // Anchor reach before boost

	// Disaster engine, counted in placements.
	InitialCountdown int `yaml:"initial_countdown"`
	Cooldown         int `yaml:"cooldown"`
	OriginPulseEvery int `yaml:"origin_pulse_every"` // Danger levels between Origin pulses; 0 disables
	WarpDelay        int `yaml:"warp_delay"`         // Placements before a warped cell collapses

	AngleEpsilon float64 `yaml:"angle_epsilon"` // Radians
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		Generation:        world.DefaultGenConfig(),
		OriginRing:        15,
		SolidityThreshold: 0.5,
		DecayRate:         0.01,
		AnchorGain:        0.05,
		Propagation:       0.02,
		HazardDrain:       0.02,
		BaseReach:         2,
		InitialCountdown:  3,
		Cooldown:          2,
		OriginPulseEvery:  4,
		WarpDelay:         3,
		AngleEpsilon:      pattern.DefaultEpsilon,
	}
}

// SmallTestConfig returns DefaultConfig on a small field.
func SmallTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Generation = world.SmallTestConfig()
	cfg.OriginRing = 5
	return cfg
}
