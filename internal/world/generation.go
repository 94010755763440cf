// Field generation: flood expansion from a centre hex with a solidity field
// biased toward the centre and roughened with simplex noise.
package world

import (
	"github.com/Travis-Britz/structures/stack"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hexhold/internal/entropy"
)

// GenConfig holds field generation parameters.
type GenConfig struct {
	Center     Coord   `yaml:"center"`
	Radius     int     `yaml:"radius"`      // Ring radius of the materialized region
	Bias       float64 `yaml:"bias"`        // Weight of the distance-from-centre term
	Noise      float64 `yaml:"noise"`       // Weight of the simplex noise term
	Jitter     float64 `yaml:"jitter"`      // Weight of the per-cell random term
	NoiseScale float64 `yaml:"noise_scale"` // Simplex frequency in world units
}

// DefaultGenConfig returns the standard field shape.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:     50,
		Bias:       0.6,
		Noise:      0.3,
		Jitter:     0.1,
		NoiseScale: 0.6,
	}
}

// SmallTestConfig returns a tiny field for tests and quick runs.
func SmallTestConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.Radius = 8
	return cfg
}

// Generate materializes every cell within cfg.Radius rings of cfg.Center.
func Generate(cfg GenConfig, rng entropy.Source) *Map {
	noise := opensimplex.NewNormalized(rng.Int63())
	m := NewMap()

	frontier := &stack.Stack[Coord]{}
	visited := map[Coord]bool{cfg.Center: true}

	for current, more := cfg.Center, true; more; current, more = frontier.Pop() {
		m.Add(NewCell(current, baseline(cfg, current, noise, rng)))

		for _, next := range current.Neighbors() {
			if visited[next] || Distance(cfg.Center, next) > cfg.Radius {
				continue
			}
			visited[next] = true
			frontier.Push(next)
		}
	}
	return m
}

// baseline computes a cell's starting solidity. Cells near the centre start
// stable; the rim starts close to collapse.
func baseline(cfg GenConfig, c Coord, noise opensimplex.Noise, rng entropy.Source) float64 {
	bias := 1.0
	if cfg.Radius > 0 {
		bias = 1 - float64(Distance(cfg.Center, c))/float64(cfg.Radius)
	}
	p := Position(c)
	n := noise.Eval2(p.X*cfg.NoiseScale, p.Y*cfg.NoiseScale)
	total := cfg.Bias + cfg.Noise + cfg.Jitter
	if total <= 0 {
		return bias
	}
	return (cfg.Bias*bias + cfg.Noise*n + cfg.Jitter*rng.Float64()) / total
}
