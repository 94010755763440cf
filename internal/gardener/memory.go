package gardener

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/talgya/hexhold/internal/world"
)

const (
	maxRecords   = 32
	avoidRecords = 8 // rejected cells among the last N attempts are skipped
)

// Attempt captures one placement the gardener tried.
type Attempt struct {
	Tick        uint64 `json:"tick"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Structure   string `json:"structure"`
	Accepted    bool   `json:"accepted"`
	Reason      string `json:"reason,omitempty"`
	CrisisLevel string `json:"crisis_level"`
	Rationale   string `json:"rationale,omitempty"`
}

// Memory is a ring of recent attempts.
type Memory struct {
	Records []Attempt `json:"records"`
}

// LoadMemory reads the memory file from disk. Returns empty memory if not found.
func LoadMemory(path string) *Memory {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Memory{}
	}
	var mem Memory
	if err := json.Unmarshal(data, &mem); err != nil {
		slog.Warn("gardener memory corrupted, starting fresh", "error", err)
		return &Memory{}
	}
	return &mem
}

// Save writes the memory to disk.
func (m *Memory) Save(path string) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		slog.Error("failed to marshal gardener memory", "error", err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		slog.Error("failed to write gardener memory", "error", err)
	}
}

// Record adds an attempt, trimming to maxRecords.
func (m *Memory) Record(a Attempt) {
	m.Records = append(m.Records, a)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// Avoid reports whether c was rejected among the most recent attempts.
func (m *Memory) Avoid(c world.Coord) bool {
	start := max(len(m.Records)-avoidRecords, 0)
	for _, a := range m.Records[start:] {
		if !a.Accepted && a.X == c.X && a.Y == c.Y {
			return true
		}
	}
	return false
}
