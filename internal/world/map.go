package world

import "fmt"

// Map holds every materialized cell. Cells are never removed.
type Map struct {
	cells map[Coord]*Cell
	order []Coord // creation order, for deterministic iteration
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{cells: make(map[Coord]*Cell)}
}

// Get returns the cell at the given coordinate, or nil if not materialized.
func (m *Map) Get(c Coord) *Cell {
	return m.cells[c]
}

// Add stores a cell. A coordinate that is already present keeps its cell.
func (m *Map) Add(cell *Cell) bool {
	if _, ok := m.cells[cell.coord]; ok {
		return false
	}
	m.cells[cell.coord] = cell
	m.order = append(m.order, cell.coord)
	return true
}

// Cells returns all cells in creation order.
func (m *Map) Cells() []*Cell {
	out := make([]*Cell, 0, len(m.order))
	for _, c := range m.order {
		out = append(out, m.cells[c])
	}
	return out
}

// Present resolves coordinates to cells, dropping any that are absent.
func (m *Map) Present(coords []Coord) []*Cell {
	out := make([]*Cell, 0, len(coords))
	for _, c := range coords {
		if cell := m.cells[c]; cell != nil {
			out = append(out, cell)
		}
	}
	return out
}

// Len returns the number of materialized cells.
func (m *Map) Len() int {
	return len(m.cells)
}

func (m *Map) String() string {
	return fmt.Sprintf("Map(cells=%d)", m.Len())
}
