// Package world provides the hex grid, cells, and spatial data structures.
// Uses offset coordinates (x, y) with odd rows shifted right by half a hex.
package world

import (
	"fmt"
	"math"
)

// Hex geometry in world units. Radius is the centre-to-corner distance of a
// single hex; Size is half the hex width.
const (
	Radius = 0.3
)

var (
	Size         = math.Sqrt(3) / 2 * Radius
	UnitDiameter = 2 * Size // centre-to-centre distance of two neighbours
)

// Coord identifies a hex on the grid in offset layout.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Key returns the canonical string form of the coordinate.
func (c Coord) Key() string {
	return fmt.Sprintf("x%dy%d", c.X, c.Y)
}

// Add returns the component-wise sum of two coordinates.
func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Parity returns 1 for odd rows and 0 for even rows, for negative rows too.
func Parity(y int) int {
	if y%2 != 0 {
		return 1
	}
	return 0
}

// Direction indexes the six hex directions, counter-clockwise from east.
type Direction int

const (
	East      Direction = iota // pure horizontal
	NorthEast                  // up and right
	NorthWest                  // up and left
	West                       // pure horizontal
	SouthWest                  // down and left
	SouthEast                  // down and right
)

// dirSteps holds each direction's horizontal sign and row step.
var dirSteps = [6]struct{ dx, dy int }{
	{1, 0},
	{1, 1},
	{-1, 1},
	{-1, 0},
	{-1, -1},
	{1, -1},
}

// Offset returns the vector that walks n steps in direction dir starting on
// from's row. Diagonal moves depend on the parity of the starting row.
func Offset(from Coord, dir Direction, n int) Coord {
	d := dirSteps[((int(dir)%6)+6)%6]
	if d.dy == 0 {
		return Coord{X: d.dx * n, Y: 0}
	}
	p := Parity(from.Y)
	var dx int
	if d.dx > 0 {
		dx = (n + p) / 2
	} else {
		dx = -((n + 1 - p) / 2)
	}
	return Coord{X: dx, Y: d.dy * n}
}

// Step returns the coordinate n steps from from in direction dir.
func Step(from Coord, dir Direction, n int) Coord {
	return from.Add(Offset(from, dir, n))
}

// RingWalk returns position theta on the ring of the given distance around
// center. Theta 0 is the eastern corner; positions advance counter-clockwise.
func RingWalk(center Coord, theta, distance int) Coord {
	if distance <= 0 {
		return center
	}
	theta = ((theta % (6 * distance)) + 6*distance) % (6 * distance)
	primary := Direction(theta / distance)
	secondary := theta % distance
	corner := Step(center, primary, distance)
	if secondary == 0 {
		return corner
	}
	return Step(corner, (primary+2)%6, secondary)
}

// Adjacents returns all 6*distance coordinates on the ring around center, in
// ring order. Distance 1 yields the six direct neighbours in direction order.
func Adjacents(center Coord, distance int) []Coord {
	if distance <= 0 {
		return nil
	}
	out := make([]Coord, 0, 6*distance)
	for theta := 0; theta < 6*distance; theta++ {
		out = append(out, RingWalk(center, theta, distance))
	}
	return out
}

// Neighbors returns the six adjacent hex coordinates.
func (c Coord) Neighbors() []Coord {
	return Adjacents(c, 1)
}

// Within returns center followed by every ring from 1 to distance.
func Within(center Coord, distance int) []Coord {
	out := []Coord{center}
	for n := 1; n <= distance; n++ {
		out = append(out, Adjacents(center, n)...)
	}
	return out
}

// cube converts to cube coordinates (q, r, s) with q+r+s == 0.
func (c Coord) cube() (int, int, int) {
	q := c.X - (c.Y-(c.Y&1))/2
	r := c.Y
	return q, r, -q - r
}

// Distance returns the ring distance between two coordinates.
func Distance(a, b Coord) int {
	aq, ar, as := a.cube()
	bq, br, bs := b.cube()
	return max(abs(aq-bq), abs(ar-br), abs(as-bs))
}

// Doubled returns the coordinate in doubled-width form, where a horizontal
// neighbour is two columns away and a diagonal one is one column away.
func (c Coord) Doubled() (int, int) {
	return 2*c.X + Parity(c.Y), c.Y
}

// Norm returns dx²+3dy² in doubled-width units between a and b. Equal norms
// mean equal world distances, exactly.
func Norm(a, b Coord) int {
	ax, ay := a.Doubled()
	bx, by := b.Doubled()
	dx, dy := bx-ax, by-ay
	return dx*dx + 3*dy*dy
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
