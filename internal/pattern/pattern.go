// Package pattern finds geometric figures among anchor cells: equilateral
// triangles, which grant boost, and regular hexagons ("super-hexes"), which
// reinforce the area they enclose.
//
// Both scans are relative to a focal anchor, normally the one just placed.
// Candidates are grouped by exact lattice distance from the focus, then
// pairs within a group are tested for the characteristic angle.
package pattern

import (
	"math"
	"sort"

	"github.com/talgya/hexhold/internal/world"
)

// DefaultEpsilon is the angular tolerance in radians.
const DefaultEpsilon = 0.01

var (
	triangleAngle = math.Pi / 3
	hexagonAngle  = 2 * math.Pi / 3
)

// Triangle is three anchors at mutually equal distance.
type Triangle struct {
	ID       world.TriangleID `json:"id"`
	Vertices [3]world.Coord   `json:"vertices"`
	Size     float64          `json:"size"` // edge length in unit diameters
}

// Has reports whether c is a vertex of t.
func (t Triangle) Has(c world.Coord) bool {
	return t.Vertices[0] == c || t.Vertices[1] == c || t.Vertices[2] == c
}

// Tier returns the boost granted by this triangle.
func (t Triangle) Tier() int {
	return Tier(t.Size)
}

// SuperHex is six anchors on the corners of a regular hexagon.
type SuperHex struct {
	Center   world.Coord    `json:"center"`
	Radius   world.Vec2     `json:"radius"` // centre-to-corner vector
	Vertices [6]world.Coord `json:"vertices"`
}

// Has reports whether c is a corner of h.
func (h SuperHex) Has(c world.Coord) bool {
	for _, v := range h.Vertices {
		if v == c {
			return true
		}
	}
	return false
}

// Reach returns the ring distance reinforced around the centre.
func (h SuperHex) Reach() int {
	return ReinforceRadius(h.Radius)
}

// Tier maps a triangle size to a boost level.
func Tier(size float64) int {
	if size <= 0 {
		return 0
	}
	return int(math.Floor(size/2 + 1e-9))
}

// ReinforceRadius returns ceil(|radius| / unit diameter) + 1.
func ReinforceRadius(radius world.Vec2) int {
	units := radius.Len() / world.UnitDiameter
	// Lattice lengths are exact multiples up to rounding noise.
	return int(math.Ceil(units-1e-9)) + 1
}

// groupByDistance buckets anchors other than focus by their exact lattice
// distance from focus. Buckets with fewer than two members are dropped.
func groupByDistance(focus world.Coord, anchors []world.Coord) [][]world.Coord {
	byNorm := make(map[int][]world.Coord)
	for _, a := range anchors {
		if a == focus {
			continue
		}
		n := world.Norm(focus, a)
		byNorm[n] = append(byNorm[n], a)
	}
	norms := make([]int, 0, len(byNorm))
	for n, group := range byNorm {
		if len(group) >= 2 {
			norms = append(norms, n)
		}
	}
	sort.Ints(norms)

	groups := make([][]world.Coord, 0, len(norms))
	for _, n := range norms {
		groups = append(groups, byNorm[n])
	}
	return groups
}

// pairsAt calls fn for each unordered pair in each group whose rays from
// focus meet at angle within eps.
func pairsAt(focus world.Coord, groups [][]world.Coord, angle, eps float64, fn func(a, b world.Coord, u, v world.Vec2)) {
	origin := world.Position(focus)
	for _, group := range groups {
		for i := 0; i < len(group); i++ {
			u := world.Position(group[i]).Sub(origin)
			for j := i + 1; j < len(group); j++ {
				v := world.Position(group[j]).Sub(origin)
				if math.Abs(world.Angle(u, v)-angle) <= eps {
					fn(group[i], group[j], u, v)
				}
			}
		}
	}
}

// Triangles returns every equilateral triangle with focus as a vertex and
// the other two vertices drawn from anchors. IDs are left zero.
func Triangles(focus world.Coord, anchors []world.Coord, eps float64) []Triangle {
	var out []Triangle
	pairsAt(focus, groupByDistance(focus, anchors), triangleAngle, eps, func(a, b world.Coord, u, _ world.Vec2) {
		out = append(out, Triangle{
			Vertices: [3]world.Coord{focus, a, b},
			Size:     u.Len() / world.UnitDiameter,
		})
	})
	return out
}

// SuperHexes returns every regular hexagon with focus as a corner whose six
// corners are all anchors. isAnchor resolves the three corners not adjacent
// to focus; exists reports whether the centre cell is materialized.
func SuperHexes(focus world.Coord, anchors []world.Coord, isAnchor, exists func(world.Coord) bool, eps float64) []SuperHex {
	var out []SuperHex
	origin := world.Position(focus)
	pairsAt(focus, groupByDistance(focus, anchors), hexagonAngle, eps, func(a, b world.Coord, u, v world.Vec2) {
		radius := u.Add(v)
		center := world.FromPosition(origin.Add(radius))
		if !exists(center) {
			return
		}
		far := [3]world.Coord{
			world.FromPosition(origin.Add(u.Scale(2)).Add(v)),
			world.FromPosition(origin.Add(u).Add(v.Scale(2))),
			world.FromPosition(origin.Add(u.Scale(2)).Add(v.Scale(2))),
		}
		for _, c := range far {
			if !isAnchor(c) {
				return
			}
		}
		out = append(out, SuperHex{
			Center:   center,
			Radius:   radius,
			Vertices: [6]world.Coord{focus, a, far[0], far[2], far[1], b},
		})
	})
	return out
}
