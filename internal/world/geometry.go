package world

import "math"

// Vec2 is a position or direction in world units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }

// Angle returns the unsigned angle between a and b in radians.
// Zero-length vectors yield 0.
func Angle(a, b Vec2) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	cos := a.Dot(b) / (la * lb)
	// Rounding can push the cosine just outside [-1, 1].
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos)
}

// Position returns the world-space centre of the hex at c.
func Position(c Coord) Vec2 {
	return Vec2{
		X: Size * float64(2*c.X+Parity(c.Y)),
		Y: Radius * 1.5 * float64(c.Y),
	}
}

// FromPosition converts a world-space point back to a grid coordinate by
// rounding the row first, then the column within that row.
func FromPosition(p Vec2) Coord {
	y := int(math.Round(p.Y / (Radius * 1.5)))
	x := int(math.Round((p.X/Size - float64(Parity(y))) / 2))
	return Coord{X: x, Y: y}
}
