package sim

import "math"

// Point is a 2D position in level coordinates.
type Point struct {
	X, Y float64
}

// Pt is shorthand for constructing a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Dist returns the euclidean distance between two points.
func (p Point) Dist(o Point) float64 {
	return math.Hypot(o.X-p.X, o.Y-p.Y)
}

// Lerp interpolates between p and o by t in [0, 1].
func (p Point) Lerp(o Point, t float64) Point {
	return Point{X: p.X + (o.X-p.X)*t, Y: p.Y + (o.Y-p.Y)*t}
}

// PolylineLength returns the summed segment length of a polyline.
func PolylineLength(pts []Point) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += pts[i-1].Dist(pts[i])
	}
	return total
}

// PointAlong returns the point reached after travelling d along the polyline.
// The polyline is scaled so that its full traversal corresponds to length,
// which lets an edge declare a nominal length that differs from its drawn
// geometry. d is clamped to [0, length].
func PointAlong(pts []Point, length, d float64) Point {
	switch len(pts) {
	case 0:
		return Point{}
	case 1:
		return pts[0]
	}

	drawn := PolylineLength(pts)
	if drawn == 0 || length <= 0 {
		return pts[0]
	}

	d = math.Max(0, math.Min(d, length))
	target := d / length * drawn

	for i := 1; i < len(pts); i++ {
		seg := pts[i-1].Dist(pts[i])
		if target <= seg {
			if seg == 0 {
				return pts[i]
			}
			return pts[i-1].Lerp(pts[i], target/seg)
		}
		target -= seg
	}
	return pts[len(pts)-1]
}
