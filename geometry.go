package lcm

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrCollinearPoints is returned by circleFromThree when the three input
// points are collinear (the circumscribed-circle determinant is zero).
// It never escapes the geometry module: circleFromBoundary, inside
// smallestEnclosingCircle's Welzl recursion, is the only caller and it falls
// back to a two-point circle when this is returned.
var ErrCollinearPoints = errors.New("lcm: three points are collinear")

// Coordinates is an immutable 2D point.
type Coordinates struct {
	X, Y float64
}

// Equal reports whether two coordinates are equal within the given decimal
// precision (number of digits after the decimal point).
func (a Coordinates) Equal(b Coordinates, precision int) bool {
	eps := math.Pow(10, -float64(precision))
	return floats.EqualWithinAbs(a.X, b.X, eps) && floats.EqualWithinAbs(a.Y, b.Y, eps)
}

func (a Coordinates) String() string {
	return fmt.Sprintf("(%f, %f)", a.X, a.Y)
}

// Circle is a 2D disk. Every Circle built in this package has a non-negative
// radius; no negative sentinel radius is used.
type Circle struct {
	Center Coordinates
	Radius float64
}

func (c Circle) String() string {
	return fmt.Sprintf("circle(center=%s, r=%f)", c.Center, c.Radius)
}

// distance returns the Euclidean distance between a and b.
func distance(a, b Coordinates) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// interpolate returns the point a fraction t of the way from a to b. t is not
// clamped: t<0 or t>1 extrapolate past the segment.
func interpolate(a, b Coordinates, t float64) Coordinates {
	return Coordinates{
		X: a.X + t*(b.X-a.X),
		Y: a.Y + t*(b.Y-a.Y),
	}
}

// circleFromTwo returns the circle with a and b as antipodal points on its
// boundary: center is their midpoint, radius is half their distance.
func circleFromTwo(a, b Coordinates) Circle {
	return Circle{
		Center: interpolate(a, b, 0.5),
		Radius: distance(a, b) / 2,
	}
}

// circleFromThree returns the circle circumscribed by a, b and c, via the
// standard determinant form. Returns ErrCollinearPoints when D is (within
// floating-point tolerance) zero.
func circleFromThree(a, b, c Coordinates) (Circle, error) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if floats.EqualWithinAbs(d, 0, 1e-9) {
		return Circle{}, ErrCollinearPoints
	}
	a2 := a.X*a.X + a.Y*a.Y
	b2 := b.X*b.X + b.Y*b.Y
	c2 := c.X*c.X + c.Y*c.Y
	ux := (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d
	uy := (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d
	center := Coordinates{X: ux, Y: uy}
	return Circle{Center: center, Radius: distance(center, a)}, nil
}

// isAcuteTriangle reports whether a, b, c form an acute triangle: every
// side's squared length is strictly less than the sum of the other two
// squared side lengths.
func isAcuteTriangle(a, b, c Coordinates) bool {
	ab2 := distance(a, b) * distance(a, b)
	bc2 := distance(b, c) * distance(b, c)
	ca2 := distance(c, a) * distance(c, a)
	return ab2+bc2 > ca2 && bc2+ca2 > ab2 && ca2+ab2 > bc2
}

// isPointOnCircle reports whether p lies on the boundary of c within the
// decimal precision's tolerance.
func isPointOnCircle(p Coordinates, c Circle, precision int) bool {
	eps := math.Pow(10, -float64(precision))
	return math.Abs(distance(p, c.Center)-c.Radius) < eps
}

// closestPointOnCircle returns the point on the boundary of c nearest p. If p
// coincides with the center, it returns the stable sentinel center+(radius,0)
// rather than failing.
func closestPointOnCircle(c Circle, p Coordinates) Coordinates {
	d := distance(p, c.Center)
	if floats.EqualWithinAbs(d, 0, 1e-12) {
		return Coordinates{X: c.Center.X + c.Radius, Y: c.Center.Y}
	}
	scale := c.Radius / d
	return Coordinates{
		X: c.Center.X + (p.X-c.Center.X)*scale,
		Y: c.Center.Y + (p.Y-c.Center.Y)*scale,
	}
}

// smallestEnclosingCircle computes the minimum-radius disk covering points,
// via Welzl's randomized incremental algorithm. Randomness is drawn from rng
// so that results are deterministic for a given seed.
func smallestEnclosingCircle(points []Coordinates, rng *Stream) Circle {
	shuffled := make([]Coordinates, len(points))
	copy(shuffled, points)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return welzl(shuffled, nil)
}

// welzl is the recursive core of smallestEnclosingCircle. boundary holds up
// to 3 points already known to lie on the resulting circle's boundary.
func welzl(points []Coordinates, boundary []Coordinates) Circle {
	if len(points) == 0 || len(boundary) == 3 {
		return circleFromBoundary(boundary)
	}
	p := points[len(points)-1]
	rest := points[:len(points)-1]
	c := welzl(rest, boundary)
	if distance(p, c.Center) <= c.Radius || isPointOnCircle(p, c, 9) {
		return c
	}
	return welzl(rest, append(append([]Coordinates{}, boundary...), p))
}

// circleFromBoundary handles Welzl's base cases: 0, 1, 2 or 3 boundary
// points.
func circleFromBoundary(boundary []Coordinates) Circle {
	switch len(boundary) {
	case 0:
		return Circle{Center: Coordinates{}, Radius: 0}
	case 1:
		return Circle{Center: boundary[0], Radius: 0}
	case 2:
		return circleFromTwo(boundary[0], boundary[1])
	case 3:
		a, b, c := boundary[0], boundary[1], boundary[2]
		if isAcuteTriangle(a, b, c) {
			if circ, err := circleFromThree(a, b, c); err == nil {
				return circ
			}
		}
		// Right, obtuse or collinear triple: the enclosing circle spans the
		// two farthest-apart points, which subtend the longest side.
		ab := distance(a, b)
		bc := distance(b, c)
		ca := distance(c, a)
		switch {
		case ab >= bc && ab >= ca:
			return circleFromTwo(a, b)
		case bc >= ab && bc >= ca:
			return circleFromTwo(b, c)
		default:
			return circleFromTwo(c, a)
		}
	default:
		panic("lcm: welzl called with more than 3 boundary points")
	}
}

// centroid returns the arithmetic mean of points, used by the Gathering
// algorithm's compute step.
func centroid(points []Coordinates) Coordinates {
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	return Coordinates{X: sx / n, Y: sy / n}
}
