// README: Straight-line route interpolation and the animation cursor.
package location

import "roadie/internal/types"

// Route is a piecewise-linear path. It is built once and never mutated.
type Route []types.Point

// Interpolate returns n+1 evenly spaced points from a to b inclusive.
// n below 1 is treated as 1.
func Interpolate(a, b types.Point, n int) []types.Point {
	if n < 1 {
		n = 1
	}
	out := make([]types.Point, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		out[i] = types.Point{
			Lat: a.Lat + (b.Lat-a.Lat)*t,
			Lng: a.Lng + (b.Lng-a.Lng)*t,
		}
	}
	out[n] = b
	return out
}

// BuildRoute concatenates the legs between consecutive waypoints, each leg
// interpolated with stepsPerLeg steps. Joint waypoints appear once.
func BuildRoute(stepsPerLeg int, waypoints ...types.Point) Route {
	switch len(waypoints) {
	case 0:
		return nil
	case 1:
		return Route{waypoints[0]}
	}
	var route Route
	for i := 0; i+1 < len(waypoints); i++ {
		leg := Interpolate(waypoints[i], waypoints[i+1], stepsPerLeg)
		if i > 0 {
			leg = leg[1:]
		}
		route = append(route, leg...)
	}
	return route
}

// Step advances the cursor. It returns index+1 while that is still inside the
// route, otherwise it returns index unchanged with done set.
func Step(route Route, index int) (next int, done bool) {
	if index+1 < len(route) {
		return index + 1, false
	}
	return index, true
}

// Last returns the final point of the route.
func (r Route) Last() (types.Point, bool) {
	if len(r) == 0 {
		return types.Point{}, false
	}
	return r[len(r)-1], true
}

// LengthKm sums the haversine distance of every segment.
func (r Route) LengthKm() float64 {
	var total float64
	for i := 1; i < len(r); i++ {
		total += Haversine(r[i-1], r[i])
	}
	return total
}
