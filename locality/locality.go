package locality

// Interval is a closed window [Lo, Hi] inside the unit interval. Windows
// produced by Window always have width equal to the locality fraction they
// were built with, even when clamped against 0 or 1.
type Interval struct {
	Lo float64
	Hi float64
}

// Width returns Hi - Lo.
func (iv Interval) Width() float64 {
	return iv.Hi - iv.Lo
}

// Contains reports whether x lies strictly inside the interval. The
// endpoints themselves are excluded.
func (iv Interval) Contains(x float64) bool {
	return x > iv.Lo && x < iv.Hi
}

// Window returns the width-lambda interval around the query coordinate z,
// clamped so it never leaves [0,1]:
//   - z below lambda/2 snaps to [0, lambda]
//   - z above 1-lambda/2 snaps to [1-lambda, 1]
//   - otherwise the window is centered on z.
//
// z is assumed to be in [0,1] and lambda in (0,1); callers that accept
// untrusted parameters validate them first (see NewSim).
func Window(z, lambda float64) Interval {
	half := lambda / 2.0
	switch {
	case z < half:
		return Interval{Lo: 0, Hi: lambda}
	case z > 1.0-half:
		return Interval{Lo: 1.0 - lambda, Hi: 1.0}
	default:
		return Interval{Lo: z - half, Hi: z + half}
	}
}

// Fraction returns the fraction of 1D samples that fall strictly inside the
// width-lambda window around z. An empty sample slice yields 0.
func Fraction(samples []float64, z, lambda float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	iv := Window(z, lambda)
	count := 0
	for _, x := range samples {
		if iv.Contains(x) {
			count++
		}
	}
	return float64(count) / float64(len(samples))
}

// FractionAround generalizes Fraction to p dimensions: a sample point matches
// only if every coordinate lies strictly inside the per-axis window built
// from the corresponding query coordinate. Points shorter than the query are
// skipped; an empty point set yields 0.
func FractionAround(points [][]float64, query []float64, lambda float64) float64 {
	if len(points) == 0 {
		return 0
	}
	windows := make([]Interval, len(query))
	for d, z := range query {
		windows[d] = Window(z, lambda)
	}
	count := 0
	for _, pt := range points {
		if len(pt) < len(query) {
			continue
		}
		inside := true
		for d := range windows {
			if !windows[d].Contains(pt[d]) {
				inside = false
				break
			}
		}
		if inside {
			count++
		}
	}
	return float64(count) / float64(len(points))
}
