package circlefit

import (
	"math"
	"math/rand"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// exactPoints places n points evenly on the circle with no noise.
func exactPoints(c Circle, n int) []Point {
	pts := make([]Point, n)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Point{
			X: c.X + c.R*math.Cos(theta),
			Y: c.Y + c.R*math.Sin(theta),
		}
	}
	return pts
}

func TestFitExactCircle(t *testing.T) {
	want := Circle{X: 2.0, Y: -1.0, R: 3.0}
	pts := exactPoints(want, 12)

	got, err := Fit(pts)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	const tol = 1e-9
	if !approxEqual(got.X, want.X, tol) || !approxEqual(got.Y, want.Y, tol) || !approxEqual(got.R, want.R, tol) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestFitTooFewPoints(t *testing.T) {
	if _, err := Fit([]Point{{0, 0}, {1, 1}}); err == nil {
		t.Fatalf("expected error for fewer than 3 points")
	}
}

func TestFitNoisyCircle(t *testing.T) {
	want := Circle{X: -4.0, Y: 7.5, R: 2.0}
	rng := rand.New(rand.NewSource(321))
	pts, err := Generate(want, 400, 0.05, rng)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	got, err := Fit(pts)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	const tol = 0.05
	if !approxEqual(got.X, want.X, tol) || !approxEqual(got.Y, want.Y, tol) || !approxEqual(got.R, want.R, tol) {
		t.Fatalf("fit %+v too far from %+v", got, want)
	}
}

func TestRefineNeverWorsensObjective(t *testing.T) {
	want := Circle{X: 1.0, Y: 1.0, R: 5.0}
	rng := rand.New(rand.NewSource(99))
	pts, err := Generate(want, 150, 0.1, rng)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	start, err := Fit(pts)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	refined, err := Refine(pts, start)
	if err != nil {
		t.Fatalf("Refine failed: %v", err)
	}

	before := Objective(pts, start)
	after := Objective(pts, refined)
	if after > before+1e-12 {
		t.Fatalf("refine worsened objective: %v -> %v", before, after)
	}

	const tol = 0.1
	if !approxEqual(refined.X, want.X, tol) || !approxEqual(refined.Y, want.Y, tol) || !approxEqual(refined.R, want.R, tol) {
		t.Fatalf("refined %+v too far from %+v", refined, want)
	}
}

func TestGenerateValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := Generate(Circle{R: 1}, 2, 0.1, rng); err == nil {
		t.Errorf("expected error for n < 3")
	}
	if _, err := Generate(Circle{R: 0}, 10, 0.1, rng); err == nil {
		t.Errorf("expected error for zero radius")
	}
	if _, err := Generate(Circle{R: 1}, 10, -0.1, rng); err == nil {
		t.Errorf("expected error for negative sigma")
	}
}

func TestGeneratePointsNearCircle(t *testing.T) {
	c := Circle{X: 0, Y: 0, R: 1.0}
	rng := rand.New(rand.NewSource(5))
	pts, err := Generate(c, 200, 0.01, rng)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(pts) != 200 {
		t.Fatalf("expected 200 points, got %d", len(pts))
	}
	for i, p := range pts {
		d := math.Hypot(p.X, p.Y)
		if math.Abs(d-1.0) > 0.1 {
			t.Fatalf("point %d at distance %v, too far from radius 1", i, d)
		}
	}
}

func TestRMSE(t *testing.T) {
	c := Circle{X: 0, Y: 0, R: 1.0}
	pts := exactPoints(c, 8)
	if got := RMSE(pts, c); got > 1e-12 {
		t.Fatalf("expected zero RMSE on exact points, got %v", got)
	}
	if got := RMSE(nil, c); got != 0 {
		t.Fatalf("expected zero RMSE on empty points, got %v", got)
	}
}
