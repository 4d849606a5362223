// Package circlefit fits circles to noisy 2D point clouds by least squares.
// The algebraic (Kåsa) fit solves a linear system for a starting estimate and
// a Nelder-Mead refinement minimizes the geometric radial error.
package circlefit

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Point is a 2D point.
type Point struct {
	X float64
	Y float64
}

// Circle is a center and radius.
type Circle struct {
	X float64
	Y float64
	R float64
}

// Generate samples n points on the circle at uniform random angles and
// perturbs each coordinate with Gaussian noise of the given sigma.
func Generate(c Circle, n int, sigma float64, rng *rand.Rand) ([]Point, error) {
	if n < 3 {
		return nil, fmt.Errorf("need at least 3 points, got %d", n)
	}
	if c.R <= 0 {
		return nil, fmt.Errorf("radius must be > 0, got %v", c.R)
	}
	if sigma < 0 {
		return nil, fmt.Errorf("noise sigma must be >= 0, got %v", sigma)
	}

	pts := make([]Point, n)
	for i := range pts {
		theta := rng.Float64() * 2 * math.Pi
		pts[i] = Point{
			X: c.X + c.R*math.Cos(theta) + rng.NormFloat64()*sigma,
			Y: c.Y + c.R*math.Sin(theta) + rng.NormFloat64()*sigma,
		}
	}
	return pts, nil
}

// Fit computes the algebraic (Kåsa) least-squares circle. Writing the circle
// as x^2 + y^2 = 2ax + 2by + c, each point gives one row of the
// overdetermined linear system
//
//	[2x 2y 1] [a b c]^T = x^2 + y^2
//
// which is solved in the least-squares sense. Center is (a,b) and
// r = sqrt(c + a^2 + b^2).
func Fit(points []Point) (Circle, error) {
	n := len(points)
	if n < 3 {
		return Circle{}, fmt.Errorf("need at least 3 points to fit a circle, got %d", n)
	}

	data := make([]float64, 0, n*3)
	rhs := make([]float64, 0, n)
	for _, p := range points {
		data = append(data, 2*p.X, 2*p.Y, 1)
		rhs = append(rhs, p.X*p.X+p.Y*p.Y)
	}

	a := mat.NewDense(n, 3, data)
	b := mat.NewVecDense(n, rhs)

	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return Circle{}, fmt.Errorf("solve circle system: %w", err)
	}

	cx := sol.AtVec(0)
	cy := sol.AtVec(1)
	c := sol.AtVec(2)
	r2 := c + cx*cx + cy*cy
	if r2 <= 0 {
		return Circle{}, errors.New("degenerate point set: non-positive squared radius")
	}

	return Circle{X: cx, Y: cy, R: math.Sqrt(r2)}, nil
}

// Objective is the geometric least-squares cost: the sum over all points of
// the squared difference between the point's distance to the center and the
// radius.
func Objective(points []Point, c Circle) float64 {
	sum := 0.0
	for _, p := range points {
		d := math.Hypot(p.X-c.X, p.Y-c.Y) - c.R
		sum += d * d
	}
	return sum
}

// RMSE returns the root-mean-square radial residual of the fit.
func RMSE(points []Point, c Circle) float64 {
	if len(points) == 0 {
		return 0
	}
	return math.Sqrt(Objective(points, c) / float64(len(points)))
}

// Refine minimizes the geometric objective starting from the given circle
// (typically the Kåsa fit) using Nelder-Mead. The algebraic fit biases the
// radius on noisy data; the geometric minimum does not.
func Refine(points []Point, start Circle) (Circle, error) {
	if len(points) < 3 {
		return Circle{}, fmt.Errorf("need at least 3 points to refine, got %d", len(points))
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return Objective(points, Circle{X: x[0], Y: x[1], R: x[2]})
		},
	}

	init := []float64{start.X, start.Y, start.R}
	result, err := optimize.Minimize(problem, init, nil, &optimize.NelderMead{})
	if err != nil {
		return Circle{}, fmt.Errorf("minimize circle objective: %w", err)
	}

	refined := Circle{X: result.X[0], Y: result.X[1], R: result.X[2]}
	// Nelder-Mead can wander on near-degenerate clouds; never return a worse
	// circle than the starting estimate.
	if Objective(points, refined) > Objective(points, start) {
		return start, nil
	}
	return refined, nil
}
