// Package samples generates uniform sample clouds in the unit hypercube and
// persists them as CSV files. Clouds can be reloaded lazily from disk and
// batched into gomlx tensors for downstream model consumption.
package samples

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

// Cloud is an in-memory set of points in [0,1]^dim.
type Cloud struct {
	dim    int
	points [][]float64
	rand   *rand.Rand
}

// NewCloud draws n uniform points in [0,1]^dim from a seeded RNG.
func NewCloud(n, dim int, seed int64) (*Cloud, error) {
	if n < 1 {
		return nil, fmt.Errorf("cloud size must be >= 1, got %d", n)
	}
	if dim < 1 {
		return nil, fmt.Errorf("dim must be >= 1, got %d", dim)
	}

	rng := rand.New(rand.NewSource(seed))
	points := make([][]float64, n)
	for i := range points {
		pt := make([]float64, dim)
		for d := range pt {
			pt[d] = rng.Float64()
		}
		points[i] = pt
	}

	return &Cloud{dim: dim, points: points, rand: rng}, nil
}

// Dim returns the dimensionality of the cloud.
func (c *Cloud) Dim() int { return c.dim }

// Len returns the number of points.
func (c *Cloud) Len() int { return len(c.points) }

// Point returns the point at index i.
func (c *Cloud) Point(i int) ([]float64, error) {
	if i < 0 || i >= len(c.points) {
		return nil, fmt.Errorf("index %d out of range [0, %d)", i, len(c.points))
	}
	return c.points[i], nil
}

// Points returns the backing point slice. Callers must not mutate it.
func (c *Cloud) Points() [][]float64 { return c.points }

// Shuffle reorders the points deterministically for the given seed.
func (c *Cloud) Shuffle(seed int64) {
	c.rand.Seed(seed)
	c.rand.Shuffle(len(c.points), func(i, j int) {
		c.points[i], c.points[j] = c.points[j], c.points[i]
	})
}

// SaveCSV writes the cloud with a header row of x0..x<dim-1> coordinates.
func (c *Cloud) SaveCSV(path string) error {
	if path == "" {
		return fmt.Errorf("empty csv path")
	}
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, c.dim)
	for d := range header {
		header[d] = "x" + strconv.Itoa(d)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, c.dim)
	for i, pt := range c.points {
		for d, v := range pt {
			row[d] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	return w.Error()
}
