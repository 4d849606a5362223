// Command circlefit generates a noisy point cloud around a circle, fits a
// circle to it by least squares (algebraic Kåsa fit followed by geometric
// Nelder-Mead refinement), and writes a scatter plot of the points with the
// fitted circle overlaid.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/anhnguyendepocen/website-projects/circlefit"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func main() {
	cx := flag.Float64("cx", 0.0, "true circle center x")
	cy := flag.Float64("cy", 0.0, "true circle center y")
	r := flag.Float64("r", 1.0, "true circle radius")
	n := flag.Int("n", 200, "number of noisy points to generate")
	noise := flag.Float64("noise", 0.05, "Gaussian noise sigma applied to each coordinate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	outDir := flag.String("out", "plots", "output directory for generated plots")
	outCSV := flag.String("out-csv", "", "if set, write generated points CSV to this path")

	flag.Parse()

	truth := circlefit.Circle{X: *cx, Y: *cy, R: *r}
	rng := rand.New(rand.NewSource(*seed))

	points, err := circlefit.Generate(truth, *n, *noise, rng)
	if err != nil {
		log.Fatalf("failed to generate points: %v", err)
	}
	log.Printf("[Gen] %d points around (%.3f, %.3f) r=%.3f sigma=%.3f seed=%d",
		*n, truth.X, truth.Y, truth.R, *noise, *seed)

	algebraic, err := circlefit.Fit(points)
	if err != nil {
		log.Fatalf("algebraic fit failed: %v", err)
	}
	log.Printf("[Fit] algebraic: center=(%.4f, %.4f) r=%.4f rmse=%.5f",
		algebraic.X, algebraic.Y, algebraic.R, circlefit.RMSE(points, algebraic))

	refined, err := circlefit.Refine(points, algebraic)
	if err != nil {
		log.Fatalf("refinement failed: %v", err)
	}
	log.Printf("[Fit] refined:   center=(%.4f, %.4f) r=%.4f rmse=%.5f",
		refined.X, refined.Y, refined.R, circlefit.RMSE(points, refined))

	if *outCSV != "" {
		if err := writePointsCSV(*outCSV, points); err != nil {
			log.Fatalf("failed to write points CSV: %v", err)
		}
		log.Printf("Points CSV written to %s", *outCSV)
	}

	if err := plotFit(*outDir, points, refined); err != nil {
		log.Fatalf("failed to generate plot: %v", err)
	}
	log.Printf("Fit plot written to %s", filepath.Join(*outDir, "circle_fit.png"))
}

// writePointsCSV writes the generated points with an x,y header.
func writePointsCSV(path string, points []circlefit.Point) error {
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
	if err := w.Write([]string{"x", "y"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, pt := range points {
		row := []string{
			strconv.FormatFloat(pt.X, 'g', -1, 64),
			strconv.FormatFloat(pt.Y, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	return w.Error()
}

// plotFit writes a PNG with the noisy points (grey) and the fitted circle
// traced as a line (red).
func plotFit(outDir string, points []circlefit.Point, fit circlefit.Circle) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Least-squares circle fit: center=(%.3f, %.3f) r=%.3f", fit.X, fit.Y, fit.R)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 120, G: 120, B: 120, A: 180}
	scatter.GlyphStyle.Radius = vg.Points(1.8)
	p.Add(scatter)
	p.Legend.Add("points", scatter)

	const steps = 256
	circle := make(plotter.XYs, steps+1)
	for i := 0; i <= steps; i++ {
		theta := 2 * math.Pi * float64(i) / steps
		circle[i] = plotter.XY{
			X: fit.X + fit.R*math.Cos(theta),
			Y: fit.Y + fit.R*math.Sin(theta),
		}
	}
	line, err := plotter.NewLine(circle)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("fit", line)

	p.Add(plotter.NewGrid())

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return err
		}
	}
	return p.Save(6*vg.Inch, 6*vg.Inch, filepath.Join(outDir, "circle_fit.png"))
}
