// Command dimsim runs the curse-of-dimensionality Monte Carlo experiment:
// it estimates what fraction of uniform sample points fall inside the local
// width-lambda hypercube window of a query point, repeats over N trials, and
// writes the fraction distribution as a histogram PNG plus a CSV. With
// -sweep-dim it instead sweeps the dimension and plots observed mean
// fractions against the theoretical lambda^p curve.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/anhnguyendepocen/website-projects/locality"
	"github.com/anhnguyendepocen/website-projects/samples"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func main() {
	// CLI flags
	lambda := flag.Float64("lambda", 0.1, "locality window fraction in (0,1)")
	dim := flag.Int("dim", 1, "number of dimensions p")
	sampleN := flag.Int("samples", 1000, "reference sample size n0 per trial")
	queryN := flag.Int("queries", 30, "number of query points n1 averaged per trial")
	trials := flag.Int("trials", 50, "number of Monte Carlo trials N")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	workers := flag.Int("workers", 0, "trial worker count (0 = NumCPU)")
	configPath := flag.String("config", "", "path to JSON sim configuration (optional; values in the file override flags)")
	outDir := flag.String("out", "plots", "output directory for generated plots")
	outCSV := flag.String("out-csv", "", "if set, write per-trial fractions CSV to this path")
	cachePath := flag.String("cache", "", "path to gob file for saving/loading trial results (optional)")
	cacheForce := flag.Bool("cache-force", false, "if true, force recompute and overwrite existing cache")
	sweepDim := flag.Int("sweep-dim", 0, "if > 0, sweep dimensions 1..sweep-dim and plot mean fraction vs dimension")
	dumpSamples := flag.String("dump-samples", "", "if set, write one sample cloud CSV to this path")
	samplesPattern := flag.String("samples-pattern", "", "if set, estimate the fraction against on-disk cloud CSVs matching this glob instead of fresh samples")

	flag.Parse()

	sim, err := locality.NewSim(*lambda, *dim, *sampleN, *queryN, *trials)
	if err != nil {
		log.Fatalf("invalid simulation parameters: %v", err)
	}
	sim.SetWorkers(*workers)

	if *configPath != "" {
		if err := sim.LoadConfig(*configPath); err != nil {
			log.Fatalf("failed to load config %s: %v", *configPath, err)
		}
		log.Printf("Loaded sim config from %s", *configPath)
	}

	if *dumpSamples != "" {
		cloud, err := samples.NewCloud(sim.SampleN, sim.Dim, *seed)
		if err != nil {
			log.Fatalf("failed to generate sample cloud: %v", err)
		}
		if err := cloud.SaveCSV(*dumpSamples); err != nil {
			log.Fatalf("failed to write sample cloud: %v", err)
		}
		log.Printf("Sample cloud written to %s", *dumpSamples)
	}

	if *samplesPattern != "" {
		if err := runAgainstDataset(sim, *samplesPattern, *seed); err != nil {
			log.Fatalf("dataset estimate failed: %v", err)
		}
		return
	}

	if *sweepDim > 0 {
		if err := runSweep(sim, *sweepDim, *seed, *outDir); err != nil {
			log.Fatalf("sweep failed: %v", err)
		}
		return
	}

	res, err := runWithCache(sim, *seed, *cachePath, *cacheForce)
	if err != nil {
		log.Fatalf("simulation failed: %v", err)
	}

	summary := res.Summarize()
	log.Printf("[Sim] lambda=%v dim=%d n0=%d n1=%d trials=%d seed=%d",
		sim.Lambda, sim.Dim, sim.SampleN, sim.QueryN, sim.Trials, *seed)
	log.Printf("[Sim] mean=%.6f stddev=%.6f p05=%.6f p95=%.6f theoretical=%.6f",
		summary.Mean, summary.StdDev, summary.P05, summary.P95, sim.Theoretical())

	if *outCSV != "" {
		if err := res.WriteCSV(*outCSV); err != nil {
			log.Fatalf("failed to write CSV: %v", err)
		}
		log.Printf("Fractions CSV written to %s", *outCSV)
	}

	if err := plotHistogram(*outDir, res); err != nil {
		log.Fatalf("failed to generate histogram: %v", err)
	}
	log.Printf("Histogram written to %s", filepath.Join(*outDir, "fractions_hist.png"))
}

// runWithCache loads cached results when available and valid, otherwise runs
// the simulation and saves the results back to the cache path.
func runWithCache(sim *locality.Sim, seed int64, cachePath string, force bool) (*locality.Results, error) {
	if cachePath != "" && !force {
		if res, err := locality.Load(cachePath, sim, seed); err == nil {
			log.Printf("[Cache] loaded %d trial fractions from %s", len(res.Fractions), cachePath)
			return res, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[Cache] ignoring %s: %v", cachePath, err)
		}
	}

	res, err := sim.Run(seed)
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		if err := res.Save(cachePath); err != nil {
			log.Printf("warning: failed to save cache %s: %v", cachePath, err)
		} else {
			log.Printf("[Cache] saved trial fractions to %s", cachePath)
		}
	}
	return res, nil
}

// runAgainstDataset estimates the local fraction against a persisted sample
// cloud rather than fresh per-trial samples. The cloud fixes n0 and the
// dimensionality; query points are still drawn from the seed.
func runAgainstDataset(sim *locality.Sim, pattern string, seed int64) error {
	ds, err := samples.NewCloudDataset(pattern)
	if err != nil {
		return err
	}
	log.Printf("[Dataset] %d points of dim %d from %s", ds.Len(), ds.Dim(), pattern)

	indices := make([]int, ds.Len())
	for i := range indices {
		indices[i] = i
	}
	points, err := ds.Batch(indices)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(seed))
	query := make([]float64, ds.Dim())
	sum := 0.0
	for q := 0; q < sim.QueryN; q++ {
		for d := range query {
			query[d] = rng.Float64()
		}
		sum += locality.FractionAround(points, query, sim.Lambda)
	}
	mean := sum / float64(sim.QueryN)

	want := 1.0
	for i := 0; i < ds.Dim(); i++ {
		want *= sim.Lambda
	}
	log.Printf("[Dataset] lambda=%v queries=%d mean fraction=%.6f theoretical=%.6f",
		sim.Lambda, sim.QueryN, mean, want)
	return nil
}

// runSweep runs the simulation for dimensions 1..maxDim and plots the
// observed mean fraction against the theoretical lambda^p curve.
func runSweep(sim *locality.Sim, maxDim int, seed int64, outDir string) error {
	observed := make(plotter.XYs, 0, maxDim)
	theoretical := make(plotter.XYs, 0, maxDim)

	for p := 1; p <= maxDim; p++ {
		s := *sim
		s.SetDim(p)
		res, err := s.Run(seed)
		if err != nil {
			return fmt.Errorf("dim %d: %w", p, err)
		}
		mean := res.Summarize().Mean
		want := s.Theoretical()
		log.Printf("[Sweep] dim=%d mean=%.6f theoretical=%.6f", p, mean, want)
		observed = append(observed, plotter.XY{X: float64(p), Y: mean})
		theoretical = append(theoretical, plotter.XY{X: float64(p), Y: want})
	}

	return plotSweep(outDir, sim.Lambda, observed, theoretical)
}

// plotHistogram writes a PNG histogram of the per-trial fractions.
func plotHistogram(outDir string, res *locality.Results) error {
	p := plot.New()
	summary := res.Summarize()
	p.Title.Text = fmt.Sprintf("Fraction of samples in local window (mean %.4f, expected %.4f)",
		summary.Mean, res.Theoretical())
	p.X.Label.Text = "fraction"
	p.Y.Label.Text = "trials"

	h, err := plotter.NewHist(plotter.Values(res.Fractions), 20)
	if err != nil {
		return err
	}
	h.FillColor = color.RGBA{R: 120, G: 120, B: 200, A: 255}
	p.Add(h)

	if err := ensureDir(outDir); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 6*vg.Inch, filepath.Join(outDir, "fractions_hist.png"))
}

// plotSweep writes a PNG of observed mean fraction vs dimension together
// with the theoretical lambda^p curve.
func plotSweep(outDir string, lambda float64, observed, theoretical plotter.XYs) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Local fraction vs dimension (lambda=%v)", lambda)
	p.X.Label.Text = "dimension p"
	p.Y.Label.Text = "mean fraction"

	obs, err := plotter.NewLine(observed)
	if err != nil {
		return err
	}
	obs.Color = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	obs.Width = vg.Points(1.5)
	p.Add(obs)
	p.Legend.Add("observed", obs)

	theory, err := plotter.NewLine(theoretical)
	if err != nil {
		return err
	}
	theory.Color = color.RGBA{R: 20, G: 80, B: 200, A: 255}
	theory.Width = vg.Points(1.0)
	theory.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(theory)
	p.Legend.Add("lambda^p", theory)

	p.Add(plotter.NewGrid())

	if err := ensureDir(outDir); err != nil {
		return err
	}
	outPath := filepath.Join(outDir, "fraction_vs_dimension.png")
	if err := p.Save(8*vg.Inch, 6*vg.Inch, outPath); err != nil {
		return err
	}
	log.Printf("Sweep plot written to %s", outPath)
	return nil
}

func ensureDir(path string) error {
	if path == "" {
		return nil
	}
	return os.MkdirAll(path, 0755)
}
