package locality

import (
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"
)

// cacheVersion is incremented when the on-disk results format changes.
const cacheVersion = 1

// Results holds the per-trial fractions of one simulation run together with
// the parameters that produced them.
type Results struct {
	Lambda    float64
	Dim       int
	SampleN   int
	QueryN    int
	Seed      int64
	Fractions []float64
}

// Summary is a distributional digest of the trial fractions.
type Summary struct {
	Mean   float64
	StdDev float64
	P05    float64
	P95    float64
}

// Summarize computes mean, standard deviation and the 5th/95th percentiles of
// the trial fractions.
func (r *Results) Summarize() Summary {
	xs := make([]float64, len(r.Fractions))
	copy(xs, r.Fractions)
	sort.Float64s(xs)
	return Summary{
		Mean:   stat.Mean(xs, nil),
		StdDev: stat.StdDev(xs, nil),
		P05:    stat.Quantile(0.05, stat.Empirical, xs, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, xs, nil),
	}
}

// Theoretical returns lambda^dim for the parameters the results were run with.
func (r *Results) Theoretical() float64 {
	v := 1.0
	for i := 0; i < r.Dim; i++ {
		v *= r.Lambda
	}
	return v
}

// cacheFormat is the on-disk representation of a results cache. It includes
// the run parameters so a stale cache is never reused for different settings.
type cacheFormat struct {
	Version   int
	Lambda    float64
	Dim       int
	SampleN   int
	QueryN    int
	Seed      int64
	CreatedAt int64
	Fractions []float64
}

// Save writes the results to path using encoding/gob. The write is atomic:
// encode into a temp file in the target directory, then rename.
func (r *Results) Save(path string) error {
	if path == "" {
		return fmt.Errorf("empty cache path")
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		_ = os.Remove(tmpName)
	}()

	enc := gob.NewEncoder(tmpFile)
	pc := cacheFormat{
		Version:   cacheVersion,
		Lambda:    r.Lambda,
		Dim:       r.Dim,
		SampleN:   r.SampleN,
		QueryN:    r.QueryN,
		Seed:      r.Seed,
		CreatedAt: time.Now().Unix(),
		Fractions: r.Fractions,
	}
	if err := enc.Encode(&pc); err != nil {
		return fmt.Errorf("encode cache to temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp cache to target: %w", err)
	}
	return nil
}

// Load reads cached results from disk for the given Sim. It validates the
// format version and every run parameter, so results computed with different
// settings are rejected rather than silently reused.
func Load(path string, s *Sim, seed int64) (*Results, error) {
	if path == "" {
		return nil, fmt.Errorf("empty cache path")
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cache file %s: %w", path, err)
	}
	defer fh.Close()

	dec := gob.NewDecoder(fh)
	var pc cacheFormat
	if err := dec.Decode(&pc); err != nil {
		return nil, fmt.Errorf("decode cache %s: %w", path, err)
	}
	if pc.Version != cacheVersion {
		return nil, fmt.Errorf("cache version mismatch: cache=%d expected=%d", pc.Version, cacheVersion)
	}
	if pc.Lambda != s.Lambda || pc.Dim != s.Dim || pc.SampleN != s.SampleN || pc.QueryN != s.QueryN {
		return nil, fmt.Errorf("cache parameter mismatch: cache=(lambda=%v dim=%d n0=%d n1=%d) expected=(lambda=%v dim=%d n0=%d n1=%d)",
			pc.Lambda, pc.Dim, pc.SampleN, pc.QueryN, s.Lambda, s.Dim, s.SampleN, s.QueryN)
	}
	if pc.Seed != seed {
		return nil, fmt.Errorf("cache seed mismatch: cache=%d expected=%d", pc.Seed, seed)
	}
	if len(pc.Fractions) != s.Trials {
		return nil, fmt.Errorf("cache trial count mismatch: cache=%d expected=%d", len(pc.Fractions), s.Trials)
	}

	return &Results{
		Lambda:    pc.Lambda,
		Dim:       pc.Dim,
		SampleN:   pc.SampleN,
		QueryN:    pc.QueryN,
		Seed:      pc.Seed,
		Fractions: pc.Fractions,
	}, nil
}

// WriteCSV writes one fraction per row with a trial index column.
func (r *Results) WriteCSV(path string) error {
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
	if err := w.Write([]string{"trial", "fraction"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, frac := range r.Fractions {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(frac, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	return w.Error()
}
