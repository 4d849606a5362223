package locality

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"sync"
)

// Sim runs the curse-of-dimensionality Monte Carlo experiment: for each
// trial it draws a fresh uniform sample cloud in [0,1]^Dim plus a fresh set
// of query points, estimates the fraction of samples inside the local
// hypercube window of each query, and averages over the queries. Run returns
// the per-trial fractions for distributional analysis.
type Sim struct {
	// Lambda is the locality window fraction in (0,1).
	Lambda float64

	// Dim is the number of dimensions p (>= 1).
	Dim int

	// SampleN is the reference sample size n0 drawn per trial.
	SampleN int

	// QueryN is the number of query points n1 averaged per trial.
	QueryN int

	// Trials is the number of independent Monte Carlo trials N.
	Trials int

	// Workers bounds the trial worker pool. Zero means runtime.NumCPU().
	Workers int
}

// NewSim creates a Sim and validates its parameters. The original notebook
// treated malformed parameters as undefined behavior; here they are rejected
// up front.
func NewSim(lambda float64, dim, sampleN, queryN, trials int) (*Sim, error) {
	s := &Sim{
		Lambda:  lambda,
		Dim:     dim,
		SampleN: sampleN,
		QueryN:  queryN,
		Trials:  trials,
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sim) validate() error {
	if s == nil {
		return errors.New("sim is nil")
	}
	if !(s.Lambda > 0 && s.Lambda < 1) {
		return fmt.Errorf("lambda must be in (0,1), got %v", s.Lambda)
	}
	if s.Dim < 1 {
		return fmt.Errorf("dim must be >= 1, got %d", s.Dim)
	}
	if s.SampleN < 1 {
		return fmt.Errorf("sample size must be >= 1, got %d", s.SampleN)
	}
	if s.QueryN < 1 {
		return fmt.Errorf("query size must be >= 1, got %d", s.QueryN)
	}
	if s.Trials < 1 {
		return fmt.Errorf("trials must be >= 1, got %d", s.Trials)
	}
	return nil
}

// Setter helpers for CLI wiring code that adjusts a Sim after creation.
func (s *Sim) SetLambda(v float64) {
	if s == nil {
		return
	}
	s.Lambda = v
}

func (s *Sim) SetDim(v int) {
	if s == nil {
		return
	}
	s.Dim = v
}

func (s *Sim) SetWorkers(v int) {
	if s == nil {
		return
	}
	s.Workers = v
}

// LoadConfig reads a JSON configuration file and applies any provided fields
// to the Sim. The format is a flat object; absent fields leave the current
// value untouched:
//
//	{
//	  "lambda": 0.1,
//	  "dim": 3,
//	  "samples": 1000,
//	  "queries": 30,
//	  "trials": 50,
//	  "workers": 0
//	}
//
// The merged Sim is re-validated before LoadConfig returns.
func (s *Sim) LoadConfig(path string) error {
	if s == nil {
		return fmt.Errorf("sim is nil")
	}
	if path == "" {
		return fmt.Errorf("empty path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read sim config: %w", err)
	}

	var raw struct {
		Lambda  *float64 `json:"lambda"`
		Dim     *int     `json:"dim"`
		Samples *int     `json:"samples"`
		Queries *int     `json:"queries"`
		Trials  *int     `json:"trials"`
		Workers *int     `json:"workers"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal sim config: %w", err)
	}

	if raw.Lambda != nil {
		s.Lambda = *raw.Lambda
	}
	if raw.Dim != nil {
		s.Dim = *raw.Dim
	}
	if raw.Samples != nil {
		s.SampleN = *raw.Samples
	}
	if raw.Queries != nil {
		s.QueryN = *raw.Queries
	}
	if raw.Trials != nil {
		s.Trials = *raw.Trials
	}
	if raw.Workers != nil {
		s.Workers = *raw.Workers
	}

	return s.validate()
}

// Theoretical returns the expected fraction lambda^dim: the volume of the
// local hypercube relative to the unit cube.
func (s *Sim) Theoretical() float64 {
	v := 1.0
	for i := 0; i < s.Dim; i++ {
		v *= s.Lambda
	}
	return v
}

// Run executes Trials independent trials and returns their fractions. The
// top-level seed drives a serial RNG that pre-draws one seed per trial, so a
// given seed produces identical results regardless of worker count.
func (s *Sim) Run(seed int64) (*Results, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	seeds := make([]int64, s.Trials)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	fractions := make([]float64, s.Trials)

	workerCount := s.Workers
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if workerCount > s.Trials {
		workerCount = s.Trials
	}

	jobs := make(chan int, s.Trials)
	var wg sync.WaitGroup
	wg.Add(workerCount)

	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for trial := range jobs {
				fractions[trial] = s.runTrial(rand.New(rand.NewSource(seeds[trial])))
			}
		}()
	}

	for i := 0; i < s.Trials; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return &Results{
		Lambda:    s.Lambda,
		Dim:       s.Dim,
		SampleN:   s.SampleN,
		QueryN:    s.QueryN,
		Seed:      seed,
		Fractions: fractions,
	}, nil
}

// runTrial draws one fresh sample cloud plus query set and averages the
// per-query fractions.
func (s *Sim) runTrial(rng *rand.Rand) float64 {
	points := make([][]float64, s.SampleN)
	for i := range points {
		pt := make([]float64, s.Dim)
		for d := range pt {
			pt[d] = rng.Float64()
		}
		points[i] = pt
	}

	query := make([]float64, s.Dim)
	sum := 0.0
	for q := 0; q < s.QueryN; q++ {
		for d := range query {
			query[d] = rng.Float64()
		}
		sum += FractionAround(points, query, s.Lambda)
	}
	return sum / float64(s.QueryN)
}
