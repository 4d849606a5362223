package samples

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CloudDataset lazily loads point clouds from CSV files matching a glob
// pattern. Each file is expected to carry a header of coordinate columns
// (x0..x<p-1>) and one point per row; all files must share the same
// dimensionality.
type CloudDataset struct {
	// Pattern used to find CSV files (e.g., "output/cloud*.csv").
	Pattern string

	csvPaths []string
	dim      int

	// Row counts per file and cumulative counts for global index mapping.
	rowCounts map[int]int
	cumCounts []int

	totalExamples int
}

// NewCloudDataset creates a lazy-loading dataset over all CSV files matching
// the pattern.
func NewCloudDataset(pattern string) (*CloudDataset, error) {
	csvPaths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
	}
	if len(csvPaths) == 0 {
		return nil, fmt.Errorf("no CSV files found matching pattern: %s", pattern)
	}

	ds := &CloudDataset{
		Pattern:   pattern,
		csvPaths:  csvPaths,
		rowCounts: make(map[int]int),
	}

	if err := ds.initializeColumns(); err != nil {
		return nil, err
	}
	if err := ds.buildIndex(); err != nil {
		return nil, err
	}

	return ds, nil
}

// initializeColumns reads the first CSV header to determine dimensionality.
func (d *CloudDataset) initializeColumns() error {
	file, err := os.Open(d.csvPaths[0])
	if err != nil {
		return fmt.Errorf("failed to open first CSV %s: %w", d.csvPaths[0], err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	if len(header) == 0 {
		return fmt.Errorf("empty CSV header in %s", d.csvPaths[0])
	}
	for i, col := range header {
		want := "x" + strconv.Itoa(i)
		if strings.TrimSpace(strings.ToLower(col)) != want {
			return fmt.Errorf("unexpected column %d: got %q, want %q", i, col, want)
		}
	}
	d.dim = len(header)

	return nil
}

// buildIndex counts rows in all files and builds cumulative counts.
func (d *CloudDataset) buildIndex() error {
	d.cumCounts = make([]int, len(d.csvPaths)+1)

	for i, path := range d.csvPaths {
		count, err := countCSVRows(path)
		if err != nil {
			return fmt.Errorf("failed to count rows in %s: %w", path, err)
		}
		d.rowCounts[i] = count
		d.cumCounts[i+1] = d.cumCounts[i] + count
	}

	d.totalExamples = d.cumCounts[len(d.csvPaths)]
	return nil
}

// Dim returns the dimensionality discovered from the header.
func (d *CloudDataset) Dim() int { return d.dim }

// Len returns the total number of points across all files.
func (d *CloudDataset) Len() int { return d.totalExamples }

// Example reads a single point by global index.
func (d *CloudDataset) Example(idx int) ([]float64, error) {
	if idx < 0 || idx >= d.totalExamples {
		return nil, fmt.Errorf("index %d out of range [0, %d)", idx, d.totalExamples)
	}
	fileIdx, localIdx := d.mapGlobalIndex(idx)
	return d.readExample(fileIdx, localIdx)
}

// mapGlobalIndex maps a global index to (file index, row index within file).
func (d *CloudDataset) mapGlobalIndex(globalIdx int) (fileIdx, localIdx int) {
	for i := range d.csvPaths {
		if globalIdx < d.cumCounts[i+1] {
			return i, globalIdx - d.cumCounts[i]
		}
	}
	return len(d.csvPaths) - 1, d.rowCounts[len(d.csvPaths)-1] - 1
}

// readExample reads a specific row from a file.
func (d *CloudDataset) readExample(fileIdx, rowIdx int) ([]float64, error) {
	file, err := os.Open(d.csvPaths[fileIdx])
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Skip header.
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for range rowIdx {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("failed to skip to row %d: %w", rowIdx, err)
		}
	}

	record, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read row %d: %w", rowIdx, err)
	}
	return parsePoint(record, d.dim)
}

// Batch reads multiple points by their global indices, grouping reads by
// file so each file is scanned at most once.
func (d *CloudDataset) Batch(indices []int) ([][]float64, error) {
	points := make([][]float64, len(indices))

	fileGroups := make(map[int][]struct{ globalIdx, batchPos int })
	for batchPos, idx := range indices {
		if idx < 0 || idx >= d.totalExamples {
			return nil, fmt.Errorf("index %d out of range [0, %d)", idx, d.totalExamples)
		}
		fileIdx, _ := d.mapGlobalIndex(idx)
		fileGroups[fileIdx] = append(fileGroups[fileIdx], struct{ globalIdx, batchPos int }{idx, batchPos})
	}

	for fileIdx, group := range fileGroups {
		if err := d.readBatchFromFile(fileIdx, group, points); err != nil {
			return nil, err
		}
	}

	return points, nil
}

func (d *CloudDataset) readBatchFromFile(fileIdx int, indices []struct{ globalIdx, batchPos int }, points [][]float64) error {
	file, err := os.Open(d.csvPaths[fileIdx])
	if err != nil {
		return fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	localMap := make(map[int]int)
	for _, item := range indices {
		_, localIdx := d.mapGlobalIndex(item.globalIdx)
		localMap[localIdx] = item.batchPos
	}

	rowIdx := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read row: %w", err)
		}
		if batchPos, ok := localMap[rowIdx]; ok {
			pt, err := parsePoint(record, d.dim)
			if err != nil {
				return fmt.Errorf("row %d: %w", rowIdx, err)
			}
			points[batchPos] = pt
		}
		rowIdx++
	}

	return nil
}

func parsePoint(record []string, dim int) ([]float64, error) {
	if len(record) < dim {
		return nil, fmt.Errorf("row has %d columns, expected %d", len(record), dim)
	}
	pt := make([]float64, dim)
	for d := 0; d < dim; d++ {
		s := strings.TrimSpace(record[d])
		if s == "" {
			return nil, fmt.Errorf("empty coordinate in column %d", d)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse coordinate %d: %w", d, err)
		}
		pt[d] = v
	}
	return pt, nil
}

// countCSVRows counts the number of data rows in a CSV file (excluding header).
func countCSVRows(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	if _, err := reader.Read(); err != nil {
		return 0, err
	}

	count := 0
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		count++
	}

	return count, nil
}
