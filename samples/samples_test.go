package samples

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0644)
}

func TestNewCloudGeneratesInUnitCube(t *testing.T) {
	c, err := NewCloud(500, 3, 11)
	if err != nil {
		t.Fatalf("NewCloud failed: %v", err)
	}
	if c.Len() != 500 || c.Dim() != 3 {
		t.Fatalf("unexpected cloud shape: len=%d dim=%d", c.Len(), c.Dim())
	}
	for i, pt := range c.Points() {
		if len(pt) != 3 {
			t.Fatalf("point %d has dim %d", i, len(pt))
		}
		for d, v := range pt {
			if v < 0 || v >= 1 {
				t.Fatalf("point %d coord %d out of [0,1): %v", i, d, v)
			}
		}
	}
}

func TestNewCloudDeterministic(t *testing.T) {
	a, err := NewCloud(20, 2, 42)
	if err != nil {
		t.Fatalf("NewCloud failed: %v", err)
	}
	b, err := NewCloud(20, 2, 42)
	if err != nil {
		t.Fatalf("NewCloud failed: %v", err)
	}
	for i := range a.Points() {
		for d := range a.Points()[i] {
			if a.Points()[i][d] != b.Points()[i][d] {
				t.Fatalf("clouds differ at point %d coord %d", i, d)
			}
		}
	}
}

func TestNewCloudValidation(t *testing.T) {
	if _, err := NewCloud(0, 2, 1); err == nil {
		t.Errorf("expected error for zero size")
	}
	if _, err := NewCloud(10, 0, 1); err == nil {
		t.Errorf("expected error for zero dim")
	}
}

func TestCloudPointOutOfRange(t *testing.T) {
	c, err := NewCloud(5, 2, 1)
	if err != nil {
		t.Fatalf("NewCloud failed: %v", err)
	}
	if _, err := c.Point(5); err == nil {
		t.Errorf("expected error for out-of-range index")
	}
	if _, err := c.Point(-1); err == nil {
		t.Errorf("expected error for negative index")
	}
}

func TestShuffleDeterministic(t *testing.T) {
	a, _ := NewCloud(30, 2, 3)
	b, _ := NewCloud(30, 2, 3)
	a.Shuffle(9)
	b.Shuffle(9)
	for i := range a.Points() {
		if a.Points()[i][0] != b.Points()[i][0] {
			t.Fatalf("shuffles diverged at point %d", i)
		}
	}
}

func TestSaveCSVAndCloudDataset(t *testing.T) {
	tmp := t.TempDir()

	c1, err := NewCloud(4, 2, 7)
	if err != nil {
		t.Fatalf("NewCloud failed: %v", err)
	}
	if err := c1.SaveCSV(filepath.Join(tmp, "cloud1.csv")); err != nil {
		t.Fatalf("SaveCSV failed: %v", err)
	}
	c2, err := NewCloud(3, 2, 8)
	if err != nil {
		t.Fatalf("NewCloud failed: %v", err)
	}
	if err := c2.SaveCSV(filepath.Join(tmp, "cloud2.csv")); err != nil {
		t.Fatalf("SaveCSV failed: %v", err)
	}

	ds, err := NewCloudDataset(filepath.Join(tmp, "cloud*.csv"))
	if err != nil {
		t.Fatalf("NewCloudDataset failed: %v", err)
	}
	if ds.Len() != 7 {
		t.Fatalf("expected 7 points, got %d", ds.Len())
	}
	if ds.Dim() != 2 {
		t.Fatalf("expected dim 2, got %d", ds.Dim())
	}

	// First point of the first file round-trips.
	got, err := ds.Example(0)
	if err != nil {
		t.Fatalf("Example(0) failed: %v", err)
	}
	want := c1.Points()[0]
	for d := range want {
		if got[d] != want[d] {
			t.Fatalf("point 0 coord %d: got %v, want %v", d, got[d], want[d])
		}
	}

	// Global index 4 is the first point of the second file.
	got, err = ds.Example(4)
	if err != nil {
		t.Fatalf("Example(4) failed: %v", err)
	}
	want = c2.Points()[0]
	for d := range want {
		if got[d] != want[d] {
			t.Fatalf("point 4 coord %d: got %v, want %v", d, got[d], want[d])
		}
	}

	// Batch across both files.
	batch, err := ds.Batch([]int{0, 3, 4, 6})
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if len(batch) != 4 {
		t.Fatalf("expected 4 points, got %d", len(batch))
	}
	if batch[1][0] != c1.Points()[3][0] || batch[3][0] != c2.Points()[2][0] {
		t.Fatalf("batch points misaligned")
	}

	if _, err := ds.Example(7); err == nil {
		t.Errorf("expected error for out-of-range index")
	}
}

func TestCloudDatasetNoFiles(t *testing.T) {
	tmp := t.TempDir()
	if _, err := NewCloudDataset(filepath.Join(tmp, "*.csv")); err == nil {
		t.Fatalf("expected error when no files match")
	}
}

func TestCloudDatasetBadHeader(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "bad.csv")
	if err := writeFile(path, "a,b\n0.1,0.2\n"); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if _, err := NewCloudDataset(filepath.Join(tmp, "*.csv")); err == nil {
		t.Fatalf("expected error for unexpected header columns")
	}
}

func TestMakeBatchFlatAndTensor(t *testing.T) {
	points := [][]float64{
		{0.1, 0.2, 0.3},
		{0.4, 0.5, 0.6},
	}
	flat, err := MakeBatchFlat(points)
	if err != nil {
		t.Fatalf("MakeBatchFlat failed: %v", err)
	}
	if flat.Batch != 2 || flat.Dim != 3 {
		t.Fatalf("unexpected flat dims: %+v", flat)
	}
	if len(flat.Buf) != 6 {
		t.Fatalf("flat buffer length mismatch: %d", len(flat.Buf))
	}
	if flat.Buf[4] != float32(0.5) {
		t.Fatalf("flat buffer misordered: %v", flat.Buf)
	}

	// ToGomlxTensor should return a non-nil tensor; internals are not
	// inspected here.
	tensor, err := flat.ToGomlxTensor()
	if err != nil {
		t.Fatalf("ToGomlxTensor failed: %v", err)
	}
	if tensor == nil {
		t.Fatalf("ToGomlxTensor returned nil tensor")
	}
}

func TestMakeBatchFlatInconsistentDims(t *testing.T) {
	points := [][]float64{
		{0.1, 0.2},
		{0.3},
	}
	if _, err := MakeBatchFlat(points); err == nil {
		t.Fatalf("expected error for inconsistent dimensions")
	}
}

func TestMakeBatchFlatEmpty(t *testing.T) {
	flat, err := MakeBatchFlat(nil)
	if err != nil {
		t.Fatalf("MakeBatchFlat failed on empty input: %v", err)
	}
	if flat.Batch != 0 {
		t.Fatalf("expected empty batch, got %d", flat.Batch)
	}
	if _, err := flat.ToGomlxTensor(); err != nil {
		t.Fatalf("ToGomlxTensor failed on empty batch: %v", err)
	}
}
