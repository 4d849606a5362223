package samples

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// BatchFlat stores a batch of points in a flat contiguous float32 buffer.
type BatchFlat struct {
	Buf   []float32
	Batch int
	Dim   int
}

// MakeBatchFlat flattens a batch of points into a contiguous buffer. All
// points must share the same dimensionality.
func MakeBatchFlat(points [][]float64) (*BatchFlat, error) {
	if len(points) == 0 {
		return &BatchFlat{}, nil
	}

	dim := len(points[0])
	flat := make([]float32, len(points)*dim)

	for i, pt := range points {
		if len(pt) != dim {
			return nil, fmt.Errorf("inconsistent dimensions at point %d: expected %d, got %d", i, dim, len(pt))
		}
		for d, v := range pt {
			flat[i*dim+d] = float32(v)
		}
	}

	return &BatchFlat{
		Buf:   flat,
		Batch: len(points),
		Dim:   dim,
	}, nil
}

// ToGomlxTensor converts the flat batch to a [batch, dim] gomlx tensor.
func (b *BatchFlat) ToGomlxTensor() (*tensors.Tensor, error) {
	if b.Batch == 0 || b.Dim == 0 {
		empty := make([][]float32, 0)
		return tensors.FromAnyValue(empty), nil
	}
	data := make([][]float32, b.Batch)
	for i := range data {
		data[i] = b.Buf[i*b.Dim : (i+1)*b.Dim]
	}
	return tensors.FromAnyValue(data), nil
}
