package scoring

import (
	"fmt"
	"math"
)

// StandardScaler performs per-feature z-score normalization using the
// population mean and standard deviation of the fitted data.
type StandardScaler struct {
	mean []float64
	std  []float64
}

// FitScaler learns mean and std for every column of X. Columns with zero
// variance are scaled by 1.
func FitScaler(X [][]float64) (*StandardScaler, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("scaler: no rows")
	}
	p := len(X[0])
	mean := make([]float64, p)
	std := make([]float64, p)
	for _, row := range X {
		if len(row) != p {
			return nil, fmt.Errorf("scaler: ragged row, want %d columns got %d", p, len(row))
		}
		for j, v := range row {
			mean[j] += v
		}
	}
	n := float64(len(X))
	for j := range mean {
		mean[j] /= n
	}
	for _, row := range X {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}
	return &StandardScaler{mean: mean, std: std}, nil
}

// Transform returns a standardized copy of x.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.mean) {
		return nil, fmt.Errorf("scaler: want %d features got %d", len(s.mean), len(x))
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.mean[j]) / s.std[j]
	}
	return out, nil
}

// TransformAll standardizes every row of X.
func (s *StandardScaler) TransformAll(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		z, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = z
	}
	return out, nil
}

func (s *StandardScaler) Mean() []float64 { return append([]float64(nil), s.mean...) }

func (s *StandardScaler) StdDev() []float64 { return append([]float64(nil), s.std...) }
