package scoring

import (
	"context"
	"fmt"
	"math"

	domsvc "LoanPredictor/internal/domain/service"
)

// LogisticClassifier is a deterministic alternative to the forest: plain
// batch gradient descent from a zero start, no randomness involved.
type LogisticClassifier struct {
	learningRate float64
	iterations   int
	l2           float64
	weights      []float64
	bias         float64
	fitted       bool
}

func NewLogisticClassifier() *LogisticClassifier {
	return &LogisticClassifier{learningRate: 0.1, iterations: 2000, l2: 0.01}
}

func (c *LogisticClassifier) Name() string { return ClassifierLogistic }

func (c *LogisticClassifier) Fit(ctx context.Context, X [][]float64, y []int) error {
	if err := checkDataset(X, y); err != nil {
		return err
	}
	p := len(X[0])
	w := make([]float64, p)
	var b float64
	n := float64(len(X))
	grad := make([]float64, p)

	for it := 0; it < c.iterations; it++ {
		if it%100 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for j := range grad {
			grad[j] = 0
		}
		var gb float64
		for i, row := range X {
			diff := sigmoid(dot(w, row)+b) - float64(y[i])
			for j, v := range row {
				grad[j] += diff * v
			}
			gb += diff
		}
		for j := range w {
			w[j] -= c.learningRate * (grad[j]/n + c.l2*w[j])
		}
		b -= c.learningRate * gb / n
	}
	c.weights, c.bias, c.fitted = w, b, true
	return nil
}

func (c *LogisticClassifier) PredictProbability(_ context.Context, x []float64) (float64, error) {
	if !c.fitted {
		return 0, fmt.Errorf("logistic: not fitted")
	}
	if len(x) != len(c.weights) {
		return 0, fmt.Errorf("logistic: want %d features got %d", len(c.weights), len(x))
	}
	return sigmoid(dot(c.weights, x) + c.bias), nil
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

var _ domsvc.Classifier = (*LogisticClassifier)(nil)
