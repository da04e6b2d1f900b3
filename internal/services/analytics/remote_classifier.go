package analytics

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"LoanPredictor/internal/domain/models"
	domsvc "LoanPredictor/internal/domain/service"
)

// RemoteClassifier delegates fitting and inference to an HTTP model
// service. Inputs are already standardized by the Scorer.
type RemoteClassifier struct {
	base     *HTTPServiceBase
	attempts int
	fitted   atomic.Bool
}

func NewRemoteClassifier(baseURL string, timeout time.Duration, attempts int) *RemoteClassifier {
	return &RemoteClassifier{base: NewHTTPServiceBase(baseURL, timeout), attempts: attempts}
}

type fitRequest struct {
	Features []string    `json:"features"`
	X        [][]float64 `json:"x"`
	Y        []int       `json:"y"`
}

type fitResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type predictRequest struct {
	X []float64 `json:"x"`
}

type predictResponse struct {
	Probability float64 `json:"probability"`
}

func (c *RemoteClassifier) Name() string { return "remote" }

func (c *RemoteClassifier) Fit(ctx context.Context, X [][]float64, y []int) error {
	var resp fitResponse
	req := fitRequest{Features: models.FeatureNames, X: X, Y: y}
	if err := c.base.PostJSONWithRetry(ctx, "/fit", req, &resp, c.attempts); err != nil {
		return fmt.Errorf("remote fit: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("remote fit rejected: %s", resp.Message)
	}
	c.fitted.Store(true)
	return nil
}

func (c *RemoteClassifier) PredictProbability(ctx context.Context, x []float64) (float64, error) {
	if !c.fitted.Load() {
		return 0, models.ErrModelNotReady
	}
	var resp predictResponse
	if err := c.base.PostJSONWithRetry(ctx, "/predict_proba", predictRequest{X: x}, &resp, c.attempts); err != nil {
		return 0, fmt.Errorf("remote predict: %w", err)
	}
	p := resp.Probability
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("remote predict: probability %v out of range", p)
	}
	return p, nil
}

var _ domsvc.Classifier = (*RemoteClassifier)(nil)
