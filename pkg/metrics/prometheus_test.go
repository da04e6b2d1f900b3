package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordPrediction("High Risk", true, "http")
	r.RecordPrediction("High Risk", true, "http")
	r.RecordPrediction("Low Risk", false, "kafka")
	r.RecordError("invalid_input")
	r.RecordCacheResult(true)
	r.RecordCacheResult(false)
	r.RecordCacheResult(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.predictions.WithLabelValues("High Risk", "true", "http")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.predictions.WithLabelValues("Low Risk", "false", "kafka")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("invalid_input")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cache.WithLabelValues("miss")))
}

func TestRecordersUseSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
