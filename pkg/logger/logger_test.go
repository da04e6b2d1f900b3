package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsRenderAsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "debug")

	l.Info("kafka intake enabled",
		Strings("brokers", []string{"k1:9092", "k2:9092"}),
		Any("means", map[string]float64{"monthly_income": 68000}),
		Int("workers", 4),
		Float64("risk_score", 37.5),
		Bool("async", false),
		Duration("took", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kafka intake enabled", line["message"])
	assert.Equal(t, "k1:9092, k2:9092", line["brokers"])
	assert.Equal(t, map[string]interface{}{"monthly_income": 68000.0}, line["means"])
	assert.Equal(t, 4.0, line["workers"])
	assert.Equal(t, 37.5, line["risk_score"])
	assert.Equal(t, false, line["async"])
	assert.Equal(t, "boom", line["error"])
	assert.Contains(t, line, "took")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "warn")

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept", String("k", "v"))
	assert.Contains(t, buf.String(), `"k":"v"`)
}
