package logger

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func (p *capturePublisher) entries() []AggregatedLogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []AggregatedLogEntry
	for _, b := range p.batches {
		out = append(out, b...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func TestCollectorAggregatesRepeatedErrors(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "debug")
	pub := &capturePublisher{}
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Topic: "loan.logs", Publisher: pub})

	boom := errors.New("connection refused")
	for i := 0; i < 3; i++ {
		l.Error("decision audit failed", String("sink", "clickhouse"), Error(boom))
	}
	l.Error("http server failed")
	l.Warn("not collected")

	l.RemoveCollector()

	got := pub.entries()
	require.Len(t, got, 2)
	assert.Equal(t, "loan.logs", pub.topic)
	assert.Equal(t, 3, got[0].Count)
	assert.Equal(t, "decision audit failed", got[0].Message)
	assert.Equal(t, "error", got[0].Level)
	assert.Equal(t, "clickhouse", got[0].Fields["sink"])
	assert.False(t, got[0].LastSeen.Before(got[0].FirstSeen))
	assert.Equal(t, 1, got[1].Count)

	// everything still reaches the primary writer
	assert.Contains(t, buf.String(), "not collected")
}

func TestCollectorFlushesAtThreshold(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Publisher: pub})

	c.AddLog("error", "a", nil, "x.go:1")
	assert.Equal(t, 1, c.Pending())
	c.AddLog("error", "b", nil, "x.go:2")
	assert.Equal(t, 0, c.Pending())

	c.Close()
	assert.Len(t, pub.entries(), 2)
}

func TestWithSharesCollector(t *testing.T) {
	pub := &capturePublisher{}
	l := Nop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, Publisher: pub})

	l.With(String("component", "kafka")).Error("child error")
	l.RemoveCollector()

	require.Len(t, pub.entries(), 1)
	assert.Equal(t, "child error", pub.entries()[0].Message)
}
