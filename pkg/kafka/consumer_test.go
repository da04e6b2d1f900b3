package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"LoanPredictor/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	topic string
	err   error
	calls int
}

func (h *stubHandler) Topic() string { return h.topic }

func (h *stubHandler) Handle(context.Context, []byte) error {
	h.calls++
	return h.err
}

type stubReader struct {
	mu        sync.Mutex
	committed []kafka.Message
}

func (r *stubReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *stubReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *stubReader) Close() error { return nil }

type stubWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *stubWriter) Close() error { return nil }

func testConsumer(h *stubHandler, dlqTopic string) (*Consumer, *stubReader, *stubWriter) {
	c := newConsumer(&ConsumerConfig{
		WorkerCount: 1,
		BufferSize:  1,
		RetryMax:    2,
		BackoffMin:  time.Millisecond,
		BackoffMax:  2 * time.Millisecond,
		DLQTopic:    dlqTopic,
	}, logger.Nop())
	c.RegisterHandler(h)
	r := &stubReader{}
	c.readers[h.topic] = r
	w := &stubWriter{}
	if dlqTopic != "" {
		c.dlq = w
	}
	return c, r, w
}

func TestProcessCommitsOnSuccess(t *testing.T) {
	h := &stubHandler{topic: "apps"}
	c, r, _ := testConsumer(h, "")

	c.process(kafka.Message{Topic: "apps", Value: []byte(`{}`)})

	assert.Equal(t, 1, h.calls)
	assert.Len(t, r.committed, 1)
}

func TestProcessRetriesThenParksOnDLQ(t *testing.T) {
	h := &stubHandler{topic: "apps", err: errors.New("boom")}
	c, r, w := testConsumer(h, "apps.dlq")

	c.process(kafka.Message{Topic: "apps", Key: []byte("k"), Value: []byte(`{}`)})

	assert.Equal(t, 3, h.calls)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "apps.dlq", w.msgs[0].Topic)
	assert.Equal(t, []byte("k"), w.msgs[0].Key)
	assert.Len(t, r.committed, 1)
}

func TestProcessWithoutDLQLeavesOffsetUncommitted(t *testing.T) {
	h := &stubHandler{topic: "apps", err: errors.New("boom")}
	c, r, _ := testConsumer(h, "")

	c.process(kafka.Message{Topic: "apps"})

	assert.Equal(t, 3, h.calls)
	assert.Empty(t, r.committed)
}

func TestProcessDoesNotRetryPermanentErrors(t *testing.T) {
	h := &stubHandler{topic: "apps", err: fmt.Errorf("decode: %w", ErrPermanent)}
	c, _, w := testConsumer(h, "apps.dlq")

	c.process(kafka.Message{Topic: "apps"})

	assert.Equal(t, 1, h.calls)
	assert.Len(t, w.msgs, 1)
}

func TestHookErrorSkipsHandler(t *testing.T) {
	h := &stubHandler{topic: "apps"}
	c, _, _ := testConsumer(h, "")
	c.WithConsumerHook(NewHookChain(rejectHook{}))

	c.process(kafka.Message{Topic: "apps"})

	assert.Equal(t, 0, h.calls)
}

type rejectHook struct{ NoopHook }

func (rejectHook) BeforeHandle(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	return ctx, km, data, &HookError{Code: "ERR_VALIDATION", Err: ErrPermanent}
}

func TestBackoffWithJitterStaysInRange(t *testing.T) {
	min, max := 10*time.Millisecond, 80*time.Millisecond
	for attempt := 1; attempt < 40; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, max)
	}
}

func TestStopDrainsWorkers(t *testing.T) {
	h := &stubHandler{topic: "apps"}
	c, _, _ := testConsumer(h, "")
	require.NoError(t, c.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, c.Stop(ctx))
}

func TestProducerEncodesAndRoutesToTopic(t *testing.T) {
	w := &stubWriter{}
	p := newProducer(w, "none")

	require.NoError(t, p.Publish(context.Background(), "decisions", []byte("id-1"), map[string]int{"a": 1}))
	require.NoError(t, p.PublishMessage(context.Background(), "logs", "plain"))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "decisions", w.msgs[0].Topic)
	assert.JSONEq(t, `{"a":1}`, string(w.msgs[0].Value))
	assert.Equal(t, "plain", string(w.msgs[1].Value))
	assert.Error(t, p.PublishMessage(context.Background(), "", "x"))
}
