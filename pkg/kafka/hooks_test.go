package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestPayloadLimitHook(t *testing.T) {
	h := PayloadLimitHook{MaxBytes: 4}
	ctx := context.Background()

	_, _, _, err := h.BeforeHandle(ctx, "apps", kafka.Message{}, []byte("{}"))
	assert.NoError(t, err)

	_, _, _, err = h.BeforeHandle(ctx, "apps", kafka.Message{}, nil)
	assert.ErrorIs(t, err, ErrPermanent)
	var he *HookError
	assert.True(t, errors.As(err, &he))
	assert.Equal(t, "ERR_EMPTY_PAYLOAD", he.Code)

	_, _, _, err = h.BeforeHandle(ctx, "apps", kafka.Message{}, []byte(`{"a":1}`))
	assert.ErrorIs(t, err, ErrPermanent)
}

func TestOversizedPayloadGoesStraightToDLQ(t *testing.T) {
	h := &stubHandler{topic: "apps"}
	c, r, w := testConsumer(h, "apps.dlq")
	c.WithConsumerHook(NewHookChain(PayloadLimitHook{MaxBytes: 2}, TracingHook{}))

	c.process(kafka.Message{Topic: "apps", Value: []byte(`{"monthly_income":1}`)})

	assert.Zero(t, h.calls)
	assert.Len(t, w.msgs, 1)
	assert.Len(t, r.committed, 1)
}

func TestTracingHookCarriesTraceID(t *testing.T) {
	km := kafka.Message{Headers: []kafka.Header{{Key: "trace_id", Value: []byte("abc")}}}
	ctx, _, _, err := TracingHook{}.BeforeHandle(context.Background(), "apps", km, nil)
	assert.NoError(t, err)
	assert.Equal(t, "abc", TraceID(ctx))
	assert.Equal(t, "", TraceID(context.Background()))
}
