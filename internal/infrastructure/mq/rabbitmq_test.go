package mq

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"usercrud/config"
	"usercrud/internal/interface/api/rest/dto/record"
)

func TestPublish_Buffer(t *testing.T) {
	r := New(config.MQ{}, zap.NewNop())
	ev := NewEvent(ActionCreated, record.Response{ID: 1})

	for i := 0; i < bufferSize; i++ {
		require.NoError(t, r.Publish(context.Background(), ev))
	}
	require.ErrorIs(t, r.Publish(context.Background(), ev), ErrBufferFull)

	got := <-r.in
	assert.Equal(t, ActionCreated, got.Action)
	assert.Equal(t, int64(1), got.RecordID)
}

func TestPublish_CancelledContext(t *testing.T) {
	r := New(config.MQ{}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, r.Publish(ctx, NewEvent(ActionUpdated, record.Response{ID: 2})), context.Canceled)
	assert.Len(t, r.in, 0)
}

func TestToPublishing(t *testing.T) {
	ev := NewEvent(ActionSoftDeleted, record.Response{ID: 9, Email: "ann@example.com", IsDeleted: true})

	pub, err := toPublishing(ev)
	require.NoError(t, err)
	assert.Equal(t, "application/json", pub.ContentType)
	assert.Equal(t, amqp091.Persistent, pub.DeliveryMode)
	assert.Equal(t, ev.ID.String(), pub.MessageId)
	assert.Equal(t, ActionSoftDeleted, pub.Type)

	var body map[string]any
	require.NoError(t, json.Unmarshal(pub.Body, &body))
	assert.Equal(t, ActionSoftDeleted, body["event_action"])
	assert.EqualValues(t, 9, body["record_id"])
	payload, ok := body["record_payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ann@example.com", payload["email"])
	assert.Equal(t, true, payload["is_deleted"])
}

func TestWorker_StopsOnCancel(t *testing.T) {
	r := New(config.MQ{}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.PublisherWorker(ctx)
		close(done)
	}()
	cancel()
	<-done
}

func TestConnect_InvalidDSN(t *testing.T) {
	r := New(config.MQ{}, zap.NewNop())

	err := r.Connect(context.Background(), "amqp://bad:://dsn")
	require.Error(t, err)
	assert.Nil(t, r.GetConn())
}
