package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/linkshort/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	messages   []*message.Message
	topic      string
	publishErr error
	closeErr   error
}

func (m *mockPublisher) Publish(topic string, msgs ...*message.Message) error {
	if m.publishErr != nil {
		return m.publishErr
	}

	m.topic = topic
	m.messages = append(m.messages, msgs...)

	return nil
}

func (m *mockPublisher) Close() error {
	return m.closeErr
}

type testEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestNewPublishFunc(t *testing.T) {
	t.Run("publishes json payload on the topic", func(t *testing.T) {
		pub := &mockPublisher{}
		publish := messaging.NewPublishFunc[testEvent](pub, "test.topic")

		err := publish(context.Background(), &testEvent{ID: "123", Name: "test"})

		require.NoError(t, err)
		assert.Equal(t, "test.topic", pub.topic)
		require.Len(t, pub.messages, 1)
		assert.JSONEq(t, `{"id":"123","name":"test"}`, string(pub.messages[0].Payload))
		assert.Empty(t, pub.messages[0].Metadata.Get(messaging.MetadataRequestID))
	})

	t.Run("copies the request id into metadata", func(t *testing.T) {
		pub := &mockPublisher{}
		publish := messaging.NewPublishFunc[testEvent](pub, "test.topic")
		ctx := messaging.ContextWithRequestID(context.Background(), "req-1")

		err := publish(ctx, &testEvent{ID: "123"})

		require.NoError(t, err)
		assert.Equal(t, "req-1", pub.messages[0].Metadata.Get(messaging.MetadataRequestID))
	})

	t.Run("returns publisher errors", func(t *testing.T) {
		pub := &mockPublisher{publishErr: errors.New("publish error")}
		publish := messaging.NewPublishFunc[testEvent](pub, "test.topic")

		err := publish(context.Background(), &testEvent{ID: "123"})

		assert.EqualError(t, err, "publish error")
	})
}

func TestRequestIDFromContext(t *testing.T) {
	assert.Empty(t, messaging.RequestIDFromContext(context.Background()))
	assert.Equal(t, "abc", messaging.RequestIDFromContext(
		messaging.ContextWithRequestID(context.Background(), "abc"),
	))
}

func TestPublisherGroup(t *testing.T) {
	t.Run("exposes the publisher", func(t *testing.T) {
		pub := &mockPublisher{}
		group := messaging.NewPublisherGroup(pub)

		assert.Equal(t, pub, group.Publisher())
	})

	t.Run("closes the publisher on shutdown", func(t *testing.T) {
		group := messaging.NewPublisherGroup(&mockPublisher{closeErr: errors.New("close error")})

		assert.Error(t, group.Shutdown())
	})
}
