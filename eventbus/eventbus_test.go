package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryTopicNamesRoundTrip(t *testing.T) {
	topic := NewTopic("social-content.content.events")

	names := topic.GetRetryTopics()
	require.Len(t, names, len(RetryDelays))

	for i, name := range names {
		next, err := topic.GetRetryTopic(i + 1)
		require.NoError(t, err)
		assert.Equal(t, name, next)

		delay, ok := ParseRetryDelayFromTopicName(name)
		require.True(t, ok, name)
		assert.Equal(t, RetryDelays[i], delay)
	}

	_, err := topic.GetRetryTopic(len(RetryDelays) + 1)
	assert.ErrorIs(t, err, ErrMaxRetryExceeded)
	assert.Equal(t, "social-content.content.events.dlq", topic.DLQ())
}

func TestParseRetryDelayRejectsUnknownNames(t *testing.T) {
	for _, name := range []string{"plain", "x.retry.", "x.retry.0", "x.retry.99", "x.retry.10s"} {
		_, ok := ParseRetryDelayFromTopicName(name)
		assert.False(t, ok, name)
	}
}

func TestNewJSONEventAndDecode(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	evt, err := NewJSONEvent("", "content-1", payload{Name: "a"}, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, "content-1", evt.PartitionKey())
	assert.Equal(t, len(RetryDelays), evt.MaxRetry)

	out, err := DecodeJSON[payload](evt)
	require.NoError(t, err)
	assert.Equal(t, "a", out.Name)

	evt.Key = ""
	assert.Equal(t, evt.ID, evt.PartitionKey())
}

func TestMemoryEventBusRetriesThenDeadLetters(t *testing.T) {
	bus := NewMemoryEventBus()
	topic := NewTopic("t")

	calls := 0
	bus.On(topic, func(ctx context.Context, evt Event) error {
		calls++
		return errors.New("down")
	})

	evt, err := NewJSONEvent("e1", "k", map[string]string{}, 2)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), topic.Base(), evt))

	assert.Equal(t, 3, calls)
	dlq := bus.Published(topic.DLQ())
	require.Len(t, dlq, 1)
	assert.Equal(t, "down", dlq[0].LastError)
	assert.Equal(t, 2, dlq[0].Retry)
}

func TestMemoryEventBusDeliversOnce(t *testing.T) {
	bus := NewMemoryEventBus()
	topic := NewTopic("t")

	var got []string
	bus.On(topic, func(ctx context.Context, evt Event) error {
		got = append(got, evt.ID)
		return nil
	})

	for _, id := range []string{"a", "b"} {
		evt, err := NewJSONEvent(id, id, nil, 0)
		require.NoError(t, err)
		require.NoError(t, bus.Publish(context.Background(), topic.Base(), evt))
	}

	assert.Equal(t, []string{"a", "b"}, got)
	assert.Empty(t, bus.Published(topic.DLQ()))
}
