package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createTestMessage(t *testing.T, ev bindings.PostEvent) *kafka.Message {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	return &kafka.Message{Value: data}
}

func TestProcessMessageBroadcasts(t *testing.T) {
	hub := NewHub(zap.NewNop())
	dw := &DashboardWriter{hub: hub, logger: zap.NewNop()}
	events, cancel := hub.Subscribe()
	defer cancel()

	want := bindings.PostEvent{
		Type:       bindings.PostCountsChanged,
		PostId:     "p1",
		ViewCount:  5,
		ReadCount:  2,
		OccurredAt: time.Now().UnixMilli(),
	}
	require.NoError(t, dw.ProcessMessage(createTestMessage(t, want)))

	select {
	case got := <-events:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestProcessMessageRejectsBadInput(t *testing.T) {
	hub := NewHub(zap.NewNop())
	dw := &DashboardWriter{hub: hub, logger: zap.NewNop()}
	events, cancel := hub.Subscribe()
	defer cancel()

	assert.Error(t, dw.ProcessMessage(&kafka.Message{Value: []byte("{")}))
	assert.Error(t, dw.ProcessMessage(createTestMessage(t, bindings.PostEvent{Type: "liked", PostId: "p1"})))
	assert.Error(t, dw.ProcessMessage(createTestMessage(t, bindings.PostEvent{Type: bindings.PostCreated})))
	assert.Len(t, events, 0)
}

func TestHubSubscribeAndCancel(t *testing.T) {
	hub := NewHub(zap.NewNop())
	a, cancelA := hub.Subscribe()
	b, cancelB := hub.Subscribe()
	require.Equal(t, 2, hub.Len())

	ev := bindings.PostEvent{Type: bindings.PostDeleted, PostId: "p1"}
	hub.Broadcast(ev)
	assert.Equal(t, ev, <-a)
	assert.Equal(t, ev, <-b)

	cancelA()
	cancelA()
	assert.Equal(t, 1, hub.Len())
	_, ok := <-a
	assert.False(t, ok)

	cancelB()
	assert.Equal(t, 0, hub.Len())
}

func TestLocalPublisher(t *testing.T) {
	hub := NewHub(zap.NewNop())
	events, cancel := hub.Subscribe()
	defer cancel()

	pub := NewLocalPublisher(hub)
	defer pub.Close()
	ev := bindings.PostEvent{Type: bindings.PostCreated, PostId: "p9"}
	require.NoError(t, pub.Publish(context.Background(), ev))
	assert.Equal(t, ev, <-events)
}

func TestNewMessage(t *testing.T) {
	ev := bindings.PostEvent{Type: bindings.PostUpdated, PostId: "p3", OccurredAt: 42}
	msg, err := newMessage(DefaultTopic, ev)
	require.NoError(t, err)

	require.NotNil(t, msg.TopicPartition.Topic)
	assert.Equal(t, DefaultTopic, *msg.TopicPartition.Topic)
	assert.Equal(t, kafka.PartitionAny, msg.TopicPartition.Partition)
	assert.Equal(t, []byte("p3"), msg.Key)

	var decoded bindings.PostEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, ev, decoded)
}
