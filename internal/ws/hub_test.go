package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T, gauge prometheus.Gauge) (*Hub, context.CancelFunc) {
	t.Helper()
	h := NewHub(zap.NewNop().Sugar(), gauge)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var evt Event
		require.NoError(t, json.Unmarshal(data, &evt))
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestHub_PublishFansOut(t *testing.T) {
	h, _ := startHub(t, nil)
	ctx := context.Background()

	a, b := NewClient(1, nil), NewClient(2, nil)
	require.NoError(t, h.Subscribe(ctx, a))
	require.NoError(t, h.Subscribe(ctx, b))

	evt := NewEvent(EventMessageLiked, 4, 1)
	require.NoError(t, h.Publish(ctx, evt))

	for _, c := range []*Client{a, b} {
		got := receive(t, c)
		assert.Equal(t, evt.ID, got.ID)
		assert.Equal(t, EventMessageLiked, got.Type)
		assert.Equal(t, int64(4), got.MessageID)
		assert.Equal(t, int64(1), got.UserID)
		assert.Nil(t, got.Message)
	}
}

func TestHub_LeaveClosesSend(t *testing.T) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "clients"})
	h, _ := startHub(t, gauge)
	ctx := context.Background()

	c := NewClient(1, nil)
	require.NoError(t, h.Subscribe(ctx, c))
	require.Eventually(t, func() bool { return testutil.ToFloat64(gauge) == 1 }, time.Second, 5*time.Millisecond)

	h.Leave(c)
	_, ok := <-c.Send
	assert.False(t, ok)
	require.Eventually(t, func() bool { return testutil.ToFloat64(gauge) == 0 }, time.Second, 5*time.Millisecond)

	// leaving twice is harmless
	h.Leave(c)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h, _ := startHub(t, nil)
	ctx := context.Background()

	slow := &Client{UserID: 9, Send: make(chan []byte)}
	require.NoError(t, h.Subscribe(ctx, slow))
	require.NoError(t, h.Publish(ctx, NewEvent(EventMessageCreated, 1, 1)))

	require.Eventually(t, func() bool { return h.Len() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-slow.Send
	assert.False(t, ok)
}

func TestHub_StopDisconnectsAndRejects(t *testing.T) {
	h, cancel := startHub(t, nil)
	ctx := context.Background()

	c := NewClient(1, nil)
	require.NoError(t, h.Subscribe(ctx, c))
	cancel()

	_, ok := <-c.Send
	assert.False(t, ok)

	<-h.done
	for i := 0; i < cap(h.Broadcast)+1; i++ {
		err := h.Publish(ctx, NewEvent(EventMessageCreated, 1, 1))
		if err != nil {
			assert.ErrorIs(t, err, ErrHubStopped)
			break
		}
	}
	assert.ErrorIs(t, h.Subscribe(ctx, NewClient(2, nil)), ErrHubStopped)
	h.Leave(c)
}

func TestNewEvent(t *testing.T) {
	a := NewEvent(EventMessageUnliked, 3, 7)
	b := NewEvent(EventMessageUnliked, 3, 7)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 36)
	assert.WithinDuration(t, time.Now(), a.At, time.Second)
}
