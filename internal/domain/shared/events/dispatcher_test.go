package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensegate/internal/shared/logger"
)

func TestInMemoryEventDispatcher_DeliversInOrder(t *testing.T) {
	d := NewInMemoryEventDispatcher(10, logger.NewNop())

	var mu sync.Mutex
	var got []string
	require.NoError(t, d.Subscribe(Wildcard, NewSimpleEventHandler(Wildcard, func(e DomainEvent) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.GetEventType())
		return nil
	})))
	require.NoError(t, d.Start())

	for _, typ := range []string{"license.reserved", "license.released", "license.synced"} {
		require.NoError(t, d.Publish(BaseEvent{AggregateID: "tok", EventType: typ, OccurredAt: time.Now()}))
	}
	require.NoError(t, d.Stop())

	assert.Equal(t, []string{"license.reserved", "license.released", "license.synced"}, got)
}

func TestInMemoryEventDispatcher_PublishWhenStopped(t *testing.T) {
	d := NewInMemoryEventDispatcher(1, logger.NewNop())
	assert.Error(t, d.Publish(BaseEvent{EventType: "license.reserved"}))
}

func TestInMemoryEventDispatcher_HandlerPanicIsContained(t *testing.T) {
	d := NewInMemoryEventDispatcher(4, logger.NewNop())

	delivered := make(chan struct{}, 1)
	require.NoError(t, d.Subscribe("store.over_limit", NewSimpleEventHandler("store.over_limit", func(DomainEvent) error {
		panic("boom")
	})))
	require.NoError(t, d.Subscribe("store.over_limit", NewSimpleEventHandler("store.over_limit", func(DomainEvent) error {
		delivered <- struct{}{}
		return nil
	})))
	require.NoError(t, d.Start())
	defer d.Stop()

	require.NoError(t, d.Publish(BaseEvent{EventType: "store.over_limit"}))
	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("second handler was not called")
	}
}
