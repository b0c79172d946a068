package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starhold_server/internal/model"
)

func TestEventBus_DeliversToEverySubscriber(t *testing.T) {
	bus := NewEventBus()

	first, cancelFirst := bus.Subscribe()
	second, cancelSecond := bus.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	bus.Publish(Event{Type: EventTick, At: time.Now()})

	assert.Equal(t, EventTick, (<-first).Type)
	assert.Equal(t, EventTick, (<-second).Type)
}

func TestEventBus_CancelClosesTheChannel(t *testing.T) {
	bus := NewEventBus()

	events, cancel := bus.Subscribe()
	cancel()

	_, open := <-events
	assert.False(t, open)

	// Cancelling twice is safe.
	cancel()

	// Publishing after the cancellation reaches nobody and
	// does not panic.
	bus.Publish(Event{Type: EventTick, At: time.Now()})
}

func TestEventBus_NeverBlocksOnALaggingSubscriber(t *testing.T) {
	bus := NewEventBus()

	events, cancel := bus.Subscribe()
	defer cancel()

	// Overflow the buffer of the subscriber without ever
	// draining it: the publications must all return.
	for i := 0; i < 3*subscriberBuffer; i++ {
		bus.Publish(Event{Type: EventTick, At: time.Now()})
	}

	assert.Len(t, events, subscriberBuffer)
}

func TestCommands_EmitEvents(t *testing.T) {
	e, _ := newTestEngine()
	now := time.Now()

	events, cancel := e.Bus().Subscribe()
	defer cancel()

	_, planet := seedAgent(e, "alice", model.NewCoordinate(1, 1, 1), now)

	require.NoError(t, e.Build("alice", planet.ID, model.MetalMine, now))

	evt := <-events
	assert.Equal(t, EventBuildStarted, evt.Type)
	assert.Equal(t, model.MetalMine, evt.Payload["building"])
}
