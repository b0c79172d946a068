package game

import (
	"sync"
	"time"
)

// Types of the events emitted by the engine. Adapters
// subscribe to the bus and forward these to connected
// observers.
const (
	EventTick             = "tick"
	EventBuildStarted     = "buildStarted"
	EventBuildComplete    = "buildComplete"
	EventResearchStarted  = "researchStarted"
	EventResearchComplete = "researchComplete"
	EventShipComplete     = "shipComplete"
	EventDefenseComplete  = "defenseComplete"
	EventFleetLaunched    = "fleetLaunched"
	EventFleetArrived     = "fleetArrived"
	EventFleetReturned    = "fleetReturned"
	EventFleetDeployed    = "fleetDeployed"
	EventFleetRecalled    = "fleetRecalled"
	EventFleetReturning   = "fleetReturning"
	EventBattleReport     = "battleReport"
	EventDebrisCreated    = "debrisCreated"
	EventDebrisCollected  = "debrisCollected"
	EventPlanetColonized  = "planetColonized"
	EventSystemNamed      = "systemNamed"
)

// Event :
// Describes a notification emitted by the engine towards
// the broadcast sink.
//
// The `Type` defines the kind of the event.
//
// The `At` defines when the event was emitted.
//
// The `Payload` defines the event-specific data. It is
// kept small and serializable.
type Event struct {
	Type    string                 `json:"type"`
	At      time.Time              `json:"at"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// EventBus :
// Fan-out distribution of engine events to an arbitrary
// number of subscribers. Delivery is best-effort: the
// publication never blocks, so a subscriber that stops
// draining its channel loses events rather than stalling
// the simulation.
//
// The `locker` protects the subscribers table.
//
// The `subscribers` define the channels currently
// registered, keyed by an internal identifier.
//
// The `next` defines the identifier attributed to the
// next subscriber.
type EventBus struct {
	locker      sync.Mutex
	subscribers map[int]chan Event
	next        int
}

// Depth of a subscriber channel. A subscriber lagging by
// more than this many events starts losing them.
const subscriberBuffer = 64

// NewEventBus :
// Creates an empty bus.
//
// Returns the created bus.
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[int]chan Event),
	}
}

// Subscribe :
// Registers a new subscriber on the bus.
//
// Returns the channel on which the events are delivered
// along with the function to call to unsubscribe.
func (b *EventBus) Subscribe() (<-chan Event, func()) {
	b.locker.Lock()
	defer b.locker.Unlock()

	id := b.next
	b.next++

	ch := make(chan Event, subscriberBuffer)
	b.subscribers[id] = ch

	cancel := func() {
		b.locker.Lock()
		defer b.locker.Unlock()

		if existing, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(existing)
		}
	}

	return ch, cancel
}

// Publish :
// Delivers the input event to every subscriber without
// ever blocking: full channels are skipped.
//
// The `evt` defines the event to deliver.
func (b *EventBus) Publish(evt Event) {
	b.locker.Lock()
	defer b.locker.Unlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

// emit :
// Convenience helper building and publishing an event.
//
// The `kind` defines the type of the event.
//
// The `now` defines the emission time.
//
// The `payload` defines the event data.
func (b *EventBus) emit(kind string, now time.Time, payload map[string]interface{}) {
	b.Publish(Event{
		Type:    kind,
		At:      now,
		Payload: payload,
	})
}
