package ecs

import (
	"github.com/phanxgames/sway"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType is the Donburi event type for sway interaction events.
// Subscribe to this in your ECS systems to receive pointer, touch and scroll events.
var InteractionEventType = events.NewEventType[sway.InteractionEvent]()

// SignalEventType is the Donburi event type for component transitions such
// as autoplay pauses, carousel snaps and engagement edges.
var SignalEventType = events.NewEventType[sway.Signal]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Events are published to InteractionEventType and SignalEventType and can
// be consumed with Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) sway.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event sway.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}

func (s *donburiStore) EmitSignal(signal sway.Signal) {
	SignalEventType.Publish(s.world, signal)
}

// ProcessEvents delivers every queued interaction event and signal to its
// subscribers.
func ProcessEvents(world donburi.World) {
	InteractionEventType.ProcessEvents(world)
	SignalEventType.ProcessEvents(world)
}
