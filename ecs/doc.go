// Package ecs provides ECS adapters for sway's interaction events and
// component signals.
//
// The primary adapter is [NewDonburiStore], which bridges sway interaction
// events (pointer, click, drag, touch, wheel, scroll) and component signals
// (engaged, paused, advanced, snapped, ...) into a [Donburi] world as typed
// events. Subscribe to [InteractionEventType] or [SignalEventType] in your
// ECS systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
