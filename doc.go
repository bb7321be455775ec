// Package sway is an engagement-aware motion engine for [Ebitengine].
//
// Sway drives progress sweeps, carousels and scroll-scrubbed media from
// several conflicting inputs at once: viewport visibility, pointer hover,
// wheel and scroll deltas, touch gestures and clicks. It computes numeric
// and boolean state only; drawing is left to the caller.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	scene := sway.NewScene()
//	// ... add nodes and components ...
//	sway.Run(scene, sway.RunConfig{
//		Title: "Demo", Width: 640, Height: 480,
//		Draw:  func(screen *ebiten.Image) { /* render state */ },
//	})
//
// For full control, implement [ebiten.Game] yourself and call
// [Scene.Update] from Update. Tests drive a [NewHeadlessScene] with
// [Scene.Step] and [Loop.Advance] instead.
//
// # Host model
//
// Every element is a [Node]. Nodes form a tree rooted at [Scene.Root],
// inherit their parent's transform and carry a name, classes and data
// attributes that [Selector] matches (#name, .class, [key=value]).
// The primary [Camera] is the page viewport: the wheel scrolls it and
// visibility is measured against its visible bounds.
//
// A [Loop] supplies animation frames and timers on a virtual clock. The
// [Dispatcher] receives each raw input event once and routes it to
// (event, selector, callback) registrations; [Subscription.Remove] is the
// paired teardown.
//
// # Components
//
// Components take a [Host] (normally the *Scene) and own every frame request,
// timer and subscription they create; Dispose releases them all.
//
//   - [Scene.ObserveVisibility] reports whether a node is in view.
//   - [Progress] is a 0–100 sweep in forward-only, back-and-forth or
//     infinite mode.
//   - [Coordinator] merges hover, visibility, always-on and controlled
//     inputs into one engaged flag with one-frame edges.
//   - [Autoplay] advances an index on a timer and pauses while the user
//     engages, resuming after a quiet period.
//   - [Carousel] loops pages seamlessly using clone pages and an instant
//     snap-back.
//   - [MediaController] maps scroll direction and speed to playback rate.
//
// Every tunable can be loaded from YAML with [LoadConfig] and overridden
// from SWAY_* environment variables. State transitions are logged through
// log/slog and, with [Scene.SetEntityStore], published to an ECS (see the
// sway/ecs Donburi adapter).
//
// [Ebitengine]: https://ebitengine.org
package sway
