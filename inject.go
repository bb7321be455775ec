package sway

// injectTouchPointer is the pointer slot used for injected touches. Live
// touches allocate from the low slots, so the two never collide in practice.
const injectTouchPointer = maxPointers - 1

// syntheticEvent represents a single injected input event.
// Screen coordinates are used and converted to world coordinates via the
// primary camera, identical to real input.
type syntheticEvent struct {
	pointerID        int
	screenX, screenY float64
	pressed          bool
	button           MouseButton
	wheelY           float64 // Ebitengine convention: positive is wheel-up
	wheel            bool
}

// InjectPress queues a pointer press event at the given screen coordinates
// (left button). The event is consumed on the next step.
func (s *Scene) InjectPress(x, y float64) {
	s.inject(syntheticEvent{screenX: x, screenY: y, pressed: true})
}

// InjectMove queues a pointer move event at the given screen coordinates
// with the button held down. Use this between InjectPress and InjectRelease
// to simulate a drag.
func (s *Scene) InjectMove(x, y float64) {
	s.inject(syntheticEvent{screenX: x, screenY: y, pressed: true})
}

// InjectHover queues a pointer move with no button held.
func (s *Scene) InjectHover(x, y float64) {
	s.inject(syntheticEvent{screenX: x, screenY: y})
}

// InjectRelease queues a pointer release event at the given screen coordinates.
func (s *Scene) InjectRelease(x, y float64) {
	s.inject(syntheticEvent{screenX: x, screenY: y})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same screen coordinates. Consumes two steps.
func (s *Scene) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate steps, and
// release at (toX, toY). The total sequence consumes `frames` steps.
// Minimum frames is 2 (press + release).
func (s *Scene) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	s.InjectRelease(toX, toY)
}

// InjectTouchStart queues a touch beginning at the given screen coordinates.
func (s *Scene) InjectTouchStart(x, y float64) {
	s.inject(syntheticEvent{pointerID: injectTouchPointer, screenX: x, screenY: y, pressed: true})
}

// InjectTouchMove queues movement of the injected touch.
func (s *Scene) InjectTouchMove(x, y float64) {
	s.inject(syntheticEvent{pointerID: injectTouchPointer, screenX: x, screenY: y, pressed: true})
}

// InjectTouchEnd queues the injected touch lifting at the given coordinates.
func (s *Scene) InjectTouchEnd(x, y float64) {
	s.inject(syntheticEvent{pointerID: injectTouchPointer, screenX: x, screenY: y})
}

// InjectWheel queues a wheel movement of deltaY pixels, positive meaning
// forward (down the page).
func (s *Scene) InjectWheel(deltaY float64) {
	per := s.input.wheelPerNotch
	if per == 0 {
		per = defaultWheelPixelsPerNotch
	}
	s.inject(syntheticEvent{wheel: true, wheelY: -deltaY / per})
}

// PendingInjections returns the number of queued synthetic events.
func (s *Scene) PendingInjections() int {
	return len(s.input.injectQueue)
}

func (s *Scene) inject(e syntheticEvent) {
	s.input.injectQueue = append(s.input.injectQueue, e)
}

// processInjectedInput pops one event from the inject queue, converts
// screen→world via the primary camera, and feeds it through the pointer or
// wheel path. Returns true if a pointer-0 event was consumed (real mouse
// input should be skipped this step).
func (s *Scene) processInjectedInput(cam *Camera, mods KeyModifiers) bool {
	in := &s.input
	if len(in.injectQueue) == 0 {
		return false
	}
	evt := in.injectQueue[0]
	copy(in.injectQueue, in.injectQueue[1:])
	in.injectQueue = in.injectQueue[:len(in.injectQueue)-1]

	if evt.wheel {
		in.injectWheelY += evt.wheelY
		in.injectWheelSeen = true
		return false
	}

	wx, wy := screenToWorld(cam, evt.screenX, evt.screenY)
	s.processPointer(evt.pointerID, wx, wy, evt.pressed, evt.button, mods)
	return evt.pointerID == 0
}
