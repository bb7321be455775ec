package sway

import "testing"

func TestInjectClickConsumesTwoSteps(t *testing.T) {
	s := NewHeadlessScene()
	box := NewBox("box", 100, 100)
	s.Root().AddChild(box)

	var clicked *Node
	s.Dispatcher().On(EventClick, Selector{}, func(e Event) { clicked = e.Target })

	s.InjectClick(50, 50)
	if s.PendingInjections() != 2 {
		t.Fatalf("PendingInjections = %d, want 2", s.PendingInjections())
	}

	stepFrames(s, 1)
	if s.PendingInjections() != 1 {
		t.Fatalf("PendingInjections after press = %d, want 1", s.PendingInjections())
	}
	if clicked != nil {
		t.Error("click should not fire on press frame")
	}

	stepFrames(s, 1)
	if clicked != box {
		t.Errorf("clicked = %v, want box", clicked)
	}
}

func TestInjectDragMinFrames(t *testing.T) {
	s := NewHeadlessScene()
	s.InjectDrag(0, 0, 100, 100, 1)
	if s.PendingInjections() != 2 {
		t.Fatalf("PendingInjections = %d, want 2 (clamped)", s.PendingInjections())
	}
}

func TestInjectQueueOrder(t *testing.T) {
	s := NewHeadlessScene()
	s.InjectPress(10, 20)
	s.InjectMove(30, 40)
	s.InjectRelease(50, 60)

	q := s.input.injectQueue
	if len(q) != 3 {
		t.Fatalf("queued = %d, want 3", len(q))
	}
	if !q[0].pressed || q[0].screenX != 10 {
		t.Error("first event should be press at (10,20)")
	}
	if !q[1].pressed || q[1].screenX != 30 {
		t.Error("second event should be move at (30,40)")
	}
	if q[2].pressed || q[2].screenX != 50 {
		t.Error("third event should be release at (50,60)")
	}
}

func TestInjectTouchUsesTouchPointer(t *testing.T) {
	s := NewHeadlessScene()
	s.InjectTouchStart(1, 2)
	s.InjectTouchMove(3, 4)
	s.InjectTouchEnd(5, 6)
	for i, e := range s.input.injectQueue {
		if e.pointerID != injectTouchPointer {
			t.Errorf("event %d pointerID = %d, want %d", i, e.pointerID, injectTouchPointer)
		}
	}
	if s.input.injectQueue[2].pressed {
		t.Error("touch end should not be pressed")
	}
}

func TestProcessInjectedInput(t *testing.T) {
	s := NewHeadlessScene()
	s.Root().AddChild(NewBox("box", 100, 100))
	updateWorldTransform(s.root, identityTransform, 1.0, false)

	var down *Event
	s.Dispatcher().On(EventPointerDown, Selector{}, func(e Event) { down = &e })

	s.InjectPress(50, 50)
	if !s.processInjectedInput(nil, 0) {
		t.Error("expected processInjectedInput to consume a mouse event")
	}
	if down == nil {
		t.Fatal("pointer down should have fired")
	}
	if down.GlobalX != 50 || down.GlobalY != 50 {
		t.Errorf("global = (%v,%v), want (50,50)", down.GlobalX, down.GlobalY)
	}
}

func TestProcessInjectedInputEmptyQueue(t *testing.T) {
	s := NewHeadlessScene()
	if s.processInjectedInput(nil, 0) {
		t.Error("should not consume when queue is empty")
	}
}

func TestProcessInjectedWheelDoesNotConsumeMouse(t *testing.T) {
	s := NewHeadlessScene()
	s.InjectWheel(50)
	if s.processInjectedInput(nil, 0) {
		t.Error("a wheel injection should not suppress mouse input")
	}
	if !s.input.injectWheelSeen || s.input.injectWheelY != -1 {
		t.Errorf("injectWheelY = %v, want -1 notch", s.input.injectWheelY)
	}
}

func TestInjectWithCamera(t *testing.T) {
	s := NewHeadlessScene()
	cam := s.NewCamera(Rect{Width: 640, Height: 480})
	cam.ScrollBy(1000)

	box := NewBox("box", 50, 50)
	box.Y = 1200
	s.Root().AddChild(box)

	var hit *Node
	s.Dispatcher().On(EventPointerDown, Selector{}, func(e Event) { hit = e.Target })

	// Screen y 220 is world y 1220 after scrolling 1000.
	s.InjectPress(20, 220)
	stepFrames(s, 1)

	if hit != box {
		t.Errorf("hit = %v, want box via camera transform", hit)
	}
}
