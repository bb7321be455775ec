package sway

import (
	"math"
	"strings"
	"testing"
)

// --- HitShape tests ---

func TestHitRectContains(t *testing.T) {
	r := HitRect{X: 10, Y: 20, Width: 100, Height: 50}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 50, 40, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 110, 70, true},
		{"outside left", 5, 40, false},
		{"outside right", 115, 40, false},
		{"outside top", 50, 15, false},
		{"outside bottom", 50, 75, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("HitRect.Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestHitCircleContains(t *testing.T) {
	c := HitCircle{CenterX: 50, CenterY: 50, Radius: 25}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", 50, 50, true},
		{"on circumference", 75, 50, true},
		{"outside", 80, 50, false},
		{"outside diagonal", 70, 70, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("HitCircle.Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestHitPolygonContains(t *testing.T) {
	square := HitPolygon{Points: []Vec2{{0, 0}, {100, 0}, {100, 100}, {0, 100}}}
	clockwise := HitPolygon{Points: []Vec2{{0, 100}, {100, 100}, {100, 0}, {0, 0}}}
	for _, p := range []HitPolygon{square, clockwise} {
		if !p.Contains(50, 50) {
			t.Error("polygon should contain its center")
		}
		if p.Contains(-1, 50) {
			t.Error("polygon should not contain an outside point")
		}
	}

	degen := HitPolygon{Points: []Vec2{{0, 0}, {1, 1}}}
	if degen.Contains(0, 0) {
		t.Error("degenerate polygon should not contain anything")
	}
}

// --- nodeContainsLocal ---

func TestNodeContainsLocal(t *testing.T) {
	box := NewBox("box", 100, 50)
	if !nodeContainsLocal(box, 50, 25) || !nodeContainsLocal(box, 0, 0) {
		t.Error("box should contain its center and corner")
	}
	if nodeContainsLocal(box, 101, 25) {
		t.Error("box should not contain a point outside")
	}

	group := NewContainer("group")
	if nodeContainsLocal(group, 0, 0) {
		t.Error("sizeless container should not be hit")
	}
	group.HitShape = HitCircle{CenterX: 10, CenterY: 10, Radius: 10}
	if !nodeContainsLocal(group, 10, 10) {
		t.Error("container with HitShape should be hit")
	}
}

// --- Hit test traversal ---

func newHitScene(nodes ...*Node) *Scene {
	s := NewHeadlessScene()
	for _, n := range nodes {
		s.Root().AddChild(n)
	}
	updateWorldTransform(s.root, identityTransform, 1.0, false)
	return s
}

func TestHitTestTopmost(t *testing.T) {
	a := NewBox("a", 100, 100)
	b := NewBox("b", 100, 100)
	s := newHitScene(a, b)
	if hit := s.hitTest(50, 50); hit != b {
		t.Errorf("hit = %v, want b", hit)
	}
}

func TestHitTestSkips(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *Node)
	}{
		{"invisible", func(b *Node) { b.Visible = false }},
		{"non-interactable", func(b *Node) { b.Interactable = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewBox("a", 100, 100)
			b := NewBox("b", 100, 100)
			tt.setup(b)
			s := newHitScene(a, b)
			if hit := s.hitTest(50, 50); hit != a {
				t.Errorf("hit = %v, want a", hit)
			}
		})
	}
}

func TestHitTestRespectsZIndex(t *testing.T) {
	a := NewBox("a", 100, 100)
	b := NewBox("b", 100, 100)
	a.SetZIndex(10)
	s := newHitScene(a, b)
	if hit := s.hitTest(50, 50); hit != a {
		t.Errorf("hit = %v, want a (higher ZIndex)", hit)
	}
}

func TestHitTestTransformed(t *testing.T) {
	a := NewBox("a", 100, 100)
	a.X, a.Y = 200, 200
	s := newHitScene(a)
	if s.hitTest(50, 50) != nil {
		t.Error("expected miss at origin")
	}
	if s.hitTest(250, 250) != a {
		t.Error("expected hit at (250, 250)")
	}
}

func TestHitTestRotated(t *testing.T) {
	a := NewBox("a", 100, 100)
	a.PivotX, a.PivotY = 50, 50
	a.X, a.Y = 50, 50
	a.Rotation = math.Pi / 4
	s := newHitScene(a)
	if s.hitTest(50, 50) != a {
		t.Error("center of rotated node should hit")
	}
}

// --- Pointer state machine ---

// eventLog records routed event types and targets.
type eventLog struct {
	entries []string
	events  []Event
}

func (l *eventLog) record(e Event) {
	name := "-"
	if e.Target != nil {
		name = e.Target.Name
	}
	l.entries = append(l.entries, e.Type.String()+":"+name)
	l.events = append(l.events, e)
}

func (l *eventLog) String() string {
	return strings.Join(l.entries, " ")
}

func (l *eventLog) listen(d *Dispatcher, types ...EventType) {
	for _, typ := range types {
		d.On(typ, Selector{}, l.record)
	}
}

func TestHoverEnterLeave(t *testing.T) {
	a := NewBox("a", 100, 100)
	b := NewBox("b", 100, 100)
	b.X = 100
	s := newHitScene(a, b)

	var log eventLog
	log.listen(s.Dispatcher(), EventPointerEnter, EventPointerLeave)

	s.InjectHover(50, 50)
	s.InjectHover(150, 50)
	s.InjectHover(500, 500)
	stepFrames(s, 3)

	want := "pointerenter:a pointerleave:a pointerenter:b pointerleave:b"
	if log.String() != want {
		t.Errorf("events = %q, want %q", log.String(), want)
	}
	if log.events[1].Related != b {
		t.Error("leave from a should carry b as Related")
	}
	if log.events[2].Related != a {
		t.Error("enter into b should carry a as Related")
	}
	if s.HoveredNode() != nil {
		t.Error("HoveredNode should be nil over empty space")
	}
}

func TestClickSequence(t *testing.T) {
	box := NewBox("box", 100, 100)
	s := newHitScene(box)

	var log eventLog
	log.listen(s.Dispatcher(), EventPointerDown, EventClick, EventPointerUp)

	s.InjectClick(50, 50)
	stepFrames(s, 1)
	if log.String() != "pointerdown:box" {
		t.Fatalf("after press: %q", log.String())
	}
	stepFrames(s, 1)
	want := "pointerdown:box click:box pointerup:box"
	if log.String() != want {
		t.Errorf("events = %q, want %q", log.String(), want)
	}
	if log.events[1].LocalX != 50 || log.events[1].LocalY != 50 {
		t.Errorf("click local = (%v, %v), want (50, 50)", log.events[1].LocalX, log.events[1].LocalY)
	}
}

func TestClickOnEmptySpace(t *testing.T) {
	s := newHitScene(NewBox("box", 100, 100))
	var log eventLog
	log.listen(s.Dispatcher(), EventClick)

	s.InjectClick(500, 500)
	stepFrames(s, 2)
	if log.String() != "click:-" {
		t.Errorf("events = %q, want %q", log.String(), "click:-")
	}
}

func TestClickNotFiredOnDifferentNode(t *testing.T) {
	a := NewBox("a", 100, 100)
	b := NewBox("b", 100, 100)
	b.X = 100
	s := newHitScene(a, b)
	s.SetDragDeadZone(1000)

	var log eventLog
	log.listen(s.Dispatcher(), EventClick)

	s.InjectPress(50, 50)
	s.InjectRelease(150, 50)
	stepFrames(s, 2)
	if len(log.entries) != 0 {
		t.Errorf("events = %q, want none", log.String())
	}
}

func TestDragSequence(t *testing.T) {
	box := NewBox("box", 400, 400)
	s := newHitScene(box)

	var log eventLog
	log.listen(s.Dispatcher(), EventDragStart, EventDragEnd, EventClick)

	s.InjectDrag(10, 10, 110, 10, 4)
	stepFrames(s, 4)

	if log.String() != "dragstart:box dragend:box" {
		t.Fatalf("events = %q", log.String())
	}
	end := log.events[1]
	if end.DeltaX != 100 || end.StartX != 10 {
		t.Errorf("dragend DeltaX = %v StartX = %v, want 100 and 10", end.DeltaX, end.StartX)
	}
}

func TestDragDeadZone(t *testing.T) {
	box := NewBox("box", 400, 400)
	s := newHitScene(box)
	s.SetDragDeadZone(50)

	var log eventLog
	log.listen(s.Dispatcher(), EventDragStart, EventClick)

	s.InjectPress(10, 10)
	s.InjectMove(40, 10)
	s.InjectRelease(40, 10)
	stepFrames(s, 3)
	if log.String() != "click:box" {
		t.Errorf("events = %q, want a click inside the dead zone", log.String())
	}
}

func TestTouchSequence(t *testing.T) {
	a := NewBox("a", 100, 100)
	b := NewBox("b", 100, 100)
	b.X = 100
	s := newHitScene(a, b)

	var log eventLog
	log.listen(s.Dispatcher(), EventTouchStart, EventTouchMove, EventTouchEnd, EventPointerEnter)

	s.InjectTouchStart(50, 50)
	s.InjectTouchMove(150, 50)
	s.InjectTouchEnd(150, 50)
	stepFrames(s, 3)

	want := "touchstart:a touchmove:b touchend:b"
	if log.String() != want {
		t.Fatalf("events = %q, want %q", log.String(), want)
	}
	if log.events[1].Related != a {
		t.Error("touchmove should carry the touch-start node as Related")
	}
	for _, e := range log.events {
		if !e.Touch {
			t.Errorf("%s should be flagged as touch", e.Type)
		}
	}
}

func TestReleaseOrderClickThenUpThenTouchEnd(t *testing.T) {
	box := NewBox("box", 100, 100)
	s := newHitScene(box)

	var log eventLog
	log.listen(s.Dispatcher(), EventClick, EventPointerUp, EventTouchEnd)

	s.InjectTouchStart(20, 20)
	s.InjectTouchEnd(20, 20)
	stepFrames(s, 2)
	want := "click:box pointerup:box touchend:box"
	if log.String() != want {
		t.Errorf("events = %q, want %q", log.String(), want)
	}
}

func TestPointerCapture(t *testing.T) {
	a := NewBox("a", 100, 100)
	s := newHitScene(a)

	var log eventLog
	log.listen(s.Dispatcher(), EventPointerDown)

	s.CapturePointer(0, a)
	s.InjectPress(500, 500)
	stepFrames(s, 1)
	if log.String() != "pointerdown:a" {
		t.Errorf("events = %q, want pointerdown routed to a", log.String())
	}

	s.InjectRelease(500, 500)
	stepFrames(s, 1)
	if s.input.captured[0] != nil {
		t.Error("capture should auto-release on pointer up")
	}
}

// --- Wheel and scroll ---

func TestWheelScrollsPage(t *testing.T) {
	s := newHitScene(NewBox("box", 100, 100))

	var log eventLog
	log.listen(s.Dispatcher(), EventWheel, EventScroll)

	s.InjectWheel(100)
	stepFrames(s, 1)

	if log.String() != "wheel:- scroll:-" {
		t.Fatalf("events = %q", log.String())
	}
	if log.events[0].DeltaY != 100 {
		t.Errorf("wheel DeltaY = %v, want 100", log.events[0].DeltaY)
	}
	scroll := log.events[1]
	if scroll.DeltaY != 100 || scroll.ScrollY != 100 {
		t.Errorf("scroll DeltaY = %v ScrollY = %v, want 100 and 100", scroll.DeltaY, scroll.ScrollY)
	}
	if s.ScrollY() != 100 {
		t.Errorf("ScrollY = %v, want 100", s.ScrollY())
	}
}

func TestScrollEventOnlyWhenPositionChanges(t *testing.T) {
	s := NewHeadlessScene()
	cam := s.NewCamera(Rect{Width: 100, Height: 100})
	cam.SetBounds(Rect{Width: 100, Height: 100})

	var log eventLog
	log.listen(s.Dispatcher(), EventScroll)

	s.InjectWheel(50)
	stepFrames(s, 2)
	if len(log.entries) != 0 {
		t.Errorf("events = %q, want none when clamped", log.String())
	}
}

func TestWheelTargetsHoveredNode(t *testing.T) {
	box := NewBox("box", 100, 100)
	s := newHitScene(box)

	var log eventLog
	log.listen(s.Dispatcher(), EventWheel)

	s.InjectHover(10, 10)
	s.InjectWheel(-20)
	stepFrames(s, 2)
	if log.String() != "wheel:box" {
		t.Errorf("events = %q, want wheel:box", log.String())
	}
	if log.events[0].DeltaY != -20 {
		t.Errorf("DeltaY = %v, want -20", log.events[0].DeltaY)
	}
}

// --- ECS bridge ---

func TestECSBridge(t *testing.T) {
	box := NewBox("box", 100, 100)
	box.EntityID = 7
	other := NewBox("other", 100, 100)
	other.X = 200
	s := newHitScene(box, other)
	store := &recordingStore{}
	s.SetEntityStore(store)

	s.InjectClick(50, 50)
	s.InjectClick(250, 50)
	stepFrames(s, 4)

	var clicks int
	for _, e := range store.events {
		if e.EntityID != 7 {
			t.Errorf("event for EntityID %d should not be forwarded", e.EntityID)
		}
		if e.Type == EventClick {
			clicks++
			if e.LocalX != 50 {
				t.Errorf("LocalX = %v, want 50", e.LocalX)
			}
		}
	}
	if clicks != 1 {
		t.Errorf("clicks forwarded = %d, want 1", clicks)
	}
}

func TestECSBridgeForwardsScroll(t *testing.T) {
	s := NewHeadlessScene()
	store := &recordingStore{}
	s.SetEntityStore(store)

	s.InjectWheel(30)
	stepFrames(s, 1)

	var types []string
	for _, e := range store.events {
		types = append(types, e.Type.String())
	}
	if strings.Join(types, ",") != "wheel,scroll" {
		t.Errorf("forwarded = %v, want [wheel scroll]", types)
	}
}

// --- Benchmarks ---

func BenchmarkHitTest1000Nodes(b *testing.B) {
	s := NewHeadlessScene()
	for i := 0; i < 1000; i++ {
		n := NewBox("", 32, 32)
		n.X = float64(i%40) * 20
		n.Y = float64(i/40) * 20
		s.Root().AddChild(n)
	}
	updateWorldTransform(s.root, identityTransform, 1.0, false)

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		s.hitTest(400, 300)
	}
}
