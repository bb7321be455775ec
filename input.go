package sway

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Constants ---

const (
	maxPointers                = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone        = 4.0 // pixels
	defaultWheelPixelsPerNotch = 50.0
)

// --- Built-in HitShape types ---

// HitShape is used for custom hit testing regions in local coordinates.
type HitShape interface {
	Contains(x, y float64) bool
}

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// HitPolygon is a convex polygon hit area in local coordinates.
// Points must define a convex polygon in either winding order.
type HitPolygon struct {
	Points []Vec2
}

// Contains reports whether (x, y) lies inside a convex polygon using cross-product sign test.
func (p HitPolygon) Contains(x, y float64) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}

	var positive, negative bool
	for i := 0; i < n; i++ {
		x1, y1 := p.Points[i].X, p.Points[i].Y
		j := (i + 1) % n
		x2, y2 := p.Points[j].X, p.Points[j].Y

		cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// --- Per-pointer state ---

type pointerState struct {
	down      bool
	startX    float64
	startY    float64
	lastX     float64
	lastY     float64
	hitNode   *Node
	hoverNode *Node // last node the pointer was hovering over (for enter/leave)
	dragging  bool
	button    MouseButton // button captured at press time
}

// --- Input sources ---

type touchSample struct {
	id   ebiten.TouchID
	x, y float64
}

// inputSource abstracts the platform so the pointer state machine can be
// driven headless in tests.
type inputSource interface {
	cursor() (x, y float64, pressed bool, button MouseButton, ok bool)
	touches(buf []touchSample) []touchSample
	wheel() (dx, dy float64)
	modifiers() KeyModifiers
}

// ebitenInput reads live input from Ebitengine.
type ebitenInput struct {
	ids []ebiten.TouchID
}

func (in *ebitenInput) cursor() (float64, float64, bool, MouseButton, bool) {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		return x, y, true, MouseButtonLeft, true
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		return x, y, true, MouseButtonRight, true
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		return x, y, true, MouseButtonMiddle, true
	}
	return x, y, false, MouseButtonLeft, true
}

func (in *ebitenInput) touches(buf []touchSample) []touchSample {
	in.ids = ebiten.AppendTouchIDs(in.ids[:0])
	for _, id := range in.ids {
		tx, ty := ebiten.TouchPosition(id)
		buf = append(buf, touchSample{id: id, x: float64(tx), y: float64(ty)})
	}
	return buf
}

func (in *ebitenInput) wheel() (float64, float64) {
	return ebiten.Wheel()
}

// headlessInput reports no live input; only injected events move pointers.
type headlessInput struct{}

func (headlessInput) cursor() (float64, float64, bool, MouseButton, bool) {
	return 0, 0, false, MouseButtonLeft, false
}
func (headlessInput) touches(buf []touchSample) []touchSample { return buf }
func (headlessInput) wheel() (float64, float64)               { return 0, 0 }
func (headlessInput) modifiers() KeyModifiers                 { return 0 }

func (in *ebitenInput) modifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// inputState groups the scene's pointer bookkeeping.
type inputState struct {
	source          inputSource
	captured        [maxPointers]*Node
	pointers        [maxPointers]pointerState
	hitBuf          []*Node
	dragDeadZone    float64
	wheelPerNotch   float64
	touchMap        [maxPointers]ebiten.TouchID
	touchUsed       [maxPointers]bool
	touchBuf        []touchSample
	injectQueue     []syntheticEvent
	injectWheelY    float64
	injectWheelSeen bool
}

// CapturePointer routes all events for pointerID to the given node.
func (s *Scene) CapturePointer(pointerID int, node *Node) {
	if pointerID >= 0 && pointerID < maxPointers {
		s.input.captured[pointerID] = node
	}
}

// ReleasePointer stops routing events for pointerID to a captured node.
func (s *Scene) ReleasePointer(pointerID int) {
	if pointerID >= 0 && pointerID < maxPointers {
		s.input.captured[pointerID] = nil
	}
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (s *Scene) SetDragDeadZone(pixels float64) {
	s.input.dragDeadZone = pixels
}

// SetWheelPixelsPerNotch sets how many pixels one wheel notch scrolls.
func (s *Scene) SetWheelPixelsPerNotch(pixels float64) {
	s.input.wheelPerNotch = pixels
}

// HoveredNode returns the node under the mouse pointer as of the last step.
func (s *Scene) HoveredNode() *Node {
	return s.input.pointers[0].hoverNode
}

// --- Hit testing ---

// nodeContainsLocal tests whether (lx, ly) falls inside a node's hit region.
// Uses HitShape if set; otherwise the node's Width/Height box.
func nodeContainsLocal(n *Node, lx, ly float64) bool {
	if n.HitShape != nil {
		return n.HitShape.Contains(lx, ly)
	}
	if n.Width == 0 && n.Height == 0 {
		return false
	}
	return lx >= 0 && lx <= n.Width && ly >= 0 && ly <= n.Height
}

// collectInteractable walks the tree in painter order (DFS, ZIndex-sorted),
// appending hit-testable nodes to buf. Skips Visible=false subtrees and
// Interactable=false subtrees.
func collectInteractable(n *Node, buf []*Node) []*Node {
	if !n.Visible || !n.Interactable {
		return buf
	}
	if n.HitShape != nil || n.Width != 0 || n.Height != 0 {
		buf = append(buf, n)
	}
	for _, child := range sortedChildrenOf(n) {
		buf = collectInteractable(child, buf)
	}
	return buf
}

// hitTest finds the topmost interactable node at (worldX, worldY).
// Returns nil if nothing is hit.
func (s *Scene) hitTest(worldX, worldY float64) *Node {
	s.input.hitBuf = collectInteractable(s.root, s.input.hitBuf[:0])

	// Iterate backward (reverse painter order): topmost node first.
	for i := len(s.input.hitBuf) - 1; i >= 0; i-- {
		n := s.input.hitBuf[i]
		lx, ly := n.WorldToLocal(worldX, worldY)
		if nodeContainsLocal(n, lx, ly) {
			return n
		}
	}
	return nil
}

// --- Input processing ---

// screenToWorld converts screen coordinates to world coordinates using the primary camera.
func screenToWorld(cam *Camera, sx, sy float64) (float64, float64) {
	if cam != nil {
		return cam.ScreenToWorld(sx, sy)
	}
	return sx, sy
}

// processInput is called once per step to handle mouse, touch and wheel
// input. World transforms are already refreshed.
func (s *Scene) processInput() {
	in := &s.input
	mods := in.source.modifiers()
	cam := s.primaryCamera()

	if !s.processInjectedInput(cam, mods) {
		if x, y, pressed, button, ok := in.source.cursor(); ok {
			wx, wy := screenToWorld(cam, x, y)
			s.processPointer(0, wx, wy, pressed, button, mods)
		}
	}
	s.processTouchPointers(cam, mods)

	_, wy := in.source.wheel()
	if in.injectWheelSeen {
		wy = in.injectWheelY
		in.injectWheelY = 0
		in.injectWheelSeen = false
	}
	if wy != 0 {
		// Ebitengine reports wheel-up as positive; pages scroll down
		// (forward) on positive deltas.
		s.processWheel(-wy*in.wheelPerNotch, mods)
	}
}

// processTouchPointers handles touch input (pointers 1-9).
func (s *Scene) processTouchPointers(cam *Camera, mods KeyModifiers) {
	in := &s.input
	in.touchBuf = in.source.touches(in.touchBuf[:0])

	var activeSlots [maxPointers]bool
	for _, t := range in.touchBuf {
		slot := s.touchSlot(t.id)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true
		wx, wy := screenToWorld(cam, t.x, t.y)
		s.processPointer(slot, wx, wy, true, MouseButtonLeft, mods)
	}

	// Release any touch slots that are no longer active. Slots driven by
	// injected touches are released by the injection itself.
	for i := 1; i < maxPointers; i++ {
		if in.touchUsed[i] && !activeSlots[i] {
			ps := &in.pointers[i]
			if ps.down {
				s.processPointer(i, ps.lastX, ps.lastY, false, MouseButtonLeft, mods)
			}
			in.touchUsed[i] = false
			in.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (s *Scene) touchSlot(tid ebiten.TouchID) int {
	in := &s.input
	for i := 1; i < maxPointers; i++ {
		if in.touchUsed[i] && in.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !in.touchUsed[i] && !in.pointers[i].down {
			in.touchUsed[i] = true
			in.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer runs the pointer state machine for a single pointer.
// Pointer 0 is the mouse; every other pointer is a touch.
func (s *Scene) processPointer(pointerID int, wx, wy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	in := &s.input
	ps := &in.pointers[pointerID]
	touch := pointerID != 0

	base := Event{
		GlobalX: wx, GlobalY: wy,
		Button: button, PointerID: pointerID, Touch: touch, Modifiers: mods,
	}

	// Determine target node: captured node or hit test.
	var target *Node
	if in.captured[pointerID] != nil {
		target = in.captured[pointerID]
	} else {
		target = s.hitTest(wx, wy)
	}

	// Hover enter/leave is a mouse concept; touches report start/move/end.
	if !touch && target != ps.hoverNode {
		prev := ps.hoverNode
		if prev != nil {
			s.fire(EventPointerLeave, prev, target, base)
		}
		if target != nil {
			s.fire(EventPointerEnter, target, prev, base)
		}
		ps.hoverNode = target
	}

	if pressed && !ps.down {
		// Just pressed: capture the button for the duration of this interaction.
		ps.down = true
		ps.button = button
		ps.startX, ps.startY = wx, wy
		ps.lastX, ps.lastY = wx, wy
		ps.hitNode = target
		ps.dragging = false

		s.fire(EventPointerDown, target, nil, base)
		if touch {
			s.fire(EventTouchStart, target, nil, base)
		}
	} else if !pressed && ps.down {
		base.Button = ps.button
		if ps.dragging {
			drag := base
			drag.StartX, drag.StartY = ps.startX, ps.startY
			drag.DeltaX, drag.DeltaY = wx-ps.startX, wy-ps.startY
			s.fire(EventDragEnd, ps.hitNode, nil, drag)
		} else if ps.hitNode != nil && ps.hitNode == target {
			s.fire(EventClick, target, nil, base)
		} else if ps.hitNode == nil && target == nil {
			// Clicks on empty space still reach Outside subscribers.
			s.fire(EventClick, nil, nil, base)
		}

		s.fire(EventPointerUp, target, nil, base)
		if touch {
			s.fire(EventTouchEnd, target, nil, base)
		}

		// Auto-release capture.
		in.captured[pointerID] = nil
		ps.down = false
		ps.hitNode = nil
		ps.dragging = false
	} else if pressed && ps.down {
		base.Button = ps.button
		if wx != ps.lastX || wy != ps.lastY {
			if touch {
				s.fire(EventTouchMove, target, ps.hitNode, base)
			}
			if !ps.dragging {
				dx := wx - ps.startX
				dy := wy - ps.startY
				if math.Sqrt(dx*dx+dy*dy) > in.dragDeadZone {
					ps.dragging = true
					drag := base
					drag.StartX, drag.StartY = ps.startX, ps.startY
					drag.DeltaX, drag.DeltaY = dx, dy
					s.fire(EventDragStart, ps.hitNode, nil, drag)
				}
			}
			if ps.dragging {
				drag := base
				drag.StartX, drag.StartY = ps.startX, ps.startY
				drag.DeltaX, drag.DeltaY = wx-ps.lastX, wy-ps.lastY
				s.fire(EventDrag, ps.hitNode, nil, drag)
			}
		}
		ps.lastX, ps.lastY = wx, wy
	} else if wx != ps.lastX || wy != ps.lastY {
		// Hover move.
		s.fire(EventPointerMove, target, nil, base)
		ps.lastX, ps.lastY = wx, wy
	}
}

// processWheel publishes a wheel event and scrolls the primary camera.
// deltaY is in pixels, positive meaning forward (down the page).
func (s *Scene) processWheel(deltaY float64, mods KeyModifiers) {
	ps := &s.input.pointers[0]
	s.fire(EventWheel, ps.hoverNode, nil, Event{
		GlobalX: ps.lastX, GlobalY: ps.lastY,
		DeltaY: deltaY, Modifiers: mods,
	})
	s.ScrollBy(deltaY)
}

// fire fills in local coordinates and time, then routes the event.
func (s *Scene) fire(typ EventType, node, related *Node, e Event) {
	e.Type = typ
	e.Target = node
	e.Related = related
	e.Time = s.loop.Now()
	if node != nil {
		e.LocalX, e.LocalY = node.WorldToLocal(e.GlobalX, e.GlobalY)
	}
	s.dispatcher.Dispatch(e)
	s.emitInteractionEvent(e)
}

// --- ECS bridge ---

func (s *Scene) emitInteractionEvent(e Event) {
	if s.store == nil {
		return
	}
	// Wheel and scroll are page-level gestures and are always forwarded.
	if e.Type != EventWheel && e.Type != EventScroll && (e.Target == nil || e.Target.EntityID == 0) {
		return
	}
	var entityID uint32
	if e.Target != nil {
		entityID = e.Target.EntityID
	}
	s.store.EmitEvent(InteractionEvent{
		Type:      e.Type,
		EntityID:  entityID,
		GlobalX:   e.GlobalX,
		GlobalY:   e.GlobalY,
		LocalX:    e.LocalX,
		LocalY:    e.LocalY,
		Button:    e.Button,
		Modifiers: e.Modifiers,
		Touch:     e.Touch,
		StartX:    e.StartX,
		StartY:    e.StartY,
		DeltaX:    e.DeltaX,
		DeltaY:    e.DeltaY,
	})
}
