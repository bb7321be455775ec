package sway

// Margin grows (positive) or shrinks (negative) the intersection root on each
// side, like a CSS rootMargin.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// UniformMargin returns a Margin with the same value on every side.
func UniformMargin(v float64) Margin {
	return Margin{Top: v, Right: v, Bottom: v, Left: v}
}

// Expand applies the margin to r.
func (m Margin) Expand(r Rect) Rect {
	return Rect{
		X:      r.X - m.Left,
		Y:      r.Y - m.Top,
		Width:  r.Width + m.Left + m.Right,
		Height: r.Height + m.Top + m.Bottom,
	}
}

// IntersectionRatio returns the fraction of target's area that lies inside
// root, in [0, 1]. A zero-area target counts as fully visible when its origin
// is inside root.
func IntersectionRatio(target, root Rect) float64 {
	area := target.Area()
	if area <= 0 {
		if root.Width > 0 && root.Height > 0 && root.Contains(target.X, target.Y) {
			return 1
		}
		return 0
	}
	ratio := target.Intersection(root).Area() / area
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

// VisibilityConfig configures a VisibilityObserver.
type VisibilityConfig struct {
	// Threshold is the intersection ratio at or above which the node counts
	// as visible. Zero means any overlap.
	Threshold float64
	// RootMargin adjusts the viewport before intersecting.
	RootMargin Margin
	// Once detaches the observer after the first visible report; Visible
	// then stays true.
	Once bool
}

type visibilityListener struct {
	fn func(bool)
}

// VisibilityObserver reports whether a node intersects the scene viewport.
// Create one with Scene.ObserveVisibility.
type VisibilityObserver struct {
	scene     *Scene
	node      *Node
	cfg       VisibilityConfig
	visible   bool
	ratio     float64
	observing bool
	listeners []*visibilityListener
	unhook    func()
}

// ObserveVisibility starts watching node. onChange (optional) fires on every
// transition. A nil or disposed node yields an inert observer that reports
// false and observes nothing.
//
// The observer is evaluated during each Scene step and detaches itself when
// the node is disposed.
func (s *Scene) ObserveVisibility(node *Node, cfg VisibilityConfig, onChange func(bool)) *VisibilityObserver {
	o := &VisibilityObserver{scene: s, node: node, cfg: cfg}
	if onChange != nil {
		o.OnChange(onChange)
	}
	if node == nil || node.IsDisposed() {
		return o
	}
	o.observing = true
	o.unhook = node.OnDispose(o.detach)
	s.observers = append(s.observers, o)
	return o
}

// Visible reports the last evaluated visibility.
func (o *VisibilityObserver) Visible() bool {
	return o.visible
}

// Ratio returns the last evaluated intersection ratio.
func (o *VisibilityObserver) Ratio() float64 {
	return o.ratio
}

// Observing reports whether the observer is still attached.
func (o *VisibilityObserver) Observing() bool {
	return o.observing
}

// Node returns the observed node (possibly nil).
func (o *VisibilityObserver) Node() *Node {
	return o.node
}

// OnChange adds a transition listener and returns a function that removes
// it.
func (o *VisibilityObserver) OnChange(fn func(bool)) (remove func()) {
	l := &visibilityListener{fn: fn}
	o.listeners = append(o.listeners, l)
	return func() {
		for i, x := range o.listeners {
			if x == l {
				o.listeners = append(o.listeners[:i:i], o.listeners[i+1:]...)
				return
			}
		}
	}
}

// Disconnect stops observing. Visible keeps its last value.
func (o *VisibilityObserver) Disconnect() {
	if o.unhook != nil {
		o.unhook()
		o.unhook = nil
	}
	o.detach()
}

func (o *VisibilityObserver) detach() {
	if !o.observing {
		return
	}
	o.observing = false
	o.unhook = nil
	obs := o.scene.observers
	for i, x := range obs {
		if x == o {
			copy(obs[i:], obs[i+1:])
			obs[len(obs)-1] = nil
			o.scene.observers = obs[:len(obs)-1]
			return
		}
	}
}

func (o *VisibilityObserver) evaluate(root Rect) {
	if !o.observing {
		return
	}
	n := o.node
	ratio := 0.0
	if n.Visible && isAncestor(o.scene.root, n) {
		ratio = IntersectionRatio(n.WorldBounds(), o.cfg.RootMargin.Expand(root))
	}
	o.ratio = ratio
	visible := ratio > 0 && ratio >= o.cfg.Threshold
	if visible == o.visible {
		return
	}
	o.visible = visible
	kind := SignalHidden
	if visible {
		kind = SignalVisible
	}
	o.scene.Emit(Signal{Kind: kind, Source: n.Name, Value: ratio})
	for _, l := range o.listeners {
		l.fn(visible)
	}
	if visible && o.cfg.Once {
		o.Disconnect()
	}
}

// updateVisibility evaluates every attached observer against the viewport.
func (s *Scene) updateVisibility() {
	if len(s.observers) == 0 {
		return
	}
	root := s.ViewportBounds()
	batch := make([]*VisibilityObserver, len(s.observers))
	copy(batch, s.observers)
	for _, o := range batch {
		o.evaluate(root)
	}
}
