package sway

import "time"

// Event carries the data for one routed interaction. Field validity depends
// on Type: drag fields for the drag family, DeltaX/DeltaY for wheel and
// scroll, Related for enter/leave.
type Event struct {
	Type EventType
	// Target is the topmost interactable node under the pointer, or nil.
	Target *Node
	// Match is the node the subscription's selector matched: Target or its
	// nearest matching ancestor. Nil for Outside subscriptions.
	Match *Node
	// Related is the node being left (for enter) or entered (for leave).
	Related *Node

	GlobalX, GlobalY float64
	LocalX, LocalY   float64
	StartX, StartY   float64
	DeltaX, DeltaY   float64
	// ScrollY is the primary camera's vertical position after a scroll.
	ScrollY float64

	Button    MouseButton
	PointerID int
	Touch     bool
	Modifiers KeyModifiers
	Time      time.Duration
}

// route is a registered (type, selector, callback) tuple.
type route struct {
	id      uint64
	typ     EventType
	sel     Selector
	outside bool
	fn      func(Event)
	removed bool
}

// Dispatcher is the single global event router. The input pipeline publishes
// each raw event once; subscribers receive it when its target matches (or,
// for Outside subscriptions, does not match) their selector.
type Dispatcher struct {
	routes [eventTypeCount][]*route
	nextID uint64
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscription is the paired teardown for a dispatcher registration.
type Subscription struct {
	r *route
	d *Dispatcher
}

// Remove unregisters the callback so it no longer fires. Safe to call more
// than once and on the zero value.
func (s Subscription) Remove() {
	if s.r == nil || s.r.removed {
		return
	}
	s.r.removed = true
	list := s.d.routes[s.r.typ]
	for i := range list {
		if list[i] == s.r {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			s.d.routes[s.r.typ] = list[:len(list)-1]
			return
		}
	}
}

// Active reports whether the subscription is still registered.
func (s Subscription) Active() bool {
	return s.r != nil && !s.r.removed
}

// Subscriptions collects registrations owned by one component so they can be
// torn down together.
type Subscriptions []Subscription

// Add appends s.
func (ss *Subscriptions) Add(s Subscription) {
	*ss = append(*ss, s)
}

// RemoveAll removes every collected subscription.
func (ss *Subscriptions) RemoveAll() {
	for _, s := range *ss {
		s.Remove()
	}
	*ss = (*ss)[:0]
}

// On registers fn for events of typ whose target is inside sel.
func (d *Dispatcher) On(typ EventType, sel Selector, fn func(Event)) Subscription {
	return d.add(typ, sel, false, fn)
}

// OnOutside registers fn for events of typ whose target is NOT inside sel.
// Events without a target (empty space, wheel, scroll) count as outside.
func (d *Dispatcher) OnOutside(typ EventType, sel Selector, fn func(Event)) Subscription {
	return d.add(typ, sel, true, fn)
}

func (d *Dispatcher) add(typ EventType, sel Selector, outside bool, fn func(Event)) Subscription {
	d.nextID++
	r := &route{id: d.nextID, typ: typ, sel: sel, outside: outside, fn: fn}
	d.routes[typ] = append(d.routes[typ], r)
	return Subscription{r: r, d: d}
}

// Len returns the number of registered routes for typ.
func (d *Dispatcher) Len(typ EventType) int {
	return len(d.routes[typ])
}

// Dispatch routes e to every matching subscriber, in registration order.
// Subscribers removed during dispatch are skipped.
func (d *Dispatcher) Dispatch(e Event) {
	list := d.routes[e.Type]
	if len(list) == 0 {
		return
	}
	snapshot := make([]*route, len(list))
	copy(snapshot, list)
	for _, r := range snapshot {
		if r.removed {
			continue
		}
		if r.sel.MatchesAll() {
			// The universal selector contains everything, including empty space.
			if r.outside {
				continue
			}
			e.Match = e.Target
			r.fn(e)
			continue
		}
		match := r.sel.Closest(e.Target)
		if (match == nil) != r.outside {
			continue
		}
		e.Match = match
		r.fn(e)
	}
}
