package sway

import "testing"

func dispatchTree() (root, card, label, other *Node) {
	root = NewContainer("root")
	card = NewBox("card", 100, 100)
	card.AddClass("card")
	label = NewBox("label", 10, 10)
	other = NewBox("other", 10, 10)
	root.AddChild(card)
	card.AddChild(label)
	root.AddChild(other)
	return
}

func TestDispatchInsideMatchesAncestor(t *testing.T) {
	_, card, label, other := dispatchTree()
	d := NewDispatcher()

	var matches []*Node
	d.On(EventClick, MustSelector(".card"), func(e Event) { matches = append(matches, e.Match) })

	d.Dispatch(Event{Type: EventClick, Target: label})
	d.Dispatch(Event{Type: EventClick, Target: other})
	d.Dispatch(Event{Type: EventClick})

	if len(matches) != 1 || matches[0] != card {
		t.Errorf("matches = %v, want [card]", matches)
	}
}

func TestDispatchOutside(t *testing.T) {
	_, _, label, other := dispatchTree()
	d := NewDispatcher()

	var targets []*Node
	d.OnOutside(EventClick, MustSelector(".card"), func(e Event) {
		if e.Match != nil {
			t.Error("outside events carry no Match")
		}
		targets = append(targets, e.Target)
	})

	d.Dispatch(Event{Type: EventClick, Target: label})
	d.Dispatch(Event{Type: EventClick, Target: other})
	d.Dispatch(Event{Type: EventClick})

	if len(targets) != 2 || targets[0] != other || targets[1] != nil {
		t.Errorf("targets = %v, want [other nil]", targets)
	}
}

func TestDispatchUniversalSelector(t *testing.T) {
	_, _, label, _ := dispatchTree()
	d := NewDispatcher()

	inside, outside := 0, 0
	d.On(EventScroll, Selector{}, func(Event) { inside++ })
	d.OnOutside(EventScroll, Selector{}, func(Event) { outside++ })

	d.Dispatch(Event{Type: EventScroll})
	d.Dispatch(Event{Type: EventScroll, Target: label})

	if inside != 2 {
		t.Errorf("inside = %d, want 2", inside)
	}
	if outside != 0 {
		t.Errorf("outside = %d, want 0", outside)
	}
}

func TestDispatchFiltersByType(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	d.On(EventClick, Selector{}, func(Event) { calls++ })
	d.Dispatch(Event{Type: EventPointerDown})
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestDispatchRegistrationOrder(t *testing.T) {
	d := NewDispatcher()
	var order []int
	for i := 0; i < 3; i++ {
		d.On(EventClick, Selector{}, func(Event) { order = append(order, i) })
	}
	d.Dispatch(Event{Type: EventClick})
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("order = %v, want [0 1 2]", order)
	}
}

func TestSubscriptionRemove(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	sub := d.On(EventClick, Selector{}, func(Event) { calls++ })
	if !sub.Active() || d.Len(EventClick) != 1 {
		t.Fatal("subscription should be active")
	}

	sub.Remove()
	sub.Remove()
	Subscription{}.Remove()

	d.Dispatch(Event{Type: EventClick})
	if calls != 0 {
		t.Errorf("calls = %d after Remove, want 0", calls)
	}
	if sub.Active() || d.Len(EventClick) != 0 {
		t.Error("subscription should be inactive and unregistered")
	}
}

func TestSubscriptionRemovedDuringDispatch(t *testing.T) {
	d := NewDispatcher()
	var second Subscription
	secondCalls := 0
	d.On(EventClick, Selector{}, func(Event) { second.Remove() })
	second = d.On(EventClick, Selector{}, func(Event) { secondCalls++ })

	d.Dispatch(Event{Type: EventClick})
	if secondCalls != 0 {
		t.Errorf("subscriber removed mid-dispatch was called %d times", secondCalls)
	}
}

func TestSubscriptionAddedDuringDispatch(t *testing.T) {
	d := NewDispatcher()
	late := 0
	d.On(EventClick, Selector{}, func(Event) {
		d.On(EventClick, Selector{}, func(Event) { late++ })
	})

	d.Dispatch(Event{Type: EventClick})
	if late != 0 {
		t.Errorf("subscriber added mid-dispatch fired %d times in the same dispatch", late)
	}
	d.Dispatch(Event{Type: EventClick})
	if late != 1 {
		t.Errorf("late = %d, want 1", late)
	}
}

func TestSubscriptionsRemoveAll(t *testing.T) {
	d := NewDispatcher()
	var subs Subscriptions
	calls := 0
	subs.Add(d.On(EventClick, Selector{}, func(Event) { calls++ }))
	subs.Add(d.On(EventWheel, Selector{}, func(Event) { calls++ }))

	subs.RemoveAll()
	d.Dispatch(Event{Type: EventClick})
	d.Dispatch(Event{Type: EventWheel})

	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
	if len(subs) != 0 {
		t.Errorf("len(subs) = %d, want 0", len(subs))
	}
}
