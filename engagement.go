package sway

import (
	"fmt"
	"strings"
	"time"
)

// Trigger is a set of engagement sources.
type Trigger uint8

const (
	TriggerHover      Trigger = 1 << iota // pointer hover or touch hold
	TriggerVisible                        // node in the viewport
	TriggerAlways                         // always engaged
	TriggerControlled                     // an external boolean owned by the caller
)

var triggerNames = []struct {
	t    Trigger
	name string
}{
	{TriggerHover, "hover"},
	{TriggerVisible, "visible"},
	{TriggerAlways, "always"},
	{TriggerControlled, "controlled"},
}

// Has reports whether every trigger in x is set.
func (t Trigger) Has(x Trigger) bool {
	return t&x == x
}

// String returns the set as a comma-separated list, e.g. "hover,visible".
func (t Trigger) String() string {
	var parts []string
	for _, tn := range triggerNames {
		if t.Has(tn.t) {
			parts = append(parts, tn.name)
		}
	}
	return strings.Join(parts, ",")
}

// ParseTrigger parses a comma-separated trigger list.
func ParseTrigger(s string) (Trigger, error) {
	var t Trigger
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		found := false
		for _, tn := range triggerNames {
			if tn.name == part {
				t |= tn.t
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown trigger %q", part)
		}
	}
	return t, nil
}

// EngagementInputs are the raw sources the engaged flag is derived from.
type EngagementInputs struct {
	Hovered    bool
	InView     bool
	Controlled bool
}

// Engaged resolves the inputs against the enabled triggers. A source only
// counts when its trigger is enabled; TriggerAlways needs no source.
func Engaged(triggers Trigger, in EngagementInputs) bool {
	return triggers.Has(TriggerAlways) ||
		(triggers.Has(TriggerHover) && in.Hovered) ||
		(triggers.Has(TriggerControlled) && in.Controlled) ||
		(triggers.Has(TriggerVisible) && in.InView)
}

// UnhoverIntent delays committing a hover exit so brief pointer flicker
// across a gap does not disengage. Re-entering within Delay cancels the exit.
type UnhoverIntent struct {
	Delay time.Duration
	// OnCommit runs when the exit is committed.
	OnCommit func()
	// OnCancel runs when the pointer returned before Delay elapsed.
	OnCancel func()
}

// EngagementConfig configures a Coordinator.
type EngagementConfig struct {
	// Name identifies the coordinator in signals.
	Name     string
	Triggers Trigger
	// HoverDelay debounces hover enter.
	HoverDelay    time.Duration
	UnhoverIntent *UnhoverIntent
	// OnEngage and OnDisengage run once per transition, on the frame the
	// transition is observed.
	OnEngage    func()
	OnDisengage func()
}

type engagementListener struct {
	fn func(bool)
}

// Coordinator merges hover, visibility, an always-on flag and a controlled
// flag into one engaged signal with one-frame edge flags.
type Coordinator struct {
	host Host
	cfg  EngagementConfig
	in   EngagementInputs

	prev           bool
	justEngaged    bool
	justDisengaged bool

	hoverTimer   *Timer
	unhoverTimer *Timer
	touching     bool
	task         *Task

	subs      Subscriptions
	unbindVis func()
	listeners []*engagementListener
	disposed  bool
}

// NewCoordinator creates a coordinator with all inputs false. With
// TriggerAlways the engage edge is reported on the first frame.
func NewCoordinator(host Host, cfg EngagementConfig) *Coordinator {
	c := &Coordinator{host: host, cfg: cfg}
	c.task = NewTask(host.Loop(), c.tick)
	if c.Engaged() {
		c.task.Start()
	}
	return c
}

// Engaged derives the engaged flag from the current inputs.
func (c *Coordinator) Engaged() bool {
	return Engaged(c.cfg.Triggers, c.in)
}

// Inputs returns the current committed inputs.
func (c *Coordinator) Inputs() EngagementInputs {
	return c.in
}

// Triggers returns the enabled triggers.
func (c *Coordinator) Triggers() Trigger {
	return c.cfg.Triggers
}

// JustEngaged is true for exactly one frame after engagement begins.
func (c *Coordinator) JustEngaged() bool {
	return c.justEngaged
}

// JustDisengaged is true for exactly one frame after engagement ends.
func (c *Coordinator) JustDisengaged() bool {
	return c.justDisengaged
}

// OnChange registers fn to run on every engaged transition, after
// OnEngage/OnDisengage. The returned function unregisters it.
func (c *Coordinator) OnChange(fn func(engaged bool)) (remove func()) {
	l := &engagementListener{fn: fn}
	c.listeners = append(c.listeners, l)
	return func() {
		for i, x := range c.listeners {
			if x == l {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// HoverPending reports whether a delayed hover enter is waiting.
func (c *Coordinator) HoverPending() bool {
	return c.hoverTimer.Active()
}

// UnhoverPending reports whether a hover exit is waiting to be committed.
func (c *Coordinator) UnhoverPending() bool {
	return c.unhoverTimer.Active()
}

// SetHovered reports pointer hover. Enter honours HoverDelay; exit honours
// UnhoverIntent.
func (c *Coordinator) SetHovered(hovered bool) {
	if c.disposed {
		return
	}
	if hovered {
		if c.unhoverTimer.Stop() {
			c.unhoverTimer = nil
			if ui := c.cfg.UnhoverIntent; ui != nil && ui.OnCancel != nil {
				ui.OnCancel()
			}
			return
		}
		if c.in.Hovered || c.hoverTimer.Active() {
			return
		}
		if c.cfg.HoverDelay > 0 {
			c.hoverTimer = c.host.Loop().AfterFunc(c.cfg.HoverDelay, func() {
				c.hoverTimer = nil
				c.setInput(func(in *EngagementInputs) { in.Hovered = true })
			})
			return
		}
		c.setInput(func(in *EngagementInputs) { in.Hovered = true })
		return
	}

	// A pending enter is simply dropped.
	if c.hoverTimer.Stop() {
		c.hoverTimer = nil
	}
	if !c.in.Hovered || c.unhoverTimer.Active() {
		return
	}
	if ui := c.cfg.UnhoverIntent; ui != nil && ui.Delay > 0 {
		c.unhoverTimer = c.host.Loop().AfterFunc(ui.Delay, func() {
			c.unhoverTimer = nil
			c.setInput(func(in *EngagementInputs) { in.Hovered = false })
			if ui.OnCommit != nil {
				ui.OnCommit()
			}
		})
		return
	}
	c.setInput(func(in *EngagementInputs) { in.Hovered = false })
	if ui := c.cfg.UnhoverIntent; ui != nil && ui.OnCommit != nil {
		ui.OnCommit()
	}
}

// SetInView reports viewport visibility.
func (c *Coordinator) SetInView(inView bool) {
	c.setInput(func(in *EngagementInputs) { in.InView = inView })
}

// SetControlled sets the externally controlled flag.
func (c *Coordinator) SetControlled(active bool) {
	c.setInput(func(in *EngagementInputs) { in.Controlled = active })
}

// BindHover drives SetHovered from pointer enter/leave on nodes matching
// sel, and from touches that start on them. Moving between descendants of
// the same matched node does not count as leaving.
func (c *Coordinator) BindHover(d *Dispatcher, sel Selector) {
	c.subs.Add(d.On(EventPointerEnter, sel, func(e Event) {
		if sel.Closest(e.Related) == e.Match {
			return
		}
		c.SetHovered(true)
	}))
	c.subs.Add(d.On(EventPointerLeave, sel, func(e Event) {
		if sel.Closest(e.Related) == e.Match {
			return
		}
		c.SetHovered(false)
	}))
	c.subs.Add(d.On(EventTouchStart, sel, func(Event) {
		c.touching = true
		c.SetHovered(true)
	}))
	c.subs.Add(d.On(EventTouchEnd, Selector{}, func(Event) {
		if c.touching {
			c.touching = false
			c.SetHovered(false)
		}
	}))
}

// BindVisibility drives SetInView from o.
func (c *Coordinator) BindVisibility(o *VisibilityObserver) {
	if c.unbindVis != nil {
		c.unbindVis()
	}
	c.unbindVis = o.OnChange(c.SetInView)
	c.SetInView(o.Visible())
}

// Dispose cancels timers, the edge task and every binding.
func (c *Coordinator) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.hoverTimer.Stop()
	c.unhoverTimer.Stop()
	c.task.Cancel()
	c.subs.RemoveAll()
	if c.unbindVis != nil {
		c.unbindVis()
		c.unbindVis = nil
	}
}

func (c *Coordinator) setInput(update func(*EngagementInputs)) {
	if c.disposed {
		return
	}
	update(&c.in)
	if c.Engaged() != c.prev && !c.task.Running() {
		c.task.Start()
	}
}

// tick diffs the engaged flag against the previous frame. It keeps running
// one extra frame after an edge so the edge flags clear.
func (c *Coordinator) tick(time.Duration) bool {
	cur := c.Engaged()
	c.justEngaged = cur && !c.prev
	c.justDisengaged = !cur && c.prev
	c.prev = cur
	switch {
	case c.justEngaged:
		c.host.Emit(Signal{Kind: SignalEngaged, Source: c.cfg.Name})
		if c.cfg.OnEngage != nil {
			c.cfg.OnEngage()
		}
	case c.justDisengaged:
		c.host.Emit(Signal{Kind: SignalDisengaged, Source: c.cfg.Name})
		if c.cfg.OnDisengage != nil {
			c.cfg.OnDisengage()
		}
	default:
		return false
	}
	for _, l := range c.listeners {
		l.fn(cur)
	}
	return true
}
