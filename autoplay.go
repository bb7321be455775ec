package sway

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

// AutoplayState is the state of an Autoplay.
type AutoplayState uint8

const (
	StateRunning         AutoplayState = iota // advance timer pending
	StatePaused                               // waiting for a resume trigger
	StateResumeScheduled                      // resume timer pending
	StateInert                                // one item or fewer; nothing is ever scheduled
)

var autoplayStateNames = [...]string{"running", "paused", "resume-scheduled", "inert"}

// String returns a short lowercase name.
func (s AutoplayState) String() string {
	if int(s) < len(autoplayStateNames) {
		return autoplayStateNames[s]
	}
	return "unknown"
}

// ResumeTrigger is a set of signals allowed to schedule a resume.
type ResumeTrigger uint8

const (
	ResumeOnScroll       ResumeTrigger = 1 << iota // scrolled past ScrollThreshold
	ResumeOnClickOutside                           // clicked outside ContainerSelector
	ResumeOnHoverAway                              // pointer left every item
	ResumeOnTouchAway                              // touch lifted or moved off every item

	ResumeOnAll = ResumeOnScroll | ResumeOnClickOutside | ResumeOnHoverAway | ResumeOnTouchAway
)

var resumeTriggerNames = []struct {
	t    ResumeTrigger
	name string
}{
	{ResumeOnScroll, "scroll"},
	{ResumeOnClickOutside, "click-outside"},
	{ResumeOnHoverAway, "hover-away"},
	{ResumeOnTouchAway, "touch-away"},
}

// String returns the set as a comma-separated list.
func (t ResumeTrigger) String() string {
	var parts []string
	for _, rn := range resumeTriggerNames {
		if t&rn.t != 0 {
			parts = append(parts, rn.name)
		}
	}
	return strings.Join(parts, ",")
}

// ParseResumeTrigger parses a comma-separated list such as
// "scroll,hover-away". "all" selects every trigger.
func ParseResumeTrigger(s string) (ResumeTrigger, error) {
	var t ResumeTrigger
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "all" {
			t |= ResumeOnAll
			continue
		}
		found := false
		for _, rn := range resumeTriggerNames {
			if rn.name == part {
				t |= rn.t
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown resume trigger %q", part)
		}
	}
	return t, nil
}

// EngageSource identifies the interaction behind Engage or Disengage.
type EngageSource uint8

const (
	SourceHover     EngageSource = iota // pointer enter/leave
	SourceClick                         // click on an item
	SourceTouch                         // touch start/end
	SourceTouchMove                     // touch moving over (or off) an item
)

var engageSourceNames = [...]string{"hover", "click", "touch", "touch-move"}

// String returns a short lowercase name.
func (s EngageSource) String() string {
	if int(s) < len(engageSourceNames) {
		return engageSourceNames[s]
	}
	return "unknown"
}

// stale reports whether the source can be a leftover from the previous
// index, e.g. a pointer already resting where the new slide appears.
func (s EngageSource) stale() bool {
	return s == SourceHover || s == SourceTouchMove
}

// DefaultActiveAttr is the data attribute written on Items and read by
// EngageOnlyOnActiveItem.
const DefaultActiveAttr = "active"

// DefaultAutoplayInterval is used when AutoplayConfig.Interval is not
// positive.
const DefaultAutoplayInterval = 5 * time.Second

// AutoplayConfig configures an Autoplay.
type AutoplayConfig struct {
	// Name identifies the machine in signals and logs.
	Name string
	// Interval between automatic advances.
	Interval time.Duration
	// PauseOnEngage pauses on item hover, click or touch.
	PauseOnEngage bool
	// ResumeDelay is armed when a resume trigger fires.
	ResumeDelay time.Duration
	// IdleQuiet is the minimum time since the last interaction before a
	// scheduled resume may complete.
	IdleQuiet time.Duration
	// GraceWindow ignores hover and touch-move engagement right after an
	// index change.
	GraceWindow time.Duration
	ResumeOn    ResumeTrigger
	// ScrollThreshold is the accumulated scroll distance, in pixels, that
	// counts as a scroll resume trigger.
	ScrollThreshold float64
	// EngageOnlyOnActiveItem ignores engagement on items whose ActiveAttr
	// data attribute is not "true".
	EngageOnlyOnActiveItem bool
	ActiveAttr             string
	// ItemSelector matches the tracked items; ContainerSelector the region
	// outside of which clicks count as click-outside.
	ItemSelector      Selector
	ContainerSelector Selector
	// Items, when set, are the item nodes in index order. The machine keeps
	// ActiveAttr "true" on the current item and "false" on the others.
	Items []*Node
	// OnAdvance runs after every index change, automatic or manual.
	OnAdvance func(index int)
	Logger    *slog.Logger
}

// Autoplay advances an index on a timer and pauses while the user engages
// with the items. Create one with NewAutoplay.
//
// Running → Paused on Pause or engagement. Paused → ResumeScheduled when a
// resume trigger fires. ResumeScheduled → Running once ResumeDelay has
// elapsed and the user has been idle for IdleQuiet; the advance timer then
// restarts from that moment. With one item or fewer the machine is inert.
type Autoplay struct {
	host   Host
	cfg    AutoplayConfig
	logger *slog.Logger

	index int
	total int
	state AutoplayState

	userEngaged       bool
	touchEngaged      bool
	lastInteractionAt time.Duration
	lastIndexChangeAt time.Duration
	indexChanged      bool
	scrollAccum       float64

	advanceTimer *Timer
	resumeTimer  *Timer

	subs     Subscriptions
	disposed bool
}

// NewAutoplay creates a running machine over total items starting at index
// 0, or an inert one when total <= 1.
func NewAutoplay(host Host, total int, cfg AutoplayConfig) *Autoplay {
	if cfg.ActiveAttr == "" {
		cfg.ActiveAttr = DefaultActiveAttr
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultAutoplayInterval
	}
	a := &Autoplay{
		host:   host,
		cfg:    cfg,
		logger: nopLogger(cfg.Logger),
		total:  total,
		state:  StateInert,
	}
	if total > 1 {
		a.state = StateRunning
		a.armAdvance()
	}
	a.markActive()
	return a
}

// State returns the current state.
func (a *Autoplay) State() AutoplayState {
	return a.state
}

// Index returns the current item index.
func (a *Autoplay) Index() int {
	return a.index
}

// Total returns the item count.
func (a *Autoplay) Total() int {
	return a.total
}

// Paused reports whether automatic advancing is suspended, including while
// a resume is scheduled.
func (a *Autoplay) Paused() bool {
	return a.state == StatePaused || a.state == StateResumeScheduled
}

// UserEngaged reports whether the user is currently engaged with an item.
func (a *Autoplay) UserEngaged() bool {
	return a.userEngaged
}

// ResumeScheduled reports whether a resume timer is pending.
func (a *Autoplay) ResumeScheduled() bool {
	return a.state == StateResumeScheduled
}

// LastInteraction returns the loop time of the last user interaction.
func (a *Autoplay) LastInteraction() time.Duration {
	return a.lastInteractionAt
}

// NextAdvance returns when the advance timer fires, if one is pending.
func (a *Autoplay) NextAdvance() (time.Duration, bool) {
	if !a.advanceTimer.Active() {
		return 0, false
	}
	return a.advanceTimer.Deadline(), true
}

// InGraceWindow reports whether stale engagement is currently ignored.
func (a *Autoplay) InGraceWindow() bool {
	return a.indexChanged && a.now()-a.lastIndexChangeAt < a.cfg.GraceWindow
}

// Pause suspends advancing until a resume trigger or Resume.
func (a *Autoplay) Pause() {
	if a.disposed || a.state == StateInert {
		return
	}
	a.lastInteractionAt = a.now()
	if a.state != StatePaused {
		a.pause("explicit")
	}
}

// Resume restarts advancing immediately, with a full interval before the
// next advance.
func (a *Autoplay) Resume() {
	if a.disposed || a.state == StateInert {
		return
	}
	a.userEngaged = false
	a.touchEngaged = false
	a.resume("explicit")
}

// Engage records a user engagement. With PauseOnEngage it pauses a running
// machine and cancels a scheduled resume. Hover and touch-move engagement
// inside the grace window are ignored.
func (a *Autoplay) Engage(src EngageSource) {
	if a.disposed || a.state == StateInert {
		return
	}
	if src.stale() && a.InGraceWindow() {
		a.logger.Debug("autoplay engagement ignored in grace window",
			"name", a.cfg.Name, "source", src.String(), "index", a.index)
		return
	}
	a.lastInteractionAt = a.now()
	a.userEngaged = true
	if src == SourceTouch || src == SourceTouchMove {
		a.touchEngaged = true
	}
	if !a.cfg.PauseOnEngage {
		return
	}
	switch a.state {
	case StateRunning, StateResumeScheduled:
		a.pause(src.String())
	}
}

// Disengage records that the user left every item. When the matching
// resume trigger is enabled a paused machine schedules its resume.
func (a *Autoplay) Disengage(src EngageSource) {
	if a.disposed || a.state == StateInert {
		return
	}
	a.lastInteractionAt = a.now()
	a.userEngaged = false
	trigger := ResumeOnHoverAway
	if src == SourceTouch || src == SourceTouchMove {
		a.touchEngaged = false
		trigger = ResumeOnTouchAway
	}
	if a.cfg.ResumeOn&trigger != 0 {
		a.scheduleResume(trigger)
	}
}

// NoteScroll accumulates scroll distance while paused. Once the total
// reaches ScrollThreshold it counts as a scroll resume trigger.
func (a *Autoplay) NoteScroll(deltaY float64) {
	if a.disposed || !a.Paused() || a.cfg.ResumeOn&ResumeOnScroll == 0 {
		return
	}
	a.scrollAccum += math.Abs(deltaY)
	if a.scrollAccum < a.cfg.ScrollThreshold {
		return
	}
	a.scrollAccum = 0
	a.lastInteractionAt = a.now()
	a.userEngaged = false
	a.scheduleResume(ResumeOnScroll)
}

// NoteClickOutside records a click outside the tracked container.
func (a *Autoplay) NoteClickOutside() {
	if a.disposed || a.state == StateInert || a.cfg.ResumeOn&ResumeOnClickOutside == 0 {
		return
	}
	a.lastInteractionAt = a.now()
	a.userEngaged = false
	a.touchEngaged = false
	a.scheduleResume(ResumeOnClickOutside)
}

// SetIndex jumps to item i (wrapped into range). A running machine restarts
// its advance countdown.
func (a *Autoplay) SetIndex(i int) {
	if a.disposed || a.total <= 0 {
		return
	}
	i = ((i % a.total) + a.total) % a.total
	if i == a.index {
		return
	}
	if a.state == StateRunning {
		a.armAdvance()
	}
	a.setIndex(i)
}

// Next moves to the following item, wrapping.
func (a *Autoplay) Next() {
	a.SetIndex(a.index + 1)
}

// Prev moves to the preceding item, wrapping.
func (a *Autoplay) Prev() {
	a.SetIndex(a.index - 1)
}

// SetTotal changes the item count. Dropping to one item makes the machine
// inert; growing from one starts it running.
func (a *Autoplay) SetTotal(n int) {
	if a.disposed || n == a.total {
		return
	}
	a.total = n
	if n <= 1 {
		a.clearTimers()
		a.state = StateInert
		a.index = 0
		a.markActive()
		return
	}
	if a.index >= n {
		a.setIndex(n - 1)
	}
	if a.state == StateInert {
		a.state = StateRunning
		a.armAdvance()
	}
}

// Attach subscribes the machine to d: hover, click and touch on items
// engage; leaving every item, lifting a touch, clicking outside the
// container and scrolling feed the resume triggers.
func (a *Autoplay) Attach(d *Dispatcher) {
	items := a.cfg.ItemSelector
	a.subs.Add(d.On(EventPointerEnter, items, func(e Event) {
		if items.Closest(e.Related) == e.Match {
			return
		}
		if a.activeOK(e.Match) {
			a.Engage(SourceHover)
		}
	}))
	a.subs.Add(d.On(EventPointerLeave, items, func(e Event) {
		if items.Closest(e.Related) != nil {
			return
		}
		if a.userEngaged && !a.touchEngaged {
			a.Disengage(SourceHover)
		}
	}))
	a.subs.Add(d.On(EventClick, items, func(e Event) {
		if !e.Touch && a.activeOK(e.Match) {
			a.Engage(SourceClick)
		}
	}))
	a.subs.Add(d.On(EventTouchStart, items, func(e Event) {
		if a.activeOK(e.Match) {
			a.Engage(SourceTouch)
		}
	}))
	a.subs.Add(d.On(EventTouchMove, Selector{}, func(e Event) {
		if item := items.Closest(e.Target); item != nil {
			if !a.touchEngaged && a.activeOK(item) {
				a.Engage(SourceTouchMove)
			}
			return
		}
		if a.touchEngaged {
			a.Disengage(SourceTouchMove)
		}
	}))
	a.subs.Add(d.On(EventTouchEnd, Selector{}, func(Event) {
		if a.touchEngaged {
			a.Disengage(SourceTouch)
		}
	}))
	a.subs.Add(d.OnOutside(EventClick, a.cfg.ContainerSelector, func(Event) {
		a.NoteClickOutside()
	}))
	a.subs.Add(d.On(EventScroll, Selector{}, func(e Event) {
		a.NoteScroll(e.DeltaY)
	}))
}

// Dispose clears every timer and subscription.
func (a *Autoplay) Dispose() {
	if a.disposed {
		return
	}
	a.clearTimers()
	a.subs.RemoveAll()
	a.disposed = true
}

func (a *Autoplay) now() time.Duration {
	return a.host.Loop().Now()
}

func (a *Autoplay) activeOK(item *Node) bool {
	if !a.cfg.EngageOnlyOnActiveItem {
		return true
	}
	if item == nil {
		return false
	}
	v, _ := item.Data(a.cfg.ActiveAttr)
	return v == "true"
}

// SetItems replaces the item nodes and marks the current one active. It does
// not change Total.
func (a *Autoplay) SetItems(items []*Node) {
	if a.disposed {
		return
	}
	a.cfg.Items = items
	a.markActive()
}

func (a *Autoplay) markActive() {
	for i, item := range a.cfg.Items {
		item.SetData(a.cfg.ActiveAttr, strconv.FormatBool(i == a.index))
	}
}

func (a *Autoplay) clearTimers() {
	a.advanceTimer.Stop()
	a.advanceTimer = nil
	a.resumeTimer.Stop()
	a.resumeTimer = nil
}

func (a *Autoplay) armAdvance() {
	a.advanceTimer.Stop()
	a.advanceTimer = a.host.Loop().AfterFunc(a.cfg.Interval, a.advance)
}

func (a *Autoplay) advance() {
	a.advanceTimer = nil
	a.armAdvance()
	a.setIndex((a.index + 1) % a.total)
}

func (a *Autoplay) setIndex(i int) {
	a.index = i
	a.lastIndexChangeAt = a.now()
	a.indexChanged = true
	a.markActive()
	a.host.Emit(Signal{Kind: SignalAdvanced, Source: a.cfg.Name, Index: i})
	if a.cfg.OnAdvance != nil {
		a.cfg.OnAdvance(i)
	}
}

func (a *Autoplay) pause(reason string) {
	a.clearTimers()
	a.scrollAccum = 0
	a.state = StatePaused
	a.logger.Debug("autoplay paused", "name", a.cfg.Name, "reason", reason, "index", a.index)
	a.host.Emit(Signal{Kind: SignalPaused, Source: a.cfg.Name, Index: a.index})
}

func (a *Autoplay) scheduleResume(trigger ResumeTrigger) {
	if a.state != StatePaused {
		return
	}
	a.state = StateResumeScheduled
	a.resumeTimer.Stop()
	a.resumeTimer = a.host.Loop().AfterFunc(a.cfg.ResumeDelay, a.tryResume)
	a.logger.Debug("autoplay resume scheduled",
		"name", a.cfg.Name, "trigger", trigger.String(), "delay", a.cfg.ResumeDelay)
	a.host.Emit(Signal{Kind: SignalResumeScheduled, Source: a.cfg.Name, Index: a.index})
}

// tryResume completes a scheduled resume once the user has been idle for
// IdleQuiet, re-arming for the remainder otherwise.
func (a *Autoplay) tryResume() {
	a.resumeTimer = nil
	if a.userEngaged {
		a.state = StatePaused
		return
	}
	quiet := a.now() - a.lastInteractionAt
	if quiet < a.cfg.IdleQuiet {
		a.resumeTimer = a.host.Loop().AfterFunc(a.cfg.IdleQuiet-quiet, a.tryResume)
		return
	}
	a.resume("idle")
}

func (a *Autoplay) resume(reason string) {
	a.clearTimers()
	a.scrollAccum = 0
	a.state = StateRunning
	a.armAdvance()
	a.logger.Debug("autoplay resumed", "name", a.cfg.Name, "reason", reason, "index", a.index)
	a.host.Emit(Signal{Kind: SignalResumed, Source: a.cfg.Name, Index: a.index})
}
