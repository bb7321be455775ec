package sway

import (
	"container/heap"
	"time"
)

// defaultFrameInterval approximates a 60 Hz display refresh.
const defaultFrameInterval = time.Second / 60

// FrameFunc is an animation-frame callback. now is the loop clock at the
// start of the frame.
type FrameFunc func(now time.Duration)

// frameEntry is a single pending animation-frame request.
type frameEntry struct {
	id       uint64
	fn       FrameFunc
	canceled bool
}

// FrameHandle identifies a pending animation-frame request. The zero value is
// a valid handle that refers to nothing.
type FrameHandle struct {
	entry *frameEntry
	loop  *Loop
}

// Cancel removes the request if it has not run yet. Safe to call more than
// once and on the zero handle.
func (h FrameHandle) Cancel() {
	if h.entry == nil || h.entry.canceled {
		return
	}
	h.entry.canceled = true
	h.loop.removeFrame(h.entry)
}

// Pending reports whether the request is still waiting for a frame.
func (h FrameHandle) Pending() bool {
	return h.entry != nil && !h.entry.canceled && h.loop.hasFrame(h.entry)
}

// Timer is a one-shot callback scheduled on the loop clock.
type Timer struct {
	loop     *Loop
	deadline time.Duration
	seq      uint64
	fn       func()
	index    int // heap position, -1 when not scheduled
}

// Stop cancels the timer. It reports whether the timer was pending.
// Calling Stop on a nil timer is a no-op.
func (t *Timer) Stop() bool {
	if t == nil || t.index < 0 {
		return false
	}
	heap.Remove(&t.loop.timers, t.index)
	t.index = -1
	return true
}

// Active reports whether the timer is still scheduled.
func (t *Timer) Active() bool {
	return t != nil && t.index >= 0
}

// Deadline returns the loop time at which the timer fires.
func (t *Timer) Deadline() time.Duration {
	return t.deadline
}

// timerHeap orders timers by deadline, then by scheduling order.
type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// Loop is a single-threaded cooperative scheduler driving animation-frame
// callbacks and timers from a virtual clock. It is advanced by Scene.Update
// (one tick per Ebitengine update) or directly with Step/Advance.
//
// Loop is not safe for concurrent use; everything in sway runs on the game
// goroutine.
type Loop struct {
	now           time.Duration
	frameInterval time.Duration
	frames        []*frameEntry
	timers        timerHeap
	nextID        uint64
	frameCount    uint64
}

// NewLoop creates a loop whose Advance method steps in frameInterval
// increments. A non-positive interval selects 60 Hz.
func NewLoop(frameInterval time.Duration) *Loop {
	if frameInterval <= 0 {
		frameInterval = defaultFrameInterval
	}
	return &Loop{frameInterval: frameInterval}
}

// Now returns the loop clock.
func (l *Loop) Now() time.Duration {
	return l.now
}

// FrameInterval returns the step size used by Advance.
func (l *Loop) FrameInterval() time.Duration {
	return l.frameInterval
}

// FrameCount returns the number of frames run so far.
func (l *Loop) FrameCount() uint64 {
	return l.frameCount
}

// RequestFrame schedules fn to run on the next frame. Requests made while a
// frame is running are deferred to the following frame.
func (l *Loop) RequestFrame(fn FrameFunc) FrameHandle {
	l.nextID++
	e := &frameEntry{id: l.nextID, fn: fn}
	l.frames = append(l.frames, e)
	return FrameHandle{entry: e, loop: l}
}

// AfterFunc schedules fn to run once d has elapsed on the loop clock.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	l.nextID++
	t := &Timer{loop: l, deadline: l.now + d, seq: l.nextID, fn: fn}
	heap.Push(&l.timers, t)
	return t
}

// PendingFrames returns the number of frame callbacks waiting to run.
func (l *Loop) PendingFrames() int {
	return len(l.frames)
}

// PendingTimers returns the number of scheduled timers.
func (l *Loop) PendingTimers() int {
	return len(l.timers)
}

// Step advances the clock by dt, firing due timers, then runs one frame.
func (l *Loop) Step(dt time.Duration) {
	l.advanceClock(dt)
	l.RunFrame()
}

// Advance runs frames until d has elapsed. Steps are split at timer
// deadlines so timers fire at their exact time.
func (l *Loop) Advance(d time.Duration) {
	end := l.now + d
	l.fireDue(l.now)
	for l.now < end {
		step := l.frameInterval
		if rem := end - l.now; rem < step {
			step = rem
		}
		if len(l.timers) > 0 {
			if until := l.timers[0].deadline - l.now; until > 0 && until < step {
				step = until
			}
		}
		l.Step(step)
	}
}

// RunFrame runs every frame callback requested before this call.
func (l *Loop) RunFrame() {
	l.frameCount++
	if len(l.frames) == 0 {
		return
	}
	batch := l.frames
	l.frames = nil
	now := l.now
	for _, e := range batch {
		if e.canceled {
			continue
		}
		e.canceled = true // consumed
		e.fn(now)
	}
}

// advanceClock moves the clock forward, firing timers in deadline order with
// the clock set to each timer's deadline.
func (l *Loop) advanceClock(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	target := l.now + dt
	l.fireDue(target)
	l.now = target
}

func (l *Loop) fireDue(target time.Duration) {
	for len(l.timers) > 0 && l.timers[0].deadline <= target {
		t := heap.Pop(&l.timers).(*Timer)
		t.index = -1
		if t.deadline > l.now {
			l.now = t.deadline
		}
		t.fn()
	}
}

func (l *Loop) removeFrame(e *frameEntry) {
	for i, f := range l.frames {
		if f == e {
			copy(l.frames[i:], l.frames[i+1:])
			l.frames[len(l.frames)-1] = nil
			l.frames = l.frames[:len(l.frames)-1]
			return
		}
	}
}

func (l *Loop) hasFrame(e *frameEntry) bool {
	for _, f := range l.frames {
		if f == e {
			return true
		}
	}
	return false
}

// Task is a self-rescheduling frame callback with an explicit start/cancel
// pair. At most one frame request is outstanding per task.
type Task struct {
	loop   *Loop
	fn     func(now time.Duration) bool
	handle FrameHandle
}

// NewTask creates a task that runs fn every frame while it returns true.
func NewTask(loop *Loop, fn func(now time.Duration) bool) *Task {
	return &Task{loop: loop, fn: fn}
}

// Start schedules the task for the next frame. Any outstanding request is
// canceled first so a task never ticks twice per frame.
func (t *Task) Start() {
	t.handle.Cancel()
	t.handle = t.loop.RequestFrame(t.tick)
}

// Cancel stops the task. Safe to call on a nil task.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.handle.Cancel()
	t.handle = FrameHandle{}
}

// Running reports whether a frame request is outstanding.
func (t *Task) Running() bool {
	return t != nil && t.handle.Pending()
}

func (t *Task) tick(now time.Duration) {
	t.handle = FrameHandle{}
	// fn may have restarted the task itself.
	if t.fn(now) && t.handle.entry == nil {
		t.handle = t.loop.RequestFrame(t.tick)
	}
}
