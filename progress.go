package sway

import (
	"math"
	"time"

	"github.com/tanema/gween/ease"
)

// ProgressMode selects how a Progress responds to engagement.
type ProgressMode uint8

const (
	// ModeForwardOnly rises 0→100 while engaged and holds at 100. Disengaging
	// freezes the value; the caller decides whether to fade out or reset.
	ModeForwardOnly ProgressMode = iota
	// ModeBackAndForth rises while engaged and sweeps back to 0 on its own
	// once disengaged.
	ModeBackAndForth
	// ModeInfinite rises continuously, wrapping 100→0, and halts in place on
	// disengage.
	ModeInfinite
)

var progressModeNames = [...]string{"forward-only", "back-and-forth", "infinite"}

// String returns the config name of the mode.
func (m ProgressMode) String() string {
	if int(m) < len(progressModeNames) {
		return progressModeNames[m]
	}
	return "unknown"
}

// DefaultProgressDuration is used when ProgressConfig.Duration is not positive.
const DefaultProgressDuration = time.Second

// ProgressConfig configures a Progress.
type ProgressConfig struct {
	// Name identifies the engine in signals and logs.
	Name string
	// Duration is the time for a full 0→100 sweep.
	Duration time.Duration
	Mode     ProgressMode
	// Ease shapes Eased and StyleVars.Eased. Nil means linear.
	Ease ease.TweenFunc
	// OnComplete runs when a forward sweep reaches 100 or a reverse sweep
	// reaches 0. Infinite forward sweeps never complete.
	OnComplete func(dir Direction)
	// OnChange runs after every frame that moved the value.
	OnChange func(percent float64)
}

// StyleVars is the fixed set of named values a styling layer maps to
// opacity, transforms or sweep angles.
type StyleVars struct {
	Percent   int
	Decimal   float64
	Eased     float64
	Direction Direction
	Duration  time.Duration
}

// Progress is a time-driven 0–100 scalar advanced by animation frames.
//
// The value is recomputed each frame from an anchor (percent and timestamp
// taken at the last engagement or direction change), so dropped frames never
// slow the sweep down. At most one frame request is outstanding, and an idle
// engine schedules nothing.
type Progress struct {
	host Host
	cfg  ProgressConfig

	percent   float64
	engaged   bool
	reversing bool

	anchorPct float64
	anchorAt  time.Duration
	dir       float64

	hasAnimated bool
	disposed    bool

	task     *Task
	fade     *TweenGroup
	fadeNode *Node
	fadeFrom float64
}

// NewProgress creates an idle engine at 0.
func NewProgress(host Host, cfg ProgressConfig) *Progress {
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultProgressDuration
	}
	p := &Progress{host: host, cfg: cfg}
	p.task = NewTask(host.Loop(), p.tick)
	return p
}

// Percent returns the current value in [0, 100].
func (p *Progress) Percent() float64 {
	return p.percent
}

// Decimal returns Percent/100.
func (p *Progress) Decimal() float64 {
	return p.percent / 100
}

// Eased returns Decimal shaped by the configured ease curve.
func (p *Progress) Eased() float64 {
	d := p.Decimal()
	if p.cfg.Ease == nil {
		return d
	}
	return float64(p.cfg.Ease(float32(d), 0, 1, 1))
}

// Direction reports which way the value is moving (or last moved).
func (p *Progress) Direction() Direction {
	if p.dir < 0 {
		return DirectionReverse
	}
	return DirectionForward
}

// Engaged reports the last value passed to SetEngaged.
func (p *Progress) Engaged() bool {
	return p.engaged
}

// Reversing reports whether a ReverseOnce sweep is in progress.
func (p *Progress) Reversing() bool {
	return p.reversing
}

// IsAnimating reports whether the value is currently moving.
func (p *Progress) IsAnimating() bool {
	return p.task.Running()
}

// HasAnimated reports whether the engine has ever started a sweep.
func (p *Progress) HasAnimated() bool {
	return p.hasAnimated
}

// Mode returns the configured mode.
func (p *Progress) Mode() ProgressMode {
	return p.cfg.Mode
}

// Duration returns the full-sweep duration.
func (p *Progress) Duration() time.Duration {
	return p.cfg.Duration
}

// Style returns the current presentation values.
func (p *Progress) Style() StyleVars {
	return StyleVars{
		Percent:   int(math.Round(p.percent)),
		Decimal:   p.Decimal(),
		Eased:     p.Eased(),
		Direction: p.Direction(),
		Duration:  p.cfg.Duration,
	}
}

// SetEngaged starts or stops the engagement-driven sweep. Engaging cancels
// a ReverseOnce sweep and any fade-out in progress.
func (p *Progress) SetEngaged(engaged bool) {
	if p.disposed || engaged == p.engaged {
		return
	}
	p.sample(p.host.Loop().Now())
	p.engaged = engaged
	if engaged {
		p.reversing = false
		p.cancelFade()
	}
	p.retarget()
}

// ReverseOnce sweeps the current value back to 0 at the normal rate,
// whatever the engagement. It clears engagement, so the sweep always
// completes even when engagement flips faster than a frame.
func (p *Progress) ReverseOnce() {
	if p.disposed {
		return
	}
	p.sample(p.host.Loop().Now())
	p.engaged = false
	p.reversing = p.percent > 0
	p.retarget()
}

// Reset sets the value to 0 and clears the reverse sweep. An engaged engine
// starts again from 0.
func (p *Progress) Reset() {
	if p.disposed {
		return
	}
	p.task.Cancel()
	p.percent = 0
	p.reversing = false
	p.dir = 0
	p.retarget()
	p.changed()
}

// FadeOut tweens node alpha to 0 over d, then restores the alpha and resets
// the engine. It is the usual consumer policy for ForwardOnly sweeps after
// disengagement. Engaging again before the fade ends cancels it.
func (p *Progress) FadeOut(node *Node, d time.Duration) {
	if p.disposed || node == nil {
		return
	}
	p.cancelFade()
	p.fadeNode = node
	p.fadeFrom = node.Alpha
	p.fade = TweenAlpha(node, 0, float32(d.Seconds()), ease.Linear)
	p.fade.Play(p.host.Loop(), func() {
		node.SetAlpha(p.fadeFrom)
		p.fade = nil
		p.fadeNode = nil
		p.Reset()
	})
}

// Fading reports whether a FadeOut is in progress.
func (p *Progress) Fading() bool {
	return p.fade != nil
}

// Dispose cancels every pending frame and fade. The engine keeps its last
// value and ignores further calls.
func (p *Progress) Dispose() {
	if p.disposed {
		return
	}
	p.task.Cancel()
	p.cancelFade()
	p.disposed = true
}

func (p *Progress) cancelFade() {
	if p.fade == nil {
		return
	}
	p.fade.Stop()
	p.fadeNode.SetAlpha(p.fadeFrom)
	p.fade = nil
	p.fadeNode = nil
}

// motion returns the direction the value should move in now: +1, -1 or 0.
func (p *Progress) motion() float64 {
	if p.reversing {
		if p.percent > 0 {
			return -1
		}
		return 0
	}
	switch p.cfg.Mode {
	case ModeInfinite:
		if p.engaged {
			return 1
		}
	case ModeBackAndForth:
		if p.engaged && p.percent < 100 {
			return 1
		}
		if !p.engaged && p.percent > 0 {
			return -1
		}
	default:
		if p.engaged && p.percent < 100 {
			return 1
		}
	}
	return 0
}

// retarget re-anchors at the current value and starts or stops the frame
// task to match the new direction.
func (p *Progress) retarget() {
	p.anchorPct = p.percent
	p.anchorAt = p.host.Loop().Now()
	dir := p.motion()
	if dir == 0 {
		p.task.Cancel()
		return
	}
	p.dir = dir
	p.hasAnimated = true
	if !p.task.Running() {
		p.task.Start()
	}
}

// sample brings percent up to date for time now while a sweep is running.
func (p *Progress) sample(now time.Duration) {
	if p.task.Running() {
		p.settle(p.valueAt(now))
	}
}

func (p *Progress) valueAt(now time.Duration) float64 {
	elapsed := float64(now - p.anchorAt)
	return p.anchorPct + p.dir*100*elapsed/float64(p.cfg.Duration)
}

func (p *Progress) tick(now time.Duration) bool {
	prev := p.percent
	bound := p.settle(p.valueAt(now))
	if p.percent != prev {
		p.changed()
	}
	switch {
	case bound > 0 && p.dir > 0:
		p.complete(DirectionForward)
		return false
	case bound < 0 && p.dir < 0:
		p.reversing = false
		p.complete(DirectionReverse)
		return false
	}
	return true
}

// settle stores v, wrapping or clamping it for the mode.
func (p *Progress) settle(v float64) (bound int) {
	if p.cfg.Mode == ModeInfinite && !p.reversing {
		v = math.Mod(v, 100)
		if v < 0 {
			v += 100
		}
		p.percent = v
		return 0
	}
	switch {
	case v >= 100:
		p.percent = 100
		return 1
	case v <= 0:
		p.percent = 0
		return -1
	}
	p.percent = v
	return 0
}

func (p *Progress) complete(dir Direction) {
	p.host.Emit(Signal{Kind: SignalProgressComplete, Source: p.cfg.Name, Value: p.percent})
	if p.cfg.OnComplete != nil {
		p.cfg.OnComplete(dir)
	}
}

func (p *Progress) changed() {
	if p.cfg.OnChange != nil {
		p.cfg.OnChange(p.percent)
	}
}
