package sway

import (
	"errors"
	"log/slog"
	"math"
	"time"
)

var (
	// ErrRateUnsupported is returned by Media.SetPlaybackRate for rates the
	// media cannot play, typically negative ones.
	ErrRateUnsupported = errors.New("sway: playback rate unsupported")
	// ErrPlaybackRejected is returned by Media.Play when playback is refused,
	// e.g. by an autoplay policy.
	ErrPlaybackRejected = errors.New("sway: playback rejected")
)

// Media is the playback surface a MediaController scrubs.
type Media interface {
	Play() error
	Pause()
	Paused() bool
	CurrentTime() time.Duration
	SetCurrentTime(time.Duration)
	PlaybackRate() float64
	SetPlaybackRate(rate float64) error
	Duration() time.Duration
}

// MediaConfig configures a MediaController.
type MediaConfig struct {
	// Name identifies the controller in signals and logs.
	Name string
	// MinRate and MaxRate bound the playback rate magnitude.
	MinRate, MaxRate float64
	// RatePerPixel converts scroll distance per event into playback rate.
	RatePerPixel float64
	// IdlePause pauses playback once no scroll arrived for this long.
	IdlePause time.Duration
	// Mount creates the media on activation. Returning nil leaves the
	// controller on the poster and retries on the next forward scroll.
	Mount  func() Media
	Logger *slog.Logger
}

// MediaController turns scroll deltas into forward or backward playback.
//
// Until activated it shows a poster and no media exists. The first forward
// scroll while visible mounts the media and activates permanently. After
// that, each scroll sets a signed playback rate and re-arms an idle timer
// that pauses playback when scrolling stops.
type MediaController struct {
	host   Host
	cfg    MediaConfig
	logger *slog.Logger

	visible   bool
	activated bool
	media     Media
	rate      float64
	manual    bool
	lastTick  time.Duration

	idleTimer *Timer
	reverse   *Task

	subs      Subscriptions
	unbindVis func()
	disposed  bool
}

// NewMediaController creates a controller showing its poster.
func NewMediaController(host Host, cfg MediaConfig) *MediaController {
	if cfg.MaxRate < cfg.MinRate {
		cfg.MinRate, cfg.MaxRate = cfg.MaxRate, cfg.MinRate
	}
	c := &MediaController{host: host, cfg: cfg, logger: nopLogger(cfg.Logger)}
	c.reverse = NewTask(host.Loop(), c.tickReverse)
	return c
}

// ShowPoster reports whether the poster is showing, i.e. the controller has
// not activated yet.
func (c *MediaController) ShowPoster() bool {
	return !c.activated
}

// Activated reports whether the media has been mounted and activated. It
// never reverts.
func (c *MediaController) Activated() bool {
	return c.activated
}

// Mounted reports whether media exists.
func (c *MediaController) Mounted() bool {
	return c.media != nil
}

// Media returns the mounted media, or nil.
func (c *MediaController) Media() Media {
	return c.media
}

// Visible reports the last visibility passed to SetVisible.
func (c *MediaController) Visible() bool {
	return c.visible
}

// Rate returns the signed playback rate in effect, 0 when idle.
func (c *MediaController) Rate() float64 {
	return c.rate
}

// Rewinding reports whether a backward scrub is in progress.
func (c *MediaController) Rewinding() bool {
	return c.reverse.Running()
}

// ManualRewind reports whether backward playback falls back to stepping the
// playhead each frame.
func (c *MediaController) ManualRewind() bool {
	return c.manual
}

// RateFor maps a scroll delta to a signed playback rate.
func (c *MediaController) RateFor(deltaY float64) float64 {
	if deltaY == 0 {
		return 0
	}
	mag := math.Abs(deltaY) * c.cfg.RatePerPixel
	mag = Range{Min: c.cfg.MinRate, Max: c.cfg.MaxRate}.Clamp(mag)
	if deltaY < 0 {
		return -mag
	}
	return mag
}

// SetVisible reports host visibility. Hiding pauses playback.
func (c *MediaController) SetVisible(visible bool) {
	if c.disposed || visible == c.visible {
		return
	}
	c.visible = visible
	if !visible && c.media != nil {
		c.stop()
	}
}

// BindVisibility drives SetVisible from o.
func (c *MediaController) BindVisibility(o *VisibilityObserver) {
	if c.unbindVis != nil {
		c.unbindVis()
	}
	c.unbindVis = o.OnChange(c.SetVisible)
	c.SetVisible(o.Visible())
}

// Attach subscribes to page scroll events on d.
func (c *MediaController) Attach(d *Dispatcher) {
	c.subs.Add(d.On(EventScroll, Selector{}, func(e Event) {
		c.Scroll(e.DeltaY)
	}))
}

// Scroll handles one scroll delta, positive meaning forward. Hidden hosts
// ignore it.
func (c *MediaController) Scroll(deltaY float64) {
	if c.disposed || deltaY == 0 || !c.visible {
		return
	}
	if !c.activated {
		if deltaY < 0 || !c.activate() {
			return
		}
	}

	rate := c.RateFor(deltaY)
	if rate > 0 {
		c.forward(rate)
	} else {
		c.backward(rate)
	}
	c.idleTimer.Stop()
	c.idleTimer = c.host.Loop().AfterFunc(c.cfg.IdlePause, c.idle)
}

// Dispose stops playback timers and subscriptions. The media is paused but
// left mounted.
func (c *MediaController) Dispose() {
	if c.disposed {
		return
	}
	if c.media != nil {
		c.stop()
	}
	c.idleTimer.Stop()
	c.subs.RemoveAll()
	if c.unbindVis != nil {
		c.unbindVis()
		c.unbindVis = nil
	}
	c.disposed = true
}

func (c *MediaController) activate() bool {
	if c.cfg.Mount == nil {
		return false
	}
	m := c.cfg.Mount()
	if m == nil {
		c.logger.Debug("media mount returned nil", "name", c.cfg.Name)
		return false
	}
	c.media = m
	c.activated = true
	c.logger.Debug("media activated", "name", c.cfg.Name)
	c.host.Emit(Signal{Kind: SignalActivated, Source: c.cfg.Name})
	return true
}

func (c *MediaController) forward(rate float64) {
	c.reverse.Cancel()
	c.manual = false
	if err := c.media.SetPlaybackRate(rate); err != nil {
		c.logger.Debug("media rate rejected", "name", c.cfg.Name, "rate", rate, "err", err)
		return
	}
	c.rate = rate
	c.play()
}

func (c *MediaController) backward(rate float64) {
	if c.media.CurrentTime() <= 0 {
		c.halt()
		return
	}
	c.rate = rate
	err := c.media.SetPlaybackRate(rate)
	switch {
	case err == nil:
		c.manual = false
		c.play()
	case errors.Is(err, ErrRateUnsupported):
		if !c.manual {
			c.logger.Debug("negative rate unsupported, rewinding manually", "name", c.cfg.Name)
		}
		c.manual = true
		c.media.Pause()
	default:
		c.logger.Debug("media rate rejected", "name", c.cfg.Name, "rate", rate, "err", err)
		c.rate = 0
		return
	}
	if !c.reverse.Running() {
		c.lastTick = c.host.Loop().Now()
		c.reverse.Start()
	}
}

// play starts playback, swallowing a rejection so the next scroll retries.
func (c *MediaController) play() {
	if !c.media.Paused() {
		return
	}
	if err := c.media.Play(); err != nil {
		c.logger.Debug("media play rejected", "name", c.cfg.Name, "err", err)
	}
}

// tickReverse steps the playhead back during a manual rewind and halts at 0
// in either mode.
func (c *MediaController) tickReverse(now time.Duration) bool {
	dt := now - c.lastTick
	c.lastTick = now
	if c.manual {
		t := c.media.CurrentTime() - time.Duration(float64(dt)*math.Abs(c.rate))
		if t > 0 {
			c.media.SetCurrentTime(t)
		} else {
			c.media.SetCurrentTime(0)
		}
	}
	if c.media.CurrentTime() <= 0 {
		c.halt()
		return false
	}
	return true
}

// halt stops a backward scrub at the start of the media.
func (c *MediaController) halt() {
	c.stop()
	c.media.SetCurrentTime(0)
}

func (c *MediaController) idle() {
	c.idleTimer = nil
	if c.media != nil {
		c.stop()
	}
}

func (c *MediaController) stop() {
	c.reverse.Cancel()
	c.media.Pause()
	c.manual = false
	c.rate = 0
}
