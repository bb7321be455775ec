package sway

import (
	"log/slog"
	"math"
	"time"

	"github.com/tanema/gween/ease"
)

// CarouselConfig configures a Carousel.
type CarouselConfig struct {
	// Name identifies the carousel in signals and logs.
	Name string
	// Transition is the duration of an animated page change. Zero changes
	// pages instantly.
	Transition time.Duration
	// Ease shapes the track tween. Nil means ease.OutCubic.
	Ease ease.TweenFunc
	// PageWidth is the horizontal distance between pages.
	PageWidth float64
	// SwipeThreshold is the minimum drag distance that counts as a swipe.
	SwipeThreshold float64
	// Track is the node holding the page sequence side by side. It is moved
	// to -virtualIndex*PageWidth. Optional.
	Track *Node
	// OnSnap runs after an instant jump from a clone to its real page, with
	// the new virtual index.
	OnSnap func(virtual int)
	// OnChange runs when the real index changes.
	OnChange func(real int)
	Logger   *slog.Logger
}

// Carousel maps pageCount real pages onto a virtual index space padded with
// a clone at each end, [last, 0..n-1, first], so navigation can animate past
// either end and then snap back invisibly.
//
// The virtual index is the only stored position; the real index is always
// derived from it. With one page or fewer looping is disabled.
type Carousel struct {
	host   Host
	cfg    CarouselConfig
	logger *slog.Logger

	pages         int
	virtual       int
	transitioning bool
	animated      bool
	snaps         int

	tween    *TweenGroup
	reenable FrameHandle
	subs     Subscriptions
	disposed bool
}

// NewCarousel creates a carousel on the first real page.
func NewCarousel(host Host, pageCount int, cfg CarouselConfig) *Carousel {
	if cfg.Ease == nil {
		cfg.Ease = ease.OutCubic
	}
	c := &Carousel{
		host:     host,
		cfg:      cfg,
		logger:   nopLogger(cfg.Logger),
		pages:    pageCount,
		animated: true,
	}
	if c.Looping() {
		c.virtual = 1
	}
	c.placeTrack()
	return c
}

// Looping reports whether clones are in use (more than one page).
func (c *Carousel) Looping() bool {
	return c.pages > 1
}

// PageCount returns the number of real pages.
func (c *Carousel) PageCount() int {
	return c.pages
}

// Sequence returns the display order as real page indices: the last page,
// every page, then the first page. Without looping it is just the pages.
func (c *Carousel) Sequence() []int {
	if !c.Looping() {
		seq := make([]int, max(c.pages, 0))
		for i := range seq {
			seq[i] = i
		}
		return seq
	}
	seq := make([]int, 0, c.pages+2)
	seq = append(seq, c.pages-1)
	for i := 0; i < c.pages; i++ {
		seq = append(seq, i)
	}
	return append(seq, 0)
}

// VirtualIndex returns the position in Sequence.
func (c *Carousel) VirtualIndex() int {
	return c.virtual
}

// RealIndex returns the page shown, derived from the virtual index. Dots and
// pagination read this, never the virtual index.
func (c *Carousel) RealIndex() int {
	if !c.Looping() {
		return c.virtual
	}
	return (c.virtual - 1 + c.pages) % c.pages
}

// OnClone reports whether the virtual index is on a clone.
func (c *Carousel) OnClone() bool {
	return c.Looping() && (c.virtual == 0 || c.virtual == c.pages+1)
}

// Transitioning reports whether a page change (including the post-snap
// settle frames) is in progress. Navigation is rejected meanwhile.
func (c *Carousel) Transitioning() bool {
	return c.transitioning
}

// Animated reports whether page changes are currently animated. It is false
// for the two frames after a snap, while the jump is presented; renderers
// that ease the track themselves should not ease during that window.
// Navigation is already rejected then, so the flag only affects drawing.
func (c *Carousel) Animated() bool {
	return c.animated
}

// Snaps returns how many clone snaps have happened.
func (c *Carousel) Snaps() int {
	return c.snaps
}

// Offset returns the track X offset for the current virtual index.
func (c *Carousel) Offset() float64 {
	return -float64(c.virtual) * c.cfg.PageWidth
}

// SetPageWidth changes the page spacing and re-places the track.
func (c *Carousel) SetPageWidth(w float64) {
	c.cfg.PageWidth = w
	if !c.transitioning {
		c.placeTrack()
	}
}

// GoNext moves one page forward. It reports whether navigation started.
func (c *Carousel) GoNext() bool {
	return c.goVirtual(c.virtual + 1)
}

// GoPrev moves one page back. It reports whether navigation started.
func (c *Carousel) GoPrev() bool {
	return c.goVirtual(c.virtual - 1)
}

// GoTo moves to a real page. It reports whether navigation started.
func (c *Carousel) GoTo(real int) bool {
	if real < 0 || real >= c.pages {
		return false
	}
	if !c.Looping() {
		return c.goVirtual(real)
	}
	return c.goVirtual(real + 1)
}

// HandleTap navigates from a tap at x within a viewport of width w: the left
// third goes back, the right third forward, the middle does nothing.
func (c *Carousel) HandleTap(x, w float64) bool {
	switch {
	case w <= 0:
		return false
	case x < w/3:
		return c.GoPrev()
	case x > 2*w/3:
		return c.GoNext()
	}
	return false
}

// HandleSwipe navigates from a horizontal drag of dx pixels. Dragging left
// goes forward. Drags shorter than SwipeThreshold are ignored.
func (c *Carousel) HandleSwipe(dx float64) bool {
	if math.Abs(dx) < c.cfg.SwipeThreshold || dx == 0 {
		return false
	}
	if dx < 0 {
		return c.GoNext()
	}
	return c.GoPrev()
}

// Attach wires drag-end (swipe) and click (tap) events on nodes matching
// sel. A non-positive viewportWidth uses the matched node's width.
func (c *Carousel) Attach(d *Dispatcher, sel Selector, viewportWidth float64) {
	c.subs.Add(d.On(EventDragEnd, sel, func(e Event) {
		c.HandleSwipe(e.DeltaX)
	}))
	c.subs.Add(d.On(EventClick, sel, func(e Event) {
		w := viewportWidth
		if w <= 0 {
			w = e.Match.Width
		}
		x, _ := e.Match.WorldToLocal(e.GlobalX, e.GlobalY)
		c.HandleTap(x, w)
	}))
}

// Dispose stops the track tween, the settle frames and every subscription.
func (c *Carousel) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	if c.tween != nil {
		c.tween.Stop()
		c.tween = nil
	}
	c.reenable.Cancel()
	c.subs.RemoveAll()
}

func (c *Carousel) goVirtual(v int) bool {
	if c.disposed || c.transitioning {
		return false
	}
	hi := c.pages - 1
	if c.Looping() {
		hi = c.pages + 1
	}
	if v < 0 || v > hi || v == c.virtual {
		return false
	}
	prevReal := c.RealIndex()
	c.virtual = v
	c.transitioning = true
	if real := c.RealIndex(); real != prevReal {
		c.host.Emit(Signal{Kind: SignalAdvanced, Source: c.cfg.Name, Index: real})
		if c.cfg.OnChange != nil {
			c.cfg.OnChange(real)
		}
	}

	track := c.cfg.Track
	if track == nil || c.cfg.Transition <= 0 {
		c.placeTrack()
		c.transitionEnd()
		return true
	}
	c.tween = TweenPosition(track, c.Offset(), track.Y, float32(c.cfg.Transition.Seconds()), c.cfg.Ease)
	c.tween.Play(c.host.Loop(), c.transitionEnd)
	return true
}

// transitionEnd runs when the track reaches the new page. Landing on a clone
// snaps to the real page it mirrors.
func (c *Carousel) transitionEnd() {
	c.tween = nil
	switch {
	case !c.Looping():
		c.transitioning = false
	case c.virtual == 0:
		c.snapTo(c.pages)
	case c.virtual == c.pages+1:
		c.snapTo(1)
	default:
		c.transitioning = false
	}
}

// snapTo jumps without animation and re-enables animation two frames later,
// once the jump has been presented.
func (c *Carousel) snapTo(v int) {
	from := c.virtual
	c.virtual = v
	c.animated = false
	c.placeTrack()
	c.snaps++
	c.logger.Debug("carousel snapped", "name", c.cfg.Name, "from", from, "to", v)
	c.host.Emit(Signal{Kind: SignalSnapped, Source: c.cfg.Name, Index: c.RealIndex()})
	if c.cfg.OnSnap != nil {
		c.cfg.OnSnap(v)
	}
	loop := c.host.Loop()
	c.reenable = loop.RequestFrame(func(time.Duration) {
		c.reenable = loop.RequestFrame(func(time.Duration) {
			c.reenable = FrameHandle{}
			c.animated = true
			c.transitioning = false
		})
	})
}

func (c *Carousel) placeTrack() {
	if t := c.cfg.Track; t != nil {
		t.X = c.Offset()
		t.MarkDirty()
	}
}
