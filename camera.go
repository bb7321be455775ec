package sway

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim is an active ScrollTo, one tween per axis.
type scrollAnim struct {
	x, y         *gween.Tween
	xDone, yDone bool
}

// advance moves c along the tweens and reports whether both have finished.
func (a *scrollAnim) advance(c *Camera, dt float32) bool {
	if !a.xDone {
		v, done := a.x.Update(dt)
		c.X, a.xDone = float64(v), done
	}
	if !a.yDone {
		v, done := a.y.Update(dt)
		c.Y, a.yDone = float64(v), done
	}
	return a.xDone && a.yDone
}

// Camera controls the view into the scene: position, zoom and viewport. The
// primary camera (the first one created) is the page viewport: wheel input
// scrolls it and visibility observers intersect against its visible bounds.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect

	// BoundsEnabled clamps the camera so the visible area stays within
	// Bounds, the page extent in world space.
	BoundsEnabled bool
	Bounds        Rect

	viewMatrix    [6]float64
	invViewMatrix [6]float64
	dirty         bool

	scrollTween *scrollAnim
}

// newCamera creates a Camera with default values and the given viewport,
// positioned so world (0, 0) sits at the viewport's top-left corner.
func newCamera(viewport Rect) *Camera {
	return &Camera{
		X:        viewport.Width / 2,
		Y:        viewport.Height / 2,
		Zoom:     1.0,
		Viewport: viewport,
		dirty:    true,
	}
}

// halfExtent returns half the visible width and height in world units.
func (c *Camera) halfExtent() (hw, hh float64) {
	return c.Viewport.Width / (2 * c.Zoom), c.Viewport.Height / (2 * c.Zoom)
}

// ScrollTop returns the world Y of the top edge of the visible area: the
// page scroll offset.
func (c *Camera) ScrollTop() float64 {
	_, hh := c.halfExtent()
	return c.Y - hh
}

// ScrollTo animates the camera to center on a world position over duration
// seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	c.scrollTween = &scrollAnim{
		x: gween.New(float32(c.X), float32(x), duration, easeFn),
		y: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// ScrollBy moves the camera down the page by dy world units, clamped to
// bounds. It cancels any ScrollTo in progress.
func (c *Camera) ScrollBy(dy float64) {
	c.scrollTween = nil
	c.Y += dy
	if c.BoundsEnabled {
		c.clampToBounds()
	}
	c.dirty = true
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool {
	return c.scrollTween != nil
}

// SetBounds enables bounds clamping and clamps immediately.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
	c.clampToBounds()
	c.dirty = true
}

// ClearBounds disables bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// update advances a ScrollTo and re-applies bounds. Called once per scene
// step.
func (c *Camera) update(dt float32) {
	prevX, prevY := c.X, c.Y
	if c.scrollTween != nil && c.scrollTween.advance(c, dt) {
		c.scrollTween = nil
	}
	if c.BoundsEnabled {
		c.clampToBounds()
	}
	if c.X != prevX || c.Y != prevY {
		c.dirty = true
	}
}

// clampToBounds keeps the visible area inside Bounds. An axis on which the
// bounds are smaller than the view is centered instead.
func (c *Camera) clampToBounds() {
	hw, hh := c.halfExtent()
	c.X = clampAxis(c.X, c.Bounds.X, c.Bounds.Width, hw)
	c.Y = clampAxis(c.Y, c.Bounds.Y, c.Bounds.Height, hh)
}

func clampAxis(center, start, size, half float64) float64 {
	r := Range{Min: start + half, Max: start + size - half}
	if r.Min > r.Max {
		return start + size/2
	}
	return r.Clamp(center)
}

// computeViewMatrix rebuilds the cached view matrix when dirty:
// Translate(viewport center) * Scale(zoom) * Translate(-X, -Y).
func (c *Camera) computeViewMatrix() {
	if !c.dirty {
		return
	}
	c.dirty = false
	z := c.Zoom
	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2
	c.viewMatrix = [6]float64{z, 0, 0, z, cx - z*c.X, cy - z*c.Y}
	c.invViewMatrix = invertAffine(c.viewMatrix)
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	c.computeViewMatrix()
	return transformPoint(c.viewMatrix, wx, wy)
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.computeViewMatrix()
	return transformPoint(c.invViewMatrix, sx, sy)
}

// VisibleBounds returns the camera's visible area in world space.
func (c *Camera) VisibleBounds() Rect {
	hw, hh := c.halfExtent()
	return Rect{X: c.X - hw, Y: c.Y - hh, Width: 2 * hw, Height: 2 * hh}
}

// MarkDirty forces a recomputation of the view matrix.
func (c *Camera) MarkDirty() {
	c.dirty = true
}
