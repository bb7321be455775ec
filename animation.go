package sway

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup eases one or two float64 fields of a Node toward end values.
// Drive it with Update or hand it to a Loop with Play. Each step writes the
// fields and marks the node dirty. A disposed target stops the group
// without further writes.
type TweenGroup struct {
	tweens   []*gween.Tween
	fields   []*float64
	target   *Node
	duration float32
	Done     bool
	// Interrupted is set when the group stopped before finishing, because the
	// target was disposed or Stop was called.
	Interrupted bool

	task *Task
}

// newTweenGroup tweens each field from its current value to the matching
// entry of ends.
func newTweenGroup(node *Node, duration float32, fn ease.TweenFunc, fields []*float64, ends ...float64) *TweenGroup {
	g := &TweenGroup{target: node, duration: duration, fields: fields}
	for i, f := range fields {
		g.tweens = append(g.tweens, gween.New(float32(*f), float32(ends[i]), duration, fn))
	}
	return g
}

// Update advances the group by dt seconds.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done, g.Interrupted = true, true
		return
	}
	done := true
	for i, tw := range g.tweens {
		v, finished := tw.Update(dt)
		*g.fields[i] = float64(v)
		done = done && finished
	}
	g.Done = done
	g.touch()
}

func (g *TweenGroup) touch() {
	if g.target != nil {
		g.target.MarkDirty()
	}
}

// Play drives the group from loop animation frames, using the loop clock for
// dt. onDone (optional) runs once when every tween has finished; it does not
// run when the group is interrupted.
func (g *TweenGroup) Play(loop *Loop, onDone func()) {
	g.task.Cancel()
	last := loop.Now()
	g.task = NewTask(loop, func(now time.Duration) bool {
		dt := now - last
		last = now
		g.Update(float32(dt.Seconds()))
		if !g.Done {
			return true
		}
		if !g.Interrupted && onDone != nil {
			onDone()
		}
		return false
	})
	g.task.Start()
}

// Playing reports whether the group is being driven by a loop.
func (g *TweenGroup) Playing() bool {
	return g.task.Running()
}

// Stop halts the group where it is. Fields keep their current values.
func (g *TweenGroup) Stop() {
	g.task.Cancel()
	if !g.Done {
		g.Done = true
		g.Interrupted = true
	}
}

// Finish jumps every field to its end value and stops without calling the
// Play callback.
func (g *TweenGroup) Finish() {
	g.task.Cancel()
	if g.Done {
		return
	}
	for i, tw := range g.tweens {
		v, _ := tw.Set(g.duration)
		*g.fields[i] = float64(v)
	}
	g.Done = true
	g.touch()
}

// TweenPosition moves node to (toX, toY).
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn, []*float64{&node.X, &node.Y}, toX, toY)
}

// TweenScale scales node to (toSX, toSY).
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn, []*float64{&node.ScaleX, &node.ScaleY}, toSX, toSY)
}

// TweenAlpha fades node to the given alpha.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn, []*float64{&node.Alpha}, to)
}
