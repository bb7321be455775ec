package sway

import (
	"fmt"
	"time"
)

// SimMedia is a Media whose playhead is advanced by a Loop. It stands in
// for a real decoder in tests, examples and headless hosts.
type SimMedia struct {
	// AllowNegativeRate accepts negative playback rates. When false,
	// SetPlaybackRate returns ErrRateUnsupported for them.
	AllowNegativeRate bool
	// RejectPlays makes the next RejectPlays calls to Play fail with
	// ErrPlaybackRejected.
	RejectPlays int

	loop     *Loop
	duration time.Duration
	current  time.Duration
	rate     float64
	paused   bool
	plays    int
	last     time.Duration
	task     *Task
}

// NewSimMedia creates paused media of the given length at time 0, rate 1.
func NewSimMedia(loop *Loop, duration time.Duration) *SimMedia {
	m := &SimMedia{loop: loop, duration: duration, rate: 1, paused: true}
	m.task = NewTask(loop, m.tick)
	return m
}

// Play starts advancing the playhead.
func (m *SimMedia) Play() error {
	m.plays++
	if m.RejectPlays > 0 {
		m.RejectPlays--
		return ErrPlaybackRejected
	}
	if !m.paused {
		return nil
	}
	m.paused = false
	m.last = m.loop.Now()
	m.task.Start()
	return nil
}

// Pause stops the playhead.
func (m *SimMedia) Pause() {
	m.paused = true
	m.task.Cancel()
}

// Paused reports whether the playhead is stopped.
func (m *SimMedia) Paused() bool {
	return m.paused
}

// PlayCalls returns how many times Play was called, including rejected
// attempts.
func (m *SimMedia) PlayCalls() int {
	return m.plays
}

// CurrentTime returns the playhead position.
func (m *SimMedia) CurrentTime() time.Duration {
	return m.current
}

// SetCurrentTime moves the playhead, clamped to [0, Duration].
func (m *SimMedia) SetCurrentTime(t time.Duration) {
	m.current = min(max(t, 0), m.duration)
}

// PlaybackRate returns the current rate.
func (m *SimMedia) PlaybackRate() float64 {
	return m.rate
}

// SetPlaybackRate sets the rate. Negative rates fail unless
// AllowNegativeRate is set.
func (m *SimMedia) SetPlaybackRate(rate float64) error {
	if rate < 0 && !m.AllowNegativeRate {
		return fmt.Errorf("%w: %g", ErrRateUnsupported, rate)
	}
	m.rate = rate
	return nil
}

// Duration returns the media length.
func (m *SimMedia) Duration() time.Duration {
	return m.duration
}

// tick advances the playhead, pausing at either end.
func (m *SimMedia) tick(now time.Duration) bool {
	dt := now - m.last
	m.last = now
	m.SetCurrentTime(m.current + time.Duration(float64(dt)*m.rate))
	if (m.rate > 0 && m.current >= m.duration) || (m.rate < 0 && m.current <= 0) {
		m.paused = true
		return false
	}
	return true
}
