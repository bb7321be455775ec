package sway

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string  `yaml:"action"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	FromX  float64 `yaml:"fromX,omitempty"`
	FromY  float64 `yaml:"fromY,omitempty"`
	ToX    float64 `yaml:"toX,omitempty"`
	ToY    float64 `yaml:"toY,omitempty"`
	DeltaY float64 `yaml:"deltaY,omitempty"`
	Frames int     `yaml:"frames,omitempty"`
	MS     int     `yaml:"ms,omitempty"`
}

// testScript is the top-level structure for a test script.
type testScript struct {
	Steps []testStep `yaml:"steps"`
}

var testActions = map[string]bool{
	"click": true, "drag": true, "hover": true, "press": true, "release": true,
	"wheel": true, "touch": true, "touchStart": true, "touchMove": true,
	"touchEnd": true, "wait": true,
}

// TestRunner sequences injected input events across frames for automated
// interaction testing. Attach to a Scene via SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	waitUntil time.Duration
	done      bool
}

// LoadTestScript parses a YAML (or JSON) test script and returns a
// TestRunner ready to be attached to a Scene via SetTestRunner.
//
//	steps:
//	  - {action: hover, x: 120, y: 80}
//	  - {action: wait, ms: 500}
//	  - {action: wheel, deltaY: 50}
func LoadTestScript(data []byte) (*TestRunner, error) {
	var script testScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !testActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the scene. The runner's step method
// is called from Scene.Step before input processing each frame.
func (s *Scene) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the test runner by one frame. Called from Scene.Step.
func (r *TestRunner) step(s *Scene) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if s.PendingInjections() > 0 {
		return
	}
	// Count down wait frames.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if s.loop.Now() < r.waitUntil {
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "click":
		s.InjectClick(st.X, st.Y)
	case "press":
		s.InjectPress(st.X, st.Y)
	case "release":
		s.InjectRelease(st.X, st.Y)
	case "hover":
		s.InjectHover(st.X, st.Y)
	case "drag":
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "wheel":
		s.InjectWheel(st.DeltaY)
	case "touch":
		s.InjectTouchStart(st.FromX, st.FromY)
		steps := max(st.Frames, 2) - 2
		for i := 1; i <= steps; i++ {
			t := float64(i) / float64(steps+1)
			s.InjectTouchMove(st.FromX+(st.ToX-st.FromX)*t, st.FromY+(st.ToY-st.FromY)*t)
		}
		s.InjectTouchEnd(st.ToX, st.ToY)
	case "touchStart":
		s.InjectTouchStart(st.X, st.Y)
	case "touchMove":
		s.InjectTouchMove(st.X, st.Y)
	case "touchEnd":
		s.InjectTouchEnd(st.X, st.Y)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
		if st.MS > 0 {
			r.waitUntil = s.loop.Now() + time.Duration(st.MS)*time.Millisecond
		}
	}

	// Check if we've reached the end after executing.
	if r.cursor >= len(r.steps) && r.waitCount == 0 && s.loop.Now() >= r.waitUntil && s.PendingInjections() == 0 {
		r.done = true
	}
}
