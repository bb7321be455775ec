package sway

import (
	"fmt"
	"log/slog"
	"time"
)

// debugStats holds per-step timing and scheduler metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	stepTime  time.Duration
	timers    int
	frames    int
	observers int
}

// debugLogger receives warnings from node operations, which lack a Scene
// pointer. Set by SetDebugMode.
var debugLogger = slog.Default()

// debugLog writes step stats through the scene logger.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	s.logger.Debug("step",
		"at", s.loop.Now(),
		"took", stats.stepTime,
		"timers", stats.timers,
		"frames", stats.frames,
		"observers", stats.observers)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("sway debug: %s on disposed node %q", op, n.Name))
	}
}

// debugMaxTreeDepth is the depth above which a warning is logged.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		debugLogger.Warn("tree depth exceeds threshold",
			"depth", depth, "threshold", debugMaxTreeDepth, "node", n.Name)
	}
}

// nopLogger returns l, or the discard logger when l is nil.
func nopLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return discardLogger
}

var discardLogger = slog.New(slog.DiscardHandler)
