package sway

import (
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Host is the runtime a component attaches to: a frame/timer loop, the
// global event dispatcher, a logger and a signal sink. *Scene implements it.
type Host interface {
	Loop() *Loop
	Dispatcher() *Dispatcher
	Logger() *slog.Logger
	Emit(Signal)
}

// SignalKind identifies a component state transition.
type SignalKind uint8

const (
	SignalEngaged          SignalKind = iota // coordinator became engaged
	SignalDisengaged                         // coordinator became disengaged
	SignalVisible                            // observer reported visible
	SignalHidden                             // observer reported not visible
	SignalProgressComplete                   // progress reached 100 (or 0 after a reverse)
	SignalPaused                             // autoplay paused
	SignalResumeScheduled                    // autoplay armed its resume timer
	SignalResumed                            // autoplay resumed
	SignalAdvanced                           // autoplay or carousel moved to a new index
	SignalSnapped                            // carousel snapped from a clone to a real page
	SignalActivated                          // media controller mounted its media
)

var signalNames = [...]string{
	"engaged", "disengaged", "visible", "hidden", "progress-complete",
	"paused", "resume-scheduled", "resumed", "advanced", "snapped", "activated",
}

// String returns a short lowercase name.
func (k SignalKind) String() string {
	if int(k) < len(signalNames) {
		return signalNames[k]
	}
	return "unknown"
}

// Signal is a component state transition, published through Host.Emit.
type Signal struct {
	Kind   SignalKind
	Source string
	Index  int
	Value  float64
	Time   time.Duration
}

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, interaction events and component signals are
// forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
	EmitSignal(signal Signal)
}

// InteractionEvent carries interaction data for the ECS bridge.
type InteractionEvent struct {
	Type      EventType
	EntityID  uint32
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	Modifiers KeyModifiers
	Touch     bool
	// Drag, wheel and scroll fields
	StartX float64
	StartY float64
	DeltaX float64
	DeltaY float64
}

// Scene is the top-level object that owns the node tree, cameras, the
// frame/timer loop, input state and the event dispatcher.
type Scene struct {
	root       *Node
	store      EntityStore
	debug      bool
	logger     *slog.Logger
	loop       *Loop
	dispatcher *Dispatcher

	cameras    []*Camera
	scrollY    float64 // page scroll used when there is no camera
	lastScroll float64 // scroll position last published as EventScroll

	observers []*VisibilityObserver

	input      inputState
	testRunner *TestRunner
}

// NewScene creates a new scene with a pre-created root container, reading
// live input from Ebitengine.
func NewScene() *Scene {
	s := &Scene{
		root:       NewContainer("root"),
		logger:     discardLogger,
		loop:       NewLoop(0),
		dispatcher: NewDispatcher(),
	}
	s.input.source = &ebitenInput{}
	s.input.dragDeadZone = defaultDragDeadZone
	s.input.wheelPerNotch = defaultWheelPixelsPerNotch
	return s
}

// NewHeadlessScene creates a scene that ignores live input. Only injected
// events move pointers, which makes it suitable for tests and servers.
func NewHeadlessScene() *Scene {
	s := NewScene()
	s.input.source = headlessInput{}
	return s
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Loop returns the scene's frame/timer loop.
func (s *Scene) Loop() *Loop {
	return s.loop
}

// Dispatcher returns the scene's global event router.
func (s *Scene) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// Logger returns the scene logger. It never returns nil.
func (s *Scene) Logger() *slog.Logger {
	return s.logger
}

// SetLogger replaces the scene logger. A nil logger discards output.
func (s *Scene) SetLogger(l *slog.Logger) {
	s.logger = nopLogger(l)
}

// Emit publishes a component signal to the logger and the ECS bridge.
func (s *Scene) Emit(sig Signal) {
	sig.Time = s.loop.Now()
	s.logger.Debug("signal",
		"kind", sig.Kind.String(), "source", sig.Source,
		"index", sig.Index, "value", sig.Value, "at", sig.Time)
	if s.store != nil {
		s.store.EmitSignal(sig)
	}
}

// Update advances the scene by one Ebitengine tick.
func (s *Scene) Update() {
	s.Step(time.Second / time.Duration(ebiten.TPS()))
}

// Step advances the scene by dt: timers fire, transforms and cameras update,
// input is processed and routed, visibility is re-evaluated, and finally
// animation-frame callbacks run.
func (s *Scene) Step(dt time.Duration) {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	s.loop.advanceClock(dt)
	if s.testRunner != nil {
		s.testRunner.step(s)
	}

	// Refresh world transforms first so hit testing has accurate positions.
	updateWorldTransform(s.root, identityTransform, 1.0, false)

	secs := float32(dt.Seconds())
	for _, cam := range s.cameras {
		cam.update(secs)
	}
	s.processInput()
	if cur := s.ScrollY(); cur != s.lastScroll {
		ps := &s.input.pointers[0]
		delta := cur - s.lastScroll
		s.lastScroll = cur
		s.fire(EventScroll, nil, nil, Event{
			GlobalX: ps.lastX, GlobalY: ps.lastY,
			DeltaY: delta, ScrollY: cur,
		})
	}

	// Handlers may have moved nodes; only dirty subtrees recompute.
	updateWorldTransform(s.root, identityTransform, 1.0, false)
	s.updateVisibility()

	s.loop.RunFrame()

	if s.debug {
		s.debugLog(debugStats{
			stepTime:  time.Since(t0),
			timers:    s.loop.PendingTimers(),
			frames:    s.loop.PendingFrames(),
			observers: len(s.observers),
		})
	}
}

// ScrollBy scrolls the page by dy pixels. With a camera this moves the
// primary camera (respecting its bounds). The resulting EventScroll is
// published during the next Step.
func (s *Scene) ScrollBy(dy float64) {
	if cam := s.primaryCamera(); cam != nil {
		cam.ScrollBy(dy)
		return
	}
	s.scrollY += dy
}

// ScrollY returns the page scroll position: the world Y at the top edge of
// the primary camera's visible area.
func (s *Scene) ScrollY() float64 {
	if cam := s.primaryCamera(); cam != nil {
		return cam.ScrollTop()
	}
	return s.scrollY
}

// ViewportBounds returns the intersection root used by visibility observers:
// the primary camera's visible bounds, or an empty rect without a camera.
func (s *Scene) ViewportBounds() Rect {
	if cam := s.primaryCamera(); cam != nil {
		return cam.VisibleBounds()
	}
	return Rect{}
}

// NewCamera creates a camera with the given viewport and adds it to the scene.
func (s *Scene) NewCamera(viewport Rect) *Camera {
	cam := newCamera(viewport)
	s.cameras = append(s.cameras, cam)
	if len(s.cameras) == 1 {
		s.lastScroll = s.ScrollY()
	}
	return cam
}

// RemoveCamera removes a camera from the scene.
func (s *Scene) RemoveCamera(cam *Camera) {
	for i, c := range s.cameras {
		if c == cam {
			s.cameras = append(s.cameras[:i], s.cameras[i+1:]...)
			return
		}
	}
}

// Cameras returns the scene's camera list. The returned slice MUST NOT be mutated.
func (s *Scene) Cameras() []*Camera {
	return s.cameras
}

func (s *Scene) primaryCamera() *Camera {
	if len(s.cameras) == 0 {
		return nil
	}
	return s.cameras[0]
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth warnings are logged, and per-step stats are
// logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
	debugLogger = s.logger
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene.
var globalDebug bool
