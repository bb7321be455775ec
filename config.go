package sway

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/tanema/gween/ease"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every Config validation error.
var ErrInvalidConfig = errors.New("sway: invalid config")

// EnvPrefix prefixes every environment override, e.g. SWAY_AUTOPLAY_INTERVAL_MS.
const EnvPrefix = "SWAY_"

// Config is the file representation of every tunable in the engine. Times
// are in milliseconds. The thresholds here are empirical; tune them per page.
type Config struct {
	Frame      FrameConfig          `yaml:"frame" envPrefix:"FRAME_"`
	Input      InputConfig          `yaml:"input" envPrefix:"INPUT_"`
	Visibility VisibilityFileConfig `yaml:"visibility" envPrefix:"VISIBILITY_"`
	Progress   ProgressFileConfig   `yaml:"progress" envPrefix:"PROGRESS_"`
	Engagement EngagementFileConfig `yaml:"engagement" envPrefix:"ENGAGEMENT_"`
	Autoplay   AutoplayFileConfig   `yaml:"autoplay" envPrefix:"AUTOPLAY_"`
	Carousel   CarouselFileConfig   `yaml:"carousel" envPrefix:"CAROUSEL_"`
	Media      MediaFileConfig      `yaml:"media" envPrefix:"MEDIA_"`
	Logging    LoggingConfig        `yaml:"logging" envPrefix:"LOG_"`
}

// FrameConfig sets the loop cadence.
type FrameConfig struct {
	Hz int `yaml:"hz" env:"HZ"`
}

// InputConfig tunes pointer and wheel translation.
type InputConfig struct {
	DragDeadZone        float64 `yaml:"drag_dead_zone" env:"DRAG_DEAD_ZONE"`
	WheelPixelsPerNotch float64 `yaml:"wheel_pixels_per_notch" env:"WHEEL_PIXELS_PER_NOTCH"`
}

// VisibilityFileConfig is the file form of VisibilityConfig.
type VisibilityFileConfig struct {
	Threshold  float64 `yaml:"threshold" env:"THRESHOLD"`
	RootMargin float64 `yaml:"root_margin" env:"ROOT_MARGIN"` // pixels, every side
	Once       bool    `yaml:"once" env:"ONCE"`
}

// ProgressFileConfig is the file form of ProgressConfig.
type ProgressFileConfig struct {
	DurationMS int    `yaml:"duration_ms" env:"DURATION_MS"`
	Mode       string `yaml:"mode" env:"MODE"` // forward-only, back-and-forth, infinite
	Ease       string `yaml:"ease" env:"EASE"`
}

// EngagementFileConfig is the file form of EngagementConfig.
type EngagementFileConfig struct {
	Triggers       string `yaml:"triggers" env:"TRIGGERS"` // e.g. "hover,visible"
	HoverDelayMS   int    `yaml:"hover_delay_ms" env:"HOVER_DELAY_MS"`
	UnhoverDelayMS int    `yaml:"unhover_delay_ms" env:"UNHOVER_DELAY_MS"`
}

// AutoplayFileConfig is the file form of AutoplayConfig. Durations are in
// milliseconds.
type AutoplayFileConfig struct {
	IntervalMS             int     `yaml:"interval_ms" env:"INTERVAL_MS"`
	PauseOnEngage          bool    `yaml:"pause_on_engage" env:"PAUSE_ON_ENGAGE"`
	ResumeDelayMS          int     `yaml:"resume_delay_ms" env:"RESUME_DELAY_MS"`
	IdleQuietMS            int     `yaml:"idle_quiet_ms" env:"IDLE_QUIET_MS"`
	GraceWindowMS          int     `yaml:"grace_window_ms" env:"GRACE_WINDOW_MS"`
	ResumeOn               string  `yaml:"resume_on" env:"RESUME_ON"` // e.g. "scroll,click-outside"
	ScrollThreshold        float64 `yaml:"scroll_threshold" env:"SCROLL_THRESHOLD"`
	EngageOnlyOnActiveItem bool    `yaml:"engage_only_on_active_item" env:"ENGAGE_ONLY_ON_ACTIVE_ITEM"`
	ActiveAttr             string  `yaml:"active_attr" env:"ACTIVE_ATTR"`
	ItemSelector           string  `yaml:"item_selector" env:"ITEM_SELECTOR"`
	ContainerSelector      string  `yaml:"container_selector" env:"CONTAINER_SELECTOR"`
}

// CarouselFileConfig is the file form of CarouselConfig.
type CarouselFileConfig struct {
	TransitionMS   int     `yaml:"transition_ms" env:"TRANSITION_MS"`
	Ease           string  `yaml:"ease" env:"EASE"`
	PageWidth      float64 `yaml:"page_width" env:"PAGE_WIDTH"`
	SwipeThreshold float64 `yaml:"swipe_threshold" env:"SWIPE_THRESHOLD"`
}

// MediaFileConfig is the file form of MediaConfig.
type MediaFileConfig struct {
	MinRate      float64 `yaml:"min_rate" env:"MIN_RATE"`
	MaxRate      float64 `yaml:"max_rate" env:"MAX_RATE"`
	RatePerPixel float64 `yaml:"rate_per_pixel" env:"RATE_PER_PIXEL"`
	IdlePauseMS  int     `yaml:"idle_pause_ms" env:"IDLE_PAUSE_MS"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"` // text or json
}

// DefaultConfig returns a fully-populated Config with defaults.
func DefaultConfig() Config {
	return Config{
		Frame: FrameConfig{Hz: 60},
		Input: InputConfig{
			DragDeadZone:        defaultDragDeadZone,
			WheelPixelsPerNotch: defaultWheelPixelsPerNotch,
		},
		Visibility: VisibilityFileConfig{Threshold: 0},
		Progress: ProgressFileConfig{
			DurationMS: 1200,
			Mode:       ModeBackAndForth.String(),
			Ease:       "linear",
		},
		Engagement: EngagementFileConfig{
			Triggers:       "hover",
			UnhoverDelayMS: 120,
		},
		Autoplay: AutoplayFileConfig{
			IntervalMS:        5000,
			PauseOnEngage:     true,
			ResumeDelayMS:     5000,
			IdleQuietMS:       3000,
			GraceWindowMS:     600,
			ResumeOn:          "all",
			ScrollThreshold:   80,
			ActiveAttr:        DefaultActiveAttr,
			ItemSelector:      ".slide",
			ContainerSelector: ".carousel",
		},
		Carousel: CarouselFileConfig{
			TransitionMS:   450,
			Ease:           "outCubic",
			PageWidth:      640,
			SwipeThreshold: 40,
		},
		Media: MediaFileConfig{
			MinRate:      0.25,
			MaxRate:      3,
			RatePerPixel: 0.02,
			IdlePauseMS:  180,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ParseConfig decodes YAML on top of DefaultConfig. Unknown fields are
// rejected.
func ParseConfig(b []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(b)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}
	// Only whitespace/comments are allowed after the document.
	if err := dec.Decode(&struct{}{}); err == nil {
		return Config{}, errors.New("decode config yaml: unexpected trailing document")
	}
	return cfg, nil
}

// ApplyEnv overlays SWAY_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadConfig reads the YAML file at path (an empty path means defaults),
// applies environment overrides and validates the result.
func LoadConfig(path string) (Config, error) {
	var b []byte
	if path != "" {
		var err error
		b, err = os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	cfg, err := ParseConfig(b)
	if err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks ranges and names. Every error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, invalid(format, args...))
		}
	}

	check(c.Frame.Hz > 0, "frame.hz must be positive, got %d", c.Frame.Hz)
	check(c.Input.DragDeadZone >= 0, "input.drag_dead_zone must be >= 0")
	check(c.Input.WheelPixelsPerNotch > 0, "input.wheel_pixels_per_notch must be positive")

	check(c.Visibility.Threshold >= 0 && c.Visibility.Threshold <= 1,
		"visibility.threshold must be in [0,1], got %g", c.Visibility.Threshold)

	check(c.Progress.DurationMS > 0, "progress.duration_ms must be positive")
	if _, err := ParseProgressMode(c.Progress.Mode); err != nil {
		errs = append(errs, invalid("progress.mode: %v", err))
	}
	if _, ok := EaseByName(c.Progress.Ease); !ok {
		errs = append(errs, invalid("progress.ease: unknown curve %q", c.Progress.Ease))
	}

	if _, err := ParseTrigger(c.Engagement.Triggers); err != nil {
		errs = append(errs, invalid("engagement.triggers: %v", err))
	}
	check(c.Engagement.HoverDelayMS >= 0, "engagement.hover_delay_ms must be >= 0")
	check(c.Engagement.UnhoverDelayMS >= 0, "engagement.unhover_delay_ms must be >= 0")

	a := c.Autoplay
	check(a.IntervalMS > 0, "autoplay.interval_ms must be positive")
	check(a.ResumeDelayMS >= 0, "autoplay.resume_delay_ms must be >= 0")
	check(a.IdleQuietMS >= 0, "autoplay.idle_quiet_ms must be >= 0")
	check(a.GraceWindowMS >= 0, "autoplay.grace_window_ms must be >= 0")
	check(a.ScrollThreshold >= 0, "autoplay.scroll_threshold must be >= 0")
	if _, err := ParseResumeTrigger(a.ResumeOn); err != nil {
		errs = append(errs, invalid("autoplay.resume_on: %v", err))
	}
	if _, err := ParseSelector(a.ItemSelector); err != nil {
		errs = append(errs, invalid("autoplay.item_selector: %v", err))
	}
	if _, err := ParseSelector(a.ContainerSelector); err != nil {
		errs = append(errs, invalid("autoplay.container_selector: %v", err))
	}

	check(c.Carousel.TransitionMS >= 0, "carousel.transition_ms must be >= 0")
	check(c.Carousel.PageWidth > 0, "carousel.page_width must be positive")
	check(c.Carousel.SwipeThreshold >= 0, "carousel.swipe_threshold must be >= 0")
	if _, ok := EaseByName(c.Carousel.Ease); !ok {
		errs = append(errs, invalid("carousel.ease: unknown curve %q", c.Carousel.Ease))
	}

	m := c.Media
	check(m.MinRate > 0, "media.min_rate must be positive")
	check(m.MaxRate >= m.MinRate, "media.max_rate must be >= media.min_rate")
	check(m.RatePerPixel > 0, "media.rate_per_pixel must be positive")
	check(m.IdlePauseMS > 0, "media.idle_pause_ms must be positive")

	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		errs = append(errs, invalid("logging.level: %v", err))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, invalid("logging.format must be text or json, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// FrameInterval returns the loop step for the configured rate.
func (c Config) FrameInterval() time.Duration {
	if c.Frame.Hz <= 0 {
		return defaultFrameInterval
	}
	return time.Second / time.Duration(c.Frame.Hz)
}

// VisibilityConfig converts the visibility section.
func (c Config) VisibilityConfig() VisibilityConfig {
	return VisibilityConfig{
		Threshold:  c.Visibility.Threshold,
		RootMargin: UniformMargin(c.Visibility.RootMargin),
		Once:       c.Visibility.Once,
	}
}

// ProgressConfig converts the progress section. Callbacks are left unset.
func (c Config) ProgressConfig() ProgressConfig {
	mode, _ := ParseProgressMode(c.Progress.Mode)
	fn, _ := EaseByName(c.Progress.Ease)
	return ProgressConfig{
		Duration: ms(c.Progress.DurationMS),
		Mode:     mode,
		Ease:     fn,
	}
}

// EngagementConfig converts the engagement section. A zero unhover delay
// leaves UnhoverIntent unset.
func (c Config) EngagementConfig() EngagementConfig {
	triggers, _ := ParseTrigger(c.Engagement.Triggers)
	cfg := EngagementConfig{
		Triggers:   triggers,
		HoverDelay: ms(c.Engagement.HoverDelayMS),
	}
	if c.Engagement.UnhoverDelayMS > 0 {
		cfg.UnhoverIntent = &UnhoverIntent{Delay: ms(c.Engagement.UnhoverDelayMS)}
	}
	return cfg
}

// AutoplayConfig converts the autoplay section. Selectors that fail to
// parse fall back to the universal selector; Validate reports them.
func (c Config) AutoplayConfig() AutoplayConfig {
	a := c.Autoplay
	resumeOn, _ := ParseResumeTrigger(a.ResumeOn)
	items, _ := ParseSelector(a.ItemSelector)
	container, _ := ParseSelector(a.ContainerSelector)
	return AutoplayConfig{
		Interval:               ms(a.IntervalMS),
		PauseOnEngage:          a.PauseOnEngage,
		ResumeDelay:            ms(a.ResumeDelayMS),
		IdleQuiet:              ms(a.IdleQuietMS),
		GraceWindow:            ms(a.GraceWindowMS),
		ResumeOn:               resumeOn,
		ScrollThreshold:        a.ScrollThreshold,
		EngageOnlyOnActiveItem: a.EngageOnlyOnActiveItem,
		ActiveAttr:             a.ActiveAttr,
		ItemSelector:           items,
		ContainerSelector:      container,
	}
}

// CarouselConfig converts the carousel section. Track and callbacks are
// left unset.
func (c Config) CarouselConfig() CarouselConfig {
	fn, _ := EaseByName(c.Carousel.Ease)
	return CarouselConfig{
		Transition:     ms(c.Carousel.TransitionMS),
		Ease:           fn,
		PageWidth:      c.Carousel.PageWidth,
		SwipeThreshold: c.Carousel.SwipeThreshold,
	}
}

// MediaConfig converts the media section. Mount is left unset.
func (c Config) MediaConfig() MediaConfig {
	return MediaConfig{
		MinRate:      c.Media.MinRate,
		MaxRate:      c.Media.MaxRate,
		RatePerPixel: c.Media.RatePerPixel,
		IdlePause:    ms(c.Media.IdlePauseMS),
	}
}

// Apply configures scene input and logging from c.
func (c Config) Apply(s *Scene) {
	s.SetDragDeadZone(c.Input.DragDeadZone)
	s.SetWheelPixelsPerNotch(c.Input.WheelPixelsPerNotch)
	s.SetLogger(c.Logger())
}

// Logger builds a slog logger writing to stderr at the configured level.
func (c Config) Logger() *slog.Logger {
	level, err := ParseLogLevel(c.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Logging.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// ParseLogLevel converts error, warn, info or debug to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s (must be error, warn, info, or debug)", level)
	}
}

// ParseProgressMode parses forward-only, back-and-forth or infinite.
func ParseProgressMode(s string) (ProgressMode, error) {
	for i, name := range progressModeNames {
		if strings.EqualFold(s, name) {
			return ProgressMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown progress mode %q", s)
}

var easeFuncs = map[string]ease.TweenFunc{
	"linear":     ease.Linear,
	"inquad":     ease.InQuad,
	"outquad":    ease.OutQuad,
	"inoutquad":  ease.InOutQuad,
	"incubic":    ease.InCubic,
	"outcubic":   ease.OutCubic,
	"inoutcubic": ease.InOutCubic,
	"insine":     ease.InSine,
	"outsine":    ease.OutSine,
	"inoutsine":  ease.InOutSine,
	"inexpo":     ease.InExpo,
	"outexpo":    ease.OutExpo,
	"inoutexpo":  ease.InOutExpo,
	"outback":    ease.OutBack,
	"outbounce":  ease.OutBounce,
	"outelastic": ease.OutElastic,
}

// EaseByName resolves a curve name such as "linear" or "inOutQuad"
// (case-insensitive, dashes ignored). The empty name is linear.
func EaseByName(name string) (ease.TweenFunc, bool) {
	key := strings.ToLower(strings.ReplaceAll(name, "-", ""))
	if key == "" {
		return ease.Linear, true
	}
	fn, ok := easeFuncs[key]
	return fn, ok
}
