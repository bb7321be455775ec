package sway

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tanema/gween/ease"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestParseConfigEmpty(t *testing.T) {
	for _, src := range []string{"", "   \n", "\n\n"} {
		cfg, err := ParseConfig([]byte(src))
		if err != nil {
			t.Fatalf("ParseConfig(%q): %v", src, err)
		}
		if cfg.Autoplay.IntervalMS != DefaultConfig().Autoplay.IntervalMS {
			t.Error("empty input should yield defaults")
		}
	}
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
autoplay:
  interval_ms: 3000
  resume_on: scroll,hover-away
progress:
  mode: infinite
carousel:
  ease: inOutQuad
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Autoplay.IntervalMS != 3000 {
		t.Errorf("interval_ms = %d, want 3000", cfg.Autoplay.IntervalMS)
	}
	if cfg.Autoplay.ResumeDelayMS != 5000 {
		t.Errorf("resume_delay_ms = %d, want the default 5000", cfg.Autoplay.ResumeDelayMS)
	}
	if cfg.Progress.Mode != "infinite" || cfg.Carousel.Ease != "inOutQuad" {
		t.Errorf("progress.mode = %q carousel.ease = %q", cfg.Progress.Mode, cfg.Carousel.Ease)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown field", "autoplay:\n  intervl_ms: 10\n"},
		{"wrong type", "frame:\n  hz: fast\n"},
		{"malformed", "autoplay: [\n"},
		{"trailing document", "frame:\n  hz: 30\n---\n{}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.src)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConfigValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"hz", func(c *Config) { c.Frame.Hz = 0 }, "frame.hz"},
		{"threshold", func(c *Config) { c.Visibility.Threshold = 1.5 }, "visibility.threshold"},
		{"progress mode", func(c *Config) { c.Progress.Mode = "sideways" }, "progress.mode"},
		{"progress ease", func(c *Config) { c.Progress.Ease = "wobble" }, "progress.ease"},
		{"triggers", func(c *Config) { c.Engagement.Triggers = "hover,stare" }, "engagement.triggers"},
		{"resume on", func(c *Config) { c.Autoplay.ResumeOn = "nap" }, "autoplay.resume_on"},
		{"item selector", func(c *Config) { c.Autoplay.ItemSelector = "[" }, "autoplay.item_selector"},
		{"page width", func(c *Config) { c.Carousel.PageWidth = 0 }, "carousel.page_width"},
		{"rates", func(c *Config) { c.Media.MaxRate = 0.1 }, "media.max_rate"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("err = %q, want mention of %s", err, tt.field)
			}
		})
	}
}

func TestConfigValidateJoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frame.Hz = -1
	cfg.Media.IdlePauseMS = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "frame.hz") || !strings.Contains(msg, "media.idle_pause_ms") {
		t.Errorf("err = %q, want both problems reported", msg)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SWAY_AUTOPLAY_INTERVAL_MS", "2500")
	t.Setenv("SWAY_ENGAGEMENT_TRIGGERS", "visible")
	t.Setenv("SWAY_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Autoplay.IntervalMS != 2500 {
		t.Errorf("interval_ms = %d, want 2500", cfg.Autoplay.IntervalMS)
	}
	if cfg.Engagement.Triggers != "visible" {
		t.Errorf("triggers = %q, want visible", cfg.Engagement.Triggers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Carousel.PageWidth != DefaultConfig().Carousel.PageWidth {
		t.Error("unset variables should keep their values")
	}
}

func TestApplyEnvBadValue(t *testing.T) {
	t.Setenv("SWAY_FRAME_HZ", "lots")
	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err == nil {
		t.Error("expected error for a non-numeric value")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sway.yaml")
	if err := os.WriteFile(path, []byte("media:\n  idle_pause_ms: 250\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SWAY_MEDIA_MAX_RATE", "4")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Media.IdlePauseMS != 250 || cfg.Media.MaxRate != 4 {
		t.Errorf("media = %+v, want file and env values", cfg.Media)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
	if _, err := LoadConfig(""); err != nil {
		t.Errorf("LoadConfig(\"\") = %v, want defaults", err)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sway.yaml")
	if err := os.WriteFile(path, []byte("frame:\n  hz: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestEaseByName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"", true},
		{"linear", true},
		{"outCubic", true},
		{"in-out-quad", true},
		{"OUTBOUNCE", true},
		{"wobble", false},
	}
	for _, tt := range tests {
		if _, ok := EaseByName(tt.name); ok != tt.ok {
			t.Errorf("EaseByName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
		}
	}
	fn, _ := EaseByName("inQuad")
	if got := fn(0.5, 0, 1, 1); got != ease.InQuad(0.5, 0, 1, 1) {
		t.Errorf("inQuad(0.5) = %v", got)
	}
}

func TestParseProgressMode(t *testing.T) {
	for _, mode := range []ProgressMode{ModeForwardOnly, ModeBackAndForth, ModeInfinite} {
		got, err := ParseProgressMode(mode.String())
		if err != nil || got != mode {
			t.Errorf("ParseProgressMode(%q) = %v, %v", mode.String(), got, err)
		}
	}
	if _, err := ParseProgressMode("FORWARD-ONLY"); err != nil {
		t.Errorf("mode names are case-insensitive: %v", err)
	}
	if _, err := ParseProgressMode("bounce"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"error", slog.LevelError},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"debug", slog.LevelDebug},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseLogLevel("trace"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestConfigConverters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frame.Hz = 30
	cfg.Visibility.RootMargin = 20
	cfg.Engagement.HoverDelayMS = 40

	if cfg.FrameInterval() != time.Second/30 {
		t.Errorf("FrameInterval = %v", cfg.FrameInterval())
	}

	vis := cfg.VisibilityConfig()
	if vis.RootMargin != UniformMargin(20) {
		t.Errorf("RootMargin = %+v", vis.RootMargin)
	}

	pc := cfg.ProgressConfig()
	if pc.Duration != 1200*time.Millisecond || pc.Mode != ModeBackAndForth || pc.Ease == nil {
		t.Errorf("ProgressConfig = %+v", pc)
	}

	ec := cfg.EngagementConfig()
	if ec.Triggers != TriggerHover || ec.HoverDelay != 40*time.Millisecond {
		t.Errorf("EngagementConfig = %+v", ec)
	}
	if ec.UnhoverIntent == nil || ec.UnhoverIntent.Delay != 120*time.Millisecond {
		t.Error("default unhover delay should produce an UnhoverIntent")
	}
	cfg.Engagement.UnhoverDelayMS = 0
	if cfg.EngagementConfig().UnhoverIntent != nil {
		t.Error("zero unhover delay should leave UnhoverIntent unset")
	}

	ac := cfg.AutoplayConfig()
	if ac.Interval != 5*time.Second || ac.ResumeOn != ResumeOnAll || ac.ActiveAttr != DefaultActiveAttr {
		t.Errorf("AutoplayConfig = %+v", ac)
	}
	if ac.ItemSelector.String() != ".slide" || ac.ContainerSelector.String() != ".carousel" {
		t.Errorf("selectors = %q %q", ac.ItemSelector.String(), ac.ContainerSelector.String())
	}

	cc := cfg.CarouselConfig()
	if cc.Transition != 450*time.Millisecond || cc.PageWidth != 640 || cc.Ease == nil {
		t.Errorf("CarouselConfig = %+v", cc)
	}

	mc := cfg.MediaConfig()
	if mc.IdlePause != 180*time.Millisecond || mc.MaxRate != 3 {
		t.Errorf("MediaConfig = %+v", mc)
	}
}

func TestConfigApply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input.DragDeadZone = 12
	cfg.Input.WheelPixelsPerNotch = 60
	cfg.Logging.Level = "error"

	s := NewHeadlessScene()
	cfg.Apply(s)
	if s.input.dragDeadZone != 12 || s.input.wheelPerNotch != 60 {
		t.Errorf("input = %v %v, want 12 and 60", s.input.dragDeadZone, s.input.wheelPerNotch)
	}
	if s.Logger().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("error level logger should not enable warn")
	}
}
