// Package config loads the YAML configuration shared by the gauge binaries.
//
// A file holds the dial (the keys of gauge.Config under "gauge"), the initial
// needle value, animation timing, the live server address and the log level.
// Missing keys keep the values from Default; unknown keys are rejected so
// typos surface at startup.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/gauge"
)

// Easing names accepted by animation.easing.
const (
	EasingSineOut = "sine_out"
	EasingLinear  = "linear"
)

// MaxFPS bounds animation.fps.
const MaxFPS = 240

// File is the top-level YAML document.
type File struct {
	Gauge     gauge.Config    `yaml:"gauge"`
	Value     float64         `yaml:"value"`
	Animation AnimationConfig `yaml:"animation"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type AnimationConfig struct {
	DurationMS int    `yaml:"duration_ms"`
	FPS        int    `yaml:"fps"`
	Easing     string `yaml:"easing"`
}

type ServerConfig struct {
	Listen string `yaml:"listen"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a fully populated File.
func Default() File {
	return File{
		Gauge: gauge.DefaultConfig(),
		Animation: AnimationConfig{
			DurationMS: int(gauge.DefaultDuration / time.Millisecond),
			FPS:        60,
			Easing:     EasingSineOut,
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads and parses a YAML config file. The result is not validated.
func Load(path string) (File, error) {
	if path == "" {
		return File{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return File{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML document on top of Default.
func Parse(data []byte) (File, error) {
	f := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty document: all defaults.
			return f, nil
		}
		return File{}, fmt.Errorf("decode config yaml: %w", err)
	}

	// Only whitespace and comments may follow the document.
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return File{}, errors.New("decode config yaml: unexpected trailing document")
	}

	return f, nil
}

// Validate checks the file after defaults, YAML and flag overrides are
// applied. Gauge errors wrap the gauge package sentinels.
func (f *File) Validate() error {
	if _, err := gauge.Layout(f.Gauge); err != nil {
		return fmt.Errorf("gauge: %w", err)
	}
	if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
		return errors.New("value must be finite")
	}

	if f.Animation.DurationMS < 0 {
		return errors.New("animation.duration_ms must be >= 0")
	}
	if f.Animation.FPS <= 0 || f.Animation.FPS > MaxFPS {
		return fmt.Errorf("animation.fps must be between 1 and %d", MaxFPS)
	}
	switch f.Animation.Easing {
	case "", EasingSineOut, EasingLinear:
	default:
		return fmt.Errorf("animation.easing must be %q or %q", EasingSineOut, EasingLinear)
	}

	if f.Server.Listen == "" {
		return errors.New("server.listen must not be empty")
	}

	if _, err := ParseLogLevel(f.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// Duration returns animation.duration_ms as a time.Duration.
func (a AnimationConfig) Duration() time.Duration {
	return time.Duration(a.DurationMS) * time.Millisecond
}

// FrameInterval returns the time between animation frames.
func (a AnimationConfig) FrameInterval() time.Duration {
	if a.FPS <= 0 {
		return gauge.DefaultFrameInterval
	}
	return time.Second / time.Duration(a.FPS)
}

// EasingFunc resolves animation.easing. Unknown names fall back to sine-out.
func (a AnimationConfig) EasingFunc() gauge.Easing {
	if a.Easing == EasingLinear {
		return gauge.Linear
	}
	return gauge.SineOut
}

// Options returns the gauge options for the animation settings.
func (a AnimationConfig) Options() []gauge.Option {
	return []gauge.Option{
		gauge.WithDuration(a.Duration()),
		gauge.WithEasing(a.EasingFunc()),
	}
}

// FlagOverrides carries command-line values applied on top of a loaded file.
// A nil pointer leaves the field alone; a non-nil one is applied even when
// it holds the zero value.
type FlagOverrides struct {
	Value *float64

	MinVal *float64
	MaxVal *float64
	Units  *string
	Title  *string
	Radius *float64

	DurationMS *int
	FPS        *int
	Easing     *string

	Listen   *string
	LogLevel *string
}

// Apply merges the overrides into f.
func (o FlagOverrides) Apply(f *File) {
	if f == nil {
		return
	}
	if o.Value != nil {
		f.Value = *o.Value
	}

	if o.MinVal != nil {
		f.Gauge.MinVal = *o.MinVal
	}
	if o.MaxVal != nil {
		f.Gauge.MaxVal = *o.MaxVal
	}
	if o.Units != nil {
		f.Gauge.Units = *o.Units
	}
	if o.Title != nil {
		f.Gauge.Title = *o.Title
	}
	if o.Radius != nil {
		f.Gauge.GaugeRadius = *o.Radius
	}

	if o.DurationMS != nil {
		f.Animation.DurationMS = *o.DurationMS
	}
	if o.FPS != nil {
		f.Animation.FPS = *o.FPS
	}
	if o.Easing != nil {
		f.Animation.Easing = *o.Easing
	}

	if o.Listen != nil {
		f.Server.Listen = *o.Listen
	}
	if o.LogLevel != nil {
		f.Logging.Level = *o.LogLevel
	}
}

// ParseLogLevel converts error, warn, info or debug to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	default:
		return 0, fmt.Errorf("invalid log level: %q (must be error, warn, info, or debug)", level)
	}
}

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ExpandPath expands a leading "~" using the user's home directory.
func ExpandPath(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if len(p) >= 2 && (p[1] == '/' || p[1] == '\\') {
		return filepath.Join(home, p[2:])
	}
	return p
}
