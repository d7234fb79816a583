// Command gaugeview shows a gauge in a desktop window.
//
// The ebiten game loop drives the needle animation: every Update steps a
// gauge.ManualScheduler, and a frame that moved the needle is rasterized
// again.
//
// Keys:
//
//	Up/Down          change the value by one minor tick
//	PageUp/PageDown  change the value by one major tick
//	Home/End         jump to min_val/max_val
//	O                open a YAML config file
//	Esc/Q            quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"time"

	"github.com/gogpu/gg"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ncruces/zenity"

	"github.com/gogpu/gauge"
	"github.com/gogpu/gauge/internal/config"
	"github.com/gogpu/gauge/raster"
)

type viewer struct {
	sched   *gauge.ManualScheduler
	gauge   *gauge.Gauge
	backend *raster.Backend
	scale   float64

	img     *ebiten.Image
	dirty   bool
	path    string
	lastErr error
}

func newViewer(file config.File, path string, scale float64) (*viewer, error) {
	v := &viewer{
		sched:   gauge.NewManualScheduler(),
		backend: raster.New(raster.WithScale(scale), raster.WithBackground("white")),
		scale:   scale,
		dirty:   true,
		path:    path,
	}

	// Listeners run inside Step or Update, on the game goroutine.
	opts := append(file.Animation.Options(),
		gauge.WithScheduler(v.sched),
		gauge.WithFrameListener(func(gauge.Frame) { v.dirty = true }),
		gauge.WithSceneListener(func(*gauge.Scene) { v.dirty = true }),
	)
	g, err := gauge.New(file.Gauge, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := g.SetValue(file.Value); err != nil {
		return nil, err
	}
	v.gauge = g
	return v, nil
}

func (v *viewer) Update() error {
	cfg := v.gauge.Config()
	value := v.gauge.Value()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		v.setValue(value + cfg.TickSpaceMinVal)
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		v.setValue(value - cfg.TickSpaceMinVal)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		v.setValue(value + cfg.TickSpaceMajVal)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		v.setValue(value - cfg.TickSpaceMajVal)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		v.setValue(cfg.MinVal)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		v.setValue(cfg.MaxVal)
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		if err := v.openConfigDialog(); err != nil {
			v.lastErr = err
		}
	}

	v.sched.Step(time.Now())

	if v.dirty {
		if err := v.redraw(); err != nil {
			return err
		}
	}
	return nil
}

// setValue keeps keyboard input inside the dial.
func (v *viewer) setValue(x float64) {
	cfg := v.gauge.Config()
	lo, hi := math.Min(cfg.MinVal, cfg.MaxVal), math.Max(cfg.MinVal, cfg.MaxVal)
	x = math.Max(lo, math.Min(hi, x))
	if _, err := v.gauge.SetValue(x); err != nil {
		v.lastErr = err
	}
}

func (v *viewer) redraw() error {
	if err := v.backend.Render(v.gauge.Scene()); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if v.img != nil {
		v.img.Deallocate()
	}
	v.img = ebiten.NewImageFromImage(v.backend.Image())
	v.dirty = false
	return nil
}

func (v *viewer) openConfigDialog() error {
	path, err := zenity.SelectFile(
		zenity.Title("Open Gauge Config"),
		zenity.FileFilters{{
			Name:     "YAML",
			Patterns: []string{"*.yaml", "*.yml"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	return v.load(path)
}

func (v *viewer) load(path string) error {
	file, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := file.Validate(); err != nil {
		return err
	}
	if _, err := v.gauge.Update(gauge.Update{Config: &file.Gauge, Value: &file.Value}); err != nil {
		return err
	}
	v.path = path
	v.lastErr = nil

	side := int(math.Ceil(2 * file.Gauge.GaugeRadius * v.scale))
	ebiten.SetWindowSize(side, side+statusHeight)
	return nil
}

const statusHeight = 20

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	if v.img != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(0, statusHeight)
		screen.DrawImage(v.img, op)
	}

	f := v.gauge.Frame()
	status := fmt.Sprintf("%s  target %s", f.Text, gauge.FormatNumber(v.gauge.Value()))
	if v.path != "" {
		status += "  " + v.path
	}
	if v.lastErr != nil {
		status += " | Error: " + v.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 4, 2)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	cfg := v.gauge.Config()
	side := int(math.Ceil(2 * cfg.GaugeRadius * v.scale))
	return side, side + statusHeight
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (defaults when empty)")
		scale      = flag.Float64("scale", 1, "device pixels per gauge unit")
		logLevel   = flag.String("log-level", "", "log level: error, warn, info, debug")
	)
	flag.Parse()
	if !(*scale > 0) {
		log.Fatalf("gaugeview: -scale must be positive")
	}

	file := config.Default()
	if *configPath != "" {
		var err error
		if file, err = config.Load(*configPath); err != nil {
			log.Fatalf("gaugeview: %v", err)
		}
	}
	var overrides config.FlagOverrides
	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}
	overrides.Apply(&file)
	if err := file.Validate(); err != nil {
		log.Fatalf("gaugeview: invalid config: %v", err)
	}

	level, _ := config.ParseLogLevel(file.Logging.Level)
	logger := config.NewLogger(os.Stderr, level)
	gauge.SetLogger(logger)
	gg.SetLogger(logger)

	v, err := newViewer(file, *configPath, *scale)
	if err != nil {
		log.Fatalf("gaugeview: %v", err)
	}
	defer v.gauge.Close()

	ebiten.SetTPS(file.Animation.FPS)
	w, h := v.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("gauge - Up/Down: value, O: open config, Esc/Q: quit")

	if err := ebiten.RunGame(v); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatalf("gaugeview: %v", err)
	}
}
