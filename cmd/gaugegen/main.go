// Command gaugegen renders a gauge to SVG or PNG files.
//
// A single render shows the needle at -value. With -frames N the transition
// from -from to -value is sampled N times and written to numbered files;
// -output must then contain a printf verb such as gauge-%03d.png.
//
// Usage:
//
//	gaugegen -config gauge.yaml -value 72 -output gauge.svg
//	gaugegen -value 72 -frames 19 -output frames/gauge-%02d.png -scale 2
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"

	"github.com/gogpu/gauge"
	"github.com/gogpu/gauge/internal/config"
	_ "github.com/gogpu/gauge/raster" // png
	"github.com/gogpu/gauge/render"
	_ "github.com/gogpu/gauge/svg" // svg
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (defaults when empty)")
		value      = flag.Float64("value", math.NaN(), "needle value (default: value from config)")
		from       = flag.Float64("from", math.NaN(), "transition start value (default: min_val)")
		frames     = flag.Int("frames", 1, "number of transition frames to write")
		format     = flag.String("format", "", "output format: "+strings.Join(render.Names(), ", ")+" (default: from -output extension)")
		output     = flag.String("output", "gauge.svg", "output file, or printf pattern with -frames")
		scale      = flag.Float64("scale", 1, "PNG device pixels per unit")
		background = flag.String("background", "", "PNG background color (default transparent)")
		logLevel   = flag.String("log-level", "", "log level: error, warn, info, debug")
	)
	flag.Parse()

	file := config.Default()
	if *configPath != "" {
		var err error
		if file, err = config.Load(*configPath); err != nil {
			log.Fatalf("gaugegen: %v", err)
		}
	}

	var overrides config.FlagOverrides
	if !math.IsNaN(*value) {
		overrides.Value = value
	}
	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}
	overrides.Apply(&file)
	if err := file.Validate(); err != nil {
		log.Fatalf("gaugegen: invalid config: %v", err)
	}

	level, _ := config.ParseLogLevel(file.Logging.Level)
	logger := config.NewLogger(os.Stderr, level)
	gauge.SetLogger(logger)
	gg.SetLogger(logger)

	start := file.Gauge.MinVal
	if !math.IsNaN(*from) {
		start = *from
	}

	f, err := resolveFormat(*format, *output)
	if err != nil {
		log.Fatalf("gaugegen: %v", err)
	}
	backend := f.New(render.Options{Scale: *scale, Background: *background})

	paths, err := generate(file.Gauge, start, file.Value, file.Animation.EasingFunc(), *frames, *output, backend)
	if err != nil {
		log.Fatalf("gaugegen: %v", err)
	}
	for _, p := range paths {
		logger.Info("wrote", "path", p, "format", f.Name)
	}
}

// resolveFormat picks the -format by name, or else by the -output
// extension.
func resolveFormat(name, output string) (render.Format, error) {
	if name != "" {
		return render.Lookup(name)
	}
	f, err := render.ForPath(output)
	if err != nil {
		return render.Format{}, fmt.Errorf("%w; pass -format (%s)", err, strings.Join(render.Names(), ", "))
	}
	return f, nil
}

// generate lays out cfg once and writes frames samples of the transition
// from -> to. A single frame shows the end state.
func generate(cfg gauge.Config, from, to float64, easing gauge.Easing, frames int, output string, b render.Backend) ([]string, error) {
	if frames < 1 {
		return nil, fmt.Errorf("frames must be >= 1, got %d", frames)
	}
	if frames > 1 && !strings.Contains(output, "%") {
		return nil, fmt.Errorf("output %q needs a printf verb for %d frames", output, frames)
	}

	scene, err := gauge.Layout(cfg)
	if err != nil {
		return nil, err
	}
	tr, err := gauge.NewTransition(from, to, cfg)
	if err != nil {
		return nil, err
	}
	if easing != nil {
		tr.Easing = easing
	}

	paths := make([]string, 0, frames)
	for i := 0; i < frames; i++ {
		t := 1.0
		path := output
		if frames > 1 {
			t = float64(i) / float64(frames-1)
			path = fmt.Sprintf(output, i)
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, err
			}
		}

		if err := b.Render(scene.Apply(tr.At(t))); err != nil {
			return paths, fmt.Errorf("render frame %d: %w", i, err)
		}
		if err := render.SaveToFile(b, path); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
