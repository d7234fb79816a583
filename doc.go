// Package gauge lays out and animates an analog dial gauge.
//
// # Overview
//
// A gauge is described by a [Config]. [Layout] turns a config into a
// [Scene]: rim and face circles, colored range bands, minor and major tick
// marks, tick labels, a units readout, a title and a needle. Layout is a pure
// function; identical configs give identical scenes.
//
// Value changes do not relayout. A [Transition] interpolates the needle
// rotation and the units readout between two values over
// [DefaultDuration] with [SineOut] easing, and [Scene.Apply] puts a
// [Frame] on the scene.
//
// # Quick Start
//
//	cfg := gauge.DefaultConfig()
//	cfg.FractionDigits = 1
//
//	g, err := gauge.New(cfg, gauge.WithFrameListener(func(f gauge.Frame) {
//	    fmt.Println(f.Text)
//	}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer g.Close()
//
//	g.SetValue(50) // animates 0 % -> 50.0 % over 300ms
//
// Scenes are drawn by backends from the render package: svg writes SVG
// markup, raster draws PNG images with github.com/gogpu/gg.
//
// # Coordinate System
//
// Scene coordinates put the origin at the top-left of a square of side
// 2*GaugeRadius, X right and Y down. The dial center is (GaugeRadius,
// GaugeRadius). Dial angles are in degrees, 0 pointing straight down and
// increasing clockwise; the default dial runs from 60 to 300 degrees.
//
// # Scheduling
//
// A [Gauge] asks its [Scheduler] for one callback per frame while a
// transition runs and holds at most one pending callback. [ManualScheduler]
// is stepped by the host (an ebiten Update, a test); [TickerScheduler] runs
// its own goroutine only while callbacks are pending.
package gauge

// Version is the current version of the library.
const Version = "0.1.0"
