// Command gaugeserve serves a live gauge over HTTP.
//
// Open the listen address in a browser to watch the needle; set values with
// the page's form, a WebSocket "set_value" message or
//
//	curl -X POST -d '{"value": 72}' http://127.0.0.1:8080/value
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/gg"

	"github.com/gogpu/gauge"
	"github.com/gogpu/gauge/internal/config"
	"github.com/gogpu/gauge/internal/live"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "gaugeserve:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("gaugeserve", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "YAML config file (defaults when empty)")
		listen     = fs.String("listen", "", "listen address (default: server.listen from config)")
		logLevel   = fs.String("log-level", "", "log level: error, warn, info, debug")
		fps        = fs.Int("fps", 0, "animation frames per second (default: animation.fps from config)")
		pngScale   = fs.Float64("png-scale", 1, "device pixel ratio of /gauge.png")
		version    = fs.Bool("version", false, "print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *version {
		fmt.Println("gaugeserve", gauge.Version)
		return nil
	}

	file := config.Default()
	if *configPath != "" {
		var err error
		if file, err = config.Load(*configPath); err != nil {
			return err
		}
	}

	var overrides config.FlagOverrides
	if *listen != "" {
		overrides.Listen = listen
	}
	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}
	if *fps != 0 {
		overrides.FPS = fps
	}
	overrides.Apply(&file)
	if err := file.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level, _ := config.ParseLogLevel(file.Logging.Level)
	logger := config.NewLogger(os.Stderr, level)
	gauge.SetLogger(logger)
	gg.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := gauge.NewTickerScheduler(file.Animation.FrameInterval())
	defer ticker.Close()

	opts := append(file.Animation.Options(), gauge.WithScheduler(ticker))
	srv, err := live.NewServer(logger, file.Gauge, file.Value, live.Config{PNGScale: *pngScale}, opts...)
	if err != nil {
		return err
	}
	defer srv.Close()

	logger.Debug("configuration",
		"version", gauge.Version,
		"gauge", file.Gauge.ID,
		"value", file.Value,
		"duration", file.Animation.Duration(),
		"fps", file.Animation.FPS)

	if err := srv.ListenAndServe(ctx, file.Server.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("shutting down")
	return nil
}
