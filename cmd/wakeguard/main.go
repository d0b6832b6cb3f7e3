// wakeguard: drowsiness-monitoring edge client.
//
// Owns a camera, captures frames on demand, submits them to a remote
// inference endpoint, and serves the result on a local dashboard.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/wakeguard/go-wakeguard/internal/config"
	"github.com/wakeguard/go-wakeguard/internal/log"
	"github.com/wakeguard/go-wakeguard/pkg/capture"
	"github.com/wakeguard/go-wakeguard/pkg/detect"
	"github.com/wakeguard/go-wakeguard/pkg/session"
	"github.com/wakeguard/go-wakeguard/pkg/web"
)

func main() {
	cfg := config.Load()
	log.Init(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	detector, err := detect.NewClient(
		detect.WithEndpoint(cfg.Endpoint),
		detect.WithTimeout(cfg.RequestTimeout),
		detect.WithLogger(log.L()),
	)
	if err != nil {
		log.Error("detector setup failed", "error", err)
		os.Exit(1)
	}
	defer detector.Close()

	sess := session.New(sourceFactory(cfg), detector, log.L())
	defer sess.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sess.Init(ctx); err != nil {
		// ErrNoCamera is fatal at startup: the front-facing policy found
		// no devices at all. Open failures stay recoverable - the
		// dashboard stays up and a later /api/capture surfaces the state.
		if errors.Is(err, capture.ErrNoCamera) {
			log.Error("no camera devices found", "error", err)
			os.Exit(1)
		}
		log.Warn("camera init failed, will retry on demand", "error", err)
	}

	server := web.NewServer(cfg.HTTPPort, sess)
	server.StartAsync()

	log.Info("wakeguard running",
		"endpoint", cfg.Endpoint,
		"source", cfg.Source,
		"port", cfg.HTTPPort,
	)

	<-ctx.Done()
	log.Info("shutting down")
	server.Shutdown()
}

// sourceFactory builds the configured image source. The session calls it on
// Init, so a failed camera can be re-acquired without restarting.
func sourceFactory(cfg *config.Config) session.SourceFactory {
	return func() (capture.Source, error) {
		if cfg.Source == config.SourceFile {
			return capture.NewFileSource(cfg.FilePath)
		}

		camCfg := capture.DefaultConfig()
		camCfg.PreferredIndex = cfg.CameraIndex
		camCfg.FrontHint = cfg.FrontHint
		camCfg.Quality = cfg.JPEGQuality
		if cfg.CameraPolicy == config.PolicyFrontFacing {
			camCfg.Policy = capture.SelectFrontFacing
		}
		return capture.NewDeviceCamera(camCfg)
	}
}
