package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/frudas24/knobicon/internal/app"
	"github.com/frudas24/knobicon/internal/assets"
	"github.com/frudas24/knobicon/internal/config"
	"github.com/frudas24/knobicon/internal/mjpeg"
	"github.com/frudas24/knobicon/internal/session"
	"github.com/frudas24/knobicon/internal/widget"
)

// ServeCmd runs the HTTP server.
type ServeCmd struct {
	Debug     bool   `help:"Enable verbose debug logging"`
	StaticDir string `help:"Serve UI files from this directory instead of the embedded copy" type:"path"`
}

// Run wires the application and blocks until shutdown.
func (c *ServeCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := setupLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat, c.Debug)
	logger.Debug("debug logging enabled")

	wcfg, err := config.LoadWidgetFile(cfg.WidgetFile)
	if err != nil {
		return fmt.Errorf("widget file %s: %w", cfg.WidgetFile, err)
	}
	logStartup(logger, cfg, wcfg)

	w, err := widget.New(wcfg.KnobImage, wcfg.PointerImage, wcfg.Options())
	if err != nil {
		return err
	}

	sess := session.NewOpen()
	if cfg.PasswordMode {
		sess = session.New(cfg.UIPassword)
	}
	display := mjpeg.NewDisplay(time.Duration(cfg.MJPEGIntervalMs)*time.Millisecond, cfg.MJPEGQuality, logger.With("component", "mjpeg"))

	appInstance, err := app.New(cfg, sess, w, assets.NewFileLoader(wcfg.Dir), display, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := appInstance.Start(ctx); err != nil {
		return err
	}
	defer appInstance.Stop()

	if cfg.WatchAssets {
		knobPath, pointerPath := wcfg.ImagePaths()
		changes, err := assets.NewWatcher(logger.With("component", "assets"), knobPath, pointerPath).Watch(ctx)
		if err != nil {
			logger.Warn("asset watching disabled", "error", err)
		} else {
			go appInstance.WatchAssets(ctx, changes)
		}
	}

	mux := http.NewServeMux()
	appInstance.RegisterRoutes(mux, c.StaticDir)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// logStartup reports configuration checks and connection info.
func logStartup(logger *slog.Logger, cfg config.Config, wcfg config.Widget) {
	logger.Info("Knobicon starting")
	logEnvStatus(logger, cfg)
	knobPath, pointerPath := wcfg.ImagePaths()
	logger.Info("widget", "file", cfg.WidgetFile, "knob", knobPath, "pointer", pointerPath, "coord_mode", wcfg.Options().CoordMode)
	logListenStatus(logger, cfg.ListenAddr)
}

// logEnvStatus reports whether a .env file was found and how login is configured.
func logEnvStatus(logger *slog.Logger, cfg config.Config) {
	envPath := filepath.Join(cfg.DataDir, ".env")
	if fileExists(envPath) {
		logger.Info("env check: ok", "path", envPath)
	} else {
		logger.Info("env check: missing", "path", envPath)
	}
	if !cfg.PasswordMode {
		logger.Warn("password mode disabled (dev mode)")
	}
}

// logListenStatus reports the listen address and a local URL helper.
func logListenStatus(logger *slog.Logger, addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		logger.Info("listen", "addr", addr)
		return
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	logger.Info("listen", "addr", addr, "url", "http://"+net.JoinHostPort(host, port))
}

// fileExists reports whether a path exists and is a file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
