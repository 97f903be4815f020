// Package daemon manages the cyncbridged process lifecycle: config
// load, logging init, PID file, the bridge core, the control socket,
// and signal-driven shutdown/reload.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/cyncbridge/core/internal/bridge"
	"github.com/cyncbridge/core/internal/config"
	"github.com/cyncbridge/core/internal/control"
	"github.com/cyncbridge/core/internal/hostadapter"
	logpkg "github.com/cyncbridge/core/internal/log"
)

// Daemon owns the bridge core and the control socket for one run of
// cyncbridged.
type Daemon struct {
	configPath string
	pidFile    string
	host       hostadapter.HostAdapter

	loader *config.Loader
	core   *bridge.Core
	server *control.Server

	ctx     context.Context
	cancel  context.CancelFunc
	sigChan chan os.Signal
}

// New loads configuration and assembles the bridge core and control
// server, but does not start anything yet.
func New(configPath, pidFile string, host hostadapter.HostAdapter) (*Daemon, error) {
	loader := config.NewLoader(configPath)
	cfg, err := loader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logpkg.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	core, err := bridge.New(*cfg, host, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to assemble bridge core: %w", err)
	}

	d := &Daemon{
		configPath: configPath,
		pidFile:    pidFile,
		host:       host,
		loader:     loader,
		core:       core,
		server:     control.NewServer(cfg.Control.Socket, slog.Default()),
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.registerHandlers()
	return d, nil
}

func (d *Daemon) registerHandlers() {
	d.server.Handle(control.MethodStatus, func(ctx context.Context, params json.RawMessage) (any, error) {
		return d.core.Status(), nil
	})
	d.server.Handle(control.MethodReload, func(ctx context.Context, params json.RawMessage) (any, error) {
		return nil, d.Reload()
	})
	d.server.Handle(control.MethodStop, func(ctx context.Context, params json.RawMessage) (any, error) {
		d.cancel()
		return nil, nil
	})
}

// Start writes the PID file and launches the bridge core and control
// server in the background.
func (d *Daemon) Start() error {
	slog.Info("starting cyncbridge daemon", "version", "0.1.0", "config", d.configPath)

	if err := d.writePIDFile(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	if err := d.core.Start(d.ctx); err != nil {
		return fmt.Errorf("failed to start bridge core: %w", err)
	}

	go func() {
		if err := d.server.Start(d.ctx); err != nil {
			slog.Error("control server failed", "error", err)
		}
	}()

	d.loader.Watch(func(newCfg *config.GlobalConfig, err error) {
		if err != nil {
			slog.Error("config watch reload failed", "error", err)
			return
		}
		if err := d.core.Reload(*newCfg); err != nil {
			slog.Error("config watch reload apply failed", "error", err)
		}
	})

	slog.Info("daemon started successfully")
	return nil
}

// Stop performs graceful shutdown: the control socket first (no new
// commands), then the bridge core.
func (d *Daemon) Stop() {
	slog.Info("initiating graceful shutdown")
	d.server.Stop()
	d.core.Shutdown()
	d.cancel()
	if d.sigChan != nil {
		signal.Stop(d.sigChan)
	}
	d.removePIDFile()
	slog.Info("daemon stopped gracefully")
}

// Reload re-reads the config file and applies the hot-reloadable
// subset (authorize token, session timers) to the running core.
func (d *Daemon) Reload() error {
	slog.Info("reloading configuration", "path", d.configPath)
	newCfg, err := d.loader.Read()
	if err != nil {
		return fmt.Errorf("failed to load new config: %w", err)
	}
	return d.core.Reload(*newCfg)
}

// Run blocks until a shutdown signal arrives or ctx is cancelled
// externally, handling SIGHUP as a reload trigger along the way.
func (d *Daemon) Run() error {
	d.sigChan = make(chan os.Signal, 1)
	signal.Notify(d.sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	slog.Info("daemon running, waiting for signals")

	for {
		select {
		case sig := <-d.sigChan:
			switch sig {
			case syscall.SIGTERM, syscall.SIGINT:
				slog.Info("received shutdown signal", "signal", sig.String())
				d.Stop()
				return nil
			case syscall.SIGHUP:
				slog.Info("received reload signal")
				if err := d.Reload(); err != nil {
					slog.Error("failed to reload config", "error", err)
				} else {
					slog.Info("configuration reloaded successfully")
				}
			}
		case <-d.ctx.Done():
			slog.Info("context cancelled, shutting down")
			d.Stop()
			return nil
		}
	}
}

func (d *Daemon) writePIDFile() error {
	if d.pidFile == "" {
		return nil
	}
	data := []byte(strconv.Itoa(os.Getpid()) + "\n")
	if err := os.WriteFile(d.pidFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write PID file %s: %w", d.pidFile, err)
	}
	return nil
}

func (d *Daemon) removePIDFile() {
	if d.pidFile == "" {
		return
	}
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		slog.Error("error removing PID file", "error", err)
	}
}
