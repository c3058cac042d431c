package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ashfaaq98/customer-issues/internal/bus"
	"github.com/Ashfaaq98/customer-issues/internal/logging"
	"github.com/Ashfaaq98/customer-issues/internal/metrics"
	"github.com/Ashfaaq98/customer-issues/internal/service"
	"github.com/Ashfaaq98/customer-issues/internal/store"
)

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// resolveActorName falls back to the login name, then to the service default.
func resolveActorName(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	for _, env := range []string{"USER", "USERNAME"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return service.DefaultActor
}

// app holds the components shared by every subcommand.
type app struct {
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	store   *store.Store
	bus     bus.Bus
	svc     *service.Service
}

type appOptions struct {
	// connectBus publishes changes to Redis. Read-only commands skip it.
	connectBus bool
	logger     *zap.Logger
	metrics    *metrics.Metrics
	storeOpts  []store.Option
}

// openApp opens the store, the change feed and the service layer.
func openApp(cfg Config, o appOptions) (*app, error) {
	logger := o.logger
	if logger == nil {
		logger = logging.New(cfg.Log.Level, os.Stderr)
	}

	path := resolvePathRelativeToBase(getWorkingDir(), cfg.Database.Path)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	logger.Debug("using database", zap.String("path", path))

	storeOpts := append([]store.Option{store.WithLogger(logger), store.WithMetrics(o.metrics)}, o.storeOpts...)
	st, err := store.NewStore(path, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	var b bus.Bus
	if o.connectBus {
		b = bus.NewBus(cfg.Redis.URL, bus.WithLogger(logger), bus.WithMetrics(o.metrics))
	} else {
		b = bus.NewNullBus(bus.WithLogger(logger))
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: o.metrics,
		store:   st,
		bus:     b,
		svc:     service.New(st, b, service.WithLogger(logger)),
	}, nil
}

func (a *app) Close() {
	if err := a.bus.Close(); err != nil {
		a.logger.Warn("closing bus", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// getExecutableDir returns the directory of the running executable.
// Falls back to current directory on error.
func getExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// getWorkingDir returns the current working directory.
// Falls back to executable directory if os.Getwd fails.
func getWorkingDir() string {
	if wd, err := os.Getwd(); err == nil && wd != "" {
		return wd
	}
	return getExecutableDir()
}

// resolvePathRelativeToBase resolves a possibly relative path against a base directory.
// Absolute paths and the in-memory database are returned unchanged.
func resolvePathRelativeToBase(base, p string) string {
	if filepath.IsAbs(p) || p == ":memory:" {
		return p
	}
	p = strings.TrimPrefix(p, "./")
	return filepath.Join(base, p)
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/N): ", question)
	var response string
	fmt.Fscanln(cmd.InOrStdin(), &response)
	r := strings.ToLower(strings.TrimSpace(response))
	return r == "y" || r == "yes"
}
