package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ashfaaq98/customer-issues/internal/bus"
	"github.com/Ashfaaq98/customer-issues/internal/intake"
	"github.com/Ashfaaq98/customer-issues/internal/logging"
	"github.com/Ashfaaq98/customer-issues/internal/metrics"
	"github.com/Ashfaaq98/customer-issues/internal/ui"
)

var (
	noTUI       bool
	forceTUI    bool
	watchIntake bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TUI and background services",
	Long: `Start the case console which includes:

1. Terminal User Interface (TUI) for browsing, searching, deleting and
   printing cases (create and edit with "issues case add|update")
2. Redis Streams consumer that refreshes the list when another console
   or command changes a case
3. Intake folder watcher for JSON/JSONL case files
4. Optional Prometheus metrics endpoint

The serve command runs until interrupted (Ctrl+C) or until the TUI is closed.

Examples:
  # Start with TUI (default)
  issues serve

  # Start without TUI (headless mode: intake + change feed only)
  issues serve --no-tui

  # Expose metrics
  issues serve --metrics-bind 127.0.0.1:9108`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&noTUI, "no-tui", false, "Run in headless mode without TUI")
	serveCmd.Flags().BoolVar(&forceTUI, "force-tui", false, "Force TUI mode even in unsupported terminals")
	serveCmd.Flags().BoolVar(&watchIntake, "watch-intake", true, "Watch the intake directory while serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config := GetConfig()

	// Use file logging for TUI mode to keep terminal clean
	willUseTUI := determineTUIMode()
	var logger *zap.Logger
	if willUseTUI {
		if logFile := setupFileLogger(); logFile != nil {
			// File for all logs, stderr for errors only
			logger = logging.NewTUI(config.Log.Level, logFile, os.Stderr)
			defer logFile.Close()
		} else {
			logger = logging.New("error", os.Stderr)
		}
	} else {
		logger = logging.New(config.Log.Level, os.Stderr)
	}
	logger = logger.Named("serve")

	logger.Info("starting case console")
	if !noTUI {
		logger.Info("terminal", zap.String("info", getTerminalInfo()))
	}

	m := metrics.New()
	a, err := openApp(config, appOptions{connectBus: true, logger: logger, metrics: m})
	if err != nil {
		return err
	}
	defer a.Close()

	// Cancelled when the TUI exits so background services stop with it
	svcCtx, svcCancel := context.WithCancel(ctx)
	defer svcCancel()

	coordinator := &ServiceCoordinator{
		app:    a,
		logger: logger,
		ctx:    svcCtx,
	}

	if config.Metrics.Bind != "" {
		coordinator.metricsServer = &http.Server{
			Addr:              config.Metrics.Bind,
			Handler:           metricsMux(m),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	if watchIntake {
		coordinator.ingestor = intake.NewFolderIngestor(a.svc, intake.FolderOptions{
			Dir:     resolvePathRelativeToBase(getWorkingDir(), config.Intake.Dir),
			Watch:   true,
			Actor:   "intake",
			Logger:  logger,
			Metrics: m,
			// Avoid re-ingesting existing JSONL lines on each startup; begin tailing from EOF.
			TailFromEnd: true,
		})
	}

	if !willUseTUI {
		if !noTUI {
			logger.Warn("TUI cannot be initialized in this terminal environment, switching to headless mode")
			logger.Info("for the TUI use a native terminal or SSH with proper TERM settings; " +
				"the list/case commands work anywhere")
		}
		coordinator.onChange = func(change bus.CaseChange) {
			logger.Info("case changed",
				zap.Int64("case_id", change.CaseID), zap.String("action", change.Action), zap.String("actor", change.Actor))
		}
		if err := coordinator.Start(); err != nil {
			return fmt.Errorf("failed to start services: %w", err)
		}
		defer coordinator.Stop()

		logger.Info("running in headless mode")
		<-ctx.Done()
		logger.Info("received shutdown signal")
		return nil
	}

	console := ui.NewUI(svcCtx, a.svc,
		ui.WithLogger(logger),
		ui.WithMetrics(m),
		ui.WithActor(config.Actor),
		ui.WithReportDir(resolvePathRelativeToBase(getWorkingDir(), config.Reports.Dir)),
		ui.WithTheme(config.UI.Theme),
	)
	coordinator.onChange = func(bus.CaseChange) { console.QueueReload() }
	if err := coordinator.Start(); err != nil {
		return fmt.Errorf("failed to start services: %w", err)
	}
	defer coordinator.Stop()

	if err := console.Start(ctx); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	logger.Info("TUI exited, cancelling background services")
	svcCancel()
	return nil
}

func metricsMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ServiceCoordinator manages background services
type ServiceCoordinator struct {
	app           *app
	logger        *zap.Logger
	ingestor      *intake.FolderIngestor
	metricsServer *http.Server
	onChange      func(bus.CaseChange)

	ctx context.Context
	wg  sync.WaitGroup
}

// Start launches the background goroutines.
func (sc *ServiceCoordinator) Start() error {
	sc.wg.Add(2)
	go sc.runChangeFeed()
	go sc.runHealthMonitor()

	if sc.ingestor != nil {
		sc.wg.Add(1)
		go func() {
			defer sc.wg.Done()
			if err := sc.ingestor.Run(sc.ctx); err != nil && sc.ctx.Err() == nil {
				sc.logger.Error("intake watcher stopped", zap.Error(err))
			}
		}()
	}

	if sc.metricsServer != nil {
		sc.wg.Add(1)
		go func() {
			defer sc.wg.Done()
			sc.logger.Info("metrics endpoint listening", zap.String("addr", sc.metricsServer.Addr))
			if err := sc.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				sc.logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}
	return nil
}

// Stop waits for the background goroutines after the context is cancelled.
func (sc *ServiceCoordinator) Stop() {
	if sc.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sc.metricsServer.Shutdown(ctx)
	}
	sc.wg.Wait()
	sc.logger.Info("background services stopped")
}

// runChangeFeed follows the case change stream. Every console reads through
// its own consumer group so each one sees every change.
func (sc *ServiceCoordinator) runChangeFeed() {
	defer sc.wg.Done()

	host, _ := os.Hostname()
	group := fmt.Sprintf("console-%s-%d", host, os.Getpid())
	handler := func(_ context.Context, change bus.CaseChange) error {
		if sc.onChange != nil {
			sc.onChange(change)
		}
		return nil
	}

	for {
		err := sc.app.bus.ReadCaseChanges(sc.ctx, group, "console", handler)
		if sc.ctx.Err() != nil {
			sc.logger.Info("change feed stopping")
			return
		}
		sc.logger.Warn("change feed error, retrying", zap.Error(err))
		select {
		case <-sc.ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// runHealthMonitor checks the store and bus periodically
func (sc *ServiceCoordinator) runHealthMonitor() {
	defer sc.wg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sc.ctx.Done():
			return
		case <-ticker.C:
			sc.performHealthChecks()
		}
	}
}

func (sc *ServiceCoordinator) performHealthChecks() {
	ctx, cancel := context.WithTimeout(sc.ctx, 10*time.Second)
	defer cancel()

	if err := sc.app.store.Ping(ctx); err != nil {
		sc.logger.Error("database health check failed", zap.Error(err))
	}
	if err := sc.app.bus.HealthCheck(ctx); err != nil {
		sc.logger.Warn("bus health check failed", zap.Error(err))
	}
	if stats, err := sc.app.bus.GetStats(ctx); err == nil {
		sc.logger.Debug("bus stats", zap.Any("stats", stats))
	}
	if sc.ingestor != nil {
		s := sc.ingestor.Stats()
		sc.logger.Debug("intake stats", zap.Int("ingested", s.Ingested), zap.Int("failed", s.Failed))
	}
}

// determineTUIMode determines if TUI will be used (needed before logging setup)
func determineTUIMode() bool {
	if noTUI {
		return false
	}
	return forceTUI || canInitializeTUI()
}

// canInitializeTUI tests if tcell can actually be initialized
func canInitializeTUI() bool {
	screen, err := tcell.NewScreen()
	if err != nil {
		return false
	}

	if err := screen.Init(); err != nil {
		return false
	}

	// Clean up immediately
	screen.Fini()
	return true
}

// getTerminalInfo returns detailed terminal information
func getTerminalInfo() string {
	var info []string

	term := os.Getenv("TERM")
	if term == "" {
		info = append(info, "TERM=<not set>")
	} else {
		info = append(info, fmt.Sprintf("TERM=%s", term))
	}

	if termProgram := os.Getenv("TERM_PROGRAM"); termProgram != "" {
		info = append(info, fmt.Sprintf("TERM_PROGRAM=%s", termProgram))
	}

	if width, height := getTerminalSize(); width > 0 && height > 0 {
		info = append(info, fmt.Sprintf("Size=%dx%d", width, height))
	}

	if isTerminal() {
		info = append(info, "TTY=yes")
	} else {
		info = append(info, "TTY=no")
	}

	if supportsColors() {
		info = append(info, "Colors=yes")
	} else {
		info = append(info, "Colors=no")
	}

	return strings.Join(info, ", ")
}

// supportsColors checks if terminal supports colors
func supportsColors() bool {
	if os.Getenv("COLORTERM") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	for _, hint := range []string{"color", "256", "truecolor", "24bit", "xterm", "screen", "tmux", "linux", "ansi"} {
		if strings.Contains(term, hint) {
			return true
		}
	}
	return false
}

// setupFileLogger creates a log file for TUI mode
func setupFileLogger() *os.File {
	logDir := filepath.Join(getWorkingDir(), "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		// If we can't create logs directory, we'll fall back to stderr
		return nil
	}

	logPath := filepath.Join(logDir, "issues-serve.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}
	return logFile
}
