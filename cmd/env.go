package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Agampodige/MathDrill/internal/attempt"
	"github.com/Agampodige/MathDrill/internal/bridge"
	"github.com/Agampodige/MathDrill/internal/config"
	"github.com/Agampodige/MathDrill/internal/level"
	"github.com/Agampodige/MathDrill/internal/logging"
	"github.com/Agampodige/MathDrill/internal/problemgen"
	"github.com/Agampodige/MathDrill/internal/screen"
	"github.com/Agampodige/MathDrill/internal/settings"
	"github.com/Agampodige/MathDrill/internal/store"
)

// restoreTimeout bounds the wait for the host before seeding an empty
// local history from it.
const restoreTimeout = 10 * time.Second

// loadConfig layers the persistent flags over the environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.ConfigFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("bridge"); v != "" {
		cfg.BridgeURL = v
	}
	if v, _ := cmd.Flags().GetString("log"); v != "" {
		cfg.LogFile = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path, or the default XDG
// path, and makes sure its directory exists.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// appEnv is the wired application: storage, optional host link and the
// domain services over them.
type appEnv struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *store.Store
	client  *bridge.Client
	gateway *bridge.Gateway
	svc     *screen.Services
	closers []func() error
}

// openEnv opens the database and wires the services. The bridge client is
// started only when a URL is configured and connect is true.
func openEnv(cmd *cobra.Command, connect bool) (*appEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	env := &appEnv{cfg: cfg}

	logPath := cfg.LogFile
	if logPath == "" {
		logPath = logging.PathFor(dbPath)
	}
	lvl, _ := config.ParseLevel(cfg.LogLevel)
	logger, closeLog, err := logging.Setup(logPath, lvl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: logging disabled:", err)
		logger = logging.Discard()
	} else {
		env.closers = append(env.closers, closeLog)
	}
	env.logger = logger

	st, err := store.Open(dbPath)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	env.store = st
	env.closers = append(env.closers, st.Close)

	catalog, err := level.DefaultCatalog()
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("load level catalog: %w", err)
	}

	var (
		mirror     attempt.Mirror
		levelOpts  = []level.ServiceOption{level.WithLogger(logger)}
		settingsRm settings.Remote
	)
	if cfg.BridgeURL != "" && connect {
		env.client = bridge.NewClient(cfg.BridgeURL, cfg.BridgeOptions(logger))
		env.client.Start(context.Background())
		env.closers = append(env.closers, env.client.Close)

		env.gateway = bridge.NewGateway(env.client)
		mirror = env.gateway
		levelOpts = append(levelOpts, level.WithRemote(env.gateway))
		settingsRm = env.gateway
		logger.Info("bridge configured", "url", cfg.BridgeURL)
	}

	env.svc = &screen.Services{
		Attempts:          attempt.NewStore(st.Attempts(), mirror, logger),
		Levels:            level.NewService(catalog, st.Completions(), levelOpts...),
		Settings:          settings.NewService(st.Settings(), settingsRm, logger),
		Generator:         problemgen.New(problemgen.DefaultConfig()),
		FeedbackCorrect:   cfg.FeedbackCorrect,
		FeedbackIncorrect: cfg.FeedbackIncorrect,
		Logger:            logger,
		Now:               time.Now,
	}
	if env.client != nil {
		env.svc.Bridge = env.client.State()
		env.svc.HostStats = env.gateway.Statistics
	}

	prefs, err := env.svc.Settings.Load(cmd.Context())
	if err != nil {
		logger.Warn("load settings, using defaults", "err", err)
		prefs = settings.Defaults()
	}
	env.svc.Prefs = prefs

	return env, nil
}

// waitHost blocks until the bridge is ready or timeout elapses.
func (e *appEnv) waitHost(ctx context.Context, timeout time.Duration) error {
	if e.client == nil {
		return fmt.Errorf("no host configured: pass --bridge or set %s", config.EnvBridgeURL)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := e.client.State().WaitReady(ctx); err != nil {
		return fmt.Errorf("host not reachable at %s: %w", e.cfg.BridgeURL, err)
	}
	return nil
}

// preferHost gives a configured host one handshake timeout to become
// ready so one-shot commands read its data. Without it they read local
// state.
func (e *appEnv) preferHost(ctx context.Context) {
	if e.client == nil {
		return
	}
	if err := e.waitHost(ctx, e.cfg.HandshakeTimeout); err != nil {
		fmt.Fprintln(os.Stderr, "warning: using local data:", err)
	}
}

// restoreInBackground seeds an empty local history from the host once the
// bridge is ready.
func (e *appEnv) restoreInBackground() {
	if e.client == nil {
		return
	}
	go func() {
		ctx := context.Background()
		if err := e.waitHost(ctx, restoreTimeout); err != nil {
			e.logger.Info("skip restore", "err", err)
			return
		}
		n, err := e.svc.Attempts.Restore(ctx, e.gateway)
		if err != nil {
			e.logger.Warn("restore attempts from host", "err", err)
			return
		}
		if n > 0 {
			e.logger.Info("restored attempts", "count", n)
		}
	}()
}

// Close releases everything in reverse order of opening.
func (e *appEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil && e.logger != nil {
			e.logger.Warn("close", "err", err)
		}
	}
	e.closers = nil
}
