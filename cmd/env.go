package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/studybuddy/studybuddy/internal/auth"
	"github.com/studybuddy/studybuddy/internal/config"
	"github.com/studybuddy/studybuddy/internal/flowchart"
	"github.com/studybuddy/studybuddy/internal/inflight"
	"github.com/studybuddy/studybuddy/internal/llm"
	"github.com/studybuddy/studybuddy/internal/logger"
	"github.com/studybuddy/studybuddy/internal/quiz"
	"github.com/studybuddy/studybuddy/internal/roadmap"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
	"github.com/studybuddy/studybuddy/internal/store"
	"github.com/studybuddy/studybuddy/internal/studytools"
	"github.com/studybuddy/studybuddy/internal/telemetry"
	"github.com/studybuddy/studybuddy/internal/workspace"
)

// appEnv is everything a command needs, opened from config and flags.
type appEnv struct {
	cfg     *config.Config
	dataDir string
	log     *zap.Logger
	db      *store.Store
	kv      store.KV
	auth    *auth.Service
	ws      *workspace.Workspace

	closers []func() error
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then store.path from config, then STUDYBUDDY_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openBase opens config, logging, tracing, the database and the auth
// service, without a workspace.
func openBase(cmd *cobra.Command) (*appEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dataDir, err := store.DefaultDataDir()
	if err != nil {
		return nil, err
	}
	e := &appEnv{cfg: cfg, dataDir: dataDir}

	logOpts := logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}
	if logOpts.File == "" {
		logOpts.File = logger.DefaultFile(dataDir)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logOpts.Console = os.Stderr
	}
	log, closeLog, err := logger.New(logOpts)
	if err != nil {
		return nil, err
	}
	e.log = log
	e.closers = append(e.closers, closeLog)

	traceFile := cfg.Telemetry.File
	if traceFile == "" {
		traceFile = filepath.Join(dataDir, "traces.json")
	}
	shutdown, err := telemetry.Setup(cmd.Context(), telemetry.Options{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		SampleRatio: cfg.Telemetry.SampleRatio,
		File:        traceFile,
		Version:     version,
	}, log)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	e.closers = append(e.closers, func() error { return shutdown(context.Background()) })

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.db = db
	e.closers = append(e.closers, db.Close)

	secret, err := auth.LoadOrCreateSecret(auth.SecretPath(dataDir))
	if err != nil {
		e.Close()
		return nil, err
	}
	e.auth = auth.NewService(db.Users(), secret, cfg.Auth.TokenTTL, log)
	return e, nil
}

// openEnv opens the base environment plus the signed-in user's workspace.
func openEnv(cmd *cobra.Command) (*appEnv, error) {
	e, err := openBase(cmd)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()

	ephemeral, _ := cmd.Flags().GetBool("ephemeral")
	backend := e.cfg.Store.Backend
	if ephemeral {
		backend = store.BackendMemory
	}
	switch backend {
	case store.BackendRedis:
		kv, err := store.NewRedisKV(ctx, e.cfg.Store.Redis.Options())
		if err != nil {
			e.Close()
			return nil, err
		}
		e.kv = kv
		e.closers = append(e.closers, kv.Close)
	case store.BackendMemory:
		e.kv = store.NewMemoryKV()
	default:
		e.kv = e.db.KV()
	}

	user, err := e.auth.CurrentUser(auth.SessionPath(e.dataDir))
	if errors.Is(err, auth.ErrInvalidToken) {
		color.New(color.FgYellow).Fprintln(os.Stderr, "Your session has expired; using the local workspace. Run `studybuddy login` to sign in again.")
		user = auth.LocalUser
	} else if err != nil {
		e.Close()
		return nil, err
	}

	opts := []workspace.Option{workspace.WithLogger(e.log)}
	if e.cfg.Store.Backups > 0 && !ephemeral {
		opts = append(opts, workspace.WithBackups(e.db.Backups()), workspace.WithBackupKeep(e.cfg.Store.Backups))
	}
	ws, err := workspace.Open(ctx, e.kv, user, opts...)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	e.ws = ws
	e.closers = append(e.closers, ws.Close)
	return e, nil
}

// Close releases resources in reverse order of acquisition.
func (e *appEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil && e.log != nil {
			e.log.Warn("close", zap.Error(err))
		}
	}
	e.closers = nil
}

// generator builds the configured Generator with its decorators.
func (e *appEnv) generator(ctx context.Context) (llm.Provider, error) {
	if err := e.cfg.LLM.Validate(); err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	return llm.NewProvider(ctx, e.cfg.LLM, e.db.Events(), e.log)
}

// callContext bounds a single Generator-backed command by llm.timeout.
func (e *appEnv) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.LLM.Timeout > 0 {
		return context.WithTimeout(ctx, e.cfg.LLM.Timeout)
	}
	return context.WithCancel(ctx)
}

// deps bundles services over provider for the TUI.
func (e *appEnv) deps(provider llm.Provider) (*shared.Deps, error) {
	types, err := e.cfg.Quiz.QuestionTypes()
	if err != nil {
		return nil, err
	}
	return &shared.Deps{
		Workspace: e.ws,
		Quiz:      quiz.NewGenerator(provider),
		Roadmap:   roadmap.NewService(provider),
		Flowchart: flowchart.NewService(provider),
		Tools:     studytools.NewService(provider),
		Guard:     &inflight.Guard{},
		Log:       e.log,
		Defaults: shared.QuizDefaults{
			Count:        e.cfg.Quiz.Count,
			Types:        types,
			TestDuration: e.cfg.Quiz.TestDuration,
		},
	}, nil
}
