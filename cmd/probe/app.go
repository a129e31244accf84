package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cipherprobe/internal/cipher"
	"cipherprobe/internal/config"
	"cipherprobe/internal/display"
	"cipherprobe/internal/logging"
	"cipherprobe/internal/oracle"
	"cipherprobe/internal/store"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

// app is everything one command invocation needs. The session is restored
// from the store on open and written back after each successful build.
type app struct {
	workspace string
	cfg       *config.Config
	store     *store.LocalStore
	client    *oracle.HTTPClient
	builder   *cipher.Builder
	session   *cipher.Session
	renderer  *display.Renderer
}

// resolveWorkspace returns --workspace or the nearest workspace root.
func resolveWorkspace() (string, error) {
	if workspace != "" {
		return workspace, nil
	}
	return config.FindWorkspaceRoot()
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig(ws string) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath(ws)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		cfg.Oracle.APIKey = apiKey
	}
	return cfg, nil
}

// openApp wires config, logging, store, oracle and session together.
func openApp() (*app, error) {
	ws, err := resolveWorkspace()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}

	cfg, err := loadConfig(ws)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateLocal(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := logging.Initialize(ws, cfg.Logging.Options()); err != nil {
		logger.Warn("File logging disabled", zap.Error(err))
	}

	alphabet, err := cfg.GetAlphabet()
	if err != nil {
		return nil, err
	}

	dbPath := config.ResolvePath(ws, cfg.Store.DatabasePath)
	st, err := store.NewLocalStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	client := oracle.NewHTTPClient(cfg.Oracle.BaseURL, cfg.Oracle.APIKey, cfg.GetTimeout())
	var enc oracle.Encrypter = client
	if cfg.Oracle.Cache {
		enc = oracle.NewCachedEncrypter(client, st)
	}

	builder := cipher.NewBuilder(enc)
	builder.Delay = cfg.GetDelay()
	logging.BootDebug("Oracle %s: timeout %v, delay %v, cache %v", cfg.Oracle.BaseURL, cfg.GetTimeout(), builder.Delay, cfg.Oracle.Cache)
	session := cipher.NewSession(builder, alphabet, cfg.Mapping.RepeatCount)

	a := &app{
		workspace: ws,
		cfg:       cfg,
		store:     st,
		client:    client,
		builder:   builder,
		session:   session,
		renderer:  display.New(cfg.Display.Width, isTerminal(os.Stdout)),
	}

	state, err := st.LoadState()
	if err != nil {
		logger.Warn("Could not load saved session, starting empty", zap.Error(err))
	} else if err := session.Restore(state); err != nil {
		logger.Warn("Saved session is invalid, starting empty", zap.Error(err))
	}

	logger.Debug("Opened workspace",
		zap.String("workspace", ws),
		zap.String("db", dbPath),
		zap.String("identity", session.Identity()),
		zap.Bool("cache", cfg.Oracle.Cache))
	logging.Boot("Opened workspace %s (identity %q)", ws, session.Identity())
	return a, nil
}

// requireOracle fails when the oracle cannot be queried.
func (a *app) requireOracle() error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// persist writes the session state back to the store.
func (a *app) persist() error {
	st := a.session.Snapshot()
	if st.Identity == "" {
		return nil
	}
	if err := a.store.SaveState(st); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	logging.Get(logging.CategoryStore).StructuredLog("info", "Session persisted", map[string]interface{}{
		"identity":       st.Identity,
		"chars":          len(st.Forward),
		"segment_length": st.SegmentLength,
		"matrix_rows":    len(st.Matrix),
	})
	return nil
}

func (a *app) Close() {
	a.client.Close()
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close store", zap.Error(err))
	}
	logging.CloseAll()
}

// buildMap runs a map build with progress reporting and persists on success.
func (a *app) buildMap(ctx context.Context, identity string) (*cipher.MapResult, error) {
	stop := a.attachProgress(fmt.Sprintf("Mapping %d characters for ID %s", len(a.session.Alphabet()), identity))
	res, err := a.session.SetIdentity(ctx, identity)
	stop()
	if err != nil {
		return nil, err
	}
	return res, a.persist()
}

// buildMatrix runs a matrix build with progress reporting and persists on success.
func (a *app) buildMatrix(ctx context.Context) (*cipher.MatrixResult, error) {
	stop := a.attachProgress(fmt.Sprintf("Building matrix for ID %s", a.session.Identity()))
	res, err := a.session.BuildMatrix(ctx)
	stop()
	if err != nil {
		return nil, err
	}
	return res, a.persist()
}

// attachProgress sets the builder observer for one build and returns the
// function that detaches it.
func (a *app) attachProgress(title string) func() {
	if useProgressBar() {
		p := startProgress(title)
		a.builder.Observer = p
		return func() {
			a.builder.Observer = nil
			p.Stop()
		}
	}
	a.builder.Observer = &lineProgress{w: os.Stdout}
	return func() { a.builder.Observer = nil }
}

// signalContext returns a context cancelled on SIGINT/SIGTERM with no deadline.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// commandContext returns a context bounded by --timeout and cancelled on
// SIGINT/SIGTERM. Create one per oracle-bound operation.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signalContext()
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// useProgressBar resolves --progress.
func useProgressBar() bool {
	switch progressMode {
	case "on", "true":
		return true
	case "off", "false":
		return false
	default:
		return isTerminal(os.Stderr)
	}
}
