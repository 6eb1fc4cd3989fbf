package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/canopy/internal/cli"
	"github.com/rpggio/canopy/internal/config"
	"github.com/rpggio/canopy/internal/domain/attestation"
	"github.com/rpggio/canopy/internal/domain/conservation"
	"github.com/rpggio/canopy/internal/domain/journal"
	"github.com/rpggio/canopy/internal/domain/registry"
	"github.com/rpggio/canopy/internal/gateway"
	"github.com/rpggio/canopy/internal/mcp"
	"github.com/rpggio/canopy/internal/sqlite"
	"github.com/rpggio/canopy/internal/transport"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Keep stdout clean: it carries JSON-RPC in stdio mode and command output otherwise.
	logWriter := io.Writer(os.Stderr)
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("preparing database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	client, err := gateway.NewClient(gateway.Config{
		Endpoint:        cfg.Gateway.URL,
		ContractAddress: cfg.Gateway.ContractAddress,
		Token:           cfg.Gateway.Token,
		Timeout:         cfg.Gateway.Timeout,
		Logger:          logger.With("component", "gateway"),
	})
	if err != nil {
		return fmt.Errorf("gateway client: %w", err)
	}

	validatorSvc := registry.NewService(sqlite.NewValidatorRepository(db), logger)
	attestationSvc := attestation.NewService(sqlite.NewAttestationRepository(db), logger)
	journalSvc := journal.NewService(sqlite.NewJournalRepository(db), logger)

	opts, err := cfg.TrackerOptions()
	if err != nil {
		return fmt.Errorf("tracker options: %w", err)
	}
	tracker := conservation.NewTracker(
		journal.NewGateway(client, journalSvc),
		validatorSvc,
		attestationSvc,
		opts,
		logger.With("component", "tracker"),
	)

	app := &cli.App{
		Tracker:      tracker,
		Validators:   validatorSvc,
		Attestations: attestationSvc,
		Journal:      journalSvc,
	}
	app.Serve = func(ctx context.Context) error {
		mcpServer := mcp.NewServer(mcp.Config{
			Services: mcp.Services{
				Tracker:      app.Tracker,
				Validators:   app.Validators,
				Attestations: app.Attestations,
				Journal:      app.Journal,
			},
			Resolver:      transport.StaticTokens(cfg.Auth.Tokens),
			AuthEnabled:   cfg.Auth.Enabled,
			TransportMode: cfg.Transport.Mode,
			Version:       version,
			Logger:        logger,
		})
		if cfg.Transport.Mode == config.TransportStdio {
			return runStdioMode(ctx, logger, mcpServer)
		}
		return runHTTPMode(ctx, logger, mcpServer, cfg.Server.Host, cfg.Server.Port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or ctx is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, host string, port int) error {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
