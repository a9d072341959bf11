// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/contacts"
	"github.com/starford/folio/internal/mcpserver"
	"github.com/starford/folio/internal/notify"
	"github.com/starford/folio/internal/static"
	"github.com/starford/folio/internal/storage"
)

const (
	shutdownTimeout = 10 * time.Second
	verifyTimeout   = 10 * time.Second
)

func newApplication(opts []Option) (*application, error) {
	app := &application{out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
}

// Run starts the HTTP server with the given options and blocks until ctx is
// cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := app.logger(app.out)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("site_root", cfg.Site.Root),
		slog.String("store_file", cfg.Store.File),
		slog.Bool("smtp_enabled", cfg.SMTP.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Site.Root, 0o755); err != nil {
		return fmt.Errorf("create site dir: %w", err)
	}
	site, err := storage.NewFS(cfg.Site.Root)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	store := contacts.NewStore(site, cfg.Store.File, contacts.WithLogger(logger))
	defer store.Close()

	dispatcher, verifier := app.buildDispatcher(logger)
	defer dispatcher.Close()

	// A nil *Dispatcher must not reach the handler as a non-nil interface.
	var notifier api.ContactNotifier
	if dispatcher != nil {
		notifier = dispatcher
	}

	router := api.NewRouter(store, notifier, static.New(site, cfg.Site.DefaultDocument),
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(runCtx)

	if verifier != nil {
		// Serving does not wait on the relay; a failed check disables
		// notification from then on.
		g.Go(func() error {
			verifyCtx, verifyCancel := context.WithTimeout(gCtx, verifyTimeout)
			defer verifyCancel()
			_ = dispatcher.Verify(verifyCtx, verifier)
			return nil
		})
	}

	if cfg.Store.Watch {
		g.Go(func() error {
			if err := contacts.Watch(gCtx, store, logger, nil); err != nil {
				// The watcher only reports; the server runs without it.
				logger.Warn("store watcher unavailable", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		cancel()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// buildDispatcher returns nil when notification is not configured or its
// settings are invalid. The returned Verifier, if any, is checked by the
// caller in the background.
func (a *application) buildDispatcher(logger *slog.Logger) (*notify.Dispatcher, notify.Verifier) {
	cfg := a.config
	dcfg := notify.DispatcherConfig{
		From:        cfg.Sender(),
		To:          cfg.Recipient(),
		QueueSize:   cfg.Notify.QueueSize,
		SendTimeout: cfg.SMTP.Timeout,
	}

	if a.notifier != nil {
		return notify.NewDispatcher(a.notifier, dcfg, logger), nil
	}

	if !cfg.SMTP.Enabled() {
		logger.Info("SMTP not configured; email notifications disabled. Set SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS to enable.")
		return nil, nil
	}
	if err := cfg.ValidateNotify(); err != nil {
		logger.Warn("SMTP not configured/invalid; email notifications disabled", slog.String("error", err.Error()))
		return nil, nil
	}

	sender, err := notify.NewSMTPSender(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		Timeout:  cfg.SMTP.Timeout,
	})
	if err != nil {
		logger.Warn("SMTP setup failed; email notifications disabled", slog.String("error", err.Error()))
		return nil, nil
	}

	logger.Info("SMTP transporter configured, verifying",
		slog.String("host", cfg.SMTP.Host),
		slog.Int("port", cfg.SMTP.Port),
		slog.String("notify_to", dcfg.To))
	return notify.NewDispatcher(sender, dcfg, logger), sender
}

// PrintContacts writes the stored contact records to the configured output
// as indented JSON. An unreadable store prints as an empty array.
func PrintContacts(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	site, err := storage.NewFS(cfg.Site.Root)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	reader := contacts.NewReader(site, cfg.Store.File, app.logger(os.Stderr))

	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	return enc.Encode(reader.List(ctx))
}

// ServeMCP exposes the contact inbox to MCP clients over stdio. Logs go to
// stderr so they do not interleave with the protocol stream.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.logger(os.Stderr)
	slog.SetDefault(logger)

	site, err := storage.NewFS(cfg.Site.Root)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	reader := contacts.NewReader(site, cfg.Store.File, logger)

	logger.Info("MCP server starting on stdio", slog.String("store_file", cfg.Store.File))
	return mcpserver.New(reader).ServeStdio()
}
