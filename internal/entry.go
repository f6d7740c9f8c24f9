// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/api"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/casestudy"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/cms"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/contact"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/content"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/index"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/parser"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/postservice"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/sse"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/storage"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/telemetry"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/web"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		// Initialize structured JSON logger.
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	slog.SetDefault(app.logger)
	return app, nil
}

// contentStore builds the configured content source.
func (a *application) contentStore() (content.Store, error) {
	cfg := a.config
	defaults := parser.NewDefaults()
	if cfg.Content.DefaultCover != "" {
		defaults.CoverImage = cfg.Content.DefaultCover
	}
	if cfg.Content.DefaultAuthor != "" {
		defaults.AuthorName = cfg.Content.DefaultAuthor
	}
	if cfg.Content.WordsPerMinute > 0 {
		defaults.WordsPerMinute = cfg.Content.WordsPerMinute
	}

	switch cfg.Content.Source {
	case SourceCMS:
		client := cms.NewClient(cms.Config{
			ProjectID:  cfg.CMS.ProjectID,
			Dataset:    cfg.CMS.Dataset,
			APIVersion: cfg.CMS.APIVersion,
			Token:      cfg.CMS.Token,
			UseCDN:     cfg.CMS.UseCDN,
			APIHost:    cfg.CMS.APIHost,
			Timeout:    cfg.CMS.Timeout,
		})
		return content.NewCMSStore(client, defaults, a.logger), nil
	default:
		// Ensure content directory exists.
		if err := os.MkdirAll(cfg.Content.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create content dir: %w", err)
		}
		files, err := storage.NewFS(cfg.Content.Path)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		return content.NewFSStore(files, defaults, content.Vocabulary(cfg.Content.Categories), a.logger), nil
	}
}

func (a *application) cases() (*casestudy.Catalog, error) {
	if a.config.Content.CasesFile == "" {
		return casestudy.Default(), nil
	}
	c, err := casestudy.LoadFile(a.config.Content.CasesFile)
	if err != nil {
		return nil, fmt.Errorf("load cases: %w", err)
	}
	return c, nil
}

// postService wires the post service. db may be nil.
func (a *application) postService(store content.Store, db index.PostIndex, hook func(index.Change)) (*postservice.Service, error) {
	cases, err := a.cases()
	if err != nil {
		return nil, err
	}
	opts := []postservice.Option{
		postservice.WithCases(cases),
		postservice.WithSite(a.config.Site.Seo()),
		postservice.WithSitemap(a.config.Sitemap.Seo()),
		postservice.WithLogger(a.logger),
	}
	if db != nil {
		opts = append(opts, postservice.WithIndex(db))
	}
	if hook != nil {
		opts = append(opts, postservice.WithChangeHook(hook))
	}
	return postservice.New(store, opts...), nil
}

func (a *application) mailer() contact.Mailer {
	m := a.config.Mail
	if !m.Enabled() {
		a.logger.Warn("mail: no SMTP relay configured, contact submissions will fail")
		return contact.DisabledMailer{}
	}
	return contact.NewSMTPMailer(contact.SMTPConfig{
		Host:     m.Host,
		Port:     m.Port,
		Username: m.Username,
		Password: m.Password,
		Timeout:  m.Timeout,
	})
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_source", cfg.Content.Source),
		slog.String("content_path", cfg.Content.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := app.contentStore()
	if err != nil {
		return err
	}

	// Initialize SQLite index.
	db, err := index.Open(ctx, cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Run initial sync.
	if changes, err := index.Sync(ctx, db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	} else {
		logger.Info("initial sync done", slog.Int("changes", len(changes)))
	}

	// SSE broker.
	broker := sse.NewBroker(sse.Options{IndexThrottle: 2 * time.Second})
	defer broker.Close()
	publish := func(c index.Change) { broker.PublishChange(c.Kind, c.Slug) }

	posts, err := app.postService(store, db, publish)
	if err != nil {
		return err
	}
	sink := telemetry.Multi{telemetry.Logger{L: logger}, broker}
	contactSvc := contact.NewService(app.mailer(), sink, logger, contact.Options{
		From:     cfg.Mail.From,
		To:       cfg.Mail.To,
		Location: cfg.Site.Location(),
	})

	deps := api.Deps{
		Posts:       posts,
		Contact:     contactSvc,
		Pages:       web.NewRenderer(cfg.Site.Seo(), cfg.Site.Location()),
		Sink:        sink,
		Events:      broker,
		AssetsDir:   cfg.Content.ImagesDir,
		AuthEnabled: cfg.Auth.AuthEnabled(),
		AuthToken:   cfg.Auth.Token,
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := posts.Ready(r.Context()); err != nil {
			logger.Warn("readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api, pages and crawler documents at the root.
	r.Mount("/api", api.NewRouter(deps))
	r.Mount("/", api.NewSiteRouter(deps))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Keep the index current: watch the directory, or poll the CMS.
	g.Go(func() error {
		if cfg.Content.Source == SourceCMS {
			index.Poll(gCtx, db, store, cfg.Content.PollInterval, logger, publish)
			return nil
		}
		root := cfg.Content.Path
		if fsStore, ok := store.(*content.FSStore); ok {
			root = fsStore.Root()
		}
		if err := index.Watch(gCtx, db, store, root, logger, publish); err != nil {
			logger.Error("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

		// Close SSE streams first so Shutdown does not wait on them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.HTTP.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
