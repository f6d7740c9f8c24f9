package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/index"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/mcpserver"
)

// ErrContentProblems is returned by Check when the report is not clean.
var ErrContentProblems = errors.New("content check found problems")

// Sitemap writes sitemap.xml for the configured content source.
func Sitemap(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	store, err := app.contentStore()
	if err != nil {
		return err
	}
	posts, err := app.postService(store, nil, nil)
	if err != nil {
		return err
	}
	out, err := posts.Sitemap(ctx)
	if err != nil {
		return fmt.Errorf("render sitemap: %w", err)
	}
	_, err = app.out.Write(out)
	return err
}

// Check scans the content source and writes a JSON report. It returns
// ErrContentProblems when malformed entries or dangling JSON-LD
// references were found.
func Check(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	store, err := app.contentStore()
	if err != nil {
		return err
	}
	posts, err := app.postService(store, nil, nil)
	if err != nil {
		return err
	}
	rep, err := posts.Check(ctx)
	if err != nil {
		return fmt.Errorf("check content: %w", err)
	}

	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return err
	}
	if !rep.OK() {
		return ErrContentProblems
	}
	return nil
}

// ServeMCP serves the read-only content tools over stdio. Logs go to
// stderr since stdout carries the protocol.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.logger == nil && app.config != nil {
		opts = append(opts, WithLogger(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))))
	}
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	store, err := app.contentStore()
	if err != nil {
		return err
	}
	db, err := index.Open(ctx, app.config.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	posts, err := app.postService(store, db, nil)
	if err != nil {
		return err
	}
	if _, err := posts.Reindex(ctx); err != nil {
		app.logger.Warn("mcp: initial sync failed", slog.String("error", err.Error()))
	}

	app.logger.Info("mcp: serving on stdio", slog.String("version", app.version))
	return mcpserver.New(posts, app.version).ServeStdio()
}
