// Package internal provides the application wiring and the entry point of
// every quire command.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/collection"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/mcpserver"
	"github.com/starford/quire/internal/scaffold"
	"github.com/starford/quire/internal/schema"
	"github.com/starford/quire/internal/storage"
)

// workspace bundles what every command needs.
type workspace struct {
	cfg     *Config
	store   *storage.FS
	layout  *collection.Layout
	schemas *schema.Validator
	logger  *slog.Logger
}

func newApplication(opts []Option) (*application, error) {
	app := &application{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// open sets up the logger, storage, layout and schemas. Stdout belongs to
// the operator dialogue, so logs go to the error stream.
func (a *application) open() (*workspace, error) {
	cfg := a.config

	logger := slog.New(slog.NewJSONHandler(a.errOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Debug("Configuration loaded",
		slog.String("content_root", cfg.Content.Root),
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	layout, err := cfg.Layout()
	if err != nil {
		return nil, fmt.Errorf("init layout: %w", err)
	}
	store, err := storage.NewFS(cfg.Content.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	schemas, err := schema.New()
	if err != nil {
		return nil, fmt.Errorf("init schemas: %w", err)
	}
	return &workspace{cfg: cfg, store: store, layout: layout, schemas: schemas, logger: logger}, nil
}

// openCatalog opens the catalog and brings it up to date with the content root.
func (w *workspace) openCatalog() (*index.DB, error) {
	db, err := index.Open(w.cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}
	if err := index.Sync(db, w.store, w.layout, w.logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("sync catalog: %w", err)
	}
	return db, nil
}

// Scaffold runs one interactive session creating an entry of kind.
func Scaffold(ctx context.Context, kind collection.Kind, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	ws, err := app.open()
	if err != nil {
		return err
	}

	sc := scaffold.New(ws.store, ws.layout, ws.schemas,
		scaffold.WithClock(app.now),
		scaffold.WithLogger(ws.logger))

	_, err = sc.Run(ctx, kind, app.in, app.out, app.errOut)
	return err
}

type checkReport struct {
	info    collection.Info
	missing bool
	checked int
	invalid []invalidEntry
}

type invalidEntry struct {
	path   string
	issues []schema.Issue
}

// Check validates every entry of every collection against its schema.
func Check(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	ws, err := app.open()
	if err != nil {
		return err
	}

	kinds := collection.All()
	reports := make([]checkReport, len(kinds))

	g, gCtx := errgroup.WithContext(ctx)
	for i, info := range kinds {
		g.Go(func() error {
			rep, err := ws.checkCollection(gCtx, info)
			if err != nil {
				return fmt.Errorf("check %s: %w", info.Name, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var total, bad int
	for _, rep := range reports {
		dir := ws.layout.Dir(rep.info.Kind)
		if rep.missing {
			fmt.Fprintf(app.errOut, "⚠️ %s directory %s does not exist, skipped\n", rep.info.Name, dir)
			continue
		}
		total += rep.checked
		for _, inv := range rep.invalid {
			bad++
			for _, is := range inv.issues {
				fmt.Fprintf(app.out, "%s: %s\n", inv.path, is)
			}
		}
	}
	fmt.Fprintf(app.out, "checked %d entries, %d invalid\n", total, bad)

	if bad > 0 {
		return fmt.Errorf("%w: %d of %d entries", apperr.ErrInvalidFrontmatter, bad, total)
	}
	return nil
}

func (w *workspace) checkCollection(ctx context.Context, info collection.Info) (checkReport, error) {
	rep := checkReport{info: info}
	dir := w.layout.Dir(info.Kind)

	abs, err := w.store.Abs(dir)
	if err != nil {
		return rep, err
	}
	if st, err := os.Stat(abs); errors.Is(err, fs.ErrNotExist) || (err == nil && !st.IsDir()) {
		rep.missing = true
		return rep, nil
	}

	files, err := w.store.List(dir)
	if err != nil {
		return rep, err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		// A nested collection directory belongs to its own kind.
		if k, _ := w.layout.KindOf(f.Path); k != info.Kind {
			continue
		}
		data, err := w.store.Read(f.Path)
		if err != nil {
			return rep, err
		}
		res, err := w.schemas.ValidateDocument(info.Kind, data)
		if err != nil {
			return rep, err
		}
		rep.checked++
		if !res.Valid {
			rep.invalid = append(rep.invalid, invalidEntry{path: f.Path, issues: res.Issues})
			w.logger.Debug("check: invalid entry", slog.String("path", f.Path), slog.Int("issues", len(res.Issues)))
		}
	}
	return rep, nil
}

// ListOptions narrows the List command.
type ListOptions struct {
	Kind   string
	Tag    string
	Drafts bool
	Query  string
	Limit  int
}

// List syncs the catalog and prints matching entries, newest first. A query
// switches to full-text search.
func List(ctx context.Context, lo ListOptions, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	ws, err := app.open()
	if err != nil {
		return err
	}

	var f index.Filter
	if lo.Kind != "" {
		kind, err := collection.Parse(lo.Kind)
		if err != nil {
			return err
		}
		f.Collection = kind.String()
	}
	f.Tag = lo.Tag
	f.DraftsOnly = lo.Drafts
	f.Limit = lo.Limit

	db, err := ws.openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	if lo.Query != "" {
		hits, err := db.Search(lo.Query, lo.Limit)
		if err != nil {
			return err
		}
		for _, h := range hits {
			fmt.Fprintf(app.out, "%s  %s\n", h.Path, h.Title)
		}
		return nil
	}

	entries, err := db.ListEntries(f)
	if err != nil {
		return err
	}
	for _, e := range entries {
		date := "----------"
		if !e.Date.IsZero() {
			date = e.Date.UTC().Format(time.DateOnly)
		}
		draft := "     "
		if e.Draft {
			draft = "draft"
		}
		fmt.Fprintf(app.out, "%s  %s  %s/%s  %s\n", date, draft, e.Collection, e.Slug, e.Title)
	}
	return nil
}

// Tags syncs the catalog and prints tag usage counts, optionally for one kind.
func Tags(ctx context.Context, kindName string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	ws, err := app.open()
	if err != nil {
		return err
	}

	var coll string
	if kindName != "" {
		kind, err := collection.Parse(kindName)
		if err != nil {
			return err
		}
		coll = kind.String()
	}

	db, err := ws.openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := db.TagCounts(coll)
	if err != nil {
		return err
	}
	for _, tc := range counts {
		fmt.Fprintf(app.out, "%4d  %s\n", tc.Count, tc.Tag)
	}
	return nil
}

// Watch keeps the catalog current and re-validates changed entries until
// SIGINT or SIGTERM.
func Watch(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	ws, err := app.open()
	if err != nil {
		return err
	}

	db, err := ws.openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return index.Watch(gCtx, db, ws.store, ws.layout, ws.store.Root(), ws.logger, func(op, path string) {
			fmt.Fprintf(app.out, "%s %s\n", op, path)
			if op != "deleted" {
				ws.revalidate(app, path)
			}
		})
	})

	if err := g.Wait(); err != nil {
		ws.logger.Error("Watcher error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (w *workspace) revalidate(app *application, path string) {
	kind, ok := w.layout.KindOf(path)
	if !ok {
		return
	}
	data, err := w.store.Read(path)
	if err != nil {
		w.logger.Warn("watch: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	res, err := w.schemas.ValidateDocument(kind, data)
	if err != nil {
		w.logger.Warn("watch: validate failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	for _, is := range res.Issues {
		fmt.Fprintf(app.errOut, "⚠️ %s: %s\n", path, is)
	}
}

// ServeMCP serves the MCP tools over stdio until the client disconnects.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	ws, err := app.open()
	if err != nil {
		return err
	}

	db, err := ws.openCatalog()
	if err != nil {
		return err
	}
	defer db.Close()

	sc := scaffold.New(ws.store, ws.layout, ws.schemas,
		scaffold.WithClock(app.now),
		scaffold.WithLogger(ws.logger))

	srv := mcpserver.New(sc, ws.store, ws.layout, db, ws.schemas, ws.logger)
	ws.logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}
