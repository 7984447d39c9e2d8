package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fswatcher/internal/config"
	"fswatcher/internal/filter"
	"fswatcher/internal/httpapi"
	"fswatcher/internal/ignore"
	"fswatcher/internal/journal"
	"fswatcher/internal/util/logger/sl"
	"fswatcher/internal/watcher"
)

// Daemon wires the watch engine, the change journal and the HTTP API
// together from configuration.
type Daemon struct {
	cfg     *config.Config
	log     *slog.Logger
	engine  *watcher.MultiWatcher
	journal *journal.Journal
	api     *httpapi.Server
}

func New(cfg *config.Config, log *slog.Logger) (*Daemon, error) {
	if len(cfg.Watch.Roots) == 0 {
		return nil, fmt.Errorf("%w: no watch roots configured", watcher.ErrInvalidConfiguration)
	}

	chain := filter.NewChain()
	if len(cfg.Watch.Extensions) > 0 {
		chain.Append(filter.Extensions(cfg.Watch.Extensions...))
	}

	registry := ignore.NewRegistry()
	registry.AddPattern(watcher.DefaultIgnorePatterns...)
	registry.AddPattern(cfg.Watch.IgnorePatterns...)

	var predictor *ignore.Predictor
	if len(cfg.Watch.Transforms) > 0 {
		rules := make([]ignore.TransformRule, 0, len(cfg.Watch.Transforms))
		for _, tr := range cfg.Watch.Transforms {
			rules = append(rules, ignore.GlobRule(tr.Pattern, tr.Output))
		}
		predictor = ignore.NewPredictor(rules...)
	}

	engine := watcher.NewMultiWatcher(
		watcher.Config{
			DebounceDuration: cfg.Watch.Debounce,
			IncludeHidden:    cfg.Watch.IncludeHidden,
			Filters:          chain,
			Ignores:          registry,
			Predictor:        predictor,
			Logger:           log,
		},
		watcher.Options{
			MaxDepth:        cfg.Watch.MaxDepth,
			FollowSymlinks:  cfg.Watch.FollowSymlinks,
			ExcludePatterns: cfg.Watch.ExcludePatterns,
		},
		cfg.Watch.Recursive,
	)

	for _, root := range cfg.Watch.Roots {
		if err := engine.Add(root); err != nil {
			return nil, fmt.Errorf("add root %s: %w", root, err)
		}
	}

	j, err := journal.New(journal.Config{Path: cfg.Journal.Path})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	return &Daemon{
		cfg:     cfg,
		log:     log,
		engine:  engine,
		journal: j,
		api:     httpapi.New(cfg.HTTP.Addr, engine, j, log),
	}, nil
}

// Engine exposes the watch engine, mainly for tests.
func (d *Daemon) Engine() *watcher.MultiWatcher {
	return d.engine
}

// Run starts everything and blocks until ctx is done, then tears the
// stack down in reverse order.
func (d *Daemon) Run(ctx context.Context) error {
	notifications, cancel := d.engine.Subscribe()

	// Journal writer: every emitted batch becomes a persisted entry.
	recorded := make(chan struct{})
	go func() {
		defer close(recorded)
		d.record(notifications)
	}()

	if retention := d.cfg.Journal.Retention; retention > 0 {
		go d.pruneLoop(ctx, retention)
	}

	if err := d.engine.Start(); err != nil {
		cancel()
		<-recorded
		d.journal.Close()
		return fmt.Errorf("start engine: %w", err)
	}

	d.log.Info("watching",
		slog.Any("roots", d.engine.Roots()),
		slog.Bool("recursive", d.cfg.Watch.Recursive),
	)

	go func() {
		if err := d.api.Start(ctx); err != nil {
			d.log.Error("http api failed", sl.Err(err))
		}
	}()

	<-ctx.Done()

	if err := d.engine.Stop(); err != nil {
		d.log.Error("engine stop", sl.Err(err))
	}
	// Stop flushed the pipeline; closing the subscription lets the
	// recorder drain buffered notifications before the journal closes.
	cancel()
	<-recorded
	if err := d.journal.Close(); err != nil {
		d.log.Error("journal close", sl.Err(err))
	}
	d.log.Info("daemon stopped")
	return nil
}

func (d *Daemon) record(notifications <-chan watcher.Notification) {
	for n := range notifications {
		if n.Kind == watcher.WatchError {
			continue
		}
		entry := &journal.Entry{
			Dir:       n.Dir,
			Kind:      string(n.Kind),
			Paths:     n.Paths,
			Timestamp: n.Timestamp,
		}
		if err := d.journal.Append(entry); err != nil {
			d.log.Warn("journal append failed", sl.Err(err))
		}
	}
}

func (d *Daemon) pruneLoop(ctx context.Context, retention time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := d.journal.Prune(time.Now().Add(-retention))
			if err != nil {
				d.log.Warn("journal prune failed", sl.Err(err))
				continue
			}
			if removed > 0 {
				d.log.Debug("journal pruned", slog.Int("removed", removed))
			}
		}
	}
}
