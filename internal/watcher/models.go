package watcher

import (
	"io"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"fswatcher/internal/filter"
	"fswatcher/internal/ignore"
)

// ChangeKind classifies a raw filesystem event.
type ChangeKind string

const (
	Created  ChangeKind = "created"
	Modified ChangeKind = "modified"
	Deleted  ChangeKind = "deleted"
	Renamed  ChangeKind = "renamed"
	Unknown  ChangeKind = "unknown"
)

func kindOf(op fsnotify.Op) ChangeKind {
	switch {
	case op.Has(fsnotify.Create):
		return Created
	case op.Has(fsnotify.Write):
		return Modified
	case op.Has(fsnotify.Remove):
		return Deleted
	case op.Has(fsnotify.Rename):
		return Renamed
	default:
		return Unknown
	}
}

// ChangeEvent is an immutable record of one raw notification,
// produced fresh per event.
type ChangeEvent struct {
	Path      string     `json:"path"`
	Kind      ChangeKind `json:"kind"`
	Timestamp time.Time  `json:"timestamp"`
}

// NotificationKind distinguishes the three consumer-facing emissions.
type NotificationKind string

const (
	DirectoryChanged NotificationKind = "directory_changed"
	FilteredChange   NotificationKind = "filtered_change"
	WatchError       NotificationKind = "error"
)

// Notification is the value delivered to subscriber channels and the
// websocket stream. Callback listeners receive the same content
// through the Callbacks functions.
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	Dir       string           `json:"dir,omitempty"`
	Paths     []string         `json:"paths,omitempty"`
	Events    []ChangeEvent    `json:"events,omitempty"`
	Error     string           `json:"error,omitempty"`
	Timestamp time.Time        `json:"timestamp"`

	// err keeps the original error for callback delivery; the
	// serialized surface only sees the Error string.
	err error
}

// Callbacks is the push-style delivery mechanism. Any field may be
// nil; nil callbacks are skipped.
type Callbacks struct {
	OnDirectoryChange func(dir string)
	OnFilteredChange  func(paths []string)
	OnError           func(err error)
}

// Config carries the shared state and tunables for every watch
// spawned from one manager. Filters, Ignores and Predictor are shared
// by reference across the whole tree and may be mutated while
// watching.
type Config struct {
	DebounceDuration time.Duration
	EventMask        fsnotify.Op
	IncludeHidden    bool
	BufferSize       int
	Filters          *filter.Chain
	Ignores          *ignore.Registry
	Predictor        *ignore.Predictor
	Logger           *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.DebounceDuration == 0 {
		c.DebounceDuration = DefaultDebounceDuration
	}
	if c.EventMask == 0 {
		c.EventMask = DefaultEventMask
	}
	if c.BufferSize == 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.Filters == nil {
		c.Filters = filter.NewChain()
	}
	if c.Ignores == nil {
		c.Ignores = ignore.NewRegistry()
		c.Ignores.AddPattern(DefaultIgnorePatterns...)
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Options controls recursive tree construction.
type Options struct {
	// MaxDepth is inclusive, with the root at depth 0. Zero and
	// negative values mean unlimited; a caller who wants the root
	// alone uses a DirectoryWatcher.
	MaxDepth int
	// FollowSymlinks enables descending into symlinked directories.
	// The tree map doubles as the visited set, so a symlink cycle
	// cannot grow the tree forever.
	FollowSymlinks bool
	// ExcludePatterns are globs matched against a directory's base
	// name; matching directories and their subtrees are skipped.
	ExcludePatterns []string
}

func (o Options) withDefaults() Options {
	if o.MaxDepth == 0 {
		o.MaxDepth = UnlimitedDepth
	}
	return o
}
