package watcher

import "errors"

var (
	ErrDirectoryNotFound       = errors.New("directory not found")
	ErrInvalidConfiguration    = errors.New("invalid configuration")
	ErrCannotOpenDirectory     = errors.New("cannot open directory")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrSystemResources         = errors.New("system resources unavailable")
	ErrWatcherClosed           = errors.New("watcher is closed")
	ErrAlreadyWatching         = errors.New("path is already being watched")
)
