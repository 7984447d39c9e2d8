package watcher

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	DefaultDebounceDuration = 500 * time.Millisecond
	DefaultBufferSize       = 100

	// UnlimitedDepth disables the recursion depth limit.
	UnlimitedDepth = -1
)

var (
	// Event classes monitored by default. Chmod-class noise is
	// excluded; it can be re-enabled via Config.EventMask.
	DefaultEventMask = fsnotify.Create | fsnotify.Write | fsnotify.Rename | fsnotify.Remove

	// Base-name patterns ignored by default: editor droppings and
	// OS junk that would otherwise wake consumers constantly.
	DefaultIgnorePatterns = []string{
		"*:Zone.Identifier",
		"*.tmp",
		"*.swp",
		"*.swo",
		"*.swx",
		"*~",
		".#*",
		"#*#",
		"4913", // vim write test file
	}
)
