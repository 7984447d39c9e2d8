package filter

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Predicate is a pure boolean test over a candidate path.
type Predicate func(path string) bool

var imageExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "webp", "tiff", "heic"}

// Extensions matches paths whose extension is in the given set,
// case-insensitive, with or without the leading dot.
func Extensions(exts ...string) Predicate {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		set[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return func(path string) bool {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		_, ok := set[ext]
		return ok
	}
}

// Images matches paths with a common raster image extension.
func Images() Predicate {
	return Extensions(imageExtensions...)
}

// NameMatches matches paths whose base name satisfies the regexp.
func NameMatches(re *regexp.Regexp) Predicate {
	return func(path string) bool {
		return re.MatchString(filepath.Base(path))
	}
}

// SizeBetween matches regular files whose size is within [min, max].
// Paths that cannot be stat'ed do not match.
func SizeBetween(min, max int64) Predicate {
	return func(path string) bool {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return false
		}
		return info.Size() >= min && info.Size() <= max
	}
}

// ModifiedWithin matches paths modified no longer than d ago.
func ModifiedWithin(d time.Duration) Predicate {
	return func(path string) bool {
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		return time.Since(info.ModTime()) <= d
	}
}

// DirectoriesOnly matches existing directories.
func DirectoriesOnly() Predicate {
	return func(path string) bool {
		info, err := os.Stat(path)
		return err == nil && info.IsDir()
	}
}

// FilesOnly matches existing regular files.
func FilesOnly() Predicate {
	return func(path string) bool {
		info, err := os.Stat(path)
		return err == nil && info.Mode().IsRegular()
	}
}

// And builds a predicate satisfied when every operand is satisfied.
// Operands are not mutated.
func And(preds ...Predicate) Predicate {
	return func(path string) bool {
		for _, p := range preds {
			if !p(path) {
				return false
			}
		}
		return true
	}
}

// Or builds a predicate satisfied when at least one operand is satisfied.
func Or(preds ...Predicate) Predicate {
	return func(path string) bool {
		for _, p := range preds {
			if p(path) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(pred Predicate) Predicate {
	return func(path string) bool {
		return !pred(path)
	}
}
