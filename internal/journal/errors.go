package journal

import "errors"

var (
	ErrNilDB          = errors.New("database connection is nil")
	ErrBucketNotFound = errors.New("bucket not found")
	ErrNilEntry       = errors.New("journal entry is nil")
	ErrEntryNotFound  = errors.New("journal entry not found")
)
