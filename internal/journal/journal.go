package journal

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	ChangeJournalBucket = "change_journal"

	// Keys are zero-padded unix-nano timestamps plus the entry id,
	// so a bbolt cursor walks entries in emission order.
	keyFormat = "%020d-%s"
)

// Journal is a bbolt-backed log of emitted change notifications.
type Journal struct {
	db         *bbolt.DB
	mu         sync.RWMutex
	serializer Serializer
}

// Config contains the configuration for a Journal.
type Config struct {
	Path       string
	FileMode   os.FileMode
	Options    *bbolt.Options
	Serializer Serializer
}

// New opens (creating if needed) the journal database.
func New(cfg Config) (*Journal, error) {
	if cfg.Serializer == nil {
		cfg.Serializer = &GobSerializer{}
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0666
	}

	db, err := bbolt.Open(cfg.Path, cfg.FileMode, cfg.Options)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(ChangeJournalBucket))
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal: %w", err)
	}

	return &Journal{
		db:         db,
		serializer: cfg.Serializer,
	}, nil
}

func (j *Journal) Close() error {
	if j.db == nil {
		return ErrNilDB
	}
	return j.db.Close()
}

// Append persists an entry. A zero ID or Timestamp is filled in.
func (j *Journal) Append(entry *Entry) error {
	if entry == nil {
		return ErrNilEntry
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	data, err := j.serializer.Serialize(entry)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(keyFormat, entry.Timestamp.UnixNano(), entry.ID)

	j.mu.Lock()
	defer j.mu.Unlock()

	return j.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ChangeJournalBucket))
		if bucket == nil {
			return ErrBucketNotFound
		}
		return bucket.Put([]byte(key), data)
	})
}

// Get loads an entry by id.
func (j *Journal) Get(id string) (*Entry, error) {
	var found *Entry

	j.mu.RLock()
	defer j.mu.RUnlock()

	err := j.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ChangeJournalBucket))
		if bucket == nil {
			return ErrBucketNotFound
		}
		return bucket.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := j.serializer.Deserialize(v, &entry); err != nil {
				return err
			}
			if entry.ID == id {
				found = &entry
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrEntryNotFound
	}
	return found, nil
}

// Recent returns the n most recent entries, newest first.
func (j *Journal) Recent(n int) ([]*Entry, error) {
	var entries []*Entry

	j.mu.RLock()
	defer j.mu.RUnlock()

	err := j.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ChangeJournalBucket))
		if bucket == nil {
			return ErrBucketNotFound
		}

		c := bucket.Cursor()
		for k, v := c.Last(); k != nil && len(entries) < n; k, v = c.Prev() {
			var entry Entry
			if err := j.serializer.Deserialize(v, &entry); err != nil {
				return err
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Range returns entries with from <= Timestamp < to, oldest first.
func (j *Journal) Range(from, to time.Time) ([]*Entry, error) {
	var entries []*Entry

	min := []byte(fmt.Sprintf(keyFormat, from.UnixNano(), ""))
	max := []byte(fmt.Sprintf(keyFormat, to.UnixNano(), ""))

	j.mu.RLock()
	defer j.mu.RUnlock()

	err := j.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ChangeJournalBucket))
		if bucket == nil {
			return ErrBucketNotFound
		}

		c := bucket.Cursor()
		for k, v := c.Seek(min); k != nil && string(k) < string(max); k, v = c.Next() {
			var entry Entry
			if err := j.serializer.Deserialize(v, &entry); err != nil {
				return err
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Prune deletes entries older than before and returns how many were
// removed.
func (j *Journal) Prune(before time.Time) (int, error) {
	limit := []byte(fmt.Sprintf(keyFormat, before.UnixNano(), ""))
	removed := 0

	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ChangeJournalBucket))
		if bucket == nil {
			return ErrBucketNotFound
		}

		c := bucket.Cursor()
		for k, _ := c.First(); k != nil && string(k) < string(limit); k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
