package journal

import (
	"bytes"
	"encoding/gob"
	"time"
)

// Entry is the persisted record of one emitted notification batch.
// It records what was already delivered, not watch state.
type Entry struct {
	ID        string
	Dir       string
	Kind      string
	Paths     []string
	Timestamp time.Time
}

// Serializer provides the interface for serializing/deserializing
// journal entries.
type Serializer interface {
	Serialize(v interface{}) ([]byte, error)
	Deserialize(data []byte, v interface{}) error
}

// GobSerializer implements Serializer using encoding/gob.
type GobSerializer struct{}

func (s *GobSerializer) Serialize(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *GobSerializer) Deserialize(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
