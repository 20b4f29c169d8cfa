package storage

import (
	"encoding/json"
	"sync"
)

// Memory is an in-memory Storage with no backing file, used in tests and
// anywhere durability is not wanted.
type Memory struct {
	mu  sync.Mutex
	doc map[string]json.RawMessage
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{doc: make(map[string]json.RawMessage)}
}

func (s *Memory) GetRaw(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.doc[key]
	return raw, ok
}

func (s *Memory) SetRaw(key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc[key] = value
	return nil
}

func (s *Memory) UpdateRaw(key string, apply func(current json.RawMessage, found bool) (json.RawMessage, error)) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, found := s.doc[key]
	next, err := apply(current, found)
	if err != nil {
		return nil, err
	}
	s.doc[key] = next
	return next, nil
}

func (s *Memory) Flush() error { return nil }
