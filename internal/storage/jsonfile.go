package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// JSONFile is a Storage backed by one JSON file. The whole document lives in
// memory; every mutation marks it dirty and flushes before returning, so the
// file and memory converge after each successful call. Safe for concurrent
// use; one writer at a time per document.
type JSONFile struct {
	mu      sync.Mutex
	path    string
	doc     map[string]json.RawMessage
	dirty   bool
	flushes atomic.Int64
	logger  zerolog.Logger
}

// Open loads the document at path, creating parent directories as needed.
// A missing file is the empty-state bootstrap; any other read or parse
// failure is returned to the caller.
func Open(path string, logger zerolog.Logger) (*JSONFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	doc := make(map[string]json.RawMessage)
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing store file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// First run, start empty.
	default:
		return nil, fmt.Errorf("reading store file %s: %w", path, err)
	}

	return &JSONFile{
		path:   path,
		doc:    doc,
		logger: logger.With().Str("component", "storage").Logger(),
	}, nil
}

// GetRaw returns the current value under key, if any.
func (s *JSONFile) GetRaw(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.doc[key]
	return raw, ok
}

// SetRaw replaces the value under key and flushes.
func (s *JSONFile) SetRaw(key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc[key] = value
	s.dirty = true
	return s.flushLocked()
}

// UpdateRaw applies the update function to the current value under key while
// holding the document lock, stores the result and flushes.
func (s *JSONFile) UpdateRaw(key string, apply func(current json.RawMessage, found bool) (json.RawMessage, error)) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, found := s.doc[key]
	next, err := apply(current, found)
	if err != nil {
		return nil, err
	}
	s.doc[key] = next
	s.dirty = true
	if err := s.flushLocked(); err != nil {
		return nil, err
	}
	return next, nil
}

// Flush writes the whole document to disk. No-op when nothing changed since
// the last flush.
func (s *JSONFile) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *JSONFile) flushLocked() error {
	if !s.dirty {
		return nil
	}
	payload, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store document: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("writing store file %s: %w", s.path, err)
	}
	s.dirty = false
	s.flushes.Add(1)
	s.logger.Debug().Int("bytes", len(payload)).Msg("store flushed")
	return nil
}

// FlushCount reports how many times the document has been written, for the
// storage metrics gauge.
func (s *JSONFile) FlushCount() int64 {
	return s.flushes.Load()
}
