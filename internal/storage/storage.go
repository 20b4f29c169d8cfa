// Package storage persists bot state as a single JSON document of named keys.
package storage

import (
	"encoding/json"
	"fmt"
)

// Storage is a key-value store over one JSON document. Values are stored as
// raw JSON; the typed helpers below handle encoding. UpdateRaw runs its apply
// function under the store's lock, so a read-modify-write on one key can
// never lose a concurrent increment.
type Storage interface {
	GetRaw(key string) (json.RawMessage, bool)
	SetRaw(key string, value json.RawMessage) error
	UpdateRaw(key string, apply func(current json.RawMessage, found bool) (json.RawMessage, error)) (json.RawMessage, error)
	Flush() error
}

// Get decodes the value stored under key into T. The second return is false
// when the key has never been written.
func Get[T any](s Storage, key string) (T, bool, error) {
	var v T
	raw, ok := s.GetRaw(key)
	if !ok {
		return v, false, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, false, fmt.Errorf("storage: decoding %q: %w", key, err)
	}
	return v, true, nil
}

// Set replaces the value under key unconditionally and flushes.
func Set[T any](s Storage, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("storage: encoding %q: %w", key, err)
	}
	return s.SetRaw(key, raw)
}

// Update applies fn to the current value under key, or to def when the key
// has never been written, persists the result and returns it.
func Update[T any](s Storage, key string, def T, fn func(T) T) (T, error) {
	var out T
	_, err := s.UpdateRaw(key, func(current json.RawMessage, found bool) (json.RawMessage, error) {
		v := def
		if found {
			if err := json.Unmarshal(current, &v); err != nil {
				return nil, fmt.Errorf("decoding %q: %w", key, err)
			}
		}
		v = fn(v)
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", key, err)
		}
		out = v
		return raw, nil
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("storage: %w", err)
	}
	return out, nil
}
