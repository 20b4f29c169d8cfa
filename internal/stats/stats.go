// Package stats tracks command usage counters in the bot store.
package stats

import (
	"time"

	"github.com/grvsrs/matrixbot/internal/storage"
)

const storageKey = "stats"

// Snapshot is a point-in-time read of the accumulated counters.
type Snapshot struct {
	TotalCommands int            `json:"totalCommands"`
	ByCommand     map[string]int `json:"byCommand"`
	LastCommandAt string         `json:"lastCommandAt,omitempty"`
}

func defaultSnapshot() Snapshot {
	return Snapshot{ByCommand: map[string]int{}}
}

// Record counts one dispatched command and returns the new snapshot. It runs
// as a single read-modify-write, so counters never go backwards.
func Record(s storage.Storage, commandName string, now time.Time) (Snapshot, error) {
	return storage.Update(s, storageKey, defaultSnapshot(), func(cur Snapshot) Snapshot {
		next := Snapshot{
			TotalCommands: cur.TotalCommands + 1,
			ByCommand:     make(map[string]int, len(cur.ByCommand)+1),
			LastCommandAt: now.UTC().Format(time.RFC3339),
		}
		for name, count := range cur.ByCommand {
			next.ByCommand[name] = count
		}
		next.ByCommand[commandName]++
		return next
	})
}

// Get returns the current snapshot, or the zero-value default when nothing
// has been recorded yet.
func Get(s storage.Storage) (Snapshot, error) {
	snap, ok, err := storage.Get[Snapshot](s, storageKey)
	if err != nil {
		return Snapshot{}, err
	}
	if !ok {
		return defaultSnapshot(), nil
	}
	if snap.ByCommand == nil {
		snap.ByCommand = map[string]int{}
	}
	return snap, nil
}
