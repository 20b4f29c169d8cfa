// Package suggest records user-submitted suggestions in the bot store.
package suggest

import (
	"time"

	"github.com/grvsrs/matrixbot/internal/storage"
)

const storageKey = "suggestions"

// Suggestion is one recorded suggestion. IDs start at 1 and are never reused.
type Suggestion struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Sender    string `json:"sender"`
	RoomID    string `json:"roomId"`
	CreatedAt string `json:"createdAt"`
}

// Store is the persisted shape: an append-only list plus the next free ID.
type Store struct {
	NextID int          `json:"nextId"`
	Items  []Suggestion `json:"items"`
}

func defaultStore() Store {
	return Store{NextID: 1}
}

// Add allocates the next ID, appends the suggestion and persists it.
func Add(s storage.Storage, text, sender, roomID string, now time.Time) (Suggestion, error) {
	var created Suggestion
	_, err := storage.Update(s, storageKey, defaultStore(), func(cur Store) Store {
		created = Suggestion{
			ID:        cur.NextID,
			Text:      text,
			Sender:    sender,
			RoomID:    roomID,
			CreatedAt: now.UTC().Format(time.RFC3339),
		}
		return Store{
			NextID: cur.NextID + 1,
			Items:  append(cur.Items[:len(cur.Items):len(cur.Items)], created),
		}
	})
	if err != nil {
		return Suggestion{}, err
	}
	return created, nil
}

// List returns all suggestions in insertion order.
func List(s storage.Storage) ([]Suggestion, error) {
	store, ok, err := storage.Get[Store](s, storageKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return store.Items, nil
}
