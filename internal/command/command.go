// Package command implements the bot's command surface: parsing prefixed
// messages, the name-keyed registry and the built-in handler catalogue.
package command

import (
	"context"
	"time"

	"github.com/grvsrs/matrixbot/internal/storage"
)

// ChatClient is the narrow capability the bot needs from the Matrix client.
// Failures from SendText propagate to the dispatcher's error boundary;
// room-state lookups are fallible and handlers fall back to defaults.
type ChatClient interface {
	SendText(ctx context.Context, roomID, text string) (string, error)
	RoomStateEvent(ctx context.Context, roomID, eventType, stateKey string) (map[string]any, error)
	RoomState(ctx context.Context, roomID string) ([]StateEvent, error)
}

// StateEvent is the slice of a room state event the handlers inspect.
type StateEvent struct {
	Type     string
	StateKey string
	Content  map[string]any
}

// Message is one inbound room message event, already decrypted by the client.
type Message struct {
	RoomID  string
	EventID string
	Sender  string
	MsgType string
	Body    string
}

// Handler runs one command invocation. Any returned error is caught at the
// dispatcher boundary; it never reaches the room verbatim.
type Handler func(ctx context.Context, req *Request) error

// Definition describes one registered command.
type Definition struct {
	Name    string
	Summary string
	Usage   string
	Run     Handler
}

// Request carries everything a handler may consult for one invocation. It
// lives only for the duration of that invocation.
type Request struct {
	RoomID    string
	Event     Message
	Sender    string
	Args      []string
	RawArgs   string
	Prefix    string
	Client    ChatClient
	Store     storage.Storage
	Now       time.Time
	StartTime time.Time
	Registry  *Registry
}

func (r *Request) reply(ctx context.Context, text string) error {
	_, err := r.Client.SendText(ctx, r.RoomID, text)
	return err
}
