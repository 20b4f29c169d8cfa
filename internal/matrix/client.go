// Package matrix adapts the mautrix client to the narrow capability surface
// the bot consumes, and feeds sync events into the dispatcher.
package matrix

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/grvsrs/matrixbot/internal/command"
)

// Dispatcher consumes inbound room messages. *bot.Bot implements it.
type Dispatcher interface {
	HandleMessage(ctx context.Context, msg command.Message) error
}

// Client wraps a mautrix client behind the command.ChatClient interface.
type Client struct {
	mx     *mautrix.Client
	logger zerolog.Logger
}

// NewClient connects the adapter to a homeserver with a pre-provisioned
// access token.
func NewClient(homeserverURL, userID, accessToken, deviceID string, logger zerolog.Logger) (*Client, error) {
	mx, err := mautrix.NewClient(homeserverURL, id.UserID(userID), accessToken)
	if err != nil {
		return nil, fmt.Errorf("creating matrix client: %w", err)
	}
	if deviceID != "" {
		mx.DeviceID = id.DeviceID(deviceID)
	}
	return &Client{
		mx:     mx,
		logger: logger.With().Str("component", "matrix").Logger(),
	}, nil
}

// SendText posts a plain-text message and returns the new event ID.
func (c *Client) SendText(ctx context.Context, roomID, text string) (string, error) {
	resp, err := c.mx.SendText(ctx, id.RoomID(roomID), text)
	if err != nil {
		return "", fmt.Errorf("sending text to %s: %w", roomID, err)
	}
	return resp.EventID.String(), nil
}

// RoomStateEvent fetches one state event's content. It fails when the state
// event does not exist; handlers fall back to their defaults.
func (c *Client) RoomStateEvent(ctx context.Context, roomID, eventType, stateKey string) (map[string]any, error) {
	var content map[string]any
	evtType := event.Type{Type: eventType, Class: event.StateEventType}
	if err := c.mx.StateEvent(ctx, id.RoomID(roomID), evtType, stateKey, &content); err != nil {
		return nil, fmt.Errorf("fetching state %s in %s: %w", eventType, roomID, err)
	}
	return content, nil
}

// RoomState fetches the full current room state.
func (c *Client) RoomState(ctx context.Context, roomID string) ([]command.StateEvent, error) {
	state, err := c.mx.State(ctx, id.RoomID(roomID))
	if err != nil {
		return nil, fmt.Errorf("fetching state of %s: %w", roomID, err)
	}
	var events []command.StateEvent
	for evtType, byKey := range state {
		for stateKey, evt := range byKey {
			events = append(events, command.StateEvent{
				Type:     evtType.Type,
				StateKey: stateKey,
				Content:  evt.Content.Raw,
			})
		}
	}
	return events, nil
}

// AttachDispatcher wires sync events into the dispatcher. Events older than
// since are backlog from the initial sync and are not dispatched. Rooms the
// bot is invited to are joined automatically.
func (c *Client) AttachDispatcher(d Dispatcher, since time.Time) {
	syncer := c.mx.Syncer.(*mautrix.DefaultSyncer)
	sinceMS := since.UnixMilli()

	syncer.OnEventType(event.EventMessage, func(ctx context.Context, evt *event.Event) {
		if evt.Timestamp < sinceMS {
			return
		}
		content := evt.Content.AsMessage()
		if content == nil {
			return
		}
		msg := command.Message{
			RoomID:  evt.RoomID.String(),
			EventID: evt.ID.String(),
			Sender:  evt.Sender.String(),
			MsgType: string(content.MsgType),
			Body:    content.Body,
		}
		if err := d.HandleMessage(ctx, msg); err != nil {
			c.logger.Error().Err(err).
				Str("event_id", msg.EventID).
				Str("room_id", msg.RoomID).
				Msg("dispatch failed")
		}
	})

	syncer.OnEventType(event.EventEncrypted, func(ctx context.Context, evt *event.Event) {
		// No crypto store configured; messages in encrypted rooms cannot be
		// read, but their arrival is worth seeing in the logs.
		c.logger.Warn().
			Str("event_id", evt.ID.String()).
			Str("room_id", evt.RoomID.String()).
			Msg("encrypted event received, unable to decrypt")
	})

	syncer.OnEventType(event.StateMember, func(ctx context.Context, evt *event.Event) {
		if evt.GetStateKey() != c.mx.UserID.String() {
			return
		}
		if evt.Content.AsMember().Membership != event.MembershipInvite {
			return
		}
		c.logger.Info().Str("room_id", evt.RoomID.String()).Str("inviter", evt.Sender.String()).Msg("accepting room invite")
		if _, err := c.mx.JoinRoomByID(ctx, evt.RoomID); err != nil {
			c.logger.Error().Err(err).Str("room_id", evt.RoomID.String()).Msg("joining room failed")
		}
	})
}

// Sync runs the sync loop until ctx is cancelled.
func (c *Client) Sync(ctx context.Context) error {
	return c.mx.SyncWithContext(ctx)
}

// Whoami verifies the access token against the homeserver.
func (c *Client) Whoami(ctx context.Context) error {
	_, err := c.mx.Whoami(ctx)
	return err
}
