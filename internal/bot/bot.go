// Package bot dispatches inbound room messages to command handlers.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/grvsrs/matrixbot/internal/command"
	"github.com/grvsrs/matrixbot/internal/metrics"
	"github.com/grvsrs/matrixbot/internal/requestid"
	"github.com/grvsrs/matrixbot/internal/stats"
	"github.com/grvsrs/matrixbot/internal/storage"
)

// Config holds the dispatch-relevant slice of the bot configuration.
type Config struct {
	// UserID is the bot's own Matrix ID, used to break self-reply loops.
	UserID string
	// Prefix marks a message as a command invocation.
	Prefix string
}

// Bot owns the command registry and turns inbound message events into
// command executions. One misbehaving handler cannot stop it from serving
// subsequent events.
type Bot struct {
	cfg      Config
	client   command.ChatClient
	store    storage.Storage
	registry *command.Registry
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	start    time.Time
	now      func() time.Time
}

// New creates a dispatcher over the given registry. metricsCollector may be
// nil.
func New(cfg Config, client command.ChatClient, store storage.Storage, registry *command.Registry, metricsCollector *metrics.Metrics, logger zerolog.Logger) *Bot {
	return &Bot{
		cfg:      cfg,
		client:   client,
		store:    store,
		registry: registry,
		metrics:  metricsCollector,
		logger:   logger.With().Str("component", "bot").Logger(),
		start:    time.Now(),
		now:      time.Now,
	}
}

// Registry exposes the command catalogue, e.g. for the admin API.
func (b *Bot) Registry() *command.Registry { return b.registry }

// StartTime reports when this dispatcher was constructed.
func (b *Bot) StartTime() time.Time { return b.start }

// HandleMessage processes one inbound room message event. Ordinary chatter,
// self-sent and non-text events are dropped silently. Handler faults are
// contained: they are logged, answered with a generic reply and never
// returned. The error return covers infrastructure failures only (stats
// persistence, reply delivery).
func (b *Bot) HandleMessage(ctx context.Context, msg command.Message) error {
	if msg.Sender == "" || msg.Sender == b.cfg.UserID {
		b.metrics.RecordIgnored()
		return nil
	}
	if msg.MsgType != "m.text" || msg.Body == "" {
		b.metrics.RecordIgnored()
		return nil
	}
	inv, ok := command.Parse(msg.Body, b.cfg.Prefix)
	if !ok {
		b.metrics.RecordIgnored()
		return nil
	}

	ctx, dispatchID := requestid.New(ctx)
	logger := b.logger.With().
		Str("dispatch_id", dispatchID).
		Str("room_id", msg.RoomID).
		Str("sender", msg.Sender).
		Str("command", inv.Name).
		Logger()

	def, ok := b.registry.Get(inv.Name)
	if !ok {
		b.metrics.RecordCommand(inv.Name, "unknown")
		logger.Debug().Msg("unknown command")
		if _, err := b.client.SendText(ctx, msg.RoomID,
			fmt.Sprintf("Unknown command: %s. Try %shelp", inv.Name, b.cfg.Prefix)); err != nil {
			return fmt.Errorf("sending unknown-command reply: %w", err)
		}
		return nil
	}

	// Count before the handler runs: a command that later fails or shows a
	// usage hint is still a dispatched command.
	now := b.now()
	if _, err := stats.Record(b.store, inv.Name, now); err != nil {
		b.metrics.RecordCommand(inv.Name, "error")
		return fmt.Errorf("recording command stats: %w", err)
	}

	req := &command.Request{
		RoomID:    msg.RoomID,
		Event:     msg,
		Sender:    msg.Sender,
		Args:      inv.Args,
		RawArgs:   inv.RawArgs,
		Prefix:    b.cfg.Prefix,
		Client:    b.client,
		Store:     b.store,
		Now:       now,
		StartTime: b.start,
		Registry:  b.registry,
	}

	started := time.Now()
	err := b.invoke(ctx, def, req)
	b.metrics.ObserveDispatch(inv.Name, time.Since(started).Seconds())
	if err != nil {
		b.metrics.RecordCommand(inv.Name, "error")
		b.metrics.RecordHandlerError(inv.Name)
		logger.Error().Err(err).Msg("command handler failed")
		if _, sendErr := b.client.SendText(ctx, msg.RoomID,
			"Something went wrong while running that command."); sendErr != nil {
			logger.Error().Err(sendErr).Msg("sending failure reply")
		}
		return nil
	}

	b.metrics.RecordCommand(inv.Name, "ok")
	logger.Debug().Msg("command handled")
	return nil
}

// invoke runs the handler, converting panics into errors so the fault stops
// at this boundary.
func (b *Bot) invoke(ctx context.Context, def command.Definition, req *command.Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return def.Run(ctx, req)
}
