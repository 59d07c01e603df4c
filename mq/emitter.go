package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Channel is the Redis pub/sub channel all entity change events go to.
const Channel = "entity-events"

// Index describes one entity change.
type Index struct {
	EventName  string    `json:"event"`
	EntityType string    `json:"entity_type"`
	EntityId   string    `json:"entity_id"`
	Method     string    `json:"method"`
	ItemType   string    `json:"item_type,omitempty"`
	ItemId     string    `json:"item_id,omitempty"`
	At         time.Time `json:"at"`
}

// Emitter publishes Index events. A nil or client-less Emitter drops events.
type Emitter struct {
	conn *redis.Client
	log  zerolog.Logger
}

func NewEmitter(conn *redis.Client, log zerolog.Logger) *Emitter {
	return &Emitter{conn: conn, log: log.With().Str("component", "mq").Logger()}
}

// Publish sends the event and reports the failure to the caller.
func (e *Emitter) Publish(ctx context.Context, eventName string, content Index) error {
	if e == nil || e.conn == nil {
		return nil
	}
	content.EventName = eventName
	if content.At.IsZero() {
		content.At = time.Now().UTC()
	}
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := e.conn.Publish(ctx, Channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", eventName, err)
	}
	return nil
}

// Emit is fire-and-forget: failures are logged, never returned.
func (e *Emitter) Emit(ctx context.Context, eventName string, content Index) {
	if e == nil || e.conn == nil {
		return
	}
	if err := e.Publish(ctx, eventName, content); err != nil {
		e.log.Warn().Err(err).Str("event", eventName).Msg("emit failed")
		return
	}
	e.log.Debug().Str("event", eventName).Str("entity_id", content.EntityId).Msg("event published")
}
