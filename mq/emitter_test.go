package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitPublishesToChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, Channel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	e := NewEmitter(client, zerolog.Nop())
	e.Emit(ctx, "restaurant-created", Index{EntityType: "restaurant", EntityId: "r1", Method: "POST"})

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var got Index
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, "restaurant-created", got.EventName)
	assert.Equal(t, "r1", got.EntityId)
	assert.False(t, got.At.IsZero())
}

func TestNilEmitterIsNoop(t *testing.T) {
	var e *Emitter
	assert.NoError(t, e.Publish(context.Background(), "x", Index{}))
	e.Emit(context.Background(), "x", Index{})
}
