package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/checkers-backend/internal/entity"
	"github.com/rocketscienceinc/checkers-backend/testing/suite"
)

func TestPublisher_Publish(t *testing.T) {
	ctx, st := suite.New(t)

	// Given: a subscriber on the events channel
	sub := st.Redis.Subscribe(ctx, "checkers.events")
	t.Cleanup(func() { _ = sub.Close() })

	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	publisher := NewPublisher(st.Redis, "checkers.events")
	event := &entity.GameEvent{
		Kind:   entity.EventGameCreated,
		GameID: "g-1",
		Red:    entity.Player{ID: "alice"},
		White:  entity.Player{ID: "bob"},
		At:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	// When: an event is published
	err = publisher.Publish(ctx, event)

	// Then: the subscriber receives it as JSON
	require.NoError(t, err)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var received entity.GameEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &received))
	assert.Equal(t, *event, received)
}

func TestConnect(t *testing.T) {
	t.Run("Connect_BadAddress", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		// When: connecting to a port nothing listens on
		client, err := Connect(ctx, "127.0.0.1:1")

		// Then: the ping fails
		require.Error(t, err)
		assert.Nil(t, client)
	})
}
