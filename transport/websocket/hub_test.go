package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/checkers-backend/internal/entity"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func newTestEvent(kind entity.EventKind) *entity.GameEvent {
	board := entity.NewStartingBoard()

	return &entity.GameEvent{
		Kind:        kind,
		GameID:      "g-1",
		Red:         entity.Player{ID: "alice"},
		White:       entity.Player{ID: "bob"},
		ActiveColor: entity.Red,
		Board:       &board,
	}
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := newTestHub()
	c := &client{hub: hub, gameID: "g-1", send: make(chan []byte, 1)}

	// When: a client is registered
	hub.registerClient(c)

	// Then: it watches its game
	require.Contains(t, hub.watchers, entity.GameID("g-1"))
	assert.Len(t, hub.watchers["g-1"], 1)

	// When: it is unregistered twice
	hub.unregisterClient(c)
	hub.unregisterClient(c)

	// Then: the game entry is cleaned up and send is closed once
	assert.NotContains(t, hub.watchers, entity.GameID("g-1"))
	_, open := <-c.send
	assert.False(t, open)
}

func TestHub_BroadcastEvent(t *testing.T) {
	t.Run("Each watcher gets its own orientation", func(t *testing.T) {
		// Given: a red watcher and a white watcher of the same game, and one of another game
		hub := newTestHub()
		red := &client{hub: hub, gameID: "g-1", orientation: entity.Red, send: make(chan []byte, 1)}
		white := &client{hub: hub, gameID: "g-1", orientation: entity.White, send: make(chan []byte, 1)}
		other := &client{hub: hub, gameID: "g-2", orientation: entity.Red, send: make(chan []byte, 1)}
		hub.registerClient(red)
		hub.registerClient(white)
		hub.registerClient(other)

		// When: an event for g-1 is broadcast
		hub.broadcastEvent(newTestEvent(entity.EventTurnSubmitted))

		// Then: both g-1 watchers get the board from their own side
		var redMsg, whiteMsg Message
		require.NoError(t, json.Unmarshal(<-red.send, &redMsg))
		require.NoError(t, json.Unmarshal(<-white.send, &whiteMsg))

		require.NotNil(t, redMsg.Board)
		require.NotNil(t, whiteMsg.Board)
		assert.Equal(t, entity.Red, redMsg.Board.Orientation)
		assert.Equal(t, 7, redMsg.Board.Rows[0].Index)
		assert.Equal(t, entity.White, whiteMsg.Board.Orientation)
		assert.Equal(t, 0, whiteMsg.Board.Rows[0].Index)

		// Then: the other game's watcher got nothing
		assert.Empty(t, other.send)
	})

	t.Run("Archived games drop their watchers", func(t *testing.T) {
		// Given: a watcher of g-1
		hub := newTestHub()
		c := &client{hub: hub, gameID: "g-1", send: make(chan []byte, 1)}
		hub.registerClient(c)

		// When: the game is archived
		hub.broadcastEvent(&entity.GameEvent{Kind: entity.EventGameArchived, GameID: "g-1", ReplayID: 1})

		// Then: the watcher gets the final message and is disconnected
		var msg Message
		require.NoError(t, json.Unmarshal(<-c.send, &msg))
		assert.Equal(t, entity.EventGameArchived, msg.Kind)
		assert.Nil(t, msg.Board)

		_, open := <-c.send
		assert.False(t, open)
		assert.Empty(t, hub.watchers)
	})

	t.Run("Slow watchers are dropped", func(t *testing.T) {
		// Given: a watcher whose buffer is already full
		hub := newTestHub()
		c := &client{hub: hub, gameID: "g-1", send: make(chan []byte, 1)}
		c.send <- []byte("stale")
		hub.registerClient(c)

		// When: another event arrives
		hub.broadcastEvent(newTestEvent(entity.EventTurnSubmitted))

		// Then: the watcher is unregistered
		assert.Empty(t, hub.watchers)
	})
}

func TestHub_Publish(t *testing.T) {
	t.Run("Fails once the hub has stopped", func(t *testing.T) {
		// Given: a hub whose loop has ended
		hub := newTestHub()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		hub.Run(ctx)

		// When: an event is published
		err := hub.Publish(context.Background(), newTestEvent(entity.EventTurnSubmitted))

		// Then: ErrHubStopped is returned
		require.ErrorIs(t, err, ErrHubStopped)
	})

	t.Run("Honors the caller's context", func(t *testing.T) {
		// Given: a hub whose loop never started
		hub := newTestHub()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		// When: an event is published
		err := hub.Publish(ctx, newTestEvent(entity.EventTurnSubmitted))

		// Then: the deadline is reported
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestHub_ServeWS(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Given: a running hub behind a test server that subscribes white viewers to g-1
	hub := newTestHub()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "g-1", entity.White, newTestEvent(entity.EventGameCreated))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	// When: a watcher connects
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	// Then: the current board arrives first, oriented for white
	var initial Message
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, entity.EventGameCreated, initial.Kind)
	require.NotNil(t, initial.Board)
	assert.Equal(t, entity.White, initial.Board.Orientation)

	// When: a turn is published
	turnEvent := newTestEvent(entity.EventTurnSubmitted)
	turnEvent.ActiveColor = entity.White
	require.NoError(t, hub.Publish(ctx, turnEvent))

	// Then: the watcher receives it
	var update Message
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, entity.EventTurnSubmitted, update.Kind)
	assert.Equal(t, entity.White, update.ActiveColor)

	// When: the game is archived
	require.NoError(t, hub.Publish(ctx, &entity.GameEvent{Kind: entity.EventGameArchived, GameID: "g-1", ReplayID: 1, Winner: entity.Red}))

	// Then: the final message arrives and the connection closes normally
	var final Message
	require.NoError(t, conn.ReadJSON(&final))
	assert.Equal(t, entity.Red, final.Winner)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}
