package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/checkers-backend/internal/entity"
	"github.com/rocketscienceinc/checkers-backend/internal/game"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Spectators only send control frames.
	maxMessageSize = 512

	sendBuffer = 16
)

var ErrHubStopped = errors.New("spectator hub stopped")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// Message is what a watcher receives: the event with the board laid out for that watcher.
type Message struct {
	Kind        entity.EventKind `json:"kind"`
	GameID      entity.GameID    `json:"game_id"`
	ReplayID    entity.ReplayID  `json:"replay_id,omitempty"`
	Red         entity.Player    `json:"red"`
	White       entity.Player    `json:"white"`
	ActiveColor entity.Color     `json:"active_color,omitempty"`
	Winner      entity.Color     `json:"winner,omitempty"`
	Turn        *entity.Turn     `json:"turn,omitempty"`
	Board       *game.BoardView  `json:"board,omitempty"`
	At          time.Time        `json:"at"`
}

func newMessage(event *entity.GameEvent, orientation entity.Color) Message {
	msg := Message{
		Kind:        event.Kind,
		GameID:      event.GameID,
		ReplayID:    event.ReplayID,
		Red:         event.Red,
		White:       event.White,
		ActiveColor: event.ActiveColor,
		Winner:      event.Winner,
		Turn:        event.Turn,
		At:          event.At,
	}

	if event.Board != nil {
		view := game.NewBoardView(*event.Board, orientation)
		msg.Board = &view
	}

	return msg
}

type client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	gameID      entity.GameID
	orientation entity.Color
}

// Hub fans game events out to the watchers of each game.
type Hub struct {
	logger *slog.Logger

	// watchers is owned by Run.
	watchers map[entity.GameID]map[*client]struct{}

	register   chan *client
	unregister chan *client
	broadcast  chan *entity.GameEvent
	done       chan struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "spectator_hub"),

		watchers:   make(map[entity.GameID]map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan *entity.GameEvent),
		done:       make(chan struct{}),
	}
}

// Run owns the watcher set until ctx is canceled, then disconnects everyone.
func (that *Hub) Run(ctx context.Context) {
	defer close(that.done)

	for {
		select {
		case c := <-that.register:
			that.registerClient(c)

		case c := <-that.unregister:
			that.unregisterClient(c)

		case event := <-that.broadcast:
			that.broadcastEvent(event)

		case <-ctx.Done():
			for gameID := range that.watchers {
				that.dropGame(gameID)
			}
			return
		}
	}
}

// Publish hands an event to the hub loop.
func (that *Hub) Publish(ctx context.Context, event *entity.GameEvent) error {
	select {
	case that.broadcast <- event:
		return nil
	case <-that.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeWS upgrades the request and subscribes it to gameID. initial is sent first so the watcher starts from the current board.
func (that *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID entity.GameID, orientation entity.Color, initial *entity.GameEvent) {
	log := that.logger.With("method", "ServeWS")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:         that,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		gameID:      gameID,
		orientation: orientation,
	}

	if initial != nil {
		data, err := json.Marshal(newMessage(initial, orientation))
		if err != nil {
			log.Error("failed to marshal initial message", "error", err)
			_ = conn.Close()
			return
		}
		c.send <- data
	}

	select {
	case that.register <- c:
	case <-that.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (that *Hub) registerClient(c *client) {
	if that.watchers[c.gameID] == nil {
		that.watchers[c.gameID] = make(map[*client]struct{})
	}
	that.watchers[c.gameID][c] = struct{}{}

	that.logger.Debug("watcher registered", "game_id", c.gameID, "watchers", len(that.watchers[c.gameID]))
}

func (that *Hub) unregisterClient(c *client) {
	clients, ok := that.watchers[c.gameID]
	if !ok {
		return
	}

	if _, ok = clients[c]; !ok {
		return
	}

	delete(clients, c)
	close(c.send)

	if len(clients) == 0 {
		delete(that.watchers, c.gameID)
	}

	that.logger.Debug("watcher unregistered", "game_id", c.gameID, "watchers", len(clients))
}

func (that *Hub) broadcastEvent(event *entity.GameEvent) {
	for c := range that.watchers[event.GameID] {
		data, err := json.Marshal(newMessage(event, c.orientation))
		if err != nil {
			that.logger.Error("failed to marshal message", "kind", event.Kind, "error", err)
			return
		}

		select {
		case c.send <- data:
		default:
			// slow watcher
			that.unregisterClient(c)
		}
	}

	if event.Kind == entity.EventGameArchived || event.Kind == entity.EventGameRemoved {
		that.dropGame(event.GameID)
	}
}

// dropGame disconnects every watcher of a game that is no longer active.
func (that *Hub) dropGame(gameID entity.GameID) {
	for c := range that.watchers[gameID] {
		that.unregisterClient(c)
	}
}

func (that *client) readPump() {
	defer func() {
		select {
		case that.hub.unregister <- that:
		case <-that.hub.done:
		}
		_ = that.conn.Close()
	}()

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := that.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				that.hub.logger.Warn("watcher connection closed", "game_id", that.gameID, "error", err)
			}
			return
		}
	}
}

func (that *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case message, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
