package entity

import "time"

type EventKind string

const (
	EventGameCreated   EventKind = "game:created"
	EventTurnSubmitted EventKind = "turn:submitted"
	EventGameArchived  EventKind = "game:archived"
	EventGameRemoved   EventKind = "game:removed"
)

// GameEvent is a lifecycle notification sent to publishers after the registry changes state.
type GameEvent struct {
	Kind        EventKind `json:"kind"`
	GameID      GameID    `json:"game_id"`
	ReplayID    ReplayID  `json:"replay_id,omitempty"`
	Red         Player    `json:"red"`
	White       Player    `json:"white"`
	ActiveColor Color     `json:"active_color,omitempty"`
	Winner      Color     `json:"winner,omitempty"`
	Turn        *Turn     `json:"turn,omitempty"`
	Board       *Board    `json:"board,omitempty"`
	At          time.Time `json:"at"`
}
