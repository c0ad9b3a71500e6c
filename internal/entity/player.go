package entity

// Player is an identity owned by the lobby. Games keep a copy and compare players by ID.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func (that Player) Is(id string) bool {
	return id != "" && that.ID == id
}
