package storage

import "time"

type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entity_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
