package models

import "time"

type Notification struct {
	ID        int64     `json:"id"`
	Read      bool      `json:"read"`
	Initials  string    `json:"initials"`
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}
