package models

import "strings"

// UnknownAuthor is shown when a user has neither a name nor a label.
const UnknownAuthor = "Unknown"

// User is the author of a message.
type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Label       string `json:"label"` // Short handle, used when Name is blank
	Avatar      string `json:"avatar,omitempty"`
	JobPosition string `json:"jobPosition,omitempty"`
}

// DisplayName resolves the name shown next to a message.
func (u *User) DisplayName() string {
	if u == nil {
		return UnknownAuthor
	}
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	if label := strings.TrimSpace(u.Label); label != "" {
		return label
	}
	return UnknownAuthor
}
