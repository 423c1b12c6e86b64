package models

import "time"

// Message is a single post in the team feed.
// Content is untrusted rich text as authored in the editor; it must go
// through the sanitizer before it is rendered.
type Message struct {
	ID        int64     `json:"id"`                // Unique, strictly increasing per store
	Content   string    `json:"content"`           // Raw HTML from the rich text editor
	Author    *User     `json:"author"`            // Nil only for malformed records
	CreatedAt time.Time `json:"createdAt"`         // Zero value means the date is unknown
	LikeCount int       `json:"likeCount"`         // Never negative
	IsLiked   bool      `json:"isLiked"`           // Like state of the viewing user, not global
	Loading   bool      `json:"loading,omitempty"` // Set by clients while a like request is in flight
}

// Clone returns a copy of m that shares nothing mutable with it.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	if m.Author != nil {
		a := *m.Author
		c.Author = &a
	}
	return &c
}

// AuthorName returns the display name of the author, tolerating a missing author.
func (m *Message) AuthorName() string {
	return m.Author.DisplayName()
}
