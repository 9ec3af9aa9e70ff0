package models

import "time"

// Message is immutable once created except for ReadBy, which only grows:
// a reader id is appended once and never removed.
type Message struct {
	ID         string    `json:"id"`
	ChatID     string    `json:"chatId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	// CreatedAt is server-assigned. A zero value means the row has been
	// written but not yet timestamped; projections sort it first.
	CreatedAt time.Time `json:"createdAt"`
	ReadBy    []string  `json:"readBy"`
}

// Conversation carries a denormalized summary of its latest message and a
// per-participant unread flag map. After a message is recorded the sender's
// flag is always false and every other participant's flag is true.
type Conversation struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Participants  []string        `json:"participants"`
	LastMessage   string          `json:"lastMessage"`
	LastMessageAt time.Time       `json:"lastMessageAt"`
	UnreadBy      map[string]bool `json:"unreadBy"`
	CreatedAt     time.Time       `json:"createdAt"`
}
