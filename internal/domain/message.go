package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is immutable once the service has stored it.
type Message struct {
	ID        uuid.UUID `json:"message_id"`
	Sender    User      `json:"sender"`
	Recipient User      `json:"recipient"`
	Body      string    `json:"message_body"`
	IsRead    bool      `json:"is_read"`
	SentAt    time.Time `json:"sent_at"`
}

// Counterpart returns the participant who is not viewer.
func (m Message) Counterpart(viewer uuid.UUID) User {
	if m.Sender.ID == viewer {
		return m.Recipient
	}
	return m.Sender
}

// Conversation is derived from a message set and never stored.
type Conversation struct {
	User
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
}

type SendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	Body        string    `json:"message_body"`
}
