// Package messaging derives conversations from the flat message list and
// holds the inbox view state.
package messaging

import (
	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/google/uuid"
)

// Aggregate groups messages by counterpart. The first message seen for a
// counterpart wins and conversations keep first-seen order. The service
// lists messages newest first, so this is the latest message per person.
func Aggregate(messages []domain.Message, viewer uuid.UUID) []domain.Conversation {
	conversations := make([]domain.Conversation, 0, len(messages))
	seen := make(map[uuid.UUID]struct{}, len(messages))

	for _, msg := range messages {
		other := msg.Counterpart(viewer)
		if other.ID == viewer {
			continue
		}
		if _, ok := seen[other.ID]; ok {
			continue
		}
		seen[other.ID] = struct{}{}
		conversations = append(conversations, domain.Conversation{
			User:            other,
			LastMessage:     msg.Body,
			LastMessageTime: msg.SentAt,
		})
	}
	return conversations
}
