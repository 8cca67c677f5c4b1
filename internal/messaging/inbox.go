package messaging

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/diagnosis/luxstay/pkg/events"
	"github.com/diagnosis/luxstay/pkg/logger"
	"github.com/diagnosis/luxstay/pkg/metrics"
	"github.com/google/uuid"
)

type API interface {
	ListMessages(ctx context.Context) ([]domain.Message, error)
	Conversation(ctx context.Context, userID uuid.UUID) ([]domain.Message, error)
	SendMessage(ctx context.Context, req domain.SendMessageRequest) (*domain.Message, error)
}

// ViewerSource identifies the signed-in user.
type ViewerSource interface {
	Viewer() (uuid.UUID, error)
}

// View is a snapshot of the inbox for rendering.
type View struct {
	Conversations []domain.Conversation `json:"conversations"`
	Selected      *uuid.UUID            `json:"selected,omitempty"`
	Thread        []domain.Message      `json:"thread"`
	Loading       bool                  `json:"loading"`
}

// Inbox keeps the conversation list, the selected counterpart and its
// thread. The thread is replaced wholesale on every fetch.
type Inbox struct {
	api       API
	viewer    ViewerSource
	publisher events.Publisher

	mu            sync.RWMutex
	conversations []domain.Conversation
	selected      *uuid.UUID
	thread        []domain.Message
	loading       bool
}

func NewInbox(api API, viewer ViewerSource, publisher events.Publisher) *Inbox {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Inbox{
		api:           api,
		viewer:        viewer,
		publisher:     publisher,
		conversations: []domain.Conversation{},
		thread:        []domain.Message{},
	}
}

// Load fetches every message and rebuilds the conversation list.
func (in *Inbox) Load(ctx context.Context) ([]domain.Conversation, error) {
	viewer, err := in.viewer.Viewer()
	if err != nil {
		return nil, err
	}

	in.setLoading(true)
	defer in.setLoading(false)

	messages, err := in.api.ListMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	conversations := Aggregate(messages, viewer)

	in.mu.Lock()
	in.conversations = conversations
	in.mu.Unlock()

	logger.DebugContext(ctx, "Inbox loaded", "messages", len(messages), "conversations", len(conversations))
	return conversations, nil
}

// Select makes counterpart the active conversation and fetches its thread.
func (in *Inbox) Select(ctx context.Context, counterpart uuid.UUID) ([]domain.Message, error) {
	if counterpart == uuid.Nil {
		return nil, domain.NewValidationError("user_id", "counterpart is required")
	}
	if _, err := in.viewer.Viewer(); err != nil {
		return nil, err
	}

	in.setLoading(true)
	defer in.setLoading(false)

	thread, err := in.api.Conversation(ctx, counterpart)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	in.mu.Lock()
	in.selected = &counterpart
	in.thread = thread
	in.mu.Unlock()

	return thread, nil
}

// Send posts body to the selected counterpart exactly as typed, then
// re-fetches the thread. The returned thread is the service's copy; nothing
// is appended locally. A blank body is rejected.
func (in *Inbox) Send(ctx context.Context, body string) ([]domain.Message, error) {
	if strings.TrimSpace(body) == "" {
		metrics.IncRejected("send_message", "validation")
		return nil, domain.NewValidationError("message_body", "message cannot be empty")
	}

	in.mu.RLock()
	selected := in.selected
	in.mu.RUnlock()
	if selected == nil {
		metrics.IncRejected("send_message", "validation")
		return nil, domain.NewValidationError("recipient_id", "no conversation selected")
	}
	recipient := *selected

	msg, err := in.api.SendMessage(ctx, domain.SendMessageRequest{RecipientID: recipient, Body: body})
	if err != nil {
		metrics.IncRejected("send_message", domain.Kind(err))
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	if err := in.publisher.Publish(ctx, events.MessageSent, events.MessageSentEvent{
		MessageID:   msg.ID,
		RecipientID: recipient,
		SentAt:      msg.SentAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "subject", events.MessageSent, "error", err)
	}

	return in.Select(ctx, recipient)
}

// Snapshot returns a copy of the current view state.
func (in *Inbox) Snapshot() View {
	in.mu.RLock()
	defer in.mu.RUnlock()

	v := View{
		Conversations: append([]domain.Conversation{}, in.conversations...),
		Thread:        append([]domain.Message{}, in.thread...),
		Loading:       in.loading,
	}
	if in.selected != nil {
		id := *in.selected
		v.Selected = &id
	}
	return v
}

// Reset drops all view state, as on logout.
func (in *Inbox) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.conversations = []domain.Conversation{}
	in.selected = nil
	in.thread = []domain.Message{}
	in.loading = false
}

func (in *Inbox) setLoading(v bool) {
	in.mu.Lock()
	in.loading = v
	in.mu.Unlock()
}
