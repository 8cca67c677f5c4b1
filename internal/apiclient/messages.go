package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/google/uuid"
)

// ListMessages returns every message the viewer sent or received, in the
// order the service returns them.
func (c *Client) ListMessages(ctx context.Context) ([]domain.Message, error) {
	return sendList[domain.Message](ctx, c, call{
		op:     "messages.list",
		method: http.MethodGet,
		path:   "/api/messages/",
	})
}

// Conversation returns the bilateral thread with userID, oldest first.
func (c *Client) Conversation(ctx context.Context, userID uuid.UUID) ([]domain.Message, error) {
	return sendList[domain.Message](ctx, c, call{
		op:     "messages.conversation",
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/messages/conversation/%s/", userID),
	})
}

func (c *Client) SendMessage(ctx context.Context, req domain.SendMessageRequest) (*domain.Message, error) {
	var msg domain.Message
	err := c.sendJSON(ctx, call{
		op:     "messages.create",
		method: http.MethodPost,
		path:   "/api/messages/create/",
		body:   req,
	}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
