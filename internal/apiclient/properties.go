package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/google/uuid"
)

// GetProperty is public on the service; the bearer is still attached when
// one is available so host-only fields come back for owners.
func (c *Client) GetProperty(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	var property domain.Property
	err := c.sendJSON(ctx, call{
		op:       "properties.get",
		method:   http.MethodGet,
		path:     fmt.Sprintf("/api/properties/%s/", id),
		optional: true,
	}, &property)
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (c *Client) MyProperties(ctx context.Context) ([]domain.Property, error) {
	return sendList[domain.Property](ctx, c, call{
		op:     "properties.mine",
		method: http.MethodGet,
		path:   "/api/properties/my-properties/",
	})
}
