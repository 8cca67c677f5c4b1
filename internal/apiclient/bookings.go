package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
)

// ListOptions narrows list endpoints. Zero values are left out of the query.
type ListOptions struct {
	Page     int                  `url:"page,omitempty"`
	PageSize int                  `url:"page_size,omitempty"`
	Status   domain.BookingStatus `url:"status,omitempty"`
}

func (c *Client) CreateBooking(ctx context.Context, req domain.CreateBookingRequest) (*domain.Booking, error) {
	var booking domain.Booking
	err := c.sendJSON(ctx, call{
		op:     "bookings.create",
		method: http.MethodPost,
		path:   "/api/bookings/create/",
		body:   req,
	}, &booking)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var booking domain.Booking
	err := c.sendJSON(ctx, call{
		op:     "bookings.get",
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/bookings/%s/", id),
	}, &booking)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateBookingStatus asks the service to move a booking to status. The
// response body is not trusted as the new state; callers re-read.
func (c *Client) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error {
	return c.sendJSON(ctx, call{
		op:     "bookings.update_status",
		method: http.MethodPatch,
		path:   fmt.Sprintf("/api/bookings/%s/", id),
		body:   domain.BookingStatusUpdate{Status: status},
	}, nil)
}

func (c *Client) ListBookings(ctx context.Context, opts ListOptions) ([]domain.Booking, error) {
	values, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("bookings.list: %w", err)
	}
	return sendList[domain.Booking](ctx, c, call{
		op:     "bookings.list",
		method: http.MethodGet,
		path:   "/api/bookings/",
		query:  values,
	})
}

func (c *Client) ListHostBookings(ctx context.Context, opts ListOptions) ([]domain.Booking, error) {
	values, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("bookings.list_host: %w", err)
	}
	return sendList[domain.Booking](ctx, c, call{
		op:     "bookings.list_host",
		method: http.MethodGet,
		path:   "/api/bookings/host/",
		query:  values,
	})
}
