package apiclient

import (
	"context"
	"net/http"

	"github.com/diagnosis/luxstay/internal/domain"
)

func (c *Client) CreatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.Payment, error) {
	var payment domain.Payment
	err := c.sendJSON(ctx, call{
		op:     "payments.create",
		method: http.MethodPost,
		path:   "/api/payments/create/",
		body:   req,
	}, &payment)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
