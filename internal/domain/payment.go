package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentPayPal     PaymentMethod = "paypal"
	PaymentStripe     PaymentMethod = "stripe"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentCreditCard, PaymentPayPal, PaymentStripe:
		return PaymentMethod(s), true
	case "":
		return PaymentCreditCard, true
	default:
		return "", false
	}
}

type PaymentRequest struct {
	BookingID uuid.UUID       `json:"booking_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"payment_method"`
}

type Payment struct {
	ID            uuid.UUID       `json:"payment_id"`
	BookingID     uuid.UUID       `json:"booking"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"payment_method"`
	TransactionID *string         `json:"transaction_id,omitempty"`
	PaymentDate   time.Time       `json:"payment_date"`
	IsSuccessful  bool            `json:"is_successful"`
}

// PaymentResult pairs the recorded payment with the booking as re-read
// from the service afterwards.
type PaymentResult struct {
	Payment Payment  `json:"payment"`
	Booking *Booking `json:"booking"`
}
