package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCanceled  BookingStatus = "canceled"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingCanceled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// Allowed lifecycle edges. Canceled has none.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCanceled},
	BookingConfirmed: {BookingCanceled},
}

// CanTransitionTo reports whether a booking in status s may move to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// DateRange is a stay expressed in calendar dates; End is the checkout day.
type DateRange struct {
	Start civil.Date `json:"start_date"`
	End   civil.Date `json:"end_date"`
}

// Nights is the number of days between Start and End.
func (r DateRange) Nights() int {
	return r.End.DaysSince(r.Start)
}

func (r DateRange) Valid() bool {
	return r.Start.IsValid() && r.End.IsValid() && r.Start.Before(r.End)
}

type Booking struct {
	ID         uuid.UUID       `json:"booking_id"`
	Property   *Property       `json:"property,omitempty"`
	User       *User           `json:"user,omitempty"`
	StartDate  civil.Date      `json:"start_date"`
	EndDate    civil.Date      `json:"end_date"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     BookingStatus   `json:"status"`
	Guests     int             `json:"guests"`
	Nights     int             `json:"nights"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (b *Booking) Range() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

// CanCancel is true while the booking is pending or confirmed.
func (b *Booking) CanCancel() bool {
	return b.Status.CanTransitionTo(BookingCanceled)
}

// CanPay is true only while the booking is pending.
func (b *Booking) CanPay() bool {
	return b.Status == BookingPending
}

type CreateBookingRequest struct {
	PropertyID uuid.UUID  `json:"property_id"`
	StartDate  civil.Date `json:"start_date"`
	EndDate    civil.Date `json:"end_date"`
	Guests     int        `json:"guests"`
}

type BookingStatusUpdate struct {
	Status BookingStatus `json:"status"`
}

// Quote is the client-side estimate shown before a booking is submitted.
type Quote struct {
	PropertyID    uuid.UUID       `json:"property_id"`
	StartDate     civil.Date      `json:"start_date"`
	EndDate       civil.Date      `json:"end_date"`
	Guests        int             `json:"guests"`
	Nights        int             `json:"nights"`
	PricePerNight decimal.Decimal `json:"pricepernight"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}
