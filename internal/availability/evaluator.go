// Package availability guards booking requests before they reach the
// network and computes the display-only price estimate. The remote service
// remains the authority on overlap and availability.
package availability

import (
	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the precision totals are rounded to.
const CurrencyPlaces = 2

// Evaluate validates a proposed stay against the property and returns the
// quote. Rounding is half-up to CurrencyPlaces.
func Evaluate(property *domain.Property, stay domain.DateRange, guests int) (*domain.Quote, error) {
	if property == nil {
		return nil, domain.NewValidationError("property_id", "property is required")
	}
	if err := CheckRequest(stay, guests); err != nil {
		return nil, err
	}
	if guests > property.MaxGuests {
		return nil, domain.NewValidationError("guests", "property allows at most %d guests", property.MaxGuests)
	}

	nights := stay.Nights()
	return &domain.Quote{
		PropertyID:    property.ID,
		StartDate:     stay.Start,
		EndDate:       stay.End,
		Guests:        guests,
		Nights:        nights,
		PricePerNight: property.PricePerNight,
		TotalPrice:    TotalPrice(property.PricePerNight, nights),
	}, nil
}

// CheckRequest runs the rules that need no property data.
func CheckRequest(stay domain.DateRange, guests int) error {
	if !stay.Start.IsValid() {
		return domain.NewValidationError("start_date", "start date is not a valid calendar date")
	}
	if !stay.End.IsValid() {
		return domain.NewValidationError("end_date", "end date is not a valid calendar date")
	}
	if !stay.Start.Before(stay.End) {
		return domain.NewValidationError("end_date", "end date must be after start date")
	}
	if guests < 1 {
		return domain.NewValidationError("guests", "at least one guest is required")
	}
	return nil
}

// TotalPrice is nights x nightly rate rounded half-up to cents.
func TotalPrice(perNight decimal.Decimal, nights int) decimal.Decimal {
	return perNight.Mul(decimal.NewFromInt(int64(nights))).Round(CurrencyPlaces)
}

// Overlaps uses the service's inclusive rule: a stay that starts on another
// stay's checkout day still counts as overlapping.
func Overlaps(a, b domain.DateRange) bool {
	return !a.Start.After(b.End) && !a.End.Before(b.Start)
}

// Conflict pairs a pending request with a booking that already holds the dates.
type Conflict struct {
	Pending *domain.Booking `json:"pending"`
	Holding *domain.Booking `json:"holding"`
}

// PendingConflicts finds pending bookings whose dates collide with a
// confirmed booking on the same property.
func PendingConflicts(bookings []domain.Booking) []Conflict {
	conflicts := []Conflict{}
	for i := range bookings {
		pending := &bookings[i]
		if pending.Status != domain.BookingPending || pending.Property == nil {
			continue
		}
		for j := range bookings {
			holding := &bookings[j]
			if holding.Status != domain.BookingConfirmed || holding.Property == nil {
				continue
			}
			if holding.Property.ID != pending.Property.ID {
				continue
			}
			if Overlaps(pending.Range(), holding.Range()) {
				conflicts = append(conflicts, Conflict{Pending: pending, Holding: holding})
			}
		}
	}
	return conflicts
}
