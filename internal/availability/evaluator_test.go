package availability_test

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/diagnosis/luxstay/internal/availability"
	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func stay(start, end civil.Date) domain.DateRange {
	return domain.DateRange{Start: start, End: end}
}

func newProperty(price string, maxGuests int) *domain.Property {
	return &domain.Property{
		ID:            uuid.New(),
		Name:          "Cliff House",
		PricePerNight: decimal.RequireFromString(price),
		MaxGuests:     maxGuests,
	}
}

func TestEvaluate_ThreeNightStay(t *testing.T) {
	p := newProperty("100.00", 4)

	q, err := availability.Evaluate(p, stay(date(2024, 6, 1), date(2024, 6, 4)), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Nights != 3 {
		t.Errorf("expected 3 nights, got %d", q.Nights)
	}
	if got := q.TotalPrice.StringFixed(2); got != "300.00" {
		t.Errorf("expected total 300.00, got %s", got)
	}
	if q.PropertyID != p.ID {
		t.Errorf("quote carries wrong property id")
	}
}

func TestEvaluate_RejectsBadRequests(t *testing.T) {
	p := newProperty("100.00", 4)

	tests := []struct {
		name   string
		stay   domain.DateRange
		guests int
		field  string
	}{
		{"end equals start", stay(date(2024, 6, 1), date(2024, 6, 1)), 2, "end_date"},
		{"end before start", stay(date(2024, 6, 4), date(2024, 6, 1)), 2, "end_date"},
		{"invalid calendar date", stay(date(2024, 2, 30), date(2024, 3, 2)), 2, "start_date"},
		{"no guests", stay(date(2024, 6, 1), date(2024, 6, 4)), 0, "guests"},
		{"over capacity", stay(date(2024, 6, 1), date(2024, 6, 4)), 5, "guests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := availability.Evaluate(p, tt.stay, tt.guests)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var verr *domain.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("expected field %q, got %+v", tt.field, verr)
			}
		})
	}
}

func TestEvaluate_GuestsAtCapacity(t *testing.T) {
	p := newProperty("80", 4)
	if _, err := availability.Evaluate(p, stay(date(2024, 6, 1), date(2024, 6, 2)), 4); err != nil {
		t.Fatalf("guests equal to max_guests should pass, got %v", err)
	}
}

func TestEvaluate_NilProperty(t *testing.T) {
	_, err := availability.Evaluate(nil, stay(date(2024, 6, 1), date(2024, 6, 2)), 1)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTotalPrice_RoundsHalfUp(t *testing.T) {
	got := availability.TotalPrice(decimal.RequireFromString("33.335"), 3)
	if got.StringFixed(2) != "100.01" {
		t.Errorf("expected 100.01, got %s", got.StringFixed(2))
	}

	got = availability.TotalPrice(decimal.RequireFromString("0.125"), 1)
	if got.StringFixed(2) != "0.13" {
		t.Errorf("expected 0.13, got %s", got.StringFixed(2))
	}
}

func TestOverlaps(t *testing.T) {
	a := stay(date(2024, 6, 1), date(2024, 6, 4))

	tests := []struct {
		name string
		b    domain.DateRange
		want bool
	}{
		{"same range", a, true},
		{"inside", stay(date(2024, 6, 2), date(2024, 6, 3)), true},
		{"starts on checkout day", stay(date(2024, 6, 4), date(2024, 6, 6)), true},
		{"ends on check-in day", stay(date(2024, 5, 28), date(2024, 6, 1)), true},
		{"after", stay(date(2024, 6, 5), date(2024, 6, 8)), false},
		{"before", stay(date(2024, 5, 20), date(2024, 5, 31)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := availability.Overlaps(a, tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := availability.Overlaps(tt.b, a); got != tt.want {
				t.Errorf("Overlaps is not symmetric")
			}
		})
	}
}

func TestPendingConflicts(t *testing.T) {
	home := &domain.Property{ID: uuid.New()}
	other := &domain.Property{ID: uuid.New()}

	bookings := []domain.Booking{
		{ID: uuid.New(), Property: home, Status: domain.BookingConfirmed, StartDate: date(2024, 6, 1), EndDate: date(2024, 6, 5)},
		{ID: uuid.New(), Property: home, Status: domain.BookingPending, StartDate: date(2024, 6, 3), EndDate: date(2024, 6, 7)},
		{ID: uuid.New(), Property: home, Status: domain.BookingPending, StartDate: date(2024, 7, 1), EndDate: date(2024, 7, 3)},
		{ID: uuid.New(), Property: other, Status: domain.BookingPending, StartDate: date(2024, 6, 2), EndDate: date(2024, 6, 4)},
		{ID: uuid.New(), Property: home, Status: domain.BookingCanceled, StartDate: date(2024, 6, 2), EndDate: date(2024, 6, 4)},
	}

	conflicts := availability.PendingConflicts(bookings)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	if conflicts[0].Pending.ID != bookings[1].ID || conflicts[0].Holding.ID != bookings[0].ID {
		t.Errorf("wrong pair reported: %+v", conflicts[0])
	}
}
