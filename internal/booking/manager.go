package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diagnosis/luxstay/internal/apiclient"
	"github.com/diagnosis/luxstay/internal/availability"
	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/diagnosis/luxstay/pkg/events"
	"github.com/diagnosis/luxstay/pkg/logger"
	"github.com/diagnosis/luxstay/pkg/metrics"
	"github.com/google/uuid"
)

// API is the part of the remote client the lifecycle manager uses.
type API interface {
	GetProperty(ctx context.Context, id uuid.UUID) (*domain.Property, error)
	MyProperties(ctx context.Context) ([]domain.Property, error)
	CreateBooking(ctx context.Context, req domain.CreateBookingRequest) (*domain.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error
	ListBookings(ctx context.Context, opts apiclient.ListOptions) ([]domain.Booking, error)
	ListHostBookings(ctx context.Context, opts apiclient.ListOptions) ([]domain.Booking, error)
	CreatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.Payment, error)
}

// Manager owns booking state transitions. It never sets a status locally:
// every successful transition is followed by a re-read of the booking.
type Manager interface {
	Quote(ctx context.Context, req domain.CreateBookingRequest) (*domain.Quote, error)
	Create(ctx context.Context, req domain.CreateBookingRequest) (*domain.Booking, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	List(ctx context.Context, opts apiclient.ListOptions) ([]domain.Booking, error)
	Cancel(ctx context.Context, id uuid.UUID, confirm Confirmer) (*domain.Booking, error)
	Pay(ctx context.Context, booking *domain.Booking, method domain.PaymentMethod) (*domain.PaymentResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)
	HostDashboard(ctx context.Context) (*Dashboard, error)
}

type manager struct {
	api       API
	publisher events.Publisher
	now       func() time.Time
}

func NewManager(api API, publisher events.Publisher) Manager {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &manager{
		api:       api,
		publisher: publisher,
		now:       time.Now,
	}
}

func (m *manager) Quote(ctx context.Context, req domain.CreateBookingRequest) (*domain.Quote, error) {
	stay := domain.DateRange{Start: req.StartDate, End: req.EndDate}
	if err := availability.CheckRequest(stay, req.Guests); err != nil {
		metrics.IncRejected("quote", domain.Kind(err))
		return nil, err
	}

	property, err := m.api.GetProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}

	quote, err := availability.Evaluate(property, stay, req.Guests)
	if err != nil {
		metrics.IncRejected("quote", domain.Kind(err))
		return nil, err
	}
	return quote, nil
}

func (m *manager) Create(ctx context.Context, req domain.CreateBookingRequest) (*domain.Booking, error) {
	quote, err := m.Quote(ctx, req)
	if err != nil {
		return nil, err
	}

	booking, err := m.api.CreateBooking(ctx, req)
	if err != nil {
		metrics.IncRejected("create", domain.Kind(err))
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if !booking.TotalPrice.Equal(quote.TotalPrice) {
		logger.WarnContext(ctx, "Service total differs from local estimate",
			"booking_id", booking.ID,
			"estimate", quote.TotalPrice.StringFixed(availability.CurrencyPlaces),
			"total", booking.TotalPrice.StringFixed(availability.CurrencyPlaces),
		)
	}

	m.publish(ctx, events.BookingCreated, events.BookingCreatedEvent{
		BookingID:  booking.ID,
		PropertyID: req.PropertyID,
		StartDate:  booking.StartDate.String(),
		EndDate:    booking.EndDate.String(),
		Guests:     booking.Guests,
		TotalPrice: booking.TotalPrice.StringFixed(availability.CurrencyPlaces),
		CreatedAt:  booking.CreatedAt,
	})

	return booking, nil
}

func (m *manager) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	booking, err := m.api.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (m *manager) List(ctx context.Context, opts apiclient.ListOptions) ([]domain.Booking, error) {
	bookings, err := m.api.ListBookings(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// Cancel asks confirm before dispatching; a declined prompt returns
// ErrNotConfirmed and nothing is sent.
func (m *manager) Cancel(ctx context.Context, id uuid.UUID, confirm Confirmer) (*domain.Booking, error) {
	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.CanCancel() {
		return nil, m.transitionError(current, domain.BookingCanceled, "cancel")
	}

	if confirm == nil {
		return nil, domain.ErrNotConfirmed
	}
	ok, err := confirm.Confirm(ctx, fmt.Sprintf("Cancel booking %s? This cannot be undone.", id))
	if err != nil {
		return nil, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotConfirmed
	}

	return m.transition(ctx, current, domain.BookingCanceled, "guest")
}

// UpdateStatus is the host-side decision on a pending booking. Whether the
// caller owns the property is decided by the service.
func (m *manager) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	if status != domain.BookingConfirmed && status != domain.BookingCanceled {
		err := domain.NewValidationError("status", "must be %s or %s", domain.BookingConfirmed, domain.BookingCanceled)
		metrics.IncRejected("update_status", domain.Kind(err))
		return nil, err
	}

	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingPending {
		return nil, m.transitionError(current, status, "update_status")
	}

	return m.transition(ctx, current, status, "host")
}

// transition sends the status change and re-reads the booking. A service
// rejection is re-checked against fresh state so that a lost race (another
// device already canceled or paid) surfaces as a TransitionError.
func (m *manager) transition(ctx context.Context, current *domain.Booking, to domain.BookingStatus, actor string) (*domain.Booking, error) {
	op := "cancel"
	if actor == "host" {
		op = "update_status"
	}

	if err := m.api.UpdateBookingStatus(ctx, current.ID, to); err != nil {
		if errors.Is(err, domain.ErrRejected) {
			if fresh, getErr := m.api.GetBooking(ctx, current.ID); getErr == nil && !fresh.Status.CanTransitionTo(to) {
				return nil, m.transitionError(fresh, to, op)
			}
		}
		metrics.IncRejected(op, domain.Kind(err))
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	fresh, err := m.api.GetBooking(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("status sent but re-read failed: %w", err)
	}
	if fresh.Status != to {
		logger.WarnContext(ctx, "Booking status not yet reflected by service",
			"booking_id", fresh.ID, "requested", to, "status", fresh.Status)
	}

	metrics.IncTransition(string(current.Status), string(fresh.Status))
	m.publish(ctx, events.BookingStatusChanged, events.BookingStatusChangedEvent{
		BookingID: fresh.ID,
		From:      string(current.Status),
		To:        string(fresh.Status),
		Actor:     actor,
		ChangedAt: m.now(),
	})
	return fresh, nil
}

// Pay is checked against the booking the caller holds; no call is made
// unless it is pending. On success the booking is re-read rather than
// marked confirmed locally. Auth, network and not-found failures pass
// through unwrapped; a rejection against a booking that is no longer
// pending is a TransitionError.
func (m *manager) Pay(ctx context.Context, booking *domain.Booking, method domain.PaymentMethod) (*domain.PaymentResult, error) {
	if booking == nil {
		return nil, domain.NewValidationError("booking", "booking is required")
	}
	if !booking.CanPay() {
		return nil, m.transitionError(booking, domain.BookingConfirmed, "pay")
	}
	if method == "" {
		method = domain.PaymentCreditCard
	}

	payment, err := m.api.CreatePayment(ctx, domain.PaymentRequest{
		BookingID: booking.ID,
		Amount:    booking.TotalPrice,
		Method:    method,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAuth) || errors.Is(err, domain.ErrNetwork) || errors.Is(err, domain.ErrNotFound) {
			metrics.IncRejected("pay", domain.Kind(err))
			return nil, fmt.Errorf("failed to create payment: %w", err)
		}
		// The booking may have been canceled or paid on another device.
		if errors.Is(err, domain.ErrRejected) {
			if fresh, getErr := m.api.GetBooking(ctx, booking.ID); getErr == nil && !fresh.CanPay() {
				return nil, m.transitionError(fresh, domain.BookingConfirmed, "pay")
			}
		}
	}
	if err == nil && !payment.IsSuccessful {
		err = errors.New("payment was not accepted")
	}
	if err != nil {
		metrics.IncPayment("failed")
		m.publish(ctx, events.PaymentFailed, events.PaymentEvent{
			BookingID: booking.ID,
			Amount:    booking.TotalPrice.StringFixed(availability.CurrencyPlaces),
			Method:    string(method),
			Reason:    err.Error(),
			At:        m.now(),
		})
		return nil, &domain.PaymentError{BookingID: booking.ID, Err: err}
	}

	metrics.IncPayment("succeeded")
	m.publish(ctx, events.PaymentSucceeded, events.PaymentEvent{
		BookingID: booking.ID,
		PaymentID: &payment.ID,
		Amount:    payment.Amount.StringFixed(availability.CurrencyPlaces),
		Method:    string(payment.Method),
		At:        m.now(),
	})

	fresh, err := m.api.GetBooking(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("payment recorded but re-read failed: %w", err)
	}
	if fresh.Status != domain.BookingConfirmed {
		logger.WarnContext(ctx, "Paid booking not yet confirmed by service",
			"booking_id", fresh.ID, "status", fresh.Status)
	}
	metrics.IncTransition(string(booking.Status), string(fresh.Status))

	return &domain.PaymentResult{Payment: *payment, Booking: fresh}, nil
}

func (m *manager) transitionError(b *domain.Booking, to domain.BookingStatus, op string) error {
	err := &domain.TransitionError{BookingID: b.ID, From: b.Status, To: to}
	metrics.IncRejected(op, domain.Kind(err))
	return err
}

func (m *manager) publish(ctx context.Context, subject string, event interface{}) {
	if err := m.publisher.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
