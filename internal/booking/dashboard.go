package booking

import (
	"context"
	"fmt"

	"github.com/diagnosis/luxstay/internal/apiclient"
	"github.com/diagnosis/luxstay/internal/availability"
	"github.com/diagnosis/luxstay/internal/domain"
	"golang.org/x/sync/errgroup"
)

type Dashboard struct {
	Properties []domain.Property       `json:"properties"`
	Bookings   []domain.Booking        `json:"bookings"`
	Confirmed  int                     `json:"confirmed"`
	Pending    int                     `json:"pending"`
	Conflicts  []availability.Conflict `json:"conflicts"`
}

// HostDashboard loads the host's properties and the bookings made on them
// side by side. Either failure fails the whole load.
func (m *manager) HostDashboard(ctx context.Context) (*Dashboard, error) {
	var (
		properties []domain.Property
		bookings   []domain.Booking
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		properties, err = m.api.MyProperties(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		bookings, err = m.api.ListHostBookings(gctx, apiclient.ListOptions{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load host dashboard: %w", err)
	}

	d := &Dashboard{
		Properties: properties,
		Bookings:   bookings,
		Conflicts:  availability.PendingConflicts(bookings),
	}
	for _, b := range bookings {
		switch b.Status {
		case domain.BookingConfirmed:
			d.Confirmed++
		case domain.BookingPending:
			d.Pending++
		}
	}
	return d, nil
}
