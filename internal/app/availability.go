package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// feedTimeout bounds the three availability loads so a hung query can
// never stall the floor plan indefinitely.
const feedTimeout = 10 * time.Second

// LoadAvailability fetches the three feeds concurrently and merges them
// into a fresh occupancy map. The wait is a join barrier: if any feed
// fails, no map is built at all, because merging partial data would
// show tables as free that are not.
func (a *App) LoadAvailability(ctx context.Context, rng DateRange) (Occupancy, error) {
	ctx, cancel := context.WithTimeout(ctx, feedTimeout)
	defer cancel()

	var (
		bookings      []Reservation
		eventsCurrent []Event
		eventsRepeat  []Event
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = a.ListReservationsInRange(ctx, rng)
		return err
	})
	g.Go(func() error {
		var err error
		eventsCurrent, err = a.ListEvents(ctx, false, rng)
		return err
	})
	g.Go(func() error {
		var err error
		eventsRepeat, err = a.ListEvents(ctx, true, rng)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}

	return BuildOccupancy(bookings, eventsCurrent, eventsRepeat, rng), nil
}
