package app

import "context"

// SubmitReservation turns the session's widget state and table
// selection into a persisted reservation. With no table selected the
// submission is rejected before anything is sent. On a storage failure
// the selection is left intact so the visitor can retry; only a
// successful submission consumes it.
func (a *App) SubmitReservation(ctx context.Context, s *BookingSession, contact ContactDetails) (Reservation, error) {
	payload, err := s.ReservationPayload(contact)
	if err != nil {
		return Reservation{}, err
	}

	id, err := a.InsertReservation(ctx, payload)
	if err != nil {
		return Reservation{}, err
	}
	payload.ID = id

	s.Invalidate()
	return payload, nil
}
