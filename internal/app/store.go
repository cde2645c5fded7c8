package app

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
)

// ListReservationsInRange returns point bookings whose date falls
// inside the window. This is the first of the three availability feeds.
func (a *App) ListReservationsInRange(ctx context.Context, rng DateRange) ([]Reservation, error) {
	q := `SELECT id, date, hour, duration, table_no, people
	      FROM reservations
	      WHERE date >= $1 AND date <= $2
	      ORDER BY date, hour`
	rows, err := a.DB.Query(ctx, q, rng.Min, rng.Max)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		var (
			r Reservation
			d time.Time
		)
		if err := rows.Scan(&r.ID, &d, &r.Hour, &r.Duration, &r.Table, &r.People); err != nil {
			return nil, err
		}
		r.Date = d.Format(dateLayout)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListEvents returns the event feed. The repeat flag is the
// discriminator between the two event feeds: repeating events are
// filtered only by the window's upper bound (their rule decides which
// dates they occupy), non-repeating ones by the full range.
func (a *App) ListEvents(ctx context.Context, repeat bool, rng DateRange) ([]Event, error) {
	var q string
	var args []any
	if repeat {
		q = `SELECT id, title, date, hour, duration, table_no, repeat
		     FROM events
		     WHERE repeat <> 'none' AND date <= $1
		     ORDER BY date, hour`
		args = []any{rng.Max}
	} else {
		q = `SELECT id, title, date, hour, duration, table_no, repeat
		     FROM events
		     WHERE repeat = 'none' AND date >= $1 AND date <= $2
		     ORDER BY date, hour`
		args = []any{rng.Min, rng.Max}
	}

	rows, err := a.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e Event
			d time.Time
		)
		if err := rows.Scan(&e.ID, &e.Title, &d, &e.Hour, &e.Duration, &e.Table, &e.Repeat); err != nil {
			return nil, err
		}
		e.Date = d.Format(dateLayout)
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertReservation persists a reservation after re-checking, under a
// row lock, that nothing else occupies the table for any overlapping
// half-hour slot. The occupancy map the client selected against may be
// stale by submission time; this check is authoritative.
func (a *App) InsertReservation(ctx context.Context, r Reservation) (string, error) {
	start, err := hourToNumber(r.Hour)
	if err != nil {
		return "", err
	}

	tx, err := a.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	lockQ := `SELECT hour, duration FROM reservations
	          WHERE date = $1 AND table_no = $2 FOR UPDATE`
	rows, err := tx.Query(ctx, lockQ, r.Date, r.Table)
	if err != nil {
		return "", err
	}
	taken, err := collectIntervals(rows)
	if err != nil {
		return "", err
	}

	eventQ := `SELECT hour, duration FROM events
	           WHERE table_no = $1 AND (date = $2 OR repeat <> 'none')`
	rows, err = tx.Query(ctx, eventQ, r.Table, r.Date)
	if err != nil {
		return "", err
	}
	eventTaken, err := collectIntervals(rows)
	if err != nil {
		return "", err
	}
	taken = append(taken, eventTaken...)

	for _, iv := range taken {
		if start < iv.start+iv.duration && iv.start < start+r.Duration {
			return "", ErrTableBooked
		}
	}

	insertQ := `INSERT INTO reservations
	            (id, date, hour, duration, table_no, people, address, phone, starters, created_at)
	            VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, now())
	            RETURNING id`
	var id string
	err = tx.QueryRow(ctx, insertQ,
		r.Date, r.Hour, r.Duration, r.Table, r.People,
		r.Address, r.Phone, r.Starters,
	).Scan(&id)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

type hourInterval struct {
	start    float64
	duration float64
}

// collectIntervals reads (hour, duration) rows into numeric intervals,
// skipping rows whose hour cannot be parsed, same as the merge does.
func collectIntervals(rows pgx.Rows) ([]hourInterval, error) {
	defer rows.Close()
	var out []hourInterval
	for rows.Next() {
		var (
			hour     string
			duration float64
		)
		if err := rows.Scan(&hour, &duration); err != nil {
			return nil, err
		}
		start, err := hourToNumber(hour)
		if err != nil {
			log.Printf("store: skipping record with bad hour %q: %v", hour, err)
			continue
		}
		out = append(out, hourInterval{start: start, duration: duration})
	}
	return out, rows.Err()
}

// ListProducts returns the menu catalog, params included.
func (a *App) ListProducts(ctx context.Context) ([]Product, error) {
	q := `SELECT id, name, price, COALESCE(description, ''), COALESCE(params, '{}')
	      FROM products ORDER BY name`
	rows, err := a.DB.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var (
			p      Product
			params []byte
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &params); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(params, &p.Params); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (a *App) GetProduct(ctx context.Context, id string) (Product, error) {
	q := `SELECT id, name, price, COALESCE(description, ''), COALESCE(params, '{}')
	      FROM products WHERE id = $1`
	var (
		p      Product
		params []byte
	)
	err := a.DB.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Price, &p.Description, &params)
	if err != nil {
		return Product{}, err
	}
	if err := json.Unmarshal(params, &p.Params); err != nil {
		return Product{}, err
	}
	return p, nil
}

// InsertOrder persists a placed order with its cart lines as JSON.
func (a *App) InsertOrder(ctx context.Context, o *Order) error {
	lines, err := json.Marshal(o.Products)
	if err != nil {
		return err
	}
	q := `INSERT INTO orders
	      (id, address, phone, subtotal_price, delivery_fee, total_price, total_number, products, created_at)
	      VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, now())
	      RETURNING id`
	return a.DB.QueryRow(ctx, q,
		o.Address, o.Phone, o.SubtotalPrice, o.DeliveryFee,
		o.TotalPrice, o.TotalNumber, lines,
	).Scan(&o.ID)
}
