package app

import (
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultWindowDays  = 14
	defaultTableCount  = 3
	defaultDeliveryFee = 20
)

// App wires the Postgres pool, the session registry and the floor plan
// configuration together. All handlers hang off it.
type App struct {
	DB          *pgxpool.Pool
	Sessions    *sessionRegistry
	Tables      []TableID
	WindowDays  int
	DeliveryFee float64
}

func New(pool *pgxpool.Pool) *App {
	a := &App{
		DB:          pool,
		Sessions:    newSessionRegistry(),
		WindowDays:  defaultWindowDays,
		DeliveryFee: defaultDeliveryFee,
	}

	tables := defaultTableCount
	if v := os.Getenv("TABLE_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			tables = n
		}
	}
	if v := os.Getenv("BOOKING_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			a.WindowDays = n
		}
	}
	for i := 1; i <= tables; i++ {
		a.Tables = append(a.Tables, TableID(i))
	}
	return a
}

// BookingWindow is the selectable date range of the date picker:
// today through today+WindowDays, at UTC midnight.
func (a *App) BookingWindow(now time.Time) DateRange {
	min := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return DateRange{Min: min, Max: min.AddDate(0, 0, a.WindowDays)}
}
