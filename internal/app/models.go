package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// TableID is the canonical table identifier. Feed payloads carry it
// either as a JSON number or as a numeric string (the floor plan markup
// historically used string attributes), so decoding accepts both.
type TableID int

func (t *TableID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*t = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid table id %s", string(b))
	}
	*t = TableID(n)
	return nil
}

// RepeatRule is the recurrence kind carried by event records.
type RepeatRule string

const (
	RepeatNone    RepeatRule = "none"
	RepeatDaily   RepeatRule = "daily"
	RepeatWeekly  RepeatRule = "weekly"
	RepeatMonthly RepeatRule = "monthly"
)

// Reservation is a point booking: one table at one date/hour for a
// number of hours. It doubles as the submission payload.
type Reservation struct {
	ID       string   `json:"id,omitempty"`
	Address  string   `json:"address,omitempty"`
	Date     string   `json:"date"`
	Hour     string   `json:"hour"`
	Duration float64  `json:"duration"`
	People   int      `json:"people,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Starters []string `json:"starters,omitempty"`
	Table    TableID  `json:"table"`
}

// Event occupies a table like a reservation does, but repeating events
// carry a rule instead of standing for a single date.
type Event struct {
	ID       string     `json:"id,omitempty"`
	Title    string     `json:"title,omitempty"`
	Date     string     `json:"date"`
	Hour     string     `json:"hour"`
	Duration float64    `json:"duration"`
	Table    TableID    `json:"table"`
	Repeat   RepeatRule `json:"repeat,omitempty"`
}

// DateRange is the closed booking window [Min, Max]. Recurrence
// expansion never produces dates outside of it.
type DateRange struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.Min) && !d.After(r.Max)
}

// hourToNumber converts a "HH:MM" picker value to the numeric half-hour
// scale used as occupancy keys ("12:30" -> 12.5).
func hourToNumber(s string) (float64, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid hour %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid hour %q", s)
	}
	return float64(h) + float64(m)/60, nil
}

// ProductOption is one selectable option inside a product param.
// Default options are included in the base price.
type ProductOption struct {
	Label   string  `json:"label"`
	Price   float64 `json:"price"`
	Default bool    `json:"default,omitempty"`
}

// ProductParam groups options under a category (sauce, toppings, ...).
type ProductParam struct {
	Label   string                   `json:"label"`
	Type    string                   `json:"type"`
	Options map[string]ProductOption `json:"options"`
}

type Product struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Price       float64                 `json:"price"`
	Description string                  `json:"description,omitempty"`
	Params      map[string]ProductParam `json:"params,omitempty"`
}

// CartLine is one configured product in a cart.
type CartLine struct {
	ProductID string              `json:"productId"`
	Name      string              `json:"name"`
	Amount    int                 `json:"amount"`
	UnitPrice float64             `json:"unitPrice"`
	Options   map[string][]string `json:"options,omitempty"`
}

func (l CartLine) Total() float64 {
	return float64(l.Amount) * l.UnitPrice
}

type Order struct {
	ID            string     `json:"id,omitempty"`
	Address       string     `json:"address"`
	Phone         string     `json:"phone"`
	SubtotalPrice float64    `json:"subtotalPrice"`
	DeliveryFee   float64    `json:"deliveryFee"`
	TotalPrice    float64    `json:"totalPrice"`
	TotalNumber   int        `json:"totalNumber"`
	Products      []CartLine `json:"products"`
}
