package app

import "log"

// Occupancy maps date -> half-hour slot -> tables occupied in that
// slot. It is built wholesale from the three feeds and never patched
// incrementally; a data reload replaces the whole map.
type Occupancy map[string]map[float64][]TableID

// BuildOccupancy merges point reservations, non-repeating events and
// repeating events into one occupancy map. Repeating events are
// expanded over every date of the booking window. Records whose hour
// cannot be parsed are skipped and logged; they never abort the merge.
func BuildOccupancy(bookings []Reservation, eventsCurrent, eventsRepeat []Event, rng DateRange) Occupancy {
	occ := Occupancy{}

	for _, b := range bookings {
		hour, err := hourToNumber(b.Hour)
		if err != nil {
			log.Printf("availability: skipping reservation %s: %v", b.ID, err)
			continue
		}
		occ.markBooked(b.Date, hour, b.Duration, b.Table)
	}

	for _, e := range eventsCurrent {
		hour, err := hourToNumber(e.Hour)
		if err != nil {
			log.Printf("availability: skipping event %s: %v", e.ID, err)
			continue
		}
		occ.markBooked(e.Date, hour, e.Duration, e.Table)
	}

	for _, e := range eventsRepeat {
		hour, err := hourToNumber(e.Hour)
		if err != nil {
			log.Printf("availability: skipping repeating event %s: %v", e.ID, err)
			continue
		}
		for _, date := range repeatDates(e.Repeat, rng) {
			occ.markBooked(date, hour, e.Duration, e.Table)
		}
	}

	return occ
}

// markBooked occupies every half-hour slot in [start, start+duration).
func (o Occupancy) markBooked(date string, start, duration float64, table TableID) {
	day := o[date]
	if day == nil {
		day = map[float64][]TableID{}
		o[date] = day
	}
	for slot := start; slot < start+duration; slot += 0.5 {
		day[slot] = append(day[slot], table)
	}
}

// TableBooked reports whether table is occupied at date/hour. A date or
// slot missing from the map means nothing occupies it: absence is
// availability, not an error.
func (o Occupancy) TableBooked(date string, hour float64, table TableID) bool {
	day, ok := o[date]
	if !ok {
		return false
	}
	for _, t := range day[hour] {
		if t == table {
			return true
		}
	}
	return false
}
