package app

import (
	"log"

	"github.com/teambition/rrule-go"
)

// repeatFreq maps a repeat kind to its rrule frequency. A kind without
// an entry produces no occupation at all; the feeds only carry "daily"
// today, and weekly/monthly become one extra entry here when they
// arrive, without touching the merge in BuildOccupancy.
var repeatFreq = map[RepeatRule]rrule.Frequency{
	RepeatDaily: rrule.DAILY,
}

// repeatDates expands a repeat rule into the concrete dates it occupies
// inside the booking window, both bounds inclusive. Date stepping is
// calendar-correct across month and year boundaries.
func repeatDates(rule RepeatRule, rng DateRange) []string {
	freq, ok := repeatFreq[rule]
	if !ok {
		return nil
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    freq,
		Dtstart: rng.Min,
		Until:   rng.Max,
	})
	if err != nil {
		log.Printf("availability: bad repeat rule %q: %v", rule, err)
		return nil
	}

	var dates []string
	for _, d := range r.All() {
		dates = append(dates, d.Format(dateLayout))
	}
	return dates
}
