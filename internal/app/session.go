package app

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

var (
	ErrTableBooked     = errors.New("table is already booked")
	ErrNoTableSelected = errors.New("no table selected")
	ErrUnknownTable    = errors.New("unknown table")
)

// noTable is the NoSelection state; real tables are numbered from 1.
const noTable TableID = 0

const (
	peopleMin = 1
	peopleMax = 9
	hoursMax  = 12
)

// TableStatus is the render pass output for one floor plan table.
type TableStatus struct {
	Table    TableID `json:"table"`
	Booked   bool    `json:"booked"`
	Selected bool    `json:"selected"`
}

// BookingSession holds one visitor's widget state (date picker, hour
// picker, people and hours amounts), the occupancy snapshot their floor
// plan is rendered from, the single-table selection and their cart.
//
// All mutation goes through a single update boundary; the selection is
// invalidated through the registered widget-change callback, never as a
// side effect scattered across setters.
type BookingSession struct {
	ID string

	mu        sync.Mutex
	window    DateRange
	tables    []TableID
	date      string
	hour      string
	people    int
	hours     float64
	occupancy Occupancy
	selected  TableID
	observers []func()
	cart      []CartLine
}

func NewBookingSession(id string, tables []TableID, window DateRange) *BookingSession {
	s := &BookingSession{
		ID:       id,
		window:   window,
		tables:   tables,
		date:     window.Min.Format(dateLayout),
		hour:     "12:00",
		people:   1,
		hours:    1,
		selected: noTable,
	}
	// The selection controller declares its dependency on the four
	// widgets here: any widget change clears the selection, because
	// each of those values changes which tables are actually free.
	s.OnWidgetChange(func() { s.selected = noTable })
	return s
}

// OnWidgetChange registers fn to run after any widget value changes.
// Callbacks run synchronously under the session lock and must not call
// exported session methods.
func (s *BookingSession) OnWidgetChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// updateWidget is the one place widget state mutates. It applies the
// mutation, then notifies every registered observer.
func (s *BookingSession) updateWidget(mutate func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate()
	for _, fn := range s.observers {
		fn()
	}
}

func (s *BookingSession) SetDate(date string) error {
	d, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date %q", date)
	}
	if !s.window.Contains(d) {
		return fmt.Errorf("date %s outside booking window", date)
	}
	s.updateWidget(func() { s.date = date })
	return nil
}

func (s *BookingSession) SetHour(hour string) error {
	if _, err := hourToNumber(hour); err != nil {
		return err
	}
	s.updateWidget(func() { s.hour = hour })
	return nil
}

func (s *BookingSession) SetPeople(n int) {
	if n < peopleMin {
		n = peopleMin
	}
	if n > peopleMax {
		n = peopleMax
	}
	s.updateWidget(func() { s.people = n })
}

func (s *BookingSession) SetHours(h float64) error {
	if h <= 0 || h > hoursMax || math.Mod(h*2, 1) != 0 {
		return fmt.Errorf("invalid duration %v: must be a positive half-hour multiple", h)
	}
	s.updateWidget(func() { s.hours = h })
	return nil
}

// Invalidate unconditionally returns the session to NoSelection.
func (s *BookingSession) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = noTable
}

// SetOccupancy swaps in a freshly built occupancy map. If the reload
// left the currently selected table booked, the selection is dropped
// before anything renders from the new map.
func (s *BookingSession) SetOccupancy(occ Occupancy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.occupancy = occ
	if s.selected != noTable {
		hour, err := hourToNumber(s.hour)
		if err != nil || occ.TableBooked(s.date, hour, s.selected) {
			s.selected = noTable
		}
	}
}

// SelectTable toggles the selection. Selecting a booked table is
// rejected with no state change; selecting the already selected table
// deselects it; selecting another table replaces the prior selection,
// so at most one table is ever selected.
func (s *BookingSession) SelectTable(table TableID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := false
	for _, t := range s.tables {
		if t == table {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownTable
	}

	hour, err := hourToNumber(s.hour)
	if err != nil {
		return err
	}
	if s.occupancy.TableBooked(s.date, hour, table) {
		return ErrTableBooked
	}

	if s.selected == table {
		s.selected = noTable
		return nil
	}
	s.selected = table
	return nil
}

// Selected returns the active table, if any.
func (s *BookingSession) Selected() (TableID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.selected != noTable
}

// FloorPlan renders the booked/selected state of every table for the
// session's current date and hour.
func (s *BookingSession) FloorPlan() []TableStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	hour, err := hourToNumber(s.hour)
	statuses := make([]TableStatus, 0, len(s.tables))
	for _, t := range s.tables {
		st := TableStatus{Table: t, Selected: t == s.selected}
		if err == nil {
			st.Booked = s.occupancy.TableBooked(s.date, hour, t)
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// ContactDetails is what the booking form adds on top of widget state.
type ContactDetails struct {
	Address  string   `json:"address"`
	Phone    string   `json:"phone"`
	Starters []string `json:"starters"`
}

// ReservationPayload assembles the submission payload from the current
// widget values and the active selection. Without a selection there is
// nothing valid to submit.
func (s *BookingSession) ReservationPayload(contact ContactDetails) (Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == noTable {
		return Reservation{}, ErrNoTableSelected
	}
	starters := contact.Starters
	if starters == nil {
		starters = []string{}
	}
	return Reservation{
		Address:  contact.Address,
		Date:     s.date,
		Duration: s.hours,
		Hour:     s.hour,
		People:   s.people,
		Phone:    contact.Phone,
		Starters: starters,
		Table:    s.selected,
	}, nil
}

// WidgetState is the session view returned to clients.
type WidgetState struct {
	ID     string    `json:"id"`
	Date   string    `json:"date"`
	Hour   string    `json:"hour"`
	People int       `json:"people"`
	Hours  float64   `json:"hours"`
	Window DateRange `json:"window"`
}

func (s *BookingSession) State() WidgetState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WidgetState{
		ID:     s.ID,
		Date:   s.date,
		Hour:   s.hour,
		People: s.people,
		Hours:  s.hours,
		Window: s.window,
	}
}

func (s *BookingSession) Window() DateRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*BookingSession
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: map[string]*BookingSession{}}
}

func (r *sessionRegistry) Add(s *BookingSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

func (r *sessionRegistry) Get(id string) (*BookingSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *sessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
