package app

import (
	"errors"
	"testing"
)

func newTestSession(t *testing.T) *BookingSession {
	t.Helper()
	s := NewBookingSession("test", []TableID{1, 2, 3}, testRange(t, "2024-06-01", "2024-06-14"))
	if s.State().Date != "2024-06-01" {
		t.Fatalf("unexpected default date %s", s.State().Date)
	}
	return s
}

func TestSelectTableToggle(t *testing.T) {
	s := newTestSession(t)

	if err := s.SelectTable(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got, ok := s.Selected(); !ok || got != 1 {
		t.Fatalf("expected table 1 selected, got %d (%v)", got, ok)
	}

	// selecting the same table again deselects it
	if err := s.SelectTable(1); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, ok := s.Selected(); ok {
		t.Fatal("expected NoSelection after toggling twice")
	}
}

func TestSelectTableReplacesPriorSelection(t *testing.T) {
	s := newTestSession(t)

	if err := s.SelectTable(1); err != nil {
		t.Fatalf("select 1: %v", err)
	}
	if err := s.SelectTable(2); err != nil {
		t.Fatalf("select 2: %v", err)
	}
	got, ok := s.Selected()
	if !ok || got != 2 {
		t.Fatalf("expected table 2 selected, got %d (%v)", got, ok)
	}

	statuses := s.FloorPlan()
	for _, st := range statuses {
		if st.Table == 1 && st.Selected {
			t.Error("table 1 should have been deselected")
		}
	}
}

func TestSelectBookedTableRejected(t *testing.T) {
	s := newTestSession(t)
	s.SetOccupancy(Occupancy{
		"2024-06-01": {12: []TableID{2}},
	})

	err := s.SelectTable(2)
	if !errors.Is(err, ErrTableBooked) {
		t.Fatalf("expected ErrTableBooked, got %v", err)
	}
	if _, ok := s.Selected(); ok {
		t.Fatal("rejected selection must not change state")
	}
}

func TestSelectUnknownTableRejected(t *testing.T) {
	s := newTestSession(t)
	if err := s.SelectTable(9); !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}
}

func TestWidgetChangeClearsSelection(t *testing.T) {
	s := newTestSession(t)

	mutations := []struct {
		name  string
		apply func() error
	}{
		{"date", func() error { return s.SetDate("2024-06-02") }},
		{"hour", func() error { return s.SetHour("13:30") }},
		{"people", func() error { s.SetPeople(4); return nil }},
		{"hours", func() error { return s.SetHours(2.5) }},
	}

	for _, m := range mutations {
		if err := s.SelectTable(3); err != nil {
			t.Fatalf("%s: select: %v", m.name, err)
		}
		if err := m.apply(); err != nil {
			t.Fatalf("%s: %v", m.name, err)
		}
		if _, ok := s.Selected(); ok {
			t.Errorf("%s change must clear the selection", m.name)
		}
	}
}

func TestInvalidWidgetValuesRejected(t *testing.T) {
	s := newTestSession(t)

	if err := s.SetDate("2024-07-01"); err == nil {
		t.Error("date outside the booking window must be rejected")
	}
	if err := s.SetDate("not-a-date"); err == nil {
		t.Error("malformed date must be rejected")
	}
	if err := s.SetHour("25:00"); err == nil {
		t.Error("malformed hour must be rejected")
	}
	if err := s.SetHours(1.25); err == nil {
		t.Error("duration must be a half-hour multiple")
	}
	if err := s.SetHours(-1); err == nil {
		t.Error("negative duration must be rejected")
	}

	s.SetPeople(0)
	if got := s.State().People; got != 1 {
		t.Errorf("people clamped to %d, want 1", got)
	}
	s.SetPeople(50)
	if got := s.State().People; got != 9 {
		t.Errorf("people clamped to %d, want 9", got)
	}
}

func TestReloadInvalidatesSelectionOfNowBookedTable(t *testing.T) {
	s := newTestSession(t)

	if err := s.SelectTable(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	s.SetOccupancy(Occupancy{
		"2024-06-01": {12: []TableID{1}},
	})

	if _, ok := s.Selected(); ok {
		t.Fatal("a reload that books the selected table must invalidate the selection")
	}
	for _, st := range s.FloorPlan() {
		if st.Table == 1 {
			if !st.Booked || st.Selected {
				t.Fatalf("table 1 should render booked and unselected, got %+v", st)
			}
		}
	}
}

func TestReloadKeepsSelectionOfStillFreeTable(t *testing.T) {
	s := newTestSession(t)

	if err := s.SelectTable(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	s.SetOccupancy(Occupancy{
		"2024-06-01": {12: []TableID{2}},
	})

	if got, ok := s.Selected(); !ok || got != 1 {
		t.Fatalf("selection of a still-free table must survive a reload, got %d (%v)", got, ok)
	}
}

func TestReservationPayloadRequiresSelection(t *testing.T) {
	s := newTestSession(t)

	_, err := s.ReservationPayload(ContactDetails{Address: "Main St 1", Phone: "123"})
	if !errors.Is(err, ErrNoTableSelected) {
		t.Fatalf("expected ErrNoTableSelected, got %v", err)
	}
}

func TestReservationPayloadAssembly(t *testing.T) {
	s := newTestSession(t)

	if err := s.SetDate("2024-06-05"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetHour("19:30"); err != nil {
		t.Fatal(err)
	}
	s.SetPeople(4)
	if err := s.SetHours(2); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectTable(3); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReservationPayload(ContactDetails{
		Address:  "Main St 1",
		Phone:    "555-0101",
		Starters: []string{"bread", "lemonWater"},
	})
	if err != nil {
		t.Fatalf("payload: %v", err)
	}

	want := Reservation{
		Address:  "Main St 1",
		Date:     "2024-06-05",
		Duration: 2,
		Hour:     "19:30",
		People:   4,
		Phone:    "555-0101",
		Starters: []string{"bread", "lemonWater"},
		Table:    3,
	}
	if got.Date != want.Date || got.Hour != want.Hour || got.Duration != want.Duration ||
		got.People != want.People || got.Table != want.Table ||
		got.Address != want.Address || got.Phone != want.Phone {
		t.Fatalf("payload = %+v, want %+v", got, want)
	}
	if len(got.Starters) != 2 {
		t.Fatalf("starters = %v", got.Starters)
	}
}

func TestReservationPayloadEmptyStartersSerializeAsList(t *testing.T) {
	s := newTestSession(t)
	if err := s.SelectTable(1); err != nil {
		t.Fatal(err)
	}
	got, err := s.ReservationPayload(ContactDetails{})
	if err != nil {
		t.Fatal(err)
	}
	if got.Starters == nil {
		t.Fatal("starters must be an empty list, not null")
	}
}

func TestSessionRegistry(t *testing.T) {
	r := newSessionRegistry()
	s := NewBookingSession("abc", []TableID{1}, testRange(t, "2024-06-01", "2024-06-03"))

	r.Add(s)
	if got, ok := r.Get("abc"); !ok || got != s {
		t.Fatal("expected to find registered session")
	}
	r.Remove("abc")
	if _, ok := r.Get("abc"); ok {
		t.Fatal("expected session to be gone")
	}
}
