package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestApp() *App {
	return &App{
		Sessions:    newSessionRegistry(),
		Tables:      []TableID{1, 2, 3},
		WindowDays:  defaultWindowDays,
		DeliveryFee: defaultDeliveryFee,
	}
}

func testRouter(a *App) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/bookings", a.CreateBookingHandler)
	r.PATCH("/api/sessions/:id", a.UpdateSessionHandler)
	r.GET("/api/sessions/:id/floorplan", a.FloorPlanHandler)
	r.POST("/api/sessions/:id/table", a.SelectTableHandler)
	r.POST("/api/sessions/:id/reservation", a.SubmitReservationHandler)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerTestSession(a *App) *BookingSession {
	s := NewBookingSession("sess-1", a.Tables, a.BookingWindow(time.Now()))
	a.Sessions.Add(s)
	return s
}

func TestCreateBookingRejectsMissingTable(t *testing.T) {
	a := newTestApp()
	r := testRouter(a)

	w := doJSON(t, r, http.MethodPost, "/api/bookings",
		`{"date":"2024-06-01","hour":"12:00","duration":1.5,"people":2}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body: %s", w.Code, w.Body.String())
	}
}

func TestCreateBookingRejectsBadFields(t *testing.T) {
	a := newTestApp()
	r := testRouter(a)

	cases := []struct {
		name string
		body string
	}{
		{"bad date", `{"date":"June 1st","hour":"12:00","duration":1,"table":1}`},
		{"bad hour", `{"date":"2024-06-01","hour":"noon","duration":1,"table":1}`},
		{"bad duration", `{"date":"2024-06-01","hour":"12:00","duration":0,"table":1}`},
	}
	for _, tc := range cases {
		w := doJSON(t, r, http.MethodPost, "/api/bookings", tc.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, w.Code)
		}
	}
}

func TestSubmitWithoutSelectionRejected(t *testing.T) {
	a := newTestApp()
	r := testRouter(a)
	registerTestSession(a)

	w := doJSON(t, r, http.MethodPost, "/api/sessions/sess-1/reservation",
		`{"address":"Main St 1","phone":"555-0101"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body: %s", w.Code, w.Body.String())
	}
}

func TestSelectBookedTableConflicts(t *testing.T) {
	a := newTestApp()
	r := testRouter(a)
	s := registerTestSession(a)

	s.SetOccupancy(Occupancy{
		s.State().Date: {12: []TableID{2}},
	})

	w := doJSON(t, r, http.MethodPost, "/api/sessions/sess-1/table", `{"table":2}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/sessions/sess-1/table", `{"table":"3"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("string table id: status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
}

func TestUpdateSessionValidation(t *testing.T) {
	a := newTestApp()
	r := testRouter(a)
	registerTestSession(a)

	w := doJSON(t, r, http.MethodPatch, "/api/sessions/sess-1", `{"hour":"27:00"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodPatch, "/api/sessions/sess-1", `{"people":4,"hours":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
}

func TestUpdateSessionClearsSelection(t *testing.T) {
	a := newTestApp()
	r := testRouter(a)
	s := registerTestSession(a)

	if err := s.SelectTable(1); err != nil {
		t.Fatal(err)
	}
	w := doJSON(t, r, http.MethodPatch, "/api/sessions/sess-1", `{"people":5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	if _, ok := s.Selected(); ok {
		t.Fatal("widget update must clear the selection")
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	a := newTestApp()
	r := testRouter(a)

	w := doJSON(t, r, http.MethodGet, "/api/sessions/nope/floorplan", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
