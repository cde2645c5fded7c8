package app

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// feedRange reads the json-server style date_gte/date_lte query
// parameters, falling back to the booking window.
func (a *App) feedRange(c *gin.Context) (DateRange, error) {
	rng := a.BookingWindow(time.Now())
	if v := c.Query("date_gte"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return DateRange{}, errors.New("invalid date_gte")
		}
		rng.Min = d
	}
	if v := c.Query("date_lte"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return DateRange{}, errors.New("invalid date_lte")
		}
		rng.Max = d
	}
	return rng, nil
}

// GET /api/bookings?date_gte=YYYY-MM-DD&date_lte=YYYY-MM-DD
func (a *App) ListBookingsFeedHandler(c *gin.Context) {
	rng, err := a.feedRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bookings, err := a.ListReservationsInRange(c.Request.Context(), rng)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if bookings == nil {
		bookings = []Reservation{}
	}
	c.JSON(http.StatusOK, bookings)
}

// GET /api/events?repeat=daily or ?repeat_ne=daily, plus date range.
// The repeat / repeat_ne parameter discriminates the two event feeds.
func (a *App) ListEventsFeedHandler(c *gin.Context) {
	rng, err := a.feedRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var repeat bool
	switch {
	case c.Query("repeat") != "":
		repeat = true
	case c.Query("repeat_ne") != "":
		repeat = false
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "repeat or repeat_ne required"})
		return
	}

	events, err := a.ListEvents(c.Request.Context(), repeat, rng)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if events == nil {
		events = []Event{}
	}
	c.JSON(http.StatusOK, events)
}

// POST /api/bookings
// Direct submission endpoint for clients that manage their own widget
// state. A missing table is rejected instead of being posted as null.
func (a *App) CreateBookingHandler(c *gin.Context) {
	var r Reservation
	if err := c.BindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if r.Table == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "table required"})
		return
	}
	if _, err := time.ParseInLocation(dateLayout, r.Date, time.UTC); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}
	if _, err := hourToNumber(r.Hour); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hour"})
		return
	}
	if r.Duration <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration"})
		return
	}

	id, err := a.InsertReservation(c.Request.Context(), r)
	if errors.Is(err, ErrTableBooked) {
		c.JSON(http.StatusConflict, gin.H{"error": "table already booked"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	r.ID = id
	c.JSON(http.StatusCreated, r)
}

func (a *App) session(c *gin.Context) (*BookingSession, bool) {
	s, ok := a.Sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return s, true
}

func sessionView(s *BookingSession) gin.H {
	return gin.H{
		"session":   s.State(),
		"floorPlan": s.FloorPlan(),
	}
}

// POST /api/sessions
// Opens a booking session: widget defaults, floor plan tables, and a
// first availability load behind the join barrier.
func (a *App) CreateSessionHandler(c *gin.Context) {
	rng := a.BookingWindow(time.Now())
	s := NewBookingSession(uuid.NewString(), a.Tables, rng)

	occ, err := a.LoadAvailability(c.Request.Context(), rng)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	s.SetOccupancy(occ)

	a.Sessions.Add(s)
	c.JSON(http.StatusCreated, sessionView(s))
}

type updateSessionReq struct {
	Date   *string  `json:"date"`
	Hour   *string  `json:"hour"`
	People *int     `json:"people"`
	Hours  *float64 `json:"hours"`
}

// PATCH /api/sessions/:id
// Any widget change arriving here clears the table selection before
// the floor plan is rendered again.
func (a *App) UpdateSessionHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}

	var req updateSessionReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Date != nil {
		if err := s.SetDate(*req.Date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Hour != nil {
		if err := s.SetHour(*req.Hour); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.People != nil {
		s.SetPeople(*req.People)
	}
	if req.Hours != nil {
		if err := s.SetHours(*req.Hours); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, sessionView(s))
}

// POST /api/sessions/:id/availability
// Re-runs the three-feed load. On failure the previous occupancy map
// stays in effect and the error is surfaced, never silently swallowed.
func (a *App) RefreshAvailabilityHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}

	occ, err := a.LoadAvailability(c.Request.Context(), s.Window())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	s.SetOccupancy(occ)
	c.JSON(http.StatusOK, sessionView(s))
}

// GET /api/sessions/:id/floorplan
func (a *App) FloorPlanHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionView(s))
}

// POST /api/sessions/:id/table
func (a *App) SelectTableHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}

	var req struct {
		Table TableID `json:"table"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.SelectTable(req.Table)
	switch {
	case errors.Is(err, ErrUnknownTable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown table"})
		return
	case errors.Is(err, ErrTableBooked):
		c.JSON(http.StatusConflict, gin.H{"error": "table already booked"})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessionView(s))
}

// POST /api/sessions/:id/reservation
func (a *App) SubmitReservationHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}

	var contact ContactDetails
	if err := c.BindJSON(&contact); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := a.SubmitReservation(c.Request.Context(), s, contact)
	switch {
	case errors.Is(err, ErrNoTableSelected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no table selected"})
		return
	case errors.Is(err, ErrTableBooked):
		c.JSON(http.StatusConflict, gin.H{"error": "table already booked"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if token, ok := tokenFromRequest(c); ok {
		if err := a.syncReservationEvent(c.Request.Context(), token, res); err != nil {
			log.Printf("calendar: failed to sync reservation %s: %v", res.ID, err)
		}
	}

	c.JSON(http.StatusCreated, res)
}

// GET /api/products
func (a *App) ListProductsHandler(c *gin.Context) {
	products, err := a.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if products == nil {
		products = []Product{}
	}
	c.JSON(http.StatusOK, products)
}

type priceQuoteReq struct {
	Options map[string][]string `json:"options"`
	Amount  int                 `json:"amount"`
}

// POST /api/products/:id/price
// Quotes the configured price for an option selection, the same math
// the menu widget shows while options are toggled.
func (a *App) PriceQuoteHandler(c *gin.Context) {
	var req priceQuoteReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := a.GetProduct(c.Request.Context(), c.Param("id"))
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !validOptions(p, req.Options) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown option"})
		return
	}

	amount := clampAmount(req.Amount)
	unit := ConfiguredPrice(p, req.Options)
	c.JSON(http.StatusOK, gin.H{
		"unitPrice": unit,
		"amount":    amount,
		"total":     float64(amount) * unit,
	})
}

type addToCartReq struct {
	ProductID string              `json:"productId"`
	Options   map[string][]string `json:"options"`
	Amount    int                 `json:"amount"`
}

// POST /api/sessions/:id/cart
// The add-to-cart signal: resolves the product, prices the selected
// options and appends the line.
func (a *App) AddToCartHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}

	var req addToCartReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := a.GetProduct(c.Request.Context(), req.ProductID)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !validOptions(p, req.Options) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown option"})
		return
	}

	s.AddToCart(CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Amount:    clampAmount(req.Amount),
		UnitPrice: ConfiguredPrice(p, req.Options),
		Options:   req.Options,
	})
	c.JSON(http.StatusCreated, gin.H{
		"lines":  s.CartLines(),
		"totals": s.CartTotals(a.DeliveryFee),
	})
}

// GET /api/sessions/:id/cart
func (a *App) GetCartHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"lines":  s.CartLines(),
		"totals": s.CartTotals(a.DeliveryFee),
	})
}

// DELETE /api/sessions/:id/cart/:index
func (a *App) RemoveCartLineHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line index"})
		return
	}
	if err := s.RemoveCartLine(i); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"lines":  s.CartLines(),
		"totals": s.CartTotals(a.DeliveryFee),
	})
}

type placeOrderReq struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// POST /api/sessions/:id/order
func (a *App) PlaceOrderHandler(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}

	var req placeOrderReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := s.CartLines()
	if len(lines) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cart is empty"})
		return
	}

	totals := s.CartTotals(a.DeliveryFee)
	order := &Order{
		Address:       req.Address,
		Phone:         req.Phone,
		SubtotalPrice: totals.SubtotalPrice,
		DeliveryFee:   totals.DeliveryFee,
		TotalPrice:    totals.TotalPrice,
		TotalNumber:   totals.TotalNumber,
		Products:      lines,
	}
	if err := a.InsertOrder(c.Request.Context(), order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.ClearCart()
	c.JSON(http.StatusCreated, order)
}
