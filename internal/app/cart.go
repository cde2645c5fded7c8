package app

import "fmt"

// CartTotals is the cart summary rendered under the line items. The
// delivery fee applies only once there is something to deliver.
type CartTotals struct {
	SubtotalPrice float64 `json:"subtotalPrice"`
	DeliveryFee   float64 `json:"deliveryFee"`
	TotalPrice    float64 `json:"totalPrice"`
	TotalNumber   int     `json:"totalNumber"`
}

// AddToCart appends a configured product line, merging it into an
// existing line when product and options match.
func (s *BookingSession) AddToCart(line CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line.Amount = clampAmount(line.Amount)
	for i, l := range s.cart {
		if l.ProductID == line.ProductID && sameOptions(l.Options, line.Options) {
			s.cart[i].Amount = clampAmount(l.Amount + line.Amount)
			return
		}
	}
	s.cart = append(s.cart, line)
}

func sameOptions(a, b map[string][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for param, opts := range a {
		other, ok := b[param]
		if !ok || len(other) != len(opts) {
			return false
		}
		for i := range opts {
			if opts[i] != other[i] {
				return false
			}
		}
	}
	return true
}

func (s *BookingSession) CartLines() []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]CartLine, len(s.cart))
	copy(lines, s.cart)
	return lines
}

func (s *BookingSession) RemoveCartLine(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.cart) {
		return fmt.Errorf("no cart line %d", i)
	}
	s.cart = append(s.cart[:i], s.cart[i+1:]...)
	return nil
}

func (s *BookingSession) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
}

func (s *BookingSession) CartTotals(deliveryFee float64) CartTotals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t CartTotals
	for _, l := range s.cart {
		t.SubtotalPrice += l.Total()
		t.TotalNumber += l.Amount
	}
	if t.TotalNumber > 0 {
		t.DeliveryFee = deliveryFee
		t.TotalPrice = t.SubtotalPrice + deliveryFee
	}
	return t
}
