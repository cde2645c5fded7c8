package app

// ConfiguredPrice computes the price of one unit of a product for a
// given option selection. Default options are already part of the base
// price: picking a non-default option adds its price, dropping a
// default option subtracts it.
func ConfiguredPrice(p Product, picked map[string][]string) float64 {
	price := p.Price
	for paramID, param := range p.Params {
		for optionID, option := range param.Options {
			selected := false
			for _, id := range picked[paramID] {
				if id == optionID {
					selected = true
					break
				}
			}
			switch {
			case selected && !option.Default:
				price += option.Price
			case !selected && option.Default:
				price -= option.Price
			}
		}
	}
	return price
}

// validOptions rejects a selection naming a param or option the
// product does not have.
func validOptions(p Product, picked map[string][]string) bool {
	for paramID, optionIDs := range picked {
		param, ok := p.Params[paramID]
		if !ok {
			return false
		}
		for _, id := range optionIDs {
			if _, ok := param.Options[id]; !ok {
				return false
			}
		}
	}
	return true
}

const (
	amountMin = 1
	amountMax = 9
)

// clampAmount applies the amount widget bounds.
func clampAmount(n int) int {
	if n < amountMin {
		return amountMin
	}
	if n > amountMax {
		return amountMax
	}
	return n
}
