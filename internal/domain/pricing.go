package domain

// OptionsTotalUSD sums the prices of the selected options that exist on the
// product. Selected ids with no matching option contribute nothing.
func OptionsTotalUSD(product Product, selected []string) int64 {
	var total int64
	for _, id := range selected {
		if opt, ok := product.Option(id); ok {
			total += opt.PriceUSD
		}
	}
	return total
}

// LineTotalUSD prices a single cart line: quantity times the base price plus
// the selected option prices.
func LineTotalUSD(item CartItem) int64 {
	if item.Quantity <= 0 {
		return 0
	}
	unit := item.Product.PriceUSD + OptionsTotalUSD(item.Product, item.Options.SelectedOptions)
	return unit * int64(item.Quantity)
}

// TotalItems returns the summed quantity across all cart lines.
func (c Cart) TotalItems() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// TotalUSD returns the estimated cart total in whole USD.
func (c Cart) TotalUSD() int64 {
	var total int64
	for _, item := range c.Items {
		total += LineTotalUSD(item)
	}
	return total
}

// Item returns the cart line for the given product id.
func (c Cart) Item(productID string) (CartItem, bool) {
	for _, item := range c.Items {
		if item.Product.ID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}
