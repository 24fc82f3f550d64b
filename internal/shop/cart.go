package shop

import (
	"slices"

	"github.com/samber/lo"
)

// CartItem is one line of a cart. Name and Available are a snapshot of the
// referenced item refreshed on every read; Quantity belongs to the cart.
type CartItem struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Available bool   `json:"available"`
}

// Cart is a shopping cart. Price is derived by Price and is only meaningful
// on values returned from CartStore.
type Cart struct {
	ID    int        `json:"id"`
	Items []CartItem `json:"items"`
	Price float64    `json:"price"`
}

// Quantity is the sum of line quantities.
func (c Cart) Quantity() int {
	return lo.SumBy(c.Items, func(line CartItem) int { return line.Quantity })
}

func (c Cart) clone() Cart {
	c.Items = slices.Clone(c.Items)
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	return c
}

// Price recomputes line availability and the cart total from the current
// catalogue. Lines whose item is gone or deleted are unavailable and priced
// at zero; their quantity is kept.
func Price(cart Cart, catalog ItemCatalog) Cart {
	priced := cart.clone()
	priced.Price = 0

	for i := range priced.Items {
		line := &priced.Items[i]
		item, ok := catalog.Lookup(line.ID)
		if !ok {
			line.Available = false
			continue
		}
		line.Available = true
		line.Name = item.Name
		priced.Price += item.Price * float64(line.Quantity)
	}
	return priced
}
