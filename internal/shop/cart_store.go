package shop

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// CartStore owns the carts and their id counter. Carts are priced against
// the catalogue on every read.
//
// The store never holds its own lock while consulting the catalogue. AddItem
// therefore checks the item and mutates the cart in two steps: an item
// deleted in between still gets its line, which then prices as unavailable.
type CartStore struct {
	mu      sync.RWMutex
	carts   []*Cart
	catalog ItemCatalog
}

// NewCartStore returns an empty cart store priced against catalog.
func NewCartStore(catalog ItemCatalog) *CartStore {
	return &CartStore{catalog: catalog}
}

// Create stores an empty cart.
func (s *CartStore) Create() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := &Cart{ID: len(s.carts), Items: []CartItem{}}
	s.carts = append(s.carts, cart)
	return cart.clone()
}

// Get returns the priced cart.
func (s *CartStore) Get(id int) (Cart, error) {
	cart, err := s.snapshot(id)
	if err != nil {
		return Cart{}, err
	}
	return Price(cart, s.catalog), nil
}

// AddItem puts one more unit of an active item into the cart, appending a
// line the first time the item is added.
func (s *CartStore) AddItem(cartID, itemID int) (Cart, error) {
	if _, err := s.snapshot(cartID); err != nil {
		return Cart{}, err
	}

	item, ok := s.catalog.Lookup(itemID)
	if !ok {
		return Cart{}, errors.Wrapf(ErrNotFound, "item %d", itemID)
	}

	s.mu.Lock()
	cart := s.carts[cartID]
	if _, idx, found := lo.FindIndexOf(cart.Items, func(line CartItem) bool { return line.ID == itemID }); found {
		cart.Items[idx].Quantity++
	} else {
		cart.Items = append(cart.Items, CartItem{
			ID:        item.ID,
			Name:      item.Name,
			Quantity:  1,
			Available: true,
		})
	}
	updated := cart.clone()
	s.mu.Unlock()

	return Price(updated, s.catalog), nil
}

// List prices every cart, keeps those within the total price and quantity
// bounds in creation order, and returns the requested page.
func (s *CartStore) List(q CartQuery) []Cart {
	s.mu.RLock()
	carts := lo.Map(s.carts, func(cart *Cart, _ int) Cart { return cart.clone() })
	s.mu.RUnlock()

	matched := lo.FilterMap(carts, func(cart Cart, _ int) (Cart, bool) {
		priced := Price(cart, s.catalog)
		return priced, within(priced.Price, q.MinPrice, q.MaxPrice) &&
			within(priced.Quantity(), q.MinQuantity, q.MaxQuantity)
	})
	return paginate(matched, q.Page)
}

func (s *CartStore) snapshot(id int) (Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id < 0 || id >= len(s.carts) {
		return Cart{}, errors.Wrapf(ErrNotFound, "cart %d", id)
	}
	return s.carts[id].clone(), nil
}
