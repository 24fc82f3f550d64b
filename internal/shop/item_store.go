package shop

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ItemStore owns the item catalogue and its id counter. Ids are assigned
// sequentially from zero and are never reused, so the backing slice index is
// the item id and iteration order is creation order.
type ItemStore struct {
	mu    sync.RWMutex
	items []*Item
}

// NewItemStore returns an empty catalogue.
func NewItemStore() *ItemStore {
	return &ItemStore{}
}

// Create stores a new active item and returns it.
func (s *ItemStore) Create(name string, price float64) (Item, error) {
	if price < 0 {
		return Item{}, errors.WithStack(ErrInvalidPrice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := &Item{ID: len(s.items), Name: name, Price: price, State: Active}
	s.items = append(s.items, item)
	return *item, nil
}

// Get returns the item unless it is absent or soft-deleted.
func (s *ItemStore) Get(id int) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.active(id)
	if !ok {
		return Item{}, errors.Wrapf(ErrNotFound, "item %d", id)
	}
	return *item, nil
}

// Lookup reports the current state of an active item. It is the read side
// carts are priced against.
func (s *ItemStore) Lookup(id int) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.active(id)
	if !ok {
		return Item{}, false
	}
	return *item, true
}

// Replace overwrites name and price of an active item.
func (s *ItemStore) Replace(id int, name string, price float64) (Item, error) {
	if price < 0 {
		return Item{}, errors.WithStack(ErrInvalidPrice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.active(id)
	if !ok {
		return Item{}, errors.Wrapf(ErrNotFound, "item %d", id)
	}
	item.Name = name
	item.Price = price
	return *item, nil
}

// Update applies the fields present in patch. A deleted item is never
// modified, whatever the payload; a payload touching the lifecycle flag or
// nulling a required field is rejected.
func (s *ItemStore) Update(id int, patch ItemPatch) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.lookup(id)
	if !ok {
		return Item{}, errors.Wrapf(ErrNotFound, "item %d", id)
	}
	if item.Deleted() {
		return Item{}, errors.Wrapf(ErrNotModified, "item %d is deleted", id)
	}
	if patch.Deleted.Set {
		return Item{}, errors.Wrap(ErrUnprocessableEntity, "deleted flag cannot be updated")
	}
	if patch.Name.Null || patch.Price.Null {
		return Item{}, errors.Wrap(ErrUnprocessableEntity, "name and price cannot be null")
	}
	if patch.Price.Set && patch.Price.Value < 0 {
		return Item{}, errors.WithStack(ErrInvalidPrice)
	}

	if patch.Name.Set {
		item.Name = patch.Name.Value
	}
	if patch.Price.Set {
		item.Price = patch.Price.Value
	}
	return *item, nil
}

// Delete soft-deletes the item. Deleting an absent or already deleted item
// is acknowledged rather than failed.
func (s *ItemStore) Delete(id int) DeleteOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.active(id)
	if !ok {
		return AlreadyRemoved
	}
	item.State = Deleted
	return Removed
}

// List filters the catalogue in creation order and returns the requested
// page.
func (s *ItemStore) List(q ItemQuery) []Item {
	s.mu.RLock()
	matched := lo.FilterMap(s.items, func(item *Item, _ int) (Item, bool) {
		if item.Deleted() && !q.ShowDeleted {
			return Item{}, false
		}
		return *item, within(item.Price, q.MinPrice, q.MaxPrice)
	})
	s.mu.RUnlock()

	return paginate(matched, q.Page)
}

func (s *ItemStore) lookup(id int) (*Item, bool) {
	if id < 0 || id >= len(s.items) {
		return nil, false
	}
	return s.items[id], true
}

func (s *ItemStore) active(id int) (*Item, bool) {
	item, ok := s.lookup(id)
	if !ok || item.Deleted() {
		return nil, false
	}
	return item, true
}
