//go:generate go run go.uber.org/mock/mockgen -source=catalog.go -destination=../mocks/mock_catalog.go -package=mocks
package shop

// ItemCatalog is the read-only view of the catalogue carts are priced
// against. Lookup reports false for absent and soft-deleted items.
type ItemCatalog interface {
	Lookup(id int) (Item, bool)
}
