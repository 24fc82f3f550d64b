package shop

import "github.com/samber/lo"

// DefaultLimit is the page size used when a caller does not ask for one.
const DefaultLimit = 10

// Page selects a window of a filtered listing.
type Page struct {
	Offset int
	Limit  int
}

// ItemQuery filters an item listing. Nil bounds are open; bounds are
// inclusive.
type ItemQuery struct {
	Page
	MinPrice    *float64
	MaxPrice    *float64
	ShowDeleted bool
}

// CartQuery filters a cart listing by priced total and by the sum of line
// quantities.
type CartQuery struct {
	Page
	MinPrice    *float64
	MaxPrice    *float64
	MinQuantity *int
	MaxQuantity *int
}

func paginate[T any](entries []T, p Page) []T {
	if p.Offset < 0 || p.Offset >= len(entries) || p.Limit <= 0 {
		return []T{}
	}
	end := len(entries)
	if p.Limit < end-p.Offset {
		end = p.Offset + p.Limit
	}
	return lo.Slice(entries, p.Offset, end)
}

func within[T int | float64](v T, lower, upper *T) bool {
	if lower != nil && v < *lower {
		return false
	}
	if upper != nil && v > *upper {
		return false
	}
	return true
}
