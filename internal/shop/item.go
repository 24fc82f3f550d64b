package shop

// Lifecycle is the state of an item in the catalogue. Items are never
// removed; deletion moves them to Deleted.
type Lifecycle int

const (
	Active Lifecycle = iota
	Deleted
)

// String returns the lower-case state name.
func (l Lifecycle) String() string {
	switch l {
	case Active:
		return "active"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Item is a catalogue entry. Values handed out by ItemStore are copies.
type Item struct {
	ID    int
	Name  string
	Price float64
	State Lifecycle
}

// Deleted reports whether the item has been soft-deleted.
func (i Item) Deleted() bool {
	return i.State == Deleted
}

// Field is one optional member of a partial update. Set means the key was
// present in the payload; Null means it was present with an explicit null.
type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Present returns a Field carrying v.
func Present[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// ItemPatch is a partial update. Deleted only records whether the payload
// tried to touch the lifecycle flag; it is never applied.
type ItemPatch struct {
	Name    Field[string]
	Price   Field[float64]
	Deleted Field[bool]
}

// DeleteOutcome acknowledges a delete request.
type DeleteOutcome int

const (
	Removed DeleteOutcome = iota
	AlreadyRemoved
)

// Message is the acknowledgement text returned to the client.
func (o DeleteOutcome) Message() string {
	if o == AlreadyRemoved {
		return "Item already removed"
	}
	return "Item removed"
}
