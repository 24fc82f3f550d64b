// Package shop holds the in-memory item catalogue, shopping carts and the
// pricing rules that join them.
package shop

import "github.com/pkg/errors"

// Domain outcomes surfaced to the HTTP boundary. Stores wrap them with the
// offending id; match with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrNotModified         = errors.New("not modified")
	ErrUnprocessableEntity = errors.New("unprocessable entity")
	ErrInvalidPrice        = errors.New("price must be non-negative")
)
