package server

import (
	"encoding/json"
	"net/http"

	"github.com/Tyrowin/shopchat/internal/shop"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Msg string `json:"msg"`
}

type cartCreatedResponse struct {
	ID int `json:"id"`
}

// itemResponse is the wire form of an item; the lifecycle state is exposed
// as a boolean.
type itemResponse struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Deleted bool    `json:"deleted"`
}

func toItemResponse(item shop.Item) itemResponse {
	return itemResponse{
		ID:      item.ID,
		Name:    item.Name,
		Price:   item.Price,
		Deleted: item.Deleted(),
	}
}

// writeJSON encodes data before the status line is written; an unencodable
// value is reported as a 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		s.log.WithError(err).Error("encode response")
		status = http.StatusInternalServerError
		payload = []byte(`{"detail":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		s.log.WithError(err).Error("write response")
	}
}

// writeError maps a domain or validation error to its status code.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors

	switch {
	case errors.Is(err, shop.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Detail: err.Error()})
	case errors.Is(err, shop.ErrNotModified):
		// 304 carries no body.
		w.WriteHeader(http.StatusNotModified)
	case errors.Is(err, shop.ErrUnprocessableEntity),
		errors.Is(err, shop.ErrInvalidPrice),
		errors.Is(err, errInvalidRequest),
		errors.As(err, &validationErrors):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: err.Error()})
	default:
		s.log.WithError(err).Error("unhandled error")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "internal error"})
	}
}
