package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Tyrowin/shopchat/internal/shop"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// errInvalidRequest marks malformed input rejected before it reaches a
// store.
var errInvalidRequest = errors.New("invalid request")

type itemRequest struct {
	Name  *string  `json:"name" validate:"required"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

type itemListParams struct {
	Offset      int      `validate:"gte=0"`
	Limit       int      `validate:"gt=0"`
	MinPrice    *float64 `validate:"omitempty,gte=0"`
	MaxPrice    *float64 `validate:"omitempty,gte=0"`
	ShowDeleted bool
}

type cartListParams struct {
	Offset      int      `validate:"gte=0"`
	Limit       int      `validate:"gt=0"`
	MinPrice    *float64 `validate:"omitempty,gte=0"`
	MaxPrice    *float64 `validate:"omitempty,gte=0"`
	MinQuantity *int     `validate:"omitempty,gte=0"`
	MaxQuantity *int     `validate:"omitempty,gte=0"`
}

func pathID(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(errInvalidRequest, "path parameter %s=%q is not an integer", name, raw)
	}
	return id, nil
}

func (s *Server) decodeItemRequest(r *http.Request) (itemRequest, error) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return itemRequest{}, errors.Wrapf(errInvalidRequest, "decode body: %v", err)
	}
	if err := s.validate.Struct(req); err != nil {
		return itemRequest{}, err
	}
	return req, nil
}

// decodeItemPatch keeps track of which keys the payload carried, and which
// of them were an explicit null, so the store can tell them apart.
func decodeItemPatch(body io.Reader) (shop.ItemPatch, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return shop.ItemPatch{}, errors.Wrapf(errInvalidRequest, "decode body: %v", err)
	}
	if raw == nil {
		return shop.ItemPatch{}, errors.Wrap(errInvalidRequest, "body must be an object")
	}

	var patch shop.ItemPatch
	var err error
	for key, value := range raw {
		switch key {
		case "name":
			patch.Name, err = decodeField[string](key, value)
		case "price":
			patch.Price, err = decodeField[float64](key, value)
		case "deleted":
			patch.Deleted, err = decodeField[bool](key, value)
		default:
			err = errors.Wrapf(errInvalidRequest, "unknown field %q", key)
		}
		if err != nil {
			return shop.ItemPatch{}, err
		}
	}
	return patch, nil
}

func decodeField[T any](key string, raw json.RawMessage) (shop.Field[T], error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return shop.Field[T]{Set: true, Null: true}, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return shop.Field[T]{}, errors.Wrapf(errInvalidRequest, "field %q: %v", key, err)
	}
	return shop.Present(v), nil
}

func (s *Server) parseItemListParams(query url.Values) (shop.ItemQuery, error) {
	var params itemListParams
	var err error

	if params.Offset, err = intParam(query, "offset", 0); err != nil {
		return shop.ItemQuery{}, err
	}
	if params.Limit, err = intParam(query, "limit", shop.DefaultLimit); err != nil {
		return shop.ItemQuery{}, err
	}
	if params.MinPrice, err = floatParam(query, "min_price"); err != nil {
		return shop.ItemQuery{}, err
	}
	if params.MaxPrice, err = floatParam(query, "max_price"); err != nil {
		return shop.ItemQuery{}, err
	}
	if params.ShowDeleted, err = boolParam(query, "show_deleted"); err != nil {
		return shop.ItemQuery{}, err
	}
	if err = s.validate.Struct(params); err != nil {
		return shop.ItemQuery{}, err
	}

	return shop.ItemQuery{
		Page:        shop.Page{Offset: params.Offset, Limit: params.Limit},
		MinPrice:    params.MinPrice,
		MaxPrice:    params.MaxPrice,
		ShowDeleted: params.ShowDeleted,
	}, nil
}

func (s *Server) parseCartListParams(query url.Values) (shop.CartQuery, error) {
	var params cartListParams
	var err error

	if params.Offset, err = intParam(query, "offset", 0); err != nil {
		return shop.CartQuery{}, err
	}
	if params.Limit, err = intParam(query, "limit", shop.DefaultLimit); err != nil {
		return shop.CartQuery{}, err
	}
	if params.MinPrice, err = floatParam(query, "min_price"); err != nil {
		return shop.CartQuery{}, err
	}
	if params.MaxPrice, err = floatParam(query, "max_price"); err != nil {
		return shop.CartQuery{}, err
	}
	if params.MinQuantity, err = intPtrParam(query, "min_quantity"); err != nil {
		return shop.CartQuery{}, err
	}
	if params.MaxQuantity, err = intPtrParam(query, "max_quantity"); err != nil {
		return shop.CartQuery{}, err
	}
	if err = s.validate.Struct(params); err != nil {
		return shop.CartQuery{}, err
	}

	return shop.CartQuery{
		Page:        shop.Page{Offset: params.Offset, Limit: params.Limit},
		MinPrice:    params.MinPrice,
		MaxPrice:    params.MaxPrice,
		MinQuantity: params.MinQuantity,
		MaxQuantity: params.MaxQuantity,
	}, nil
}

func intParam(query url.Values, key string, fallback int) (int, error) {
	if !query.Has(key) {
		return fallback, nil
	}
	v, err := strconv.Atoi(query.Get(key))
	if err != nil {
		return 0, errors.Wrapf(errInvalidRequest, "query parameter %s is not an integer", key)
	}
	return v, nil
}

func intPtrParam(query url.Values, key string) (*int, error) {
	if !query.Has(key) {
		return nil, nil
	}
	v, err := intParam(query, key, 0)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func floatParam(query url.Values, key string) (*float64, error) {
	if !query.Has(key) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(query.Get(key), 64)
	if err != nil {
		return nil, errors.Wrapf(errInvalidRequest, "query parameter %s is not a number", key)
	}
	return &v, nil
}

func boolParam(query url.Values, key string) (bool, error) {
	if !query.Has(key) {
		return false, nil
	}
	v, err := strconv.ParseBool(query.Get(key))
	if err != nil {
		return false, errors.Wrapf(errInvalidRequest, "query parameter %s is not a boolean", key)
	}
	return v, nil
}
