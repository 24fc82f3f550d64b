package server

import (
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Tyrowin/shopchat/internal/shop"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return New(nil, logger)
}

func TestDecodeItemPatch(t *testing.T) {
	t.Run("present fields", func(t *testing.T) {
		patch, err := decodeItemPatch(strings.NewReader(`{"name":"pen","price":2}`))

		require.NoError(t, err)
		assert.Equal(t, shop.Present("pen"), patch.Name)
		assert.Equal(t, shop.Present(2.0), patch.Price)
		assert.False(t, patch.Deleted.Set)
	})

	t.Run("explicit null", func(t *testing.T) {
		patch, err := decodeItemPatch(strings.NewReader(`{"name":null}`))

		require.NoError(t, err)
		assert.True(t, patch.Name.Set)
		assert.True(t, patch.Name.Null)
		assert.False(t, patch.Price.Set)
	})

	t.Run("empty object", func(t *testing.T) {
		patch, err := decodeItemPatch(strings.NewReader(`{}`))

		require.NoError(t, err)
		assert.Equal(t, shop.ItemPatch{}, patch)
	})

	for name, body := range map[string]string{
		"unknown field": `{"colour":"red"}`,
		"wrong type":    `{"price":"cheap"}`,
		"not an object": `[1,2]`,
		"null body":     `null`,
		"malformed":     `{"name":`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := decodeItemPatch(strings.NewReader(body))
			assert.ErrorIs(t, err, errInvalidRequest)
		})
	}
}

func TestParseItemListParams(t *testing.T) {
	s := newTestServer(t)

	q, err := s.parseItemListParams(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, shop.ItemQuery{Page: shop.Page{Offset: 0, Limit: shop.DefaultLimit}}, q)

	q, err = s.parseItemListParams(url.Values{"min_price": {"1.5"}, "show_deleted": {"true"}, "limit": {"3"}})
	require.NoError(t, err)
	require.NotNil(t, q.MinPrice)
	assert.InDelta(t, 1.5, *q.MinPrice, 1e-9)
	assert.True(t, q.ShowDeleted)
	assert.Equal(t, 3, q.Limit)

	_, err = s.parseItemListParams(url.Values{"limit": {"0"}})
	var validationErrors validator.ValidationErrors
	assert.ErrorAs(t, err, &validationErrors)

	_, err = s.parseItemListParams(url.Values{"show_deleted": {"maybe"}})
	assert.ErrorIs(t, err, errInvalidRequest)
}

func TestParseCartListParams(t *testing.T) {
	s := newTestServer(t)

	q, err := s.parseCartListParams(url.Values{"min_quantity": {"2"}, "max_price": {"10"}})
	require.NoError(t, err)
	require.NotNil(t, q.MinQuantity)
	assert.Equal(t, 2, *q.MinQuantity)
	assert.Nil(t, q.MaxQuantity)
	require.NotNil(t, q.MaxPrice)
	assert.InDelta(t, 10.0, *q.MaxPrice, 1e-9)

	_, err = s.parseCartListParams(url.Values{"min_quantity": {"-1"}})
	assert.Error(t, err)
}

func TestWriteErrorStatus(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: shop.ErrNotFound, status: http.StatusNotFound},
		{name: "not modified", err: shop.ErrNotModified, status: http.StatusNotModified},
		{name: "unprocessable", err: shop.ErrUnprocessableEntity, status: http.StatusUnprocessableEntity},
		{name: "invalid price", err: shop.ErrInvalidPrice, status: http.StatusUnprocessableEntity},
		{name: "invalid request", err: errInvalidRequest, status: http.StatusUnprocessableEntity},
		{name: "validation", err: s.validate.Struct(itemRequest{}), status: http.StatusUnprocessableEntity},
		{name: "unknown", err: assert.AnError, status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			s.writeError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusNotModified {
				assert.Empty(t, rr.Body.String())
			} else {
				assert.Contains(t, rr.Body.String(), `"detail"`)
			}
		})
	}
}

func TestWriteJSONUnencodable(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()

	s.writeJSON(rr, http.StatusOK, shop.Cart{Items: []shop.CartItem{}, Price: math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"detail":"internal error"}`, rr.Body.String())
}
