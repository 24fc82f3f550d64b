package server

import (
	"fmt"
	"net/http"

	"github.com/Tyrowin/shopchat/internal/shop"
	"github.com/samber/lo"
)

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeItemRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	item, err := s.items.Create(*req.Name, *req.Price)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/item/%d", item.ID))
	s.writeJSON(w, http.StatusCreated, toItemResponse(item))
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	query, err := s.parseItemListParams(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}

	items := s.items.List(query)
	s.writeJSON(w, http.StatusOK, lo.Map(items, func(item shop.Item, _ int) itemResponse {
		return toItemResponse(item)
	}))
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	item, err := s.items.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (s *Server) replaceItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	req, err := s.decodeItemRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	item, err := s.items.Replace(id, *req.Name, *req.Price)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	patch, err := decodeItemPatch(r.Body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	item, err := s.items.Update(id, patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	outcome := s.items.Delete(id)
	s.writeJSON(w, http.StatusOK, messageResponse{Msg: outcome.Message()})
}

func (s *Server) createCart(w http.ResponseWriter, _ *http.Request) {
	cart := s.carts.Create()

	w.Header().Set("Location", fmt.Sprintf("/cart/%d", cart.ID))
	s.writeJSON(w, http.StatusCreated, cartCreatedResponse{ID: cart.ID})
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	cart, err := s.carts.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cart)
}

func (s *Server) listCarts(w http.ResponseWriter, r *http.Request) {
	query, err := s.parseCartListParams(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.carts.List(query))
}

func (s *Server) addItemToCart(w http.ResponseWriter, r *http.Request) {
	cartID, err := pathID(r, "cart_id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	itemID, err := pathID(r, "item_id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	cart, err := s.carts.AddItem(cartID, itemID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cart)
}
