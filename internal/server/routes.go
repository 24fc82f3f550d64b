// Package server wires HTTP handlers into a router for the shop API.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes returns the shop API router wrapped in the request logging
// middleware.
func (s *Server) SetupRoutes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", HealthHandler)
	r.HandleFunc("/test", TestPageHandler).Methods(http.MethodGet)

	r.HandleFunc("/item", s.createItem).Methods(http.MethodPost)
	r.HandleFunc("/item", s.listItems).Methods(http.MethodGet)
	r.HandleFunc("/item/{id}", s.getItem).Methods(http.MethodGet)
	r.HandleFunc("/item/{id}", s.replaceItem).Methods(http.MethodPut)
	r.HandleFunc("/item/{id}", s.updateItem).Methods(http.MethodPatch)
	r.HandleFunc("/item/{id}", s.deleteItem).Methods(http.MethodDelete)

	r.HandleFunc("/cart", s.createCart).Methods(http.MethodPost)
	r.HandleFunc("/cart", s.listCarts).Methods(http.MethodGet)
	r.HandleFunc("/cart/{id}", s.getCart).Methods(http.MethodGet)
	r.HandleFunc("/cart/{cart_id}/add/{item_id}", s.addItemToCart).Methods(http.MethodPost)

	r.HandleFunc("/chat/{chat_name}", s.ChatHandler)

	r.Use(requestIDMiddleware)
	return logMiddleware(s.log, r)
}
