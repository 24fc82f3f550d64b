// Package server owns the shop API state and wires it to HTTP.
package server

import (
	"github.com/Tyrowin/shopchat/internal/chat"
	"github.com/Tyrowin/shopchat/internal/shop"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Server holds the stores and the chat hub behind the shop API routes.
type Server struct {
	cfg      Config
	log      logrus.FieldLogger
	items    *shop.ItemStore
	carts    *shop.CartStore
	hub      *chat.Hub
	upgrader websocket.Upgrader
	validate *validator.Validate
}

// New creates a Server with empty stores. A nil cfg uses the defaults.
func New(cfg *Config, log logrus.FieldLogger) *Server {
	if cfg == nil {
		cfg = NewConfig()
	}
	sanitized := sanitizeConfig(*cfg)

	items := shop.NewItemStore()
	origins := newOriginPolicy(sanitized.AllowedOrigins, log)

	return &Server{
		cfg:   sanitized,
		log:   log,
		items: items,
		carts: shop.NewCartStore(items),
		hub:   chat.NewHub(sanitized.ChatConfig(), log.WithField("component", "chat")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.checkOrigin,
		},
		validate: validator.New(),
	}
}

// Hub returns the chat hub for shutdown coordination.
func (s *Server) Hub() *chat.Hub {
	return s.hub
}
