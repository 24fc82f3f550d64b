// Package chat coordinates named broadcast rooms over WebSocket connections.
// The Hub owns the room registry and the pump goroutines of every client.
package chat

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrHubClosed is returned when joining a hub that is shutting down.
	ErrHubClosed = errors.New("hub is shutting down")
	// ErrAlreadyJoined is returned when a client tries to join twice.
	ErrAlreadyJoined = errors.New("client already joined")
)

// room is a named broadcast group. Members are kept in join order and the
// room only exists while it has at least one member.
type room struct {
	members []*Client
}

// Hub is the chat room registry. Membership changes are serialized by the
// mutex; broadcasts iterate over a snapshot so a concurrent leave cannot
// disturb delivery to the remaining members.
type Hub struct {
	cfg     Config
	log     logrus.FieldLogger
	mutex   sync.RWMutex
	rooms   map[string]*room
	handles map[string]struct{}
	closing bool
	wg      sync.WaitGroup
}

// NewHub creates an empty registry.
func NewHub(cfg Config, log logrus.FieldLogger) *Hub {
	return &Hub{
		cfg:     cfg.sanitize(),
		log:     log,
		rooms:   make(map[string]*room),
		handles: make(map[string]struct{}),
	}
}

// Join registers the client in its room, creating the room if needed, and
// assigns it a handle unique among connected clients.
func (h *Hub) Join(client *Client) error {
	return h.join(client, false)
}

// Serve joins the client and starts its read and write pumps. The pumps
// leave the room when the connection ends.
func (h *Hub) Serve(client *Client) error {
	if err := h.join(client, true); err != nil {
		return err
	}

	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
	return nil
}

func (h *Hub) join(client *Client, withPumps bool) error {
	h.mutex.Lock()
	if h.closing {
		h.mutex.Unlock()
		return ErrHubClosed
	}
	if client.state != Connecting {
		h.mutex.Unlock()
		return errors.Wrapf(ErrAlreadyJoined, "client %s", client.id)
	}

	client.handle = h.uniqueHandle()
	h.handles[client.handle] = struct{}{}

	r, ok := h.rooms[client.room]
	if !ok {
		r = &room{}
		h.rooms[client.room] = r
	}
	r.members = append(r.members, client)
	client.state = Joined
	memberCount := len(r.members)

	if withPumps {
		h.wg.Add(2)
	}
	h.mutex.Unlock()

	client.log.WithFields(logrus.Fields{
		"handle":  client.handle,
		"members": memberCount,
	}).Info("Client joined room")
	return nil
}

// uniqueHandle must be called with the write lock held.
func (h *Hub) uniqueHandle() string {
	for {
		handle := randomHandle()
		if _, taken := h.handles[handle]; !taken {
			return handle
		}
	}
}

// Leave removes the client from its room and closes its send channel. The
// room is dropped once its last member leaves. Leaving twice is a no-op.
func (h *Hub) Leave(client *Client) {
	h.mutex.Lock()
	if client.state != Joined {
		h.mutex.Unlock()
		return
	}
	client.state = Disconnected
	delete(h.handles, client.handle)

	remaining := 0
	if r, ok := h.rooms[client.room]; ok {
		r.members = slices.DeleteFunc(r.members, func(member *Client) bool {
			return member == client
		})
		remaining = len(r.members)
		if remaining == 0 {
			delete(h.rooms, client.room)
		}
	}
	// Senders hold the read lock, so the channel cannot be closed under them.
	close(client.send)
	h.mutex.Unlock()

	client.log.WithFields(logrus.Fields{
		"handle":  client.handle,
		"members": remaining,
	}).Info("Client left room")
}

// Broadcast delivers "<handle> :: <text>" to every member of the sender's
// room, the sender included, in join order. Members whose send buffer is
// full are evicted; the others still receive the message. It returns the
// number of members the message was queued for.
func (h *Hub) Broadcast(sender *Client, text string) int {
	members, ok := h.roomSnapshot(sender)
	if !ok {
		return 0
	}

	payload := []byte(FormatMessage(sender.handle, text))
	delivered, failed := h.broadcastToClients(members, payload)
	h.removeFailedClients(failed)

	sender.log.WithFields(logrus.Fields{
		"handle":    sender.handle,
		"delivered": delivered,
		"dropped":   len(failed),
	}).Debug("Broadcast message")
	return delivered
}

// roomSnapshot copies the member list of the sender's room.
func (h *Hub) roomSnapshot(sender *Client) ([]*Client, bool) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if sender.state != Joined {
		return nil, false
	}
	r, ok := h.rooms[sender.room]
	if !ok {
		return nil, false
	}
	return slices.Clone(r.members), true
}

func (h *Hub) broadcastToClients(members []*Client, payload []byte) (int, []*Client) {
	var failed []*Client
	delivered := 0
	for _, member := range members {
		if h.safeSend(member, payload) {
			delivered++
			continue
		}
		failed = append(failed, member)
	}
	return delivered, failed
}

// safeSend queues the payload without blocking. It fails when the member
// has left or its buffer is full.
func (h *Hub) safeSend(client *Client, payload []byte) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if client.state != Joined {
		return false
	}

	select {
	case client.send <- payload:
		return true
	default:
		return false
	}
}

func (h *Hub) removeFailedClients(failed []*Client) {
	for _, client := range failed {
		if client.State() == Joined {
			client.log.Warn("Evicting client with full send buffer")
		}
		h.Leave(client)
	}
}

// Rooms lists the names of the rooms that currently have members.
func (h *Hub) Rooms() []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	names := make([]string, 0, len(h.rooms))
	for name := range h.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Members lists the handles in a room in join order.
func (h *Hub) Members(name string) []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	r, ok := h.rooms[name]
	if !ok {
		return nil
	}
	handles := make([]string, 0, len(r.members))
	for _, member := range r.members {
		handles = append(handles, member.handle)
	}
	return handles
}

// ClientCount is the number of joined clients across all rooms.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.handles)
}

// shutdownClients removes every client from the registry and closes the
// underlying connections so that blocked reads return.
func (h *Hub) shutdownClients() int {
	h.mutex.Lock()
	h.closing = true
	var clients []*Client
	for _, r := range h.rooms {
		clients = append(clients, r.members...)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		h.Leave(client)
		client.closeConnection()
	}
	return len(clients)
}

// Shutdown closes every connection and waits for the pump goroutines to
// finish, or for the timeout to elapse.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown...")

	closed := h.shutdownClients()
	h.log.WithField("clients", closed).Info("Closed client connections")

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
