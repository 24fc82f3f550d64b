package chat

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T, cfg Config) *Hub {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewHub(cfg, logger)
}

func joinClient(t *testing.T, hub *Hub, roomName string) *Client {
	t.Helper()
	client := NewClient(nil, hub, roomName, "127.0.0.1:12345")
	require.NoError(t, hub.Join(client))
	return client
}

func receive(t *testing.T, client *Client) string {
	t.Helper()
	select {
	case msg, ok := <-client.GetSendChan():
		require.True(t, ok, "send channel closed")
		return string(msg)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no message received")
		return ""
	}
}

func expectEmpty(t *testing.T, client *Client) {
	t.Helper()
	select {
	case msg, ok := <-client.GetSendChan():
		if ok {
			t.Fatalf("unexpected message %q", msg)
		}
	default:
	}
}

func TestNewClient(t *testing.T) {
	hub := newTestHub(t, DefaultConfig())

	client := NewClient(nil, hub, "R", "127.0.0.1:12345")

	require.NotNil(t, client)
	assert.Equal(t, Connecting, client.State())
	assert.Equal(t, "R", client.Room())
	assert.Empty(t, client.Handle())
	assert.Equal(t, 256, cap(client.send))
}

func TestHub_Join_CreatesRoomAndAssignsHandle(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t, DefaultConfig())

	// Given no room exists
	req.Empty(hub.Rooms())

	// When a client joins room R
	client := joinClient(t, hub, "R")

	// Then the room exists with that client
	req.Equal([]string{"R"}, hub.Rooms())
	req.Equal([]string{client.Handle()}, hub.Members("R"))
	req.Equal(Joined, client.State())
	req.Regexp(regexp.MustCompile(`^[A-Z0-9]{6}$`), client.Handle())
	req.Equal(1, hub.ClientCount())
}

func TestHub_Join_Twice(t *testing.T) {
	hub := newTestHub(t, DefaultConfig())
	client := joinClient(t, hub, "R")

	err := hub.Join(client)

	require.ErrorIs(t, err, ErrAlreadyJoined)
	assert.Len(t, hub.Members("R"), 1)
}

func TestHub_Join_HandlesAreUnique(t *testing.T) {
	hub := newTestHub(t, DefaultConfig())

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		client := joinClient(t, hub, "R")
		_, dup := seen[client.Handle()]
		require.False(t, dup, "duplicate handle %s", client.Handle())
		seen[client.Handle()] = struct{}{}
	}
}

func TestHub_Broadcast_ReachesEveryMemberIncludingSender(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t, DefaultConfig())
	alice := joinClient(t, hub, "R")
	bob := joinClient(t, hub, "R")
	outsider := joinClient(t, hub, "other")

	delivered := hub.Broadcast(alice, "hi")

	req.Equal(2, delivered)
	expected := alice.Handle() + " :: hi"
	req.Equal(expected, receive(t, alice))
	req.Equal(expected, receive(t, bob))
	expectEmpty(t, alice)
	expectEmpty(t, bob)
	expectEmpty(t, outsider)
}

func TestHub_Broadcast_FromDisconnectedClient(t *testing.T) {
	hub := newTestHub(t, DefaultConfig())
	alice := joinClient(t, hub, "R")
	bob := joinClient(t, hub, "R")
	hub.Leave(alice)

	assert.Zero(t, hub.Broadcast(alice, "late"))
	expectEmpty(t, bob)
}

func TestHub_Broadcast_EvictsOnlyTheSlowMember(t *testing.T) {
	req := require.New(t)
	cfg := DefaultConfig()
	cfg.SendBufferSize = 1
	hub := newTestHub(t, cfg)

	sender := joinClient(t, hub, "R")
	slow := joinClient(t, hub, "R")
	fast := joinClient(t, hub, "R")

	// Everyone gets the first message; only slow never drains its buffer.
	req.Equal(3, hub.Broadcast(sender, "one"))
	receive(t, sender)
	receive(t, fast)

	// slow's buffer is full: it is evicted, the others still get the message
	req.Equal(2, hub.Broadcast(sender, "two"))
	req.Equal(sender.Handle()+" :: two", receive(t, sender))
	req.Equal(sender.Handle()+" :: two", receive(t, fast))

	req.Equal(Disconnected, slow.State())
	req.Equal([]string{sender.Handle(), fast.Handle()}, hub.Members("R"))

	// The evicted client still gets what was queued, then sees the close.
	req.Equal(sender.Handle()+" :: one", receive(t, slow))
	_, ok := <-slow.GetSendChan()
	req.False(ok)
}

func TestHub_Leave_RemovesEmptyRoom(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t, DefaultConfig())
	alice := joinClient(t, hub, "R")
	bob := joinClient(t, hub, "R")

	hub.Leave(alice)
	req.Equal([]string{bob.Handle()}, hub.Members("R"))
	req.Equal(Disconnected, alice.State())

	hub.Leave(bob)
	req.Empty(hub.Rooms())
	req.Nil(hub.Members("R"))
	req.Zero(hub.ClientCount())
}

func TestHub_Leave_IsIdempotent(t *testing.T) {
	hub := newTestHub(t, DefaultConfig())
	alice := joinClient(t, hub, "R")

	require.NotPanics(t, func() {
		hub.Leave(alice)
		hub.Leave(alice)
	})

	// A client that never joined can be left too.
	require.NotPanics(t, func() {
		hub.Leave(NewClient(nil, hub, "R", "127.0.0.1:1"))
	})
}

func TestHub_Leave_ReleasesHandle(t *testing.T) {
	hub := newTestHub(t, DefaultConfig())
	alice := joinClient(t, hub, "R")
	handle := alice.Handle()

	hub.Leave(alice)

	hub.mutex.RLock()
	_, taken := hub.handles[handle]
	hub.mutex.RUnlock()
	assert.False(t, taken)
}

func TestHub_ConcurrentJoinBroadcastLeave(t *testing.T) {
	hub := newTestHub(t, DefaultConfig())
	anchor := joinClient(t, hub, "R")

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			client := NewClient(nil, hub, "R", "127.0.0.1:1")
			if err := hub.Join(client); err != nil {
				t.Errorf("join: %v", err)
				return
			}
			hub.Broadcast(client, "hello")
			hub.Leave(client)
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{anchor.Handle()}, hub.Members("R"))
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHub_Shutdown(t *testing.T) {
	hub := newTestHub(t, DefaultConfig())
	alice := joinClient(t, hub, "R")
	joinClient(t, hub, "S")

	require.NoError(t, hub.Shutdown(time.Second))

	assert.Empty(t, hub.Rooms())
	assert.Equal(t, Disconnected, alice.State())
	assert.ErrorIs(t, hub.Join(NewClient(nil, hub, "R", "127.0.0.1:1")), ErrHubClosed)
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "ABC123 :: hi", FormatMessage("ABC123", "hi"))
	assert.Equal(t, "ABC123 :: ", FormatMessage("ABC123", ""))
}

func TestConfigSanitize(t *testing.T) {
	cfg := Config{SendBufferSize: -1}.sanitize()

	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 54*time.Second, cfg.pingPeriod())
}

func TestIsExpectedCloseError(t *testing.T) {
	assert.True(t, isExpectedCloseError(nil))
}
