package integration

import (
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Tyrowin/shopchat/internal/server"
	"github.com/Tyrowin/shopchat/test/testhelpers"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chatLine = regexp.MustCompile(`^([A-Z0-9]{6}) :: (.*)$`)

// TestRoomBroadcast connects two clients to room R; one message reaches both
// exactly once and the room disappears once both have left.
func TestRoomBroadcast(t *testing.T) {
	req := require.New(t)
	srv, ts := testhelpers.StartServer(t, nil)

	// Given two members of room R
	alice := testhelpers.JoinRoom(t, ts, "R")
	bob := testhelpers.JoinRoom(t, ts, "R")
	req.Eventually(func() bool {
		return len(srv.Hub().Members("R")) == 2
	}, time.Second, 10*time.Millisecond)

	// When alice says hi
	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte("hi")))

	// Then both receive it once, tagged with the same handle
	fromAlice := testhelpers.ReceiveText(t, alice, time.Second)
	fromBob := testhelpers.ReceiveText(t, bob, time.Second)
	req.Equal(fromAlice, fromBob)
	match := chatLine.FindStringSubmatch(fromAlice)
	req.NotNil(match, fromAlice)
	req.Equal("hi", match[2])
	req.Contains(srv.Hub().Members("R"), match[1])
	testhelpers.ExpectNoMessage(t, bob, 100*time.Millisecond)

	// And the room is gone after both disconnect
	req.NoError(testhelpers.CloseWebSocket(alice))
	req.NoError(testhelpers.CloseWebSocket(bob))
	req.Eventually(func() bool {
		return len(srv.Hub().Rooms()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRoomsAreIsolated(t *testing.T) {
	srv, ts := testhelpers.StartServer(t, nil)
	kitchen := testhelpers.JoinRoom(t, ts, "kitchen")
	garden := testhelpers.JoinRoom(t, ts, "garden")
	require.Eventually(t, func() bool {
		return srv.Hub().ClientCount() == 2
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, kitchen.WriteMessage(websocket.TextMessage, []byte("dinner")))

	assert.True(t, strings.HasSuffix(testhelpers.ReceiveText(t, kitchen, time.Second), " :: dinner"))
	testhelpers.ExpectNoMessage(t, garden, 100*time.Millisecond)
	assert.Equal(t, []string{"garden", "kitchen"}, srv.Hub().Rooms())
}

func TestManyClientsShareRoom(t *testing.T) {
	srv, ts := testhelpers.StartServer(t, nil)

	const clients = 5
	conns := make([]*websocket.Conn, clients)
	for i := range conns {
		conns[i] = testhelpers.JoinRoom(t, ts, "crowd")
	}
	require.Eventually(t, func() bool {
		return len(srv.Hub().Members("crowd")) == clients
	}, time.Second, 10*time.Millisecond)

	handles := srv.Hub().Members("crowd")
	seen := make(map[string]struct{}, clients)
	for _, handle := range handles {
		seen[handle] = struct{}{}
	}
	assert.Len(t, seen, clients, "handles must be unique")

	require.NoError(t, conns[2].WriteMessage(websocket.TextMessage, []byte("hello all")))
	for _, conn := range conns {
		assert.True(t, strings.HasSuffix(testhelpers.ReceiveText(t, conn, time.Second), " :: hello all"))
	}
}

func TestBinaryFramesAreIgnored(t *testing.T) {
	srv, ts := testhelpers.StartServer(t, nil)
	conn := testhelpers.JoinRoom(t, ts, "R")
	require.Eventually(t, func() bool {
		return srv.Hub().ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02}))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("text")))

	assert.True(t, strings.HasSuffix(testhelpers.ReceiveText(t, conn, time.Second), " :: text"))
}

func TestOriginIsEnforced(t *testing.T) {
	_, ts := testhelpers.StartServer(t, nil)
	chatURL := testhelpers.ChatURL(t, ts, "R")

	tests := []struct {
		name   string
		origin string
	}{
		{name: "missing origin", origin: ""},
		{name: "foreign origin", origin: "http://evil.example"},
		{name: "malformed origin", origin: "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, resp, err := testhelpers.ConnectWebSocket(chatURL, tt.origin)
			require.Error(t, err)
			assert.Nil(t, conn)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}

	t.Run("wildcard", func(t *testing.T) {
		_, open := testhelpers.StartServer(t, func(cfg *server.Config) {
			cfg.AllowedOrigins = []string{"*"}
		})
		conn, _, err := testhelpers.ConnectWebSocket(testhelpers.ChatURL(t, open, "R"), "http://anywhere.example")
		require.NoError(t, err)
		_ = conn.Close()
	})
}

func TestOversizedMessageClosesConnection(t *testing.T) {
	srv, ts := testhelpers.StartServer(t, func(cfg *server.Config) {
		cfg.MaxMessageSize = 16
	})
	conn := testhelpers.JoinRoom(t, ts, "R")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(strings.Repeat("x", 64))))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Eventually(t, func() bool {
		return len(srv.Hub().Rooms()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestChatRejectsNonGet(t *testing.T) {
	_, ts := testhelpers.StartServer(t, nil)

	resp, _ := testhelpers.DoJSON(t, http.MethodPost, ts.URL+"/chat/R", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
