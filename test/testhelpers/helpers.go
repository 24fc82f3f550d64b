// Package testhelpers provides common utilities for the shop and chat
// integration tests.
//
// It starts a fully wired server on an httptest listener and wraps the HTTP
// and WebSocket round trips the tests repeat.
package testhelpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Tyrowin/shopchat/internal/server"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// TestOrigin is the Origin header sent by ConnectWebSocket.
const TestOrigin = "http://localhost:8080"

// StartServer runs a shop server with a silent logger behind an httptest
// listener. customize may adjust the configuration before the server is
// built. The server and its hub are shut down when the test ends.
func StartServer(t *testing.T, customize func(cfg *server.Config)) (*server.Server, *httptest.Server) {
	t.Helper()

	cfg := server.NewConfig()
	cfg.AllowedOrigins = []string{TestOrigin}
	if customize != nil {
		customize(cfg)
	}

	logger, _ := test.NewNullLogger()
	srv := server.New(cfg, logger)
	testServer := httptest.NewServer(srv.SetupRoutes())
	t.Cleanup(func() {
		_ = srv.Hub().Shutdown(time.Second)
		testServer.Close()
	})
	return srv, testServer
}

// DoJSON sends body encoded as JSON, or no body when it is nil, and returns
// the response with its body read.
func DoJSON(t *testing.T, method, rawURL string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, rawURL, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

// DecodeJSON unmarshals a response body into T.
func DecodeJSON[T any](t *testing.T, data []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(data, &out), "body: %s", data)
	return out
}

// ChatURL is the WebSocket URL of a room on the test server.
func ChatURL(t *testing.T, testServer *httptest.Server, room string) string {
	t.Helper()
	u, err := url.Parse(testServer.URL)
	require.NoError(t, err)
	u.Scheme = "ws"
	u.Path = "/chat/" + room
	return u.String()
}

// ConnectWebSocket dials rawURL with the given Origin header. The response
// is returned so callers can inspect a rejected handshake.
func ConnectWebSocket(rawURL, origin string) (*websocket.Conn, *http.Response, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}

	conn, resp, err := dialer.Dial(rawURL, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, resp, err
}

// JoinRoom connects to a room with the allowed test origin and closes the
// connection when the test ends.
func JoinRoom(t *testing.T, testServer *httptest.Server, room string) *websocket.Conn {
	t.Helper()
	conn, _, err := ConnectWebSocket(ChatURL(t, testServer, room), TestOrigin)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// ReceiveText reads the next frame, failing the test if it is not a text
// frame within the timeout.
func ReceiveText(t *testing.T, conn *websocket.Conn, timeout time.Duration) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(timeout)))
	messageType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, messageType)
	return string(data)
}

// ExpectNoMessage fails the test if a frame arrives within the timeout.
func ExpectNoMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(timeout)))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "unexpected message %q", data)
}

// CloseWebSocket gracefully closes a WebSocket connection.
func CloseWebSocket(conn *websocket.Conn) error {
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	return conn.Close()
}
