package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishWithoutConnectionIsNotAnError(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	assert.NoError(t, hub.Publish(uuid.New(), TypeProfileUpdated, map[string]int{"hearts": 3}))
	assert.ErrorIs(t, hub.SendToUser(uuid.New(), Message{Type: TypePong}), ErrConnectionNotFound)
}

func TestHub_PublishReachesEveryDevice(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	userID := uuid.New()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		conn := NewConnection(raw, zerolog.Nop())
		hub.Register(userID, conn)
		go conn.WritePump()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	var clients []*websocket.Conn
	for i := 0; i < 2; i++ {
		c, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer c.Close()
		clients = append(clients, c)
	}
	require.Eventually(t, func() bool { return hub.Connected(userID) == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(userID, TypeProfileUpdated, map[string]int{"hearts": 4}))

	for _, c := range clients {
		c.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg Message
		require.NoError(t, c.ReadJSON(&msg))
		assert.Equal(t, TypeProfileUpdated, msg.Type)
		var payload map[string]int
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, 4, payload["hearts"])
	}

	hub.DisconnectUser(userID)
	assert.Equal(t, 0, hub.Connected(userID))
}

func TestConnection_SendAfterClose(t *testing.T) {
	c := &Connection{sendCh: make(chan Message, 1), logger: zerolog.Nop()}
	c.Close()
	assert.ErrorIs(t, c.Send(Message{Type: TypePong}), ErrConnectionClosed)
}
