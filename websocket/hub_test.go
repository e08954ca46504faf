package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The feed broadcaster and wallet notifications write to the same connection
// from different goroutines; interleaved writes must be serialized per client
// or gorilla panics the process.
func TestConcurrentBroadcastAndSendToUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := primitive.NewObjectID()
	up := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.register <- &Client{UserID: userID, Conn: conn}
	}))
	defer srv.Close()

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer peer.Close()

	// Drain everything the hub sends so writes never block on a full buffer.
	go func() {
		for {
			if _, _, err := peer.ReadMessage(); err != nil {
				return
			}
		}
	}()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				hub.Broadcast(Notification{Type: MessageTypeTick, Data: j})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = hub.SendToUser(userID, Notification{Type: MessageTypeWallet, Message: "wallet updated"})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, hub.ClientCount())
}

func TestSendToUserUnknownUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	err := hub.SendToUser(primitive.NewObjectID(), Notification{Type: MessageTypeWallet})
	assert.Error(t, err)
}
