// internal/signaling/message.go
package signaling

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// Message is the signaling envelope exchanged over WebSocket. Data carries
// the JSON-encoded payload for the given type: a session description for
// "offer"/"answer", an ICE candidate for "candidate".
type Message struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// client is one connected signaling peer. ICE candidates arrive from pion
// goroutines while the read loop may also be replying, so writes are
// serialized with a mutex.
type client struct {
	id string
	ws *websocket.Conn

	mu sync.Mutex
}

func (c *client) send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}
