// internal/signaling/signaling.go
package signaling

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
)

// Options configures the ICE servers handed to each answering peer.
type Options struct {
	STUNServers    []string
	TURNURL        string
	TURNUsername   string
	TURNCredential string
}

// Hub upgrades HTTP requests to WebSocket signaling sessions. Each session
// gets its own answering PeerConnection: the client sends an offer, the hub
// replies with an answer and trickles ICE candidates as they are gathered.
type Hub struct {
	opts     Options
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
}

// NewHub returns a hub ready to be mounted on an HTTP mux.
func NewHub(opts Options) *Hub {
	return &Hub{
		opts: opts,
		upgrader: websocket.Upgrader{
			// Allow all origins (not recommended for production)
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// ClientCount returns the number of currently connected signaling clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer ws.Close()

	c := &client{id: uuid.NewString(), ws: ws}
	h.add(c)
	defer h.remove(c)

	log.Printf("Signaling client %s connected", c.id)
	h.handle(c)
	log.Printf("Signaling client %s disconnected", c.id)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c.id)
}

func (h *Hub) handle(c *client) {
	peerConnection, err := newPeerConnection(h.opts)
	if err != nil {
		log.Println("PeerConnection error:", err)
		return
	}
	defer peerConnection.Close()

	peerConnection.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate == nil {
			// All ICE candidates have been gathered.
			return
		}
		data, err := json.Marshal(candidate.ToJSON())
		if err != nil {
			log.Println("ICE candidate marshal error:", err)
			return
		}
		if err := c.send(Message{Type: "candidate", Data: string(data)}); err != nil {
			log.Println("ICE candidate send error:", err)
		}
	})

	peerConnection.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		log.Printf("Client %s connection state changed: %s", c.id, state)
	})

	for {
		_, p, err := c.ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("WebSocket read error:", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(p, &msg); err != nil {
			log.Println("Message unmarshal error:", err)
			continue
		}

		switch msg.Type {
		case "offer":
			if err := handleOffer(peerConnection, c, msg.Data); err != nil {
				log.Println("Offer error:", err)
			}
		case "candidate":
			if err := handleCandidate(peerConnection, msg.Data); err != nil {
				log.Println("Candidate error:", err)
			}
		default:
			log.Println("Unknown message type:", msg.Type)
		}
	}
}

// handleOffer sets the client's offer as the remote description and replies
// with an answer. Candidates trickle separately via OnICECandidate.
func handleOffer(peerConnection *webrtc.PeerConnection, c *client, data string) error {
	var offer webrtc.SessionDescription
	if err := json.Unmarshal([]byte(data), &offer); err != nil {
		return err
	}
	if err := peerConnection.SetRemoteDescription(offer); err != nil {
		return err
	}

	answer, err := peerConnection.CreateAnswer(nil)
	if err != nil {
		return err
	}
	if err := peerConnection.SetLocalDescription(answer); err != nil {
		return err
	}

	answerSDP, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	return c.send(Message{Type: "answer", Data: string(answerSDP)})
}

// handleCandidate adds an ICE candidate from the client to the peer connection.
func handleCandidate(peerConnection *webrtc.PeerConnection, data string) error {
	var candidate webrtc.ICECandidateInit
	if err := json.Unmarshal([]byte(data), &candidate); err != nil {
		return err
	}
	return peerConnection.AddICECandidate(candidate)
}
