package signaling

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

// clientOffer builds a real SDP offer with a data channel, the smallest
// thing a browser-side peer would send.
func clientOffer(t *testing.T) (*webrtc.PeerConnection, webrtc.SessionDescription) {
	t.Helper()
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	require.NoError(t, err)
	t.Cleanup(func() { pc.Close() })

	_, err = pc.CreateDataChannel("control", nil)
	require.NoError(t, err)

	offer, err := pc.CreateOffer(nil)
	require.NoError(t, err)
	require.NoError(t, pc.SetLocalDescription(offer))
	return pc, offer
}

func sendMessage(t *testing.T, ws *websocket.Conn, msg Message) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, data))
}

// readUntil reads messages until one of the wanted type arrives.
func readUntil(t *testing.T, ws *websocket.Conn, wantType string) Message {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	require.NoError(t, ws.SetReadDeadline(deadline))
	for {
		_, p, err := ws.ReadMessage()
		require.NoError(t, err)

		var msg Message
		require.NoError(t, json.Unmarshal(p, &msg))
		if msg.Type == wantType {
			return msg
		}
	}
}

func TestOfferIsAnswered(t *testing.T) {
	hub := NewHub(Options{})
	ws := dialHub(t, hub)

	clientPC, offer := clientOffer(t)
	offerJSON, err := json.Marshal(offer)
	require.NoError(t, err)
	sendMessage(t, ws, Message{Type: "offer", Data: string(offerJSON)})

	msg := readUntil(t, ws, "answer")

	var answer webrtc.SessionDescription
	require.NoError(t, json.Unmarshal([]byte(msg.Data), &answer))
	assert.Equal(t, webrtc.SDPTypeAnswer, answer.Type)
	require.NoError(t, clientPC.SetRemoteDescription(answer))
}

func TestMalformedMessagesAreTolerated(t *testing.T) {
	hub := NewHub(Options{})
	ws := dialHub(t, hub)

	// Garbage and unknown types must not end the session.
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("not json")))
	sendMessage(t, ws, Message{Type: "bogus", Data: "x"})

	_, offer := clientOffer(t)
	offerJSON, err := json.Marshal(offer)
	require.NoError(t, err)
	sendMessage(t, ws, Message{Type: "offer", Data: string(offerJSON)})

	msg := readUntil(t, ws, "answer")
	assert.Equal(t, "answer", msg.Type)
}

func TestClientTracking(t *testing.T) {
	hub := NewHub(Options{})
	assert.Equal(t, 0, hub.ClientCount())

	ws := dialHub(t, hub)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		5*time.Second, 10*time.Millisecond)

	ws.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		5*time.Second, 10*time.Millisecond)
}

func TestTURNConfigProducesICEServer(t *testing.T) {
	pc, err := newPeerConnection(Options{
		STUNServers:    []string{"stun:stun.l.google.com:19302"},
		TURNURL:        "turn:relay.example:3478",
		TURNUsername:   "user",
		TURNCredential: "pass",
	})
	require.NoError(t, err)
	defer pc.Close()

	servers := pc.GetConfiguration().ICEServers
	require.Len(t, servers, 2)
	assert.Equal(t, []string{"turn:relay.example:3478"}, servers[1].URLs)
	assert.Equal(t, "user", servers[1].Username)
}
