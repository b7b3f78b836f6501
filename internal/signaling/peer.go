// internal/signaling/peer.go
package signaling

import (
	"log"

	"github.com/pion/webrtc/v4"
)

// newPeerConnection creates the server-side answering peer with the default
// codec set and the hub's ICE server configuration.
func newPeerConnection(opts Options) (*webrtc.PeerConnection, error) {
	mediaEngine := &webrtc.MediaEngine{}
	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return nil, err
	}

	api := webrtc.NewAPI(webrtc.WithMediaEngine(mediaEngine))

	var iceServers []webrtc.ICEServer
	for _, url := range opts.STUNServers {
		iceServers = append(iceServers, webrtc.ICEServer{URLs: []string{url}})
	}
	if opts.TURNURL != "" {
		iceServers = append(iceServers, webrtc.ICEServer{
			URLs:       []string{opts.TURNURL},
			Username:   opts.TURNUsername,
			Credential: opts.TURNCredential,
		})
	}
	for _, server := range iceServers {
		log.Printf("Configured ICE server: %v", server.URLs)
	}

	return api.NewPeerConnection(webrtc.Configuration{ICEServers: iceServers})
}
