// Package remote mirrors a window to viewers over the network. Viewers
// connect with a websocket, send input as JSON messages and receive
// presented frames as binary JPEG messages. A viewer may upgrade to WebRTC
// by sending an offer over the same socket; frames then flow over an
// unordered data channel and input may arrive on an ordered one.
package remote

import "encoding/json"

// Message types carried on the websocket.
const (
	TypeInput        = "input"
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeICECandidate = "ice-candidate"
	TypePing         = "ping"
	TypePong         = "pong"
	TypeError        = "error"
)

// Message is the envelope for all text messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Msg     string          `json:"message,omitempty"`
}
