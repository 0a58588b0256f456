package remote

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/pion/webrtc/v4"
)

// ICEServers is the default ICE server configuration.
var ICEServers = []webrtc.ICEServer{
	{URLs: []string{"stun:stun.l.google.com:19302", "stun:stun1.l.google.com:19302"}},
}

// Peer is the window side of a WebRTC connection with one viewer.
type Peer struct {
	pc       *webrtc.PeerConnection
	framesDC *webrtc.DataChannel
	inputDC  *webrtc.DataChannel

	mu         sync.Mutex
	framesOpen bool
}

// NewPeer creates a peer with a "frames" channel (unordered, no
// retransmits) and an "input" channel (ordered). onInput receives every
// message arriving on the input channel; signal sends local ICE candidates
// back to the viewer.
func NewPeer(iceServers []webrtc.ICEServer, onInput func([]byte), signal func(Message) error) (*Peer, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: iceServers})
	if err != nil {
		return nil, fmt.Errorf("new peer connection: %w", err)
	}
	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		log.Printf("peer connection state: %s", state.String())
	})

	p := &Peer{pc: pc}

	framesOrdered := false
	framesMaxRetransmits := uint16(0)
	p.framesDC, err = pc.CreateDataChannel("frames", &webrtc.DataChannelInit{
		Ordered:        &framesOrdered,
		MaxRetransmits: &framesMaxRetransmits,
	})
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("create frames channel: %w", err)
	}
	p.framesDC.OnOpen(func() {
		log.Println("frames data channel open")
		p.mu.Lock()
		p.framesOpen = true
		p.mu.Unlock()
	})
	p.framesDC.OnClose(func() {
		p.mu.Lock()
		p.framesOpen = false
		p.mu.Unlock()
	})

	inputOrdered := true
	p.inputDC, err = pc.CreateDataChannel("input", &webrtc.DataChannelInit{
		Ordered: &inputOrdered,
	})
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("create input channel: %w", err)
	}
	p.inputDC.OnMessage(func(msg webrtc.DataChannelMessage) {
		if onInput != nil {
			onInput(msg.Data)
		}
	})

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil || signal == nil {
			return
		}
		data, err := json.Marshal(c.ToJSON())
		if err != nil {
			log.Printf("marshal ICE candidate: %v", err)
			return
		}
		_ = signal(Message{Type: TypeICECandidate, Payload: data})
	})

	return p, nil
}

// HandleOffer applies the viewer's offer and returns the answer payload.
func (p *Peer) HandleOffer(payload json.RawMessage) (json.RawMessage, error) {
	var offer webrtc.SessionDescription
	if err := json.Unmarshal(payload, &offer); err != nil {
		return nil, fmt.Errorf("decode offer: %w", err)
	}
	if err := p.pc.SetRemoteDescription(offer); err != nil {
		return nil, fmt.Errorf("set remote description: %w", err)
	}
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}
	if err := p.pc.SetLocalDescription(answer); err != nil {
		return nil, fmt.Errorf("set local description: %w", err)
	}
	return json.Marshal(answer)
}

// HandleICECandidate adds a remote ICE candidate.
func (p *Peer) HandleICECandidate(payload json.RawMessage) error {
	var candidate webrtc.ICECandidateInit
	if err := json.Unmarshal(payload, &candidate); err != nil {
		return fmt.Errorf("decode ICE candidate: %w", err)
	}
	return p.pc.AddICECandidate(candidate)
}

// Ready reports whether the frames channel is open.
func (p *Peer) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.framesOpen
}

// SendFrame sends an encoded frame on the frames channel.
func (p *Peer) SendFrame(data []byte) error {
	if !p.Ready() {
		return fmt.Errorf("frames data channel not open")
	}
	return p.framesDC.Send(data)
}

func (p *Peer) Close() error {
	return p.pc.Close()
}
