package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"

	"github.com/junsooki/pixwin/internal/capture"
	"github.com/junsooki/pixwin/internal/encoder"
	"github.com/junsooki/pixwin/internal/event"
)

const writeWait = 5 * time.Second

// InputSink receives input from viewers. It must be safe for concurrent
// use; soft.Events satisfies it.
type InputSink interface {
	Push(evs ...event.Native)
}

// Option configures a Server.
type Option func(*Server)

// WithEncoder replaces the default JPEG encoder used for frames.
func WithEncoder(enc encoder.Encoder) Option {
	return func(s *Server) { s.enc = enc }
}

// WithICEServers sets the ICE servers offered to WebRTC peers. Nil means
// host candidates only.
func WithICEServers(servers []webrtc.ICEServer) Option {
	return func(s *Server) { s.iceServers = servers }
}

// Server is an http.Handler accepting viewer websockets.
type Server struct {
	sink       InputSink
	enc        encoder.Encoder
	iceServers []webrtc.ICEServer
	upgrader   websocket.Upgrader

	mu      sync.Mutex
	viewers map[*viewer]struct{}
}

type viewer struct {
	conn *websocket.Conn
	mu   sync.Mutex
	peer *Peer
}

func (v *viewer) send(msg Message) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return v.conn.WriteJSON(msg)
}

func (v *viewer) sendBinary(data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	_ = v.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return v.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (v *viewer) currentPeer() *Peer {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.peer
}

func (v *viewer) swapPeer(p *Peer) *Peer {
	v.mu.Lock()
	defer v.mu.Unlock()
	old := v.peer
	v.peer = p
	return old
}

// heldSender buffers messages until release, then passes them through.
type heldSender struct {
	mu       sync.Mutex
	next     func(Message) error
	held     []Message
	released bool
}

func newHeldSender(next func(Message) error) *heldSender {
	return &heldSender{next: next}
}

func (h *heldSender) send(msg Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.released {
		h.held = append(h.held, msg)
		return nil
	}
	return h.next(msg)
}

// release flushes held messages in order. Sends made during the flush wait
// for it, so ordering is kept.
func (h *heldSender) release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released = true
	held := h.held
	h.held = nil
	for _, msg := range held {
		if err := h.next(msg); err != nil {
			return err
		}
	}
	return nil
}

// NewServer creates a server that forwards viewer input to sink.
func NewServer(sink InputSink, opts ...Option) *Server {
	s := &Server{
		sink:       sink,
		enc:        encoder.NewJPEGEncoder(70),
		iceServers: ICEServers,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		viewers: make(map[*viewer]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Viewers returns the number of connected viewers.
func (s *Server) Viewers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.viewers)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	v := &viewer{conn: conn}

	s.mu.Lock()
	s.viewers[v] = struct{}{}
	s.mu.Unlock()
	log.Printf("viewer connected: %s", r.RemoteAddr)

	defer func() {
		s.mu.Lock()
		delete(s.viewers, v)
		s.mu.Unlock()
		if p := v.swapPeer(nil); p != nil {
			p.Close()
		}
		conn.Close()
		log.Printf("viewer disconnected: %s", r.RemoteAddr)
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("viewer read error: %v", err)
			}
			return
		}
		if err := s.dispatch(v, msg); err != nil {
			_ = v.send(Message{Type: TypeError, Msg: err.Error()})
		}
	}
}

func (s *Server) dispatch(v *viewer, msg Message) error {
	switch msg.Type {
	case TypeInput:
		return s.handleInput(msg.Payload)
	case TypePing:
		return v.send(Message{Type: TypePong})
	case TypeOffer:
		// Candidates gathered while answering wait until the answer is out.
		gate := newHeldSender(v.send)
		p, err := NewPeer(s.iceServers, func(data []byte) {
			if err := s.handleInput(data); err != nil {
				log.Printf("data channel input: %v", err)
			}
		}, gate.send)
		if err != nil {
			return err
		}
		answer, err := p.HandleOffer(msg.Payload)
		if err != nil {
			p.Close()
			return err
		}
		if old := v.swapPeer(p); old != nil {
			old.Close()
		}
		if err := v.send(Message{Type: TypeAnswer, Payload: answer}); err != nil {
			return err
		}
		return gate.release()
	case TypeICECandidate:
		p := v.currentPeer()
		if p == nil {
			return errors.New("ice-candidate before offer")
		}
		return p.HandleICECandidate(msg.Payload)
	case TypePong:
		return nil
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// handleInput decodes one event and pushes it to the sink. Viewers cannot
// close the window, so quit is rejected.
func (s *Server) handleInput(data []byte) error {
	var e event.Event
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	if e.Type == event.EventQuit {
		return errors.New("quit is not accepted from viewers")
	}
	n, ok := event.ToNative(e)
	if !ok {
		return fmt.Errorf("unrecognized input %q", e.Type)
	}
	s.sink.Push(n)
	return nil
}

// Broadcast sends one encoded frame to every viewer, over WebRTC when the
// viewer's frames channel is open and over the websocket otherwise.
func (s *Server) Broadcast(data []byte) {
	s.mu.Lock()
	viewers := make([]*viewer, 0, len(s.viewers))
	for v := range s.viewers {
		viewers = append(viewers, v)
	}
	s.mu.Unlock()

	for _, v := range viewers {
		if p := v.currentPeer(); p != nil && p.Ready() {
			if err := p.SendFrame(data); err == nil {
				continue
			}
		}
		if err := v.sendBinary(data); err != nil {
			log.Printf("send frame: %v", err)
			v.conn.Close()
		}
	}
}

// Stream encodes frames and broadcasts them until frames is closed or ctx
// is done.
func (s *Server) Stream(ctx context.Context, frames <-chan *capture.Frame) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			if s.Viewers() == 0 {
				continue
			}
			data, err := s.enc.Encode(f.Image)
			if err != nil {
				log.Printf("encode frame: %v", err)
				continue
			}
			s.Broadcast(data)
		}
	}
}
