package event

// EventType identifies the kind of input event.
type EventType string

const (
	EventKeyDown         EventType = "key_down"
	EventKeyUp           EventType = "key_up"
	EventMouseMove       EventType = "mouse_move"
	EventMouseButtonDown EventType = "mouse_down"
	EventMouseButtonUp   EventType = "mouse_up"
	EventQuit            EventType = "quit"
)

// MouseButton identifies a mouse button.
type MouseButton int

const (
	MouseButtonLeft   MouseButton = 0
	MouseButtonRight  MouseButton = 1
	MouseButtonMiddle MouseButton = 2
)

// Modifier flags (bitfield).
const (
	ModShift uint8 = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Event is a normalized input event. It doubles as the wire format for
// input sent by a remote viewer.
type Event struct {
	Type   EventType   `json:"type"`
	Key    Key         `json:"key,omitempty"`
	Button MouseButton `json:"button,omitempty"`
	X      int32       `json:"x,omitempty"`
	Y      int32       `json:"y,omitempty"`
	// Modifier flags: ModShift, ModCtrl, ModAlt, ModMeta.
	Modifiers uint8 `json:"modifiers,omitempty"`
}

// Valid reports whether e has a recognized type.
func (e Event) Valid() bool {
	switch e.Type {
	case EventKeyDown, EventKeyUp, EventMouseMove,
		EventMouseButtonDown, EventMouseButtonUp, EventQuit:
		return true
	}
	return false
}
