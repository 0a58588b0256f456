package event

// NativeKind is the backend-level kind of a raw event.
type NativeKind uint32

const (
	NativeUnknown NativeKind = iota
	NativeQuit
	NativeKeyDown
	NativeKeyUp
	NativeMouseMotion
	NativeMouseButtonDown
	NativeMouseButtonUp
	NativeMouseWheel
	NativeWindowResized
	NativeWindowFocus
	NativeTextInput
)

// Native is a raw event as reported by a backend, before normalization.
type Native struct {
	Kind      NativeKind
	Key       Key
	Button    MouseButton
	X, Y      int32
	Modifiers uint8
}

// Normalize converts a native event into an Event. The second result is
// false for events that have no normalized form; those are dropped.
func Normalize(n Native) (Event, bool) {
	switch n.Kind {
	case NativeQuit:
		return Event{Type: EventQuit}, true
	case NativeKeyDown, NativeKeyUp:
		if n.Key == KeyUnknown {
			return Event{}, false
		}
		t := EventKeyDown
		if n.Kind == NativeKeyUp {
			t = EventKeyUp
		}
		return Event{Type: t, Key: n.Key, Modifiers: n.Modifiers}, true
	case NativeMouseMotion:
		return Event{Type: EventMouseMove, X: n.X, Y: n.Y}, true
	case NativeMouseButtonDown, NativeMouseButtonUp:
		t := EventMouseButtonDown
		if n.Kind == NativeMouseButtonUp {
			t = EventMouseButtonUp
		}
		return Event{Type: t, Button: n.Button, X: n.X, Y: n.Y, Modifiers: n.Modifiers}, true
	}
	return Event{}, false
}

// ToNative is the inverse of Normalize for valid events. It lets
// event producers that already speak Event (such as a remote viewer) feed a
// native event source.
func ToNative(e Event) (Native, bool) {
	n := Native{Key: e.Key, Button: e.Button, X: e.X, Y: e.Y, Modifiers: e.Modifiers}
	switch e.Type {
	case EventQuit:
		n.Kind = NativeQuit
	case EventKeyDown:
		n.Kind = NativeKeyDown
	case EventKeyUp:
		n.Kind = NativeKeyUp
	case EventMouseMove:
		n.Kind = NativeMouseMotion
	case EventMouseButtonDown:
		n.Kind = NativeMouseButtonDown
	case EventMouseButtonUp:
		n.Kind = NativeMouseButtonUp
	default:
		return Native{}, false
	}
	return n, true
}
