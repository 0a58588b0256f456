// Package display is the interactive backend, built on Ebitengine.
//
// Ebitengine owns the main goroutine and calls back into Update and Draw,
// while a session expects to drive its own loop. Ebiten.Run bridges the two:
// the caller's loop runs on a second goroutine and records draw commands,
// Present hands a finished command list to Draw, and Update publishes input
// snapshots that PollEvent drains.
package display

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/junsooki/pixwin/internal/event"
)

// keyMap maps Ebitengine keys to session keys.
var keyMap = map[ebiten.Key]event.Key{
	ebiten.KeyA: event.KeyA, ebiten.KeyB: event.KeyB, ebiten.KeyC: event.KeyC, ebiten.KeyD: event.KeyD,
	ebiten.KeyE: event.KeyE, ebiten.KeyF: event.KeyF, ebiten.KeyG: event.KeyG, ebiten.KeyH: event.KeyH,
	ebiten.KeyI: event.KeyI, ebiten.KeyJ: event.KeyJ, ebiten.KeyK: event.KeyK, ebiten.KeyL: event.KeyL,
	ebiten.KeyM: event.KeyM, ebiten.KeyN: event.KeyN, ebiten.KeyO: event.KeyO, ebiten.KeyP: event.KeyP,
	ebiten.KeyQ: event.KeyQ, ebiten.KeyR: event.KeyR, ebiten.KeyS: event.KeyS, ebiten.KeyT: event.KeyT,
	ebiten.KeyU: event.KeyU, ebiten.KeyV: event.KeyV, ebiten.KeyW: event.KeyW, ebiten.KeyX: event.KeyX,
	ebiten.KeyY: event.KeyY, ebiten.KeyZ: event.KeyZ,
	ebiten.Key0: event.Key0, ebiten.Key1: event.Key1, ebiten.Key2: event.Key2, ebiten.Key3: event.Key3,
	ebiten.Key4: event.Key4, ebiten.Key5: event.Key5, ebiten.Key6: event.Key6, ebiten.Key7: event.Key7,
	ebiten.Key8: event.Key8, ebiten.Key9: event.Key9,
	ebiten.KeySpace: event.KeySpace, ebiten.KeyEnter: event.KeyEnter, ebiten.KeyEscape: event.KeyEscape,
	ebiten.KeyTab: event.KeyTab, ebiten.KeyBackspace: event.KeyBackspace, ebiten.KeyDelete: event.KeyDelete,
	ebiten.KeyHome: event.KeyHome, ebiten.KeyEnd: event.KeyEnd,
	ebiten.KeyPageUp: event.KeyPageUp, ebiten.KeyPageDown: event.KeyPageDown,
	ebiten.KeyArrowLeft: event.KeyLeft, ebiten.KeyArrowRight: event.KeyRight,
	ebiten.KeyArrowUp: event.KeyUp, ebiten.KeyArrowDown: event.KeyDown,
	ebiten.KeyShift: event.KeyShift, ebiten.KeyControl: event.KeyControl,
	ebiten.KeyAlt: event.KeyAlt, ebiten.KeyMeta: event.KeyMeta,
	ebiten.KeyF1: event.KeyF1, ebiten.KeyF2: event.KeyF2, ebiten.KeyF3: event.KeyF3, ebiten.KeyF4: event.KeyF4,
	ebiten.KeyF5: event.KeyF5, ebiten.KeyF6: event.KeyF6, ebiten.KeyF7: event.KeyF7, ebiten.KeyF8: event.KeyF8,
	ebiten.KeyF9: event.KeyF9, ebiten.KeyF10: event.KeyF10, ebiten.KeyF11: event.KeyF11, ebiten.KeyF12: event.KeyF12,
}

var buttonMap = []struct {
	eb  ebiten.MouseButton
	btn event.MouseButton
}{
	{ebiten.MouseButtonLeft, event.MouseButtonLeft},
	{ebiten.MouseButtonRight, event.MouseButtonRight},
	{ebiten.MouseButtonMiddle, event.MouseButtonMiddle},
}

// sessionKey maps an Ebitengine key, reporting unmapped keys as
// event.KeyUnknown.
func sessionKey(k ebiten.Key) event.Key {
	if key, ok := keyMap[k]; ok {
		return key
	}
	return event.KeyUnknown
}

func currentModifiers() uint8 {
	var m uint8
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		m |= event.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		m |= event.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		m |= event.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		m |= event.ModMeta
	}
	return m
}
