package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/orbiter/input"
	"github.com/milk9111/orbiter/program"
)

var keyMap = map[input.Key]ebiten.Key{
	'a': ebiten.KeyA, 'b': ebiten.KeyB, 'c': ebiten.KeyC, 'd': ebiten.KeyD,
	'e': ebiten.KeyE, 'f': ebiten.KeyF, 'g': ebiten.KeyG, 'h': ebiten.KeyH,
	'i': ebiten.KeyI, 'j': ebiten.KeyJ, 'k': ebiten.KeyK, 'l': ebiten.KeyL,
	'm': ebiten.KeyM, 'n': ebiten.KeyN, 'o': ebiten.KeyO, 'p': ebiten.KeyP,
	'q': ebiten.KeyQ, 'r': ebiten.KeyR, 's': ebiten.KeyS, 't': ebiten.KeyT,
	'u': ebiten.KeyU, 'v': ebiten.KeyV, 'w': ebiten.KeyW, 'x': ebiten.KeyX,
	'y': ebiten.KeyY, 'z': ebiten.KeyZ,
	' ': ebiten.KeySpace,
}

// ebitenKeys samples the keyboard once per frame so every tick of that frame
// sees the same state.
type ebitenKeys struct {
	pressed map[input.Key]bool
	mods    program.ModKey
}

func (k *ebitenKeys) Update() {
	if k.pressed == nil {
		k.pressed = make(map[input.Key]bool, len(keyMap))
	}
	for key, ek := range keyMap {
		k.pressed[key] = ebiten.IsKeyPressed(ek)
	}

	var mods program.ModKey
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= program.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= program.ModControl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= program.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= program.ModSuper
	}
	k.mods = mods
}

func (k *ebitenKeys) KeyPressed(key input.Key) bool {
	return k.pressed[key]
}

func (k *ebitenKeys) Modifiers() program.ModKey {
	return k.mods
}
