package joypad

import "github.com/lhartmann/gbc/internal/interrupt"

const (
	buttonSelectMask    = 0x20
	directionSelectMask = 0x10
	emptyInput          = 0x0F
)

// State is the host-side button snapshot polled once per frame.
type State struct {
	Up, Down, Left, Right bool
	Start, Select         bool
	ButtonA, ButtonB      bool
}

// Joypad implements the JOYP register (0xFF00): two active-low selection
// lines choose between the button and direction nibbles.
type Joypad struct {
	sel byte

	buttonBits    byte
	directionBits byte
}

func New() *Joypad {
	return &Joypad{
		sel:           buttonSelectMask | directionSelectMask,
		buttonBits:    0xFF,
		directionBits: 0xFF,
	}
}

func (j *Joypad) Read(_ uint16) byte {
	var bits byte
	switch {
	case j.sel&buttonSelectMask == 0:
		bits = j.buttonBits
	case j.sel&directionSelectMask == 0:
		bits = j.directionBits
	default:
		bits = emptyInput
	}
	return j.sel | bits | 0xC0
}

func (j *Joypad) Write(_ uint16, data byte) {
	j.sel = data & (buttonSelectMask | directionSelectMask)
}

// SetInput converts a State snapshot into the two active-low nibbles.
func (j *Joypad) SetInput(s State) {
	j.buttonBits = nibble(s.Start, s.Select, s.ButtonB, s.ButtonA)
	j.directionBits = nibble(s.Down, s.Up, s.Left, s.Right)
}

// Update raises the joypad interrupt when a pressed button is visible on
// the currently selected line.
func (j *Joypad) Update(ic *interrupt.Controller) {
	if !ic.Enabled(interrupt.Joypad) {
		return
	}
	if (j.sel&buttonSelectMask == 0 && j.buttonBits != emptyInput) ||
		(j.sel&directionSelectMask == 0 && j.directionBits != emptyInput) {
		ic.Request(interrupt.Joypad)
	}
}

// nibble packs four pressed-states into an active-low nibble, bit 3 first.
func nibble(b3, b2, b1, b0 bool) byte {
	v := byte(0x0F)
	if b3 {
		v &^= 1 << 3
	}
	if b2 {
		v &^= 1 << 2
	}
	if b1 {
		v &^= 1 << 1
	}
	if b0 {
		v &^= 1 << 0
	}
	return v
}
