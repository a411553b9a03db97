// Package joypad emulates the Game Boy's P1 joypad register: button
// state, selection-line multiplexing, and the joypad interrupt.
package joypad

import "github.com/bitmask-systems/lr35902core/internal/types"

// Button is a single physical button.
type Button = uint8

const (
	ButtonA      Button = 0x01
	ButtonB      Button = 0x02
	ButtonSelect Button = 0x04
	ButtonStart  Button = 0x08
	ButtonRight  Button = 0x10
	ButtonLeft   Button = 0x20
	ButtonUp     Button = 0x40
	ButtonDown   Button = 0x80
)

// selectAction is bit 5 of P1 (0 = action buttons selected).
// selectDirection is bit 4 of P1 (0 = direction buttons selected).
const (
	selectDirection = types.Bit4
	selectAction    = types.Bit5
)

// State holds the P1 register and the logical press state of all eight
// buttons. Unpressed lines read as 1.
type State struct {
	register uint8 // P1, bits 4-5 are the selection lines the driver writes
	pressed  Button
}

// New returns a joypad with no buttons pressed and both selection lines
// inactive (as at power-up).
func New() *State {
	return &State{register: 0x3F}
}

// Read returns the current P1 value: selection bits combined with the
// logical state of whichever button group is selected. A selected line
// reads 0 when the corresponding button is held, 1 otherwise.
func (s *State) Read() uint8 {
	lower := uint8(0x0F)
	if s.register&selectDirection == 0 {
		lower &= ^(s.pressed >> 4)
	}
	if s.register&selectAction == 0 {
		lower &= ^(s.pressed & 0x0F)
	}
	return s.register&0x30 | lower | 0xC0
}

// Write updates only the selection bits (4-5); the lower nibble is
// read-only from the driver's perspective.
func (s *State) Write(value uint8) {
	s.register = s.register&0xCF | value&0x30
}

// Press marks btn as held and reports whether this transition should
// raise the joypad interrupt: only on a press that wasn't already held,
// and only while the button's selection line is active.
func (s *State) Press(btn Button) bool {
	wasPressed := s.pressed&btn != 0
	s.pressed |= btn

	selected := false
	if btn <= ButtonStart {
		selected = s.register&selectAction == 0
	} else {
		selected = s.register&selectDirection == 0
	}

	return !wasPressed && selected
}

// Release marks btn as not held.
func (s *State) Release(btn Button) {
	s.pressed &^= btn
}

// Save writes the joypad's state.
func (s *State) Save(st *types.State) {
	st.Write8(s.register)
	st.Write8(s.pressed)
}

// Load restores the joypad's state.
func (s *State) Load(st *types.State) {
	s.register = st.Read8()
	s.pressed = st.Read8()
}
