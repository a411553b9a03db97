// Package interrupts implements the interrupt master-enable flag and the
// IE/IF register pair shared by the CPU and the components that request
// interrupts (PPU, joypad).
package interrupts

import "github.com/bitmask-systems/lr35902core/internal/types"

// Vector is the service-routine address for an interrupt kind.
type Vector = uint16

const (
	VBlankVector Vector = 0x0040
	LCDVector    Vector = 0x0048
	TimerVector  Vector = 0x0050
	SerialVector Vector = 0x0058
	JoypadVector Vector = 0x0060
)

// Kind identifies one of the five interrupt sources, numbered by IE/IF
// bit position (0 = highest priority).
type Kind = uint8

const (
	VBlank Kind = iota
	LCDStat
	Timer
	Serial
	Joypad
)

var vectors = [5]Vector{VBlankVector, LCDVector, TimerVector, SerialVector, JoypadVector}

const (
	// FlagRegister is the address of IF.
	FlagRegister = types.IF
	// EnableRegister is the address of IE.
	EnableRegister = types.IE
)

// Service holds IE, IF, and IME. It is owned by the bus and consulted by
// the CPU once per instruction boundary.
type Service struct {
	Flag   uint8 // IF (FF0F)
	Enable uint8 // IE (FFFF)
	IME    bool
}

// NewService returns an interrupt controller with everything disabled.
func NewService() *Service {
	return &Service{}
}

// Request sets the IF bit for kind.
func (s *Service) Request(kind Kind) {
	s.Flag |= 1 << kind
}

// Clear clears the IF bit for kind.
func (s *Service) Clear(kind Kind) {
	s.Flag &^= 1 << kind
}

// Read returns the register value at address; address must be
// FlagRegister or EnableRegister.
func (s *Service) Read(address uint16) uint8 {
	switch address {
	case FlagRegister:
		// the upper 3 bits of IF always read back as 1.
		return s.Flag&0x1F | 0xE0
	case EnableRegister:
		return s.Enable
	}
	return 0xFF
}

// Write sets the register value at address; address must be
// FlagRegister or EnableRegister.
func (s *Service) Write(address uint16, value uint8) {
	switch address {
	case FlagRegister:
		s.Flag = value & 0x1F
	case EnableRegister:
		s.Enable = value
	}
}

// Pending reports whether any enabled interrupt is currently requested,
// independent of IME — used by HALT/STOP to know when to wake up.
func (s *Service) Pending() bool {
	return s.Enable&s.Flag&0x1F != 0
}

// Highest returns the highest-priority pending-and-enabled interrupt and
// true, or (0, false) if none is pending.
func (s *Service) Highest() (Kind, bool) {
	masked := s.Enable & s.Flag & 0x1F
	if masked == 0 {
		return 0, false
	}
	for k := Kind(0); k < 5; k++ {
		if masked&(1<<k) != 0 {
			return k, true
		}
	}
	return 0, false
}

// Vec returns the service-routine address for kind.
func Vec(kind Kind) Vector {
	return vectors[kind]
}

// Save writes the controller's state.
func (s *Service) Save(st *types.State) {
	st.Write8(s.Flag)
	st.Write8(s.Enable)
	st.WriteBool(s.IME)
}

// Load restores the controller's state.
func (s *Service) Load(st *types.State) {
	s.Flag = st.Read8()
	s.Enable = st.Read8()
	s.IME = st.ReadBool()
}
