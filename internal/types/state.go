package types

import "github.com/cespare/xxhash/v2"

// Stater is implemented by any component that can save and restore its
// own state into a State blob. Components save/load in a fixed order;
// callers are responsible for keeping that order stable across versions.
type Stater interface {
	Save(*State)
	Load(*State)
}

// State is an append-only byte buffer with separate read/write cursors,
// used to serialize component state for snapshotting.
type State struct {
	raw           []byte
	readPosition  int
	writePosition int
	overran       bool
}

// NewState returns an empty State ready for writing.
func NewState() *State {
	return &State{raw: make([]byte, 0, 4096)}
}

// StateFromBytes wraps raw as a State ready for reading.
func StateFromBytes(raw []byte) *State {
	return &State{raw: raw}
}

// ResetPosition rewinds both cursors to the start of the buffer.
func (s *State) ResetPosition() {
	s.readPosition = 0
	s.writePosition = 0
}

func (s *State) Write8(value uint8) {
	s.raw = append(s.raw, value)
	s.writePosition++
}

func (s *State) Write16(value uint16) {
	s.raw = append(s.raw, byte(value), byte(value>>8))
	s.writePosition += 2
}

func (s *State) Write32(value uint32) {
	s.raw = append(s.raw, byte(value), byte(value>>8), byte(value>>16), byte(value>>24))
	s.writePosition += 4
}

func (s *State) Write64(value uint64) {
	for i := 0; i < 8; i++ {
		s.raw = append(s.raw, byte(value>>(8*i)))
	}
	s.writePosition += 8
}

func (s *State) WriteBool(value bool) {
	if value {
		s.raw = append(s.raw, 1)
	} else {
		s.raw = append(s.raw, 0)
	}
	s.writePosition++
}

func (s *State) WriteData(data []byte) {
	s.raw = append(s.raw, data...)
	s.writePosition += len(data)
}

// ensure reports whether n more bytes can be read without running past
// the end of the buffer. On failure it marks the state truncated so a
// restore can detect a corrupt/short snapshot after the fact instead of
// panicking mid-read.
func (s *State) ensure(n int) bool {
	if s.readPosition+n > len(s.raw) {
		s.overran = true
		return false
	}
	return true
}

func (s *State) Read8() uint8 {
	if !s.ensure(1) {
		s.readPosition = len(s.raw)
		return 0
	}
	value := s.raw[s.readPosition]
	s.readPosition++
	return value
}

func (s *State) Read16() uint16 {
	if !s.ensure(2) {
		s.readPosition = len(s.raw)
		return 0
	}
	value := uint16(s.raw[s.readPosition]) | uint16(s.raw[s.readPosition+1])<<8
	s.readPosition += 2
	return value
}

func (s *State) Read32() uint32 {
	if !s.ensure(4) {
		s.readPosition = len(s.raw)
		return 0
	}
	value := uint32(s.raw[s.readPosition]) | uint32(s.raw[s.readPosition+1])<<8 |
		uint32(s.raw[s.readPosition+2])<<16 | uint32(s.raw[s.readPosition+3])<<24
	s.readPosition += 4
	return value
}

func (s *State) Read64() uint64 {
	if !s.ensure(8) {
		s.readPosition = len(s.raw)
		return 0
	}
	var value uint64
	for i := 0; i < 8; i++ {
		value |= uint64(s.raw[s.readPosition+i]) << (8 * i)
	}
	s.readPosition += 8
	return value
}

func (s *State) ReadBool() bool {
	return s.Read8() != 0
}

// ReadData copies len(p) bytes into p, advancing the read cursor. If the
// buffer is exhausted early, the remainder of p is left untouched.
func (s *State) ReadData(p []byte) {
	if !s.ensure(len(p)) {
		n := len(s.raw) - s.readPosition
		if n > 0 {
			copy(p, s.raw[s.readPosition:])
		}
		s.readPosition = len(s.raw)
		return
	}
	copy(p, s.raw[s.readPosition:s.readPosition+len(p)])
	s.readPosition += len(p)
}

// Truncated reports whether any read since construction ran past the end
// of the underlying buffer.
func (s *State) Truncated() bool {
	return s.overran
}

func (s *State) Bytes() []byte {
	return s.raw
}

// Checksum returns the xxhash64 digest of the buffer written so far.
func (s *State) Checksum() uint64 {
	return xxhash.Sum64(s.raw)
}
