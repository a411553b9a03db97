// Package ram provides a bounds-checked fixed-size byte array used for
// work RAM and high RAM.
package ram

import "github.com/bitmask-systems/lr35902core/internal/types"

// RAM is a fixed-size, zero-indexed byte array.
type RAM struct {
	data []byte
}

// New returns a RAM of the given size, zero-filled.
func New(size int) *RAM {
	return &RAM{data: make([]byte, size)}
}

// Read returns the byte at offset, or 0xFF if offset is out of range.
func (r *RAM) Read(offset uint16) uint8 {
	if int(offset) >= len(r.data) {
		return 0xFF
	}
	return r.data[offset]
}

// Write sets the byte at offset; out-of-range writes are dropped.
func (r *RAM) Write(offset uint16, value uint8) {
	if int(offset) >= len(r.data) {
		return
	}
	r.data[offset] = value
}

// Len returns the size of the backing array.
func (r *RAM) Len() int {
	return len(r.data)
}

// Save writes the raw contents of the RAM.
func (r *RAM) Save(s *types.State) {
	s.WriteData(r.data)
}

// Load restores the raw contents of the RAM.
func (r *RAM) Load(s *types.State) {
	s.ReadData(r.data)
}
