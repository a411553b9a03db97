package machine

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/bitmask-systems/lr35902core/internal/types"
)

const (
	snapshotMagic   uint32 = 0x4C523335 // "LR35"
	snapshotVersion uint8  = 1
)

// ErrBadSnapshot is returned by Restore when a blob fails its magic,
// version, ROM-binding, or checksum check.
type ErrBadSnapshot struct {
	Reason string
}

func (e ErrBadSnapshot) Error() string {
	return fmt.Sprintf("machine: bad snapshot: %s", e.Reason)
}

// Snapshot serializes the running Machine into a self-describing,
// checksummed blob: a magic/version header, the ROM hash this snapshot
// is bound to, every component's state in a fixed order, and a trailing
// checksum over everything before it.
func (m *Machine) Snapshot() ([]byte, error) {
	st := types.NewState()
	st.Write32(snapshotMagic)
	st.Write8(snapshotVersion)
	st.Write64(m.bus.Cart.Checksum())

	m.cpu.Save(st)
	m.bus.Save(st)
	cartRAM := m.bus.Cart.SaveRAM()
	st.Write32(uint32(len(cartRAM)))
	st.WriteData(cartRAM)
	m.ppu.Save(st)
	m.bus.Interrupts.Save(st)
	m.bus.Joypad.Save(st)

	body := st.Bytes()
	checksum := make([]byte, 8)
	binary.LittleEndian.PutUint64(checksum, xxhash.Sum64(body))
	return append(body, checksum...), nil
}

// Restore validates blob's header and trailing checksum, confirms it was
// taken against the cartridge currently loaded, and only then overwrites
// the Machine's live state; failing any of those checks leaves the
// Machine untouched. A body that passes them but is too short is detected
// only after the components have loaded from it, so that error is
// returned with the Machine's state already partly overwritten.
func (m *Machine) Restore(blob []byte) error {
	if len(blob) < 8 {
		return ErrBadSnapshot{Reason: "truncated"}
	}
	body, trailer := blob[:len(blob)-8], blob[len(blob)-8:]
	wantChecksum := binary.LittleEndian.Uint64(trailer)
	if gotChecksum := xxhash.Sum64(body); gotChecksum != wantChecksum {
		return ErrBadSnapshot{Reason: "checksum mismatch"}
	}

	st := types.StateFromBytes(body)
	if magic := st.Read32(); magic != snapshotMagic {
		return ErrBadSnapshot{Reason: "bad magic"}
	}
	if version := st.Read8(); version != snapshotVersion {
		return ErrBadSnapshot{Reason: "unsupported version"}
	}
	if romHash := st.Read64(); romHash != m.bus.Cart.Checksum() {
		return ErrBadSnapshot{Reason: "rom mismatch"}
	}

	m.cpu.Load(st)
	m.bus.Load(st)
	cartRAM := make([]byte, st.Read32())
	st.ReadData(cartRAM)
	m.bus.Cart.LoadRAM(cartRAM)
	m.ppu.Load(st)
	m.bus.Interrupts.Load(st)
	m.bus.Joypad.Load(st)

	if st.Truncated() {
		return ErrBadSnapshot{Reason: "truncated"}
	}
	return nil
}
