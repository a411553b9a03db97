package types

import "testing"

func TestStateRoundTrip(t *testing.T) {
	s := NewState()
	s.Write8(0x42)
	s.Write16(0xBEEF)
	s.Write32(0xDEADBEEF)
	s.Write64(0x0102030405060708)
	s.WriteBool(true)
	s.WriteBool(false)
	s.WriteData([]byte{1, 2, 3, 4})

	r := StateFromBytes(s.Bytes())
	if got := r.Read8(); got != 0x42 {
		t.Fatalf("Read8 = %#x, want 0x42", got)
	}
	if got := r.Read16(); got != 0xBEEF {
		t.Fatalf("Read16 = %#x, want 0xBEEF", got)
	}
	if got := r.Read32(); got != 0xDEADBEEF {
		t.Fatalf("Read32 = %#x, want 0xDEADBEEF", got)
	}
	if got := r.Read64(); got != 0x0102030405060708 {
		t.Fatalf("Read64 = %#x, want 0x0102030405060708", got)
	}
	if got := r.ReadBool(); got != true {
		t.Fatalf("ReadBool = %v, want true", got)
	}
	if got := r.ReadBool(); got != false {
		t.Fatalf("ReadBool = %v, want false", got)
	}
	buf := make([]byte, 4)
	r.ReadData(buf)
	if buf[0] != 1 || buf[3] != 4 {
		t.Fatalf("ReadData = %v, want [1 2 3 4]", buf)
	}
	if r.Truncated() {
		t.Fatalf("Truncated() = true on a fully consumed well-formed buffer")
	}
}

func TestStateTruncated(t *testing.T) {
	s := NewState()
	s.Write8(0x01)
	r := StateFromBytes(s.Bytes())
	_ = r.Read16() // short read beyond the single byte written
	if !r.Truncated() {
		t.Fatalf("Truncated() = false, want true after reading past end")
	}
}

func TestStateChecksumDiffersOnChange(t *testing.T) {
	a := NewState()
	a.Write8(1)
	a.Write8(2)
	b := NewState()
	b.Write8(1)
	b.Write8(3)
	if a.Checksum() == b.Checksum() {
		t.Fatalf("expected different checksums for different contents")
	}
}
