package interrupts

import "testing"

func TestHighestPriority(t *testing.T) {
	s := NewService()
	s.Enable = 0x1F
	s.Request(Timer)
	s.Request(VBlank)

	kind, ok := s.Highest()
	if !ok || kind != VBlank {
		t.Fatalf("Highest() = (%d,%v), want (VBlank,true)", kind, ok)
	}
}

func TestHighestRequiresEnable(t *testing.T) {
	s := NewService()
	s.Request(VBlank) // not enabled
	if _, ok := s.Highest(); ok {
		t.Fatalf("Highest() reported pending interrupt that isn't enabled")
	}
}

func TestClear(t *testing.T) {
	s := NewService()
	s.Enable = 0x1F
	s.Request(Joypad)
	s.Clear(Joypad)
	if _, ok := s.Highest(); ok {
		t.Fatalf("interrupt still pending after Clear")
	}
}

func TestFlagRegisterReadMask(t *testing.T) {
	s := NewService()
	s.Flag = 0x01
	if got := s.Read(FlagRegister); got != 0xE1 {
		t.Fatalf("Read(IF) = %#x, want 0xE1", got)
	}
}

func TestVectorTable(t *testing.T) {
	cases := map[Kind]Vector{
		VBlank:  0x0040,
		LCDStat: 0x0048,
		Timer:   0x0050,
		Serial:  0x0058,
		Joypad:  0x0060,
	}
	for kind, want := range cases {
		if got := Vec(kind); got != want {
			t.Errorf("Vec(%d) = %#x, want %#x", kind, got, want)
		}
	}
}
