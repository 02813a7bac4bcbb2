package timer

import (
	"testing"

	"github.com/lhartmann/gbc/internal/interrupt"
)

func TestOverflowReloadsFromTMA(t *testing.T) {
	// TAC=0x05: enabled, 262144 Hz (period 16)
	tm := New()
	ic := interrupt.New()
	tm.Write(0xFF07, 0x05)
	tm.Write(0xFF06, 0x42)
	tm.Write(0xFF05, 0xFF)

	tm.Update(16, ic)

	if got := tm.Read(0xFF05); got != 0x42 {
		t.Fatalf("TIMA after overflow got %02X, want 42", got)
	}
	if ic.Read(0xFF0F)&(1<<2) == 0 {
		t.Fatal("timer interrupt not requested on overflow")
	}
}

func TestTickRate(t *testing.T) {
	tm := New()
	ic := interrupt.New()
	tm.Write(0xFF07, 0x05) // period 16

	tm.Update(15, ic)
	if got := tm.Read(0xFF05); got != 0 {
		t.Fatalf("TIMA ticked early: %02X", got)
	}
	tm.Update(1, ic)
	if got := tm.Read(0xFF05); got != 1 {
		t.Fatalf("TIMA after 16 cycles got %02X, want 01", got)
	}

	tm.Update(16*10, ic)
	if got := tm.Read(0xFF05); got != 11 {
		t.Fatalf("TIMA after 10 more periods got %02X, want 0B", got)
	}
}

func TestDisabledTimerDoesNotTick(t *testing.T) {
	tm := New()
	ic := interrupt.New()
	tm.Write(0xFF07, 0x01) // fastest rate, but disabled
	tm.Update(1024, ic)
	if got := tm.Read(0xFF05); got != 0 {
		t.Fatalf("disabled TIMA ticked to %02X", got)
	}
}

func TestDIVExposesHighByte(t *testing.T) {
	tm := New()
	ic := interrupt.New()
	tm.Update(0x1FF, ic)
	if got := tm.Read(0xFF04); got != 0x01 {
		t.Fatalf("DIV got %02X, want 01", got)
	}
}

func TestDIVWriteResetsCounters(t *testing.T) {
	tm := New()
	ic := interrupt.New()
	tm.Write(0xFF07, 0x05)
	tm.Update(0x300, ic)

	tm.Write(0xFF04, 0x77)
	if got := tm.Read(0xFF04); got != 0 {
		t.Fatalf("DIV after write got %02X, want 00", got)
	}
	// the TIMA sub-count restarts as well: 15 cycles must not tick
	before := tm.Read(0xFF05)
	tm.Update(15, ic)
	if got := tm.Read(0xFF05); got != before {
		t.Fatalf("TIMA ticked from stale sub-count after DIV write")
	}
}
