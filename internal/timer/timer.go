package timer

import "github.com/lhartmann/gbc/internal/interrupt"

// TIMA tick periods in T-cycles, indexed by TAC bits 0-1.
var frequency = [4]uint16{1024, 16, 64, 256}

// Timer implements DIV (0xFF04), TIMA (0xFF05), TMA (0xFF06) and
// TAC (0xFF07). DIV exposes the high byte of a free-running 16-bit
// counter; TIMA increments at the TAC-selected rate when enabled and
// reloads from TMA on overflow, raising the timer interrupt.
type Timer struct {
	divClocks   uint16
	timerClocks uint16

	tima byte
	tma  byte
	tac  byte

	period  uint16
	enabled bool
}

func New() *Timer {
	return &Timer{period: frequency[0]}
}

// Update advances the timer by the given number of T-cycles. The bus always
// charges the full 4 T per step regardless of speed mode.
func (t *Timer) Update(clocks uint32, ic *interrupt.Controller) {
	c := uint16(clocks)
	t.divClocks += c

	if !t.enabled {
		return
	}
	t.timerClocks += c
	for t.timerClocks >= t.period {
		t.timerClocks -= t.period
		if t.tima == 0xFF {
			t.tima = t.tma
			ic.Request(interrupt.Timer)
		} else {
			t.tima++
		}
	}
}

func (t *Timer) Read(addr uint16) byte {
	switch addr {
	case 0xFF04:
		return byte(t.divClocks >> 8)
	case 0xFF05:
		return t.tima
	case 0xFF06:
		return t.tma
	case 0xFF07:
		return t.tac
	}
	return 0xFF
}

func (t *Timer) Write(addr uint16, data byte) {
	switch addr {
	case 0xFF04:
		// Any write clears the whole divider, including the TIMA sub-count.
		t.divClocks = 0
		t.timerClocks = 0
	case 0xFF05:
		t.tima = data
	case 0xFF06:
		t.tma = data
	case 0xFF07:
		t.tac = data
		t.enabled = data&0x04 != 0
		t.period = frequency[data&0x03]
	}
}
