package cart

import "time"

const (
	mbc3ModeRAM = iota
	mbc3ModeRTC
)

// RTC register selection codes written to 0x4000-0x5FFF.
const (
	rtcSeconds = 0x08
	rtcMinutes = 0x09
	rtcHours   = 0x0A
	rtcDaysLow = 0x0B
	rtcDaysHi  = 0x0C
)

// rtcLatch is the two-step latch state machine: writing 0x00 then 0x01 to
// 0x6000-0x7FFF freezes the visible clock until the sequence repeats.
type rtcLatch int

const (
	latchStep0 rtcLatch = iota
	latchStep1
	latchHeld0
	latchHeld1
)

func (l rtcLatch) latched() bool { return l == latchHeld0 || l == latchHeld1 }

func (l *rtcLatch) step(data byte) bool {
	switch *l {
	case latchStep0:
		if data == 0x00 {
			*l = latchStep1
		}
	case latchStep1:
		if data == 0x01 {
			*l = latchHeld0
			return true
		}
		*l = latchStep0
	case latchHeld0:
		if data == 0x00 {
			*l = latchHeld1
		}
	case latchHeld1:
		*l = latchStep0
	}
	return false
}

// MBC3 banks up to 2 MiB ROM and 32 KiB RAM and carries the real-time
// clock. The clock counts whole seconds against an injected wall-clock
// source so tests can advance time deterministically.
type MBC3 struct {
	ram []byte

	romBank   byte
	ramBank   byte
	ramEnable bool

	maxROM byte

	mode   int
	rtcReg byte
	latch  rtcLatch

	// seconds accumulated up to syncedAt; while halted the clock does
	// not advance.
	seconds  int64
	syncedAt time.Time
	halt     bool
	carry    bool

	latchedSeconds int64
	latchedHalt    bool
	latchedCarry   bool

	now func() time.Time
}

func NewMBC3(romSize, ramSize int) *MBC3 {
	m := &MBC3{
		ram:     make([]byte, ramSize),
		romBank: 0x01,
		maxROM:  byte(romSize / 0x4000),
		halt:    true,
		now:     time.Now,
	}
	m.syncedAt = m.now()
	return m
}

// current returns the running second count.
func (m *MBC3) current() int64 {
	if m.halt {
		return m.seconds
	}
	return m.seconds + int64(m.now().Sub(m.syncedAt)/time.Second)
}

// sync folds elapsed wall time into the counter and restarts the reference
// instant. Register writes go through here first.
func (m *MBC3) sync() {
	m.seconds = m.current()
	m.syncedAt = m.now()
}

// visible returns the second count reads should decode from.
func (m *MBC3) visible() (secs int64, halt, carry bool) {
	if m.latch.latched() {
		return m.latchedSeconds, m.latchedHalt, m.latchedCarry
	}
	return m.current(), m.halt, m.carry
}

func rtcDecode(reg byte, secs int64, halt, carry bool) byte {
	days := secs / 86400
	switch reg {
	case rtcSeconds:
		return byte(secs % 60)
	case rtcMinutes:
		return byte((secs / 60) % 60)
	case rtcHours:
		return byte((secs / 3600) % 24)
	case rtcDaysLow:
		return byte(days & 0xFF)
	case rtcDaysHi:
		v := byte(days>>8) & 0x01
		if halt {
			v |= 1 << 6
		}
		if carry || days > 511 {
			v |= 1 << 7
		}
		return v
	}
	return 0xFF
}

func (m *MBC3) Read(rom []byte, addr uint16) byte {
	switch {
	case addr < 0x4000:
		return rom[addr]
	case addr < 0x8000:
		return rom[int(addr-0x4000)+int(m.romBank)*0x4000]
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnable {
			return 0xFF
		}
		if m.mode == mbc3ModeRAM {
			return m.ram[int(addr-0xA000)+int(m.ramBank)*0x2000]
		}
		secs, halt, carry := m.visible()
		return rtcDecode(m.rtcReg, secs, halt, carry)
	default:
		return 0xFF
	}
}

func (m *MBC3) Write(addr uint16, data byte) {
	switch {
	case addr < 0x2000:
		m.ramEnable = data&0x0F == 0x0A
	case addr < 0x4000:
		bank := (data & 0x7F) % m.maxROM
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case addr < 0x6000:
		switch {
		case data <= 0x03:
			m.mode = mbc3ModeRAM
			m.ramBank = data
		case data >= rtcSeconds && data <= rtcDaysHi:
			m.mode = mbc3ModeRTC
			m.rtcReg = data
		}
	case addr < 0x8000:
		if m.latch.step(data) {
			m.latchedSeconds = m.current()
			m.latchedHalt = m.halt
			m.latchedCarry = m.carry
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnable {
			return
		}
		if m.mode == mbc3ModeRAM {
			m.ram[int(addr-0xA000)+int(m.ramBank)*0x2000] = data
			return
		}
		m.writeRTC(data)
	}
}

func (m *MBC3) writeRTC(data byte) {
	m.sync()
	secs := m.seconds
	days := secs / 86400
	switch m.rtcReg {
	case rtcSeconds:
		m.seconds += int64(data) - secs%60
	case rtcMinutes:
		m.seconds += (int64(data) - (secs/60)%60) * 60
	case rtcHours:
		m.seconds += (int64(data) - (secs/3600)%24) * 3600
	case rtcDaysLow:
		rem := secs - days*86400
		if days >= 256 {
			m.seconds = (256+int64(data))*86400 + rem
		} else {
			m.seconds = int64(data)*86400 + rem
		}
	case rtcDaysHi:
		if data&0x01 != 0 && days < 256 {
			m.seconds += 256 * 86400
		} else if data&0x01 == 0 && days >= 256 {
			m.seconds -= 256 * 86400
		}
		m.halt = data&(1<<6) != 0
		m.carry = data&(1<<7) != 0
		if !m.carry && m.seconds/86400 > 511 {
			m.seconds -= 512 * 86400
		}
	}
	if m.seconds < 0 {
		m.seconds = 0
	}
}

func (m *MBC3) RAM() []byte { return m.ram }
