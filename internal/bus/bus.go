package bus

import (
	"io"

	"github.com/lhartmann/gbc/internal/apu"
	"github.com/lhartmann/gbc/internal/cart"
	"github.com/lhartmann/gbc/internal/interrupt"
	"github.com/lhartmann/gbc/internal/joypad"
	"github.com/lhartmann/gbc/internal/ppu"
	"github.com/lhartmann/gbc/internal/timer"
)

// SpeedMode is the CGB CPU speed: Normal charges 4 T per bus step, Double
// charges 2.
type SpeedMode byte

const (
	SpeedNormal SpeedMode = 0
	SpeedDouble SpeedMode = 1
)

// Bus wires the CPU-visible address space to the cartridge, WRAM, HRAM and
// the memory-mapped peripherals, and owns the per-step cycle accounting.
// Every CPU access goes through Read/Write, which charge one bus step to
// the timer, PPU, APU and the DMA engines.
type Bus struct {
	workRAM0 [0x1000]byte
	workRAM1 [7][0x1000]byte
	wramBank int

	ioPorts [0x80]byte
	highRAM [0x7F]byte

	dma   dma
	hdma  hdma
	timer *timer.Timer
	joyp  *joypad.Joypad

	cart *cart.Cartridge
	ppu  *ppu.PPU
	apu  *apu.APU
	ic   *interrupt.Controller

	// serial scratch: transfers complete immediately into the sink
	sb byte
	sc byte
	sw io.Writer

	prepareSpeedSwitch bool
	speedMode          SpeedMode

	cycles  uint32
	mcycles uint32
}

func New(c *cart.Cartridge) *Bus {
	return &Bus{
		timer: timer.New(),
		joyp:  joypad.New(),
		cart:  c,
		ppu:   ppu.New(c.CGB()),
		apu:   apu.New(),
		ic:    interrupt.New(),
	}
}

// PPU exposes the picture unit for the façade and tests.
func (b *Bus) PPU() *ppu.PPU { return b.ppu }

// APU exposes the audio unit for the façade and tests.
func (b *Bus) APU() *apu.APU { return b.apu }

// Cart exposes the cartridge for save handling.
func (b *Bus) Cart() *cart.Cartridge { return b.cart }

// Interrupts exposes the shared interrupt controller.
func (b *Bus) Interrupts() *interrupt.Controller { return b.ic }

// SetSerialWriter attaches a sink receiving serial output bytes.
func (b *Bus) SetSerialWriter(w io.Writer) { b.sw = w }

// Step charges one bus step: the timer always receives the full 4 T-cycles
// while PPU and APU receive the speed-scaled amount; one OAM DMA cycle per
// T and any due HDMA burst run afterwards.
func (b *Bus) Step() {
	scaled := uint32(4) >> b.speedMode

	b.timer.Update(4, b.ic)
	b.ppu.Update(scaled, b.ic)
	b.apu.Update(scaled)

	for i := 0; i < 4; i++ {
		if src, dst, ok := b.dma.update(); ok {
			b.ppu.DMAWrite(dst, b.readDirect(src))
		}
	}
	b.stepHDMA()

	b.cycles += scaled
	b.mcycles++
}

func (b *Bus) stepHDMA() {
	if src, dst, n, ok := b.hdma.update(b.ppu.HDMAAvailable()); ok {
		for offset := uint16(0); offset < n; offset++ {
			b.ppu.HDMAWrite(dst+offset, b.readDirect(src+offset))
		}
	}
}

// SwitchSpeed commits an armed speed switch; STOP calls this.
func (b *Bus) SwitchSpeed() {
	if !b.prepareSpeedSwitch {
		return
	}
	if b.speedMode == SpeedNormal {
		b.speedMode = SpeedDouble
	} else {
		b.speedMode = SpeedNormal
	}
	b.prepareSpeedSwitch = false
}

// SpeedSwitchArmed reports whether FF4D bit 0 has been written.
func (b *Bus) SpeedSwitchArmed() bool { return b.prepareSpeedSwitch }

// Cycles returns the accumulated (speed-scaled) T-cycle count.
func (b *Bus) Cycles() uint32 { return b.cycles }

// MCycles returns the accumulated bus step count.
func (b *Bus) MCycles() uint32 { return b.mcycles }

// Read charges a bus step and returns the byte at addr.
func (b *Bus) Read(addr uint16) byte {
	data := b.readDirect(addr)
	b.Step()
	return data
}

// readDirect resolves the address without charging cycles; the DMA engines
// use it for their burst copies.
func (b *Bus) readDirect(addr uint16) byte {
	index := int(addr)
	switch {
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr < 0xA000:
		return b.ppu.Read(addr)
	case addr < 0xC000:
		return b.cart.Read(addr)
	case addr < 0xD000:
		return b.workRAM0[index-0xC000]
	case addr < 0xE000:
		return b.workRAM1[b.wramBank][index-0xD000]
	case addr < 0xF000:
		return b.workRAM0[index-0xE000]
	case addr < 0xFE00:
		return b.workRAM1[b.wramBank][index-0xF000]
	case addr < 0xFEA0:
		if b.dma.active {
			return 0xFF
		}
		return b.ppu.Read(addr)
	case addr < 0xFF00:
		// prohibited region
		return 0xFF
	case addr < 0xFF80:
		return b.readIO(addr)
	case addr < 0xFFFF:
		return b.highRAM[index-0xFF80]
	default:
		return b.ic.Read(addr)
	}
}

// Write charges a bus step and stores the byte at addr.
func (b *Bus) Write(addr uint16, data byte) {
	b.writeDirect(addr, data)
	b.Step()
}

func (b *Bus) writeDirect(addr uint16, data byte) {
	index := int(addr)
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, data)
	case addr < 0xA000:
		b.ppu.Write(addr, data)
	case addr < 0xC000:
		b.cart.Write(addr, data)
	case addr < 0xD000:
		b.workRAM0[index-0xC000] = data
	case addr < 0xE000:
		b.workRAM1[b.wramBank][index-0xD000] = data
	case addr < 0xF000:
		b.workRAM0[index-0xE000] = data
	case addr < 0xFE00:
		b.workRAM1[b.wramBank][index-0xF000] = data
	case addr < 0xFEA0:
		if !b.dma.active {
			b.ppu.Write(addr, data)
		}
	case addr < 0xFF00:
		// prohibited region, writes dropped
	case addr < 0xFF80:
		b.writeIO(addr, data)
	case addr < 0xFFFF:
		b.highRAM[index-0xFF80] = data
	default:
		b.ic.Write(addr, data)
	}
}

func (b *Bus) readIO(addr uint16) byte {
	cgb := b.cart.CGB()
	switch {
	case addr == 0xFF00:
		return b.joyp.Read(addr)
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return 0x7E | b.sc&0x81
	case addr >= 0xFF04 && addr <= 0xFF07:
		return b.timer.Read(addr)
	case addr == 0xFF0F:
		return b.ic.Read(addr)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return b.apu.Read(addr)
	case addr == 0xFF46:
		return 0
	case addr >= 0xFF40 && addr <= 0xFF4B:
		return b.ppu.Read(addr)
	case addr == 0xFF4D && cgb:
		v := byte(b.speedMode) << 7
		if b.prepareSpeedSwitch {
			v |= 0x01
		}
		return v
	case addr == 0xFF4F:
		return b.ppu.Read(addr)
	case addr >= 0xFF51 && addr <= 0xFF55 && cgb:
		return b.hdma.read(addr)
	case addr >= 0xFF68 && addr <= 0xFF6B:
		return b.ppu.Read(addr)
	case addr == 0xFF70 && cgb:
		return byte(b.wramBank+1) | 0xF8
	default:
		return b.ioPorts[addr-0xFF00]
	}
}

func (b *Bus) writeIO(addr uint16, data byte) {
	cgb := b.cart.CGB()
	switch {
	case addr == 0xFF00:
		b.joyp.Write(addr, data)
	case addr == 0xFF01:
		b.sb = data
	case addr == 0xFF02:
		b.sc = data & 0x81
		if b.sc&0x80 != 0 {
			if b.sw != nil {
				_, _ = b.sw.Write([]byte{b.sb})
			}
			b.ic.Request(interrupt.Serial)
			b.sc &^= 0x80
		}
	case addr >= 0xFF04 && addr <= 0xFF07:
		b.timer.Write(addr, data)
	case addr == 0xFF0F:
		b.ic.Write(addr, data)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		b.apu.Write(addr, data)
	case addr == 0xFF46:
		b.dma.start(data)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		b.ppu.Write(addr, data)
	case addr == 0xFF4D && cgb:
		b.prepareSpeedSwitch = data&0x01 != 0
	case addr == 0xFF4F:
		b.ppu.Write(addr, data)
	case addr >= 0xFF51 && addr <= 0xFF55 && cgb:
		b.hdma.write(addr, data)
	case addr >= 0xFF68 && addr <= 0xFF6B:
		b.ppu.Write(addr, data)
	case addr == 0xFF70 && cgb:
		bank := int(data & 0x07)
		if bank > 0 {
			bank--
		}
		b.wramBank = bank
	default:
		b.ioPorts[addr-0xFF00] = data
	}
}

// SetInput latches the per-frame joypad snapshot and raises the joypad
// interrupt when a pressed key is on a selected line.
func (b *Bus) SetInput(s joypad.State) {
	b.joyp.SetInput(s)
	b.joyp.Update(b.ic)
}
