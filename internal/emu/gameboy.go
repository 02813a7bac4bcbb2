package emu

import (
	"log"

	"github.com/lhartmann/gbc/internal/bus"
	"github.com/lhartmann/gbc/internal/cart"
	"github.com/lhartmann/gbc/internal/cpu"
	"github.com/lhartmann/gbc/internal/joypad"
)

const (
	// ScreenWidth and ScreenHeight are the LCD dimensions.
	ScreenWidth  = 160
	ScreenHeight = 144

	// ClockSpeed is the DMG CPU clock, 4.194304 MHz.
	ClockSpeed = 4194304

	// DeviceFPS is the hardware refresh rate the host paces against.
	DeviceFPS = 60

	// CyclesPerFrame is the T-cycle budget of one host frame.
	CyclesPerFrame = ClockSpeed / DeviceFPS
)

// GameBoy owns the CPU and the bus and is the host-facing façade: one
// Emulate call per frame, then read the frame buffer and drain audio.
type GameBoy struct {
	cpu *cpu.CPU
	bus *bus.Bus

	stopped bool
}

// New builds a machine around the cartridge, in CGB mode when the
// cartridge requests it, with post-boot state applied.
func New(c *cart.Cartridge) *GameBoy {
	b := bus.New(c)
	g := &GameBoy{
		cpu: cpu.New(b, c.CGB()),
		bus: b,
	}
	g.Reset()
	return g
}

// Reset restores the post-boot CPU registers and IO port values.
func (g *GameBoy) Reset() {
	g.cpu.Reset()
	g.stopped = false
	for _, p := range initPorts {
		g.bus.Write(p.addr, p.data)
	}
}

// Emulate runs the core until maxCycles T-cycles have elapsed. The joypad
// snapshot is latched once at entry.
func (g *GameBoy) Emulate(maxCycles uint32, input joypad.State) {
	g.bus.SetInput(input)

	if g.stopped {
		return
	}

	var current uint32
	for current < maxCycles {
		current += g.cpu.Step()
		if err := g.cpu.Err(); err != nil {
			log.Printf("emu: %v", err)
			g.stopped = true
			return
		}
	}
}

// FrameBuffer returns the last completed frame, 160*144 RGB24 bytes. The
// slice stays valid until the next Emulate call.
func (g *GameBoy) FrameBuffer() []byte {
	return g.bus.PPU().FrameBuffer()
}

// APUOutput drains the pending resampled stereo frames through cb.
func (g *GameBoy) APUOutput(cb func([]int16)) {
	g.bus.APU().Output(cb)
}

// SaveGame persists the cartridge RAM.
func (g *GameBoy) SaveGame() error {
	return g.bus.Cart().SaveGame()
}

// Bus exposes the bus for tests and tools.
func (g *GameBoy) Bus() *bus.Bus { return g.bus }

// CPU exposes the processor for tests and tools.
func (g *GameBoy) CPU() *cpu.CPU { return g.cpu }

// Stopped reports whether an illegal opcode ended execution.
func (g *GameBoy) Stopped() bool { return g.stopped }

// Post-boot IO port values.
var initPorts = []struct {
	addr uint16
	data byte
}{
	{0xFF05, 0x00}, // TIMA
	{0xFF06, 0x00}, // TMA
	{0xFF07, 0x00}, // TAC
	{0xFF26, 0xF1}, // NR52 first, so the channel writes land powered-on
	{0xFF10, 0x80}, // NR10
	{0xFF11, 0xBF}, // NR11
	{0xFF12, 0xF3}, // NR12
	{0xFF14, 0xBF}, // NR14
	{0xFF16, 0x3F}, // NR21
	{0xFF17, 0x00}, // NR22
	{0xFF19, 0xBF}, // NR24
	{0xFF1A, 0x7F}, // NR30
	{0xFF1B, 0xFF}, // NR31
	{0xFF1C, 0x9F}, // NR32
	{0xFF1E, 0xBF}, // NR34
	{0xFF20, 0xFF}, // NR41
	{0xFF21, 0x00}, // NR42
	{0xFF22, 0x00}, // NR43
	{0xFF23, 0xBF}, // NR44
	{0xFF24, 0x77}, // NR50
	{0xFF25, 0xF3}, // NR51
	{0xFF40, 0x91}, // LCDC
	{0xFF42, 0x00}, // SCY
	{0xFF43, 0x00}, // SCX
	{0xFF45, 0x00}, // LYC
	{0xFF47, 0xFC}, // BGP
	{0xFF48, 0xFF}, // OBP0
	{0xFF49, 0xFF}, // OBP1
	{0xFF4A, 0x00}, // WY
	{0xFF4B, 0x00}, // WX
	{0xFFFF, 0x00}, // IE
}

// SetSerialWriter forwards a serial sink to the bus for test ROM capture.
func (g *GameBoy) SetSerialWriter(w interface{ Write([]byte) (int, error) }) {
	g.bus.SetSerialWriter(w)
}
