package emu

import (
	"bytes"
	"testing"

	"github.com/lhartmann/gbc/internal/cart"
	"github.com/lhartmann/gbc/internal/joypad"
)

func testGameBoy(t *testing.T) *GameBoy {
	t.Helper()
	rom := make([]byte, 0x8000)
	copy(rom[0x0134:], "EMUTEST")
	// a tight loop at the entry point: JR -2
	rom[0x0100] = 0x18
	rom[0x0101] = 0xFE
	c, err := cart.NewCartridge(rom)
	if err != nil {
		t.Fatal(err)
	}
	return New(c)
}

func TestPostBootSnapshot(t *testing.T) {
	gb := testGameBoy(t)
	gb.Emulate(0, joypad.State{})

	c := gb.CPU()
	if c.AF() != 0x01B0 || c.BC() != 0x0013 || c.DE() != 0x00D8 || c.HL() != 0x014D {
		t.Fatalf("registers got AF=%04X BC=%04X DE=%04X HL=%04X",
			c.AF(), c.BC(), c.DE(), c.HL())
	}
	if c.SP != 0xFFFE || c.PC != 0x0100 {
		t.Fatalf("SP=%04X PC=%04X", c.SP, c.PC)
	}
	if got := gb.Bus().Read(0xFFFF); got != 0x00 {
		t.Fatalf("IE got %02X, want 00", got)
	}
	// no interrupt is pending right after reset
	if got := gb.Bus().Read(0xFF0F); got != 0xE0 {
		t.Fatalf("IF got %02X, want E0", got)
	}
	if got := gb.Bus().Read(0xFF40); got != 0x91 {
		t.Fatalf("LCDC got %02X, want 91", got)
	}
	if got := gb.Bus().Read(0xFF47); got != 0xFC {
		t.Fatalf("BGP got %02X, want FC", got)
	}
}

func TestFrameBufferShapeAndStability(t *testing.T) {
	gb := testGameBoy(t)
	gb.Emulate(CyclesPerFrame*3, joypad.State{})

	fb := gb.FrameBuffer()
	if len(fb) != ScreenWidth*ScreenHeight*3 {
		t.Fatalf("frame buffer length %d, want %d", len(fb), ScreenWidth*ScreenHeight*3)
	}

	first := append([]byte(nil), fb...)
	if !bytes.Equal(first, gb.FrameBuffer()) {
		t.Fatal("frame buffer unstable between reads")
	}
}

func TestAudioOutputMonotonic(t *testing.T) {
	gb := testGameBoy(t)

	var total uint64
	for i := 0; i < 5; i++ {
		gb.Emulate(CyclesPerFrame, joypad.State{})
		emitted := gb.Bus().APU().SamplesEmitted()
		if emitted < total {
			t.Fatalf("sample count went backwards: %d -> %d", total, emitted)
		}
		total = emitted

		var drained int
		gb.APUOutput(func(s []int16) { drained += len(s) })
		if drained == 0 {
			t.Fatalf("frame %d produced no audio", i)
		}
		if drained%2 != 0 {
			t.Fatalf("odd number of interleaved samples: %d", drained)
		}
	}
	// roughly a frame's worth of samples per frame
	perFrame := float64(total) / 5
	if perFrame < 600 || perFrame > 900 {
		t.Fatalf("samples per frame %.0f, want about 735", perFrame)
	}
}

func TestEmulateRunsRequestedCycles(t *testing.T) {
	gb := testGameBoy(t)
	start := gb.Bus().Cycles()
	gb.Emulate(1000, joypad.State{})
	ran := gb.Bus().Cycles() - start
	if ran < 1000 || ran > 1040 {
		t.Fatalf("ran %d cycles for a 1000-cycle budget", ran)
	}
}

func TestInvalidOpcodeStopsMachine(t *testing.T) {
	rom := make([]byte, 0x8000)
	copy(rom[0x0134:], "BADOP")
	rom[0x0100] = 0xD3
	c, err := cart.NewCartridge(rom)
	if err != nil {
		t.Fatal(err)
	}
	gb := New(c)

	gb.Emulate(CyclesPerFrame, joypad.State{})
	if !gb.Stopped() {
		t.Fatal("machine kept running past an illegal opcode")
	}
}

func TestJoypadVisibleToProgram(t *testing.T) {
	gb := testGameBoy(t)
	gb.Emulate(4, joypad.State{ButtonA: true})

	gb.Bus().Write(0xFF00, 0x10) // select buttons
	if got := gb.Bus().Read(0xFF00) & 0x0F; got != 0x0E {
		t.Fatalf("JOYP got %X, want E (A pressed)", got)
	}
}
