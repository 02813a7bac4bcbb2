package ppu

import "testing"

func TestDMGPaletteRemap(t *testing.T) {
	p := newPalette(false)
	p.WriteDMG(0, 0x1B) // 3,2,1,0 reversed
	if p.ColorAt(0, 0) != dmgColors[3] {
		t.Fatal("value 0 not remapped to shade 3")
	}
	if p.ColorAt(0, 3) != dmgColors[0] {
		t.Fatal("value 3 not remapped to shade 0")
	}
	if got := p.ReadDMG(0); got != 0x1B {
		t.Fatalf("BGP readback got %02X", got)
	}
}

func TestCGBPaletteAutoIncrement(t *testing.T) {
	p := newPalette(true)
	p.WriteIndex(0x80)
	for i := 0; i < 8; i++ {
		p.WriteData(byte(i))
	}
	if got := p.ReadIndex(); got != 0x88 {
		t.Fatalf("index after 8 writes got %02X, want 88", got)
	}

	p.WriteIndex(0x02)
	if got := p.ReadData(); got != 0x02 {
		t.Fatalf("readback got %02X, want 02", got)
	}
	// reads do not auto-increment
	if got := p.ReadIndex(); got != 0x02 {
		t.Fatalf("index advanced on read: %02X", got)
	}
}

func TestColorCorrection(t *testing.T) {
	// pure white: r=g=b=31
	if got := correctColor(0x7FFF); got != (Color{240, 240, 240}) {
		t.Fatalf("white got %v, want {240,240,240}", got)
	}
	// pure red: channels bleed per the correction matrix
	if got := correctColor(0x001F); got != (Color{201, 0, 46}) {
		t.Fatalf("red got %v", got)
	}
	if got := correctColor(0x0000); got != (Color{0, 0, 0}) {
		t.Fatalf("black got %v", got)
	}
}

func TestCGBWriteDataRebuildsRGB(t *testing.T) {
	p := newPalette(true)
	// palette 1, color 2 sits at index (1*8 + 2*2) = 12
	p.WriteIndex(12)
	p.WriteData(0xFF)
	p.WriteIndex(13)
	p.WriteData(0x7F)
	if p.colors555[1][2] != 0x7FFF {
		t.Fatalf("555 storage got %04X", p.colors555[1][2])
	}
	if p.ColorAt(1, 2) != (Color{240, 240, 240}) {
		t.Fatalf("rgb got %v", p.ColorAt(1, 2))
	}
}
