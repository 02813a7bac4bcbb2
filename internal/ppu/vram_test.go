package ppu

import "testing"

func TestTileDecodeOnWrite(t *testing.T) {
	v := newVideoRAM(false)

	// row 0 of tile 0: lo=0b1010_1010, hi=0b1100_1100
	v.WriteTile(0x0000, 0xAA, ModeHBlank)
	v.WriteTile(0x0001, 0xCC, ModeHBlank)

	want := [8]byte{3, 2, 1, 0, 3, 2, 1, 0}
	got := v.Tile(0, 0)[0]
	if got != want {
		t.Fatalf("decoded row got %v, want %v", got, want)
	}

	// rewriting one plane re-decodes the row
	v.WriteTile(0x0001, 0x00, ModeHBlank)
	want = [8]byte{1, 0, 1, 0, 1, 0, 1, 0}
	if got := v.Tile(0, 0)[0]; got != want {
		t.Fatalf("re-decoded row got %v, want %v", got, want)
	}
}

func TestTileDecodeRowAddressing(t *testing.T) {
	v := newVideoRAM(false)
	// tile 5, row 3
	addr := 5*16 + 3*2
	v.WriteTile(addr, 0xFF, ModeHBlank)
	v.WriteTile(addr+1, 0x00, ModeHBlank)
	for x, got := range v.Tile(0, 5)[3] {
		if got != 1 {
			t.Fatalf("tile 5 row 3 x=%d got %d, want 1", x, got)
		}
	}
	if v.Tile(0, 5)[2] != ([8]byte{}) {
		t.Fatal("adjacent row disturbed")
	}
}

func TestSpriteDecodeDMG(t *testing.T) {
	v := newVideoRAM(false)
	v.WriteSprite(4*2+0, 40, ModeVBlank)
	v.WriteSprite(4*2+1, 30, ModeVBlank)
	v.WriteSprite(4*2+2, 7, ModeVBlank)
	v.WriteSprite(4*2+3, 0xF0, ModeVBlank)

	sp := v.Sprites()[2]
	if sp.Y != 24 || sp.X != 22 {
		t.Fatalf("sprite pos got (%d,%d), want (22,24)", sp.X, sp.Y)
	}
	if sp.TileIndex != 7 {
		t.Fatalf("tile index got %d", sp.TileIndex)
	}
	if sp.AboveBG {
		t.Fatal("priority bit not decoded")
	}
	if !sp.FlipY || !sp.FlipX {
		t.Fatal("flips not decoded")
	}
	if sp.Palette != 1 || sp.VRAMBank != 0 {
		t.Fatalf("dmg palette got %d bank %d", sp.Palette, sp.VRAMBank)
	}
}

func TestSpriteDecodeCGB(t *testing.T) {
	v := newVideoRAM(true)
	v.WriteSprite(3, 0x0D, ModeVBlank) // palette 5, bank 1
	sp := v.Sprites()[0]
	if sp.Palette != 5 || sp.VRAMBank != 1 {
		t.Fatalf("cgb attrs got palette %d bank %d", sp.Palette, sp.VRAMBank)
	}
}

func TestCGBAttrMapInBank1(t *testing.T) {
	v := newVideoRAM(true)
	v.WriteMap(0x10, 0x42, ModeHBlank)

	v.SwitchBank(1)
	v.WriteMap(0x10, 0xE9, ModeHBlank)
	attr := v.AttrMap(0x10)
	if attr.PalIndex != 1 || attr.VRAMBank != 1 || !attr.FlipX || !attr.FlipY || !attr.AboveAll {
		t.Fatalf("attr decode wrong: %+v", attr)
	}

	// bank 0 tile index is untouched
	v.SwitchBank(0)
	if got := v.ReadMap(0x10, ModeHBlank); got != 0x42 {
		t.Fatalf("bank 0 map got %02X, want 42", got)
	}
}

func TestVRAMBankSwitchIgnoredOnDMG(t *testing.T) {
	v := newVideoRAM(false)
	v.SwitchBank(1)
	if v.Bank() != 0 {
		t.Fatal("DMG switched VRAM banks")
	}
}
