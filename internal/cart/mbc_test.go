package cart

import (
	"os"
	"testing"
)

// stampBanks marks the first byte of every 16 KiB bank with its number.
func stampBanks(rom []byte) {
	for bank := 0; bank*0x4000 < len(rom); bank++ {
		rom[bank*0x4000] = byte(bank)
	}
}

func TestMBC1BankSwitching(t *testing.T) {
	rom := testROM(0x03, 0x05, 0x03) // 1 MiB, 32 KiB RAM
	stampBanks(rom)
	m := NewMBC1(len(rom), 32*1024)

	if got := m.Read(rom, 0x4000); got != 1 {
		t.Fatalf("default bank got %d, want 1", got)
	}

	m.Write(0x2000, 0x05)
	if got := m.Read(rom, 0x4000); got != 5 {
		t.Fatalf("bank 5 got %d", got)
	}

	// writing zero selects bank 1
	m.Write(0x2000, 0x00)
	if got := m.Read(rom, 0x4000); got != 1 {
		t.Fatalf("bank 0 write got %d, want 1", got)
	}

	// high bits land at bit 5 in ROM mode
	m.Write(0x2000, 0x01)
	m.Write(0x4000, 0x01)
	if got := m.Read(rom, 0x4000); got != 0x21 {
		t.Fatalf("bank 0x21 got %d", got)
	}

	// 0x20 remaps to 0x21
	m.Write(0x2000, 0x00)
	if got := m.Read(rom, 0x4000); got != 0x21 {
		t.Fatalf("bank 0x20 remap got %d, want 0x21", got)
	}
}

func TestMBC1RAMEnableAndBanking(t *testing.T) {
	m := NewMBC1(0x8000, 32*1024)
	rom := make([]byte, 0x8000)

	m.Write(0xA000, 0x42)
	if got := m.Read(rom, 0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read got %02X, want FF", got)
	}

	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x42)
	if got := m.Read(rom, 0xA000); got != 0x42 {
		t.Fatalf("enabled RAM read got %02X, want 42", got)
	}

	// RAM banking mode
	m.Write(0x6000, 0x01)
	m.Write(0x4000, 0x02)
	m.Write(0xA000, 0x55)
	m.Write(0x4000, 0x00)
	if got := m.Read(rom, 0xA000); got != 0x42 {
		t.Fatalf("bank 0 disturbed: %02X", got)
	}
	m.Write(0x4000, 0x02)
	if got := m.Read(rom, 0xA000); got != 0x55 {
		t.Fatalf("bank 2 read got %02X, want 55", got)
	}

	// any non-0x0A low nibble disables
	m.Write(0x0000, 0x00)
	if got := m.Read(rom, 0xA000); got != 0xFF {
		t.Fatalf("re-disabled RAM read got %02X, want FF", got)
	}
}

func TestMBC2BuiltinRAM(t *testing.T) {
	rom := testROM(0x06, 0x02, 0x00) // 128 KiB
	stampBanks(rom)
	m := NewMBC2(len(rom))

	// enable needs address bit 8 clear
	m.Write(0x0100, 0x0A)
	m.Write(0xA000, 0x0F)
	if got := m.Read(rom, 0xA000); got != 0xFF {
		t.Fatal("RAM enabled through A8=1 write")
	}
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0xFF)
	if got := m.Read(rom, 0xA000); got != 0x0F {
		t.Fatalf("nibble RAM got %02X, want 0F", got)
	}

	// bank select needs address bit 8 set; the A8=1 write of 0x0A at 0x0100
	// above already selected bank 0x0A % 8 = 2
	m.Write(0x2000, 0x03)
	if got := m.Read(rom, 0x4000); got != 2 {
		t.Fatalf("bank changed through A8=0 write: %d, want 2", got)
	}
	m.Write(0x2100, 0x03)
	if got := m.Read(rom, 0x4000); got != 3 {
		t.Fatalf("bank 3 got %d", got)
	}
	m.Write(0x2100, 0x00)
	if got := m.Read(rom, 0x4000); got != 1 {
		t.Fatalf("bank 0 write got %d, want 1", got)
	}
}

func TestMBC5NineBitBank(t *testing.T) {
	rom := testROM(0x19, 0x07, 0x04) // 4 MiB, 128 KiB RAM
	stampBanks(rom)
	m := NewMBC5(len(rom), 128*1024)

	m.Write(0x2000, 0x48)
	if got := m.Read(rom, 0x4000); got != 0x48 {
		t.Fatalf("bank 0x48 got %d", got)
	}
	m.Write(0x3000, 0x01)
	if got := m.Read(rom, 0x4000); got != 0x48 {
		// bank 0x148 wraps modulo 256 banks
		t.Fatalf("9-bit bank wrap got %d, want 0x48", got)
	}

	m.Write(0x0000, 0x0A)
	m.Write(0x4000, 0x0F)
	m.Write(0xA000, 0x77)
	m.Write(0x4000, 0x00)
	m.Write(0x4000, 0x0F)
	if got := m.Read(rom, 0xA000); got != 0x77 {
		t.Fatalf("RAM bank 15 got %02X, want 77", got)
	}
}

func TestSaveAndLoadGame(t *testing.T) {
	dir := t.TempDir()
	old, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(old)

	rom := testROM(0x03, 0x00, 0x03)
	c, err := NewCartridge(rom)
	if err != nil {
		t.Fatal(err)
	}
	c.Write(0x0000, 0x0A)
	c.Write(0xA000, 0x99)
	if err := c.SaveGame(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat("testgame.sav"); err != nil {
		t.Fatalf("save file missing: %v", err)
	}

	c2, err := NewCartridge(rom)
	if err != nil {
		t.Fatal(err)
	}
	c2.loadSave()
	c2.Write(0x0000, 0x0A)
	if got := c2.Read(0xA000); got != 0x99 {
		t.Fatalf("restored RAM got %02X, want 99", got)
	}
}
