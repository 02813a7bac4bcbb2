package cart

import "testing"

// testROM builds a ROM image with a minimal valid header.
func testROM(cartType, romSizeCode, ramSizeCode byte) []byte {
	rom := make([]byte, 0x8000<<romSizeCode)
	copy(rom[0x0134:], "TESTGAME")
	rom[0x0147] = cartType
	rom[0x0148] = romSizeCode
	rom[0x0149] = ramSizeCode

	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	rom[0x014D] = sum
	return rom
}

func TestParseHeader(t *testing.T) {
	rom := testROM(0x03, 0x01, 0x03)
	rom[0x0143] = 0x80
	rom[0x014D] -= 0x80 // 0x0143 lies inside the checksummed range

	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if h.Title != "TESTGAME" {
		t.Fatalf("title got %q", h.Title)
	}
	if h.ROMSizeBytes != 0x10000 || h.ROMBanks != 4 {
		t.Fatalf("rom size got %d banks=%d", h.ROMSizeBytes, h.ROMBanks)
	}
	if h.RAMSizeBytes != 32*1024 {
		t.Fatalf("ram size got %d", h.RAMSizeBytes)
	}
	if h.CGBFlag != 0x80 {
		t.Fatalf("cgb flag got %02X", h.CGBFlag)
	}
	if !HeaderChecksumOK(rom) {
		t.Fatal("checksum rejected")
	}
}

func TestParseHeaderTooSmall(t *testing.T) {
	if _, err := ParseHeader(make([]byte, 0x100)); err == nil {
		t.Fatal("no error for truncated ROM")
	}
}

func TestNewCartridgeSizeMismatch(t *testing.T) {
	rom := testROM(0x00, 0x01, 0x00) // header claims 64 KiB
	if _, err := NewCartridge(rom[:0x8000]); err == nil {
		t.Fatal("no error for size-field mismatch")
	}
}

func TestNewCartridgeUnsupportedMBC(t *testing.T) {
	rom := testROM(0xFE, 0x00, 0x00)
	if _, err := NewCartridge(rom); err == nil {
		t.Fatal("no error for unsupported MBC type")
	}
}

func TestCGBDetection(t *testing.T) {
	for _, tc := range []struct {
		flag byte
		cgb  bool
	}{
		{0x00, false}, {0x80, true}, {0xC0, true}, {0x40, false},
	} {
		rom := testROM(0x00, 0x00, 0x00)
		rom[0x0143] = tc.flag
		c, err := NewCartridge(rom)
		if err != nil {
			t.Fatalf("flag %02X: %v", tc.flag, err)
		}
		if c.CGB() != tc.cgb {
			t.Fatalf("flag %02X: cgb=%v, want %v", tc.flag, c.CGB(), tc.cgb)
		}
	}
}
