package cart

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// MemoryBankController maps CPU addresses onto the cartridge ROM and any
// external RAM. The ROM bytes stay owned by the Cartridge; the controller
// only keeps banking registers and its RAM buffer.
type MemoryBankController interface {
	// Read serves ROM (0x0000-0x7FFF) and external RAM (0xA000-0xBFFF).
	Read(rom []byte, addr uint16) byte
	// Write handles banking control writes (0x0000-0x7FFF) and external
	// RAM writes (0xA000-0xBFFF).
	Write(addr uint16, data byte)
	// RAM returns the battery-backed RAM bytes, or nil when the
	// cartridge has none.
	RAM() []byte
}

// Cartridge owns the immutable ROM image and the MBC that banks it.
type Cartridge struct {
	rom []byte
	mbc MemoryBankController

	header *Header
	title  string
	cgb    bool
}

// NewCartridge builds a cartridge from raw ROM bytes, selecting the MBC
// from the header type code.
func NewCartridge(rom []byte) (*Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}
	if h.ROMSizeBytes != len(rom) {
		return nil, fmt.Errorf("cart: ROM size field says %d bytes, image has %d", h.ROMSizeBytes, len(rom))
	}

	var mbc MemoryBankController
	switch h.CartType {
	case 0x00:
		mbc = NewMBC0()
	case 0x01, 0x02, 0x03:
		mbc = NewMBC1(len(rom), h.RAMSizeBytes)
	case 0x05, 0x06:
		mbc = NewMBC2(len(rom))
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		mbc = NewMBC3(len(rom), h.RAMSizeBytes)
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		mbc = NewMBC5(len(rom), h.RAMSizeBytes)
	default:
		return nil, fmt.Errorf("cart: unsupported MBC type 0x%02X", h.CartType)
	}

	return &Cartridge{
		rom:    rom,
		mbc:    mbc,
		header: h,
		title:  h.Title,
		cgb:    h.CGBFlag == 0x80 || h.CGBFlag == 0xC0,
	}, nil
}

// LoadCartridge reads a ROM image from disk (decompressing archives if
// needed), builds the cartridge, and pulls in an existing save file.
func LoadCartridge(path string) (*Cartridge, error) {
	rom, err := readROMFile(path)
	if err != nil {
		return nil, fmt.Errorf("cart: load %s: %w", path, err)
	}
	c, err := NewCartridge(rom)
	if err != nil {
		return nil, err
	}
	c.loadSave()
	return c, nil
}

func (c *Cartridge) Read(addr uint16) byte {
	return c.mbc.Read(c.rom, addr)
}

func (c *Cartridge) Write(addr uint16, data byte) {
	c.mbc.Write(addr, data)
}

// Title returns the header title, trimmed at the first NUL.
func (c *Cartridge) Title() string { return c.title }

// CGB reports whether the cartridge requests Game Boy Color mode.
func (c *Cartridge) CGB() bool { return c.cgb }

// Header exposes the parsed header for logging.
func (c *Cartridge) Header() *Header { return c.header }

// savePath is <title-lowercased>.sav in the working directory.
func (c *Cartridge) savePath() string {
	return strings.ToLower(c.title) + ".sav"
}

// SaveGame persists the battery-backed RAM. Cartridges without RAM are a
// no-op.
func (c *Cartridge) SaveGame() error {
	ram := c.mbc.RAM()
	if len(ram) == 0 {
		return nil
	}
	if err := os.WriteFile(c.savePath(), ram, 0o644); err != nil {
		return fmt.Errorf("cart: save %s: %w", c.savePath(), err)
	}
	return nil
}

func (c *Cartridge) loadSave() {
	ram := c.mbc.RAM()
	if len(ram) == 0 {
		return
	}
	data, err := os.ReadFile(c.savePath())
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("cart: read save %s: %v", c.savePath(), err)
		}
		return
	}
	copy(ram, data)
}
