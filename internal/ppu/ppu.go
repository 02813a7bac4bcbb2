package ppu

import (
	"sort"

	"github.com/lhartmann/gbc/internal/interrupt"
)

const (
	// ScreenWidth and ScreenHeight are the LCD dimensions in pixels.
	ScreenWidth  = 160
	ScreenHeight = 144

	maxSpritesPerLine = 10
	frameBufferSize   = ScreenWidth * ScreenHeight * 3
)

// Mode is the scanline state machine position, as exposed in STAT bits 0-1.
type Mode byte

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOamSearch
	ModeTransfer
)

// LCDC bits.
const (
	lcdcLCDOn      = 1 << 7
	lcdcWindowMap  = 1 << 6
	lcdcWindowOn   = 1 << 5
	lcdcTileTable  = 1 << 4
	lcdcBGMap      = 1 << 3
	lcdcObjectSize = 1 << 2
	lcdcObjectOn   = 1 << 1
	lcdcBGOn       = 1 << 0
)

// STAT bits (the writable interrupt enables plus the coincidence flag).
const (
	statScanlineInt = 1 << 6
	statOAMInt      = 1 << 5
	statVBlankInt   = 1 << 4
	statHBlankInt   = 1 << 3
	statCoincidence = 1 << 2
)

type fetchState int

const (
	fetchReadTile fetchState = iota
	fetchReadData0
	fetchReadData1
	fetchPush
)

type fifoPixel struct {
	attr  BGAttr
	value byte
}

// fetcher is the background/window pixel pipeline: a four-state machine
// advancing every two dots that refills the FIFO one tile row at a time.
type fetcher struct {
	ticks       int
	state       fetchState
	tileIndex   int
	tileAttr    BGAttr
	fx          int
	fy          int
	scxDiscard  int
	windowStart bool
	fbOffset    int

	fifo [32]fifoPixel
	head int
	size int
}

func (f *fetcher) fifoPush(p fifoPixel) {
	f.fifo[(f.head+f.size)%len(f.fifo)] = p
	f.size++
}

func (f *fetcher) fifoPop() fifoPixel {
	p := f.fifo[f.head]
	f.head = (f.head + 1) % len(f.fifo)
	f.size--
	return p
}

// PPU owns VRAM, OAM, the LCD registers and the double-buffered frame
// output. Update drives the scanline machine and raises VBlank/LCD
// interrupts on the shared controller.
type PPU struct {
	frameBuffer [frameBufferSize]byte
	backBuffer  [frameBufferSize]byte

	vram *videoRAM

	lcdc byte
	stat byte
	mode Mode

	scy  byte
	scx  byte
	ly   byte
	lyc  byte
	winy byte
	winx byte

	hdmaAvailable bool
	bgPalette     *Palette
	objPalette    *Palette
	cgb           bool

	currentX int
	bgAbove  [ScreenWidth]bool
	bgB00    [ScreenWidth]bool

	clocks uint32
	fet    fetcher
}

func New(cgb bool) *PPU {
	return &PPU{
		vram:       newVideoRAM(cgb),
		mode:       ModeTransfer,
		bgPalette:  newPalette(cgb),
		objPalette: newPalette(cgb),
		cgb:        cgb,
	}
}

// Mode returns the current scanline mode.
func (p *PPU) Mode() Mode { return p.mode }

// LY returns the raw line counter, for tests.
func (p *PPU) LY() byte { return p.ly }

func (p *PPU) fetcherReset(windowStart bool) {
	p.fet.ticks = 0
	p.fet.tileIndex = 0
	p.fet.fx = 0
	p.fet.fy = 0
	p.fet.scxDiscard = 0
	p.fet.windowStart = windowStart
	p.fet.state = fetchReadTile
	p.fet.head = 0
	p.fet.size = 0

	if !windowStart {
		p.currentX = 0
		p.fet.scxDiscard = int(p.scx) & 0x07
		p.fet.fbOffset = int(p.ly) * ScreenWidth * 3
	}
}

func (p *PPU) pixelFetch() {
	p.fet.ticks++
	if p.fet.ticks == 2 {
		p.fet.ticks = 0

		switch p.fet.state {
		case fetchReadTile:
			var index int
			var mapSel bool
			if p.fet.windowStart {
				p.fet.fy = int(p.ly - p.winy)
				index = p.fet.fx
				mapSel = p.lcdc&lcdcWindowMap != 0
			} else {
				p.fet.fy = int(p.ly+p.scy) & 0xFF
				index = (int(p.scx)/8 + p.fet.fx) & 0x1F
				mapSel = p.lcdc&lcdcBGMap != 0
			}

			mapIndex := p.fet.fy/8*32 + index
			if mapSel {
				mapIndex += 0x400
			}
			tile := p.vram.TileMap(mapIndex)
			if p.lcdc&lcdcTileTable == 0 && tile < 0x80 {
				tile += 0x100
			}
			p.fet.tileIndex = tile
			p.fet.tileAttr = p.vram.AttrMap(mapIndex)

			p.fet.state = fetchReadData0
		case fetchReadData0:
			p.fet.state = fetchReadData1
		case fetchReadData1:
			p.fet.state = fetchPush
		case fetchPush:
			flip := 0
			if p.fet.tileAttr.FlipY {
				flip = 7
			}
			tileY := (p.fet.fy & 0x07) ^ flip

			var row [8]byte
			if p.cgb || p.lcdc&lcdcBGOn != 0 || p.fet.windowStart {
				row = p.vram.Tile(p.fet.tileAttr.VRAMBank, p.fet.tileIndex)[tileY]
			} else {
				// background disabled on DMG: a row of color 0
				p.fet.tileAttr = BGAttr{}
			}

			if p.fet.tileAttr.FlipX {
				for i := 7; i >= 0; i-- {
					p.fet.fifoPush(fifoPixel{p.fet.tileAttr, row[i]})
				}
			} else {
				for i := 0; i < 8; i++ {
					p.fet.fifoPush(fifoPixel{p.fet.tileAttr, row[i]})
				}
			}

			p.fet.fx++
			p.fet.state = fetchReadTile
		}
	}

	if !p.fet.windowStart && p.lcdc&lcdcWindowOn != 0 && p.ly >= p.winy {
		wx := 0
		if p.winx > 7 {
			wx = int(p.winx) - 7
		}
		if p.currentX >= wx {
			p.fetcherReset(true)
		}
	}

	if p.fet.size > 0 {
		px := p.fet.fifoPop()

		if p.fet.scxDiscard > 0 {
			p.fet.scxDiscard--
		} else {
			color := p.bgPalette.ColorAt(px.attr.PalIndex, px.value)
			copy(p.frameBuffer[p.fet.fbOffset:p.fet.fbOffset+3], color[:])

			p.bgAbove[p.currentX] = px.attr.AboveAll
			p.bgB00[p.currentX] = px.value == 0

			p.currentX++
			p.fet.fbOffset += 3
		}
	}

	if p.currentX == ScreenWidth {
		p.composeSprites()
	}
}

// composeSprites overlays this line's sprites onto the finished background
// pixels, honoring the per-pixel priority recorded during the fetch.
func (p *PPU) composeSprites() {
	if p.lcdc&lcdcObjectOn == 0 {
		return
	}

	fbOffset := int(p.ly) * ScreenWidth * 3
	spriteAbove := p.cgb && p.lcdc&lcdcBGOn == 0

	spriteSize := int16(8)
	if p.lcdc&lcdcObjectSize != 0 {
		spriteSize = 16
	}
	ly := int16(p.ly)

	var line []*Sprite
	all := p.vram.Sprites()
	for i := range all {
		sp := &all[i]
		if sp.Y <= ly && sp.Y+spriteSize > ly && sp.X+8 >= 0 && sp.X < ScreenWidth {
			line = append(line, sp)
			if len(line) == maxSpritesPerLine {
				break
			}
		}
	}
	if !p.cgb {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
	}

	// draw in reverse so the smaller X (or lower OAM index) ends on top
	for i := len(line) - 1; i >= 0; i-- {
		sp := line[i]
		spriteY := int(ly - sp.Y)

		flipY := 0
		if sp.FlipY {
			flipY = 7
		}
		tileY := (spriteY & 0x07) ^ flipY

		tileIndex := int(sp.TileIndex)
		if spriteSize == 16 {
			if sp.FlipY != (spriteY < 8) {
				tileIndex &= 0xFE
			} else {
				tileIndex |= 0x01
			}
		}
		tile := p.vram.Tile(sp.VRAMBank, tileIndex)

		for x := 0; x < 8; x++ {
			screenX := int(sp.X) + x
			if screenX < 0 || screenX >= ScreenWidth {
				continue
			}
			tileX := x
			if sp.FlipX {
				tileX = x ^ 7
			}
			value := tile[tileY][tileX]
			if value == 0 {
				continue
			}
			if spriteAbove || (!p.bgAbove[screenX] && sp.AboveBG) || p.bgB00[screenX] {
				color := p.objPalette.ColorAt(sp.Palette, value)
				off := fbOffset + screenX*3
				copy(p.frameBuffer[off:off+3], color[:])
			}
		}
	}
}

// Update advances the scanline machine by the given (speed-scaled) clocks.
//
//	OamSearch  Transfer  HBlank    VBlank
//	   80        172+     to 456   10 x 456
func (p *PPU) Update(clocks uint32, ic *interrupt.Controller) {
	if p.lcdc&lcdcLCDOn == 0 {
		return
	}
	p.clocks += clocks

	statInterrupt := false

	switch p.mode {
	case ModeOamSearch:
		if p.clocks >= 80 {
			p.clocks -= 80
			p.mode = ModeTransfer

			for i := range p.bgAbove {
				p.bgAbove[i] = false
				p.bgB00[i] = false
			}
			p.fetcherReset(false)
		}
	case ModeTransfer:
		for i := uint32(0); i < clocks; i++ {
			if p.currentX < ScreenWidth {
				p.pixelFetch()
			} else {
				p.mode = ModeHBlank
				p.hdmaAvailable = true
				statInterrupt = p.stat&statHBlankInt != 0
				break
			}
		}
	case ModeHBlank:
		if p.clocks >= 376 {
			p.clocks -= 376

			p.ly++
			p.checkLYC(ic)

			if p.ly == ScreenHeight {
				p.mode = ModeVBlank
				ic.Request(interrupt.VBlank)
				statInterrupt = p.stat&statVBlankInt != 0

				p.frameBuffer, p.backBuffer = p.backBuffer, p.frameBuffer
			} else {
				p.mode = ModeOamSearch
				statInterrupt = p.stat&statOAMInt != 0
			}

			p.hdmaAvailable = false
		}
	case ModeVBlank:
		if p.clocks >= 456 {
			p.clocks -= 456

			p.ly++
			if p.ly == 154 {
				p.ly = 0
				p.mode = ModeOamSearch
				statInterrupt = p.stat&statOAMInt != 0
			}
			p.checkLYC(ic)
		}
	}

	if statInterrupt {
		ic.Request(interrupt.LCD)
	}
}

func (p *PPU) checkLYC(ic *interrupt.Controller) {
	if p.ly == p.lyc {
		p.stat |= statCoincidence
		if p.stat&statScanlineInt != 0 {
			ic.Request(interrupt.LCD)
		}
	} else {
		p.stat &^= statCoincidence
	}
}

// Read serves VRAM, OAM and the PPU register ports.
func (p *PPU) Read(addr uint16) byte {
	a := int(addr)
	switch {
	case addr >= 0x8000 && addr <= 0x97FF:
		return p.vram.ReadTile(a-0x8000, p.mode)
	case addr >= 0x9800 && addr <= 0x9FFF:
		return p.vram.ReadMap(a-0x9800, p.mode)
	case addr >= 0xFE00 && addr <= 0xFE9F:
		return p.vram.ReadSprite(a-0xFE00, p.mode)
	}

	switch addr {
	case 0xFF40:
		return p.lcdc
	case 0xFF41:
		return 0x80 | p.stat | byte(p.mode)
	case 0xFF42:
		return p.scy
	case 0xFF43:
		return p.scx
	case 0xFF44:
		// line 153 reports zero early; the scanline still runs 456 clocks
		return p.ly % 153
	case 0xFF45:
		return p.lyc
	case 0xFF47:
		return p.bgPalette.ReadDMG(0)
	case 0xFF48:
		return p.objPalette.ReadDMG(0)
	case 0xFF49:
		return p.objPalette.ReadDMG(1)
	case 0xFF4A:
		return p.winy
	case 0xFF4B:
		return p.winx
	}

	if p.cgb {
		switch addr {
		case 0xFF4F:
			return p.vram.Bank() | 0xFE
		case 0xFF68:
			return p.bgPalette.ReadIndex()
		case 0xFF69:
			return p.bgPalette.ReadData()
		case 0xFF6A:
			return p.objPalette.ReadIndex()
		case 0xFF6B:
			return p.objPalette.ReadData()
		}
	}
	return 0xFF
}

// Write serves VRAM, OAM and the PPU register ports.
func (p *PPU) Write(addr uint16, data byte) {
	a := int(addr)
	switch {
	case addr >= 0x8000 && addr <= 0x97FF:
		p.vram.WriteTile(a-0x8000, data, p.mode)
		return
	case addr >= 0x9800 && addr <= 0x9FFF:
		p.vram.WriteMap(a-0x9800, data, p.mode)
		return
	case addr >= 0xFE00 && addr <= 0xFE9F:
		p.vram.WriteSprite(a-0xFE00, data, p.mode)
		return
	}

	switch addr {
	case 0xFF40:
		if data&lcdcLCDOn == 0 {
			p.ly = 0
			p.clocks = 0
			p.mode = ModeHBlank
		}
		p.lcdc = data
	case 0xFF41:
		p.stat = p.stat&statCoincidence | data&0x78
	case 0xFF42:
		p.scy = data
	case 0xFF43:
		p.scx = data
	case 0xFF44:
		// LY is read-only
	case 0xFF45:
		p.lyc = data
	case 0xFF47:
		if !p.cgb {
			p.bgPalette.WriteDMG(0, data)
		}
	case 0xFF48:
		if !p.cgb {
			p.objPalette.WriteDMG(0, data)
		}
	case 0xFF49:
		if !p.cgb {
			p.objPalette.WriteDMG(1, data)
		}
	case 0xFF4A:
		p.winy = data
	case 0xFF4B:
		p.winx = data
	case 0xFF4F:
		p.vram.SwitchBank(data)
	case 0xFF68:
		if p.cgb {
			p.bgPalette.WriteIndex(data)
		}
	case 0xFF69:
		if p.cgb {
			p.bgPalette.WriteData(data)
		}
	case 0xFF6A:
		if p.cgb {
			p.objPalette.WriteIndex(data)
		}
	case 0xFF6B:
		if p.cgb {
			p.objPalette.WriteData(data)
		}
	}
}

// FrameBuffer returns the completed frame as RGB24 bytes. The slice stays
// stable until the next VBlank swap.
func (p *PPU) FrameBuffer() []byte {
	return p.backBuffer[:]
}

// DMAWrite is the OAM DMA sink: gating never applies to the copy engine.
func (p *PPU) DMAWrite(offset uint16, data byte) {
	p.vram.WriteSprite(int(offset), data, ModeVBlank)
}

// HDMAWrite stores one HDMA byte into VRAM, bypassing mode gating.
func (p *PPU) HDMAWrite(addr uint16, data byte) {
	a := int(addr)
	switch {
	case addr >= 0x8000 && addr <= 0x97FF:
		p.vram.WriteTile(a-0x8000, data, ModeVBlank)
	case addr >= 0x9800 && addr <= 0x9FFF:
		p.vram.WriteMap(a-0x9800, data, ModeVBlank)
	}
}

// HDMAAvailable consumes the HBlank-entry flag the HDMA engine polls.
func (p *PPU) HDMAAvailable() bool {
	ret := p.hdmaAvailable
	p.hdmaAvailable = false
	return ret
}
