package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash"

	"github.com/lhartmann/gbc/internal/cart"
	"github.com/lhartmann/gbc/internal/emu"
	"github.com/lhartmann/gbc/internal/joypad"
	"github.com/lhartmann/gbc/internal/ui"
)

type cliFlags struct {
	ROMPath string
	Scale   int
	Title   string
	Muted   bool

	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected framebuffer xxhash64 (hex)
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb/.gbc, archives supported)")
	flag.IntVar(&f.Scale, "scale", 3, "window scale")
	flag.StringVar(&f.Title, "title", "", "window title (default: cartridge title)")
	flag.BoolVar(&f.Muted, "mute", false, "start with audio muted")

	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write last framebuffer to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert framebuffer xxhash64 (hex)")
	flag.Parse()
	return f
}

func runHeadless(gb *emu.GameBoy, frames int, pngPath, expect string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		gb.Emulate(emu.CyclesPerFrame, joypad.State{})
		gb.APUOutput(func([]int16) {})
	}
	dur := time.Since(start)

	fb := gb.FrameBuffer()
	hash := xxhash.Sum64(fb)
	fps := float64(frames) / dur.Seconds()

	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_hash=%016x",
		frames, dur.Truncate(time.Millisecond), fps, hash)

	if pngPath != "" {
		if err := saveFramePNG(fb, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}

	if expect != "" {
		want := strings.TrimPrefix(strings.ToLower(expect), "0x")
		got := fmt.Sprintf("%016x", hash)
		if got != want {
			return fmt.Errorf("framebuffer hash mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func saveFramePNG(rgb []byte, path string) error {
	img := image.NewRGBA(image.Rect(0, 0, emu.ScreenWidth, emu.ScreenHeight))
	for i := 0; i < emu.ScreenWidth*emu.ScreenHeight; i++ {
		img.Pix[i*4+0] = rgb[i*3+0]
		img.Pix[i*4+1] = rgb[i*3+1]
		img.Pix[i*4+2] = rgb[i*3+2]
		img.Pix[i*4+3] = 0xFF
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func main() {
	f := parseFlags()
	if f.ROMPath == "" {
		log.Fatal("usage: gbemu -rom <path>")
	}

	c, err := cart.LoadCartridge(f.ROMPath)
	if err != nil {
		log.Fatalf("load cartridge: %v", err)
	}
	log.Printf("title=%q mbc=0x%02X rom=%dKiB ram=%dKiB cgb=%v",
		c.Title(), c.Header().CartType, c.Header().ROMSizeBytes/1024,
		c.Header().RAMSizeBytes/1024, c.CGB())

	gb := emu.New(c)

	if f.Headless {
		if err := runHeadless(gb, f.Frames, f.PNGOut, f.Expect); err != nil {
			log.Fatal(err)
		}
		return
	}

	title := f.Title
	if title == "" {
		title = c.Title()
	}
	app := ui.NewApp(gb, ui.Config{Title: title, Scale: f.Scale, Muted: f.Muted})
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
