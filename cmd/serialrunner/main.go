package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/lhartmann/gbc/internal/cart"
	"github.com/lhartmann/gbc/internal/emu"
	"github.com/lhartmann/gbc/internal/joypad"
)

// serialrunner executes a test ROM headless and reports the bytes it
// writes to the serial port, the way the Blargg suites signal pass/fail.
func main() {
	romPath := flag.String("rom", "", "path to test ROM")
	frames := flag.Int("frames", 1800, "maximum frames to run")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("usage: serialrunner -rom <path> [-frames n]")
	}

	c, err := cart.LoadCartridge(*romPath)
	if err != nil {
		log.Fatalf("load cartridge: %v", err)
	}

	gb := emu.New(c)
	var out bytes.Buffer
	gb.SetSerialWriter(&out)

	status := 1
	for i := 0; i < *frames; i++ {
		gb.Emulate(emu.CyclesPerFrame, joypad.State{})
		gb.APUOutput(func([]int16) {})

		s := out.String()
		if strings.Contains(s, "Passed") {
			status = 0
			break
		}
		if strings.Contains(s, "Failed") || gb.Stopped() {
			break
		}
	}

	fmt.Print(out.String())
	os.Exit(status)
}
