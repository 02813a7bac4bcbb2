package ui

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/lhartmann/gbc/internal/apu"
	"github.com/lhartmann/gbc/internal/emu"
	"github.com/lhartmann/gbc/internal/joypad"
)

// App runs the emulator inside an ebiten window: one Emulate call per
// Update, framebuffer blit per Draw, audio through an ebiten player fed by
// the APU resampler.
type App struct {
	gb  *emu.GameBoy
	cfg Config

	frame  *ebiten.Image
	pixels []byte

	audioCtx    *audio.Context
	audioPlayer *audio.Player
	stream      *apuStream
}

func NewApp(gb *emu.GameBoy, cfg Config) *App {
	return &App{
		gb:     gb,
		cfg:    cfg,
		frame:  ebiten.NewImage(emu.ScreenWidth, emu.ScreenHeight),
		pixels: make([]byte, emu.ScreenWidth*emu.ScreenHeight*4),
	}
}

// Run opens the window and blocks until it closes; cartridge RAM is saved
// on the way out.
func (a *App) Run() error {
	ebiten.SetWindowSize(emu.ScreenWidth*a.cfg.scale(), emu.ScreenHeight*a.cfg.scale())
	ebiten.SetWindowTitle(a.cfg.Title)
	ebiten.SetTPS(emu.DeviceFPS)

	err := ebiten.RunGame(a)
	if saveErr := a.gb.SaveGame(); err == nil {
		err = saveErr
	}
	return err
}

func (a *App) Update() error {
	if a.audioCtx == nil {
		a.initAudio()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		a.stream.muted = !a.stream.muted
	}

	a.gb.Emulate(emu.CyclesPerFrame, readInput())
	a.gb.APUOutput(a.stream.push)
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	fb := a.gb.FrameBuffer()
	for i := 0; i < emu.ScreenWidth*emu.ScreenHeight; i++ {
		a.pixels[i*4+0] = fb[i*3+0]
		a.pixels[i*4+1] = fb[i*3+1]
		a.pixels[i*4+2] = fb[i*3+2]
		a.pixels[i*4+3] = 0xFF
	}
	a.frame.WritePixels(a.pixels)
	screen.DrawImage(a.frame, nil)
}

func (a *App) Layout(_, _ int) (int, int) {
	return emu.ScreenWidth, emu.ScreenHeight
}

func (a *App) initAudio() {
	a.audioCtx = audio.NewContext(apu.AudioFrequency)
	a.stream = newAPUStream()
	a.stream.muted = a.cfg.Muted

	player, err := a.audioCtx.NewPlayer(a.stream)
	if err != nil {
		return
	}
	a.audioPlayer = player
	a.audioPlayer.SetBufferSize(40 * time.Millisecond)
	a.audioPlayer.Play()
}

func readInput() joypad.State {
	return joypad.State{
		Up:      ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW),
		Down:    ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS),
		Left:    ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA),
		Right:   ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD),
		Start:   ebiten.IsKeyPressed(ebiten.KeyEnter),
		Select:  ebiten.IsKeyPressed(ebiten.KeyShiftRight) || ebiten.IsKeyPressed(ebiten.KeyBackspace),
		ButtonA: ebiten.IsKeyPressed(ebiten.KeyX) || ebiten.IsKeyPressed(ebiten.KeyK),
		ButtonB: ebiten.IsKeyPressed(ebiten.KeyZ) || ebiten.IsKeyPressed(ebiten.KeyJ),
	}
}
