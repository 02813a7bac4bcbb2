package apu

// CPU clock in Hz.
const clockSpeed = 4194304

// AudioFreqDivider thins the APU clock (1, 2 or 4) to cut resampler work.
const AudioFreqDivider = 4

// AudioFrequency is the host output sample rate.
const AudioFrequency = 44100

// apuClockRate is the effective generator clock after division.
const apuClockRate = clockSpeed / AudioFreqDivider

// dividedPeriod converts a period expressed in T-cycles into APU clocks.
func dividedPeriod(period uint32) uint32 {
	p := period / AudioFreqDivider
	if p == 0 {
		p = 1
	}
	return p
}

// APU is the four-channel audio unit. Register writes feed the channel
// units; Update runs the generators one APU clock at a time and pushes the
// mixed terminals into the resampler.
type APU struct {
	frameseq frameSequencer
	square1  *Square
	square2  *Square
	wave     *Wave
	noise    *Noise
	mixer    *Mixer

	regs        [0x30]byte
	soundEnable bool

	clockAccum uint32
	resampler  *stereoResampler
}

func New() *APU {
	return &APU{
		frameseq:  newFrameSequencer(),
		square1:   NewSquare(true),
		square2:   NewSquare(false),
		wave:      NewWave(),
		noise:     NewNoise(),
		mixer:     NewMixer(),
		resampler: newStereoResampler(apuClockRate, AudioFrequency),
	}
}

// Read returns an APU register; unreadable bits come back as ones.
func (a *APU) Read(addr uint16) byte {
	offset := addr - 0xFF10
	switch addr {
	// square 1
	case 0xFF10:
		return a.regs[offset] | 0x80
	case 0xFF11:
		return a.regs[offset] | 0x3F
	case 0xFF12:
		return a.regs[offset]
	case 0xFF13:
		return 0xFF
	case 0xFF14:
		return a.regs[offset] | 0xBF

	// square 2
	case 0xFF16:
		return a.regs[offset] | 0x3F
	case 0xFF17:
		return a.regs[offset]
	case 0xFF18:
		return 0xFF
	case 0xFF19:
		return a.regs[offset] | 0xBF

	// wave
	case 0xFF1A:
		return a.regs[offset] | 0x7F
	case 0xFF1B:
		return 0xFF
	case 0xFF1C:
		return a.regs[offset] | 0x9F
	case 0xFF1D:
		return 0xFF
	case 0xFF1E:
		return a.regs[offset] | 0xBF

	// noise
	case 0xFF20:
		return 0xFF
	case 0xFF21, 0xFF22:
		return a.regs[offset]
	case 0xFF23:
		return a.regs[offset] | 0xBF

	case 0xFF24, 0xFF25:
		return a.regs[offset]
	case 0xFF26:
		return a.readControl() | 0x70
	}

	if addr >= 0xFF30 && addr <= 0xFF3F {
		return a.wave.ReadWave(addr - 0xFF30)
	}
	return 0xFF
}

// Write dispatches an APU register write. With sound powered off only
// NR41 and NR52 remain writable.
func (a *APU) Write(addr uint16, data byte) {
	if !a.soundEnable && addr != 0xFF20 && addr != 0xFF26 {
		return
	}
	if addr >= 0xFF10 && addr < 0xFF40 {
		a.regs[addr-0xFF10] = data
	}

	switch addr {
	case 0xFF10:
		a.square1.SetX0(data)
	case 0xFF11:
		a.square1.SetX1(data)
	case 0xFF12:
		a.square1.SetX2(data)
	case 0xFF13:
		a.square1.SetX3(data)
	case 0xFF14:
		a.square1.SetX4(data)

	case 0xFF16:
		a.square2.SetX1(data)
	case 0xFF17:
		a.square2.SetX2(data)
	case 0xFF18:
		a.square2.SetX3(data)
	case 0xFF19:
		a.square2.SetX4(data)

	case 0xFF1A:
		a.wave.SetX0(data)
	case 0xFF1B:
		a.wave.SetX1(data)
	case 0xFF1C:
		a.wave.SetX2(data)
	case 0xFF1D:
		a.wave.SetX3(data)
	case 0xFF1E:
		a.wave.SetX4(data)

	case 0xFF20:
		a.noise.SetX1(data)
	case 0xFF21:
		a.noise.SetX2(data)
	case 0xFF22:
		a.noise.SetX3(data)
	case 0xFF23:
		a.noise.SetX4(data)

	case 0xFF24:
		a.mixer.SetVolume(data)
	case 0xFF25:
		a.mixer.SetOutput(data)

	case 0xFF26:
		if a.soundEnable && data&0x80 == 0 {
			a.soundOff()
		} else if !a.soundEnable && data&0x80 != 0 {
			a.frameseq.SetStep(7)
			a.soundEnable = true
		}

	default:
		if addr >= 0xFF30 && addr <= 0xFF3F {
			a.wave.WriteWave(addr-0xFF30, data)
		}
	}
}

// readControl assembles NR52: power bit plus the four channel-on flags.
func (a *APU) readControl() byte {
	var v byte
	if a.soundEnable {
		v |= 1 << 7
	}
	if a.noise.On() {
		v |= 1 << 3
	}
	if a.wave.On() {
		v |= 1 << 2
	}
	if a.square2.On() {
		v |= 1 << 1
	}
	if a.square1.On() {
		v |= 1 << 0
	}
	return v
}

// soundOff zeroes every register except NR52 and powers the unit down.
func (a *APU) soundOff() {
	for addr := uint16(0xFF10); addr < 0xFF30; addr++ {
		if addr != 0xFF26 {
			a.Write(addr, 0)
		}
	}
	a.soundEnable = false
}

// Update advances the APU by the given number of (speed-scaled) T-cycles.
func (a *APU) Update(clocks uint32) {
	a.clockAccum += clocks
	ticks := a.clockAccum / AudioFreqDivider
	a.clockAccum %= AudioFreqDivider

	for i := uint32(0); i < ticks; i++ {
		if !a.soundEnable {
			a.resampler.Push(128, 128)
			continue
		}
		a.frameSequence()
		left, right := a.mixer.Mix([4]byte{
			a.square1.Next(),
			a.square2.Next(),
			a.wave.Next(),
			a.noise.Next(),
		})
		a.resampler.Push(left, right)
	}
}

func (a *APU) frameSequence() {
	step, ok := a.frameseq.Next()
	if !ok {
		return
	}
	if step%2 == 0 {
		a.square1.TickLength()
		a.square2.TickLength()
		a.wave.TickLength()
		a.noise.TickLength()
	}
	if step == 2 || step == 6 {
		a.square1.TickSweep()
	}
	if step == 7 {
		a.square1.TickEnvelope()
		a.square2.TickEnvelope()
		a.noise.TickEnvelope()
	}
}

// Output drains the pending resampled frames through cb.
func (a *APU) Output(cb func([]int16)) {
	a.resampler.Output(cb)
}

// SamplesEmitted is the monotonically growing frame count, for tests and
// host pacing.
func (a *APU) SamplesEmitted() uint64 { return a.resampler.Total() }
