package apu

// tickTimer is the down-counter every generator runs on. Tick returns true
// when the period elapses and the counter reloads.
type tickTimer struct {
	period  uint32
	counter uint32
}

func (t *tickTimer) Tick() bool {
	if t.counter > 0 {
		t.counter--
		return false
	}
	t.counter = t.period
	return true
}

func (t *tickTimer) SetPeriod(period uint32) { t.period = period }
func (t *tickTimer) Reset()                  { t.counter = t.period }

// frameSequencer emits the 8-step 512 Hz pattern driving length counters
// (steps 0,2,4,6), sweep (2,6) and envelopes (7).
type frameSequencer struct {
	timer tickTimer
	step  byte
}

func newFrameSequencer() frameSequencer {
	return frameSequencer{
		timer: tickTimer{period: apuClockRate / 512},
		step:  7,
	}
}

func (f *frameSequencer) Next() (byte, bool) {
	if f.timer.Tick() {
		f.step = (f.step + 1) % 8
		return f.step, true
	}
	return 0, false
}

func (f *frameSequencer) SetStep(step byte) { f.step = step }

// lengthCounter counts down on even frame-sequencer steps while enabled;
// hitting zero silences the channel.
type lengthCounter struct {
	counter uint16
	maxLen  uint16
	on      bool
}

func newLengthCounter(maxLen uint16) lengthCounter {
	return lengthCounter{maxLen: maxLen}
}

// Next returns false when the counter expires this step.
func (l *lengthCounter) Next() bool {
	if l.on && l.counter > 0 {
		l.counter--
		if l.counter == 0 {
			return false
		}
	}
	return true
}

func (l *lengthCounter) Reset() {
	if l.counter == 0 {
		l.counter = l.maxLen
	}
}

func (l *lengthCounter) Set(counter uint16) { l.counter = counter }
func (l *lengthCounter) SetModeOn(on bool)  { l.on = on }

// envelope steps the 4-bit volume on frame-sequencer step 7. Volume
// saturates in [0..15]; hitting the rail stops the counter.
type envelope struct {
	period  byte
	counter byte

	volume      byte
	startVolume byte

	increment bool
}

func (e *envelope) Next() {
	if e.period == 0 || e.counter == 0 {
		return
	}
	e.counter--
	if e.counter != 0 {
		return
	}
	e.counter = e.period

	var v byte
	if e.increment {
		v = e.volume + 1
	} else {
		v = e.volume - 1
	}
	if v < 16 {
		e.volume = v
	} else {
		e.counter = 0
	}
}

func (e *envelope) Volume() byte { return e.volume }

func (e *envelope) Reset() {
	if e.period > 0 {
		e.counter = e.period
	} else {
		e.counter = 8
	}
	e.volume = e.startVolume
}

func (e *envelope) SetStartVolume(v byte)  { e.startVolume = v }
func (e *envelope) SetPeriod(p byte)       { e.period = p }
func (e *envelope) SetIncrement(inc bool)  { e.increment = inc }

var squareWave = [4][8]byte{
	{0, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 0, 0, 0, 0, 0, 1},
	{1, 0, 0, 0, 0, 1, 1, 1},
	{0, 1, 1, 1, 1, 1, 1, 0},
}

// duty walks one of the four 8-entry square patterns at the frequency
// timer rate.
type duty struct {
	pattern int
	step    int

	freq  uint32
	timer tickTimer
}

func newDuty() duty {
	return duty{timer: tickTimer{period: ^uint32(0)}}
}

func (d *duty) Next() byte {
	if d.timer.Tick() {
		d.step = (d.step + 1) % 8
	}
	return squareWave[d.pattern][d.step]
}

func (d *duty) SetDuty(p byte) { d.pattern = int(p & 0x03) }

func (d *duty) SetFreq(freq, period uint32) {
	d.freq = freq
	d.timer.SetPeriod(period)
}

func (d *duty) Freq() uint32    { return d.freq }
func (d *duty) ResetTimer()     { d.timer.Reset() }

// sweep recomputes the square-1 frequency on steps 2 and 6. A computed
// frequency above 2047 turns the channel off.
type sweep struct {
	period  byte
	counter byte

	negate bool
	shift  byte

	shadowFreq uint32
}

// Next returns false when the channel must be disabled by overflow.
func (s *sweep) Next(d *duty) bool {
	if s.period == 0 || s.counter == 0 {
		return true
	}
	s.counter--
	if s.counter != 0 {
		return true
	}
	s.resetCounter()

	next := s.calcFreq()
	if next > 2047 {
		return false
	}
	if s.shift > 0 {
		s.shadowFreq = next
		d.SetFreq(next, squarePeriod(next))
		if s.calcFreq() > 2047 {
			return false
		}
	}
	return true
}

func (s *sweep) calcFreq() uint32 {
	delta := s.shadowFreq >> s.shift
	if s.negate {
		return s.shadowFreq - delta
	}
	return s.shadowFreq + delta
}

// Trigger reloads the shadow register; it returns false when the
// pre-computed next frequency already overflows.
func (s *sweep) Trigger(freq uint32) bool {
	s.shadowFreq = freq
	s.resetCounter()
	if s.period > 0 && s.shift > 0 && s.calcFreq() > 2047 {
		return false
	}
	return true
}

func (s *sweep) resetCounter() {
	if s.period == 0 {
		s.counter = 8
	} else {
		s.counter = s.period
	}
}

var noiseDivisor = [8]uint32{8, 16, 32, 48, 64, 80, 96, 112}

// lfsr is the 15-bit linear-feedback register of the noise channel. In
// 7-bit width mode the feedback bit also lands in bit 6.
type lfsr struct {
	timer tickTimer

	reg    uint16
	width7 bool
}

func newLFSR() lfsr {
	return lfsr{reg: 0x7FFF}
}

func (l *lfsr) Next() byte {
	if l.timer.Tick() {
		l.randomize()
	}
	return byte(^l.reg & 0x01)
}

func (l *lfsr) randomize() {
	x := (l.reg>>1 ^ l.reg) & 0x01
	l.reg >>= 1
	if l.width7 {
		l.reg = l.reg&0x3FBF | x<<14 | x<<6
	} else {
		l.reg = l.reg&0x3FFF | x<<14
	}
}

func (l *lfsr) SetState(data byte) {
	l.width7 = data&0x08 != 0
	shift := (data & 0xF0) >> 4
	code := data & 0x07
	l.timer.SetPeriod(dividedPeriod(noiseDivisor[code] << shift))
}

func (l *lfsr) Reset() {
	l.timer.Reset()
	l.reg = 0x7FFF
}

// Power-up contents of wave RAM.
var waveInitTable = [32]byte{
	0x08, 0x04, 0x04, 0x00, 0x04, 0x03, 0x0A, 0x0A,
	0x02, 0x0D, 0x07, 0x08, 0x09, 0x02, 0x03, 0x0C,
	0x06, 0x00, 0x05, 0x09, 0x05, 0x09, 0x0B, 0x00,
	0x03, 0x04, 0x0B, 0x08, 0x02, 0x0E, 0x0D, 0x0A,
}

// waveTable plays 32 4-bit samples; reads while the channel runs see the
// sample pair currently in the shift buffer.
type waveTable struct {
	timer tickTimer
	freq  uint32

	index  int
	table  [32]byte
	sample byte
}

func newWaveTable() waveTable {
	return waveTable{table: waveInitTable}
}

func (w *waveTable) Next() byte {
	if w.timer.Tick() {
		w.index = (w.index + 1) % 32
		w.sample = w.table[w.index]
	}
	return w.sample
}

func (w *waveTable) SetEntry(index uint16, data byte) {
	i := int(index) * 2
	w.table[i] = data >> 4
	w.table[i+1] = data & 0x0F
}

func (w *waveTable) Entry(index uint16) byte {
	i := int(index) * 2
	return w.table[i]<<4 | w.table[i+1]
}

func (w *waveTable) Current() byte {
	i := w.index &^ 0x01
	return w.table[i]<<4 | w.table[i+1]
}

func (w *waveTable) SetFreq(freq, period uint32) {
	w.freq = freq
	w.timer.SetPeriod(period)
}

func (w *waveTable) Freq() uint32 { return w.freq }

func (w *waveTable) Reset() {
	w.index = 0
	w.sample = 0
	w.timer.Reset()
}
