package apu

// Volume codes map to right-shifts: mute, 100%, 50%, 25%.
var waveVolumeShift = [4]byte{4, 0, 1, 2}

// Wave is channel 3: a 32-sample 4-bit table played through a volume
// shifter.
//
// NR30 E--- ----  DAC power
// NR31 LLLL LLLL  length load (256-L)
// NR32 -VV- ----  volume code
// NR33 FFFF FFFF  frequency LSB
// NR34 TL-- -FFF  trigger, length enable, frequency MSB
type Wave struct {
	table   waveTable
	counter lengthCounter

	volumeShift byte

	on    bool
	dacOn bool
}

func NewWave() *Wave {
	return &Wave{
		table:   newWaveTable(),
		counter: newLengthCounter(256),
	}
}

func (w *Wave) Next() byte {
	if w.dacOn && w.on {
		return w.table.Next() >> w.volumeShift
	}
	return 0
}

// WriteWave stores into wave RAM; while the channel runs the table is
// locked and the write is dropped.
func (w *Wave) WriteWave(index uint16, data byte) {
	if !w.on {
		w.table.SetEntry(index, data)
	}
}

// ReadWave returns the addressed sample pair, or the in-flight pair while
// the channel runs.
func (w *Wave) ReadWave(index uint16) byte {
	if w.on {
		return w.table.Current()
	}
	return w.table.Entry(index)
}

func (w *Wave) SetX0(data byte) {
	w.dacOn = data&0x80 != 0
	if !w.dacOn {
		w.on = false
	}
}

func (w *Wave) SetX1(data byte) {
	w.counter.Set(256 - uint16(data))
}

func (w *Wave) SetX2(data byte) {
	w.volumeShift = waveVolumeShift[(data&0x60)>>5]
}

func (w *Wave) SetX3(data byte) {
	freq := w.table.Freq()&0xFF00 | uint32(data)
	w.table.SetFreq(freq, wavePeriod(freq))
}

func (w *Wave) SetX4(data byte) {
	freq := w.table.Freq()&0x00FF | uint32(data&0x07)<<8
	w.table.SetFreq(freq, wavePeriod(freq))

	w.counter.SetModeOn(data&0x40 != 0)

	if data&0x80 != 0 {
		w.on = true

		w.table.Reset()
		w.counter.Reset()

		if !w.dacOn {
			w.on = false
		}
	}
}

func (w *Wave) TickLength() {
	if !w.counter.Next() {
		w.on = false
	}
}

func (w *Wave) On() bool { return w.on }

func wavePeriod(freq uint32) uint32 {
	return dividedPeriod((2048 - freq) * 2)
}
