package apu

// Noise is channel 4: the LFSR gated by envelope and length counter.
//
// NR41 --LL LLLL  length load (64-L)
// NR42 VVVV APPP  start volume, envelope add mode, period
// NR43 SSSS WDDD  clock shift, width mode, divisor code
// NR44 TL-- ----  trigger, length enable
type Noise struct {
	rand     lfsr
	envelope envelope
	counter  lengthCounter

	on    bool
	dacOn bool
}

func NewNoise() *Noise {
	return &Noise{
		rand:    newLFSR(),
		counter: newLengthCounter(64),
	}
}

func (n *Noise) Next() byte {
	if n.dacOn && n.on {
		return n.envelope.Volume() * n.rand.Next()
	}
	return 0
}

func (n *Noise) SetX1(data byte) {
	n.counter.Set(64 - uint16(data&0x3F))
}

func (n *Noise) SetX2(data byte) {
	n.envelope.SetStartVolume((data & 0xF0) >> 4)
	n.envelope.SetIncrement(data&0x08 != 0)
	n.envelope.SetPeriod(data & 0x07)
	n.dacOn = data&0xF8 != 0
	if !n.dacOn {
		n.on = false
	}
}

func (n *Noise) SetX3(data byte) {
	n.rand.SetState(data)
}

func (n *Noise) SetX4(data byte) {
	n.counter.SetModeOn(data&0x40 != 0)

	if data&0x80 != 0 {
		n.on = true

		n.envelope.Reset()
		n.counter.Reset()
		n.rand.Reset()

		if !n.dacOn {
			n.on = false
		}
	}
}

func (n *Noise) TickLength() {
	if !n.counter.Next() {
		n.on = false
	}
}

func (n *Noise) TickEnvelope() {
	n.envelope.Next()
}

func (n *Noise) On() bool { return n.on }
