package apu

// Square is one of the two square channels. Channel 1 carries the sweep
// unit; channel 2 ignores it.
//
// NR10 -PPP NSSS  sweep period, negate, shift
// NRx1 DDLL LLLL  duty, length load (64-L)
// NRx2 VVVV APPP  start volume, envelope add mode, period
// NRx3 FFFF FFFF  frequency LSB
// NRx4 TL-- -FFF  trigger, length enable, frequency MSB
type Square struct {
	duty     duty
	counter  lengthCounter
	envelope envelope
	sweep    sweep

	hasSweep bool
	on       bool
	dacOn    bool
}

func NewSquare(hasSweep bool) *Square {
	return &Square{
		duty:     newDuty(),
		counter:  newLengthCounter(64),
		hasSweep: hasSweep,
	}
}

// Next produces the channel's 4-bit output for one APU clock.
func (s *Square) Next() byte {
	if s.dacOn && s.on {
		return s.envelope.Volume() * s.duty.Next()
	}
	return 0
}

func (s *Square) SetX0(data byte) {
	if !s.hasSweep {
		return
	}
	s.sweep.period = (data & 0x70) >> 4
	s.sweep.negate = data&0x08 != 0
	s.sweep.shift = data & 0x07
}

func (s *Square) SetX1(data byte) {
	s.duty.SetDuty((data & 0xC0) >> 6)
	s.counter.Set(64 - uint16(data&0x3F))
}

func (s *Square) SetX2(data byte) {
	s.envelope.SetStartVolume((data & 0xF0) >> 4)
	s.envelope.SetIncrement(data&0x08 != 0)
	s.envelope.SetPeriod(data & 0x07)
	s.dacOn = data&0xF8 != 0
	if !s.dacOn {
		s.on = false
	}
}

func (s *Square) SetX3(data byte) {
	freq := s.duty.Freq()&0xFF00 | uint32(data)
	s.duty.SetFreq(freq, squarePeriod(freq))
}

func (s *Square) SetX4(data byte) {
	freq := s.duty.Freq()&0x00FF | uint32(data&0x07)<<8
	s.duty.SetFreq(freq, squarePeriod(freq))

	s.counter.SetModeOn(data&0x40 != 0)

	if data&0x80 != 0 {
		s.on = true

		s.duty.ResetTimer()
		s.envelope.Reset()
		s.counter.Reset()

		if s.hasSweep && !s.sweep.Trigger(s.duty.Freq()) {
			s.on = false
		}
		if !s.dacOn {
			s.on = false
		}
	}
}

func (s *Square) TickLength() {
	if !s.counter.Next() {
		s.on = false
	}
}

func (s *Square) TickSweep() {
	if s.hasSweep && !s.sweep.Next(&s.duty) {
		s.on = false
	}
}

func (s *Square) TickEnvelope() {
	s.envelope.Next()
}

func (s *Square) On() bool { return s.on }

// squarePeriod is the frequency timer period in APU clocks.
func squarePeriod(freq uint32) uint32 {
	return dividedPeriod((2048 - freq) * 4)
}
