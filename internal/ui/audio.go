package ui

import (
	"encoding/binary"
	"sync"

	"github.com/lhartmann/gbc/internal/apu"
)

// apuStream buffers the frames drained from the emulator each Update and
// serves them to the ebiten audio player as 16-bit little-endian stereo.
// The player pulls from its own goroutine, so the ring is mutex-guarded.
type apuStream struct {
	mu      sync.Mutex
	samples []int16 // interleaved L,R
	muted   bool
}

func newAPUStream() *apuStream {
	return &apuStream{samples: make([]int16, 0, apu.AudioFrequency)}
}

// push appends a drained batch; overfull buffers drop the oldest frames to
// keep latency bounded.
func (s *apuStream) push(batch []int16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, batch...)
	if limit := apu.AudioFrequency / 2; len(s.samples) > limit {
		s.samples = s.samples[len(s.samples)-limit:]
	}
}

func (s *apuStream) Read(p []byte) (int, error) {
	if len(p) < 4 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	frames := len(p) / 4
	avail := len(s.samples) / 2
	n := 0
	for ; n < frames && n < avail; n++ {
		l, r := s.samples[n*2], s.samples[n*2+1]
		if s.muted {
			l, r = 0, 0
		}
		binary.LittleEndian.PutUint16(p[n*4:], uint16(l))
		binary.LittleEndian.PutUint16(p[n*4+2:], uint16(r))
	}
	s.samples = s.samples[n*2:]

	// pad with silence rather than stalling the player
	if n == 0 {
		silence := 256
		if silence > frames {
			silence = frames
		}
		for i := 0; i < silence*4; i++ {
			p[i] = 0
		}
		return silence * 4, nil
	}
	return n * 4, nil
}
