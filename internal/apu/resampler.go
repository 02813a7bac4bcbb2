package apu

// stereoResampler converts the APU clock-rate terminal stream into i16
// stereo frames at the host sample rate. Each input clock is integrated
// over the output-sample window it overlaps, which band-limits the square
// edges instead of point-sampling them.
type stereoResampler struct {
	step float64 // output samples per input clock
	pos  float64 // position inside the current output sample

	accL, accR float64

	pending []int16 // interleaved L,R
	total   uint64  // frames emitted since creation
}

func newStereoResampler(clockRate, sampleRate int) *stereoResampler {
	return &stereoResampler{
		step:    float64(sampleRate) / float64(clockRate),
		pending: make([]int16, 0, 4096),
	}
}

// Push consumes one clock of the (left, right) terminal bytes.
func (r *stereoResampler) Push(left, right byte) {
	l := float64(int(left)-188) * 256
	rr := float64(int(right)-188) * 256

	t := r.step
	for t > 0 {
		take := t
		if rest := 1 - r.pos; take > rest {
			take = rest
		}
		r.accL += l * take
		r.accR += rr * take
		r.pos += take
		t -= take
		if r.pos >= 1 {
			r.emit()
		}
	}
}

func (r *stereoResampler) emit() {
	r.pending = append(r.pending, clampSample(r.accL), clampSample(r.accR))
	r.accL, r.accR = 0, 0
	r.pos = 0
	r.total++
}

// Output drains the pending frames through cb in batches of at most 2048
// frames of interleaved samples.
func (r *stereoResampler) Output(cb func([]int16)) {
	const batch = 2048 * 2
	for len(r.pending) > 0 {
		n := len(r.pending)
		if n > batch {
			n = batch
		}
		cb(r.pending[:n])
		r.pending = r.pending[n:]
	}
	if cap(r.pending) > 4*4096 {
		r.pending = make([]int16, 0, 4096)
	}
}

// Total reports the number of frames emitted so far; it only grows.
func (r *stereoResampler) Total() uint64 { return r.total }

func clampSample(v float64) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}
