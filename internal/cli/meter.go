package cli

import (
	"math"

	"github.com/rs/zerolog"
)

// meterInterval is how many callbacks pass between meter lines; at the
// default 4096-frame latency this is a line every few seconds.
const meterInterval = 100

// levelMeter is the shell's audio-data callback: it tracks peak and RMS
// per delivered batch and logs a meter line at a reduced cadence. It
// runs on the audio thread, so it only computes and logs.
type levelMeter struct {
	log   zerolog.Logger
	calls int
}

func (m *levelMeter) callback(samples []float32, frames, sampleRate, channels int) {
	m.calls++
	if m.calls%meterInterval != 0 {
		return
	}

	peak, rms := levels(samples)
	m.log.Info().
		Int("batch", m.calls).
		Float64("peak", peak).
		Float64("rms", rms).
		Msg("Input level")
}

func levels(samples []float32) (peak, rms float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		if a := math.Abs(v); a > peak {
			peak = a
		}
		sum += v * v
	}
	return peak, math.Sqrt(sum / float64(len(samples)))
}
