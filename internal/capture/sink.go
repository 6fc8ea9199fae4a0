package capture

import (
	"encoding/binary"
	"math"

	"github.com/mfranzen/wavecap/internal/backend"
)

// onData is the real-time sink, invoked sequentially on the backend's
// audio thread once per delivered buffer. It appends the raw bytes to
// the recording buffer and hands a decoded snapshot to the user
// callback. No file I/O, no unbounded work; the only locks taken are
// the two short-lived ones below.
func (c *Capture) onData(input []byte, frames int) int {
	if len(input) == 0 || frames == 0 {
		// Device silence: nothing consumed, nothing delivered.
		return 0
	}

	c.rec.append(input)

	samples := decodeFloat32(input)

	c.cbMu.Lock()
	if c.cb != nil {
		c.cb(samples, frames, c.SampleRate(), c.ChannelCount())
	}
	c.cbMu.Unlock()

	return frames
}

// onState receives backend lifecycle events on a backend-owned thread.
// A stopped or error event forces the running flag down exactly once;
// when a control-plane StopCapture is concurrently in flight, whichever
// observes the transition first wins and the other is a no-op.
func (c *Capture) onState(s backend.State) {
	switch s {
	case backend.StateStopped, backend.StateError:
		if c.running.CompareAndSwap(true, false) {
			c.log.Info().Stringer("state", s).Msg("Stream halted by backend")
		}
	default:
		c.log.Debug().Stringer("state", s).Msg("Stream state changed")
	}
}

// decodeFloat32 reinterprets raw little-endian float32 bytes as sample
// values.
func decodeFloat32(p []byte) []float32 {
	out := make([]float32, len(p)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
	}
	return out
}
