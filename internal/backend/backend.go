// Package backend abstracts the audio I/O layer that enumerates input
// devices and delivers captured buffers through registered callbacks.
package backend

import (
	"fmt"
	"strings"
)

// SampleFormat identifies the in-memory sample encoding of a stream.
type SampleFormat int

const (
	// FormatF32LE is 32-bit little-endian float, interleaved.
	FormatF32LE SampleFormat = iota
)

// BytesPerSample returns the width of one sample in bytes.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatF32LE:
		return 4
	default:
		return 0
	}
}

// State is a stream lifecycle event reported on a backend-owned thread.
type State int

const (
	StateStarted State = iota
	StateStopped
	StateDrained
	StateError
)

func (s State) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	case StateDrained:
		return "drained"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Device is one input device from a single enumeration. Indices into the
// enumerated slice are not stable across calls; a Device must not be
// cached past the enumeration that produced it.
type Device struct {
	Name string

	// backend-private handle; only meaningful to the Backend that
	// produced it
	id any
}

// DataFunc receives one interleaved buffer of raw samples. It runs on a
// backend-owned thread, is never invoked concurrently for one stream,
// and must return the number of frames it consumed. The input slice is
// only valid for the duration of the call.
type DataFunc func(input []byte, frames int) int

// StateFunc receives stream lifecycle events on a backend-owned thread.
type StateFunc func(s State)

// StreamConfig describes the requested stream parameters. The backend
// may negotiate different values; read them back from the Stream.
type StreamConfig struct {
	Device        *Device // nil selects the backend default input
	Format        SampleFormat
	SampleRate    int
	Channels      int
	LatencyFrames int
}

// Stream is one open capture stream.
type Stream interface {
	Start() error
	Stop() error
	// Close releases the stream. The stream must not be used afterwards.
	Close() error

	// SampleRate reports the negotiated rate, which may differ from the
	// requested one.
	SampleRate() int
	// Channels reports the negotiated channel count.
	Channels() int
}

// Backend is an initialized audio context. Implementations are safe for
// use from a single control goroutine; callbacks arrive on threads the
// backend owns.
type Backend interface {
	Name() string
	InputDevices() ([]Device, error)
	OpenStream(cfg StreamConfig, onData DataFunc, onState StateFunc) (Stream, error)
	Close() error
}

// New constructs a backend by name. An empty name or "auto" selects
// miniaudio.
func New(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "", "auto", "malgo", "miniaudio":
		return NewMiniaudio()
	case "portaudio":
		return NewPortAudio()
	default:
		return nil, fmt.Errorf("unknown audio backend %q", name)
	}
}
