// Package capture implements the audio capture engine: it owns one
// backend stream at a time, relays delivered buffers to a user callback
// in real time, accumulates the raw samples, and exports them as a WAV
// file on request.
package capture

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/mfranzen/wavecap/internal/backend"
	"github.com/mfranzen/wavecap/internal/wavenc"
)

// Callback receives one batch of interleaved samples. It runs on the
// backend's audio thread under the callback lock, so it is expected to
// return quickly and must not call back into the Capture control plane.
type Callback func(samples []float32, frames, sampleRate, channels int)

// Requested stream contract. The backend may negotiate different
// values; the granted rate and channel count are read back after the
// stream opens.
const (
	requestSampleRate    = 48000
	requestChannels      = 2
	requestLatencyFrames = 4096
)

// DefaultOutputPath is where recordings land unless SetOutputPath is
// called.
const DefaultOutputPath = "captured-audio.wav"

// Capture owns one backend context and at most one open stream. All
// control-plane methods are safe for concurrent use; buffer delivery
// and state notifications arrive on backend-owned threads.
type Capture struct {
	backend backend.Backend
	log     zerolog.Logger

	mu         sync.Mutex // control plane: stream, device, output path
	stream     backend.Stream
	device     backend.Device
	outputPath string

	running    atomic.Bool
	sampleRate atomic.Int32
	channels   atomic.Int32

	cbMu sync.Mutex
	cb   Callback

	rec accumulator
}

// New initializes a capture handle on the given backend and selects the
// first enumerated input device as the default. Fails with
// ErrBackendInit when enumeration fails or no input devices exist; the
// handle is not reusable after that, construct a new one.
func New(b backend.Backend, cb Callback, log zerolog.Logger) (*Capture, error) {
	devices, err := b.InputDevices()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendInit, err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: no input devices found", ErrBackendInit)
	}

	return &Capture{
		backend:    b,
		log:        log,
		cb:         cb,
		device:     devices[0],
		outputPath: DefaultOutputPath,
	}, nil
}

// StartCapture opens and starts a capture stream on the device at
// deviceIndex, or on the last selected device when deviceIndex is
// negative. The recording buffer is cleared before any new sample can
// arrive. Returns ErrStreamStart and leaves the handle unchanged when
// the backend rejects the stream.
func (c *Capture) StartCapture(deviceIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running.Load() {
		return fmt.Errorf("%w: capture already running", ErrStreamStart)
	}

	// A stream left behind by a backend-forced stop is released before
	// a new one opens.
	c.releaseStreamLocked()

	if deviceIndex >= 0 {
		if err := c.selectDeviceLocked(deviceIndex); err != nil {
			return err
		}
	}

	dev := c.device
	stream, err := c.backend.OpenStream(backend.StreamConfig{
		Device:        &dev,
		Format:        backend.FormatF32LE,
		SampleRate:    requestSampleRate,
		Channels:      requestChannels,
		LatencyFrames: requestLatencyFrames,
	}, c.onData, c.onState)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStreamStart, err)
	}

	// Negotiated values, not the requested ones. Read continuously from
	// the audio thread, hence atomics.
	c.sampleRate.Store(int32(stream.SampleRate()))
	c.channels.Store(int32(stream.Channels()))

	// A previous session's samples never mix into this one, regardless
	// of what the backend negotiated last time.
	c.rec.reset()

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("%w: %v", ErrStreamStart, err)
	}

	c.stream = stream
	c.running.Store(true)

	c.log.Info().
		Str("device", dev.Name).
		Int("sample_rate", c.SampleRate()).
		Int("channels", c.ChannelCount()).
		Msg("Capture started")
	return nil
}

// StopCapture halts the active stream. A no-op returning nil when not
// capturing. The transition to stopped is unconditional: a backend stop
// error is logged, not propagated, so the handle never sticks in the
// running state.
func (c *Capture) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasRunning := c.running.Load()

	// Intent-to-stop precedes the backend call so the state callback's
	// forced stop and this path converge on the same terminal value.
	c.running.Store(false)

	if wasRunning && c.stream != nil {
		if err := c.stream.Stop(); err != nil {
			c.log.Error().Err(err).Msg("Backend stop reported an error")
		}
	}
	// Released even when the backend forced the stop first, so a
	// backend-initiated halt never leaks the handle.
	c.releaseStreamLocked()

	if !wasRunning {
		return nil
	}

	c.log.Info().Int("recorded_bytes", c.rec.len()).Msg("Capture stopped")
	return nil
}

func (c *Capture) releaseStreamLocked() {
	if c.stream == nil {
		return
	}
	if err := c.stream.Close(); err != nil {
		c.log.Error().Err(err).Msg("Backend stream close reported an error")
	}
	c.stream = nil
}

// IsCapturing reports whether a stream is running. Lock-free; safe from
// any goroutine, including concurrently with StartCapture and
// StopCapture.
func (c *Capture) IsCapturing() bool {
	return c.running.Load()
}

// SetCallback replaces the audio-data callback. Safe to call while
// buffers are in flight; the in-progress delivery finishes with the
// callback it already read.
func (c *Capture) SetCallback(cb Callback) {
	c.cbMu.Lock()
	c.cb = cb
	c.cbMu.Unlock()
}

// SampleRate returns the negotiated sample rate in Hz, or 0 before the
// first capture session.
func (c *Capture) SampleRate() int {
	return int(c.sampleRate.Load())
}

// ChannelCount returns the negotiated channel count, or 0 before the
// first capture session.
func (c *Capture) ChannelCount() int {
	return int(c.channels.Load())
}

// ListInputDevices enumerates input device names in backend order. The
// returned indices feed SelectDevice but are only valid until the next
// enumeration. Returns an empty slice, not an error, when enumeration
// fails or no devices exist.
func (c *Capture) ListInputDevices() []string {
	devices, err := c.backend.InputDevices()
	if err != nil {
		c.log.Error().Err(err).Msg("Device enumeration failed")
		return []string{}
	}
	names := make([]string, 0, len(devices))
	for _, d := range devices {
		names = append(names, d.Name)
	}
	return names
}

// SelectDevice makes the device at index the capture device for the
// next session. Devices are re-enumerated first, so the index resolves
// against the current device set rather than a stale listing. Fails
// with ErrDeviceChangeWhileRunning during an active session and with
// ErrInvalidDeviceIndex when the index is out of range; on failure the
// current device is unchanged.
func (c *Capture) SelectDevice(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectDeviceLocked(index)
}

func (c *Capture) selectDeviceLocked(index int) error {
	if c.running.Load() {
		return ErrDeviceChangeWhileRunning
	}

	devices, err := c.backend.InputDevices()
	if err != nil {
		c.log.Error().Err(err).Msg("Device enumeration failed")
		devices = nil
	}
	if index < 0 || index >= len(devices) {
		return fmt.Errorf("%w: %d of %d devices", ErrInvalidDeviceIndex, index, len(devices))
	}

	c.device = devices[index]
	c.log.Info().Int("index", index).Str("device", c.device.Name).Msg("Input device selected")
	return nil
}

// CurrentDeviceName returns the name of the selected capture device.
func (c *Capture) CurrentDeviceName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device.Name
}

// SetOutputPath sets the export destination. The extension is
// normalized to .wav at export time.
func (c *Capture) SetOutputPath(path string) {
	c.mu.Lock()
	c.outputPath = path
	c.mu.Unlock()
}

// OutputPath returns the configured export destination.
func (c *Capture) OutputPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outputPath
}

// RecordedBytes returns the size of the accumulated recording.
func (c *Capture) RecordedBytes() int {
	return c.rec.len()
}

// ExportToWav converts the accumulated float samples to 16-bit PCM and
// writes them to the output path as a RIFF/WAVE file. Fails with
// wavenc.ErrEmptyRecording when nothing was recorded.
func (c *Capture) ExportToWav() error {
	data := c.rec.snapshot()
	path := c.OutputPath()

	if err := wavenc.Export(data, c.ChannelCount(), c.SampleRate(), path); err != nil {
		return err
	}

	c.log.Info().
		Str("path", path).
		Int("bytes", len(data)).
		Int("sample_rate", c.SampleRate()).
		Int("channels", c.ChannelCount()).
		Msg("WAV export complete")
	return nil
}

// Close stops any active capture and releases the backend context. The
// handle must not be used afterwards.
func (c *Capture) Close() error {
	if err := c.StopCapture(); err != nil {
		c.log.Error().Err(err).Msg("Stop during close failed")
	}
	return c.backend.Close()
}
