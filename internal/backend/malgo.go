package backend

import (
	"fmt"

	"github.com/gen2brain/malgo"
)

type miniaudioBackend struct {
	ctx *malgo.AllocatedContext
}

// NewMiniaudio initializes a miniaudio context. This is the default
// backend.
func NewMiniaudio() (Backend, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init miniaudio context: %w", err)
	}
	return &miniaudioBackend{ctx: ctx}, nil
}

func (b *miniaudioBackend) Name() string { return "miniaudio" }

func (b *miniaudioBackend) InputDevices() ([]Device, error) {
	infos, err := b.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("enumerate capture devices: %w", err)
	}
	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, Device{Name: info.Name(), id: info.ID})
	}
	return devices, nil
}

func (b *miniaudioBackend) OpenStream(cfg StreamConfig, onData DataFunc, onState StateFunc) (Stream, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(cfg.LatencyFrames)
	// Keeps some ALSA drivers from rejecting the device config.
	deviceConfig.Alsa.NoMMap = 1

	if cfg.Device != nil {
		id, ok := cfg.Device.id.(malgo.DeviceID)
		if !ok {
			return nil, fmt.Errorf("device %q does not belong to the miniaudio backend", cfg.Device.Name)
		}
		deviceConfig.Capture.DeviceID = id.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frameCount uint32) {
			onData(input, int(frameCount))
		},
		Stop: func() {
			onState(StateStopped)
		},
	}

	dev, err := malgo.InitDevice(b.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("init capture device: %w", err)
	}
	return &miniaudioStream{dev: dev, onState: onState}, nil
}

func (b *miniaudioBackend) Close() error {
	if err := b.ctx.Uninit(); err != nil {
		return fmt.Errorf("uninit miniaudio context: %w", err)
	}
	b.ctx.Free()
	return nil
}

type miniaudioStream struct {
	dev     *malgo.Device
	onState StateFunc
}

// Start begins buffer delivery. miniaudio reports only device stop
// through its callbacks, so the started event is synthesized here.
func (s *miniaudioStream) Start() error {
	if err := s.dev.Start(); err != nil {
		return fmt.Errorf("start capture device: %w", err)
	}
	s.onState(StateStarted)
	return nil
}

func (s *miniaudioStream) Stop() error {
	if err := s.dev.Stop(); err != nil {
		return fmt.Errorf("stop capture device: %w", err)
	}
	return nil
}

func (s *miniaudioStream) Close() error {
	s.dev.Uninit()
	return nil
}

func (s *miniaudioStream) SampleRate() int { return int(s.dev.SampleRate()) }

func (s *miniaudioStream) Channels() int { return int(s.dev.CaptureChannels()) }
