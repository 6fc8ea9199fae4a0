package backend

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gordonklaus/portaudio"
)

type portAudioBackend struct{}

// NewPortAudio initializes the PortAudio library. PortAudio has no
// stream state notifications, so started/stopped events are synthesized
// around the start and stop calls.
func NewPortAudio() (Backend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize PortAudio: %w", err)
	}
	return &portAudioBackend{}, nil
}

func (b *portAudioBackend) Name() string { return "portaudio" }

func (b *portAudioBackend) InputDevices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		if info.MaxInputChannels > 0 {
			devices = append(devices, Device{Name: info.Name, id: info})
		}
	}
	return devices, nil
}

func (b *portAudioBackend) OpenStream(cfg StreamConfig, onData DataFunc, onState StateFunc) (Stream, error) {
	var info *portaudio.DeviceInfo
	if cfg.Device != nil {
		di, ok := cfg.Device.id.(*portaudio.DeviceInfo)
		if !ok {
			return nil, fmt.Errorf("device %q does not belong to the PortAudio backend", cfg.Device.Name)
		}
		info = di
	} else {
		di, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("default input device: %w", err)
		}
		info = di
	}

	channels := cfg.Channels
	if channels > info.MaxInputChannels {
		channels = info.MaxInputChannels
	}

	s := &portAudioStream{channels: channels, onState: onState}
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: channels,
			Latency:  info.DefaultLowInputLatency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: cfg.LatencyFrames,
	}, func(in []float32) {
		if len(in) == 0 {
			onData(nil, 0)
			return
		}
		onData(float32Bytes(in), len(in)/channels)
	})
	if err != nil {
		return nil, fmt.Errorf("open audio stream: %w", err)
	}
	s.stream = stream
	return s, nil
}

func (b *portAudioBackend) Close() error {
	return portaudio.Terminate()
}

type portAudioStream struct {
	stream   *portaudio.Stream
	channels int
	onState  StateFunc
}

func (s *portAudioStream) Start() error {
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("start audio stream: %w", err)
	}
	s.onState(StateStarted)
	return nil
}

func (s *portAudioStream) Stop() error {
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("stop audio stream: %w", err)
	}
	s.onState(StateStopped)
	return nil
}

func (s *portAudioStream) Close() error {
	return s.stream.Close()
}

func (s *portAudioStream) SampleRate() int {
	return int(s.stream.Info().SampleRate)
}

func (s *portAudioStream) Channels() int { return s.channels }

// float32Bytes re-encodes PortAudio's float32 buffer into the raw
// little-endian byte form the boundary delivers.
func float32Bytes(in []float32) []byte {
	out := make([]byte, len(in)*4)
	for i, v := range in {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
