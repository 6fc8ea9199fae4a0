package wavenc

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestExportEmptyInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")

	if err := Export(nil, 2, 48000, path); !errors.Is(err, ErrEmptyRecording) {
		t.Fatalf("expected ErrEmptyRecording, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("empty export touched the filesystem")
	}
}

func TestExportNoFullFrame(t *testing.T) {
	// one float32 sample cannot fill a stereo frame
	raw := f32bytes([]float32{0.5})
	if err := Export(raw, 2, 48000, filepath.Join(t.TempDir(), "x.wav")); !errors.Is(err, ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
}

func TestExportUnwritableDestination(t *testing.T) {
	raw := f32bytes([]float32{0.5, 0.5})
	path := filepath.Join(t.TempDir(), "missing", "deep", "out.wav")

	if err := Export(raw, 2, 48000, path); !errors.Is(err, ErrFileWrite) {
		t.Fatalf("expected ErrFileWrite, got %v", err)
	}
}

// Only whole frames reach the encoder; a trailing partial frame is
// dropped rather than written.
func TestExportDropsPartialFrame(t *testing.T) {
	raw := f32bytes([]float32{0.5, 0.5, 0.5})
	path := filepath.Join(t.TempDir(), "partial.wav")

	if err := Export(raw, 2, 48000, path); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open exported file: %v", err)
	}
	defer f.Close()

	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(buf.Data) != 2 {
		t.Fatalf("decoded %d samples, want 2 (one stereo frame)", len(buf.Data))
	}
}

func TestNormalizePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"capture.wav", "capture.wav"},
		{"capture.WAV", "capture.wav"},
		{"capture.mp3", "capture.wav"},
		{"capture", "capture.wav"},
		{"take.2.ogg", "take.2.wav"},
		{filepath.Join("out", "song.flac"), filepath.Join("out", "song.wav")},
	}
	for _, c := range cases {
		if got := NormalizePath(c.in); got != c.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestToPCM16Conversion(t *testing.T) {
	cases := []struct {
		in   float32
		want int
	}{
		{0, 0},
		{1.0, 32767},
		{-1.0, -32767},
		{2.0, 32767},   // clamped
		{-2.0, -32767}, // clamped
		{0.5, 16383},   // truncated toward zero, not rounded
		{-0.5, -16383},
	}
	for _, c := range cases {
		got := toPCM16(f32bytes([]float32{c.in}))
		if len(got) != 1 || got[0] != c.want {
			t.Errorf("toPCM16(%f) = %v, want [%d]", c.in, got, c.want)
		}
	}
}

// A 1 kHz stereo sine survives export within 16-bit quantization error
// and the header carries the negotiated parameters.
func TestExportRoundTripSine(t *testing.T) {
	const (
		sampleRate = 44100
		channels   = 2
		frames     = 4410
		freq       = 1000.0
		amplitude  = 0.5
	)

	src := make([]float32, frames*channels)
	for i := 0; i < frames; i++ {
		v := float32(amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
		src[i*channels] = v
		src[i*channels+1] = v
	}

	path := filepath.Join(t.TempDir(), "sine.wav")
	if err := Export(f32bytes(src), channels, sampleRate, path); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open exported file: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if int(dec.NumChans) != channels {
		t.Fatalf("header channels = %d, want %d", dec.NumChans, channels)
	}
	if int(dec.SampleRate) != sampleRate {
		t.Fatalf("header sample rate = %d, want %d", dec.SampleRate, sampleRate)
	}
	if int(dec.BitDepth) != 16 {
		t.Fatalf("header bit depth = %d, want 16", dec.BitDepth)
	}
	if len(buf.Data) != len(src) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(src))
	}

	const tolerance = 1.0/32767 + 1e-6
	for i, pcm := range buf.Data {
		got := float64(pcm) / 32767.0
		if diff := math.Abs(got - float64(src[i])); diff > tolerance {
			t.Fatalf("sample %d: decoded %f vs source %f (diff %g)", i, got, src[i], diff)
		}
	}
}

func f32bytes(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
