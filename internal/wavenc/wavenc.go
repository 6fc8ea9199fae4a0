// Package wavenc converts accumulated float32 samples to a 16-bit PCM
// RIFF/WAVE file.
package wavenc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Export failures, matched with errors.Is.
var (
	// ErrEmptyRecording means there were no samples to export. Checked
	// before the filesystem is touched.
	ErrEmptyRecording = errors.New("no recorded audio to export")

	// ErrFileWrite means the destination could not be created or
	// written.
	ErrFileWrite = errors.New("cannot write WAV file")

	// ErrEncode means no PCM frames were produced despite non-empty
	// input.
	ErrEncode = errors.New("failed to encode WAV data")
)

const bitDepth = 16

// Export writes raw (interleaved little-endian float32 bytes) to path
// as a 16-bit PCM WAV file. Samples are clamped to [-1, 1], scaled by
// 32767 and truncated toward zero. The file is encoded into a temporary
// sibling and renamed over the destination, so a failure never leaves a
// corrupt file at path.
func Export(raw []byte, channels, sampleRate int, path string) error {
	if len(raw) == 0 {
		return ErrEmptyRecording
	}

	pcm := toPCM16(raw)
	if channels <= 0 || len(pcm) < channels {
		return fmt.Errorf("%w: %d samples across %d channels yield no frames", ErrEncode, len(pcm), channels)
	}
	// Whole frames only; a trailing partial frame is dropped.
	pcm = pcm[:len(pcm)/channels*channels]

	dst := NormalizePath(path)

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".wavecap-*.wav")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileWrite, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	enc := wav.NewEncoder(tmp, sampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           pcm,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrFileWrite, err)
	}
	// Close rewrites the RIFF chunk sizes in the header.
	if err := enc.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrFileWrite, err)
	}
	if enc.WrittenBytes == 0 {
		cleanup()
		return fmt.Errorf("%w: encoder wrote no data", ErrEncode)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrFileWrite, err)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrFileWrite, err)
	}
	return nil
}

// NormalizePath forces a .wav extension, replacing any existing one.
// The check is case-sensitive, so ".WAV" is rewritten too.
func NormalizePath(path string) string {
	ext := filepath.Ext(path)
	if ext == ".wav" {
		return path
	}
	return strings.TrimSuffix(path, ext) + ".wav"
}

// toPCM16 converts raw float32 bytes to 16-bit signed PCM samples. No
// dithering.
func toPCM16(raw []byte) []int {
	pcm := make([]int, 0, len(raw)/4)
	for i := 0; i+4 <= len(raw); i += 4 {
		sample := math.Float32frombits(binary.LittleEndian.Uint32(raw[i:]))
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}
		pcm = append(pcm, int(int16(sample*32767.0)))
	}
	return pcm
}
