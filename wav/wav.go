package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// WavInfo holds a decoded 16-bit PCM WAV file as mono float64 samples
// in [-1, 1]. Multi-channel files are averaged down to mono on read,
// since pitch analysis operates on a single channel.
type WavInfo struct {
	SampleRate int
	Channels   int
	Samples    []float64
	Duration   float64 // seconds
}

// ReadWavInfo reads and decodes a WAV file from disk.
func ReadWavInfo(path string) (*WavInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read wav file: %v", err)
	}
	return DecodeWav(data)
}

// DecodeWav parses RIFF/WAVE bytes. Only uncompressed 16-bit PCM is
// supported; anything else should be routed through ConvertToWAV
// first.
func DecodeWav(data []byte) (*WavInfo, error) {
	if len(data) < 12 {
		return nil, errors.New("file too short to be a wav")
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return nil, errors.New("not a RIFF/WAVE file")
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		raw           []byte
		haveFmt       bool
	)

	// walk the chunk list; chunks we don't care about (LIST, fact,
	// cue) are skipped by size.
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if size < 0 || body+size > len(data) {
			return nil, fmt.Errorf("malformed chunk %q at offset %d", id, pos)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, errors.New("fmt chunk too short")
			}
			audioFormat := binary.LittleEndian.Uint16(data[body : body+2])
			if audioFormat != 1 {
				return nil, fmt.Errorf("unsupported audio format %d, expected PCM", audioFormat)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true
		case "data":
			raw = data[body : body+size]
		}

		if size%2 == 1 {
			size++ // chunks are word-aligned
		}
		pos = body + size
	}

	if !haveFmt {
		return nil, errors.New("missing fmt chunk")
	}
	if raw == nil {
		return nil, errors.New("missing data chunk")
	}
	if bitsPerSample != 16 {
		return nil, fmt.Errorf("unsupported bit depth %d, expected 16", bitsPerSample)
	}
	if channels < 1 || sampleRate <= 0 {
		return nil, fmt.Errorf("invalid format: %d channels at %d Hz", channels, sampleRate)
	}

	frameSize := 2 * channels
	frames := len(raw) / frameSize

	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			off := i*frameSize + 2*c
			sum += float64(int16(binary.LittleEndian.Uint16(raw[off : off+2])))
		}
		samples[i] = sum / float64(channels) / 32768.0
	}

	return &WavInfo{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    samples,
		Duration:   float64(frames) / float64(sampleRate),
	}, nil
}
