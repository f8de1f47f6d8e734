// Package audio recognises the container formats accepted for transcription
// and reads the header of uncompressed WAV recordings.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Format is a recognised audio container.
type Format string

const (
	FormatUnknown Format = ""
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatOGG     Format = "ogg"
	FormatFLAC    Format = "flac"
	FormatWebM    Format = "webm"
	FormatMP4     Format = "m4a"
)

var ErrUnsupported = errors.New("unsupported audio format")

const wavHeaderSize = 44

// WAVHeader is the canonical 44-byte PCM header.
type WAVHeader struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

// Duration is the playback length implied by the header.
func (h WAVHeader) Duration() time.Duration {
	frame := uint32(h.NumChannels) * uint32(h.BitsPerSample) / 8
	if frame == 0 || h.SampleRate == 0 {
		return 0
	}
	samples := h.Subchunk2Size / frame
	return time.Duration(samples) * time.Second / time.Duration(h.SampleRate)
}

// Detect sniffs the container from the leading bytes.
func Detect(data []byte) Format {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	case bytes.HasPrefix(data, []byte("OggS")):
		return FormatOGG
	case bytes.HasPrefix(data, []byte("fLaC")):
		return FormatFLAC
	case bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return FormatWebM
	case len(data) >= 8 && bytes.Equal(data[4:8], []byte("ftyp")):
		return FormatMP4
	}
	return FormatUnknown
}

// Validate returns the detected format or ErrUnsupported. WAV input must
// also carry a readable PCM header.
func Validate(data []byte) (Format, error) {
	f := Detect(data)
	switch f {
	case FormatUnknown:
		return f, ErrUnsupported
	case FormatWAV:
		if _, err := ReadWAVHeader(data); err != nil {
			return f, err
		}
	}
	return f, nil
}

// ReadWAVHeader parses the canonical header at the start of data.
func ReadWAVHeader(data []byte) (WAVHeader, error) {
	var h WAVHeader
	if len(data) < wavHeaderSize {
		return h, fmt.Errorf("%w: truncated WAV header", ErrUnsupported)
	}
	if err := binary.Read(bytes.NewReader(data[:wavHeaderSize]), binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("read WAV header: %w", err)
	}
	if string(h.ChunkID[:]) != "RIFF" || string(h.Format[:]) != "WAVE" {
		return h, fmt.Errorf("%w: not a RIFF/WAVE file", ErrUnsupported)
	}
	if h.AudioFormat != 1 {
		return h, fmt.Errorf("%w: WAV is not PCM (format %d)", ErrUnsupported, h.AudioFormat)
	}
	return h, nil
}

// EncodeWAV wraps raw PCM samples in a canonical header.
func EncodeWAV(pcm []byte, sampleRate uint32, channels, bitsPerSample uint16) []byte {
	size := uint32(len(pcm))
	h := WAVHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + size,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   channels,
		SampleRate:    sampleRate,
		ByteRate:      sampleRate * uint32(channels) * uint32(bitsPerSample) / 8,
		BlockAlign:    channels * bitsPerSample / 8,
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: size,
	}

	var buf bytes.Buffer
	buf.Grow(wavHeaderSize + len(pcm))
	_ = binary.Write(&buf, binary.LittleEndian, &h)
	buf.Write(pcm)
	return buf.Bytes()
}
