package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"wav", EncodeWAV(make([]byte, 32), 16000, 1, 16), FormatWAV},
		{"mp3 id3", []byte("ID3\x04\x00rest"), FormatMP3},
		{"mp3 frame", []byte{0xFF, 0xFB, 0x90, 0x00}, FormatMP3},
		{"ogg", []byte("OggS\x00\x02"), FormatOGG},
		{"flac", []byte("fLaC\x00"), FormatFLAC},
		{"webm", []byte{0x1A, 0x45, 0xDF, 0xA3, 0x01}, FormatWebM},
		{"m4a", []byte("\x00\x00\x00\x20ftypM4A "), FormatMP4},
		{"text", []byte("fake audio"), FormatUnknown},
		{"empty", nil, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.data))
		})
	}
}

func TestReadWAVHeader(t *testing.T) {
	// one second of 16 kHz mono 16-bit audio
	data := EncodeWAV(make([]byte, 32000), 16000, 1, 16)

	h, err := ReadWAVHeader(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(16000), h.SampleRate)
	assert.Equal(t, uint16(1), h.NumChannels)
	assert.Equal(t, time.Second, h.Duration())
}

func TestValidate(t *testing.T) {
	_, err := Validate([]byte("fake audio"))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Validate([]byte("RIFF\x00\x00\x00\x00WAVE"))
	assert.ErrorIs(t, err, ErrUnsupported, "truncated header")

	bad := EncodeWAV(nil, 8000, 1, 8)
	bad[20] = 3 // IEEE float
	_, err = Validate(bad)
	assert.ErrorIs(t, err, ErrUnsupported)

	f, err := Validate(EncodeWAV(nil, 8000, 1, 8))
	require.NoError(t, err)
	assert.Equal(t, FormatWAV, f)
}
