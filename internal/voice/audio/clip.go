// internal/voice/audio/clip.go
package audio

import (
	"bytes"
	"encoding/binary"
	"time"
)

// Clip is a mono 16-bit PCM recording.
type Clip struct {
	Samples    []int16
	SampleRate int
}

// Duration of the recording.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(c.Samples)) * time.Second / time.Duration(c.SampleRate)
}

// PCM returns raw little-endian samples without a header.
func (c Clip) PCM() []byte {
	out := make([]byte, len(c.Samples)*2)
	for i, s := range c.Samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

// WAV returns the clip as a canonical 44-byte-header RIFF file.
func (c Clip) WAV() []byte {
	var buf bytes.Buffer

	dataSize := len(c.Samples) * 2
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, int32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, int32(16))             // fmt chunk size
	_ = binary.Write(&buf, binary.LittleEndian, int16(1))              // PCM
	_ = binary.Write(&buf, binary.LittleEndian, int16(1))              // mono
	_ = binary.Write(&buf, binary.LittleEndian, int32(c.SampleRate))   // sample rate
	_ = binary.Write(&buf, binary.LittleEndian, int32(c.SampleRate*2)) // byte rate
	_ = binary.Write(&buf, binary.LittleEndian, int16(2))              // block align
	_ = binary.Write(&buf, binary.LittleEndian, int16(16))             // bits per sample

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	buf.Write(c.PCM())

	return buf.Bytes()
}
