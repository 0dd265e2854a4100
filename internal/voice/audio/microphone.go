//go:build portaudio
// +build portaudio

// internal/voice/audio/microphone.go
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// Microphone records fixed-length clips from the default input device.
type Microphone struct {
	sampleRate int
	logger     *slog.Logger
}

func NewMicrophone(sampleRate int, logger *slog.Logger) *Microphone {
	if logger == nil {
		logger = slog.Default()
	}
	return &Microphone{sampleRate: sampleRate, logger: logger}
}

// Record blocks for d (or until ctx is done) and returns what was captured.
func (m *Microphone) Record(ctx context.Context, d time.Duration) (Clip, error) {
	if err := portaudio.Initialize(); err != nil {
		return Clip{}, fmt.Errorf("audio: initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	buffer := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(buffer), buffer)
	if err != nil {
		return Clip{}, fmt.Errorf("audio: opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return Clip{}, fmt.Errorf("audio: starting stream: %w", err)
	}
	defer stream.Stop()

	want := int(d.Seconds() * float64(m.sampleRate))
	samples := make([]int16, 0, want+framesPerBuffer)

	m.logger.Debug("capture started", "seconds", d.Seconds())

	for len(samples) < want {
		select {
		case <-ctx.Done():
			return Clip{}, ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			return Clip{}, fmt.Errorf("audio: reading stream: %w", err)
		}
		samples = append(samples, buffer...)
	}

	m.logger.Debug("capture finished", "samples", len(samples))
	return Clip{Samples: samples[:want], SampleRate: m.sampleRate}, nil
}
