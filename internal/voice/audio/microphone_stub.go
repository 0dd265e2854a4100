//go:build !portaudio
// +build !portaudio

// internal/voice/audio/microphone_stub.go
package audio

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Microphone stub when portaudio is not available
type Microphone struct {
	sampleRate int
	logger     *slog.Logger
}

func NewMicrophone(sampleRate int, logger *slog.Logger) *Microphone {
	return &Microphone{sampleRate: sampleRate, logger: logger}
}

func (m *Microphone) Record(_ context.Context, _ time.Duration) (Clip, error) {
	return Clip{}, errors.New("audio: microphone not available: rebuild with -tags portaudio")
}
