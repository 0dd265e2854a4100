// internal/voice/speech/speech.go
package speech

import (
	"context"
	"fmt"

	"github.com/tamzrod/modbus-fan/internal/voice/audio"
)

// Transcriber turns a recorded clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip audio.Clip) (string, error)
}

// Error is a recognition failure. It is local to one command and
// never affects device state.
type Error struct {
	Provider string
	Code     int // provider error code or HTTP status, 0 if none
	Err      error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("speech: %s: code %d: %v", e.Provider, e.Code, e.Err)
	}
	return fmt.Sprintf("speech: %s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
