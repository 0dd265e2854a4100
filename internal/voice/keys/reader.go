// internal/voice/keys/reader.go
package keys

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pkg/term"
)

// pollTimeout bounds each blocking read so cancellation is observed.
const pollTimeout = 200 * time.Millisecond

// Reader delivers single key presses from a terminal in cbreak mode:
// no line buffering or echo, while output processing and Ctrl-C keep working.
// Not safe for concurrent Next calls.
type Reader struct {
	t *term.Term
}

// Open puts the terminal at path into cbreak mode.
func Open(path string) (*Reader, error) {
	t, err := term.Open(path, term.CBreakMode)
	if err != nil {
		return nil, fmt.Errorf("keys: open %s: %w", path, err)
	}
	if err := t.SetReadTimeout(pollTimeout); err != nil {
		_ = t.Restore()
		_ = t.Close()
		return nil, fmt.Errorf("keys: set read timeout: %w", err)
	}
	return &Reader{t: t}, nil
}

// Next blocks until a key is pressed or ctx is done.
func (r *Reader) Next(ctx context.Context) (byte, error) {
	var b [1]byte
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		n, err := r.t.Read(b[:])
		if n == 1 {
			return b[0], nil
		}
		// a read timeout surfaces as 0 bytes, sometimes with io.EOF
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("keys: read: %w", err)
		}
	}
}

// Close restores the terminal mode and releases it.
func (r *Reader) Close() error {
	if r == nil || r.t == nil {
		return nil
	}
	restoreErr := r.t.Restore()
	closeErr := r.t.Close()
	if restoreErr != nil {
		return fmt.Errorf("keys: restore: %w", restoreErr)
	}
	return closeErr
}
