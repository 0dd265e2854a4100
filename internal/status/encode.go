// internal/status/encode.go
package status

import (
	"encoding/json"
	"time"
)

type wireSnapshot struct {
	State     string `json:"state"`
	On        bool   `json:"on"`
	Timestamp string `json:"ts"`
}

// Encode converts a Snapshot into the published payload.
// Layout is fixed. No IO.
func Encode(s Snapshot) []byte {
	b, _ := json.Marshal(wireSnapshot{
		State:     s.StateLabel(),
		On:        s.On,
		Timestamp: s.At.UTC().Format(time.RFC3339),
	})
	return b
}
