// internal/dispatch/dispatcher_test.go
package dispatch

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/tamzrod/modbus-fan/internal/link"
)

// ---- fake controller ----

type fakeController struct {
	coil    bool
	calls   []bool
	writes  int
	failErr error
}

func (f *fakeController) WriteState(target bool) (bool, error) {
	f.calls = append(f.calls, target)
	if f.failErr != nil {
		return false, f.failErr
	}
	if f.coil == target {
		return false, nil
	}
	f.coil = target
	f.writes++
	return true, nil
}

var vocab = Vocabulary{Activate: "打开风扇。", Deactivate: "关闭风扇。"}

func newDispatcher(t *testing.T, ctl StateWriter) *Dispatcher {
	t.Helper()
	d, err := New(vocab, ctl, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	return d
}

// ---- tests ----

func TestClassify_Total(t *testing.T) {
	tests := []struct {
		token string
		want  Kind
	}{
		{"打开风扇。", KindActivate},
		{"关闭风扇。", KindDeactivate},
		// punctuation and whitespace both count
		{"打开风扇", KindUnrecognized},
		{" 打开风扇。", KindUnrecognized},
		{"lights on", KindUnrecognized},
		{"", KindUnrecognized},
	}

	for _, tt := range tests {
		if got := vocab.Classify(tt.token); got != tt.want {
			t.Fatalf("Classify(%q): got=%s want=%s", tt.token, got, tt.want)
		}
	}
}

func TestNew_RejectsAmbiguousVocabulary(t *testing.T) {
	ctl := &fakeController{}
	if _, err := New(Vocabulary{Activate: "x", Deactivate: "x"}, ctl, nil); err == nil {
		t.Fatalf("expected error for identical phrases")
	}
	if _, err := New(Vocabulary{Activate: "x"}, ctl, nil); err == nil {
		t.Fatalf("expected error for missing phrase")
	}
}

func TestDispatch_ActivateFromOff(t *testing.T) {
	ctl := &fakeController{coil: false}
	d := newDispatcher(t, ctl)

	out, err := d.Dispatch(vocab.Activate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != OutcomeChanged {
		t.Fatalf("outcome: got=%s want=%s", out, OutcomeChanged)
	}
	if len(ctl.calls) != 1 || ctl.calls[0] != true || ctl.writes != 1 {
		t.Fatalf("expected one WriteState(true) with one bus write, got calls=%v writes=%d", ctl.calls, ctl.writes)
	}
}

func TestDispatch_ActivateWhenAlreadyOn(t *testing.T) {
	ctl := &fakeController{coil: true}
	d := newDispatcher(t, ctl)

	out, err := d.Dispatch(vocab.Activate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != OutcomeAlreadySet {
		t.Fatalf("outcome: got=%s want=%s", out, OutcomeAlreadySet)
	}
	if len(ctl.calls) != 1 || ctl.writes != 0 {
		t.Fatalf("expected one call and no bus write, got calls=%v writes=%d", ctl.calls, ctl.writes)
	}
}

func TestDispatch_Deactivate(t *testing.T) {
	ctl := &fakeController{coil: true}
	d := newDispatcher(t, ctl)

	out, err := d.Dispatch(vocab.Deactivate)
	if err != nil || out != OutcomeChanged {
		t.Fatalf("got out=%s err=%v", out, err)
	}
	if ctl.coil {
		t.Fatalf("coil still on")
	}
}

func TestDispatch_UnrecognizedTouchesNothing(t *testing.T) {
	ctl := &fakeController{}
	d := newDispatcher(t, ctl)

	out, err := d.Dispatch("lights on")
	if err != nil {
		t.Fatalf("unrecognized must not be an error: %v", err)
	}
	if out != OutcomeUnrecognized {
		t.Fatalf("outcome: got=%s", out)
	}
	if len(ctl.calls) != 0 {
		t.Fatalf("WriteState called for unrecognized token")
	}
}

func TestDispatch_PropagatesLinkError(t *testing.T) {
	ctl := &fakeController{failErr: &link.Error{Op: "write-coil", Kind: link.KindTimeout, Err: errors.New("no response")}}
	d := newDispatcher(t, ctl)

	_, err := d.Dispatch(vocab.Activate)
	if !link.IsLinkError(err) {
		t.Fatalf("expected link error, got %v", err)
	}
	var le *link.Error
	if !errors.As(err, &le) || le.Op != "write-coil" {
		t.Fatalf("link error not reachable through wrap: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "dispatch: activate: ") {
		t.Fatalf("error not wrapped with command kind: %q", err)
	}
}
