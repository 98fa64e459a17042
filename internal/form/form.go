// Package form models the pin-entry flow as an explicit state machine:
// idle -> awaiting-input -> submitted or cancelled. The pointer position
// is captured when the flow begins and released on submit, so the flow
// is testable without any dialog plumbing.
package form

import "errors"

var (
	ErrNotAwaiting = errors.New("no pin entry in progress")
	ErrBusy        = errors.New("pin entry already in progress")
)

type Phase int

const (
	Idle Phase = iota
	Awaiting
	Submitted
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Awaiting:
		return "awaiting"
	case Submitted:
		return "submitted"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// PinForm holds one pending pin placement. The zero value is idle.
type PinForm struct {
	phase Phase
	x, y  float64
}

func (f *PinForm) Phase() Phase { return f.phase }

// Begin captures the click position and starts awaiting title input. A
// finished flow (submitted or cancelled) can begin again; an in-flight
// one cannot.
func (f *PinForm) Begin(x, y float64) error {
	if f.phase == Awaiting {
		return ErrBusy
	}
	f.phase = Awaiting
	f.x = x
	f.y = y
	return nil
}

// Submit completes the flow and returns the captured position.
func (f *PinForm) Submit() (x, y float64, err error) {
	if f.phase != Awaiting {
		return 0, 0, ErrNotAwaiting
	}
	f.phase = Submitted
	return f.x, f.y, nil
}

// Cancel abandons the pending placement.
func (f *PinForm) Cancel() error {
	if f.phase != Awaiting {
		return ErrNotAwaiting
	}
	f.phase = Cancelled
	return nil
}
