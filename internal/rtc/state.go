package rtc

import "fmt"

// State is the negotiation lifecycle position. Transitions move strictly
// forward through the happy path; Errored is reachable from any active state
// and teardown returns to Idle from anywhere.
type State int

const (
	StateIdle State = iota
	StateRequestingCredential
	StateCapturingMedia
	StateOffering
	StateAwaitingAnswer
	StateConnected
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestingCredential:
		return "requestingCredential"
	case StateCapturingMedia:
		return "capturingMedia"
	case StateOffering:
		return "offering"
	case StateAwaitingAnswer:
		return "awaitingAnswer"
	case StateConnected:
		return "connected"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// CanTransition reports whether moving from s to next is a legal step.
func (s State) CanTransition(next State) bool {
	// Teardown is always legal, and any active state may fail.
	if next == StateIdle {
		return true
	}
	if next == StateErrored {
		return s != StateIdle && s != StateErrored
	}

	switch s {
	case StateIdle, StateErrored:
		return next == StateRequestingCredential
	case StateRequestingCredential:
		return next == StateCapturingMedia
	case StateCapturingMedia:
		return next == StateOffering
	case StateOffering:
		return next == StateAwaitingAnswer
	case StateAwaitingAnswer:
		return next == StateConnected
	default:
		return false
	}
}

// CauseKind classifies why a negotiation attempt failed.
type CauseKind int

const (
	CausePermissionDenied CauseKind = iota
	CauseDeviceAbsent
	CauseUnsupported
	CauseCredential
	CauseLocalDescription
	CauseRemoteRejected
	CauseRemoteAnswer
	CauseCanceled
)

// Cause carries the failure classification alongside the underlying error.
// Status is only set for CauseRemoteRejected.
type Cause struct {
	Kind   CauseKind
	Status int
	Err    error
}

func (c *Cause) Error() string {
	return c.Message()
}

func (c *Cause) Unwrap() error {
	return c.Err
}

// Message is the user-facing explanation. Each kind reads differently so a
// caller can surface it without inspecting the kind.
func (c *Cause) Message() string {
	switch c.Kind {
	case CausePermissionDenied:
		return "microphone permission denied"
	case CauseDeviceAbsent:
		return "no audio input device found"
	case CauseUnsupported:
		return "audio capture not supported"
	case CauseCredential:
		return "could not obtain session credential"
	case CauseLocalDescription:
		return "failed to prepare local description"
	case CauseRemoteRejected:
		return fmt.Sprintf("remote rejected (%d)", c.Status)
	case CauseRemoteAnswer:
		return "remote answer invalid"
	case CauseCanceled:
		return "negotiation canceled"
	default:
		return "negotiation failed"
	}
}
