// Package rtc drives the client side of a realtime voice session: minting a
// short-lived credential, capturing local audio, and negotiating a WebRTC
// peer connection with the provider over an SDP offer/answer exchange.
package rtc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Media acquisition failures the negotiator classifies for the caller.
var (
	ErrPermissionDenied = errors.New("audio capture permission denied")
	ErrDeviceAbsent     = errors.New("no audio capture device")
	ErrUnsupported      = errors.New("audio capture unsupported")
)

// Credential is a short-lived token scoped to exactly one session. It is
// fetched fresh for every negotiation attempt and never reused.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// CredentialSource mints session credentials, typically via the gateway's
// session endpoint.
type CredentialSource interface {
	Fetch(ctx context.Context) (Credential, error)
}

// CaptureTrack is a live local media capture. Close releases the underlying
// device; it must be safe to call more than once.
type CaptureTrack interface {
	Close() error
}

// MediaDevices acquires local audio. Implementations report permission,
// absence, and capability failures with the sentinel errors above.
type MediaDevices interface {
	AcquireAudio(ctx context.Context) (CaptureTrack, error)
}

// Peer is one WebRTC peer connection attempt.
type Peer interface {
	AddTrack(track CaptureTrack) error
	OnRemoteTrack(fn func())
	CreateDataChannel(label string) error
	// CreateOffer builds the local offer, installs it as the local
	// description, and returns the SDP once ICE gathering settles.
	CreateOffer(ctx context.Context) (string, error)
	SetRemoteAnswer(sdp string) error
	Close() error
}

// PeerFactory builds a fresh Peer for each attempt. Peers are never reused
// across attempts.
type PeerFactory func() (Peer, error)

// AnswerExchanger posts the local offer to the remote party and returns its
// answer SDP.
type AnswerExchanger interface {
	Exchange(ctx context.Context, offer string, cred Credential) (string, error)
}

const dataChannelLabel = "oai-events"

// Config wires a Negotiator's collaborators.
type Config struct {
	Credentials   CredentialSource
	Devices       MediaDevices
	NewPeer       PeerFactory
	Exchanger     AnswerExchanger
	OnStateChange func(State)
	OnRemoteTrack func()
}

// Negotiator owns the session lifecycle. Start runs one attempt through the
// state sequence and either lands in Connected or Errored; Stop tears the
// session down to Idle from any state. A failed attempt can be retried with
// another Start, which begins again at the credential fetch.
type Negotiator struct {
	cfg Config

	mu          sync.Mutex
	state       State
	cause       *Cause
	cancel      context.CancelFunc
	attemptDone chan struct{}
	peer        Peer
	track       CaptureTrack
}

func NewNegotiator(cfg Config) *Negotiator {
	return &Negotiator{cfg: cfg, state: StateIdle}
}

func (n *Negotiator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Cause returns the failure classification of the last attempt, or nil when
// the negotiator is not in Errored.
func (n *Negotiator) Cause() *Cause {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cause
}

// Start runs one negotiation attempt to completion. It returns nil once the
// session is connected, or a *Cause describing the failure. Only one attempt
// may run at a time.
func (n *Negotiator) Start(ctx context.Context) error {
	n.mu.Lock()
	if n.state != StateIdle && n.state != StateErrored {
		state := n.state
		n.mu.Unlock()
		return fmt.Errorf("negotiation already in progress (state %s)", state)
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	n.cancel = cancel
	n.attemptDone = done
	n.cause = nil
	n.mu.Unlock()

	defer close(done)
	defer cancel()

	return n.attempt(ctx)
}

func (n *Negotiator) attempt(ctx context.Context) error {
	n.setState(StateRequestingCredential)
	cred, err := n.cfg.Credentials.Fetch(ctx)
	if err != nil {
		return n.fail(ctx, &Cause{Kind: CauseCredential, Err: err})
	}

	n.setState(StateCapturingMedia)
	track, err := n.cfg.Devices.AcquireAudio(ctx)
	if err != nil {
		return n.fail(ctx, &Cause{Kind: classifyMediaErr(err), Err: err})
	}
	n.mu.Lock()
	n.track = track
	n.mu.Unlock()

	peer, err := n.cfg.NewPeer()
	if err != nil {
		return n.fail(ctx, &Cause{Kind: CauseUnsupported, Err: err})
	}
	n.mu.Lock()
	n.peer = peer
	n.mu.Unlock()

	if n.cfg.OnRemoteTrack != nil {
		peer.OnRemoteTrack(n.cfg.OnRemoteTrack)
	}
	if err := peer.AddTrack(track); err != nil {
		return n.fail(ctx, &Cause{Kind: CauseLocalDescription, Err: err})
	}
	if err := peer.CreateDataChannel(dataChannelLabel); err != nil {
		return n.fail(ctx, &Cause{Kind: CauseLocalDescription, Err: err})
	}

	n.setState(StateOffering)
	offer, err := peer.CreateOffer(ctx)
	if err != nil {
		return n.fail(ctx, &Cause{Kind: CauseLocalDescription, Err: err})
	}

	n.setState(StateAwaitingAnswer)
	answer, err := n.cfg.Exchanger.Exchange(ctx, offer, cred)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return n.fail(ctx, &Cause{Kind: CauseRemoteRejected, Status: statusErr.Code, Err: err})
		}
		return n.fail(ctx, &Cause{Kind: CauseRemoteAnswer, Err: err})
	}
	if err := peer.SetRemoteAnswer(answer); err != nil {
		return n.fail(ctx, &Cause{Kind: CauseRemoteAnswer, Err: err})
	}

	n.setState(StateConnected)
	log.Info().Msg("voice session connected")
	return nil
}

// fail releases the attempt's resources and lands in Errored. A canceled
// context wins over the step error so Stop always reads as cancellation.
func (n *Negotiator) fail(ctx context.Context, cause *Cause) error {
	if ctx.Err() != nil {
		cause = &Cause{Kind: CauseCanceled, Err: ctx.Err()}
	}

	n.mu.Lock()
	n.releaseLocked()
	n.state = StateErrored
	n.cause = cause
	n.mu.Unlock()

	log.Warn().Err(cause.Err).Str("reason", cause.Message()).Msg("voice negotiation failed")
	n.notify(StateErrored)
	return cause
}

// Stop cancels any running attempt, releases capture and peer resources, and
// returns to Idle. It is safe to call in any state.
func (n *Negotiator) Stop() {
	n.mu.Lock()
	cancel := n.cancel
	done := n.attemptDone
	n.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	n.mu.Lock()
	n.releaseLocked()
	n.state = StateIdle
	n.cause = nil
	n.mu.Unlock()
	n.notify(StateIdle)
}

// releaseLocked frees the capture track and peer. Callers hold n.mu.
func (n *Negotiator) releaseLocked() {
	if n.track != nil {
		if err := n.track.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to release capture track")
		}
		n.track = nil
	}
	if n.peer != nil {
		if err := n.peer.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close peer connection")
		}
		n.peer = nil
	}
}

func (n *Negotiator) setState(next State) {
	n.mu.Lock()
	if !n.state.CanTransition(next) {
		log.Warn().Str("from", n.state.String()).Str("to", next.String()).Msg("unexpected state transition")
	}
	n.state = next
	n.mu.Unlock()
	n.notify(next)
}

func (n *Negotiator) notify(s State) {
	if n.cfg.OnStateChange != nil {
		n.cfg.OnStateChange(s)
	}
}

func classifyMediaErr(err error) CauseKind {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return CausePermissionDenied
	case errors.Is(err, ErrDeviceAbsent):
		return CauseDeviceAbsent
	default:
		return CauseUnsupported
	}
}
