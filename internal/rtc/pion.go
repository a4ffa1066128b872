package rtc

import (
	"context"
	"fmt"

	"github.com/pion/webrtc/v4"
)

// pionPeer adapts a pion PeerConnection to the Peer interface.
type pionPeer struct {
	pc *webrtc.PeerConnection
}

// NewPionPeerFactory returns a PeerFactory backed by pion with default ICE
// configuration. The provider terminates the connection server-side, so no
// STUN or TURN servers are needed.
func NewPionPeerFactory() PeerFactory {
	return func() (Peer, error) {
		pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
		if err != nil {
			return nil, fmt.Errorf("create peer connection: %w", err)
		}
		return &pionPeer{pc: pc}, nil
	}
}

// localTrack is satisfied by capture tracks that expose a pion local track.
type localTrack interface {
	TrackLocal() webrtc.TrackLocal
}

func (p *pionPeer) AddTrack(track CaptureTrack) error {
	lt, ok := track.(localTrack)
	if !ok {
		return fmt.Errorf("capture track %T does not expose a local track", track)
	}

	sender, err := p.pc.AddTrack(lt.TrackLocal())
	if err != nil {
		return fmt.Errorf("add audio track: %w", err)
	}

	// Drain incoming RTCP so interceptors keep running.
	go func() {
		buf := make([]byte, 1500)
		for {
			if _, _, err := sender.Read(buf); err != nil {
				return
			}
		}
	}()
	return nil
}

func (p *pionPeer) OnRemoteTrack(fn func()) {
	p.pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		fn()
	})
}

func (p *pionPeer) CreateDataChannel(label string) error {
	_, err := p.pc.CreateDataChannel(label, nil)
	if err != nil {
		return fmt.Errorf("create data channel: %w", err)
	}
	return nil
}

// CreateOffer waits for ICE gathering to complete so the SDP carries all
// candidates; the provider's exchange is a single round trip with no trickle.
func (p *pionPeer) CreateOffer(ctx context.Context) (string, error) {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return "", fmt.Errorf("create offer: %w", err)
	}

	gathered := webrtc.GatheringCompletePromise(p.pc)
	if err := p.pc.SetLocalDescription(offer); err != nil {
		return "", fmt.Errorf("set local description: %w", err)
	}

	select {
	case <-gathered:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return p.pc.LocalDescription().SDP, nil
}

func (p *pionPeer) SetRemoteAnswer(sdp string) error {
	err := p.pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  sdp,
	})
	if err != nil {
		return fmt.Errorf("set remote answer: %w", err)
	}
	return nil
}

func (p *pionPeer) Close() error {
	return p.pc.Close()
}
