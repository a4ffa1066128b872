package rtc

import (
	"context"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
)

// opusSilence is a single opus frame encoding 20ms of silence.
var opusSilence = []byte{0xF8, 0xFF, 0xFE}

const opusFrameDuration = 20 * time.Millisecond

// StaticAudioSource provides an opus track that streams silence. Headless
// clients use it where a browser would capture a microphone; the provider
// still receives a well-formed audio track to answer against.
type StaticAudioSource struct{}

func NewStaticAudioSource() *StaticAudioSource {
	return &StaticAudioSource{}
}

func (s *StaticAudioSource) AcquireAudio(ctx context.Context) (CaptureTrack, error) {
	track, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{
		MimeType: webrtc.MimeTypeOpus,
	}, "audio", "voicegate")
	if err != nil {
		return nil, err
	}

	t := &staticAudioTrack{track: track, done: make(chan struct{})}
	go t.stream()
	return t, nil
}

type staticAudioTrack struct {
	track *webrtc.TrackLocalStaticSample
	done  chan struct{}
	once  sync.Once
}

func (t *staticAudioTrack) TrackLocal() webrtc.TrackLocal {
	return t.track
}

func (t *staticAudioTrack) stream() {
	ticker := time.NewTicker(opusFrameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			// WriteSample errors until the track is bound; keep feeding.
			_ = t.track.WriteSample(media.Sample{
				Data:     opusSilence,
				Duration: opusFrameDuration,
			})
		}
	}
}

func (t *staticAudioTrack) Close() error {
	t.once.Do(func() {
		close(t.done)
	})
	return nil
}
