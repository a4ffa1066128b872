package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/voicegate/voicegate-server/internal/model"
)

func testBroker() *Broker {
	return &Broker{
		subscribers: make(map[*Subscriber]bool),
	}
}

func addSubscriber(b *Broker, email string) *Subscriber {
	sub := &Subscriber{
		Email:   email,
		Changes: make(chan Change, 16),
		Done:    make(chan struct{}),
	}
	b.mu.Lock()
	b.subscribers[sub] = true
	b.mu.Unlock()
	return sub
}

func TestBrokerDispatch(t *testing.T) {
	t.Run("delivers to matching identity", func(t *testing.T) {
		b := testBroker()
		sub := addSubscriber(b, "a@x.com")

		b.dispatch(Change{Email: "a@x.com", Status: model.StatusCanceled, At: time.Now()})

		select {
		case change := <-sub.Changes:
			assert.Equal(t, model.StatusCanceled, change.Status)
		default:
			t.Fatal("expected a change")
		}
	})

	t.Run("filters other identities", func(t *testing.T) {
		b := testBroker()
		sub := addSubscriber(b, "a@x.com")

		b.dispatch(Change{Email: "b@x.com", Status: model.StatusActive})

		assert.Empty(t, sub.Changes)
	})

	t.Run("empty email receives everything", func(t *testing.T) {
		b := testBroker()
		firehose := addSubscriber(b, "")

		b.dispatch(Change{Email: "a@x.com", Status: model.StatusActive})
		b.dispatch(Change{Email: "b@x.com", Status: model.StatusCanceled})

		assert.Len(t, firehose.Changes, 2)
	})

	t.Run("slow consumer drops instead of blocking", func(t *testing.T) {
		b := testBroker()
		sub := &Subscriber{Email: "", Changes: make(chan Change), Done: make(chan struct{})}
		b.subscribers[sub] = true

		done := make(chan struct{})
		go func() {
			b.dispatch(Change{Email: "a@x.com", Status: model.StatusActive})
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("dispatch blocked on a full channel")
		}
	})
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := testBroker()
	sub := addSubscriber(b, "a@x.com")

	b.Unsubscribe(sub)

	select {
	case <-sub.Done:
	default:
		t.Fatal("Done should be closed after unsubscribe")
	}

	// Unsubscribing twice must not close Done again.
	b.Unsubscribe(sub)
}
