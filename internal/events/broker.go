package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voicegate/voicegate-server/internal/model"
	redisclient "github.com/voicegate/voicegate-server/internal/redis"
)

// Change describes a subscription status transition. Every billing or
// diagnostic mutation produces exactly one Change.
type Change struct {
	Email  string                   `json:"email"`
	Status model.SubscriptionStatus `json:"status"`
	At     time.Time                `json:"at"`
}

type Subscriber struct {
	// Email filters the feed to one identity; empty receives everything.
	Email   string
	Changes chan Change
	Done    chan struct{}
}

// Broker fans subscription status changes out over redis pub/sub so every
// server process observes mutations applied by any of them. The access gate
// itself always reads the store; the broker exists for live enforcement and
// operational visibility, not for authorization decisions.
type Broker struct {
	redis       *redisclient.Client
	subscribers map[*Subscriber]bool
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	once        sync.Once
}

func NewBroker(redisClient *redisclient.Client) *Broker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		redis:       redisClient,
		subscribers: make(map[*Subscriber]bool),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Subscribe registers a listener. An empty email receives all changes.
func (b *Broker) Subscribe(email string) *Subscriber {
	sub := &Subscriber{
		Email:   email,
		Changes: make(chan Change, 16),
		Done:    make(chan struct{}),
	}

	b.mu.Lock()
	b.subscribers[sub] = true
	count := len(b.subscribers)
	b.mu.Unlock()

	b.once.Do(func() {
		go b.listen()
	})

	log.Debug().
		Str("email", email).
		Int("subscriberCount", count).
		Msg("entitlement change subscriber registered")

	return sub
}

func (b *Broker) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers[sub] {
		delete(b.subscribers, sub)
		close(sub.Done)
	}
}

// NotifyChange publishes a status change. Failures are logged, not returned:
// the mutation has already committed and the store remains authoritative.
func (b *Broker) NotifyChange(ctx context.Context, email string, status model.SubscriptionStatus) {
	change := Change{
		Email:  email,
		Status: status,
		At:     time.Now(),
	}

	data, err := json.Marshal(change)
	if err != nil {
		log.Error().Err(err).Msg("marshal entitlement change")
		return
	}

	if err := b.redis.Publish(ctx, redisclient.EntitlementChannel, data).Err(); err != nil {
		log.Warn().Err(err).Str("email", email).Msg("publish entitlement change failed")
	}
}

func (b *Broker) listen() {
	pubsub := b.redis.Subscribe(b.ctx, redisclient.EntitlementChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var change Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				log.Warn().Err(err).Msg("malformed entitlement change payload")
				continue
			}
			b.dispatch(change)
		}
	}
}

func (b *Broker) dispatch(change Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		if sub.Email != "" && sub.Email != change.Email {
			continue
		}
		select {
		case sub.Changes <- change:
		default:
			// Slow consumers drop changes rather than block the feed.
		}
	}
}

func (b *Broker) Close() {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subscribers {
		delete(b.subscribers, sub)
		close(sub.Done)
	}
}
