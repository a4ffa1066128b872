package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voicegate/voicegate-server/internal/metrics"
	"github.com/voicegate/voicegate-server/internal/repository"
)

// CleanupJob purges processed webhook event records older than the retention
// window. The ledger only needs to cover the billing provider's redelivery
// horizon; rows past it are dead weight.
type CleanupJob struct {
	events    repository.WebhookEventRepository
	retention time.Duration
	interval  time.Duration
	done      chan struct{}
}

func NewCleanupJob(events repository.WebhookEventRepository, retention, interval time.Duration) *CleanupJob {
	return &CleanupJob{
		events:    events,
		retention: retention,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Dur("retention", j.retention).Msg("event cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("event cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-j.retention)
	count, err := j.events.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("failed to purge processed webhook events")
		return
	}
	if count > 0 {
		metrics.EventsPurged.Add(float64(count))
		log.Info().Int64("count", count).Time("cutoff", cutoff).Msg("purged processed webhook events")
	}
}
