package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type WebhookEventRepository interface {
	// MarkProcessed records an event id after its effect has been applied.
	// Recording an already-known id is a no-op.
	MarkProcessed(ctx context.Context, id, eventType string) error
	WasProcessed(ctx context.Context, id string) (bool, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) WebhookEventRepository
}

type webhookEventRepo struct {
	db sqlxDB
}

func NewWebhookEventRepository(db *sqlx.DB) WebhookEventRepository {
	return &webhookEventRepo{db: db}
}

func (r *webhookEventRepo) WithTx(tx *sqlx.Tx) WebhookEventRepository {
	return &webhookEventRepo{db: tx}
}

func (r *webhookEventRepo) MarkProcessed(ctx context.Context, id, eventType string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO webhook_events (id, event_type)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, id, eventType)
	return err
}

func (r *webhookEventRepo) WasProcessed(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM webhook_events WHERE id = $1)
	`, id)
	return exists, err
}

func (r *webhookEventRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM webhook_events WHERE processed_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
