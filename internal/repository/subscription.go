package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/voicegate/voicegate-server/internal/model"
)

type SubscriptionRepository interface {
	// UpsertByEmail inserts or replaces the record keyed by email. Replaying
	// the same params converges to the same row.
	UpsertByEmail(ctx context.Context, params model.UpsertSubscriptionParams) (*model.Subscription, error)
	// UpdateStatusBySubscriptionID is a conditional update: it returns the
	// number of matched rows and never creates a record on miss.
	UpdateStatusBySubscriptionID(ctx context.Context, subscriptionID string, status model.SubscriptionStatus) (int64, error)
	// UpdateStatusByEmail is the administrative override used by diagnostics.
	UpdateStatusByEmail(ctx context.Context, email string, status model.SubscriptionStatus) (int64, error)
	FindByEmail(ctx context.Context, email string) (*model.Subscription, error)
	FindBySubscriptionID(ctx context.Context, subscriptionID string) (*model.Subscription, error)
	// GetStatus returns the stored status and whether a record exists.
	GetStatus(ctx context.Context, email string) (model.SubscriptionStatus, bool, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) SubscriptionRepository
}

type subscriptionRepo struct {
	db sqlxDB
}

// sqlxDB is an interface satisfied by both *sqlx.DB and *sqlx.Tx
type sqlxDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func NewSubscriptionRepository(db *sqlx.DB) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) WithTx(tx *sqlx.Tx) SubscriptionRepository {
	return &subscriptionRepo{db: tx}
}

func (r *subscriptionRepo) UpsertByEmail(ctx context.Context, params model.UpsertSubscriptionParams) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.GetContext(ctx, &sub, `
		INSERT INTO subscriptions (email, subscription_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET
			subscription_id = EXCLUDED.subscription_id,
			status = EXCLUDED.status,
			updated_at = now()
		RETURNING *
	`, params.Email, params.SubscriptionID, params.Status)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepo) UpdateStatusBySubscriptionID(ctx context.Context, subscriptionID string, status model.SubscriptionStatus) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET
			status = $2,
			updated_at = now()
		WHERE subscription_id = $1
	`, subscriptionID, status)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *subscriptionRepo) UpdateStatusByEmail(ctx context.Context, email string, status model.SubscriptionStatus) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET
			status = $2,
			updated_at = now()
		WHERE email = $1
	`, email, status)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *subscriptionRepo) FindByEmail(ctx context.Context, email string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.GetContext(ctx, &sub, `
		SELECT * FROM subscriptions WHERE email = $1
	`, email)
	return HandleNotFound(&sub, err)
}

func (r *subscriptionRepo) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.GetContext(ctx, &sub, `
		SELECT * FROM subscriptions WHERE subscription_id = $1
	`, subscriptionID)
	return HandleNotFound(&sub, err)
}

func (r *subscriptionRepo) GetStatus(ctx context.Context, email string) (model.SubscriptionStatus, bool, error) {
	var status model.SubscriptionStatus
	err := r.db.GetContext(ctx, &status, `
		SELECT status FROM subscriptions WHERE email = $1
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return status, true, nil
}
