package model

import (
	"time"
)

// SubscriptionStatus is stored verbatim as reported by the billing provider.
// The named constants cover the statuses this system acts on; lifecycle events
// may carry other provider statuses (past_due, unpaid, ...) which are persisted
// as-is and simply never satisfy the access gate.
type SubscriptionStatus string

const (
	StatusInactive SubscriptionStatus = "inactive"
	StatusActive   SubscriptionStatus = "active"
	StatusCanceled SubscriptionStatus = "canceled"
	// StatusTest marks records written by the diagnostics path. It never
	// satisfies the access gate unless ALLOW_TEST_ENTITLEMENT is set.
	StatusTest SubscriptionStatus = "test"
)

type Subscription struct {
	ID             string             `db:"id" json:"id"`
	Email          string             `db:"email" json:"email"`
	SubscriptionID *string            `db:"subscription_id" json:"subscriptionId,omitempty"`
	Status         SubscriptionStatus `db:"status" json:"status"`
	CreatedAt      time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `db:"updated_at" json:"updatedAt"`
}

type UpsertSubscriptionParams struct {
	Email          string
	SubscriptionID string
	Status         SubscriptionStatus
}
