package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"github.com/voicegate/voicegate-server/internal/model"
	"github.com/voicegate/voicegate-server/internal/repository"
)

// Mock repositories

type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) UpsertByEmail(ctx context.Context, params model.UpsertSubscriptionParams) (*model.Subscription, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) UpdateStatusBySubscriptionID(ctx context.Context, subscriptionID string, status model.SubscriptionStatus) (int64, error) {
	args := m.Called(ctx, subscriptionID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSubscriptionRepo) UpdateStatusByEmail(ctx context.Context, email string, status model.SubscriptionStatus) (int64, error) {
	args := m.Called(ctx, email, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSubscriptionRepo) FindByEmail(ctx context.Context, email string) (*model.Subscription, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*model.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) GetStatus(ctx context.Context, email string) (model.SubscriptionStatus, bool, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.SubscriptionStatus), args.Bool(1), args.Error(2)
}

func (m *mockSubscriptionRepo) WithTx(tx *sqlx.Tx) repository.SubscriptionRepository {
	return m
}

type mockWebhookEventRepo struct {
	mock.Mock
}

func (m *mockWebhookEventRepo) MarkProcessed(ctx context.Context, id, eventType string) error {
	args := m.Called(ctx, id, eventType)
	return args.Error(0)
}

func (m *mockWebhookEventRepo) WasProcessed(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockWebhookEventRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockWebhookEventRepo) WithTx(tx *sqlx.Tx) repository.WebhookEventRepository {
	return m
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyChange(ctx context.Context, email string, status model.SubscriptionStatus) {
	m.Called(ctx, email, status)
}
