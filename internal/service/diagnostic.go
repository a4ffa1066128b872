package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/voicegate/voicegate-server/internal/errors"
	"github.com/voicegate/voicegate-server/internal/model"
	"github.com/voicegate/voicegate-server/internal/repository"
	"github.com/voicegate/voicegate-server/internal/util"
)

// Diagnostic actions mirror the billing lifecycle so operators can verify the
// gate end to end without a real checkout.
const (
	DiagnosticActionCreate   = "create"
	DiagnosticActionUpdate   = "update"
	DiagnosticActionCancel   = "cancel"
	DiagnosticActionMarkTest = "mark-test"
	DiagnosticActionCheck    = "check"
)

type DiagnosticResult struct {
	Action       string              `json:"action"`
	Email        string              `json:"email"`
	Subscription *model.Subscription `json:"subscription,omitempty"`
}

type DiagnosticService struct {
	subs     repository.SubscriptionRepository
	notifier ChangeNotifier
}

func NewDiagnosticService(subs repository.SubscriptionRepository, notifier ChangeNotifier) *DiagnosticService {
	return &DiagnosticService{
		subs:     subs,
		notifier: notifier,
	}
}

func (s *DiagnosticService) Run(ctx context.Context, email, action string) (*DiagnosticResult, error) {
	result := &DiagnosticResult{Action: action, Email: email}

	switch action {
	case DiagnosticActionCreate:
		sub, err := s.subs.UpsertByEmail(ctx, model.UpsertSubscriptionParams{
			Email:          email,
			SubscriptionID: "test_sub_" + uuid.NewString(),
			Status:         model.StatusActive,
		})
		if err != nil {
			return nil, fmt.Errorf("diagnostic create: %w", err)
		}
		result.Subscription = sub
		s.notifyChange(ctx, sub.Email, sub.Status)

	case DiagnosticActionUpdate:
		if err := s.setStatus(ctx, email, model.StatusActive); err != nil {
			return nil, err
		}

	case DiagnosticActionCancel:
		if err := s.setStatus(ctx, email, model.StatusCanceled); err != nil {
			return nil, err
		}

	case DiagnosticActionMarkTest:
		if err := s.setStatus(ctx, email, model.StatusTest); err != nil {
			return nil, err
		}

	case DiagnosticActionCheck:
		sub, err := s.subs.FindByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("diagnostic check: %w", err)
		}
		if sub == nil {
			return nil, apperrors.NotFound("Subscription")
		}
		result.Subscription = sub

	default:
		return nil, apperrors.InvalidInput("action", "use create, update, cancel, mark-test, or check")
	}

	log.Info().
		Str("action", action).
		Str("email", util.MaskEmail(email)).
		Msg("diagnostic action completed")

	return result, nil
}

func (s *DiagnosticService) setStatus(ctx context.Context, email string, status model.SubscriptionStatus) error {
	n, err := s.subs.UpdateStatusByEmail(ctx, email, status)
	if err != nil {
		return fmt.Errorf("diagnostic set status: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound("Subscription")
	}
	s.notifyChange(ctx, email, status)
	return nil
}

func (s *DiagnosticService) notifyChange(ctx context.Context, email string, status model.SubscriptionStatus) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyChange(ctx, email, status)
}
