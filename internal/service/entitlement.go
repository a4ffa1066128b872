package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/voicegate/voicegate-server/internal/model"
	"github.com/voicegate/voicegate-server/internal/repository"
	"github.com/voicegate/voicegate-server/internal/util"
)

// EntitlementService answers the single question the voice feature gates on:
// does this identity hold an active subscription right now. Every call hits
// the store; decisions are never cached across session attempts.
type EntitlementService struct {
	subs      repository.SubscriptionRepository
	allowTest bool
}

func NewEntitlementService(subs repository.SubscriptionRepository, allowTest bool) *EntitlementService {
	return &EntitlementService{
		subs:      subs,
		allowTest: allowTest,
	}
}

func (s *EntitlementService) Authorized(ctx context.Context, email string) (bool, error) {
	status, found, err := s.subs.GetStatus(ctx, email)
	if err != nil {
		return false, fmt.Errorf("get subscription status: %w", err)
	}
	if !found {
		return false, nil
	}

	switch status {
	case model.StatusActive:
		return true, nil
	case model.StatusTest:
		if s.allowTest {
			log.Debug().Str("email", util.MaskEmail(email)).Msg("test subscription authorized by config flag")
			return true, nil
		}
		return false, nil
	default:
		return false, nil
	}
}
