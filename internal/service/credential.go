package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voicegate/voicegate-server/internal/config"
)

// CredentialService mints short-lived credentials from the remote voice
// provider. Each credential is scoped to exactly one realtime session and is
// never cached; a failed or retried negotiation always mints a fresh one.
type CredentialService struct {
	client      *http.Client
	sessionsURL string
	apiKey      string
	model       string
	voice       string
}

func NewCredentialService(sessionsURL, apiKey, model, voice string) *CredentialService {
	return &CredentialService{
		client: &http.Client{
			Timeout: config.CredentialMintTimeout,
		},
		sessionsURL: sessionsURL,
		apiKey:      apiKey,
		model:       model,
		voice:       voice,
	}
}

// Mint requests a fresh ephemeral credential and returns the provider's
// response payload verbatim for the caller to hand to the client.
func (s *CredentialService) Mint(ctx context.Context) ([]byte, error) {
	body, err := json.Marshal(map[string]string{
		"model": s.model,
		"voice": s.voice,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sessionsURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().
			Err(err).
			Dur("elapsed", elapsed).
			Msg("credential mint request error")
		return nil, fmt.Errorf("credential request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read credential response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Msg("credential mint failed")
		return nil, fmt.Errorf("credential mint failed with status %d", resp.StatusCode)
	}

	log.Info().
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("ephemeral credential minted")

	return payload, nil
}
