package rtc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voicegate/voicegate-server/internal/config"
)

// GatewayClient talks to the voicegate server's public API: the access gate
// and the ephemeral credential endpoint. It implements CredentialSource.
type GatewayClient struct {
	client  *http.Client
	baseURL string
}

func NewGatewayClient(baseURL string) *GatewayClient {
	return &GatewayClient{
		client: &http.Client{
			Timeout: config.CredentialMintTimeout,
		},
		baseURL: baseURL,
	}
}

// CheckAccess asks the gate whether this identity may start a session.
func (c *GatewayClient) CheckAccess(ctx context.Context, email string) (bool, error) {
	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return false, fmt.Errorf("marshal access request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/sub-status", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create access request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("access check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("access check returned status %d", resp.StatusCode)
	}

	var result struct {
		Authorized bool `json:"authorized"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode access response: %w", err)
	}
	return result.Authorized, nil
}

// Fetch mints a fresh ephemeral credential through the gateway.
func (c *GatewayClient) Fetch(ctx context.Context) (Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/session", nil)
	if err != nil {
		return Credential{}, fmt.Errorf("create session request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("session request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Credential{}, fmt.Errorf("read session response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Credential{}, fmt.Errorf("session request returned status %d", resp.StatusCode)
	}

	var session struct {
		ClientSecret struct {
			Value     string `json:"value"`
			ExpiresAt int64  `json:"expires_at"`
		} `json:"client_secret"`
	}
	if err := json.Unmarshal(payload, &session); err != nil {
		return Credential{}, fmt.Errorf("decode session response: %w", err)
	}
	if session.ClientSecret.Value == "" {
		return Credential{}, fmt.Errorf("session response missing client secret")
	}

	return Credential{
		Token:     session.ClientSecret.Value,
		ExpiresAt: time.Unix(session.ClientSecret.ExpiresAt, 0),
	}, nil
}
