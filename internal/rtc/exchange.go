package rtc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/voicegate/voicegate-server/internal/config"
)

// StatusError is a non-2xx answer from the remote party.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("answer exchange returned status %d", e.Code)
}

// HTTPExchanger posts the offer SDP to the provider's realtime endpoint and
// reads the answer SDP from the response body.
type HTTPExchanger struct {
	client  *http.Client
	baseURL string
	model   string
}

func NewHTTPExchanger(baseURL, model string) *HTTPExchanger {
	return &HTTPExchanger{
		client: &http.Client{
			Timeout: config.AnswerExchangeTimeout,
		},
		baseURL: baseURL,
		model:   model,
	}
}

func (e *HTTPExchanger) Exchange(ctx context.Context, offer string, cred Credential) (string, error) {
	endpoint := e.baseURL + "?model=" + url.QueryEscape(e.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(offer))
	if err != nil {
		return "", fmt.Errorf("create exchange request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.Token)
	req.Header.Set("Content-Type", "application/sdp")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("answer exchange failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Code: resp.StatusCode}
	}

	answer, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return string(answer), nil
}
