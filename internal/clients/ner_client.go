package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/dreamflow/config"
	"github.com/spacesedan/dreamflow/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// NERServiceClient talks to a remote entity extraction service. When a token
// URL is configured every request carries a client-credentials bearer token.
type NERServiceClient struct {
	Client         *http.Client
	endpoint       string
	healthURL      string
	maxRetries     int
	initialBackoff time.Duration
}

func NewNERServiceClient(ctx context.Context, cfg config.NERConfig) *NERServiceClient {
	base := &http.Client{Timeout: cfg.Timeout}
	client := base

	if cfg.TokenURL != "" {
		oauthConf := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		client = oauthConf.Client(context.WithValue(ctx, oauth2.HTTPClient, base))
		client.Timeout = cfg.Timeout
	}

	slog.Info("[NERServiceClient] Initializing Client",
		slog.String("endpoint", cfg.URL),
		slog.Duration("timeout", cfg.Timeout),
		slog.Bool("oauth", cfg.TokenURL != ""))

	return &NERServiceClient{
		Client:         client,
		endpoint:       cfg.URL,
		healthURL:      cfg.HealthURL,
		maxRetries:     MAX_RETRIES,
		initialBackoff: INITIAL_BACKOFF,
	}
}

// WithBackoff overrides the retry schedule.
func (c *NERServiceClient) WithBackoff(retries int, initial time.Duration) *NERServiceClient {
	c.maxRetries = retries
	c.initialBackoff = initial
	return c
}

// DoWithRetry retries transport errors and 5xx responses with exponential
// backoff. newReq is called for every attempt so the body can be resent.
func (c *NERServiceClient) DoWithRetry(ctx context.Context, newReq func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := c.initialBackoff

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		var req *http.Request
		req, err = newReq()
		if err != nil {
			return nil, err
		}

		resp, err = c.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		slog.Warn("[NERServiceClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		if resp != nil {
			resp.Body.Close()
			if err == nil {
				err = fmt.Errorf("status code %d", resp.StatusCode)
			}
			resp = nil
		}

		if attempt == c.maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, MAX_BACKOFF)
	}

	return nil, err
}

func (c *NERServiceClient) ExtractEntities(ctx context.Context, text string) (models.EntityResponse, error) {
	var result models.EntityResponse
	start := time.Now()

	err := c.postJSON(ctx, c.endpoint, models.EntityRequest{Inputs: text}, &result)
	if err != nil {
		slog.Error("[NERServiceClient] Entity request failed",
			slog.Duration("elapsed", time.Since(start)))
		return result, err
	}

	slog.Debug("[NERServiceClient] Entity request successful",
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

// HealthCheck reports whether the service answers its health endpoint with 2xx.
func (c *NERServiceClient) HealthCheck(ctx context.Context) bool {
	if c.healthURL == "" {
		return true
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := c.Client.Do(req)
	if err != nil {
		slog.Warn("[NERServiceClient] Health check failed",
			slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// helper function for posting data to the entity service
func (c *NERServiceClient) postJSON(ctx context.Context, endpoint string, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("[NERServiceClient] failed to marshal input: %w", err)
	}

	resp, err := c.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("[NERServiceClient] failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", USER_AGENT)
		return req, nil
	})
	if err != nil {
		slog.Error("[NERServiceClient] Failed request after retries",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("[NERServiceClient] request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("[NERServiceClient] failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		slog.Error("[NERServiceClient] Service rejected request",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
			getPreview(respBody))
		return fmt.Errorf("[NERServiceClient] unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[NERServiceClient] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))

		return fmt.Errorf("[NERServiceClient] failed to unmarshal response: %w", err)
	}

	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
