// Package translate wraps the machine translation endpoint used to carry
// segment text into the target language.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dubsmart/internal/config"
)

// Translator converts one text from source to target language.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// HTTPClient posts to a LibreTranslate-compatible endpoint.
type HTTPClient struct {
	cfg    config.Translator
	client *http.Client
}

// NewHTTPClient creates the MT client with the configured timeout.
func NewHTTPClient(cfg config.Translator) *HTTPClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

func (c *HTTPClient) Translate(ctx context.Context, text, source, target string) (string, error) {
	if c.cfg.Endpoint == "" {
		return "", fmt.Errorf("translate: no endpoint configured")
	}
	if source == "" {
		source = "auto"
	}

	body, err := json.Marshal(translateRequest{
		Q:      text,
		Source: source,
		Target: target,
		Format: "text",
		APIKey: c.cfg.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("translate: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("translate: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("translate: read response: %w", err)
	}

	var parsed translateResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("translate: decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := strings.TrimSpace(parsed.Error)
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("translate: endpoint returned %d: %s", resp.StatusCode, detail)
	}
	return parsed.TranslatedText, nil
}
