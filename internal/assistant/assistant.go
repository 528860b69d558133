// Package assistant proxies spending-advice prompts to the Gemini API.
//
// Upstream calls are expensive and rate limited, so the client keeps a
// TTL cache of responses keyed by a hash of the prompt, and a per-actor
// cooldown gate. Both are injected dependencies, not package globals.
package assistant

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/goldenleaf/goldpay/internal/cache"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1/models/gemini-2.5-pro:generateContent"

// CooldownError reports that the actor must wait before the next upstream
// call. A previously cached suggestion may still be attached.
type CooldownError struct {
	Wait   time.Duration
	Cached string // last cached suggestion for this prompt, if any
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %ds before requesting again", int(e.Wait.Seconds()+0.999))
}

// UpstreamError is a non-2xx reply from the Gemini API.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d", e.Status)
}

// Client calls the Gemini API with caching and per-actor rate limiting.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	cache      *cache.TTL
	cooldown   *cache.Cooldown
}

// New creates a Client. cache holds responses (keyed by prompt hash);
// cooldown gates upstream calls per actor.
func New(apiKey string, responses *cache.TTL, cooldown *cache.Cooldown) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		cache:      responses,
		cooldown:   cooldown,
	}
}

// Result is a suggestion plus whether it was served from cache.
type Result struct {
	Suggestion string
	Cached     bool
}

// Suggest returns a suggestion for the prompt. The actor key (user email
// or client address) is rate limited unless force is set. Cached responses
// are served without consulting upstream; on upstream failure a stale
// cached response is preferred over an error.
func (c *Client) Suggest(ctx context.Context, prompt, actor string, force bool) (*Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("assistant API key not configured")
	}

	key := promptHash(prompt)

	if !force {
		if wait, ok := c.cooldown.Reserve(actor); !ok {
			cached, _ := c.cache.Get(key)
			return nil, &CooldownError{Wait: wait, Cached: cached}
		}
	}

	if suggestion, ok := c.cache.Get(key); ok {
		return &Result{Suggestion: suggestion, Cached: true}, nil
	}

	suggestion, err := c.generate(ctx, prompt)
	if err != nil {
		// Prefer stale cache over an error page.
		if cached, ok := c.cache.GetStale(key); ok {
			slog.Warn("assistant upstream failed, serving cached suggestion", "error", err)
			return &Result{Suggestion: cached, Cached: true}, nil
		}
		return nil, err
	}

	c.cache.Set(key, suggestion)
	return &Result{Suggestion: suggestion}, nil
}

// generate performs the upstream call with a bounded constant backoff for
// rate-limit and transient server errors.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	})
	if err != nil {
		return "", err
	}

	var suggestion string
	backoff := retry.WithMaxRetries(2, retry.NewConstant(2*time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"?key="+c.apiKey, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.StatusCode != http.StatusOK {
			upstreamErr := &UpstreamError{Status: resp.StatusCode, Body: string(payload)}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return retry.RetryableError(upstreamErr)
			}
			return upstreamErr
		}

		suggestion, err = extractText(payload)
		return err
	})
	if err != nil {
		return "", err
	}
	return suggestion, nil
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

var (
	bulletPattern  = regexp.MustCompile(`\*\s*`)
	newlinePattern = regexp.MustCompile(`\n+`)
)

// extractText pulls the first candidate's text and flattens the markdown
// bullets the model likes to produce.
func extractText(payload []byte) (string, error) {
	var parsed generateResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode upstream response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "No response text found", nil
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	text = bulletPattern.ReplaceAllString(text, "<br><br>• ")
	text = newlinePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text), nil
}

func promptHash(prompt string) string {
	sum := sha1.Sum([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
