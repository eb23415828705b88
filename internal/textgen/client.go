// Package textgen implements the text-generation collaborator: a chat
// completions client with an ordered model fallback list and fixed-backoff
// retries on rate limiting. Callers treat Complete as an opaque, possibly
// slow, possibly failing operation; it only errors once every model is
// exhausted.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/agenciapulso/go-agency-backend/internal/config"
)

// ErrExhausted is returned when every configured model failed for a prompt.
var ErrExhausted = errors.New("textgen: all models failed")

// Client is a chat-completions API client.
type Client struct {
	http       *resty.Client
	models     []string
	maxRetries int
	backoff    time.Duration

	// sleep is swapped in tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Client from the text-generation configuration.
func New(cfg config.TextGenConfig) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetAuthToken(cfg.APIKey),
		models:     cfg.Models,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
		sleep:      sleepCtx,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt to the first available model and returns the
// completion text. Rate-limited attempts wait a fixed backoff and retry on
// the same model; after maxRetries the next model in the list is tried.
// Only when the whole list is exhausted does Complete return ErrExhausted.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	for _, model := range c.models {
		for attempt := 0; attempt < c.maxRetries; attempt++ {
			text, err := c.complete(ctx, model, prompt)
			if err == nil {
				return text, nil
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if isRateLimited(err) && attempt < c.maxRetries-1 {
				log.Warn().Str("model", model).Dur("backoff", c.backoff).Msg("textgen rate limited, backing off")
				if serr := c.sleep(ctx, c.backoff); serr != nil {
					return "", serr
				}
				continue
			}
			log.Warn().Err(err).Str("model", model).Msg("textgen model failed, trying fallback")
			break
		}
	}
	return "", ErrExhausted
}

func (c *Client) complete(ctx context.Context, model, prompt string) (string, error) {
	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       model,
			Messages:    []chatMessage{{Role: "user", Content: prompt}},
			Temperature: 0.7,
			MaxTokens:   2048,
		}).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("textgen: %s: %w", model, err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return "", fmt.Errorf("textgen: %s: rate limited (429)", model)
	}
	if resp.IsError() {
		return "", fmt.Errorf("textgen: %s: status %d: %s", model, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("textgen: %s: empty response", model)
	}
	return out.Choices[0].Message.Content, nil
}

// isRateLimited matches the API's rate limit signals in error text.
func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate")
}

// sleepCtx waits for d or until the context is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
