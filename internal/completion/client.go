// Package completion calls an OpenAI-compatible chat-completions endpoint (OpenRouter by default).
package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Defaults used when Config leaves a field unset.
const (
	DefaultBaseURL   = "https://openrouter.ai/api/v1"
	DefaultModel     = "openai/gpt-4-turbo"
	DefaultMaxTokens = 1000
	DefaultTimeout   = 30 * time.Second

	// NoResponse replaces an empty answer from the provider.
	NoResponse = "No response"
)

const systemPromptTemplate = `You are a security assistant for police officers. You can ONLY answer questions based on the provided alert data. Do not make assumptions or provide information not in the context.

Context:
%s

If the user asks about anything not in this context, politely inform them you can only analyze the provided alerts.`

// Completion is a successful model answer.
type Completion struct {
	Answer     string
	Model      string
	TokensUsed int
}

// Completer produces an answer to query using only contextText.
type Completer interface {
	Complete(ctx context.Context, query, contextText string) (*Completion, error)
}

// UpstreamError is returned for every provider failure: transport error, timeout, non-2xx status or a
// malformed payload. Message is safe to record in the audit log.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Message)
	}
	return "upstream: " + e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Config configures Client.
type Config struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	// RPS limits requests per second towards the provider; 0 disables limiting.
	RPS float64
	// Referer and Title are sent as OpenRouter attribution headers when set.
	Referer string
	Title   string
}

// Client is a Completer backed by resty. It never retries.
type Client struct {
	http      *resty.Client
	model     string
	maxTokens int
	timeout   time.Duration
	limiter   *rate.Limiter
}

// NewClient returns a Client for cfg, applying defaults to unset fields.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)
	if cfg.APIKey != "" {
		c.SetAuthToken(cfg.APIKey)
	}
	if cfg.Referer != "" {
		c.SetHeader("HTTP-Referer", cfg.Referer)
	}
	if cfg.Title != "" {
		c.SetHeader("X-Title", cfg.Title)
	}

	var lim *rate.Limiter
	if cfg.RPS > 0 {
		burst := int(cfg.RPS)
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	return &Client{http: c, model: cfg.Model, maxTokens: cfg.MaxTokens, timeout: cfg.Timeout, limiter: lim}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SystemPrompt returns the fixed instruction with contextText embedded.
func SystemPrompt(contextText string) string {
	return fmt.Sprintf(systemPromptTemplate, contextText)
}

// Complete sends one chat-completion request. The whole call, including any wait on the rate limiter,
// is bounded by the configured timeout.
func (c *Client) Complete(ctx context.Context, query, contextText string) (*Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &UpstreamError{Message: "rate limiter: " + err.Error(), Err: err}
		}
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt(contextText)},
			{Role: "user", Content: query},
		},
		MaxTokens: c.maxTokens,
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&body).
		Post("/chat/completions")
	if err != nil {
		return nil, &UpstreamError{Message: err.Error(), Err: err}
	}

	var cr chatResponse
	decodeErr := json.Unmarshal(resp.Body(), &cr)
	if !resp.IsSuccess() {
		msg := strings.TrimSpace(resp.String())
		if decodeErr == nil && cr.Error != nil && cr.Error.Message != "" {
			msg = cr.Error.Message
		}
		if msg == "" {
			msg = resp.Status()
		}
		return nil, &UpstreamError{StatusCode: resp.StatusCode(), Message: msg}
	}
	if decodeErr != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode(), Message: "decode response: " + decodeErr.Error(), Err: decodeErr}
	}
	if len(cr.Choices) == 0 {
		msg := "response contained no choices"
		if cr.Error != nil && cr.Error.Message != "" {
			msg = cr.Error.Message
		}
		return nil, &UpstreamError{StatusCode: resp.StatusCode(), Message: msg}
	}

	answer := cr.Choices[0].Message.Content
	if strings.TrimSpace(answer) == "" {
		answer = NoResponse
	}
	out := &Completion{Answer: answer, Model: cr.Model}
	if out.Model == "" {
		out.Model = c.model
	}
	if cr.Usage != nil {
		out.TokensUsed = cr.Usage.TotalTokens
	}
	return out, nil
}
