// Package genai provides the text-generation collaborator using the OpenAI API.
//
// The client is only ever asked to phrase messages: it receives the stage
// instruction, recent transcript, and a read-only context bag, and returns a
// single reply. It never makes state decisions and never writes the record.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Typed generation failures. Callers branch with errors.Is; every failure is
// surfaced to the user as a single apology message and never rolls back
// already-committed state.
var (
	ErrMissingCredential = errors.New("genai: API key missing or invalid")
	ErrQuotaExceeded     = errors.New("genai: API quota exceeded")
	ErrRateLimited       = errors.New("genai: rate limit reached")
	ErrNoChoices         = errors.New("genai: no choices returned")
)

// ClientInterface defines the generation operations the session layer depends on.
type ClientInterface interface {
	GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey string
	Model  openai.ChatModel
}

// Option configures the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the API key explicitly instead of reading the environment.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the default chat model.
func WithModel(model openai.ChatModel) Option {
	return func(o *Opts) { o.Model = model }
}

// Client wraps the OpenAI chat completion service for phrasing conversation replies.
type Client struct {
	client openai.Client
	model  openai.ChatModel
}

// NewClient initializes a GenAI client. The API key comes from options or the
// OPENAI_API_KEY environment variable.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		slog.Error("genai.NewClient: OPENAI_API_KEY not set")
		return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrMissingCredential)
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4o
	}
	slog.Debug("genai.NewClient: client created", "model", cfg.Model)
	return &Client{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  cfg.Model,
	}, nil
}

// GenerateWithMessages generates a reply from a full message sequence
// (system instruction, recent history, latest user turn).
func (c *Client) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		classified := classifyError(err)
		slog.Error("genai.GenerateWithMessages: completion failed", "error", classified)
		return "", classified
	}
	if len(resp.Choices) == 0 {
		slog.Error("genai.GenerateWithMessages: empty choices in response")
		return "", ErrNoChoices
	}
	slog.Debug("genai.GenerateWithMessages: completion succeeded", "messages", len(messages))
	return resp.Choices[0].Message.Content, nil
}

// classifyError maps OpenAI API errors onto the typed failure taxonomy.
func classifyError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 401 || apierr.StatusCode == 403:
			return fmt.Errorf("%w: %s", ErrMissingCredential, apierr.Message)
		case apierr.StatusCode == 429 && apierr.Code == "insufficient_quota":
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, apierr.Message)
		case apierr.StatusCode == 429:
			return fmt.Errorf("%w: %s", ErrRateLimited, apierr.Message)
		}
	}
	return fmt.Errorf("genai: generation failed: %w", err)
}
