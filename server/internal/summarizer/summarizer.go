package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/obsidianstack/hostpulse/server/internal/config"
)

// Placeholder is the reply used when no credential is configured.
const Placeholder = "AI summary unavailable: no API key configured."

// Sentinel errors returned by Explain.
var (
	ErrNotConfigured   = errors.New("summarizer: no API key configured")
	ErrPayloadTooLarge = errors.New("summarizer: payload too large")
	ErrUpstream        = errors.New("summarizer: upstream request failed")
)

const systemPrompt = "You are a site reliability assistant. In two or three short sentences, " +
	"explain the host health report to an operator. Name any failing checks " +
	"and suggest one concrete next step. If everything passed, say so plainly."

// Summarizer calls the chat completions API. It is safe for concurrent use.
type Summarizer struct {
	client     openai.Client
	model      string
	maxTokens  int64
	configured bool
}

// New builds a Summarizer from cfg. It does not contact the API; a missing
// credential yields a Summarizer whose Explain returns ErrNotConfigured.
func New(cfg config.SummarizerConfig) *Summarizer {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Summarizer{
		client:     openai.NewClient(opts...),
		model:      cfg.Model,
		maxTokens:  int64(cfg.MaxTokens),
		configured: cfg.HasAPIKey(),
	}
}

// Configured reports whether a credential is available.
func (s *Summarizer) Configured() bool {
	return s.configured
}

// Explain asks the model for a narrative of in. The deadline is taken from ctx.
func (s *Summarizer) Explain(ctx context.Context, in Input) (string, error) {
	if !s.configured {
		return "", ErrNotConfigured
	}

	user, err := userMessage(in)
	if err != nil {
		return "", err
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(user),
		},
	}
	if s.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(s.maxTokens)
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrUpstream)
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", ErrUpstream)
	}
	return reply, nil
}
