package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/valpere/transqc/internal/postprocess"
)

const openAIDefaultModel = "gpt-4o-mini"

// OpenAIService talks to any OpenAI-compatible chat completion API
// (OpenAI itself, OpenRouter, vLLM). Each text is a separate completion.
type OpenAIService struct {
	name   string
	cfg    ServiceConfig
	model  string
	client openai.Client
}

// NewOpenAIService registers the adapter under name, so several
// OpenAI-compatible endpoints can run side by side.
func NewOpenAIService(name string, cfg ServiceConfig) *OpenAIService {
	if name == "" {
		name = "openai"
	}
	model := cfg.Model
	if model == "" {
		model = openAIDefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		// Retries are handled by withRetry so attempts are counted once.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIService{
		name:   name,
		cfg:    cfg,
		model:  model,
		client: openai.NewClient(opts...),
	}
}

func (s *OpenAIService) Name() string {
	return s.name
}

func (s *OpenAIService) TranslateBatch(ctx context.Context, texts []string, opts Options) ([]string, error) {
	if s.cfg.APIKey == "" {
		return nil, providerErr(s.Name(), "API key required")
	}

	system := buildSystemPrompt(opts)
	out := make([]string, 0, len(texts))
	for i, text := range texts {
		translated, err := s.translateOne(ctx, system, text)
		if err != nil {
			return nil, &ProviderError{Provider: s.Name(), Err: fmt.Errorf("text %d: %w", i, err)}
		}
		out = append(out, translated)
	}
	return out, nil
}

func (s *OpenAIService) translateOne(ctx context.Context, system, text string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0.2),
	}

	var content string
	err := withRetry(ctx, s.cfg, func() error {
		resp, err := s.client.Chat.Completions.New(ctx, params)
		if err != nil {
			var apiErr *openai.Error
			if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 &&
				apiErr.StatusCode != http.StatusTooManyRequests {
				return retry.Unrecoverable(err)
			}
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty response from API")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}

	cleaned := postprocess.Clean(content)
	if strings.TrimSpace(cleaned) == "" {
		return "", errors.New("model returned an empty translation")
	}
	return cleaned, nil
}
