package translator

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/transqc/internal/placeholder"
	"github.com/valpere/transqc/internal/postprocess"
)

const ollamaDefaultURL = "http://localhost:11434"

var DefaultOllamaModels = []string{
	"llama3.2",
	"gemma2:9b",
	"qwen2.5:7b",
	"exaone3.5:7.8b",
}

// OllamaTranslator prompts a local model once per text, picking a model at
// random from its rotation for each batch.
type OllamaTranslator struct {
	cfg     ServiceConfig
	baseURL string
	models  []string
	client  *http.Client
}

func NewOllamaTranslator(cfg ServiceConfig) *OllamaTranslator {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = ollamaDefaultURL
	}
	models := cfg.Models
	if cfg.Model != "" {
		models = []string{cfg.Model}
	}
	if len(models) == 0 {
		models = DefaultOllamaModels
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaTranslator{
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		models:  models,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *OllamaTranslator) Name() string {
	return "ollama"
}

func (s *OllamaTranslator) Models() []string {
	return s.models
}

func (s *OllamaTranslator) pickModel() string {
	return s.models[rand.Intn(len(s.models))]
}

func (s *OllamaTranslator) TranslateBatch(ctx context.Context, texts []string, opts Options) ([]string, error) {
	model := s.pickModel()

	out := make([]string, 0, len(texts))
	for i, text := range texts {
		translated, err := s.translateOne(ctx, model, text, opts)
		if err != nil {
			return nil, &ProviderError{Provider: s.Name(), Err: fmt.Errorf("text %d: %w", i, err)}
		}
		out = append(out, translated)
	}
	return out, nil
}

func (s *OllamaTranslator) translateOne(ctx context.Context, model, text string, opts Options) (string, error) {
	reqBody := map[string]any{
		"model":  model,
		"system": buildSystemPrompt(opts),
		"prompt": text,
		"stream": false,
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}

	err := withRetry(ctx, s.cfg, func() error {
		return doJSON(ctx, s.client, http.MethodPost, s.baseURL+"/api/generate", nil, reqBody, &ollamaResp)
	})
	if err != nil {
		return "", err
	}

	cleaned := postprocess.Clean(ollamaResp.Response)
	if cleaned == "" {
		return "", fmt.Errorf("model %s returned an empty translation", model)
	}
	return cleaned, nil
}

// buildSystemPrompt is shared by the LLM-backed adapters.
func buildSystemPrompt(opts Options) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are a professional translator. Translate the user's text from %s to %s.\n",
		languageName(opts.SourceLang), languageName(opts.target()))
	sb.WriteString("Only respond with the translation, nothing else. No explanations, no quotes, no labels.")
	sb.WriteString(" Keep numbers, names and markup exactly as they appear. ")
	sb.WriteString(placeholder.InstructionHint())

	if c := strings.TrimSpace(opts.Context); c != "" {
		fmt.Fprintf(&sb, "\n\nCONTEXT (background for word choice; do NOT translate this):\n%s", c)
	}

	return sb.String()
}
