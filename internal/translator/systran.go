package translator

import (
	"context"
	"net/http"
	"time"
)

const systranDefaultURL = "https://api-systran-systran-translation-v1.p.rapidapi.com"

// SystranService accepts the whole batch in one request; the API answers with
// one output per input text.
type SystranService struct {
	cfg     ServiceConfig
	baseURL string
	client  *http.Client
}

func NewSystranService(cfg ServiceConfig) *SystranService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = systranDefaultURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SystranService{
		cfg:     cfg,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *SystranService) Name() string {
	return "systran"
}

func (s *SystranService) TranslateBatch(ctx context.Context, texts []string, opts Options) ([]string, error) {
	if s.cfg.APIKey == "" {
		return nil, providerErr(s.Name(), "Systran API key required")
	}
	if len(texts) == 0 {
		return []string{}, nil
	}

	source := baseLang(opts.SourceLang)
	if source == "" {
		source = "auto"
	}
	body := map[string]any{
		"text":   texts,
		"source": source,
		"target": baseLang(opts.target()),
		"format": "text",
	}
	headers := map[string]string{
		"X-RapidAPI-Key":  s.cfg.APIKey,
		"X-RapidAPI-Host": "api-systran-systran-translation-v1.p.rapidapi.com",
	}

	var systranResp struct {
		Outputs []struct {
			Output string `json:"output"`
			Error  string `json:"error"`
		} `json:"outputs"`
	}

	err := withRetry(ctx, s.cfg, func() error {
		return doJSON(ctx, s.client, http.MethodPost, s.baseURL+"/translation/text/translate", headers, body, &systranResp)
	})
	if err != nil {
		return nil, &ProviderError{Provider: s.Name(), Err: err}
	}

	if err := checkCount(s.Name(), len(texts), len(systranResp.Outputs)); err != nil {
		return nil, err
	}

	out := make([]string, len(texts))
	for i, o := range systranResp.Outputs {
		if o.Error != "" {
			return nil, providerErr(s.Name(), "output %d: %s", i, o.Error)
		}
		if o.Output == "" {
			return nil, providerErr(s.Name(), "empty translation for input %d", i)
		}
		out[i] = o.Output
	}
	return out, nil
}
