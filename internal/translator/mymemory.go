package translator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
)

const myMemoryDefaultURL = "https://api.mymemory.translated.net"

// MyMemoryService has no batch endpoint, so texts are sent one at a time.
// Any failing text fails the whole batch.
type MyMemoryService struct {
	cfg     ServiceConfig
	email   string
	baseURL string
	client  *http.Client
}

func NewMyMemoryService(cfg ServiceConfig) *MyMemoryService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = myMemoryDefaultURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MyMemoryService{
		cfg:     cfg,
		email:   cfg.Email,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *MyMemoryService) Name() string {
	return "mymemory"
}

func (s *MyMemoryService) TranslateBatch(ctx context.Context, texts []string, opts Options) ([]string, error) {
	source := baseLang(opts.SourceLang)
	if source == "" {
		// MyMemory rejects "auto"; Korean is the most common source here.
		source = "ko"
	}
	langPair := fmt.Sprintf("%s|%s", source, baseLang(opts.target()))

	out := make([]string, 0, len(texts))
	for i, text := range texts {
		translated, err := s.translateOne(ctx, text, langPair)
		if err != nil {
			return nil, &ProviderError{Provider: s.Name(), Err: fmt.Errorf("text %d: %w", i, err)}
		}
		out = append(out, translated)
	}
	return out, nil
}

func (s *MyMemoryService) translateOne(ctx context.Context, text, langPair string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", langPair)
	if s.email != "" {
		q.Set("de", s.email)
	}
	apiURL := s.baseURL + "/get?" + q.Encode()

	var mymemResp struct {
		ResponseData struct {
			TranslatedText string  `json:"translatedText"`
			Match          float64 `json:"match"`
		} `json:"responseData"`
		ResponseStatus  int    `json:"responseStatus"`
		ResponseDetails string `json:"responseDetails"`
	}

	err := withRetry(ctx, s.cfg, func() error {
		if err := doJSON(ctx, s.client, http.MethodGet, apiURL, nil, nil, &mymemResp); err != nil {
			return err
		}
		if mymemResp.ResponseStatus != http.StatusOK {
			return retry.Unrecoverable(fmt.Errorf("API error: %s (%d)", mymemResp.ResponseDetails, mymemResp.ResponseStatus))
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return mymemResp.ResponseData.TranslatedText, nil
}
