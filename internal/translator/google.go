package translator

import (
	"context"
	"fmt"
	"html"

	translate "cloud.google.com/go/translate"
	"google.golang.org/api/option"
)

// GoogleService sends the whole batch in a single Cloud Translation call.
type GoogleService struct {
	cfg ServiceConfig
}

func NewGoogleService(cfg ServiceConfig) *GoogleService {
	return &GoogleService{cfg: cfg}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if s.cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(s.cfg.Credentials))
	}
	if s.cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(s.cfg.APIKey))
	}
	if s.cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(s.cfg.BaseURL))
	}
	if s.cfg.ProjectID != "" {
		opts = append(opts, option.WithQuotaProject(s.cfg.ProjectID))
	}
	return opts
}

func (s *GoogleService) TranslateBatch(ctx context.Context, texts []string, opts Options) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	target, ok := langTag(opts.target())
	if !ok {
		return nil, providerErr(s.Name(), "invalid target language %q", opts.target())
	}

	var topts *translate.Options
	if source, ok := langTag(opts.SourceLang); ok {
		topts = &translate.Options{Source: source, Format: translate.Text}
	} else {
		topts = &translate.Options{Format: translate.Text}
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	client, err := translate.NewClient(ctx, s.clientOptions()...)
	if err != nil {
		return nil, &ProviderError{Provider: s.Name(), Err: fmt.Errorf("failed to create client: %w", err)}
	}
	defer client.Close()

	var translations []translate.Translation
	err = withRetry(ctx, s.cfg, func() error {
		var callErr error
		translations, callErr = client.Translate(ctx, texts, target, topts)
		return callErr
	})
	if err != nil {
		return nil, &ProviderError{Provider: s.Name(), Err: fmt.Errorf("translation failed: %w", err)}
	}

	if err := checkCount(s.Name(), len(texts), len(translations)); err != nil {
		return nil, err
	}

	out := make([]string, len(translations))
	for i, t := range translations {
		out[i] = html.UnescapeString(t.Text)
	}
	return out, nil
}
