package translator

import (
	"context"
	"fmt"
	"time"
)

// DefaultTargetLang is used when a request names no target language.
const DefaultTargetLang = "EN-US"

type ServiceConfig struct {
	Credentials string        `mapstructure:"credentials" json:"credentials"`
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	Model       string        `mapstructure:"model" json:"model"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	ProjectID   string        `mapstructure:"project_id" json:"project_id"`
	MaxAttempts int           `mapstructure:"max_attempts" json:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay" json:"retry_delay"`
	Models      []string      `mapstructure:"models" json:"models"`
	Email       string        `mapstructure:"email" json:"email"`

	// ProtectMarkup hides template variables, URLs, HTML and code behind
	// [PHn] markers before the text leaves the process.
	ProtectMarkup bool `mapstructure:"protect_markup" json:"protect_markup"`
}

// Options travel with every batched call. SourceLang is a hint and may be
// empty; Context is free text that LLM-backed providers add to their prompt.
type Options struct {
	TargetLang string `json:"target_lang"`
	SourceLang string `json:"source_lang,omitempty"`
	Context    string `json:"context,omitempty"`
}

func (o Options) target() string {
	if o.TargetLang == "" {
		return DefaultTargetLang
	}
	return o.TargetLang
}

// Provider is a remote translation backend. TranslateBatch returns exactly
// one translation per input text, in input order, or an error.
type Provider interface {
	Name() string
	TranslateBatch(ctx context.Context, texts []string, opts Options) ([]string, error)
}

// ProviderError reports a failed or malformed provider call.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func providerErr(name string, format string, args ...any) *ProviderError {
	return &ProviderError{Provider: name, Err: fmt.Errorf(format, args...)}
}

// checkCount guards the same-length contract of TranslateBatch.
func checkCount(name string, want, got int) error {
	if want != got {
		return providerErr(name, "translation count mismatch: expected %d, got %d", want, got)
	}
	return nil
}
