// Package arbiter asks every configured provider for a translation of the
// same text, keeps the candidates that came back, and picks one by the
// providers' configured priors. The winner is then quality-checked against the
// source as an independent signal.
package arbiter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/transqc/internal/quality"
	"github.com/valpere/transqc/internal/translator"
)

// Prior is the configuration-time estimate of a provider's output quality
// and of how much that estimate can be trusted. Both are in [0,1].
type Prior struct {
	Quality    float64 `json:"quality"`
	Confidence float64 `json:"confidence"`
}

// Score weights the prior the way candidates are ranked.
func (p Prior) Score() float64 {
	return p.Quality*0.7 + p.Confidence*0.3
}

// Source is a provider together with its prior.
type Source struct {
	Provider translator.Provider
	Prior    Prior
}

// Candidate is one successful provider answer.
type Candidate struct {
	Text            string  `json:"text"`
	ProviderID      string  `json:"provider_id"`
	PriorQuality    float64 `json:"prior_quality"`
	PriorConfidence float64 `json:"prior_confidence"`
}

func (c Candidate) Score() float64 {
	return Prior{Quality: c.PriorQuality, Confidence: c.PriorConfidence}.Score()
}

// Selection is the result of one arbitration run. Alternatives never
// contain Best.
type Selection struct {
	Best         Candidate      `json:"best"`
	Alternatives []Candidate    `json:"alternatives"`
	Quality      quality.Report `json:"quality"`
}

// AllProvidersFailedError is returned when no provider produced a candidate.
type AllProvidersFailedError struct {
	Errs []error
}

func (e *AllProvidersFailedError) Error() string {
	if len(e.Errs) == 0 {
		return "all providers failed: no providers configured"
	}
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return "all providers failed: " + strings.Join(msgs, "; ")
}

func (e *AllProvidersFailedError) Unwrap() []error { return e.Errs }

// Arbiter is safe for concurrent use.
type Arbiter struct {
	sources    []Source
	checker    *quality.Checker
	logger     *zap.Logger
	targetLang string
	timeout    time.Duration
}

type Option func(*Arbiter)

func WithLogger(l *zap.Logger) Option {
	return func(a *Arbiter) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithTargetLang(lang string) Option {
	return func(a *Arbiter) {
		if lang != "" {
			a.targetLang = lang
		}
	}
}

func WithChecker(c *quality.Checker) Option {
	return func(a *Arbiter) {
		if c != nil {
			a.checker = c
		}
	}
}

// WithTimeout bounds each provider call. Zero leaves timing to the adapters.
func WithTimeout(d time.Duration) Option {
	return func(a *Arbiter) { a.timeout = d }
}

// New keeps sources in the given order; that order breaks score ties.
func New(sources []Source, opts ...Option) *Arbiter {
	a := &Arbiter{
		sources:    append([]Source(nil), sources...),
		checker:    quality.NewChecker(),
		logger:     zap.NewNop(),
		targetLang: translator.DefaultTargetLang,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Sources returns the configured sources in tie-break order.
func (a *Arbiter) Sources() []Source {
	return append([]Source(nil), a.sources...)
}

type outcome struct {
	candidate Candidate
	err       error
}

// Translate fans text out to every provider and waits for all of them to
// settle. A failing provider is dropped; only when all of them fail is an
// *AllProvidersFailedError returned. hint is passed to providers as context.
func (a *Arbiter) Translate(ctx context.Context, text, hint string) (*Selection, error) {
	outcomes := a.collect(ctx, text, hint)

	var (
		best      Candidate
		found     bool
		succeeded []Candidate
		failures  []error
	)
	for i, oc := range outcomes {
		if oc.err != nil {
			a.logger.Warn("provider excluded",
				zap.String("provider", a.sources[i].Provider.Name()),
				zap.Error(oc.err),
			)
			failures = append(failures, oc.err)
			continue
		}
		succeeded = append(succeeded, oc.candidate)
		if !found || oc.candidate.Score() > best.Score() {
			best = oc.candidate
			found = true
		}
	}

	if !found {
		return nil, &AllProvidersFailedError{Errs: failures}
	}

	alternatives := make([]Candidate, 0, len(succeeded)-1)
	for _, c := range succeeded {
		if c.ProviderID != best.ProviderID {
			alternatives = append(alternatives, c)
		}
	}

	return &Selection{
		Best:         best,
		Alternatives: alternatives,
		Quality:      a.checker.Check(text, best.Text, hint),
	}, nil
}

// collect returns one outcome per source, indexed like a.sources.
func (a *Arbiter) collect(ctx context.Context, text, hint string) []outcome {
	outcomes := make([]outcome, len(a.sources))
	opts := translator.Options{TargetLang: a.targetLang, Context: hint}

	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(index int, src Source) {
			defer wg.Done()
			outcomes[index] = a.call(ctx, src, text, opts)
		}(i, src)
	}
	wg.Wait()

	return outcomes
}

func (a *Arbiter) call(ctx context.Context, src Source, text string, opts translator.Options) (oc outcome) {
	name := src.Provider.Name()

	defer func() {
		if r := recover(); r != nil {
			oc = outcome{err: &translator.ProviderError{Provider: name, Err: fmt.Errorf("panic: %v", r)}}
		}
	}()

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	out, err := src.Provider.TranslateBatch(callCtx, []string{text}, opts)
	if err != nil {
		var perr *translator.ProviderError
		if !errors.As(err, &perr) {
			err = &translator.ProviderError{Provider: name, Err: err}
		}
		return outcome{err: err}
	}
	if len(out) != 1 {
		return outcome{err: &translator.ProviderError{
			Provider: name,
			Err:      fmt.Errorf("translation count mismatch: expected 1, got %d", len(out)),
		}}
	}

	return outcome{candidate: Candidate{
		Text:            out[0],
		ProviderID:      name,
		PriorQuality:    src.Prior.Quality,
		PriorConfidence: src.Prior.Confidence,
	}}
}
