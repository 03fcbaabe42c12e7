// Package orchestrator runs a batch of content fields through detection,
// one batched provider call and per-field quality checks.
package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"github.com/valpere/transqc/internal/detector"
	"github.com/valpere/transqc/internal/quality"
	"github.com/valpere/transqc/internal/translator"
	"github.com/valpere/transqc/internal/validator"
)

const (
	defaultShortCircuitConfidence = 0.8
	defaultLowQualityThreshold    = 0.7
)

type OrchestratorConfig struct {
	DefaultTargetLang      string
	ShortCircuitConfidence float64
	LowQualityThreshold    float64
	SkipValidation         bool
}

// Options apply to a single TranslateBatch call.
type Options struct {
	TargetLang string `json:"target_lang,omitempty"`
	Context    string `json:"context,omitempty"`
}

// RemoteBatchError means the single batched provider call failed. No partial
// result accompanies it.
type RemoteBatchError struct {
	Provider string
	Err      error
}

func (e *RemoteBatchError) Error() string {
	return fmt.Sprintf("batch translation via %s failed: %v", e.Provider, e.Err)
}

func (e *RemoteBatchError) Unwrap() error { return e.Err }

// FieldReport is the quality outcome of one translated field.
type FieldReport struct {
	Key        string         `json:"key"`
	Original   string         `json:"original"`
	Translated string         `json:"translated"`
	Quality    quality.Report `json:"quality"`
	Grade      string         `json:"grade"`
}

// BatchResult carries everything TranslateBatch computed. Reports is empty
// when the batch was short-circuited.
type BatchResult struct {
	Translations   map[string]string `json:"translations"`
	Reports        []FieldReport     `json:"reports"`
	Detection      detector.Result   `json:"detection"`
	ShortCircuited bool              `json:"short_circuited"`
	Provider       string            `json:"provider,omitempty"`
}

type Orchestrator struct {
	provider  translator.Provider
	observer  Observer
	detector  *detector.Detector
	checker   *quality.Checker
	validator *validator.Validator
	config    OrchestratorConfig
}

func New(provider translator.Provider, observer Observer, config OrchestratorConfig) *Orchestrator {
	if config.DefaultTargetLang == "" {
		config.DefaultTargetLang = translator.DefaultTargetLang
	}
	if config.ShortCircuitConfidence <= 0 {
		config.ShortCircuitConfidence = defaultShortCircuitConfidence
	}
	if config.LowQualityThreshold <= 0 {
		config.LowQualityThreshold = defaultLowQualityThreshold
	}
	if observer == nil {
		observer = NopObserver{}
	}

	o := &Orchestrator{
		provider: provider,
		observer: observer,
		detector: detector.New(),
		checker:  quality.NewChecker(),
		config:   config,
	}
	if !config.SkipValidation {
		o.validator = validator.New()
	}
	return o
}

// TranslateBatch returns key -> English text for every non-empty field.
// Low quality never fails the call; only the remote batch call can.
func (o *Orchestrator) TranslateBatch(ctx context.Context, fields map[string]string, opts Options) (map[string]string, error) {
	res, err := o.Run(ctx, fields, opts)
	if err != nil {
		return nil, err
	}
	return res.Translations, nil
}

// Run is TranslateBatch with the detection and per-field reports attached.
func (o *Orchestrator) Run(ctx context.Context, fields map[string]string, opts Options) (*BatchResult, error) {
	keys, texts := filter(fields)
	if len(keys) == 0 {
		return &BatchResult{Translations: map[string]string{}, Detection: detector.Result{Language: detector.Unknown}}, nil
	}

	detection := o.detector.DetectMany(texts)

	if detection.Language == detector.English && detection.Confidence >= o.config.ShortCircuitConfidence {
		out := make(map[string]string, len(keys))
		for i, k := range keys {
			out[k] = texts[i]
		}
		return &BatchResult{Translations: out, Detection: detection, ShortCircuited: true}, nil
	}

	targetLang := opts.TargetLang
	if targetLang == "" {
		targetLang = o.config.DefaultTargetLang
	}

	translated, err := o.provider.TranslateBatch(ctx, texts, translator.Options{
		TargetLang: targetLang,
		SourceLang: sourceHint(detection.Language),
		Context:    opts.Context,
	})
	if err != nil {
		return nil, &RemoteBatchError{Provider: o.provider.Name(), Err: err}
	}

	if len(translated) != len(keys) {
		o.observer.CountMismatch(len(keys), len(translated))
		return nil, &RemoteBatchError{
			Provider: o.provider.Name(),
			Err:      fmt.Errorf("translation count mismatch: expected %d, got %d", len(keys), len(translated)),
		}
	}

	res := &BatchResult{
		Translations: make(map[string]string, len(keys)),
		Reports:      make([]FieldReport, 0, len(keys)),
		Detection:    detection,
		Provider:     o.provider.Name(),
	}

	for i := range keys {
		key, original, text := keys[i], texts[i], translated[i]

		report := o.checker.Check(original, text, opts.Context)
		if report.Overall < o.config.LowQualityThreshold {
			o.observer.LowQuality(LowQualityWarning{
				Key:              key,
				Grade:            report.Grade(),
				Overall:          report.Overall,
				Issues:           report.Issues,
				DetectedLanguage: detection.Language,
			})
		}

		if o.validator != nil {
			if ok, verr := o.validator.IsValid(text, targetLang); !ok {
				o.observer.LanguageMismatch(key, verr)
			}
		}

		res.Translations[key] = text
		res.Reports = append(res.Reports, FieldReport{
			Key:        key,
			Original:   original,
			Translated: text,
			Quality:    report,
			Grade:      report.Grade(),
		})
	}

	return res, nil
}

// filter drops empty fields and fixes a key order so the batch request and
// its response can be paired by index.
func filter(fields map[string]string) ([]string, []string) {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	texts := make([]string, len(keys))
	for i, k := range keys {
		texts[i] = fields[k]
	}
	return keys, texts
}

func sourceHint(lang detector.Language) string {
	switch lang {
	case detector.Korean:
		return "KO"
	case detector.Japanese:
		return "JA"
	default:
		return ""
	}
}
