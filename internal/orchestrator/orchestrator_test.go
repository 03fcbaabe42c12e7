package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/valpere/transqc/internal/detector"
	"github.com/valpere/transqc/internal/translator"
)

type mockProvider struct {
	nameVal   string
	batchFunc func(ctx context.Context, texts []string, opts translator.Options) ([]string, error)
	callCount atomic.Int32
	lastTexts []string
	lastOpts  translator.Options
}

func (m *mockProvider) Name() string { return m.nameVal }

func (m *mockProvider) TranslateBatch(ctx context.Context, texts []string, opts translator.Options) ([]string, error) {
	m.callCount.Add(1)
	m.lastTexts = texts
	m.lastOpts = opts
	if m.batchFunc != nil {
		return m.batchFunc(ctx, texts, opts)
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = "EN(" + t + ")"
	}
	return out, nil
}

type recordingObserver struct {
	lowQuality []LowQualityWarning
	mismatches []string
	counts     [][2]int
}

func (r *recordingObserver) LowQuality(w LowQualityWarning) { r.lowQuality = append(r.lowQuality, w) }
func (r *recordingObserver) LanguageMismatch(key string, err error) {
	r.mismatches = append(r.mismatches, key)
}
func (r *recordingObserver) CountMismatch(requested, returned int) {
	r.counts = append(r.counts, [2]int{requested, returned})
}

func TestOrchestrator_New_Defaults(t *testing.T) {
	o := New(&mockProvider{nameVal: "mock"}, nil, OrchestratorConfig{})

	if o.config.DefaultTargetLang != "EN-US" {
		t.Errorf("expected default target EN-US, got %q", o.config.DefaultTargetLang)
	}
	if o.config.ShortCircuitConfidence != 0.8 {
		t.Errorf("expected short-circuit confidence 0.8, got %f", o.config.ShortCircuitConfidence)
	}
	if o.config.LowQualityThreshold != 0.7 {
		t.Errorf("expected low quality threshold 0.7, got %f", o.config.LowQualityThreshold)
	}
	if o.validator == nil {
		t.Error("expected validator to be created by default")
	}
	if o.observer == nil {
		t.Error("expected a no-op observer when none is given")
	}
}

func TestOrchestrator_New_SkipValidation(t *testing.T) {
	o := New(&mockProvider{nameVal: "mock"}, nil, OrchestratorConfig{SkipValidation: true})

	if o.validator != nil {
		t.Error("expected nil validator when SkipValidation is true")
	}
}

func TestOrchestrator_TranslateBatch_Empty(t *testing.T) {
	p := &mockProvider{nameVal: "mock"}
	o := New(p, nil, OrchestratorConfig{SkipValidation: true})

	for _, fields := range []map[string]string{nil, {}, {"a": "", "b": "   \n"}} {
		out, err := o.TranslateBatch(context.Background(), fields, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out == nil || len(out) != 0 {
			t.Errorf("expected empty non-nil map, got %v", out)
		}
	}
	if p.callCount.Load() != 0 {
		t.Errorf("expected no provider calls, got %d", p.callCount.Load())
	}
}

func TestOrchestrator_TranslateBatch_EnglishShortCircuit(t *testing.T) {
	p := &mockProvider{nameVal: "mock"}
	o := New(p, nil, OrchestratorConfig{SkipValidation: true})

	out, err := o.TranslateBatch(context.Background(), map[string]string{"a": "Hello"}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out["a"] != "Hello" {
		t.Errorf("expected originals unchanged, got %v", out)
	}
	if p.callCount.Load() != 0 {
		t.Errorf("expected zero provider calls, got %d", p.callCount.Load())
	}
}

func TestOrchestrator_Run_ShortCircuitReportsDetection(t *testing.T) {
	o := New(&mockProvider{nameVal: "mock"}, nil, OrchestratorConfig{SkipValidation: true})

	res, err := o.Run(context.Background(), map[string]string{
		"title": "Weekly market summary",
		"body":  "Prices were stable across the board",
	}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.ShortCircuited {
		t.Error("expected short-circuit for English batch")
	}
	if res.Detection.Language != detector.English {
		t.Errorf("expected English detection, got %s", res.Detection.Language)
	}
	if len(res.Reports) != 0 {
		t.Errorf("expected no reports when short-circuited, got %d", len(res.Reports))
	}
}

func TestOrchestrator_TranslateBatch_KoreanSingleCall(t *testing.T) {
	p := &mockProvider{nameVal: "mock"}
	o := New(p, nil, OrchestratorConfig{SkipValidation: true})

	fields := map[string]string{
		"title": "안녕하세요",
		"body":  "반갑습니다",
		"empty": "",
	}

	out, err := o.TranslateBatch(context.Background(), fields, Options{Context: "greeting card"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.callCount.Load() != 1 {
		t.Fatalf("expected exactly one batched call, got %d", p.callCount.Load())
	}
	if len(p.lastTexts) != 2 {
		t.Errorf("expected 2 texts in the batch, got %v", p.lastTexts)
	}
	if p.lastOpts.SourceLang != "KO" {
		t.Errorf("expected source hint KO, got %q", p.lastOpts.SourceLang)
	}
	if p.lastOpts.TargetLang != "EN-US" {
		t.Errorf("expected default target EN-US, got %q", p.lastOpts.TargetLang)
	}
	if p.lastOpts.Context != "greeting card" {
		t.Errorf("expected context to be forwarded, got %q", p.lastOpts.Context)
	}

	if len(out) != 2 {
		t.Fatalf("expected 2 translations, got %v", out)
	}
	if out["title"] != "EN(안녕하세요)" || out["body"] != "EN(반갑습니다)" {
		t.Errorf("translations paired with the wrong keys: %v", out)
	}
	if _, ok := out["empty"]; ok {
		t.Error("empty field must not appear in the result")
	}
}

func TestOrchestrator_TranslateBatch_JapaneseHintAndTarget(t *testing.T) {
	p := &mockProvider{nameVal: "mock"}
	o := New(p, nil, OrchestratorConfig{SkipValidation: true})

	_, err := o.TranslateBatch(context.Background(), map[string]string{"a": "こんにちは世界"}, Options{TargetLang: "EN-GB"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.lastOpts.SourceLang != "JA" {
		t.Errorf("expected source hint JA, got %q", p.lastOpts.SourceLang)
	}
	if p.lastOpts.TargetLang != "EN-GB" {
		t.Errorf("expected target EN-GB, got %q", p.lastOpts.TargetLang)
	}
}

func TestOrchestrator_TranslateBatch_UnknownLanguageNoHint(t *testing.T) {
	p := &mockProvider{nameVal: "mock"}
	o := New(p, nil, OrchestratorConfig{SkipValidation: true})

	if _, err := o.TranslateBatch(context.Background(), map[string]string{"a": "12345 !!!"}, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.callCount.Load() != 1 {
		t.Errorf("expected unknown-language batch to be translated, got %d calls", p.callCount.Load())
	}
	if p.lastOpts.SourceLang != "" {
		t.Errorf("expected no source hint, got %q", p.lastOpts.SourceLang)
	}
}

func TestOrchestrator_TranslateBatch_RemoteFailure(t *testing.T) {
	p := &mockProvider{
		nameVal: "google",
		batchFunc: func(ctx context.Context, texts []string, opts translator.Options) ([]string, error) {
			return nil, &translator.ProviderError{Provider: "google", Err: errors.New("quota exceeded")}
		},
	}
	o := New(p, nil, OrchestratorConfig{SkipValidation: true})

	out, err := o.TranslateBatch(context.Background(), map[string]string{"a": "안녕하세요", "b": "감사합니다"}, Options{})
	if out != nil {
		t.Errorf("expected nil map on remote failure, got %v", out)
	}

	var rerr *RemoteBatchError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RemoteBatchError, got %v", err)
	}
	if rerr.Provider != "google" {
		t.Errorf("expected provider 'google', got %q", rerr.Provider)
	}
	var perr *translator.ProviderError
	if !errors.As(err, &perr) {
		t.Error("expected underlying ProviderError to be preserved")
	}
}

func TestOrchestrator_TranslateBatch_LowQualityLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := &mockProvider{
		nameVal: "mock",
		batchFunc: func(ctx context.Context, texts []string, opts translator.Options) ([]string, error) {
			return []string{"Hi"}, nil
		},
	}
	o := New(p, NewLogObserver(zap.New(core)), OrchestratorConfig{SkipValidation: true})

	out, err := o.TranslateBatch(context.Background(), map[string]string{"greeting": "안녕하세요 반가워요 만나서 기뻐요"}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["greeting"] != "Hi" {
		t.Errorf("low quality must not block delivery, got %v", out)
	}

	entries := logs.FilterMessage("low quality translation").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 low quality warning, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["key"] != "greeting" {
		t.Errorf("expected key field 'greeting', got %v", fields["key"])
	}
	if fields["detected_language"] != "ko" {
		t.Errorf("expected detected_language 'ko', got %v", fields["detected_language"])
	}
	if g, _ := fields["grade"].(string); g == "" || g == "A+" || g == "A" || g == "B" {
		t.Errorf("expected a grade below B, got %v", fields["grade"])
	}
}

func TestOrchestrator_TranslateBatch_GoodQualityNotLogged(t *testing.T) {
	rec := &recordingObserver{}
	p := &mockProvider{
		nameVal: "mock",
		batchFunc: func(ctx context.Context, texts []string, opts translator.Options) ([]string, error) {
			return []string{"Hello, it is nice to meet you and I am glad."}, nil
		},
	}
	o := New(p, rec, OrchestratorConfig{SkipValidation: true, LowQualityThreshold: 0.1})

	if _, err := o.TranslateBatch(context.Background(), map[string]string{"a": "안녕하세요 반가워요 만나서 기뻐요"}, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.lowQuality) != 0 {
		t.Errorf("expected no warnings under a low threshold, got %v", rec.lowQuality)
	}
}

func TestOrchestrator_TranslateBatch_CountMismatch(t *testing.T) {
	rec := &recordingObserver{}
	p := &mockProvider{
		nameVal: "mock",
		batchFunc: func(ctx context.Context, texts []string, opts translator.Options) ([]string, error) {
			return []string{"only one"}, nil
		},
	}
	o := New(p, rec, OrchestratorConfig{SkipValidation: true})

	out, err := o.TranslateBatch(context.Background(), map[string]string{
		"a": "안녕하세요",
		"b": "감사합니다",
		"c": "반갑습니다",
	}, Options{})

	var rerr *RemoteBatchError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RemoteBatchError, got %v", err)
	}
	if rerr.Provider != "mock" {
		t.Errorf("expected provider 'mock', got %q", rerr.Provider)
	}
	if out != nil {
		t.Errorf("expected nil map on count mismatch, got %v", out)
	}
	if len(rec.counts) != 1 || rec.counts[0] != [2]int{3, 1} {
		t.Errorf("expected count mismatch 3/1 to be reported, got %v", rec.counts)
	}
	if len(rec.lowQuality) != 0 {
		t.Errorf("no field should be checked after a mismatch, got %v", rec.lowQuality)
	}
}

func TestOrchestrator_TranslateBatch_TooManyResults(t *testing.T) {
	p := &mockProvider{
		nameVal: "mock",
		batchFunc: func(ctx context.Context, texts []string, opts translator.Options) ([]string, error) {
			return []string{"one", "two"}, nil
		},
	}
	o := New(p, nil, OrchestratorConfig{SkipValidation: true})

	res, err := o.Run(context.Background(), map[string]string{"a": "안녕하세요"}, Options{})

	var rerr *RemoteBatchError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RemoteBatchError, got %v", err)
	}
	if res != nil {
		t.Errorf("expected nil result, got %+v", res)
	}
}

func TestOrchestrator_TranslateBatch_WhitespaceFieldKept(t *testing.T) {
	p := &mockProvider{nameVal: "mock"}
	o := New(p, nil, OrchestratorConfig{SkipValidation: true})

	out, err := o.TranslateBatch(context.Background(), map[string]string{
		"title": "안녕하세요",
		"pad":   "  ",
		"empty": "",
	}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p.lastTexts) != 2 {
		t.Errorf("expected the whitespace field in the batch, got %q", p.lastTexts)
	}
	if _, ok := out["pad"]; !ok {
		t.Error("whitespace-only field is non-empty and must be translated")
	}
	if _, ok := out["empty"]; ok {
		t.Error("empty field must not appear in the result")
	}
}

func TestOrchestrator_TranslateBatch_LanguageMismatchReported(t *testing.T) {
	untranslated := "이 문장은 번역되지 않은 한국어 텍스트입니다. 검증기가 이를 감지해야 합니다."
	rec := &recordingObserver{}
	p := &mockProvider{
		nameVal: "mock",
		batchFunc: func(ctx context.Context, texts []string, opts translator.Options) ([]string, error) {
			return []string{untranslated}, nil
		},
	}
	o := New(p, rec, OrchestratorConfig{})

	out, err := o.TranslateBatch(context.Background(), map[string]string{"body": untranslated}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["body"] != untranslated {
		t.Error("validation must not block delivery")
	}
	if len(rec.mismatches) != 1 || rec.mismatches[0] != "body" {
		t.Errorf("expected language mismatch for 'body', got %v", rec.mismatches)
	}
}

func TestOrchestrator_Run_Reports(t *testing.T) {
	o := New(&mockProvider{nameVal: "mock"}, nil, OrchestratorConfig{SkipValidation: true})

	res, err := o.Run(context.Background(), map[string]string{"b": "감사합니다", "a": "안녕하세요"}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Provider != "mock" {
		t.Errorf("expected provider 'mock', got %q", res.Provider)
	}
	if len(res.Reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(res.Reports))
	}
	if res.Reports[0].Key != "a" || res.Reports[1].Key != "b" {
		t.Errorf("expected reports in key order, got %s, %s", res.Reports[0].Key, res.Reports[1].Key)
	}
	for _, r := range res.Reports {
		if !strings.HasPrefix(r.Translated, "EN(") {
			t.Errorf("unexpected translation %q", r.Translated)
		}
		if r.Grade != r.Quality.Grade() {
			t.Errorf("report grade %q disagrees with quality %q", r.Grade, r.Quality.Grade())
		}
	}
}
