package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/valpere/transqc/internal/arbiter"
	"github.com/valpere/transqc/internal/orchestrator"
	"github.com/valpere/transqc/internal/store"
	"github.com/valpere/transqc/internal/translator"
)

type mockProvider struct {
	nameVal string
	fail    bool
}

func (m *mockProvider) Name() string { return m.nameVal }

func (m *mockProvider) TranslateBatch(ctx context.Context, texts []string, opts translator.Options) ([]string, error) {
	if m.fail {
		return nil, errors.New("upstream unavailable")
	}
	out := make([]string, len(texts))
	for i := range texts {
		out[i] = "Hello, nice to meet you."
	}
	return out, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T, fail bool, withStore bool) (http.Handler, *store.Store) {
	t.Helper()

	primary := &mockProvider{nameVal: "google", fail: fail}
	deps := Deps{
		Arbiter: arbiter.New([]arbiter.Source{
			{Provider: primary, Prior: arbiter.Prior{Quality: 0.9, Confidence: 0.85}},
			{Provider: &mockProvider{nameVal: "systran", fail: fail}, Prior: arbiter.Prior{Quality: 0.85, Confidence: 0.8}},
		}),
		Orchestrator: orchestrator.New(primary, nil, orchestrator.OrchestratorConfig{SkipValidation: true}),
		TargetLang:   "EN-US",
	}

	var s *store.Store
	if withStore {
		var err error
		s, err = store.New(filepath.Join(t.TempDir(), "test.db"))
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		deps.Store = s
	}

	return NewRouter(deps, zap.NewNop()), s
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
		}
	}
	return w, env
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t, false, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestDetect(t *testing.T) {
	h, _ := newTestRouter(t, false, false)

	w, env := do(t, h, http.MethodPost, "/api/v1/detect", `{"texts":["안녕하세요","반갑습니다","Hello"]}`)
	if w.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("unexpected response %d %+v", w.Code, env)
	}

	var data DetectData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if len(data.Results) != 3 {
		t.Errorf("expected 3 results, got %d", len(data.Results))
	}
	if data.Aggregate.Language != "ko" {
		t.Errorf("expected aggregate ko, got %s", data.Aggregate.Language)
	}
}

func TestDetect_BadRequest(t *testing.T) {
	h, _ := newTestRouter(t, false, false)

	for _, body := range []string{`{`, `{"texts":[]}`, `{}`} {
		w, env := do(t, h, http.MethodPost, "/api/v1/detect", body)
		if w.Code != http.StatusBadRequest || env.Code != codeBadRequest {
			t.Errorf("body %s: expected 400/%d, got %d/%d", body, codeBadRequest, w.Code, env.Code)
		}
	}
}

func TestCheck(t *testing.T) {
	h, _ := newTestRouter(t, false, false)

	w, env := do(t, h, http.MethodPost, "/api/v1/check", `{"original":"안녕하세요 반가워요 만나서 기뻐요","translated":"Hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}

	var data CheckData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if data.Completeness >= 0.5 {
		t.Errorf("expected low completeness, got %f", data.Completeness)
	}
	if data.Grade == "" || data.Grade != data.Report.Grade() {
		t.Errorf("grade %q disagrees with overall %f", data.Grade, data.Overall)
	}
}

func TestCheck_EmptyTranslation(t *testing.T) {
	h, _ := newTestRouter(t, false, false)

	w, env := do(t, h, http.MethodPost, "/api/v1/check", `{"original":"안녕하세요","translated":"","context":"greeting"}`)
	if w.Code != http.StatusOK || env.Code != codeOK {
		t.Fatalf("expected 200/%d, got %d/%d", codeOK, w.Code, env.Code)
	}

	var data CheckData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if data.Completeness != 0 {
		t.Errorf("expected completeness 0, got %f", data.Completeness)
	}
}

func TestTranslate(t *testing.T) {
	h, s := newTestRouter(t, false, true)

	w, env := do(t, h, http.MethodPost, "/api/v1/translate", `{"text":"안녕하세요, 만나서 반갑습니다.","context":"greeting"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}

	var data TranslateData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if data.Selection == nil || data.Best.ProviderID != "google" {
		t.Fatalf("expected google to win, got %+v", data.Selection)
	}
	if len(data.Alternatives) != 1 || data.Alternatives[0].ProviderID != "systran" {
		t.Errorf("unexpected alternatives %+v", data.Alternatives)
	}
	if data.RequestID == "" {
		t.Error("expected request to be journaled")
	}

	entries, err := s.ListHistory(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Provider != "google" {
		t.Errorf("unexpected history %+v", entries)
	}
}

func TestTranslate_AllProvidersFailed(t *testing.T) {
	h, _ := newTestRouter(t, true, false)

	w, env := do(t, h, http.MethodPost, "/api/v1/translate", `{"text":"안녕하세요"}`)
	if w.Code != http.StatusBadGateway || env.Code != codeAllFailed {
		t.Errorf("expected 502/%d, got %d/%d", codeAllFailed, w.Code, env.Code)
	}
}

func TestBatch(t *testing.T) {
	h, s := newTestRouter(t, false, true)

	w, env := do(t, h, http.MethodPost, "/api/v1/batch", `{"fields":{"title":"안녕하세요","body":"만나서 반갑습니다","empty":""}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}

	var data BatchData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if len(data.Translations) != 2 {
		t.Errorf("expected 2 translations, got %v", data.Translations)
	}
	if len(data.Reports) != 2 {
		t.Errorf("expected 2 reports, got %d", len(data.Reports))
	}

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.BatchRequests != 1 || stats.Reports != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestBatch_EnglishShortCircuit(t *testing.T) {
	h, _ := newTestRouter(t, true, false)

	w, env := do(t, h, http.MethodPost, "/api/v1/batch", `{"fields":{"a":"Hello"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected short-circuit to avoid the failing provider, got %d", w.Code)
	}

	var data BatchData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if !data.ShortCircuited || data.Translations["a"] != "Hello" {
		t.Errorf("unexpected result %+v", data.BatchResult)
	}
}

func TestBatch_RemoteFailure(t *testing.T) {
	h, _ := newTestRouter(t, true, false)

	w, env := do(t, h, http.MethodPost, "/api/v1/batch", `{"fields":{"a":"안녕하세요"}}`)
	if w.Code != http.StatusBadGateway || env.Code != codeRemoteBatch {
		t.Errorf("expected 502/%d, got %d/%d", codeRemoteBatch, w.Code, env.Code)
	}
}

func TestHistory(t *testing.T) {
	h, _ := newTestRouter(t, false, true)

	do(t, h, http.MethodPost, "/api/v1/translate", `{"text":"안녕하세요"}`)
	do(t, h, http.MethodPost, "/api/v1/translate", `{"text":"감사합니다"}`)

	w, env := do(t, h, http.MethodGet, "/api/v1/history?limit=1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	var entries []store.HistoryEntry
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(entries))
	}

	w, _ = do(t, h, http.MethodGet, "/api/v1/history?limit=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", w.Code)
	}

	w, env = do(t, h, http.MethodGet, "/api/v1/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	var stats store.Stats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if stats.Requests != 2 || stats.Wins["google"] != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestHistory_NotRegisteredWithoutStore(t *testing.T) {
	h, _ := newTestRouter(t, false, false)

	w, _ := do(t, h, http.MethodGet, "/api/v1/history", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a store, got %d", w.Code)
	}
}

func TestGinLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := NewRouter(Deps{}, zap.New(core))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/check?x=1", bytes.NewBufferString(`{"translated":"Hello"}`))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("HTTP request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/api/v1/check?x=1" || fields["method"] != "POST" {
		t.Errorf("unexpected fields %v", fields)
	}
}
