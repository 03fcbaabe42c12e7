package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/valpere/transqc/internal/arbiter"
	"github.com/valpere/transqc/internal/detector"
	"github.com/valpere/transqc/internal/orchestrator"
	"github.com/valpere/transqc/internal/quality"
)

// Response codes carried in the body next to the HTTP status.
const (
	codeOK             = 0
	codeBadRequest     = 1001
	codeAllFailed      = 2001
	codeRemoteBatch    = 2002
	codeInternal       = 5000
	defaultHistorySize = 20
)

type DetectRequest struct {
	Texts []string `json:"texts" binding:"required,min=1"`
}

type DetectData struct {
	Results   []detector.Result `json:"results"`
	Aggregate detector.Result   `json:"aggregate"`
}

type CheckRequest struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
	Context    string `json:"context"`
}

type CheckData struct {
	quality.Report
	Grade string `json:"grade"`
}

type TranslateRequest struct {
	Text    string `json:"text" binding:"required"`
	Context string `json:"context"`
}

type TranslateData struct {
	*arbiter.Selection
	Grade     string `json:"grade"`
	RequestID string `json:"request_id,omitempty"`
}

type BatchRequest struct {
	Fields     map[string]string `json:"fields" binding:"required"`
	TargetLang string            `json:"target_lang"`
	Context    string            `json:"context"`
}

type BatchData struct {
	*orchestrator.BatchResult
	RequestID string `json:"request_id,omitempty"`
}

// Detect handles POST /api/v1/detect.
func (h *Handler) Detect(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, codeBadRequest, "invalid request", err.Error())
		return
	}

	results := make([]detector.Result, len(req.Texts))
	for i, t := range req.Texts {
		results[i] = h.detector.Detect(t)
	}

	h.respondSuccess(c, DetectData{
		Results:   results,
		Aggregate: h.detector.DetectMany(req.Texts),
	})
}

// Check handles POST /api/v1/check.
func (h *Handler) Check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, codeBadRequest, "invalid request", err.Error())
		return
	}

	report := h.checker.Check(req.Original, req.Translated, req.Context)
	h.respondSuccess(c, CheckData{Report: report, Grade: report.Grade()})
}

// Translate handles POST /api/v1/translate.
func (h *Handler) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, codeBadRequest, "invalid request", err.Error())
		return
	}

	ctx := c.Request.Context()
	sel, err := h.arbiter.Translate(ctx, req.Text, req.Context)
	if err != nil {
		var allErr *arbiter.AllProvidersFailedError
		if errors.As(err, &allErr) {
			h.respondError(c, http.StatusBadGateway, codeAllFailed, "all providers failed", err.Error())
			return
		}
		h.respondError(c, http.StatusInternalServerError, codeInternal, "translation failed", err.Error())
		return
	}

	data := TranslateData{Selection: sel, Grade: sel.Quality.Grade()}
	if h.store != nil {
		id, err := h.store.RecordSelection(ctx, req.Text, h.targetLang, req.Context, sel)
		if err != nil {
			h.logger.Warn("failed to journal selection", zap.Error(err))
		}
		data.RequestID = id
	}

	h.respondSuccess(c, data)
}

// Batch handles POST /api/v1/batch.
func (h *Handler) Batch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, codeBadRequest, "invalid request", err.Error())
		return
	}

	ctx := c.Request.Context()
	res, err := h.orchestrator.Run(ctx, req.Fields, orchestrator.Options{
		TargetLang: req.TargetLang,
		Context:    req.Context,
	})
	if err != nil {
		var batchErr *orchestrator.RemoteBatchError
		if errors.As(err, &batchErr) {
			h.respondError(c, http.StatusBadGateway, codeRemoteBatch, "batch translation failed", err.Error())
			return
		}
		h.respondError(c, http.StatusInternalServerError, codeInternal, "batch translation failed", err.Error())
		return
	}

	data := BatchData{BatchResult: res}
	if h.store != nil && len(res.Translations) > 0 {
		target := req.TargetLang
		if target == "" {
			target = h.targetLang
		}
		id, err := h.store.RecordBatch(ctx, res, target, req.Context)
		if err != nil {
			h.logger.Warn("failed to journal batch", zap.Error(err))
		}
		data.RequestID = id
	}

	h.respondSuccess(c, data)
}

// History handles GET /api/v1/history?limit=N.
func (h *Handler) History(c *gin.Context) {
	limit := defaultHistorySize
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.respondError(c, http.StatusBadRequest, codeBadRequest, "invalid limit", v)
			return
		}
		limit = n
	}

	entries, err := h.store.ListHistory(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list history", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, codeInternal, "failed to list history", err.Error())
		return
	}
	h.respondSuccess(c, entries)
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to read stats", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, codeInternal, "failed to read stats", err.Error())
		return
	}
	h.respondSuccess(c, stats)
}

// respondSuccess sends a success response.
func (h *Handler) respondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    codeOK,
		"message": "success",
		"data":    data,
	})
}

// respondError sends an error response.
func (h *Handler) respondError(c *gin.Context, statusCode, code int, message, details string) {
	c.JSON(statusCode, gin.H{
		"code":    code,
		"message": message,
		"data":    details,
	})
}
