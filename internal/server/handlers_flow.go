package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/interfaces"
	"github.com/bobmcallan/flowlens/internal/models"
	"github.com/bobmcallan/flowlens/internal/services/ingest"
)

// handleFlowIngest handles POST /api/flow/ingest.
// The body is the raw export; the Content-Type header chooses the parser.
func (s *Server) handleFlowIngest(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	ctx := r.Context()
	userID := common.ResolveUserID(ctx)
	source := r.URL.Query().Get("source")

	maxBytes := int64(s.app.Config.Ingest.MaxBodyMB) << 20
	body := http.MaxBytesReader(w, r.Body, maxBytes)

	contentType := r.Header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	var (
		report *models.IngestReport
		err    error
	)
	switch contentType {
	case "text/csv", "application/csv":
		report, err = s.app.IngestService.IngestCSV(ctx, userID, body, source)
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/vnd.ms-excel":
		report, err = s.app.IngestService.IngestXLSX(ctx, userID, body, source)
	default:
		WriteErrorWithCode(w, http.StatusUnsupportedMediaType,
			"Unsupported content type: use text/csv or application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"unsupported_media_type")
		return
	}

	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteErrorWithCode(w, http.StatusRequestEntityTooLarge, "Upload exceeds the size limit", "body_too_large")
			return
		}
		if errors.Is(err, ingest.ErrMalformedInput) {
			WriteErrorWithCode(w, http.StatusBadRequest, "Malformed flow file: "+err.Error(), "malformed_input")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to ingest flow file: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

// handleFlowAnalyze handles POST /api/flow/analyze.
func (s *Server) handleFlowAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Range string `json:"range"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	timeRange := common.RangeToday
	if req.Range != "" {
		tr, err := common.ParseTimeRange(req.Range)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid range: must be one of today, week, month")
			return
		}
		timeRange = tr
	}

	ctx := r.Context()
	userID := common.ResolveUserID(ctx)

	result, err := s.app.AnalysisService.Analyze(ctx, userID, timeRange)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to run analysis: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleFlowReport handles GET /api/flow/report.
func (s *Server) handleFlowReport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	timeRange := common.RangeToday
	if rg := r.URL.Query().Get("range"); rg != "" {
		tr, err := common.ParseTimeRange(rg)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid range: must be one of today, week, month")
			return
		}
		timeRange = tr
	}

	ctx := r.Context()
	userID := common.ResolveUserID(ctx)

	markdown, err := s.app.ReportService.BuildReport(ctx, userID, timeRange)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to build report: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(markdown))
}

// handleInsightList handles GET /api/flow/insights.
func (s *Server) handleInsightList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	opts := interfaces.InsightListOptions{
		InsightType: q.Get("type"),
		Ticker:      strings.ToUpper(strings.TrimSpace(q.Get("ticker"))),
	}

	opts.Page = 1
	if p := q.Get("page"); p != "" {
		if v, err := parseInt(p); err == nil && v > 0 {
			opts.Page = v
		}
	}
	opts.PerPage = 20
	if pp := q.Get("per_page"); pp != "" {
		if v, err := parseInt(pp); err == nil && v > 0 && v <= 100 {
			opts.PerPage = v
		}
	}

	ctx := r.Context()
	userID := common.ResolveUserID(ctx)
	store := s.app.Storage.InsightStore()

	items, total, err := store.List(ctx, userID, opts)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list insights: "+err.Error())
		return
	}

	pages := int(math.Ceil(float64(total) / float64(opts.PerPage)))

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":    items,
		"total":    total,
		"page":     opts.Page,
		"per_page": opts.PerPage,
		"pages":    pages,
	})
}

// handlePatternList handles GET /api/flow/patterns.
func (s *Server) handlePatternList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	opts := interfaces.PatternListOptions{
		Ticker:      strings.ToUpper(strings.TrimSpace(q.Get("ticker"))),
		PatternType: q.Get("type"),
	}

	ctx := r.Context()
	userID := common.ResolveUserID(ctx)
	store := s.app.Storage.PatternStore()

	items, err := store.List(ctx, userID, opts)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list patterns: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

// handleTradeList handles GET /api/flow/trades.
func (s *Server) handleTradeList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	opts := interfaces.TradeListOptions{
		Ticker:    strings.ToUpper(strings.TrimSpace(q.Get("ticker"))),
		TradeType: q.Get("trade_type"),
	}

	if start := q.Get("start"); start != "" {
		if t, err := parseTimeParam(start); err == nil {
			opts.Start = &t
		}
	}
	if end := q.Get("end"); end != "" {
		if t, err := parseTimeParam(end); err == nil {
			opts.End = &t
		}
	}

	opts.Page = 1
	if p := q.Get("page"); p != "" {
		if v, err := parseInt(p); err == nil && v > 0 {
			opts.Page = v
		}
	}
	opts.PerPage = 20
	if pp := q.Get("per_page"); pp != "" {
		if v, err := parseInt(pp); err == nil && v > 0 && v <= 100 {
			opts.PerPage = v
		}
	}

	ctx := r.Context()
	userID := common.ResolveUserID(ctx)
	store := s.app.Storage.TradeStore()

	items, total, err := store.List(ctx, userID, opts)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list trades: "+err.Error())
		return
	}

	pages := int(math.Ceil(float64(total) / float64(opts.PerPage)))

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":    items,
		"total":    total,
		"page":     opts.Page,
		"per_page": opts.PerPage,
		"pages":    pages,
	})
}

// handleTradeStats handles GET /api/flow/trades/stats.
func (s *Server) handleTradeStats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	days := 30
	if d := r.URL.Query().Get("days"); d != "" {
		if v, err := parseInt(d); err == nil && v > 0 && v <= 365 {
			days = v
		}
	}
	since := time.Now().AddDate(0, 0, -days)

	ctx := r.Context()
	userID := common.ResolveUserID(ctx)
	store := s.app.Storage.TradeStore()

	stats, err := store.Stats(ctx, userID, since)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to aggregate trade stats: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"days":    days,
		"since":   since,
		"tickers": stats,
	})
}

// handleIngestList handles GET /api/flow/ingests.
func (s *Server) handleIngestList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	page := 1
	if p := q.Get("page"); p != "" {
		if v, err := parseInt(p); err == nil && v > 0 {
			page = v
		}
	}
	perPage := 20
	if pp := q.Get("per_page"); pp != "" {
		if v, err := parseInt(pp); err == nil && v > 0 && v <= 100 {
			perPage = v
		}
	}

	ctx := r.Context()
	userID := common.ResolveUserID(ctx)
	store := s.app.Storage.IngestLogStore()

	items, total, err := store.List(ctx, userID, page, perPage)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list ingests: "+err.Error())
		return
	}

	pages := int(math.Ceil(float64(total) / float64(perPage)))

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":    items,
		"total":    total,
		"page":     page,
		"per_page": perPage,
		"pages":    pages,
	})
}

// parseTimeParam accepts RFC3339 timestamps or plain dates.
func parseTimeParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
