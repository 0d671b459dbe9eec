package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/bobmcallan/flowlens/internal/common"
)

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)
	mux.HandleFunc("/debug/memstats", s.handleMemstats)

	// Flow
	mux.HandleFunc("/api/flow/ingest", s.rateLimited(s.handleFlowIngest))
	mux.HandleFunc("/api/flow/analyze", s.handleFlowAnalyze)
	mux.HandleFunc("/api/flow/report", s.handleFlowReport)
	mux.HandleFunc("/api/flow/insights", s.handleInsightList)
	mux.HandleFunc("/api/flow/patterns", s.handlePatternList)
	mux.HandleFunc("/api/flow/trades", s.handleTradeList)
	mux.HandleFunc("/api/flow/trades/stats", s.handleTradeStats)
	mux.HandleFunc("/api/flow/ingests", s.handleIngestList)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   "flowlens",
		"version":   common.GetVersion(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":          s.app.Config.Environment,
		"storage_address":      s.app.Config.Storage.Address,
		"storage_namespace":    s.app.Config.Storage.Namespace,
		"storage_database":     s.app.Config.Storage.Database,
		"cache_redis":          s.app.Config.Cache.RedisURL != "",
		"cache_ttl":            s.app.Config.Cache.GetTTL().String(),
		"scheduler_enabled":    s.app.Config.Scheduler.Enabled,
		"historical_days":      s.app.Config.Analysis.HistoricalDays,
		"high_value_threshold": s.app.Config.Analysis.HighValueThreshold,
		"logging_level":        s.app.Config.Logging.Level,
		"gemini_api_key":       maskSecret(s.app.Config.Clients.Gemini.APIKey),
		"gemini_configured":    s.app.GeminiClient != nil,
	})
}

func (s *Server) handleMemstats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"heap_alloc_bytes": m.HeapAlloc,
		"heap_inuse_bytes": m.HeapInuse,
		"heap_idle_bytes":  m.HeapIdle,
		"sys_bytes":        m.Sys,
		"num_gc":           m.NumGC,
		"heap_alloc_mb":    float64(m.HeapAlloc) / 1024 / 1024,
		"heap_inuse_mb":    float64(m.HeapInuse) / 1024 / 1024,
		"heap_idle_mb":     float64(m.HeapIdle) / 1024 / 1024,
		"sys_mb":           float64(m.Sys) / 1024 / 1024,
	})
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}

func parseInt(s string) (int, error) {
	var v int
	_, err := json.Number(s).Int64()
	if err != nil {
		return 0, err
	}
	n, _ := json.Number(s).Int64()
	v = int(n)
	return v, nil
}
