package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/amitzarchi/quality-score-eviction/internal/accesslog"
	"github.com/amitzarchi/quality-score-eviction/internal/cache"
	"github.com/amitzarchi/quality-score-eviction/internal/logging"
	"github.com/amitzarchi/quality-score-eviction/internal/metrics"
)

type putRequest struct {
	Key             string          `json:"key"`
	Value           json.RawMessage `json:"value"`
	SimilarityScore *float64        `json:"similarity_score"`
}

type getRequest struct {
	Key string `json:"key"`
}

type queryRequest struct {
	Query           string   `json:"query"`
	SimilarityScore *float64 `json:"similarity_score"`
}

type switchPolicyRequest struct {
	Policy          string   `json:"policy"`
	MaxSize         *int     `json:"maxsize"`
	CleanSize       *int     `json:"clean_size"`
	LearningRate    *float64 `json:"learning_rate"`
	QualityWeight   *float64 `json:"quality_weight"`
	RecencyWeight   *float64 `json:"recency_weight"`
	FrequencyWeight *float64 `json:"frequency_weight"`
}

func (h *Handlers) put(w http.ResponseWriter, r *http.Request) {
	var req putRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	similarity := 1.0
	if req.SimilarityScore != nil {
		similarity = *req.SimilarityScore
	}

	evicted := h.Engine.Admit(req.Key, req.Value, similarity)
	policy := string(h.Engine.PolicyKind())

	metrics.AdmissionsTotal.WithLabelValues(policy).Inc()
	for _, ev := range evicted {
		metrics.EvictionsTotal.WithLabelValues(policy, ev.Reason).Inc()
		h.logOp(r.Context(), accesslog.OpEvict, ev.Key, false, ev.Reason)
	}
	metrics.Entries.Set(float64(h.Engine.Len()))
	h.logOp(r.Context(), accesslog.OpAdmit, req.Key, false, "")

	resp := map[string]any{"success": true, "key": req.Key}
	if len(evicted) > 0 {
		keys := make([]string, len(evicted))
		for i, ev := range evicted {
			keys[i] = ev.Key
		}
		resp["evicted"] = keys
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	var req getRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	value, found := h.Engine.Lookup(req.Key)
	outcome := "miss"
	if found {
		outcome = "hit"
	}
	metrics.LookupsTotal.WithLabelValues(outcome).Inc()
	h.logOp(r.Context(), accesslog.OpLookup, req.Key, found, "")

	if !found {
		writeJSON(w, http.StatusOK, map[string]any{"found": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"found": true, "value": value})
}

// query serves the combined data-plane path: look the query up by its
// digest, and on a miss ask the upstream responder and admit the answer.
func (h *Handlers) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if h.Upstream == nil {
		writeError(w, http.StatusServiceUnavailable, "no upstream responder configured")
		return
	}

	key := queryKey(req.Query)
	if value, found := h.Engine.Lookup(key); found {
		metrics.LookupsTotal.WithLabelValues("hit").Inc()
		h.logOp(r.Context(), accesslog.OpLookup, key, true, "")
		writeJSON(w, http.StatusOK, map[string]any{"cached": true, "key": key, "value": value})
		return
	}
	metrics.LookupsTotal.WithLabelValues("miss").Inc()
	h.logOp(r.Context(), accesslog.OpLookup, key, false, "")

	// Upstream work happens strictly outside the engine; the similarity
	// score is already computed by the time Admit runs.
	start := time.Now()
	value, err := h.Upstream.Respond(r.Context(), req.Query)
	metrics.UpstreamDuration.WithLabelValues(h.Upstream.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		logging.FromContext(r.Context()).Error("upstream responder failed", "error", err)
		writeError(w, http.StatusBadGateway, "upstream responder failed: "+err.Error())
		return
	}

	similarity := 1.0
	if req.SimilarityScore != nil {
		similarity = *req.SimilarityScore
	}

	evicted := h.Engine.Admit(key, value, similarity)
	policy := string(h.Engine.PolicyKind())
	metrics.AdmissionsTotal.WithLabelValues(policy).Inc()
	for _, ev := range evicted {
		metrics.EvictionsTotal.WithLabelValues(policy, ev.Reason).Inc()
		h.logOp(r.Context(), accesslog.OpEvict, ev.Key, false, ev.Reason)
	}
	metrics.Entries.Set(float64(h.Engine.Len()))
	h.logOp(r.Context(), accesslog.OpAdmit, key, false, "")

	writeJSON(w, http.StatusOK, map[string]any{"cached": false, "key": key, "value": value})
}

func (h *Handlers) flush(w http.ResponseWriter, r *http.Request) {
	h.Engine.Flush()
	metrics.Entries.Set(0)
	h.logOp(r.Context(), accesslog.OpFlush, "", false, "")
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handlers) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.Status())
}

func (h *Handlers) statsSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.Summary())
}

func (h *Handlers) policies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"policies": cache.Catalog()})
}

func (h *Handlers) switchPolicy(w http.ResponseWriter, r *http.Request) {
	var req switchPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	kind, err := cache.ParseKind(req.Policy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := cache.DefaultPolicyConfig(kind)
	if req.MaxSize != nil {
		cfg.MaxSize = *req.MaxSize
	}
	if req.CleanSize != nil {
		cfg.CleanSize = *req.CleanSize
	}
	if req.LearningRate != nil {
		cfg.LearningRate = *req.LearningRate
	}
	if req.QualityWeight != nil {
		cfg.QualityWeight = *req.QualityWeight
	}
	if req.RecencyWeight != nil {
		cfg.RecencyWeight = *req.RecencyWeight
	}
	if req.FrequencyWeight != nil {
		cfg.FrequencyWeight = *req.FrequencyWeight
	}

	result, err := h.Engine.SwitchPolicy(cfg)
	if err != nil {
		var cfgErr *cache.ConfigurationError
		var unknownErr *cache.UnknownPolicyError
		if errors.As(err, &cfgErr) || errors.As(err, &unknownErr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.PolicySwitchesTotal.WithLabelValues(string(result.Policy)).Inc()
	metrics.Entries.Set(0)
	h.logOp(r.Context(), accesslog.OpSwitch, "", false, string(result.Policy))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     fmt.Sprintf("switched to %s policy", result.Policy),
		"policy":      string(result.Policy),
		"maxsize":     result.MaxSize,
		"clean_size":  result.CleanSize,
		"cache_reset": result.CacheReset,
	})
}

func (h *Handlers) recentLog(w http.ResponseWriter, r *http.Request) {
	if h.LogReader == nil {
		writeError(w, http.StatusNotFound, "access log is not enabled")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	entries, err := h.LogReader.Recent(r.Context(), limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("read access log", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read access log")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// logOp writes one access log entry, if a writer is configured. Failures
// are logged and do not affect the request.
func (h *Handlers) logOp(ctx context.Context, op, key string, hit bool, detail string) {
	if h.Log == nil {
		return
	}
	entry := accesslog.Entry{
		TraceID: logging.TraceIDFromContext(ctx),
		Op:      op,
		Key:     key,
		Policy:  string(h.Engine.PolicyKind()),
		Hit:     hit,
		Detail:  detail,
	}
	if err := h.Log.Write(ctx, entry); err != nil {
		logging.FromContext(ctx).Warn("write access log", "error", err)
	}
}

// queryKey derives the cache key for a query via exact-match hashing.
func queryKey(query string) string {
	h := sha256.Sum256([]byte(query))
	return hex.EncodeToString(h[:])
}
