package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amitzarchi/quality-score-eviction/internal/cache"
	"github.com/amitzarchi/quality-score-eviction/internal/upstream"
)

// failingResponder simulates an unreachable upstream.
type failingResponder struct{}

func (failingResponder) Name() string { return "failing" }
func (failingResponder) Respond(_ context.Context, _ string) (json.RawMessage, error) {
	return nil, errors.New("upstream unreachable")
}

func newTestServer(t *testing.T, cfg cache.PolicyConfig, responder upstream.Responder) (*httptest.Server, *cache.Engine) {
	t.Helper()
	engine, err := cache.NewEngine(cfg)
	require.NoError(t, err)
	srv := httptest.NewServer(NewRouter(&Handlers{
		Engine:   engine,
		Upstream: responder,
	}))
	t.Cleanup(srv.Close)
	return srv, engine
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestServer_PutAndGet(t *testing.T) {
	srv, _ := newTestServer(t, cache.DefaultPolicyConfig(cache.KindLRU), upstream.NewMock())

	resp, body := postJSON(t, srv.URL+"/put", map[string]any{
		"key":              "q1",
		"value":            map[string]any{"answer": "42"},
		"similarity_score": 0.93,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "q1", body["key"])

	resp, body = postJSON(t, srv.URL+"/get", map[string]any{"key": "q1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["found"])
	assert.Equal(t, map[string]any{"answer": "42"}, body["value"])
}

func TestServer_GetMiss(t *testing.T) {
	srv, _ := newTestServer(t, cache.DefaultPolicyConfig(cache.KindLRU), upstream.NewMock())

	resp, body := postJSON(t, srv.URL+"/get", map[string]any{"key": "absent"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["found"])
}

func TestServer_PutReportsEvictions(t *testing.T) {
	cfg := cache.DefaultPolicyConfig(cache.KindFIFO)
	cfg.MaxSize = 1
	cfg.CleanSize = 1
	srv, _ := newTestServer(t, cfg, upstream.NewMock())

	postJSON(t, srv.URL+"/put", map[string]any{"key": "a", "value": "va"})
	resp, body := postJSON(t, srv.URL+"/put", map[string]any{"key": "b", "value": "vb"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"a"}, body["evicted"])
}

func TestServer_Flush(t *testing.T) {
	srv, engine := newTestServer(t, cache.DefaultPolicyConfig(cache.KindLRU), upstream.NewMock())
	postJSON(t, srv.URL+"/put", map[string]any{"key": "a", "value": "v"})

	resp, body := postJSON(t, srv.URL+"/flush", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 0, engine.Len())
}

func TestServer_Status(t *testing.T) {
	srv, _ := newTestServer(t, cache.DefaultPolicyConfig(cache.KindLRU), upstream.NewMock())
	postJSON(t, srv.URL+"/put", map[string]any{"key": "a", "value": "v"})

	resp, body := getJSON(t, srv.URL+"/cache/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "lru", body["policy"])
	assert.Equal(t, "memory", body["policy_type"])
	assert.Equal(t, float64(1), body["cache_size"])
	assert.Equal(t, []any{"a"}, body["sample_cached_items"])
}

func TestServer_StatsSummary(t *testing.T) {
	srv, _ := newTestServer(t, cache.DefaultPolicyConfig(cache.KindLRU), upstream.NewMock())

	resp, body := getJSON(t, srv.URL+"/cache/stats-summary")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "lru", body["current_policy"])
	assert.Equal(t, "0/4 (0.0%)", body["cache_utilization"])
	assert.NotEmpty(t, body["policy_insight"])
}

func TestServer_Policies(t *testing.T) {
	srv, _ := newTestServer(t, cache.DefaultPolicyConfig(cache.KindLRU), upstream.NewMock())

	resp, body := getJSON(t, srv.URL+"/cache/policies")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	policies, ok := body["policies"].([]any)
	require.True(t, ok)
	assert.Len(t, policies, 5)
}

func TestServer_SwitchPolicy(t *testing.T) {
	srv, engine := newTestServer(t, cache.DefaultPolicyConfig(cache.KindLRU), upstream.NewMock())
	postJSON(t, srv.URL+"/put", map[string]any{"key": "a", "value": "v"})

	resp, body := postJSON(t, srv.URL+"/cache/switch-policy", map[string]any{
		"policy":     "LFU",
		"maxsize":    8,
		"clean_size": 2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "lfu", body["policy"])
	assert.Equal(t, float64(8), body["maxsize"])
	assert.Equal(t, float64(2), body["clean_size"])
	assert.Equal(t, true, body["cache_reset"])

	assert.Equal(t, cache.KindLFU, engine.PolicyKind())
	assert.Equal(t, 0, engine.Len(), "switch must reset the store")
}

func TestServer_SwitchPolicyBadWeights(t *testing.T) {
	srv, engine := newTestServer(t, cache.DefaultPolicyConfig(cache.KindLRU), upstream.NewMock())
	postJSON(t, srv.URL+"/put", map[string]any{"key": "a", "value": "v"})

	resp, body := postJSON(t, srv.URL+"/cache/switch-policy", map[string]any{
		"policy":           "quality_score",
		"quality_weight":   0.5,
		"recency_weight":   0.3,
		"frequency_weight": 0.3,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "weights must sum to 1.0")

	// Prior state intact.
	assert.Equal(t, cache.KindLRU, engine.PolicyKind())
	assert.Equal(t, 1, engine.Len())
}

func TestServer_SwitchPolicyUnknownName(t *testing.T) {
	srv, engine := newTestServer(t, cache.DefaultPolicyConfig(cache.KindLRU), upstream.NewMock())

	resp, body := postJSON(t, srv.URL+"/cache/switch-policy", map[string]any{"policy": "ttl"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "unknown policy")
	assert.Equal(t, cache.KindLRU, engine.PolicyKind())
}

func TestServer_QueryMissThenHit(t *testing.T) {
	srv, _ := newTestServer(t, cache.DefaultPolicyConfig(cache.KindLRU), upstream.NewMock())

	resp, body := postJSON(t, srv.URL+"/query", map[string]any{"query": "what is go"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["cached"])
	first := body["value"]

	resp, body = postJSON(t, srv.URL+"/query", map[string]any{"query": "what is go"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["cached"])
	assert.Equal(t, first, body["value"])
}

func TestServer_QueryUpstreamFailure(t *testing.T) {
	srv, engine := newTestServer(t, cache.DefaultPolicyConfig(cache.KindLRU), failingResponder{})

	resp, body := postJSON(t, srv.URL+"/query", map[string]any{"query": "anything"})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, 0, engine.Len(), "failed upstream must not admit")
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t, cache.DefaultPolicyConfig(cache.KindLRU), upstream.NewMock())
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_LogDisabled(t *testing.T) {
	srv, _ := newTestServer(t, cache.DefaultPolicyConfig(cache.KindLRU), upstream.NewMock())
	resp, body := getJSON(t, srv.URL+"/cache/log")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}
