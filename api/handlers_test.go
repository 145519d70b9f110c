package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"argus/analyzer"
	"argus/config"
	"argus/core"
	"argus/llm"
	"argus/mitre"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.API.Port = 8080
	cfg.API.RateLimit.RequestsPerSecond = 1000
	cfg.API.RateLimit.Burst = 1000
	return cfg
}

func newTestAPI(t *testing.T) *API {
	t.Helper()
	sugar := zaptest.NewLogger(t).Sugar()
	engine := llm.NewEngine(llm.NewMockProvider(), sugar)
	a := analyzer.NewAnalyzer(engine, mitre.DefaultCatalog(), core.NewCorrelator(sugar), nil, analyzer.DefaultOptions(), sugar)

	api := NewAPI(a, testConfig(), sugar)
	t.Cleanup(func() { close(api.stopCh) })
	return api
}

func doRequest(api *API, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody bytes.Buffer
	if body != nil {
		json.NewEncoder(&reqBody).Encode(body)
	}
	req := httptest.NewRequest(method, path, &reqBody)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := doRequest(newTestAPI(t), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, core.Version, body["version"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHandleAnalyze(t *testing.T) {
	rec := doRequest(newTestAPI(t), http.MethodPost, "/api/v1/analyze", map[string]interface{}{
		"ioc": "192.168.1.100",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "192.168.1.100", body["iocValue"])
	assert.Equal(t, "ip", body["iocType"])
	assert.Equal(t, string(core.SeverityMedium), body["severity"])
	assert.InDelta(t, 42.0, body["threatScore"].(float64), 1e-9)
	assert.NotEmpty(t, body["techniques"])
	assert.NotEmpty(t, body["tactics"])
	assert.Contains(t, body, "relatedThreats")
}

func TestHandleAnalyze_MissingIOC(t *testing.T) {
	rec := doRequest(newTestAPI(t), http.MethodPost, "/api/v1/analyze", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyze_InvalidBody(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBatchAnalyze(t *testing.T) {
	rec := doRequest(newTestAPI(t), http.MethodPost, "/api/v1/analyze/batch", map[string]interface{}{
		"iocs": []string{"192.168.1.1", "evil.com"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "192.168.1.1", results[0]["iocValue"])
	assert.Equal(t, "evil.com", results[1]["iocValue"])
}

func TestHandleBatchAnalyze_Empty(t *testing.T) {
	rec := doRequest(newTestAPI(t), http.MethodPost, "/api/v1/analyze/batch", map[string]interface{}{
		"iocs": []string{},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.Empty(t, results)
}

func TestHandleTactics(t *testing.T) {
	rec := doRequest(newTestAPI(t), http.MethodGet, "/api/v1/mitre/tactics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tactics []string `json:"tactics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Tactics, "Initial Access")
	assert.Contains(t, body.Tactics, "Execution")
}

func TestHandleTechniques(t *testing.T) {
	rec := doRequest(newTestAPI(t), http.MethodGet, "/api/v1/mitre/techniques", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Techniques []string `json:"techniques"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Techniques, 15)
}

func TestHandleTechniques_FilteredByTactic(t *testing.T) {
	rec := doRequest(newTestAPI(t), http.MethodGet, "/api/v1/mitre/techniques?tactic=Impact", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Techniques []string `json:"techniques"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.ElementsMatch(t, []string{"T1486", "T1485"}, body.Techniques)
}

func TestHandleTechniques_UnknownTactic(t *testing.T) {
	rec := doRequest(newTestAPI(t), http.MethodGet, "/api/v1/mitre/techniques?tactic=Nope", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"techniques": []}`, rec.Body.String())
}

func TestHandleSearchTechniques(t *testing.T) {
	rec := doRequest(newTestAPI(t), http.MethodGet, "/api/v1/mitre/techniques/search?q=phishing", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []struct {
			ID           string `json:"id"`
			ReferenceURL string `json:"referenceUrl"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Results)
	assert.Equal(t, "T1566", body.Results[0].ID)
	assert.Equal(t, "https://attack.mitre.org/techniques/T1566/", body.Results[0].ReferenceURL)
}

func TestHandleSearchTechniques_MissingQuery(t *testing.T) {
	rec := doRequest(newTestAPI(t), http.MethodGet, "/api/v1/mitre/techniques/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRecord(t *testing.T) {
	api := newTestAPI(t)

	rec := doRequest(api, http.MethodPost, "/api/v1/correlation/record", map[string]interface{}{
		"ioc": "10.0.0.1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Type was auto-detected and the record is visible in the statistics.
	assert.Equal(t, 1, api.analyzer.Correlator().Statistics().CountsByType[core.IOCTypeIP])

	rec = doRequest(api, http.MethodPost, "/api/v1/correlation/record", map[string]interface{}{
		"ioc": "10.0.0.2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RelatedThreats []map[string]interface{} `json:"relatedThreats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.RelatedThreats)
	assert.Equal(t, "10.0.0.1", body.RelatedThreats[0]["iocValue"])
}

func TestHandleRecord_ConfiguredMaxRelated(t *testing.T) {
	sugar := zaptest.NewLogger(t).Sugar()
	engine := llm.NewEngine(llm.NewMockProvider(), sugar)
	a := analyzer.NewAnalyzer(engine, mitre.DefaultCatalog(), core.NewCorrelator(sugar), nil, analyzer.DefaultOptions(), sugar)

	cfg := testConfig()
	cfg.Analysis.MaxRelated = 1

	api := NewAPI(a, cfg, sugar)
	t.Cleanup(func() { close(api.stopCh) })

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		rec := doRequest(api, http.MethodPost, "/api/v1/correlation/record", map[string]interface{}{
			"ioc": ip,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(api, http.MethodPost, "/api/v1/correlation/record", map[string]interface{}{
		"ioc": "10.0.0.4",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RelatedThreats []map[string]interface{} `json:"relatedThreats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	// Three same-/24 neighbors exist; the configured cap keeps one.
	assert.Len(t, body.RelatedThreats, 1)
}

func TestHandleClusters(t *testing.T) {
	api := newTestAPI(t)
	api.analyzer.Correlator().Record("192.168.1.1", core.IOCTypeIP, nil)

	rec := doRequest(api, http.MethodGet, "/api/v1/correlation/clusters?window=1h", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Clusters []struct {
			Count  int    `json:"count"`
			Window string `json:"window"`
		} `json:"clusters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Clusters, 1)
	assert.Equal(t, 1, body.Clusters[0].Count)
	assert.Equal(t, "1h0m0s", body.Clusters[0].Window)
}

func TestHandleClusters_InvalidWindow(t *testing.T) {
	rec := doRequest(newTestAPI(t), http.MethodGet, "/api/v1/correlation/clusters?window=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStats(t *testing.T) {
	rec := doRequest(newTestAPI(t), http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Correlator struct {
			ActiveRules int `json:"activeCorrelationRules"`
		} `json:"correlator"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Correlator.ActiveRules)
}

func TestRateLimiting(t *testing.T) {
	sugar := zaptest.NewLogger(t).Sugar()
	engine := llm.NewEngine(llm.NewMockProvider(), sugar)
	a := analyzer.NewAnalyzer(engine, mitre.DefaultCatalog(), core.NewCorrelator(sugar), nil, analyzer.DefaultOptions(), sugar)

	cfg := testConfig()
	cfg.API.RateLimit.RequestsPerSecond = 1
	cfg.API.RateLimit.Burst = 1

	api := NewAPI(a, cfg, sugar)
	t.Cleanup(func() { close(api.stopCh) })

	first := doRequest(api, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := doRequest(api, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analyze", nil)
	rec := httptest.NewRecorder()
	api.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
