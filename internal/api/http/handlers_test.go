package http

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/nuclear-add/internal/engine"
	"github.com/GriffinCanCode/nuclear-add/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/nuclear-add/internal/numeric"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T, opts ...engine.Option) (*gin.Engine, *engine.Engine) {
	t.Helper()
	cfg, err := engine.NewConfig(opts...)
	require.NoError(t, err)
	e, err := engine.New(cfg)
	require.NoError(t, err)

	router := gin.New()
	NewHandlers(e, "test").Register(router)
	stats := NewStatsHandler(e, monitoring.NewMetrics(prometheus.NewRegistry()))
	router.GET("/v1/stats", stats.GetStats)
	return router, e
}

func do(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestHealth(t *testing.T) {
	router, e := setupRouter(t)

	w, body := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, e.ID().String(), body["engine"])
	assert.Equal(t, "sequential", body["backend"])
}

func TestAddScalars(t *testing.T) {
	router, _ := setupRouter(t)

	w, body := do(t, router, http.MethodPost, "/v1/add", `{"a": 0.1, "b": 0.2}`)
	require.Equal(t, http.StatusOK, w.Code)

	result := body["result"].(map[string]any)
	assert.Equal(t, "scalar", result["type"])
	assert.InDelta(t, 0.3, result["value"], 1e-15)
}

func TestAddPromotesScalarToInterval(t *testing.T) {
	router, _ := setupRouter(t)

	w, body := do(t, router, http.MethodPost, "/v1/add",
		`{"a": {"type": "interval", "lower": 1, "upper": 2}, "b": 3}`)
	require.Equal(t, http.StatusOK, w.Code)

	result := body["result"].(map[string]any)
	assert.Equal(t, "interval", result["type"])
	assert.LessOrEqual(t, result["lower"].(float64), 4.0)
	assert.GreaterOrEqual(t, result["upper"].(float64), 5.0)
}

func TestAddTracedReturnsHistory(t *testing.T) {
	router, _ := setupRouter(t)

	w, body := do(t, router, http.MethodPost, "/v1/add",
		`{"a": {"type": "traced", "value": 1}, "b": {"type": "traced", "value": 2}}`)
	require.Equal(t, http.StatusOK, w.Code)

	result := body["result"].(map[string]any)
	assert.Equal(t, 3.0, result["value"])
	require.Len(t, result["history"], 1)
}

func TestAddTypeMismatch(t *testing.T) {
	router, _ := setupRouter(t)

	w, body := do(t, router, http.MethodPost, "/v1/add",
		`{"a": {"type": "dual", "value": 1, "derivative": 1}, "b": {"type": "interval", "lower": 0, "upper": 1}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "incompatible")
}

func TestAddRejectsBadValues(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"unknown type", `{"a": {"type": "quaternion"}, "b": 1}`},
		{"inverted interval", `{"a": {"type": "interval", "lower": 2, "upper": 1}, "b": 1}`},
		{"negative variance", `{"a": {"type": "stochastic", "mean": 1, "variance": -1}, "b": 1}`},
		{"missing operand", `{"a": 1}`},
		{"quoted finite", `{"a": "1.5", "b": 1}`},
		{"unknown mode", `{"a": 1, "b": 2, "mode": "quantum"}`},
		{"malformed", `{"a": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := do(t, router, http.MethodPost, "/v1/add", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAddStrictOverrideFails(t *testing.T) {
	router, e := setupRouter(t)

	w, body := do(t, router, http.MethodPost, "/v1/add", `{"a": 1e308, "b": 1e308, "strict": true}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	event := body["event"].(map[string]any)
	assert.Equal(t, "overflow", event["error_type"])
	assert.False(t, e.Config().Strict(), "override is per call")
}

func TestAddNonFiniteRoundTrips(t *testing.T) {
	router, _ := setupRouter(t)

	w, body := do(t, router, http.MethodPost, "/v1/add", `{"a": "+Inf", "b": 1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "+Inf", body["result"].(map[string]any)["value"])
}

func TestAddWithError(t *testing.T) {
	router, _ := setupRouter(t)

	w, body := do(t, router, http.MethodPost, "/v1/add-with-error", `{"a": 0.1, "b": 0.2}`)
	require.Equal(t, http.StatusOK, w.Code)

	sum := body["result"].(float64)
	bound := body["bound"].(map[string]any)
	assert.LessOrEqual(t, bound["lower"].(float64), sum)
	assert.GreaterOrEqual(t, bound["upper"].(float64), sum)
}

func TestSumCompensates(t *testing.T) {
	router, _ := setupRouter(t)

	w, body := do(t, router, http.MethodPost, "/v1/sum", `{"values": [1, 1e16, 1, -1e16]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, body["result"])
	assert.Equal(t, 0.0, body["naive"])
	assert.Equal(t, 4.0, body["count"])
}

func TestSumNaNIsRecorded(t *testing.T) {
	router, e := setupRouter(t)

	w, body := do(t, router, http.MethodPost, "/v1/sum", `{"values": [1, "NaN"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "NaN", body["result"])
	assert.Equal(t, 1, e.Tracer().Len())
}

func TestEvaluateAndGradient(t *testing.T) {
	router, _ := setupRouter(t)
	expr := `{"op": "sum", "terms": [
		{"op": "leaf", "name": "x", "value": 1},
		{"op": "const", "value": 1e16},
		{"op": "leaf", "name": "x", "value": 1},
		{"op": "const", "value": -1e16}
	]}`

	w, body := do(t, router, http.MethodPost, "/v1/evaluate", `{"expr": `+expr+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, body["result"])

	w, body = do(t, router, http.MethodPost, "/v1/gradient", `{"expr": `+expr+`, "wrt": "x"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, body["gradient"])

	w, body = do(t, router, http.MethodPost, "/v1/gradient", `{"expr": `+expr+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"x": 2.0}, body["gradients"])
}

func TestExpressionDepthLimit(t *testing.T) {
	router, _ := setupRouter(t)

	var sb bytes.Buffer
	for i := 0; i <= maxExprDepth+1; i++ {
		sb.WriteString(`{"op": "add", "left": {"op": "const", "value": 1}, "right": `)
	}
	sb.WriteString(`{"op": "const", "value": 1}`)
	for i := 0; i <= maxExprDepth+1; i++ {
		sb.WriteString(`}`)
	}

	w, body := do(t, router, http.MethodPost, "/v1/evaluate", `{"expr": `+sb.String()+`}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "deeper")
}

func TestBatchAdd(t *testing.T) {
	router, _ := setupRouter(t)

	w, body := do(t, router, http.MethodPost, "/v1/batch/add", `{"a": [1, 2, 3], "b": [10, 20, 30]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{11.0, 22.0, 33.0}, body["result"])

	w, _ = do(t, router, http.MethodPost, "/v1/batch/add", `{"a": [1, 2], "b": [1]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchReduceIsUncompensated(t *testing.T) {
	router, _ := setupRouter(t)

	w, body := do(t, router, http.MethodPost, "/v1/batch/reduce", `{"values": [1, 1e16, 1, -1e16]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, body["result"])
}

func TestListBackends(t *testing.T) {
	router, _ := setupRouter(t)

	w, body := do(t, router, http.MethodGet, "/v1/backends", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Subset(t, body["backends"], []any{"gonum", "parallel", "sequential"})
	assert.Equal(t, "sequential", body["bound"])
}

func TestEventsLifecycle(t *testing.T) {
	router, e := setupRouter(t)
	_, err := e.Add(numeric.Scalar(math.MaxFloat64), numeric.Scalar(math.MaxFloat64))
	require.NoError(t, err)
	_, err = e.Add(numeric.Scalar(1), numeric.Scalar(-1+1e-12))
	require.NoError(t, err)

	w, body := do(t, router, http.MethodGet, "/v1/events", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, body["count"])

	w, body = do(t, router, http.MethodGet, "/v1/events?min_severity=critical", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, body["count"])

	w, _ = do(t, router, http.MethodGet, "/v1/events?min_severity=loud", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, router, http.MethodGet, "/v1/events?format=ndjson", "")
	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"+Inf"`)

	w, _ = do(t, router, http.MethodDelete, "/v1/events", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, e.Tracer().Len())
}

func TestStats(t *testing.T) {
	router, e := setupRouter(t)
	_, err := e.Add(numeric.Scalar(math.NaN()), numeric.Scalar(1))
	require.NoError(t, err)

	w, body := do(t, router, http.MethodGet, "/v1/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, body["events"])
	assert.Equal(t, "sequential", body["backend"].(map[string]any)["name"])
	assert.Equal(t, map[string]any{"nan_produced": 1.0}, body["anomalies"])
}
