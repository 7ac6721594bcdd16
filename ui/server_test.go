package ui

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gokaizen/app"
	"gokaizen/domain/study"
	"gokaizen/internal/dataset"
	"gokaizen/internal/simulation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer() *Server {
	svc := app.NewAnalysisService(dataset.NewStore(), simulation.NewGenerator(), nil)
	return NewServer(svc, Options{AllowedOrigins: []string{"http://localhost:3000"}})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthAndIndex(t *testing.T) {
	s := newTestServer()

	w := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", gjson.Get(w.Body.String(), "status").String())

	w = do(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "POST /simulate", gjson.Get(w.Body.String(), "endpoints.simulate").String())
}

func TestAnalyze_NoData(t *testing.T) {
	s := newTestServer()

	w := do(t, s, http.MethodGet, "/analyze", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.False(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, "NO_DATA_AVAILABLE", gjson.Get(body, "error_code").String())

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/data/current", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/data/download", "").Code)
}

func TestSimulateAnalyzeFlow(t *testing.T) {
	s := newTestServer()

	w := do(t, s, http.MethodPost, "/simulate", `{"n_before": 60, "n_after": 50, "seed": 42}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.True(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, int64(110), gjson.Get(body, "data.total_records").Int())
	assert.Equal(t, 8.5, gjson.Get(body, "data.simulation_parameters.before_mean").Float())
	assert.Equal(t, int64(42), gjson.Get(body, "data.effective_seed").Int())
	assert.Len(t, gjson.Get(body, "data.sample_data.antes").Array(), 10)
	assert.Equal(t, int64(60), gjson.Get(body, "data.summary.antes.n").Int())

	w = do(t, s, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.True(t, gjson.Get(body, "data.has_data").Bool())
	assert.Equal(t, int64(60), gjson.Get(body, "data.data_counts.before").Int())
	assert.Equal(t, int64(50), gjson.Get(body, "data.data_counts.after").Int())
	assert.Equal(t, int64(42), gjson.Get(body, "data.seed").Int())

	w = do(t, s, http.MethodGet, "/analyze?generate_plots=true", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = w.Body.String()
	assert.True(t, gjson.Get(body, "data.render_options.generate_plots").Bool())
	assert.False(t, gjson.Get(body, "data.render_options.create_dashboard").Bool())
	assert.True(t, gjson.Get(body, "data.analysis_results.welch_ttest.is_significant").Bool())
	assert.Equal(t, "improvement", gjson.Get(body, "data.analysis_results.cohens_d.direction").String())
	assert.GreaterOrEqual(t, gjson.Get(body, "data.data_info.periodo_antes.inicio").String(), "2024-01-01")
	assert.LessOrEqual(t, gjson.Get(body, "data.data_info.periodo_antes.fin").String(), "2024-03-31")
	assert.GreaterOrEqual(t, gjson.Get(body, "data.data_info.periodo_despues.inicio").String(), "2024-04-01")
	assert.NotEmpty(t, gjson.Get(body, "data.analysis_results.resumen_ejecutivo").String())
	assert.True(t, gjson.Get(body, "data.analysis_results.condiciones").IsArray())

	w = do(t, s, http.MethodPost, "/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, s, http.MethodGet, "/status", "")
	assert.False(t, gjson.Get(w.Body.String(), "data.has_data").Bool())
}

func TestAnalyze_RenderFlagsDoNotChangeReport(t *testing.T) {
	s := newTestServer()
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/simulate", `{"seed": 3}`).Code)

	plain := do(t, s, http.MethodGet, "/analyze", "")
	flagged := do(t, s, http.MethodGet, "/analyze?generate_plots=true&create_dashboard=true", "")

	assert.JSONEq(t,
		gjson.Get(plain.Body.String(), "data.analysis_results").Raw,
		gjson.Get(flagged.Body.String(), "data.analysis_results").Raw)
}

func TestSimulate_Defaults(t *testing.T) {
	s := newTestServer()

	w := do(t, s, http.MethodPost, "/simulate", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Equal(t, int64(200), gjson.Get(body, "data.total_records").Int())
	assert.False(t, gjson.Get(body, "data.simulation_parameters.seed").Exists())
}

func TestSimulate_InvalidParameters(t *testing.T) {
	s := newTestServer()
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/simulate", `{"seed": 1}`).Code)

	for _, body := range []string{
		`{"n_before": 0}`,
		`{"before_std": -2}`,
		`{"n_after": "many"}`,
		`{not json`,
	} {
		w := do(t, s, http.MethodPost, "/simulate", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "INVALID_PARAMETER", gjson.Get(w.Body.String(), "error_code").String(), body)
	}

	// the earlier dataset survives rejected ingests
	w := do(t, s, http.MethodGet, "/status", "")
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "data.seed").Int())
}

func TestSummaryFormats(t *testing.T) {
	s := newTestServer()
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/simulate", `{"seed": 8}`).Code)

	w := do(t, s, http.MethodGet, "/analyze/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, gjson.Get(w.Body.String(), "data.resumen_ejecutivo").String(), "RESULTADOS DEL ANÁLISIS KAIZEN")

	w = do(t, s, http.MethodGet, "/analyze/summary?format=html", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<h2")

	w = do(t, s, http.MethodGet, "/analyze/summary?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownload(t *testing.T) {
	s := newTestServer()
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/simulate", `{"n_before": 5, "n_after": 5, "seed": 4}`).Code)

	w := do(t, s, http.MethodGet, "/data/download?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "kaizen_datos.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 11)
	assert.True(t, strings.HasPrefix(lines[1], "2024-0"))

	w = do(t, s, http.MethodGet, "/data/download?format=xlsx", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = do(t, s, http.MethodGet, "/data/download?format=json", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCurrentData(t *testing.T) {
	s := newTestServer()
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/simulate", `{"n_before": 3, "n_after": 4, "seed": 2}`).Code)

	w := do(t, s, http.MethodGet, "/data/current", "")
	require.Equal(t, http.StatusOK, w.Code)
	records := gjson.Get(w.Body.String(), "data.records").Array()
	require.Len(t, records, 7)
	assert.Equal(t, string(study.GroupBefore), records[0].Get("periodo").String())
	assert.Equal(t, string(study.GroupAfter), records[6].Get("periodo").String())
}

func TestHistory_DisabledWithoutArchive(t *testing.T) {
	s := newTestServer()

	w := do(t, s, http.MethodGet, "/datasets/history", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = do(t, s, http.MethodGet, "/datasets/history?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer()
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/simulate", `{"seed": 6}`).Code)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/analyze", "").Code)

	w := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gokaizen_analyses_total")
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Start(ctx, "127.0.0.1:0"))
}
