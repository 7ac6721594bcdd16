package ui

import (
	"bytes"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gokaizen/adapters/excel"
	"gokaizen/app"
	"gokaizen/domain/study"
	"gokaizen/internal/errors"
	"gokaizen/internal/inference"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// previewSize is the number of records per group returned by /simulate
const previewSize = 10

// datePeriod is the first and last date of a group's records
type datePeriod struct {
	Start string `json:"inicio"`
	End   string `json:"fin"`
}

// dataInfo describes the dataset an analysis was computed from
type dataInfo struct {
	DatasetID    string      `json:"dataset_id"`
	NBefore      int         `json:"n_antes"`
	NAfter       int         `json:"n_despues"`
	PeriodBefore *datePeriod `json:"periodo_antes,omitempty"`
	PeriodAfter  *datePeriod `json:"periodo_despues,omitempty"`
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     ServiceName,
		"description": "Comparación estadística antes/después de tiempos de atención",
		"endpoints": gin.H{
			"health":   "GET /health",
			"simulate": "POST /simulate",
			"analyze":  "GET /analyze",
			"summary":  "GET /analyze/summary?format=text|html",
			"current":  "GET /data/current",
			"download": "GET /data/download?format=csv|xlsx",
			"status":   "GET /status",
			"reset":    "POST /reset",
			"history":  "GET /datasets/history?limit=N",
			"metrics":  "GET /metrics",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSimulate ingests a generated dataset. Omitted body fields fall back
// to the configured defaults.
func (s *Server) handleSimulate(c *gin.Context) {
	params := s.defaults
	params.Seed = nil

	if err := c.ShouldBindJSON(&params); err != nil && !stderrors.Is(err, io.EOF) {
		respondError(c, errors.InvalidParameter("invalid simulation parameters: "+err.Error()), http.StatusBadRequest)
		return
	}

	ds, err := s.service.Ingest(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	respondOK(c, "Datos simulados generados correctamente", gin.H{
		"dataset_id":            ds.ID,
		"simulation_parameters": ds.Params,
		"effective_seed":        ds.EffectiveSeed,
		"summary":               summarize(ds),
		"sample_data": gin.H{
			string(study.GroupBefore): head(ds.BeforeRecords, previewSize),
			string(study.GroupAfter):  head(ds.AfterRecords, previewSize),
		},
		"total_records": len(ds.BeforeRecords) + len(ds.AfterRecords),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	opts := app.AnalyzeOptions{
		GeneratePlots:   queryBool(c, "generate_plots"),
		CreateDashboard: queryBool(c, "create_dashboard"),
	}

	result, err := s.service.Analyze(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	respondOK(c, "Análisis completado", gin.H{
		"analysis_results": result.Report,
		"data_info":        describeDataset(result.Dataset),
		"render_options":   result.Options,
	})
}

// handleSummary returns the executive summary as text or rendered HTML
func (s *Server) handleSummary(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "text"))
	if format != "text" && format != "html" {
		respondError(c, errors.InvalidInput("format must be text or html"), http.StatusBadRequest)
		return
	}

	result, err := s.service.Analyze(c.Request.Context(), app.AnalyzeOptions{})
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	if format == "html" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", renderMarkdown(result.Report.ExecutiveSummary))
		return
	}

	respondOK(c, "Resumen ejecutivo", gin.H{
		"resumen_ejecutivo": result.Report.ExecutiveSummary,
	})
}

func (s *Server) handleCurrentData(c *gin.Context) {
	ds, err := s.service.Current()
	if err != nil {
		respondError(c, err, http.StatusNotFound)
		return
	}

	respondOK(c, "Datos actuales", gin.H{
		"dataset_id":    ds.ID,
		"source":        ds.Source,
		"records":       ds.Records(),
		"summary":       summarize(ds),
		"total_records": len(ds.BeforeRecords) + len(ds.AfterRecords),
	})
}

// handleDownload exports the current dataset sorted by date
func (s *Server) handleDownload(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", excel.FormatCSV))

	ds, err := s.service.Current()
	if err != nil {
		respondError(c, err, http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := excel.Write(&buf, format, ds.Records()); err != nil {
		respondError(c, err, http.StatusNotFound)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == excel.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	c.Header("Content-Disposition", `attachment; filename="kaizen_datos.`+format+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (s *Server) handleStatus(c *gin.Context) {
	st := s.service.Status()
	respondOK(c, "Estado del sistema", gin.H{
		"has_data": st.HasData,
		"data_counts": gin.H{
			"before": st.BeforeCount,
			"after":  st.AfterCount,
		},
		"dataset_id":      st.DatasetID,
		"seed":            st.Seed,
		"effective_seed":  st.EffectiveSeed,
		"archive_enabled": s.service.ArchiveEnabled(),
	})
}

func (s *Server) handleReset(c *gin.Context) {
	s.service.Reset()
	respondOK(c, "Datos reiniciados", nil)
}

func (s *Server) handleHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, errors.InvalidInput("limit must be a non-negative integer"), http.StatusBadRequest)
			return
		}
		limit = n
	}

	items, err := s.service.History(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, http.StatusNotFound)
		return
	}

	respondOK(c, "Historial de datasets", gin.H{
		"datasets": items,
		"count":    len(items),
	})
}

func summarize(ds *study.Dataset) study.GroupPair[study.DescriptiveStatistics] {
	return study.GroupPair[study.DescriptiveStatistics]{
		Before: inference.Describe(ds.Before),
		After:  inference.Describe(ds.After),
	}
}

func describeDataset(ds *study.Dataset) dataInfo {
	return dataInfo{
		DatasetID:    ds.ID.String(),
		NBefore:      ds.Before.Len(),
		NAfter:       ds.After.Len(),
		PeriodBefore: periodOf(ds.BeforeRecords),
		PeriodAfter:  periodOf(ds.AfterRecords),
	}
}

// periodOf returns nil when no record carries a date
func periodOf(records []study.Record) *datePeriod {
	var first, last time.Time
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		if first.IsZero() || r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	if first.IsZero() {
		return nil
	}
	return &datePeriod{
		Start: first.Format(excel.DateLayout),
		End:   last.Format(excel.DateLayout),
	}
}

func head(records []study.Record, n int) []study.Record {
	if len(records) < n {
		n = len(records)
	}
	return records[:n]
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}

func renderMarkdown(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}
