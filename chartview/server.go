// ABOUTME: Lightweight standalone chart view serving a saved snapshot document over HTTP.
// ABOUTME: Aligns chart series on the serving path and renders report markdown with goldmark.
package chartview

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/signalflux/fluxwatch/align"
	"github.com/signalflux/fluxwatch/model"
	"github.com/signalflux/fluxwatch/snapshot"
)

// Server serves one snapshot document, independent of any live run.
type Server struct {
	doc      *snapshot.Document
	router   chi.Router
	markdown goldmark.Markdown
	token    string
}

// Config holds chart view server options.
type Config struct {
	Token string // optional bearer token; empty disables auth
}

// NewServer creates a chart view server for a loaded snapshot document.
func NewServer(doc *snapshot.Document, cfg Config) *Server {
	s := &Server{
		doc:   doc,
		token: cfg.Token,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Table),
		),
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts serving on the given address.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("chartview: serving snapshot run_id=%s charts=%d on %s",
		s.doc.RunID, len(s.doc.Charts), addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.token != "" {
		r.Use(BearerAuth(s.token))
	}

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/snapshot.json", s.handleSnapshot)
	r.Get("/charts", s.handleChartList)
	r.Get("/charts/{ticker}.json", s.handleChart)
	r.Get("/report", s.handleReport)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSnapshot returns the raw snapshot document.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.doc)
}

// chartSummary is one row of the chart listing.
type chartSummary struct {
	Ticker      string `json:"ticker"`
	Name        string `json:"name"`
	Prices      int    `json:"prices"`
	HasForecast bool   `json:"has_forecast"`
}

func (s *Server) handleChartList(w http.ResponseWriter, r *http.Request) {
	out := make([]chartSummary, 0, len(s.doc.Charts))
	for _, cs := range s.doc.Charts {
		out = append(out, chartSummary{
			Ticker:      cs.Ticker,
			Name:        cs.Name,
			Prices:      len(cs.Prices),
			HasForecast: len(cs.Forecast) > 0 || len(cs.ForecastBase) > 0,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleChart returns the aligned render-ready series for one ticker. A chart
// with zero valid points is reported as absent, not an error page.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	var series *model.ChartSeries
	for i := range s.doc.Charts {
		if s.doc.Charts[i].Ticker == ticker {
			series = &s.doc.Charts[i]
			break
		}
	}
	if series == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown ticker"})
		return
	}

	aligned := align.Align(series.Prices, series.Forecast, series.ForecastBase)
	if aligned.Empty() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no valid points"})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Ticker          string         `json:"ticker"`
		Name            string         `json:"name"`
		Series          align.Aligned  `json:"series"`
		Prediction      *model.Prediction `json:"prediction,omitempty"`
		PredictionLogic string         `json:"prediction_logic,omitempty"`
	}{
		Ticker:          series.Ticker,
		Name:            series.Name,
		Series:          aligned,
		Prediction:      series.Prediction,
		PredictionLogic: series.PredictionLogic,
	})
}

// handleReport renders the snapshot's report markdown to HTML.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.doc.Report == "" {
		http.Error(w, "no report in snapshot", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(s.doc.Report), &buf); err != nil {
		log.Printf("chartview: render report: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := reportTemplate.Execute(w, template.HTML(buf.String())); err != nil {
		log.Printf("chartview: write report page: %v", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		RunID       string
		GeneratedAt string
		SignalCount int
		Charts      []model.ChartSeries
	}{
		RunID:       s.doc.RunID,
		GeneratedAt: s.doc.GeneratedAt.Format("2006-01-02 15:04:05 UTC"),
		SignalCount: s.doc.Count,
		Charts:      s.doc.Charts,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		log.Printf("chartview: render index: %v", err)
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("chartview: encode response: %v", err)
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>fluxwatch — snapshot {{.RunID}}</title>
<style>body{font-family:sans-serif;margin:2rem;background:#1a1a2e;color:#e0e0e0}a{color:#6bb3ff}</style>
</head>
<body>
<h1>Run {{.RunID}}</h1>
<p>Captured {{.GeneratedAt}} — {{.SignalCount}} signals</p>
<ul>
{{range .Charts}}<li><a href="/charts/{{.Ticker}}.json">{{.Name}} ({{.Ticker}})</a></li>
{{end}}</ul>
<p><a href="/snapshot.json">snapshot.json</a> · <a href="/report">report</a></p>
</body>
</html>`))

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><title>fluxwatch — report</title>
<style>body{font-family:sans-serif;max-width:52rem;margin:2rem auto;padding:0 1rem}</style>
</head>
<body>{{.}}</body>
</html>`))
