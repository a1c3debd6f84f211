package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/KaramelBytes/chartloom-cli/internal/advisor"
	"github.com/KaramelBytes/chartloom-cli/internal/analysis"
	"github.com/KaramelBytes/chartloom-cli/internal/chart"
	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
	"github.com/KaramelBytes/chartloom-cli/internal/geo"
)

type errorResponse struct {
	Error string `json:"error"`
}

type rowsRequest struct {
	Rows     json.RawMessage `json:"rows"`
	Question string          `json:"question"`
}

type specResponse struct {
	chart.ChartSpec
	MapNames []string `json:"mapNames"`
}

type suggestResponse struct {
	*advisor.Result
	MapURLs     map[string]string `json:"mapUrls,omitempty"`
	MissingMaps []string          `json:"missingMaps,omitempty"`
}

type columnsResponse struct {
	Columns []dataset.Column `json:"columns"`
	Rows    int              `json:"rows"`
	Profile *analysis.Report `json:"profile,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) columns(w http.ResponseWriter, r *http.Request) {
	ds, _, ok := s.decodeRows(w, r)
	if !ok {
		return
	}
	resp := columnsResponse{Columns: ds.Columns, Rows: len(ds.Rows)}
	if r.URL.Query().Get("stats") != "" {
		resp.Profile = analysis.Profile(ds, analysis.DefaultOptions())
	}
	render.JSON(w, r, resp)
}

func (s *Server) auto(w http.ResponseWriter, r *http.Request) {
	ds, question, ok := s.decodeRows(w, r)
	if !ok {
		return
	}
	res := s.advisor.Auto(r.Context(), ds, question)
	render.JSON(w, r, specResponse{ChartSpec: res.Spec, MapNames: res.MapNames})
}

func (s *Server) normalize(w http.ResponseWriter, r *http.Request) {
	var raw any
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, MaxBodyBytes), &raw); err != nil {
		badRequest(w, r, "invalid JSON body: "+err.Error())
		return
	}
	spec := chart.NormalizeAIResponse(raw)
	render.JSON(w, r, specResponse{ChartSpec: spec, MapNames: chart.CollectMapNames(spec.Option)})
}

func (s *Server) suggest(w http.ResponseWriter, r *http.Request) {
	ds, question, ok := s.decodeRows(w, r)
	if !ok {
		return
	}
	res, err := s.advisor.Suggest(r.Context(), ds, question)
	if err != nil {
		s.log.Warn("suggest aborted", zap.Error(err))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}
	out := suggestResponse{Result: res}
	if len(res.MapNames) > 0 {
		resolved, missing := s.maps.Resolve(res.MapNames)
		out.MissingMaps = missing
		if len(resolved) > 0 {
			out.MapURLs = make(map[string]string, len(resolved))
			for name := range resolved {
				out.MapURLs[name] = "/v1/maps/" + url.PathEscape(name)
			}
		}
	}
	render.JSON(w, r, out)
}

func (s *Server) mapFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := s.maps.Load(name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, geo.ErrNotFound) {
			status = http.StatusNotFound
		}
		render.Status(r, status)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}

func (s *Server) decodeRows(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, string, bool) {
	var req rowsRequest
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, MaxBodyBytes), &req); err != nil {
		badRequest(w, r, "invalid JSON body: "+err.Error())
		return nil, "", false
	}
	if len(req.Rows) == 0 || string(req.Rows) == "null" {
		return &dataset.Dataset{Rows: []dataset.Row{}, Columns: []dataset.Column{}}, req.Question, true
	}
	ds, err := dataset.FromJSON(req.Rows)
	if err != nil {
		badRequest(w, r, err.Error())
		return nil, "", false
	}
	return ds, req.Question, true
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, errorResponse{Error: msg})
}
