package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/maryakemi70/HY4RES-WP2/internal/model"
	"github.com/maryakemi70/HY4RES-WP2/internal/store"
)

type sourceInfo struct {
	Quantity string `json:"quantity"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Path     string `json:"path"`
	Column   string `json:"column"`
	Points   int    `json:"points"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
}

type pointInfo struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

const timestampLayout = "2006-01-02T15:04:05"

// seriesAPI exposes the raw input series held by the store.
type seriesAPI struct {
	st  *store.Store
	log *slog.Logger
}

func (a *seriesAPI) sources(w http.ResponseWriter, r *http.Request) {
	srcs := a.st.Sources()
	out := make([]sourceInfo, len(srcs))
	for i, src := range srcs {
		meta := model.QuantityCatalog[src.Quantity]
		out[i] = sourceInfo{
			Quantity: string(src.Quantity),
			Name:     meta.Name,
			Unit:     meta.Unit,
			Path:     src.Path,
			Column:   src.Column,
			Points:   src.Points,
		}
		if tr, ok := a.st.TimeRange(src.Quantity); ok {
			out[i].Start = tr.Start.Format(timestampLayout)
			out[i].End = tr.End.Format(timestampLayout)
		}
	}
	a.writeJSON(w, out)
}

// points answers GET /api/series/{quantity}?start=YYYY-MM-DD&days=N.
// Without start the window begins at the first stored day; days defaults to 1.
func (a *seriesAPI) points(w http.ResponseWriter, r *http.Request) {
	q := model.Quantity(r.PathValue("quantity"))
	tr, ok := a.st.TimeRange(q)
	if !ok {
		http.Error(w, "unknown series "+string(q), http.StatusNotFound)
		return
	}

	start := model.Day(tr.Start)
	if s := r.URL.Query().Get("start"); s != "" {
		t, err := model.ParseDate(s)
		if err != nil {
			http.Error(w, "invalid start: "+err.Error(), http.StatusBadRequest)
			return
		}
		start = t
	}
	days := 1
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "days must be a positive integer", http.StatusBadRequest)
			return
		}
		days = n
	}

	pts := a.st.PointsInRange(q, start, start.AddDate(0, 0, days))
	out := make([]pointInfo, len(pts))
	for i, p := range pts {
		out[i] = pointInfo{Timestamp: p.Timestamp.Format(timestampLayout), Value: p.Value}
	}
	a.writeJSON(w, out)
}

func (a *seriesAPI) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Error("encoding response", "err", err)
	}
}
