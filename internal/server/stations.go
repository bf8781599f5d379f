package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/railcdl/pkg/errors"
	rio "github.com/matzehuels/railcdl/pkg/io"
	"github.com/matzehuels/railcdl/pkg/network"
	"github.com/matzehuels/railcdl/pkg/store"
)

type stationListResponse struct {
	Stations []store.Record `json:"stations"`
}

// handleCreateStation saves a station document. YAML is accepted when the
// request says so in its Content-Type; anything else is read as JSON.
func (s *Server) handleCreateStation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	var g *network.Network
	var err error
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		g, err = rio.ReadYAML(r.Body)
	} else {
		g, err = rio.ReadJSON(r.Body)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := errors.ValidateStationName(g.Name); err != nil {
		s.respondError(w, r, err)
		return
	}

	rec, err := s.store.Save(r.Context(), g)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	loggerFrom(r).Info("station saved", "id", rec.ID, "station", rec.Name, "nodes", rec.Nodes)
	w.Header().Set("Location", "/api/stations/"+rec.ID)
	s.respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListStations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, stationListResponse{Stations: recs})
}

// handleGetStation returns the stored station document unchanged.
func (s *Server) handleGetStation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rec.Data)
}

func (s *Server) handleDeleteStation(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStationAnalysis analyses a saved station. Query parameters:
// signal_distance, branch_policy and image (svg, png, none).
func (s *Server) handleStationAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	g, err := rec.Network()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	q := r.URL.Query()
	distance, err := parseDistance(q.Get("signal_distance"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	resp, err := s.analyze(r, g, s.options(r, distance, q.Get("branch_policy")), q.Get("image"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	resp.StationID = id
	s.respondJSON(w, http.StatusOK, resp)
}
