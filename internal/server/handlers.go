package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matzehuels/railcdl/pkg/buildinfo"
	"github.com/matzehuels/railcdl/pkg/cdl"
	"github.com/matzehuels/railcdl/pkg/errors"
	rio "github.com/matzehuels/railcdl/pkg/io"
	"github.com/matzehuels/railcdl/pkg/network"
	"github.com/matzehuels/railcdl/pkg/pipeline"
	"github.com/matzehuels/railcdl/pkg/render/nodelink"
	"github.com/matzehuels/railcdl/pkg/report"
)

// analysisResponse is the body of every successful analysis.
type analysisResponse struct {
	Success bool `json:"success"`
	*report.Report

	// Image is the diagram as a data URI, empty when not requested.
	Image string `json:"image_path,omitempty"`
	// Import describes a RailML upload.
	Import *rio.RailMLStats `json:"import,omitempty"`
	// StationID is set when the station was saved.
	StationID string `json:"station_id,omitempty"`
	Cached    bool   `json:"cached"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

// handleGenerate analyses a station sent as the editor's node/edge list.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req stationRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	g, err := req.network()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp, err := s.analyze(r, g, s.options(r, req.SignalDistance, req.BranchPolicy), req.Image)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Save {
		rec, err := s.store.Save(r.Context(), g)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		resp.StationID = rec.ID
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleUpload analyses an uploaded station file. The format follows the
// file extension; files without one are read as RailML.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUpload {
		s.respondError(w, r, &http.MaxBytesError{Limit: s.maxUpload})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.respondError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errors.New(errors.ErrCodeInvalidInput, "no file uploaded"))
		return
	}
	defer file.Close()
	if err := errors.ValidateFilename(header.Filename); err != nil {
		s.respondError(w, r, err)
		return
	}

	distance, err := parseDistance(r.FormValue("signal_distance"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	format, err := rio.DetectFormat(header.Filename)
	if err != nil {
		format = rio.FormatRailML
	}

	var g *network.Network
	var stats *rio.RailMLStats
	if format == rio.FormatRailML {
		var st rio.RailMLStats
		g, st, err = rio.ReadRailML(file)
		stats = &st
	} else {
		g, err = rio.Read(file, format)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	loggerFrom(r).Info("station uploaded",
		"file", header.Filename,
		"format", format,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount())

	resp, err := s.analyze(r, g, s.options(r, distance, r.FormValue("branch_policy")), r.FormValue("image"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	resp.Import = stats
	s.respondJSON(w, http.StatusOK, resp)
}

// handleRender returns the diagram of a station in the requested format.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	g, err := req.network()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	format := req.Format
	if format == "" {
		format = string(nodelink.FormatSVG)
	}
	opts := s.options(r, req.SignalDistance, req.BranchPolicy)
	opts.Formats = []string{format}
	opts.Engine = req.Engine
	opts.Detailed = req.Detailed
	opts.EdgeLabels = req.EdgeLabels
	opts.Positions = req.Positions

	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), g, nil, opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", nodelink.Format(format).ContentType())
	w.Header().Set("X-Cache", cacheHeader(hit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// analyze runs the analysis and, unless image is "none", attaches a diagram.
func (s *Server) analyze(r *http.Request, g *network.Network, opts pipeline.Options, image string) (*analysisResponse, error) {
	if image == "" {
		image = imageSVG
	}
	if image != imageSVG && image != imagePNG && image != imageNone {
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown image format %q (want svg, png or none)", image)
	}

	ctx := r.Context()
	rep, res, hit, err := s.runner.AnalyzeWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	resp := &analysisResponse{Success: true, Report: rep, Cached: hit}
	if image == imageNone {
		return resp, nil
	}

	uri, err := s.image(ctx, g, opts, res, image)
	if err != nil {
		return nil, err
	}
	resp.Image = uri
	return resp, nil
}

func (s *Server) image(ctx context.Context, g *network.Network, opts pipeline.Options, res *cdl.Result, format string) (string, error) {
	opts.Formats = []string{format}
	artifacts, err := s.runner.Render(ctx, g, res, opts)
	if err != nil {
		return "", err
	}
	ct := nodelink.Format(format).ContentType()
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(artifacts[format]), nil
}

// options builds pipeline options for a request.
func (s *Server) options(r *http.Request, distance float64, branch string) pipeline.Options {
	if distance == 0 {
		distance = s.threshold
	}
	if branch == "" {
		branch = s.branch
	}
	return pipeline.Options{
		Threshold: distance,
		Branch:    branch,
		Logger:    loggerFrom(r),
	}
}

// decodeJSON reads a size-limited JSON body into v and validates it.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid request body")
	}
	return s.validateRequest(v)
}

// parseDistance reads an optional signal distance form or query value.
func parseDistance(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	d, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidThreshold, err, "invalid signal_distance %q", v)
	}
	if d <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidThreshold, "signal_distance must be positive, got %v", d)
	}
	return d, nil
}

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
