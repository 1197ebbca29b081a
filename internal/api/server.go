// Package api exposes the reconstruction pipeline over HTTP: a caller
// posts a point cloud and receives a triangulated mesh, with run records
// persisted for later inspection.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/surfacer/internal/config"
	"github.com/banshee-data/surfacer/internal/db"
	"github.com/banshee-data/surfacer/internal/geom"
	"github.com/banshee-data/surfacer/internal/httputil"
	"github.com/banshee-data/surfacer/internal/surface"
	"github.com/banshee-data/surfacer/internal/version"
)

// ANSI escape codes for request log colouring
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// maxRequestBytes caps the triangulate request body. A million points at
// JSON verbosity stays comfortably under this.
const maxRequestBytes = 128 << 20

// Server handles the reconstruction API. Each request builds its own
// pipeline state, so a single Server safely serves concurrent requests.
type Server struct {
	db     *db.DB
	tuning *config.TuningConfig
}

// NewServer creates an API server backed by the given run store and tuning
// configuration.
func NewServer(database *db.DB, tuning *config.TuningConfig) *Server {
	if tuning == nil {
		tuning = config.EmptyTuningConfig()
	}
	return &Server{
		db:     database,
		tuning: tuning,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the API routing table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/triangulate", s.handleTriangulate)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

// requestParams merges per-request overrides over the tuning defaults.
func (s *Server) requestParams(req *TriangulateRequest) surface.Params {
	params := s.tuning.PipelineParams()
	if req.SearchRadius != nil && *req.SearchRadius > 0 {
		params.SearchRadius = *req.SearchRadius
	}
	if req.Polynomial != nil {
		params.Polynomial = *req.Polynomial
	}
	if req.FanPolygons != nil {
		params.FanPolygons = *req.FanPolygons
	}
	return params
}

func (s *Server) handleTriangulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	var req TriangulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if len(req.Points) > s.tuning.GetMaxPoints() {
		httputil.BadRequest(w, "too many points")
		return
	}

	runID := uuid.NewString()
	params := s.requestParams(&req)
	pipeline := surface.NewPipeline(params)

	result, err := pipeline.Run(toVectors(req.Points))
	if err != nil {
		if errors.Is(err, surface.ErrInsufficientData) {
			httputil.BadRequest(w, "point cloud is empty")
			return
		}
		httputil.InternalServerError(w, err.Error())
		return
	}

	log.Printf("[triangulate] run=%s points=%d smoothed=%d dropped=%d triangles=%d dropped_polygons=%d",
		runID, result.InputPoints, result.SmoothedPoints, result.DroppedPoints,
		len(result.Mesh.Triangles), result.DroppedPolygons)

	s.recordRun(runID, params, result)

	if r.URL.Query().Get("format") == "stl" {
		w.Header().Set("Content-Type", "application/sla")
		w.Header().Set("X-Run-Id", runID)
		if err := geom.WriteSTL(w, result.Mesh, "surfacer "+runID); err != nil {
			log.Printf("[triangulate] stl write failed: %v", err)
		}
		return
	}

	httputil.WriteJSONOK(w, TriangulateResponse{
		RunID: runID,
		Mesh:  meshToMsg(result.Mesh),
		Stats: RunStatsMsg{
			InputPoints:     result.InputPoints,
			SmoothedPoints:  result.SmoothedPoints,
			DroppedPoints:   result.DroppedPoints,
			Polygons:        result.Polygons,
			DroppedPolygons: result.DroppedPolygons,
			SmoothMillis:    float64(result.SmoothDuration.Nanoseconds()) / 1e6,
			ReconstructMS:   float64(result.ReconstructDuration.Nanoseconds()) / 1e6,
		},
	})
}

// recordRun persists the run record. Persistence failures are logged, not
// surfaced; the caller already has their mesh.
func (s *Server) recordRun(runID string, params surface.Params, result surface.Result) {
	if s.db == nil {
		return
	}
	err := s.db.RecordRun(db.RunRecord{
		RunID:           runID,
		InputPoints:     result.InputPoints,
		SmoothedPoints:  result.SmoothedPoints,
		DroppedPoints:   result.DroppedPoints,
		Polygons:        result.Polygons,
		DroppedPolygons: result.DroppedPolygons,
		Triangles:       len(result.Mesh.Triangles),
		SearchRadius:    params.SearchRadius,
		Polynomial:      params.Polynomial,
		FanPolygons:     params.FanPolygons,
		SmoothMillis:    float64(result.SmoothDuration.Nanoseconds()) / 1e6,
		ReconstructMS:   float64(result.ReconstructDuration.Nanoseconds()) / 1e6,
	})
	if err != nil {
		log.Printf("[triangulate] failed to record run %s: %v", runID, err)
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.db == nil {
		httputil.NotFound(w, "run store not configured")
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := s.db.RecentRuns(limit)
	if err != nil {
		httputil.InternalServerError(w, "failed to retrieve runs: "+err.Error())
		return
	}
	httputil.WriteJSONOK(w, runs)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.tuning.PipelineParams())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}
