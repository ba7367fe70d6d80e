package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hydroviz/twsmap/internal/grid"
)

// GraphsConfig configures the graph image handlers.
type GraphsConfig struct {
	// GraphsDir holds the pre-rendered time-series images, one per grid
	// cell, named "{lng}, {lat} Data.jpg".
	GraphsDir string
	// GraphBase is the URL prefix the images are served under.
	GraphBase string
	// CacheControl is the Cache-Control header sent with graph images.
	CacheControl string
}

// GraphsHandler serves the per-cell time-series graph images and the probe
// API the viewer calls on click. A cell without a graph is an expected
// outcome: the probe reports found=false with status 200 and the viewer
// simply shows no popup.
type GraphsHandler struct {
	cfg    GraphsConfig
	logger *slog.Logger
}

// NewGraphsHandler creates the graph handlers.
func NewGraphsHandler(cfg GraphsConfig, logger *slog.Logger) *GraphsHandler {
	if cfg.GraphBase == "" {
		cfg.GraphBase = "/graphs"
	}
	return &GraphsHandler{cfg: cfg, logger: logger}
}

// ImageHandler serves graph images, expected to be mounted under GraphBase.
func (h *GraphsHandler) ImageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, strings.TrimSuffix(h.cfg.GraphBase, "/")+"/")
		if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
			http.NotFound(w, r)
			return
		}

		path := filepath.Join(h.cfg.GraphsDir, name)
		if _, err := os.Stat(path); err != nil {
			http.NotFound(w, r)
			return
		}

		if h.cfg.CacheControl != "" {
			w.Header().Set("Cache-Control", h.cfg.CacheControl)
		}
		http.ServeFile(w, r, path)
	}
}

// ProbeResponse is the JSON reply of the graph probe API.
type ProbeResponse struct {
	Found  bool       `json:"found"`
	URL    string     `json:"url,omitempty"`
	Center grid.Point `json:"center"`
}

// ProbeHandler answers /api/graph?lat=..&lng=.. by snapping the point to its
// grid cell and checking whether a graph image exists for it.
func (h *GraphsHandler) ProbeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
		if errLat != nil || errLng != nil {
			http.Error(w, "lat and lng query parameters are required", http.StatusBadRequest)
			return
		}

		point := grid.Point{Lat: lat, Lng: lng}
		center := grid.CellCenter(point)

		resp := ProbeResponse{Center: center}
		path := filepath.Join(h.cfg.GraphsDir, grid.GraphFileName(point))
		if _, err := os.Stat(path); err == nil {
			resp.Found = true
			resp.URL = grid.GraphURL(h.cfg.GraphBase, point)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			h.log().Error("failed to encode probe response", "error", err)
		}
	}
}

func (h *GraphsHandler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
