package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hydroviz/twsmap/internal/legend"
)

// LegendHandler serves the color legend, built once at startup.
type LegendHandler struct {
	entries []legend.Entry
	logger  *slog.Logger
}

// NewLegendHandler creates a legend handler for a fixed set of entries.
func NewLegendHandler(entries []legend.Entry, logger *slog.Logger) *LegendHandler {
	return &LegendHandler{entries: entries, logger: logger}
}

// JSONHandler serves the legend as a JSON array of {label, color} rows in
// display order.
func (h *LegendHandler) JSONHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(h.entries); err != nil {
			h.log().Error("failed to encode legend", "error", err)
		}
	}
}

// TableHandler serves the legend as the tab-separated text table.
func (h *LegendHandler) TableHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := legend.WriteTable(w, h.entries); err != nil {
			h.log().Error("failed to write legend table", "error", err)
		}
	}
}

func (h *LegendHandler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
