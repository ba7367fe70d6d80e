// Package server provides the HTTP handlers for the TWS-change viewer: the
// tile overlay, the legend, and the per-cell graph images.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/hydroviz/twsmap/internal/mbtiles"
	"github.com/hydroviz/twsmap/internal/tile"
)

// TileSource reads pre-baked tile data by XYZ coordinate. mbtiles.Reader
// satisfies this interface.
type TileSource interface {
	ReadTile(z, x, y int) ([]byte, error)
}

// TilesConfig configures the tile handler.
type TilesConfig struct {
	// TilesDir serves tiles from a nested {z}/{x}/{y}.png folder. Mutually
	// exclusive with Source.
	TilesDir string
	// Source serves tiles from an MBTiles database.
	Source TileSource
	// CacheControl is the Cache-Control header sent with every tile.
	CacheControl string
}

// TilesHandler serves the pre-baked overlay tiles. Requests past the
// antimeridian wrap to the corresponding column; rows outside the projection
// range are a plain 404 (no tile exists there, which is a normal outcome).
type TilesHandler struct {
	cfg    TilesConfig
	logger *slog.Logger
}

// NewTilesHandler creates a tile handler backed by either a tile folder or
// an MBTiles source.
func NewTilesHandler(cfg TilesConfig, logger *slog.Logger) (*TilesHandler, error) {
	if (cfg.TilesDir == "") == (cfg.Source == nil) {
		return nil, errors.New("exactly one of TilesDir or Source must be set")
	}
	return &TilesHandler{cfg: cfg, logger: logger}, nil
}

// Handler returns the HTTP handler, expected to be mounted under /tiles/.
func (h *TilesHandler) Handler() http.HandlerFunc {
	return h.serveTile
}

func (h *TilesHandler) serveTile(w http.ResponseWriter, r *http.Request) {
	coords, ok := parseTilePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !coords.Valid() {
		// Row outside the finite latitude range of the projection.
		http.NotFound(w, r)
		return
	}

	data, err := h.readTile(coords.Wrapped())
	if err != nil {
		if errors.Is(err, mbtiles.ErrTileNotFound) || errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		h.log().Error("failed to read tile", "coords", coords.String(), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if h.cfg.CacheControl != "" {
		w.Header().Set("Cache-Control", h.cfg.CacheControl)
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(data); err != nil {
		h.log().Error("failed to write tile response", "error", err)
	}
}

func (h *TilesHandler) readTile(coords tile.Coords) ([]byte, error) {
	if h.cfg.Source != nil {
		return h.cfg.Source.ReadTile(coords.Zoom, coords.X, coords.Y)
	}

	path, ok := tile.Addresser{BasePath: h.cfg.TilesDir}.Path(coords)
	if !ok {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(path)
}

func (h *TilesHandler) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// parseTilePath parses a tile path like /tiles/3/5/2.png. The x component
// may be negative (the viewer hands out wrapped columns); the row must be a
// non-negative-looking integer but is range-checked by the caller.
func parseTilePath(p string) (tile.Coords, bool) {
	const prefix = "/tiles/"
	if !strings.HasPrefix(p, prefix) {
		return tile.Coords{}, false
	}

	rest := strings.TrimPrefix(p, prefix)
	if !strings.HasSuffix(rest, ".png") {
		return tile.Coords{}, false
	}
	rest = strings.TrimSuffix(rest, ".png")

	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		return tile.Coords{}, false
	}

	z, errZ := strconv.Atoi(parts[0])
	x, errX := strconv.Atoi(parts[1])
	y, errY := strconv.Atoi(parts[2])
	if errZ != nil || errX != nil || errY != nil || z < 0 {
		return tile.Coords{}, false
	}

	return tile.NewCoords(z, x, y), true
}
