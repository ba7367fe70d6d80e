package baker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hydroviz/twsmap/internal/mbtiles"
	"github.com/hydroviz/twsmap/internal/tile"
)

// Sink receives rendered PNG tiles. Implementations must be safe for
// concurrent use by baker workers.
type Sink interface {
	// WriteTile stores a tile and returns a sink-specific path for logging.
	WriteTile(coords tile.Coords, data []byte) (string, error)
}

// FolderSink writes tiles to a nested {dir}/{z}/{x}/{y}.png layout, the same
// layout the tile server and the viewer address.
type FolderSink struct {
	Dir string
}

func (s FolderSink) WriteTile(coords tile.Coords, data []byte) (string, error) {
	path, ok := tile.Addresser{BasePath: s.Dir}.Path(coords)
	if !ok {
		return "", fmt.Errorf("no tile at %s", coords.String())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create tile directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write tile: %w", err)
	}
	return path, nil
}

// MBTilesSink writes tiles into an MBTiles database.
type MBTilesSink struct {
	Writer *mbtiles.Writer
}

func (s MBTilesSink) WriteTile(coords tile.Coords, data []byte) (string, error) {
	w := coords.Wrapped()
	if err := s.Writer.WriteTile(w.Zoom, w.X, w.Y, data); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d/%d/%d", w.Zoom, w.X, w.Y), nil
}
