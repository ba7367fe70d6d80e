package tile

import (
	"fmt"
	"strings"
)

// Addresser computes relative URL paths for pre-rendered tile images laid out
// as {base}/{zoom}/{x}/{y}.{ext}. It performs no I/O; the caller fetches the
// resource and handles a missing image itself.
type Addresser struct {
	// BasePath is the directory or URL prefix the tiles live under.
	BasePath string
	// Extension is the tile image extension without the dot. Defaults to "png".
	Extension string
}

// Path returns the relative path for the tile image, or ok=false when the
// coordinate addresses no tile (row outside the projection's latitude range).
// Columns wrap around the antimeridian, so every X resolves to a tile.
func (a Addresser) Path(c Coords) (path string, ok bool) {
	if !c.Valid() {
		return "", false
	}

	ext := a.Extension
	if ext == "" {
		ext = "png"
	}

	w := c.Wrapped()
	base := strings.TrimSuffix(a.BasePath, "/")
	return fmt.Sprintf("%s/%d/%d/%d.%s", base, w.Zoom, w.X, w.Y, ext), true
}
