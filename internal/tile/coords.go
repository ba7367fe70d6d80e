// Package tile provides tile coordinate math for the Web Mercator tile pyramid.
package tile

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// Coords identifies a tile in the Web Mercator tile system (z/x/y).
// X and Y are signed: map widgets hand out coordinates past the antimeridian
// (x < 0 or x >= 2^zoom) and above/below the projection's latitude range.
type Coords struct {
	Zoom int // Zoom level
	X    int // Column, west to east
	Y    int // Row, north to south
}

// NewCoords creates a new Coords from zoom, x, y values.
func NewCoords(zoom, x, y int) Coords {
	return Coords{Zoom: zoom, X: x, Y: y}
}

// String returns the tile coordinate as a string in format "z{zoom}_x{x}_y{y}".
func (c Coords) String() string {
	return fmt.Sprintf("z%d_x%d_y%d", c.Zoom, c.X, c.Y)
}

// maxTile returns the number of tile rows/columns at this zoom level.
func (c Coords) maxTile() int {
	return 1 << uint(c.Zoom)
}

// Valid reports whether the row exists at this zoom level. Columns always
// resolve to a tile (the world repeats horizontally), rows do not: latitude
// is finite in the Web Mercator projection.
func (c Coords) Valid() bool {
	return c.Y >= 0 && c.Y <= c.maxTile()-1
}

// Wrapped returns the coordinate with X folded into [0, 2^zoom - 1] using a
// true mathematical modulo, so negative columns wrap to the eastern edge.
func (c Coords) Wrapped() Coords {
	n := c.maxTile()
	x := ((c.X % n) + n) % n
	return Coords{Zoom: c.Zoom, X: x, Y: c.Y}
}

// Tile returns the maptile.Tile for a valid, wrapped coordinate.
func (c Coords) Tile() maptile.Tile {
	w := c.Wrapped()
	return maptile.New(uint32(w.X), uint32(w.Y), maptile.Zoom(w.Zoom))
}

// Bounds returns the geographic bounding box for this tile in WGS84.
// Returns [minLon, minLat, maxLon, maxLat].
func (c Coords) Bounds() [4]float64 {
	bound := c.Tile().Bound()
	return [4]float64{
		bound.Min.Lon(),
		bound.Min.Lat(),
		bound.Max.Lon(),
		bound.Max.Lat(),
	}
}

// PixelLatLng returns the WGS84 coordinate at the center of pixel (px, py)
// of this tile rendered at the given size. Longitude maps linearly across
// the tile; latitude follows the inverse Mercator transform.
func (c Coords) PixelLatLng(px, py, size int) (lat, lng float64) {
	n := float64(c.maxTile())
	fx := (float64(c.X) + (float64(px)+0.5)/float64(size)) / n
	fy := (float64(c.Y) + (float64(py)+0.5)/float64(size)) / n

	lng = fx*360.0 - 180.0
	lat = mercatorToLat(math.Pi * (1 - 2*fy))
	return lat, lng
}

// mercatorToLat converts a Web Mercator Y value to latitude in degrees.
func mercatorToLat(mercatorY float64) float64 {
	return 180.0 / math.Pi * math.Atan(math.Sinh(mercatorY))
}

// TilesInBBox returns all tile coordinates within a bounding box across a
// zoom range. bbox is [minLon, minLat, maxLon, maxLat] in WGS84. Tile
// coordinates are computed independently at each zoom level.
func TilesInBBox(bbox [4]float64, zoomMin, zoomMax int) []Coords {
	minPoint := orb.Point{bbox[0], bbox[1]}
	maxPoint := orb.Point{bbox[2], bbox[3]}

	tiles := make([]Coords, 0, TileCount(bbox, zoomMin, zoomMax))

	for z := zoomMin; z <= zoomMax; z++ {
		minX, maxX, minY, maxY := bboxTileSpan(minPoint, maxPoint, z)
		for x := minX; x <= maxX; x++ {
			for y := minY; y <= maxY; y++ {
				tiles = append(tiles, NewCoords(z, x, y))
			}
		}
	}

	return tiles
}

// TileCount returns the number of tiles in a bounding box across a zoom
// range, for progress estimation without allocating the full tile list.
func TileCount(bbox [4]float64, zoomMin, zoomMax int) int {
	minPoint := orb.Point{bbox[0], bbox[1]}
	maxPoint := orb.Point{bbox[2], bbox[3]}

	count := 0
	for z := zoomMin; z <= zoomMax; z++ {
		minX, maxX, minY, maxY := bboxTileSpan(minPoint, maxPoint, z)
		count += (maxX - minX + 1) * (maxY - minY + 1)
	}
	return count
}

// bboxTileSpan returns the inclusive tile coordinate span covering the two
// corner points at zoom z. Y is inverted relative to latitude, so both axes
// are reordered after projection.
func bboxTileSpan(minPoint, maxPoint orb.Point, z int) (minX, maxX, minY, maxY int) {
	minTile := maptile.At(minPoint, maptile.Zoom(z))
	maxTile := maptile.At(maxPoint, maptile.Zoom(z))

	minX, maxX = int(minTile.X), int(maxTile.X)
	if minX > maxX {
		minX, maxX = maxX, minX
	}

	minY, maxY = int(minTile.Y), int(maxTile.Y)
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return minX, maxX, minY, maxY
}
