// Package grid models the 1°×1° data grid the TWS-change dataset is sampled
// on: cell lookup, cell-center snapping, and the naming scheme for the
// per-cell time-series graph images.
package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point is a geographic coordinate in WGS84 degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CellCenter returns the point at the center of the 1°×1° grid cell
// containing p. The dataset is gridded at whole-degree resolution, so the
// center is floor(coordinate)+0.5 on both axes. Longitude does not wrap at
// the ±180° seam and latitude is not clamped at the poles; inputs are
// expected in range.
func CellCenter(p Point) Point {
	return Point{
		Lat: math.Floor(p.Lat) + 0.5,
		Lng: math.Floor(p.Lng) + 0.5,
	}
}

// GraphFileName returns the on-disk name of the time-series graph image for
// the cell containing p, e.g. "-3.5, 41.5 Data.jpg". Longitude comes first,
// matching how the graphs were exported.
func GraphFileName(p Point) string {
	c := CellCenter(p)
	return fmt.Sprintf("%s, %s Data.jpg", formatDegree(c.Lng), formatDegree(c.Lat))
}

// GraphURL returns the URL path of the graph image under base, with the
// spaces in the filename percent-encoded.
func GraphURL(base string, p Point) string {
	name := strings.ReplaceAll(GraphFileName(p), " ", "%20")
	return strings.TrimSuffix(base, "/") + "/" + name
}

// formatDegree renders a cell-center coordinate with the shortest exact
// decimal form ("41.5", "-0.5").
func formatDegree(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
