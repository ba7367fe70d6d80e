// Package mbtiles stores baked TWS-change tiles in an MBTiles database.
package mbtiles

import "fmt"

// Metadata contains the MBTiles metadata fields for a baked tileset.
type Metadata struct {
	Name        string // Human-readable tileset identifier
	Format      string // Tile data type (png)
	Attribution string
	Description string
	Type        string // "overlay" for TWS tiles
	Version     string
	Bounds      [4]float64 // minLon, minLat, maxLon, maxLat
	MinZoom     int
	MaxZoom     int
}

// toMap converts Metadata to the name/value rows stored in the metadata
// table. Empty fields are omitted.
func (m Metadata) toMap() map[string]string {
	result := make(map[string]string)

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Format != "" {
		result["format"] = m.Format
	}
	if m.MinZoom > 0 || m.MaxZoom > 0 {
		result["minzoom"] = fmt.Sprintf("%d", m.MinZoom)
		result["maxzoom"] = fmt.Sprintf("%d", m.MaxZoom)
	}
	if m.Bounds != [4]float64{} {
		result["bounds"] = fmt.Sprintf("%.6f,%.6f,%.6f,%.6f",
			m.Bounds[0], m.Bounds[1], m.Bounds[2], m.Bounds[3])
	}
	if m.Attribution != "" {
		result["attribution"] = m.Attribution
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Type != "" {
		result["type"] = m.Type
	}
	if m.Version != "" {
		result["version"] = m.Version
	}

	return result
}
