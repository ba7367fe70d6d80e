package grid

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// cellKey identifies a grid cell by the floored degrees of its southwest
// corner.
type cellKey struct {
	latIdx int
	lngIdx int
}

// Dataset is a sparse 1°×1° world grid of TWS-change values. Cells without a
// sample are gaps and render transparent.
type Dataset struct {
	cells  map[cellKey]float64
	maxMag float64
}

// Load reads a dataset from a CSV file of "lng,lat,value" rows.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	d, err := LoadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return d, nil
}

// LoadFrom reads "lng,lat,value" CSV rows from r. A single header row is
// tolerated. Duplicate cells keep the last value seen.
func LoadFrom(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	d := &Dataset{cells: make(map[cellKey]float64)}

	for line := 1; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		lng, errLng := strconv.ParseFloat(record[0], 64)
		lat, errLat := strconv.ParseFloat(record[1], 64)
		value, errVal := strconv.ParseFloat(record[2], 64)
		if errLng != nil || errLat != nil || errVal != nil {
			if line == 1 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("line %d: malformed record %v", line, record)
		}

		d.set(Point{Lat: lat, Lng: lng}, value)
	}

	if len(d.cells) == 0 {
		return nil, fmt.Errorf("dataset contains no samples")
	}
	return d, nil
}

func (d *Dataset) set(p Point, value float64) {
	d.cells[keyFor(p)] = value
	if mag := math.Abs(value); mag > d.maxMag {
		d.maxMag = mag
	}
}

// Value returns the sample for the cell containing p, or ok=false when the
// cell has no data.
func (d *Dataset) Value(p Point) (value float64, ok bool) {
	value, ok = d.cells[keyFor(p)]
	return value, ok
}

// MaxMagnitude returns the largest absolute sample value, the natural scale
// for the diverging color gradient.
func (d *Dataset) MaxMagnitude() float64 {
	return d.maxMag
}

// Len returns the number of sampled cells.
func (d *Dataset) Len() int {
	return len(d.cells)
}

func keyFor(p Point) cellKey {
	return cellKey{
		latIdx: int(math.Floor(p.Lat)),
		lngIdx: int(math.Floor(p.Lng)),
	}
}
