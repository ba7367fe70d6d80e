// Package legend builds and serializes the color legend shown beside the
// map. The legend is an ordered list of label/color rows rendered
// top-to-bottom, from strongest gain to strongest loss.
package legend

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hydroviz/twsmap/internal/gradient"
)

// Entry is a single legend row.
type Entry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Build samples the diverging scale at steps+1 evenly spaced values over
// [+maxMagnitude, -maxMagnitude], top-to-bottom. Labels carry the sample
// value and unit, e.g. "+10 cm". steps must be a positive even number so the
// neutral zero row lands exactly in the middle.
func Build(d gradient.Diverging, steps int, unit string) ([]Entry, error) {
	if steps <= 0 || steps%2 != 0 {
		return nil, fmt.Errorf("steps must be a positive even number, got %d", steps)
	}

	entries := make([]Entry, 0, steps+1)
	stepSize := d.MaxMagnitude * 2 / float64(steps)

	for i := 0; i <= steps; i++ {
		value := d.MaxMagnitude - float64(i)*stepSize
		entries = append(entries, Entry{
			Label: formatLabel(value, unit),
			Color: d.Hex(value),
		})
	}
	return entries, nil
}

func formatLabel(value float64, unit string) string {
	label := strconv.FormatFloat(value, 'f', -1, 64)
	if value > 0 {
		label = "+" + label
	}
	if unit != "" {
		label += " " + unit
	}
	return label
}

// WriteTable writes entries as the row-oriented text table the viewer
// consumes: one "label<TAB>color" row per entry, in display order.
func WriteTable(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", e.Label, e.Color); err != nil {
			return err
		}
	}
	return nil
}

// ParseTable reads a legend table produced by WriteTable. Blank lines are
// skipped; any other row without a tab separator is an error.
func ParseTable(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		label, color, found := strings.Cut(text, "\t")
		if !found {
			return nil, fmt.Errorf("line %d: missing tab separator", line)
		}
		entries = append(entries, Entry{Label: label, Color: color})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
