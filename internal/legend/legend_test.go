package legend

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hydroviz/twsmap/internal/gradient"
)

func TestBuild(t *testing.T) {
	d := gradient.Diverging{MaxMagnitude: 20}

	entries, err := Build(d, 4, "cm")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(entries) != 5 {
		t.Fatalf("got %d entries, want 5", len(entries))
	}

	wantLabels := []string{"+20 cm", "+10 cm", "0 cm", "-10 cm", "-20 cm"}
	for i, want := range wantLabels {
		if entries[i].Label != want {
			t.Errorf("entry %d label = %q, want %q", i, entries[i].Label, want)
		}
	}

	// Top row is the strongest gain, bottom the strongest loss, and each
	// swatch matches the gradient directly.
	if entries[0].Color != d.Hex(20) {
		t.Errorf("top color = %s, want %s", entries[0].Color, d.Hex(20))
	}
	if entries[4].Color != d.Hex(-20) {
		t.Errorf("bottom color = %s, want %s", entries[4].Color, d.Hex(-20))
	}
	if entries[2].Color != d.Hex(0) {
		t.Errorf("middle color = %s, want %s", entries[2].Color, d.Hex(0))
	}
}

func TestBuildRejectsBadSteps(t *testing.T) {
	d := gradient.Diverging{MaxMagnitude: 20}
	for _, steps := range []int{0, -2, 3} {
		if _, err := Build(d, steps, "cm"); err == nil {
			t.Errorf("Build(steps=%d) expected error", steps)
		}
	}
}

func TestTableRoundTrip(t *testing.T) {
	entries := []Entry{
		{Label: "+20 cm", Color: "#0000ff"},
		{Label: "0 cm", Color: "#f5ffff"},
		{Label: "-20 cm", Color: "#ff0000"},
	}

	var buf bytes.Buffer
	if err := WriteTable(&buf, entries); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}

	parsed, err := ParseTable(&buf)
	if err != nil {
		t.Fatalf("ParseTable failed: %v", err)
	}

	if len(parsed) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(parsed), len(entries))
	}
	for i := range entries {
		if parsed[i] != entries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, parsed[i], entries[i])
		}
	}
}

func TestParseTableSkipsBlankLines(t *testing.T) {
	input := "+5 cm\t#0000ff\n\n  \n-5 cm\t#ff0000\n"
	entries, err := ParseTable(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTable failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

func TestParseTableMalformed(t *testing.T) {
	if _, err := ParseTable(strings.NewReader("no separator here\n")); err == nil {
		t.Error("expected error for row without tab")
	}
}
