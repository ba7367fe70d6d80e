package worker

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestProgress_Update(t *testing.T) {
	p := NewProgress(10, false)

	p.Update(5, 10, 0)

	if p.completed != 5 {
		t.Errorf("Expected completed=5, got %d", p.completed)
	}
	if p.total != 10 {
		t.Errorf("Expected total=10, got %d", p.total)
	}
}

func TestProgress_Print(t *testing.T) {
	var buf bytes.Buffer

	p := NewProgress(10, true)
	p.output = &buf
	p.startTime = time.Now().Add(-10 * time.Second)

	p.Update(5, 10, 1)

	output := buf.String()

	if !strings.Contains(output, "5/10 tiles") {
		t.Errorf("Expected '5/10 tiles' in output, got: %s", output)
	}
	if !strings.Contains(output, "(1 failed)") {
		t.Errorf("Expected '(1 failed)' in output, got: %s", output)
	}
	if !strings.Contains(output, "tiles/sec") {
		t.Errorf("Expected 'tiles/sec' in output, got: %s", output)
	}
	if !strings.Contains(output, "ETA:") {
		t.Errorf("Expected 'ETA:' in output, got: %s", output)
	}
}

func TestProgress_Done(t *testing.T) {
	var buf bytes.Buffer

	p := NewProgress(4, true)
	p.output = &buf
	p.startTime = time.Now().Add(-2 * time.Second)

	p.Update(4, 4, 0)
	p.Done()

	output := buf.String()
	if !strings.Contains(output, "Done in") {
		t.Errorf("Expected completion message, got: %s", output)
	}
	if !strings.HasSuffix(output, "\n") {
		t.Error("Expected trailing newline after Done")
	}
}

func TestProgress_Summary(t *testing.T) {
	p := NewProgress(8, false)
	p.startTime = time.Now().Add(-4 * time.Second)
	p.Update(8, 8, 2)

	summary := p.Summary()
	if !strings.Contains(summary, "Baked 6/8 tiles") {
		t.Errorf("Expected 'Baked 6/8 tiles' in summary, got: %s", summary)
	}
	if !strings.Contains(summary, "(2 failed)") {
		t.Errorf("Expected failure count in summary, got: %s", summary)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Hour, "2h0m"},
		{3*time.Hour + 25*time.Minute, "3h25m"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %s, want %s", tt.d, got, tt.want)
		}
	}
}
