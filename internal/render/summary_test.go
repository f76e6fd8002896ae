package render

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func gdpOf(v float64) *float64 { return &v }

func sampleStats() Stats {
	return Stats{
		TotalCountries:  250,
		LastRefreshedAt: time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC),
		Top: []TopCountry{
			{Name: "Bigland", EstimatedGDP: gdpOf(3.2e12)},
			{Name: "Midland", EstimatedGDP: gdpOf(1.1e12)},
			{Name: "Unknownland", EstimatedGDP: nil},
		},
	}
}

func TestSummaryRender_ProducesDecodablePNG(t *testing.T) {
	data, err := NewSummary().Render(sampleStats())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("expected 800x600 canvas, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestSummaryRender_EmptyStats(t *testing.T) {
	// A render before any data exists must still succeed (count 0, no top list).
	data, err := NewSummary().Render(Stats{LastRefreshedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
}

func TestFormatGDP(t *testing.T) {
	cases := []struct {
		gdp  *float64
		want string
	}{
		{nil, "N/A"},
		{gdpOf(0), "$0.00B"},
		{gdpOf(1.5e9), "$1.50B"},
		{gdpOf(3.214e12), "$3214.00B"},
	}
	for _, tc := range cases {
		if got := formatGDP(tc.gdp); got != tc.want {
			t.Errorf("formatGDP(%v) = %q, want %q", tc.gdp, got, tc.want)
		}
	}
}

func TestWriteArtifact_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "nested", "summary.png")
	if err := WriteArtifact(path, []byte("payload")); err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestWriteArtifact_ReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.png")
	if err := WriteArtifact(path, []byte("old")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteArtifact(path, []byte("new")); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("expected replacement, got %q", got)
	}

	// No temp files may be left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the artifact in the directory, got %d entries", len(entries))
	}
}
