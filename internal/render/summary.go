// Package render produces the summary artifact: a PNG snapshot of aggregate
// dataset stats (total countries, global refresh timestamp, top-5 by
// estimated GDP). The artifact is a cache derived from committed store state;
// it is regenerated and atomically replaced at the end of every successful
// refresh and is allowed to lag the dataset if that final step fails.
package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// TopCountry is one entry of the top-GDP list rendered onto the summary.
type TopCountry struct {
	Name         string
	EstimatedGDP *float64
}

// Stats carries the aggregate numbers the summary image is built from.
type Stats struct {
	TotalCountries  int64
	LastRefreshedAt time.Time
	Top             []TopCountry
}

// Renderer turns stats into an encoded image. Implementations must be safe
// for concurrent use.
type Renderer interface {
	Render(stats Stats) ([]byte, error)
}

// Summary renders the dataset summary as a fixed-size PNG.
type Summary struct {
	Width  int
	Height int
}

// NewSummary returns a Summary with the default 800×600 canvas.
func NewSummary() *Summary {
	return &Summary{Width: 800, Height: 600}
}

// Render draws the summary layout and returns PNG bytes.
func (s *Summary) Render(stats Stats) ([]byte, error) {
	dc := gg.NewContext(s.Width, s.Height)
	dc.SetFontFace(basicfont.Face7x13)

	// Background
	dc.SetHexColor("#1a1a2e")
	dc.Clear()

	// Title
	dc.SetHexColor("#ffffff")
	dc.DrawString("Country Data Summary", 50, 60)

	// Totals and refresh timestamp
	dc.SetHexColor("#00d9ff")
	dc.DrawString(fmt.Sprintf("Total Countries: %d", stats.TotalCountries), 50, 120)
	dc.SetHexColor("#ffffff")
	dc.DrawString("Last Refreshed: "+stats.LastRefreshedAt.UTC().Format(time.RFC3339), 50, 160)

	// Top countries by estimated GDP
	dc.SetHexColor("#00ff88")
	dc.DrawString("Top 5 Countries by Estimated GDP", 50, 220)

	dc.SetHexColor("#ffffff")
	y := 260.0
	for i, c := range stats.Top {
		dc.DrawString(fmt.Sprintf("%d. %s - %s", i+1, c.Name, formatGDP(c.EstimatedGDP)), 70, y)
		y += 40
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatGDP renders an estimated GDP in billions, or "N/A" when unknown.
func formatGDP(gdp *float64) string {
	if gdp == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2fB", *gdp/1e9)
}

// WriteArtifact persists the rendered bytes at path, creating parent
// directories as needed. The write goes through a temp file plus rename so a
// concurrent reader never observes a half-written image.
func WriteArtifact(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".summary-*.png")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
