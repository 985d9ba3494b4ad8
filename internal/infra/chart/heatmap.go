package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"time"

	"golang.org/x/image/font/basicfont"

	"covid-dashboard/internal/domain/entity"
	"covid-dashboard/internal/observability/metrics"
)

// Heatmap layout constants in pixels.
const (
	heatmapCell       = 72
	heatmapLabelLeft  = 150
	heatmapLabelTop   = 40
	heatmapTitleSpace = 28
)

// Heatmap colors. NaN cells (zero-variance columns) render in a
// distinct neutral gray so they read as "undefined", not as a value.
var (
	heatmapBackground = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	heatmapNeutral    = color.RGBA{R: 189, G: 189, B: 189, A: 255}
	heatmapText       = color.RGBA{R: 51, G: 51, B: 51, A: 255}
)

// Heatmap renders a correlation matrix as a colored grid. Cell color is
// scaled over [-1, 1]: blue for negative, white near zero, red for
// positive. Each cell also carries its coefficient as text.
func (b *Builder) Heatmap(m *entity.CorrelationMatrix) (*entity.ChartArtifact, error) {
	start := time.Now()
	art, err := b.renderHeatmap(m)
	metrics.RecordChartRender("heatmap", time.Since(start), err == nil)
	return art, err
}

func (b *Builder) renderHeatmap(m *entity.CorrelationMatrix) (*entity.ChartArtifact, error) {
	n := m.Size()
	if n == 0 {
		return placeholder("heatmap", seriesWidth, seriesHeight, "No data for selection")
	}

	width := heatmapLabelLeft + n*heatmapCell + 20
	height := heatmapTitleSpace + heatmapLabelTop + n*heatmapCell + 20

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(heatmapBackground), image.Point{}, draw.Src)

	drawLabel(img, heatmapLabelLeft, 18, "Correlation Matrix", heatmapText)

	gridTop := heatmapTitleSpace + heatmapLabelTop
	for i, col := range m.Columns {
		// Column headers across the top, row labels down the left.
		x := heatmapLabelLeft + i*heatmapCell
		drawLabel(img, x+4, gridTop-8, shorten(col, heatmapCell/basicfont.Face7x13.Advance-1), heatmapText)

		y := gridTop + i*heatmapCell
		drawLabel(img, 8, y+heatmapCell/2+4, shorten(col, (heatmapLabelLeft-12)/basicfont.Face7x13.Advance), heatmapText)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := m.At(i, j)
			cell := image.Rect(
				heatmapLabelLeft+j*heatmapCell,
				gridTop+i*heatmapCell,
				heatmapLabelLeft+(j+1)*heatmapCell-1,
				gridTop+(i+1)*heatmapCell-1,
			)
			draw.Draw(img, cell, image.NewUniform(cellColor(v)), image.Point{}, draw.Src)

			label := "n/a"
			if !math.IsNaN(v) {
				label = fmt.Sprintf("%.2f", v)
			}
			drawLabel(img, cell.Min.X+heatmapCell/2-len(label)*basicfont.Face7x13.Advance/2, cell.Min.Y+heatmapCell/2+4, label, textColorFor(v))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode heatmap: %w", err)
	}
	return &entity.ChartArtifact{Name: "heatmap", PNG: buf.Bytes(), Width: width, Height: height}, nil
}

// cellColor maps a coefficient in [-1, 1] to a diverging blue-white-red
// scale. NaN maps to the neutral gray.
func cellColor(v float64) color.RGBA {
	if math.IsNaN(v) {
		return heatmapNeutral
	}
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	if v >= 0 {
		// white → red
		g := uint8(255 - v*180)
		return color.RGBA{R: 255, G: g, B: g, A: 255}
	}
	// white → blue
	r := uint8(255 + v*180)
	return color.RGBA{R: r, G: r, B: 255, A: 255}
}

// textColorFor keeps cell labels readable against saturated cells.
func textColorFor(v float64) color.Color {
	if !math.IsNaN(v) && math.Abs(v) > 0.75 {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return heatmapText
}

// shorten truncates a label to max characters, keeping at least one.
func shorten(s string, max int) string {
	if max < 1 {
		max = 1
	}
	if len(s) <= max {
		return s
	}
	return s[:max]
}
