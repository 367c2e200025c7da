package chart

import "github.com/Dan9191/findash/internal/models"

var palette = []string{
	"#2563EB", // blue
	"#16A34A", // green
	"#DC2626", // red
	"#D97706", // amber
	"#7C3AED", // violet
	"#0891B2", // cyan
	"#DB2777", // pink
	"#65A30D", // lime
	"#475569", // slate
	"#EA580C", // orange
}

// projectionAlpha is appended to a color for projected points.
const projectionAlpha = "80"

// ChartColors is the color assignment of one series
type ChartColors struct {
	Primary    string `json:"primary"`
	Projection string `json:"projection"`
}

// GenerateColorPalette returns n colors, cycling through the palette.
func GenerateColorPalette(n int) []string {
	if n <= 0 {
		return []string{}
	}
	colors := make([]string, n)
	for i := range colors {
		colors[i] = palette[i%len(palette)]
	}
	return colors
}

// GetChartColors returns the colors of the index-th series of a kind.
// Each kind starts at its own palette offset so that an annual chart and
// an average chart of the same metric are told apart.
func GetChartColors(kind models.SeriesKind, index int) ChartColors {
	offset := 0
	switch kind {
	case models.KindAverage:
		offset = 3
	case models.KindCAGR:
		offset = 6
	}
	i := (index + offset) % len(palette)
	if i < 0 {
		i += len(palette)
	}
	primary := palette[i]
	return ChartColors{Primary: primary, Projection: primary + projectionAlpha}
}
