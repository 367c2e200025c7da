package chart

import (
	"strings"
	"testing"

	"github.com/Dan9191/findash/internal/models"
)

func TestGenerateColorPalette(t *testing.T) {
	for _, n := range []int{-1, 0} {
		if got := GenerateColorPalette(n); got == nil || len(got) != 0 {
			t.Errorf("GenerateColorPalette(%d): got %#v", n, got)
		}
	}

	colors := GenerateColorPalette(len(palette) + 2)
	if len(colors) != len(palette)+2 {
		t.Fatalf("len: got %d", len(colors))
	}
	if colors[len(palette)] != colors[0] || colors[len(palette)+1] != colors[1] {
		t.Error("palette should cycle")
	}
	for _, c := range colors {
		if !strings.HasPrefix(c, "#") || len(c) != 7 {
			t.Errorf("bad color %q", c)
		}
	}
}

func TestGetChartColors(t *testing.T) {
	annual := GetChartColors(models.KindAnnual, 0)
	if annual.Primary != palette[0] {
		t.Errorf("annual primary: got %s", annual.Primary)
	}
	if annual.Projection != palette[0]+"80" {
		t.Errorf("projection: got %s", annual.Projection)
	}
	if got := GetChartColors(models.KindAverage, 0).Primary; got != palette[3] {
		t.Errorf("average offset: got %s", got)
	}
	if got := GetChartColors(models.KindCAGR, 4).Primary; got != palette[0] {
		t.Errorf("cagr wraps: got %s", got)
	}
	if got := GetChartColors(models.KindAnnual, -1).Primary; got != palette[len(palette)-1] {
		t.Errorf("negative index: got %s", got)
	}
	if GetChartColors(models.KindAnnual, 2) != GetChartColors(models.KindAnnual, 2) {
		t.Error("colors should be deterministic")
	}
}
