package chart

import (
	"math"

	"github.com/Dan9191/findash/internal/models"
	"github.com/shopspring/decimal"
)

// CalculateIndustryAverages computes, per horizon, the mean over the
// companies that have a value for it. Companies without the metric simply
// contribute nothing; labels no company covers are left out.
func CalculateIndustryAverages(byTicker map[string]map[models.PeriodLabel]float64) []models.IndustryAveragePoint {
	points := []models.IndustryAveragePoint{}
	for _, p := range models.PeriodLabels {
		sum := decimal.Zero
		count := 0
		for _, values := range byTicker {
			v, ok := values[p]
			if !ok || isMissing(v) {
				continue
			}
			sum = sum.Add(decimal.NewFromFloat(v))
			count++
		}
		if count == 0 {
			continue
		}
		mean, _ := sum.Div(decimal.NewFromInt(int64(count))).Float64()
		points = append(points, models.IndustryAveragePoint{Period: p, Value: mean, Count: count})
	}
	return points
}

func isMissing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
