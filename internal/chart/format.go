// Package chart shapes resolved series for the charting component.
package chart

import (
	"strconv"

	"github.com/Dan9191/findash/internal/models"
)

// FormatDataForChart buckets one shape of a metric series. Annual points are
// split into historical and future buckets by their IsHistorical flag;
// average and CAGR points pass through in horizon order.
func FormatDataForChart(series models.MetricSeries, kind models.SeriesKind) (models.ChartData, error) {
	data := models.ChartData{Kind: kind}
	switch kind {
	case models.KindAnnual:
		data.Historical = []models.ChartPoint{}
		data.Future = []models.ChartPoint{}
		for _, p := range series.Annual {
			point := models.ChartPoint{Label: strconv.Itoa(p.Year), Value: p.Value}
			if p.IsHistorical {
				data.Historical = append(data.Historical, point)
			} else {
				data.Future = append(data.Future, point)
			}
		}
	case models.KindAverage:
		data.Series = make([]models.ChartPoint, 0, len(series.Averages))
		for _, p := range series.Averages {
			data.Series = append(data.Series, models.ChartPoint{Label: string(p.Period), Value: p.Value})
		}
	case models.KindCAGR:
		data.Series = make([]models.ChartPoint, 0, len(series.CAGR))
		for _, p := range series.CAGR {
			data.Series = append(data.Series, models.ChartPoint{Label: string(p.Period), Value: p.Value})
		}
	default:
		_, err := models.ParseSeriesKind(string(kind))
		return models.ChartData{}, err
	}
	return data, nil
}

// AnnualPoints orders a year -> value series over the fixed year range.
// Years up to and including cutoff are historical.
func AnnualPoints(values map[int]float64, cutoff int) []models.AnnualDataPoint {
	points := []models.AnnualDataPoint{}
	for _, year := range models.Years() {
		v, ok := values[year]
		if !ok || isMissing(v) {
			continue
		}
		points = append(points, models.AnnualDataPoint{Year: year, Value: v, IsHistorical: year <= cutoff})
	}
	return points
}

// AveragePoints orders a horizon -> value map over the canonical labels.
func AveragePoints(values map[models.PeriodLabel]float64) []models.AverageDataPoint {
	points := []models.AverageDataPoint{}
	for _, p := range models.PeriodLabels {
		if v, ok := values[p]; ok && !isMissing(v) {
			points = append(points, models.AverageDataPoint{Period: p, Value: v})
		}
	}
	return points
}

// CAGRPoints orders a horizon -> value map over the canonical labels.
func CAGRPoints(values map[models.PeriodLabel]float64) []models.CAGRDataPoint {
	points := []models.CAGRDataPoint{}
	for _, p := range models.PeriodLabels {
		if v, ok := values[p]; ok && !isMissing(v) {
			points = append(points, models.CAGRDataPoint{Period: p, Value: v})
		}
	}
	return points
}
