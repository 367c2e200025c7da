package models

import (
	"encoding/json"
	"fmt"
)

// SeriesKind selects how a metric is shaped for a chart.
type SeriesKind string

const (
	KindAnnual  SeriesKind = "annual"
	KindAverage SeriesKind = "average"
	KindCAGR    SeriesKind = "cagr"
)

// ParseSeriesKind validates a kind given by a caller.
func ParseSeriesKind(s string) (SeriesKind, error) {
	switch k := SeriesKind(s); k {
	case KindAnnual, KindAverage, KindCAGR:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// AnnualDataPoint is one fiscal year of a metric
type AnnualDataPoint struct {
	Year         int     `json:"year"`
	Value        float64 `json:"value"`
	IsHistorical bool    `json:"isHistorical"` // false for projections
}

// AverageDataPoint is a trailing-window average
type AverageDataPoint struct {
	Period PeriodLabel `json:"period"`
	Value  float64     `json:"value"`
}

// CAGRDataPoint is a trailing-window compound annual growth rate
type CAGRDataPoint struct {
	Period PeriodLabel `json:"period"`
	Value  float64     `json:"value"`
}

// ChartPoint is the common shape handed to the charting component.
// Label is a fiscal year for annual series and a horizon otherwise.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartData holds a series bucketed for rendering. Annual series fill
// Historical and Future; average and CAGR series fill Series.
type ChartData struct {
	Kind       SeriesKind   `json:"kind"`
	Historical []ChartPoint `json:"historical"`
	Future     []ChartPoint `json:"future"`
	Series     []ChartPoint `json:"series"`
}

// MarshalJSON writes only the buckets of the data's kind, always as arrays.
func (d ChartData) MarshalJSON() ([]byte, error) {
	if d.Kind == KindAnnual {
		return json.Marshal(struct {
			Kind       SeriesKind   `json:"kind"`
			Historical []ChartPoint `json:"historical"`
			Future     []ChartPoint `json:"future"`
		}{d.Kind, nonNil(d.Historical), nonNil(d.Future)})
	}
	return json.Marshal(struct {
		Kind   SeriesKind   `json:"kind"`
		Series []ChartPoint `json:"series"`
	}{d.Kind, nonNil(d.Series)})
}

func nonNil(points []ChartPoint) []ChartPoint {
	if points == nil {
		return []ChartPoint{}
	}
	return points
}

// IndustryAveragePoint is the cross-company mean for one horizon
type IndustryAveragePoint struct {
	Period PeriodLabel `json:"period"`
	Value  float64     `json:"value"`
	Count  int         `json:"count"` // companies that contributed
}

// MetricSeries bundles every shape of one metric for a dashboard view
type MetricSeries struct {
	Metric   string             `json:"metric"`
	Annual   []AnnualDataPoint  `json:"annual"`
	Averages []AverageDataPoint `json:"averages"`
	CAGR     []CAGRDataPoint    `json:"cagr"`
}
