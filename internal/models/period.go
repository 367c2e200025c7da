package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Fixed fiscal-year range covered by the dashboard.
const (
	FirstYear = 2011
	LastYear  = 2035

	// DefaultHistoricalCutoff is the last fiscal year holding actuals;
	// later years are projections.
	DefaultHistoricalCutoff = 2024

	// RollingPrefix starts every rolling-period key, e.g. "Last5Y_AVG".
	RollingPrefix = "Last"
)

// PeriodLabel names a trailing window for averages and CAGRs.
type PeriodLabel string

const (
	Period1Y  PeriodLabel = "1Y"
	Period2Y  PeriodLabel = "2Y"
	Period3Y  PeriodLabel = "3Y"
	Period4Y  PeriodLabel = "4Y"
	Period5Y  PeriodLabel = "5Y"
	Period10Y PeriodLabel = "10Y"
	Period15Y PeriodLabel = "15Y"
)

// PeriodLabels lists the horizons in ascending order.
var PeriodLabels = []PeriodLabel{Period1Y, Period2Y, Period3Y, Period4Y, Period5Y, Period10Y, Period15Y}

// AverageKey is the embedded table key for the label, e.g. "Last5Y_AVG".
func (p PeriodLabel) AverageKey() string {
	return fmt.Sprintf("%s%s_AVG", RollingPrefix, p)
}

// CAGRKey is the embedded table key for the label, e.g. "Last5Y_CAGR".
func (p PeriodLabel) CAGRKey() string {
	return fmt.Sprintf("%s%s_CAGR", RollingPrefix, p)
}

// Years returns every fiscal year of the fixed range in ascending order.
func Years() []int {
	years := make([]int, 0, LastYear-FirstYear+1)
	for y := FirstYear; y <= LastYear; y++ {
		years = append(years, y)
	}
	return years
}

// IsRollingKey reports whether key is a rolling-period marker rather than a year.
func IsRollingKey(key string) bool {
	return strings.HasPrefix(key, RollingPrefix)
}

// NormalizePeriodKey maps numeric-looking keys ("2019", "2019.0", " 2019 ")
// to their canonical integer form. Other keys are returned unchanged.
func NormalizePeriodKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return key
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		return strconv.Itoa(n)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return key
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return key
	}
	return strconv.FormatInt(int64(f), 10)
}

// ParseYear returns the fiscal year a period key stands for.
func ParseYear(key string) (int, bool) {
	n, err := strconv.Atoi(NormalizePeriodKey(key))
	if err != nil {
		return 0, false
	}
	return n, true
}

// YearKey is the canonical table key of a fiscal year.
func YearKey(year int) string {
	return strconv.Itoa(year)
}
