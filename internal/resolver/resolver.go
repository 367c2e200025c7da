// Package resolver locates a metric's values inside company tables whose
// layout differs from one dataset to the next.
//
// Annual values are stored either upright (metric -> year -> value) or
// inverted (year -> metric -> value). Rolling averages and CAGRs have four
// historical homes, probed in this order:
//
//	(a) a per-ticker side table (only the SideTableTicker dataset uses it)
//	(b) rolling keys embedded in a table: table["Last5Y_AVG"][metric]
//	(c) top-level sections: tables["<table>Averages"]["5Y"][metric]
//	(d) nested namespaces: averages[<table>]["Last5Y_AVG"][metric]
//
// Every lookup returns the first match; later tables and conventions are
// not consulted.
package resolver

import (
	"github.com/Dan9191/findash/internal/models"
)

// SideTableTicker is the only company whose averages and CAGRs come from
// the precomputed side table.
const SideTableTicker = "COST"

// FindMetricInTables scans models.MetricTables in order and returns the
// year -> value series of the first table holding the metric. Values that
// are NaN and keys that are not years are dropped; zero is kept.
func FindMetricInTables(tables models.FinancialTables, metric string) (map[int]float64, bool) {
	for _, id := range models.MetricTables {
		table, ok := tables.Table(id)
		if !ok {
			continue
		}
		if series := upright(table, metric); len(series) > 0 {
			return series, true
		}
		if series := inverted(table, metric); len(series) > 0 {
			return series, true
		}
	}
	return nil, false
}

func upright(table models.Table, metric string) map[int]float64 {
	rec, ok := table[metric]
	if !ok {
		return nil
	}
	series := make(map[int]float64, len(rec))
	for key := range rec {
		year, ok := models.ParseYear(key)
		if !ok {
			continue
		}
		if v, ok := rec.Value(key); ok {
			series[year] = v
		}
	}
	return series
}

func inverted(table models.Table, metric string) map[int]float64 {
	series := make(map[int]float64)
	for key, rec := range table {
		if models.IsRollingKey(key) {
			continue
		}
		year, ok := models.ParseYear(key)
		if !ok {
			continue
		}
		if v, ok := rec.Value(metric); ok {
			series[year] = v
		}
	}
	return series
}

// HasMetric reports whether the metric name appears in any scanned table,
// upright or inverted. Values are not inspected.
func HasMetric(tables models.FinancialTables, metric string) bool {
	for _, id := range models.MetricTables {
		table, ok := tables.Table(id)
		if !ok {
			continue
		}
		if _, ok := table[metric]; ok {
			return true
		}
		for key, rec := range table {
			if models.IsRollingKey(key) {
				continue
			}
			if _, ok := rec[metric]; ok {
				return true
			}
		}
	}
	return false
}
