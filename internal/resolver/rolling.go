package resolver

import (
	"github.com/Dan9191/findash/internal/models"
)

// rolling describes where one family of rolling figures (averages or
// CAGRs) lives in each layout convention.
type rolling struct {
	side      func(models.Precomputed) map[string]models.Table
	key       func(models.PeriodLabel) string
	suffix    string
	namespace func(models.FinancialTables) map[string]models.Table
}

var (
	averages = rolling{
		side:      func(p models.Precomputed) map[string]models.Table { return p.Averages },
		key:       models.PeriodLabel.AverageKey,
		suffix:    "Averages",
		namespace: func(ft models.FinancialTables) map[string]models.Table { return ft.Averages },
	}
	cagr = rolling{
		side:      func(p models.Precomputed) map[string]models.Table { return p.CAGR },
		key:       models.PeriodLabel.CAGRKey,
		suffix:    "CAGR",
		namespace: func(ft models.FinancialTables) map[string]models.Table { return ft.CAGR },
	}
)

// Resolver carries the precomputed side tables.
type Resolver struct {
	side map[string]models.Precomputed
}

// New returns a resolver over the given side tables, keyed by ticker.
func New(side map[string]models.Precomputed) *Resolver {
	return &Resolver{side: side}
}

// FindAveragesForMetric returns the horizon -> average map of the first
// convention that defines the metric.
func (r *Resolver) FindAveragesForMetric(tables models.FinancialTables, metric, ticker string) (map[models.PeriodLabel]float64, bool) {
	return r.find(tables, metric, ticker, averages)
}

// FindCAGRForMetric returns the horizon -> CAGR map of the first
// convention that defines the metric.
func (r *Resolver) FindCAGRForMetric(tables models.FinancialTables, metric, ticker string) (map[models.PeriodLabel]float64, bool) {
	return r.find(tables, metric, ticker, cagr)
}

func (r *Resolver) find(tables models.FinancialTables, metric, ticker string, kind rolling) (map[models.PeriodLabel]float64, bool) {
	probes := []func() map[models.PeriodLabel]float64{
		func() map[models.PeriodLabel]float64 { return r.fromSideTable(metric, ticker, kind) },
		func() map[models.PeriodLabel]float64 { return fromEmbeddedKeys(tables, metric, kind) },
		func() map[models.PeriodLabel]float64 { return fromSections(tables, metric, kind) },
		func() map[models.PeriodLabel]float64 { return fromNamespace(tables, metric, kind) },
	}
	for _, probe := range probes {
		if values := probe(); len(values) > 0 {
			return values, true
		}
	}
	return nil, false
}

func (r *Resolver) fromSideTable(metric, ticker string, kind rolling) map[models.PeriodLabel]float64 {
	if ticker != SideTableTicker || r == nil {
		return nil
	}
	pre, ok := r.side[ticker]
	if !ok {
		return nil
	}
	categories := kind.side(pre)
	for _, id := range models.MetricTables {
		rec, ok := categories[id][metric]
		if !ok {
			continue
		}
		if values := collect(func(p models.PeriodLabel) (float64, bool) { return rec.Value(string(p)) }); len(values) > 0 {
			return values
		}
	}
	return nil
}

func fromEmbeddedKeys(tables models.FinancialTables, metric string, kind rolling) map[models.PeriodLabel]float64 {
	for _, id := range models.MetricTables {
		table, ok := tables.Table(id)
		if !ok {
			continue
		}
		values := collect(func(p models.PeriodLabel) (float64, bool) { return table[kind.key(p)].Value(metric) })
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

func fromSections(tables models.FinancialTables, metric string, kind rolling) map[models.PeriodLabel]float64 {
	for _, id := range models.MetricTables {
		section, ok := tables.Table(id + kind.suffix)
		if !ok {
			continue
		}
		values := collect(func(p models.PeriodLabel) (float64, bool) { return section[string(p)].Value(metric) })
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

func fromNamespace(tables models.FinancialTables, metric string, kind rolling) map[models.PeriodLabel]float64 {
	ns := kind.namespace(tables)
	for _, id := range models.MetricTables {
		block, ok := ns[id]
		if !ok {
			continue
		}
		values := collect(func(p models.PeriodLabel) (float64, bool) { return block[kind.key(p)].Value(metric) })
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

func collect(lookup func(models.PeriodLabel) (float64, bool)) map[models.PeriodLabel]float64 {
	values := make(map[models.PeriodLabel]float64)
	for _, p := range models.PeriodLabels {
		if v, ok := lookup(p); ok {
			values[p] = v
		}
	}
	return values
}
