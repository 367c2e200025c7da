package repository

import (
	"embed"
	"encoding/json"
	"io/fs"
	"path"
	"strings"

	"github.com/Dan9191/findash/internal/models"
	"github.com/Dan9191/findash/internal/resolver"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

//go:embed data/companies.yaml data/companies/*.json data/precomputed/*.json
var dataFS embed.FS

// Repository provides read access to the static company datasets.
// The maps are filled once at load time and never written afterwards;
// every accessor hands out a deep copy.
type Repository struct {
	catalog  []models.Company
	datasets map[string]models.FinancialTables
	side     map[string]models.Precomputed
}

type catalogFile struct {
	Companies []models.Company `yaml:"companies"`
}

// NewRepository loads the datasets embedded in the binary
func NewRepository() (*Repository, error) {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded data")
	}
	return LoadFS(sub)
}

// LoadFS loads a catalog (companies.yaml), one dataset per ticker
// (companies/<TICKER>.json) and optional side tables (precomputed/<TICKER>.json).
func LoadFS(fsys fs.FS) (*Repository, error) {
	raw, err := fs.ReadFile(fsys, "companies.yaml")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read company catalog")
	}
	var catalog catalogFile
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, errors.Wrap(err, "failed to parse company catalog")
	}

	r := &Repository{
		datasets: make(map[string]models.FinancialTables, len(catalog.Companies)),
		side:     make(map[string]models.Precomputed),
	}
	for _, c := range catalog.Companies {
		ticker := strings.ToUpper(strings.TrimSpace(c.Ticker))
		if ticker == "" {
			return nil, errors.New("company catalog entry without ticker")
		}
		if _, dup := r.datasets[ticker]; dup {
			return nil, errors.Errorf("duplicate ticker %s in company catalog", ticker)
		}
		c.Ticker = ticker

		body, err := fs.ReadFile(fsys, path.Join("companies", ticker+".json"))
		if err != nil {
			return nil, errors.Wrapf(err, "no dataset for %s", ticker)
		}
		var tables models.FinancialTables
		if err := json.Unmarshal(body, &tables); err != nil {
			return nil, errors.Wrapf(err, "failed to parse dataset for %s", ticker)
		}
		r.datasets[ticker] = tables
		r.catalog = append(r.catalog, c)

		body, err = fs.ReadFile(fsys, path.Join("precomputed", ticker+".json"))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read side table for %s", ticker)
		}
		var pre models.Precomputed
		if err := json.Unmarshal(body, &pre); err != nil {
			return nil, errors.Wrapf(err, "failed to parse side table for %s", ticker)
		}
		r.side[ticker] = pre
	}
	return r, nil
}

// GetCompanyData returns a deep copy of the company's tables
func (r *Repository) GetCompanyData(ticker string) (models.FinancialTables, bool) {
	tables, ok := r.datasets[ticker]
	if !ok {
		return models.FinancialTables{}, false
	}
	return tables.Clone(), true
}

// GetCompanyDataWithContext returns the company's tables with the overlay
// merged on top. A nil overlay behaves like GetCompanyData.
func (r *Repository) GetCompanyDataWithContext(ticker string, overlay *models.FinancialTables) (models.FinancialTables, bool) {
	tables, ok := r.datasets[ticker]
	if !ok {
		return models.FinancialTables{}, false
	}
	if overlay == nil {
		return tables.Clone(), true
	}
	return tables.Merge(*overlay), true
}

// GetAvailableCompanies lists tickers in catalog order
func (r *Repository) GetAvailableCompanies() []string {
	tickers := make([]string, 0, len(r.catalog))
	for _, c := range r.catalog {
		tickers = append(tickers, c.Ticker)
	}
	return tickers
}

// Companies returns the catalog in order
func (r *Repository) Companies() []models.Company {
	out := make([]models.Company, len(r.catalog))
	copy(out, r.catalog)
	return out
}

// Company returns the catalog entry of a ticker
func (r *Repository) Company(ticker string) (models.Company, bool) {
	for _, c := range r.catalog {
		if c.Ticker == ticker {
			return c, true
		}
	}
	return models.Company{}, false
}

// HasMetricData reports whether the metric name appears in the company's tables
func (r *Repository) HasMetricData(ticker, metric string) bool {
	tables, ok := r.datasets[ticker]
	if !ok {
		return false
	}
	return resolver.HasMetric(tables, metric)
}

// SideTables returns a copy of the precomputed side tables keyed by ticker
func (r *Repository) SideTables() map[string]models.Precomputed {
	out := make(map[string]models.Precomputed, len(r.side))
	for ticker, pre := range r.side {
		out[ticker] = pre.Clone()
	}
	return out
}
