package models

// Company is a catalog entry for a ticker with a dataset
type Company struct {
	Ticker        string `json:"ticker" yaml:"ticker"`
	Name          string `json:"name" yaml:"name"`
	Sector        string `json:"sector" yaml:"sector"`
	FiscalYearEnd string `json:"fiscal_year_end" yaml:"fiscal_year_end"` // MM-DD
}
