package repository

import (
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/Dan9191/findash/internal/models"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository()
	if err != nil {
		t.Fatalf("NewRepository() error: %v", err)
	}
	return repo
}

func TestGetAvailableCompanies(t *testing.T) {
	repo := newTestRepository(t)
	want := []string{"COST", "WMT", "TGT", "BJ"}
	if got := repo.GetAvailableCompanies(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if c, ok := repo.Company("BJ"); !ok || c.Name == "" {
		t.Errorf("Company(BJ): got %+v, %v", c, ok)
	}
}

func TestGetCompanyDataUnknownTicker(t *testing.T) {
	repo := newTestRepository(t)
	if _, ok := repo.GetCompanyData("XXXX"); ok {
		t.Error("XXXX should be unknown")
	}
	if _, ok := repo.GetCompanyDataWithContext("XXXX", &models.FinancialTables{}); ok {
		t.Error("XXXX should be unknown with an overlay too")
	}
	if repo.HasMetricData("XXXX", "Revenue") {
		t.Error("HasMetricData on an unknown ticker should be false")
	}
}

func TestGetCompanyDataReturnsCopies(t *testing.T) {
	repo := newTestRepository(t)

	first, ok := repo.GetCompanyData("COST")
	if !ok {
		t.Fatal("COST missing")
	}
	want := first.Tables[models.TableIncomeStatement]["2019"]["Revenue"]
	first.Tables[models.TableIncomeStatement]["2019"]["Revenue"] = -1
	delete(first.Tables, models.TableBalanceSheet)

	second, _ := repo.GetCompanyData("COST")
	if got := second.Tables[models.TableIncomeStatement]["2019"]["Revenue"]; got != want {
		t.Errorf("stored data mutated through a copy: got %v, want %v", got, want)
	}
	if _, ok := second.Tables[models.TableBalanceSheet]; !ok {
		t.Error("deleting a table from a copy removed it from the store")
	}
}

func TestHasMetricData(t *testing.T) {
	repo := newTestRepository(t)
	tests := []struct {
		ticker, metric string
		want           bool
	}{
		{"COST", "Revenue", true},
		{"COST", "Membership Fees", true},
		{"WMT", "Revenue", true},
		{"WMT", "Interest Expense", true},
		{"WMT", "Membership Fees", false},
		{"TGT", "Dividends Paid", true},
		{"BJ", "Membership Fees", true},
		{"COST", "Bogus", false},
	}
	for _, tt := range tests {
		if got := repo.HasMetricData(tt.ticker, tt.metric); got != tt.want {
			t.Errorf("HasMetricData(%s, %s): got %v, want %v", tt.ticker, tt.metric, got, tt.want)
		}
	}
}

func TestGetCompanyDataWithContext(t *testing.T) {
	repo := newTestRepository(t)
	overlay := models.FinancialTables{Tables: map[string]models.Table{
		models.TableIncomeStatement: {"2024.0": {"Revenue": 1}},
	}}

	merged, ok := repo.GetCompanyDataWithContext("COST", &overlay)
	if !ok {
		t.Fatal("COST missing")
	}
	is := merged.Tables[models.TableIncomeStatement]
	if got := is["2024"]["Revenue"]; got != 1 {
		t.Errorf("overlay value: got %v, want 1", got)
	}
	if got := is["2023"]["Revenue"]; got != 242290000000 {
		t.Errorf("untouched year: got %v", got)
	}
	if _, ok := is["2024.0"]; ok {
		t.Error("overlay year key was not normalized")
	}

	static, _ := repo.GetCompanyData("COST")
	if got := static.Tables[models.TableIncomeStatement]["2024"]["Revenue"]; got != 254453000000 {
		t.Errorf("overlay leaked into stored data: got %v", got)
	}

	plain, _ := repo.GetCompanyDataWithContext("COST", nil)
	if !reflect.DeepEqual(plain.TableIDs(), static.TableIDs()) {
		t.Error("nil overlay should behave like GetCompanyData")
	}
}

func TestSideTables(t *testing.T) {
	repo := newTestRepository(t)
	side := repo.SideTables()
	if _, ok := side["COST"]; !ok {
		t.Fatal("COST side table missing")
	}
	if len(side) != 1 {
		t.Errorf("only COST ships a side table, got %d", len(side))
	}
	side["COST"].Averages[models.TableIncomeStatement]["Revenue"]["1Y"] = 0
	again := repo.SideTables()
	if got := again["COST"].Averages[models.TableIncomeStatement]["Revenue"]["1Y"]; got != 254453000000 {
		t.Errorf("side table mutated through a copy: got %v", got)
	}
}

func TestLoadFS(t *testing.T) {
	catalog := "companies:\n  - ticker: aaa\n    name: A Corp\n"
	tests := []struct {
		name    string
		fsys    fstest.MapFS
		wantErr string
	}{
		{
			name: "valid without side table",
			fsys: fstest.MapFS{
				"companies.yaml":     {Data: []byte(catalog)},
				"companies/AAA.json": {Data: []byte(`{"incomeStatement": {"2020": {"Revenue": 1}}}`)},
			},
		},
		{
			name:    "missing catalog",
			fsys:    fstest.MapFS{},
			wantErr: "company catalog",
		},
		{
			name: "missing dataset",
			fsys: fstest.MapFS{
				"companies.yaml": {Data: []byte(catalog)},
			},
			wantErr: "no dataset for AAA",
		},
		{
			name: "duplicate ticker",
			fsys: fstest.MapFS{
				"companies.yaml":     {Data: []byte(catalog + "  - ticker: AAA\n")},
				"companies/AAA.json": {Data: []byte(`{}`)},
			},
			wantErr: "duplicate ticker AAA",
		},
		{
			name: "dataset not an object",
			fsys: fstest.MapFS{
				"companies.yaml":     {Data: []byte(catalog)},
				"companies/AAA.json": {Data: []byte(`[1, 2]`)},
			},
			wantErr: "failed to parse dataset for AAA",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := LoadFS(tt.fsys)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("got error %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFS() error: %v", err)
			}
			if got := repo.GetAvailableCompanies(); !reflect.DeepEqual(got, []string{"AAA"}) {
				t.Errorf("tickers: got %v", got)
			}
			if !repo.HasMetricData("AAA", "Revenue") {
				t.Error("Revenue should be present")
			}
		})
	}
}
