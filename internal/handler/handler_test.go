package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dan9191/findash/internal/config"
	"github.com/Dan9191/findash/internal/middleware"
	"github.com/Dan9191/findash/internal/models"
	"github.com/Dan9191/findash/internal/repository"
	"github.com/Dan9191/findash/internal/service"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	repo, err := repository.NewRepository()
	if err != nil {
		t.Fatalf("NewRepository() error: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{
		JWTSecret:        testSecret,
		HistoricalCutoff: models.DefaultHistoricalCutoff,
		OverlayTTL:       time.Hour,
	}
	svc := service.NewService(repo, repository.NewMemoryOverlayStore(), nil, log, cfg)

	r := mux.NewRouter()
	NewHandler(svc, log).Register(r, middleware.AuthMiddleware(cfg))
	return r
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}
	return signed
}

func do(r http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
}

func TestStatusCodes(t *testing.T) {
	r := newTestRouter(t)
	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"companies", http.MethodGet, "/companies", http.StatusOK},
		{"company", http.MethodGet, "/companies/COST", http.StatusOK},
		{"unknown company", http.MethodGet, "/companies/XXXX", http.StatusNotFound},
		{"series", http.MethodGet, "/companies/COST/series/Revenue", http.StatusOK},
		{"series unknown ticker", http.MethodGet, "/companies/XXXX/series/Revenue", http.StatusNotFound},
		{"series bad kind", http.MethodGet, "/companies/COST/series/Revenue?kind=weekly", http.StatusBadRequest},
		{"series bad format", http.MethodGet, "/companies/COST/series/Revenue?format=csv", http.StatusBadRequest},
		{"dashboard without metrics", http.MethodGet, "/companies/COST/dashboard", http.StatusBadRequest},
		{"industry annual", http.MethodGet, "/industry/Revenue?kind=annual", http.StatusBadRequest},
		{"industry unknown ticker", http.MethodGet, "/industry/Revenue?tickers=COST,XXXX", http.StatusNotFound},
		{"palette bad n", http.MethodGet, "/palette?n=abc", http.StatusBadRequest},
		{"overlay without token", http.MethodGet, "/overlays/COST", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.target, "", nil)
			if w.Code != tt.want {
				t.Errorf("got %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestListCompanies(t *testing.T) {
	r := newTestRouter(t)
	w := do(r, http.MethodGet, "/companies", "", nil)

	var companies []models.Company
	decode(t, w, &companies)
	if len(companies) != 4 || companies[0].Ticker != "COST" {
		t.Errorf("unexpected catalog: %+v", companies)
	}
}

func TestGetSeries(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/companies/COST/series/Revenue", "", nil)
	var data models.ChartData
	decode(t, w, &data)
	if data.Kind != models.KindAnnual || len(data.Historical) != 6 || len(data.Future) != 0 {
		t.Errorf("unexpected annual series: %+v", data)
	}

	w = do(r, http.MethodGet, "/companies/WMT/series/Revenue?kind=average", "", nil)
	data = models.ChartData{}
	decode(t, w, &data)
	if len(data.Series) != 6 || data.Series[0].Label != "1Y" {
		t.Errorf("unexpected average series: %+v", data)
	}

	w = do(r, http.MethodGet, "/companies/COST/series/Revenue?format=xml", "", nil)
	if ct := w.Header().Get("Content-Type"); ct != "application/xml" {
		t.Errorf("content type: got %q", ct)
	}
	if body := w.Body.String(); !strings.Contains(body, `<chart ticker="COST" metric="Revenue" kind="annual">`) {
		t.Errorf("unexpected XML: %s", body)
	}
}

func TestGetSeriesWithPostedOverlay(t *testing.T) {
	r := newTestRouter(t)
	body := `{"incomeStatement": {"2025": {"Revenue": 270000000000}}}`

	w := do(r, http.MethodPost, "/companies/COST/series/Revenue", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
	var data models.ChartData
	decode(t, w, &data)
	if len(data.Future) != 1 || data.Future[0].Label != "2025" || data.Future[0].Value != 270000000000 {
		t.Errorf("overlay projection missing: %+v", data.Future)
	}

	w = do(r, http.MethodPost, "/companies/COST/series/Revenue", `not json`, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed overlay: got %d", w.Code)
	}
}

func TestGetCompanyWithContextXML(t *testing.T) {
	r := newTestRouter(t)
	body := `<overlay><table id="incomeStatement"><period key="2024"><field metric="Revenue">5</field></period></table></overlay>`

	w := do(r, http.MethodPost, "/companies/COST/context", body, map[string]string{"Content-Type": "application/xml"})
	if w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
	var tables models.FinancialTables
	decode(t, w, &tables)
	if got := tables.Tables[models.TableIncomeStatement]["2024"]["Revenue"]; got != 5 {
		t.Errorf("XML overlay not applied: got %v", got)
	}
}

func TestHasMetric(t *testing.T) {
	r := newTestRouter(t)
	tests := []struct {
		target string
		want   bool
	}{
		{"/companies/BJ/metrics/Membership%20Fees", true},
		{"/companies/WMT/metrics/Membership%20Fees", false},
		{"/companies/XXXX/metrics/Revenue", false},
	}
	for _, tt := range tests {
		w := do(r, http.MethodGet, tt.target, "", nil)
		var resp struct {
			Present bool `json:"present"`
		}
		decode(t, w, &resp)
		if resp.Present != tt.want {
			t.Errorf("%s: got %v, want %v", tt.target, resp.Present, tt.want)
		}
	}
}

func TestGetIndustryAverages(t *testing.T) {
	r := newTestRouter(t)
	w := do(r, http.MethodGet, "/industry/Membership%20Fees?kind=cagr", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
	var points []models.IndustryAveragePoint
	decode(t, w, &points)
	if len(points) != 5 {
		t.Fatalf("got %d points: %+v", len(points), points)
	}
	for _, p := range points {
		if p.Count != 2 {
			t.Errorf("%s: count %d, want 2", p.Period, p.Count)
		}
	}
}

func TestGetDashboard(t *testing.T) {
	r := newTestRouter(t)
	w := do(r, http.MethodGet, "/companies/TGT/dashboard?metrics=Revenue,Net%20Income", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
	var series []models.MetricSeries
	decode(t, w, &series)
	if len(series) != 2 || series[1].Metric != "Net Income" {
		t.Errorf("unexpected dashboard: %+v", series)
	}
}

func TestGetPalette(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/palette?n=3", "", nil)
	var colors []string
	decode(t, w, &colors)
	if len(colors) != 3 {
		t.Errorf("got %d colors", len(colors))
	}

	w = do(r, http.MethodGet, "/palette?n=1&kind=cagr", "", nil)
	var pair struct {
		Primary    string `json:"primary"`
		Projection string `json:"projection"`
	}
	decode(t, w, &pair)
	if pair.Primary == "" || pair.Projection != pair.Primary+"80" {
		t.Errorf("unexpected colors: %+v", pair)
	}
}

func TestOverlayEndpoints(t *testing.T) {
	r := newTestRouter(t)
	auth := map[string]string{"Authorization": "Bearer " + signToken(t, "user-1")}
	other := map[string]string{"Authorization": "Bearer " + signToken(t, "user-2")}

	if w := do(r, http.MethodGet, "/overlays/COST", "", auth); w.Code != http.StatusNotFound {
		t.Fatalf("before save: got %d", w.Code)
	}

	body := `{"incomeStatement": {"2024": {"Revenue": 42}}}`
	w := do(r, http.MethodPut, "/overlays/COST", body, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("save: got %d: %s", w.Code, w.Body.String())
	}
	var saved models.SavedOverlay
	decode(t, w, &saved)
	if saved.ID == "" || saved.UserID != "user-1" || saved.Ticker != "COST" {
		t.Errorf("unexpected saved overlay: %+v", saved)
	}

	w = do(r, http.MethodGet, "/overlays/COST/series/Revenue", "", auth)
	var data models.ChartData
	decode(t, w, &data)
	if n := len(data.Historical); n == 0 || data.Historical[n-1].Value != 42 {
		t.Errorf("saved overlay not applied: %+v", data.Historical)
	}

	w = do(r, http.MethodGet, "/overlays/COST/series/Revenue", "", other)
	data = models.ChartData{}
	decode(t, w, &data)
	if n := len(data.Historical); n == 0 || data.Historical[n-1].Value != 254453000000 {
		t.Errorf("another user's overlay leaked: %+v", data.Historical)
	}

	w = do(r, http.MethodGet, "/overlays/COST", "", map[string]string{
		"Authorization": auth["Authorization"],
		"Accept":        "application/xml",
	})
	if !strings.Contains(w.Body.String(), `<field metric="Revenue">42</field>`) {
		t.Errorf("unexpected overlay XML: %s", w.Body.String())
	}

	if w := do(r, http.MethodDelete, "/overlays/COST", "", auth); w.Code != http.StatusNoContent {
		t.Errorf("delete: got %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/overlays/COST", "", auth); w.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d", w.Code)
	}
	if w := do(r, http.MethodPut, "/overlays/XXXX", body, auth); w.Code != http.StatusNotFound {
		t.Errorf("unknown ticker: got %d", w.Code)
	}
}

func TestGetSeriesMissingMetricBody(t *testing.T) {
	r := newTestRouter(t)
	tests := []struct {
		target string
		want   string
	}{
		{"/companies/COST/series/NoSuchMetric", `{"kind":"annual","historical":[],"future":[]}`},
		{"/companies/COST/series/NoSuchMetric?kind=average", `{"kind":"average","series":[]}`},
		{"/companies/COST/series/NoSuchMetric?kind=cagr", `{"kind":"cagr","series":[]}`},
	}
	for _, tt := range tests {
		w := do(r, http.MethodGet, tt.target, "", nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s: got %d", tt.target, w.Code)
			continue
		}
		if got := strings.TrimSpace(w.Body.String()); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.target, got, tt.want)
		}
	}
}

func TestGetSeriesAnnualHasEmptyFuture(t *testing.T) {
	r := newTestRouter(t)
	w := do(r, http.MethodGet, "/companies/COST/series/Revenue", "", nil)
	var raw map[string]json.RawMessage
	decode(t, w, &raw)
	if got := string(raw["future"]); got != "[]" {
		t.Errorf("future: got %q, want []", got)
	}
}
