package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dan9191/findash/internal/chart"
	"github.com/Dan9191/findash/internal/export"
	"github.com/Dan9191/findash/internal/models"
	"github.com/Dan9191/findash/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxOverlayBytes = 1 << 20

type Handler struct {
	svc      *service.Service
	log      *logrus.Logger
	validate *validator.Validate
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log, validate: validator.New()}
}

type seriesQuery struct {
	Ticker string `validate:"required,uppercase,max=10"`
	Metric string `validate:"required,max=128"`
	Kind   string `validate:"required,oneof=annual average cagr"`
	Format string `validate:"required,oneof=json xml"`
}

type industryQuery struct {
	Metric  string   `validate:"required,max=128"`
	Kind    string   `validate:"required,oneof=average cagr"`
	Tickers []string `validate:"max=50,dive,required,uppercase,max=10"`
}

type paletteQuery struct {
	N    int    `validate:"min=0,max=256"`
	Kind string `validate:"omitempty,oneof=annual average cagr"`
}

type dashboardQuery struct {
	Ticker  string   `validate:"required,uppercase,max=10"`
	Metrics []string `validate:"required,min=1,max=20,dive,required,max=128"`
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListCompanies returns the company catalog
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Companies())
}

// GetCompany returns a company's full tables
func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	tables, err := h.svc.GetCompanyData(mux.Vars(r)["ticker"])
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

// GetCompanyWithContext merges the posted overlay onto a company's tables
func (h *Handler) GetCompanyWithContext(w http.ResponseWriter, r *http.Request) {
	overlay, err := readOverlay(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	tables, err := h.svc.GetCompanyDataWithContext(mux.Vars(r)["ticker"], &overlay)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

// HasMetric reports whether a company defines a metric
func (h *Handler) HasMetric(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  vars["ticker"],
		"metric":  vars["metric"],
		"present": h.svc.HasMetricData(vars["ticker"], vars["metric"]),
	})
}

// GetSeries returns one metric shaped for a chart. POST requests carry an
// overlay in the body.
func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	var overlay *models.FinancialTables
	if r.Method == http.MethodPost {
		o, err := readOverlay(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		overlay = &o
	}
	h.writeSeries(w, r, overlay)
}

func (h *Handler) writeSeries(w http.ResponseWriter, r *http.Request, overlay *models.FinancialTables) {
	vars := mux.Vars(r)
	q := seriesQuery{
		Ticker: vars["ticker"],
		Metric: vars["metric"],
		Kind:   queryOr(r, "kind", string(models.KindAnnual)),
		Format: queryOr(r, "format", "json"),
	}
	if err := h.validate.Struct(q); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := h.svc.GetSeries(q.Ticker, q.Metric, models.SeriesKind(q.Kind), overlay)
	if err != nil {
		h.fail(w, err)
		return
	}
	if q.Format == "xml" {
		body, err := export.ChartXML(q.Ticker, q.Metric, data)
		if err != nil {
			h.fail(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// GetDashboard returns every shape of several metrics for one company
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q := dashboardQuery{
		Ticker:  mux.Vars(r)["ticker"],
		Metrics: splitParam(r.URL.Query().Get("metrics")),
	}
	if err := h.validate.Struct(q); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	series, err := h.svc.GetDashboard(r.Context(), q.Ticker, q.Metrics, nil)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// GetIndustryAverages averages a metric's rolling figures across companies
func (h *Handler) GetIndustryAverages(w http.ResponseWriter, r *http.Request) {
	q := industryQuery{
		Metric:  mux.Vars(r)["metric"],
		Kind:    queryOr(r, "kind", string(models.KindAverage)),
		Tickers: splitParam(r.URL.Query().Get("tickers")),
	}
	if err := h.validate.Struct(q); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	points, err := h.svc.CalculateIndustryAverages(r.Context(), q.Tickers, q.Metric, models.SeriesKind(q.Kind))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// GetPalette returns n chart colors, or the colors of series n of a kind
// when kind is given
func (h *Handler) GetPalette(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(queryOr(r, "n", "10"))
	if err != nil {
		http.Error(w, "n must be an integer", http.StatusBadRequest)
		return
	}
	q := paletteQuery{N: n, Kind: r.URL.Query().Get("kind")}
	if err := h.validate.Struct(q); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if q.Kind != "" {
		writeJSON(w, http.StatusOK, chart.GetChartColors(models.SeriesKind(q.Kind), q.N))
		return
	}
	writeJSON(w, http.StatusOK, chart.GenerateColorPalette(q.N))
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUnknownTicker), errors.Is(err, models.ErrOverlayNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidKind):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.WithError(err).Error("Request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// readOverlay decodes an overlay body, JSON by default or XML when the
// content type says so
func readOverlay(r *http.Request) (models.FinancialTables, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxOverlayBytes+1))
	if err != nil {
		return models.FinancialTables{}, err
	}
	if len(body) > maxOverlayBytes {
		return models.FinancialTables{}, errors.New("overlay too large")
	}
	if strings.Contains(r.Header.Get("Content-Type"), "xml") {
		return export.ParseOverlayXML(body)
	}
	var overlay models.FinancialTables
	if err := json.Unmarshal(body, &overlay); err != nil {
		return models.FinancialTables{}, err
	}
	return overlay, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func queryOr(r *http.Request, key, def string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return def
}

func splitParam(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
