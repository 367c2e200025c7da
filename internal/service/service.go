package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Dan9191/findash/internal/cache"
	"github.com/Dan9191/findash/internal/chart"
	"github.com/Dan9191/findash/internal/config"
	"github.com/Dan9191/findash/internal/models"
	"github.com/Dan9191/findash/internal/repository"
	"github.com/Dan9191/findash/internal/resolver"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Service resolves and shapes company metrics
type Service struct {
	repo     *repository.Repository
	overlays repository.OverlayStore
	resolver *resolver.Resolver
	cache    cache.Cache
	log      *logrus.Logger
	config   *config.Config
}

// NewService initializes a new service. cache may be nil.
func NewService(repo *repository.Repository, overlays repository.OverlayStore, c cache.Cache, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		repo:     repo,
		overlays: overlays,
		resolver: resolver.New(repo.SideTables()),
		cache:    c,
		log:      log,
		config:   cfg,
	}
}

// Companies returns the catalog
func (s *Service) Companies() []models.Company {
	return s.repo.Companies()
}

// GetCompanyData returns a copy of the company's tables
func (s *Service) GetCompanyData(ticker string) (models.FinancialTables, error) {
	tables, ok := s.repo.GetCompanyData(ticker)
	if !ok {
		return models.FinancialTables{}, fmt.Errorf("%w: %s", models.ErrUnknownTicker, ticker)
	}
	return tables, nil
}

// GetCompanyDataWithContext returns the company's tables merged with overlay
func (s *Service) GetCompanyDataWithContext(ticker string, overlay *models.FinancialTables) (models.FinancialTables, error) {
	tables, ok := s.repo.GetCompanyDataWithContext(ticker, overlay)
	if !ok {
		return models.FinancialTables{}, fmt.Errorf("%w: %s", models.ErrUnknownTicker, ticker)
	}
	return tables, nil
}

// HasMetricData reports whether the company defines the metric
func (s *Service) HasMetricData(ticker, metric string) bool {
	return s.repo.HasMetricData(ticker, metric)
}

// GetAnnualData returns the metric by fiscal year. A metric that cannot be
// found yields an empty series and a logged warning.
func (s *Service) GetAnnualData(ticker, metric string, overlay *models.FinancialTables) ([]models.AnnualDataPoint, error) {
	tables, err := s.GetCompanyDataWithContext(ticker, overlay)
	if err != nil {
		return nil, err
	}
	values, ok := resolver.FindMetricInTables(tables, metric)
	if !ok {
		s.warnMissing(ticker, metric, models.KindAnnual)
		return []models.AnnualDataPoint{}, nil
	}
	return chart.AnnualPoints(values, s.config.HistoricalCutoff), nil
}

// GetAverageData returns the metric's trailing averages
func (s *Service) GetAverageData(ticker, metric string, overlay *models.FinancialTables) ([]models.AverageDataPoint, error) {
	tables, err := s.GetCompanyDataWithContext(ticker, overlay)
	if err != nil {
		return nil, err
	}
	values, ok := s.resolver.FindAveragesForMetric(tables, metric, ticker)
	if !ok {
		s.warnMissing(ticker, metric, models.KindAverage)
		return []models.AverageDataPoint{}, nil
	}
	return chart.AveragePoints(values), nil
}

// GetCAGRData returns the metric's trailing compound growth rates
func (s *Service) GetCAGRData(ticker, metric string, overlay *models.FinancialTables) ([]models.CAGRDataPoint, error) {
	tables, err := s.GetCompanyDataWithContext(ticker, overlay)
	if err != nil {
		return nil, err
	}
	values, ok := s.resolver.FindCAGRForMetric(tables, metric, ticker)
	if !ok {
		s.warnMissing(ticker, metric, models.KindCAGR)
		return []models.CAGRDataPoint{}, nil
	}
	return chart.CAGRPoints(values), nil
}

// GetSeries resolves one shape of a metric and buckets it for a chart
func (s *Service) GetSeries(ticker, metric string, kind models.SeriesKind, overlay *models.FinancialTables) (models.ChartData, error) {
	series := models.MetricSeries{Metric: metric}
	var err error
	switch kind {
	case models.KindAnnual:
		series.Annual, err = s.GetAnnualData(ticker, metric, overlay)
	case models.KindAverage:
		series.Averages, err = s.GetAverageData(ticker, metric, overlay)
	case models.KindCAGR:
		series.CAGR, err = s.GetCAGRData(ticker, metric, overlay)
	default:
		_, err = models.ParseSeriesKind(string(kind))
	}
	if err != nil {
		return models.ChartData{}, err
	}
	return chart.FormatDataForChart(series, kind)
}

// GetDashboard resolves every shape of several metrics at once
func (s *Service) GetDashboard(ctx context.Context, ticker string, metrics []string, overlay *models.FinancialTables) ([]models.MetricSeries, error) {
	if _, ok := s.repo.Company(ticker); !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownTicker, ticker)
	}

	out := make([]models.MetricSeries, len(metrics))
	g, gctx := errgroup.WithContext(ctx)
	for i, metric := range metrics {
		i, metric := i, metric
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			series := models.MetricSeries{Metric: metric}
			var err error
			if series.Annual, err = s.GetAnnualData(ticker, metric, overlay); err != nil {
				return err
			}
			if series.Averages, err = s.GetAverageData(ticker, metric, overlay); err != nil {
				return err
			}
			if series.CAGR, err = s.GetCAGRData(ticker, metric, overlay); err != nil {
				return err
			}
			out[i] = series
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CalculateIndustryAverages averages a metric's rolling figures across
// companies. An empty ticker list means every company. Unknown tickers are
// an error; companies without the metric are left out of the mean.
func (s *Service) CalculateIndustryAverages(ctx context.Context, tickers []string, metric string, kind models.SeriesKind) ([]models.IndustryAveragePoint, error) {
	if kind != models.KindAverage && kind != models.KindCAGR {
		return nil, fmt.Errorf("%w: industry averages need %q or %q, got %q", models.ErrInvalidKind, models.KindAverage, models.KindCAGR, kind)
	}
	if len(tickers) == 0 {
		tickers = s.repo.GetAvailableCompanies()
	}

	key := industryCacheKey(tickers, metric, kind)
	if s.cache != nil {
		var cached []models.IndustryAveragePoint
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.WithError(err).Warn("Industry average cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	byTicker := make(map[string]map[models.PeriodLabel]float64, len(tickers))
	for _, ticker := range tickers {
		tables, ok := s.repo.GetCompanyData(ticker)
		if !ok {
			return nil, fmt.Errorf("%w: %s", models.ErrUnknownTicker, ticker)
		}
		var values map[models.PeriodLabel]float64
		var found bool
		if kind == models.KindAverage {
			values, found = s.resolver.FindAveragesForMetric(tables, metric, ticker)
		} else {
			values, found = s.resolver.FindCAGRForMetric(tables, metric, ticker)
		}
		if !found {
			s.warnMissing(ticker, metric, kind)
			continue
		}
		byTicker[ticker] = values
	}

	points := chart.CalculateIndustryAverages(byTicker)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, points); err != nil {
			s.log.WithError(err).Warn("Industry average cache write failed")
		}
	}
	return points, nil
}

// GetOverlay returns the overlay a user saved for a ticker
func (s *Service) GetOverlay(ctx context.Context, userID, ticker string) (*models.SavedOverlay, error) {
	if _, ok := s.repo.Company(ticker); !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownTicker, ticker)
	}
	return s.overlays.GetOverlay(ctx, userID, ticker)
}

// SaveOverlay stores a user's edits for a ticker, replacing earlier ones
func (s *Service) SaveOverlay(ctx context.Context, userID, ticker string, tables models.FinancialTables) (*models.SavedOverlay, error) {
	if _, ok := s.repo.Company(ticker); !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownTicker, ticker)
	}
	overlay := &models.SavedOverlay{UserID: userID, Ticker: ticker, Tables: tables}
	if err := s.overlays.SaveOverlay(ctx, overlay); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user": userID, "ticker": ticker}).Info("Overlay saved")
	return overlay, nil
}

// DeleteOverlay removes a user's edits for a ticker
func (s *Service) DeleteOverlay(ctx context.Context, userID, ticker string) error {
	if err := s.overlays.DeleteOverlay(ctx, userID, ticker); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user": userID, "ticker": ticker}).Info("Overlay deleted")
	return nil
}

// SavedOverlayTables returns the user's saved overlay tables, or nil when
// the user has none for the ticker
func (s *Service) SavedOverlayTables(ctx context.Context, userID, ticker string) (*models.FinancialTables, error) {
	saved, err := s.overlays.GetOverlay(ctx, userID, ticker)
	if errors.Is(err, models.ErrOverlayNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &saved.Tables, nil
}

// PurgeExpiredOverlays drops overlays untouched for longer than OverlayTTL
func (s *Service) PurgeExpiredOverlays(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.config.OverlayTTL)
	n, err := s.overlays.PurgeOverlays(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge overlays: %w", err)
	}
	return n, nil
}

func (s *Service) warnMissing(ticker, metric string, kind models.SeriesKind) {
	s.log.WithFields(logrus.Fields{
		"ticker": ticker,
		"metric": metric,
		"kind":   kind,
	}).Warn("Metric not found")
}

func industryCacheKey(tickers []string, metric string, kind models.SeriesKind) string {
	sorted := append([]string(nil), tickers...)
	sort.Strings(sorted)
	return fmt.Sprintf("industry:%s:%s:%s", kind, strings.Join(sorted, ","), metric)
}
