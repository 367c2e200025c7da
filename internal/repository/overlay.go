package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"time"

	"github.com/Dan9191/findash/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

//go:embed schema.sql
var overlaySchema string

// OverlayStore persists user overlays, one per (user, ticker)
type OverlayStore interface {
	GetOverlay(ctx context.Context, userID, ticker string) (*models.SavedOverlay, error)
	SaveOverlay(ctx context.Context, overlay *models.SavedOverlay) error
	DeleteOverlay(ctx context.Context, userID, ticker string) error
	PurgeOverlays(ctx context.Context, olderThan time.Time) (int64, error)
}

// OverlayRepository stores overlays in PostgreSQL
type OverlayRepository struct {
	db *sqlx.DB
}

// NewOverlayRepository wraps an open database handle
func NewOverlayRepository(db *sql.DB) *OverlayRepository {
	return &OverlayRepository{db: sqlx.NewDb(db, "postgres")}
}

// EnsureSchema creates the overlay table when missing
func (r *OverlayRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, overlaySchema); err != nil {
		return errors.Wrap(err, "failed to create overlay schema")
	}
	return nil
}

type overlayRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Ticker    string    `db:"ticker"`
	Tables    []byte    `db:"tables"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// GetOverlay retrieves the overlay a user saved for a ticker
func (r *OverlayRepository) GetOverlay(ctx context.Context, userID, ticker string) (*models.SavedOverlay, error) {
	var row overlayRow
	query := `
		SELECT id, user_id, ticker, tables, created_at, updated_at
		FROM dashboard.overlays
		WHERE user_id = $1 AND ticker = $2`
	err := r.db.GetContext(ctx, &row, query, userID, ticker)
	if err == sql.ErrNoRows {
		return nil, models.ErrOverlayNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get overlay")
	}

	overlay := &models.SavedOverlay{
		ID:        row.ID,
		UserID:    row.UserID,
		Ticker:    row.Ticker,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Tables, &overlay.Tables); err != nil {
		return nil, errors.Wrapf(err, "corrupt overlay %s", row.ID)
	}
	return overlay, nil
}

// SaveOverlay inserts or replaces the user's overlay for the ticker
func (r *OverlayRepository) SaveOverlay(ctx context.Context, overlay *models.SavedOverlay) error {
	body, err := json.Marshal(overlay.Tables)
	if err != nil {
		return errors.Wrap(err, "failed to encode overlay")
	}
	if overlay.ID == "" {
		overlay.ID = uuid.New().String()
	}
	query := `
		INSERT INTO dashboard.overlays (id, user_id, ticker, tables, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, ticker) DO UPDATE
		SET tables = EXCLUDED.tables, updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at`
	err = r.db.QueryRowxContext(ctx, query, overlay.ID, overlay.UserID, overlay.Ticker, string(body)).
		Scan(&overlay.ID, &overlay.CreatedAt, &overlay.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to save overlay")
	}
	return nil
}

// DeleteOverlay removes the user's overlay for the ticker
func (r *OverlayRepository) DeleteOverlay(ctx context.Context, userID, ticker string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dashboard.overlays WHERE user_id = $1 AND ticker = $2`, userID, ticker)
	if err != nil {
		return errors.Wrap(err, "failed to delete overlay")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to delete overlay")
	}
	if n == 0 {
		return models.ErrOverlayNotFound
	}
	return nil
}

// PurgeOverlays deletes overlays not updated since olderThan
func (r *OverlayRepository) PurgeOverlays(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dashboard.overlays WHERE updated_at < $1`, olderThan)
	if err != nil {
		return 0, errors.Wrap(err, "failed to purge overlays")
	}
	return res.RowsAffected()
}
