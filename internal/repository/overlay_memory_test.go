package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dan9191/findash/internal/models"
)

func TestMemoryOverlayStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOverlayStore()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	if _, err := store.GetOverlay(ctx, "u1", "COST"); !errors.Is(err, models.ErrOverlayNotFound) {
		t.Fatalf("expected ErrOverlayNotFound, got %v", err)
	}

	tables := models.FinancialTables{Tables: map[string]models.Table{
		models.TableIncomeStatement: {"2024": {"Revenue": 1}},
	}}
	first := &models.SavedOverlay{UserID: "u1", Ticker: "COST", Tables: tables}
	if err := store.SaveOverlay(ctx, first); err != nil {
		t.Fatalf("SaveOverlay() error: %v", err)
	}
	if first.ID == "" || !first.CreatedAt.Equal(clock) {
		t.Fatalf("save should assign id and timestamps, got %+v", first)
	}

	tables.Tables[models.TableIncomeStatement]["2024"]["Revenue"] = 2
	got, err := store.GetOverlay(ctx, "u1", "COST")
	if err != nil {
		t.Fatalf("GetOverlay() error: %v", err)
	}
	if v := got.Tables.Tables[models.TableIncomeStatement]["2024"]["Revenue"]; v != 1 {
		t.Errorf("stored overlay aliases caller tables: got %v", v)
	}

	clock = clock.Add(time.Hour)
	second := &models.SavedOverlay{UserID: "u1", Ticker: "COST", Tables: tables}
	if err := store.SaveOverlay(ctx, second); err != nil {
		t.Fatalf("SaveOverlay() error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("update changed id: %s != %s", second.ID, first.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) || !second.UpdatedAt.Equal(clock) {
		t.Errorf("unexpected timestamps on update: %+v", second)
	}

	if _, err := store.GetOverlay(ctx, "u2", "COST"); !errors.Is(err, models.ErrOverlayNotFound) {
		t.Errorf("overlays must be per user, got %v", err)
	}

	if err := store.DeleteOverlay(ctx, "u1", "COST"); err != nil {
		t.Fatalf("DeleteOverlay() error: %v", err)
	}
	if err := store.DeleteOverlay(ctx, "u1", "COST"); !errors.Is(err, models.ErrOverlayNotFound) {
		t.Errorf("second delete: got %v", err)
	}
}

func TestMemoryOverlayStorePurge(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOverlayStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, ticker := range []string{"COST", "WMT", "TGT"} {
		at := base.Add(time.Duration(i) * 24 * time.Hour)
		store.now = func() time.Time { return at }
		if err := store.SaveOverlay(ctx, &models.SavedOverlay{UserID: "u1", Ticker: ticker}); err != nil {
			t.Fatalf("SaveOverlay(%s) error: %v", ticker, err)
		}
	}

	n, err := store.PurgeOverlays(ctx, base.Add(36*time.Hour))
	if err != nil {
		t.Fatalf("PurgeOverlays() error: %v", err)
	}
	if n != 2 {
		t.Errorf("purged %d overlays, want 2", n)
	}
	if _, err := store.GetOverlay(ctx, "u1", "TGT"); err != nil {
		t.Errorf("recent overlay should survive: %v", err)
	}
}
