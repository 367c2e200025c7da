package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Dan9191/findash/internal/models"
	"github.com/google/uuid"
)

// MemoryOverlayStore keeps overlays in process memory. It backs the API
// when no database is configured.
type MemoryOverlayStore struct {
	mu       sync.RWMutex
	overlays map[string]models.SavedOverlay
	now      func() time.Time
}

func NewMemoryOverlayStore() *MemoryOverlayStore {
	return &MemoryOverlayStore{
		overlays: make(map[string]models.SavedOverlay),
		now:      time.Now,
	}
}

func overlayKey(userID, ticker string) string {
	return userID + "\x00" + ticker
}

func (m *MemoryOverlayStore) GetOverlay(_ context.Context, userID, ticker string) (*models.SavedOverlay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.overlays[overlayKey(userID, ticker)]
	if !ok {
		return nil, models.ErrOverlayNotFound
	}
	o.Tables = o.Tables.Clone()
	return &o, nil
}

func (m *MemoryOverlayStore) SaveOverlay(_ context.Context, overlay *models.SavedOverlay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := overlayKey(overlay.UserID, overlay.Ticker)
	now := m.now()
	if existing, ok := m.overlays[key]; ok {
		overlay.ID = existing.ID
		overlay.CreatedAt = existing.CreatedAt
	} else {
		if overlay.ID == "" {
			overlay.ID = uuid.New().String()
		}
		overlay.CreatedAt = now
	}
	overlay.UpdatedAt = now
	stored := *overlay
	stored.Tables = overlay.Tables.Clone()
	m.overlays[key] = stored
	return nil
}

func (m *MemoryOverlayStore) DeleteOverlay(_ context.Context, userID, ticker string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := overlayKey(userID, ticker)
	if _, ok := m.overlays[key]; !ok {
		return models.ErrOverlayNotFound
	}
	delete(m.overlays, key)
	return nil
}

func (m *MemoryOverlayStore) PurgeOverlays(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, o := range m.overlays {
		if o.UpdatedAt.Before(olderThan) {
			delete(m.overlays, key)
			n++
		}
	}
	return n, nil
}
