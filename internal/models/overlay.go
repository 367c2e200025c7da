package models

import "time"

// SavedOverlay is a user's persisted edits for one company
type SavedOverlay struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Ticker    string          `json:"ticker"`
	Tables    FinancialTables `json:"tables"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
