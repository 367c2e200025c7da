package handler

import (
	"net/http"
	"strings"

	"github.com/Dan9191/findash/internal/export"
	"github.com/Dan9191/findash/internal/middleware"
	"github.com/gorilla/mux"
)

// GetOverlay returns the caller's saved overlay, as XML when asked for
func (h *Handler) GetOverlay(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	ticker := mux.Vars(r)["ticker"]
	overlay, err := h.svc.GetOverlay(r.Context(), userID, ticker)
	if err != nil {
		h.fail(w, err)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "xml") {
		body, err := export.OverlayXML(overlay.Tables)
		if err != nil {
			h.fail(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}
	writeJSON(w, http.StatusOK, overlay)
}

// SaveOverlay stores the posted overlay for the caller
func (h *Handler) SaveOverlay(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	tables, err := readOverlay(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	overlay, err := h.svc.SaveOverlay(r.Context(), userID, mux.Vars(r)["ticker"], tables)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overlay)
}

// DeleteOverlay drops the caller's overlay
func (h *Handler) DeleteOverlay(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.svc.DeleteOverlay(r.Context(), userID, mux.Vars(r)["ticker"]); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOverlaySeries returns a chart series with the caller's saved overlay
// applied; without a saved overlay it matches the static series
func (h *Handler) GetOverlaySeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	overlay, err := h.svc.SavedOverlayTables(r.Context(), userID, mux.Vars(r)["ticker"])
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeSeries(w, r, overlay)
}
