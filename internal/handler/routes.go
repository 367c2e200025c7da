package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Register mounts the API on r. Overlay routes go through auth.
func (h *Handler) Register(r *mux.Router, auth mux.MiddlewareFunc) {
	// Public routes
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/companies", h.ListCompanies).Methods(http.MethodGet)
	r.HandleFunc("/companies/{ticker}", h.GetCompany).Methods(http.MethodGet)
	r.HandleFunc("/companies/{ticker}/context", h.GetCompanyWithContext).Methods(http.MethodPost)
	r.HandleFunc("/companies/{ticker}/metrics/{metric}", h.HasMetric).Methods(http.MethodGet)
	r.HandleFunc("/companies/{ticker}/series/{metric}", h.GetSeries).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/companies/{ticker}/dashboard", h.GetDashboard).Methods(http.MethodGet)
	r.HandleFunc("/industry/{metric}", h.GetIndustryAverages).Methods(http.MethodGet)
	r.HandleFunc("/palette", h.GetPalette).Methods(http.MethodGet)

	// Protected routes
	authRouter := r.PathPrefix("/overlays").Subrouter()
	authRouter.Use(auth)
	authRouter.HandleFunc("/{ticker}", h.GetOverlay).Methods(http.MethodGet)
	authRouter.HandleFunc("/{ticker}", h.SaveOverlay).Methods(http.MethodPut)
	authRouter.HandleFunc("/{ticker}", h.DeleteOverlay).Methods(http.MethodDelete)
	authRouter.HandleFunc("/{ticker}/series/{metric}", h.GetOverlaySeries).Methods(http.MethodGet)
}
