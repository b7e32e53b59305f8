package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/scrypster/folio/internal/config"
	"github.com/scrypster/folio/internal/storage"
)

// ReportHandlers serves the stored report history.
type ReportHandlers struct {
	store storage.ReportStore
}

// NewReportHandlers creates a new ReportHandlers instance.
func NewReportHandlers(store storage.ReportStore) *ReportHandlers {
	return &ReportHandlers{store: store}
}

// List handles GET /api/reports?limit=&offset=&valid=true.
func (h *ReportHandlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := storage.ListOptions{
		Limit:  parseInt(q.Get("limit"), 0),
		Offset: parseInt(q.Get("offset"), 0),
	}
	if v := q.Get("valid"); v != "" {
		validOnly, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "valid must be a boolean", err)
			return
		}
		opts.ValidOnly = validOnly
	}
	opts.Normalize()

	page, err := h.store.List(r.Context(), opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list reports", err)
		return
	}

	reports := page.Items
	if reports == nil {
		reports = []storage.Record{}
	}
	respondJSON(w, http.StatusOK, ReportListResponse{
		Reports: reports,
		Total:   page.Total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: page.HasMore,
	})
}

// Latest handles GET /api/reports/latest.
func (h *ReportHandlers) Latest(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.Latest(r.Context())
	if err != nil {
		respondStoreError(w, err, "no reports yet")
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// Get handles GET /api/reports/{id}.
func (h *ReportHandlers) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err, "report not found")
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func respondStoreError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, notFound, nil)
	case errors.Is(err, storage.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "invalid report id", err)
	default:
		respondError(w, http.StatusInternalServerError, "failed to load report", err)
	}
}

// ConfigHandler serves GET /api/config with secrets masked.
func ConfigHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, ToConfigResponse(cfg))
	}
}
