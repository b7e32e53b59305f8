package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/scrypster/folio/internal/engine"
	"github.com/scrypster/folio/internal/schema"
)

// maxBodyBytes bounds request bodies for snapshot and admin payloads.
const maxBodyBytes = 32 << 20

// APIHandlers contains the validation endpoints of the REST API.
type APIHandlers struct {
	checker *engine.Checker
	logger  logrus.FieldLogger
}

// NewAPIHandlers creates a new APIHandlers instance.
func NewAPIHandlers(checker *engine.Checker, logger logrus.FieldLogger) *APIHandlers {
	return &APIHandlers{checker: checker, logger: logger}
}

// Validate handles POST /api/validate. The body is a snapshot document; the
// response is the stored report record. Structural errors are rejected
// with 422 before any integrity check runs.
func (h *APIHandlers) Validate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = "api"
	}

	record, err := h.checker.CheckDocument(r.Context(), source, body)
	if err != nil {
		h.respondRunError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// Deduplicate handles POST /api/deduplicate and returns the snapshot with
// only the first occurrence of each id kept.
func (h *APIHandlers) Deduplicate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	snap, err := schema.DecodeSnapshot(body)
	if err != nil {
		h.respondRunError(w, err)
		return
	}

	deduped := h.checker.Quality().Deduplicate(snap)
	respondJSON(w, http.StatusOK, DeduplicateResponse{
		Snapshot: deduped,
		Removed:  snap.Len() - deduped.Len(),
	})
}

// AdminQuality handles POST /api/admin/quality: duplicate project titles
// and skill names in dashboard data, with a derived score.
func (h *APIHandlers) AdminQuality(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var req AdminQualityRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	respondJSON(w, http.StatusOK, h.checker.Quality().CheckAdmin(req.Projects, req.Skills))
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large", nil)
			return nil, false
		}
		respondError(w, http.StatusBadRequest, "failed to read request body", err)
		return nil, false
	}
	if len(body) == 0 {
		respondError(w, http.StatusBadRequest, "request body is required", nil)
		return nil, false
	}
	return body, true
}

// respondRunError maps pipeline failures: schema violations are 422 with
// every violated field listed, malformed JSON is a bad request and anything
// else (the store) is a server error.
func (h *APIHandlers) respondRunError(w http.ResponseWriter, err error) {
	var (
		violation *schema.SchemaViolation
		syntax    *json.SyntaxError
	)
	switch {
	case errors.As(err, &violation):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "snapshot failed schema validation",
			Code:    http.StatusText(http.StatusUnprocessableEntity),
			Details: map[string]interface{}{"fields": violation.Fields},
		})
	case errors.As(err, &syntax):
		respondError(w, http.StatusBadRequest, "invalid snapshot", err)
	default:
		h.logger.WithError(err).Error("api: validation run failed")
		respondError(w, http.StatusInternalServerError, "validation failed", err)
	}
}

// parseInt parses s or returns defaultValue when it is empty or malformed.
func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// Headers are already sent; an encode failure cannot be reported.
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}
