package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/rally/internal/api/dto"
	"github.com/hugh/rally/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, dto.Response{Message: message, Status: http.StatusOK, Data: data})
}

// writeError maps domain errors to their HTTP status. Anything that is not an
// *apperr.Error is logged and hidden behind a generic message.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if e, ok := apperr.As(err); ok {
		status := e.HTTPStatus()
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "kind", e.Kind, "error", err, "cause", e.Cause)
		}
		writeJSON(w, status, dto.ErrorResponse{Status: status, Message: e.Error(), Fields: e.Fields})
		return
	}

	logger.Error("unexpected error", "error", err)
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
		Status:  http.StatusInternalServerError,
		Message: "Something went wrong",
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Status: http.StatusBadRequest, Message: message})
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// idParam reads a numeric URL parameter. Malformed ids come back as 0, which
// never matches a row, so lookups report the usual not-found error.
func idParam(r *http.Request, name string) uint {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

func paginationParams(r *http.Request) dto.PaginationParams {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	p := dto.PaginationParams{Page: page, PerPage: perPage}
	p.Normalize()
	return p
}
