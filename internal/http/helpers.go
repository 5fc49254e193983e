package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"spendtrack/internal/core"
	"spendtrack/internal/exchange"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeServiceError maps domain errors onto HTTP statuses: empty update
// payloads are 400, missing records 404, validation failures 422, and
// anything else a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNoFields):
		writeError(w, http.StatusBadRequest, "No fields provided for update")
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Internal error", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeExchangeError maps currency proxy errors: unknown targets are 400,
// upstream statuses pass through, network failures are 503, and unparseable
// upstream bodies 502.
func writeExchangeError(w http.ResponseWriter, r *http.Request, err error) {
	var statusErr *exchange.StatusError
	var unknownErr *exchange.UnknownCurrencyError

	switch {
	case errors.Is(err, exchange.ErrNonPositiveAmount):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &unknownErr):
		writeError(w, http.StatusBadRequest, unknownErr.Error())
	case errors.As(err, &statusErr):
		writeError(w, statusErr.StatusCode, "Failed to fetch exchange rates: "+statusErr.Body)
	case errors.Is(err, exchange.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Service unavailable: "+err.Error())
	case errors.Is(err, exchange.ErrMalformedResponse):
		writeError(w, http.StatusBadGateway, "Invalid response from exchange rate API")
	default:
		slog.ErrorContext(r.Context(), "Exchange error", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parseIDParam extracts the {id} path value as an int64.
func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
