package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/app"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeError maps a service error to its HTTP status. Only the caller-safe
// detail is sent; the cause goes to the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := app.KindOf(err)
	if kind == app.KindStorageFailure {
		logger.Error.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
	} else {
		logger.Debug.Printf("%s %s rejected: %v", r.Method, r.URL.Path, err)
	}
	writeDetail(w, statusFor(kind), app.DetailOf(err))
}

func statusFor(kind app.ErrorKind) int {
	switch kind {
	case app.KindNotFound:
		return http.StatusNotFound
	case app.KindQuotaExceeded:
		return http.StatusUnprocessableEntity
	case app.KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case app.KindConflict:
		return http.StatusUnprocessableEntity
	case app.KindInvalid:
		return http.StatusUnprocessableEntity
	case app.KindUnauthorized:
		return http.StatusUnauthorized
	case app.KindTooManyRequests:
		return http.StatusTooManyRequests
	case app.KindStorageFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
