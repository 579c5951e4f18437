package handlers

import (
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/semla/internal/app"
)

const defaultErrorsLimit = 20

type ErrorLogHandler struct {
	service *app.Service
}

func NewErrorLogHandler(service *app.Service) *ErrorLogHandler {
	return &ErrorLogHandler{service: service}
}

// HandleList returns recorded upload failures, newest first.
func (h *ErrorLogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultErrorsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	records, err := h.service.LastErrors(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"errors": records,
	})
}
