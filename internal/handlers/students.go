package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/app"
	"github.com/shrimpsizemoose/semla/internal/models"
)

type StudentHandler struct {
	service *app.Service
}

func NewStudentHandler(service *app.Service) *StudentHandler {
	return &StudentHandler{
		service: service,
	}
}

func (h *StudentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.StudentCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Debug.Printf("Invalid student payload: %v", err)
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	student, err := h.service.RegisterStudent(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, student)
}

func (h *StudentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	student, err := h.service.StudentByNickname(r.Context(), r.PathValue("nickname"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
