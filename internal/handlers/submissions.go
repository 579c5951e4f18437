package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/semla/internal/app"
	"github.com/shrimpsizemoose/semla/internal/metrics"
)

const uploadFieldName = "file"

type SubmissionHandler struct {
	service *app.Service
}

func NewSubmissionHandler(service *app.Service) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
	}
}

// HandleUpload streams the multipart "file" part straight into the service
// so that oversized uploads are cut off while reading.
func (h *SubmissionHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	reader, err := r.MultipartReader()
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Expected a multipart/form-data body")
		return
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			writeDetail(w, http.StatusBadRequest, "Field 'file' is required")
			return
		}
		if err != nil {
			logger.Debug.Printf("Malformed multipart body: %v", err)
			writeDetail(w, http.StatusBadRequest, "Malformed multipart body")
			return
		}
		if part.FormName() != uploadFieldName || part.FileName() == "" {
			part.Close()
			continue
		}

		completion, err := h.service.Submit(r.Context(), r.PathValue("upload_code"), app.Upload{
			Filename: part.FileName(),
			Body:     part,
		})
		part.Close()
		if err != nil {
			metrics.SubmissionsTotal.WithLabelValues(app.KindOf(err).String()).Inc()
			writeError(w, r, err)
			return
		}

		metrics.SubmissionsTotal.WithLabelValues("created").Inc()
		writeJSON(w, http.StatusCreated, completion)
		return
	}
}

func (h *SubmissionHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	completion, err := h.service.SubmissionStatus(r.Context(), r.PathValue("upload_code"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, completion)
}

func (h *SubmissionHandler) HandleDownloadURL(w http.ResponseWriter, r *http.Request) {
	target, err := h.service.DownloadTarget(r.Context(), r.PathValue("verification_code"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, target)
}
