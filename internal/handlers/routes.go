package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/semla/internal/app"
)

func NewRouter(service *app.Service) http.Handler {
	students := NewStudentHandler(service)
	submissions := NewSubmissionHandler(service)
	errorLog := NewErrorLogHandler(service)

	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"GET /{$}", handlePong},
		{"GET /students", requireAuth(service, students.HandleSummary)},
		{"POST /students", requireAuth(service, students.HandleCreate)},
		{"GET /students/{nickname}", requireAuth(service, students.HandleGet)},
		{"GET /errors", requireAuth(service, errorLog.HandleList)},
		{"POST /submissions/{upload_code}", submissions.HandleUpload},
		{"GET /submissions/{upload_code}", submissions.HandleStatus},
		{"GET /verifications/{verification_code}/download_url", submissions.HandleDownloadURL},
	}

	mux := http.NewServeMux()
	for _, route := range routes {
		mux.Handle(route.pattern, instrument(route.pattern, route.handler))
	}
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

func handlePong(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("pong"))
}
