// Package api exposes the HTTP interface for the word-frequency service.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/essay-wordfreq/internal/essays"
	"github.com/JakeFAU/essay-wordfreq/internal/metrics"
	"github.com/JakeFAU/essay-wordfreq/internal/pipeline"
)

// User-facing query messages. Clients match on these strings.
const (
	msgFileDoesNotExist  = "File id does not exist, Please verify and try again."
	msgStillProcessing   = "File is still getting processed, Please check after sometime."
	msgLimitExceededTmpl = "File Limit Exceeded, As of now only %d urls are supported."
)

const maxUploadBytes = 32 << 20

// Config controls Server behavior.
type Config struct {
	MaxURLs        int
	RequestTimeout time.Duration
}

// Server wires HTTP handlers to the pipeline runner.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	idGen  essays.IDGenerator
	cfg    Config
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(runner *pipeline.Runner, idGen essays.IDGenerator, cfg Config, logger *zap.Logger) *Server {
	if cfg.MaxURLs <= 0 {
		cfg.MaxURLs = 1000
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	s := &Server{
		runner: runner,
		idGen:  idGen,
		cfg:    cfg,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(cfg.RequestTimeout))
	r.Use(metricsMiddleware)

	r.Get("/metrics", metrics.Handler().ServeHTTP)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Route("/essays", func(r chi.Router) {
			r.Post("/", s.countSync)
			r.Post("/bulk", s.submitBulk)
			r.Get("/{file_id}", s.queryByID)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// submitBulk accepts a newline-delimited URL file and processes it in the
// background, returning the job id immediately.
func (s *Server) submitBulk(w http.ResponseWriter, r *http.Request) {
	urls, fileName, ok := s.readURLFile(w, r)
	if !ok {
		return
	}

	jobID, err := s.idGen.NewID()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not generate file id")
		return
	}

	// Processing outlives the upload request.
	go func() {
		if err := s.runner.Process(context.Background(), jobID, fileName, urls); err != nil {
			s.logger.Error("background job failed", zap.String("job_id", jobID), zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"file_id": jobID})
}

// countSync processes an upload inline and returns the full result. This
// entry point enforces the URL-count limit; the bulk path does not.
func (s *Server) countSync(w http.ResponseWriter, r *http.Request) {
	urls, fileName, ok := s.readURLFile(w, r)
	if !ok {
		return
	}
	if len(pipeline.DedupeURLs(urls)) > s.cfg.MaxURLs {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": fmt.Sprintf(msgLimitExceededTmpl, s.cfg.MaxURLs),
		})
		return
	}
	topWords := parseTopWords(r.FormValue("top_words"))

	jobID, err := s.idGen.NewID()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not generate file id")
		return
	}
	if err := s.runner.Process(r.Context(), jobID, fileName, urls); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeQueryResult(r.Context(), w, jobID, topWords)
}

func (s *Server) queryByID(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "file_id")
	topWords := parseTopWords(r.URL.Query().Get("top_words"))
	s.writeQueryResult(r.Context(), w, jobID, topWords)
}

func (s *Server) writeQueryResult(ctx context.Context, w http.ResponseWriter, jobID string, topWords int) {
	result, err := s.runner.Query(ctx, jobID, topWords)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	switch result.State {
	case essays.LookupNotFound:
		writeJSON(w, http.StatusOK, map[string]string{"message": msgFileDoesNotExist})
	case essays.LookupIncomplete:
		writeJSON(w, http.StatusOK, map[string]string{"message": msgStillProcessing})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"top_words":   result.TopWords,
			"failed_urls": result.FailedURLs,
			"file_id":     result.JobID,
		})
	}
}

// readURLFile parses the multipart upload and splits it into URL lines. On
// failure it writes the error response and returns ok=false.
func (s *Server) readURLFile(w http.ResponseWriter, r *http.Request) (urls []string, fileName string, ok bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return nil, "", false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return nil, "", false
	}
	defer func() {
		_ = file.Close()
	}()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return nil, "", false
	}
	return strings.Split(string(content), "\n"), header.Filename, true
}

// parseTopWords validates the optional top_words parameter. Anything that is
// not a positive integer falls back to the pipeline default (signaled by 0).
func parseTopWords(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
