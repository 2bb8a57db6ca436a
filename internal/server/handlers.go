package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hyperjump/docquiz/internal/models"
	"go.uber.org/zap"
)

type askRequest struct {
	Question string `json:"question" validate:"notblank,max=4000"`
}

type evaluateRequest struct {
	Answer string `json:"answer" validate:"notblank,max=1000"`
}

type answerResponse struct {
	Answer      string `json:"answer"`
	Citation    string `json:"citation"`
	Formatted   string `json:"formatted"`
	Chunks      []int  `json:"chunks"`
	Unavailable bool   `json:"unavailable,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.config.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "too_large", "file exceeds upload limit")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid_input", "no file uploaded")
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_input", "failed to read upload")
		return
	}
	s.logger.Debug("upload request", zap.String("filename", header.Filename), zap.Int("bytes", len(content)))

	res, err := s.docs.Ingest(r.Context(), content, header.Filename)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !s.decode(w, r, &req) {
		return
	}
	ans, err := s.answers.Answer(r.Context(), req.Question)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	status := http.StatusOK
	if ans.Unavailable {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, answerResponse{
		Answer:      ans.Text,
		Citation:    ans.Citation,
		Formatted:   ans.Formatted(),
		Chunks:      ans.Chunks,
		Unavailable: ans.Unavailable,
	})
}

func (s *Server) handleQuizQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := s.quiz.Generate(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"question": q})
}

func (s *Server) handleQuizEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !s.decode(w, r, &req) {
		return
	}
	v, err := s.quiz.Evaluate(req.Answer)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, v)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.docs.Status())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body into dst and validates it, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_input", validationMessage(err))
		return false
	}
	return true
}

// statusFor maps the service error taxonomy to an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, models.ErrNoDocumentLoaded):
		return http.StatusBadRequest, "no_document_loaded"
	case errors.Is(err, models.ErrNoQuestionGenerated):
		return http.StatusBadRequest, "no_question_generated"
	case errors.Is(err, models.ErrExtractionFailure):
		return http.StatusUnprocessableEntity, "extraction_failure"
	case errors.Is(err, models.ErrIndexNotReady):
		return http.StatusConflict, "index_not_ready"
	case errors.Is(err, models.ErrIndexBuild):
		return http.StatusBadGateway, "index_build_failure"
	case errors.Is(err, models.ErrGenerationUnavailable):
		return http.StatusServiceUnavailable, "generation_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("code", code), zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.String("code", code), zap.Error(err))
	}
	s.respondError(w, status, code, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{Error: message, Code: code})
}
