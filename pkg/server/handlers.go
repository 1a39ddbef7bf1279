package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-mdform/internal/logging"
	"github.com/goliatone/go-mdform/pkg/submission"
	"github.com/goliatone/go-mdform/pkg/view"
)

const (
	requestIDHeader = "X-Request-ID"

	codeMalformed    = "SUBMISSION_MALFORMED"
	codeTooLarge     = "SUBMISSION_TOO_LARGE"
	codeRenderFailed = "PAGE_RENDER_FAILED"
)

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowedWith(w, http.MethodGet, http.MethodHead)
		return
	}

	data := view.PageData{
		Title:       s.page.Title,
		Description: s.page.Description,
		Body:        s.page.HTML,
		Theme:       s.theme,
	}
	if result, ok := s.Latest(); ok {
		pretty, err := result.Pretty()
		if err != nil {
			s.fail(w, r, http.StatusInternalServerError, codeRenderFailed, err)
			return
		}
		data.Result = string(pretty)
	}

	out, err := s.engine.RenderPage(data)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, codeRenderFailed,
			goerrors.Wrap(err, goerrors.CategoryCommand, "page template failed").WithTextCode(codeRenderFailed))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

// handleSubmit replaces the latest result with the collected submission.
// Requests without a form payload leave the state untouched.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowedWith(w, http.MethodPost)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	entries, err := submission.EntriesFromRequest(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, submission.ErrNotForm):
			s.requestLogger(r).Debug("ignored non-form request", "content_type", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusNoContent)
		case errors.As(err, &tooLarge):
			s.fail(w, r, http.StatusRequestEntityTooLarge, codeTooLarge,
				goerrors.Wrap(err, goerrors.CategoryValidation, "submission too large").WithTextCode(codeTooLarge))
		default:
			s.fail(w, r, http.StatusBadRequest, codeMalformed,
				goerrors.Wrap(err, goerrors.CategoryValidation, "submission could not be decoded").WithTextCode(codeMalformed))
		}
		return
	}

	result := s.collector.Collect(entries)
	s.store(result)
	s.requestLogger(r).Info("submission collected", "fields", result.Len(), "entries", len(entries))

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowedWith(w, http.MethodGet, http.MethodHead)
		return
	}
	result, ok := s.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleContract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowedWith(w, http.MethodGet, http.MethodHead)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.contract)
}

// fail logs err and answers with a JSON or plain text error depending on
// what the client accepts.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	s.requestLogger(r).Error("request failed", "status", status, "code", code, "error", err)
	message := http.StatusText(status)
	if status < http.StatusInternalServerError {
		message = err.Error()
	}
	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": message, "code": code})
		return
	}
	http.Error(w, message, status)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(recorder, r)

		s.requestLogger(r).Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration", time.Since(started).String(),
		)
	})
}

func (s *Server) requestLogger(r *http.Request) logging.Logger {
	return logging.WithFields(s.logger.WithContext(r.Context()), map[string]any{
		"request_id": r.Header.Get(requestIDHeader),
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	payload, err := jsonBytes(value)
	if err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func methodNotAllowedWith(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
