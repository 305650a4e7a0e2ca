package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	appErrors "resumeforge/internal/errors"
	"resumeforge/internal/service"
	"resumeforge/internal/types"
)

// maxMultipartMemory is the part of an upload kept in memory before
// spilling to disk.
const maxMultipartMemory = 8 << 20

// healthHandler reports service status, extraction engines and breaker states
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, r, "method_not_allowed", "use GET", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "ok",
		"service": "resumeforge",
		"version": s.Version,
		"engines": s.Service.Engines(),
	}

	breakers := s.Service.Extractors.BreakerStates()
	if len(breakers) > 0 {
		response["circuit_breakers"] = breakers
	}
	for _, state := range breakers {
		if state == "open" {
			response["status"] = "degraded"
		}
	}

	s.writeJSON(w, http.StatusOK, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, r, "method_not_allowed", "use GET", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service":        "resumeforge",
		"version":        s.Version,
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"api_keys_configured":    len(s.APIKeys),
		},
		"render_formats": s.Service.Renderer.Formats(),
		"templates":      s.Service.Renderer.Catalog().IDs(),
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	s.writeJSON(w, http.StatusOK, response)
}

// templatesHandler lists the template catalog
func (s *Server) templatesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, r, "method_not_allowed", "use GET", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Service.Templates().Templates)
}

// parseHandler reads the multipart "file" field and returns the structured résumé
func (s *Server) parseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, r, "method_not_allowed", "use POST", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		s.writeAppError(w, r, requestBodyError(err, "expected a multipart/form-data body"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeAppError(w, r, appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest,
			`multipart field "file" is required`, err))
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.Logger.Warn("Failed to close uploaded file", "error", err.Error())
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeAppError(w, r, appErrors.NewIOError(appErrors.ErrCodeFileNotReadable, "failed to read uploaded file", err))
		return
	}

	s.Logger.Info("Parsing uploaded résumé",
		"request_id", requestIDFrom(r),
		"filename", header.Filename,
		"bytes", len(data))

	resume, err := s.Service.ParseDocument(r.Context(), service.SourceHTTP, data, header.Filename)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resume)
}

// renderHandler renders a résumé with a catalog template and streams the document
func (s *Server) renderHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, r, "method_not_allowed", "use POST", http.StatusMethodNotAllowed)
		return
	}

	body, err := readJSONBody(r)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	req, err := types.DecodeRenderRequest(body)
	if err != nil {
		s.writeAppError(w, r, appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest,
			"failed to parse JSON", err))
		return
	}

	out, err := s.Service.Render(r.Context(), service.SourceHTTP, req)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Data); err != nil {
		s.Logger.Warn("Failed to write rendered document",
			"request_id", requestIDFrom(r),
			"error", err.Error())
	}
}

// readJSONBody reads a JSON request body
func readJSONBody(r *http.Request) ([]byte, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return nil, appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest,
			"content-type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, requestBodyError(err, "failed to read request body")
	}
	return body, nil
}

// requestBodyError distinguishes an oversized body from a malformed one
func requestBodyError(err error, message string) error {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return appErrors.NewValidationError(appErrors.ErrCodeFileTooLarge,
			fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
	}
	return appErrors.NewValidationError(appErrors.ErrCodeInvalidRequest, message, err)
}

// statusFor maps an error to its HTTP status and public error name
func statusFor(err error) (int, string) {
	switch appErrors.CodeOf(err) {
	case appErrors.ErrCodeUnsupportedFormat:
		return http.StatusBadRequest, "unsupported_format"
	case appErrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest, "invalid_format"
	case appErrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest, "invalid_request"
	case appErrors.ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge, "file_too_large"
	case appErrors.ErrCodeTemplateNotFound:
		return http.StatusNotFound, "template_not_found"
	case appErrors.ErrCodeExtractionFailed:
		return http.StatusUnprocessableEntity, "extraction_failed"
	case appErrors.ErrCodeExtractorDown:
		return http.StatusServiceUnavailable, "extractor_unavailable"
	case appErrors.ErrCodeNetworkTimeout:
		return http.StatusGatewayTimeout, "extractor_timeout"
	case appErrors.ErrCodeRenderFailed:
		return http.StatusInternalServerError, "render_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeAppError logs err and writes the mapped error response. Messages of
// internal failures are not exposed.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status, name := statusFor(err)

	message := "internal server error"
	var appErr *appErrors.AppError
	if stderrors.As(err, &appErr) && status != http.StatusInternalServerError {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, "Request failed", "request_id", requestIDFrom(r), "endpoint", r.URL.Path)
	} else {
		s.Logger.Info("Request rejected",
			"request_id", requestIDFrom(r),
			"endpoint", r.URL.Path,
			"error_code", appErrors.CodeOf(err),
			"status", status)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:     name,
		Message:   message,
		Code:      appErrors.CodeOf(err),
		RequestID: requestIDFrom(r),
	}); err != nil {
		s.Logger.Warn("Failed to encode error response", "error", err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Warn("Failed to encode response", "error", err.Error())
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, r *http.Request, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:     error,
		Message:   message,
		RequestID: requestIDFrom(r),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
