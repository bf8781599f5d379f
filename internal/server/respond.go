package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/railcdl/pkg/errors"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// statusFor maps an error code onto an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath,
		errors.ErrCodeInvalidThreshold, errors.ErrCodeInvalidNetwork, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeCycle, errors.ErrCodeNestedMerge:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeConflict:
		return http.StatusConflict
	case errors.ErrCodeNotFound, errors.ErrCodeStationNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// respondError writes err as JSON. Internal errors are logged with their
// details and reported to the client without them.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		s.respondJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Error: "request body too large",
			Code:  string(errors.ErrCodeInvalidInput),
		})
		return
	}

	err = errors.FromCore(err)
	code := errors.GetCode(err)
	status := statusFor(code)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		loggerFrom(r).Error("request failed", "error", err)
		msg = "internal error"
	}
	s.respondJSON(w, status, errorResponse{Error: msg, Code: string(code)})
}
