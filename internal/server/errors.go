package server

import (
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/ridasset/pkg/errors"
)

var errTooLarge = stderrors.New("request body too large")

// statusFor maps an error to the HTTP status reported to the client.
func statusFor(err error) int {
	if stderrors.Is(err, errTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidManifest,
		errors.ErrCodeInvalidPath,
		errors.ErrCodeInvalidRID,
		errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: w.Header().Get(requestIDHeader),
	}
	switch {
	case stderrors.Is(err, errTooLarge):
		resp.Code = "PAYLOAD_TOO_LARGE"
	case status == http.StatusInternalServerError:
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", resp.RequestID, "error", err)
		resp.Error = "internal error"
		resp.Code = string(errors.ErrCodeInternal)
	default:
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, resp)
}
