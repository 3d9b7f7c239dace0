package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	docgen "github.com/alnah/go-docgen"
)

// errorBody mirrors the error envelope returned to clients.
// Message is a string, or a list of strings for body validation failures.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    any    `json:"message"`
	Error      string `json:"error"`
}

const msgGenerationFailed = "Document generation failed"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message any) {
	writeJSON(w, status, errorBody{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

// statusFor maps a generation error to its HTTP status and client message.
// Service-side causes are never echoed to the client.
func statusFor(err error) (int, string) {
	switch docgen.KindOf(err) {
	case docgen.KindTemplateNotFound, docgen.KindVersionNotFound:
		return http.StatusNotFound, err.Error()
	case docgen.KindInvalidFormat:
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, msgGenerationFailed
}

func (s *Server) writeGenerateError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("generate failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("kind", docgen.KindOf(err).String()),
			zap.Error(err),
		)
	}
	writeError(w, status, msg)
}
