package response

import (
	"encoding/json"
	"net/http"

	"github.com/aTrapDeer/portfolio-backend/internal/apierr"
	"github.com/aTrapDeer/portfolio-backend/internal/logger"
)

type APIError struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func OK(w http.ResponseWriter, payload any) {
	JSON(w, http.StatusOK, payload)
}

func Created(w http.ResponseWriter, payload any) {
	JSON(w, http.StatusCreated, payload)
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageResponse{Message: msg})
}

// Error writes err as an error envelope. Errors that are not *apierr.Error
// are logged and reported as a generic 500.
func Error(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	if e, ok := apierr.As(err); ok {
		if e.Status >= http.StatusInternalServerError && log != nil {
			log.Error("Request failed", "path", r.URL.Path, "error", err)
		}
		JSON(w, e.Status, ErrorEnvelope{Error: APIError{Message: e.Error(), Code: e.Code, Fields: e.Fields}})
		return
	}
	if log != nil {
		log.Error("Unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	JSON(w, http.StatusInternalServerError, ErrorEnvelope{Error: APIError{Message: "internal server error", Code: "internal"}})
}
