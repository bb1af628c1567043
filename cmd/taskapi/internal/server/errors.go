package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/services/task"
)

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  []task.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

// writeTaskError maps task service errors onto HTTP responses.
func writeTaskError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var ve *task.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Message: "validation failed", Errors: ve.Fields})
	case errors.Is(err, task.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, task.ErrInvalidFilter):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("task request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
