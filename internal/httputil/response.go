// Package httputil provides request parsing and error responses for the admin endpoints.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/casevault/internal/errors"
)

// ErrorResponse is the JSON body of every admin error. RequestID matches the X-Request-Id
// response header so an operator can find the matching log line.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// errorMapping ties an error kind to its status and public code. A fixed message hides the
// wrapped details; an empty one exposes err.Error().
type errorMapping struct {
	kind    error
	status  int
	code    string
	message string
}

// errorMappings is checked in order; the first kind err matches wins.
var errorMappings = []errorMapping{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "The requested resource was not found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", "A conflict occurred with existing data"},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input", ""},
	{apperrors.ErrIntegrity, http.StatusConflict, "integrity_violation", "Stored data failed an integrity check"},
	{apperrors.ErrUnavailable, http.StatusServiceUnavailable, "unavailable", "A storage dependency is currently unavailable"},
}

// HandleErrorGin maps an error kind to its HTTP status and writes the JSON error. Unknown
// errors become 500 without details; the full chain is only logged.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status := http.StatusInternalServerError
	response := ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}
	for _, m := range errorMappings {
		if apperrors.Is(err, m.kind) {
			status = m.status
			response = ErrorResponse{Error: m.code, Message: m.message}
			if m.message == "" {
				response.Message = err.Error()
			}
			break
		}
	}

	writeError(c, logger, slog.LevelError, "request failed", status, response, err)
}

// HandleBadRequestGin writes 400 for malformed parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	writeError(c, logger, slog.LevelWarn, "bad request", http.StatusBadRequest,
		ErrorResponse{Error: "bad_request", Message: err.Error()}, err)
}

// HandleValidationErrorGin writes 422 for parameters that parsed but failed validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	writeError(c, logger, slog.LevelWarn, "validation failed", http.StatusUnprocessableEntity,
		ErrorResponse{Error: "validation_error", Message: err.Error()}, err)
}

func writeError(
	c *gin.Context,
	logger *slog.Logger,
	level slog.Level,
	msg string,
	status int,
	response ErrorResponse,
	err error,
) {
	response.RequestID = requestid.Get(c)

	if logger != nil {
		logger.LogAttrs(c, level, msg,
			slog.Int("status_code", status),
			slog.String("error_code", response.Error),
			slog.String("request_id", response.RequestID),
			slog.Any("error", err),
		)
	}

	c.JSON(status, response)
}
