package errors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"codeberg.org/todoai/server/internal/logger"
)

// Handlers answer with the responders below and do not log the same error again.
// Websocket handlers log and send an error frame instead. Internal packages return
// wrapped errors and leave logging to the handler.

// standard error codes
const (
	CodeUnauthorized    = "unauthorized"
	CodeNotFound        = "not_found"
	CodeValidationError = "validation_error"
	CodeServerError     = "server_error"
	CodeBadRequest      = "bad_request"
	CodeTooManyRequests = "too_many_requests"
	CodeSessionNotFound = "session_not_found"
	CodeLLMError        = "llm_error"
)

// writes an ErrorResponse, with sanitized details when err is set
func respond(c *gin.Context, status int, code, message string, err error) {
	response := ErrorResponse{Error: code, Message: message}

	if err != nil {
		response.Details = sanitizeError(err)
	}

	c.JSON(status, response)
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}

	return message
}

// 401, used by the auth middleware
func Unauthorized(c *gin.Context, message string) {
	respond(c, http.StatusUnauthorized, CodeUnauthorized, orDefault(message, "authentication required"), nil)
}

// 404 naming the missing resource
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"
	if resource != "" {
		message = resource + " not found"
	}

	respond(c, http.StatusNotFound, CodeNotFound, message, nil)
}

// 404 for unknown, expired or foreign sessions
func SessionNotFound(c *gin.Context) {
	respond(c, http.StatusNotFound, CodeSessionNotFound, "session not found", nil)
}

func BadRequest(c *gin.Context, message string, err error) {
	respond(c, http.StatusBadRequest, CodeBadRequest, orDefault(message, "invalid request"), err)
}

// 400 for binding and validator failures
func ValidationError(c *gin.Context, err error) {
	message := "validation failed"
	if err != nil && (strings.Contains(err.Error(), "binding") || strings.Contains(err.Error(), "validation")) {
		message = "request validation failed"
	}

	respond(c, http.StatusBadRequest, CodeValidationError, message, err)
}

func TooManyRequests(c *gin.Context, message string) {
	respond(c, http.StatusTooManyRequests, CodeTooManyRequests, orDefault(message, "too many requests"), nil)
}

// 500, logged with the caller's user id
func InternalError(c *gin.Context, message string, err error) {
	message = orDefault(message, "an error occurred")

	logger.FromContext(c.Request.Context()).Error(message,
		"error", err,
		"user_id", c.GetString("user_id"),
	)

	respond(c, http.StatusInternalServerError, CodeServerError, message, err)
}

// 502 when the model provider fails or answers with unusable output
func LLMError(c *gin.Context, message string, err error) {
	message = orDefault(message, "the language model request failed")

	logger.FromContext(c.Request.Context()).Error(message,
		"error", err,
		"category", classifyError(err).Category(),
	)

	respond(c, http.StatusBadGateway, CodeLLMError, message, err)
}

// sanitizes error messages for production
func sanitizeError(err error) string {
	return classifyError(err).sanitized
}

// validates a UUID string format
func IsValidUUID(id string) bool {
	if id == "" {
		return false
	}

	_, err := uuid.Parse(id)
	return err == nil
}

// validates a UUID parameter from the request path, answering 404 when it cannot name a resource
func ValidatePathUUID(c *gin.Context, paramName, resource string) (string, bool) {
	id := c.Param(paramName)

	if id == "" {
		BadRequest(c, "missing "+paramName, nil)
		return "", false
	}

	if !IsValidUUID(id) {
		NotFound(c, resource)
		return "", false
	}

	return id, true
}
