package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the API error envelope.
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodePendingActivation = "PENDING_ACTIVATION"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeConfirmRequired   = "CONFIRMATION_REQUIRED"
	CodeInternalError     = "INTERNAL_ERROR"
)

// APIError is the standardized error response body.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

func respond(c *gin.Context, status int, code, message string) {
	c.JSON(status, &APIError{Code: code, Message: message})
}

// Unauthorized sends a 401 response.
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	respond(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden sends a 403 response.
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	respond(c, http.StatusForbidden, CodeForbidden, message)
}

// PendingActivation sends a 403 response for registered but unapproved users.
func PendingActivation(c *gin.Context) {
	respond(c, http.StatusForbidden, CodePendingActivation,
		"Your account is registered but not yet activated. Contact your administrator.")
}

// NotFound sends a 404 response.
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	respond(c, http.StatusNotFound, CodeNotFound, message)
}

// BadRequest sends a 400 response.
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	respond(c, http.StatusBadRequest, CodeInvalidInput, message)
}

// ConfirmationRequired sends a 400 response for destructive operations
// invoked without the explicit confirmation step.
func ConfirmationRequired(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, CodeConfirmRequired, message)
}

// Conflict sends a 409 response.
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	respond(c, http.StatusConflict, CodeConflict, message)
}

// InternalError sends a 500 response.
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	respond(c, http.StatusInternalServerError, CodeInternalError, message)
}
