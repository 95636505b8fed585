package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"ledgervault/internal/apperror"
	"ledgervault/internal/http/middleware"
	"ledgervault/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "PHASE_NOT_ALLOWED", "INTERNAL_ERROR")
// - message: human-readable safe message
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps domain errors onto status codes. Unknown errors become a 500
// carrying fallback as the message.
func writeServiceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, apperror.ErrMigrationInProgress):
		return writeError(c, fiber.StatusConflict, "MIGRATION_IN_PROGRESS", "a backup or migration is already running")
	case errors.Is(err, apperror.ErrPhaseNotAllowed):
		return writeError(c, fiber.StatusConflict, "PHASE_NOT_ALLOWED", err.Error())
	case apperror.IsConfiguration(err):
		return writeError(c, fiber.StatusServiceUnavailable, "CLOUD_NOT_CONFIGURED", "cloud storage is not configured")
	case errors.Is(err, apperror.ErrInvalidCategory), errors.Is(err, service.ErrEmptyCategory):
		return writeError(c, fiber.StatusBadRequest, "INVALID_CATEGORY", "invalid category")
	case errors.Is(err, apperror.ErrInvalidFilename):
		return writeError(c, fiber.StatusBadRequest, "INVALID_FILENAME", "invalid filename")
	case errors.Is(err, service.ErrFileTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds upload limit")
	case errors.Is(err, service.ErrNoSession):
		return writeError(c, fiber.StatusNotFound, "NO_SESSION", "no migration session has been started")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
