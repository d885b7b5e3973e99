package models

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// APIResponse is the envelope for every successful response.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorResponse is the envelope for every failed response.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// Respond writes data inside the success envelope.
func Respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(APIResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < fiber.StatusBadRequest,
	})
}

// RespondWithError writes err inside the error envelope. Internal errors never
// leak their cause; callers log it before responding.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	response := ErrorResponse{
		StatusCode: status,
		Success:    false,
		Errors:     []string{},
	}

	var appErr *AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		response.Message = appErr.Message
		if appErr.Code != CodeInternal && len(appErr.Details) > 0 {
			response.Errors = appErr.Details
		}
	case errors.As(err, &fiberErr) && status < fiber.StatusInternalServerError:
		response.Message = fiberErr.Message
	default:
		response.Message = "Internal server error"
	}
	if status >= fiber.StatusInternalServerError {
		response.Message = "Internal server error"
	}

	return c.Status(status).JSON(response)
}
